package ens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsedABIs(t *testing.T) {
	registry, resolver, controller := parsedABIs()

	for _, method := range []string{"owner", "resolver", "ttl", "setOwner", "setSubnodeOwner"} {
		_, ok := registry.Methods[method]
		assert.True(t, ok, "registry method %s missing", method)
	}
	for _, event := range []string{"Transfer", "NewOwner"} {
		_, ok := registry.Events[event]
		assert.True(t, ok, "registry event %s missing", event)
	}

	for _, method := range []string{"addr", "text", "contenthash", "supportsInterface", "resolve", "setAddr", "setText", "setContenthash"} {
		_, ok := resolver.Methods[method]
		assert.True(t, ok, "resolver method %s missing", method)
	}
	for _, event := range []string{"AddrChanged", "TextChanged", "ContenthashChanged"} {
		_, ok := resolver.Events[event]
		assert.True(t, ok, "resolver event %s missing", event)
	}

	for _, method := range []string{"available", "rentPrice", "register", "renew"} {
		_, ok := controller.Methods[method]
		assert.True(t, ok, "controller method %s missing", method)
	}
}

func TestInterfaceIDs(t *testing.T) {
	assert.Equal(t, [4]byte{0x59, 0xd1, 0xd4, 0x3c}, InterfaceIDText)
	assert.Equal(t, [4]byte{0x90, 0x61, 0xb9, 0x23}, InterfaceIDCCIPRead)
}

func TestNameHashHex(t *testing.T) {
	// Known EIP-137 test vector.
	node, err := NameHashHex("eth")
	require.NoError(t, err)
	assert.Equal(t, "0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae", node)
}
