// Package contenthash renders raw EIP-1577 contenthash bytes as a URI.
package contenthash

import (
	"encoding/hex"

	"github.com/mr-tron/base58"
)

// Multicodec prefixes for the supported contenthash encodings.
var (
	ipfsPrefix  = []byte{0xe3, 0x01, 0x01, 0x70}
	swarmPrefix = []byte{0xe4, 0x01, 0x01, 0xfa}
)

// Decode renders raw contenthash bytes as ipfs:// (base58) or bzz:// (hex)
// URIs; any other encoding is returned as plain 0x-prefixed hex. Empty
// input yields an empty string.
func Decode(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	if hasPrefix(raw, ipfsPrefix) {
		return "ipfs://" + base58.Encode(raw[len(ipfsPrefix):])
	}
	if hasPrefix(raw, swarmPrefix) {
		return "bzz://" + hex.EncodeToString(raw[len(swarmPrefix):])
	}
	return "0x" + hex.EncodeToString(raw)
}

func hasPrefix(raw, prefix []byte) bool {
	if len(raw) < len(prefix) {
		return false
	}
	for i := range prefix {
		if raw[i] != prefix[i] {
			return false
		}
	}
	return true
}
