package networkdefinition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ens_manager/internal/domain/entity"
)

func TestProvider(t *testing.T) {
	p := NewProvider()

	defs := p.GetAllNetworkDefinitions()
	require.Len(t, defs, 5)
	assert.Equal(t, entity.CanonicalNetwork, defs[0].Identifier)

	def, ok := p.GetNetworkDefinitionByName("polygon")
	require.True(t, ok)
	assert.Equal(t, uint64(137), def.ChainID)

	def, ok = p.GetNetworkDefinitionByName("POLYGON")
	require.True(t, ok)
	assert.Equal(t, "polygon", def.Identifier)

	_, ok = p.GetNetworkDefinitionByName("solana")
	assert.False(t, ok)
}

func TestIsCanonical(t *testing.T) {
	assert.True(t, Mainnet.IsCanonical())
	assert.False(t, Polygon.IsCanonical())
}
