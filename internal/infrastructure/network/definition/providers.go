package networkdefinition

import (
	"strings"

	"ens_manager/internal/domain/entity"
)

// Predefined network definitions. RPC endpoints are supplied through the
// environment variable named in each definition; a network whose variable
// is unset is simply unavailable.
var ( //nolint:gochecknoglobals // Global for definitions
	Mainnet = entity.NetworkDefinition{
		ChainID:          1,
		Name:             "Ethereum Mainnet",
		Identifier:       "mainnet",
		RPCEnvVar:        "ETH_MAINNET_RPC",
		BlockExplorerURL: "https://etherscan.io",
	}
	Optimism = entity.NetworkDefinition{
		ChainID:          10,
		Name:             "Optimism",
		Identifier:       "optimism",
		RPCEnvVar:        "OPTIMISM_RPC",
		BlockExplorerURL: "https://optimistic.etherscan.io",
	}
	Arbitrum = entity.NetworkDefinition{
		ChainID:          42161,
		Name:             "Arbitrum One",
		Identifier:       "arbitrum",
		RPCEnvVar:        "ARBITRUM_RPC",
		BlockExplorerURL: "https://arbiscan.io",
	}
	Polygon = entity.NetworkDefinition{
		ChainID:          137,
		Name:             "Polygon",
		Identifier:       "polygon",
		RPCEnvVar:        "POLYGON_RPC",
		BlockExplorerURL: "https://polygonscan.com",
	}
	Base = entity.NetworkDefinition{
		ChainID:          8453,
		Name:             "Base",
		Identifier:       "base",
		RPCEnvVar:        "BASE_RPC",
		BlockExplorerURL: "https://basescan.org",
	}
)

// Provider implements port.NetworkDefinitionProvider over the static table.
type Provider struct {
	defs  map[string]entity.NetworkDefinition
	order []entity.NetworkDefinition
}

// NewProvider creates a provider holding every predefined network.
func NewProvider() *Provider {
	ordered := []entity.NetworkDefinition{Mainnet, Optimism, Arbitrum, Polygon, Base}
	defs := make(map[string]entity.NetworkDefinition, len(ordered))
	for _, d := range ordered {
		defs[d.Identifier] = d
	}
	return &Provider{defs: defs, order: ordered}
}

// GetAllNetworkDefinitions returns all known network definitions.
func (p *Provider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	out := make([]entity.NetworkDefinition, len(p.order))
	copy(out, p.order)
	return out
}

// GetNetworkDefinitionByName returns the definition matching the identifier.
func (p *Provider) GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool) {
	def, ok := p.defs[strings.ToLower(identifier)]
	return def, ok
}
