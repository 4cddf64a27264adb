package entity

// NetworkDefinition holds the static configuration for a supported EVM network.
// This structure is defined at the domain level to be used across application and infrastructure layers.
type NetworkDefinition struct {
	ChainID          uint64 `json:"chainId" yaml:"chainId"`
	Name             string `json:"name" yaml:"name"`
	Identifier       string `json:"identifier" yaml:"identifier"` // unique network identifier, e.g. "mainnet", "polygon"
	RPCEnvVar        string `json:"rpcEnvVar" yaml:"rpcEnvVar"`   // environment variable holding the RPC endpoint URL
	BlockExplorerURL string `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
}

// CanonicalNetwork is the identifier of the network carrying the authoritative
// ENS registry. Network-specific records and fallback resolution both read
// from it.
const CanonicalNetwork = "mainnet"

// IsCanonical reports whether this definition is the canonical (registry) chain.
func (d NetworkDefinition) IsCanonical() bool {
	return d.Identifier == CanonicalNetwork
}
