package port

import (
	"ens_manager/internal/domain/entity"
)

// NetworkDefinitionProvider defines the interface for providing network definitions.
type NetworkDefinitionProvider interface {
	// GetAllNetworkDefinitions returns all known network definitions as a slice.
	GetAllNetworkDefinitions() []entity.NetworkDefinition

	// GetNetworkDefinitionByName returns a specific network definition by its
	// identifier. Returns the definition and true when found, otherwise false.
	GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool)
}

// NetworkDirectory exposes the live connection set. A network whose RPC
// endpoint variable is unset or whose liveness probe failed at startup is
// simply absent from AvailableNetworks; a capability gap, not an error.
// A dead network stays absent until restart; there are no retries here.
type NetworkDirectory interface {
	AvailableNetworks() []string

	// Current returns the identifier used when a caller does not name a network.
	Current() string

	// SetCurrent succeeds only if the network is live; otherwise no state change.
	SetCurrent(networkID string) bool

	Definition(networkID string) (entity.NetworkDefinition, bool)

	// ConfiguredNetworks returns every known definition, live or not.
	ConfiguredNetworks() []entity.NetworkDefinition
}

// GatewayProvider yields the contract gateway bound to one live network.
type GatewayProvider interface {
	// Gateway returns the ENS gateway for the given network, or false when
	// the network is not in the live set.
	Gateway(networkID string) (ENSGateway, bool)

	// CanonicalGateway returns the gateway for the canonical (registry) chain.
	CanonicalGateway() (ENSGateway, bool)
}
