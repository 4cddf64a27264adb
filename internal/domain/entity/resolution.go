package entity

import "time"

// ResolutionType identifies which source produced a resolved address.
type ResolutionType string

const (
	// ResolutionNetworkSpecific means the address came from a
	// "network.<id>.address" text record on the canonical chain.
	ResolutionNetworkSpecific ResolutionType = "network_specific"
	// ResolutionCCIPRead means the address was served by the resolver's
	// off-chain read extension (resolve(bytes,bytes)).
	ResolutionCCIPRead ResolutionType = "ccip_read"
	// ResolutionMainnetFallback means the canonical-chain addr record was
	// used because no network-specific source existed.
	ResolutionMainnetFallback ResolutionType = "mainnet_fallback"
)

// ResolutionResult is the outcome of resolving one name on one network.
// Address is empty when every resolution step yielded nothing.
type ResolutionResult struct {
	Network    string            `json:"network"`
	Address    string            `json:"address,omitempty"`
	Type       ResolutionType    `json:"resolutionType,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	ResolvedAt time.Time         `json:"resolvedAt"`
}

// Resolved reports whether any step produced an address.
func (r ResolutionResult) Resolved() bool {
	return r.Address != ""
}

// GlobalResolution is the fan-out result of resolving one name on every
// available network.
type GlobalResolution struct {
	Name            string                       `json:"name"`
	SupportsCCIP    bool                         `json:"supportsCcip"`
	ResolverAddress string                       `json:"resolverAddress,omitempty"`
	Resolutions     map[string]*ResolutionResult `json:"resolutions"`
	Timestamp       time.Time                    `json:"timestamp"`
}

// ResolutionCheck is one verification step result produced by
// VerifyResolution; Status is "passed", "warning", "failed" or "error".
type ResolutionCheck struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Message string `json:"message"`
}
