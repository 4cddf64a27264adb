package entity

import "time"

// NameState is the derived lifecycle classification of a name. It is never
// persisted; it is computed on demand from on-chain reads.
type NameState string

const (
	StateUnregistered NameState = "unregistered"
	StateRegistered   NameState = "registered" // owned, but no address record yet
	StateResolved     NameState = "resolved"   // owned and resolving to an address
	StateExpired      NameState = "expired"
)

// RegistrationStatus is a quick ownership/resolution snapshot for a name.
type RegistrationStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Owner     string `json:"owner,omitempty"`
	Resolver  string `json:"resolver,omitempty"`
	Address   string `json:"address,omitempty"`
	Valid     bool   `json:"valid"`
}

// SubdomainRecord is one subnode observed under a parent name. The plain
// label is not recoverable from the NewOwner log, only its hash.
type SubdomainRecord struct {
	LabelHash string `json:"labelHash"`
	Owner     string `json:"owner"`
}

// NameDetails is the aggregate report assembled by the manager facade.
type NameDetails struct {
	Name        string            `json:"name"`
	State       NameState         `json:"state"`
	Available   bool              `json:"available"`
	Owner       string            `json:"owner,omitempty"`
	Resolver    string            `json:"resolver,omitempty"`
	Address     string            `json:"address,omitempty"`
	ContentHash string            `json:"contentHash,omitempty"`
	TTL         uint64            `json:"ttl"`
	TextRecords map[string]string `json:"textRecords,omitempty"`
	ExpiryDate  *time.Time        `json:"expiryDate,omitempty"`
	Subdomains  []SubdomainRecord `json:"subdomains,omitempty"`
}
