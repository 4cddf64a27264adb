package entity

import "time"

// ActivityEvent is one append-only entry in a name's activity log.
// Timestamps are UTC; serialized as ISO-8601 in day-partitioned files.
type ActivityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	Type      string            `json:"type"`
	Data      map[string]string `json:"data"`
}

// Activity event types recorded by the manager and the watcher.
const (
	ActivityRegistered        = "Registered"
	ActivityRenewed           = "Renewed"
	ActivityTransferred       = "Transferred"
	ActivityAddressSet        = "AddressSet"
	ActivityTextRecordSet     = "TextRecordSet"
	ActivityContenthashSet    = "ContenthashSet"
	ActivitySubdomainCreated  = "SubdomainCreated"
	ActivityChainTransfer     = "Transfer"
	ActivityChainNewOwner     = "NewOwner"
	ActivityChainAddrChanged  = "AddrChanged"
	ActivityChainTextChanged  = "TextChanged"
	ActivityChainContenthash  = "ContenthashChanged"
)

// ActivityReport aggregates the stored activity of one name with the
// transactions reconstructed from the block explorer.
type ActivityReport struct {
	Name         string                `json:"name"`
	PeriodStart  *time.Time            `json:"periodStart,omitempty"`
	PeriodEnd    *time.Time            `json:"periodEnd,omitempty"`
	Events       []ActivityEvent       `json:"events"`
	Transactions []ExplorerTransaction `json:"transactions,omitempty"`
}

// ExplorerTransaction is one historical transaction touching a name's
// registry or resolver, as reported by the block explorer API.
type ExplorerTransaction struct {
	Hash      string    `json:"hash"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
	Method    string    `json:"method"`
	Contract  string    `json:"contract"` // "Registry" or "Resolver"
	ValueWei  string    `json:"valueWei"`
}
