package entity

import "time"

// ChainEventKind tags the concrete type of a registry/resolver log entry.
type ChainEventKind string

const (
	KindTransfer           ChainEventKind = "Transfer"
	KindNewOwner           ChainEventKind = "NewOwner"
	KindAddrChanged        ChainEventKind = "AddrChanged"
	KindTextChanged        ChainEventKind = "TextChanged"
	KindContenthashChanged ChainEventKind = "ContenthashChanged"
	KindNameRegistered     ChainEventKind = "NameRegistered"
	KindNameRenewed        ChainEventKind = "NameRenewed"
)

// ChainEvent is a decoded on-chain log entry for a name. Each event kind is
// a distinct struct with explicit typed fields; consumers switch on Kind().
type ChainEvent interface {
	Kind() ChainEventKind
	Meta() EventMeta
}

// EventMeta carries the chain position shared by every decoded event.
type EventMeta struct {
	BlockNumber uint64    `json:"block"`
	TxHash      string    `json:"transaction"`
	Timestamp   time.Time `json:"timestamp,omitzero"`
}

// TransferEvent: registry Transfer(node, owner); ownership handed over.
type TransferEvent struct {
	EventMeta
	From string `json:"from"`
	To   string `json:"to,omitempty"` // filled from the following NewOwner event when known
}

func (e TransferEvent) Kind() ChainEventKind { return KindTransfer }
func (e TransferEvent) Meta() EventMeta      { return e.EventMeta }

// NewOwnerEvent: registry NewOwner(node, label, owner); subnode assigned.
type NewOwnerEvent struct {
	EventMeta
	LabelHash string `json:"labelHash"`
	Owner     string `json:"owner"`
}

func (e NewOwnerEvent) Kind() ChainEventKind { return KindNewOwner }
func (e NewOwnerEvent) Meta() EventMeta      { return e.EventMeta }

// AddrChangedEvent: resolver AddrChanged(node, a).
type AddrChangedEvent struct {
	EventMeta
	Address string `json:"address"`
}

func (e AddrChangedEvent) Kind() ChainEventKind { return KindAddrChanged }
func (e AddrChangedEvent) Meta() EventMeta      { return e.EventMeta }

// TextChangedEvent: resolver TextChanged(node, indexedKey, key).
type TextChangedEvent struct {
	EventMeta
	Key string `json:"key"`
}

func (e TextChangedEvent) Kind() ChainEventKind { return KindTextChanged }
func (e TextChangedEvent) Meta() EventMeta      { return e.EventMeta }

// ContenthashChangedEvent: resolver ContenthashChanged(node, hash).
type ContenthashChangedEvent struct {
	EventMeta
	Hash string `json:"hash"` // hex-encoded raw contenthash
}

func (e ContenthashChangedEvent) Kind() ChainEventKind { return KindContenthashChanged }
func (e ContenthashChangedEvent) Meta() EventMeta      { return e.EventMeta }

// NameRegisteredEvent: controller NameRegistered(name, label, owner, cost, expires).
type NameRegisteredEvent struct {
	EventMeta
	Label   string    `json:"label"`
	Owner   string    `json:"owner"`
	Expires time.Time `json:"expires"`
}

func (e NameRegisteredEvent) Kind() ChainEventKind { return KindNameRegistered }
func (e NameRegisteredEvent) Meta() EventMeta      { return e.EventMeta }

// NameRenewedEvent: controller NameRenewed(name, label, cost, expires).
// A renewal is just another expiry-extending event; expiry computation
// takes the maximum Expires over registrations and renewals.
type NameRenewedEvent struct {
	EventMeta
	Label   string    `json:"label"`
	Expires time.Time `json:"expires"`
}

func (e NameRenewedEvent) Kind() ChainEventKind { return KindNameRenewed }
func (e NameRenewedEvent) Meta() EventMeta      { return e.EventMeta }
