package service

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"ens_manager/internal/app/port"
	"ens_manager/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Error(msg string, args ...any) {}

// fakeGateway is an in-memory port.ENSGateway whose behavior is driven by
// its fields. Every method records its invocation for call-count assertions.
type fakeGateway struct {
	mu    sync.Mutex
	calls map[string]int

	ownerAddr     common.Address
	resolverAddr  common.Address
	ttl           uint64
	addrRecord    common.Address
	reverseName   string
	textRecords   map[string]string
	contentHash   []byte
	supports      map[[4]byte]bool
	offchainAddr  common.Address
	available     bool
	rentPrice     *big.Int
	gasPrice      *big.Int
	receiptStatus uint64
	history       []entity.ChainEvent
	subdomains    []entity.SubdomainRecord
	regEvents     []entity.ChainEvent
	logs          []entity.ChainEvent
	nextBlock     uint64
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		calls:         make(map[string]int),
		textRecords:   make(map[string]string),
		supports:      make(map[[4]byte]bool),
		receiptStatus: types.ReceiptStatusSuccessful,
		rentPrice:     big.NewInt(0),
		gasPrice:      big.NewInt(1),
	}
}

func (g *fakeGateway) record(method string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[method]++
}

func (g *fakeGateway) callCount(method string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[method]
}

func (g *fakeGateway) receipt() *types.Receipt {
	return &types.Receipt{Status: g.receiptStatus, TxHash: common.HexToHash("0x01")}
}

func (g *fakeGateway) Owner(ctx context.Context, name string) (common.Address, error) {
	g.record("Owner")
	return g.ownerAddr, nil
}

func (g *fakeGateway) ResolverAddress(ctx context.Context, name string) (common.Address, error) {
	g.record("ResolverAddress")
	return g.resolverAddr, nil
}

func (g *fakeGateway) TTL(ctx context.Context, name string) (uint64, error) {
	g.record("TTL")
	return g.ttl, nil
}

func (g *fakeGateway) AddressRecord(ctx context.Context, name string) (common.Address, error) {
	g.record("AddressRecord")
	return g.addrRecord, nil
}

func (g *fakeGateway) ReverseName(ctx context.Context, address common.Address) (string, error) {
	g.record("ReverseName")
	return g.reverseName, nil
}

func (g *fakeGateway) Text(ctx context.Context, name, key string) (string, error) {
	g.record("Text")
	return g.textRecords[key], nil
}

func (g *fakeGateway) ContentHash(ctx context.Context, name string) ([]byte, error) {
	g.record("ContentHash")
	return g.contentHash, nil
}

func (g *fakeGateway) SupportsInterface(ctx context.Context, name string, interfaceID [4]byte) (bool, error) {
	g.record("SupportsInterface")
	return g.supports[interfaceID], nil
}

func (g *fakeGateway) OffchainResolve(ctx context.Context, resolverAddr common.Address, name, network string) (common.Address, error) {
	g.record("OffchainResolve")
	return g.offchainAddr, nil
}

func (g *fakeGateway) Available(ctx context.Context, label string) (bool, error) {
	g.record("Available")
	return g.available, nil
}

func (g *fakeGateway) RentPrice(ctx context.Context, label string, duration *big.Int) (*big.Int, error) {
	g.record("RentPrice")
	return g.rentPrice, nil
}

func (g *fakeGateway) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	g.record("SuggestGasPrice")
	return g.gasPrice, nil
}

func (g *fakeGateway) Register(ctx context.Context, opts *bind.TransactOpts, label string, owner common.Address, duration *big.Int, secret [32]byte) (*types.Receipt, error) {
	g.record("Register")
	return g.receipt(), nil
}

func (g *fakeGateway) Renew(ctx context.Context, opts *bind.TransactOpts, label string, duration *big.Int) (*types.Receipt, error) {
	g.record("Renew")
	return g.receipt(), nil
}

func (g *fakeGateway) SetOwner(ctx context.Context, opts *bind.TransactOpts, name string, newOwner common.Address) (*types.Receipt, error) {
	g.record("SetOwner")
	return g.receipt(), nil
}

func (g *fakeGateway) SetSubnodeOwner(ctx context.Context, opts *bind.TransactOpts, parent, label string, owner common.Address) (*types.Receipt, error) {
	g.record("SetSubnodeOwner")
	return g.receipt(), nil
}

func (g *fakeGateway) SetAddress(ctx context.Context, opts *bind.TransactOpts, name string, addr common.Address) (*types.Receipt, error) {
	g.record("SetAddress")
	return g.receipt(), nil
}

func (g *fakeGateway) SetText(ctx context.Context, opts *bind.TransactOpts, name, key, value string) (*types.Receipt, error) {
	g.record("SetText")
	return g.receipt(), nil
}

func (g *fakeGateway) SetContenthash(ctx context.Context, opts *bind.TransactOpts, name string, hash []byte) (*types.Receipt, error) {
	g.record("SetContenthash")
	return g.receipt(), nil
}

func (g *fakeGateway) NameHistory(ctx context.Context, name string) ([]entity.ChainEvent, error) {
	g.record("NameHistory")
	return g.history, nil
}

func (g *fakeGateway) Subdomains(ctx context.Context, name string) ([]entity.SubdomainRecord, error) {
	g.record("Subdomains")
	return g.subdomains, nil
}

func (g *fakeGateway) RegistrationEvents(ctx context.Context, label string) ([]entity.ChainEvent, error) {
	g.record("RegistrationEvents")
	return g.regEvents, nil
}

func (g *fakeGateway) LogsSince(ctx context.Context, name string, fromBlock uint64) ([]entity.ChainEvent, uint64, error) {
	g.record("LogsSince")
	return g.logs, g.nextBlock, nil
}

// fakeProvider serves one gateway for every network.
type fakeProvider struct {
	gw        port.ENSGateway
	canonical bool
	networks  map[string]port.ENSGateway
}

func newFakeProvider(gw port.ENSGateway) *fakeProvider {
	return &fakeProvider{gw: gw, canonical: true, networks: map[string]port.ENSGateway{}}
}

func (p *fakeProvider) Gateway(networkID string) (port.ENSGateway, bool) {
	if gw, ok := p.networks[networkID]; ok {
		return gw, true
	}
	return p.gw, p.canonical
}

func (p *fakeProvider) CanonicalGateway() (port.ENSGateway, bool) {
	return p.gw, p.canonical
}

// fakeDirectory is a static network directory. configured lists networks
// known but not live; it defaults to the live set when empty.
type fakeDirectory struct {
	networks   []string
	configured []string
	current    string
}

func newFakeDirectory(networks ...string) *fakeDirectory {
	current := entity.CanonicalNetwork
	if len(networks) > 0 {
		current = networks[0]
	}
	return &fakeDirectory{networks: networks, current: current}
}

func (d *fakeDirectory) AvailableNetworks() []string { return d.networks }
func (d *fakeDirectory) Current() string             { return d.current }

func (d *fakeDirectory) SetCurrent(networkID string) bool {
	for _, n := range d.networks {
		if n == networkID {
			d.current = networkID
			return true
		}
	}
	return false
}

func (d *fakeDirectory) ConfiguredNetworks() []entity.NetworkDefinition {
	ids := d.configured
	if len(ids) == 0 {
		ids = d.networks
	}
	defs := make([]entity.NetworkDefinition, 0, len(ids))
	for _, id := range ids {
		defs = append(defs, entity.NetworkDefinition{ChainID: 1, Name: id, Identifier: id})
	}
	return defs
}

func (d *fakeDirectory) Definition(networkID string) (entity.NetworkDefinition, bool) {
	for _, n := range d.networks {
		if n == networkID {
			return entity.NetworkDefinition{ChainID: 1, Name: networkID, Identifier: networkID}, true
		}
	}
	return entity.NetworkDefinition{}, false
}

// fakeCreds is a static credential store.
type fakeCreds struct {
	providerURL string
	accountKey  string
	explorerKey string
}

func (c *fakeCreds) ActiveProviderURL() (string, bool) {
	return c.providerURL, c.providerURL != ""
}

func (c *fakeCreds) ActiveAccountKey() (string, bool) {
	return c.accountKey, c.accountKey != ""
}

func (c *fakeCreds) ExplorerAPIKey() (string, bool) {
	return c.explorerKey, c.explorerKey != ""
}

// fakeTracker records activity in memory.
type fakeTracker struct {
	mu     sync.Mutex
	events []entity.ActivityEvent
	names  []string
}

func (t *fakeTracker) AddActivity(name, eventType string, data map[string]string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, entity.ActivityEvent{Type: eventType, Data: data})
	t.names = append(t.names, name)
	return nil
}

func (t *fakeTracker) Activities(name string, start, end *time.Time) ([]entity.ActivityEvent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]entity.ActivityEvent(nil), t.events...), nil
}
