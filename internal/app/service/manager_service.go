package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"ens_manager/internal/app/port"
	"ens_manager/internal/domain/entity"
	"ens_manager/internal/infrastructure/ens"
	"ens_manager/internal/pkg/contenthash"
	"ens_manager/internal/pkg/ensname"
)

// detailTextKeys are the well-known text records collected into NameDetails.
var detailTextKeys = []string{
	"email", "url", "avatar", "description", "notice", "keywords",
	"com.twitter", "com.github",
}

// ManagerService is the read-side facade: it aggregates registry, resolver,
// controller-log and activity data into per-name reports, and exposes the
// network directory. Individual read failures leave the affected field
// empty instead of failing the aggregate.
type ManagerService struct {
	gateways   port.GatewayProvider
	directory  port.NetworkDirectory
	resolution *ResolutionService
	activity   port.ActivityTracker
	explorer   port.ExplorerClient
	logger     port.Logger
}

// NewManagerService creates the facade. explorer may be nil, in which case
// activity reports carry stored events only.
func NewManagerService(
	gateways port.GatewayProvider,
	directory port.NetworkDirectory,
	resolution *ResolutionService,
	activity port.ActivityTracker,
	explorer port.ExplorerClient,
	l port.Logger,
) *ManagerService {
	return &ManagerService{
		gateways:   gateways,
		directory:  directory,
		resolution: resolution,
		activity:   activity,
		explorer:   explorer,
		logger:     l,
	}
}

// ValidateName normalizes raw and reports every syntax violation.
func (s *ManagerService) ValidateName(raw string) (bool, string, []string) {
	return ensname.Normalize(raw)
}

// AvailableNetworks lists the identifiers of every live network.
func (s *ManagerService) AvailableNetworks() []string {
	return s.directory.AvailableNetworks()
}

// CurrentNetwork returns the identifier used for unqualified operations.
func (s *ManagerService) CurrentNetwork() string {
	return s.directory.Current()
}

// SetNetwork switches the current network. Returns false without any state
// change when the network is not live.
func (s *ManagerService) SetNetwork(networkID string) bool {
	return s.directory.SetCurrent(networkID)
}

// NetworkDefinition returns the static metadata for a network identifier.
func (s *ManagerService) NetworkDefinition(networkID string) (entity.NetworkDefinition, bool) {
	return s.directory.Definition(networkID)
}

func (s *ManagerService) canonicalGateway() (port.ENSGateway, error) {
	gw, ok := s.gateways.CanonicalGateway()
	if !ok {
		return nil, fmt.Errorf("canonical network not available")
	}
	return gw, nil
}

// Owner returns name's registry owner, or empty when unowned.
func (s *ManagerService) Owner(ctx context.Context, name string) (string, error) {
	gw, err := s.canonicalGateway()
	if err != nil {
		return "", err
	}
	owner, err := gw.Owner(ctx, name)
	if err != nil {
		return "", err
	}
	if owner == (common.Address{}) {
		return "", nil
	}
	return owner.Hex(), nil
}

// Resolver returns name's resolver address, or empty when none is set.
func (s *ManagerService) Resolver(ctx context.Context, name string) (string, error) {
	gw, err := s.canonicalGateway()
	if err != nil {
		return "", err
	}
	addr, err := gw.ResolverAddress(ctx, name)
	if err != nil {
		return "", err
	}
	if addr == (common.Address{}) {
		return "", nil
	}
	return addr.Hex(), nil
}

// TTL returns the registry TTL of name's node.
func (s *ManagerService) TTL(ctx context.Context, name string) (uint64, error) {
	gw, err := s.canonicalGateway()
	if err != nil {
		return 0, err
	}
	return gw.TTL(ctx, name)
}

// TextRecord reads a single text record.
func (s *ManagerService) TextRecord(ctx context.Context, name, key string) (string, error) {
	gw, err := s.canonicalGateway()
	if err != nil {
		return "", err
	}
	return gw.Text(ctx, name, key)
}

// ContentHash returns name's contenthash rendered as a URI (ipfs://, bzz://
// or raw hex), or empty when none is set.
func (s *ManagerService) ContentHash(ctx context.Context, name string) (string, error) {
	gw, err := s.canonicalGateway()
	if err != nil {
		return "", err
	}
	raw, err := gw.ContentHash(ctx, name)
	if err != nil {
		return "", err
	}
	return contenthash.Decode(raw), nil
}

// RegistrationStatus gives a quick ownership/resolution snapshot for name.
func (s *ManagerService) RegistrationStatus(ctx context.Context, name string) entity.RegistrationStatus {
	valid, normalized, _ := ensname.Normalize(name)
	status := entity.RegistrationStatus{Name: normalized, Valid: valid}

	gw, err := s.canonicalGateway()
	if err != nil {
		return status
	}

	if available, err := gw.Available(ctx, ensname.StripSuffix(normalized)); err == nil {
		status.Available = available
	} else {
		s.logger.Debug("Availability check yielded nothing", "name", normalized, "error", err)
	}

	if owner, err := gw.Owner(ctx, normalized); err == nil && owner != (common.Address{}) {
		status.Owner = owner.Hex()
	}
	if resolver, err := gw.ResolverAddress(ctx, normalized); err == nil && resolver != (common.Address{}) {
		status.Resolver = resolver.Hex()
	}
	if addr, err := gw.AddressRecord(ctx, normalized); err == nil && addr != (common.Address{}) {
		status.Address = addr.Hex()
	}
	return status
}

// ExpiryDate computes name's expiry as the latest expires value observed
// across registration and renewal events. Nil when no such event exists.
func (s *ManagerService) ExpiryDate(ctx context.Context, name string) (*time.Time, error) {
	gw, err := s.canonicalGateway()
	if err != nil {
		return nil, err
	}
	events, err := gw.RegistrationEvents(ctx, ensname.StripSuffix(name))
	if err != nil {
		return nil, err
	}

	var latest time.Time
	for _, ev := range events {
		switch e := ev.(type) {
		case entity.NameRegisteredEvent:
			if e.Expires.After(latest) {
				latest = e.Expires
			}
		case entity.NameRenewedEvent:
			if e.Expires.After(latest) {
				latest = e.Expires
			}
		}
	}
	if latest.IsZero() {
		return nil, nil
	}
	return &latest, nil
}

// NameState classifies name's lifecycle from on-chain reads.
func (s *ManagerService) NameState(ctx context.Context, name string) (entity.NameState, error) {
	gw, err := s.canonicalGateway()
	if err != nil {
		return "", err
	}

	owner, err := gw.Owner(ctx, name)
	if err != nil {
		return "", err
	}
	if owner == (common.Address{}) {
		return entity.StateUnregistered, nil
	}

	if expiry, err := s.ExpiryDate(ctx, name); err == nil && expiry != nil && expiry.Before(time.Now().UTC()) {
		return entity.StateExpired, nil
	}

	if addr, err := gw.AddressRecord(ctx, name); err == nil && addr != (common.Address{}) {
		return entity.StateResolved, nil
	}
	return entity.StateRegistered, nil
}

// NameDetails assembles the full per-name report: ownership, resolution,
// well-known text records, contenthash, expiry and subdomains.
func (s *ManagerService) NameDetails(ctx context.Context, name string) (*entity.NameDetails, error) {
	gw, err := s.canonicalGateway()
	if err != nil {
		return nil, err
	}

	_, normalized, _ := ensname.Normalize(name)
	details := &entity.NameDetails{Name: normalized}

	if available, err := gw.Available(ctx, ensname.StripSuffix(normalized)); err == nil {
		details.Available = available
	}
	if owner, err := gw.Owner(ctx, normalized); err == nil && owner != (common.Address{}) {
		details.Owner = owner.Hex()
	}
	if resolver, err := gw.ResolverAddress(ctx, normalized); err == nil && resolver != (common.Address{}) {
		details.Resolver = resolver.Hex()
	}
	if addr, err := gw.AddressRecord(ctx, normalized); err == nil && addr != (common.Address{}) {
		details.Address = addr.Hex()
	}
	if ttl, err := gw.TTL(ctx, normalized); err == nil {
		details.TTL = ttl
	}
	if raw, err := gw.ContentHash(ctx, normalized); err == nil && len(raw) > 0 {
		details.ContentHash = contenthash.Decode(raw)
	}

	if details.Resolver != "" {
		records := make(map[string]string)
		for _, key := range detailTextKeys {
			value, err := gw.Text(ctx, normalized, key)
			if err != nil || value == "" {
				continue
			}
			records[key] = value
		}
		if len(records) > 0 {
			details.TextRecords = records
		}
	}

	if expiry, err := s.ExpiryDate(ctx, normalized); err == nil {
		details.ExpiryDate = expiry
	}
	if subs, err := gw.Subdomains(ctx, normalized); err == nil {
		details.Subdomains = subs
	}

	switch {
	case details.Owner == "":
		details.State = entity.StateUnregistered
	case details.ExpiryDate != nil && details.ExpiryDate.Before(time.Now().UTC()):
		details.State = entity.StateExpired
	case details.Address != "":
		details.State = entity.StateResolved
	default:
		details.State = entity.StateRegistered
	}

	return details, nil
}

// NameHistory returns name's decoded ownership and record-change events in
// block order. Transfer events are chained: each transfer's From is the
// previous transfer's recipient.
func (s *ManagerService) NameHistory(ctx context.Context, name string) ([]entity.ChainEvent, error) {
	gw, err := s.canonicalGateway()
	if err != nil {
		return nil, err
	}
	events, err := gw.NameHistory(ctx, name)
	if err != nil {
		return nil, err
	}

	previousOwner := ""
	for i, ev := range events {
		if transfer, ok := ev.(entity.TransferEvent); ok {
			transfer.From = previousOwner
			previousOwner = transfer.To
			events[i] = transfer
		}
	}
	return events, nil
}

// Subdomains lists the subnodes observed under name with their latest owner.
func (s *ManagerService) Subdomains(ctx context.Context, name string) ([]entity.SubdomainRecord, error) {
	gw, err := s.canonicalGateway()
	if err != nil {
		return nil, err
	}
	return gw.Subdomains(ctx, name)
}

// ReverseRecords reverse-resolves several addresses at once.
func (s *ManagerService) ReverseRecords(ctx context.Context, addresses []string) map[string]string {
	return s.resolution.BatchReverseResolve(ctx, addresses)
}

// ActivityReport merges name's stored activity log with the transactions
// reconstructed from the block explorer, both restricted to the inclusive
// [start, end] range. A failing explorer degrades the report to stored
// events only.
func (s *ManagerService) ActivityReport(ctx context.Context, name string, start, end *time.Time) (*entity.ActivityReport, error) {
	events, err := s.activity.Activities(name, start, end)
	if err != nil {
		return nil, err
	}

	report := &entity.ActivityReport{
		Name:        name,
		PeriodStart: start,
		PeriodEnd:   end,
		Events:      events,
	}

	if s.explorer == nil {
		return report, nil
	}

	txs, err := s.explorerTransactions(ctx, name)
	if err != nil {
		s.logger.Warn("Explorer history unavailable", "name", name, "error", err)
		return report, nil
	}
	report.Transactions = filterTransactions(txs, start, end)
	return report, nil
}

func (s *ManagerService) explorerTransactions(ctx context.Context, name string) ([]entity.ExplorerTransaction, error) {
	nodeHex, err := ens.NameHashHex(name)
	if err != nil {
		return nil, err
	}

	resolverAddr := ""
	if gw, gerr := s.canonicalGateway(); gerr == nil {
		if addr, aerr := gw.ResolverAddress(ctx, name); aerr == nil && addr != (common.Address{}) {
			resolverAddr = addr.Hex()
		}
	}

	return s.explorer.TransactionHistory(ctx, ens.RegistryAddress, resolverAddr, nodeHex)
}

func filterTransactions(txs []entity.ExplorerTransaction, start, end *time.Time) []entity.ExplorerTransaction {
	filtered := make([]entity.ExplorerTransaction, 0, len(txs))
	for _, tx := range txs {
		if start != nil && tx.Timestamp.Before(*start) {
			continue
		}
		if end != nil && tx.Timestamp.After(*end) {
			continue
		}
		filtered = append(filtered, tx)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.After(filtered[j].Timestamp)
	})
	return filtered
}

// NameHash returns the 0x-prefixed namehash of name.
func (s *ManagerService) NameHash(name string) (string, error) {
	return ens.NameHashHex(name)
}

// DecodeContenthashInput parses a 0x-prefixed hex contenthash payload into
// raw bytes for the writer.
func DecodeContenthashInput(value string) ([]byte, error) {
	if len(value) >= 2 && (value[:2] == "0x" || value[:2] == "0X") {
		value = value[2:]
	}
	raw, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid contenthash hex: %w", err)
	}
	return raw, nil
}
