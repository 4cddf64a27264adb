package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"ens_manager/internal/app/port"
	"ens_manager/internal/domain/entity"
	"ens_manager/internal/infrastructure/configloader"
	"ens_manager/internal/pkg/metrics"
)

// ResolutionService resolves names to addresses across networks. Source
// priority per network: the canonical chain's network-specific text record,
// the resolver's CCIP-Read extension, then the canonical-chain addr record.
// Every step's transport failure counts as "this step yielded nothing";
// only total exhaustion produces an empty result, never an error.
type ResolutionService struct {
	gateways  port.GatewayProvider
	directory port.NetworkDirectory
	logger    port.Logger

	cache         *gocache.Cache
	maxConcurrent int
	rpcTimeout    time.Duration
}

// NewResolutionService creates the service with its own TTL cache; cached
// entries are evicted by time only, never by event.
func NewResolutionService(
	gateways port.GatewayProvider,
	directory port.NetworkDirectory,
	l port.Logger,
	cfg *configloader.Config,
) *ResolutionService {
	ttl := time.Duration(cfg.Resolution.CacheTTLSeconds) * time.Second
	maxConcurrent := cfg.Resolution.MaxConcurrentRoutines
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &ResolutionService{
		gateways:      gateways,
		directory:     directory,
		logger:        l,
		cache:         gocache.New(ttl, 2*ttl),
		maxConcurrent: maxConcurrent,
		rpcTimeout:    time.Duration(cfg.Resolution.RPCCallTimeoutSeconds) * time.Second,
	}
}

// networkRecordKey is the text-record key namespacing a network's address.
func networkRecordKey(network string) string {
	return fmt.Sprintf("network.%s.address", network)
}

func cacheKey(name, network string) string {
	return name + "|" + network
}

// validAddress reports whether s is a well-formed, non-zero hex address.
func validAddress(s string) bool {
	s = strings.TrimSpace(s)
	return common.IsHexAddress(s) && common.HexToAddress(s) != (common.Address{})
}

// Resolve resolves name on the given network (the current network when
// empty). The result always passes the address-format check or carries no
// address at all.
func (s *ResolutionService) Resolve(ctx context.Context, name, network string) *entity.ResolutionResult {
	if network == "" {
		network = s.directory.Current()
	}

	if cached, found := s.cache.Get(cacheKey(name, network)); found {
		metrics.ResolutionCacheHits.Inc()
		return cached.(*entity.ResolutionResult)
	}

	result := s.resolveUncached(ctx, name, network)
	s.cache.Set(cacheKey(name, network), result, gocache.DefaultExpiration)

	if result.Resolved() {
		metrics.ResolutionsTotal.WithLabelValues(network, string(result.Type)).Inc()
	} else {
		metrics.ResolutionFailures.WithLabelValues(network).Inc()
	}
	return result
}

func (s *ResolutionService) resolveUncached(ctx context.Context, name, network string) *entity.ResolutionResult {
	result := &entity.ResolutionResult{
		Network:    network,
		Metadata:   map[string]string{},
		ResolvedAt: time.Now().UTC(),
	}

	canonical, ok := s.gateways.CanonicalGateway()
	if !ok {
		s.logger.Warn("Canonical network unavailable, cannot resolve", "name", name, "network", network)
		return result
	}

	callCtx, cancel := context.WithTimeout(ctx, s.rpcTimeout)
	defer cancel()

	// Highest priority: the network-specific text record on the canonical chain.
	key := networkRecordKey(network)
	if record, err := canonical.Text(callCtx, name, key); err == nil {
		if validAddress(record) {
			result.Address = common.HexToAddress(strings.TrimSpace(record)).Hex()
			result.Type = entity.ResolutionNetworkSpecific
			result.Metadata["source"] = "text_record"
			result.Metadata["key"] = key
			return result
		}
	} else {
		s.logger.Debug("Network-specific record lookup yielded nothing", "name", name, "network", network, "error", err)
	}

	// Canonical chain: the default top-level lookup. A zero address falls
	// through to CCIP-Read.
	if network == entity.CanonicalNetwork {
		if addr, err := canonical.AddressRecord(callCtx, name); err == nil && addr != (common.Address{}) {
			result.Address = addr.Hex()
			result.Type = entity.ResolutionMainnetFallback
			result.Metadata["source"] = "default_resolution"
			return result
		} else if err != nil {
			s.logger.Debug("Default resolution yielded nothing", "name", name, "error", err)
		}
	}

	// CCIP-Read, when the resolver advertises it, executed against the
	// target network's backend with the resolver address from the canonical
	// registry.
	if supportsCCIP, err := canonical.SupportsInterface(callCtx, name, ccipInterfaceID); err == nil && supportsCCIP {
		if addr := s.offchainResolve(callCtx, canonical, name, network); addr != "" {
			result.Address = addr
			result.Type = entity.ResolutionCCIPRead
			result.Metadata["source"] = "ccip_read"
			return result
		}
	}
	if network == entity.CanonicalNetwork {
		return result
	}

	// Last resort for non-canonical networks: the canonical-chain record.
	if addr, err := canonical.AddressRecord(callCtx, name); err == nil && addr != (common.Address{}) {
		result.Address = addr.Hex()
		result.Type = entity.ResolutionMainnetFallback
		result.Metadata["source"] = "mainnet_resolution"
		return result
	} else if err != nil {
		s.logger.Debug("Mainnet fallback yielded nothing", "name", name, "network", network, "error", err)
	}

	return result
}

func (s *ResolutionService) offchainResolve(ctx context.Context, canonical port.ENSGateway, name, network string) string {
	resolverAddr, err := canonical.ResolverAddress(ctx, name)
	if err != nil || resolverAddr == (common.Address{}) {
		return ""
	}

	gw, ok := s.gateways.Gateway(network)
	if !ok {
		// The target chain is not live; the canonical backend can still
		// execute the off-chain read.
		gw = canonical
	}

	addr, err := gw.OffchainResolve(ctx, resolverAddr, name, network)
	if err != nil {
		s.logger.Debug("CCIP-Read yielded nothing", "name", name, "network", network, "error", err)
		return ""
	}
	if addr == (common.Address{}) {
		return ""
	}
	return addr.Hex()
}

// ReverseResolve maps an address back to its primary name. An invalid
// address returns empty immediately, without any network call.
func (s *ResolutionService) ReverseResolve(ctx context.Context, address string) string {
	if !common.IsHexAddress(address) {
		return ""
	}

	canonical, ok := s.gateways.CanonicalGateway()
	if !ok {
		return ""
	}

	callCtx, cancel := context.WithTimeout(ctx, s.rpcTimeout)
	defer cancel()

	name, err := canonical.ReverseName(callCtx, common.HexToAddress(address))
	if err != nil {
		s.logger.Debug("Reverse resolution yielded nothing", "address", address, "error", err)
		return ""
	}
	return name
}

// GetAllNetworkAddresses resolves name on every available network
// concurrently and merges the results. One network's failure leaves its
// entry unresolved; it never fails the whole call.
func (s *ResolutionService) GetAllNetworkAddresses(ctx context.Context, name string) map[string]*entity.ResolutionResult {
	networks := s.directory.AvailableNetworks()
	results := make(map[string]*entity.ResolutionResult, len(networks))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for _, network := range networks {
		g.Go(func() error {
			res := s.Resolve(gctx, name, network)
			mu.Lock()
			results[network] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; partial failures live in the map

	return results
}

// BatchResolve resolves several names in parallel on the current network.
// The returned map has exactly one entry per input name; unresolvable
// names map to the empty string.
func (s *ResolutionService) BatchResolve(ctx context.Context, names []string) map[string]string {
	results := make(map[string]string, len(names))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for _, name := range names {
		g.Go(func() error {
			res := s.Resolve(gctx, name, "")
			mu.Lock()
			results[name] = res.Address
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// BatchReverseResolve reverse-resolves several addresses in parallel.
func (s *ResolutionService) BatchReverseResolve(ctx context.Context, addresses []string) map[string]string {
	results := make(map[string]string, len(addresses))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for _, address := range addresses {
		g.Go(func() error {
			name := s.ReverseResolve(gctx, address)
			mu.Lock()
			results[address] = name
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// ResolveGlobally assembles the fan-out resolution of name across every
// available network, with resolver metadata. Cached under the name for the
// same bounded duration as single resolutions.
func (s *ResolutionService) ResolveGlobally(ctx context.Context, name string) *entity.GlobalResolution {
	globalKey := cacheKey(name, "~global")
	if cached, found := s.cache.Get(globalKey); found {
		metrics.ResolutionCacheHits.Inc()
		return cached.(*entity.GlobalResolution)
	}

	global := &entity.GlobalResolution{
		Name:        name,
		Resolutions: s.GetAllNetworkAddresses(ctx, name),
		Timestamp:   time.Now().UTC(),
	}

	if canonical, ok := s.gateways.CanonicalGateway(); ok {
		callCtx, cancel := context.WithTimeout(ctx, s.rpcTimeout)
		defer cancel()
		if resolverAddr, err := canonical.ResolverAddress(callCtx, name); err == nil && resolverAddr != (common.Address{}) {
			global.ResolverAddress = resolverAddr.Hex()
		}
		if supports, err := canonical.SupportsInterface(callCtx, name, ccipInterfaceID); err == nil {
			global.SupportsCCIP = supports
		}
	}

	s.cache.Set(globalKey, global, gocache.DefaultExpiration)
	return global
}

// ValidateNetworkSetup checks resolver presence, text-record interface
// support and per-network record validity, accumulating every issue found
// rather than short-circuiting.
func (s *ResolutionService) ValidateNetworkSetup(ctx context.Context, name string) []string {
	var issues []string

	canonical, ok := s.gateways.CanonicalGateway()
	if !ok {
		return append(issues, "Canonical network not available")
	}

	callCtx, cancel := context.WithTimeout(ctx, s.rpcTimeout)
	defer cancel()

	resolverAddr, err := canonical.ResolverAddress(callCtx, name)
	if err != nil || resolverAddr == (common.Address{}) {
		return append(issues, "No resolver set")
	}

	if supportsText, err := canonical.SupportsInterface(callCtx, name, textInterfaceID); err != nil {
		issues = append(issues, "Cannot verify resolver interface support")
	} else if !supportsText {
		issues = append(issues, "Resolver doesn't support text records")
	}

	// Records are validated for every configured network, not only the live
	// set; a record for a currently offline chain can still be malformed.
	for _, def := range s.directory.ConfiguredNetworks() {
		record, err := canonical.Text(callCtx, name, networkRecordKey(def.Identifier))
		if err != nil || record == "" {
			continue
		}
		if !common.IsHexAddress(strings.TrimSpace(record)) {
			issues = append(issues, fmt.Sprintf("Invalid address format for %s", def.Identifier))
		}
	}

	return issues
}

// VerifyResolution runs the per-network consistency checks for name.
func (s *ResolutionService) VerifyResolution(ctx context.Context, name, network string) []entity.ResolutionCheck {
	var checks []entity.ResolutionCheck

	canonical, ok := s.gateways.CanonicalGateway()
	if !ok {
		return append(checks, entity.ResolutionCheck{
			Type: "resolver_check", Status: "failed", Message: "Canonical network not available",
		})
	}

	callCtx, cancel := context.WithTimeout(ctx, s.rpcTimeout)
	defer cancel()

	resolverAddr, err := canonical.ResolverAddress(callCtx, name)
	if err != nil || resolverAddr == (common.Address{}) {
		return append(checks, entity.ResolutionCheck{
			Type: "resolver_check", Status: "failed", Message: "No resolver set",
		})
	}

	supportsCCIP, err := canonical.SupportsInterface(callCtx, name, ccipInterfaceID)
	switch {
	case err != nil:
		checks = append(checks, entity.ResolutionCheck{
			Type: "ccip_support", Status: "error",
			Message: fmt.Sprintf("Cannot verify CCIP-Read support: %v", err),
		})
	case supportsCCIP:
		checks = append(checks, entity.ResolutionCheck{Type: "ccip_support", Status: "passed", Message: "CCIP-Read supported"})
	default:
		checks = append(checks, entity.ResolutionCheck{Type: "ccip_support", Status: "warning", Message: "CCIP-Read not supported"})
	}

	record, err := canonical.Text(callCtx, name, networkRecordKey(network))
	switch {
	case err != nil:
		checks = append(checks, entity.ResolutionCheck{
			Type: "network_resolution", Status: "error",
			Message: fmt.Sprintf("Error checking network resolution: %v", err),
		})
	case record == "":
		// No record set: nothing to verify.
	case common.IsHexAddress(strings.TrimSpace(record)):
		checks = append(checks, entity.ResolutionCheck{
			Type: "network_resolution", Status: "passed",
			Message: fmt.Sprintf("Valid network-specific address: %s", strings.TrimSpace(record)),
		})
	default:
		checks = append(checks, entity.ResolutionCheck{
			Type: "network_resolution", Status: "failed",
			Message: "Invalid network-specific address format",
		})
	}

	if supportsCCIP {
		if addr := s.offchainResolve(callCtx, canonical, name, network); addr != "" {
			checks = append(checks, entity.ResolutionCheck{Type: "ccip_resolution", Status: "passed", Message: "CCIP-Read resolution successful"})
		} else {
			checks = append(checks, entity.ResolutionCheck{Type: "ccip_resolution", Status: "warning", Message: "No CCIP-Read resolution result"})
		}
	}

	return checks
}
