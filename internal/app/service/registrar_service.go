package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/sync/errgroup"

	"ens_manager/internal/app/port"
	"ens_manager/internal/domain/entity"
	"ens_manager/internal/infrastructure/configloader"
	"ens_manager/internal/pkg/ensname"
	"ens_manager/internal/pkg/metrics"
)

const secondsPerYear = 31536000

// Precondition and validation failure messages surfaced to callers.
const (
	msgNoAccount      = "No account configured"
	msgNotAvailable   = "Name is not available"
	msgNotRegistered  = "Name is not registered"
	msgInvalidTarget  = "Invalid target address"
	msgNotOwner       = "You don't own this name"
	msgNotParentOwner = "You don't own the parent domain"
	msgNoResolver     = "No resolver set for this name"
	msgTxFailed       = "Transaction failed"
)

// RegistrarService performs every state-changing operation. Each write
// follows the same lifecycle: validate preconditions, compute value/gas,
// build+sign+submit, block until the receipt confirms inclusion, then map
// the receipt status to a TransactionOutcome. Failed transactions are never
// retried here; resubmission is the caller's decision.
//
// Writes from one signing account must not run concurrently: the
// nonce-fetch-then-submit sequence is not atomic.
type RegistrarService struct {
	gateways  port.GatewayProvider
	directory port.NetworkDirectory
	creds     port.CredentialStore
	activity  port.ActivityTracker
	logger    port.Logger
	cfg       *configloader.Config

	maxConcurrent int
}

// NewRegistrarService creates the writer service.
func NewRegistrarService(
	gateways port.GatewayProvider,
	directory port.NetworkDirectory,
	creds port.CredentialStore,
	activity port.ActivityTracker,
	l port.Logger,
	cfg *configloader.Config,
) *RegistrarService {
	maxConcurrent := cfg.Resolution.MaxConcurrentRoutines
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &RegistrarService{
		gateways:      gateways,
		directory:     directory,
		creds:         creds,
		activity:      activity,
		logger:        l,
		cfg:           cfg,
		maxConcurrent: maxConcurrent,
	}
}

// signer builds transact opts from the configured credential. The bool is
// false when no account is configured; a precondition gap, not an error.
func (s *RegistrarService) signer(ctx context.Context, gasLimit uint64) (*bind.TransactOpts, common.Address, bool, error) {
	key, ok := s.creds.ActiveAccountKey()
	if !ok {
		return nil, common.Address{}, false, nil
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(key, "0x"))
	if err != nil {
		return nil, common.Address{}, true, fmt.Errorf("invalid signing key: %w", err)
	}

	def, ok := s.directory.Definition(entity.CanonicalNetwork)
	if !ok {
		return nil, common.Address{}, true, fmt.Errorf("canonical network definition missing")
	}

	opts, err := bind.NewKeyedTransactorWithChainID(privateKey, new(big.Int).SetUint64(def.ChainID))
	if err != nil {
		return nil, common.Address{}, true, fmt.Errorf("failed to build transactor: %w", err)
	}
	opts.Context = ctx
	opts.GasLimit = gasLimit

	return opts, crypto.PubkeyToAddress(privateKey.PublicKey), true, nil
}

func (s *RegistrarService) canonicalGateway() (port.ENSGateway, error) {
	gw, ok := s.gateways.CanonicalGateway()
	if !ok {
		return nil, fmt.Errorf("canonical network not available")
	}
	return gw, nil
}

// outcome maps a mined receipt to the caller-facing result.
func (s *RegistrarService) outcome(operation, successMsg string, receipt *types.Receipt, err error) entity.TransactionOutcome {
	if err != nil {
		metrics.TransactionsTotal.WithLabelValues(operation, "error").Inc()
		return entity.Failure(fmt.Sprintf("Error %s: %v", operation, err))
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		metrics.TransactionsTotal.WithLabelValues(operation, "reverted").Inc()
		return entity.Failure(msgTxFailed)
	}
	metrics.TransactionsTotal.WithLabelValues(operation, "success").Inc()
	return entity.Confirmed(successMsg, receipt.TxHash.Hex())
}

func (s *RegistrarService) record(name, eventType string, data map[string]string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.AddActivity(name, eventType, data); err != nil {
		s.logger.Warn("Failed to record activity", "name", name, "type", eventType, "error", err)
	}
}

// CheckAvailable reports whether the name's label is open for registration.
func (s *RegistrarService) CheckAvailable(ctx context.Context, name string) (bool, error) {
	gw, err := s.canonicalGateway()
	if err != nil {
		return false, err
	}
	return gw.Available(ctx, ensname.StripSuffix(name))
}

// RegistrationCost returns the wei rent price for registering name for the
// given number of years.
func (s *RegistrarService) RegistrationCost(ctx context.Context, name string, durationYears int) (*big.Int, error) {
	if durationYears <= 0 {
		durationYears = s.cfg.Registrar.DefaultDurationYears
	}
	gw, err := s.canonicalGateway()
	if err != nil {
		return nil, err
	}
	duration := big.NewInt(int64(durationYears) * secondsPerYear)
	return gw.RentPrice(ctx, ensname.StripSuffix(name), duration)
}

// EstimateGasCosts reports the projected wei cost of each write operation
// at the backend's current gas price suggestion, keyed by operation name.
func (s *RegistrarService) EstimateGasCosts(ctx context.Context) (map[string]*big.Int, error) {
	gw, err := s.canonicalGateway()
	if err != nil {
		return nil, err
	}
	gasPrice, err := gw.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("gas price lookup failed: %w", err)
	}

	limits := map[string]uint64{
		"register":    s.cfg.Registrar.RegisterGasLimit,
		"renew":       s.cfg.Registrar.RenewGasLimit,
		"transfer":    s.cfg.Registrar.TransferGasLimit,
		"set_address": s.cfg.Registrar.RecordGasLimit,
		"set_text":    s.cfg.Registrar.RecordGasLimit,
	}
	estimates := make(map[string]*big.Int, len(limits))
	for op, limit := range limits {
		estimates[op] = new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(limit))
	}
	return estimates, nil
}

// Register registers name for durationYears, paying the controller's rent
// price. Fails without submitting when the name is unavailable.
func (s *RegistrarService) Register(ctx context.Context, name string, durationYears int) entity.TransactionOutcome {
	opts, owner, configured, err := s.signer(ctx, s.cfg.Registrar.RegisterGasLimit)
	if !configured {
		return entity.Failure(msgNoAccount)
	}
	if err != nil {
		return entity.Failure(err.Error())
	}

	gw, err := s.canonicalGateway()
	if err != nil {
		return entity.Failure(err.Error())
	}

	label := ensname.StripSuffix(name)
	if durationYears <= 0 {
		durationYears = s.cfg.Registrar.DefaultDurationYears
	}

	available, err := gw.Available(ctx, label)
	if err != nil {
		return entity.Failure(fmt.Sprintf("Error registering name: %v", err))
	}
	if !available {
		return entity.Failure(msgNotAvailable)
	}

	duration := big.NewInt(int64(durationYears) * secondsPerYear)
	cost, err := gw.RentPrice(ctx, label, duration)
	if err != nil {
		return entity.Failure(fmt.Sprintf("Error registering name: %v", err))
	}
	opts.Value = cost

	var secret [32]byte
	if _, err := rand.Read(secret[:]); err != nil {
		return entity.Failure(fmt.Sprintf("Error registering name: %v", err))
	}

	receipt, err := gw.Register(ctx, opts, label, owner, duration, secret)
	out := s.outcome("registering name", fmt.Sprintf("Successfully registered %s%s", label, ensname.Suffix), receipt, err)
	if out.Success {
		s.record(label+ensname.Suffix, entity.ActivityRegistered, map[string]string{
			"owner":          owner.Hex(),
			"duration_years": fmt.Sprintf("%d", durationYears),
			"cost_wei":       cost.String(),
			"tx_hash":        out.TxHash,
		})
	}
	return out
}

// Renew extends name's registration by durationYears, paying the
// controller's rent price. The name must currently be registered; renewing
// an open name fails before any transaction is built.
func (s *RegistrarService) Renew(ctx context.Context, name string, durationYears int) entity.TransactionOutcome {
	opts, _, configured, err := s.signer(ctx, s.cfg.Registrar.RenewGasLimit)
	if !configured {
		return entity.Failure(msgNoAccount)
	}
	if err != nil {
		return entity.Failure(err.Error())
	}

	gw, err := s.canonicalGateway()
	if err != nil {
		return entity.Failure(err.Error())
	}

	label := ensname.StripSuffix(name)
	if durationYears <= 0 {
		durationYears = s.cfg.Registrar.DefaultDurationYears
	}

	available, err := gw.Available(ctx, label)
	if err != nil {
		return entity.Failure(fmt.Sprintf("Error renewing name: %v", err))
	}
	if available {
		return entity.Failure(msgNotRegistered)
	}

	duration := big.NewInt(int64(durationYears) * secondsPerYear)
	cost, err := gw.RentPrice(ctx, label, duration)
	if err != nil {
		return entity.Failure(fmt.Sprintf("Error renewing name: %v", err))
	}
	opts.Value = cost

	receipt, err := gw.Renew(ctx, opts, label, duration)
	out := s.outcome("renewing name", fmt.Sprintf("Successfully renewed %s%s for %d years", label, ensname.Suffix, durationYears), receipt, err)
	if out.Success {
		s.record(label+ensname.Suffix, entity.ActivityRenewed, map[string]string{
			"duration_years": fmt.Sprintf("%d", durationYears),
			"cost_wei":       cost.String(),
			"tx_hash":        out.TxHash,
		})
	}
	return out
}

// Transfer hands ownership of name to toAddress. Requires the configured
// signer to be the current owner; issues no transaction otherwise.
func (s *RegistrarService) Transfer(ctx context.Context, name, toAddress string) entity.TransactionOutcome {
	opts, signerAddr, configured, err := s.signer(ctx, s.cfg.Registrar.TransferGasLimit)
	if !configured {
		return entity.Failure(msgNoAccount)
	}
	if err != nil {
		return entity.Failure(err.Error())
	}

	if !common.IsHexAddress(toAddress) {
		return entity.Failure(msgInvalidTarget)
	}
	target := common.HexToAddress(toAddress)

	gw, err := s.canonicalGateway()
	if err != nil {
		return entity.Failure(err.Error())
	}

	owner, err := gw.Owner(ctx, name)
	if err != nil {
		return entity.Failure(fmt.Sprintf("Error transferring name: %v", err))
	}
	if owner == (common.Address{}) || owner != signerAddr {
		return entity.Failure(msgNotOwner)
	}

	receipt, err := gw.SetOwner(ctx, opts, name, target)
	out := s.outcome("transferring name", fmt.Sprintf("Successfully transferred %s to %s", name, target.Hex()), receipt, err)
	if out.Success {
		s.record(name, entity.ActivityTransferred, map[string]string{
			"from": signerAddr.Hex(), "to": target.Hex(), "tx_hash": out.TxHash,
		})
	}
	return out
}

// SetAddress points name's addr record at address. Requires ownership and a
// registered resolver.
func (s *RegistrarService) SetAddress(ctx context.Context, name, address string) entity.TransactionOutcome {
	opts, signerAddr, configured, err := s.signer(ctx, s.cfg.Registrar.RecordGasLimit)
	if !configured {
		return entity.Failure(msgNoAccount)
	}
	if err != nil {
		return entity.Failure(err.Error())
	}

	if !common.IsHexAddress(address) {
		return entity.Failure(msgInvalidTarget)
	}
	target := common.HexToAddress(address)

	gw, err := s.canonicalGateway()
	if err != nil {
		return entity.Failure(err.Error())
	}

	owner, err := gw.Owner(ctx, name)
	if err != nil {
		return entity.Failure(fmt.Sprintf("Error setting address: %v", err))
	}
	if owner == (common.Address{}) || owner != signerAddr {
		return entity.Failure(msgNotOwner)
	}

	resolverAddr, err := gw.ResolverAddress(ctx, name)
	if err != nil {
		return entity.Failure(fmt.Sprintf("Error setting address: %v", err))
	}
	if resolverAddr == (common.Address{}) {
		return entity.Failure(msgNoResolver)
	}

	receipt, err := gw.SetAddress(ctx, opts, name, target)
	out := s.outcome("setting address", fmt.Sprintf("Successfully set address for %s to %s", name, target.Hex()), receipt, err)
	if out.Success {
		s.record(name, entity.ActivityAddressSet, map[string]string{
			"address": target.Hex(), "tx_hash": out.TxHash,
		})
	}
	return out
}

// SetTextRecord writes a text record under key for name. Requires ownership
// and a registered resolver.
func (s *RegistrarService) SetTextRecord(ctx context.Context, name, key, value string) entity.TransactionOutcome {
	opts, signerAddr, configured, err := s.signer(ctx, s.cfg.Registrar.RecordGasLimit)
	if !configured {
		return entity.Failure(msgNoAccount)
	}
	if err != nil {
		return entity.Failure(err.Error())
	}

	gw, err := s.canonicalGateway()
	if err != nil {
		return entity.Failure(err.Error())
	}

	owner, err := gw.Owner(ctx, name)
	if err != nil {
		return entity.Failure(fmt.Sprintf("Error setting text record: %v", err))
	}
	if owner == (common.Address{}) || owner != signerAddr {
		return entity.Failure(msgNotOwner)
	}

	resolverAddr, err := gw.ResolverAddress(ctx, name)
	if err != nil {
		return entity.Failure(fmt.Sprintf("Error setting text record: %v", err))
	}
	if resolverAddr == (common.Address{}) {
		return entity.Failure(msgNoResolver)
	}

	receipt, err := gw.SetText(ctx, opts, name, key, value)
	out := s.outcome("setting text record", fmt.Sprintf("Successfully set %s for %s", key, name), receipt, err)
	if out.Success {
		s.record(name, entity.ActivityTextRecordSet, map[string]string{
			"key": key, "value": value, "tx_hash": out.TxHash,
		})
	}
	return out
}

// SetNetworkAddress stores a network-specific address for name as a
// namespaced text record on the canonical chain.
func (s *RegistrarService) SetNetworkAddress(ctx context.Context, name, network, address string) entity.TransactionOutcome {
	if !common.IsHexAddress(address) {
		return entity.Failure(msgInvalidTarget)
	}
	return s.SetTextRecord(ctx, name, networkRecordKey(network), common.HexToAddress(address).Hex())
}

// SetContenthash writes the raw contenthash bytes for name.
func (s *RegistrarService) SetContenthash(ctx context.Context, name string, hash []byte) entity.TransactionOutcome {
	opts, signerAddr, configured, err := s.signer(ctx, s.cfg.Registrar.RecordGasLimit)
	if !configured {
		return entity.Failure(msgNoAccount)
	}
	if err != nil {
		return entity.Failure(err.Error())
	}

	gw, err := s.canonicalGateway()
	if err != nil {
		return entity.Failure(err.Error())
	}

	owner, err := gw.Owner(ctx, name)
	if err != nil {
		return entity.Failure(fmt.Sprintf("Error setting content hash: %v", err))
	}
	if owner == (common.Address{}) || owner != signerAddr {
		return entity.Failure(msgNotOwner)
	}

	resolverAddr, err := gw.ResolverAddress(ctx, name)
	if err != nil {
		return entity.Failure(fmt.Sprintf("Error setting content hash: %v", err))
	}
	if resolverAddr == (common.Address{}) {
		return entity.Failure(msgNoResolver)
	}

	receipt, err := gw.SetContenthash(ctx, opts, name, hash)
	out := s.outcome("setting content hash", fmt.Sprintf("Successfully set content hash for %s", name), receipt, err)
	if out.Success {
		s.record(name, entity.ActivityContenthashSet, map[string]string{"tx_hash": out.TxHash})
	}
	return out
}

// CreateSubdomain assigns label under parent to ownerAddress (the signer
// when empty). Requires parent ownership.
func (s *RegistrarService) CreateSubdomain(ctx context.Context, parent, label, ownerAddress string) entity.TransactionOutcome {
	opts, signerAddr, configured, err := s.signer(ctx, s.cfg.Registrar.TransferGasLimit)
	if !configured {
		return entity.Failure(msgNoAccount)
	}
	if err != nil {
		return entity.Failure(err.Error())
	}

	gw, err := s.canonicalGateway()
	if err != nil {
		return entity.Failure(err.Error())
	}

	parentOwner, err := gw.Owner(ctx, parent)
	if err != nil {
		return entity.Failure(fmt.Sprintf("Error creating subdomain: %v", err))
	}
	if parentOwner == (common.Address{}) || parentOwner != signerAddr {
		return entity.Failure(msgNotParentOwner)
	}

	target := signerAddr
	if ownerAddress != "" {
		if !common.IsHexAddress(ownerAddress) {
			return entity.Failure("Invalid owner address")
		}
		target = common.HexToAddress(ownerAddress)
	}

	fullName := label + "." + parent
	receipt, err := gw.SetSubnodeOwner(ctx, opts, parent, label, target)
	out := s.outcome("creating subdomain", fmt.Sprintf("Successfully created subdomain %s", fullName), receipt, err)
	if out.Success {
		s.record(parent, entity.ActivitySubdomainCreated, map[string]string{
			"subdomain": fullName, "owner": target.Hex(), "tx_hash": out.TxHash,
		})
	}
	return out
}

// BulkRegister registers each name sequentially; one failure does not abort
// the batch.
func (s *RegistrarService) BulkRegister(ctx context.Context, names []string, durationYears int) []entity.BatchItemOutcome {
	results := make([]entity.BatchItemOutcome, 0, len(names))
	for _, name := range names {
		results = append(results, entity.BatchItemOutcome{
			Item:    name,
			Outcome: s.Register(ctx, name, durationYears),
		})
	}
	return results
}

// BulkRenew renews each name sequentially; one failure does not abort the
// batch.
func (s *RegistrarService) BulkRenew(ctx context.Context, names []string, durationYears int) []entity.BatchItemOutcome {
	results := make([]entity.BatchItemOutcome, 0, len(names))
	for _, name := range names {
		results = append(results, entity.BatchItemOutcome{
			Item:    name,
			Outcome: s.Renew(ctx, name, durationYears),
		})
	}
	return results
}

// BulkCreateSubdomains creates each subdomain sequentially under parent.
func (s *RegistrarService) BulkCreateSubdomains(ctx context.Context, parent string, labels []string, ownerAddress string) []entity.BatchItemOutcome {
	results := make([]entity.BatchItemOutcome, 0, len(labels))
	for _, label := range labels {
		results = append(results, entity.BatchItemOutcome{
			Item:    label,
			Outcome: s.CreateSubdomain(ctx, parent, label, ownerAddress),
		})
	}
	return results
}

// BatchCheckAvailability checks several names in parallel. Reads are
// side-effect-free and safe to fan out.
func (s *RegistrarService) BatchCheckAvailability(ctx context.Context, names []string) map[string]bool {
	results := make(map[string]bool, len(names))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for _, name := range names {
		g.Go(func() error {
			available, err := s.CheckAvailable(gctx, name)
			if err != nil {
				s.logger.Debug("Availability check failed", "name", name, "error", err)
				available = false
			}
			mu.Lock()
			results[name] = available
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// BatchRegistrationCosts fetches rent prices for several names in parallel.
// Names whose lookup failed map to nil.
func (s *RegistrarService) BatchRegistrationCosts(ctx context.Context, names []string, durationYears int) map[string]*big.Int {
	results := make(map[string]*big.Int, len(names))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for _, name := range names {
		g.Go(func() error {
			cost, err := s.RegistrationCost(gctx, name, durationYears)
			if err != nil {
				s.logger.Debug("Rent price lookup failed", "name", name, "error", err)
				cost = nil
			}
			mu.Lock()
			results[name] = cost
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}
