package port

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"ens_manager/internal/domain/entity"
)

// ENSGateway wraps every registry/resolver/controller call against a single
// network backend. Every method is fallible: transport failures surface as
// errors and are converted to typed results by the calling service, never
// re-raised past the service boundary.
//
// Write methods build, sign (via opts), submit and block until the
// transaction is mined, returning the receipt for status inspection. They
// perform no retries: resubmission is the caller's decision.
type ENSGateway interface {
	// Registry reads.
	Owner(ctx context.Context, name string) (common.Address, error)
	ResolverAddress(ctx context.Context, name string) (common.Address, error)
	TTL(ctx context.Context, name string) (uint64, error)

	// Resolver reads.
	AddressRecord(ctx context.Context, name string) (common.Address, error)
	ReverseName(ctx context.Context, address common.Address) (string, error)
	Text(ctx context.Context, name, key string) (string, error)
	ContentHash(ctx context.Context, name string) ([]byte, error)
	SupportsInterface(ctx context.Context, name string, interfaceID [4]byte) (bool, error)

	// OffchainResolve invokes the resolver's CCIP-Read extension
	// (resolve(bytes,bytes)) at resolverAddr on this gateway's backend with
	// the encoded name and network identifier as payload.
	OffchainResolve(ctx context.Context, resolverAddr common.Address, name, network string) (common.Address, error)

	// Controller reads. Labels are passed without the canonical suffix.
	Available(ctx context.Context, label string) (bool, error)
	RentPrice(ctx context.Context, label string, duration *big.Int) (*big.Int, error)

	// SuggestGasPrice returns the backend's current gas price suggestion.
	SuggestGasPrice(ctx context.Context) (*big.Int, error)

	// Writes.
	Register(ctx context.Context, opts *bind.TransactOpts, label string, owner common.Address, duration *big.Int, secret [32]byte) (*types.Receipt, error)
	Renew(ctx context.Context, opts *bind.TransactOpts, label string, duration *big.Int) (*types.Receipt, error)
	SetOwner(ctx context.Context, opts *bind.TransactOpts, name string, newOwner common.Address) (*types.Receipt, error)
	SetSubnodeOwner(ctx context.Context, opts *bind.TransactOpts, parent, label string, owner common.Address) (*types.Receipt, error)
	SetAddress(ctx context.Context, opts *bind.TransactOpts, name string, addr common.Address) (*types.Receipt, error)
	SetText(ctx context.Context, opts *bind.TransactOpts, name, key, value string) (*types.Receipt, error)
	SetContenthash(ctx context.Context, opts *bind.TransactOpts, name string, hash []byte) (*types.Receipt, error)

	// Log queries.
	NameHistory(ctx context.Context, name string) ([]entity.ChainEvent, error)
	Subdomains(ctx context.Context, name string) ([]entity.SubdomainRecord, error)
	RegistrationEvents(ctx context.Context, label string) ([]entity.ChainEvent, error)
	LogsSince(ctx context.Context, name string, fromBlock uint64) ([]entity.ChainEvent, uint64, error)
}
