package ens

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	goens "github.com/wealdtech/go-ens/v3"

	"ens_manager/internal/app/port"
	"ens_manager/internal/domain/entity"
)

// Gateway implements port.ENSGateway against a single network backend.
type Gateway struct {
	backend    *ethclient.Client
	def        entity.NetworkDefinition
	logger     port.Logger
	registry   *bind.BoundContract
	controller *bind.BoundContract

	registryABI   abi.ABI
	resolverABI   abi.ABI
	controllerABI abi.ABI

	bytes32Type abi.Type
	stringType  abi.Type
	addressType abi.Type
}

// NewGateway binds the registry and controller contracts on the given backend.
func NewGateway(backend *ethclient.Client, def entity.NetworkDefinition, l port.Logger) *Gateway {
	regABI, resABI, ctrlABI := parsedABIs()

	bytes32Type, _ := abi.NewType("bytes32", "", nil)
	stringType, _ := abi.NewType("string", "", nil)
	addressType, _ := abi.NewType("address", "", nil)

	return &Gateway{
		backend:       backend,
		def:           def,
		logger:        l,
		registry:      bind.NewBoundContract(common.HexToAddress(RegistryAddress), regABI, backend, backend, backend),
		controller:    bind.NewBoundContract(common.HexToAddress(ControllerAddress), ctrlABI, backend, backend, backend),
		registryABI:   regABI,
		resolverABI:   resABI,
		controllerABI: ctrlABI,
		bytes32Type:   bytes32Type,
		stringType:    stringType,
		addressType:   addressType,
	}
}

// Backend exposes the underlying client for callers needing raw access
// (the watcher's block cursor, the connection manager's probes).
func (g *Gateway) Backend() *ethclient.Client {
	return g.backend
}

func (g *Gateway) node(name string) ([32]byte, error) {
	return goens.NameHash(name)
}

// resolverContract binds the public resolver registered for name. Returns
// an error when no resolver is set.
func (g *Gateway) resolverContract(ctx context.Context, name string) (*bind.BoundContract, common.Address, error) {
	addr, err := g.ResolverAddress(ctx, name)
	if err != nil {
		return nil, zeroAddress, err
	}
	if addr == zeroAddress {
		return nil, zeroAddress, fmt.Errorf("no resolver set for %s", name)
	}
	return bind.NewBoundContract(addr, g.resolverABI, g.backend, g.backend, g.backend), addr, nil
}

// Owner returns the registry owner of name (zero address when unowned).
func (g *Gateway) Owner(ctx context.Context, name string) (common.Address, error) {
	node, err := g.node(name)
	if err != nil {
		return zeroAddress, err
	}
	var out []interface{}
	if err := g.registry.Call(&bind.CallOpts{Context: ctx}, &out, "owner", node); err != nil {
		return zeroAddress, fmt.Errorf("registry owner call failed for %s: %w", name, err)
	}
	return out[0].(common.Address), nil
}

// ResolverAddress returns the resolver contract registered for name.
func (g *Gateway) ResolverAddress(ctx context.Context, name string) (common.Address, error) {
	node, err := g.node(name)
	if err != nil {
		return zeroAddress, err
	}
	var out []interface{}
	if err := g.registry.Call(&bind.CallOpts{Context: ctx}, &out, "resolver", node); err != nil {
		return zeroAddress, fmt.Errorf("registry resolver call failed for %s: %w", name, err)
	}
	return out[0].(common.Address), nil
}

// TTL returns the registry TTL of name.
func (g *Gateway) TTL(ctx context.Context, name string) (uint64, error) {
	node, err := g.node(name)
	if err != nil {
		return 0, err
	}
	var out []interface{}
	if err := g.registry.Call(&bind.CallOpts{Context: ctx}, &out, "ttl", node); err != nil {
		return 0, fmt.Errorf("registry ttl call failed for %s: %w", name, err)
	}
	return out[0].(uint64), nil
}

// AddressRecord performs the standard name->address lookup via the name's
// resolver.
func (g *Gateway) AddressRecord(ctx context.Context, name string) (common.Address, error) {
	return goens.Resolve(g.backend, name)
}

// ReverseName resolves an address back to its primary name.
func (g *Gateway) ReverseName(ctx context.Context, address common.Address) (string, error) {
	return goens.ReverseResolve(g.backend, address)
}

// Text returns the text record stored under key for name.
func (g *Gateway) Text(ctx context.Context, name, key string) (string, error) {
	resolver, _, err := g.resolverContract(ctx, name)
	if err != nil {
		return "", err
	}
	node, err := g.node(name)
	if err != nil {
		return "", err
	}
	var out []interface{}
	if err := resolver.Call(&bind.CallOpts{Context: ctx}, &out, "text", node, key); err != nil {
		return "", fmt.Errorf("text call failed for %s/%s: %w", name, key, err)
	}
	return out[0].(string), nil
}

// ContentHash returns the raw contenthash bytes for name.
func (g *Gateway) ContentHash(ctx context.Context, name string) ([]byte, error) {
	resolver, _, err := g.resolverContract(ctx, name)
	if err != nil {
		return nil, err
	}
	node, err := g.node(name)
	if err != nil {
		return nil, err
	}
	var out []interface{}
	if err := resolver.Call(&bind.CallOpts{Context: ctx}, &out, "contenthash", node); err != nil {
		return nil, fmt.Errorf("contenthash call failed for %s: %w", name, err)
	}
	return out[0].([]byte), nil
}

// SupportsInterface probes the name's resolver for an ERC-165 interface.
func (g *Gateway) SupportsInterface(ctx context.Context, name string, id [4]byte) (bool, error) {
	resolver, _, err := g.resolverContract(ctx, name)
	if err != nil {
		return false, err
	}
	var out []interface{}
	if err := resolver.Call(&bind.CallOpts{Context: ctx}, &out, "supportsInterface", id); err != nil {
		return false, fmt.Errorf("supportsInterface call failed for %s: %w", name, err)
	}
	return out[0].(bool), nil
}

// OffchainResolve invokes the CCIP-Read extension at resolverAddr on this
// gateway's backend, passing the name's node and the network identifier as
// the call payload, and decodes the returned address.
func (g *Gateway) OffchainResolve(ctx context.Context, resolverAddr common.Address, name, network string) (common.Address, error) {
	node, err := g.node(name)
	if err != nil {
		return zeroAddress, err
	}

	payloadArgs := abi.Arguments{{Type: g.bytes32Type}, {Type: g.stringType}}
	payload, err := payloadArgs.Pack(node, network)
	if err != nil {
		return zeroAddress, fmt.Errorf("failed to pack ccip payload: %w", err)
	}

	resolver := bind.NewBoundContract(resolverAddr, g.resolverABI, g.backend, g.backend, g.backend)
	var out []interface{}
	if err := resolver.Call(&bind.CallOpts{Context: ctx}, &out, "resolve", node[:], payload); err != nil {
		return zeroAddress, fmt.Errorf("ccip resolve call failed for %s on %s: %w", name, network, err)
	}

	response := out[0].([]byte)
	if len(response) == 0 {
		return zeroAddress, fmt.Errorf("ccip resolve returned no data for %s on %s", name, network)
	}

	addrArgs := abi.Arguments{{Type: g.addressType}}
	decoded, err := addrArgs.Unpack(response)
	if err != nil {
		return zeroAddress, fmt.Errorf("failed to decode ccip response: %w", err)
	}
	return decoded[0].(common.Address), nil
}

// Available reports whether the registrable label is open for registration.
func (g *Gateway) Available(ctx context.Context, label string) (bool, error) {
	var out []interface{}
	if err := g.controller.Call(&bind.CallOpts{Context: ctx}, &out, "available", label); err != nil {
		return false, fmt.Errorf("availability check failed for %s: %w", label, err)
	}
	return out[0].(bool), nil
}

// RentPrice returns the wei cost of registering label for duration seconds.
func (g *Gateway) RentPrice(ctx context.Context, label string, duration *big.Int) (*big.Int, error) {
	var out []interface{}
	if err := g.controller.Call(&bind.CallOpts{Context: ctx}, &out, "rentPrice", label, duration); err != nil {
		return nil, fmt.Errorf("rent price lookup failed for %s: %w", label, err)
	}
	return out[0].(*big.Int), nil
}

// submit sends the transaction and blocks until it is mined. No internal
// timeout: callers bound the wait through ctx.
func (g *Gateway) submit(ctx context.Context, tx *types.Transaction, err error, operation string) (*types.Receipt, error) {
	if err != nil {
		return nil, fmt.Errorf("%s transaction failed: %w", operation, err)
	}
	g.logger.Info("Transaction submitted, waiting for inclusion",
		"operation", operation, "tx_hash", tx.Hash().Hex(), "network", g.def.Identifier)
	receipt, err := bind.WaitMined(ctx, g.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("%s receipt wait failed: %w", operation, err)
	}
	return receipt, nil
}

// SuggestGasPrice returns the backend's current gas price suggestion.
func (g *Gateway) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return g.backend.SuggestGasPrice(ctx)
}

// Register submits a controller registration for the label. opts.Value must
// carry the rent price.
func (g *Gateway) Register(ctx context.Context, opts *bind.TransactOpts, label string, owner common.Address, duration *big.Int, secret [32]byte) (*types.Receipt, error) {
	tx, err := g.controller.Transact(opts, "register", label, owner, duration, secret)
	return g.submit(ctx, tx, err, "register")
}

// Renew extends an existing registration by duration seconds. opts.Value
// must carry the rent price.
func (g *Gateway) Renew(ctx context.Context, opts *bind.TransactOpts, label string, duration *big.Int) (*types.Receipt, error) {
	tx, err := g.controller.Transact(opts, "renew", label, duration)
	return g.submit(ctx, tx, err, "renew")
}

// SetOwner hands registry ownership of name to newOwner.
func (g *Gateway) SetOwner(ctx context.Context, opts *bind.TransactOpts, name string, newOwner common.Address) (*types.Receipt, error) {
	node, err := g.node(name)
	if err != nil {
		return nil, err
	}
	tx, err := g.registry.Transact(opts, "setOwner", node, newOwner)
	return g.submit(ctx, tx, err, "setOwner")
}

// SetSubnodeOwner assigns owner to label under the parent name.
func (g *Gateway) SetSubnodeOwner(ctx context.Context, opts *bind.TransactOpts, parent, label string, owner common.Address) (*types.Receipt, error) {
	parentNode, err := g.node(parent)
	if err != nil {
		return nil, err
	}
	labelHash := crypto.Keccak256Hash([]byte(label))
	tx, err := g.registry.Transact(opts, "setSubnodeOwner", parentNode, [32]byte(labelHash), owner)
	return g.submit(ctx, tx, err, "setSubnodeOwner")
}

// SetAddress points the name's addr record at addr.
func (g *Gateway) SetAddress(ctx context.Context, opts *bind.TransactOpts, name string, addr common.Address) (*types.Receipt, error) {
	resolver, _, err := g.resolverContract(ctx, name)
	if err != nil {
		return nil, err
	}
	node, err := g.node(name)
	if err != nil {
		return nil, err
	}
	tx, err := resolver.Transact(opts, "setAddr", node, addr)
	return g.submit(ctx, tx, err, "setAddr")
}

// SetText writes a text record under key for name.
func (g *Gateway) SetText(ctx context.Context, opts *bind.TransactOpts, name, key, value string) (*types.Receipt, error) {
	resolver, _, err := g.resolverContract(ctx, name)
	if err != nil {
		return nil, err
	}
	node, err := g.node(name)
	if err != nil {
		return nil, err
	}
	tx, err := resolver.Transact(opts, "setText", node, key, value)
	return g.submit(ctx, tx, err, "setText")
}

// SetContenthash writes the raw contenthash bytes for name.
func (g *Gateway) SetContenthash(ctx context.Context, opts *bind.TransactOpts, name string, hash []byte) (*types.Receipt, error) {
	resolver, _, err := g.resolverContract(ctx, name)
	if err != nil {
		return nil, err
	}
	node, err := g.node(name)
	if err != nil {
		return nil, err
	}
	tx, err := resolver.Transact(opts, "setContenthash", node, hash)
	return g.submit(ctx, tx, err, "setContenthash")
}

// NameHistory reconstructs the ownership history of name from registry
// Transfer and NewOwner logs, chronologically ordered.
func (g *Gateway) NameHistory(ctx context.Context, name string) ([]entity.ChainEvent, error) {
	node, err := g.node(name)
	if err != nil {
		return nil, err
	}

	transferID := g.registryABI.Events["Transfer"].ID
	newOwnerID := g.registryABI.Events["NewOwner"].ID

	logs, err := g.backend.FilterLogs(ctx, ethereum.FilterQuery{
		Addresses: []common.Address{common.HexToAddress(RegistryAddress)},
		Topics:    [][]common.Hash{{transferID, newOwnerID}, {common.Hash(node)}},
	})
	if err != nil {
		return nil, fmt.Errorf("registry log query failed for %s: %w", name, err)
	}

	timestamps := newHeaderTimestamps(g.backend)
	events := make([]entity.ChainEvent, 0, len(logs))
	for _, lg := range logs {
		meta := entity.EventMeta{
			BlockNumber: lg.BlockNumber,
			TxHash:      lg.TxHash.Hex(),
			Timestamp:   timestamps.at(ctx, lg.BlockNumber),
		}
		switch lg.Topics[0] {
		case transferID:
			unpacked, err := g.registryABI.Unpack("Transfer", lg.Data)
			if err != nil {
				g.logger.Warn("Skipping undecodable Transfer log", "tx", lg.TxHash.Hex(), "error", err)
				continue
			}
			events = append(events, entity.TransferEvent{
				EventMeta: meta,
				To:        unpacked[0].(common.Address).Hex(),
			})
		case newOwnerID:
			unpacked, err := g.registryABI.Unpack("NewOwner", lg.Data)
			if err != nil {
				g.logger.Warn("Skipping undecodable NewOwner log", "tx", lg.TxHash.Hex(), "error", err)
				continue
			}
			events = append(events, entity.NewOwnerEvent{
				EventMeta: meta,
				LabelHash: lg.Topics[2].Hex(),
				Owner:     unpacked[0].(common.Address).Hex(),
			})
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Meta().BlockNumber < events[j].Meta().BlockNumber
	})
	return events, nil
}

// Subdomains enumerates subnodes created under name from NewOwner logs.
// Only the label hash is recoverable, not the plain label.
func (g *Gateway) Subdomains(ctx context.Context, name string) ([]entity.SubdomainRecord, error) {
	node, err := g.node(name)
	if err != nil {
		return nil, err
	}

	newOwnerID := g.registryABI.Events["NewOwner"].ID
	logs, err := g.backend.FilterLogs(ctx, ethereum.FilterQuery{
		Addresses: []common.Address{common.HexToAddress(RegistryAddress)},
		Topics:    [][]common.Hash{{newOwnerID}, {common.Hash(node)}},
	})
	if err != nil {
		return nil, fmt.Errorf("subdomain log query failed for %s: %w", name, err)
	}

	// Later logs win: a re-assigned label keeps only its latest owner.
	latest := make(map[string]string)
	order := make([]string, 0)
	for _, lg := range logs {
		if len(lg.Topics) < 3 {
			continue
		}
		unpacked, err := g.registryABI.Unpack("NewOwner", lg.Data)
		if err != nil {
			continue
		}
		labelHash := lg.Topics[2].Hex()
		if _, seen := latest[labelHash]; !seen {
			order = append(order, labelHash)
		}
		latest[labelHash] = unpacked[0].(common.Address).Hex()
	}

	records := make([]entity.SubdomainRecord, 0, len(order))
	for _, labelHash := range order {
		records = append(records, entity.SubdomainRecord{LabelHash: labelHash, Owner: latest[labelHash]})
	}
	return records, nil
}

// RegistrationEvents returns NameRegistered and NameRenewed controller logs
// for the label, chronologically ordered. Renewals feed the same expiry
// computation as registrations.
func (g *Gateway) RegistrationEvents(ctx context.Context, label string) ([]entity.ChainEvent, error) {
	labelHash := crypto.Keccak256Hash([]byte(label))
	registeredID := g.controllerABI.Events["NameRegistered"].ID
	renewedID := g.controllerABI.Events["NameRenewed"].ID

	logs, err := g.backend.FilterLogs(ctx, ethereum.FilterQuery{
		Addresses: []common.Address{common.HexToAddress(ControllerAddress)},
		Topics:    [][]common.Hash{{registeredID, renewedID}, {labelHash}},
	})
	if err != nil {
		return nil, fmt.Errorf("controller log query failed for %s: %w", label, err)
	}

	timestamps := newHeaderTimestamps(g.backend)
	events := make([]entity.ChainEvent, 0, len(logs))
	for _, lg := range logs {
		meta := entity.EventMeta{
			BlockNumber: lg.BlockNumber,
			TxHash:      lg.TxHash.Hex(),
			Timestamp:   timestamps.at(ctx, lg.BlockNumber),
		}
		switch lg.Topics[0] {
		case registeredID:
			unpacked, err := g.controllerABI.Unpack("NameRegistered", lg.Data)
			if err != nil {
				continue
			}
			var owner string
			if len(lg.Topics) > 2 {
				owner = common.HexToAddress(lg.Topics[2].Hex()).Hex()
			}
			events = append(events, entity.NameRegisteredEvent{
				EventMeta: meta,
				Label:     unpacked[0].(string),
				Owner:     owner,
				Expires:   time.Unix(unpacked[2].(*big.Int).Int64(), 0).UTC(),
			})
		case renewedID:
			unpacked, err := g.controllerABI.Unpack("NameRenewed", lg.Data)
			if err != nil {
				continue
			}
			events = append(events, entity.NameRenewedEvent{
				EventMeta: meta,
				Label:     unpacked[0].(string),
				Expires:   time.Unix(unpacked[2].(*big.Int).Int64(), 0).UTC(),
			})
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Meta().BlockNumber < events[j].Meta().BlockNumber
	})
	return events, nil
}

// LogsSince collects registry and resolver logs for name from the given
// block onward, returning the decoded events and the latest scanned block.
// Used by the watcher's poll loop.
func (g *Gateway) LogsSince(ctx context.Context, name string, fromBlock uint64) ([]entity.ChainEvent, uint64, error) {
	node, err := g.node(name)
	if err != nil {
		return nil, fromBlock, err
	}

	latest, err := g.backend.BlockNumber(ctx)
	if err != nil {
		return nil, fromBlock, fmt.Errorf("block number query failed: %w", err)
	}
	if latest < fromBlock {
		return nil, fromBlock, nil
	}

	from := new(big.Int).SetUint64(fromBlock)
	to := new(big.Int).SetUint64(latest)

	transferID := g.registryABI.Events["Transfer"].ID
	newOwnerID := g.registryABI.Events["NewOwner"].ID

	var events []entity.ChainEvent

	registryLogs, err := g.backend.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: from,
		ToBlock:   to,
		Addresses: []common.Address{common.HexToAddress(RegistryAddress)},
		Topics:    [][]common.Hash{{transferID, newOwnerID}, {common.Hash(node)}},
	})
	if err != nil {
		return nil, fromBlock, fmt.Errorf("registry log query failed for %s: %w", name, err)
	}
	for _, lg := range registryLogs {
		meta := entity.EventMeta{BlockNumber: lg.BlockNumber, TxHash: lg.TxHash.Hex()}
		switch lg.Topics[0] {
		case transferID:
			if unpacked, err := g.registryABI.Unpack("Transfer", lg.Data); err == nil {
				events = append(events, entity.TransferEvent{EventMeta: meta, To: unpacked[0].(common.Address).Hex()})
			}
		case newOwnerID:
			if unpacked, err := g.registryABI.Unpack("NewOwner", lg.Data); err == nil {
				events = append(events, entity.NewOwnerEvent{EventMeta: meta, LabelHash: lg.Topics[2].Hex(), Owner: unpacked[0].(common.Address).Hex()})
			}
		}
	}

	// Resolver events only exist once a resolver is registered.
	resolverAddr, err := g.ResolverAddress(ctx, name)
	if err == nil && resolverAddr != zeroAddress {
		addrChangedID := g.resolverABI.Events["AddrChanged"].ID
		textChangedID := g.resolverABI.Events["TextChanged"].ID
		contenthashID := g.resolverABI.Events["ContenthashChanged"].ID

		resolverLogs, err := g.backend.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: from,
			ToBlock:   to,
			Addresses: []common.Address{resolverAddr},
			Topics:    [][]common.Hash{{addrChangedID, textChangedID, contenthashID}, {common.Hash(node)}},
		})
		if err != nil {
			return nil, fromBlock, fmt.Errorf("resolver log query failed for %s: %w", name, err)
		}
		for _, lg := range resolverLogs {
			meta := entity.EventMeta{BlockNumber: lg.BlockNumber, TxHash: lg.TxHash.Hex()}
			switch lg.Topics[0] {
			case addrChangedID:
				if unpacked, err := g.resolverABI.Unpack("AddrChanged", lg.Data); err == nil {
					events = append(events, entity.AddrChangedEvent{EventMeta: meta, Address: unpacked[0].(common.Address).Hex()})
				}
			case textChangedID:
				if unpacked, err := g.resolverABI.Unpack("TextChanged", lg.Data); err == nil {
					events = append(events, entity.TextChangedEvent{EventMeta: meta, Key: unpacked[0].(string)})
				}
			case contenthashID:
				if unpacked, err := g.resolverABI.Unpack("ContenthashChanged", lg.Data); err == nil {
					events = append(events, entity.ContenthashChangedEvent{EventMeta: meta, Hash: hexutil.Encode(unpacked[0].([]byte))})
				}
			}
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Meta().BlockNumber < events[j].Meta().BlockNumber
	})
	return events, latest + 1, nil
}

// Normalize re-exports go-ens name normalization for facade use, keeping the
// stricter syntax checks in the ensname package.
func Normalize(name string) (string, error) {
	return goens.Normalize(name)
}

// NameHashHex returns the 0x-prefixed node of a normalized name, used to
// match explorer transaction input data.
func NameHashHex(name string) (string, error) {
	node, err := goens.NameHash(name)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(node[:]), nil
}
