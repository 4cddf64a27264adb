package service

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ens_manager/internal/domain/entity"
	"ens_manager/internal/infrastructure/configloader"
)

const testAddr = "0x1234567890AbcdEF1234567890aBcdef12345678"

func newResolutionService(gw *fakeGateway, networks ...string) *ResolutionService {
	if len(networks) == 0 {
		networks = []string{entity.CanonicalNetwork}
	}
	return NewResolutionService(newFakeProvider(gw), newFakeDirectory(networks...), nopLogger{}, configloader.Default())
}

func TestResolveNetworkSpecificRecord(t *testing.T) {
	gw := newFakeGateway()
	gw.textRecords["network.polygon.address"] = testAddr
	svc := newResolutionService(gw, entity.CanonicalNetwork, "polygon")

	result := svc.Resolve(context.Background(), "test.eth", "polygon")

	require.True(t, result.Resolved())
	assert.Equal(t, entity.ResolutionNetworkSpecific, result.Type)
	assert.Equal(t, common.HexToAddress(testAddr).Hex(), result.Address)
	assert.Equal(t, "text_record", result.Metadata["source"])

	// The network-specific record wins outright; no fallback lookups.
	assert.Zero(t, gw.callCount("AddressRecord"))
	assert.Zero(t, gw.callCount("OffchainResolve"))
}

func TestResolveCanonicalDefault(t *testing.T) {
	gw := newFakeGateway()
	gw.addrRecord = common.HexToAddress(testAddr)
	svc := newResolutionService(gw)

	result := svc.Resolve(context.Background(), "test.eth", entity.CanonicalNetwork)

	require.True(t, result.Resolved())
	assert.Equal(t, entity.ResolutionMainnetFallback, result.Type)
	assert.Equal(t, common.HexToAddress(testAddr).Hex(), result.Address)
}

func TestResolveMainnetFallbackForOtherNetwork(t *testing.T) {
	gw := newFakeGateway()
	gw.addrRecord = common.HexToAddress(testAddr)
	svc := newResolutionService(gw, entity.CanonicalNetwork, "optimism")

	result := svc.Resolve(context.Background(), "test.eth", "optimism")

	require.True(t, result.Resolved())
	assert.Equal(t, entity.ResolutionMainnetFallback, result.Type)
	assert.Equal(t, "mainnet_resolution", result.Metadata["source"])
}

func TestResolveCCIPRead(t *testing.T) {
	gw := newFakeGateway()
	gw.resolverAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	gw.supports[ccipInterfaceID] = true
	gw.offchainAddr = common.HexToAddress(testAddr)
	svc := newResolutionService(gw, entity.CanonicalNetwork, "base")

	result := svc.Resolve(context.Background(), "test.eth", "base")

	require.True(t, result.Resolved())
	assert.Equal(t, entity.ResolutionCCIPRead, result.Type)
	assert.Equal(t, 1, gw.callCount("OffchainResolve"))
}

func TestResolveCanonicalCCIPRead(t *testing.T) {
	gw := newFakeGateway()
	gw.resolverAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	gw.supports[ccipInterfaceID] = true
	gw.offchainAddr = common.HexToAddress(testAddr)
	svc := newResolutionService(gw)

	// Zero default addr record on the canonical chain falls through to the
	// off-chain resolver instead of giving up.
	result := svc.Resolve(context.Background(), "test.eth", entity.CanonicalNetwork)

	require.True(t, result.Resolved())
	assert.Equal(t, entity.ResolutionCCIPRead, result.Type)
	assert.Equal(t, common.HexToAddress(testAddr).Hex(), result.Address)
	assert.Equal(t, 1, gw.callCount("OffchainResolve"))
}

func TestResolveCanonicalDefaultBeatsCCIP(t *testing.T) {
	gw := newFakeGateway()
	gw.addrRecord = common.HexToAddress(testAddr)
	gw.supports[ccipInterfaceID] = true
	gw.offchainAddr = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	svc := newResolutionService(gw)

	result := svc.Resolve(context.Background(), "test.eth", entity.CanonicalNetwork)

	require.True(t, result.Resolved())
	assert.Equal(t, entity.ResolutionMainnetFallback, result.Type)
	assert.Zero(t, gw.callCount("OffchainResolve"))
}

func TestResolveExhaustedIsEmptyNotError(t *testing.T) {
	gw := newFakeGateway()
	svc := newResolutionService(gw, entity.CanonicalNetwork, "polygon")

	result := svc.Resolve(context.Background(), "test.eth", "polygon")

	assert.False(t, result.Resolved())
	assert.Empty(t, result.Address)
}

func TestResolveIgnoresMalformedRecord(t *testing.T) {
	gw := newFakeGateway()
	gw.textRecords["network.polygon.address"] = "not-an-address"
	svc := newResolutionService(gw, entity.CanonicalNetwork, "polygon")

	result := svc.Resolve(context.Background(), "test.eth", "polygon")
	assert.False(t, result.Resolved())
}

func TestResolveCachesResults(t *testing.T) {
	gw := newFakeGateway()
	gw.addrRecord = common.HexToAddress(testAddr)
	svc := newResolutionService(gw)

	first := svc.Resolve(context.Background(), "test.eth", entity.CanonicalNetwork)
	callsAfterFirst := gw.callCount("AddressRecord")
	second := svc.Resolve(context.Background(), "test.eth", entity.CanonicalNetwork)

	assert.Equal(t, first.Address, second.Address)
	assert.Equal(t, callsAfterFirst, gw.callCount("AddressRecord"))
}

func TestReverseResolveInvalidAddress(t *testing.T) {
	gw := newFakeGateway()
	svc := newResolutionService(gw)

	name := svc.ReverseResolve(context.Background(), "clearly-not-hex")

	assert.Empty(t, name)
	assert.Zero(t, gw.callCount("ReverseName"))
}

func TestReverseResolve(t *testing.T) {
	gw := newFakeGateway()
	gw.reverseName = "test.eth"
	svc := newResolutionService(gw)

	assert.Equal(t, "test.eth", svc.ReverseResolve(context.Background(), testAddr))
}

func TestGetAllNetworkAddresses(t *testing.T) {
	gw := newFakeGateway()
	gw.addrRecord = common.HexToAddress(testAddr)
	svc := newResolutionService(gw, entity.CanonicalNetwork, "polygon", "base")

	results := svc.GetAllNetworkAddresses(context.Background(), "test.eth")

	require.Len(t, results, 3)
	for _, network := range []string{entity.CanonicalNetwork, "polygon", "base"} {
		require.Contains(t, results, network)
		assert.Equal(t, network, results[network].Network)
	}
}

func TestBatchResolveOneEntryPerName(t *testing.T) {
	gw := newFakeGateway()
	gw.addrRecord = common.HexToAddress(testAddr)
	svc := newResolutionService(gw)

	names := []string{"one.eth", "two.eth", "three.eth"}
	results := svc.BatchResolve(context.Background(), names)

	require.Len(t, results, len(names))
	for _, name := range names {
		assert.Contains(t, results, name)
	}
}

func TestResolveGlobally(t *testing.T) {
	gw := newFakeGateway()
	gw.addrRecord = common.HexToAddress(testAddr)
	gw.resolverAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	svc := newResolutionService(gw, entity.CanonicalNetwork, "polygon")

	global := svc.ResolveGlobally(context.Background(), "test.eth")

	assert.Equal(t, "test.eth", global.Name)
	assert.Len(t, global.Resolutions, 2)
	assert.NotEmpty(t, global.ResolverAddress)
}

func TestValidateNetworkSetup(t *testing.T) {
	t.Run("no resolver", func(t *testing.T) {
		gw := newFakeGateway()
		svc := newResolutionService(gw)

		issues := svc.ValidateNetworkSetup(context.Background(), "test.eth")
		assert.Contains(t, issues, "No resolver set")
	})

	t.Run("missing text record support", func(t *testing.T) {
		gw := newFakeGateway()
		gw.resolverAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")
		svc := newResolutionService(gw)

		issues := svc.ValidateNetworkSetup(context.Background(), "test.eth")
		assert.Contains(t, issues, "Resolver doesn't support text records")
	})

	t.Run("malformed network record", func(t *testing.T) {
		gw := newFakeGateway()
		gw.resolverAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")
		gw.supports[textInterfaceID] = true
		gw.textRecords["network.polygon.address"] = "bogus"
		svc := newResolutionService(gw, entity.CanonicalNetwork, "polygon")

		issues := svc.ValidateNetworkSetup(context.Background(), "test.eth")
		assert.Contains(t, issues, "Invalid address format for polygon")
	})

	t.Run("malformed record for offline network", func(t *testing.T) {
		gw := newFakeGateway()
		gw.resolverAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")
		gw.supports[textInterfaceID] = true
		gw.textRecords["network.arbitrum.address"] = "bogus"

		// arbitrum is configured but not in the live set; its record is
		// still checked.
		dir := newFakeDirectory(entity.CanonicalNetwork)
		dir.configured = []string{entity.CanonicalNetwork, "arbitrum"}
		svc := NewResolutionService(newFakeProvider(gw), dir, nopLogger{}, configloader.Default())

		issues := svc.ValidateNetworkSetup(context.Background(), "test.eth")
		assert.Contains(t, issues, "Invalid address format for arbitrum")
	})
}
