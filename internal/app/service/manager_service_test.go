package service

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ens_manager/internal/domain/entity"
	"ens_manager/internal/infrastructure/configloader"
)

func newManagerService(gw *fakeGateway, tracker *fakeTracker, networks ...string) *ManagerService {
	if len(networks) == 0 {
		networks = []string{entity.CanonicalNetwork}
	}
	provider := newFakeProvider(gw)
	directory := newFakeDirectory(networks...)
	resolution := NewResolutionService(provider, directory, nopLogger{}, configloader.Default())
	return NewManagerService(provider, directory, resolution, tracker, nil, nopLogger{})
}

func TestValidateName(t *testing.T) {
	svc := newManagerService(newFakeGateway(), &fakeTracker{})

	valid, normalized, issues := svc.ValidateName("Test.ETH")
	assert.True(t, valid)
	assert.Equal(t, "test.eth", normalized)
	assert.Empty(t, issues)

	valid, _, issues = svc.ValidateName("in valid@.eth")
	assert.False(t, valid)
	assert.NotEmpty(t, issues)
}

func TestSetNetwork(t *testing.T) {
	svc := newManagerService(newFakeGateway(), &fakeTracker{}, entity.CanonicalNetwork, "polygon")

	assert.True(t, svc.SetNetwork("polygon"))
	assert.Equal(t, "polygon", svc.CurrentNetwork())

	assert.False(t, svc.SetNetwork("unknown"))
	assert.Equal(t, "polygon", svc.CurrentNetwork())
}

func TestRegistrationStatus(t *testing.T) {
	gw := newFakeGateway()
	gw.ownerAddr = common.HexToAddress(testAddr)
	gw.resolverAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	gw.addrRecord = common.HexToAddress(testAddr)
	svc := newManagerService(gw, &fakeTracker{})

	status := svc.RegistrationStatus(context.Background(), "Test.ETH")

	assert.Equal(t, "test.eth", status.Name)
	assert.True(t, status.Valid)
	assert.Equal(t, common.HexToAddress(testAddr).Hex(), status.Owner)
	assert.NotEmpty(t, status.Resolver)
	assert.Equal(t, common.HexToAddress(testAddr).Hex(), status.Address)
}

func TestNameHistoryChainsTransferSenders(t *testing.T) {
	gw := newFakeGateway()
	gw.history = []entity.ChainEvent{
		entity.TransferEvent{EventMeta: entity.EventMeta{BlockNumber: 10}, To: "0xAAA"},
		entity.NewOwnerEvent{EventMeta: entity.EventMeta{BlockNumber: 11}, LabelHash: "0x01", Owner: "0xAAA"},
		entity.TransferEvent{EventMeta: entity.EventMeta{BlockNumber: 20}, To: "0xBBB"},
	}
	svc := newManagerService(gw, &fakeTracker{})

	events, err := svc.NameHistory(context.Background(), "test.eth")
	require.NoError(t, err)
	require.Len(t, events, 3)

	first, ok := events[0].(entity.TransferEvent)
	require.True(t, ok)
	assert.Empty(t, first.From)

	second, ok := events[2].(entity.TransferEvent)
	require.True(t, ok)
	assert.Equal(t, "0xAAA", second.From)
	assert.Equal(t, "0xBBB", second.To)
}

func TestExpiryDateTakesLatest(t *testing.T) {
	registered := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	renewed := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	gw := newFakeGateway()
	gw.regEvents = []entity.ChainEvent{
		entity.NameRegisteredEvent{Label: "test", Expires: registered},
		entity.NameRenewedEvent{Label: "test", Expires: renewed},
	}
	svc := newManagerService(gw, &fakeTracker{})

	expiry, err := svc.ExpiryDate(context.Background(), "test.eth")
	require.NoError(t, err)
	require.NotNil(t, expiry)
	assert.Equal(t, renewed, *expiry)
}

func TestExpiryDateNoEvents(t *testing.T) {
	svc := newManagerService(newFakeGateway(), &fakeTracker{})

	expiry, err := svc.ExpiryDate(context.Background(), "test.eth")
	require.NoError(t, err)
	assert.Nil(t, expiry)
}

func TestNameState(t *testing.T) {
	t.Run("unregistered", func(t *testing.T) {
		svc := newManagerService(newFakeGateway(), &fakeTracker{})
		state, err := svc.NameState(context.Background(), "test.eth")
		require.NoError(t, err)
		assert.Equal(t, entity.StateUnregistered, state)
	})

	t.Run("registered without address", func(t *testing.T) {
		gw := newFakeGateway()
		gw.ownerAddr = common.HexToAddress(testAddr)
		svc := newManagerService(gw, &fakeTracker{})
		state, err := svc.NameState(context.Background(), "test.eth")
		require.NoError(t, err)
		assert.Equal(t, entity.StateRegistered, state)
	})

	t.Run("resolved", func(t *testing.T) {
		gw := newFakeGateway()
		gw.ownerAddr = common.HexToAddress(testAddr)
		gw.addrRecord = common.HexToAddress(testAddr)
		svc := newManagerService(gw, &fakeTracker{})
		state, err := svc.NameState(context.Background(), "test.eth")
		require.NoError(t, err)
		assert.Equal(t, entity.StateResolved, state)
	})

	t.Run("expired", func(t *testing.T) {
		gw := newFakeGateway()
		gw.ownerAddr = common.HexToAddress(testAddr)
		gw.regEvents = []entity.ChainEvent{
			entity.NameRegisteredEvent{Label: "test", Expires: time.Now().UTC().Add(-24 * time.Hour)},
		}
		svc := newManagerService(gw, &fakeTracker{})
		state, err := svc.NameState(context.Background(), "test.eth")
		require.NoError(t, err)
		assert.Equal(t, entity.StateExpired, state)
	})
}

func TestNameDetails(t *testing.T) {
	gw := newFakeGateway()
	gw.ownerAddr = common.HexToAddress(testAddr)
	gw.resolverAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	gw.addrRecord = common.HexToAddress(testAddr)
	gw.ttl = 3600
	gw.textRecords["email"] = "owner@example.com"
	gw.textRecords["url"] = "https://example.com"
	gw.subdomains = []entity.SubdomainRecord{{LabelHash: "0x01", Owner: "0xAAA"}}
	svc := newManagerService(gw, &fakeTracker{})

	details, err := svc.NameDetails(context.Background(), "test.eth")
	require.NoError(t, err)

	assert.Equal(t, "test.eth", details.Name)
	assert.Equal(t, entity.StateResolved, details.State)
	assert.Equal(t, uint64(3600), details.TTL)
	assert.Equal(t, "owner@example.com", details.TextRecords["email"])
	assert.Equal(t, "https://example.com", details.TextRecords["url"])
	require.Len(t, details.Subdomains, 1)
}

func TestContentHashDecoded(t *testing.T) {
	gw := newFakeGateway()
	gw.contentHash = []byte{0xe4, 0x01, 0x01, 0xfa, 0xde, 0xad}
	svc := newManagerService(gw, &fakeTracker{})

	decoded, err := svc.ContentHash(context.Background(), "test.eth")
	require.NoError(t, err)
	assert.Equal(t, "bzz://dead", decoded)
}

func TestActivityReportWithoutExplorer(t *testing.T) {
	tracker := &fakeTracker{}
	require.NoError(t, tracker.AddActivity("test.eth", entity.ActivityRegistered, nil))
	svc := newManagerService(newFakeGateway(), tracker)

	report, err := svc.ActivityReport(context.Background(), "test.eth", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "test.eth", report.Name)
	require.Len(t, report.Events, 1)
	assert.Empty(t, report.Transactions)
}

func TestFilterTransactions(t *testing.T) {
	now := time.Now().UTC()
	txs := []entity.ExplorerTransaction{
		{Hash: "0x1", Timestamp: now.Add(-2 * time.Hour)},
		{Hash: "0x2", Timestamp: now.Add(-time.Hour)},
		{Hash: "0x3", Timestamp: now},
	}

	start := now.Add(-90 * time.Minute)
	filtered := filterTransactions(txs, &start, nil)

	require.Len(t, filtered, 2)
	// Newest first.
	assert.Equal(t, "0x3", filtered[0].Hash)
	assert.Equal(t, "0x2", filtered[1].Hash)
}

func TestDecodeContenthashInput(t *testing.T) {
	raw, err := DecodeContenthashInput("0xe40101fadead")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xe4, 0x01, 0x01, 0xfa, 0xde, 0xad}, raw)

	_, err = DecodeContenthashInput("zz")
	assert.Error(t, err)
}
