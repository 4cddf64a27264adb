package activitystore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ens_manager/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Error(msg string, args ...any) {}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), nopLogger{})
	require.NoError(t, err)
	return store
}

func TestAddActivityPersistsDayFile(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.AddActivity("test.eth", entity.ActivityRegistered, map[string]string{"owner": "0xabc"}))
	require.NoError(t, store.AddActivity("test.eth", entity.ActivityAddressSet, map[string]string{"address": "0xdef"}))

	dir := store.nameDir("test.eth")
	assert.Equal(t, "test_eth", filepath.Base(dir))

	path := filepath.Join(dir, dayFileName(time.Now().UTC()))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var events []entity.ActivityEvent
	require.NoError(t, json.Unmarshal(raw, &events))
	require.Len(t, events, 2)
	assert.Equal(t, entity.ActivityRegistered, events[0].Type)
	assert.Equal(t, entity.ActivityAddressSet, events[1].Type)
	assert.Equal(t, "0xabc", events[0].Data["owner"])
}

func TestActivitiesUnknownName(t *testing.T) {
	store := newTestStore(t)

	events, err := store.Activities("never-seen.eth", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestActivitiesSkipsCorruptFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.AddActivity("test.eth", entity.ActivityRegistered, nil))

	corrupt := filepath.Join(store.nameDir("test.eth"), "activity_2020-01-01.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0o644))

	events, err := store.Activities("test.eth", nil, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entity.ActivityRegistered, events[0].Type)
}

func TestActivitiesRangeFilter(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.AddActivity("test.eth", entity.ActivityRegistered, nil))

	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)

	events, err := store.Activities("test.eth", &past, &future)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	events, err = store.Activities("test.eth", nil, &past)
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = store.Activities("test.eth", &future, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}
