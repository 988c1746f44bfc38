package storage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheWaWaR/subotai/clock"
	"github.com/TheWaWaR/subotai/hash"
	"github.com/TheWaWaR/subotai/storage"
)

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()

	parent, err := hash.Random()
	require.NoError(t, err)
	store := storage.New(parent)

	key, err := hash.Random()
	require.NoError(t, err)
	value, err := hash.Random()
	require.NoError(t, err)
	entry := storage.NewValueEntry(value)

	result := store.Store(key, entry)
	assert.Equal(t, storage.StoreSuccess, result)

	got, ok := store.Get(key)
	require.True(t, ok)
	assert.Equal(t, entry, got)
}

func TestStore_AlreadyPresent(t *testing.T) {
	t.Parallel()

	parent, err := hash.Random()
	require.NoError(t, err)
	store := storage.New(parent)

	key, err := hash.Random()
	require.NoError(t, err)

	assert.Equal(t, storage.StoreSuccess, store.Store(key, storage.NewBlobEntry([]byte("a"))))
	assert.Equal(t, storage.StoreAlreadyPresent, store.Store(key, storage.NewBlobEntry([]byte("b"))))

	got, ok := store.Get(key)
	require.True(t, ok)
	assert.Equal(t, []byte("b"), got.Blob)
}

func TestStore_Full(t *testing.T) {
	t.Parallel()

	parent, err := hash.Random()
	require.NoError(t, err)
	store := storage.New(parent, storage.WithMaxEntries(2))

	k1, _ := hash.Random()
	k2, _ := hash.Random()
	k3, _ := hash.Random()

	require.Equal(t, storage.StoreSuccess, store.Store(k1, storage.NewBlobEntry(nil)))
	require.Equal(t, storage.StoreSuccess, store.Store(k2, storage.NewBlobEntry(nil)))
	assert.Equal(t, storage.StoreFull, store.Store(k3, storage.NewBlobEntry(nil)))
	assert.Equal(t, 2, store.Len())
}

// TestStore_FullRejectsUpdateToExistingKey codifies spec.md's documented
// (if surprising) capacity-check-before-upsert ordering: once the store is
// full, even updating an already-present key fails.
func TestStore_FullRejectsUpdateToExistingKey(t *testing.T) {
	t.Parallel()

	parent, err := hash.Random()
	require.NoError(t, err)
	store := storage.New(parent, storage.WithMaxEntries(1))

	k1, _ := hash.Random()
	require.Equal(t, storage.StoreSuccess, store.Store(k1, storage.NewBlobEntry([]byte("a"))))

	result := store.Store(k1, storage.NewBlobEntry([]byte("b")))
	assert.Equal(t, storage.StoreFull, result)
}

func TestGet_ExpiredEntryAbsent(t *testing.T) {
	t.Parallel()

	parent, err := hash.Random()
	require.NoError(t, err)

	mock := clock.NewMock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := storage.New(parent, storage.WithClock(mock), storage.WithBaseExpiration(time.Hour))

	key, _ := hash.Random()
	store.Store(key, storage.NewBlobEntry([]byte("x")))

	mock.Advance(2 * time.Hour)

	_, ok := store.Get(key)
	assert.False(t, ok)
}

func TestExpiration_BelowThreshold(t *testing.T) {
	t.Parallel()

	parent, err := hash.Random()
	require.NoError(t, err)

	mock := clock.NewMock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := storage.New(parent, storage.WithClock(mock))

	keyAt1, err := hash.RandomAtDistance(parent, 1)
	require.NoError(t, err)
	keyAtThreshold, err := hash.RandomAtDistance(parent, storage.DefaultExpirationDistanceThreshold)
	require.NoError(t, err)

	store.Store(keyAt1, storage.NewBlobEntry(nil))
	store.Store(keyAtThreshold, storage.NewBlobEntry(nil))

	// Both keys should expire in [now + 23h, now + 24h].
	mock.Advance(23*time.Hour + 30*time.Minute)
	_, ok := store.Get(keyAt1)
	assert.True(t, ok, "key at distance 1 should still be alive at 23h30m")
	_, ok = store.Get(keyAtThreshold)
	assert.True(t, ok, "key at threshold should still be alive at 23h30m")

	mock.Advance(time.Hour)
	_, ok = store.Get(keyAt1)
	assert.False(t, ok, "key at distance 1 should be expired past 24h")
}

// TestExpiration_Monotonicity validates the chosen decay curve's
// documented contract: just past the minimum floor, a key at the maximum
// possible distance has expired while a mid-distance key is still alive,
// and by BaseExpiration plus the floor both the near and the mid-distance
// keys have expired.
func TestExpiration_Monotonicity(t *testing.T) {
	t.Parallel()

	parent, err := hash.Random()
	require.NoError(t, err)

	mock := clock.NewMock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	nearStore := storage.New(parent, storage.WithClock(mock))
	midStore := storage.New(parent, storage.WithClock(mock))
	farStore := storage.New(parent, storage.WithClock(mock))

	nearKey, err := hash.RandomAtDistance(parent, 1)
	require.NoError(t, err)
	midKey, err := hash.RandomAtDistance(parent, hash.Size/2)
	require.NoError(t, err)
	farKey, err := hash.RandomAtDistance(parent, hash.Size)
	require.NoError(t, err)

	nearStore.Store(nearKey, storage.NewBlobEntry(nil))
	midStore.Store(midKey, storage.NewBlobEntry(nil))
	farStore.Store(farKey, storage.NewBlobEntry(nil))

	mock.Advance(storage.DefaultMinExpiration + time.Second)
	_, midAliveEarly := midStore.Get(midKey)
	_, farAliveEarly := farStore.Get(farKey)
	assert.True(t, midAliveEarly, "mid-distance entry should outlive the minimum floor")
	assert.False(t, farAliveEarly, "maximal-distance entry should expire at the minimum floor")

	mock.Advance(storage.DefaultBaseExpiration)
	_, nearAlive := nearStore.Get(nearKey)
	_, midAlive := midStore.Get(midKey)
	assert.False(t, nearAlive, "near entry should have expired by BaseExpiration + floor")
	assert.False(t, midAlive, "mid entry should have expired well before BaseExpiration + floor")
}

func TestLen_NeverExceedsMax(t *testing.T) {
	t.Parallel()

	parent, err := hash.Random()
	require.NoError(t, err)
	store := storage.New(parent, storage.WithMaxEntries(5))

	for i := 0; i < 20; i++ {
		key, err := hash.Random()
		require.NoError(t, err)
		store.Store(key, storage.NewBlobEntry(nil))
	}

	assert.LessOrEqual(t, store.Len(), 5)
}

func TestSweepExpired_RemovesOnlyPastEntries(t *testing.T) {
	t.Parallel()

	parent, err := hash.Random()
	require.NoError(t, err)

	mock := clock.NewMock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := storage.New(parent, storage.WithClock(mock), storage.WithBaseExpiration(time.Hour))

	expiring, _ := hash.Random()
	store.Store(expiring, storage.NewBlobEntry(nil))

	mock.Advance(2 * time.Hour)

	surviving, _ := hash.Random()
	store.Store(surviving, storage.NewBlobEntry(nil))

	removed := store.SweepExpired()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())
}
