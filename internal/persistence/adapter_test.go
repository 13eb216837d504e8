package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang-food-cart/internal/cart"
	"golang-food-cart/pkg/logger"
	"golang-food-cart/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStorage fails every call while broken is set.
type flakyStorage struct {
	*storage.MemoryStorage
	mu     sync.Mutex
	broken bool
	saves  int
}

func (f *flakyStorage) setBroken(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broken = b
}

func (f *flakyStorage) Load(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	broken := f.broken
	f.mu.Unlock()
	if broken {
		return nil, errors.New("storage unavailable")
	}
	return f.MemoryStorage.Load(ctx, key)
}

func (f *flakyStorage) Save(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	f.saves++
	broken := f.broken
	f.mu.Unlock()
	if broken {
		return errors.New("quota exceeded")
	}
	return f.MemoryStorage.Save(ctx, key, value)
}

func scenarioCart(t *testing.T) *cart.Store {
	t.Helper()
	store := cart.NewStore(cart.WithLogger(logger.Discard()))
	_, err := store.AddItem(cart.MenuItem{ID: "m1", RestaurantID: "r1", Price: 50000}, "R1", "")
	require.NoError(t, err)
	_, err = store.AddItem(cart.MenuItem{ID: "m1", RestaurantID: "r1", Price: 50000}, "R1", "")
	require.NoError(t, err)
	_, err = store.AddItem(cart.MenuItem{ID: "m2", RestaurantID: "r2", Price: 30000}, "R2", "/r2.png")
	require.NoError(t, err)
	return store
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	before := scenarioCart(t).Snapshot()

	data, err := Encode(before)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version":0`)
	assert.Contains(t, string(data), `"state":{"cart":`)

	after, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte("{not json"))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"state":{},"version":0}`))
	assert.Error(t, err)
}

func TestDecode_RecomputesTotals(t *testing.T) {
	raw := `{"state":{"cart":{"restaurants":[{"restaurant_id":"r1","restaurant_name":"R1",
		"items":[{"id":"l1","menu_item_id":"m1","restaurant_id":"r1","unit_price":1000,"quantity":3,"line_total":5}],
		"subtotal":5}],"total_amount":5,"item_count":1}},"version":0}`

	c, err := Decode([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, int64(3000), c.TotalAmount)
	assert.Equal(t, 3, c.ItemCount)
	assert.Equal(t, int64(3000), c.Groups[0].Subtotal)
}

func TestAdapter_PersistAndReload(t *testing.T) {
	mem := storage.NewMemoryStorage()
	adapter := NewAdapter(mem, DefaultKey, time.Second, logger.Discard())

	store := cart.NewStore(cart.WithInitialCart(adapter.Rehydrate(context.Background())), cart.WithLogger(logger.Discard()))
	adapter.Attach(store)

	_, err := store.AddItem(cart.MenuItem{ID: "m1", RestaurantID: "r1", Price: 50000}, "R1", "")
	require.NoError(t, err)
	_, err = store.AddItem(cart.MenuItem{ID: "m1", RestaurantID: "r1", Price: 50000}, "R1", "")
	require.NoError(t, err)
	_, err = store.AddItem(cart.MenuItem{ID: "m2", RestaurantID: "r2", Price: 30000}, "R2", "")
	require.NoError(t, err)
	before := store.Snapshot()
	adapter.Close()

	// simulated reload
	reloaded := NewAdapter(mem, DefaultKey, time.Second, logger.Discard())
	restored := cart.NewStore(cart.WithInitialCart(reloaded.Rehydrate(context.Background()))).Snapshot()

	require.Len(t, restored.Groups, 2)
	assert.Equal(t, before, restored)
	assert.Equal(t, int64(130000), restored.TotalAmount)
	assert.Equal(t, 3, restored.ItemCount)
	assert.Equal(t, 2, restored.Groups[0].Items[0].Quantity)
	assert.Equal(t, int64(100000), restored.Groups[0].Subtotal)
	assert.Equal(t, int64(30000), restored.Groups[1].Subtotal)
}

func TestAdapter_PersistsLatestStateAfterBurst(t *testing.T) {
	mem := storage.NewMemoryStorage()
	adapter := NewAdapter(mem, "burst", time.Second, logger.Discard())
	store := cart.NewStore(cart.WithLogger(logger.Discard()))
	adapter.Attach(store)

	for i := 0; i < 100; i++ {
		_, err := store.AddItem(cart.MenuItem{ID: "m1", RestaurantID: "r1", Price: 10}, "R1", "")
		require.NoError(t, err)
	}
	adapter.Close()

	data, err := mem.Load(context.Background(), "burst")
	require.NoError(t, err)
	c, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 100, c.ItemCount)
	assert.Equal(t, int64(1000), c.TotalAmount)
}

func TestAdapter_ClearedCartIsPersisted(t *testing.T) {
	mem := storage.NewMemoryStorage()
	adapter := NewAdapter(mem, DefaultKey, time.Second, logger.Discard())
	store := scenarioCart(t)
	adapter.Attach(store)

	store.ClearCart()
	adapter.Close()

	restored := NewAdapter(mem, DefaultKey, time.Second, logger.Discard()).Rehydrate(context.Background())
	assert.True(t, restored.IsEmpty())
	assert.Equal(t, int64(0), restored.TotalAmount)
}

func TestAdapter_RehydrateFallsBackToEmpty(t *testing.T) {
	ctx := context.Background()

	t.Run("missing record", func(t *testing.T) {
		adapter := NewAdapter(storage.NewMemoryStorage(), "", 0, logger.Discard())
		assert.True(t, adapter.Rehydrate(ctx).IsEmpty())
	})

	t.Run("corrupted record", func(t *testing.T) {
		mem := storage.NewMemoryStorage()
		require.NoError(t, mem.Save(ctx, DefaultKey, []byte("\x00garbage")))
		adapter := NewAdapter(mem, DefaultKey, time.Second, logger.Discard())
		assert.True(t, adapter.Rehydrate(ctx).IsEmpty())
	})

	t.Run("storage read failure", func(t *testing.T) {
		flaky := &flakyStorage{MemoryStorage: storage.NewMemoryStorage(), broken: true}
		adapter := NewAdapter(flaky, DefaultKey, time.Second, logger.Discard())
		assert.True(t, adapter.Rehydrate(ctx).IsEmpty())
	})
}

func TestAdapter_WriteFailureKeepsCartWorking(t *testing.T) {
	flaky := &flakyStorage{MemoryStorage: storage.NewMemoryStorage(), broken: true}
	adapter := NewAdapter(flaky, DefaultKey, time.Second, logger.Discard())
	store := cart.NewStore(cart.WithLogger(logger.Discard()))
	adapter.Attach(store)

	c, err := store.AddItem(cart.MenuItem{ID: "m1", RestaurantID: "r1", Price: 50000}, "R1", "")
	require.NoError(t, err)
	assert.Equal(t, 1, c.ItemCount)

	adapter.Close()
	assert.Equal(t, 1, store.Snapshot().ItemCount)

	flaky.setBroken(false)
	_, err = flaky.Load(context.Background(), DefaultKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAdapter_CloseIsIdempotent(t *testing.T) {
	adapter := NewAdapter(storage.NewMemoryStorage(), DefaultKey, time.Second, logger.Discard())
	store := cart.NewStore()
	adapter.Attach(store)
	adapter.Close()
	adapter.Close()

	// mutations after close are not mirrored and do not panic
	_, err := store.AddItem(cart.MenuItem{ID: "m1", RestaurantID: "r1", Price: 1}, "R1", "")
	assert.NoError(t, err)
}
