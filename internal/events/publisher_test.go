package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"golang-food-cart/internal/cart"
	"golang-food-cart/pkg/logger"
	"golang-food-cart/pkg/messaging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	topic string
	key   string
	value interface{}
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (r *recordingPublisher) Publish(ctx context.Context, topic, key string, value interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, published{topic: topic, key: key, value: value})
	return r.err
}

func (r *recordingPublisher) Close() error { return nil }

func TestCartPublisher_PublishesEveryCommit(t *testing.T) {
	rec := &recordingPublisher{}
	store := cart.NewStore(cart.WithLogger(logger.Discard()))
	detach := NewCartPublisher(rec, "cart-events", "session-1", logger.Discard()).Attach(store)

	c, err := store.AddItem(cart.MenuItem{ID: "m1", RestaurantID: "r1", Price: 50000}, "R1", "")
	require.NoError(t, err)
	store.UpdateQuantity(c.Groups[0].Items[0].ID, "r1", 3)
	store.RemoveItem("unknown", "r1")

	require.Len(t, rec.msgs, 2)
	assert.Equal(t, "cart-events", rec.msgs[0].topic)
	assert.Equal(t, "session-1", rec.msgs[0].key)

	last := rec.msgs[1].value.(messaging.CartEvent)
	assert.Equal(t, CartEventType, last.Type)
	assert.Equal(t, string(cart.OpUpdateQuantity), last.Op)
	assert.Equal(t, 3, last.ItemCount)
	assert.Equal(t, int64(150000), last.TotalAmount)
	assert.Equal(t, 1, last.RestaurantCount)

	detach()
	store.ClearCart()
	assert.Len(t, rec.msgs, 2)
}

func TestCartPublisher_FailuresDoNotBreakTheStore(t *testing.T) {
	rec := &recordingPublisher{err: errors.New("broker down")}
	store := cart.NewStore(cart.WithLogger(logger.Discard()))
	NewCartPublisher(rec, "cart-events", "s", logger.Discard()).Attach(store)

	c, err := store.AddItem(cart.MenuItem{ID: "m1", RestaurantID: "r1", Price: 1}, "R1", "")
	require.NoError(t, err)
	assert.Equal(t, 1, c.ItemCount)
	assert.Len(t, rec.msgs, 1)
}
