package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang-food-cart/internal/cart"
	"golang-food-cart/pkg/storage"

	"github.com/sirupsen/logrus"
)

// DefaultKey is the storage key the cart is kept under.
const DefaultKey = "cart-storage"

// schemaVersion is written into every record. Records are not migrated.
const schemaVersion = 0

type envelope struct {
	State   persistedState `json:"state"`
	Version int            `json:"version"`
}

type persistedState struct {
	Cart *cart.Cart `json:"cart"`
}

// Encode serializes c into the persisted record layout.
func Encode(c cart.Cart) ([]byte, error) {
	return json.Marshal(envelope{State: persistedState{Cart: &c}, Version: schemaVersion})
}

// Decode parses a persisted record. The result is normalized, so derived
// totals are recomputed instead of read back.
func Decode(data []byte) (cart.Cart, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return cart.Empty(), fmt.Errorf("decode cart record: %w", err)
	}
	if env.State.Cart == nil {
		return cart.Empty(), errors.New("decode cart record: missing cart")
	}
	return cart.Normalize(*env.State.Cart), nil
}

// Adapter mirrors a cart store into durable storage and restores it at
// startup. Storage failures are logged and never reach the store.
type Adapter struct {
	storage storage.Storage
	key     string
	timeout time.Duration
	logger  logrus.FieldLogger

	mu      sync.Mutex
	closed  bool
	detach  func()
	pending chan cart.Cart
	done    chan struct{}
}

func NewAdapter(s storage.Storage, key string, timeout time.Duration, logger logrus.FieldLogger) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Adapter{
		storage: s,
		key:     key,
		timeout: timeout,
		logger:  logger.WithField("storage_key", key),
		pending: make(chan cart.Cart, 1),
		done:    make(chan struct{}),
	}
}

// Rehydrate reads the persisted cart. Any failure yields an empty cart.
func (a *Adapter) Rehydrate(ctx context.Context) cart.Cart {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	data, err := a.storage.Load(ctx, a.key)
	if errors.Is(err, storage.ErrNotFound) {
		a.logger.Info("no persisted cart, starting empty")
		return cart.Empty()
	}
	if err != nil {
		a.logger.WithError(err).Warn("failed to read persisted cart, starting empty")
		return cart.Empty()
	}

	c, err := Decode(data)
	if err != nil {
		a.logger.WithError(err).Warn("discarding unreadable cart record")
		return cart.Empty()
	}

	a.logger.WithFields(logrus.Fields{
		"restaurants": len(c.Groups),
		"item_count":  c.ItemCount,
	}).Info("cart restored")
	return c
}

// Attach subscribes to store and starts the writer. It must be called once.
func (a *Adapter) Attach(store *cart.Store) {
	a.mu.Lock()
	a.detach = store.Subscribe(a.onChange)
	a.mu.Unlock()

	go a.run()
}

// Close stops mirroring and waits until the last pending state is written.
func (a *Adapter) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	detach := a.detach
	close(a.pending)
	a.mu.Unlock()

	if detach != nil {
		detach()
		<-a.done
	}
}

// onChange queues the newest state, replacing an unwritten older one.
// Notifications are serialized by the store, so this has a single producer.
func (a *Adapter) onChange(ev cart.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	select {
	case a.pending <- ev.Cart:
		return
	default:
	}
	select {
	case <-a.pending:
	default:
	}
	a.pending <- ev.Cart
}

func (a *Adapter) run() {
	defer close(a.done)
	for c := range a.pending {
		a.write(c)
	}
}

func (a *Adapter) write(c cart.Cart) {
	data, err := Encode(c)
	if err != nil {
		a.logger.WithError(err).Error("failed to encode cart")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	if err := a.storage.Save(ctx, a.key, data); err != nil {
		a.logger.WithError(err).Warn("failed to persist cart, continuing in memory")
		return
	}
	a.logger.WithField("item_count", c.ItemCount).Debug("cart persisted")
}
