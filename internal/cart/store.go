package cart

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Op names the mutation that produced an Event.
type Op string

const (
	OpAddItem         Op = "add_item"
	OpRemoveItem      Op = "remove_item"
	OpUpdateQuantity  Op = "update_quantity"
	OpClearCart       Op = "clear_cart"
	OpClearRestaurant Op = "clear_restaurant"
)

// Event is delivered to subscribers after a mutation commits.
// Cart is a private copy of the committed state.
type Event struct {
	Op           Op
	RestaurantID string
	LineItemID   string
	Cart         Cart
}

// Subscriber receives committed changes. It runs synchronously on the
// mutating goroutine, in commit order. It may read the store but must not
// call mutating Store methods itself.
type Subscriber func(Event)

type subscription struct {
	id int
	fn Subscriber
}

// IDGenerator produces line item ids.
type IDGenerator func(item MenuItem) string

// Store owns the Cart aggregate. All mutations are serialized and every one
// recomputes derived totals before the new state becomes visible.
type Store struct {
	mu   sync.Mutex
	cart Cart
	subs []subscription

	nextID int
	// commits counts mutations under mu; notified counts finished
	// notifications under notifyMu. A commit notifies once notified
	// reaches its sequence number.
	commits uint64

	notifyMu   sync.Mutex
	notifyCond *sync.Cond
	notified   uint64

	newID  IDGenerator
	logger logrus.FieldLogger
}

// Option configures a Store.
type Option func(*Store)

// WithInitialCart starts the store from a rehydrated cart. The cart is
// normalized first, so stale or hand-edited totals are never trusted.
func WithInitialCart(c Cart) Option {
	return func(s *Store) {
		s.cart = Normalize(c)
	}
}

// WithIDGenerator replaces the line item id generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithLogger sets the logger used for rejected input.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		cart:   Empty(),
		newID:  func(MenuItem) string { return uuid.NewString() },
		logger: logrus.StandardLogger(),
	}
	s.notifyCond = sync.NewCond(&s.notifyMu)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the committed cart.
func (s *Store) Snapshot() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// Subscribe registers fn for every committed change and returns a function
// that removes it.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// AddItem puts one unit of item into the cart, creating the restaurant group
// and the line as needed. Adding an item already in the cart increments its
// quantity; the unit price of an existing line is not touched.
func (s *Store) AddItem(item MenuItem, restaurantName, restaurantLogo string) (Cart, error) {
	if err := validateMenuItem(item); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"menu_item_id":  item.ID,
			"restaurant_id": item.RestaurantID,
		}).Warn("cart: rejected menu item")
		return s.Snapshot(), err
	}

	s.mu.Lock()
	next := s.cart.Clone()

	gi := next.groupIndex(item.RestaurantID)
	if gi < 0 {
		next.Groups = append(next.Groups, RestaurantGroup{
			RestaurantID:   item.RestaurantID,
			RestaurantName: restaurantName,
			RestaurantLogo: restaurantLogo,
			Items:          []LineItem{},
		})
		gi = len(next.Groups) - 1
	}

	group := &next.Groups[gi]
	lineID := ""
	if li := group.lineIndexByMenuItem(item.ID); li >= 0 {
		if group.Items[li].Quantity >= MaxQuantity {
			return s.unchanged(), fmt.Errorf("%w: %d units of %s", ErrQuantityLimit, MaxQuantity, item.ID)
		}
		group.Items[li].Quantity++
		lineID = group.Items[li].ID
	} else {
		lineID = s.uniqueLineID(next, item)
		group.Items = append(group.Items, LineItem{
			ID:           lineID,
			MenuItemID:   item.ID,
			RestaurantID: item.RestaurantID,
			Name:         item.Name,
			ImageURL:     item.ImageURL,
			UnitPrice:    item.Price,
			Quantity:     1,
		})
	}

	return s.commit(Event{Op: OpAddItem, RestaurantID: item.RestaurantID, LineItemID: lineID}, Recalculate(next.Groups)), nil
}

// RemoveItem drops the line from its restaurant group, and the group itself
// once it has no lines left. Unknown ids are ignored.
func (s *Store) RemoveItem(lineItemID, restaurantID string) Cart {
	return s.removeItem(OpRemoveItem, lineItemID, restaurantID)
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes the line; one above MaxQuantity is clamped to it.
func (s *Store) UpdateQuantity(lineItemID, restaurantID string, quantity int) Cart {
	if quantity <= 0 {
		return s.removeItem(OpUpdateQuantity, lineItemID, restaurantID)
	}
	if quantity > MaxQuantity {
		quantity = MaxQuantity
	}

	s.mu.Lock()
	gi := s.cart.groupIndex(restaurantID)
	if gi < 0 {
		return s.unchanged()
	}
	li := s.cart.Groups[gi].lineIndex(lineItemID)
	if li < 0 || s.cart.Groups[gi].Items[li].Quantity == quantity {
		return s.unchanged()
	}

	next := s.cart.Clone()
	next.Groups[gi].Items[li].Quantity = quantity

	return s.commit(Event{Op: OpUpdateQuantity, RestaurantID: restaurantID, LineItemID: lineItemID}, Recalculate(next.Groups))
}

// ClearCart empties the cart.
func (s *Store) ClearCart() Cart {
	s.mu.Lock()
	if s.cart.IsEmpty() {
		return s.unchanged()
	}
	return s.commit(Event{Op: OpClearCart}, Empty())
}

// TakeCart empties the cart and returns what it held, in one step. It
// reports false and changes nothing when the cart is already empty.
func (s *Store) TakeCart() (Cart, bool) {
	s.mu.Lock()
	if s.cart.IsEmpty() {
		return s.unchanged(), false
	}
	taken := s.cart.Clone()
	s.commit(Event{Op: OpClearCart}, Empty())
	return taken, true
}

// ClearRestaurantCart removes one restaurant group.
func (s *Store) ClearRestaurantCart(restaurantID string) Cart {
	s.mu.Lock()
	gi := s.cart.groupIndex(restaurantID)
	if gi < 0 {
		return s.unchanged()
	}

	next := s.cart.Clone()
	next.Groups = append(next.Groups[:gi], next.Groups[gi+1:]...)

	return s.commit(Event{Op: OpClearRestaurant, RestaurantID: restaurantID}, Recalculate(next.Groups))
}

func (s *Store) removeItem(op Op, lineItemID, restaurantID string) Cart {
	s.mu.Lock()
	gi := s.cart.groupIndex(restaurantID)
	if gi < 0 || s.cart.Groups[gi].lineIndex(lineItemID) < 0 {
		return s.unchanged()
	}

	next := s.cart.Clone()
	group := &next.Groups[gi]
	kept := make([]LineItem, 0, len(group.Items))
	for _, item := range group.Items {
		if item.ID != lineItemID {
			kept = append(kept, item)
		}
	}
	group.Items = kept
	if len(group.Items) == 0 {
		next.Groups = append(next.Groups[:gi], next.Groups[gi+1:]...)
	}

	return s.commit(Event{Op: op, RestaurantID: restaurantID, LineItemID: lineItemID}, Recalculate(next.Groups))
}

// unchanged releases s.mu without committing. Callers must hold s.mu.
func (s *Store) unchanged() Cart {
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// commit installs next as the current state and notifies subscribers in
// commit order. Callers must hold s.mu. It is released before waiting for
// earlier notifications, so subscribers of those may read the store.
func (s *Store) commit(ev Event, next Cart) Cart {
	s.cart = next
	ev.Cart = next.Clone()
	subs := append([]subscription(nil), s.subs...)
	seq := s.commits
	s.commits++
	s.mu.Unlock()

	s.notify(seq, subs, ev)
	return next.Clone()
}

func (s *Store) notify(seq uint64, subs []subscription, ev Event) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	for s.notified != seq {
		s.notifyCond.Wait()
	}
	// a panicking subscriber must not stall later commits
	defer func() {
		s.notified++
		s.notifyCond.Broadcast()
	}()

	for _, sub := range subs {
		sub.fn(ev)
	}
}

func (s *Store) uniqueLineID(c Cart, item MenuItem) string {
	id := s.newID(item)
	for id == "" || lineIDTaken(c, id) {
		id = uuid.NewString()
	}
	return id
}

func lineIDTaken(c Cart, id string) bool {
	for _, g := range c.Groups {
		if g.lineIndex(id) >= 0 {
			return true
		}
	}
	return false
}
