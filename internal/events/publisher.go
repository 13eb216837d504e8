package events

import (
	"context"
	"time"

	"golang-food-cart/internal/cart"
	"golang-food-cart/pkg/messaging"

	"github.com/sirupsen/logrus"
)

// CartEventType is the type field of every cart change message.
const CartEventType = "cart.updated"

// CartPublisher forwards committed cart changes to a message topic.
type CartPublisher struct {
	publisher messaging.Publisher
	topic     string
	sessionID string
	timeout   time.Duration
	logger    logrus.FieldLogger
}

func NewCartPublisher(publisher messaging.Publisher, topic, sessionID string, logger logrus.FieldLogger) *CartPublisher {
	return &CartPublisher{
		publisher: publisher,
		topic:     topic,
		sessionID: sessionID,
		timeout:   time.Second,
		logger:    logger.WithField("topic", topic),
	}
}

// Attach subscribes to store and returns the unsubscribe function.
func (p *CartPublisher) Attach(store *cart.Store) func() {
	return store.Subscribe(p.onChange)
}

func (p *CartPublisher) onChange(ev cart.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.publisher.Publish(ctx, p.topic, p.sessionID, NewCartEvent(ev, time.Now())); err != nil {
		p.logger.WithError(err).WithField("op", ev.Op).Warn("failed to publish cart event")
	}
}

// NewCartEvent summarizes a store event for the wire.
func NewCartEvent(ev cart.Event, at time.Time) messaging.CartEvent {
	return messaging.CartEvent{
		Type:            CartEventType,
		Op:              string(ev.Op),
		RestaurantID:    ev.RestaurantID,
		LineItemID:      ev.LineItemID,
		RestaurantCount: len(ev.Cart.Groups),
		ItemCount:       ev.Cart.ItemCount,
		TotalAmount:     ev.Cart.TotalAmount,
		OccurredAt:      at,
	}
}
