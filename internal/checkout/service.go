package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-food-cart/internal/cart"
	"golang-food-cart/pkg/messaging"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

// OrderPlacedEvent is the type of the message sent when a checkout completes.
const OrderPlacedEvent = "order.placed"

// PaymentMethod is a bank transfer option offered at checkout.
type PaymentMethod struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultPaymentMethods are the banks accepted at checkout.
var DefaultPaymentMethods = []PaymentMethod{
	{ID: "BNI", Name: "Bank Negara Indonesia"},
	{ID: "BRI", Name: "Bank Rakyat Indonesia"},
	{ID: "BCA", Name: "Bank Central Asia"},
	{ID: "Mandiri", Name: "Mandiri"},
}

// Fees are flat per-order charges added on top of the cart total.
type Fees struct {
	Delivery int64
	Service  int64
}

// DefaultFees matches the storefront's flat delivery and service charges.
var DefaultFees = Fees{Delivery: 10000, Service: 1000}

type GroupSummary struct {
	RestaurantID   string `json:"restaurant_id"`
	RestaurantName string `json:"restaurant_name"`
	ItemCount      int    `json:"item_count"`
	Subtotal       int64  `json:"subtotal"`
}

type Summary struct {
	Groups      []GroupSummary `json:"restaurants"`
	ItemCount   int            `json:"item_count"`
	Subtotal    int64          `json:"subtotal"`
	DeliveryFee int64          `json:"delivery_fee"`
	ServiceFee  int64          `json:"service_fee"`
	Total       int64          `json:"total"`
}

type Receipt struct {
	OrderID       string    `json:"order_id"`
	PaymentMethod string    `json:"payment_method"`
	Summary       Summary   `json:"summary"`
	Lines         cart.Cart `json:"cart"`
	PlacedAt      time.Time `json:"placed_at"`
}

// Service reads the cart to price an order and empties it once the order is placed.
type Service struct {
	store      *cart.Store
	publisher  messaging.Publisher
	orderTopic string
	fees       Fees
	methods    []PaymentMethod
	logger     logrus.FieldLogger
	now        func() time.Time
}

func NewService(store *cart.Store, publisher messaging.Publisher, orderTopic string, fees Fees, logger logrus.FieldLogger) *Service {
	return &Service{
		store:      store,
		publisher:  publisher,
		orderTopic: orderTopic,
		fees:       fees,
		methods:    DefaultPaymentMethods,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) PaymentMethods() []PaymentMethod {
	return append([]PaymentMethod(nil), s.methods...)
}

// Summary prices the given cart. An empty cart has no fees.
func (s *Service) Summary(c cart.Cart) Summary {
	summary := Summary{
		Groups:    make([]GroupSummary, 0, len(c.Groups)),
		ItemCount: c.ItemCount,
		Subtotal:  c.TotalAmount,
	}
	for _, g := range c.Groups {
		count := 0
		for _, item := range g.Items {
			count += item.Quantity
		}
		summary.Groups = append(summary.Groups, GroupSummary{
			RestaurantID:   g.RestaurantID,
			RestaurantName: g.RestaurantName,
			ItemCount:      count,
			Subtotal:       g.Subtotal,
		})
	}
	if !c.IsEmpty() {
		summary.DeliveryFee = s.fees.Delivery
		summary.ServiceFee = s.fees.Service
	}
	summary.Total = summary.Subtotal + summary.DeliveryFee + summary.ServiceFee
	return summary
}

// Complete takes the whole cart, leaving it empty, and places an order for
// exactly what was taken. Items added afterwards stay in the cart.
func (s *Service) Complete(ctx context.Context, userID, paymentMethod string) (*Receipt, error) {
	if !s.knownMethod(paymentMethod) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, paymentMethod)
	}

	c, ok := s.store.TakeCart()
	if !ok {
		return nil, ErrEmptyCart
	}

	receipt := &Receipt{
		OrderID:       uuid.NewString(),
		PaymentMethod: paymentMethod,
		Summary:       s.Summary(c),
		Lines:         c,
		PlacedAt:      s.now(),
	}

	event := messaging.OrderEvent{
		Type:    OrderPlacedEvent,
		OrderID: receipt.OrderID,
		UserID:  userID,
		Data:    receipt,
	}
	if err := s.publisher.Publish(ctx, s.orderTopic, receipt.OrderID, event); err != nil {
		s.logger.WithError(err).WithField("order_id", receipt.OrderID).Warn("failed to publish order event")
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":       receipt.OrderID,
		"payment_method": paymentMethod,
		"total":          receipt.Summary.Total,
	}).Info("order placed")
	return receipt, nil
}

func (s *Service) knownMethod(id string) bool {
	for _, m := range s.methods {
		if m.ID == id {
			return true
		}
	}
	return false
}
