package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher sends JSON-encoded values to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
	Close() error
}

// KafkaProducer keeps one writer per topic. Writers are asynchronous, so
// Publish does not wait for broker acknowledgement.
type KafkaProducer struct {
	brokers []string
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

func NewKafkaProducer(brokers []string) *KafkaProducer {
	return &KafkaProducer{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

func (kp *KafkaProducer) GetWriter(topic string) *kafka.Writer {
	kp.mu.Lock()
	defer kp.mu.Unlock()

	if writer, exists := kp.writers[topic]; exists {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(kp.brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
	}
	kp.writers[topic] = writer
	return writer
}

func (kp *KafkaProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}

	message := kafka.Message{
		Key:   []byte(key),
		Value: jsonData,
	}

	return kp.GetWriter(topic).WriteMessages(ctx, message)
}

func (kp *KafkaProducer) Close() error {
	kp.mu.Lock()
	defer kp.mu.Unlock()

	var firstErr error
	for topic, writer := range kp.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(kp.writers, topic)
	}
	return firstErr
}

// NoopPublisher drops every message. Used when kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, topic, key string, value interface{}) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}

// Event types for async processing
type CartEvent struct {
	Type            string    `json:"type"`
	Op              string    `json:"op"`
	RestaurantID    string    `json:"restaurant_id,omitempty"`
	LineItemID      string    `json:"line_item_id,omitempty"`
	RestaurantCount int       `json:"restaurant_count"`
	ItemCount       int       `json:"item_count"`
	TotalAmount     int64     `json:"total_amount"`
	OccurredAt      time.Time `json:"occurred_at"`
}

type OrderEvent struct {
	Type    string      `json:"type"`
	OrderID string      `json:"order_id"`
	UserID  string      `json:"user_id,omitempty"`
	Data    interface{} `json:"data"`
}
