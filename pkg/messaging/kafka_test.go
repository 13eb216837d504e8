package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKafkaProducer_ReusesWriterPerTopic(t *testing.T) {
	kp := NewKafkaProducer([]string{"localhost:9092"})

	w1 := kp.GetWriter("cart-events")
	w2 := kp.GetWriter("cart-events")
	w3 := kp.GetWriter("orders")

	assert.Same(t, w1, w2)
	assert.NotSame(t, w1, w3)
	assert.Equal(t, "orders", w3.Topic)
	assert.True(t, w1.Async)

	assert.NoError(t, kp.Close())
	assert.Empty(t, kp.writers)
}

func TestKafkaProducer_RejectsUnencodableValue(t *testing.T) {
	kp := NewKafkaProducer([]string{"localhost:9092"})
	defer kp.Close()

	err := kp.Publish(context.Background(), "cart-events", "k", make(chan int))
	assert.Error(t, err)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), "t", "k", CartEvent{}))
	assert.NoError(t, p.Close())
}
