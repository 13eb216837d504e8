package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "cart-storage", cfg.Storage.Key)
	assert.Equal(t, 2*time.Second, cfg.Storage.Timeout)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "cart-events", cfg.Kafka.CartTopic)
	assert.Equal(t, "orders", cfg.Kafka.OrderTopic)
	assert.Equal(t, int64(10000), cfg.Checkout.DeliveryFee)
	assert.Equal(t, int64(1000), cfg.Checkout.ServiceFee)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("STORAGE_TIMEOUT", "750ms")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://localhost:5173")
	t.Setenv("CHECKOUT_DELIVERY_FEE", "12000")

	cfg := LoadConfig()

	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, 750*time.Millisecond, cfg.Storage.Timeout)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowOrigins)
	assert.Equal(t, int64(12000), cfg.Checkout.DeliveryFee)
}

func TestGetEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("BAD_INT", "twelve")
	t.Setenv("BAD_BOOL", "maybe")
	t.Setenv("BAD_DURATION", "soon")
	t.Setenv("EMPTY_LIST", " , ")

	assert.Equal(t, 3, getEnvInt("BAD_INT", 3))
	assert.True(t, getEnvBool("BAD_BOOL", true))
	assert.Equal(t, time.Minute, getEnvDuration("BAD_DURATION", time.Minute))
	assert.Equal(t, []string{"x"}, getEnvList("EMPTY_LIST", []string{"x"}))
}
