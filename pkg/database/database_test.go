package database

import (
	"context"
	"testing"
	"time"

	"golang-food-cart/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestNewMongoDB_InvalidURL(t *testing.T) {
	db, err := NewMongoDB(context.Background(), "not-a-mongo-url", "food_delivery", time.Second, logger.Discard())
	assert.Error(t, err)
	assert.Nil(t, db)
}

func TestNewMongoDB_Unreachable(t *testing.T) {
	db, err := NewMongoDB(context.Background(), "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200", "food_delivery", time.Second, logger.Discard())
	assert.Error(t, err)
	assert.Nil(t, db)
}
