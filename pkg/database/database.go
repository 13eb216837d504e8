package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB holds the catalog database handle.
type MongoDB struct {
	Database *mongo.Database
	timeout  time.Duration
}

// NewMongoDB connects and pings the server before returning.
func NewMongoDB(ctx context.Context, url, dbName string, timeout time.Duration, logger logrus.FieldLogger) (*MongoDB, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Test connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.WithField("database", dbName).Info("Connected to MongoDB successfully")
	return &MongoDB{Database: client.Database(dbName), timeout: timeout}, nil
}

func (db *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), db.timeout)
	defer cancel()
	return db.Database.Client().Disconnect(ctx)
}
