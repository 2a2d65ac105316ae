package mongodb

import (
	"context"
	"fmt"
	"time"

	"civicdesk/internal/conf"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

// NewMongoDB connects to the configured deployment and verifies it with a ping.
// The returned cleanup disconnects the client.
func NewMongoDB(cfg *conf.MongodbConfig, logger *zap.Logger) (*mongo.Client, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionURI(cfg)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("connected to mongodb", zap.String("db", cfg.DB))

	cleanup := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error("failed to disconnect mongodb", zap.Error(err))
		}
	}
	return client, cleanup, nil
}

func connectionURI(cfg *conf.MongodbConfig) string {
	if cfg.URI != "" {
		return cfg.URI
	}
	if cfg.User != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.User, cfg.Password, cfg.Host, cfg.Port)
	}
	return fmt.Sprintf("mongodb://%s:%d", cfg.Host, cfg.Port)
}
