package db

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/Idahel/js-project-api/config"
)

const (
	defaultMongoMaxPool = 25
	defaultMongoMinPool = 2
)

// OpenMongo connects to cfg.URL, pings the primary and returns the
// configured database handle.
func OpenMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Database, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("mongo url is required")
	}

	opts := options.Client().
		ApplyURI(cfg.URL).
		SetMaxPoolSize(defaultMongoMaxPool).
		SetMinPoolSize(defaultMongoMinPool).
		SetMaxConnIdleTime(defaultConnMaxIdle)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, err
	}

	if err := PingMongo(ctx, client); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return client.Database(cfg.Database), nil
}

// PingMongo checks that the primary answers within the default ping timeout.
func PingMongo(ctx context.Context, client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	return client.Ping(ctx, readpref.Primary())
}
