package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iyhunko/product-catalog/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	// ProductsCollection is the collection holding product documents.
	ProductsCollection = "products"

	connectTimeout = 10 * time.Second
)

// StartDB connects to MongoDB, verifies the connection and prepares the
// products collection indexes.
func StartDB(ctx context.Context, storage config.Storage, dbName string) (*mongo.Client, *mongo.Collection, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(storage.MongoURL))
	if err != nil {
		slog.Error("failed to initialize MongoDB connection", slog.Any("err", err))
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	slog.Info("MongoDB connection done", slog.String("database", dbName))

	coll := client.Database(dbName).Collection(ProductsCollection)
	if err := EnsureIndexes(ctx, coll); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	slog.Info("MongoDB indexes ready")

	return client, coll, nil
}
