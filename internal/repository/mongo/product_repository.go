package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ProductRepository stores products as documents in a MongoDB collection.
type ProductRepository struct {
	coll *mongo.Collection
}

// NewProductRepository creates a new ProductRepository over the given collection.
func NewProductRepository(coll *mongo.Collection) *ProductRepository {
	return &ProductRepository{coll: coll}
}

// EnsureIndexes creates the unique id index and the category listing index.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_id"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("category_created_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new product document.
func (r *ProductRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	// Only initialize metadata if not already set
	if product.ID == uuid.Nil {
		product.InitMeta()
	}

	if _, err := r.coll.InsertOne(ctx, toDocument(product)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &repository.UniqueConstraintError{Detail: "id " + product.ID.String()}
		}
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	return product, nil
}

// List returns products newest first, honoring the query filters and pagination.
func (r *ProductRepository) List(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	filter := bson.D{}
	if category, ok := query.Values[repository.CategoryField]; ok {
		filter = append(filter, bson.E{Key: "category", Value: category})
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "id", Value: -1}}).
		SetSkip(int64(query.Skip)).
		SetLimit(int64(query.EffectiveLimit()))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]*model.Product, 0, len(docs))
	for _, doc := range docs {
		product, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

// FindByID retrieves a single product by ID.
func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var doc productDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "id", Value: id.String()}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return doc.toModel()
}

// Update applies the patch with a single $set and returns the updated document.
func (r *ProductRepository) Update(ctx context.Context, id uuid.UUID, patch model.ProductPatch) (*model.Product, error) {
	if patch.UpdatedAt.IsZero() {
		patch.UpdatedAt = model.Now()
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc productDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "id", Value: id.String()}},
		bson.D{{Key: "$set", Value: setFields(patch)}},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return doc.toModel()
}

// DeleteByID deletes a product by ID.
func (r *ProductRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	result, err := r.coll.DeleteOne(ctx, bson.D{{Key: "id", Value: id.String()}})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("product %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

// Ping checks that the MongoDB deployment is reachable.
func (r *ProductRepository) Ping(ctx context.Context) error {
	if err := r.coll.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return nil
}
