package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func productDoc(id uuid.UUID, name, category string, createdAt time.Time) bson.D {
	return bson.D{
		{Key: "id", Value: id.String()},
		{Key: "name", Value: name},
		{Key: "description", Value: "Wireless"},
		{Key: "price", Value: 129.99},
		{Key: "category", Value: category},
		{Key: "stock_quantity", Value: 50},
		{Key: "image_url", Value: nil},
		{Key: "created_at", Value: createdAt},
		{Key: "updated_at", Value: createdAt},
	}
}

func TestProductRepository_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("successful creation", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		product := &model.Product{
			Name:          "Headphones",
			Description:   "Wireless",
			Price:         129.99,
			Category:      "Electronics",
			StockQuantity: 50,
		}

		created, err := repo.Create(context.Background(), product)
		require.NoError(mt, err)
		assert.NotEqual(mt, uuid.Nil, created.ID)
		assert.Equal(mt, created.CreatedAt, created.UpdatedAt)
		assert.False(mt, created.CreatedAt.IsZero())
	})

	mt.Run("duplicate id", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		_, err := repo.Create(context.Background(), &model.Product{ID: uuid.New(), Name: "dup"})
		require.Error(mt, err)
		var uniqueErr *repository.UniqueConstraintError
		assert.ErrorAs(mt, err, &uniqueErr)
	})
}

func TestProductRepository_FindByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "catalog.products"

	mt.Run("successful find", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll)
		id := uuid.New()
		createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, productDoc(id, "Headphones", "Electronics", createdAt)))

		found, err := repo.FindByID(context.Background(), id)
		require.NoError(mt, err)
		assert.Equal(mt, id, found.ID)
		assert.Equal(mt, "Headphones", found.Name)
		assert.Equal(mt, 129.99, found.Price)
		assert.Equal(mt, 50, found.StockQuantity)
		assert.Nil(mt, found.ImageURL)
		assert.True(mt, createdAt.Equal(found.CreatedAt))
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		found, err := repo.FindByID(context.Background(), uuid.New())
		assert.Nil(mt, found)
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}

func TestProductRepository_List(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "catalog.products"

	mt.Run("returns decoded products", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll)
		now := time.Now().UTC().Truncate(time.Millisecond)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			productDoc(uuid.New(), "Newer", "Electronics", now),
			productDoc(uuid.New(), "Older", "Books", now.Add(-time.Minute)),
		))

		products, err := repo.List(context.Background(), *repository.NewQuery())
		require.NoError(mt, err)
		require.Len(mt, products, 2)
		assert.Equal(mt, "Newer", products[0].Name)
		assert.Equal(mt, "Older", products[1].Name)
	})

	mt.Run("empty collection yields empty slice", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		products, err := repo.List(context.Background(), *repository.NewQuery().With(repository.CategoryField, "Garden"))
		require.NoError(mt, err)
		assert.NotNil(mt, products)
		assert.Empty(mt, products)
	})

	mt.Run("command error", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad query"}))

		_, err := repo.List(context.Background(), *repository.NewQuery())
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to query products")
	})
}

func TestProductRepository_Update(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns updated document", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll)
		id := uuid.New()
		createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		doc := productDoc(id, "Headphones", "Electronics", createdAt)
		doc[3] = bson.E{Key: "price", Value: 119.99}
		doc[8] = bson.E{Key: "updated_at", Value: createdAt.Add(time.Hour)}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc}))

		price := 119.99
		updated, err := repo.Update(context.Background(), id, model.ProductPatch{Price: &price})
		require.NoError(mt, err)
		assert.Equal(mt, 119.99, updated.Price)
		assert.Equal(mt, "Headphones", updated.Name)
		assert.True(mt, updated.UpdatedAt.After(updated.CreatedAt))
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		name := "x"
		_, err := repo.Update(context.Background(), uuid.New(), model.ProductPatch{Name: &name})
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}

func TestProductRepository_DeleteByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("successful delete", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		err := repo.DeleteByID(context.Background(), uuid.New())
		assert.NoError(mt, err)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.DeleteByID(context.Background(), uuid.New())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}

func TestSetFields(t *testing.T) {
	name := "Speaker"
	stock := 0
	stamp := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	set := setFields(model.ProductPatch{Name: &name, StockQuantity: &stock, UpdatedAt: stamp})

	assert.Equal(t, bson.D{
		{Key: "name", Value: "Speaker"},
		{Key: "stock_quantity", Value: 0},
		{Key: "updated_at", Value: stamp},
	}, set)
}
