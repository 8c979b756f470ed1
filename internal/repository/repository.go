package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/model"
)

var (
	// ErrNotFound is returned when no product matches the requested ID.
	ErrNotFound = errors.New("product not found")
)

// ProductRepository defines the storage operations for products. Every
// operation touches a single document.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) (*model.Product, error)
	List(ctx context.Context, query Query) ([]*model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	Update(ctx context.Context, id uuid.UUID, patch model.ProductPatch) (*model.Product, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
}

// UniqueConstraintError represents a database unique constraint violation error.
type UniqueConstraintError struct {
	Detail string
}

func (u *UniqueConstraintError) Error() string {
	return "resource must be unique: " + u.Detail
}
