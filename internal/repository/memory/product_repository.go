// Package memory keeps products in process memory. It backs local runs
// without a database and the HTTP-level tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
)

type ProductRepository struct {
	mu       sync.RWMutex
	products map[uuid.UUID]model.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: map[uuid.UUID]model.Product{}}
}

func (r *ProductRepository) Create(_ context.Context, product *model.Product) (*model.Product, error) {
	if product.ID == uuid.Nil {
		product.InitMeta()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; ok {
		return nil, &repository.UniqueConstraintError{Detail: fmt.Sprintf("id %s already exists", product.ID)}
	}
	r.products[product.ID] = *product

	stored := *product
	return &stored, nil
}

// List filters by exact category and orders by created_at desc, id desc.
func (r *ProductRepository) List(_ context.Context, query repository.Query) ([]*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, byCategory := query.Values[repository.CategoryField]

	products := []*model.Product{}
	for _, p := range r.products {
		if byCategory && p.Category != category {
			continue
		}
		p := p
		products = append(products, &p)
	}

	sort.Slice(products, func(i, j int) bool {
		if products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].ID.String() > products[j].ID.String()
		}
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})

	if query.Skip >= len(products) {
		return []*model.Product{}, nil
	}
	products = products[query.Skip:]
	if limit := query.EffectiveLimit(); len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (r *ProductRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, repository.ErrNotFound)
	}
	return &p, nil
}

func (r *ProductRepository) Update(_ context.Context, id uuid.UUID, patch model.ProductPatch) (*model.Product, error) {
	if patch.UpdatedAt.IsZero() {
		patch.UpdatedAt = model.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, repository.ErrNotFound)
	}
	p.Apply(patch)
	r.products[id] = p
	return &p, nil
}

func (r *ProductRepository) DeleteByID(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, repository.ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

func (r *ProductRepository) Ping(context.Context) error {
	return nil
}
