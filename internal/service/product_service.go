package service

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/events"
	"github.com/iyhunko/product-catalog/internal/metrics"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
)

// CreateProductInput carries the fields accepted when creating a product.
type CreateProductInput struct {
	Name          string   `json:"name" validate:"required,min=1,max=200"`
	Description   string   `json:"description" validate:"required,min=1,max=1000"`
	Price         *float64 `json:"price" validate:"required,gt=0"`
	Category      string   `json:"category" validate:"required,min=1,max=100"`
	StockQuantity *int     `json:"stock_quantity" validate:"required,gte=0"`
	ImageURL      *string  `json:"image_url"`
}

// UpdateProductInput carries a partial update; nil fields are left unchanged.
type UpdateProductInput struct {
	Name          *string  `json:"name" validate:"omitnil,min=1,max=200"`
	Description   *string  `json:"description" validate:"omitnil,min=1,max=1000"`
	Price         *float64 `json:"price" validate:"omitnil,gt=0"`
	Category      *string  `json:"category" validate:"omitnil,min=1,max=100"`
	StockQuantity *int     `json:"stock_quantity" validate:"omitnil,gte=0"`
	ImageURL      *string  `json:"image_url"`
}

func (in UpdateProductInput) patch() model.ProductPatch {
	return model.ProductPatch{
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		Category:      in.Category,
		StockQuantity: in.StockQuantity,
		ImageURL:      in.ImageURL,
	}
}

// HealthStatus is the static liveness payload.
type HealthStatus struct {
	Status string `json:"status"`
}

type ProductService struct {
	repo      repository.ProductRepository
	publisher events.Publisher
	validate  *validator.Validate
}

// NewProductService creates the service. A nil publisher disables product events.
func NewProductService(repo repository.ProductRepository, publisher events.Publisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		validate:  newValidator(),
	}
}

func (ps *ProductService) validateInput(in any) error {
	if err := ps.validate.Struct(in); err != nil {
		err = toValidationError(err)
		if verr, ok := err.(*ValidationError); ok {
			for _, f := range verr.Fields {
				metrics.ValidationFailures.WithLabelValues(f.Field).Inc()
			}
		}
		return err
	}
	return nil
}

func (ps *ProductService) CreateProduct(ctx context.Context, in CreateProductInput) (*model.Product, error) {
	if err := ps.validateInput(in); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:          in.Name,
		Description:   in.Description,
		Price:         *in.Price,
		Category:      in.Category,
		StockQuantity: *in.StockQuantity,
		ImageURL:      in.ImageURL,
	}
	product.InitMeta()

	created, err := ps.repo.Create(ctx, product)
	if err != nil {
		return nil, err
	}

	metrics.ProductsCreated.Inc()
	ps.publish(ctx, events.ActionCreated, created)

	return created, nil
}

func (ps *ProductService) ListProducts(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	return ps.repo.List(ctx, query)
}

// ListProductsByCategory returns products whose category equals category exactly.
func (ps *ProductService) ListProductsByCategory(ctx context.Context, category string, query repository.Query) ([]*model.Product, error) {
	filtered := query
	filtered.Values = map[repository.QueryField]string{}
	for k, v := range query.Values {
		filtered.Values[k] = v
	}
	filtered.Values[repository.CategoryField] = category
	return ps.repo.List(ctx, filtered)
}

func (ps *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return ps.repo.FindByID(ctx, id)
}

// UpdateProduct applies the supplied fields only. An input without fields
// returns the stored product unchanged.
func (ps *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, in UpdateProductInput) (*model.Product, error) {
	if err := ps.validateInput(in); err != nil {
		return nil, err
	}

	existing, err := ps.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := in.patch()
	if patch.IsEmpty() {
		return existing, nil
	}
	patch.UpdatedAt = model.NextUpdatedAt(existing.UpdatedAt)

	updated, err := ps.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	metrics.ProductsUpdated.Inc()
	ps.publish(ctx, events.ActionUpdated, updated)

	return updated, nil
}

func (ps *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	// Find the product first to get its details for the message
	product, err := ps.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := ps.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	metrics.ProductsDeleted.Inc()
	ps.publish(ctx, events.ActionDeleted, product)

	return nil
}

// Health reports liveness without touching any dependency.
func (ps *ProductService) Health() HealthStatus {
	return HealthStatus{Status: "healthy"}
}

// Ready reports whether the product store is reachable.
func (ps *ProductService) Ready(ctx context.Context) error {
	return ps.repo.Ping(ctx)
}

func (ps *ProductService) publish(ctx context.Context, action events.Action, product *model.Product) {
	if ps.publisher == nil {
		return
	}
	msg := events.NewProductMessage(action, product)
	if err := ps.publisher.PublishProductMessage(ctx, msg); err != nil {
		// Log error but don't fail the request
		metrics.EventPublishFailures.Inc()
		slog.Error("Failed to publish product event", slog.Any("err", err), slog.String("action", string(action)), slog.String("product_id", msg.ProductID))
	}
}
