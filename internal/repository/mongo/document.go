package mongo

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/model"
	"go.mongodb.org/mongo-driver/bson"
)

// productDocument is the stored shape of a product. The MongoDB _id is left
// to the server; products are addressed by the "id" field.
type productDocument struct {
	ID            string    `bson:"id"`
	Name          string    `bson:"name"`
	Description   string    `bson:"description"`
	Price         float64   `bson:"price"`
	Category      string    `bson:"category"`
	StockQuantity int       `bson:"stock_quantity"`
	ImageURL      *string   `bson:"image_url"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func toDocument(p *model.Product) productDocument {
	return productDocument{
		ID:            p.ID.String(),
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Category:      p.Category,
		StockQuantity: p.StockQuantity,
		ImageURL:      p.ImageURL,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (d productDocument) toModel() (*model.Product, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid product id %q in document: %w", d.ID, err)
	}
	return &model.Product{
		ID:            id,
		Name:          d.Name,
		Description:   d.Description,
		Price:         d.Price,
		Category:      d.Category,
		StockQuantity: d.StockQuantity,
		ImageURL:      d.ImageURL,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}, nil
}

// setFields builds the $set document for a patch.
func setFields(patch model.ProductPatch) bson.D {
	set := bson.D{}
	if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *patch.Description})
	}
	if patch.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *patch.Price})
	}
	if patch.Category != nil {
		set = append(set, bson.E{Key: "category", Value: *patch.Category})
	}
	if patch.StockQuantity != nil {
		set = append(set, bson.E{Key: "stock_quantity", Value: *patch.StockQuantity})
	}
	if patch.ImageURL != nil {
		set = append(set, bson.E{Key: "image_url", Value: *patch.ImageURL})
	}
	return append(set, bson.E{Key: "updated_at", Value: patch.UpdatedAt})
}
