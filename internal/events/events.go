package events

import (
	"context"
	"time"

	"github.com/iyhunko/product-catalog/internal/model"
)

// Action names a product lifecycle change.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// ProductMessage represents a message about a product event.
type ProductMessage struct {
	Action     Action    `json:"action"`
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Price      float64   `json:"price"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewProductMessage builds the message describing action on p.
func NewProductMessage(action Action, p *model.Product) ProductMessage {
	return ProductMessage{
		Action:     action,
		ProductID:  p.ID.String(),
		Name:       p.Name,
		Category:   p.Category,
		Price:      p.Price,
		OccurredAt: model.Now(),
	}
}

// Publisher delivers product messages to a broker.
type Publisher interface {
	PublishProductMessage(ctx context.Context, msg ProductMessage) error
}
