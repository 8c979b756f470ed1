package model

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog item with its properties and metadata.
type Product struct {
	ID            uuid.UUID
	Name          string
	Description   string
	Price         float64
	Category      string
	StockQuantity int
	ImageURL      *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// InitMeta initializes the product metadata including ID and timestamps.
func (p *Product) InitMeta() {
	p.ID = uuid.New()
	now := Now()
	p.CreatedAt = now
	p.UpdatedAt = now
}

// Apply copies every field set in patch onto the product and stamps UpdatedAt.
func (p *Product) Apply(patch ProductPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.StockQuantity != nil {
		p.StockQuantity = *patch.StockQuantity
	}
	if patch.ImageURL != nil {
		p.ImageURL = patch.ImageURL
	}
	if !patch.UpdatedAt.IsZero() {
		p.UpdatedAt = patch.UpdatedAt
	}
}

// ProductPatch holds a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Name          *string
	Description   *string
	Price         *float64
	Category      *string
	StockQuantity *int
	ImageURL      *string

	// UpdatedAt is stamped by the service, never by callers.
	UpdatedAt time.Time
}

// IsEmpty reports whether the patch changes no product field.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil &&
		p.Description == nil &&
		p.Price == nil &&
		p.Category == nil &&
		p.StockQuantity == nil &&
		p.ImageURL == nil
}

// Now returns the current UTC time at millisecond precision, the finest
// resolution every supported store keeps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// NextUpdatedAt returns a timestamp strictly after prev, normally the current time.
func NextUpdatedAt(prev time.Time) time.Time {
	now := Now()
	if !now.After(prev) {
		return prev.Add(time.Millisecond)
	}
	return now
}
