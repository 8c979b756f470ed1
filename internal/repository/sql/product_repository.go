package sql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ProductRepository stores each product as a JSONB document in the products table.
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

type productDocument struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	Category      string    `json:"category"`
	StockQuantity int       `json:"stock_quantity"`
	ImageURL      *string   `json:"image_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func decodeProduct(raw []byte) (*model.Product, error) {
	var doc productDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode product document: %w", err)
	}
	return &model.Product{
		ID:            doc.ID,
		Name:          doc.Name,
		Description:   doc.Description,
		Price:         doc.Price,
		Category:      doc.Category,
		StockQuantity: doc.StockQuantity,
		ImageURL:      doc.ImageURL,
		CreatedAt:     doc.CreatedAt.UTC(),
		UpdatedAt:     doc.UpdatedAt.UTC(),
	}, nil
}

func encodeProduct(p *model.Product) ([]byte, error) {
	return json.Marshal(productDocument{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Category:      p.Category,
		StockQuantity: p.StockQuantity,
		ImageURL:      p.ImageURL,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	})
}

// encodePatch renders only the patched keys so that `document || patch` keeps the rest.
func encodePatch(patch model.ProductPatch) ([]byte, error) {
	fields := map[string]any{
		"updated_at": patch.UpdatedAt,
	}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Price != nil {
		fields["price"] = *patch.Price
	}
	if patch.Category != nil {
		fields["category"] = *patch.Category
	}
	if patch.StockQuantity != nil {
		fields["stock_quantity"] = *patch.StockQuantity
	}
	if patch.ImageURL != nil {
		fields["image_url"] = *patch.ImageURL
	}
	return json.Marshal(fields)
}

// uniqueViolation recognizes unique violations from both the pgx and lib/pq drivers.
func uniqueViolation(err error) (string, bool) {
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) && pgError.Code == pqUniqueViolationErrCode {
		return pgError.Detail, true
	}
	var pqError *pq.Error
	if errors.As(err, &pqError) && pqError.Code == pqUniqueViolationErrCode {
		return pqError.Detail, true
	}
	return "", false
}

// Create inserts a new product document into the database.
func (r *ProductRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	// Only initialize metadata if not already set
	if product.ID == uuid.Nil {
		product.InitMeta()
	}

	document, err := encodeProduct(product)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product: %w", err)
	}

	query := `INSERT INTO products (id, document, created_at) VALUES ($1, $2, $3)`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, product.ID, string(document), product.CreatedAt)
	if err != nil {
		if detail, ok := uniqueViolation(err); ok {
			return nil, &repository.UniqueConstraintError{Detail: detail}
		}
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	return product, nil
}

// List retrieves product documents based on the provided query, newest first.
func (r *ProductRepository) List(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT document FROM products WHERE 1=1")

	var args []interface{}
	argIndex := 1

	if category, ok := query.Values[repository.CategoryField]; ok {
		queryBuilder.WriteString(fmt.Sprintf(" AND document->>'category' = $%d", argIndex))
		args = append(args, category)
		argIndex++
	}

	// Order by created_at DESC, id DESC for stable offsets
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")

	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1))
	args = append(args, query.EffectiveLimit(), query.Skip)

	stmt, err := r.db.PrepareContext(ctx, queryBuilder.String())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []*model.Product{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		product, err := decodeProduct(raw)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}

// FindByID retrieves a single product by ID.
func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT document FROM products WHERE id = $1`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	var raw []byte
	err = stmt.QueryRowContext(ctx, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return decodeProduct(raw)
}

// Update merges the patch into the stored document in a single statement.
func (r *ProductRepository) Update(ctx context.Context, id uuid.UUID, patch model.ProductPatch) (*model.Product, error) {
	if patch.UpdatedAt.IsZero() {
		patch.UpdatedAt = model.Now()
	}

	fields, err := encodePatch(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode patch: %w", err)
	}

	query := `UPDATE products SET document = document || $2::jsonb WHERE id = $1 RETURNING document`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare update statement: %w", err)
	}
	defer stmt.Close()

	var raw []byte
	err = stmt.QueryRowContext(ctx, id, string(fields)).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return decodeProduct(raw)
}

// DeleteByID deletes a product by ID.
func (r *ProductRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, repository.ErrNotFound)
	}

	return nil
}

// Ping checks the database connection.
func (r *ProductRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}
