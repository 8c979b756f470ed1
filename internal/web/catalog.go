// Package web is the browser-facing catalog client. It renders server-side
// HTML and drives the catalog API through internal/client.
package web

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/iyhunko/product-catalog/internal/client"
	"github.com/shopspring/decimal"
)

// ErrNotConfirmed is returned by Delete when the user did not confirm.
var ErrNotConfirmed = errors.New("delete not confirmed")

// API is the subset of the catalog API the web client uses.
type API interface {
	ListProducts(ctx context.Context, opts client.ListOptions) ([]client.Product, error)
	GetProduct(ctx context.Context, id string) (*client.Product, error)
	CreateProduct(ctx context.Context, in client.ProductInput) (*client.Product, error)
	UpdateProduct(ctx context.Context, id string, in client.ProductInput) (*client.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// ProductForm holds the raw text of the create/edit form.
type ProductForm struct {
	ID            string
	Name          string
	Description   string
	Price         string
	Category      string
	StockQuantity string
	ImageURL      string
}

// ViewModel is the complete UI state for one rendered page.
type ViewModel struct {
	Products      []client.Product
	Loading       bool
	Error         string
	FormVisible   bool
	Editing       *client.Product
	Form          ProductForm
	PendingDelete *client.Product
}

// Catalog implements the UI operations on a ViewModel.
type Catalog struct {
	api API
}

func NewCatalog(api API) *Catalog {
	return &Catalog{api: api}
}

// Load replaces vm.Products with the current server list.
func (c *Catalog) Load(ctx context.Context, vm *ViewModel) error {
	vm.Loading = true
	products, err := c.api.ListProducts(ctx, client.ListOptions{})
	vm.Loading = false
	if err != nil {
		return c.fail(vm, "load products", err)
	}
	vm.Products = products
	return nil
}

func (c *Catalog) OpenCreateForm(vm *ViewModel) {
	vm.FormVisible = true
	vm.Editing = nil
	vm.Form = ProductForm{}
}

// OpenEditForm fetches the product and fills the form with its values.
func (c *Catalog) OpenEditForm(ctx context.Context, vm *ViewModel, id string) error {
	product, err := c.api.GetProduct(ctx, id)
	if err != nil {
		return c.fail(vm, "load product", err)
	}
	vm.FormVisible = true
	vm.Editing = product
	vm.Form = formFromProduct(product)
	return nil
}

func (c *Catalog) CloseForm(vm *ViewModel) {
	vm.FormVisible = false
	vm.Editing = nil
	vm.Form = ProductForm{}
}

// Submit creates a product when form.ID is empty and updates it otherwise.
// On success the form is closed and the list re-fetched.
func (c *Catalog) Submit(ctx context.Context, vm *ViewModel, form ProductForm) error {
	vm.Form = form
	vm.FormVisible = true

	in := form.input()
	if form.ID == "" {
		if _, err := c.api.CreateProduct(ctx, in); err != nil {
			return c.fail(vm, "create product", err)
		}
	} else {
		if _, err := c.api.UpdateProduct(ctx, form.ID, in); err != nil {
			return c.fail(vm, "update product", err)
		}
	}

	c.CloseForm(vm)
	vm.Error = ""
	return c.Load(ctx, vm)
}

// ConfirmDelete loads the product the user is about to delete.
func (c *Catalog) ConfirmDelete(ctx context.Context, vm *ViewModel, id string) error {
	product, err := c.api.GetProduct(ctx, id)
	if err != nil {
		return c.fail(vm, "load product", err)
	}
	vm.PendingDelete = product
	return nil
}

// Delete removes a product once the user confirmed, then re-fetches the list.
func (c *Catalog) Delete(ctx context.Context, vm *ViewModel, id string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := c.api.DeleteProduct(ctx, id); err != nil {
		return c.fail(vm, "delete product", err)
	}
	vm.PendingDelete = nil
	vm.Error = ""
	return c.Load(ctx, vm)
}

func (c *Catalog) fail(vm *ViewModel, action string, err error) error {
	vm.Error = fmt.Sprintf("Failed to %s: %s", action, errorDetail(err))
	return fmt.Errorf("%s: %w", action, err)
}

func errorDetail(err error) string {
	var transportErr *client.TransportError
	if errors.As(err, &transportErr) {
		return "the catalog service is unreachable"
	}
	return err.Error()
}

// input converts the form text into an API body. Numbers that do not parse
// are sent as null.
func (f ProductForm) input() client.ProductInput {
	in := client.ProductInput{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Category:    strings.TrimSpace(f.Category),
	}
	if price, err := decimal.NewFromString(strings.TrimSpace(f.Price)); err == nil {
		v := price.InexactFloat64()
		in.Price = &v
	}
	if stock, err := strconv.Atoi(strings.TrimSpace(f.StockQuantity)); err == nil {
		in.StockQuantity = &stock
	}
	if img := strings.TrimSpace(f.ImageURL); img != "" {
		in.ImageURL = &img
	}
	return in
}

func formFromProduct(p *client.Product) ProductForm {
	form := ProductForm{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         decimal.NewFromFloat(p.Price).String(),
		Category:      p.Category,
		StockQuantity: strconv.Itoa(p.StockQuantity),
	}
	if p.ImageURL != nil {
		form.ImageURL = *p.ImageURL
	}
	return form
}

// formatPrice renders a price with exactly two decimals.
func formatPrice(price float64) string {
	return decimal.NewFromFloat(price).StringFixed(2)
}
