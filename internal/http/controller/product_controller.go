package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
	"github.com/iyhunko/product-catalog/internal/service"
)

// ProductController handles HTTP requests for product operations.
type ProductController struct {
	productService *service.ProductService
}

// NewProductController creates a new ProductController with the given product service.
func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// ProductResponse represents the response body for a product.
type ProductResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	Category      string    `json:"category"`
	StockQuantity int       `json:"stock_quantity"`
	ImageURL      *string   `json:"image_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateProduct handles the HTTP POST request for creating a new product.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req service.CreateProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	createdProduct, err := pc.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err, "create product")
		return
	}

	c.JSON(http.StatusCreated, toProductResponse(createdProduct))
}

// GetProduct handles the HTTP GET request for a single product.
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	product, err := pc.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err, "get product")
		return
	}

	c.JSON(http.StatusOK, toProductResponse(product))
}

// UpdateProduct handles the HTTP PUT request. Only fields present in the body change.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var req service.UpdateProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	updatedProduct, err := pc.productService.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		abortWithError(c, err, "update product")
		return
	}

	c.JSON(http.StatusOK, toProductResponse(updatedProduct))
}

// DeleteProduct handles the HTTP DELETE request for deleting a product by ID.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	if err := pc.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		abortWithError(c, err, "delete product")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListProducts handles the HTTP GET request for listing products with pagination.
func (pc *ProductController) ListProducts(c *gin.Context) {
	query, ok := listQuery(c)
	if !ok {
		return
	}

	var (
		products []*model.Product
		err      error
	)
	if category, set := c.GetQuery("category"); set {
		products, err = pc.productService.ListProductsByCategory(c.Request.Context(), category, *query)
	} else {
		products, err = pc.productService.ListProducts(c.Request.Context(), *query)
	}
	if err != nil {
		abortWithError(c, err, "list products")
		return
	}

	c.JSON(http.StatusOK, toProductResponses(products))
}

// ListProductsByCategory handles GET /api/products/category/:category.
func (pc *ProductController) ListProductsByCategory(c *gin.Context) {
	query, ok := listQuery(c)
	if !ok {
		return
	}

	products, err := pc.productService.ListProductsByCategory(c.Request.Context(), c.Param("category"), *query)
	if err != nil {
		abortWithError(c, err, "list products")
		return
	}

	c.JSON(http.StatusOK, toProductResponses(products))
}

// productID parses the :id path parameter. A value that is not a UUID cannot
// name a stored product, so it is reported as not found.
func productID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Detail: "Product not found"})
		return uuid.Nil, false
	}
	return id, true
}

func listQuery(c *gin.Context) (*repository.Query, bool) {
	skip, err := intQueryParam(c, "skip", 0)
	if err != nil {
		abortBadRequest(c, "skip must be an integer")
		return nil, false
	}
	limit, err := intQueryParam(c, "limit", repository.DefaultPaginationLimit)
	if err != nil {
		abortBadRequest(c, "limit must be an integer")
		return nil, false
	}
	return repository.NewQuery().ApplyPagination(skip, limit), true
}

func intQueryParam(c *gin.Context, name string, fallback int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func toProductResponses(products []*model.Product) []ProductResponse {
	productResponses := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		productResponses = append(productResponses, toProductResponse(product))
	}
	return productResponses
}

func toProductResponse(product *model.Product) ProductResponse {
	return ProductResponse{
		ID:            product.ID.String(),
		Name:          product.Name,
		Description:   product.Description,
		Price:         product.Price,
		Category:      product.Category,
		StockQuantity: product.StockQuantity,
		ImageURL:      product.ImageURL,
		CreatedAt:     product.CreatedAt.UTC(),
		UpdatedAt:     product.UpdatedAt.UTC(),
	}
}
