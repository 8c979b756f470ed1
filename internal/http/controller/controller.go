package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/repository"
	"github.com/iyhunko/product-catalog/internal/service"
)

const (
	apiName    = "E-commerce API"
	apiVersion = "1.0.0"
)

// Controller handles the service-level endpoints.
type Controller struct {
	productService *service.ProductService
}

// New creates a new Controller backed by the given product service.
func New(productService *service.ProductService) *Controller {
	return &Controller{
		productService: productService,
	}
}

// Root describes the API and its entry points.
func (con *Controller) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": apiName,
		"version": apiVersion,
		"endpoints": gin.H{
			"products": "/api/products",
			"health":   "/api/health",
			"ready":    "/api/ready",
		},
	})
}

// Health handles the liveness probe. It never touches storage.
func (con *Controller) Health(c *gin.Context) {
	c.JSON(http.StatusOK, con.productService.Health())
}

// Ready reports 503 when the product store cannot be reached.
func (con *Controller) Ready(c *gin.Context) {
	if err := con.productService.Ready(c.Request.Context()); err != nil {
		slog.Error("Readiness check failed", slog.Any("err", err))
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Detail: "Database connection failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Detail string               `json:"detail"`
	Fields []service.FieldError `json:"fields,omitempty"`
}

// abortWithError maps service and storage errors onto HTTP statuses.
func abortWithError(c *gin.Context, err error, action string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse{Detail: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, repository.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Detail: "Product not found"})
	default:
		slog.Error("Request failed", slog.String("action", action), slog.Any("err", err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Detail: "Failed to " + action})
	}
}

func abortBadRequest(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Detail: detail})
}
