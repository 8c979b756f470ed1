package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

// Handler serves the catalog pages. Every request builds its own ViewModel.
type Handler struct {
	catalog *Catalog
}

func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// InitRouter registers the page routes and the HTML templates on server.
func InitRouter(server *gin.Engine, h *Handler) *gin.Engine {
	server.SetHTMLTemplate(templates)

	server.GET("/", h.Index)
	server.GET("/healthz", h.Health)

	products := server.Group("/products")
	{
		products.POST("", h.Submit)
		products.GET("/:id/edit", h.Edit)
		products.GET("/:id/delete", h.ConfirmDelete)
		products.POST("/:id/delete", h.Delete)
	}

	return server
}

// Index renders the list. ?form=new opens the create form and ?error= shows a message.
func (h *Handler) Index(c *gin.Context) {
	vm := &ViewModel{}
	if err := h.catalog.Load(c.Request.Context(), vm); err != nil {
		slog.Warn("Failed to load products", slog.Any("err", err))
	}
	if c.Query("form") == "new" {
		h.catalog.OpenCreateForm(vm)
	}
	if msg := c.Query("error"); msg != "" {
		vm.Error = msg
	}
	c.HTML(http.StatusOK, "index.html", vm)
}

func (h *Handler) Edit(c *gin.Context) {
	vm := &ViewModel{}
	ctx := c.Request.Context()
	if err := h.catalog.Load(ctx, vm); err != nil {
		slog.Warn("Failed to load products", slog.Any("err", err))
	}
	if err := h.catalog.OpenEditForm(ctx, vm, c.Param("id")); err != nil {
		slog.Warn("Failed to open edit form", slog.Any("err", err), slog.String("product_id", c.Param("id")))
	}
	c.HTML(http.StatusOK, "index.html", vm)
}

// Submit handles both create and update. A failed submit re-renders the
// form with the entered values and the error.
func (h *Handler) Submit(c *gin.Context) {
	form := ProductForm{
		ID:            c.PostForm("id"),
		Name:          c.PostForm("name"),
		Description:   c.PostForm("description"),
		Price:         c.PostForm("price"),
		Category:      c.PostForm("category"),
		StockQuantity: c.PostForm("stock_quantity"),
		ImageURL:      c.PostForm("image_url"),
	}

	vm := &ViewModel{}
	ctx := c.Request.Context()
	if err := h.catalog.Submit(ctx, vm, form); err != nil {
		slog.Warn("Failed to submit product form", slog.Any("err", err))
		submitErr := vm.Error
		if err := h.catalog.Load(ctx, vm); err != nil {
			slog.Warn("Failed to load products", slog.Any("err", err))
		}
		vm.Error = submitErr
		c.HTML(http.StatusOK, "index.html", vm)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) ConfirmDelete(c *gin.Context) {
	vm := &ViewModel{}
	if err := h.catalog.ConfirmDelete(c.Request.Context(), vm, c.Param("id")); err != nil {
		slog.Warn("Failed to load product for deletion", slog.Any("err", err), slog.String("product_id", c.Param("id")))
		c.Redirect(http.StatusSeeOther, "/?error="+url.QueryEscape(vm.Error))
		return
	}
	c.HTML(http.StatusOK, "delete.html", vm)
}

func (h *Handler) Delete(c *gin.Context) {
	vm := &ViewModel{}
	confirmed := c.PostForm("confirm") == "yes"

	err := h.catalog.Delete(c.Request.Context(), vm, c.Param("id"), confirmed)
	switch {
	case err == nil, errors.Is(err, ErrNotConfirmed):
		c.Redirect(http.StatusSeeOther, "/")
	default:
		slog.Warn("Failed to delete product", slog.Any("err", err), slog.String("product_id", c.Param("id")))
		c.Redirect(http.StatusSeeOther, "/?error="+url.QueryEscape(vm.Error))
	}
}

// Health reports liveness of the web process only.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
