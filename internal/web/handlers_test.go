package web_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/client"
	apihttp "github.com/iyhunko/product-catalog/internal/http"
	"github.com/iyhunko/product-catalog/internal/http/controller"
	"github.com/iyhunko/product-catalog/internal/repository/memory"
	"github.com/iyhunko/product-catalog/internal/service"
	"github.com/iyhunko/product-catalog/internal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stack struct {
	web *gin.Engine
	api *client.APIClient
}

func newStack(t *testing.T) stack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	productService := service.NewProductService(memory.NewProductRepository(), nil)
	apiRouter := apihttp.InitRouter(gin.New(), controller.New(productService), controller.NewProductController(productService))
	apiServer := httptest.NewServer(apiRouter)
	t.Cleanup(apiServer.Close)

	api := client.New(apiServer.URL, nil)
	return stack{
		web: web.InitRouter(gin.New(), web.NewHandler(web.NewCatalog(api))),
		api: api,
	}
}

func (s stack) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.web.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func (s stack) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.web.ServeHTTP(w, req)
	return w
}

func lampForm() url.Values {
	return url.Values{
		"name":           {"Lamp"},
		"description":    {"Warm light"},
		"price":          {"19.5"},
		"category":       {"Home"},
		"stock_quantity": {"3"},
	}
}

func TestIndex(t *testing.T) {
	s := newStack(t)

	w := s.get("/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No products yet.")

	w = s.get("/?form=new")
	assert.Contains(t, w.Body.String(), "New product")

	w = s.get("/?error=" + url.QueryEscape("Failed to delete product: boom"))
	assert.Contains(t, w.Body.String(), "Failed to delete product: boom")
}

func TestCreateThroughForm(t *testing.T) {
	s := newStack(t)

	w := s.post("/products", lampForm())
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = s.get("/")
	body := w.Body.String()
	assert.Contains(t, body, "Lamp")
	assert.Contains(t, body, "$19.50")
}

func TestCreateThroughForm_Invalid(t *testing.T) {
	s := newStack(t)

	form := lampForm()
	form.Set("price", "free")
	w := s.post("/products", form)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Failed to create product:")
	assert.Contains(t, body, "price")
	assert.Contains(t, body, `value="free"`, "entered values are kept")

	products, err := s.api.ListProducts(context.Background(), client.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestEditThroughForm(t *testing.T) {
	s := newStack(t)
	require.Equal(t, http.StatusSeeOther, s.post("/products", lampForm()).Code)

	products, err := s.api.ListProducts(context.Background(), client.ListOptions{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	id := products[0].ID

	w := s.get("/products/" + id + "/edit")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Edit product")
	assert.Contains(t, w.Body.String(), `value="19.5"`)

	form := lampForm()
	form.Set("id", id)
	form.Set("price", "24.99")
	assert.Equal(t, http.StatusSeeOther, s.post("/products", form).Code)

	updated, err := s.api.GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 24.99, updated.Price)

	w = s.get("/products/00000000-0000-0000-0000-000000000000/edit")
	assert.Contains(t, w.Body.String(), "Failed to load product: Product not found")
}

func TestDeleteThroughForm(t *testing.T) {
	s := newStack(t)
	require.Equal(t, http.StatusSeeOther, s.post("/products", lampForm()).Code)

	products, err := s.api.ListProducts(context.Background(), client.ListOptions{})
	require.NoError(t, err)
	id := products[0].ID

	w := s.get("/products/" + id + "/delete")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Delete Lamp?")

	w = s.post("/products/"+id+"/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	_, err = s.api.GetProduct(context.Background(), id)
	require.NoError(t, err, "unconfirmed delete must not remove the product")

	w = s.post("/products/"+id+"/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	_, err = s.api.GetProduct(context.Background(), id)
	assert.True(t, client.IsNotFound(err))

	w = s.post("/products/"+id+"/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/?error=")

	w = s.get("/products/" + id + "/delete")
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestHealth(t *testing.T) {
	s := newStack(t)

	w := s.get("/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
