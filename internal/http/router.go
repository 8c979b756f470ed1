package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/http/controller"
	"github.com/iyhunko/product-catalog/internal/http/middleware"
)

func InitRouter(server *gin.Engine, ctr *controller.Controller, productCtr *controller.ProductController) *gin.Engine {
	// Apply recovery middleware globally to prevent panics from crashing the server
	server.Use(middleware.Recovery(), middleware.CORS(), middleware.Logger(), middleware.Metrics())

	server.GET("/", ctr.Root)

	api := server.Group("/api")
	{
		api.GET("/health", ctr.Health)
		api.GET("/ready", ctr.Ready)
	}

	// Product endpoints
	products := api.Group("/products")
	{
		products.POST("", productCtr.CreateProduct)
		products.GET("", productCtr.ListProducts)
		products.GET("/category/:category", productCtr.ListProductsByCategory)
		products.GET("/:id", productCtr.GetProduct)
		products.PUT("/:id", productCtr.UpdateProduct)
		products.DELETE("/:id", productCtr.DeleteProduct)
	}

	return server
}
