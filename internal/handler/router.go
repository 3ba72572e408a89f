package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(orderHandler *OrderHandler) *gin.Engine {
	router := gin.Default()
	// По этому имени трейсы ищутся в Jaeger
	router.Use(otelgin.Middleware("claude-shop-service"))

	// Неподдерживаемый метод на известном пути - 405, а не 404
	router.HandleMethodNotAllowed = true

	router.Use(MetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/orders", orderHandler.CreateOrderHandler)
		api.GET("/orders", orderHandler.ListOrdersHandler)
		api.GET("/orders/:order_id", orderHandler.GetOrderHandler)

		api.GET("/products", orderHandler.ListProductsHandler)
		api.GET("/products/:id", orderHandler.GetProductHandler)
		api.GET("/categories", orderHandler.ListCategoriesHandler)
		api.GET("/categories/:id", orderHandler.GetCategoryHandler)
	}
	return router
}
