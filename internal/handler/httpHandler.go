package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/RussoPy/Claude-s-Store/internal/metric"
	"github.com/RussoPy/Claude-s-Store/internal/models"
	"github.com/RussoPy/Claude-s-Store/internal/paypal"
	"github.com/RussoPy/Claude-s-Store/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// OrderProcessor - контракт сценариев заказа для HTTP-слоя.
//
//go:generate mockery --name=OrderProcessor --output=./mocks --case=underscore
type OrderProcessor interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, orderID string) (models.Order, error)
	GetAllOrders(ctx context.Context) ([]models.Order, error)
}

// CatalogProvider - контракт чтения витрины для HTTP-слоя.
//
//go:generate mockery --name=CatalogProvider --output=./mocks --case=underscore
type CatalogProvider interface {
	ListProducts(ctx context.Context, categoryID, namePrefix string) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id string) (models.Category, error)
}

type OrderHandler struct {
	service OrderProcessor
	catalog CatalogProvider
}

func NewOrderHandler(s OrderProcessor, catalog CatalogProvider) *OrderHandler {
	return &OrderHandler{service: s, catalog: catalog}
}

// CreateOrderHandler принимает корзину с подтвержденной на фронте оплатой.
// Легитимный отказ (незавершенная оплата, расхождение суммы, использованный
// купон) - 400, сбой на нашей стороне - 500.
func (s *OrderHandler) CreateOrderHandler(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	ctx := c.Request.Context()
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("http.request.paypal_order_id", req.PaypalDetails.ID))

	order, err := s.service.CreateOrder(ctx, &req)
	if err != nil {
		status, message := mapOrderError(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Order verified and saved successfully!",
		"paypal_capture_id": order.PaypalCaptureID,
	})
}

// mapOrderError переводит ошибки сценария в HTTP-статусы.
func mapOrderError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "Invalid request body."
	case errors.Is(err, paypal.ErrPaymentNotCompleted):
		return http.StatusBadRequest, "Payment not completed."
	case errors.Is(err, paypal.ErrOrderNotFound):
		return http.StatusBadRequest, "PayPal order not found."
	case errors.Is(err, service.ErrAmountMismatch):
		return http.StatusBadRequest, "Payment amount does not match order total."
	case errors.Is(err, service.ErrCouponExhausted):
		return http.StatusBadRequest, "Coupon has already been used."
	default:
		return http.StatusInternalServerError, "Failed to process order."
	}
}

func (s *OrderHandler) GetOrderHandler(c *gin.Context) {
	orderID := c.Param("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id."})
		return
	}
	ctx := c.Request.Context()

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("http.request.order_id", orderID))

	order, err := s.service.GetOrder(ctx, orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found."})
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListOrdersHandler - список заказов для оператора, свежие первыми.
func (s *OrderHandler) ListOrdersHandler(c *gin.Context) {
	orders, err := s.service.GetAllOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders."})
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

// ListProductsHandler - витрина. ?category= фильтрует по разделу,
// ?search= ищет по началу названия.
func (s *OrderHandler) ListProductsHandler(c *gin.Context) {
	products, err := s.catalog.ListProducts(c.Request.Context(), c.Query("category"), c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products."})
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, products)
}

func (s *OrderHandler) GetProductHandler(c *gin.Context) {
	product, err := s.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found."})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *OrderHandler) ListCategoriesHandler(c *gin.Context) {
	categories, err := s.catalog.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load categories."})
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	c.JSON(http.StatusOK, categories)
}

func (s *OrderHandler) GetCategoryHandler(c *gin.Context) {
	category, err := s.catalog.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found."})
		return
	}
	c.JSON(http.StatusOK, category)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()
		// После того как хендлер отработал, фиксируем время и статус
		duration := time.Since(start)
		status := c.Writer.Status()

		metric.ObserveRequest(duration, status)
	}
}
