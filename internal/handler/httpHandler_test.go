package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RussoPy/Claude-s-Store/internal/handler/mocks"
	"github.com/RussoPy/Claude-s-Store/internal/models"
	"github.com/RussoPy/Claude-s-Store/internal/paypal"
	"github.com/RussoPy/Claude-s-Store/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestHandler(t *testing.T) (*mocks.OrderProcessor, *mocks.CatalogProvider, *OrderHandler) {
	mockService := mocks.NewOrderProcessor(t)
	mockCatalog := mocks.NewCatalogProvider(t)
	return mockService, mockCatalog, NewOrderHandler(mockService, mockCatalog)
}

func postOrder(t *testing.T, h *OrderHandler, body any) *httptest.ResponseRecorder {
	raw, err := json.Marshal(body)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("POST", "/api/orders", bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CreateOrderHandler(c)
	return w
}

func validRequest() models.CreateOrderRequest {
	return models.CreateOrderRequest{
		PaypalDetails:  models.PaypalDetails{ID: "PP-1"},
		CartItems:      []models.CartItem{{Name: "שמן", Price: 40, Quantity: 1}},
		ShippingMethod: models.ShippingPickup,
	}
}

func TestOrderHandler_CreateOrderHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Заказ проведен", func(t *testing.T) {
		mockService, _, h := newTestHandler(t)

		mockService.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.CreateOrderRequest")).
			Return(&models.Order{OrderID: "PP-1", PaypalCaptureID: "CAP-1"}, nil)

		w := postOrder(t, h, validRequest())

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]string
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Order verified and saved successfully!", resp["message"])
		assert.Equal(t, "CAP-1", resp["paypal_capture_id"])
	})

	t.Run("Битый JSON", func(t *testing.T) {
		mockService, _, h := newTestHandler(t)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest("POST", "/api/orders", bytes.NewReader([]byte("not a json")))
		c.Request.Header.Set("Content-Type", "application/json")

		h.CreateOrderHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("Оплата не завершена - 400", func(t *testing.T) {
		mockService, _, h := newTestHandler(t)

		mockService.On("CreateOrder", mock.Anything, mock.Anything).
			Return(nil, paypal.ErrPaymentNotCompleted)

		w := postOrder(t, h, validRequest())

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Payment not completed.")
	})

	t.Run("Заказ не найден в PayPal - 400", func(t *testing.T) {
		mockService, _, h := newTestHandler(t)

		mockService.On("CreateOrder", mock.Anything, mock.Anything).
			Return(nil, paypal.ErrOrderNotFound)

		w := postOrder(t, h, validRequest())

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Расхождение суммы - 400", func(t *testing.T) {
		mockService, _, h := newTestHandler(t)

		mockService.On("CreateOrder", mock.Anything, mock.Anything).
			Return(nil, service.ErrAmountMismatch)

		w := postOrder(t, h, validRequest())

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "does not match")
	})

	t.Run("Использованный купон - 400", func(t *testing.T) {
		mockService, _, h := newTestHandler(t)

		mockService.On("CreateOrder", mock.Anything, mock.Anything).
			Return(nil, service.ErrCouponExhausted)

		w := postOrder(t, h, validRequest())

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Сбой на нашей стороне - 500", func(t *testing.T) {
		mockService, _, h := newTestHandler(t)

		mockService.On("CreateOrder", mock.Anything, mock.Anything).
			Return(nil, errors.New("db down"))

		w := postOrder(t, h, validRequest())

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("Незаписанное списание - 500", func(t *testing.T) {
		mockService, _, h := newTestHandler(t)

		mockService.On("CreateOrder", mock.Anything, mock.Anything).
			Return(nil, service.ErrOrderNotRecorded)

		w := postOrder(t, h, validRequest())

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestOrderHandler_GetOrderHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Заказ найден", func(t *testing.T) {
		mockService, _, h := newTestHandler(t)
		orderID := "PP-1"
		expectedOrder := models.Order{OrderID: orderID}

		mockService.On("GetOrder", mock.Anything, orderID).Return(expectedOrder, nil)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest("GET", "/", nil)
		c.Params = []gin.Param{{Key: "order_id", Value: orderID}}

		h.GetOrderHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var actualOrder models.Order
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &actualOrder))
		assert.Equal(t, expectedOrder.OrderID, actualOrder.OrderID)
	})

	t.Run("Заказ не найден в системе", func(t *testing.T) {
		mockService, _, h := newTestHandler(t)

		badID := "unknown"
		mockService.On("GetOrder", mock.Anything, badID).Return(models.Order{}, errors.New("not found"))

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = []gin.Param{{Key: "order_id", Value: badID}}
		c.Request, _ = http.NewRequest("GET", "/", nil)

		h.GetOrderHandler(c)

		assert.Equal(t, 404, w.Code)
	})

	t.Run("Пустой ID", func(t *testing.T) {
		mockService, _, h := newTestHandler(t)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Params = []gin.Param{{Key: "order_id", Value: ""}}
		c.Request, _ = http.NewRequest("GET", "/", nil)

		h.GetOrderHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "GetOrder")
	})
}

func TestOrderHandler_ListOrdersHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Список заказов", func(t *testing.T) {
		mockService, _, h := newTestHandler(t)

		orders := []models.Order{{OrderID: "PP-2"}, {OrderID: "PP-1"}}
		mockService.On("GetAllOrders", mock.Anything).Return(orders, nil)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest("GET", "/api/orders", nil)

		h.ListOrdersHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var actual []models.Order
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &actual))
		assert.Len(t, actual, 2)
		assert.Equal(t, "PP-2", actual[0].OrderID)
	})

	t.Run("Пустая история отдает пустой массив", func(t *testing.T) {
		mockService, _, h := newTestHandler(t)

		mockService.On("GetAllOrders", mock.Anything).Return(nil, nil)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest("GET", "/api/orders", nil)

		h.ListOrdersHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("Сбой БД - 500", func(t *testing.T) {
		mockService, _, h := newTestHandler(t)

		mockService.On("GetAllOrders", mock.Anything).Return(nil, errors.New("db down"))

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest("GET", "/api/orders", nil)

		h.ListOrdersHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestOrderHandler_Catalog(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Список товаров", func(t *testing.T) {
		_, mockCatalog, h := newTestHandler(t)

		products := []models.Product{{ID: "p1", Name: "שמן זית", Price: 40}}
		mockCatalog.On("ListProducts", mock.Anything, "", "").Return(products, nil)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest("GET", "/api/products", nil)

		h.ListProductsHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var actual []models.Product
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &actual))
		assert.Len(t, actual, 1)
	})

	t.Run("Пустой каталог отдает пустой массив", func(t *testing.T) {
		_, mockCatalog, h := newTestHandler(t)

		mockCatalog.On("ListProducts", mock.Anything, "", "").Return(nil, nil)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest("GET", "/api/products", nil)

		h.ListProductsHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("Фильтр по категории", func(t *testing.T) {
		_, mockCatalog, h := newTestHandler(t)

		mockCatalog.On("ListProducts", mock.Anything, "cat1", "oil").Return([]models.Product{}, nil)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest("GET", "/api/products?category=cat1&search=oil", nil)

		h.ListProductsHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Товар не найден", func(t *testing.T) {
		_, mockCatalog, h := newTestHandler(t)

		mockCatalog.On("GetProduct", mock.Anything, "missing").Return(models.Product{}, errors.New("no rows"))

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = []gin.Param{{Key: "id", Value: "missing"}}
		c.Request, _ = http.NewRequest("GET", "/", nil)

		h.GetProductHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Список категорий", func(t *testing.T) {
		_, mockCatalog, h := newTestHandler(t)

		mockCatalog.On("ListCategories", mock.Anything).Return([]models.Category{{ID: "c1", Name: "שמנים"}}, nil)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest("GET", "/api/categories", nil)

		h.ListCategoriesHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
