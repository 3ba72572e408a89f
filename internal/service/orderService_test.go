package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/RussoPy/Claude-s-Store/internal/db/repository"
	"github.com/RussoPy/Claude-s-Store/internal/models"
	"github.com/RussoPy/Claude-s-Store/internal/paypal"
	"github.com/RussoPy/Claude-s-Store/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type orderServiceMocks struct {
	verifier *mocks.PaymentVerifier
	repo     *mocks.OrderRepository
	coupons  *mocks.CouponRepository
	notifier *mocks.Notifier
	events   *mocks.EventPublisher
}

func setup(t *testing.T) (orderServiceMocks, *OrderService) {
	m := orderServiceMocks{
		verifier: mocks.NewPaymentVerifier(t),
		repo:     mocks.NewOrderRepository(t),
		coupons:  mocks.NewCouponRepository(t),
		notifier: mocks.NewNotifier(t),
		events:   mocks.NewEventPublisher(t),
	}
	pricing := PricingConfig{ShippingFee: 20, FreeShippingFrom: 100, Tolerance: 0.02}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewOrderService(m.verifier, m.repo, m.coupons, m.notifier, m.events, pricing, log)

	return m, svc
}

func completedPayment(amount float64) models.VerifiedPayment {
	return models.VerifiedPayment{
		GatewayOrderID: "PP-ORDER-1",
		Status:         paypal.StatusCompleted,
		CapturedAmount: amount,
		Currency:       "ILS",
		CaptureID:      "CAP-1",
		PayerEmail:     "buyer@example.com",
		CustomerName:   "Израиль Исраэли",
		CreateTime:     "2026-08-30T10:00:00Z",
	}
}

func deliveryRequest(coupon string) *models.CreateOrderRequest {
	return &models.CreateOrderRequest{
		PaypalDetails: models.PaypalDetails{ID: "PP-ORDER-1"},
		CartItems: []models.CartItem{
			{Name: "שמן זית", Price: 40, Quantity: 2},
			{Name: "סבון", Price: 5, Quantity: 1},
		},
		CouponCode:     coupon,
		ShippingMethod: models.ShippingDelivery,
	}
}

// Корзина 85, купон 10% -> 76.50, доставка под порогом +20 -> 96.50.
// Списание 96.50 сходится, заказ проводится целиком.
func TestOrderService_CreateOrder_Success(t *testing.T) {
	m, svc := setup(t)
	req := deliveryRequest("SAVE10")

	m.verifier.On("VerifyOrder", mock.Anything, "PP-ORDER-1").Return(completedPayment(96.50), nil)
	m.coupons.On("FindActive", mock.Anything, "SAVE10").
		Return(&models.Coupon{Code: "SAVE10", PercentageOff: 10, IsActive: true}, nil)
	m.repo.On("WasCouponUsedBy", mock.Anything, "SAVE10", "buyer@example.com").Return(false, nil)
	m.repo.On("Save", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil)
	m.notifier.On("SendOrderEmails", mock.AnythingOfType("*models.Order")).Return(nil)
	m.events.On("PublishOrderCreated", mock.AnythingOfType("*models.Order")).Return(nil)

	order, err := svc.CreateOrder(context.Background(), req)

	assert.NoError(t, err)
	assert.Equal(t, "PP-ORDER-1", order.OrderID)
	assert.Equal(t, "CAP-1", order.PaypalCaptureID)
	assert.Equal(t, "96.50", order.Amount.Value)
	assert.Equal(t, "SAVE10", order.CouponUsed)
	assert.Equal(t, 10.0, order.DiscountPercentage)
	assert.Equal(t, models.ShippingDelivery, order.ShippingMethod)
}

// Та же корзина, но списано 96.53 - расхождение больше допуска 0.02.
func TestOrderService_CreateOrder_AmountMismatch(t *testing.T) {
	m, svc := setup(t)
	req := deliveryRequest("SAVE10")

	m.verifier.On("VerifyOrder", mock.Anything, "PP-ORDER-1").Return(completedPayment(96.53), nil)
	m.coupons.On("FindActive", mock.Anything, "SAVE10").
		Return(&models.Coupon{Code: "SAVE10", PercentageOff: 10, IsActive: true}, nil)
	m.repo.On("WasCouponUsedBy", mock.Anything, "SAVE10", "buyer@example.com").Return(false, nil)

	_, err := svc.CreateOrder(context.Background(), req)

	assert.ErrorIs(t, err, ErrAmountMismatch)
	m.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// Расхождение суммы - возможная подмена цен на фронте, поэтому в лог
// оно уходит уровнем error, а не warn.
func TestOrderService_CreateOrder_AmountMismatchLoggedAsError(t *testing.T) {
	m := orderServiceMocks{
		verifier: mocks.NewPaymentVerifier(t),
		repo:     mocks.NewOrderRepository(t),
		coupons:  mocks.NewCouponRepository(t),
		notifier: mocks.NewNotifier(t),
		events:   mocks.NewEventPublisher(t),
	}
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	svc := NewOrderService(m.verifier, m.repo, m.coupons, m.notifier, m.events,
		PricingConfig{ShippingFee: 20, FreeShippingFrom: 100, Tolerance: 0.02}, log)

	// Корзина 85 + доставка 20 = 105, списано 96.53
	m.verifier.On("VerifyOrder", mock.Anything, "PP-ORDER-1").Return(completedPayment(96.53), nil)

	_, err := svc.CreateOrder(context.Background(), deliveryRequest(""))

	assert.ErrorIs(t, err, ErrAmountMismatch)
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), "расхождение суммы заказа")
}

// Расхождение в пределах допуска проходит.
func TestOrderService_CreateOrder_WithinTolerance(t *testing.T) {
	m, svc := setup(t)
	req := deliveryRequest("")

	// Корзина 85, доставка +20 -> 105. Списано 105.01 - внутри допуска 0.02.
	m.verifier.On("VerifyOrder", mock.Anything, "PP-ORDER-1").Return(completedPayment(105.01), nil)
	m.repo.On("Save", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil)
	m.notifier.On("SendOrderEmails", mock.AnythingOfType("*models.Order")).Return(nil)
	m.events.On("PublishOrderCreated", mock.AnythingOfType("*models.Order")).Return(nil)

	_, err := svc.CreateOrder(context.Background(), req)

	assert.NoError(t, err)
}

// Оплата в статусе APPROVED не принимается: капчи еще нет.
func TestOrderService_CreateOrder_PaymentNotCompleted(t *testing.T) {
	m, svc := setup(t)
	req := deliveryRequest("")

	m.verifier.On("VerifyOrder", mock.Anything, "PP-ORDER-1").
		Return(models.VerifiedPayment{}, paypal.ErrPaymentNotCompleted)

	_, err := svc.CreateOrder(context.Background(), req)

	assert.ErrorIs(t, err, paypal.ErrPaymentNotCompleted)
	m.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	m.notifier.AssertNotCalled(t, "SendOrderEmails", mock.Anything)
}

// Неизвестный купон молча игнорируется: итог считается без скидки.
func TestOrderService_CreateOrder_UnknownCouponIgnored(t *testing.T) {
	m, svc := setup(t)
	req := deliveryRequest("NOPE")

	// 85 без скидки + 20 доставка = 105
	m.verifier.On("VerifyOrder", mock.Anything, "PP-ORDER-1").Return(completedPayment(105), nil)
	m.repo.On("WasCouponUsedBy", mock.Anything, "NOPE", "buyer@example.com").Return(false, nil)
	m.coupons.On("FindActive", mock.Anything, "NOPE").Return(nil, nil)
	m.repo.On("Save", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil)
	m.notifier.On("SendOrderEmails", mock.AnythingOfType("*models.Order")).Return(nil)
	m.events.On("PublishOrderCreated", mock.AnythingOfType("*models.Order")).Return(nil)

	order, err := svc.CreateOrder(context.Background(), req)

	assert.NoError(t, err)
	assert.Empty(t, order.CouponUsed)
	assert.Zero(t, order.DiscountPercentage)
}

// Истекший купон тоже не применяется.
func TestOrderService_CreateOrder_ExpiredCouponIgnored(t *testing.T) {
	m, svc := setup(t)
	req := deliveryRequest("OLD")

	expired := time.Now().Add(-time.Hour)
	m.verifier.On("VerifyOrder", mock.Anything, "PP-ORDER-1").Return(completedPayment(105), nil)
	m.repo.On("WasCouponUsedBy", mock.Anything, "OLD", "buyer@example.com").Return(false, nil)
	m.coupons.On("FindActive", mock.Anything, "OLD").
		Return(&models.Coupon{Code: "OLD", PercentageOff: 50, IsActive: true, ExpiresAt: &expired}, nil)
	m.repo.On("Save", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil)
	m.notifier.On("SendOrderEmails", mock.AnythingOfType("*models.Order")).Return(nil)
	m.events.On("PublishOrderCreated", mock.AnythingOfType("*models.Order")).Return(nil)

	order, err := svc.CreateOrder(context.Background(), req)

	assert.NoError(t, err)
	assert.Empty(t, order.CouponUsed)
}

// Купон уже использован этим покупателем - явный отказ еще до поиска
// купона и сверки сумм.
func TestOrderService_CreateOrder_CouponAlreadyUsed(t *testing.T) {
	m, svc := setup(t)
	req := deliveryRequest("SAVE10")

	m.verifier.On("VerifyOrder", mock.Anything, "PP-ORDER-1").Return(completedPayment(96.50), nil)
	m.repo.On("WasCouponUsedBy", mock.Anything, "SAVE10", "buyer@example.com").Return(true, nil)

	_, err := svc.CreateOrder(context.Background(), req)

	assert.ErrorIs(t, err, ErrCouponExhausted)
	m.coupons.AssertNotCalled(t, "FindActive", mock.Anything, mock.Anything)
	m.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// Гонка двух заказов с одним купоном: предварительная проверка прошла,
// но уникальный индекс в БД отбил вставку.
func TestOrderService_CreateOrder_CouponRaceLostOnSave(t *testing.T) {
	m, svc := setup(t)
	req := deliveryRequest("SAVE10")

	m.verifier.On("VerifyOrder", mock.Anything, "PP-ORDER-1").Return(completedPayment(96.50), nil)
	m.coupons.On("FindActive", mock.Anything, "SAVE10").
		Return(&models.Coupon{Code: "SAVE10", PercentageOff: 10, IsActive: true}, nil)
	m.repo.On("WasCouponUsedBy", mock.Anything, "SAVE10", "buyer@example.com").Return(false, nil)
	m.repo.On("Save", mock.Anything, mock.AnythingOfType("*models.Order")).Return(repository.ErrCouponAlreadyUsed)

	_, err := svc.CreateOrder(context.Background(), req)

	assert.ErrorIs(t, err, ErrCouponExhausted)
	m.notifier.AssertNotCalled(t, "SendOrderEmails", mock.Anything)
	m.events.AssertNotCalled(t, "PublishOrderCreated", mock.Anything)
}

// Деньги списаны, но заказ не сохранился: оператору уходит событие,
// клиент получает ошибку.
func TestOrderService_CreateOrder_SaveFailedPublishesIncident(t *testing.T) {
	m, svc := setup(t)
	req := deliveryRequest("")

	m.verifier.On("VerifyOrder", mock.Anything, "PP-ORDER-1").Return(completedPayment(105), nil)
	m.repo.On("Save", mock.Anything, mock.AnythingOfType("*models.Order")).Return(errors.New("connection refused"))
	m.events.On("PublishUnrecordedCapture", "PP-ORDER-1", "CAP-1", mock.AnythingOfType("string")).Return(nil)

	_, err := svc.CreateOrder(context.Background(), req)

	assert.ErrorIs(t, err, ErrOrderNotRecorded)
	m.notifier.AssertNotCalled(t, "SendOrderEmails", mock.Anything)
}

// Сбой почты не отменяет уже проведенный заказ.
func TestOrderService_CreateOrder_EmailFailureIsNotFatal(t *testing.T) {
	m, svc := setup(t)
	req := deliveryRequest("")

	m.verifier.On("VerifyOrder", mock.Anything, "PP-ORDER-1").Return(completedPayment(105), nil)
	m.repo.On("Save", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil)
	m.notifier.On("SendOrderEmails", mock.AnythingOfType("*models.Order")).Return(errors.New("smtp timeout"))
	m.events.On("PublishOrderCreated", mock.AnythingOfType("*models.Order")).Return(nil)

	order, err := svc.CreateOrder(context.Background(), req)

	assert.NoError(t, err)
	assert.NotNil(t, order)
}

// Итог на пороге бесплатной доставки доплату не получает.
func TestOrderService_CreateOrder_FreeShippingAtThreshold(t *testing.T) {
	m, svc := setup(t)
	req := &models.CreateOrderRequest{
		PaypalDetails:  models.PaypalDetails{ID: "PP-ORDER-1"},
		CartItems:      []models.CartItem{{Name: "קרם", Price: 50, Quantity: 2}},
		ShippingMethod: models.ShippingDelivery,
	}

	m.verifier.On("VerifyOrder", mock.Anything, "PP-ORDER-1").Return(completedPayment(100), nil)
	m.repo.On("Save", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil)
	m.notifier.On("SendOrderEmails", mock.AnythingOfType("*models.Order")).Return(nil)
	m.events.On("PublishOrderCreated", mock.AnythingOfType("*models.Order")).Return(nil)

	order, err := svc.CreateOrder(context.Background(), req)

	assert.NoError(t, err)
	assert.Equal(t, "100.00", order.Amount.Value)
}

// Самовывоз не получает доплату даже под порогом.
func TestOrderService_CreateOrder_PickupHasNoShippingFee(t *testing.T) {
	m, svc := setup(t)
	req := &models.CreateOrderRequest{
		PaypalDetails:  models.PaypalDetails{ID: "PP-ORDER-1"},
		CartItems:      []models.CartItem{{Name: "סבון", Price: 30, Quantity: 1}},
		ShippingMethod: models.ShippingPickup,
	}

	m.verifier.On("VerifyOrder", mock.Anything, "PP-ORDER-1").Return(completedPayment(30), nil)
	m.repo.On("Save", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil)
	m.notifier.On("SendOrderEmails", mock.AnythingOfType("*models.Order")).Return(nil)
	m.events.On("PublishOrderCreated", mock.AnythingOfType("*models.Order")).Return(nil)

	_, err := svc.CreateOrder(context.Background(), req)

	assert.NoError(t, err)
}

// Пустая корзина отбивается валидацией еще до похода к шлюзу.
func TestOrderService_CreateOrder_ValidationError(t *testing.T) {
	m, svc := setup(t)
	req := &models.CreateOrderRequest{
		PaypalDetails: models.PaypalDetails{ID: "PP-ORDER-1"},
		CartItems:     []models.CartItem{},
	}

	_, err := svc.CreateOrder(context.Background(), req)

	assert.ErrorIs(t, err, ErrValidation)
	m.verifier.AssertNotCalled(t, "VerifyOrder", mock.Anything, mock.Anything)
}

// Test для метода GetOrder
func TestOrderService_GetOrder_DBError(t *testing.T) {
	m, svc := setup(t)
	orderID := "some_id"
	m.repo.On("Get", mock.Anything, orderID).Return(models.Order{}, errors.New("db error"))

	_, err := svc.GetOrder(context.Background(), orderID)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "order не найден в БД")
	m.repo.AssertNumberOfCalls(t, "Get", 1)
}

func TestOrderService_GetOrder_Success(t *testing.T) {
	m, svc := setup(t)
	order := models.Order{OrderID: "PP-ORDER-1"}

	m.repo.On("Get", mock.Anything, order.OrderID).Return(order, nil)

	res, err := svc.GetOrder(context.Background(), order.OrderID)

	assert.NoError(t, err)
	assert.Equal(t, order.OrderID, res.OrderID)
}

func TestOrderService_GetAllOrders_Success(t *testing.T) {
	m, svc := setup(t)
	orders := []models.Order{{OrderID: "PP-ORDER-2"}, {OrderID: "PP-ORDER-1"}}

	m.repo.On("GetAll", mock.Anything).Return(orders, nil)

	res, err := svc.GetAllOrders(context.Background())

	assert.NoError(t, err)
	assert.Len(t, res, 2)
	assert.Equal(t, "PP-ORDER-2", res[0].OrderID)
}

func TestOrderService_GetAllOrders_DBError(t *testing.T) {
	m, svc := setup(t)
	m.repo.On("GetAll", mock.Anything).Return(nil, errors.New("db error"))

	_, err := svc.GetAllOrders(context.Background())

	assert.Error(t, err)
	m.repo.AssertNumberOfCalls(t, "GetAll", 1)
}
