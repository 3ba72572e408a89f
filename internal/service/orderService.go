// Package service содержит бизнес-логику приложения: проверку оплаты,
// пересчет стоимости корзины на сервере и координацию сохранения заказа,
// писем и событий.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/RussoPy/Claude-s-Store/internal/db/repository"
	"github.com/RussoPy/Claude-s-Store/internal/logger/sl"
	"github.com/RussoPy/Claude-s-Store/internal/metric"
	"github.com/RussoPy/Claude-s-Store/internal/models"
	"github.com/RussoPy/Claude-s-Store/internal/paypal"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// ErrAmountMismatch - сумма, списанная шлюзом, не сходится с пересчитанной
	// сервером стоимостью корзины. Заказ отклоняется.
	ErrAmountMismatch = errors.New("сумма оплаты не совпадает с суммой заказа")
	// ErrCouponExhausted - купон уже был использован этим покупателем.
	ErrCouponExhausted = errors.New("купон уже использован")
	// ErrOrderNotRecorded - оплата подтверждена, но заказ не удалось сохранить.
	// Деньги списаны, поэтому инцидент уходит оператору отдельным событием.
	ErrOrderNotRecorded = errors.New("оплата получена, но заказ не записан")
	// ErrValidation - тело запроса не прошло валидацию.
	ErrValidation = errors.New("некорректный запрос")
)

// PaymentVerifier описывает контракт проверки оплаты у платежного шлюза.
//
//go:generate mockery --name=PaymentVerifier --output=./mocks --case=underscore
type PaymentVerifier interface {
	VerifyOrder(ctx context.Context, paypalOrderID string) (models.VerifiedPayment, error)
}

// OrderRepository описывает контракт для постоянного хранения и получения заказов.
// Он абстрагирует логику работы с базой данных от бизнес-логики сервиса.
//
//go:generate mockery --name=OrderRepository --output=./mocks --case=underscore
type OrderRepository interface {
	Save(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, orderID string) (models.Order, error)
	GetAll(ctx context.Context) ([]models.Order, error)
	WasCouponUsedBy(ctx context.Context, code, payerEmail string) (bool, error)
}

// CouponRepository отдает активные купоны по коду.
//
//go:generate mockery --name=CouponRepository --output=./mocks --case=underscore
type CouponRepository interface {
	FindActive(ctx context.Context, code string) (*models.Coupon, error)
}

// Notifier отправляет письма-подтверждения по сохраненному заказу.
//
//go:generate mockery --name=Notifier --output=./mocks --case=underscore
type Notifier interface {
	SendOrderEmails(order *models.Order) error
}

// EventPublisher публикует события жизненного цикла заказа.
//
//go:generate mockery --name=EventPublisher --output=./mocks --case=underscore
type EventPublisher interface {
	PublishOrderCreated(order *models.Order) error
	PublishUnrecordedCapture(orderID, captureID, reason string) error
}

// PricingConfig - параметры серверного пересчета стоимости.
type PricingConfig struct {
	ShippingFee      float64
	FreeShippingFrom float64
	Tolerance        float64
}

// OrderService сверяет оплату с корзиной и проводит заказ до конца:
// сохранение, письма, события.
type OrderService struct {
	verifier PaymentVerifier
	repo     OrderRepository
	coupons  CouponRepository
	notifier Notifier
	events   EventPublisher
	pricing  PricingConfig
	validate *validator.Validate
	log      *slog.Logger
}

// NewOrderService принимает интерфейсы.
func NewOrderService(verifier PaymentVerifier, repo OrderRepository, coupons CouponRepository,
	notifier Notifier, events EventPublisher, pricing PricingConfig, log *slog.Logger) *OrderService {
	return &OrderService{
		verifier: verifier,
		repo:     repo,
		coupons:  coupons,
		notifier: notifier,
		events:   events,
		pricing:  pricing,
		validate: validator.New(),
		log:      log,
	}
}

// CreateOrder - основной сценарий: проверить оплату у PayPal, пересчитать
// корзину на сервере, сверить суммы и сохранить заказ. Письма и события
// отправляются best-effort после сохранения.
func (s *OrderService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	tr := otel.Tracer("orderService")
	ctx, span := tr.Start(ctx, "Service.CreateOrder")
	defer span.End()

	//1. Валидация тела запроса до похода к шлюзу
	if err := s.validateRequest(req); err != nil {
		metric.OrdersTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	span.SetAttributes(attribute.String("paypal_order_id", req.PaypalDetails.ID))

	//2. Запрашиваем подтвержденную оплату напрямую у PayPal
	payment, err := s.verifier.VerifyOrder(ctx, req.PaypalDetails.ID)
	if err != nil {
		span.RecordError(err)
		metric.PaymentVerificationsTotal.WithLabelValues(verificationLabel(err)).Inc()
		metric.OrdersTotal.WithLabelValues(orderResultLabel(err)).Inc()
		return nil, fmt.Errorf("проверка оплаты %s: %w", req.PaypalDetails.ID, err)
	}
	metric.PaymentVerificationsTotal.WithLabelValues("completed").Inc()
	span.AddEvent("оплата подтверждена шлюзом")

	//3. Пересчитываем итог на сервере: цены клиента не являются доверенными
	expected, couponCode, discountPct, err := s.priceCart(ctx, req, payment.PayerEmail)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrCouponExhausted) {
			metric.OrdersTotal.WithLabelValues("rejected").Inc()
		} else {
			metric.OrdersTotal.WithLabelValues("failed").Inc()
		}
		return nil, err
	}

	//4. Сверка с допуском: шлюз хранит сумму с точностью до цента
	if math.Abs(expected-payment.CapturedAmount) > s.pricing.Tolerance {
		metric.AmountMismatchesTotal.Inc()
		metric.OrdersTotal.WithLabelValues("rejected").Inc()
		s.log.ErrorContext(ctx, "расхождение суммы заказа",
			slog.String("paypal_order_id", payment.GatewayOrderID),
			slog.Float64("expected", expected),
			slog.Float64("captured", payment.CapturedAmount),
			sl.Traced(ctx),
		)
		return nil, fmt.Errorf("%w: ожидалось %.2f, списано %.2f", ErrAmountMismatch, expected, payment.CapturedAmount)
	}

	order := buildOrder(req, &payment, couponCode, discountPct)

	//5. Сохранение: заказ, позиции и купон в одной транзакции
	start := time.Now()
	if err := s.repo.Save(ctx, order); err != nil {
		span.RecordError(err)
		metric.DbOperationsTotal.WithLabelValues("save", "error").Inc()

		if errors.Is(err, repository.ErrCouponAlreadyUsed) {
			metric.OrdersTotal.WithLabelValues("rejected").Inc()
			return nil, fmt.Errorf("%w: %s", ErrCouponExhausted, couponCode)
		}

		// Деньги уже списаны. Сообщаем оператору и отвечаем 500.
		metric.OrdersTotal.WithLabelValues("failed").Inc()
		if pubErr := s.events.PublishUnrecordedCapture(order.OrderID, order.PaypalCaptureID, err.Error()); pubErr != nil {
			s.log.ErrorContext(ctx, "не удалось опубликовать событие о незаписанном списании",
				slog.String("order_id", order.OrderID), sl.Err(pubErr), sl.Traced(ctx))
		}
		return nil, fmt.Errorf("%w: %v", ErrOrderNotRecorded, err)
	}
	metric.DbOperationsTotal.WithLabelValues("save", "success").Inc()
	metric.DbDuration.WithLabelValues("save").Observe(time.Since(start).Seconds())
	span.AddEvent("order сохранен в бд")

	//6. Письма и событие - best-effort, заказ уже проведен
	if err := s.notifier.SendOrderEmails(order); err != nil {
		metric.EmailSendsTotal.WithLabelValues("error").Inc()
		s.log.ErrorContext(ctx, "не удалось отправить письма по заказу",
			slog.String("order_id", order.OrderID), sl.Err(err), sl.Traced(ctx))
	} else {
		metric.EmailSendsTotal.WithLabelValues("success").Inc()
	}

	if err := s.events.PublishOrderCreated(order); err != nil {
		s.log.ErrorContext(ctx, "не удалось опубликовать событие о заказе",
			slog.String("order_id", order.OrderID), sl.Err(err), sl.Traced(ctx))
	}

	metric.OrdersTotal.WithLabelValues("created").Inc()
	s.log.InfoContext(ctx, "заказ создан",
		slog.String("order_id", order.OrderID),
		slog.String("capture_id", order.PaypalCaptureID),
		sl.Traced(ctx),
	)

	return order, nil
}

// GetOrder - получение сохраненного заказа по его id в PayPal.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (models.Order, error) {
	tr := otel.Tracer("orderService")
	ctx, span := tr.Start(ctx, "Service.GetOrder")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	found, err := s.repo.Get(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		metric.DbOperationsTotal.WithLabelValues("get", "error").Inc()
		return models.Order{}, fmt.Errorf("order не найден в БД %w", err)
	}
	metric.DbOperationsTotal.WithLabelValues("get", "success").Inc()

	return found, nil
}

// GetAllOrders - список всех заказов, свежие первыми. Сервис читает
// витрину оператора, поэтому позиции разворачиваются сразу.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	tr := otel.Tracer("orderService")
	ctx, span := tr.Start(ctx, "Service.GetAllOrders")
	defer span.End()

	start := time.Now()
	orders, err := s.repo.GetAll(ctx)
	if err != nil {
		span.RecordError(err)
		metric.DbOperationsTotal.WithLabelValues("get_all", "error").Inc()
		return nil, fmt.Errorf("не удалось получить список заказов: %w", err)
	}
	metric.DbOperationsTotal.WithLabelValues("get_all", "success").Inc()
	metric.DbDuration.WithLabelValues("get_all").Observe(time.Since(start).Seconds())

	return orders, nil
}

// priceCart пересчитывает итог корзины: сумма позиций, скидка по купону,
// доплата за доставку. Невалидный купон (нет, выключен, истек) молча
// игнорируется - фронт уже посчитал без него, и суммы сойдутся.
// Использованный купон - явный отказ.
func (s *OrderService) priceCart(ctx context.Context, req *models.CreateOrderRequest, payerEmail string) (float64, string, float64, error) {
	total := 0.0
	for _, item := range req.CartItems {
		total += item.Price * float64(item.Quantity)
	}

	couponCode := ""
	discountPct := 0.0
	if req.CouponCode != "" {
		// Повторное использование проверяется до поиска купона:
		// уже сожженный код - отказ, даже если купон с тех пор выключили.
		used, err := s.repo.WasCouponUsedBy(ctx, req.CouponCode, payerEmail)
		if err != nil {
			return 0, "", 0, fmt.Errorf("проверка купона: %w", err)
		}
		if used {
			return 0, "", 0, fmt.Errorf("%w: %s", ErrCouponExhausted, req.CouponCode)
		}

		coupon, err := s.coupons.FindActive(ctx, req.CouponCode)
		if err != nil {
			return 0, "", 0, fmt.Errorf("проверка купона: %w", err)
		}
		if coupon != nil && !couponExpired(coupon) {
			couponCode = coupon.Code
			discountPct = coupon.PercentageOff
			total *= 1 - discountPct/100
		} else {
			s.log.InfoContext(ctx, "купон не применен",
				slog.String("coupon_code", req.CouponCode), sl.Traced(ctx))
		}
	}

	// Доплата за доставку после скидки. Пустая корзина (итог 0)
	// и итог от порога бесплатной доставки доплату не получают.
	if req.ShippingMethod == models.ShippingDelivery && total > 0 && total < s.pricing.FreeShippingFrom {
		total += s.pricing.ShippingFee
	}

	return math.Round(total*100) / 100, couponCode, discountPct, nil
}

func (s *OrderService) validateRequest(req *models.CreateOrderRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return err
	}
	return nil
}

// verificationLabel - метка для метрики проверок оплаты.
func verificationLabel(err error) string {
	switch {
	case errors.Is(err, paypal.ErrPaymentNotCompleted):
		return "not_completed"
	case errors.Is(err, paypal.ErrOrderNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// orderResultLabel: легитимный отказ шлюза - rejected, сбой - failed.
func orderResultLabel(err error) string {
	if errors.Is(err, paypal.ErrPaymentNotCompleted) || errors.Is(err, paypal.ErrOrderNotFound) {
		return "rejected"
	}
	return "failed"
}

func couponExpired(coupon *models.Coupon) bool {
	return coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(time.Now())
}

func buildOrder(req *models.CreateOrderRequest, payment *models.VerifiedPayment, couponCode string, discountPct float64) *models.Order {
	shippingMethod := req.ShippingMethod
	if shippingMethod == "" {
		shippingMethod = models.ShippingPickup
	}

	return &models.Order{
		OrderID:         payment.GatewayOrderID,
		PaypalCaptureID: payment.CaptureID,
		Status:          payment.Status,
		Amount: models.Amount{
			CurrencyCode: payment.Currency,
			Value:        strconv.FormatFloat(payment.CapturedAmount, 'f', 2, 64),
		},
		Items:              req.CartItems,
		PayerEmail:         payment.PayerEmail,
		PayerPhone:         payment.PayerPhone,
		CustomerName:       payment.CustomerName,
		ShippingAddress:    payment.ShippingAddress,
		ShippingMethod:     shippingMethod,
		CouponUsed:         couponCode,
		DiscountPercentage: discountPct,
		PaymentTime:        payment.CreateTime,
		CreatedAt:          time.Now().UTC(),
	}
}
