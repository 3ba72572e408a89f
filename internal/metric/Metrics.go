package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 1. Созданные заказы, с разбивкой по итогу обработки
	OrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "orders",
		Name:      "created_total",
		Help:      "Сколько запросов на создание заказа обработано",
	}, []string{"result"}) // created / rejected / failed

	// 2. Проверки оплаты у шлюза
	PaymentVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "paypal",
		Name:      "verifications_total",
		Help:      "Результаты проверки оплаты в PayPal",
	}, []string{"status"}) // completed / not_completed / not_found / error

	// 3. Расхождения между суммой корзины и суммой списания
	AmountMismatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "orders",
		Name:      "amount_mismatches_total",
		Help:      "Сколько заказов отклонено из-за расхождения суммы",
	})

	// 4.1 Группа Database: статистика операций
	DbOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "db",
		Name:      "operations_total",
		Help:      "Статистика операций с БД",
	}, []string{"operation", "status"})

	// 4.2 Гистограмма для БД
	DbDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shop",
		Subsystem: "db",
		Name:      "operation_duration_seconds",
		Help:      "Время выполнения операций с БД",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"}) // "save", "get" и т.д.

	// 5. Письма-подтверждения
	EmailSendsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "email",
		Name:      "sends_total",
		Help:      "Попытки отправки писем-подтверждений",
	}, []string{"status"}) // success / error

	// 6. Запросы
	RequestMetrics = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:  "shop",
		Subsystem:  "http",
		Name:       "request",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"status"})
)

func ObserveRequest(t time.Duration, status int) {
	RequestMetrics.WithLabelValues(strconv.Itoa(status)).Observe(t.Seconds())
}
