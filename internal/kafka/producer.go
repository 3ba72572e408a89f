// Package kafka публикует события жизненного цикла заказа.
// События обрабатываются асинхронно: сбой публикации логируется
// вызывающей стороной и не ломает ответ покупателю.
package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/RussoPy/Claude-s-Store/internal/models"

	"github.com/IBM/sarama"
)

const (
	// EventOrderCreated - заказ оплачен и сохранен.
	EventOrderCreated = "order_created"
	// EventOrderUnrecordedCapture - деньги списаны, но заказ не удалось
	// сохранить. Такие события разбирает оператор вручную.
	EventOrderUnrecordedCapture = "order_unrecorded_capture"
)

// OrderEvent - конверт события в топике заказов.
type OrderEvent struct {
	Type       string        `json:"type"`
	OrderID    string        `json:"order_id"`
	CaptureID  string        `json:"paypal_capture_id,omitempty"`
	PayerEmail string        `json:"payer_email,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	Order      *models.Order `json:"order,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

type OrderProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewProducer(broker []string, topic string) (*OrderProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll // Ждем подтверждения от всех брокеров

	producer, err := sarama.NewSyncProducer(broker, config)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать продюсера: %w", err)
	}
	return &OrderProducer{
		producer: producer,
		topic:    topic,
	}, nil
}

// PublishOrderCreated отправляет событие о сохраненном заказе.
func (pr *OrderProducer) PublishOrderCreated(order *models.Order) error {
	return pr.send(OrderEvent{
		Type:       EventOrderCreated,
		OrderID:    order.OrderID,
		CaptureID:  order.PaypalCaptureID,
		PayerEmail: order.PayerEmail,
		Order:      order,
		OccurredAt: time.Now().UTC(),
	})
}

// PublishUnrecordedCapture отправляет сигнал о списании без сохраненного
// заказа. Ключ - order id в PayPal, по нему оператор ищет транзакцию.
func (pr *OrderProducer) PublishUnrecordedCapture(orderID, captureID, reason string) error {
	return pr.send(OrderEvent{
		Type:       EventOrderUnrecordedCapture,
		OrderID:    orderID,
		CaptureID:  captureID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})
}

func (pr *OrderProducer) send(event OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации события %s: %w", event.Type, err)
	}

	message := &sarama.ProducerMessage{
		Topic: pr.topic,
		Key:   sarama.StringEncoder(event.OrderID),
		Value: sarama.ByteEncoder(data),
	}

	if _, _, err := pr.producer.SendMessage(message); err != nil {
		return fmt.Errorf("ошибка при отправке события %s в кафку: %w", event.Type, err)
	}

	return nil
}

func (pr *OrderProducer) Close() error {
	return pr.producer.Close()
}
