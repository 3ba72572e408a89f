package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/RussoPy/Claude-s-Store/internal/models"

	"github.com/lib/pq"
)

// ErrCouponAlreadyUsed возвращается, когда пара (код купона, email плательщика)
// уже зафиксирована в coupon_usages. Уникальный индекс закрывает гонку
// двух одновременных заказов с одним купоном.
var ErrCouponAlreadyUsed = errors.New("купон уже использован этим покупателем")

const uniqueViolation = "23505"

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Save - метод для сохранения order в БД. Заказ, его позиции и запись
// об использовании купона пишутся в одной транзакции: либо все, либо ничего.
func (r *OrderRepository) Save(ctx context.Context, order *models.Order) error {
	// Начинаем транзакцию
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() { //при ошибке откатываем транзакцию
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("не удалось откатить транзакцию %v", err)
		}
	}()

	// Сначала добавляем заказ в бд
	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (order_id, paypal_capture_id, status, amount_value, amount_currency, payer_email, payer_phone, customer_name,
                 address_line_1, address_city, address_state, address_postal_code, address_country_code,
                 shipping_method, coupon_used, discount_percentage, payment_time, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		order.OrderID, order.PaypalCaptureID, order.Status, order.Amount.Value, order.Amount.CurrencyCode,
		order.PayerEmail, order.PayerPhone, order.CustomerName,
		order.ShippingAddress.AddressLine1, order.ShippingAddress.AdminArea2, order.ShippingAddress.AdminArea1,
		order.ShippingAddress.PostalCode, order.ShippingAddress.CountryCode,
		order.ShippingMethod, order.CouponUsed, order.DiscountPercentage, order.PaymentTime, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("ошибка при добавлении сущности order в БД, error: %w", err)
	}

	// Добавляем позиции корзины
	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, name, price, quantity)
             VALUES ($1, $2, $3, $4)`,
			order.OrderID, item.Name, item.Price, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("ошибка при добавлении сущности order_item в бд, error: %w", err)
		}
	}

	// Если была применена скидка, фиксируем использование купона.
	// UNIQUE (coupon_code, payer_email) не даст применить купон дважды.
	if order.CouponUsed != "" {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO coupon_usages (coupon_code, payer_email, order_id)
             VALUES ($1, $2, $3)`,
			order.CouponUsed, order.PayerEmail, order.OrderID,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return ErrCouponAlreadyUsed
			}
			return fmt.Errorf("ошибка при фиксации использования купона, error: %w", err)
		}
	}

	// В случая успеха фиксируем наши изменения
	return tx.Commit()
}

// Get - метод получения, возвращает заказ и ошибку
func (r *OrderRepository) Get(ctx context.Context, orderID string) (models.Order, error) {
	var order models.Order

	//orders
	err := r.db.QueryRowContext(ctx,
		`SELECT order_id, paypal_capture_id, status, amount_value, amount_currency, payer_email, payer_phone, customer_name,
                address_line_1, address_city, address_state, address_postal_code, address_country_code,
                shipping_method, coupon_used, discount_percentage, payment_time, created_at
         FROM orders WHERE order_id=$1`,
		orderID).Scan(&order.OrderID, &order.PaypalCaptureID, &order.Status, &order.Amount.Value, &order.Amount.CurrencyCode,
		&order.PayerEmail, &order.PayerPhone, &order.CustomerName,
		&order.ShippingAddress.AddressLine1, &order.ShippingAddress.AdminArea2, &order.ShippingAddress.AdminArea1,
		&order.ShippingAddress.PostalCode, &order.ShippingAddress.CountryCode,
		&order.ShippingMethod, &order.CouponUsed, &order.DiscountPercentage, &order.PaymentTime, &order.CreatedAt)
	if err != nil {
		return models.Order{}, fmt.Errorf("error при получении orders: %v", err)
	}

	//items
	rows, err := r.db.QueryContext(ctx, "SELECT name, price, quantity FROM order_items WHERE order_id=$1", orderID)
	if err != nil {
		return models.Order{}, fmt.Errorf("error при получении items : %v", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			log.Printf("ошибка при закрытии rows: %v", err)
		}
	}()

	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&item.Name, &item.Price, &item.Quantity); err != nil {
			return models.Order{}, fmt.Errorf("error при получении items: %v", err)
		}
		order.Items = append(order.Items, item)
	}

	return order, nil
}

// GetAll - возвращает массив заказов и ошибку
func (r *OrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order

	rows, err := r.db.QueryContext(ctx, "SELECT order_id FROM orders ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении всех заказов")
	}
	defer func() {
		if err = rows.Close(); err != nil {
			log.Printf("ошибка при закрытии rows: %v", err)
		}
	}()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}

		order, err := r.Get(ctx, id)
		if err == nil {
			orders = append(orders, order)
		}

	}
	return orders, nil

}

// WasCouponUsedBy - проверка "использовал ли этот email этот купон".
// Используется при расчете цены, чтобы не применять скидку повторно;
// окончательную защиту дает уникальный индекс в Save.
func (r *OrderRepository) WasCouponUsedBy(ctx context.Context, code, payerEmail string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM coupon_usages WHERE coupon_code=$1 AND payer_email=$2)`,
		code, payerEmail).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка при проверке использования купона: %w", err)
	}

	return exists, nil
}
