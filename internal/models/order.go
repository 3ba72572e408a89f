// Package models содержит описания структур данных (DTO),
// которые используются во всем приложении и для маппинга JSON/DB.
package models

import "time"

// Способы получения заказа.
const (
	ShippingPickup   = "pickup"
	ShippingDelivery = "delivery"
)

// CreateOrderRequest - тело запроса POST /api/orders, приходит от фронтенда
// после подтверждения оплаты в PayPal. Цены из корзины не являются
// доверенными, сервер пересчитывает итог самостоятельно.
type CreateOrderRequest struct {
	PaypalDetails  PaypalDetails `json:"paypalDetails" validate:"required"`
	CartItems      []CartItem    `json:"cartItems" validate:"required,gt=0,dive"`
	CouponCode     string        `json:"couponCode"`
	ShippingMethod string        `json:"shippingMethod" validate:"omitempty,oneof=pickup delivery"`
}

// PaypalDetails - ссылка на заказ в PayPal, по которой сервер запрашивает
// подтвержденную транзакцию.
type PaypalDetails struct {
	ID string `json:"id" validate:"required"`
}

// CartItem - позиция корзины, как ее прислал клиент.
type CartItem struct {
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"required,gt=0"`
}

// Amount - денежная сумма в формате PayPal (value хранится строкой).
type Amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

// ShippingAddress - адрес доставки, берется только из проверенного
// ответа PayPal, никогда из запроса клиента.
type ShippingAddress struct {
	AddressLine1 string `json:"address_line_1"`
	AdminArea2   string `json:"admin_area_2"`
	AdminArea1   string `json:"admin_area_1"`
	PostalCode   string `json:"postal_code"`
	CountryCode  string `json:"country_code"`
}

// VerifiedPayment - результат проверки оплаты через API PayPal.
// Заполняется исключительно из ответа шлюза.
type VerifiedPayment struct {
	GatewayOrderID  string
	Status          string
	CapturedAmount  float64
	Currency        string
	CaptureID       string
	PayerEmail      string
	PayerPhone      string
	CustomerName    string
	ShippingAddress ShippingAddress
	CreateTime      string
}

// Order представляет сохраненный заказ: данные плательщика и суммы
// приходят из проверенного ответа PayPal, состав - из корзины клиента.
type Order struct {
	OrderID            string          `json:"order_id"`
	PaypalCaptureID    string          `json:"paypal_capture_id"`
	Status             string          `json:"status"`
	Amount             Amount          `json:"amount"`
	Items              []CartItem      `json:"items"`
	PayerEmail         string          `json:"payer_email"`
	PayerPhone         string          `json:"payer_phone,omitempty"`
	CustomerName       string          `json:"customer_name"`
	ShippingAddress    ShippingAddress `json:"shipping_address"`
	ShippingMethod     string          `json:"shipping_method"`
	CouponUsed         string          `json:"coupon_used,omitempty"`
	DiscountPercentage float64         `json:"discount_percentage"`
	PaymentTime        string          `json:"payment_time"`
	CreatedAt          time.Time       `json:"created_at"`
}
