// Package mailer отправляет письма-подтверждения заказа: одно покупателю,
// одно оператору магазина. Отправка best-effort: заказ уже оплачен и
// сохранен, поэтому ошибка почты логируется и не отменяет заказ.
package mailer

import (
	"fmt"
	"strconv"
	"time"

	"github.com/RussoPy/Claude-s-Store/internal/config"
	"github.com/RussoPy/Claude-s-Store/internal/models"

	"gopkg.in/gomail.v2"
)

type Mailer struct {
	dialer     *gomail.Dialer
	fromEmail  string
	adminEmail string
}

func NewMailer(conf *config.SMTPConfig) *Mailer {
	return &Mailer{
		dialer:     gomail.NewDialer(conf.Host, conf.Port, conf.User, conf.Password),
		fromEmail:  conf.FromEmail,
		adminEmail: conf.AdminEmail,
	}
}

// SendOrderEmails отправляет оба письма по сохраненному заказу.
// Номер для отслеживания - capture id из PayPal.
func (m *Mailer) SendOrderEmails(order *models.Order) error {
	data := buildEmailData(order)

	customerMsg := gomail.NewMessage()
	customerMsg.SetHeader("From", m.fromEmail)
	customerMsg.SetHeader("To", order.PayerEmail)
	customerMsg.SetHeader("Subject", fmt.Sprintf("אישור הזמנה מ-claudeShop! מספר הזמנה: %s", data.OrderRef))
	text, html, err := renderCustomerEmail(data)
	if err != nil {
		return fmt.Errorf("ошибка при рендере письма покупателю: %w", err)
	}
	customerMsg.SetBody("text/plain", text)
	customerMsg.AddAlternative("text/html", html)

	adminMsg := gomail.NewMessage()
	adminMsg.SetHeader("From", m.fromEmail)
	adminMsg.SetHeader("To", m.adminEmail)
	adminMsg.SetHeader("Subject", fmt.Sprintf("התקבלה הזמנה חדשה! מספר הזמנה: %s", data.OrderRef))
	text, html, err = renderAdminEmail(data)
	if err != nil {
		return fmt.Errorf("ошибка при рендере письма оператору: %w", err)
	}
	adminMsg.SetBody("text/plain", text)
	adminMsg.AddAlternative("text/html", html)

	if err := m.dialer.DialAndSend(customerMsg, adminMsg); err != nil {
		return fmt.Errorf("ошибка при отправке писем по заказу %s: %w", order.OrderID, err)
	}

	return nil
}

// emailData - плоские данные для шаблонов писем.
type emailData struct {
	OrderRef        string
	CustomerName    string
	PayerEmail      string
	PayerPhone      string
	Items           []models.CartItem
	Total           float64
	OriginalTotal   float64
	CouponUsed      string
	DiscountPct     float64
	PaymentTime     string
	ShippingAddress string
	ShippingMethod  string
}

func buildEmailData(order *models.Order) emailData {
	data := emailData{
		OrderRef:       order.PaypalCaptureID,
		CustomerName:   order.CustomerName,
		PayerEmail:     order.PayerEmail,
		PayerPhone:     order.PayerPhone,
		Items:          order.Items,
		CouponUsed:     order.CouponUsed,
		DiscountPct:    order.DiscountPercentage,
		ShippingMethod: order.ShippingMethod,
	}
	if data.OrderRef == "" {
		data.OrderRef = order.OrderID
	}
	if data.CustomerName == "" {
		data.CustomerName = "לקוח"
	}
	if data.PayerPhone == "" {
		data.PayerPhone = "לא צוין"
	}

	data.Total, _ = strconv.ParseFloat(order.Amount.Value, 64)
	if data.CouponUsed != "" && data.DiscountPct > 0 {
		if data.DiscountPct < 100 {
			data.OriginalTotal = data.Total / (1 - data.DiscountPct/100)
		} else {
			// При 100% скидке итог нулевой и не восстанавливает исходную
			// сумму. Считаем ее по позициям.
			for _, item := range order.Items {
				data.OriginalTotal += item.Price * float64(item.Quantity)
			}
		}
	}

	data.PaymentTime = "לא צוין"
	if order.PaymentTime != "" {
		if t, err := time.Parse(time.RFC3339, order.PaymentTime); err == nil {
			data.PaymentTime = t.UTC().Format("02/01/2006 15:04:05") + " (UTC)"
		} else {
			data.PaymentTime = order.PaymentTime
		}
	}

	data.ShippingAddress = joinAddress(order.ShippingAddress)
	if data.ShippingAddress == "" {
		data.ShippingAddress = "לא צוינה"
	}

	return data
}

func joinAddress(addr models.ShippingAddress) string {
	parts := []string{addr.AddressLine1, addr.AdminArea2, addr.AdminArea1, addr.PostalCode, addr.CountryCode}
	joined := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if joined != "" {
			joined += ", "
		}
		joined += p
	}
	return joined
}
