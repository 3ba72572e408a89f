// Package paypal - клиент для проверки оплаты через REST API PayPal.
// Сервис никогда не доверяет статусу оплаты из запроса клиента:
// подтвержденная транзакция запрашивается напрямую у шлюза.
package paypal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/RussoPy/Claude-s-Store/internal/config"
	"github.com/RussoPy/Claude-s-Store/internal/models"
)

const (
	sandboxAPIBase = "https://api-m.sandbox.paypal.com"
	liveAPIBase    = "https://api-m.paypal.com"

	// StatusCompleted - единственный статус, при котором оплата считается
	// подтвержденной. APPROVED/CREATED - легитимные, но не завершенные.
	StatusCompleted = "COMPLETED"
)

var (
	// ErrPaymentNotCompleted - шлюз ответил, но оплата не в статусе COMPLETED.
	// Это нормальный отказ, а не сбой.
	ErrPaymentNotCompleted = errors.New("оплата не завершена")
	// ErrOrderNotFound - шлюз не знает такой заказ.
	ErrOrderNotFound = errors.New("заказ не найден в PayPal")
	// ErrBadResponse - ответ шлюза не соответствует ожидаемой схеме
	// (нет capture, нет суммы, сумма не парсится).
	ErrBadResponse = errors.New("неожиданный формат ответа PayPal")
	// ErrMissingCredentials - не заданы PAYPAL_CLIENT_ID / PAYPAL_CLIENT_SECRET.
	ErrMissingCredentials = errors.New("не заданы реквизиты PayPal API")
)

type Client struct {
	apiBase      string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(conf *config.PaypalConfig) *Client {
	apiBase := sandboxAPIBase
	if conf.Mode == "live" {
		apiBase = liveAPIBase
	}

	return &Client{
		apiBase:      apiBase,
		clientID:     conf.ClientID,
		clientSecret: conf.ClientSecret,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// getAccessToken - client_credentials grant. Токен кэшируется на время
// жизни процесса и обновляется с запасом в минуту до истечения.
func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return "", ErrMissingCredentials
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiBase+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ошибка при получении токена PayPal: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("PayPal вернул %d на запрос токена", resp.StatusCode)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil || token.AccessToken == "" {
		return "", fmt.Errorf("не удалось разобрать ответ с токеном: %w", errors.Join(err, ErrBadResponse))
	}

	c.accessToken = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - time.Minute)

	return c.accessToken, nil
}

// Типизированная схема ресурса /v2/checkout/orders/{id}.
// Поля, которых нет в ответе, остаются пустыми и проверяются явно.
type orderResource struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	CreateTime    string         `json:"create_time"`
	Payer         payer          `json:"payer"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

type payer struct {
	EmailAddress string    `json:"email_address"`
	Name         payerName `json:"name"`
	Phone        *struct {
		PhoneNumber struct {
			NationalNumber string `json:"national_number"`
		} `json:"phone_number"`
	} `json:"phone"`
}

type payerName struct {
	GivenName string `json:"given_name"`
	Surname   string `json:"surname"`
}

type purchaseUnit struct {
	Amount   *amount `json:"amount"`
	Shipping struct {
		Address models.ShippingAddress `json:"address"`
	} `json:"shipping"`
	Payments struct {
		Captures []capture `json:"captures"`
	} `json:"payments"`
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type capture struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// VerifyOrder запрашивает заказ у PayPal и возвращает подтвержденную оплату.
// Незавершенный статус - это ErrPaymentNotCompleted, транспортные сбои и
// битые ответы - отдельные виды ошибок: первым отвечают 400, вторыми 500.
func (c *Client) VerifyOrder(ctx context.Context, paypalOrderID string) (models.VerifiedPayment, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return models.VerifiedPayment{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.apiBase+"/v2/checkout/orders/"+url.PathEscape(paypalOrderID), nil)
	if err != nil {
		return models.VerifiedPayment{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.VerifiedPayment{}, fmt.Errorf("ошибка при запросе заказа у PayPal: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.VerifiedPayment{}, ErrOrderNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return models.VerifiedPayment{}, fmt.Errorf("PayPal вернул %d на запрос заказа %s", resp.StatusCode, paypalOrderID)
	}

	var order orderResource
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return models.VerifiedPayment{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	if order.Status != StatusCompleted {
		return models.VerifiedPayment{}, fmt.Errorf("%w: статус %q", ErrPaymentNotCompleted, order.Status)
	}

	return buildVerifiedPayment(&order)
}

func buildVerifiedPayment(order *orderResource) (models.VerifiedPayment, error) {
	if len(order.PurchaseUnits) == 0 {
		return models.VerifiedPayment{}, fmt.Errorf("%w: нет purchase_units", ErrBadResponse)
	}
	unit := order.PurchaseUnits[0]

	if unit.Amount == nil || unit.Amount.Value == "" {
		return models.VerifiedPayment{}, fmt.Errorf("%w: нет суммы", ErrBadResponse)
	}
	capturedAmount, err := strconv.ParseFloat(unit.Amount.Value, 64)
	if err != nil {
		return models.VerifiedPayment{}, fmt.Errorf("%w: сумма %q не парсится", ErrBadResponse, unit.Amount.Value)
	}

	if len(unit.Payments.Captures) == 0 || unit.Payments.Captures[0].ID == "" {
		return models.VerifiedPayment{}, fmt.Errorf("%w: нет capture", ErrBadResponse)
	}

	vp := models.VerifiedPayment{
		GatewayOrderID:  order.ID,
		Status:          order.Status,
		CapturedAmount:  capturedAmount,
		Currency:        unit.Amount.CurrencyCode,
		CaptureID:       unit.Payments.Captures[0].ID,
		PayerEmail:      order.Payer.EmailAddress,
		CustomerName:    strings.TrimSpace(order.Payer.Name.GivenName + " " + order.Payer.Name.Surname),
		ShippingAddress: unit.Shipping.Address,
		CreateTime:      order.CreateTime,
	}
	if order.Payer.Phone != nil {
		vp.PayerPhone = order.Payer.Phone.PhoneNumber.NationalNumber
	}

	return vp, nil
}
