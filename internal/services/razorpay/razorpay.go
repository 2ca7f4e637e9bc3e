// Package razorpay wraps the Razorpay Orders API and the signature
// verification scheme used by its hosted checkout. Nothing coming back from
// the checkout widget is trusted until it verifies here.
package razorpay

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

type (
	Config struct {
		BaseURL       string `json:"baseUrl" mapstructure:"base_url"`
		KeyID         string `json:"keyId" mapstructure:"key_id"`
		KeySecret     string `json:"keySecret" mapstructure:"key_secret"`
		WebhookSecret string `json:"webhookSecret" mapstructure:"webhook_secret"`
		Currency      string `json:"currency" mapstructure:"currency"`
	}

	Gateway struct {
		keyID         string
		keySecret     string
		webhookSecret string
		currency      string

		client *Client
	}
)

// Order is what the checkout widget needs to start a payment.
type Order struct {
	OrderID        string          `json:"order_id"`
	Amount         decimal.Decimal `json:"amount"`
	AmountSubunits int64           `json:"amount_subunits"`
	Currency       string          `json:"currency"`
	Receipt        string          `json:"receipt"`
	KeyID          string          `json:"key_id"`
}

// New returns a new Razorpay gateway instance.
func New(cfg *Config) (*Gateway, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, fmt.Errorf("razorpay: key id and key secret are required")
	}

	currency := cfg.Currency
	if currency == "" {
		currency = "INR"
	}

	return &Gateway{
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
		currency:      currency,

		client: newClient(&ClientConfig{
			BaseURL:   cfg.BaseURL,
			KeyID:     cfg.KeyID,
			KeySecret: cfg.KeySecret,
		}),
	}, nil
}

// CreateOrder registers an order with Razorpay for the given amount in the
// smallest currency subunit. The booking id travels in the order notes so
// webhook payloads can be traced back.
func (g *Gateway) CreateOrder(ctx context.Context, amountSubunits int64, bookingID string) (*Order, error) {
	receipt, err := randomReceipt(8)
	if err != nil {
		return nil, fmt.Errorf("razorpay: receipt: %v", err)
	}
	receipt = fmt.Sprintf("bk_%s_%s", bookingID, receipt)

	reply, err := g.client.createOrder(ctx, amountSubunits, g.currency, receipt, map[string]string{
		"booking_id": bookingID,
	})
	if err != nil {
		return nil, err
	}

	return &Order{
		OrderID:        reply.ID,
		Amount:         decimal.NewFromInt(reply.Amount).Div(decimal.NewFromInt(100)),
		AmountSubunits: reply.Amount,
		Currency:       reply.Currency,
		Receipt:        reply.Receipt,
		KeyID:          g.keyID,
	}, nil
}

// VerifyCheckoutSignature validates the signature the checkout widget hands
// back after a successful payment: HMAC-SHA256("<order_id>|<payment_id>")
// keyed with the API key secret.
func (g *Gateway) VerifyCheckoutSignature(orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	payload := fmt.Sprintf("%s|%s", orderID, paymentID)
	return verifyHmac256([]byte(payload), []byte(g.keySecret), signature)
}

// VerifyWebhookSignature validates the X-Razorpay-Signature header of a
// webhook delivery against the raw request body.
func (g *Gateway) VerifyWebhookSignature(body []byte, signature string) bool {
	if g.webhookSecret == "" || signature == "" {
		return false
	}
	return verifyHmac256(body, []byte(g.webhookSecret), signature)
}

// SignCheckout produces the checkout signature for an order/payment pair.
// Exported for tests and payment simulation in development.
func (g *Gateway) SignCheckout(orderID, paymentID string) string {
	return Hmac256([]byte(fmt.Sprintf("%s|%s", orderID, paymentID)), []byte(g.keySecret))
}

// FetchPayment retrieves the authoritative payment state from Razorpay.
func (g *Gateway) FetchPayment(ctx context.Context, paymentID string) (*PaymentDetails, error) {
	return g.client.fetchPayment(ctx, paymentID)
}
