package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type ClientConfig struct {
	BaseURL   string `json:"baseUrl" mapstructure:"base_url"`
	KeyID     string `json:"keyId" mapstructure:"key_id"`
	KeySecret string `json:"keySecret" mapstructure:"key_secret"`
}

type Client struct {
	// baseURL is the base url of the Razorpay REST API.
	baseURL string

	// keyID and keySecret authenticate API calls via basic auth.
	keyID     string
	keySecret string

	// hc is the http client.
	hc *http.Client
}

// newClient creates a new instance of the Razorpay API client.
func newClient(c *ClientConfig) *Client {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = "https://api.razorpay.com/v1"
	}

	return &Client{
		baseURL:   baseURL,
		keyID:     c.KeyID,
		keySecret: c.KeySecret,

		// set http client with timeout.
		hc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type orderReply struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// createOrder makes the http call to create an order on the Razorpay backend.
func (c *Client) createOrder(ctx context.Context, amountSubunits int64, currency, receipt string, notes map[string]string) (*orderReply, error) {
	payload := map[string]any{
		"amount":   amountSubunits,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		payload["notes"] = notes
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("createOrder: json.Marshal: %v", err)
	}

	_baseURL, _ := url.Parse(c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s%s", _baseURL.String(), "/orders"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("createOrder: http.NewReq: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("createOrder: http.Do: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, errors.New("createOrder: resp.StatusCode: 401 => Unauthorized")
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return nil, fmt.Errorf("createOrder: status %d: %s: %s", resp.StatusCode, apiErr.Error.Code, apiErr.Error.Description)
	}

	var reply orderReply
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return nil, fmt.Errorf("createOrder: json.Decode: %v", err)
	}
	if reply.ID == "" {
		return nil, errors.New("createOrder: reply missing order id")
	}

	return &reply, nil
}

// fetchPayment retrieves a payment by its gateway id, used by the
// reconciler to double check a payment's captured state.
func (c *Client) fetchPayment(ctx context.Context, paymentID string) (*PaymentDetails, error) {
	_baseURL, _ := url.Parse(c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/payments/%s", _baseURL.String(), paymentID), nil)
	if err != nil {
		return nil, fmt.Errorf("fetchPayment: http.NewReq: %v", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetchPayment: http.Do: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetchPayment: status %d", resp.StatusCode)
	}

	var reply PaymentDetails
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return nil, fmt.Errorf("fetchPayment: json.Decode: %v", err)
	}
	return &reply, nil
}

type PaymentDetails struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
	Status  string `json:"status"` // created, authorized, captured, refunded, failed
	Method  string `json:"method"`
}
