package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sejoli-paypal-gateway/internal/config"
	"sejoli-paypal-gateway/internal/model"
)

type PaypalClient interface {
	// RequestAccessToken performs the client-credentials grant and returns
	// the bearer token. Empty token means the response carried no
	// access_token field.
	RequestAccessToken(ctx context.Context) (string, error)
	CreatePayment(ctx context.Context, token string, payment *model.PaymentRequest) (*PaymentResult, error)
	ExecutePayment(ctx context.Context, token, executeURL, payerID string) (*ExecuteResult, error)
}

// PaymentResult is what the checkout flow needs from a created payment:
// where to send the buyer, where to capture afterwards, and the raw
// response to persist. Either URL may be empty when the response links
// are missing; callers must check before redirecting.
type PaymentResult struct {
	PaymentID  string
	PaymentURL string
	ExecuteURL string
	Raw        []byte
}

type ExecuteResult struct {
	State string
	Raw   []byte
}

type paypalClientImpl struct {
	httpClient         *http.Client
	baseApiURL         string
	paypalClientID     string
	paypalClientSecret string
}

func NewPaypalClient(paypalCfg *config.Paypal) PaypalClient {
	clientID, clientSecret := paypalCfg.Credentials()

	return &paypalClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:         paypalCfg.BaseApiURL(),
		paypalClientID:     clientID,
		paypalClientSecret: clientSecret,
	}
}

func (c *paypalClientImpl) RequestAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.paypalClientID + ":" + c.paypalClientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	return res.AccessToken, nil
}

func (c *paypalClientImpl) CreatePayment(ctx context.Context, token string, payment *model.PaymentRequest) (*PaymentResult, error) {
	body, err := json.Marshal(payment)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/payments/payment",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal create payment request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read paypal response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("paypal error %d: %s", resp.StatusCode, string(raw))
	}

	var result model.PaymentResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode paypal response: %w", err)
	}

	return &PaymentResult{
		PaymentID:  result.ID,
		PaymentURL: extractLink(result.Links, "approval_url"),
		ExecuteURL: extractLink(result.Links, "execute"),
		Raw:        raw,
	}, nil
}

func (c *paypalClientImpl) ExecutePayment(ctx context.Context, token, executeURL, payerID string) (*ExecuteResult, error) {
	body, err := json.Marshal(&model.ExecuteRequest{PayerID: payerID})
	if err != nil {
		return nil, fmt.Errorf("marshal execute payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, executeURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal execute request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read paypal response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("paypal execute failed: status=%d body=%s", resp.StatusCode, string(raw))
	}

	var result model.ExecuteResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode execute response: %w", err)
	}

	return &ExecuteResult{
		State: result.State,
		Raw:   raw,
	}, nil
}

func extractLink(links []model.PaypalLink, rel string) string {
	for _, link := range links {
		if link.Rel == rel {
			return link.Href
		}
	}
	return ""
}
