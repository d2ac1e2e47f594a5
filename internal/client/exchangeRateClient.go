package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

type ExchangeRateClient interface {
	// IDRPerUSD returns how many rupiah one USD buys right now.
	IDRPerUSD(ctx context.Context) (decimal.Decimal, error)
}

type exchangeRateClientImpl struct {
	httpClient *http.Client
	baseURL    string
}

func NewExchangeRateClient(baseURL string) ExchangeRateClient {
	return &exchangeRateClientImpl{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: baseURL,
	}
}

func (c *exchangeRateClientImpl) IDRPerUSD(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v4/latest/USD", nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("http new request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("exchange rate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decimal.Zero, fmt.Errorf("exchange rate error %d", resp.StatusCode)
	}

	var res struct {
		Rates struct {
			IDR decimal.Decimal `json:"IDR"`
		} `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return decimal.Zero, fmt.Errorf("decode exchange rate response: %w", err)
	}

	if res.Rates.IDR.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("exchange rate response missing IDR rate")
	}

	return res.Rates.IDR, nil
}
