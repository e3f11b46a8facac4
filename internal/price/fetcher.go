// Package price resolves the fiat unit price shown on the dashboard.
package price

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// Fetcher retrieves token prices from CoinGecko.
type Fetcher struct {
	client   *http.Client
	baseURL  string
	currency string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBaseURL points the fetcher at a different API host (tests).
func WithBaseURL(url string) Option {
	return func(f *Fetcher) { f.baseURL = strings.TrimSuffix(url, "/") }
}

// NewFetcher creates a price fetcher quoting in currency.
func NewFetcher(currency string, opts ...Option) *Fetcher {
	if currency == "" {
		currency = "usd"
	}
	f := &Fetcher{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  defaultBaseURL,
		currency: strings.ToLower(currency),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// TokenPrice returns the fiat price of one charging token.
func (f *Fetcher) TokenPrice(coinID string) (float64, error) {
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s", f.baseURL, coinID, f.currency)

	resp, err := f.client.Get(url)
	if err != nil {
		return 0, fmt.Errorf("fetching price: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("reading price response: %w", err)
	}

	// Response: {"ethereum":{"usd":1234.56}}
	var raw map[string]map[string]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return 0, fmt.Errorf("parsing price response: %w", err)
	}

	p, ok := raw[coinID][f.currency]
	if !ok {
		return 0, fmt.Errorf("price not available for: %s", coinID)
	}
	return p, nil
}

// UnitPrice returns the fiat price of one kWh of charging, given the
// configured token-per-kWh rate.
func (f *Fetcher) UnitPrice(coinID string, tokensPerKWh float64) (float64, error) {
	p, err := f.TokenPrice(coinID)
	if err != nil {
		return 0, err
	}
	return p * tokensPerKWh, nil
}
