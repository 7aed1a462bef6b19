// Package quote looks up current share prices from an external HTTP quote API.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/baharkarakas/stocksim/internal/metrics"
	"github.com/baharkarakas/stocksim/internal/models"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownSymbol is returned when the provider has no quote for the symbol.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrUnavailable wraps transport failures and unexpected provider statuses.
	ErrUnavailable = errors.New("quote service unavailable")
)

const routeQuote = "/quote"

type response struct {
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"companyName"`
	LatestPrice decimal.Decimal `json:"latestPrice"`
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Lookup fetches the latest quote for symbol.
func (c *Client) Lookup(ctx context.Context, symbol string) (q models.Quote, err error) {
	defer func() { metrics.ObserveQuoteLookup(err) }()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return models.Quote{}, ErrUnknownSymbol
	}

	params := url.Values{"symbol": {symbol}}
	if c.apiKey != "" {
		params.Set("token", c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+routeQuote+"?"+params.Encode(), nil)
	if err != nil {
		return models.Quote{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Quote{}, fmt.Errorf("%w: %s", ErrUnavailable, err.Error())
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusBadRequest:
		return models.Quote{}, fmt.Errorf("%s: %w", symbol, ErrUnknownSymbol)
	case resp.StatusCode != http.StatusOK:
		return models.Quote{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Quote{}, fmt.Errorf("%w: read response: %s", ErrUnavailable, err.Error())
	}
	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return models.Quote{}, fmt.Errorf("%w: parse response: %s", ErrUnavailable, err.Error())
	}
	if r.Symbol == "" || !r.LatestPrice.IsPositive() {
		return models.Quote{}, fmt.Errorf("%s: %w", symbol, ErrUnknownSymbol)
	}

	return models.Quote{
		Symbol: strings.ToUpper(r.Symbol),
		Name:   r.CompanyName,
		Price:  r.LatestPrice,
	}, nil
}
