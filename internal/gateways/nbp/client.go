// Package nbp fetches exchange rates from the Narodowy Bank Polski table A
// endpoint. Only the effective date and the mid rate of a fixed set of
// currencies are consumed; anything else in the response is ignored, and any
// other response shape is a fetch failure.
package nbp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"feefocus/internal/entity"
)

const (
	DefaultBaseURL = "https://api.nbp.pl/api"

	defaultTimeout = 10 * time.Second
)

// requiredCodes must all be present in a response for it to count as a
// successful fetch.
var requiredCodes = []string{"USD", "GBP", "EUR"}

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the given API base URL. Empty arguments fall
// back to the public NBP endpoint and a conservative timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type rateEntry struct {
	Currency string  `json:"currency"`
	Code     string  `json:"code"`
	Mid      float64 `json:"mid"`
}

type tableResponse struct {
	Table         string      `json:"table"`
	No            string      `json:"no"`
	EffectiveDate string      `json:"effectiveDate"`
	Rates         []rateEntry `json:"rates"`
}

// FetchTable performs one GET against the table A endpoint and builds a rate
// table from it. The base currency is fixed at exactly 1; all required codes
// must be present with a positive mid rate.
func (c *Client) FetchTable(ctx context.Context) (*entity.RateTable, error) {
	url := c.baseURL + "/exchangerates/tables/a/?format=json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("nbp: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nbp: fetch table: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nbp: unexpected status %d", resp.StatusCode)
	}

	var tables []tableResponse
	if err := json.NewDecoder(resp.Body).Decode(&tables); err != nil {
		return nil, fmt.Errorf("nbp: decode response: %w", err)
	}
	if len(tables) == 0 {
		return nil, errors.New("nbp: empty response")
	}

	t := tables[0]
	if t.EffectiveDate == "" {
		return nil, errors.New("nbp: response without effective date")
	}

	rates := map[string]float64{entity.BaseCurrency: 1}
	for _, r := range t.Rates {
		for _, code := range requiredCodes {
			if r.Code == code && r.Mid > 0 {
				rates[code] = r.Mid
			}
		}
	}
	for _, code := range requiredCodes {
		if _, ok := rates[code]; !ok {
			return nil, fmt.Errorf("nbp: missing rate for %s", code)
		}
	}

	return &entity.RateTable{Rates: rates, LastUpdated: t.EffectiveDate}, nil
}
