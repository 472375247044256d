// Package fmp provides a client for the financialmodelingprep.com statement
// API. It is the "statement source" collaborator for the valuation engine:
// given a ticker and a period granularity it returns ordered historical
// statements, most recent first.
package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/halessi/dcf/internal/domain"
)

const defaultBaseURL = "https://financialmodelingprep.com/api/v3"

// Period granularity accepted by the statement endpoints.
const (
	PeriodAnnual  = "annual"
	PeriodQuarter = "quarter"
)

// Client is the FMP API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new FMP client.
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("client", "fmp").Logger(),
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// Statements fetches the income, balance, cash-flow, and enterprise-value
// histories for a ticker and merges them into a StatementHistory, most recent
// period first.
func (c *Client) Statements(ctx context.Context, ticker, period string, limit int) (*domain.StatementHistory, error) {
	var income []incomeStatement
	if err := c.get(ctx, "income-statement", ticker, period, limit, &income); err != nil {
		return nil, fmt.Errorf("income statement: %w", err)
	}

	var balance []balanceSheet
	if err := c.get(ctx, "balance-sheet-statement", ticker, period, limit, &balance); err != nil {
		return nil, fmt.Errorf("balance sheet: %w", err)
	}

	var cash []cashFlowStatement
	if err := c.get(ctx, "cash-flow-statement", ticker, period, limit, &cash); err != nil {
		return nil, fmt.Errorf("cash flow statement: %w", err)
	}

	var evs []enterpriseValueRecord
	if err := c.get(ctx, "enterprise-values", ticker, period, limit, &evs); err != nil {
		return nil, fmt.Errorf("enterprise values: %w", err)
	}

	history := &domain.StatementHistory{
		Snapshots:        merge(income, balance, cash),
		EnterpriseValues: toEnterpriseValues(evs),
	}

	c.log.Debug().
		Str("ticker", ticker).
		Str("period", period).
		Int("snapshots", len(history.Snapshots)).
		Int("enterprise_values", len(history.EnterpriseValues)).
		Msg("Fetched statement history")

	return history, nil
}

// get performs one statement-endpoint request and decodes the JSON list.
func (c *Client) get(ctx context.Context, endpoint, ticker, period string, limit int, out interface{}) error {
	if period != PeriodAnnual && period != PeriodQuarter {
		return fmt.Errorf("invalid period %q (want %q or %q)", period, PeriodAnnual, PeriodQuarter)
	}

	params := url.Values{}
	params.Set("period", period)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, endpoint, ticker, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d for %s/%s", resp.StatusCode, endpoint, ticker)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
