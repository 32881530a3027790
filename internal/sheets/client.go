// Package sheets fetches cell ranges from the Google Sheets values API.
package sheets

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

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"pnl-dashboard/internal/domain"
	"pnl-dashboard/internal/observability"
)

// DefaultBaseURL is the public Sheets API host.
const DefaultBaseURL = "https://sheets.googleapis.com"

// DefaultRange is used when a source names a sheet but no range.
const DefaultRange = "A1:Z"

var (
	ErrUnauthorized = errors.New("sheets: access token rejected")
	ErrMissingToken = errors.New("sheets: access token is required")
	ErrMissingID    = errors.New("sheets: spreadsheet id is required")
)

// APIError is a non-2xx response from the Sheets API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sheets API error (%d): %s", e.Status, e.Body)
}

// Unwrap maps 401 responses to ErrUnauthorized.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client reads spreadsheet values with a caller-supplied OAuth2 access token.
type Client struct {
	baseURL string
	base    *http.Client
	logger  *zap.Logger
}

// NewClient creates a client. Zero options use the public API with a 15s timeout.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base := opts.HTTPClient
	if base == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		base = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{baseURL: baseURL, base: base, logger: logger}
}

type valueRange struct {
	Range  string          `json:"range"`
	Values [][]domain.Cell `json:"values"`
}

// FetchValues returns the cell grid of rangeA1 ("Sheet!A1:Z").
// A range without values yields an empty grid.
func (c *Client) FetchValues(ctx context.Context, token, spreadsheetID, rangeA1 string) ([][]domain.Cell, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	if spreadsheetID == "" {
		return nil, ErrMissingID
	}

	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s",
		c.baseURL, url.PathEscape(spreadsheetID), url.PathEscape(rangeA1))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	httpCtx := context.WithValue(ctx, oauth2.HTTPClient, c.base)
	httpClient := oauth2.NewClient(httpCtx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
	httpClient.Timeout = c.base.Timeout

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		observability.RecordSheetsFetch("error", time.Since(start).Seconds())
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	observability.RecordSheetsFetch(fmt.Sprint(resp.StatusCode), time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("sheets fetch failed",
			zap.String("spreadsheet_id", spreadsheetID),
			zap.String("range", rangeA1),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	var vr valueRange
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, fmt.Errorf("decode values: %w", err)
	}
	if vr.Values == nil {
		return [][]domain.Cell{}, nil
	}

	c.logger.Debug("sheets fetch",
		zap.String("spreadsheet_id", spreadsheetID),
		zap.String("range", rangeA1),
		zap.Int("rows", len(vr.Values)),
	)
	return vr.Values, nil
}

// FullRange joins a sheet name and range as "Sheet!A1:Z". An empty range means DefaultRange.
func FullRange(sheet, rng string) string {
	rng = strings.TrimSpace(rng)
	if rng == "" {
		rng = DefaultRange
	}
	return strings.TrimSpace(sheet) + "!" + rng
}

// Config builds the source configuration for a spreadsheet range.
func Config(spreadsheetID, sheet, rng string) domain.SheetsConfig {
	rng = strings.TrimSpace(rng)
	if rng == "" {
		rng = DefaultRange
	}
	return domain.SheetsConfig{
		SpreadsheetID: strings.TrimSpace(spreadsheetID),
		SheetName:     strings.TrimSpace(sheet),
		Range:         rng,
		FullRange:     FullRange(sheet, rng),
	}
}
