package mfapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "mfbrokers/internal/errors"
)

// requestTimeout bounds every upstream call; a timeout is reported like any
// other upstream failure.
const requestTimeout = 10 * time.Second

// Scheme is one mutual fund scheme as served by the upstream API.
type Scheme struct {
	SchemeCode       int     `json:"Scheme_Code"`
	SchemeName       string  `json:"Scheme_Name"`
	NetAssetValue    float64 `json:"Net_Asset_Value"`
	SchemeCategory   string  `json:"Scheme_Category"`
	SchemeType       string  `json:"Scheme_Type"`
	MutualFundFamily string  `json:"Mutual_Fund_Family"`
	Date             string  `json:"Date"`
}

// NAV returns the net asset value as a decimal.
func (s *Scheme) NAV() decimal.Decimal {
	return decimal.NewFromFloat(s.NetAssetValue)
}

// validate rejects entries missing required fields; the upstream payload is
// untyped JSON so the boundary enforces shape.
func (s *Scheme) validate() error {
	if s.SchemeCode <= 0 {
		return fmt.Errorf("scheme entry missing Scheme_Code")
	}
	if s.SchemeName == "" {
		return fmt.Errorf("scheme %d missing Scheme_Name", s.SchemeCode)
	}
	return nil
}

// ClientInterface is the read surface of the upstream price API.
type ClientInterface interface {
	SchemesByFamily(ctx context.Context, family string) ([]Scheme, error)
	SchemesByCodes(ctx context.Context, codes []int) ([]Scheme, error)
}

// Client wraps the RapidAPI mutual fund NAV endpoint. It does not retry:
// retry policy belongs to the caller (the price sync job retries, the
// interactive buy path does not).
type Client struct {
	baseURL string
	apiHost string
	apiKey  string
	http    *http.Client
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates an API client with a bounded request timeout.
func NewClient(baseURL, apiHost, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiHost: apiHost,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// SchemesByFamily lists the open-ended schemes of a fund family.
func (c *Client) SchemesByFamily(ctx context.Context, family string) ([]Scheme, error) {
	return c.get(ctx, url.Values{
		"Mutual_Fund_Family": {family},
		"Scheme_Type":        {"Open"},
	})
}

// SchemesByCodes fetches the latest entries for one or more scheme codes in
// a single call, codes comma-joined as one batch parameter.
func (c *Client) SchemesByCodes(ctx context.Context, codes []int) ([]Scheme, error) {
	joined := make([]string, len(codes))
	for i, code := range codes {
		joined[i] = strconv.Itoa(code)
	}
	return c.get(ctx, url.Values{
		"Scheme_Code": {strings.Join(joined, ",")},
	})
}

func (c *Client) get(ctx context.Context, query url.Values) ([]Scheme, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	req.URL.RawQuery = query.Encode()
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.apiHost)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, apperrors.ErrQuotaExceeded
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: unexpected status %d", apperrors.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var schemes []Scheme
	if err := json.NewDecoder(resp.Body).Decode(&schemes); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	for i := range schemes {
		if err := schemes[i].validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
		}
	}
	return schemes, nil
}
