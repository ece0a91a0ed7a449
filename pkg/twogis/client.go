// Package twogis provides a client for the 2GIS catalog items API.
package twogis

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the catalog search operations.
type Client interface {
	// Search performs a free-text item search scoped to a region and
	// returns the raw response. A response with zero items is not an
	// error.
	Search(ctx context.Context, query string, regionID int) (*SearchResponse, error)
}

// SearchResponse is the parsed catalog API response.
type SearchResponse struct {
	Result struct {
		Items []Item `json:"items"`
		Total int    `json:"total"`
	} `json:"result"`
}

// Item is a single catalog entry.
type Item struct {
	Name          string         `json:"name"`
	AddressName   string         `json:"address_name"`
	ContactGroups []ContactGroup `json:"contact_groups"`
}

// ContactGroup is a nested block of typed contacts on a catalog item.
type ContactGroup struct {
	Contacts []Contact `json:"contacts"`
}

// Contact is one typed contact value. Phones and emails arrive in Text,
// websites in URL.
type Contact struct {
	Type string `json:"type"`
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithLocale overrides the request locale.
func WithLocale(locale string) Option {
	return func(c *httpClient) {
		c.locale = locale
	}
}

// WithFields overrides the requested field set.
func WithFields(fields string) Option {
	return func(c *httpClient) {
		c.fields = fields
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	locale  string
	fields  string
	http    *http.Client
}

// NewClient creates a catalog client. The API key is sent as the `key`
// query parameter; every search consumes one unit of the metered quota.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://catalog.api.2gis.com/3.0/items",
		locale:  "ru_RU",
		fields:  "items.contact_groups,items.address,items.org",
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query string, regionID int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("key", c.apiKey)
	params.Set("locale", c.locale)
	params.Set("fields", c.fields)
	params.Set("region_id", strconv.Itoa(regionID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "twogis: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "twogis: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "twogis: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("twogis: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "twogis: unmarshal response")
	}

	return &result, nil
}
