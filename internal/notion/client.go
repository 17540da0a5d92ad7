// Package notion queries a Notion data source for due items.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public Notion API endpoint.
	DefaultBaseURL = "https://api.notion.com"
	// APIVersion is the Notion-Version the data source endpoints require.
	APIVersion = "2025-09-03"

	maxErrorBody = 64 * 1024
)

// Filter is a Notion filter object, serialized as-is into the query body.
type Filter map[string]any

// QueryResponse is one page of data source query results.
type QueryResponse struct {
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// Cursor returns the next cursor, or "" when there is none.
func (r QueryResponse) Cursor() string {
	if r.NextCursor == nil {
		return ""
	}
	return *r.NextCursor
}

// Querier runs a single data source query starting at cursor.
type Querier interface {
	Query(ctx context.Context, filter Filter, cursor string) (QueryResponse, error)
}

// APIError is a non-2xx response from the Notion API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("notion: http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("notion: http %d %s: %s", e.Status, e.Code, e.Message)
}

// Client queries one Notion data source over HTTP.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	token        string
	dataSourceID string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL points the client at a different API host.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// NewClient creates a client for the given integration token and data source.
func NewClient(token, dataSourceID string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("notion: missing API key")
	}
	if strings.TrimSpace(dataSourceID) == "" {
		return nil, errors.New("notion: missing data source id")
	}
	c := &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      DefaultBaseURL,
		token:        token,
		dataSourceID: dataSourceID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type queryRequest struct {
	Filter      Filter `json:"filter,omitempty"`
	StartCursor string `json:"start_cursor,omitempty"`
}

// Query fetches one page of results.
func (c *Client) Query(ctx context.Context, filter Filter, cursor string) (QueryResponse, error) {
	var out QueryResponse

	body, err := json.Marshal(queryRequest{Filter: filter, StartCursor: cursor})
	if err != nil {
		return out, fmt.Errorf("notion: marshal query: %w", err)
	}

	url := fmt.Sprintf("%s/v1/data_sources/%s/query", c.baseURL, c.dataSourceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return out, fmt.Errorf("notion: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", APIVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return out, fmt.Errorf("notion: query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("notion: decode query response: %w", err)
	}
	return out, nil
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	apiErr.Status = resp.StatusCode
	return apiErr
}

// QueryAll follows next cursors until the data source reports no more
// pages and returns every result in order.
func QueryAll(ctx context.Context, q Querier, filter Filter) ([]Page, error) {
	var (
		pages  []Page
		cursor string
	)
	for {
		resp, err := q.Query(ctx, filter, cursor)
		if err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)
		if !resp.HasMore {
			return pages, nil
		}
		next := resp.Cursor()
		if next == "" || next == cursor {
			return nil, fmt.Errorf("notion: has_more set without a usable next_cursor after %d results", len(pages))
		}
		cursor = next
	}
}
