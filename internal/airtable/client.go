// Package airtable provides a minimal client for the Airtable REST API:
// per-record get/create/update/delete plus formula-filtered listing.
// Retry policy belongs to callers; this client makes exactly one HTTP
// request per operation.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the Airtable REST API root.
const DefaultBaseURL = "https://api.airtable.com/v0"

// DefaultTimeout is the per-request HTTP timeout.
const DefaultTimeout = 30 * time.Second

// Record is a single Airtable record: an opaque id plus a field map.
type Record struct {
	ID          string         `json:"id,omitempty"`
	Fields      map[string]any `json:"fields"`
	CreatedTime string         `json:"createdTime,omitempty"`
}

// Client talks to one Airtable base.
type Client struct {
	apiKey     string
	baseID     string
	baseURL    string
	httpClient *http.Client
}

// Options configures a Client. Zero values use defaults.
type Options struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a client for the given base.
func NewClient(apiKey, baseID string, opts *Options) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("airtable API key is required")
	}
	if baseID == "" {
		return nil, fmt.Errorf("airtable base ID is required")
	}

	baseURL := DefaultBaseURL
	timeout := DefaultTimeout
	if opts != nil {
		if opts.BaseURL != "" {
			baseURL = opts.BaseURL
		}
		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
	}

	return &Client{
		apiKey:  apiKey,
		baseID:  baseID,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// GetRecord retrieves one record by id.
func (c *Client) GetRecord(ctx context.Context, table, id string) (*Record, error) {
	var rec Record
	if err := c.do(ctx, http.MethodGet, c.recordURL(table, id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

// ListRecords retrieves all records in a table matching the given
// filterByFormula expression (empty formula lists the whole table).
// Pagination is followed to exhaustion; record order is whatever the
// API returns, which is passed through untouched.
func (c *Client) ListRecords(ctx context.Context, table, filterByFormula string) ([]Record, error) {
	var records []Record
	offset := ""

	for {
		query := url.Values{}
		if filterByFormula != "" {
			query.Set("filterByFormula", filterByFormula)
		}
		if offset != "" {
			query.Set("offset", offset)
		}

		listURL := c.tableURL(table)
		if encoded := query.Encode(); encoded != "" {
			listURL += "?" + encoded
		}

		var page listResponse
		if err := c.do(ctx, http.MethodGet, listURL, nil, &page); err != nil {
			return nil, err
		}
		records = append(records, page.Records...)

		if page.Offset == "" {
			return records, nil
		}
		offset = page.Offset
	}
}

// CreateRecord creates a record and returns it with its assigned id.
func (c *Client) CreateRecord(ctx context.Context, table string, fields map[string]any) (*Record, error) {
	body := Record{Fields: fields}
	var rec Record
	if err := c.do(ctx, http.MethodPost, c.tableURL(table), &body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateRecord patches the given fields on a record. Fields not listed
// are left unchanged by the API.
func (c *Client) UpdateRecord(ctx context.Context, table, id string, fields map[string]any) (*Record, error) {
	body := Record{Fields: fields}
	var rec Record
	if err := c.do(ctx, http.MethodPatch, c.recordURL(table, id), &body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteRecord deletes a record by id.
func (c *Client) DeleteRecord(ctx context.Context, table, id string) error {
	return c.do(ctx, http.MethodDelete, c.recordURL(table, id), nil, nil)
}

func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(c.baseID), url.PathEscape(table))
}

func (c *Client) recordURL(table, id string) string {
	return c.tableURL(table) + "/" + url.PathEscape(id)
}

// do executes one request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, reqURL string, body *Record, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{URL: reqURL, Message: "failed to encode request body", Cause: err}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return &Error{URL: reqURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{URL: reqURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{URL: reqURL, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return &Error{
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Message:    apiErrorMessage(respBody),
		}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &Error{URL: reqURL, Message: "failed to decode response", Cause: err}
		}
	}
	return nil
}

// apiErrorMessage extracts the error description from an Airtable error
// payload, falling back to the raw body.
func apiErrorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		if payload.Error.Type != "" {
			return fmt.Sprintf("%s: %s", payload.Error.Type, payload.Error.Message)
		}
		return payload.Error.Message
	}
	return string(body)
}
