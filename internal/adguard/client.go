package adguard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sdorra/adguard-rewrite-sync/internal/metrics"
)

// Client performs the three rewrite operations against one AdGuard Home
// instance. Any non-200 response or transport fault is a hard failure for
// that single call; there are no retries.
type Client interface {
	List(ctx context.Context) ([]Rewrite, error)
	Add(ctx context.Context, rule Rewrite) error
	Delete(ctx context.Context, rule Rewrite) error
}

type Httper interface {
	Do(req *http.Request) (*http.Response, error)
}

type client struct {
	baseURL  string
	username string
	password string
	http     Httper
	metrics  *metrics.Metrics
}

func New(baseURL, username, password string, metrics *metrics.Metrics) Client {
	return &client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		http:     &http.Client{},
		metrics:  metrics,
	}
}

func (c *client) List(ctx context.Context) ([]Rewrite, error) {
	resp, err := c.do(ctx, http.MethodGet, "/control/rewrite/list", nil)
	if err != nil {
		c.metrics.IncAPIRequest("list", c.baseURL, false)
		return nil, &FetchError{URL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.IncAPIRequest("list", c.baseURL, false)
		return nil, &FetchError{URL: c.baseURL, Status: resp.StatusCode, Body: readBody(resp.Body)}
	}

	var rewrites []Rewrite
	if err := json.NewDecoder(resp.Body).Decode(&rewrites); err != nil {
		c.metrics.IncAPIRequest("list", c.baseURL, false)
		return nil, &FetchError{URL: c.baseURL, Err: fmt.Errorf("parse rewrite list: %w", err)}
	}

	c.metrics.IncAPIRequest("list", c.baseURL, true)
	return rewrites, nil
}

func (c *client) Add(ctx context.Context, rule Rewrite) error {
	resp, err := c.post(ctx, "/control/rewrite/add", rule)
	if err != nil {
		c.metrics.IncAPIRequest("add", c.baseURL, false)
		return &AddError{URL: c.baseURL, Rule: rule, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.IncAPIRequest("add", c.baseURL, false)
		return &AddError{URL: c.baseURL, Rule: rule, Status: resp.StatusCode, Body: readBody(resp.Body)}
	}

	c.metrics.IncAPIRequest("add", c.baseURL, true)
	return nil
}

func (c *client) Delete(ctx context.Context, rule Rewrite) error {
	resp, err := c.post(ctx, "/control/rewrite/delete", rule)
	if err != nil {
		c.metrics.IncAPIRequest("delete", c.baseURL, false)
		return &DeleteError{URL: c.baseURL, Rule: rule, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.IncAPIRequest("delete", c.baseURL, false)
		return &DeleteError{URL: c.baseURL, Rule: rule, Status: resp.StatusCode, Body: readBody(resp.Body)}
	}

	c.metrics.IncAPIRequest("delete", c.baseURL, true)
	return nil
}

func (c *client) post(ctx context.Context, path string, rule Rewrite) (*http.Response, error) {
	body, err := json.Marshal(rule)
	if err != nil {
		return nil, fmt.Errorf("encode rewrite: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(body))
}

func (c *client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")
	return c.http.Do(req)
}

// readBody captures a bounded response body for error reporting.
func readBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
