package simulate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/discovery/internal/domain/model"
	"github.com/okian/discovery/internal/domain/types"
)

// Client talks to the discovery HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with a request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// StatusError is returned for unexpected HTTP statuses.
type StatusError struct {
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Path, e.Status, e.Body)
}

type itemsPayload struct {
	Items []model.ContentItem `json:"items"`
	User  *model.User         `json:"user,omitempty"`
}

// FeedResult is the body of POST /feed/rank.
type FeedResult struct {
	Items     []model.ContentItem `json:"items"`
	Defaulted []string            `json:"defaulted"`
	Warning   string              `json:"-"`
}

// BatchResult is the body of POST /interactions/batch.
type BatchResult struct {
	BatchID  string `json:"batch_id"`
	Accepted int    `json:"accepted"`
	Rejected int    `json:"rejected"`
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/healthz", nil, http.StatusOK)
	return err
}

// RankFeed calls POST /feed/rank.
func (c *Client) RankFeed(ctx context.Context, items []model.ContentItem, viewer model.User) (FeedResult, error) {
	var out FeedResult
	resp, err := c.do(ctx, http.MethodPost, "/feed/rank", itemsPayload{Items: items, User: &viewer}, http.StatusOK)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return out, fmt.Errorf("decode feed: %w", err)
	}
	out.Warning = resp.header.Get("X-Discovery-Warning")
	return out, nil
}

// Search calls POST /search.
func (c *Client) Search(ctx context.Context, query string, fields []string, sort string, items []model.ContentItem) ([]model.ContentItem, error) {
	q := url.Values{}
	q.Set("q", query)
	if len(fields) > 0 {
		q.Set("fields", strings.Join(fields, ","))
	}
	if sort != "" {
		q.Set("sort", sort)
	}
	return c.items(ctx, "/search?"+q.Encode(), items)
}

// Trending calls POST /trending.
func (c *Client) Trending(ctx context.Context, items []model.ContentItem) ([]model.ContentItem, error) {
	return c.items(ctx, "/trending", items)
}

// SubmitBatch calls POST /interactions/batch. A 429 is reported as a result
// with nothing accepted.
func (c *Client) SubmitBatch(ctx context.Context, ins []Interaction) (BatchResult, error) {
	var out BatchResult
	resp, err := c.do(ctx, http.MethodPost, "/interactions/batch",
		map[string][]Interaction{"interactions": ins}, http.StatusAccepted, http.StatusTooManyRequests)
	if err != nil {
		return out, err
	}
	if resp.status == http.StatusTooManyRequests {
		return BatchResult{Rejected: len(ins)}, nil
	}
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return out, fmt.Errorf("decode batch result: %w", err)
	}
	return out, nil
}

// TopInterests calls GET /interests?limit=n.
func (c *Client) TopInterests(ctx context.Context, n int) ([]types.InterestEntry, error) {
	var out struct {
		Interests []types.InterestEntry `json:"interests"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/interests?limit=%d", n), nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, fmt.Errorf("decode interests: %w", err)
	}
	return out.Interests, nil
}

// Stats calls GET /stats.
func (c *Client) Stats(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	resp, err := c.do(ctx, http.MethodGet, "/stats", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return out, nil
}

func (c *Client) items(ctx context.Context, path string, items []model.ContentItem) ([]model.ContentItem, error) {
	var out itemsPayload
	resp, err := c.do(ctx, http.MethodPost, path, itemsPayload{Items: items}, http.StatusOK)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out.Items, nil
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (c *Client) do(ctx context.Context, method, path string, body any, want ...int) (response, error) {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return response{}, fmt.Errorf("marshal %s body: %w", path, err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("read %s response: %w", path, err)
	}
	for _, code := range want {
		if resp.StatusCode == code {
			return response{status: resp.StatusCode, header: resp.Header, body: data}, nil
		}
	}
	return response{}, &StatusError{Path: path, Status: resp.StatusCode, Body: string(data)}
}
