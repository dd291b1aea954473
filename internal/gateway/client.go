// Package gateway is the REST client for the authoritative item store. The
// store owns item and category records; this service reads both and writes
// exactly one field group: the per-item stock total (carried inside the full
// mutable field set, see ItemUpdate).
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type contextKey string

const tokenContextKey contextKey = "gatewayToken"

// WithToken attaches the caller's bearer credential to ctx. The credential is
// opaque: it is forwarded verbatim on every gateway call and never inspected
// or refreshed here.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func (c *Client) ListItems(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := c.getJSON(ctx, "/api/items", &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.getJSON(ctx, "/api/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) UpdateItem(ctx context.Context, itemID int64, update ItemUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return FetchError("encode item update", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, fmt.Sprintf("%s/api/items/%d", c.baseURL, itemID), bytes.NewReader(body))
	if err != nil {
		return FetchError("build item update request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return FetchError(fmt.Sprintf("update item %d", itemID), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ItemNotFoundError(itemID)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return UpdateRejectedError(itemID, readErrorMessage(resp.Body))
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return FetchError("build request", err)
	}
	req.Header.Set("Accept", "application/json")
	c.setAuth(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return FetchError("fetch "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("gateway read failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return FetchError(fmt.Sprintf("fetch %s: status %d", path, resp.StatusCode), nil)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return FetchError("decode "+path, err)
	}
	if !env.Success {
		message := env.Message
		if message == "" {
			message = env.Error
		}
		return FetchError(fmt.Sprintf("fetch %s: %s", path, message), nil)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return FetchError("decode "+path, err)
	}
	return nil
}

func (c *Client) setAuth(ctx context.Context, req *http.Request) {
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return strings.TrimSpace(string(raw))
	}
	if env.Message != "" {
		return env.Message
	}
	return env.Error
}
