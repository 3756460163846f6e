// Package rest implements the notification gateway against the hosted
// dashboard backend over HTTP and server-sent events.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/gateway"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/model"
)

// defaultPageSize is used when FetchPage is called with a non-positive limit.
const defaultPageSize = 50

// Client is a thin HTTP client for the dashboard backend notification API.
// It handles Bearer token authentication, JSON marshaling, and automatic
// retry with exponential backoff on HTTP 429 and 5xx responses.
type Client struct {
	baseURL     string
	token       string
	recipientID string
	httpClient  *http.Client
	maxRetries  int
}

// NewClient creates a new backend client. The baseURL should be the root URL
// of the hosted backend. The token is the service key used for Bearer
// authentication. All fetches and mutations are scoped to recipientID.
func NewClient(baseURL, token, recipientID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		token:       token,
		recipientID: recipientID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: 3,
	}
}

// FetchPage retrieves the most recent notifications for the recipient.
func (c *Client) FetchPage(ctx context.Context, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}

	var resp listResponse
	path := fmt.Sprintf(
		"/api/notifications?recipient=%s&limit=%d&order=created_at.desc",
		url.QueryEscape(c.recipientID), limit,
	)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	notifications := make([]model.Notification, 0, len(resp.Data))
	for _, row := range resp.Data {
		notifications = append(notifications, row.toModel())
	}
	return notifications, nil
}

// FetchUnreadCount returns the server-side unread row count for the recipient.
func (c *Client) FetchUnreadCount(ctx context.Context) (int, error) {
	var resp countResponse
	path := "/api/notifications/unread_count?recipient=" + url.QueryEscape(c.recipientID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// MarkRead marks a single notification read. Marking an already-read row
// succeeds silently on the backend.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	path := "/api/notifications/" + url.PathEscape(id) + "/read"
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// MarkAllRead marks every unread notification for the recipient read.
func (c *Client) MarkAllRead(ctx context.Context) error {
	path := "/api/notifications/read_all?recipient=" + url.QueryEscape(c.recipientID)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// Delete removes a notification row.
func (c *Client) Delete(ctx context.Context, id string) error {
	path := "/api/notifications/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Create inserts a new notification and returns the stored row.
func (c *Client) Create(ctx context.Context, n model.Notification) (model.Notification, error) {
	if n.RecipientID == "" {
		n.RecipientID = c.recipientID
	}

	var resp createResponse
	err := c.do(ctx, http.MethodPost, "/api/notifications", fromModel(n), &resp)
	if err != nil {
		return model.Notification{}, err
	}
	return resp.Data.toModel(), nil
}

// do is the core HTTP method that builds the request, handles auth, retry
// with exponential backoff, JSON (de)serialization, and maps failure
// responses onto the tagged gateway error kinds.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	op := method + " " + path
	reqURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return gateway.NewError(gateway.KindTransport, op,
				fmt.Errorf("marshaling request body: %w", err))
		}
		bodyReader = bytes.NewReader(data)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		// Rebuild the body reader on retries since it was consumed.
		if attempt > 0 && body != nil {
			data, _ := json.Marshal(body)
			bodyReader = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
		if err != nil {
			return gateway.NewError(gateway.KindTransport, op,
				fmt.Errorf("creating request: %w", err))
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return gateway.NewError(gateway.KindTransport, op, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return gateway.NewError(gateway.KindTransport, op,
				fmt.Errorf("reading response body: %w", readErr))
		}

		if resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode >= 500 {
			waitDuration := retryAfterDuration(resp, attempt)
			lastErr = fmt.Errorf("status %d", resp.StatusCode)

			select {
			case <-ctx.Done():
				return gateway.NewError(gateway.KindTransport, op, ctx.Err())
			case <-time.After(waitDuration):
				continue
			}
		}

		if resp.StatusCode == http.StatusUnauthorized ||
			resp.StatusCode == http.StatusForbidden {
			return gateway.NewError(gateway.KindUnauthorized, op,
				fmt.Errorf("backend rejected credentials (%d)", resp.StatusCode))
		}

		if resp.StatusCode == http.StatusNotFound {
			return gateway.NewError(gateway.KindNotFound, op,
				fmt.Errorf("row not found"))
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			var backendErr errorResponse
			if json.Unmarshal(respBody, &backendErr) == nil &&
				backendErr.Code != "" {
				if backendErr.schemaMissing() {
					return gateway.NewError(gateway.KindSchemaMissing, op,
						fmt.Errorf("%s: %s", backendErr.Code, backendErr.Message))
				}
				return gateway.NewError(gateway.KindTransport, op,
					fmt.Errorf("backend error %s (%d): %s",
						backendErr.Code, resp.StatusCode, backendErr.Message))
			}
			return gateway.NewError(gateway.KindTransport, op,
				fmt.Errorf("unexpected status %d: %s",
					resp.StatusCode, string(respBody)))
		}

		// No content to parse (e.g. 204).
		if result == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return gateway.NewError(gateway.KindTransport, op,
				fmt.Errorf("unmarshaling response: %w", err))
		}

		return nil
	}

	return gateway.NewError(gateway.KindTransport, op,
		fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr))
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
