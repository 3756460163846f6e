package rest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/gateway"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/model"
)

// sseSubscription is a live server-sent-events stream. Close cancels the
// stream context and waits for the reader goroutine to exit, which
// guarantees the callback is never invoked after Close returns.
type sseSubscription struct {
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// Close terminates the stream. Safe to call more than once.
func (s *sseSubscription) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done
	})
	return nil
}

// SubscribeInserts opens a live stream of new notification rows addressed
// to recipientID.
func (c *Client) SubscribeInserts(
	ctx context.Context,
	recipientID string,
	fn gateway.InsertFunc,
) (gateway.Subscription, error) {
	return c.subscribe(ctx, recipientID, "insert", func(n model.Notification) {
		fn(n)
	})
}

// SubscribeUpdates opens a live stream of row updates addressed to
// recipientID.
func (c *Client) SubscribeUpdates(
	ctx context.Context,
	recipientID string,
	fn gateway.UpdateFunc,
) (gateway.Subscription, error) {
	return c.subscribe(ctx, recipientID, "update", func(n model.Notification) {
		fn(n)
	})
}

// subscribe opens the SSE endpoint for a single event kind and starts a
// reader goroutine that decodes rows and hands them to fn.
func (c *Client) subscribe(
	ctx context.Context,
	recipientID string,
	event string,
	fn func(model.Notification),
) (gateway.Subscription, error) {
	op := "stream " + event

	streamCtx, cancel := context.WithCancel(ctx)

	streamURL := fmt.Sprintf(
		"%s/api/notifications/stream?recipient=%s&event=%s",
		c.baseURL, url.QueryEscape(recipientID), url.QueryEscape(event),
	)

	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, streamURL, nil)
	if err != nil {
		cancel()
		return nil, gateway.NewError(gateway.KindTransport, op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// The stream outlives the client's request timeout, so it uses the
	// transport directly rather than the timeout-bound client.
	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		cancel()
		return nil, gateway.NewError(gateway.KindTransport, op, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		cancel()
		return nil, gateway.NewError(gateway.KindUnauthorized, op,
			fmt.Errorf("backend rejected credentials"))
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, gateway.NewError(gateway.KindTransport, op,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	sub := &sseSubscription{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(sub.done)
		defer resp.Body.Close()
		readEvents(streamCtx, resp.Body, fn)
	}()

	return sub, nil
}

// readEvents consumes text/event-stream frames until the stream ends or the
// context is canceled. Each complete data payload is decoded as a wire row,
// normalized, and handed to fn.
func readEvents(
	ctx context.Context,
	body io.Reader,
	fn func(model.Notification),
) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			// Blank line terminates a frame.
			payload := data.String()
			data.Reset()
			if payload == "" {
				continue
			}

			var row wireNotification
			if err := json.Unmarshal([]byte(payload), &row); err != nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			fn(row.toModel())
			continue
		}

		if rest, ok := strings.CutPrefix(line, "data:"); ok {
			data.WriteString(strings.TrimPrefix(rest, " "))
		}
		// event: and id: lines are ignored; the endpoint streams a
		// single event kind per subscription.
	}
}
