// File: internal/protocol/client.go
// Description: RPC-style client for the remote Playwright automation
// server. One HTTP request per browser action; failures are normalized
// into outcomes carrying an error marker, never raised, because remote
// automation failures are expected and routine.
package protocol

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/webpilot-ai/webpilot/api/schemas"
	"github.com/webpilot-ai/webpilot/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Default timeouts forwarded to the automation server, in milliseconds.
const (
	DefaultElementTimeoutMs    = 5000
	DefaultNavigationTimeoutMs = 15000
)

// Client issues action requests to the automation server over HTTP.
// The connection pool is scoped to one orchestrator instance; Close
// releases it. There is no retry logic at this layer.
type Client struct {
	serverURL  string
	httpClient *http.Client
	logger     *zap.Logger
	// counter backs the monotonic per-session message ids.
	counter atomic.Uint64
}

// NewClient builds a protocol client for the configured server.
func NewClient(cfg config.PlaywrightConfig, logger *zap.Logger) *Client {
	return &Client{
		serverURL: strings.TrimRight(cfg.ServerURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		logger: logger.Named("protocol"),
	}
}

// nextMessageID allocates the next monotonic message id.
func (c *Client) nextMessageID() string {
	return fmt.Sprintf("msg_%d", c.counter.Add(1))
}

// Send posts one action request to the server and returns the deserialized
// response body. Network failure and non-2xx statuses are reported as
// outcomes with an error marker so callers handle all failures uniformly.
func (c *Client) Send(ctx context.Context, method string, params map[string]any) schemas.ActionOutcome {
	if params == nil {
		params = map[string]any{}
	}
	msg := schemas.ActionRequest{
		ID:        c.nextMessageID(),
		Method:    method,
		Params:    params,
		Timestamp: time.Now(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return schemas.FailedOutcome(fmt.Sprintf("failed to encode request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return schemas.FailedOutcome(fmt.Sprintf("failed to build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Error sending message to automation server", zap.String("method", method), zap.Error(err))
		return schemas.FailedOutcome(err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return schemas.FailedOutcome(fmt.Sprintf("failed to read response body: %v", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("Automation server error",
			zap.String("method", method),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody))
		return schemas.FailedOutcome(fmt.Sprintf("server returned %d: %s", resp.StatusCode, respBody))
	}

	var outcome schemas.ActionOutcome
	if err := json.Unmarshal(respBody, &outcome); err != nil {
		return schemas.FailedOutcome(fmt.Sprintf("failed to decode response body: %v", err))
	}
	if outcome == nil {
		outcome = schemas.ActionOutcome{}
	}
	return outcome
}

// -- Action wrappers: pure parameter shaping over Send. --

// Navigate loads a page.
func (c *Client) Navigate(ctx context.Context, url string) schemas.ActionOutcome {
	return c.Send(ctx, "navigate", map[string]any{"url": url})
}

// Click clicks an element by CSS selector. A non-positive timeout omits
// the parameter and defers to the server default.
func (c *Client) Click(ctx context.Context, selector string, timeoutMs int) schemas.ActionOutcome {
	params := map[string]any{"selector": selector}
	if timeoutMs > 0 {
		params["timeout"] = timeoutMs
	}
	return c.Send(ctx, "click", params)
}

// TypeText types text into an input field.
func (c *Client) TypeText(ctx context.Context, selector, text string) schemas.ActionOutcome {
	return c.Send(ctx, "type", map[string]any{"selector": selector, "text": text})
}

// GetText reads the text content of an element.
func (c *Client) GetText(ctx context.Context, selector string) schemas.ActionOutcome {
	return c.Send(ctx, "getText", map[string]any{"selector": selector})
}

// WaitForElement waits for an element to appear.
func (c *Client) WaitForElement(ctx context.Context, selector string, timeoutMs int) schemas.ActionOutcome {
	if timeoutMs <= 0 {
		timeoutMs = DefaultElementTimeoutMs
	}
	return c.Send(ctx, "waitForElement", map[string]any{"selector": selector, "timeout": timeoutMs})
}

// WaitForNavigation waits for an in-flight navigation to complete.
func (c *Client) WaitForNavigation(ctx context.Context, timeoutMs int) schemas.ActionOutcome {
	if timeoutMs <= 0 {
		timeoutMs = DefaultNavigationTimeoutMs
	}
	return c.Send(ctx, "waitForNavigation", map[string]any{"timeout": timeoutMs})
}

// WaitForSearchResults waits specifically for search results to load.
func (c *Client) WaitForSearchResults(ctx context.Context, timeoutMs int) schemas.ActionOutcome {
	if timeoutMs <= 0 {
		timeoutMs = DefaultNavigationTimeoutMs
	}
	return c.Send(ctx, "waitForSearchResults", map[string]any{"timeout": timeoutMs})
}

// SmartWait performs context-aware waiting based on the current page.
func (c *Client) SmartWait(ctx context.Context, timeoutMs int) schemas.ActionOutcome {
	if timeoutMs <= 0 {
		timeoutMs = DefaultNavigationTimeoutMs
	}
	return c.Send(ctx, "smartWait", map[string]any{"timeout": timeoutMs})
}

// PressKey presses a keyboard key.
func (c *Client) PressKey(ctx context.Context, key string) schemas.ActionOutcome {
	return c.Send(ctx, "pressKey", map[string]any{"key": key})
}

// TakeScreenshot captures the current page. An empty path gets a
// timestamped file name.
func (c *Client) TakeScreenshot(ctx context.Context, path string) schemas.ActionOutcome {
	if path == "" {
		path = fmt.Sprintf("automation_result_%s.png", time.Now().Format("20060102_150405"))
	}
	return c.Send(ctx, "screenshot", map[string]any{"path": path})
}

// DebugPage dumps the elements visible on the current page.
func (c *Client) DebugPage(ctx context.Context) schemas.ActionOutcome {
	return c.Send(ctx, "debug", map[string]any{})
}

// Close releases the client's idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
