package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

type ctxKey int

const silentKey ctxKey = iota

// WithoutNotify returns a context whose transport failures are logged but do
// not produce a user-visible notification. Used for background polling ticks
// and for primary-path calls whose failure is recovered internally.
//
// Credential-expiry handling is not affected: a 401 still clears the token
// and may emit the single expiry notification, because that notification
// belongs to the redirect sequence, not to the failed call.
func WithoutNotify(ctx context.Context) context.Context {
	return context.WithValue(ctx, silentKey, true)
}

func silenced(ctx context.Context) bool {
	v, _ := ctx.Value(silentKey).(bool)
	return v
}

const networkFailureMsg = "网络连接失败，请检查网络设置"

// doRequest performs a single HTTP request and returns the raw success body.
// Failures are returned as classified *APIError values.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.logger.Debug("api request", "method", method, "path", path, "request_id", reqID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr := &APIError{Kind: KindNetwork, Message: networkFailureMsg}
		c.logger.Warn("api network failure",
			"method", method,
			"path", path,
			"request_id", reqID,
			"err", err,
		)
		c.handleFailure(ctx, apiErr)
		return nil, apiErr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr := &APIError{Kind: KindNetwork, Message: networkFailureMsg}
		c.handleFailure(ctx, apiErr)
		return nil, apiErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := classify(resp.StatusCode, respBody)
		c.logger.Warn("api error response",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"kind", apiErr.Kind.String(),
			"request_id", reqID,
		)
		c.handleFailure(ctx, apiErr)
		return nil, apiErr
	}

	return respBody, nil
}

// handleFailure applies transport-level side effects of a failed call:
// credential-expiry recovery and the per-call user notification.
func (c *Client) handleFailure(ctx context.Context, apiErr *APIError) {
	if apiErr.Kind == KindUnauthorized {
		if c.tokens != nil {
			if err := c.tokens.Clear(); err != nil {
				c.logger.Warn("failed to clear credential", "err", err)
			}
		}
		// Exactly one notification and one redirect per expiry, no matter
		// how many in-flight requests observe the 401.
		if c.guard.trigger() {
			c.notifier.Notify(apiErr.Message)
		}
		return
	}

	if !silenced(ctx) {
		c.notifier.Notify(apiErr.Message)
	}
}

// get performs a GET request and decodes the JSON response into result.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	return decode(body, result)
}

// post performs a JSON POST request.
func (c *Client) post(ctx context.Context, path string, payload, result any) error {
	body, err := encode(payload)
	if err != nil {
		return err
	}
	respBody, err := c.doRequest(ctx, http.MethodPost, path, nil, body, "application/json")
	if err != nil {
		return err
	}
	return decode(respBody, result)
}

// put performs a JSON PUT request.
func (c *Client) put(ctx context.Context, path string, payload, result any) error {
	body, err := encode(payload)
	if err != nil {
		return err
	}
	respBody, err := c.doRequest(ctx, http.MethodPut, path, nil, body, "application/json")
	if err != nil {
		return err
	}
	return decode(respBody, result)
}

// del performs a DELETE request. The backend returns an empty body.
func (c *Client) del(ctx context.Context, path string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, path, nil, nil, "")
	return err
}

// postForm performs a form-encoded POST request (used by login).
func (c *Client) postForm(ctx context.Context, path string, form url.Values, result any) error {
	body := strings.NewReader(form.Encode())
	respBody, err := c.doRequest(ctx, http.MethodPost, path, nil, body, "application/x-www-form-urlencoded")
	if err != nil {
		return err
	}
	return decode(respBody, result)
}

func encode(payload any) (io.Reader, error) {
	if payload == nil {
		return nil, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return bytes.NewReader(data), nil
}

func decode(body []byte, result any) error {
	if result == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
