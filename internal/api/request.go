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
)

// APIError represents an error response from the gateway.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
}

// IsUnauthorized reports whether the error is a 401.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// errorDetail is the optional error body shape: {"detail": "..."}.
type errorDetail struct {
	Detail string `json:"detail"`
}

// newAPIError builds an APIError from a response body, falling back to the
// generic status text when the body carries no usable detail message.
func newAPIError(statusCode int, body []byte) *APIError {
	detail := http.StatusText(statusCode)

	var ed errorDetail
	if err := json.Unmarshal(body, &ed); err == nil && ed.Detail != "" {
		detail = ed.Detail
	}

	return &APIError{StatusCode: statusCode, Detail: detail}
}

// do performs a request and returns the raw response body.
func (c *Client) do(ctx context.Context, method, path string, contentType string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := newAPIError(resp.StatusCode, body)
		c.logger.Debug("request failed",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"detail", apiErr.Detail,
		)
		return nil, apiErr
	}

	return body, nil
}

// doJSON performs a request with an optional JSON payload and decodes the
// JSON response into result (when result is non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, payload, result any) error {
	var body io.Reader
	contentType := ""

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	respBody, err := c.do(ctx, method, path, contentType, body)
	if err != nil {
		return err
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// doForm performs a POST with form-encoded values and decodes the JSON
// response into result. Used only by the login endpoint.
func (c *Client) doForm(ctx context.Context, path string, form url.Values, result any) error {
	body, err := c.do(ctx, http.MethodPost, path,
		"application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
