// Package versionapi talks to the version action service: the remote
// collaborator that owns versions and applies activation, abort and priority
// changes to them.
package versionapi

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

const (
	versionsPath    = "/rest/v1/versions/"
	requestIDHeader = "X-Request-ID"
	userAgent       = "vadmin"
)

// Client sends admin actions to the version action service. Each call is a
// single request; nothing is retried.
type Client struct {
	settings  Settings
	http      *http.Client
	requestID func() string
}

// Option customizes client construction.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRequestIDs allows tests to control the X-Request-ID header.
func WithRequestIDs(next func() string) Option {
	return func(c *Client) {
		if next != nil {
			c.requestID = next
		}
	}
}

// NewClient prepares a client using the provided settings.
func NewClient(settings Settings, opts ...Option) *Client {
	settings.normalize()
	c := &Client{
		settings:  settings,
		http:      &http.Client{},
		requestID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// BaseURL returns the service base URL the client targets.
func (c *Client) BaseURL() string {
	return c.settings.BaseURL
}

// TakeAction sends action for the version identified by versionID.
func (c *Client) TakeAction(ctx context.Context, versionID string, action Action) (*ActionResult, error) {
	versionID = strings.TrimSpace(versionID)
	if versionID == "" {
		return nil, ErrMissingVersionID
	}
	if action == nil {
		return nil, fmt.Errorf("versionapi: action is required")
	}
	payload := map[string]any{"action": string(action.Name())}
	for k, v := range action.Params() {
		payload[k] = v
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("versionapi: encode %s: %w", action.Name(), err)
	}
	status, reqID, respBody, err := c.do(ctx, http.MethodPut, versionID, body)
	if err != nil {
		return nil, &RemoteActionError{
			Op:        "take action",
			VersionID: versionID,
			Action:    action.Name(),
			RequestID: reqID,
			Err:       err,
		}
	}
	if status < 200 || status > 299 {
		return nil, &RemoteActionError{
			Op:         "take action",
			VersionID:  versionID,
			Action:     action.Name(),
			StatusCode: status,
			Message:    errorMessage(respBody),
			RequestID:  reqID,
		}
	}
	return &ActionResult{StatusCode: status, RequestID: reqID, Body: respBody}, nil
}

// Version fetches the current state of a version.
func (c *Client) Version(ctx context.Context, versionID string) (*Version, error) {
	versionID = strings.TrimSpace(versionID)
	if versionID == "" {
		return nil, ErrMissingVersionID
	}
	status, reqID, respBody, err := c.do(ctx, http.MethodGet, versionID, nil)
	if err != nil {
		return nil, &RemoteActionError{Op: "get version", VersionID: versionID, RequestID: reqID, Err: err}
	}
	if status != http.StatusOK {
		return nil, &RemoteActionError{
			Op:         "get version",
			VersionID:  versionID,
			StatusCode: status,
			Message:    errorMessage(respBody),
			RequestID:  reqID,
		}
	}
	var v Version
	if err := json.Unmarshal(respBody, &v); err != nil {
		return nil, &RemoteActionError{
			Op:        "get version",
			VersionID: versionID,
			RequestID: reqID,
			Err:       fmt.Errorf("decode response: %w", err),
		}
	}
	if v.ID == "" {
		v.ID = versionID
	}
	return &v, nil
}

func (c *Client) do(ctx context.Context, method, versionID string, body []byte) (int, string, []byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.settings.Timeout)
	defer cancel()

	reqID := c.requestID()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.versionURL(versionID), reader)
	if err != nil {
		return 0, reqID, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(requestIDHeader, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, reqID, nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.settings.MaxBodyBytes))
	if err != nil {
		return resp.StatusCode, reqID, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, reqID, respBody, nil
}

func (c *Client) versionURL(versionID string) string {
	return c.settings.BaseURL + versionsPath + url.PathEscape(versionID)
}
