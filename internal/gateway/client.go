package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zulandar/wadash/internal/config"
	"github.com/zulandar/wadash/internal/models"
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 512

// Client talks to an Evolution-compatible gateway over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for baseURL authenticating with apiKey.
func New(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromConfig creates a Client from the gateway section of the config.
func FromConfig(cfg config.GatewayConfig) *Client {
	return New(cfg.BaseURL, cfg.APIKey, cfg.Timeout)
}

var _ Gateway = (*Client)(nil)

// Instances lists every instance known to the gateway.
func (c *Client) Instances(ctx context.Context) ([]models.Instance, error) {
	var out []models.Instance
	if err := c.do(ctx, "fetch instances", http.MethodGet, "/instance/fetchInstances", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateInstance asks the gateway to create a named instance with QR pairing.
func (c *Client) CreateInstance(ctx context.Context, name string) error {
	body := map[string]any{"instanceName": name, "qrcode": true}
	return c.do(ctx, "create instance", http.MethodPost, "/instance/create", body, nil)
}

// ConnectInstance starts pairing and returns the QR payload, if any.
func (c *Client) ConnectInstance(ctx context.Context, name string) (*models.ConnectResult, error) {
	var out models.ConnectResult
	if err := c.do(ctx, "connect instance", http.MethodGet, "/instance/connect/"+url.PathEscape(name), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LogoutInstance ends the instance's WhatsApp session.
func (c *Client) LogoutInstance(ctx context.Context, name string) error {
	return c.do(ctx, "logout instance", http.MethodDelete, "/instance/logout/"+url.PathEscape(name), nil, nil)
}

// DeleteInstance removes the instance from the gateway.
func (c *Client) DeleteInstance(ctx context.Context, name string) error {
	return c.do(ctx, "delete instance", http.MethodDelete, "/instance/delete/"+url.PathEscape(name), nil, nil)
}

// Chats lists the chats reachable from an instance.
func (c *Client) Chats(ctx context.Context, instance string) ([]models.Chat, error) {
	var out []models.Chat
	if err := c.do(ctx, "fetch chats", http.MethodPost, "/chat/findChats/"+url.PathEscape(instance), map[string]any{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Schedules lists every scheduled message.
func (c *Client) Schedules(ctx context.Context) ([]models.ScheduledMessage, error) {
	var out []models.ScheduledMessage
	if err := c.do(ctx, "fetch schedules", http.MethodGet, "/schedule", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSchedule submits a new scheduled message.
func (c *Client) CreateSchedule(ctx context.Context, req models.ScheduleRequest) error {
	return c.do(ctx, "create schedule", http.MethodPost, "/schedule", req, nil)
}

// DeleteSchedule removes a scheduled message by id.
func (c *Client) DeleteSchedule(ctx context.Context, id string) error {
	return c.do(ctx, "delete schedule", http.MethodDelete, "/schedule/"+url.PathEscape(id), nil, nil)
}

// do performs one request. A nil out discards the response body.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(snippet))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &Error{Op: op, Status: resp.StatusCode, Err: errors.New(msg)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &Error{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
