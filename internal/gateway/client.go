package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Credentials supplies the bearer token attached to outgoing requests
type Credentials interface {
	Token() (string, error)
}

// Recorder receives one Call per completed API request
type Recorder interface {
	Record(call Call) error
}

// Call describes a finished API request
type Call struct {
	Method   string
	Path     string
	Status   int
	Duration time.Duration
	Err      error
}

// Options configures a Client
type Options struct {
	BaseURL     string
	LoginURL    string
	Timeout     time.Duration
	Credentials Credentials
	Recorder    Recorder
	Logger      *zap.Logger
	HTTPClient  *http.Client
}

// Client is the Resource Gateway over the car/brand API
type Client struct {
	baseURL  string
	loginURL string
	http     *http.Client
	creds    Credentials
	recorder Recorder
	logger   *zap.Logger
}

// New builds a gateway client
func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")

	loginURL := opts.LoginURL
	if loginURL == "" {
		loginURL = baseURL + "/user/login"
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:  baseURL,
		loginURL: loginURL,
		http:     httpClient,
		creds:    opts.Credentials,
		recorder: opts.Recorder,
		logger:   logger,
	}
}

// BaseURL returns the configured API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ImageURL resolves an uploaded image filename to an absolute URL. No network call.
func (c *Client) ImageURL(filename string) string {
	return c.baseURL + "/uploads/" + filename
}

// request is one outgoing call
type request struct {
	method      string
	url         string
	query       url.Values
	body        io.Reader
	contentType string
}

// jsonRequest builds a request with a JSON encoded body
func jsonRequest(method, rawURL string, payload any) (request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("failed to encode request body: %w", err)
	}
	return request{
		method:      method,
		url:         rawURL,
		body:        bytes.NewReader(data),
		contentType: "application/json",
	}, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}

// do executes req and decodes a JSON response into out (when out is non-nil).
// Any non-2xx status becomes a *StatusError.
func (c *Client) do(ctx context.Context, req request, out any) error {
	start := time.Now()

	target := req.url
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, req.body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	if c.creds != nil {
		if token, err := c.creds.Token(); err == nil && token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	status := 0
	err = func() error {
		resp, err := c.http.Do(httpReq)
		if err != nil {
			return fmt.Errorf("failed to %s %s: %w", req.method, httpReq.URL.Path, err)
		}
		defer resp.Body.Close()
		status = resp.StatusCode

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if !IsSuccessStatus(resp.StatusCode) {
			return &StatusError{
				Method: req.method,
				URL:    httpReq.URL.String(),
				Status: resp.StatusCode,
				Body:   strings.TrimSpace(string(body)),
			}
		}

		if out == nil || len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}()

	c.record(Call{
		Method:   req.method,
		Path:     httpReq.URL.Path,
		Status:   status,
		Duration: time.Since(start),
		Err:      err,
	})

	return err
}

func (c *Client) record(call Call) {
	fields := []zap.Field{
		zap.String("method", call.Method),
		zap.String("path", call.Path),
		zap.Int("status", call.Status),
		zap.Duration("duration", call.Duration),
	}
	switch {
	case call.Err == nil:
		c.logger.Debug("api call", fields...)
	case IsServerErrorStatus(call.Status):
		c.logger.Warn("api call failed", append(fields, zap.String("kind", "server"), zap.Error(call.Err))...)
	case IsClientErrorStatus(call.Status):
		c.logger.Debug("api call failed", append(fields, zap.String("kind", "client"), zap.Error(call.Err))...)
	case call.Status == 0:
		c.logger.Warn("api call failed", append(fields, zap.String("kind", "network"), zap.Error(call.Err))...)
	default:
		c.logger.Debug("api call failed", append(fields, zap.Error(call.Err))...)
	}

	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(call); err != nil {
		c.logger.Warn("failed to record api call", zap.Error(err))
	}
}
