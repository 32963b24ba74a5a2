// Package api is the HTTP client for the generation backend.
package api

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/logger"
	"github.com/diogo/geminichat/internal/models"
)

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 4096

// HTTPDoer is the part of tls_client.HttpClient the client uses.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the generation backend.
type Client struct {
	httpClient      HTTPDoer
	baseURL         string
	timeoutSeconds  int
	maxHistoryTurns int
	mu              sync.RWMutex
	log             *logger.LogEntry
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithHTTPClient replaces the transport, mainly for tests.
func WithHTTPClient(d HTTPDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = d
	}
}

// WithTimeoutSeconds sets the request timeout of the default transport.
func WithTimeoutSeconds(seconds int) ClientOption {
	return func(c *Client) {
		c.timeoutSeconds = seconds
	}
}

// WithMaxHistoryTurns limits how many of the newest turns are sent as
// context. Zero sends the whole history.
func WithMaxHistoryTurns(n int) ClientOption {
	return func(c *Client) {
		c.maxHistoryTurns = n
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("server URL is required")
	}

	client := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		timeoutSeconds: 120,
		log:            logger.Named("api"),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(client.timeoutSeconds),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}
		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// BaseURL returns the backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetMaxHistoryTurns changes the context limit.
func (c *Client) SetMaxHistoryTurns(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxHistoryTurns = n
}

func (c *Client) historyLimit() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxHistoryTurns
}

// do sends a request and returns the body of a 2xx response. Any other status
// becomes an APIError carrying the backend's error message.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	endpoint := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.log.WithField("request_id", requestID).WithField("path", path)
	log.Debug("sending request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, apierrors.NewNetworkError(method, path, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		message := gjson.GetBytes(errorBody, "error").String()
		if message == "" {
			message = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		log.WithField("status", resp.StatusCode).Warn("request failed")
		return nil, apierrors.NewAPIError(resp.StatusCode, path, message).WithBody(string(errorBody))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.NewNetworkError(method, path, err)
	}
	log.WithField("bytes", len(data)).Debug("request completed")
	return data, nil
}

// Health checks that the backend answers.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, models.EndpointHealth, nil)
	return err
}
