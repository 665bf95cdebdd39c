package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/puredelivery/client/pkg/logger"
)

// TokenSource yields the current bearer credential, or "" when the client
// is unauthenticated. The session store implements it on top of durable
// storage so a fresh process restores the credential before first use.
type TokenSource interface {
	Token() string
}

// Response is the raw backend reply handed back to the calling service for
// its own success/error interpretation.
type Response struct {
	StatusCode int
	Body       []byte
}

// Options customizes a single request. Zero values fall back to JSON
// content type and no body.
type Options struct {
	Body        []byte
	ContentType string
	Headers     map[string]string
}

// Config holds the gateway settings.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// Client is the single chokepoint for all backend HTTP calls. It attaches
// the bearer credential, inspects every received response for a 401 status
// and notifies the registered unauthorized handler. Transport failures are
// returned to the caller untouched.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	timeout time.Duration
	tokens  TokenSource
	logger  *zap.Logger

	mu             sync.RWMutex
	onUnauthorized func()
}

// New builds a gateway client.
func New(cfg Config, tokens TokenSource, httpClient *fasthttp.Client, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &fasthttp.Client{}
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		tokens:  tokens,
		logger:  log,
	}
}

// SetUnauthorizedHandler registers the process-wide 401 handler. Single
// slot, last registration wins.
func (c *Client) SetUnauthorizedHandler(handler func()) {
	c.mu.Lock()
	c.onUnauthorized = handler
	c.mu.Unlock()
}

// ClearUnauthorizedHandler removes the registered handler.
func (c *Client) ClearUnauthorizedHandler() {
	c.SetUnauthorizedHandler(nil)
}

// Request performs one HTTP call against the backend. The path is appended
// to the configured base URL. The raw response is returned for the caller's
// own interpretation; a 401 status additionally fires the unauthorized
// handler exactly once per qualifying response, independent of the caller's
// error handling.
func (c *Client) Request(ctx context.Context, method, path string, opts Options) (*Response, error) {
	callID := uuid.NewString()
	ctx = logger.ContextWithCallID(ctx, callID)
	log := logger.WithCallID(ctx, c.logger)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)

	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.SetContentType(contentType)
	req.Header.Set("X-Request-ID", callID)

	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}
	if len(opts.Body) > 0 {
		req.SetBody(opts.Body)
	}

	if err := c.http.DoTimeout(req, resp, c.deadlineTimeout(ctx)); err != nil {
		log.Debug("request transport failure",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, err
	}

	status := resp.StatusCode()
	log.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status))

	if status == http.StatusUnauthorized {
		c.notifyUnauthorized()
	}

	return &Response{
		StatusCode: status,
		Body:       append([]byte(nil), resp.Body()...),
	}, nil
}

// RequestJSON marshals payload and performs the call with JSON content type.
func (c *Client) RequestJSON(ctx context.Context, method, path string, payload interface{}) (*Response, error) {
	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = encoded
	}
	return c.Request(ctx, method, path, Options{Body: body})
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *Client) notifyUnauthorized() {
	c.mu.RLock()
	handler := c.onUnauthorized
	c.mu.RUnlock()
	if handler != nil {
		handler()
	}
}

func (c *Client) deadlineTimeout(ctx context.Context) time.Duration {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}
