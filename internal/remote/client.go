// Package remote is the thin request wrapper around the bookstore REST
// backend. It owns no state apart from the session cookies.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
)

const maxResponseBytes = 8 << 20

var _ port.Backend = (*Client)(nil)

type Client struct {
	httpClient     *http.Client
	baseURL        string
	timeout        time.Duration
	maxRetries     int
	initialBackoff time.Duration
	logger         *zap.Logger
	cookies        []*http.Cookie
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every single attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetries sets how often a failed GET is repeated and the first pause.
func WithRetries(maxRetries int, initialBackoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.initialBackoff = initialBackoff
	}
}

// WithCookies seeds the jar, e.g. with a session obtained elsewhere.
func WithCookies(cookies ...*http.Cookie) Option {
	return func(c *Client) { c.cookies = append(c.cookies, cookies...) }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is empty")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookiejar.New: %w", err)
	}

	c := &Client{
		httpClient:     &http.Client{Jar: jar},
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		timeout:        15 * time.Second,
		maxRetries:     2,
		initialBackoff: 200 * time.Millisecond,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		c.httpClient.Jar = jar
	}
	if len(c.cookies) > 0 {
		u, err := url.Parse(c.baseURL)
		if err != nil {
			return nil, fmt.Errorf("url.Parse: %w", err)
		}
		c.httpClient.Jar.SetCookies(u, c.cookies)
	}

	return c, nil
}

// Envelope is the uniform {success, message, ...payload} answer.
type Envelope struct {
	Success bool
	Message string
	Raw     json.RawMessage
}

// Decode unmarshals the whole payload into v.
func (e Envelope) Decode(v any) error {
	if len(e.Raw) == 0 {
		return fmt.Errorf("empty payload")
	}
	if err := json.Unmarshal(e.Raw, v); err != nil {
		return fmt.Errorf("json.Unmarshal: %w", err)
	}
	return nil
}

// Request issues one call. GETs are retried on transient failures. A 2xx
// answer with success=false is returned without error, callers decide.
func (c *Client) Request(ctx context.Context, method, path string, body any) (Envelope, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return Envelope{}, fmt.Errorf("json.Marshal: %w", err)
		}
	}

	return c.send(ctx, method, path, func() (io.Reader, string) {
		if payload == nil {
			return nil, ""
		}
		return bytes.NewReader(payload), "application/json"
	})
}

func (c *Client) send(ctx context.Context, method, path string, body func() (io.Reader, string)) (Envelope, error) {
	attempt := func() (Envelope, error) {
		env, err := c.once(ctx, method, path, body)
		if err != nil {
			var re *Error
			if errors.As(err, &re) && !re.Retryable() {
				return Envelope{}, backoff.Permanent(err)
			}
			c.logger.Debug("request attempt failed",
				zap.String("method", method),
				zap.String("path", path),
				zap.Error(err))
		}
		return env, err
	}

	if method != http.MethodGet || c.maxRetries <= 0 {
		return c.once(ctx, method, path, body)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialBackoff

	env, err := backoff.RetryWithData(attempt,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxRetries)), ctx))
	if err != nil {
		var re *Error
		if !errors.As(err, &re) {
			err = &Error{Method: method, Path: path, Err: err}
		}
		return Envelope{}, err
	}
	return env, nil
}

func (c *Client) once(ctx context.Context, method, path string, body func() (io.Reader, string)) (Envelope, error) {
	fail := func(status int, msg string, err error) (Envelope, error) {
		return Envelope{}, &Error{Method: method, Path: path, Status: status, Message: msg, Err: err}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reader, contentType := body()
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return Envelope{}, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, "", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fail(resp.StatusCode, "", fmt.Errorf("io.ReadAll: %w", err))
	}

	var head struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeErr := json.Unmarshal(raw, &head)

	if resp.StatusCode == http.StatusUnauthorized {
		return fail(resp.StatusCode, head.Message, domain.ErrSessionExpired)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := head.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fail(resp.StatusCode, msg, nil)
	}
	if decodeErr != nil {
		return fail(resp.StatusCode, "malformed envelope", decodeErr)
	}

	return Envelope{Success: head.Success, Message: head.Message, Raw: raw}, nil
}

// call is Request plus the {success:false} check and payload decoding.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	env, err := c.Request(ctx, method, path, body)
	if err != nil {
		return err
	}
	return c.finish(method, path, env, out)
}

func (c *Client) finish(method, path string, env Envelope, out any) error {
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request was not successful"
		}
		return &Error{Method: method, Path: path, Status: http.StatusOK, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := env.Decode(out); err != nil {
		return &Error{Method: method, Path: path, Status: http.StatusOK, Message: "malformed payload", Err: err}
	}
	return nil
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + path
}
