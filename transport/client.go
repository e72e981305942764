package transport

import (
	"net/http"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/goliatone/go-hybridauth/core"
)

// Client is the default outbound transport lent to adapters. It retries
// connection errors and 5xx responses with exponential backoff.
type Client struct {
	retrying  *retryablehttp.Client
	userAgent string
}

func New(opts Options, logger core.Logger) *Client {
	retrying := retryablehttp.NewClient()
	retrying.RetryMax = opts.RetryMax
	retrying.RetryWaitMin = opts.RetryWaitMin
	retrying.RetryWaitMax = opts.RetryWaitMax
	retrying.HTTPClient.Timeout = opts.Timeout
	retrying.Logger = newLeveledLogger(logger)
	// Return the last response instead of a "giving up" error so adapters
	// can read provider error bodies.
	retrying.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return &Client{retrying: retrying, userAgent: opts.UserAgent}
}

// NewFromConfig builds a Client from the raw transport_options table.
func NewFromConfig(raw map[string]any, logger core.Logger) (*Client, error) {
	opts, err := ParseOptions(raw)
	if err != nil {
		return nil, err
	}
	return New(opts, logger), nil
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	retryReq, err := retryablehttp.FromRequest(req)
	if err != nil {
		return nil, err
	}
	return c.retrying.Do(retryReq)
}

// StandardClient exposes the retrying client as an *http.Client for libraries
// that only accept one.
func (c *Client) StandardClient() *http.Client {
	standard := c.retrying.StandardClient()
	if c.userAgent != "" {
		standard.Transport = &userAgentTransport{next: standard.Transport, userAgent: c.userAgent}
	}
	return standard
}

type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.next.RoundTrip(req)
}

// leveledLogger maps retryablehttp's logger onto glog. Request lines go to
// debug so only retries and failures surface at the default level.
type leveledLogger struct {
	logger glog.Logger
}

func newLeveledLogger(logger core.Logger) retryablehttp.LeveledLogger {
	if logger == nil {
		logger = glog.Nop()
	}
	return &leveledLogger{logger: logger}
}

func (l *leveledLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error(msg, keysAndValues...)
}

func (l *leveledLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...any) {
	l.logger.Warn(msg, keysAndValues...)
}

var _ core.HTTPClient = (*Client)(nil)
