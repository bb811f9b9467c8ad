package hyper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultIDField is the JSON field that carries created-resource ids.
const DefaultIDField = "id"

// Doer performs HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a hyper client bound to one connection string and domain.
// It is immutable after New and safe for concurrent use: every call parses
// the connection and issues its own token.
type Client struct {
	connection string
	domain     string
	httpClient Doer
	idField    string
	userAgent  string
	logger     *slog.Logger
	registerer prometheus.Registerer
	now        func() time.Time
	obs        *observer
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithDomain selects the application namespace. Only cloud connections use
// it; other connections address their namespace through the URL path.
func WithDomain(domain string) Option {
	return func(c *Client) {
		c.domain = domain
	}
}

// WithHTTPClient sets the transport. Timeouts belong here or on the context.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		c.httpClient = d
	}
}

// WithIDField sets the field name used for ids in OkIDResult ("id" or "_id").
func WithIDField(field string) Option {
	return func(c *Client) {
		c.idField = field
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger. Defaults to slog.Default() at the time of each call.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithRegisterer enables prometheus metrics on the given registerer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.registerer = reg
	}
}

// WithClock overrides the clock used for token expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a client for the given connection string.
func New(connection string, opts ...Option) (*Client, error) {
	c := &Client{
		connection: connection,
		domain:     DefaultDomain,
		httpClient: http.DefaultClient,
		idField:    DefaultIDField,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	obs, err := newObserver(c.logger, c.registerer)
	if err != nil {
		return nil, err
	}
	c.obs = obs
	return c, nil
}

// Connection returns the parsed connection descriptor.
func (c *Client) Connection() ConnectionDescriptor {
	return ParseConnectionString(c.connection)
}

// Domain returns the namespace requests address: the configured domain for
// cloud connections, the URL path for the others.
func (c *Client) Domain() string {
	d := c.Connection()
	if !d.IsCloud() {
		return strings.TrimPrefix(d.BasePath, "/")
	}
	if c.domain == "" {
		return DefaultDomain
	}
	return c.domain
}

// IDField returns the configured id field.
func (c *Client) IDField() string { return c.idField }

// Data returns the data service.
func (c *Client) Data() Data { return Data{c: c} }

// Cache returns the cache service.
func (c *Client) Cache() Cache { return Cache{c: c} }

// Search returns the search service.
func (c *Client) Search() Search { return Search{c: c} }

// Storage returns the storage service.
func (c *Client) Storage() Storage { return Storage{c: c} }

// Queue returns the queue service.
func (c *Client) Queue() Queue { return Queue{c: c} }

// Info returns the info service.
func (c *Client) Info() Info { return Info{c: c} }

// Build resolves a logical request against the client's connection.
func (c *Client) Build(req LogicalRequest) (*ConcreteRequest, error) {
	return buildRequest(c.connection, c.domain, req, c.now())
}

// Do sends a logical request and normalizes the response. Façades are thin
// wrappers around Do; it is exported for operations they do not cover.
func (c *Client) Do(ctx context.Context, op string, req LogicalRequest) (*Envelope, error) {
	start := time.Now()

	resp, err := c.send(ctx, req, "")
	if err != nil {
		c.obs.observe(ctx, req, op, start, 0, outcomeError, err)
		return nil, fmt.Errorf("%s %s: %w", req.Service, op, err)
	}
	defer resp.Body.Close()

	env, err := Normalize(resp)
	if err != nil {
		c.obs.observe(ctx, req, op, start, resp.StatusCode, outcomeFor(resp.StatusCode), err)
		return nil, fmt.Errorf("%s %s: %w", req.Service, op, err)
	}
	c.obs.observe(ctx, req, op, start, resp.StatusCode, envelopeOutcome(env), nil)
	return env, nil
}

// send builds and performs the request. A non-empty contentType replaces
// the JSON content type, for multipart uploads.
func (c *Client) send(ctx context.Context, req LogicalRequest, contentType string) (*http.Response, error) {
	cr, err := c.Build(req)
	if err != nil {
		return nil, err
	}

	body, err := encodeBody(cr.Body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, cr.Method, cr.URL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header = cr.Header
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

// encodeBody serializes a body at the transport boundary. Readers are
// streamed, raw bytes are sent as is, everything else is JSON-encoded.
func encodeBody(v any) (io.Reader, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case io.Reader:
		return b, nil
	case []byte:
		return bytes.NewReader(b), nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encoding body: %w", err)
		}
		return bytes.NewReader(data), nil
	}
}
