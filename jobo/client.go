package jobo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// Version is the library version reported in the default user agent
	Version = "2.0.0"
	// DefaultBaseURL is the production API endpoint
	DefaultBaseURL = "https://api.jobo.ai"
	// DefaultTimeout bounds each HTTP attempt
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is sent with every request unless overridden
	DefaultUserAgent = "jobo-go/" + Version
)

// Client represents a Jobo Enterprise API client. It is safe for concurrent
// use; the only state it holds is its fixed configuration.
type Client struct {
	baseURL        string
	apiKey         string
	userAgent      string
	httpClient     *http.Client
	ownsHTTPClient bool
	logger         zerolog.Logger

	// Feed is the bulk job feed with cursor-based pagination
	Feed *FeedClient
	// Search is full-text job search with page-based pagination
	Search *SearchClient
	// Locations resolves free-form location strings
	Locations *LocationsClient
	// AutoApply drives automated application form filling
	AutoApply *AutoApplyClient
}

// NewClient creates a new Jobo client
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	baseURL := strings.TrimRight(o.baseURL, "/")
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("jobo: invalid base URL %q: %w", o.baseURL, err)
	}

	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		userAgent:  o.userAgent,
		httpClient: o.httpClient,
		logger:     o.logger,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: o.timeout}
		c.ownsHTTPClient = true
	}

	c.Feed = &FeedClient{client: c}
	c.Search = &SearchClient{client: c}
	c.Locations = &LocationsClient{client: c}
	c.AutoApply = &AutoApplyClient{client: c}

	return c, nil
}

// BaseURL returns the API base URL requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases the HTTP transport if the client created it. A transport
// supplied through WithHTTPClient is left untouched.
func (c *Client) Close() error {
	if c.ownsHTTPClient {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}

// response is a fully read HTTP response
type response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// doRequest performs an HTTP request with the fixed client headers and reads
// the whole body. Transport failures are returned as is; status codes are not
// interpreted here.
func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, in any) (*response, error) {
	requestURL := c.baseURL + path
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	body, err := encodeBody(in)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("jobo: create request: %w", err)
	}

	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jobo: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("jobo: read response body: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Jobo API request")

	return &response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// call performs a request, classifies failures and decodes the body into out
func (c *Client) call(ctx context.Context, method, path string, params url.Values, in, out any) error {
	resp, err := c.doRequest(ctx, method, path, params, in)
	if err != nil {
		return err
	}
	if err := CheckResponse(resp.StatusCode, resp.Header, resp.Body); err != nil {
		return err
	}
	return decodeBody(resp.Body, out)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.call(ctx, http.MethodGet, path, params, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.call(ctx, http.MethodPost, path, nil, in, out)
}

// delete reports true on 2xx and false on 404; other statuses are errors
func (c *Client) delete(ctx context.Context, path string) (bool, error) {
	resp, err := c.doRequest(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return false, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if err := CheckResponse(resp.StatusCode, resp.Header, resp.Body); err != nil {
		return false, err
	}
	return true, nil
}
