// Package source provides the shared HTTP plumbing for the upstream
// systems: a cookie-carrying client, the auth-failure classifier, and the
// Source interface the aggregator fans out over.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Response is the classified-before-parsed view of an upstream reply.
type Response struct {
	StatusCode int
	FinalURL   *url.URL
	Redirected bool
	Header     http.Header
	Body       []byte
}

// Client is the credential-bearing HTTP primitive shared by all sources.
// The cookie jar stands in for the ambient browser session: cookies set by
// one request (or pre-set via SetCookie) ride along on later requests to
// the same origin.
type Client struct {
	http *http.Client
}

// NewClient creates a client with a fresh cookie jar and the given timeout.
func NewClient(timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		http: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}, nil
}

// SetCookie pre-sets a cookie scoped to the target URL's origin before the
// data request. Some upstreams read paging preferences from cookies, so
// forcing a large page size turns a paginated listing into one fetch.
func (c *Client) SetCookie(rawURL, name, value string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse cookie target %q: %w", rawURL, err)
	}
	c.http.Jar.SetCookies(u, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
	return nil
}

// Get issues a GET request and returns the raw response. Non-2xx statuses
// are not errors here; Classify decides what they mean.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %q: %w", rawURL, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.do(req, rawURL)
}

// PostForm issues a form-encoded POST request and returns the raw response.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request %q: %w", rawURL, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, rawURL)
}

func (c *Client) do(req *http.Request, requestedURL string) (*Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %q: %w", requestedURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %q: %w", requestedURL, err)
	}

	final := resp.Request.URL
	return &Response{
		StatusCode: resp.StatusCode,
		FinalURL:   final,
		Redirected: final.String() != requestedURL,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
