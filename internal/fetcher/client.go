package fetcher

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/JdotSiv/homebrew/internal/domain"
	"github.com/JdotSiv/homebrew/internal/utils"
)

// Client downloads files over HTTP(S) with support for resumable range
// requests and POST bodies.
type Client struct {
	httpClient *http.Client
	userAgent  string
	retrier    *Retrier
	quiet      bool
}

// ClientOptions contains options for creating a Client
type ClientOptions struct {
	Timeout    time.Duration
	MaxRetries int
	UserAgent  string
	Quiet      bool

	// InsecureTLS disables certificate validation. Deprecated; kept for
	// sources with broken certificate chains.
	InsecureTLS bool

	// LegacyTLS forces an outdated protocol version for servers that
	// cannot negotiate a modern one.
	LegacyTLS bool
}

// DefaultClientOptions returns default client options
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout:    5 * time.Minute,
		MaxRetries: 2,
		UserAgent:  "brewfetch/1.0",
	}
}

// NewClient creates a new download client
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.InsecureTLS || opts.LegacyTLS {
		tlsCfg := &tls.Config{}
		if opts.InsecureTLS {
			tlsCfg.InsecureSkipVerify = true
		}
		if opts.LegacyTLS {
			tlsCfg.MinVersion = tls.VersionTLS10
			tlsCfg.MaxVersion = tls.VersionTLS10
		}
		transport.TLSClientConfig = tlsCfg
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		userAgent: opts.UserAgent,
		retrier: NewRetrier(RetrierOptions{
			MaxRetries:      opts.MaxRetries,
			InitialInterval: 1 * time.Second,
			MaxInterval:     30 * time.Second,
			Multiplier:      2.0,
		}),
		quiet: opts.Quiet,
	}
}

// HTTPError reports a non-success HTTP response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// Request describes a single download.
type Request struct {
	URL string

	// Destination is the partial-download path the body is appended to.
	// Its current size determines the resume offset.
	Destination string

	// Method defaults to GET. POST requests send Body as an
	// x-www-form-urlencoded payload.
	Method string
	Body   string
}

// Download fetches req.URL into req.Destination. When the destination
// already holds bytes from an earlier attempt, a byte-range continuation
// is requested from that offset; a server that answers a ranged request
// with a full or out-of-range response yields ErrResumeNotSupported.
func (c *Client) Download(ctx context.Context, req Request) error {
	offset := int64(0)
	if info, err := os.Stat(req.Destination); err == nil {
		offset = info.Size()
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return err
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if req.Body != "" {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if offset > 0 {
		httpReq.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case offset > 0 && resp.StatusCode == http.StatusOK:
		// Server ignored the range request and restarted from byte zero.
		return domain.ErrResumeNotSupported
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		return domain.ErrResumeNotSupported
	case resp.StatusCode >= 400:
		return &HTTPError{URL: req.URL, StatusCode: resp.StatusCode}
	}

	out, err := os.OpenFile(req.Destination, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	var dst io.Writer = out
	if !c.quiet {
		total := int64(-1)
		if resp.ContentLength >= 0 {
			total = offset + resp.ContentLength
		}
		bar := utils.NewDownloadBar(total, utils.DescDownloading)
		_ = bar.Set64(offset)
		dst = io.MultiWriter(out, bar)
		defer bar.Finish()
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("downloading %s: %w", req.URL, err)
	}
	return out.Close()
}

// GetJSON fetches a URL and decodes its JSON body into v, retrying
// transient failures with bounded exponential backoff.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	return c.retrier.Retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return &HTTPError{URL: url, StatusCode: resp.StatusCode}
		}
		return json.NewDecoder(resp.Body).Decode(v)
	})
}
