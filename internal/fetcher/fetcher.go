package fetcher

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/net/proxy"
)

const (
	// DefaultConnectTimeout bounds TCP connection establishment.
	// Kept short so one dead host cannot eat a run's time budget: a host
	// that does not accept within 10 seconds is down for our purposes.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultReadTimeout bounds the whole request including the body read.
	// 30 seconds is generous for a single page; anything slower is treated
	// as a failed check rather than waited out.
	DefaultReadTimeout = 30 * time.Second

	// DefaultUserAgent identifies webwatch to origin servers. A fixed,
	// honest identity lets operators allow or block the checker explicitly.
	DefaultUserAgent = "webwatch/1.0 (+https://github.com/nao1215/webwatch)"

	// DefaultMaxBodySize caps how much of a response body is read.
	// Pages worth watching are far below this; the cap protects against
	// accidentally watching a huge binary.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5 MB
)

// Fetcher performs single-attempt HTTP GETs with a fixed identity and
// timeout budget. Safe for concurrent use.
type Fetcher struct {
	// client is the HTTP client used for all requests.
	client *http.Client

	// userAgent is sent as the User-Agent header.
	userAgent string

	// maxBodySize caps the number of body bytes read per response.
	maxBodySize int64

	// connectTimeout and readTimeout are recorded for client construction.
	connectTimeout time.Duration
	readTimeout    time.Duration

	// socksProxy is the optional SOCKS5 proxy address ("host:port").
	socksProxy string
}

// Result is a successful fetch.
type Result struct {
	// Body is the response body, capped at the configured size and
	// transcoded to UTF-8.
	Body []byte

	// StatusCode is the HTTP status code (always 2xx).
	StatusCode int

	// ContentType is the response's Content-Type header value.
	ContentType string

	// FetchedAt is when the response was received (UTC).
	FetchedAt time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithUserAgent overrides the User-Agent header value.
func WithUserAgent(userAgent string) Option {
	return func(f *Fetcher) {
		f.userAgent = userAgent
	}
}

// WithMaxBodySize overrides the response body size cap.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// WithTimeouts overrides the connect and overall read timeouts.
func WithTimeouts(connect, read time.Duration) Option {
	return func(f *Fetcher) {
		f.connectTimeout = connect
		f.readTimeout = read
	}
}

// WithSOCKSProxy routes all requests through a SOCKS5 proxy, typically a
// running Tor daemon's port for watching .onion pages.
func WithSOCKSProxy(address string) Option {
	return func(f *Fetcher) {
		f.socksProxy = address
	}
}

// WithClient replaces the HTTP client entirely. Used by tests; it overrides
// the timeout and proxy options.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// New creates a Fetcher. The timeout budget and identity are fixed here;
// Fetch never changes them per request.
func New(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		userAgent:      DefaultUserAgent,
		maxBodySize:    DefaultMaxBodySize,
		connectTimeout: DefaultConnectTimeout,
		readTimeout:    DefaultReadTimeout,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		transport, err := f.newTransport()
		if err != nil {
			return nil, err
		}
		f.client = &http.Client{
			Transport: transport,
			Timeout:   f.readTimeout,
		}
	}

	return f, nil
}

// newTransport builds the transport with the connect timeout and, when
// configured, the SOCKS5 dialer.
func (f *Fetcher) newTransport() (*http.Transport, error) {
	dialer := &net.Dialer{Timeout: f.connectTimeout}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}

	if f.socksProxy != "" {
		if _, _, err := net.SplitHostPort(f.socksProxy); err != nil {
			return nil, fmt.Errorf("invalid SOCKS5 proxy address %q: %w", f.socksProxy, err)
		}
		socks, err := proxy.SOCKS5("tcp", f.socksProxy, nil, dialer)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		// The x/net proxy dialer has no context variant; the client's
		// overall timeout still bounds the request.
		transport.Proxy = nil
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return socks.Dial(network, addr)
		}
	}

	return transport, nil
}

// Fetch performs one GET against the URL. It returns a *FetchError for
// non-2xx responses, connection failures and timeouts; there are no retries.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	contentType := resp.Header.Get("Content-Type")

	// Transcode to UTF-8 based on the declared charset. On an unknown
	// charset the raw bytes pass through; a wrong-but-consistent encoding
	// still fingerprints deterministically.
	var body io.Reader = io.LimitReader(resp.Body, f.maxBodySize)
	if decoded, err := charset.NewReader(body, contentType); err == nil {
		body = decoded
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	return &Result{
		Body:        data,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		FetchedAt:   time.Now().UTC(),
	}, nil
}
