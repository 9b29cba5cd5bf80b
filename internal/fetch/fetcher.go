package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/nao1215/sitediff/internal/model"
)

const (
	// DefaultTimeout is the connect timeout for remote reads.
	DefaultTimeout = 3 * time.Second

	// DefaultUserAgent identifies sitediff in origin access logs.
	DefaultUserAgent = "sitediff/1.0 (+https://github.com/nao1215/sitediff)"

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// maxRedirects is the number of redirects followed before giving up.
	maxRedirects = 10
)

// Fetcher reads pages from local files or remote origins.
type Fetcher struct {
	// client performs remote reads. Built from timeout unless supplied.
	client *http.Client

	// userAgent is sent with every remote request.
	userAgent string

	// maxBodySize limits the response body size.
	maxBodySize int64

	// timeout bounds connection establishment (dial and TLS handshake).
	timeout time.Duration

	logger *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithTimeout sets the connect timeout for remote reads.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum number of body bytes read per response.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithHTTPClient replaces the HTTP client. The connect timeout option has no
// effect on a supplied client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		timeout:     DefaultTimeout,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}
	if f.client == nil {
		f.client = newHTTPClient(f.timeout)
	}

	return f
}

// newHTTPClient builds a client whose dial and TLS handshake are bounded by
// timeout. The response itself is bounded by the request context.
func newHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: timeout}
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport
	transport.DialContext = dialer.DialContext
	transport.TLSHandshakeTimeout = timeout

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return ErrTooManyRedirects
			}
			return nil
		},
	}
}

// Read reads uri synchronously. Local paths are read from disk, anything
// with a network scheme is requested over HTTP(S).
func (f *Fetcher) Read(ctx context.Context, uri string) model.ReadResult {
	if IsLocal(uri) {
		return f.readLocal(uri)
	}
	return f.readRemote(ctx, uri)
}

// ReadAsync reads uri and passes the result to done. Once ctx is cancelled
// done receives an error result without any read.
// Local reads run inline and call done before ReadAsync returns; remote reads
// are submitted to mux and done runs on a worker goroutine.
func (f *Fetcher) ReadAsync(ctx context.Context, uri string, mux *Multiplexer, done func(model.ReadResult)) {
	if IsLocal(uri) {
		if err := ctx.Err(); err != nil {
			done(model.Failure(err.Error()))
			return
		}
		done(f.readLocal(uri))
		return
	}
	mux.Submit(ctx, func(ctx context.Context) model.ReadResult {
		return f.readRemote(ctx, uri)
	}, done)
}

// readLocal reads a file and decodes it as UTF-8.
func (f *Fetcher) readLocal(uri string) model.ReadResult {
	path := localPath(uri)
	data, err := os.ReadFile(path) //nolint:gosec // reading user-configured paths is the purpose
	if err != nil {
		f.logger.Debug("local read failed", "path", path, "error", err)
		return model.Failure(err.Error())
	}
	text, err := decodeBody(data, "")
	if err != nil {
		return model.Failure(fmt.Sprintf("decode %s: %v", path, err))
	}
	return model.Success(text)
}

// readRemote performs a GET request for uri.
func (f *Fetcher) readRemote(ctx context.Context, uri string) model.ReadResult {
	target, user, err := splitCredentials(uri)
	if err != nil {
		return model.Failure(fmt.Sprintf("invalid URI %q: %v", Redact(uri), err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return model.Failure(err.Error())
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if user != nil {
		password, _ := user.Password()
		req.SetBasicAuth(user.Username(), password)
	}

	f.logger.Debug("fetching", "url", target)

	resp, err := f.client.Do(req)
	if err != nil {
		return model.Failure(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return model.Failure("HTTP " + resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return model.Failure(fmt.Sprintf("read body of %s: %v", target, err))
	}

	text, err := decodeBody(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return model.Failure(fmt.Sprintf("decode body of %s: %v", target, err))
	}
	return model.Success(text)
}
