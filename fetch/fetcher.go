// Package fetch provides the network side of tile content loading: a
// transport-level Fetcher, a capacity-limited Scheduler handing out
// cancellable pending operations, and a compressed in-memory payload cache.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/klauspost/compress/gzip"

	"github.com/tilemesa/instile/internal/options"
)

// Fetcher retrieves the raw bytes of one tile resource. Implementations must
// honor ctx cancellation.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// HTTPFetcher fetches tiles over HTTP(S). It negotiates gzip transfer
// encoding itself and decompresses responses transparently, so callers
// always receive raw tile bytes.
type HTTPFetcher struct {
	client *http.Client
	logger *slog.Logger
}

// HTTPFetcherOption configures an HTTPFetcher.
type HTTPFetcherOption = options.Option[*HTTPFetcher]

// WithHTTPClient replaces the default http.DefaultClient.
func WithHTTPClient(client *http.Client) HTTPFetcherOption {
	return options.NoError(func(f *HTTPFetcher) {
		f.client = client
	})
}

// WithHTTPLogger sets the fetcher's logger. Discards by default.
func WithHTTPLogger(logger *slog.Logger) HTTPFetcherOption {
	return options.NoError(func(f *HTTPFetcher) {
		f.logger = logger
	})
}

// NewHTTPFetcher creates an HTTPFetcher.
func NewHTTPFetcher(opts ...HTTPFetcherOption) (*HTTPFetcher, error) {
	f := &HTTPFetcher{
		client: http.DefaultClient,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if err := options.Apply(f, opts...); err != nil {
		return nil, err
	}

	return f, nil
}

// Fetch retrieves url and returns the (decompressed) response body.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	// Opting into gzip explicitly disables the transport's transparent
	// decompression; the body is decompressed below instead.
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s for %s", resp.Status, url)
	}

	body := io.Reader(resp.Body)
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip response for %s: %w", url, err)
		}
		defer gz.Close()
		body = gz
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("fetched tile", "url", url, "bytes", len(data))

	return data, nil
}
