// Package fetcher downloads source media over HTTP with a hard deadline and a
// hard size cap. Oversized responses are rejected outright, never truncated.
// There is no retry here; re-issuing a failed fetch is the caller's business.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrFetch    = errors.New("fetch failed")
	ErrTooLarge = errors.New("source exceeds size limit")
)

type Fetcher struct {
	client   *http.Client
	maxBytes int64
	log      zerolog.Logger
}

func New(timeout time.Duration, maxSizeMB int64, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxSizeMB << 20,
		log:      log,
	}
}

// Fetch downloads url and returns the full body. Non-2xx statuses, timeouts
// and size-cap violations all surface as errors wrapping ErrFetch.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetch, resp.StatusCode)
	}
	if resp.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("%w: %w: content-length %d", ErrFetch, ErrTooLarge, resp.ContentLength)
	}

	// Read one byte past the cap so an unannounced oversized body is caught.
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFetch, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %w: body exceeds %d bytes", ErrFetch, ErrTooLarge, f.maxBytes)
	}

	f.log.Debug().Str("url", url).Int("bytes", len(data)).Msg("source fetched")
	return data, nil
}
