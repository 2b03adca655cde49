// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-ingest/pkg/types"
)

const (
	readChunkSize = 32 << 10
	maxPrealloc   = 64 << 20
)

// ProgressFunc receives the number of bytes read so far and the total from
// Content-Length. It is only called when the total is known.
type ProgressFunc func(received, total int64)

// Downloader fetches remote documents into memory. It makes exactly one
// attempt per call; retry policy belongs to the caller.
type Downloader struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

// NewDownloader returns a Downloader that uses a copy of client with a
// bounded redirect policy. A nil client gets one with cfg.Timeout.
func NewDownloader(client *http.Client, cfg types.DownloadConfig, logger *zap.Logger) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = types.DefaultMaxRedirects
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = types.DefaultUserAgent
	}

	c := *client
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) > maxRedirects {
			return fmt.Errorf("%w: more than %d hop(s) from %s", ErrTooManyRedirects, maxRedirects, via[0].URL)
		}
		return nil
	}
	return &Downloader{client: &c, userAgent: userAgent, logger: logger}
}

// Download fetches rawURL and returns the response body. Cancelling ctx tears
// down the connection and the call returns ErrDownloadCancelled. Non-2xx
// responses return *HTTPError; transport failures wrap ErrNetwork.
func (d *Downloader) Download(ctx context.Context, rawURL string, progress ProgressFunc) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, transportError(ctx, rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidReference, rawURL, err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "application/pdf, */*;q=0.8")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, transportError(ctx, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	total := resp.ContentLength
	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(min(total, maxPrealloc)))
	}

	chunk := make([]byte, readChunkSize)
	var received int64
	for {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			received += int64(n)
			if progress != nil && total > 0 {
				progress(received, total)
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, transportError(ctx, rawURL, readErr)
		}
		if err := ctx.Err(); err != nil {
			return nil, transportError(ctx, rawURL, err)
		}
	}

	d.logger.Debug("download complete",
		zap.String("url", rawURL),
		zap.Int64("bytes", received),
		zap.String("final_url", resp.Request.URL.String()),
	)
	return buf.Bytes(), nil
}

// transportError maps a transport failure to the import taxonomy. A
// cancelled context always wins so user cancellation is never reported as a
// network failure.
func transportError(ctx context.Context, rawURL string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%w: %s", ErrDownloadCancelled, rawURL)
	}
	return fmt.Errorf("%w: GET %s: %w", ErrNetwork, rawURL, err)
}
