// Package fetch persists the body of a single HTTP GET to a local file and
// classifies failures into the transport/status/response taxonomy the input
// resolver reports.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// ErrInvalidResponse reports a reply that is not a recognizable HTTP
// response, e.g. a server speaking garbage on the wire.
var ErrInvalidResponse = errors.New("invalid http response")

// NetworkError is a transport-level failure (connection refused, timeout,
// DNS) carrying the underlying cause.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusError is a completed HTTP exchange that ended in a non-2xx status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.Code)
}

type Options struct {
	URL         string
	Destination string
	Client      *http.Client
	NoProgress  bool
	Logger      *zap.Logger
}

// File issues exactly one GET against opts.URL and writes the body straight
// to opts.Destination. The destination is written under its final name; on
// any failure the partial file is removed. There are no retries: the caller
// surfaces the first error and stops.
func File(ctx context.Context, opts Options) error {
	if opts.URL == "" {
		return errors.New("fetch URL is required")
	}
	if opts.Destination == "" {
		return errors.New("destination path is required")
	}

	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 2 * time.Minute}
	}

	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "hark/1")

	resp, err := opts.Client.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode}
	}

	outFile, err := os.Create(opts.Destination)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}

	success := false
	defer func() {
		_ = outFile.Close()
		if !success {
			_ = os.Remove(opts.Destination)
		}
	}()

	var writer io.Writer = outFile

	var bar *progressbar.ProgressBar
	if shouldRenderProgress(opts.NoProgress, resp.ContentLength) {
		bar = progressbar.NewOptions64(
			resp.ContentLength,
			progressbar.OptionSetDescription("downloading"),
			progressbar.OptionSetWidth(20),
			progressbar.OptionShowBytes(true),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
		)
		writer = io.MultiWriter(outFile, bar)
	}

	if _, err := io.Copy(writer, resp.Body); err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if bar != nil {
		_ = bar.Finish()
	}

	if err := outFile.Close(); err != nil {
		return fmt.Errorf("close destination file: %w", err)
	}

	opts.Logger.Debug("fetched remote audio", zap.String("url", opts.URL), zap.String("destination", opts.Destination))
	success = true
	return nil
}

func classifyTransportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if isMalformedResponse(urlErr.Err) {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, urlErr.Err)
		}
		return &NetworkError{Err: urlErr.Err}
	}
	return &NetworkError{Err: err}
}

func isMalformedResponse(err error) bool {
	if err == nil {
		return false
	}

	value := strings.ToLower(err.Error())
	patterns := []string{
		"malformed http",
		"malformed mime",
		"server sent goaway",
	}

	for _, pattern := range patterns {
		if strings.Contains(value, pattern) {
			return true
		}
	}

	return false
}

func shouldRenderProgress(noProgress bool, contentLength int64) bool {
	if noProgress {
		return false
	}
	if contentLength <= 0 {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}
