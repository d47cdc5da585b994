package install

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/magegihk/modinstaller/internal/logging"
)

// ProgressFunc reports bytes written so far and the expected total, or -1
// when the size is unknown.
type ProgressFunc func(written, total int64)

// Downloader fetches an archive locator to a local path.
type Downloader interface {
	Download(ctx context.Context, link, dst string) error
}

const maxBackoff = 30 * time.Second

// HTTPDownloader fetches over HTTP with retries. Links without an http or
// https scheme are treated as local paths, with or without file://.
type HTTPDownloader struct {
	Client   *http.Client
	Retries  int
	Backoff  time.Duration
	Progress ProgressFunc
	Logger   *log.Logger
}

// NewHTTPDownloader creates a downloader whose requests are bounded by timeout.
func NewHTTPDownloader(timeout time.Duration, retries int, logger *log.Logger) *HTTPDownloader {
	return &HTTPDownloader{
		Client:  &http.Client{Timeout: timeout},
		Retries: retries,
		Backoff: time.Second,
		Logger:  logging.OrDiscard(logger),
	}
}

// Download writes the archive at link to dst. The body is written to
// dst+".part" and renamed into place only when complete.
func (d *HTTPDownloader) Download(ctx context.Context, link, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	if !isRemote(link) {
		return copyFile(strings.TrimPrefix(link, "file://"), dst)
	}

	logger := logging.OrDiscard(d.Logger)
	var lastErr error
	for attempt := 0; attempt <= d.Retries; attempt++ {
		if attempt > 0 {
			delay := d.Backoff << (attempt - 1)
			if delay > maxBackoff {
				delay = maxBackoff
			}
			logger.Debug("retrying download", "link", link, "attempt", attempt+1, "delay", delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := d.fetch(ctx, link, dst)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Debug("download failed", "link", link, "attempt", attempt+1, "err", err)
	}

	return fmt.Errorf("after %d attempts: %w", d.Retries+1, lastErr)
}

func (d *HTTPDownloader) fetch(ctx context.Context, link, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return err
	}

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return fmt.Errorf("received an HTML page instead of an archive")
	}

	part := dst + ".part"
	f, err := os.Create(part)
	if err != nil {
		return err
	}

	var w io.Writer = f
	if d.Progress != nil {
		w = &progressWriter{w: f, total: resp.ContentLength, fn: d.Progress}
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(part)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(part)
		return err
	}

	return os.Rename(part, dst)
}

type progressWriter struct {
	w       io.Writer
	written int64
	total   int64
	fn      ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	p.fn(p.written, p.total)
	return n, err
}

func isRemote(link string) bool {
	return strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://")
}
