package catalog

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

	moderrors "github.com/magegihk/modinstaller/internal/errors"
	"github.com/magegihk/modinstaller/internal/logging"
)

// Source fetches the raw manifest document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Located is implemented by sources that know where the manifest lives. The
// location's extension is used as a format hint before the content is sniffed.
type Located interface {
	Location() string
}

// maxBackoff caps the delay between fetch attempts.
const maxBackoff = 30 * time.Second

// HTTPSource fetches the manifest over HTTP, from a file:// URL or from a local path.
type HTTPSource struct {
	URL     string
	Client  *http.Client
	Retries int
	Backoff time.Duration
	Logger  *log.Logger
}

// NewHTTPSource creates a source with the given per-request timeout and retry count.
func NewHTTPSource(url string, timeout time.Duration, retries int, logger *log.Logger) *HTTPSource {
	return &HTTPSource{
		URL:     url,
		Client:  &http.Client{Timeout: timeout},
		Retries: retries,
		Backoff: time.Second,
		Logger:  logging.OrDiscard(logger),
	}
}

// Location implements Located.
func (s *HTTPSource) Location() string {
	return s.URL
}

// Fetch implements Source. Remote fetches are retried with exponential backoff.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	if s.URL == "" {
		return nil, moderrors.Manifest("fetch", fmt.Errorf("no manifest URL configured")).
			WithSuggestion("Set manifest_url in the config file or pass --manifest")
	}

	if !strings.HasPrefix(s.URL, "http://") && !strings.HasPrefix(s.URL, "https://") {
		data, err := os.ReadFile(strings.TrimPrefix(s.URL, "file://"))
		if err != nil {
			return nil, moderrors.Manifest("fetch", err)
		}
		return data, nil
	}

	logger := logging.OrDiscard(s.Logger)
	var lastErr error
	for attempt := 0; attempt <= s.Retries; attempt++ {
		if attempt > 0 {
			delay := s.Backoff << (attempt - 1)
			if delay > maxBackoff {
				delay = maxBackoff
			}
			logger.Debug("retrying manifest fetch", "attempt", attempt+1, "delay", delay)
			select {
			case <-ctx.Done():
				return nil, moderrors.Manifest("fetch", ctx.Err())
			case <-time.After(delay):
			}
		}

		data, err := s.get(ctx)
		if err == nil {
			return data, nil
		}
		lastErr = err
		logger.Debug("manifest fetch failed", "attempt", attempt+1, "err", err)
	}

	return nil, moderrors.Manifest("fetch", fmt.Errorf("after %d attempts: %w", s.Retries+1, lastErr)).
		WithSuggestion("Run with --offline to use the last cached manifest")
}

func (s *HTTPSource) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// Cache keeps the last successfully parsed manifest on disk.
type Cache struct {
	Dir string
}

// Path returns the location of the cached manifest.
func (c *Cache) Path() string {
	return filepath.Join(c.Dir, "manifest")
}

func (c *Cache) formatPath() string {
	return c.Path() + ".format"
}

// Save stores the manifest bytes and their format, replacing any previous copy.
func (c *Cache) Save(data []byte, format Format) error {
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return moderrors.IO("create", c.Dir, err)
	}
	tmp := c.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return moderrors.IO("write", tmp, err)
	}
	if err := os.Rename(tmp, c.Path()); err != nil {
		return moderrors.IO("rename", tmp, err)
	}
	if err := os.WriteFile(c.formatPath(), []byte(format.String()), 0644); err != nil {
		return moderrors.IO("write", c.formatPath(), err)
	}
	return nil
}

// Load returns the cached manifest bytes, their format and the time they were
// stored. The format is FormatUnknown when it was not recorded.
func (c *Cache) Load() ([]byte, Format, time.Time, error) {
	info, err := os.Stat(c.Path())
	if err != nil {
		return nil, FormatUnknown, time.Time{}, err
	}
	data, err := os.ReadFile(c.Path())
	if err != nil {
		return nil, FormatUnknown, time.Time{}, err
	}
	format := FormatUnknown
	if name, err := os.ReadFile(c.formatPath()); err == nil {
		format = ParseFormat(strings.TrimSpace(string(name)))
	}
	return data, format, info.ModTime(), nil
}

// Loader builds catalogs from a Source with an offline fallback to the cache.
type Loader struct {
	Source Source
	Cache  *Cache
	Logger *log.Logger
}

// Result is a loaded catalog and where it came from.
type Result struct {
	Catalog  *Catalog
	Offline  bool
	CachedAt time.Time
}

// Load fetches a fresh catalog, or reads the cached one when offline is set.
func (l *Loader) Load(ctx context.Context, offline bool) (*Result, error) {
	if offline {
		return l.Cached()
	}
	cat, err := l.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{Catalog: cat}, nil
}

// Fetch downloads and parses the manifest, then refreshes the cache.
func (l *Loader) Fetch(ctx context.Context) (*Catalog, error) {
	logger := logging.OrDiscard(l.Logger)

	data, err := l.Source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	var locator string
	if loc, ok := l.Source.(Located); ok {
		locator = loc.Location()
	}
	format := detectFormat(locator, data)

	cat, err := LoadFormat(data, format)
	if err != nil {
		return nil, err
	}
	for _, w := range cat.Warnings {
		logger.Warn("manifest", "issue", w)
	}

	if l.Cache != nil {
		if err := l.Cache.Save(data, format); err != nil {
			logger.Warn("could not cache manifest", "err", err)
		}
	}

	logger.Debug("catalog loaded", "mods", cat.Len(), "api", cat.HasAPI())
	return cat, nil
}

// Cached builds the catalog from the cached manifest. Without a cache the
// catalog is empty so installed mods can still be listed and toggled.
func (l *Loader) Cached() (*Result, error) {
	logger := logging.OrDiscard(l.Logger)

	if l.Cache == nil {
		return &Result{Catalog: Empty(), Offline: true}, nil
	}

	data, format, at, err := l.Cache.Load()
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("no cached manifest, catalog is empty")
			return &Result{Catalog: Empty(), Offline: true}, nil
		}
		return nil, moderrors.Manifest("read cache", err)
	}

	if format == FormatUnknown {
		format = sniffFormat(data)
	}
	cat, err := LoadFormat(data, format)
	if err != nil {
		return nil, err
	}
	return &Result{Catalog: cat, Offline: true, CachedAt: at}, nil
}
