package install

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPDownloaderSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write([]byte("archive bytes"))
	}))
	defer server.Close()

	var lastWritten int64
	d := NewHTTPDownloader(5*time.Second, 0, nil)
	d.Progress = func(written, total int64) { lastWritten = written }

	dst := filepath.Join(t.TempDir(), "mods", "Foo.zip")
	if err := d.Download(context.Background(), server.URL+"/Foo.zip", dst); err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	if got := readFile(t, dst); got != "archive bytes" {
		t.Errorf("downloaded = %q", got)
	}
	if exists(dst + ".part") {
		t.Error(".part file should be renamed away")
	}
	if lastWritten != int64(len("archive bytes")) {
		t.Errorf("progress reported %d bytes", lastWritten)
	}
}

func TestHTTPDownloaderRetries(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	d := NewHTTPDownloader(5*time.Second, 2, nil)
	d.Backoff = time.Millisecond

	dst := filepath.Join(t.TempDir(), "Foo.zip")
	if err := d.Download(context.Background(), server.URL, dst); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("hits = %d, want 3", hits.Load())
	}
}

func TestHTTPDownloaderGivesUp(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	d := NewHTTPDownloader(5*time.Second, 1, nil)
	d.Backoff = time.Millisecond

	dst := filepath.Join(t.TempDir(), "Foo.zip")
	if err := d.Download(context.Background(), server.URL, dst); err == nil {
		t.Fatal("Download() should fail")
	}
	if hits.Load() != 2 {
		t.Errorf("hits = %d, want 2", hits.Load())
	}
	if exists(dst) || exists(dst+".part") {
		t.Error("failed download must not leave files behind")
	}
}

func TestHTTPDownloaderRejectsHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html>login</html>"))
	}))
	defer server.Close()

	d := NewHTTPDownloader(5*time.Second, 0, nil)
	if err := d.Download(context.Background(), server.URL, filepath.Join(t.TempDir(), "x.zip")); err == nil {
		t.Error("Download() should reject an HTML page")
	}
}

func TestHTTPDownloaderLocal(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "src.zip")
	writeFile(t, src, "local archive")

	tests := []struct {
		name string
		link string
	}{
		{"plain path", src},
		{"file url", "file://" + src},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := filepath.Join(t.TempDir(), "out.zip")
			if err := NewHTTPDownloader(time.Second, 0, nil).Download(context.Background(), tt.link, dst); err != nil {
				t.Fatalf("Download() error = %v", err)
			}
			if got := readFile(t, dst); got != "local archive" {
				t.Errorf("downloaded = %q", got)
			}
		})
	}
}

func TestHTTPDownloaderTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	d := NewHTTPDownloader(50*time.Millisecond, 0, nil)
	if err := d.Download(context.Background(), server.URL, filepath.Join(t.TempDir(), "x.zip")); err == nil {
		t.Error("Download() should time out")
	}
}
