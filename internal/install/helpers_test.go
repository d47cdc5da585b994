package install

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/magegihk/modinstaller/internal/config"
)

// makeZip writes an archive containing files, keyed by slash-separated name.
func makeZip(t *testing.T, path string, files map[string]string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// testPaths lays out a host install below a temp dir.
func testPaths(t *testing.T) config.Paths {
	t.Helper()
	tmpDir := t.TempDir()
	root := filepath.Join(tmpDir, "Hollow Knight")
	api := filepath.Join(root, "hollow_knight_Data", "Managed")
	mods := filepath.Join(api, "Mods")
	p := config.Paths{
		InstallRoot: root,
		APIDir:      api,
		ModsDir:     mods,
		DisabledDir: filepath.Join(mods, "Disabled"),
		ScratchDir:  filepath.Join(tmpDir, "scratch"),
	}
	for _, dir := range []string{p.InstallRoot, p.APIDir, p.ModsDir, p.DisabledDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	return p
}

// fakeDownloader serves links from local archives.
type fakeDownloader struct {
	archives map[string]string
	calls    []string
}

func (f *fakeDownloader) Download(_ context.Context, link, dst string) error {
	f.calls = append(f.calls, link)
	src, ok := f.archives[link]
	if !ok {
		return fmt.Errorf("404 not found: %s", link)
	}
	return copyFile(src, dst)
}

// failingExtractor always fails after leaving a file in dst.
type failingExtractor struct{}

func (failingExtractor) Extract(_ context.Context, _, dst string) error {
	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}
	_ = os.WriteFile(filepath.Join(dst, "partial.dll"), []byte("x"), 0644)
	return fmt.Errorf("corrupt archive")
}
