package cmd

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/magegihk/modinstaller/internal/backup"
	"github.com/magegihk/modinstaller/internal/catalog"
	"github.com/magegihk/modinstaller/internal/config"
	"github.com/magegihk/modinstaller/internal/install"
	"github.com/magegihk/modinstaller/internal/interactive"
	"github.com/magegihk/modinstaller/internal/state"
)

func sum(content string) string {
	h := sha1.Sum([]byte(content))
	return hex.EncodeToString(h[:])
}

// staticSource serves a fixed manifest or a fixed error.
type staticSource struct {
	data []byte
	err  error
}

func (s staticSource) Fetch(context.Context) ([]byte, error) {
	return s.data, s.err
}

// archiveDownloader serves links from archives built by the test.
type archiveDownloader struct {
	archives map[string]string
	calls    []string
}

func (d *archiveDownloader) Download(_ context.Context, link, dst string) error {
	d.calls = append(d.calls, link)
	src, ok := d.archives[link]
	if !ok {
		return fmt.Errorf("404 not found: %s", link)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

func makeZip(t *testing.T, path string, files map[string]string) string {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
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

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Archive contents shared by the fixtures.
const (
	apiContent   = "patched assembly"
	libContent   = "lib v1"
	fooContent   = "foo v1"
	extraContent = "extra v1"
)

// testManifest lists the API, Lib and Extra, and Foo which requires Lib and
// optionally wants Extra.
func testManifest() string {
	return fmt.Sprintf(`mods:
  - name: Modding API
    link: api
    files:
      Assembly-CSharp: %s
  - name: Lib
    link: lib
    files:
      Lib: %s
    dependencies: [Modding API]
  - name: Extra
    link: extra
    files:
      Extra: %s
    dependencies: [Modding API]
  - name: Foo
    link: foo
    files:
      Foo: %s
    dependencies: [Modding API, Lib]
    optional: [Extra]
`, sum(apiContent), sum(libContent), sum(extraContent), sum(fooContent))
}

// fixture is a service wired to a temporary install.
type fixture struct {
	paths      config.Paths
	svc        *ModService
	snapshots  *backup.Manager
	downloader *archiveDownloader
	prompts    *bytes.Buffer
}

type fixtureOptions struct {
	input     string
	opts      ServiceOptions
	source    catalog.Source
	noPrompts bool
}

func newFixture(t *testing.T, fo fixtureOptions) *fixture {
	t.Helper()
	tmp := t.TempDir()

	root := filepath.Join(tmp, "Hollow Knight")
	s := config.Defaults()
	s.InstallRoot = root
	s.ScratchDir = filepath.Join(tmp, "scratch")
	paths := s.Paths()
	for _, dir := range []string{paths.APIDir, paths.ModsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}

	archives := filepath.Join(tmp, "archives")
	if err := os.MkdirAll(archives, 0755); err != nil {
		t.Fatal(err)
	}
	dl := &archiveDownloader{archives: map[string]string{
		"api": makeZip(t, filepath.Join(archives, "api.zip"), map[string]string{
			"Managed/Assembly-CSharp.dll": apiContent,
			"README.md":                   "api readme",
		}),
		"lib":   makeZip(t, filepath.Join(archives, "lib.zip"), map[string]string{"Lib.dll": libContent}),
		"extra": makeZip(t, filepath.Join(archives, "extra.zip"), map[string]string{"Extra.dll": extraContent}),
		"foo":   makeZip(t, filepath.Join(archives, "foo.zip"), map[string]string{"Foo.dll": fooContent, "Foo.txt": "notes"}),
	}}

	source := fo.source
	if source == nil {
		source = staticSource{data: []byte(testManifest())}
	}
	loader := &catalog.Loader{Source: source, Cache: &catalog.Cache{Dir: filepath.Join(tmp, "cache")}}
	reader := &state.FilesystemReader{
		ModsDir:     paths.ModsDir,
		DisabledDir: paths.DisabledDir,
		APIDir:      paths.APIDir,
		APIMarker:   s.APIMarker,
	}
	installer := install.New(paths, dl, s.ResourceExtensions, nil)
	snapshots := backup.NewManager(filepath.Join(tmp, "snapshots"), "test")

	prompts := &bytes.Buffer{}
	var prompter *interactive.Prompter
	if !fo.noPrompts {
		prompter = interactive.NewPrompterWithIO(strings.NewReader(fo.input), prompts)
	}

	return &fixture{
		paths:      paths,
		svc:        NewModServiceWithDeps(loader, reader, installer, snapshots, prompter, paths, nil, fo.opts),
		snapshots:  snapshots,
		downloader: dl,
		prompts:    prompts,
	}
}

func (f *fixture) modFile(name string) string {
	return filepath.Join(f.paths.ModsDir, name+".dll")
}

func (f *fixture) disabledFile(name string) string {
	return filepath.Join(f.paths.DisabledDir, name+".dll")
}
