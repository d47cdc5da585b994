package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	moderrors "github.com/magegihk/modinstaller/internal/errors"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		content  string
		expected Format
	}{
		{"xml extension", "ModLinks.xml", "", FormatXML},
		{"yaml extension", "mods.yaml", "", FormatYAML},
		{"yml extension", "mods.yml", "", FormatYAML},
		{"toml extension", "mods.toml", "", FormatTOML},
		{"json extension", "mods.json", "", FormatJSON},
		{"query string ignored", "https://example.com/mods.json?dl=1", "", FormatJSON},
		{"xml content", "manifest", `<ModLinks/>`, FormatXML},
		{"json content", "manifest", `{"mods": []}`, FormatJSON},
		{"yaml content", "manifest", `mods: []`, FormatYAML},
		{"toml content", "manifest", "[[mods]]\nname = \"Foo\"", FormatTOML},
		{"empty content", "manifest", ``, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFormat(tt.path, []byte(tt.content))
			if got != tt.expected {
				t.Errorf("detectFormat() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("MOD_HOST", "mirror.example.com")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple var", "${MOD_HOST}", "mirror.example.com"},
		{"var with default", "${MISSING_MOD_VAR:-fallback}", "fallback"},
		{"existing var ignores default", "${MOD_HOST:-fallback}", "mirror.example.com"},
		{"no var", "plain text", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(expandEnvVars([]byte(tt.input)))
			if got != tt.expected {
				t.Errorf("expandEnvVars() = %q, want %q", got, tt.expected)
			}
		})
	}
}

const sampleYAML = `mods:
  - name: Modding API
    link: https://${MOD_HOST:-example.com}/api.zip
    files:
      Assembly-CSharp: abc
  - name: Foo
    link: https://${MOD_HOST:-example.com}/foo.zip
    files:
      Foo: "1111"
    dependencies: [Modding API]
    optional: [Bar]
  - name: Loose
    link: https://example.com/loose.zip
    files:
      Loose: "2222"
`

const sampleTOML = `
[[mods]]
name = "Modding API"
link = "https://example.com/api.zip"
files = { Assembly-CSharp = "abc" }

[[mods]]
name = "Foo"
link = "https://example.com/foo.zip"
dependencies = ["Modding API"]
optional = ["Bar"]

[mods.files]
Foo = "1111"
`

const sampleJSON = `{
  "mods": [
    {"name": "Modding API", "link": "https://example.com/api.zip", "files": {"Assembly-CSharp": "abc"}},
    {"name": "Foo", "link": "https://example.com/foo.zip", "files": {"Foo": "1111"},
     "dependencies": ["Modding API"], "optional": ["Bar"]}
  ]
}`

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		content string
		format  Format
	}{
		{"yaml", sampleYAML, FormatYAML},
		{"toml", sampleTOML, FormatTOML},
		{"json", sampleJSON, FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := LoadFormat([]byte(tt.content), tt.format)
			if err != nil {
				t.Fatalf("LoadFormat() error = %v", err)
			}
			if cat.Len() != 1 {
				t.Errorf("Len() = %d, want 1 (names: %v)", cat.Len(), cat.Names())
			}
			foo, ok := cat.Get("Foo")
			if !ok {
				t.Fatal("missing Foo")
			}
			if foo.Files["Foo"] != "1111" {
				t.Errorf("Foo.Files = %v", foo.Files)
			}
			if len(foo.Optional) != 1 || foo.Optional[0] != "Bar" {
				t.Errorf("Foo.Optional = %v", foo.Optional)
			}
			if cat.APIFingerprint != "abc" {
				t.Errorf("APIFingerprint = %q", cat.APIFingerprint)
			}
		})
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("MOD_HOST", "mirror.example.com")

	cat, err := Load([]byte(sampleYAML))
	if err != nil {
		t.Fatal(err)
	}
	foo, _ := cat.Get("Foo")
	if foo.Link != "https://mirror.example.com/foo.zip" {
		t.Errorf("Foo.Link = %s", foo.Link)
	}
	if cat.APILink != "https://mirror.example.com/api.zip" {
		t.Errorf("APILink = %s", cat.APILink)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"broken xml", `<ModLinks><ModList>`},
		{"broken json", `{"mods": [`},
		{"unknown", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.content))
			if !errors.Is(err, moderrors.ErrManifest) {
				t.Errorf("Load() error = %v, want manifest error", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mods.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cat, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cat.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cat.Len())
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.xml")); !errors.Is(err, moderrors.ErrManifest) {
		t.Errorf("LoadFile(missing) error = %v, want manifest error", err)
	}
}
