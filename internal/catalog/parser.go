package catalog

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	moderrors "github.com/magegihk/modinstaller/internal/errors"
)

// Format represents the encoding of a manifest document.
type Format int

const (
	FormatUnknown Format = iota
	FormatXML
	FormatYAML
	FormatTOML
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatXML:
		return "xml"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseFormat converts a format name to a Format. Unrecognised names yield
// FormatUnknown.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "xml":
		return FormatXML
	case "yaml", "yml":
		return FormatYAML
	case "toml":
		return FormatTOML
	case "json":
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// detectFormat determines the format from the locator's extension or the content.
func detectFormat(locator string, content []byte) Format {
	ext := strings.ToLower(filepath.Ext(strings.SplitN(locator, "?", 2)[0]))

	switch ext {
	case ".xml":
		return FormatXML
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	}

	return sniffFormat(content)
}

// sniffFormat attempts to detect the format from content.
func sniffFormat(content []byte) Format {
	trimmed := strings.TrimSpace(string(content))

	if strings.HasPrefix(trimmed, "<") {
		return FormatXML
	}

	if strings.HasPrefix(trimmed, "{") {
		return FormatJSON
	}

	// TOML manifests use [[mods]] tables or key = value lines
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") || strings.Contains(line, " = ") {
			return FormatTOML
		}
		if strings.Contains(line, ":") {
			return FormatYAML
		}
	}

	return FormatUnknown
}

// xmlManifest mirrors the ModLinks document published by the mod list maintainers.
type xmlManifest struct {
	XMLName xml.Name     `xml:"ModLinks"`
	Mods    []xmlModLink `xml:"ModList>ModLink"`
}

type xmlModLink struct {
	Name         string    `xml:"Name"`
	Link         string    `xml:"Link"`
	Files        []xmlFile `xml:"Files>File"`
	Dependencies []string  `xml:"Dependencies>string"`
	Optional     []string  `xml:"Optional>string"`
}

type xmlFile struct {
	Name string `xml:"Name"`
	SHA1 string `xml:"SHA1"`
}

// rawManifest is the YAML, TOML and JSON shape of a manifest.
type rawManifest struct {
	Mods []rawMod `yaml:"mods" toml:"mods" json:"mods"`
}

type rawMod struct {
	Name         string            `yaml:"name" toml:"name" json:"name"`
	Link         string            `yaml:"link" toml:"link" json:"link"`
	Files        map[string]string `yaml:"files" toml:"files" json:"files"`
	Dependencies []string          `yaml:"dependencies" toml:"dependencies" json:"dependencies"`
	Optional     []string          `yaml:"optional" toml:"optional" json:"optional"`
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns in content.
func expandEnvVars(content []byte) []byte {
	return envVarPattern.ReplaceAllFunc(content, func(match []byte) []byte {
		parts := envVarPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		value := os.Getenv(string(parts[1]))
		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}

// Load parses a manifest of any supported format and builds the catalog.
func Load(data []byte) (*Catalog, error) {
	return LoadFormat(data, sniffFormat(data))
}

// LoadFile reads and parses a manifest from disk, using the extension as a format hint.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, moderrors.Manifest("read", err)
	}
	return LoadFormat(data, detectFormat(path, data))
}

// LoadFormat parses a manifest in the given format and builds the catalog.
func LoadFormat(data []byte, format Format) (*Catalog, error) {
	records, err := parse(data, format)
	if err != nil {
		return nil, moderrors.Manifest("parse", err)
	}
	return Build(records)
}

// parse decodes content into unclassified records.
func parse(content []byte, format Format) ([]Record, error) {
	content = expandEnvVars(content)

	if format == FormatXML {
		var doc xmlManifest
		if err := xml.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("XML parse error: %w", err)
		}
		records := make([]Record, 0, len(doc.Mods))
		for _, m := range doc.Mods {
			r := Record{Name: m.Name, Link: m.Link, Requires: m.Dependencies, Optional: m.Optional}
			for _, f := range m.Files {
				r.Files = append(r.Files, File{Name: f.Name, SHA1: f.SHA1})
			}
			records = append(records, r)
		}
		return records, nil
	}

	var raw rawManifest

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(content, &raw); err != nil {
			return nil, fmt.Errorf("YAML parse error: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(content, &raw); err != nil {
			return nil, fmt.Errorf("TOML parse error: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(content, &raw); err != nil {
			return nil, fmt.Errorf("JSON parse error: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown manifest format")
	}

	records := make([]Record, 0, len(raw.Mods))
	for _, m := range raw.Mods {
		r := Record{Name: m.Name, Link: m.Link, Requires: m.Dependencies, Optional: m.Optional}
		keys := make([]string, 0, len(m.Files))
		for k := range m.Files {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			r.Files = append(r.Files, File{Name: k, SHA1: m.Files[k]})
		}
		records = append(records, r)
	}
	return records, nil
}
