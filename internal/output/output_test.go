package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/magegihk/modinstaller/internal/catalog"
	"github.com/magegihk/modinstaller/internal/state"
	"github.com/magegihk/modinstaller/internal/types"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func testReport(t *testing.T) *StatusReport {
	t.Helper()
	cat, err := catalog.Build([]catalog.Record{
		{Name: catalog.APIName, Files: []catalog.File{{Name: "Assembly-CSharp", SHA1: "aa"}}},
		{Name: "Foo", Files: []catalog.File{{Name: "Foo", SHA1: "01"}}, Requires: []string{catalog.APIName}},
		{Name: "Bar", Files: []catalog.File{{Name: "Bar", SHA1: "02"}}, Requires: []string{catalog.APIName}},
		{Name: "Baz", Files: []catalog.File{{Name: "Baz", SHA1: "03"}}, Requires: []string{catalog.APIName}},
	})
	if err != nil {
		t.Fatal(err)
	}

	st := state.New()
	st.APIInstalled = true
	st.Mods["Foo"] = state.LocalMod{Name: "Foo", Enabled: true, Managed: true, MatchesCatalog: true}
	st.Mods["Bar"] = state.LocalMod{Name: "Bar", Enabled: true, Managed: true}
	st.Mods["Custom"] = state.LocalMod{Name: "Custom", Enabled: false}

	return NewStatusReport(cat, st)
}

func TestNewStatusReport(t *testing.T) {
	r := testReport(t)

	want := map[string]types.InstallState{
		"Bar":    types.StateStale,
		"Baz":    types.StateNotInstalled,
		"Custom": types.StateDisabled,
		"Foo":    types.StateEnabled,
	}
	if len(r.Mods) != len(want) {
		t.Fatalf("Mods = %v", r.Mods)
	}
	for i, name := range []string{"Bar", "Baz", "Custom", "Foo"} {
		if r.Mods[i].Name != name {
			t.Errorf("Mods[%d] = %s, want %s", i, r.Mods[i].Name, name)
		}
		if r.Mods[i].State != want[name] {
			t.Errorf("%s state = %s, want %s", name, r.Mods[i].State, want[name])
		}
	}
	if r.API != "installed" {
		t.Errorf("API = %s", r.API)
	}
}

func TestAPIStatus(t *testing.T) {
	withAPI, err := catalog.Build([]catalog.Record{
		{Name: catalog.APIName, Files: []catalog.File{{Name: "Assembly-CSharp", SHA1: "aa"}}},
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		cat  *catalog.Catalog
		st   *state.State
		want string
	}{
		{"installed", withAPI, &state.State{APIInstalled: true}, "installed"},
		{"no manifest", catalog.Empty(), &state.State{}, "unknown"},
		{"vanilla assembly", withAPI, &state.State{APIFingerprint: "bb"}, "outdated"},
		{"missing", withAPI, &state.State{}, "not installed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apiStatus(tt.cat, tt.st); got != tt.want {
				t.Errorf("apiStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStatusReportText(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf, FormatText).Write(testReport(t)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{"Modding API:", "NAME", "Custom", "local", "stale", "1 enabled, 1 disabled, 1 stale, 1 available"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestStatusReportEmpty(t *testing.T) {
	r := NewStatusReport(catalog.Empty(), state.New())
	if !strings.Contains(r.String(), "No mods found.") {
		t.Errorf("String() = %q", r.String())
	}
}

func TestWriterStructured(t *testing.T) {
	report := testReport(t)

	var jsonBuf bytes.Buffer
	if err := NewWriter(&jsonBuf, FormatJSON).Write(report); err != nil {
		t.Fatal(err)
	}
	var decoded StatusReport
	if err := json.Unmarshal(jsonBuf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded.Mods) != 4 || decoded.Mods[0].State != types.StateStale {
		t.Errorf("decoded JSON = %+v", decoded)
	}

	var yamlBuf bytes.Buffer
	if err := NewWriter(&yamlBuf, FormatYAML).Write(report); err != nil {
		t.Fatal(err)
	}
	var decodedYAML StatusReport
	if err := yaml.Unmarshal(yamlBuf.Bytes(), &decodedYAML); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if decodedYAML.API != "installed" {
		t.Errorf("decoded YAML API = %s", decodedYAML.API)
	}
}

func TestWriterFallbackText(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf, FormatText).Write(struct{ N int }{3}); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "{N:3}" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWriterStructuredFlag(t *testing.T) {
	tests := []struct {
		format Format
		want   bool
	}{
		{FormatText, false},
		{FormatJSON, true},
		{FormatYAML, true},
	}
	for _, tt := range tests {
		w := NewWriter(&bytes.Buffer{}, tt.format)
		if w.Structured() != tt.want {
			t.Errorf("%s Structured() = %v, want %v", tt.format, w.Structured(), tt.want)
		}
		if w.Format() != tt.format {
			t.Errorf("Format() = %s, want %s", w.Format(), tt.format)
		}
	}
}
