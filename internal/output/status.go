package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/magegihk/modinstaller/internal/catalog"
	"github.com/magegihk/modinstaller/internal/state"
	"github.com/magegihk/modinstaller/internal/types"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	enabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	staleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	disabledStyle = lipgloss.NewStyle().Faint(true)
	missingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// StatusRow is one mod in a status report.
type StatusRow struct {
	Name      string             `json:"name" yaml:"name"`
	State     types.InstallState `json:"state" yaml:"state"`
	Managed   bool               `json:"managed" yaml:"managed"`
	InCatalog bool               `json:"in_catalog" yaml:"in_catalog"`
	File      string             `json:"file,omitempty" yaml:"file,omitempty"`
}

// StatusReport lists every catalog mod and every local mod.
type StatusReport struct {
	API     string      `json:"api" yaml:"api"`
	Offline bool        `json:"offline,omitempty" yaml:"offline,omitempty"`
	Mods    []StatusRow `json:"mods" yaml:"mods"`
}

// NewStatusReport merges catalog entries and local records into one report,
// sorted by name.
func NewStatusReport(cat *catalog.Catalog, st *state.State) *StatusReport {
	r := &StatusReport{API: apiStatus(cat, st)}

	seen := make(map[string]bool)
	for _, name := range cat.Names() {
		seen[name] = true
		row := StatusRow{Name: name, State: st.Status(name), InCatalog: true}
		if m, ok := st.Mods[name]; ok {
			row.Managed = m.Managed
			row.File = m.Path
		}
		r.Mods = append(r.Mods, row)
	}
	for _, m := range st.Records() {
		if seen[m.Name] {
			continue
		}
		r.Mods = append(r.Mods, StatusRow{
			Name:    m.Name,
			State:   st.Status(m.Name),
			Managed: m.Managed,
			File:    m.Path,
		})
	}

	sort.Slice(r.Mods, func(i, j int) bool { return r.Mods[i].Name < r.Mods[j].Name })
	return r
}

func apiStatus(cat *catalog.Catalog, st *state.State) string {
	switch {
	case st.APIInstalled:
		return "installed"
	case !cat.HasAPI():
		return "unknown"
	case st.APIFingerprint != "":
		return "outdated"
	default:
		return "not installed"
	}
}

// Counts returns the number of mods per install state.
func (r *StatusReport) Counts() map[types.InstallState]int {
	counts := make(map[types.InstallState]int)
	for _, m := range r.Mods {
		counts[m.State]++
	}
	return counts
}

func (r *StatusReport) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s", headerStyle.Render("Modding API:"), r.API)
	if r.Offline {
		b.WriteString(" (offline)")
	}
	b.WriteString("\n")

	if len(r.Mods) == 0 {
		b.WriteString("No mods found.")
		return b.String()
	}

	width := len("NAME")
	for _, m := range r.Mods {
		if len(m.Name) > width {
			width = len(m.Name)
		}
	}
	nameCol := lipgloss.NewStyle().Width(width + 2)
	stateCol := lipgloss.NewStyle().Width(len(types.StateNotInstalled) + 2)

	b.WriteString("\n")
	b.WriteString(headerStyle.Render(nameCol.Render("NAME") + stateCol.Render("STATE") + "SOURCE"))
	for _, m := range r.Mods {
		b.WriteString("\n")
		b.WriteString(nameCol.Render(m.Name))
		b.WriteString(stateCol.Render(stateStyle(m.State).Render(m.State.String())))
		b.WriteString(source(m))
	}

	counts := r.Counts()
	fmt.Fprintf(&b, "\n\n%d enabled, %d disabled, %d stale, %d available",
		counts[types.StateEnabled], counts[types.StateDisabled], counts[types.StateStale], counts[types.StateNotInstalled])
	return b.String()
}

func stateStyle(s types.InstallState) lipgloss.Style {
	switch s {
	case types.StateEnabled:
		return enabledStyle
	case types.StateStale:
		return staleStyle
	case types.StateDisabled:
		return disabledStyle
	default:
		return missingStyle
	}
}

func source(m StatusRow) string {
	switch {
	case m.Managed:
		return "catalog"
	case m.InCatalog && m.State == types.StateNotInstalled:
		return "catalog"
	case m.InCatalog:
		return "catalog (unmatched file)"
	default:
		return "local"
	}
}
