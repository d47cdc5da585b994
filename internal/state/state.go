// Package state detects which mods are present on disk and how they relate
// to the catalog.
package state

import (
	"sort"

	"github.com/magegihk/modinstaller/internal/catalog"
	"github.com/magegihk/modinstaller/internal/types"
)

// State is the installed view of the mod directories. It is rebuilt from
// scratch after every mutation and never patched in place.
type State struct {
	Mods           map[string]LocalMod `json:"mods" yaml:"mods"`
	APIInstalled   bool                `json:"api_installed" yaml:"api_installed"`
	APIFingerprint string              `json:"api_fingerprint,omitempty" yaml:"api_fingerprint,omitempty"`
}

// LocalMod is one library file discovered in the active or disabled directory.
type LocalMod struct {
	// Name is the catalog name for managed files, or the bare file name.
	Name           string `json:"name" yaml:"name"`
	FileKey        string `json:"file" yaml:"file"`
	Path           string `json:"path" yaml:"path"`
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	Managed        bool   `json:"managed" yaml:"managed"`
	MatchesCatalog bool   `json:"matches_catalog" yaml:"matches_catalog"`
	Fingerprint    string `json:"fingerprint" yaml:"fingerprint"`
}

// Reader defines the interface for reading current state.
type Reader interface {
	Read(cat *catalog.Catalog) (*State, error)
}

// New returns an empty state.
func New() *State {
	return &State{Mods: make(map[string]LocalMod)}
}

// Status returns the derived install state of name.
func (s *State) Status(name string) types.InstallState {
	m, ok := s.Mods[name]
	switch {
	case !ok:
		return types.StateNotInstalled
	case !m.Enabled:
		return types.StateDisabled
	case m.Managed && !m.MatchesCatalog:
		return types.StateStale
	default:
		return types.StateEnabled
	}
}

// Installed reports whether any file of name is present, enabled or not.
func (s *State) Installed(name string) bool {
	_, ok := s.Mods[name]
	return ok
}

// Stale returns the names of stale mods, sorted.
func (s *State) Stale() []string {
	var names []string
	for name := range s.Mods {
		if s.Status(name) == types.StateStale {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Records returns every local mod sorted by name.
func (s *State) Records() []LocalMod {
	out := make([]LocalMod, 0, len(s.Mods))
	for _, m := range s.Mods {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
