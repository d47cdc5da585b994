// Package catalog indexes the mod descriptors published in the remote manifest.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	moderrors "github.com/magegihk/modinstaller/internal/errors"
)

// APIName is the reserved record name of the platform API package.
const APIName = "Modding API"

// File is one file entry of a manifest record.
type File struct {
	Name string
	SHA1 string
}

// Record is a manifest entry before classification.
type Record struct {
	Name     string
	Link     string
	Files    []File
	Requires []string
	Optional []string
}

// Descriptor is one installable catalog entry.
type Descriptor struct {
	Name     string            `json:"name" yaml:"name"`
	Link     string            `json:"link" yaml:"link"`
	Files    map[string]string `json:"files" yaml:"files"`
	Requires []string          `json:"dependencies" yaml:"dependencies"`
	Optional []string          `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// FileKeys returns the logical file names of the descriptor, sorted.
func (d *Descriptor) FileKeys() []string {
	keys := make([]string, 0, len(d.Files))
	for k := range d.Files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Catalog is the name-indexed set of installable mods plus the platform API.
// It is immutable once built.
type Catalog struct {
	entries map[string]*Descriptor
	owners  map[string]string

	APILink        string
	APIFingerprint string
	hasAPI         bool

	// Warnings lists manifest oddities that did not prevent loading.
	Warnings []string
}

// Empty returns a catalog with no entries and no API.
func Empty() *Catalog {
	return &Catalog{
		entries: make(map[string]*Descriptor),
		owners:  make(map[string]string),
	}
}

// Build classifies manifest records into a catalog.
//
// The API record is held apart from the entries and must carry exactly one
// file. Any other record without required dependencies is dropped.
func Build(records []Record) (*Catalog, error) {
	c := Empty()

	for i, r := range records {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, moderrors.Manifest("parse", fmt.Errorf("record %d: missing name", i))
		}

		files := make(map[string]string, len(r.Files))
		for _, f := range r.Files {
			key := strings.TrimSpace(f.Name)
			if key == "" {
				return nil, moderrors.Manifest("parse", fmt.Errorf("%s: file entry without name", name))
			}
			if _, dup := files[key]; dup {
				return nil, moderrors.Manifest("parse", fmt.Errorf("%s: duplicate file %q", name, key))
			}
			files[key] = strings.ToLower(strings.TrimSpace(f.SHA1))
		}

		if name == APIName {
			if len(r.Files) != 1 {
				return nil, moderrors.Manifest("parse", fmt.Errorf("%s: expected exactly one file, got %d", name, len(r.Files)))
			}
			c.APILink = strings.TrimSpace(r.Link)
			c.APIFingerprint = strings.ToLower(strings.TrimSpace(r.Files[0].SHA1))
			c.hasAPI = true
			continue
		}

		requires := trimAll(r.Requires)
		if len(requires) == 0 {
			continue
		}

		if _, exists := c.entries[name]; exists {
			c.Warnings = append(c.Warnings, fmt.Sprintf("duplicate record %q replaces earlier entry", name))
		}
		c.entries[name] = &Descriptor{
			Name:     name,
			Link:     strings.TrimSpace(r.Link),
			Files:    files,
			Requires: requires,
			Optional: trimAll(r.Optional),
		}
	}

	c.indexOwners()
	return c, nil
}

// indexOwners maps every file key to the first descriptor, by name, that lists it.
func (c *Catalog) indexOwners() {
	for _, name := range c.Names() {
		for key := range c.entries[name].Files {
			if owner, taken := c.owners[key]; taken {
				c.Warnings = append(c.Warnings, fmt.Sprintf("file %q is listed by both %q and %q", key, owner, name))
				continue
			}
			c.owners[key] = name
		}
	}
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Get returns the descriptor with the given name.
func (c *Catalog) Get(name string) (*Descriptor, bool) {
	d, ok := c.entries[name]
	return d, ok
}

// Owner returns the descriptor whose file mapping contains key.
func (c *Catalog) Owner(key string) (*Descriptor, bool) {
	name, ok := c.owners[key]
	if !ok {
		return nil, false
	}
	return c.entries[name], true
}

// Names returns every entry name in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptors returns every entry sorted by name.
func (c *Catalog) Descriptors() []*Descriptor {
	names := c.Names()
	out := make([]*Descriptor, 0, len(names))
	for _, name := range names {
		out = append(out, c.entries[name])
	}
	return out
}

// Len returns the number of installable entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// IsAPI reports whether name denotes the platform API.
func (c *Catalog) IsAPI(name string) bool {
	return name == APIName
}

// HasAPI reports whether the manifest described the platform API.
func (c *Catalog) HasAPI() bool {
	return c.hasAPI
}
