package state

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/magegihk/modinstaller/internal/catalog"
	moderrors "github.com/magegihk/modinstaller/internal/errors"
	"github.com/magegihk/modinstaller/internal/hash"
	"github.com/magegihk/modinstaller/internal/logging"
	"github.com/magegihk/modinstaller/internal/types"
)

// Scanner classifies the library files of the mod directories against a catalog.
type Scanner struct {
	Logger *log.Logger
}

// Scan walks activeDir and then disabledDir and records every library file.
//
// A file whose logical name is a key of some descriptor is managed and takes
// the descriptor's name. Any other file is unmanaged and takes its own name.
// A mod with several files in the same directory matches the catalog only when
// every one of them does. A name already recorded from the active directory
// is skipped in the disabled one, so an active file always wins over a
// disabled copy. A file that cannot be read fails the scan. disabledDir is
// created when absent.
func (sc *Scanner) Scan(cat *catalog.Catalog, activeDir, disabledDir string) (*State, error) {
	logger := logging.OrDiscard(sc.Logger)
	st := New()

	if err := os.MkdirAll(disabledDir, 0755); err != nil {
		return nil, moderrors.IO("create", disabledDir, err)
	}

	for _, dir := range []struct {
		path    string
		enabled bool
	}{
		{activeDir, true},
		{disabledDir, false},
	} {
		entries, err := os.ReadDir(dir.path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, moderrors.IO("read", dir.path, err)
		}

		for _, e := range entries {
			if e.IsDir() || !types.IsLibrary(e.Name()) {
				continue
			}

			path := filepath.Join(dir.path, e.Name())
			key := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))

			fp, err := hash.Fingerprint(path)
			if err != nil {
				return nil, err
			}

			rec := LocalMod{
				Name:        key,
				FileKey:     key,
				Path:        path,
				Enabled:     dir.enabled,
				Fingerprint: fp,
			}
			if desc, ok := cat.Owner(key); ok {
				rec.Name = desc.Name
				rec.Managed = true
				rec.MatchesCatalog = hash.Equal(fp, desc.Files[key])
			}

			if prev, seen := st.Mods[rec.Name]; seen {
				if prev.Enabled == dir.enabled {
					prev.MatchesCatalog = prev.MatchesCatalog && rec.MatchesCatalog
					st.Mods[rec.Name] = prev
				} else {
					logger.Debug("skipping superseded file", "mod", rec.Name, "path", path)
				}
				continue
			}
			st.Mods[rec.Name] = rec
		}
	}

	return st, nil
}

// Scan classifies the mod directories with a scanner that does not log.
func Scan(cat *catalog.Catalog, activeDir, disabledDir string) (*State, error) {
	return (&Scanner{}).Scan(cat, activeDir, disabledDir)
}

// FilesystemReader reads state from the configured mod directories.
type FilesystemReader struct {
	ModsDir     string
	DisabledDir string
	APIDir      string
	// APIMarker is the file in APIDir whose fingerprint identifies the API.
	APIMarker string
	Logger    *log.Logger
}

// Read implements Reader using filesystem access.
func (r *FilesystemReader) Read(cat *catalog.Catalog) (*State, error) {
	sc := &Scanner{Logger: r.Logger}
	st, err := sc.Scan(cat, r.ModsDir, r.DisabledDir)
	if err != nil {
		return nil, err
	}

	if r.APIDir != "" && r.APIMarker != "" {
		marker := filepath.Join(r.APIDir, r.APIMarker)
		if fp, err := hash.Fingerprint(marker); err == nil {
			st.APIFingerprint = fp
			st.APIInstalled = cat.HasAPI() && hash.Equal(fp, cat.APIFingerprint)
		}
	}

	return st, nil
}
