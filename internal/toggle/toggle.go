// Package toggle moves a mod's library files between the active and
// disabled directories.
package toggle

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/magegihk/modinstaller/internal/catalog"
	moderrors "github.com/magegihk/modinstaller/internal/errors"
	"github.com/magegihk/modinstaller/internal/logging"
	"github.com/magegihk/modinstaller/internal/types"
)

// Result lists what a toggle did, as logical file names.
type Result struct {
	Moved   []string `json:"moved" yaml:"moved"`
	Skipped []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Toggler relocates mod files. The zero value does not log.
type Toggler struct {
	Logger *log.Logger
}

// Disable moves each file from activeDir into disabledDir.
func (t *Toggler) Disable(files []string, activeDir, disabledDir string) (*Result, error) {
	if err := os.MkdirAll(disabledDir, 0755); err != nil {
		return nil, moderrors.IO("create", disabledDir, err)
	}
	return t.move(files, activeDir, disabledDir)
}

// Enable moves each file from disabledDir back into activeDir.
func (t *Toggler) Enable(files []string, activeDir, disabledDir string) (*Result, error) {
	if err := os.MkdirAll(activeDir, 0755); err != nil {
		return nil, moderrors.IO("create", activeDir, err)
	}
	return t.move(files, disabledDir, activeDir)
}

// move relocates <key>.dll from src to dst for every key. A missing source is
// skipped and an existing destination is replaced. There is no rollback: a
// failure leaves earlier files moved.
func (t *Toggler) move(files []string, src, dst string) (*Result, error) {
	logger := logging.OrDiscard(t.Logger)
	res := &Result{}

	for _, key := range files {
		name := key + types.LibraryExt
		from := filepath.Join(src, name)
		to := filepath.Join(dst, name)

		if _, err := os.Stat(from); err != nil {
			if os.IsNotExist(err) {
				logger.Debug("source file missing, skipping", "file", from)
				res.Skipped = append(res.Skipped, key)
				continue
			}
			return res, moderrors.IO("stat", from, err)
		}

		if err := os.Remove(to); err != nil && !os.IsNotExist(err) {
			return res, moderrors.IO("remove", to, err)
		}
		if err := os.Rename(from, to); err != nil {
			return res, moderrors.IO("move", from, err)
		}
		logger.Debug("moved mod file", "from", from, "to", to)
		res.Moved = append(res.Moved, key)
	}

	return res, nil
}

// Disable moves files to disabledDir without logging.
func Disable(files []string, activeDir, disabledDir string) (*Result, error) {
	return (&Toggler{}).Disable(files, activeDir, disabledDir)
}

// Enable moves files to activeDir without logging.
func Enable(files []string, activeDir, disabledDir string) (*Result, error) {
	return (&Toggler{}).Enable(files, activeDir, disabledDir)
}

// Files returns the logical file names that belong to name: the descriptor's
// keys for a catalog mod, or the bare name for an unmanaged one.
func Files(cat *catalog.Catalog, name string) []string {
	if desc, ok := cat.Get(name); ok {
		return desc.FileKeys()
	}
	return []string{name}
}
