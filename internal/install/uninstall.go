package install

import (
	"os"
	"path/filepath"

	"github.com/magegihk/modinstaller/internal/logging"
	"github.com/magegihk/modinstaller/internal/types"
)

// Uninstall deletes <key>.dll for each key from both the mods and the
// disabled directory. Missing files are ignored. It returns the removed paths.
func (in *Installer) Uninstall(files []string) ([]string, error) {
	logger := logging.OrDiscard(in.Logger)
	var removed []string

	for _, key := range files {
		for _, dir := range []string{in.Paths.ModsDir, in.Paths.DisabledDir} {
			if dir == "" {
				continue
			}
			path := filepath.Join(dir, key+types.LibraryExt)
			if err := os.Remove(path); err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return removed, ioErr(key, "remove", path, err)
			}
			logger.Debug("removed mod file", "path", path)
			removed = append(removed, path)
		}
	}

	return removed, nil
}
