package install

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	moderrors "github.com/magegihk/modinstaller/internal/errors"
	"github.com/magegihk/modinstaller/internal/types"
)

// Backup is an original host file preserved by MergeDir.
type Backup struct {
	Path     string `json:"path" yaml:"path"`
	Original string `json:"original" yaml:"original"`
}

// ListBackups finds every .vanilla file below root, in lexical order.
func ListBackups(root string) ([]Backup, error) {
	var out []Backup
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), types.BackupSuffix) {
			return nil
		}
		out = append(out, Backup{Path: path, Original: strings.TrimSuffix(path, types.BackupSuffix)})
		return nil
	})
	if err != nil {
		return nil, moderrors.IO("walk", root, err)
	}
	return out, nil
}

// RestoreBackups moves backups back over the modded files. Each entry of
// paths may name the backup or the original, absolute or relative to root.
// With no paths, every backup below root is restored.
func RestoreBackups(root string, paths ...string) ([]Backup, error) {
	var todo []Backup
	if len(paths) == 0 {
		all, err := ListBackups(root)
		if err != nil {
			return nil, err
		}
		todo = all
	} else {
		for _, p := range paths {
			if !filepath.IsAbs(p) {
				p = filepath.Join(root, p)
			}
			original := strings.TrimSuffix(p, types.BackupSuffix)
			todo = append(todo, Backup{Path: original + types.BackupSuffix, Original: original})
		}
	}

	var restored []Backup
	for _, b := range todo {
		if _, err := os.Stat(b.Path); err != nil {
			return restored, moderrors.IO("stat", b.Path, err)
		}
		if err := os.Remove(b.Original); err != nil && !os.IsNotExist(err) {
			return restored, moderrors.IO("remove", b.Original, err)
		}
		if err := os.Rename(b.Path, b.Original); err != nil {
			return restored, moderrors.IO("restore", b.Path, err)
		}
		restored = append(restored, b)
	}
	return restored, nil
}
