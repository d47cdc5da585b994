package install

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/magegihk/modinstaller/internal/types"
)

// copyFile copies src to dst, replacing dst and creating its parent.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}

// moveFile renames src to dst, copying when the rename crosses devices.
func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// MergeDir moves every file below src into the same relative path below dst
// and then removes src.
//
// When a destination file already exists it is renamed to <file>.vanilla if
// no such backup exists yet, and deleted otherwise. Only the first original
// is ever kept. The returned paths are the backups created by this call.
func MergeDir(src, dst string) ([]string, error) {
	var backups []string

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}

		if _, err := os.Stat(target); err == nil {
			backup := target + types.BackupSuffix
			if _, err := os.Stat(backup); os.IsNotExist(err) {
				if err := os.Rename(target, backup); err != nil {
					return fmt.Errorf("failed to back up %s: %w", target, err)
				}
				backups = append(backups, backup)
			} else if err := os.Remove(target); err != nil {
				return fmt.Errorf("failed to replace %s: %w", target, err)
			}
		}

		return moveFile(path, target)
	})
	if err != nil {
		return backups, err
	}

	return backups, os.RemoveAll(src)
}

// containsLibrary reports whether any file below dir is a library.
func containsLibrary(dir string) (bool, error) {
	found := false
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && types.IsLibrary(d.Name()) {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	return found, err
}

// resourceName embeds label before the extension of name: readme.txt with
// label Foo becomes readme(Foo).txt.
func resourceName(name, label string) string {
	ext := filepath.Ext(name)
	base := name[:len(name)-len(ext)]
	return fmt.Sprintf("%s(%s)%s", base, label, ext)
}
