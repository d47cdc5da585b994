package install

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nwaples/rardecode/v2"
)

// Extractor fully decompresses an archive into a directory.
type Extractor interface {
	Extract(ctx context.Context, archive, dst string) error
}

var (
	zipMagic = []byte("PK\x03\x04")
	rarMagic = []byte("Rar!\x1a\x07")
)

// ArchiveExtractor handles zip and rar archives. The codec is chosen from
// the file's leading bytes, falling back to its extension.
type ArchiveExtractor struct{}

// Extract implements Extractor. Entries whose path would leave dst are rejected.
func (ArchiveExtractor) Extract(ctx context.Context, archive, dst string) error {
	kind, err := detectArchive(archive)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}

	switch kind {
	case "rar":
		return extractRar(ctx, archive, dst)
	default:
		return extractZip(ctx, archive, dst)
	}
}

func detectArchive(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, 8)
	n, _ := io.ReadFull(f, head)
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, zipMagic):
		return "zip", nil
	case bytes.HasPrefix(head, rarMagic):
		return "rar", nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return "zip", nil
	case ".rar":
		return "rar", nil
	}
	return "", fmt.Errorf("unrecognised archive format: %s", filepath.Base(path))
}

func extractZip(ctx context.Context, archive, dst string) error {
	// Entry names are checked by writeEntry, so insecure paths are not fatal here.
	r, err := zip.OpenReader(archive)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return fmt.Errorf("failed to open zip: %w", err)
	}
	defer func() { _ = r.Close() }()

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := writeEntry(dst, f.Name, f.FileInfo().IsDir(), func() (io.ReadCloser, error) {
			return f.Open()
		})
		if err != nil {
			return fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractRar(ctx context.Context, archive, dst string) error {
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	r, err := rardecode.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to open rar: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		hdr, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read rar header: %w", err)
		}

		err = writeEntry(dst, hdr.Name, hdr.IsDir, func() (io.ReadCloser, error) {
			return io.NopCloser(r), nil
		})
		if err != nil {
			return fmt.Errorf("failed to extract %s: %w", hdr.Name, err)
		}
	}
}

// writeEntry materialises one archive entry below dst.
func writeEntry(dst, name string, isDir bool, open func() (io.ReadCloser, error)) error {
	target, err := safeJoin(dst, name)
	if err != nil {
		return err
	}

	if isDir {
		return os.MkdirAll(target, 0755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	rc, err := open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	out, err := os.OpenFile(target, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// safeJoin resolves an archive entry name below root, accepting either
// slash style and rejecting names that escape root.
func safeJoin(root, name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", fmt.Errorf("entry %q has an absolute path", name)
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry %q escapes the extraction directory", name)
	}
	return filepath.Join(root, clean), nil
}
