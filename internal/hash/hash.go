// Package hash computes and compares content fingerprints of mod files.
package hash

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"os"
	"strings"

	moderrors "github.com/magegihk/modinstaller/internal/errors"
)

// Fingerprint returns the lowercase hex SHA-1 digest of the file at path.
// The file is re-read on every call.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", moderrors.IO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", moderrors.IO("read", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Equal compares two hex digests case-insensitively.
func Equal(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Matches reports whether the file at path has the wanted digest.
func Matches(path, want string) (bool, error) {
	got, err := Fingerprint(path)
	if err != nil {
		return false, err
	}
	return Equal(got, want), nil
}
