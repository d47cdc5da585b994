package install

import (
	"path/filepath"
	"testing"
)

func TestMergeDirBacksUpOnce(t *testing.T) {
	tmpDir := t.TempDir()
	host := filepath.Join(tmpDir, "host", "data")
	writeFile(t, filepath.Join(host, "R.txt"), "original")
	writeFile(t, filepath.Join(host, "keep.txt"), "untouched")

	first := filepath.Join(tmpDir, "first")
	writeFile(t, filepath.Join(first, "R.txt"), "mod one")
	writeFile(t, filepath.Join(first, "sub", "new.txt"), "added")

	backups, err := MergeDir(first, host)
	if err != nil {
		t.Fatalf("MergeDir() error = %v", err)
	}
	if len(backups) != 1 || backups[0] != filepath.Join(host, "R.txt.vanilla") {
		t.Errorf("backups = %v", backups)
	}
	if got := readFile(t, filepath.Join(host, "R.txt.vanilla")); got != "original" {
		t.Errorf("R.txt.vanilla = %q, want original bytes", got)
	}
	if got := readFile(t, filepath.Join(host, "R.txt")); got != "mod one" {
		t.Errorf("R.txt = %q, want mod one", got)
	}
	if got := readFile(t, filepath.Join(host, "sub", "new.txt")); got != "added" {
		t.Errorf("sub/new.txt = %q", got)
	}
	if got := readFile(t, filepath.Join(host, "keep.txt")); got != "untouched" {
		t.Errorf("keep.txt = %q", got)
	}
	if exists(first) {
		t.Error("source directory should be removed")
	}

	second := filepath.Join(tmpDir, "second")
	writeFile(t, filepath.Join(second, "R.txt"), "mod two")

	backups, err = MergeDir(second, host)
	if err != nil {
		t.Fatalf("second MergeDir() error = %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("second merge created backups %v", backups)
	}
	if got := readFile(t, filepath.Join(host, "R.txt")); got != "mod two" {
		t.Errorf("R.txt = %q, want mod two", got)
	}
	// Only one generation is kept: the very first original.
	if got := readFile(t, filepath.Join(host, "R.txt.vanilla")); got != "original" {
		t.Errorf("R.txt.vanilla = %q, want original bytes", got)
	}
	if exists(filepath.Join(host, "R.txt.vanilla.vanilla")) {
		t.Error("backups must not stack")
	}
}

func TestResourceName(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  string
	}{
		{"readme.txt", "Foo", "readme(Foo).txt"},
		{"CHANGELOG.md", "Modding API", "CHANGELOG(Modding API).md"},
		{"LICENSE", "Foo", "LICENSE(Foo)"},
		{"a.b.txt", "Foo", "a.b(Foo).txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resourceName(tt.name, tt.label); got != tt.want {
				t.Errorf("resourceName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContainsLibrary(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "with", "deep", "x.DLL"), "x")
	writeFile(t, filepath.Join(tmpDir, "without", "x.txt"), "x")

	tests := []struct {
		dir  string
		want bool
	}{
		{"with", true},
		{"without", false},
	}

	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			got, err := containsLibrary(filepath.Join(tmpDir, tt.dir))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("containsLibrary() = %v, want %v", got, tt.want)
			}
		})
	}
}
