package install

import (
	"context"
	"path/filepath"
	"testing"
)

func TestRestoreBackupsRoundTrip(t *testing.T) {
	paths := testPaths(t)
	target := filepath.Join(paths.InstallRoot, "Data", "R.txt")
	writeFile(t, target, "original")

	archive := makeZip(t, filepath.Join(t.TempDir(), "pack.zip"), map[string]string{
		"Libs/A.dll": "a",
		"Data/R.txt": "modded",
	})
	if _, err := New(paths, nil, nil, nil).InstallArchive(context.Background(), "Pack", archive, false); err != nil {
		t.Fatal(err)
	}

	backups, err := ListBackups(paths.InstallRoot)
	if err != nil {
		t.Fatalf("ListBackups() error = %v", err)
	}
	if len(backups) != 1 || backups[0].Original != target {
		t.Fatalf("ListBackups() = %+v", backups)
	}

	restored, err := RestoreBackups(paths.InstallRoot)
	if err != nil {
		t.Fatalf("RestoreBackups() error = %v", err)
	}
	if len(restored) != 1 {
		t.Errorf("restored = %+v", restored)
	}
	if got := readFile(t, target); got != "original" {
		t.Errorf("R.txt = %q, want original", got)
	}
	if exists(target + ".vanilla") {
		t.Error("backup should be consumed by restore")
	}
}

func TestRestoreBackupsByPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "mod a")
	writeFile(t, filepath.Join(root, "a.txt.vanilla"), "orig a")
	writeFile(t, filepath.Join(root, "b.txt"), "mod b")
	writeFile(t, filepath.Join(root, "b.txt.vanilla"), "orig b")

	if _, err := RestoreBackups(root, "a.txt"); err != nil {
		t.Fatalf("RestoreBackups() error = %v", err)
	}
	if got := readFile(t, filepath.Join(root, "a.txt")); got != "orig a" {
		t.Errorf("a.txt = %q", got)
	}
	if got := readFile(t, filepath.Join(root, "b.txt")); got != "mod b" {
		t.Error("b.txt should not be restored")
	}

	if _, err := RestoreBackups(root, filepath.Join(root, "b.txt.vanilla")); err != nil {
		t.Fatalf("RestoreBackups() error = %v", err)
	}
	if got := readFile(t, filepath.Join(root, "b.txt")); got != "orig b" {
		t.Errorf("b.txt = %q", got)
	}

	if _, err := RestoreBackups(root, "missing.txt"); err == nil {
		t.Error("restoring a missing backup should fail")
	}
}
