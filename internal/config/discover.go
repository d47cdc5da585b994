package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// steamLibraries are the usual Steam library locations relative to a drive
// root or home directory.
var steamLibraries = []string{
	filepath.Join("Program Files (x86)", "Steam", "steamapps", "common"),
	filepath.Join("Program Files", "Steam", "steamapps", "common"),
	filepath.Join("Steam", "steamapps", "common"),
	filepath.Join(".steam", "steam", "steamapps", "common"),
	filepath.Join(".local", "share", "Steam", "steamapps", "common"),
	filepath.Join("Library", "Application Support", "Steam", "steamapps", "common"),
}

// GameDirName is the host application's folder inside a Steam library.
const GameDirName = "Hollow Knight"

// Candidates returns existing install roots found below the given search
// roots. With no roots, the home directory and platform drive roots are used.
func Candidates(roots ...string) []string {
	if len(roots) == 0 {
		roots = defaultSearchRoots()
	}

	seen := make(map[string]bool)
	var found []string
	for _, root := range roots {
		for _, lib := range steamLibraries {
			dir := filepath.Join(root, lib, GameDirName)
			if seen[dir] {
				continue
			}
			seen[dir] = true
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				found = append(found, dir)
			}
		}
	}
	return found
}

func defaultSearchRoots() []string {
	var roots []string
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, home)
	}
	if runtime.GOOS == "windows" {
		for _, drive := range "CDEFGH" {
			roots = append(roots, string(drive)+`:\`)
		}
	} else {
		roots = append(roots, "/")
	}
	return roots
}
