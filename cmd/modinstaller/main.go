package main

import (
	"os"

	"github.com/magegihk/modinstaller/internal/cmd"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := cmd.Execute(version, commit, date); err != nil {
		cmd.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
