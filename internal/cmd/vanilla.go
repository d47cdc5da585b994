package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/magegihk/modinstaller/internal/install"
)

func newVanillaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vanilla",
		Short: "List or restore original game files",
		Long: `When a mod archive overwrites a game file, the original is kept next to it
with a .vanilla suffix. Only the first original is kept, so restoring always
returns the unmodded file.`,
	}

	cmd.AddCommand(newVanillaListCmd())
	cmd.AddCommand(newVanillaRestoreCmd())

	return cmd
}

func newVanillaListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List .vanilla backups under the install root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			svc, err := newModService(cmd, env)
			if err != nil {
				return err
			}

			backups, err := svc.Vanilla()
			if err != nil {
				return err
			}
			if env.out.Structured() {
				return writeOutput(env, backups)
			}

			out := cmd.OutOrStdout()
			if len(backups) == 0 {
				_, _ = fmt.Fprintln(out, "No vanilla backups found.")
				return nil
			}
			for _, b := range backups {
				_, _ = fmt.Fprintln(out, relTo(env.paths.InstallRoot, b.Original))
			}
			return nil
		},
	}
}

func newVanillaRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore [path...]",
		Short: "Restore original game files",
		Long: `Restore moves .vanilla backups back over the modded files. Paths may name the
backup or the original file, absolute or relative to the install root. With no
paths every backup is restored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			svc, err := newModService(cmd, env)
			if err != nil {
				return err
			}

			restored, err := svc.RestoreVanilla(args)
			if err != nil {
				return err
			}
			if env.out.Structured() {
				if restored == nil {
					restored = []install.Backup{}
				}
				return writeOutput(env, restored)
			}
			if quiet {
				return nil
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Restored %d file(s)\n", len(restored))
			for _, b := range restored {
				_, _ = fmt.Fprintf(out, "  %s\n", relTo(env.paths.InstallRoot, b.Original))
			}
			return nil
		},
	}
}

func relTo(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
