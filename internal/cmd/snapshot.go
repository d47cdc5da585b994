package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/magegihk/modinstaller/internal/backup"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"snapshots"},
		Short:   "Inspect snapshots of installed mods",
		Long: `A snapshot of the installed mods is written before every install, uninstall,
enable, disable and update. Snapshots record what was installed; they do not
contain mod files.`,
	}

	cmd.AddCommand(newSnapshotListCmd())
	cmd.AddCommand(newSnapshotShowCmd())
	cmd.AddCommand(newSnapshotDeleteCmd())
	cmd.AddCommand(newSnapshotPruneCmd())

	return cmd
}

func newSnapshotListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, manager, err := snapshotManager(cmd)
			if err != nil {
				return err
			}
			return runSnapshotList(cmd, env, manager)
		},
	}
}

func newSnapshotShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the mods recorded in a snapshot",
		Long:  `Show prints a snapshot. Use 'latest' as the ID for the most recent one.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, manager, err := snapshotManager(cmd)
			if err != nil {
				return err
			}
			return runSnapshotShow(cmd, env, manager, args[0])
		},
	}
}

func newSnapshotDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, manager, err := snapshotManager(cmd)
			if err != nil {
				return err
			}
			if err := manager.Delete(args[0]); err != nil {
				return err
			}
			if !quiet {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Snapshot deleted: %s\n", args[0])
			}
			return nil
		},
	}
}

func newSnapshotPruneCmd() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove old snapshots",
		Long: `Prune deletes old snapshots, keeping only the most recent N.

By default, keeps the 30 most recent snapshots.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, manager, err := snapshotManager(cmd)
			if err != nil {
				return err
			}
			return runSnapshotPrune(cmd, env, manager, keep)
		},
	}

	cmd.Flags().IntVar(&keep, "keep", backup.DefaultKeepCount, "Number of snapshots to keep")

	return cmd
}

// snapshotManager opens the snapshot directory. It needs no install root.
func snapshotManager(cmd *cobra.Command) (*runtimeEnv, *backup.Manager, error) {
	env, err := loadEnv(cmd)
	if err != nil {
		return nil, nil, err
	}
	return env, backup.NewManager(env.settings.SnapshotDir, appVersion), nil
}

func runSnapshotList(cmd *cobra.Command, env *runtimeEnv, manager *backup.Manager) error {
	snapshots, err := manager.List()
	if err != nil {
		return err
	}

	if env.out.Structured() {
		return writeOutput(env, snapshots)
	}

	out := cmd.OutOrStdout()
	if len(snapshots) == 0 {
		_, _ = fmt.Fprintln(out, "No snapshots found.")
		_, _ = fmt.Fprintf(out, "Snapshot directory: %s\n", manager.BackupDir())
		return nil
	}

	_, _ = fmt.Fprintf(out, "Snapshots stored in %s:\n\n", manager.BackupDir())

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCreated\tMods\tNote\tSize")
	for _, s := range snapshots {
		note := s.Note
		if note == "" {
			note = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			s.ID,
			s.CreatedAt.Format("2006-01-02 15:04:05"),
			s.Mods,
			note,
			formatSize(s.Size),
		)
	}
	return w.Flush()
}

func runSnapshotShow(cmd *cobra.Command, env *runtimeEnv, manager *backup.Manager, id string) error {
	snap, err := manager.Get(id)
	if err != nil {
		return err
	}

	if env.out.Structured() {
		return writeOutput(env, snap)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Snapshot: %s\n", snap.ID)
	_, _ = fmt.Fprintf(out, "Created: %s\n", snap.CreatedAt.Format("2006-01-02 15:04:05"))
	if snap.Note != "" {
		_, _ = fmt.Fprintf(out, "Note: %s\n", snap.Note)
	}
	_, _ = fmt.Fprintf(out, "Modding API installed: %t\n\n", snap.State.APIInstalled)

	st := snap.ToState()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSTATE\tFILE")
	for _, m := range st.Records() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, st.Status(m.Name), m.FileKey)
	}
	return w.Flush()
}

func runSnapshotPrune(cmd *cobra.Command, env *runtimeEnv, manager *backup.Manager, keep int) error {
	result, err := manager.Prune(keep)
	if err != nil {
		return err
	}

	if env.out.Structured() {
		return writeOutput(env, result)
	}

	out := cmd.OutOrStdout()
	if len(result.Deleted) == 0 {
		_, _ = fmt.Fprintf(out, "No snapshots to prune. Keeping %d snapshots.\n", result.Kept)
		return nil
	}

	_, _ = fmt.Fprintf(out, "Pruned %d snapshot(s), keeping %d:\n", len(result.Deleted), result.Kept)
	for _, s := range result.Deleted {
		_, _ = fmt.Fprintf(out, "  - %s (%s)\n", s.ID, s.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// formatSize formats bytes into human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
