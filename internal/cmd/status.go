package cmd

import (
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"list", "ls"},
		Short:   "Show installed and available mods",
		Long: `Status lists every mod in the catalog and every library found in the Mods
and Disabled directories, with its install state:

  enabled        installed in Mods and matching the catalog
  stale          installed in Mods but its file differs from the catalog
  disabled       moved to Mods/Disabled
  not-installed  in the catalog only

The first line reports whether the installed Modding API matches the catalog.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd)
		},
	}
}

func runStatus(cmd *cobra.Command) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	svc, err := newModService(cmd, env)
	if err != nil {
		return err
	}

	report, err := svc.Status(cmd.Context())
	if err != nil {
		return err
	}
	return writeOutput(env, report)
}
