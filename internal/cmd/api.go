package cmd

import (
	"github.com/spf13/cobra"
)

func newAPICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api",
		Short: "Manage the Modding API",
		Long: `The Modding API replaces the game's Assembly-CSharp.dll. It is installed
like any other mod but its libraries go to the game's Managed directory, and
the original files are kept with a .vanilla suffix.`,
	}

	cmd.AddCommand(newAPIStatusCmd())
	cmd.AddCommand(newAPIInstallCmd())

	return cmd
}

func newAPIStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the installed Modding API against the catalog",
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

			status, err := svc.APIStatus(cmd.Context())
			if err != nil {
				return err
			}
			return writeOutput(env, status)
		},
	}
}

func newAPIInstallCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the Modding API",
		Long: `Install downloads and installs the Modding API unless the installed one
already matches the catalog. Use --force to reinstall it anyway.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, func(svc *ModService) (*Report, error) {
				return svc.InstallAPI(cmd.Context(), force)
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Reinstall even if the installed API matches")

	return cmd
}
