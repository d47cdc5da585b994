package cmd

import (
	"github.com/spf13/cobra"
)

func newUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "uninstall <mod>",
		Aliases: []string{"rm", "remove"},
		Short:   "Uninstall a mod",
		Long: `Uninstall deletes a mod's libraries from both the Mods and Disabled
directories. Dependencies are left in place, and files merged into the game
directory stay until restored with 'modinstaller vanilla restore'.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeCatalogMods,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, func(svc *ModService) (*Report, error) {
				return svc.Uninstall(cmd.Context(), args[0])
			})
		},
	}
}

func newEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "enable <mod>",
		Short:             "Move a disabled mod back into Mods",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeCatalogMods,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, func(svc *ModService) (*Report, error) {
				return svc.Enable(cmd.Context(), args[0])
			})
		},
	}
}

func newDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "disable <mod>",
		Short:             "Move a mod into Mods/Disabled",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeCatalogMods,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, func(svc *ModService) (*Report, error) {
				return svc.Disable(cmd.Context(), args[0])
			})
		},
	}
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update [mod...]",
		Short: "Reinstall stale mods",
		Long: `Update reinstalls mods whose installed file differs from the catalog.
With no arguments every stale mod is updated. Dependencies are not expanded.`,
		ValidArgsFunction: completeCatalogMods,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, func(svc *ModService) (*Report, error) {
				return svc.Update(cmd.Context(), args)
			})
		},
	}
}

// runMutation builds the service, runs fn and prints its report, even when
// fn fails part way.
func runMutation(cmd *cobra.Command, fn func(svc *ModService) (*Report, error)) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	svc, err := newModService(cmd, env)
	if err != nil {
		return err
	}

	report, err := fn(svc)
	if report != nil {
		if werr := writeOutput(env, report); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}
