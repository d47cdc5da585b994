package cmd

import (
	"github.com/spf13/cobra"

	"github.com/magegihk/modinstaller/internal/resolve"
)

func newInstallCmd() *cobra.Command {
	var deep bool
	var files []string

	cmd := &cobra.Command{
		Use:   "install <mod>",
		Short: "Install a mod and its dependencies",
		Long: `Install resolves a mod's dependencies against what is already installed,
asks about each optional dependency, and installs the plan in order.

Required dependencies are installed first. A failed required dependency stops
the install; a failed optional one is reported and skipped. With --deep the
dependencies of dependencies are installed too.

With --file, local archives (.zip, .rar) are installed like downloaded ones and
any other file is copied into the Mods directory as-is.

Examples:
  modinstaller install "Benchwarp"
  modinstaller install "Randomizer 4" --deep
  modinstaller install --file ./MyMod.zip --file ./Extra.dll`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(files) > 0 {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		ValidArgsFunction: completeCatalogMods,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, func(svc *ModService) (*Report, error) {
				if len(files) > 0 {
					return svc.InstallFiles(cmd.Context(), files)
				}
				if deep {
					svc.opts.Policy = resolve.PolicyTransitive
				}
				return svc.Install(cmd.Context(), args[0])
			})
		},
	}

	cmd.Flags().BoolVar(&deep, "deep", false, "Also install dependencies of dependencies")
	cmd.Flags().StringArrayVar(&files, "file", nil, "Install a local archive or library instead of a catalog mod")

	return cmd
}

// completeCatalogMods completes mod names from the cached manifest without
// touching the network.
func completeCatalogMods(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	env, err := loadEnv(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	env.settings.Offline = true
	svc, err := newModService(cmd, env)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	res, err := svc.LoadCatalog(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return res.Catalog.Names(), cobra.ShellCompDirectiveNoFileComp
}
