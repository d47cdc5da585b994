package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	outputFormat string
	configPath   string
	verbose      bool
	quiet        bool
	installRoot  string
	offline      bool
	manifestURL  string
	assumeYes    bool

	// Build information, set by Execute.
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// Execute runs the root command. SIGINT cancels in-flight downloads and
// extraction through the command context.
func Execute(version, commit, date string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return newRootCmd(version, commit, date).ExecuteContext(ctx)
}

func newRootCmd(version, commit, date string) *cobra.Command {
	appVersion, appCommit, appDate = version, commit, date

	rootCmd := &cobra.Command{
		Use:   "modinstaller",
		Short: "Install and manage Hollow Knight mods",
		Long: `modinstaller installs mods for Hollow Knight from a mod manifest.

It resolves dependencies, installs the Modding API, and enables, disables or
uninstalls mods by moving their libraries between the Mods and Disabled
directories.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, yaml")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")
	rootCmd.PersistentFlags().StringVar(&installRoot, "install-root", "", "Game install root (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "Use the cached manifest instead of fetching")
	rootCmd.PersistentFlags().StringVar(&manifestURL, "manifest", "", "Manifest URL or path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to every confirmation")

	// Add subcommands
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newInstallCmd())
	rootCmd.AddCommand(newUninstallCmd())
	rootCmd.AddCommand(newEnableCmd())
	rootCmd.AddCommand(newDisableCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newAPICmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newSnapshotCmd())
	rootCmd.AddCommand(newVanillaCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	// Register completion function for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	return rootCmd
}
