package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/magegihk/modinstaller/internal/config"
)

// initOptions configures runInit.
type initOptions struct {
	OutputPath  string
	InstallRoot string
	ManifestURL string
	Force       bool
	// SearchRoots overrides where game installs are looked for.
	SearchRoots []string
}

func newInitCmd() *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a config file",
		Long: `Create a modinstaller config file.

The game install root is taken from --install-root, or detected from the usual
Steam library locations. When several installs are found you are asked to pick
one; when none are found you are asked for the path.

Examples:
  modinstaller init                                    # Detect the game
  modinstaller init --install-root ~/Games/Hollow\ Knight
  modinstaller init --manifest https://example.com/ModLinks.xml
  modinstaller init --path ./modinstaller.yaml        # Custom output location`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.InstallRoot = installRoot
			opts.ManifestURL = manifestURL
			return runInit(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.OutputPath, "path", "", "Output path for the config file")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite an existing config file")

	return cmd
}

// runInit executes the init workflow.
func runInit(stdin io.Reader, stdout, stderr io.Writer, opts initOptions) error {
	reader := bufio.NewReader(stdin)

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = defaultConfigPath()
	}

	if _, err := os.Stat(outputPath); err == nil && !opts.Force {
		_, _ = fmt.Fprintf(stderr, "Config file already exists at %s\n", outputPath)
		_, _ = fmt.Fprintf(stdout, "Overwrite? [y/N]: ")
		answer, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read input: %w", err)
		}
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			_, _ = fmt.Fprintln(stdout, "Aborted.")
			return nil
		}
	}

	root := opts.InstallRoot
	if root == "" {
		selected, err := selectInstallRoot(reader, stdout, config.Candidates(opts.SearchRoots...))
		if err != nil {
			return err
		}
		root = selected
	}

	settings := config.Defaults()
	settings.InstallRoot = root
	settings.ManifestURL = opts.ManifestURL

	if err := config.Validate(&settings); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		_, _ = fmt.Fprintf(stderr, "Warning: %s is not a directory\n", root)
	}

	if err := config.Save(&settings, outputPath); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "\nCreated %s\n", outputPath)
	_, _ = fmt.Fprintln(stdout, "\nNext steps:")
	step := 1
	if settings.ManifestURL == "" {
		_, _ = fmt.Fprintf(stdout, "  %d. Set manifest_url in the config file\n", step)
		step++
	}
	_, _ = fmt.Fprintf(stdout, "  %d. Run 'modinstaller api install' to install the Modding API\n", step)
	_, _ = fmt.Fprintf(stdout, "  %d. Run 'modinstaller status' to browse mods\n", step+1)

	return nil
}

// selectInstallRoot picks the install root from the detected candidates,
// asking when there is not exactly one.
func selectInstallRoot(reader *bufio.Reader, stdout io.Writer, candidates []string) (string, error) {
	switch len(candidates) {
	case 0:
		_, _ = fmt.Fprint(stdout, "No game install found. Enter the install root: ")
		answer, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return "", fmt.Errorf("no install root given")
		}
		return answer, nil
	case 1:
		_, _ = fmt.Fprintf(stdout, "Found game install: %s\n", candidates[0])
		return candidates[0], nil
	}

	_, _ = fmt.Fprintln(stdout, "\nSelect a game install:")
	for i, dir := range candidates {
		_, _ = fmt.Fprintf(stdout, "  %d. %s\n", i+1, dir)
	}
	_, _ = fmt.Fprintf(stdout, "\nSelect [1-%d]: ", len(candidates))

	answer, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	answer = strings.TrimSpace(answer)

	num, err := strconv.Atoi(answer)
	if err != nil || num < 1 || num > len(candidates) {
		return "", fmt.Errorf("invalid selection: %s", answer)
	}
	return candidates[num-1], nil
}

// defaultConfigPath returns the default config file location.
func defaultConfigPath() string {
	dir, err := config.Dir()
	if err != nil {
		return config.FileName + ".yaml"
	}
	return filepath.Join(dir, config.FileName+".yaml")
}
