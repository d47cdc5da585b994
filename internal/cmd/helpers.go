package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/magegihk/modinstaller/internal/backup"
	"github.com/magegihk/modinstaller/internal/catalog"
	"github.com/magegihk/modinstaller/internal/config"
	moderrors "github.com/magegihk/modinstaller/internal/errors"
	"github.com/magegihk/modinstaller/internal/install"
	"github.com/magegihk/modinstaller/internal/interactive"
	"github.com/magegihk/modinstaller/internal/logging"
	"github.com/magegihk/modinstaller/internal/output"
	"github.com/magegihk/modinstaller/internal/resolve"
	"github.com/magegihk/modinstaller/internal/state"
)

// runtimeEnv is the resolved configuration for one command run.
type runtimeEnv struct {
	settings   *config.Settings
	configFile string
	paths      config.Paths
	logger     *log.Logger
	out        *output.Writer
}

// loadEnv reads the config file, applies global flag overrides and builds the
// logger. It does not validate: commands that touch the install call
// requireInstall.
func loadEnv(cmd *cobra.Command) (*runtimeEnv, error) {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}

	settings, used, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	applyFlagOverrides(settings)

	logger := logging.New(cmd.ErrOrStderr(), logLevel(settings.LogLevel))
	if used != "" {
		logger.Debug("using config", "file", used)
	}

	return &runtimeEnv{
		settings:   settings,
		configFile: used,
		paths:      settings.Paths(),
		logger:     logger,
		out:        output.NewWriter(cmd.OutOrStdout(), format),
	}, nil
}

// applyFlagOverrides lets global flags win over file and environment values.
func applyFlagOverrides(s *config.Settings) {
	if installRoot != "" {
		s.InstallRoot = installRoot
	}
	if manifestURL != "" {
		s.ManifestURL = manifestURL
	}
	if offline {
		s.Offline = true
	}
}

// logLevel resolves --verbose and --quiet against the configured level.
func logLevel(configured string) string {
	switch {
	case quiet:
		return "error"
	case verbose:
		return "debug"
	default:
		return configured
	}
}

// requireInstall validates the settings needed to work on an install root.
func (e *runtimeEnv) requireInstall() error {
	if err := config.Validate(e.settings); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// newModService wires the engine components from the settings.
func newModService(cmd *cobra.Command, env *runtimeEnv) (*ModService, error) {
	if err := env.requireInstall(); err != nil {
		return nil, err
	}
	s := env.settings

	loader := &catalog.Loader{
		Source: catalog.NewHTTPSource(s.ManifestURL, s.DownloadTimeout, s.Retries, env.logger),
		Cache:  &catalog.Cache{Dir: s.CacheDir},
		Logger: env.logger,
	}
	reader := &state.FilesystemReader{
		ModsDir:     env.paths.ModsDir,
		DisabledDir: env.paths.DisabledDir,
		APIDir:      env.paths.APIDir,
		APIMarker:   s.APIMarker,
		Logger:      env.logger,
	}
	downloader := install.NewHTTPDownloader(s.DownloadTimeout, s.Retries, env.logger)
	installer := install.New(env.paths, downloader, s.ResourceExtensions, env.logger)

	// Prompts go to stderr so structured output on stdout stays parseable.
	prompter := interactive.NewPrompterWithIO(cmd.InOrStdin(), cmd.ErrOrStderr())

	return NewModServiceWithDeps(
		loader,
		reader,
		installer,
		backup.NewManager(s.SnapshotDir, appVersion),
		prompter,
		env.paths,
		env.logger,
		ServiceOptions{
			AssumeYes:     assumeYes,
			Offline:       s.Offline,
			Policy:        resolve.PolicyShallow,
			KeepSnapshots: s.KeepSnapshots,
		},
	), nil
}

// writeOutput renders v in the selected format. Text output is suppressed in
// quiet mode.
func writeOutput(env *runtimeEnv, v interface{}) error {
	if quiet && !env.out.Structured() {
		return nil
	}
	if err := env.out.Write(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// PrintError writes err and any attached suggestions to w.
func PrintError(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "error: %v\n", err)
	for _, s := range moderrors.Suggestions(err) {
		_, _ = fmt.Fprintf(w, "  hint: %s\n", s)
	}
	if moderrors.IsRetryable(err) {
		_, _ = fmt.Fprintln(w, "  hint: the failure may be temporary; try again")
	}
}
