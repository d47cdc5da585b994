// Package config loads modinstaller settings and derives the on-disk paths
// the engine works on.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the base name of the config file, without extension.
const FileName = "modinstaller"

// EnvPrefix prefixes environment overrides, e.g. MODINSTALLER_INSTALL_ROOT.
const EnvPrefix = "MODINSTALLER"

// Host layout below the install root.
var (
	ManagedSubdir  = filepath.Join("hollow_knight_Data", "Managed")
	ModsSubdir     = "Mods"
	DisabledSubdir = "Disabled"
)

// Settings holds every configurable value.
type Settings struct {
	InstallRoot        string        `mapstructure:"install_root" yaml:"install_root"`
	APIDir             string        `mapstructure:"api_dir" yaml:"api_dir,omitempty"`
	ModsDir            string        `mapstructure:"mods_dir" yaml:"mods_dir,omitempty"`
	DisabledDir        string        `mapstructure:"disabled_dir" yaml:"disabled_dir,omitempty"`
	ScratchDir         string        `mapstructure:"scratch_dir" yaml:"scratch_dir,omitempty"`
	CacheDir           string        `mapstructure:"cache_dir" yaml:"cache_dir,omitempty"`
	SnapshotDir        string        `mapstructure:"snapshot_dir" yaml:"snapshot_dir,omitempty"`
	ManifestURL        string        `mapstructure:"manifest_url" yaml:"manifest_url"`
	Offline            bool          `mapstructure:"offline" yaml:"offline,omitempty"`
	DownloadTimeout    time.Duration `mapstructure:"download_timeout" yaml:"download_timeout,omitempty"`
	Retries            int           `mapstructure:"retries" yaml:"retries,omitempty"`
	ResourceExtensions []string      `mapstructure:"resource_extensions" yaml:"resource_extensions,omitempty"`
	APIMarker          string        `mapstructure:"api_marker" yaml:"api_marker,omitempty"`
	LogLevel           string        `mapstructure:"log_level" yaml:"log_level,omitempty"`
	KeepSnapshots      int           `mapstructure:"keep_snapshots" yaml:"keep_snapshots,omitempty"`
}

// Paths are the directories the engine reads and mutates.
type Paths struct {
	InstallRoot string
	APIDir      string
	ModsDir     string
	DisabledDir string
	ScratchDir  string
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	cacheDir := filepath.Join(os.TempDir(), FileName, "cache")
	if dir, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(dir, FileName)
	}
	snapshotDir := filepath.Join(os.TempDir(), FileName, "snapshots")
	if dir, err := os.UserConfigDir(); err == nil {
		snapshotDir = filepath.Join(dir, FileName, "snapshots")
	}

	return Settings{
		ScratchDir:         filepath.Join(os.TempDir(), FileName),
		CacheDir:           cacheDir,
		SnapshotDir:        snapshotDir,
		DownloadTimeout:    10 * time.Minute,
		Retries:            3,
		ResourceExtensions: []string{".txt", ".md"},
		APIMarker:          "Assembly-CSharp.dll",
		LogLevel:           "info",
		KeepSnapshots:      30,
	}
}

// Dir returns the per-user config directory.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads settings from the config file and the environment.
//
// When path is empty, modinstaller.{yaml,toml,json} is searched in the
// current directory and then the per-user config directory; a missing file
// is not an error. It returns the settings and the file used, if any.
func Load(path string) (*Settings, string, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("install_root", d.InstallRoot)
	v.SetDefault("api_dir", d.APIDir)
	v.SetDefault("mods_dir", d.ModsDir)
	v.SetDefault("disabled_dir", d.DisabledDir)
	v.SetDefault("scratch_dir", d.ScratchDir)
	v.SetDefault("cache_dir", d.CacheDir)
	v.SetDefault("snapshot_dir", d.SnapshotDir)
	v.SetDefault("manifest_url", d.ManifestURL)
	v.SetDefault("offline", d.Offline)
	v.SetDefault("download_timeout", d.DownloadTimeout)
	v.SetDefault("retries", d.Retries)
	v.SetDefault("resource_extensions", d.ResourceExtensions)
	v.SetDefault("api_marker", d.APIMarker)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("keep_snapshots", d.KeepSnapshots)

	if path != "" {
		v.SetConfigFile(expandHome(path))
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, "", fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	s.InstallRoot = expandHome(s.InstallRoot)
	return &s, v.ConfigFileUsed(), nil
}

// Paths derives the engine directories from the install root. Explicit
// settings override each derived value.
func (s *Settings) Paths() Paths {
	p := Paths{
		InstallRoot: s.InstallRoot,
		APIDir:      expandHome(s.APIDir),
		ModsDir:     expandHome(s.ModsDir),
		DisabledDir: expandHome(s.DisabledDir),
		ScratchDir:  expandHome(s.ScratchDir),
	}
	if p.APIDir == "" {
		p.APIDir = filepath.Join(s.InstallRoot, ManagedSubdir)
	}
	if p.ModsDir == "" {
		p.ModsDir = filepath.Join(p.APIDir, ModsSubdir)
	}
	if p.DisabledDir == "" {
		p.DisabledDir = filepath.Join(p.ModsDir, DisabledSubdir)
	}
	return p
}

// Save writes the settings as YAML to path, creating parent directories.
func Save(s *Settings, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
