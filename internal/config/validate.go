package config

import (
	"fmt"
	"strings"
)

// validLogLevels are the level names accepted by the logger.
var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// ValidationError represents a settings validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the settings for required fields and valid values.
func Validate(s *Settings) error {
	var errs []string

	if s.InstallRoot == "" {
		errs = append(errs, ValidationError{
			Field:   "install_root",
			Message: "install root is required (set it in the config file, MODINSTALLER_INSTALL_ROOT, or --install-root)",
		}.Error())
	}

	if s.ScratchDir == "" {
		errs = append(errs, ValidationError{Field: "scratch_dir", Message: "scratch directory is required"}.Error())
	}

	if s.DownloadTimeout <= 0 {
		errs = append(errs, ValidationError{Field: "download_timeout", Message: "must be positive"}.Error())
	}

	if s.Retries < 0 {
		errs = append(errs, ValidationError{Field: "retries", Message: "must not be negative"}.Error())
	}

	if s.KeepSnapshots < 0 {
		errs = append(errs, ValidationError{Field: "keep_snapshots", Message: "must not be negative"}.Error())
	}

	for i, ext := range s.ResourceExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("resource_extensions[%d]", i),
				Message: fmt.Sprintf("invalid extension '%s' (must start with '.')", ext),
			}.Error())
		}
	}

	if s.APIMarker == "" {
		errs = append(errs, ValidationError{Field: "api_marker", Message: "api marker file name is required"}.Error())
	}

	if !validLogLevels[strings.ToLower(s.LogLevel)] {
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("invalid level '%s' (must be debug, info, warn, or error)", s.LogLevel),
		}.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
