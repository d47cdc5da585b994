// Package types provides type-safe constants shared across the mod engine.
//
// This package centralizes the enumerated types used by the scanner, the
// resolver and the installer, replacing magic strings with typed constants
// that provide validation and parsing.
package types

import (
	"fmt"
	"strings"
)

// InstallState is the derived install state of a mod name.
type InstallState string

const (
	// StateNotInstalled means no file of the mod is present.
	StateNotInstalled InstallState = "not-installed"
	// StateEnabled means the mod is present in the active directory.
	StateEnabled InstallState = "enabled"
	// StateDisabled means the mod is present only in the disabled directory.
	StateDisabled InstallState = "disabled"
	// StateStale means an enabled, catalog-matched mod whose fingerprint
	// no longer matches the catalog.
	StateStale InstallState = "stale"
)

// AllInstallStates returns all valid install states.
func AllInstallStates() []InstallState {
	return []InstallState{StateNotInstalled, StateEnabled, StateDisabled, StateStale}
}

// Validate checks if the InstallState is a valid value.
func (s InstallState) Validate() error {
	switch s {
	case StateNotInstalled, StateEnabled, StateDisabled, StateStale:
		return nil
	case "":
		return fmt.Errorf("install state is required")
	default:
		return fmt.Errorf("invalid install state '%s' (must be not-installed, enabled, disabled, or stale)", s)
	}
}

// String returns the string representation of the InstallState.
func (s InstallState) String() string {
	return string(s)
}

// IsInstalled returns true if any file of the mod is present.
func (s InstallState) IsInstalled() bool {
	return s != StateNotInstalled && s != ""
}

// ParseInstallState parses a string into an InstallState.
func ParseInstallState(s string) (InstallState, error) {
	st := InstallState(strings.ToLower(s))
	if err := st.Validate(); err != nil {
		return "", err
	}
	return st, nil
}

// StepKind is the role of a step in an install plan.
type StepKind string

const (
	// StepRequired installs a required dependency.
	StepRequired StepKind = "required"
	// StepOptional installs a dependency the author suggests.
	StepOptional StepKind = "optional"
	// StepTarget installs the requested mod itself.
	StepTarget StepKind = "target"
)

// AllStepKinds returns all valid step kinds.
func AllStepKinds() []StepKind {
	return []StepKind{StepRequired, StepOptional, StepTarget}
}

// Validate checks if the StepKind is a valid value.
func (k StepKind) Validate() error {
	switch k {
	case StepRequired, StepOptional, StepTarget:
		return nil
	case "":
		return fmt.Errorf("step kind is required")
	default:
		return fmt.Errorf("invalid step kind '%s' (must be required, optional, or target)", k)
	}
}

// String returns the string representation of the StepKind.
func (k StepKind) String() string {
	return string(k)
}

// AbortsPlan returns true if a failure of this step must stop the plan.
func (k StepKind) AbortsPlan() bool {
	return k == StepRequired || k == StepTarget
}

// ParseStepKind parses a string into a StepKind.
func ParseStepKind(s string) (StepKind, error) {
	k := StepKind(strings.ToLower(s))
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

// Layout is the shape of an extracted archive.
type Layout string

const (
	// LayoutFlat has no library file at the archive root; libraries live in
	// subdirectories and other subdirectories are host resources.
	LayoutFlat Layout = "flat"
	// LayoutDirect has library files at the archive root.
	LayoutDirect Layout = "direct"
)

// Validate checks if the Layout is a valid value.
func (l Layout) Validate() error {
	switch l {
	case LayoutFlat, LayoutDirect:
		return nil
	case "":
		return fmt.Errorf("layout is required")
	default:
		return fmt.Errorf("invalid layout '%s' (must be flat or direct)", l)
	}
}

// String returns the string representation of the Layout.
func (l Layout) String() string {
	return string(l)
}

// ParseLayout parses a string into a Layout.
func ParseLayout(s string) (Layout, error) {
	l := Layout(strings.ToLower(s))
	if err := l.Validate(); err != nil {
		return "", err
	}
	return l, nil
}

// LibraryExt is the extension of managed library files.
const LibraryExt = ".dll"

// IsLibrary reports whether name has the library extension, ignoring case.
func IsLibrary(name string) bool {
	return len(name) >= len(LibraryExt) && strings.EqualFold(name[len(name)-len(LibraryExt):], LibraryExt)
}

// BackupSuffix is appended to a host file preserved by a merge.
const BackupSuffix = ".vanilla"
