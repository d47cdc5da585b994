package types

import (
	"testing"
)

func TestInstallStateValidate(t *testing.T) {
	tests := []struct {
		name    string
		st      InstallState
		wantErr bool
	}{
		{"enabled valid", StateEnabled, false},
		{"disabled valid", StateDisabled, false},
		{"stale valid", StateStale, false},
		{"not installed valid", StateNotInstalled, false},
		{"empty invalid", "", true},
		{"invalid value", "broken", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.st.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("InstallState.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInstallStateIsInstalled(t *testing.T) {
	tests := []struct {
		st   InstallState
		want bool
	}{
		{StateEnabled, true},
		{StateDisabled, true},
		{StateStale, true},
		{StateNotInstalled, false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.st), func(t *testing.T) {
			if got := tt.st.IsInstalled(); got != tt.want {
				t.Errorf("InstallState.IsInstalled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseInstallState(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    InstallState
		wantErr bool
	}{
		{"lowercase", "stale", StateStale, false},
		{"uppercase", "ENABLED", StateEnabled, false},
		{"empty", "", "", true},
		{"invalid", "half", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInstallState(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseInstallState() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseInstallState() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStepKind(t *testing.T) {
	for _, k := range AllStepKinds() {
		if err := k.Validate(); err != nil {
			t.Errorf("%s.Validate() error = %v", k, err)
		}
	}

	if !StepRequired.AbortsPlan() {
		t.Error("required.AbortsPlan() should be true")
	}
	if !StepTarget.AbortsPlan() {
		t.Error("target.AbortsPlan() should be true")
	}
	if StepOptional.AbortsPlan() {
		t.Error("optional.AbortsPlan() should be false")
	}

	if _, err := ParseStepKind("Optional"); err != nil {
		t.Errorf("ParseStepKind() error = %v", err)
	}
	if _, err := ParseStepKind("maybe"); err == nil {
		t.Error("ParseStepKind() expected error for invalid kind")
	}
}

func TestParseLayout(t *testing.T) {
	tests := []struct {
		input   string
		want    Layout
		wantErr bool
	}{
		{"flat", LayoutFlat, false},
		{"DIRECT", LayoutDirect, false},
		{"nested", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLayout(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseLayout() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseLayout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsLibrary(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Foo.dll", true},
		{"Foo.DLL", true},
		{"Foo.dll.vanilla", false},
		{"readme.txt", false},
		{"dll", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLibrary(tt.name); got != tt.want {
				t.Errorf("IsLibrary(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
