package errors

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestErrorIsByKind(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"download matches download", Download("Foo", "http://x", os.ErrNotExist), ErrDownload, true},
		{"download is not extract", Download("Foo", "http://x", nil), ErrExtract, false},
		{"wrapped io", fmt.Errorf("install: %w", IO("move", "/tmp/a", os.ErrPermission)), ErrIO, true},
		{"unknown mod", UnknownMod("Bar"), ErrUnknownMod, true},
		{"plain error", errors.New("boom"), ErrManifest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrapsCause(t *testing.T) {
	err := IO("remove", "/tmp/x.dll", os.ErrPermission)
	if !errors.Is(err, os.ErrPermission) {
		t.Error("expected cause to be reachable through Unwrap")
	}
}

func TestErrorMessage(t *testing.T) {
	err := Extract("Foo", "/tmp/Foo.zip", errors.New("zip: not a valid zip file"))
	msg := err.Error()
	for _, want := range []string{"extract error", "[Foo]", "/tmp/Foo.zip", "not a valid zip file"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(fmt.Errorf("wrap: %w", Manifest("parse", nil))); got != KindManifest {
		t.Errorf("KindOf() = %v, want %v", got, KindManifest)
	}
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Errorf("KindOf() = %v, want %v", got, KindUnknown)
	}
}

func TestRetryableAndSuggestions(t *testing.T) {
	err := Manifest("fetch", errors.New("timeout")).WithSuggestion("Run with --offline to use the cached manifest")
	if !IsRetryable(err) {
		t.Error("manifest errors should be retryable")
	}
	if IsRetryable(UnknownMod("x")) {
		t.Error("unknown mod errors should not be retryable")
	}
	if s := Suggestions(fmt.Errorf("load: %w", err)); len(s) != 1 {
		t.Errorf("Suggestions() = %v, want one entry", s)
	}
}
