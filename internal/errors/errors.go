// Package errors defines the typed failures surfaced by the mod engine.
//
// Every failure carries a Kind so callers can branch on the category
// (errors.Is(err, ErrDownload)) while still printing a single readable
// message with the mod name, path and underlying cause.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an engine failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindManifest
	KindUnknownMod
	KindDownload
	KindExtract
	KindIO
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindManifest:
		return "manifest"
	case KindUnknownMod:
		return "unknown mod"
	case KindDownload:
		return "download"
	case KindExtract:
		return "extract"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is an engine failure with enough context to present a decision.
type Error struct {
	Kind        Kind     `json:"kind"`
	Op          string   `json:"op,omitempty"`
	Mod         string   `json:"mod,omitempty"`
	Path        string   `json:"path,omitempty"`
	Err         error    `json:"-"`
	Retryable   bool     `json:"retryable"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Sentinels for errors.Is comparisons.
var (
	ErrManifest   = &Error{Kind: KindManifest}
	ErrUnknownMod = &Error{Kind: KindUnknownMod}
	ErrDownload   = &Error{Kind: KindDownload}
	ErrExtract    = &Error{Kind: KindExtract}
	ErrIO         = &Error{Kind: KindIO}
)

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(" error")
	if e.Mod != "" {
		fmt.Fprintf(&b, " [%s]", e.Mod)
	}
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithSuggestion appends a hint shown to the user below the message.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestions = append(e.Suggestions, s)
	return e
}

// Manifest reports a manifest that could not be fetched or parsed.
func Manifest(op string, err error) *Error {
	return &Error{Kind: KindManifest, Op: op, Err: err, Retryable: true}
}

// UnknownMod reports a name absent from the catalog.
func UnknownMod(name string) *Error {
	return &Error{Kind: KindUnknownMod, Mod: name, Op: "not in catalog"}
}

// Download reports a transport failure for a mod archive.
func Download(mod, link string, err error) *Error {
	return &Error{Kind: KindDownload, Mod: mod, Op: "fetch", Path: link, Err: err, Retryable: true}
}

// Extract reports an archive that could not be decompressed.
func Extract(mod, path string, err error) *Error {
	return &Error{Kind: KindExtract, Mod: mod, Op: "extract", Path: path, Err: err}
}

// IO reports a filesystem failure during scan, install or toggle.
func IO(op, path string, err error) *Error {
	return &Error{Kind: KindIO, Op: op, Path: path, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Suggestions returns the hints attached to the first *Error in err's chain.
func Suggestions(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Suggestions
	}
	return nil
}

// IsRetryable reports whether the failure may succeed on another attempt.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}
