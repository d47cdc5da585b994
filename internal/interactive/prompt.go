// Package interactive provides interactive prompts for user confirmation.
package interactive

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/magegihk/modinstaller/internal/resolve"
	"github.com/magegihk/modinstaller/internal/types"
)

// Response represents the user's response to a prompt.
type Response int

const (
	ResponseYes  Response = iota // Proceed with this step
	ResponseNo                   // Skip this step
	ResponseAll                  // Approve all remaining steps
	ResponseQuit                 // Abort
)

// Prompter handles interactive prompts for plan confirmation.
type Prompter struct {
	in         io.Reader
	out        io.Writer
	scanner    *bufio.Scanner
	approveAll bool
}

// NewPrompter creates a prompter with stdin/stdout.
func NewPrompter() *Prompter {
	return NewPrompterWithIO(os.Stdin, os.Stdout)
}

// NewPrompterWithIO creates a prompter with custom input/output (for testing).
func NewPrompterWithIO(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:      in,
		out:     out,
		scanner: bufio.NewScanner(in),
	}
}

// IsTerminal checks if stdin is a terminal (TTY).
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// prompt displays a question and reads the response.
func (p *Prompter) prompt(format string, args ...interface{}) Response {
	if p.approveAll {
		return ResponseYes
	}

	_, _ = fmt.Fprintf(p.out, format, args...)
	_, _ = fmt.Fprint(p.out, " [y/n/a/q] ")

	if !p.scanner.Scan() {
		return ResponseQuit
	}

	input := strings.ToLower(strings.TrimSpace(p.scanner.Text()))
	switch input {
	case "y", "yes":
		return ResponseYes
	case "n", "no":
		return ResponseNo
	case "a", "all":
		p.approveAll = true
		return ResponseYes
	case "q", "quit":
		return ResponseQuit
	default:
		// Default to no for invalid input
		_, _ = fmt.Fprintln(p.out, "Invalid response, skipping.")
		return ResponseNo
	}
}

// Confirm asks a yes/no question. Anything but yes, including EOF, is no.
func (p *Prompter) Confirm(format string, args ...interface{}) bool {
	_, _ = fmt.Fprintf(p.out, format, args...)
	_, _ = fmt.Fprint(p.out, " [y/n] ")
	if !p.scanner.Scan() {
		return false
	}
	input := strings.ToLower(strings.TrimSpace(p.scanner.Text()))
	return input == "y" || input == "yes"
}

// PromptForPlan shows the plan, asks about each optional step and then asks
// for final confirmation. It returns the plan without declined optional
// steps, and whether to proceed.
func (p *Prompter) PromptForPlan(plan *resolve.Plan) (*resolve.Plan, bool) {
	_, _ = fmt.Fprintf(p.out, "\nInstall plan for %s:\n", plan.Target)
	for _, s := range plan.Steps {
		_, _ = fmt.Fprintf(p.out, "  %s %s (%s)\n", stepSymbol(s.Kind), s.Name, s.Kind)
	}

	var declined []string
	optional := plan.Optional()
	if len(optional) > 0 {
		_, _ = fmt.Fprintln(p.out, "\nOptional dependencies:")
	}
	for _, s := range optional {
		switch p.prompt("    -> Install %s?", s.Name) {
		case ResponseNo:
			_, _ = fmt.Fprintf(p.out, "    %s Skipped\n", skipSymbol)
			declined = append(declined, s.Name)
		case ResponseQuit:
			_, _ = fmt.Fprintln(p.out, "\nAborted.")
			return nil, false
		}
	}

	filtered := plan.Without(declined...)

	_, _ = fmt.Fprintln(p.out, "\nSummary:")
	_, _ = fmt.Fprintf(p.out, "  Will install: %d mods\n", len(filtered.Steps))
	if len(declined) > 0 {
		_, _ = fmt.Fprintf(p.out, "  Skipped: %d\n", len(declined))
	}

	if !p.Confirm("\nProceed with install?") {
		_, _ = fmt.Fprintln(p.out, "Aborted.")
		return filtered, false
	}

	return filtered, true
}

// Symbols for output
const (
	requiredSymbol = "+"
	optionalSymbol = "?"
	targetSymbol   = "*"
	skipSymbol     = "-"
)

func stepSymbol(kind types.StepKind) string {
	switch kind {
	case types.StepRequired:
		return requiredSymbol
	case types.StepOptional:
		return optionalSymbol
	case types.StepTarget:
		return targetSymbol
	default:
		return " "
	}
}
