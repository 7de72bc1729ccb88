// Package ui renders stacker's terminal output: status and error messages
// on stderr, the branch tree and branch info on stdout.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/papapumpkin/stacker/internal/ansi"
	"github.com/papapumpkin/stacker/internal/maintenance"
	"github.com/papapumpkin/stacker/internal/rebase"
)

// Printer writes status messages, colored when enabled.
type Printer struct {
	w     io.Writer
	color bool
}

// New returns a Printer writing to stderr.
func New(color bool) *Printer {
	return &Printer{w: os.Stderr, color: color}
}

// NewWriter returns a Printer writing to w.
func NewWriter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color}
}

func (p *Printer) paint(code, s string) string {
	return ansi.Wrap(p.color, code, s)
}

// Error prints msg as a failure.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.w, "%s%s\n", p.paint(ansi.Red+ansi.Bold, "error: "), msg)
}

// Warn prints msg as a warning.
func (p *Printer) Warn(msg string) {
	fmt.Fprintf(p.w, "%s%s\n", p.paint(ansi.Yellow+ansi.Bold, "⚠ "), msg)
}

// Info prints msg dimmed.
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.w, p.paint(ansi.Dim, msg))
}

// Success prints msg with a check mark.
func (p *Printer) Success(msg string) {
	fmt.Fprintf(p.w, "%s%s\n", p.paint(ansi.Green+ansi.Bold, "✓ "), msg)
}

// RebaseSteps prints one line per branch visited by a rebase run.
func (p *Printer) RebaseSteps(steps []rebase.Step) {
	for _, s := range steps {
		switch s.Outcome {
		case rebase.Rebased:
			fmt.Fprintf(p.w, "%s %s onto %s\n", p.paint(ansi.Green, "↻ rebased"), s.Branch, s.Parent)
		case rebase.Archived:
			fmt.Fprintf(p.w, "%s %s\n", p.paint(ansi.Dim, "– skipped archived"), s.Branch)
		default:
			fmt.Fprintf(p.w, "%s %s\n", p.paint(ansi.Dim, "· up to date"), s.Branch)
		}
	}
}

// Actions prints the result of a maintenance pass.
func (p *Printer) Actions(actions []maintenance.Action) {
	if len(actions) == 0 {
		p.Info("nothing to do")
		return
	}
	for _, a := range actions {
		switch a.Kind {
		case maintenance.ActionSkipped:
			p.Warn(a.String())
		default:
			fmt.Fprintln(p.w, a.String())
		}
	}
}

// FormatBranchInfo renders a branch's parent and base, either for humans or
// NUL-delimited for scripts.
func FormatBranchInfo(info maintenance.Info, nul bool) string {
	if nul {
		return info.Parent + "\x00" + info.Base
	}
	return fmt.Sprintf("Parent branch: %s; Base revision: %s", info.Parent, info.Base)
}

// Confirm writes prompt to out and reads a yes/no answer from in. Anything
// but "y" or "yes" declines.
func Confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
