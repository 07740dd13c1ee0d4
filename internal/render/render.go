// Package render prints settlement plans for people.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/mmynk/cashflow/internal/settlement"
)

// Mode selects the output style.
type Mode int

const (
	// ModeAuto styles the output when writing to a terminal and falls back
	// to plain text otherwise.
	ModeAuto Mode = iota
	ModePlain
	ModeMarkdown
	ModeStyled
)

// ParseMode maps a flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ModeAuto, nil
	case "plain", "text":
		return ModePlain, nil
	case "markdown", "md":
		return ModeMarkdown, nil
	case "styled", "pretty":
		return ModeStyled, nil
	}
	return ModeAuto, fmt.Errorf("unknown output mode %q", s)
}

const (
	nameWidth   = 15
	amountWidth = 8
	ruleWidth   = 50
)

// Summary writes the plan's transfers in the given mode.
func Summary(w io.Writer, reg *settlement.Registry, plan *settlement.Plan, mode Mode) error {
	if mode == ModeAuto {
		mode = ModePlain
		if isTerminal(w) {
			mode = ModeStyled
		}
	}

	switch mode {
	case ModeMarkdown:
		_, err := io.WriteString(w, Markdown(reg, plan))
		return err
	case ModeStyled:
		out, err := Styled(reg, plan)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		_, err := io.WriteString(w, Plain(reg, plan))
		return err
	}
}

// Plain renders a fixed-width table.
func Plain(reg *settlement.Registry, plan *settlement.Plan) string {
	var b strings.Builder
	b.WriteString("\n=== Settlement Summary ===\n")
	fmt.Fprintf(&b, "%-*s%-*s%-*s%s\n", nameWidth, "Payer", nameWidth, "Payee", amountWidth, "Amount", "Channel")
	b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	for _, in := range plan.Instructions(reg) {
		fmt.Fprintf(&b, "%-*s%-*s%-*d%s\n", nameWidth, in.Payer, nameWidth, in.Payee, amountWidth, in.Amount, in.Channel)
	}
	b.WriteString(footer(plan) + "\n")
	return b.String()
}

// Markdown renders the plan as a Markdown document.
func Markdown(reg *settlement.Registry, plan *settlement.Plan) string {
	var b strings.Builder
	b.WriteString("# Settlement Summary\n\n")
	if plan.Len() == 0 {
		b.WriteString("Nothing to settle.\n")
		return b.String()
	}

	b.WriteString("| Payer | Payee | Amount | Channel |\n")
	b.WriteString("|---|---|--:|---|\n")
	for _, in := range plan.Instructions(reg) {
		payee := escape(in.Payee)
		if in.Routed && in.Payee == reg.Treasurer().Name {
			payee += " *(relay)*"
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %s |\n", escape(in.Payer), payee, in.Amount, codeSpan(in.Channel))
	}
	b.WriteString("\n" + footer(plan) + "\n")
	return b.String()
}

// Styled renders the Markdown form for a terminal.
func Styled(reg *settlement.Registry, plan *settlement.Plan) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(Markdown(reg, plan))
	if err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}
	return out, nil
}

func footer(plan *settlement.Plan) string {
	if plan.Len() == 0 {
		return "Nothing to settle."
	}
	return fmt.Sprintf("%d transfers totalling %d in %d rounds, %d via the Treasurer.",
		plan.Len(), plan.Total(), plan.Rounds(), plan.TreasurerHops())
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// codeSpan wraps s in a backtick fence longer than any backtick run inside
// it. Pipes are escaped too: tables split cells before parsing code spans.
func codeSpan(s string) string {
	s = escape(s)
	fence := "`"
	for strings.Contains(s, fence) {
		fence += "`"
	}
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		s = " " + s + " "
	}
	return fence + s + fence
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
