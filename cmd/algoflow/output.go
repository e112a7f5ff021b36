package main

import (
	"fmt"
	"io"

	"github.com/algoflow/judge/catalog"
	"github.com/algoflow/judge/grader"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorPass  = lipgloss.Color("#2CD7C7")
	colorFail  = lipgloss.Color("#F4D03F")
	colorError = lipgloss.Color("#E74C3C")
	colorTitle = lipgloss.Color("#20B9B4")
)

// printer renders output with a renderer bound to its writer, so colours are
// dropped when the writer is not a terminal
type printer struct {
	w    io.Writer
	pass lipgloss.Style
	fail lipgloss.Style
	err  lipgloss.Style
	head lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:    w,
		pass: r.NewStyle().Bold(true).Foreground(colorPass),
		fail: r.NewStyle().Bold(true).Foreground(colorFail),
		err:  r.NewStyle().Bold(true).Foreground(colorError),
		head: r.NewStyle().Bold(true).Foreground(colorTitle),
	}
}

func (p *printer) line(s string) {
	fmt.Fprintln(p.w, s)
}

func (p *printer) title(s string) {
	fmt.Fprintln(p.w, p.head.Render(s))
}

func (p *printer) result(r grader.Result) {
	switch {
	case r.Status.Gated():
		fmt.Fprintf(p.w, "%s %s\n", p.err.Render("[ERROR]"), r.Error)
	case r.Passed:
		s := fmt.Sprintf("%s Test %d: input=%s → output=%s", p.pass.Render("[PASS]"), r.Test, catalog.Render(r.Input), catalog.Render(r.Output))
		if r.Swaps != nil {
			s += fmt.Sprintf(" (swaps=%d)", *r.Swaps)
		}
		fmt.Fprintln(p.w, s)
	case r.Error != "":
		fmt.Fprintf(p.w, "%s Test %d: input=%s → %s\n", p.err.Render("[ERROR]"), r.Test, catalog.Render(r.Input), r.Error)
	default:
		fmt.Fprintf(p.w, "%s Test %d: input=%s → expected=%s, got=%s\n", p.fail.Render("[FAIL]"), r.Test,
			catalog.Render(r.Input), catalog.Render(r.Expected), catalog.Render(r.Output))
	}
}

func (p *printer) summary(passed, total int) {
	style := p.pass
	if total == 0 || passed != total {
		style = p.fail
	}
	fmt.Fprintln(p.w, style.Render(fmt.Sprintf("Passed %d/%d tests", passed, total)))
}
