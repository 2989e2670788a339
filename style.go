package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"locobasic/pkg/compiler"
	"locobasic/pkg/config"
)

var (
	errorColor = lipgloss.Color("#EF4444")
	warnColor  = lipgloss.Color("#F59E0B")
	mutedColor = lipgloss.Color("#6B7280")
)

// diagPrinter writes diagnostics with the offending source line and a
// caret under the reported text.
type diagPrinter struct {
	w io.Writer

	errorStyle  lipgloss.Style
	warnStyle   lipgloss.Style
	sourceStyle lipgloss.Style
	caretStyle  lipgloss.Style
}

func useColor(w io.Writer, mode string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newDiagPrinter(w io.Writer, colorMode string) *diagPrinter {
	r := lipgloss.NewRenderer(w)
	if useColor(w, colorMode) {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return &diagPrinter{
		w:           w,
		errorStyle:  r.NewStyle().Foreground(errorColor).Bold(true),
		warnStyle:   r.NewStyle().Foreground(warnColor).Bold(true),
		sourceStyle: r.NewStyle().Foreground(mutedColor),
		caretStyle:  r.NewStyle().Foreground(errorColor),
	}
}

func (p *diagPrinter) warnings(ds []compiler.Diagnostic, src string) {
	for _, d := range ds {
		p.print(p.warnStyle.Render("warning"), d, src)
	}
}

func (p *diagPrinter) failure(err error, src string) {
	d, ok := compiler.DiagnosticOf(err)
	if !ok {
		fmt.Fprintf(p.w, "%s: %v\n", p.errorStyle.Render("error"), err)
		return
	}
	p.print(p.errorStyle.Render(errorLabel(err)), d, src)
}

func (p *diagPrinter) print(label string, d compiler.Diagnostic, src string) {
	fmt.Fprintf(p.w, "%s: %s\n", label, d)
	line, col, ok := sourceLine(src, d.Pos)
	if !ok {
		return
	}
	width := max(1, min(len(d.Text), len(line)-col))
	fmt.Fprintf(p.w, "  %s\n  %s%s\n", p.sourceStyle.Render(line), strings.Repeat(" ", col), p.caretStyle.Render(strings.Repeat("^", width)))
}

func errorLabel(err error) string {
	var lexErr *compiler.LexError
	var parseErr *compiler.ParseError
	var genErr *compiler.CodeGenError
	switch {
	case errors.As(err, &lexErr):
		return "lex error"
	case errors.As(err, &parseErr):
		return "parse error"
	case errors.As(err, &genErr):
		return "codegen error"
	}
	return "error"
}

// sourceLine returns the physical line containing byte offset pos and the
// column of pos within it.
func sourceLine(src string, pos int) (string, int, bool) {
	if pos < 0 || pos > len(src) {
		return "", 0, false
	}
	start := strings.LastIndexByte(src[:pos], '\n') + 1
	end := strings.IndexByte(src[pos:], '\n')
	if end < 0 {
		end = len(src)
	} else {
		end += pos
	}
	line := src[start:end]
	if strings.TrimSpace(line) == "" {
		return "", 0, false
	}
	return line, pos - start, true
}
