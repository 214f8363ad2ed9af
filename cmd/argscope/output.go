package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/funvibe/argscope/internal/pipeline"
)

var (
	accentColor = lipgloss.Color("#3B82F6")
	errorColor  = lipgloss.Color("#EF4444")
	mutedColor  = lipgloss.Color("#6B7280")

	pathStyle   = lipgloss.NewStyle().Bold(true)
	posStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	codeStyle   = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	calleeStyle = lipgloss.NewStyle().Foreground(accentColor)
	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type printer struct {
	w      io.Writer
	styled bool
}

func newPrinter(w io.Writer, styled bool) *printer {
	return &printer{w: w, styled: styled}
}

func (p *printer) render(style lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return style.Render(text)
}

// issues prints one line per issue: path:line:col: CODE name: message.
func (p *printer) issues(r result) {
	for _, e := range r.issues {
		fmt.Fprintf(p.w, "%s:%s: %s %s\n",
			p.render(pathStyle, r.path),
			p.render(posStyle, fmt.Sprintf("%d:%d", e.Pos.Line, e.Pos.Column)),
			p.render(codeStyle, string(e.Code)+" "+e.Code.Name()+":"),
			e.Message)
	}
}

// calls prints the binding of every call and the dynamically inferred
// parameters of every function.
func (p *printer) calls(r result) {
	if r.cached {
		fmt.Fprintf(p.w, "%s: %s\n", p.render(pathStyle, r.path), p.render(mutedStyle, "unchanged, calls not shown"))
		return
	}
	for _, c := range r.calls {
		fmt.Fprintf(p.w, "%s:%s: %s %s(%s)\n",
			p.render(pathStyle, r.path),
			p.render(posStyle, c.Pos.String()),
			p.render(mutedStyle, c.Kind),
			p.render(calleeStyle, c.Callee),
			p.params(c.Params))
	}
	for _, f := range r.dynamic {
		fmt.Fprintf(p.w, "%s:%s: %s %s(%s)\n",
			p.render(pathStyle, r.path),
			p.render(posStyle, f.Pos.String()),
			p.render(mutedStyle, "def"),
			p.render(calleeStyle, f.Name),
			p.params(f.Params))
	}
}

func (p *printer) params(ps []pipeline.ParamReport) string {
	parts := make([]string, len(ps))
	for i, param := range ps {
		types := strings.Join(param.Types, " | ")
		if types == "" {
			types = "?"
		}
		sep := ": "
		if param.Default {
			sep = "="
		}
		parts[i] = param.Name + sep + p.render(mutedStyle, types)
	}
	return strings.Join(parts, ", ")
}
