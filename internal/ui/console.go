package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/corpeningc/keepours/internal/run"
)

// Console prints one line per skipped, resolved or failed file and a
// completion line. It implements run.Observer.
type Console struct {
	w io.Writer

	// DryRun switches the per-file wording to "would resolve".
	DryRun bool

	successStyle lipgloss.Style
	pathStyle    lipgloss.Style
	mutedStyle   lipgloss.Style
	errorStyle   lipgloss.Style
	titleStyle   lipgloss.Style
}

var _ run.Observer = (*Console)(nil)

// NewConsole binds styles to w, so colors are dropped when w is not a terminal.
func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)

	return &Console{
		w: w,

		successStyle: r.NewStyle().
			Foreground(lipgloss.Color("46")),

		pathStyle: r.NewStyle().
			Bold(true),

		mutedStyle: r.NewStyle().
			Foreground(lipgloss.Color("245")),

		errorStyle: r.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),

		titleStyle: r.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true),
	}
}

func (c *Console) OnSkipped(fr run.FileResult) {
	fmt.Fprintln(c.w, c.mutedStyle.Render("Skipping binary or unreadable file: "+fr.RelPath))
}

func (c *Console) OnResolved(fr run.FileResult) {
	verb := "Resolving conflicts in:"
	if c.DryRun {
		verb = "Would resolve conflicts in:"
	}
	fmt.Fprintf(c.w, "%s %s %s\n",
		c.successStyle.Render(verb),
		c.pathStyle.Render(fr.RelPath),
		c.mutedStyle.Render(fmt.Sprintf("(%s, %s dropped)",
			plural(fr.Conflicts, "conflict"), plural(fr.Dropped, "line"))),
	)
}

func (c *Console) OnFailed(fr run.FileResult) {
	fmt.Fprintln(c.w, c.errorStyle.Render(fmt.Sprintf("Failed to rewrite %s: %v", fr.RelPath, fr.Err)))
}

func (c *Console) OnDone(r run.Report) {
	s := r.Summary

	parts := []string{
		fmt.Sprintf("%d resolved", s.Resolved),
		fmt.Sprintf("%d unchanged", s.Unchanged),
		fmt.Sprintf("%d skipped", s.Skipped),
	}
	if s.Declined > 0 {
		parts = append(parts, fmt.Sprintf("%d declined", s.Declined))
	}
	if s.Failed > 0 {
		parts = append(parts, c.errorStyle.Render(fmt.Sprintf("%d failed", s.Failed)))
	}
	if s.BytesRemoved > 0 {
		parts = append(parts, humanize.Bytes(uint64(s.BytesRemoved))+" removed")
	}
	if len(r.Staged) > 0 {
		parts = append(parts, fmt.Sprintf("%d staged", len(r.Staged)))
	}
	if r.Branch != "" {
		parts = append(parts, "kept ours ("+r.Branch+")")
	}

	title := "Conflict resolution complete."
	if r.DryRun {
		title = "Conflict resolution complete (dry run, nothing written)."
	}
	fmt.Fprintf(c.w, "%s %s\n", c.titleStyle.Render(title), c.mutedStyle.Render(strings.Join(parts, ", ")))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
