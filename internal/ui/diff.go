package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/corpeningc/keepours/internal/conflict"
)

type DiffStyles struct {
	Removed lipgloss.Style
	Added   lipgloss.Style
	Context lipgloss.Style
}

// RenderDiff shows a line diff of before and after, one line per row
// prefixed with "- ", "+ " or "  ". Line terminators are not shown.
func RenderDiff(before, after string, st DiffStyles) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix, style := "  ", st.Context
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix, style = "- ", st.Removed
		case diffmatchpatch.DiffInsert:
			prefix, style = "+ ", st.Added
		}
		for _, l := range conflict.SplitLines(d.Text) {
			sb.WriteString(style.Render(prefix + strings.TrimRight(l, "\r\n")))
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
