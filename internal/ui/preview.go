package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/corpeningc/keepours/internal/conflict"
	"github.com/corpeningc/keepours/internal/textfile"
)

// PreviewModel shows what resolving one file would change, without writing it.
type PreviewModel struct {
	filePath string
	content  string
	result   conflict.Result
	viewport viewport.Model
	ready    bool
	loaded   bool
	err      error

	// Styles
	titleStyle   lipgloss.Style
	addedStyle   lipgloss.Style
	removedStyle lipgloss.Style
	contextStyle lipgloss.Style
	errorStyle   lipgloss.Style
	helpStyle    lipgloss.Style
}

type previewLoadedMsg struct {
	before string
	after  string
	result conflict.Result
	err    error
}

func NewPreviewModel(filePath string) PreviewModel {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle()

	return PreviewModel{
		filePath: filePath,
		viewport: vp,

		titleStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true),

		addedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")),

		removedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),

		contextStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),

		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),

		helpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
	}
}

func (m PreviewModel) Init() tea.Cmd {
	return m.loadPreview()
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 3 // title + summary + help
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight)
			m.viewport.Style = lipgloss.NewStyle()
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight
		}

		if m.loaded {
			m.viewport.SetContent(m.content)
		}

	case previewLoadedMsg:
		m.loaded = true
		m.err = msg.err
		if m.err == nil {
			m.result = msg.result
			m.content = m.formatPreview(msg.before, msg.after)
			if m.ready {
				m.viewport.SetContent(m.content)
			}
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit

		case "j", "down":
			m.viewport.LineDown(1)

		case "k", "up":
			m.viewport.LineUp(1)

		case "d", "ctrl+d":
			m.viewport.HalfViewDown()

		case "u", "ctrl+u":
			m.viewport.HalfViewUp()

		case "f", "pgdn":
			m.viewport.ViewDown()

		case "b", "pgup":
			m.viewport.ViewUp()

		case "g", "home":
			m.viewport.GotoTop()

		case "G", "end":
			m.viewport.GotoBottom()
		}
		return m, nil
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m PreviewModel) View() string {
	title := m.titleStyle.Render("Preview - " + m.filePath)

	if m.err != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			m.errorStyle.Render("Error loading file: "+m.err.Error()),
			"",
			m.helpStyle.Render("q: quit"),
		)
	}

	if !m.ready || !m.loaded {
		return "Loading preview..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.summary(),
		m.viewport.View(),
		m.helpStyle.Render("j/k: line by line | d/u: half page | f/b: full page | g/G: top/bottom | q: quit"),
	)
}

func (m PreviewModel) summary() string {
	if !m.result.Modified {
		if m.result.Dropped > 0 {
			return m.contextStyle.Render("Only stray markers found; the file would not be rewritten.")
		}
		return m.contextStyle.Render("No conflict markers; the file would not be rewritten.")
	}
	return m.contextStyle.Render(fmt.Sprintf("%s, %s dropped",
		plural(m.result.Conflicts, "conflict"), plural(m.result.Dropped, "line")))
}

func (m PreviewModel) loadPreview() tea.Cmd {
	return func() tea.Msg {
		f, err := textfile.Read(m.filePath)
		if err != nil {
			return previewLoadedMsg{err: err}
		}
		before := strings.Join(f.Lines, "")
		after, res := conflict.ResolveText(before)
		if !res.Modified {
			// Without a start marker nothing is written, stray lines included.
			after = before
		}
		return previewLoadedMsg{before: before, after: after, result: res}
	}
}

func (m PreviewModel) formatPreview(before, after string) string {
	if before == after {
		return m.contextStyle.Render("No differences.")
	}

	return RenderDiff(before, after, DiffStyles{
		Removed: m.removedStyle,
		Added:   m.addedStyle,
		Context: m.contextStyle,
	})
}

func ShowPreview(filePath string) error {
	m := NewPreviewModel(filePath)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
