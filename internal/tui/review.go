// Package tui provides the interactive review screen: a scrollable
// list of unreviewed findings that can be marked accepted or rejected
// before the decisions are written to the ledger in one batch.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathanvale/side-quest-community-intel-cache/internal/browser"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/finding"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/review"
)

// Outcome is what the caller applies to the ledger after the program
// exits. Empty batches mean the user quit without confirming.
type Outcome struct {
	Accepted []string
	Rejected []string
}

type Model struct {
	findings []finding.Finding
	marks    map[string]review.Decision
	cursor   int

	filterInput textinput.Model
	filtering   bool
	filter      string

	width  int
	height int

	confirmed bool
}

// NewModel builds the review model over the given findings.
func NewModel(findings []finding.Finding) Model {
	ti := textinput.New()
	ti.Placeholder = "Filter by topic or title..."
	ti.Prompt = filterPromptStyle.Render("/ ")
	ti.CharLimit = 80

	return Model{
		findings:    findings,
		marks:       make(map[string]review.Decision),
		filterInput: ti,
		width:       80,
		height:      24,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// visible returns the findings matching the current filter.
func (m Model) visible() []finding.Finding {
	if m.filter == "" {
		return m.findings
	}
	needle := strings.ToLower(m.filter)
	var out []finding.Finding
	for _, f := range m.findings {
		if strings.Contains(strings.ToLower(f.Topic), needle) ||
			strings.Contains(strings.ToLower(f.Title), needle) {
			out = append(out, f)
		}
	}
	return out
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			switch msg.String() {
			case "enter", "esc":
				m.filtering = false
				if msg.String() == "esc" {
					m.filterInput.SetValue("")
				}
				m.filter = m.filterInput.Value()
				m.cursor = 0
				return m, nil
			default:
				var cmd tea.Cmd
				m.filterInput, cmd = m.filterInput.Update(msg)
				m.filter = m.filterInput.Value()
				return m, cmd
			}
		}

		visible := m.visible()
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter":
			m.confirmed = true
			return m, tea.Quit
		case "j", "down":
			if m.cursor < len(visible)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "a":
			if f, ok := m.current(visible); ok {
				m.marks[f.Fingerprint] = review.Accepted
			}
		case "r":
			if f, ok := m.current(visible); ok {
				m.marks[f.Fingerprint] = review.Rejected
			}
		case "u":
			if f, ok := m.current(visible); ok {
				delete(m.marks, f.Fingerprint)
			}
		case "o":
			if f, ok := m.current(visible); ok {
				_ = browser.Open(f.URL)
			}
		case "/":
			m.filtering = true
			m.filterInput.Focus()
			return m, textinput.Blink
		}
	}
	return m, nil
}

func (m Model) current(visible []finding.Finding) (finding.Finding, bool) {
	if m.cursor < 0 || m.cursor >= len(visible) {
		return finding.Finding{}, false
	}
	return visible[m.cursor], true
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Unreviewed findings"))
	b.WriteString("\n\n")

	visible := m.visible()
	if len(visible) == 0 {
		b.WriteString(itemMetaStyle.Render("  No findings match."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderList(visible))
	}

	b.WriteString("\n")
	if m.filtering {
		b.WriteString(m.filterInput.View())
	} else {
		b.WriteString(m.statusBar(visible))
	}
	return b.String()
}

// Each item renders as title, meta, summary plus a separator line.
const itemHeight = 4

func (m Model) renderList(visible []finding.Finding) string {
	rows := (m.height - 6) / itemHeight
	if rows < 1 {
		rows = 1
	}

	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := start + rows
	if end > len(visible) {
		end = len(visible)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(m.renderItem(visible[i], i == m.cursor))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderItem(f finding.Finding, selected bool) string {
	width := m.width
	if width < 20 {
		width = 80
	}

	mark := "   "
	switch m.marks[f.Fingerprint] {
	case review.Accepted:
		mark = markAcceptStyle.Render(" + ")
	case review.Rejected:
		mark = markRejectStyle.Render(" - ")
	}

	title := truncateStr(f.Title, width-8)
	if selected {
		title = itemSelectedStyle.Render("> " + title)
	} else {
		title = itemTitleStyle.Render("  " + title)
	}

	meta := "  " + itemTopicStyle.Render(f.Topic) + " " +
		itemMetaStyle.Render(fmt.Sprintf("· %s · score %d", f.Type, f.Score))

	summary := "  " + summaryStyle.Render(truncateStr(f.Summary, width-4))

	return mark + title + "\n " + meta + "\n " + summary + "\n"
}

func (m Model) statusBar(visible []finding.Finding) string {
	accepted, rejected := 0, 0
	for _, d := range m.marks {
		switch d {
		case review.Accepted:
			accepted++
		case review.Rejected:
			rejected++
		}
	}
	left := fmt.Sprintf("%d findings · %d accepted · %d rejected", len(visible), accepted, rejected)
	help := "a accept · r reject · u undo · o open · / filter · enter apply · q quit"
	return statusBarStyle.Render(left + "   " + help)
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// Run launches the review screen and returns the batches the user
// confirmed. Quitting without confirming returns empty batches.
func Run(findings []finding.Finding) (Outcome, error) {
	p := tea.NewProgram(NewModel(findings), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Outcome{}, err
	}

	m, ok := final.(Model)
	if !ok || !m.confirmed {
		return Outcome{}, nil
	}

	var out Outcome
	// Preserve finding order in the recorded batches.
	for _, f := range m.findings {
		switch m.marks[f.Fingerprint] {
		case review.Accepted:
			out.Accepted = append(out.Accepted, f.Fingerprint)
		case review.Rejected:
			out.Rejected = append(out.Rejected, f.Fingerprint)
		}
	}
	return out, nil
}
