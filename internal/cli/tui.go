package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/schemagraph/pkg/graph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	paneStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// =============================================================================
// browserModel - interactive node browser
// =============================================================================

// browserModel lists the nodes of a graph on the left and the selected
// node's rows and edges on the right. Tab cycles through the outgoing edges,
// enter follows the highlighted one and backspace returns to where it came
// from.
type browserModel struct {
	g       *graph.Graph
	nodes   []*graph.Node
	index   map[string]int
	cursor  int
	offset  int
	height  int
	edge    int   // highlighted outgoing edge of the current node, -1 for none
	history []int // cursor positions to return to
}

func newBrowserModel(g *graph.Graph) browserModel {
	nodes := g.Nodes()
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}
	return browserModel{g: g, nodes: nodes, index: index, height: 15, edge: -1}
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(m.cursor - 1)
		case "down", "j":
			m.move(m.cursor + 1)
		case "home", "g":
			m.move(0)
		case "end", "G":
			m.move(len(m.nodes) - 1)
		case "tab":
			if out := m.outgoing(); len(out) > 0 {
				m.edge = (m.edge + 1) % len(out)
			}
		case "enter":
			out := m.outgoing()
			if m.edge < 0 || m.edge >= len(out) {
				break
			}
			if i, ok := m.index[out[m.edge].To]; ok {
				m.history = append(m.history, m.cursor)
				m.move(i)
			}
		case "backspace", "b":
			if n := len(m.history); n > 0 {
				prev := m.history[n-1]
				m.history = m.history[:n-1]
				m.move(prev)
			}
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-6, 5)
		m.scroll()
	}
	return m, nil
}

// move selects node i, clamped to the list, and resets the edge highlight.
func (m *browserModel) move(i int) {
	if len(m.nodes) == 0 {
		return
	}
	m.cursor = min(max(i, 0), len(m.nodes)-1)
	m.edge = -1
	m.scroll()
}

func (m *browserModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m browserModel) current() *graph.Node {
	if len(m.nodes) == 0 {
		return nil
	}
	return m.nodes[m.cursor]
}

func (m browserModel) outgoing() []graph.Edge {
	n := m.current()
	if n == nil {
		return nil
	}
	return m.g.Outgoing(n.ID)
}

func (m browserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Schema Graph"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab edge  ⏎ follow  ⌫ back  q quit"))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.listView(), " ", m.detailView()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.nodes))))
	return b.String()
}

func (m browserModel) listView() string {
	var b strings.Builder
	end := min(m.offset+m.height, len(m.nodes))
	for i := m.offset; i < end; i++ {
		n := m.nodes[i]
		cursor := "  "
		style := listNormalStyle
		switch {
		case i == m.cursor:
			cursor = "▸ "
			style = listSelectedStyle
		case n.Synthetic || n.Degraded():
			style = listDimStyle
		}
		b.WriteString(cursor + style.Render(n.ID) + " " + kindStyle(n.Kind).Render(n.Kind.String()))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return paneStyle.Render(b.String())
}

func (m browserModel) detailView() string {
	n := m.current()
	if n == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(kindStyle(n.Kind).Bold(true).Render(n.ID))
	b.WriteString("  " + listDimStyle.Render(n.Summary()) + "\n")
	if n.Description != "" {
		b.WriteString(listDimStyle.Render(n.Description) + "\n")
	}

	switch n.Kind {
	case graph.KindObject:
		for _, p := range n.Properties {
			b.WriteString(fmt.Sprintf("  %s: %s\n", p.Name, p.Label))
		}
		if ap := n.AdditionalProperties; ap != nil {
			b.WriteString(fmt.Sprintf("  [key]: %s\n", ap.Label))
		}
	case graph.KindAnyOf:
		for _, a := range n.Alternatives {
			b.WriteString(fmt.Sprintf("  | %s\n", a.Label))
		}
	case graph.KindSimple:
		if len(n.Enum) > 0 {
			b.WriteString("  enum: " + strings.Join(n.Enum, ", ") + "\n")
		}
	}

	if out := m.outgoing(); len(out) > 0 {
		b.WriteString("\n" + styleHeader.Render("outgoing") + "\n")
		for i, e := range out {
			line := fmt.Sprintf("%s %s %s (%s)", iconArrow, e.To, listDimStyle.Render(e.Label), e.Kind)
			if i == m.edge {
				line = listSelectedStyle.Render("▸ " + line)
			} else {
				line = "  " + line
			}
			b.WriteString(line + "\n")
		}
	}
	if in := m.g.Incoming(n.ID); len(in) > 0 {
		b.WriteString("\n" + styleHeader.Render("incoming") + "\n")
		for _, e := range in {
			b.WriteString(fmt.Sprintf("  %s ← %s\n", e.From, listDimStyle.Render(e.Label)))
		}
	}
	return paneStyle.Render(strings.TrimRight(b.String(), "\n"))
}
