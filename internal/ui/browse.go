package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sableglen/resonate/internal/render"
)

var titleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("230")).
	Background(lipgloss.Color("62")).
	Padding(0, 1)

// keyMap defines the key bindings for the browser.
type keyMap struct {
	up   key.Binding
	down key.Binding
	quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// recommendationItem wraps a joined pipeline entry to implement list.DefaultItem.
type recommendationItem struct {
	entry render.Entry
}

func (i recommendationItem) Title() string {
	return fmt.Sprintf("%05d · %.4f", i.entry.Recommendation.FileID, i.entry.Recommendation.Distance)
}

func (i recommendationItem) Description() string { return i.entry.File.RelPath() }
func (i recommendationItem) FilterValue() string { return i.entry.File.FileName }

// Model represents the browser state.
type Model struct {
	list list.Model
	keys keyMap
}

// NewModel builds a browser over the joined recommendation entries. Entries
// without a file record are skipped, matching the table renderer.
func NewModel(title string, entries []render.Entry) Model {
	items := make([]list.Item, 0, len(entries))
	for _, entry := range entries {
		if entry.File == nil {
			continue
		}
		items = append(items, recommendationItem{entry: entry})
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)

	return Model{list: l, keys: newKeyMap()}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.list.View()
}
