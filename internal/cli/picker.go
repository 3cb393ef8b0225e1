package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/matzehuels/gantry/pkg/store"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// errPickerCancelled is returned when the user quits the picker without
// selecting a snapshot.
var errPickerCancelled = errors.New("selection cancelled")

// pickSnapshot lists the store's snapshots and lets the user pick one
// interactively.
func pickSnapshot(ctx context.Context, st store.Store) (uuid.UUID, error) {
	snaps, err := st.List(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("list snapshots: %w", err)
	}
	if len(snaps) == 0 {
		return uuid.Nil, errors.New("no snapshots stored")
	}

	model := newSnapshotListModel(snaps)
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return uuid.Nil, fmt.Errorf("run picker: %w", err)
	}

	m := final.(snapshotListModel)
	if m.selected == nil {
		return uuid.Nil, errPickerCancelled
	}
	return m.selected.ID, nil
}

// snapshotListModel is the bubbletea model for interactive snapshot selection.
type snapshotListModel struct {
	snaps    []*store.Snapshot
	cursor   int
	selected *store.Snapshot
	height   int
	offset   int
}

func newSnapshotListModel(snaps []*store.Snapshot) snapshotListModel {
	return snapshotListModel{snaps: snaps, height: 15}
}

func (m snapshotListModel) Init() tea.Cmd {
	return nil
}

func (m snapshotListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.snaps)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			m.selected = m.snaps[m.cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m snapshotListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Snapshot"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.snaps) {
		end = len(m.snaps)
	}

	for i := m.offset; i < end; i++ {
		s := m.snaps[i]
		line := fmt.Sprintf("%-30s %s", s.Name, s.CreatedAt.Local().Format("2006-01-02 15:04"))

		if i == m.cursor {
			b.WriteString("▸ " + listSelectedStyle.Render(line))
		} else {
			b.WriteString("  " + listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if len(m.snaps) > m.height {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("%d/%d", m.cursor+1, len(m.snaps))))
	}
	return b.String()
}
