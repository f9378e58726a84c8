package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/touchshell/touchshell/internal/shell"
)

// spaceItem is a list item for one space in the stack.
type spaceItem struct {
	info shell.SpaceInfo
}

func (i spaceItem) Title() string {
	marker := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("·")
	if i.info.Top {
		marker = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("▲")
	}
	return fmt.Sprintf("%s %d %s", marker, i.info.ID, i.info.AppID)
}

func (i spaceItem) Description() string {
	return fmt.Sprintf("%d view(s), home bar %s", len(i.info.Surfaces), i.info.HomeBar)
}

func (i spaceItem) FilterValue() string { return i.info.AppID }

// buildSpaceItems lists spaces top first, the way they are stacked on screen.
func buildSpaceItems(spaces []shell.SpaceInfo) []list.Item {
	items := make([]list.Item, 0, len(spaces))
	for i := len(spaces) - 1; i >= 0; i-- {
		items = append(items, spaceItem{info: spaces[i]})
	}
	return items
}

// SpacesTab is the sub-model for the Spaces tab.
type SpacesTab struct {
	list   list.Model
	width  int
	height int
}

// NewSpacesTab creates an empty SpacesTab.
func NewSpacesTab() SpacesTab {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Spaces"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	return SpacesTab{list: l}
}

// SetSpaces replaces the listed spaces, keeping the cursor in range.
func (s *SpacesTab) SetSpaces(spaces []shell.SpaceInfo) {
	idx := s.list.Index()
	s.list.SetItems(buildSpaceItems(spaces))
	if n := len(spaces); n > 0 && idx >= n {
		s.list.Select(n - 1)
	}
}

// Update handles messages for the spaces tab.
func (s SpacesTab) Update(msg tea.Msg) (SpacesTab, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		s.width = msg.Width
		s.height = msg.Height
		leftWidth := s.width * 2 / 5
		if leftWidth < 24 {
			leftWidth = 24
		}
		s.list.SetSize(leftWidth, s.height)
		return s, nil
	}

	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

// View renders the list beside the selected space's detail.
func (s SpacesTab) View() string {
	if len(s.list.Items()) == 0 {
		return renderCentered("No spaces", s.width, s.height)
	}

	var detail string
	if item, ok := s.list.SelectedItem().(spaceItem); ok {
		detail = renderSpaceDetail(item.info)
	}

	detailWidth := s.width - s.list.Width() - 2
	if detailWidth < 20 {
		detailWidth = 20
	}
	right := lipgloss.NewStyle().
		Width(detailWidth).
		Height(s.height).
		Padding(1, 2).
		Render(detail)

	return lipgloss.JoinHorizontal(lipgloss.Top, s.list.View(), right)
}

func renderSpaceDetail(info shell.SpaceInfo) string {
	surfaces := make([]string, 0, len(info.Surfaces))
	for _, id := range info.Surfaces {
		surfaces = append(surfaces, fmt.Sprintf("%d", id))
	}
	target := "(none)"
	if info.PointerTarget != nil {
		target = fmt.Sprintf("%d", *info.PointerTarget)
	}

	lines := []string{
		row("App", info.AppID),
		row("Space", fmt.Sprintf("%d", info.ID)),
		row("Top", fmt.Sprintf("%t", info.Top)),
		row("Surfaces", displayOrDefault(strings.Join(surfaces, ", "), "(empty)")),
		row("Pointer target", target),
		row("Home bar", fmt.Sprintf("%s y+%.1f", info.HomeBar, info.HomeBarOffset)),
	}
	return strings.Join(lines, "\n")
}
