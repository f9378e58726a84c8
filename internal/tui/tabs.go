package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/touchshell/touchshell/internal/ipc"
)

type Tab int

const (
	TabStatus Tab = iota
	TabSpaces
	TabSettings
	tabCount
)

var tabNames = [tabCount]string{"Status", "Spaces", "Settings"}

func (t Tab) String() string {
	if t < 0 || t >= tabCount {
		return "?"
	}
	return tabNames[t]
}

const helpText = "tab/shift-tab: switch tabs  1-3: jump to tab  r: refresh  ctrl-s: save  q/ctrl-c: quit"

var (
	tabStyle = lipgloss.NewStyle().Padding(0, 2).
			Foreground(lipgloss.Color("250")).
			Background(lipgloss.Color("236"))
	activeTabStyle = tabStyle.Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))
	barStyle = lipgloss.NewStyle().Padding(0, 1).
			Foreground(lipgloss.Color("250")).
			Background(lipgloss.Color("235"))
	helpStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("241"))

	connectedDot    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
	disconnectedDot = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
)

// renderTabBar draws numbered tab labels separated by a one-cell gap.
func renderTabBar(active Tab, width int) string {
	gap := barStyle.Padding(0).Render(" ")
	cells := make([]string, 0, 2*int(tabCount))
	for t := range tabCount {
		if t > 0 {
			cells = append(cells, gap)
		}
		style := tabStyle
		if t == active {
			style = activeTabStyle
		}
		cells = append(cells, style.Render(strconv.Itoa(int(t)+1)+":"+t.String()))
	}
	return lipgloss.NewStyle().Width(width).MarginBottom(1).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
}

// renderStatusBar shows the daemon connection and, when connected, the same
// status bar data the shell draws.
func renderStatusBar(st *ipc.StatusData, width int) string {
	if st == nil {
		return barStyle.Width(width).Render(disconnectedDot + " daemon not running")
	}
	parts := []string{connectedDot + " daemon connected"}
	if st.TopApp != "" {
		parts = append(parts, "top:"+st.TopApp)
	}
	if st.Clock != "" {
		parts = append(parts, st.Clock)
	}
	if st.Battery != nil {
		parts = append(parts, "bat:"+st.Battery.Text())
	}
	return barStyle.Width(width).Render(strings.Join(parts, "  "))
}

func renderHelpBar(width int) string {
	return helpStyle.Width(width).Render(helpText)
}

func renderCentered(msg string, width, height int) string {
	return helpStyle.Padding(0).Width(width).Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(msg)
}
