package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/touchshell/touchshell/internal/ipc"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Width(18).
			Align(lipgloss.Right).
			PaddingRight(2)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

// renderStatus draws the Status tab.
func renderStatus(st *ipc.StatusData, fetchErr error, width, height int) string {
	if st == nil {
		msg := "Waiting for daemon..."
		if fetchErr != nil {
			msg = "Daemon not reachable: " + fetchErr.Error()
		}
		return renderCentered(msg, width, height)
	}

	top := "(none)"
	if st.TopSpace != nil {
		top = fmt.Sprintf("%d (%s)", *st.TopSpace, displayOrDefault(st.TopApp, "?"))
	}

	battery := "(unavailable)"
	switch {
	case st.Battery != nil:
		battery = st.Battery.Text()
		if st.Battery.Charging {
			battery += " charging"
		}
		if st.Battery.Critical {
			battery += " critical"
		}
	case st.BatteryError != "":
		battery = st.BatteryError
	}

	lines := []string{
		"",
		row("Backend", displayOrDefault(st.Backend, "?")),
		row("Uptime", (time.Duration(st.UptimeSeconds) * time.Second).String()),
		"",
		row("Spaces", strconv.Itoa(st.SpaceCount)),
		row("Views", strconv.Itoa(st.ViewCount)),
		row("Top space", top),
		row("Home bar", st.HomeBar),
		"",
		row("Pointer grab", strconv.FormatBool(st.PointerGrabbed)),
		row("Touch grab", strconv.FormatBool(st.TouchGrabbed)),
		row("Events", strconv.FormatUint(st.Events, 10)),
		row("Frames", strconv.FormatUint(st.Frames, 10)),
		"",
		row("Battery", battery),
		row("Clock", displayOrDefault(st.Clock, "-")),
	}
	if fetchErr != nil {
		lines = append(lines, "", dimStyle.Render("  last refresh failed: "+fetchErr.Error()))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}

func displayOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
