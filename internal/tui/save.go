package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/touchshell/touchshell/internal/config"
)

var errNothingToSave = errors.New("no changes to save")

type savePhase int

const (
	saveHidden savePhase = iota
	savePreview
	saveResult
)

var (
	changePathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	changeOldStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	changeNewStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	overlayBox      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

// SaveOverlay previews the settings changed since the last save and writes
// them on confirm.
type SaveOverlay struct {
	phase    savePhase
	changes  []config.Change
	err      error
	reloaded bool
	offset   int
}

func (s SaveOverlay) Active() bool { return s.phase != saveHidden }

// SaveSucceeded reports whether the overlay is showing a successful save.
func (s SaveOverlay) SaveSucceeded() bool {
	return s.phase == saveResult && s.err == nil
}

// Show opens the preview, or a result message when nothing changed.
func (s *SaveOverlay) Show(original, current *config.Config) {
	*s = SaveOverlay{}
	changes, err := changedSettings(original, current)
	switch {
	case err != nil:
		s.phase, s.err = saveResult, err
	case len(changes) == 0:
		s.phase, s.err = saveResult, errNothingToSave
	default:
		s.phase, s.changes = savePreview, changes
	}
}

// Update handles keys while the overlay is up. Confirming writes cfg to path
// and asks a connected daemon to reload.
func (s SaveOverlay) Update(msg tea.Msg, path string, cfg *config.Config, daemon Daemon, connected bool) SaveOverlay {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s
	}
	if s.phase == saveResult {
		s.phase = saveHidden
		return s
	}

	switch km.String() {
	case "esc", "n":
		s.phase = saveHidden
	case "enter", "y":
		s.phase = saveResult
		if s.err = cfg.SaveTo(path); s.err != nil {
			return s
		}
		if connected && daemon != nil {
			s.reloaded = daemon.Reload() == nil
		}
	case "up", "k":
		s.offset = max(s.offset-1, 0)
	case "down", "j":
		s.offset = min(s.offset+1, max(len(s.changes)-1, 0))
	}
	return s
}

func (s SaveOverlay) View(width, height int) string {
	var body string
	boxW := clampInt(width-8, 30, 80)

	switch s.phase {
	case savePreview:
		rows := clampInt(height-10, 3, len(s.changes))
		start := min(s.offset, max(len(s.changes)-rows, 0))
		lines := []string{
			lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Save %d changed setting(s)?", len(s.changes))),
			"",
		}
		for _, c := range s.changes[start:min(start+rows, len(s.changes))] {
			lines = append(lines, formatChange(c))
		}
		lines = append(lines, "", dimStyle.Render("enter: save  esc: cancel  j/k: scroll"))
		body = strings.Join(lines, "\n")

	case saveResult:
		boxW = clampInt(width-8, 30, 60)
		if s.err != nil {
			body = changeOldStyle.Bold(true).Render("Error: " + s.err.Error())
		} else {
			body = changeNewStyle.Bold(true).Render("Config saved")
			if s.reloaded {
				body += "\n" + changeNewStyle.Render("Daemon reloaded")
			}
		}
		body += "\n\n" + dimStyle.Render("press any key to dismiss")

	default:
		return ""
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlayBox.Width(boxW).Render(body))
}

func formatChange(c config.Change) string {
	from, to := c.Old, c.New
	if from == "" {
		from = "(unset)"
	}
	if to == "" {
		to = "(unset)"
	}
	return changePathStyle.Render(c.Path+": ") + changeOldStyle.Render(from) + " -> " + changeNewStyle.Render(to)
}

func changedSettings(original, current *config.Config) ([]config.Change, error) {
	if original == nil || current == nil {
		return nil, nil
	}
	return config.Diff(original, current)
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return max(lo, min(v, hi))
}

// cloneConfig copies a Config. Every section is a plain value struct.
func cloneConfig(cfg *config.Config) *config.Config {
	if cfg == nil {
		return nil
	}
	clone := *cfg
	return &clone
}
