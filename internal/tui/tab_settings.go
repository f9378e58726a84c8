package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/touchshell/touchshell/internal/config"
)

// settingsValues holds the form-bound values (strings for huh inputs,
// converted on apply).
type settingsValues struct {
	regionHeight    string
	indicatorHeight string
	dampingRatio    string
	response        string
	evictEmpty      bool

	quit        string
	vtModifiers string
	vtCount     string

	frameRate       string
	emulateTouch    bool
	activateOnEnter bool

	logLevel string
}

func (v *settingsValues) load(cfg *config.Config) {
	v.regionHeight = formatFloat(cfg.HomeBar.RegionHeight)
	v.indicatorHeight = formatFloat(cfg.HomeBar.IndicatorHeight)
	v.dampingRatio = formatFloat(cfg.HomeBar.DampingRatio)
	v.response = formatFloat(cfg.HomeBar.Response)
	v.evictEmpty = cfg.Spaces.EvictEmpty
	v.quit = cfg.Shortcuts.Quit
	v.vtModifiers = cfg.Shortcuts.SwitchVTModifiers
	v.vtCount = strconv.Itoa(cfg.Shortcuts.VirtualTerminals)
	v.frameRate = strconv.Itoa(cfg.X11.FrameRate)
	v.emulateTouch = cfg.X11.EmulateTouch
	v.activateOnEnter = cfg.X11.ActivateOnEnter
	v.logLevel = cfg.Logging.Level
}

// apply writes the values into cfg. cfg is left untouched when any value is
// malformed or the result does not validate.
func (v *settingsValues) apply(cfg *config.Config) error {
	next := *cfg

	floats := []struct {
		name string
		src  string
		dst  *float64
	}{
		{"homebar.region_height", v.regionHeight, &next.HomeBar.RegionHeight},
		{"homebar.indicator_height", v.indicatorHeight, &next.HomeBar.IndicatorHeight},
		{"homebar.damping_ratio", v.dampingRatio, &next.HomeBar.DampingRatio},
		{"homebar.response", v.response, &next.HomeBar.Response},
	}
	for _, f := range floats {
		n, err := strconv.ParseFloat(strings.TrimSpace(f.src), 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", f.name, f.src)
		}
		*f.dst = n
	}

	vt, err := strconv.Atoi(strings.TrimSpace(v.vtCount))
	if err != nil {
		return fmt.Errorf("shortcuts.virtual_terminals: %q is not an integer", v.vtCount)
	}
	rate, err := strconv.Atoi(strings.TrimSpace(v.frameRate))
	if err != nil {
		return fmt.Errorf("x11.frame_rate: %q is not an integer", v.frameRate)
	}

	next.Spaces.EvictEmpty = v.evictEmpty
	next.Shortcuts.Quit = strings.TrimSpace(v.quit)
	next.Shortcuts.SwitchVTModifiers = strings.TrimSpace(v.vtModifiers)
	next.Shortcuts.VirtualTerminals = vt
	next.X11.FrameRate = rate
	next.X11.EmulateTouch = v.emulateTouch
	next.X11.ActivateOnEnter = v.activateOnEnter
	next.Logging.Level = v.logLevel

	if err := next.Validate(); err != nil {
		return err
	}
	*cfg = next
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func validateNumber(s string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return fmt.Errorf("must be a number")
	}
	return nil
}

func validateInt(s string) error {
	if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("must be an integer")
	}
	return nil
}

// newSettingsForm binds v to a huh form. width 0 leaves huh's default.
func newSettingsForm(v *settingsValues, width int) *huh.Form {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("region_height").
				Title("Home Bar Height").
				Description("Height of the gesture strip in pixels").
				Validate(validateNumber).
				Value(&v.regionHeight),
			huh.NewInput().
				Key("indicator_height").
				Title("Indicator Height").
				Description("Height of the drawn indicator line").
				Validate(validateNumber).
				Value(&v.indicatorHeight),
			huh.NewInput().
				Key("damping_ratio").
				Title("Damping Ratio").
				Description("1 is critically damped, below 1 bounces").
				Validate(validateNumber).
				Value(&v.dampingRatio),
			huh.NewInput().
				Key("response").
				Title("Response").
				Description("Spring period in seconds").
				Validate(validateNumber).
				Value(&v.response),
			huh.NewConfirm().
				Key("evict_empty").
				Title("Evict Empty Spaces").
				Description("Drop a space once its last window closes").
				Value(&v.evictEmpty),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("quit").
				Title("Quit Shortcut").
				Description("e.g. ctrl+shift+alt+esc; empty disables").
				Value(&v.quit),
			huh.NewInput().
				Key("switch_vt_modifiers").
				Title("VT Switch Modifiers").
				Description("Held with F1..Fn to switch virtual terminal").
				Value(&v.vtModifiers),
			huh.NewInput().
				Key("virtual_terminals").
				Title("Virtual Terminals").
				Description("How many F-keys switch VT (0 disables)").
				Validate(validateInt).
				Value(&v.vtCount),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("frame_rate").
				Title("Frame Rate").
				Description("Frames per second while animating").
				Validate(validateInt).
				Value(&v.frameRate),
			huh.NewConfirm().
				Key("emulate_touch").
				Title("Emulate Touch").
				Description("Treat the left mouse button as a finger").
				Value(&v.emulateTouch),
			huh.NewConfirm().
				Key("activate_on_enter").
				Title("Activate On Enter").
				Description("Focus the window under the pointer").
				Value(&v.activateOnEnter),
			huh.NewSelect[string]().
				Key("log_level").
				Title("Log Level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&v.logLevel),
		),
	).WithShowHelp(true).WithShowErrors(true)
	if width > 0 {
		form = form.WithWidth(width)
	}
	return form
}

// SettingsTab is the sub-model for the Settings tab.
type SettingsTab struct {
	cfg *config.Config

	width  int
	height int

	editing bool
	form    *huh.Form
	values  settingsValues
	lastErr error
}

// NewSettingsTab creates a SettingsTab from the loaded config.
func NewSettingsTab(cfg *config.Config) SettingsTab {
	return SettingsTab{cfg: cfg}
}

// Update implements tea.Model.
func (s SettingsTab) Update(msg tea.Msg) (SettingsTab, tea.Cmd) {
	if s.editing {
		return s.updateEditing(msg)
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" && s.cfg != nil {
			s.startEditing()
			return s, s.form.Init()
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}
	return s, nil
}

func (s SettingsTab) updateEditing(msg tea.Msg) (SettingsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			s.editing = false
			s.form = nil
			return s, nil
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.lastErr = s.values.apply(s.cfg)
		s.editing = false
		s.form = nil
		return s, nil
	}
	return s, cmd
}

func (s *SettingsTab) startEditing() {
	s.values.load(s.cfg)
	w := s.width - 4
	if w < 40 {
		w = 40
	}
	s.form = newSettingsForm(&s.values, w)
	s.editing = true
	s.lastErr = nil
}

// View implements tea.Model.
func (s SettingsTab) View() string {
	if s.editing && s.form != nil {
		header := lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Render("Editing Settings") +
			dimStyle.Render("  (esc to cancel)")
		return lipgloss.NewStyle().
			Width(s.width).
			Height(s.height).
			Padding(1, 2).
			Render(header + "\n\n" + s.form.View())
	}

	cfg := s.cfg
	if cfg == nil {
		return renderCentered("No config loaded", s.width, s.height)
	}

	quit := displayOrDefault(cfg.Shortcuts.Quit, "(disabled)")
	vt := "(disabled)"
	if cfg.Shortcuts.VirtualTerminals > 0 {
		vt = fmt.Sprintf("%s+F1..F%d via %s", cfg.Shortcuts.SwitchVTModifiers, cfg.Shortcuts.VirtualTerminals, cfg.Shortcuts.ChvtCommand)
	}

	lines := []string{
		"",
		row("Home bar", fmt.Sprintf("region %s  indicator %s", formatFloat(cfg.HomeBar.RegionHeight), formatFloat(cfg.HomeBar.IndicatorHeight))),
		row("Spring", fmt.Sprintf("damping %s  response %ss", formatFloat(cfg.HomeBar.DampingRatio), formatFloat(cfg.HomeBar.Response))),
		row("Evict empty", strconv.FormatBool(cfg.Spaces.EvictEmpty)),
		"",
		row("Quit", quit),
		row("Switch VT", vt),
		"",
		row("Frame rate", strconv.Itoa(cfg.X11.FrameRate)),
		row("Emulate touch", strconv.FormatBool(cfg.X11.EmulateTouch)),
		row("Activate on enter", strconv.FormatBool(cfg.X11.ActivateOnEnter)),
		row("Log level", cfg.Logging.Level),
		"",
	}
	if s.lastErr != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		lines = append(lines, errStyle.Render("  "+s.lastErr.Error()), "")
	}
	lines = append(lines, dimStyle.Render("  Press 'e' to edit settings"))

	return lipgloss.NewStyle().
		Width(s.width).
		Height(s.height).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}
