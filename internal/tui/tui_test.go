package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/touchshell/touchshell/internal/config"
	"github.com/touchshell/touchshell/internal/ipc"
	"github.com/touchshell/touchshell/internal/shell"
)

type fakeDaemon struct {
	status  *ipc.StatusData
	spaces  []shell.SpaceInfo
	err     error
	reloads int
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) { return f.status, f.err }

func (f *fakeDaemon) ListSpaces() ([]shell.SpaceInfo, error) { return f.spaces, f.err }

func (f *fakeDaemon) Reload() error {
	f.reloads++
	return f.err
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testModel(t *testing.T, d Daemon) model {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	m := newModel(path, d)
	if m.result == nil {
		t.Fatalf("expected defaults for a missing config file, got %v", m.loadErr)
	}
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(model)
}

func TestSettingsValues_RoundTrip(t *testing.T) {
	cfg := config.DefaultConfig()
	var v settingsValues
	v.load(cfg)

	v.regionHeight = "24"
	v.dampingRatio = "0.5"
	v.vtCount = "4"
	v.emulateTouch = false
	v.logLevel = "debug"

	if err := v.apply(cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.HomeBar.RegionHeight != 24 || cfg.HomeBar.DampingRatio != 0.5 {
		t.Fatalf("home bar not applied: %+v", cfg.HomeBar)
	}
	if cfg.Shortcuts.VirtualTerminals != 4 || cfg.X11.EmulateTouch || cfg.Logging.Level != "debug" {
		t.Fatalf("settings not applied: %+v %+v %+v", cfg.Shortcuts, cfg.X11, cfg.Logging)
	}
}

func TestSettingsValues_ApplyRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(v *settingsValues)
	}{
		{"not a number", func(v *settingsValues) { v.response = "fast" }},
		{"not an integer", func(v *settingsValues) { v.frameRate = "60fps" }},
		{"indicator taller than region", func(v *settingsValues) { v.indicatorHeight = "100" }},
		{"unknown quit key", func(v *settingsValues) { v.quit = "ctrl+q" }},
		{"too many terminals", func(v *settingsValues) { v.vtCount = "11" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			want := *cfg
			var v settingsValues
			v.load(cfg)
			tt.mutate(&v)
			if err := v.apply(cfg); err == nil {
				t.Fatalf("expected error")
			}
			if *cfg != want {
				t.Fatalf("config changed on failed apply: %+v", cfg)
			}
		})
	}
}

func TestBuildSpaceItems_TopFirst(t *testing.T) {
	items := buildSpaceItems([]shell.SpaceInfo{
		{ID: 0, AppID: "term"},
		{ID: 1, AppID: "browser", Top: true},
	})
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	first := items[0].(spaceItem)
	if first.info.AppID != "browser" || first.FilterValue() != "browser" {
		t.Fatalf("expected top space first, got %+v", first.info)
	}
	if !strings.Contains(first.Title(), "browser") {
		t.Fatalf("title missing app id: %q", first.Title())
	}
}

func TestModel_TabNavigation(t *testing.T) {
	m := testModel(t, &fakeDaemon{})

	tests := []struct {
		key  string
		want Tab
	}{
		{"tab", TabSpaces},
		{"tab", TabSettings},
		{"tab", TabStatus},
		{"3", TabSettings},
		{"1", TabStatus},
		{"2", TabSpaces},
	}
	for _, tt := range tests {
		next, _ := m.Update(key(tt.key))
		m = next.(model)
		if m.activeTab != tt.want {
			t.Fatalf("after %q: active tab = %v, want %v", tt.key, m.activeTab, tt.want)
		}
	}
}

func TestModel_Refresh(t *testing.T) {
	top := 1
	d := &fakeDaemon{
		status: &ipc.StatusData{DaemonRunning: true, SpaceCount: 2, TopSpace: &top, TopApp: "browser", HomeBar: "home-bar"},
		spaces: []shell.SpaceInfo{{ID: 0, AppID: "term"}, {ID: 1, AppID: "browser", Top: true}},
	}
	m := testModel(t, d)

	next, _ := m.Update(fetch(d)())
	m = next.(model)
	if m.status == nil || m.status.TopApp != "browser" {
		t.Fatalf("expected status to be stored, got %+v", m.status)
	}
	if n := len(m.spacesTab.list.Items()); n != 2 {
		t.Fatalf("expected 2 listed spaces, got %d", n)
	}
	if view := m.View(); !strings.Contains(view, "daemon connected") {
		t.Fatalf("expected connected status bar, got:\n%s", view)
	}

	d.err = errors.New("connection refused")
	next, _ = m.Update(fetch(d)())
	m = next.(model)
	if m.status != nil || m.fetchErr == nil {
		t.Fatalf("expected disconnected state, got status=%+v err=%v", m.status, m.fetchErr)
	}
	if view := m.View(); !strings.Contains(view, "daemon not running") {
		t.Fatalf("expected disconnected status bar, got:\n%s", view)
	}
}

func TestModel_SaveWritesAndReloads(t *testing.T) {
	d := &fakeDaemon{status: &ipc.StatusData{DaemonRunning: true}}
	m := testModel(t, d)
	next, _ := m.Update(fetch(d)())
	m = next.(model)

	m.result.Config.HomeBar.RegionHeight = 30

	next, _ = m.Update(key("ctrl+s"))
	m = next.(model)
	if m.saveOverlay.phase != savePreview {
		t.Fatalf("expected save preview, got phase %v", m.saveOverlay.phase)
	}

	next, _ = m.Update(key("enter"))
	m = next.(model)
	if !m.saveOverlay.SaveSucceeded() {
		t.Fatalf("expected save to succeed, got %v", m.saveOverlay.err)
	}
	if d.reloads != 1 {
		t.Fatalf("expected one reload, got %d", d.reloads)
	}

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	if !strings.Contains(string(data), "region_height: 30") {
		t.Fatalf("saved config missing change:\n%s", data)
	}
	if m.originalConfig.HomeBar.RegionHeight != 30 {
		t.Fatalf("expected original snapshot to follow the save")
	}
}

func TestSaveOverlay_NoChanges(t *testing.T) {
	cfg := config.DefaultConfig()
	var s SaveOverlay
	s.Show(cloneConfig(cfg), cfg)
	if s.phase != saveResult || s.err == nil {
		t.Fatalf("expected a no-changes result, got phase=%v err=%v", s.phase, s.err)
	}
}

func TestSaveOverlay_PreviewListsChanges(t *testing.T) {
	a := config.DefaultConfig()
	b := cloneConfig(a)
	b.X11.FrameRate = 30

	var s SaveOverlay
	s.Show(a, b)
	if s.phase != savePreview || len(s.changes) != 1 {
		t.Fatalf("expected one pending change, got phase=%v changes=%+v", s.phase, s.changes)
	}
	if c := s.changes[0]; c.Path != "x11.frame_rate" || c.Old != "60" || c.New != "30" {
		t.Fatalf("unexpected change %+v", c)
	}
	if view := s.View(100, 30); !strings.Contains(view, "x11.frame_rate") {
		t.Fatalf("preview missing changed key:\n%s", view)
	}

	s = s.Update(key("esc"), "", b, nil, false)
	if s.Active() {
		t.Fatalf("expected esc to close the preview")
	}
}
