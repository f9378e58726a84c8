package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	bindings, err := cfg.Bindings()
	if err != nil {
		t.Fatalf("bindings: %v", err)
	}
	if len(bindings) != 8 {
		t.Fatalf("expected quit plus 7 vt bindings, got %d", len(bindings))
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.HomeBar.RegionHeight != 18 || len(res.Files) != 0 {
		t.Fatalf("expected defaults, got %+v files=%v", res.Config.HomeBar, res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.X11.FrameRate != 60 {
		t.Fatalf("expected frame_rate 60, got %d", res.Config.X11.FrameRate)
	}
}

func TestLoadFromPath_PartialSectionKeepsOtherDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"homebar:",
		"  response: 0.4",
		"spaces:",
		"  evict_empty: false",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	hb := res.Config.HomeBar
	if hb.Response != 0.4 || hb.DampingRatio != 1 || hb.RegionHeight != 18 {
		t.Fatalf("unexpected homebar config %+v", hb)
	}
	if res.Config.Spaces.EvictEmpty {
		t.Fatalf("expected evict_empty false")
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "homebar:\n  bounce: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "bounce") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "logging:\n  level: loud\n")

	_, err := LoadFromPath(path)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Path != "logging.level" {
		t.Fatalf("expected path logging.level, got %q", verr.Path)
	}
	if verr.Source.Line != 2 || !strings.Contains(err.Error(), path+":2:") {
		t.Fatalf("expected file:line prefix, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"zero region", func(c *Config) { c.HomeBar.RegionHeight = 0 }, "homebar.region_height"},
		{"indicator taller than region", func(c *Config) { c.HomeBar.IndicatorHeight = 30 }, "homebar.indicator_height"},
		{"negative damping", func(c *Config) { c.HomeBar.DampingRatio = -1 }, "homebar.damping_ratio"},
		{"zero response", func(c *Config) { c.HomeBar.Response = 0 }, "homebar.response"},
		{"empty battery path", func(c *Config) { c.Status.BatteryPath = "" }, "status.battery_path"},
		{"zero interval", func(c *Config) { c.Status.CheckIntervalSeconds = 0 }, "status.check_interval_seconds"},
		{"too many vts", func(c *Config) { c.Shortcuts.VirtualTerminals = 11 }, "shortcuts.virtual_terminals"},
		{"no chvt", func(c *Config) { c.Shortcuts.ChvtCommand = "" }, "shortcuts.chvt_command"},
		{"bad quit key", func(c *Config) { c.Shortcuts.Quit = "ctrl+pause" }, "shortcuts"},
		{"frame rate", func(c *Config) { c.X11.FrameRate = 0 }, "x11.frame_rate"},
		{"reconcile interval", func(c *Config) { c.X11.ReconcileIntervalSeconds = -1 }, "x11.reconcile_interval_seconds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q (%v)", tt.path, verr.Path, err)
			}
		})
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	// config.d loaded first, in sorted order.
	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(configD, "10-base.yaml"), "x11:\n  frame_rate: 30\n  display: \":1\"\n")
	writeFile(t, filepath.Join(configD, "20-override.yaml"), "x11:\n  frame_rate: 45\n")

	// Main file overrides includes.
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"include:",
		"  - config.d",
		"x11:",
		"  frame_rate: 90",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.X11.FrameRate != 90 {
		t.Fatalf("expected frame_rate to be 90, got %d", res.Config.X11.FrameRate)
	}
	if res.Config.X11.Display != ":1" {
		t.Fatalf("expected display from include, got %q", res.Config.X11.Display)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 loaded files, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeFile(t, a, "include: b.yaml\n")
	writeFile(t, b, "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "homebar:\n  response: 0.5\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "homebar.response")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 0.5 {
		t.Fatalf("expected 0.5, got %#v", val)
	}
	if src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("expected file source on line 2, got %#v", src)
	}

	val, src, err = Explain(res, "x11.frame_rate")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 60 || src.Kind != SourceDefault {
		t.Fatalf("expected default 60, got %#v from %#v", val, src)
	}

	if _, _, err := Explain(res, "homebar.nope"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Logging.Level = "debug"
	cfg.HomeBar.Response = 0.7
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load saved config: %v", err)
	}
	if res.Config.Logging.Level != "debug" || res.Config.HomeBar.Response != 0.7 {
		t.Fatalf("saved values not loaded back: %+v", res.Config)
	}
}

func TestDefaultConfigPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != "/tmp/xdg-test/touchshell/config.yaml" {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestSourceString(t *testing.T) {
	tests := []struct {
		src  Source
		want string
	}{
		{Source{Kind: SourceFile, File: "/c.yaml", Line: 3, Column: 5}, "file:/c.yaml:3:5"},
		{Source{Kind: SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{Source{Kind: SourceFile}, "file"},
		{Source{Kind: SourceDefault, Name: "defaults"}, "default:defaults"},
		{Source{Kind: SourceDefault}, "default"},
	}
	for _, tt := range tests {
		if got := tt.src.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.src, got, tt.want)
		}
	}
}
