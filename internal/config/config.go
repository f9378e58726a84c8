package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/touchshell/touchshell/internal/shell"
)

// LoggingConfig configures the daemon logger.
type LoggingConfig struct {
	// Level controls verbosity: debug, info, warn, error
	Level string `yaml:"level"`
	// Format is text or json
	Format string `yaml:"format"`
	// File receives log output instead of stderr when set
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the log file size that triggers rotation
	MaxSizeMB int `yaml:"max_size_mb"`
	// MaxFiles is the number of rotated files to keep
	MaxFiles int `yaml:"max_files"`
}

// HomeBarConfig sizes the home bar and tunes its spring.
type HomeBarConfig struct {
	RegionHeight    float64 `yaml:"region_height"`
	IndicatorHeight float64 `yaml:"indicator_height"`
	DampingRatio    float64 `yaml:"damping_ratio"`
	Response        float64 `yaml:"response"`
}

type SpacesConfig struct {
	// EvictEmpty drops a space once its last view is removed
	EvictEmpty bool `yaml:"evict_empty"`
}

type StatusConfig struct {
	BatteryPath          string `yaml:"battery_path"`
	CheckIntervalSeconds int    `yaml:"check_interval_seconds"`
}

// ShortcutsConfig holds the compositor key bindings.
type ShortcutsConfig struct {
	Quit              string `yaml:"quit"`
	SwitchVTModifiers string `yaml:"switch_vt_modifiers"`
	// VirtualTerminals is how many F-keys switch VT (0 disables)
	VirtualTerminals int    `yaml:"virtual_terminals"`
	ChvtCommand      string `yaml:"chvt_command"`
}

type X11Config struct {
	Display                  string `yaml:"display,omitempty"`
	FrameRate                int    `yaml:"frame_rate"`
	ReconcileIntervalSeconds int    `yaml:"reconcile_interval_seconds"`
	// EmulateTouch turns the primary mouse button into touch point 0
	EmulateTouch    bool `yaml:"emulate_touch"`
	ActivateOnEnter bool `yaml:"activate_on_enter"`
}

type IPCConfig struct {
	// Socket overrides the default $XDG_RUNTIME_DIR/touchshell.sock
	Socket string `yaml:"socket,omitempty"`
}

// Config holds the application configuration.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	HomeBar   HomeBarConfig   `yaml:"homebar"`
	Spaces    SpacesConfig    `yaml:"spaces"`
	Status    StatusConfig    `yaml:"status"`
	Shortcuts ShortcutsConfig `yaml:"shortcuts"`
	X11       X11Config       `yaml:"x11"`
	IPC       IPCConfig       `yaml:"ipc"`
}

func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "text",
			MaxSizeMB: 10,
			MaxFiles:  3,
		},
		HomeBar: HomeBarConfig{
			RegionHeight:    18,
			IndicatorHeight: 3,
			DampingRatio:    1,
			Response:        1,
		},
		Spaces: SpacesConfig{
			EvictEmpty: true,
		},
		Status: StatusConfig{
			BatteryPath:          "/sys/class/power_supply/BAT1/uevent",
			CheckIntervalSeconds: 5,
		},
		Shortcuts: ShortcutsConfig{
			Quit:              "ctrl+shift+alt+esc",
			SwitchVTModifiers: "ctrl+alt",
			VirtualTerminals:  7,
			ChvtCommand:       "chvt",
		},
		X11: X11Config{
			FrameRate:                60,
			ReconcileIntervalSeconds: 10,
			EmulateTouch:             true,
			ActivateOnEnter:          true,
		},
	}
}

// Bindings resolves the shortcut settings into key bindings.
func (c *Config) Bindings() ([]shell.Binding, error) {
	return shell.BuildBindings(c.Shortcuts.Quit, c.Shortcuts.SwitchVTModifiers, c.Shortcuts.VirtualTerminals)
}

// SaveTo writes the configuration to path.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Save writes the configuration to the standard location.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if !slices.Contains(logLevels, c.Logging.Level) {
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if !slices.Contains(logFormats, c.Logging.Format) {
		return &ValidationError{Path: "logging.format", Err: fmt.Errorf("format must be one of: text, json")}
	}

	if c.Logging.MaxSizeMB <= 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be > 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}

	if c.HomeBar.RegionHeight <= 0 {
		return &ValidationError{Path: "homebar.region_height", Err: fmt.Errorf("region_height must be > 0")}
	}
	if c.HomeBar.IndicatorHeight <= 0 || c.HomeBar.IndicatorHeight > c.HomeBar.RegionHeight {
		return &ValidationError{Path: "homebar.indicator_height", Err: fmt.Errorf("indicator_height must be > 0 and <= region_height")}
	}
	if c.HomeBar.DampingRatio <= 0 {
		return &ValidationError{Path: "homebar.damping_ratio", Err: fmt.Errorf("damping_ratio must be > 0")}
	}
	if c.HomeBar.Response <= 0 {
		return &ValidationError{Path: "homebar.response", Err: fmt.Errorf("response must be > 0")}
	}

	if c.Status.BatteryPath == "" {
		return &ValidationError{Path: "status.battery_path", Err: fmt.Errorf("battery_path is required")}
	}
	if c.Status.CheckIntervalSeconds <= 0 {
		return &ValidationError{Path: "status.check_interval_seconds", Err: fmt.Errorf("check_interval_seconds must be > 0")}
	}

	if c.Shortcuts.VirtualTerminals < 0 || c.Shortcuts.VirtualTerminals > 10 {
		return &ValidationError{Path: "shortcuts.virtual_terminals", Err: fmt.Errorf("virtual_terminals must be between 0 and 10")}
	}
	if c.Shortcuts.VirtualTerminals > 0 && c.Shortcuts.ChvtCommand == "" {
		return &ValidationError{Path: "shortcuts.chvt_command", Err: fmt.Errorf("chvt_command is required when virtual_terminals > 0")}
	}
	if _, err := c.Bindings(); err != nil {
		return &ValidationError{Path: "shortcuts", Err: err}
	}

	if c.X11.FrameRate < 1 || c.X11.FrameRate > 240 {
		return &ValidationError{Path: "x11.frame_rate", Err: fmt.Errorf("frame_rate must be between 1 and 240")}
	}
	if c.X11.ReconcileIntervalSeconds < 0 {
		return &ValidationError{Path: "x11.reconcile_interval_seconds", Err: fmt.Errorf("reconcile_interval_seconds must be >= 0")}
	}

	return nil
}
