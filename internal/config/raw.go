package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawLoggingConfig struct {
	Level     *string `yaml:"level"`
	Format    *string `yaml:"format"`
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

type RawHomeBarConfig struct {
	RegionHeight    *float64 `yaml:"region_height"`
	IndicatorHeight *float64 `yaml:"indicator_height"`
	DampingRatio    *float64 `yaml:"damping_ratio"`
	Response        *float64 `yaml:"response"`
}

type RawSpacesConfig struct {
	EvictEmpty *bool `yaml:"evict_empty"`
}

type RawStatusConfig struct {
	BatteryPath          *string `yaml:"battery_path"`
	CheckIntervalSeconds *int    `yaml:"check_interval_seconds"`
}

type RawShortcutsConfig struct {
	Quit              *string `yaml:"quit"`
	SwitchVTModifiers *string `yaml:"switch_vt_modifiers"`
	VirtualTerminals  *int    `yaml:"virtual_terminals"`
	ChvtCommand       *string `yaml:"chvt_command"`
}

type RawX11Config struct {
	Display                  *string `yaml:"display"`
	FrameRate                *int    `yaml:"frame_rate"`
	ReconcileIntervalSeconds *int    `yaml:"reconcile_interval_seconds"`
	EmulateTouch             *bool   `yaml:"emulate_touch"`
	ActivateOnEnter          *bool   `yaml:"activate_on_enter"`
}

type RawIPCConfig struct {
	Socket *string `yaml:"socket"`
}

// RawConfig is one YAML file as written. Unset keys stay nil so that files
// can be layered.
type RawConfig struct {
	Include   IncludeList         `yaml:"include"`
	Logging   *RawLoggingConfig   `yaml:"logging"`
	HomeBar   *RawHomeBarConfig   `yaml:"homebar"`
	Spaces    *RawSpacesConfig    `yaml:"spaces"`
	Status    *RawStatusConfig    `yaml:"status"`
	Shortcuts *RawShortcutsConfig `yaml:"shortcuts"`
	X11       *RawX11Config       `yaml:"x11"`
	IPC       *RawIPCConfig       `yaml:"ipc"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Logging != nil {
		merged := mergeRawLogging(deref(out.Logging), *overlay.Logging)
		out.Logging = &merged
	}
	if overlay.HomeBar != nil {
		merged := mergeRawHomeBar(deref(out.HomeBar), *overlay.HomeBar)
		out.HomeBar = &merged
	}
	if overlay.Spaces != nil {
		merged := deref(out.Spaces)
		setIf(&merged.EvictEmpty, overlay.Spaces.EvictEmpty)
		out.Spaces = &merged
	}
	if overlay.Status != nil {
		merged := deref(out.Status)
		setIf(&merged.BatteryPath, overlay.Status.BatteryPath)
		setIf(&merged.CheckIntervalSeconds, overlay.Status.CheckIntervalSeconds)
		out.Status = &merged
	}
	if overlay.Shortcuts != nil {
		merged := mergeRawShortcuts(deref(out.Shortcuts), *overlay.Shortcuts)
		out.Shortcuts = &merged
	}
	if overlay.X11 != nil {
		merged := deref(out.X11)
		setIf(&merged.Display, overlay.X11.Display)
		setIf(&merged.FrameRate, overlay.X11.FrameRate)
		setIf(&merged.ReconcileIntervalSeconds, overlay.X11.ReconcileIntervalSeconds)
		setIf(&merged.EmulateTouch, overlay.X11.EmulateTouch)
		setIf(&merged.ActivateOnEnter, overlay.X11.ActivateOnEnter)
		out.X11 = &merged
	}
	if overlay.IPC != nil {
		merged := deref(out.IPC)
		setIf(&merged.Socket, overlay.IPC.Socket)
		out.IPC = &merged
	}

	return out
}

func mergeRawLogging(base RawLoggingConfig, overlay RawLoggingConfig) RawLoggingConfig {
	setIf(&base.Level, overlay.Level)
	setIf(&base.Format, overlay.Format)
	setIf(&base.File, overlay.File)
	setIf(&base.MaxSizeMB, overlay.MaxSizeMB)
	setIf(&base.MaxFiles, overlay.MaxFiles)
	return base
}

func mergeRawHomeBar(base RawHomeBarConfig, overlay RawHomeBarConfig) RawHomeBarConfig {
	setIf(&base.RegionHeight, overlay.RegionHeight)
	setIf(&base.IndicatorHeight, overlay.IndicatorHeight)
	setIf(&base.DampingRatio, overlay.DampingRatio)
	setIf(&base.Response, overlay.Response)
	return base
}

func mergeRawShortcuts(base RawShortcutsConfig, overlay RawShortcutsConfig) RawShortcutsConfig {
	setIf(&base.Quit, overlay.Quit)
	setIf(&base.SwitchVTModifiers, overlay.SwitchVTModifiers)
	setIf(&base.VirtualTerminals, overlay.VirtualTerminals)
	setIf(&base.ChvtCommand, overlay.ChvtCommand)
	return base
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// setIf copies overlay into *dst when overlay is set.
func setIf[T any](dst **T, overlay *T) {
	if overlay != nil {
		*dst = overlay
	}
}
