package config

import (
	"errors"
	"fmt"
)

// ErrInvalid matches every *ValidationError via errors.Is.
var ErrInvalid = errors.New("invalid config")

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s: %s: %v", e.Source.position(), e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrInvalid, e.Err}
}

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if l := raw.Logging; l != nil {
		applyIf(&cfg.Logging.Level, l.Level)
		applyIf(&cfg.Logging.Format, l.Format)
		applyIf(&cfg.Logging.File, l.File)
		applyIf(&cfg.Logging.MaxSizeMB, l.MaxSizeMB)
		applyIf(&cfg.Logging.MaxFiles, l.MaxFiles)
	}
	if h := raw.HomeBar; h != nil {
		applyIf(&cfg.HomeBar.RegionHeight, h.RegionHeight)
		applyIf(&cfg.HomeBar.IndicatorHeight, h.IndicatorHeight)
		applyIf(&cfg.HomeBar.DampingRatio, h.DampingRatio)
		applyIf(&cfg.HomeBar.Response, h.Response)
	}
	if s := raw.Spaces; s != nil {
		applyIf(&cfg.Spaces.EvictEmpty, s.EvictEmpty)
	}
	if s := raw.Status; s != nil {
		applyIf(&cfg.Status.BatteryPath, s.BatteryPath)
		applyIf(&cfg.Status.CheckIntervalSeconds, s.CheckIntervalSeconds)
	}
	if s := raw.Shortcuts; s != nil {
		applyIf(&cfg.Shortcuts.Quit, s.Quit)
		applyIf(&cfg.Shortcuts.SwitchVTModifiers, s.SwitchVTModifiers)
		applyIf(&cfg.Shortcuts.VirtualTerminals, s.VirtualTerminals)
		applyIf(&cfg.Shortcuts.ChvtCommand, s.ChvtCommand)
	}
	if x := raw.X11; x != nil {
		applyIf(&cfg.X11.Display, x.Display)
		applyIf(&cfg.X11.FrameRate, x.FrameRate)
		applyIf(&cfg.X11.ReconcileIntervalSeconds, x.ReconcileIntervalSeconds)
		applyIf(&cfg.X11.EmulateTouch, x.EmulateTouch)
		applyIf(&cfg.X11.ActivateOnEnter, x.ActivateOnEnter)
	}
	if i := raw.IPC; i != nil {
		applyIf(&cfg.IPC.Socket, i.Socket)
	}

	return cfg, nil
}

func applyIf[T any](dst *T, p *T) {
	if p != nil {
		*dst = *p
	}
}
