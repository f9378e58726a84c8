// Package replay drives the shell from a YAML script instead of a display
// server. Scripts declare the output, the surfaces that exist, and a list
// of steps (map, unmap, input, render); every notification the shell sends
// to the seat or frame is recorded as one line of text.
package replay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/touchshell/touchshell/internal/event"
	"github.com/touchshell/touchshell/internal/platform"
	"github.com/touchshell/touchshell/internal/shell"
)

// ErrInvalidScript marks scripts that cannot be played.
var ErrInvalidScript = errors.New("invalid replay script")

// DefaultFrameInterval is the simulated time between rendered frames.
const DefaultFrameInterval = 16

type Size struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type Rect struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Surface is a client surface known to the scripted backend.
type Surface struct {
	ID    uint32 `yaml:"id"`
	AppID string `yaml:"app_id"`
	Rect  Rect   `yaml:"rect"`
}

// Input is one raw backend event. Absolute coordinates are normalized to
// [0,1] like a touchscreen reports them.
type Input struct {
	Kind        string  `yaml:"kind"`
	Time        uint32  `yaml:"time"`
	ID          int32   `yaml:"id"`
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	DX          float64 `yaml:"dx"`
	DY          float64 `yaml:"dy"`
	Button      uint32  `yaml:"button"`
	Pressed     bool    `yaml:"pressed"`
	Source      string  `yaml:"source"`
	Orientation string  `yaml:"orientation"`
	Delta       float64 `yaml:"delta"`
	Key         string  `yaml:"key"`
	Mods        string  `yaml:"mods"`
	Pressure    float64 `yaml:"pressure"`
}

// Step is one script action. Exactly one field is set.
type Step struct {
	Map         *uint32 `yaml:"map,omitempty"`
	Unmap       *uint32 `yaml:"unmap,omitempty"`
	Destroy     *uint32 `yaml:"destroy,omitempty"`
	Input       *Input  `yaml:"input,omitempty"`
	Render      int     `yaml:"render,omitempty"`
	Wait        int     `yaml:"wait,omitempty"`
	PointerGrab *bool   `yaml:"pointer_grab,omitempty"`
	TouchGrab   *bool   `yaml:"touch_grab,omitempty"`
}

// Script is a complete replay.
type Script struct {
	Screen Size `yaml:"screen"`
	// FrameInterval is in milliseconds.
	FrameInterval int       `yaml:"frame_interval"`
	Shortcuts     *bool     `yaml:"shortcuts,omitempty"`
	EvictEmpty    *bool     `yaml:"evict_empty,omitempty"`
	Surfaces      []Surface `yaml:"surfaces"`
	Steps         []Step    `yaml:"steps"`
}

// Parse decodes and validates a script. Unknown keys are rejected.
func Parse(r io.Reader) (*Script, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty script", ErrInvalidScript)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s *Script) validate() error {
	if s.Screen.Width <= 0 || s.Screen.Height <= 0 {
		return fmt.Errorf("%w: screen must have a positive size", ErrInvalidScript)
	}
	if s.FrameInterval < 0 {
		return fmt.Errorf("%w: frame_interval must be >= 0", ErrInvalidScript)
	}
	if s.FrameInterval == 0 {
		s.FrameInterval = DefaultFrameInterval
	}

	known := make(map[uint32]bool, len(s.Surfaces))
	for _, surf := range s.Surfaces {
		if known[surf.ID] {
			return fmt.Errorf("%w: duplicate surface %d", ErrInvalidScript, surf.ID)
		}
		known[surf.ID] = true
	}

	for i, step := range s.Steps {
		n := 0
		for _, set := range []bool{
			step.Map != nil, step.Unmap != nil, step.Destroy != nil, step.Input != nil,
			step.Render > 0, step.Wait > 0, step.PointerGrab != nil, step.TouchGrab != nil,
		} {
			if set {
				n++
			}
		}
		if n != 1 {
			return fmt.Errorf("%w: step %d must set exactly one action", ErrInvalidScript, i+1)
		}
		for _, id := range []*uint32{step.Map, step.Unmap, step.Destroy} {
			if id != nil && !known[*id] {
				return fmt.Errorf("%w: step %d names unknown surface %d", ErrInvalidScript, i+1, *id)
			}
		}
		if step.Input != nil {
			if _, err := step.Input.Raw(); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		}
	}
	return nil
}

func parseSource(s string) (platform.AxisSource, error) {
	switch s {
	case "", "wheel":
		return platform.AxisSourceWheel, nil
	case "finger":
		return platform.AxisSourceFinger, nil
	case "continuous":
		return platform.AxisSourceContinuous, nil
	case "wheel-tilt":
		return platform.AxisSourceWheelTilt, nil
	default:
		return 0, fmt.Errorf("%w: axis source %q", ErrInvalidScript, s)
	}
}

func parseOrientation(s string) (platform.AxisOrientation, error) {
	switch s {
	case "", "vertical":
		return platform.AxisVertical, nil
	case "horizontal":
		return platform.AxisHorizontal, nil
	default:
		return 0, fmt.Errorf("%w: axis orientation %q", ErrInvalidScript, s)
	}
}

func buttonState(pressed bool) event.ButtonState {
	if pressed {
		return event.ButtonPressed
	}
	return event.ButtonReleased
}

// Raw converts the input to a raw backend event.
func (in Input) Raw() (event.Raw, error) {
	switch strings.ReplaceAll(in.Kind, "-", "_") {
	case "pointer_button":
		return event.RawPointerButton{TimeMsec: in.Time, Button: in.Button, State: buttonState(in.Pressed)}, nil
	case "pointer_motion":
		return event.RawPointerMotion{TimeMsec: in.Time, DX: in.DX, DY: in.DY}, nil
	case "pointer_motion_absolute":
		return event.RawPointerAbsMotion{TimeMsec: in.Time, X: in.X, Y: in.Y}, nil
	case "pointer_axis":
		src, err := parseSource(in.Source)
		if err != nil {
			return nil, err
		}
		orient, err := parseOrientation(in.Orientation)
		if err != nil {
			return nil, err
		}
		return event.RawPointerAxis{TimeMsec: in.Time, Source: src, Orientation: orient, Delta: in.Delta}, nil
	case "touch_down":
		return event.RawTouchDown{TimeMsec: in.Time, ID: in.ID, X: in.X, Y: in.Y}, nil
	case "touch_motion":
		return event.RawTouchMotion{TimeMsec: in.Time, ID: in.ID, X: in.X, Y: in.Y}, nil
	case "touch_up":
		return event.RawTouchUp{TimeMsec: in.Time, ID: in.ID}, nil
	case "touch_cancel":
		return event.RawTouchCancel{TimeMsec: in.Time, ID: in.ID}, nil
	case "tablet_proximity":
		state := event.ProximityOut
		if in.Pressed {
			state = event.ProximityIn
		}
		return event.RawTabletProximity{TimeMsec: in.Time, X: in.X, Y: in.Y, State: state}, nil
	case "tablet_tip":
		state := event.TipUp
		if in.Pressed {
			state = event.TipDown
		}
		return event.RawTabletTip{TimeMsec: in.Time, X: in.X, Y: in.Y, State: state}, nil
	case "tablet_button":
		return event.RawTabletButton{TimeMsec: in.Time, Button: in.Button, State: buttonState(in.Pressed)}, nil
	case "tablet_axis":
		return event.RawTabletAxis{TimeMsec: in.Time, X: in.X, Y: in.Y, Pressure: in.Pressure}, nil
	case "key":
		code, err := shell.KeyCode(in.Key)
		if err != nil {
			return nil, err
		}
		mods, err := shell.ParseModifiers(in.Mods)
		if err != nil {
			return nil, err
		}
		state := event.KeyReleased
		if in.Pressed {
			state = event.KeyPressed
		}
		return event.RawKey{TimeMsec: in.Time, Code: code, State: state, Mods: mods}, nil
	default:
		return nil, fmt.Errorf("%w: unknown input kind %q", ErrInvalidScript, in.Kind)
	}
}
