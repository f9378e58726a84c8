package event

import (
	"errors"
	"fmt"
	"math"

	"github.com/touchshell/touchshell/internal/platform"
)

// ErrUnmappable is returned when a raw backend event has no unified
// counterpart. It signals a backend contract violation and is not meant to be
// recovered from.
var ErrUnmappable = errors.New("unmappable raw event")

// ButtonState is the backend's pressed/released state for buttons.
type ButtonState int

const (
	ButtonReleased ButtonState = 0
	ButtonPressed  ButtonState = 1
)

// KeyState is the backend's pressed/released state for keys.
type KeyState int

const (
	KeyReleased KeyState = 0
	KeyPressed  KeyState = 1
)

// ProximityState is the tablet tool proximity state.
type ProximityState int

const (
	ProximityOut ProximityState = 0
	ProximityIn  ProximityState = 1
)

// TipState is the tablet tool tip state.
type TipState int

const (
	TipUp   TipState = 0
	TipDown TipState = 1
)

// Raw is a backend-native event. Coordinates named X/Y on absolute events
// are normalized to [0,1] across the output.
type Raw interface {
	rawEvent()
}

type RawPointerButton struct {
	TimeMsec uint32
	Button   uint32
	State    ButtonState
}

// RawPointerMotion is a relative pointer movement in pixels.
type RawPointerMotion struct {
	TimeMsec uint32
	DX       float64
	DY       float64
}

type RawPointerAbsMotion struct {
	TimeMsec uint32
	X        float64
	Y        float64
}

type RawPointerAxis struct {
	TimeMsec    uint32
	Source      platform.AxisSource
	Orientation platform.AxisOrientation
	Delta       float64
}

type RawTouchDown struct {
	TimeMsec uint32
	ID       int32
	X        float64
	Y        float64
}

type RawTouchMotion struct {
	TimeMsec uint32
	ID       int32
	X        float64
	Y        float64
}

type RawTouchUp struct {
	TimeMsec uint32
	ID       int32
}

type RawTouchCancel struct {
	TimeMsec uint32
	ID       int32
}

type RawTabletProximity struct {
	TimeMsec uint32
	X        float64
	Y        float64
	State    ProximityState
}

type RawTabletTip struct {
	TimeMsec uint32
	X        float64
	Y        float64
	State    TipState
}

type RawTabletButton struct {
	TimeMsec uint32
	Button   uint32
	State    ButtonState
}

type RawTabletAxis struct {
	TimeMsec   uint32
	X          float64
	Y          float64
	Pressure   float64
	Distance   float64
	TiltX      float64
	TiltY      float64
	Slider     float64
	WheelDelta float64
}

type RawKey struct {
	TimeMsec uint32
	Code     uint32
	State    KeyState
	Mods     Modifiers
}

func (RawPointerButton) rawEvent()    {}
func (RawPointerMotion) rawEvent()    {}
func (RawPointerAbsMotion) rawEvent() {}
func (RawPointerAxis) rawEvent()      {}
func (RawTouchDown) rawEvent()        {}
func (RawTouchMotion) rawEvent()      {}
func (RawTouchUp) rawEvent()          {}
func (RawTouchCancel) rawEvent()      {}
func (RawTabletProximity) rawEvent()  {}
func (RawTabletTip) rawEvent()        {}
func (RawTabletButton) rawEvent()     {}
func (RawTabletAxis) rawEvent()       {}
func (RawKey) rawEvent()              {}

// Converter turns raw events into unified events. It scales normalized
// coordinates to the output size and integrates relative pointer motion
// into an absolute cursor position.
type Converter struct {
	screen platform.Size
	cursor platform.Point
}

// NewConverter returns a converter for an output of the given size. The
// cursor starts at the center.
func NewConverter(screen platform.Size) *Converter {
	return &Converter{
		screen: screen,
		cursor: platform.Point{X: screen.Width / 2, Y: screen.Height / 2},
	}
}

// SetScreen updates the output size used for scaling.
func (c *Converter) SetScreen(screen platform.Size) {
	c.screen = screen
	c.cursor = c.clamp(c.cursor)
}

// Screen returns the output size used for scaling.
func (c *Converter) Screen() platform.Size {
	return c.screen
}

// Cursor returns the integrated pointer position.
func (c *Converter) Cursor() platform.Point {
	return c.cursor
}

func (c *Converter) scale(x, y float64) platform.Point {
	return platform.Point{X: x * c.screen.Width, Y: y * c.screen.Height}
}

func (c *Converter) clamp(p platform.Point) platform.Point {
	p.X = math.Max(0, math.Min(p.X, c.screen.Width))
	p.Y = math.Max(0, math.Min(p.Y, c.screen.Height))
	return p
}

// Convert maps raw to its unified event. Unknown raw types and unknown
// backend states return an error wrapping ErrUnmappable.
func (c *Converter) Convert(raw Raw) (Event, error) {
	switch r := raw.(type) {
	case RawPointerButton:
		pressed, err := buttonPressed(r.State)
		if err != nil {
			return Event{}, err
		}
		return NewPointerButton(r.TimeMsec, r.Button, pressed), nil

	case RawPointerMotion:
		c.cursor = c.clamp(platform.Point{X: c.cursor.X + r.DX, Y: c.cursor.Y + r.DY})
		return NewPointerMotion(r.TimeMsec, c.cursor), nil

	case RawPointerAbsMotion:
		c.cursor = c.clamp(c.scale(r.X, r.Y))
		return NewPointerMotion(r.TimeMsec, c.cursor), nil

	case RawPointerAxis:
		if r.Source < platform.AxisSourceWheel || r.Source > platform.AxisSourceWheelTilt {
			return Event{}, fmt.Errorf("%w: axis source %d", ErrUnmappable, r.Source)
		}
		if r.Orientation != platform.AxisVertical && r.Orientation != platform.AxisHorizontal {
			return Event{}, fmt.Errorf("%w: axis orientation %d", ErrUnmappable, r.Orientation)
		}
		return NewPointerAxis(r.TimeMsec, r.Source, r.Orientation, r.Delta), nil

	case RawTouchDown:
		return NewTouchDown(r.TimeMsec, TouchID(r.ID), c.scale(r.X, r.Y)), nil

	case RawTouchMotion:
		return NewTouchMotion(r.TimeMsec, TouchID(r.ID), c.scale(r.X, r.Y)), nil

	case RawTouchUp:
		return NewTouchUp(r.TimeMsec, TouchID(r.ID)), nil

	case RawTouchCancel:
		return NewTouchCancel(r.TimeMsec, TouchID(r.ID)), nil

	case RawTabletProximity:
		var kind Kind
		switch r.State {
		case ProximityIn:
			kind = TabletProximityIn
		case ProximityOut:
			kind = TabletProximityOut
		default:
			return Event{}, fmt.Errorf("%w: tablet proximity state %d", ErrUnmappable, r.State)
		}
		return NewTablet(kind, r.TimeMsec, c.scale(r.X, r.Y)), nil

	case RawTabletTip:
		var kind Kind
		switch r.State {
		case TipDown:
			kind = TabletTipDown
		case TipUp:
			kind = TabletTipUp
		default:
			return Event{}, fmt.Errorf("%w: tablet tip state %d", ErrUnmappable, r.State)
		}
		return NewTablet(kind, r.TimeMsec, c.scale(r.X, r.Y)), nil

	case RawTabletButton:
		pressed, err := buttonPressed(r.State)
		if err != nil {
			return Event{}, err
		}
		kind := TabletButtonUp
		if pressed {
			kind = TabletButtonDown
		}
		return Event{Kind: kind, TimeMsec: r.TimeMsec, Button: r.Button}, nil

	case RawTabletAxis:
		ev := NewTablet(TabletAxis, r.TimeMsec, c.scale(r.X, r.Y))
		ev.Pressure = r.Pressure
		ev.Distance = r.Distance
		ev.Tilt = Tilt{X: r.TiltX, Y: r.TiltY}
		ev.Slider = r.Slider
		ev.WheelDelta = r.WheelDelta
		return ev, nil

	case RawKey:
		var pressed bool
		switch r.State {
		case KeyPressed:
			pressed = true
		case KeyReleased:
		default:
			return Event{}, fmt.Errorf("%w: key state %d", ErrUnmappable, r.State)
		}
		return NewKey(r.TimeMsec, r.Code, pressed, r.Mods), nil

	default:
		return Event{}, fmt.Errorf("%w: %T", ErrUnmappable, raw)
	}
}

func buttonPressed(state ButtonState) (bool, error) {
	switch state {
	case ButtonPressed:
		return true, nil
	case ButtonReleased:
		return false, nil
	default:
		return false, fmt.Errorf("%w: button state %d", ErrUnmappable, state)
	}
}
