// Package event normalizes backend input into one closed set of event kinds
// so routing code never depends on a particular backend's types.
package event

import (
	"github.com/touchshell/touchshell/internal/platform"
)

// Kind identifies the variant carried by an Event.
type Kind int

const (
	KindInvalid Kind = iota
	PointerDown
	PointerUp
	PointerMotion
	PointerAxis
	TouchDown
	TouchMotion
	TouchUp
	TouchCancel
	TabletProximityIn
	TabletProximityOut
	TabletTipDown
	TabletTipUp
	TabletButtonDown
	TabletButtonUp
	TabletAxis
	KeyDown
	KeyUp
)

func (k Kind) String() string {
	switch k {
	case PointerDown:
		return "pointer-down"
	case PointerUp:
		return "pointer-up"
	case PointerMotion:
		return "pointer-motion"
	case PointerAxis:
		return "pointer-axis"
	case TouchDown:
		return "touch-down"
	case TouchMotion:
		return "touch-motion"
	case TouchUp:
		return "touch-up"
	case TouchCancel:
		return "touch-cancel"
	case TabletProximityIn:
		return "tablet-proximity-in"
	case TabletProximityOut:
		return "tablet-proximity-out"
	case TabletTipDown:
		return "tablet-tip-down"
	case TabletTipUp:
		return "tablet-tip-up"
	case TabletButtonDown:
		return "tablet-button-down"
	case TabletButtonUp:
		return "tablet-button-up"
	case TabletAxis:
		return "tablet-axis"
	case KeyDown:
		return "key-down"
	case KeyUp:
		return "key-up"
	default:
		return "invalid"
	}
}

// TouchID correlates the down, motion, up and cancel events of one contact.
// Backends may reuse an id once its up or cancel has been delivered.
type TouchID int32

// Modifiers is the set of keyboard modifiers held during a key event.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

// Has reports whether all of m2 are held.
func (m Modifiers) Has(m2 Modifiers) bool {
	return m&m2 == m2
}

// Tilt is a tablet tool tilt in degrees.
type Tilt struct {
	X float64
	Y float64
}

// Event is a normalized input event. Only the fields relevant to Kind are
// meaningful.
type Event struct {
	Kind Kind
	// TimeMsec is the backend timestamp in milliseconds.
	TimeMsec uint32

	Button  uint32
	TouchID TouchID
	Code    uint32
	Mods    Modifiers

	Source      platform.AxisSource
	Orientation platform.AxisOrientation
	Delta       float64

	Pressure   float64
	Distance   float64
	Tilt       Tilt
	Slider     float64
	WheelDelta float64

	location platform.Point
}

// IsPointerEvent reports whether seat pointer/touch focus routing applies.
// Every kind except key events qualifies.
func (e Event) IsPointerEvent() bool {
	switch e.Kind {
	case KeyDown, KeyUp, KindInvalid:
		return false
	default:
		return true
	}
}

func (e Event) hasLocation() bool {
	switch e.Kind {
	case PointerMotion, TouchDown, TouchMotion,
		TabletProximityIn, TabletProximityOut,
		TabletTipDown, TabletTipUp, TabletAxis:
		return true
	default:
		return false
	}
}

// Location returns the screen location carried by the event, if its kind has
// one.
func (e Event) Location() (platform.Point, bool) {
	if !e.hasLocation() {
		return platform.Point{}, false
	}
	return e.location, true
}

// SetLocation rewrites the carried location. It reports false and leaves the
// event untouched for kinds without a location.
func (e *Event) SetLocation(p platform.Point) bool {
	if !e.hasLocation() {
		return false
	}
	e.location = p
	return true
}

// IsTouch reports whether the event belongs to a touch sequence.
func (e Event) IsTouch() bool {
	switch e.Kind {
	case TouchDown, TouchMotion, TouchUp, TouchCancel:
		return true
	default:
		return false
	}
}

// NewPointerButton builds a PointerDown or PointerUp event.
func NewPointerButton(timeMsec uint32, button uint32, pressed bool) Event {
	kind := PointerUp
	if pressed {
		kind = PointerDown
	}
	return Event{Kind: kind, TimeMsec: timeMsec, Button: button}
}

// NewPointerMotion builds a motion event at an absolute output position.
func NewPointerMotion(timeMsec uint32, at platform.Point) Event {
	return Event{Kind: PointerMotion, TimeMsec: timeMsec, location: at}
}

// NewPointerAxis builds a scroll event. It carries no location.
func NewPointerAxis(timeMsec uint32, source platform.AxisSource, orientation platform.AxisOrientation, delta float64) Event {
	return Event{Kind: PointerAxis, TimeMsec: timeMsec, Source: source, Orientation: orientation, Delta: delta}
}

// NewTouchDown starts touch sequence id at an output position.
func NewTouchDown(timeMsec uint32, id TouchID, at platform.Point) Event {
	return Event{Kind: TouchDown, TimeMsec: timeMsec, TouchID: id, location: at}
}

// NewTouchMotion moves touch id to an output position.
func NewTouchMotion(timeMsec uint32, id TouchID, at platform.Point) Event {
	return Event{Kind: TouchMotion, TimeMsec: timeMsec, TouchID: id, location: at}
}

// NewTouchUp ends touch sequence id.
func NewTouchUp(timeMsec uint32, id TouchID) Event {
	return Event{Kind: TouchUp, TimeMsec: timeMsec, TouchID: id}
}

// NewTouchCancel aborts touch sequence id.
func NewTouchCancel(timeMsec uint32, id TouchID) Event {
	return Event{Kind: TouchCancel, TimeMsec: timeMsec, TouchID: id}
}

// NewKey builds a KeyDown or KeyUp event for an evdev code.
func NewKey(timeMsec uint32, code uint32, pressed bool, mods Modifiers) Event {
	kind := KeyUp
	if pressed {
		kind = KeyDown
	}
	return Event{Kind: kind, TimeMsec: timeMsec, Code: code, Mods: mods}
}

// NewTablet builds a located tablet event (proximity, tip or axis).
func NewTablet(kind Kind, timeMsec uint32, at platform.Point) Event {
	return Event{Kind: kind, TimeMsec: timeMsec, location: at}
}
