package x11

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/touchshell/touchshell/internal/event"
	"github.com/touchshell/touchshell/internal/platform"
)

// evdev button codes
const (
	btnLeft   = 0x110
	btnRight  = 0x111
	btnMiddle = 0x112
	btnSide   = 0x113
	btnExtra  = 0x114
)

// X keycodes are evdev codes offset by 8.
const evdevKeycodeOffset = 8

// wheelStep is the scroll distance of one wheel click.
const wheelStep = 15

// emulatedTouchID is the touch point the primary button stands in for.
const emulatedTouchID = 0

// Translator turns core X input into raw shell events. Coordinates are
// normalized against the driven output.
type Translator struct {
	output       Monitor
	emulateTouch bool
	touching     bool
}

// NewTranslator returns a translator for output. With emulateTouch the
// primary button drives touch point 0 instead of the pointer.
func NewTranslator(output Monitor, emulateTouch bool) *Translator {
	return &Translator{output: output, emulateTouch: emulateTouch}
}

// SetOutput changes the output used for normalization.
func (t *Translator) SetOutput(output Monitor) {
	t.output = output
}

// Touching reports whether an emulated touch is in progress.
func (t *Translator) Touching() bool {
	return t.touching
}

func (t *Translator) normalize(rootX, rootY int16) (float64, float64) {
	if t.output.Width <= 0 || t.output.Height <= 0 {
		return 0, 0
	}
	x := float64(int(rootX)-t.output.X) / float64(t.output.Width)
	y := float64(int(rootY)-t.output.Y) / float64(t.output.Height)
	return x, y
}

// Button translates a button press or release. ok is false for events with
// no shell counterpart, such as the release of a wheel click.
func (t *Translator) Button(detail xproto.Button, rootX, rootY int16, ts xproto.Timestamp, pressed bool) (raw event.Raw, ok bool) {
	ms := uint32(ts)
	switch detail {
	case 4, 5, 6, 7:
		if !pressed {
			return nil, false
		}
		orientation := platform.AxisVertical
		if detail >= 6 {
			orientation = platform.AxisHorizontal
		}
		delta := float64(wheelStep)
		if detail == 4 || detail == 6 {
			delta = -delta
		}
		return event.RawPointerAxis{
			TimeMsec:    ms,
			Source:      platform.AxisSourceWheel,
			Orientation: orientation,
			Delta:       delta,
		}, true
	}

	if detail == 1 && t.emulateTouch {
		x, y := t.normalize(rootX, rootY)
		if pressed {
			t.touching = true
			return event.RawTouchDown{TimeMsec: ms, ID: emulatedTouchID, X: x, Y: y}, true
		}
		if !t.touching {
			return nil, false
		}
		t.touching = false
		return event.RawTouchUp{TimeMsec: ms, ID: emulatedTouchID}, true
	}

	code, known := buttonCode(detail)
	if !known {
		return nil, false
	}
	state := event.ButtonReleased
	if pressed {
		state = event.ButtonPressed
	}
	return event.RawPointerButton{TimeMsec: ms, Button: code, State: state}, true
}

// Motion translates pointer motion.
func (t *Translator) Motion(rootX, rootY int16, ts xproto.Timestamp) event.Raw {
	x, y := t.normalize(rootX, rootY)
	if t.touching {
		return event.RawTouchMotion{TimeMsec: uint32(ts), ID: emulatedTouchID, X: x, Y: y}
	}
	return event.RawPointerAbsMotion{TimeMsec: uint32(ts), X: x, Y: y}
}

// Cancel ends an emulated touch the host lost track of, for example when
// the pointer grab was broken. ok is false when no touch is active.
func (t *Translator) Cancel(ts xproto.Timestamp) (raw event.Raw, ok bool) {
	if !t.touching {
		return nil, false
	}
	t.touching = false
	return event.RawTouchCancel{TimeMsec: uint32(ts), ID: emulatedTouchID}, true
}

// Key translates a key press or release.
func (t *Translator) Key(keycode xproto.Keycode, state uint16, ts xproto.Timestamp, pressed bool) event.Raw {
	ks := event.KeyReleased
	if pressed {
		ks = event.KeyPressed
	}
	var code uint32
	if keycode >= evdevKeycodeOffset {
		code = uint32(keycode) - evdevKeycodeOffset
	}
	return event.RawKey{TimeMsec: uint32(ts), Code: code, State: ks, Mods: Modifiers(state)}
}

// Modifiers converts an X modifier state mask.
func Modifiers(state uint16) event.Modifiers {
	var mods event.Modifiers
	if state&xproto.ModMaskShift != 0 {
		mods |= event.ModShift
	}
	if state&xproto.ModMaskControl != 0 {
		mods |= event.ModCtrl
	}
	if state&xproto.ModMask1 != 0 {
		mods |= event.ModAlt
	}
	if state&xproto.ModMask4 != 0 {
		mods |= event.ModSuper
	}
	return mods
}

func buttonCode(detail xproto.Button) (uint32, bool) {
	switch detail {
	case 1:
		return btnLeft, true
	case 2:
		return btnMiddle, true
	case 3:
		return btnRight, true
	case 8:
		return btnSide, true
	case 9:
		return btnExtra, true
	default:
		return 0, false
	}
}
