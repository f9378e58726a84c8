package x11

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/touchshell/touchshell/internal/event"
	"github.com/touchshell/touchshell/internal/platform"
)

var testOutput = Monitor{Name: "test", X: 100, Y: 0, Width: 800, Height: 400}

func TestTranslatorButtons(t *testing.T) {
	tr := NewTranslator(testOutput, false)

	tests := []struct {
		name    string
		detail  xproto.Button
		pressed bool
		want    event.Raw
		ok      bool
	}{
		{"left press", 1, true, event.RawPointerButton{TimeMsec: 5, Button: btnLeft, State: event.ButtonPressed}, true},
		{"right release", 3, false, event.RawPointerButton{TimeMsec: 5, Button: btnRight, State: event.ButtonReleased}, true},
		{"middle press", 2, true, event.RawPointerButton{TimeMsec: 5, Button: btnMiddle, State: event.ButtonPressed}, true},
		{"wheel up", 4, true, event.RawPointerAxis{TimeMsec: 5, Source: platform.AxisSourceWheel, Orientation: platform.AxisVertical, Delta: -15}, true},
		{"wheel down", 5, true, event.RawPointerAxis{TimeMsec: 5, Source: platform.AxisSourceWheel, Orientation: platform.AxisVertical, Delta: 15}, true},
		{"wheel right", 7, true, event.RawPointerAxis{TimeMsec: 5, Source: platform.AxisSourceWheel, Orientation: platform.AxisHorizontal, Delta: 15}, true},
		{"wheel release", 4, false, nil, false},
		{"unknown button", 12, true, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tr.Button(tt.detail, 150, 50, 5, tt.pressed)
			if ok != tt.ok {
				t.Fatalf("ok=%v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Fatalf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestTranslatorEmulatedTouch(t *testing.T) {
	tr := NewTranslator(testOutput, true)

	raw, ok := tr.Button(1, 500, 200, 10, true)
	if !ok {
		t.Fatalf("expected touch down")
	}
	if want := (event.RawTouchDown{TimeMsec: 10, ID: 0, X: 0.5, Y: 0.5}); raw != want {
		t.Fatalf("got %#v, want %#v", raw, want)
	}
	if !tr.Touching() {
		t.Fatalf("expected touch in progress")
	}

	if got, want := tr.Motion(100, 400, 11), (event.RawTouchMotion{TimeMsec: 11, ID: 0, X: 0, Y: 1}); got != want {
		t.Fatalf("motion: got %#v, want %#v", got, want)
	}

	raw, ok = tr.Button(1, 100, 400, 12, false)
	if !ok || raw != (event.RawTouchUp{TimeMsec: 12, ID: 0}) {
		t.Fatalf("release: got %#v ok=%v", raw, ok)
	}
	if tr.Touching() {
		t.Fatalf("touch still in progress after release")
	}

	if got, want := tr.Motion(300, 100, 13), (event.RawPointerAbsMotion{TimeMsec: 13, X: 0.25, Y: 0.25}); got != want {
		t.Fatalf("motion after release: got %#v, want %#v", got, want)
	}

	if _, ok := tr.Button(1, 0, 0, 14, false); ok {
		t.Fatalf("release without press should be dropped")
	}
}

func TestTranslatorCancel(t *testing.T) {
	tr := NewTranslator(testOutput, true)
	if _, ok := tr.Cancel(1); ok {
		t.Fatalf("cancel without touch should be dropped")
	}
	tr.Button(1, 200, 200, 2, true)
	raw, ok := tr.Cancel(3)
	if !ok || raw != (event.RawTouchCancel{TimeMsec: 3, ID: 0}) {
		t.Fatalf("got %#v ok=%v", raw, ok)
	}
}

func TestTranslatorKey(t *testing.T) {
	tr := NewTranslator(testOutput, false)
	state := uint16(xproto.ModMaskControl | xproto.ModMask1 | xproto.ModMaskLock)
	// X keycode 68 is F2 (evdev 60).
	got := tr.Key(68, state, 20, true)
	want := event.RawKey{TimeMsec: 20, Code: 60, State: event.KeyPressed, Mods: event.ModCtrl | event.ModAlt}
	if got != want {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestModifiers(t *testing.T) {
	got := Modifiers(xproto.ModMaskShift | xproto.ModMask4)
	if got != event.ModShift|event.ModSuper {
		t.Fatalf("got %v", got)
	}
	if Modifiers(0) != 0 {
		t.Fatalf("expected no modifiers")
	}
}

func TestPickOutput(t *testing.T) {
	monitors := []Monitor{
		{ID: 0, Name: "left", Width: 1000, Height: 800},
		{ID: 1, Name: "right", X: 1000, Width: 720, Height: 1440},
	}
	if got := pickOutput(monitors, 1200, 10); got.Name != "right" {
		t.Fatalf("expected monitor under pointer, got %q", got.Name)
	}
	if got := pickOutput(monitors, -1, -1); got.Name != "left" {
		t.Fatalf("expected first monitor fallback, got %q", got.Name)
	}
}

func TestToRectangle(t *testing.T) {
	got := toRectangle(platform.RectF{X: 10.4, Y: 1421.6, Width: 169.9, Height: -2})
	want := xproto.Rectangle{X: 10, Y: 1422, Width: 170, Height: 0}
	if got != want {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}
