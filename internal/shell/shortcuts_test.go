package shell

import (
	"errors"
	"testing"

	"github.com/touchshell/touchshell/internal/event"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		spec     string
		wantMods event.Modifiers
		wantCode uint32
		wantErr  bool
	}{
		{"ctrl+shift+alt+esc", event.ModCtrl | event.ModShift | event.ModAlt, 1, false},
		{"Ctrl+Alt+F1", event.ModCtrl | event.ModAlt, 59, false},
		{"super+f10", event.ModSuper, 68, false},
		{"f12", 0, 88, false},
		{"ctrl+f13", 0, 0, true},
		{"hyper+esc", 0, 0, true},
		{"ctrl+", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			mods, code, err := ParseKey(tt.spec)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownKey) {
					t.Fatalf("ParseKey(%q) error = %v, want ErrUnknownKey", tt.spec, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKey(%q): %v", tt.spec, err)
			}
			if mods != tt.wantMods || code != tt.wantCode {
				t.Fatalf("ParseKey(%q) = %v, %d; want %v, %d", tt.spec, mods, code, tt.wantMods, tt.wantCode)
			}
		})
	}
}

func TestDefaultBindings(t *testing.T) {
	b := DefaultBindings()
	if len(b) != 8 {
		t.Fatalf("len(DefaultBindings()) = %d, want 8", len(b))
	}
	if b[0].Action != ActionQuit || b[0].Code != 1 {
		t.Fatalf("first binding = %+v, want quit on esc", b[0])
	}
	for i, vt := range b[1:] {
		if vt.Action != ActionSwitchVT || vt.VT != i+1 || vt.Code != uint32(59+i) {
			t.Fatalf("binding %d = %+v", i+1, vt)
		}
	}
}

func TestBuildBindings_Errors(t *testing.T) {
	if _, err := BuildBindings("ctrl+nope", "ctrl+alt", 7); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("bad quit key error = %v", err)
	}
	if _, err := BuildBindings("", "ctrl+meta", 7); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("bad vt modifiers error = %v", err)
	}
	b, err := BuildBindings("", "", 0)
	if err != nil || len(b) != 0 {
		t.Fatalf("empty bindings = %v, %v", b, err)
	}
}
