package hotkeys

import (
	"errors"
	"testing"

	"github.com/touchshell/touchshell/internal/event"
	"github.com/touchshell/touchshell/internal/shell"
)

func TestSequence(t *testing.T) {
	tests := []struct {
		name    string
		binding shell.Binding
		want    string
	}{
		{"quit", shell.Binding{Mods: event.ModCtrl | event.ModShift | event.ModAlt, Code: 1}, "Control-Shift-Mod1-Escape"},
		{"vt2", shell.Binding{Mods: event.ModCtrl | event.ModAlt, Code: 60}, "Control-Mod1-F2"},
		{"super f12", shell.Binding{Mods: event.ModSuper, Code: 88}, "Mod4-F12"},
		{"bare key", shell.Binding{Code: 87}, "F11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sequence(tt.binding)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSequenceUnknownKey(t *testing.T) {
	_, err := Sequence(shell.Binding{Code: 30})
	if !errors.Is(err, shell.ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
}

func TestSequenceCoversDefaultBindings(t *testing.T) {
	for _, b := range shell.DefaultBindings() {
		if _, err := Sequence(b); err != nil {
			t.Fatalf("default binding %+v: %v", b, err)
		}
	}
}
