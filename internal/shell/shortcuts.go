package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/touchshell/touchshell/internal/event"
)

// ErrUnknownKey is returned when a shortcut names a key or modifier that
// cannot be resolved.
var ErrUnknownKey = errors.New("unknown key")

// ActionKind is what a shortcut does.
type ActionKind int

const (
	ActionQuit ActionKind = iota
	ActionSwitchVT
)

func (k ActionKind) String() string {
	switch k {
	case ActionQuit:
		return "quit"
	case ActionSwitchVT:
		return "switch-vt"
	default:
		return "unknown"
	}
}

// Binding maps a key press to an action. Code is an evdev key code.
type Binding struct {
	Mods   event.Modifiers
	Code   uint32
	Action ActionKind
	VT     int
}

// Matches reports whether ev triggers b. Extra modifiers are allowed.
func (b Binding) Matches(ev event.Event) bool {
	return ev.Kind == event.KeyDown && ev.Code == b.Code && ev.Mods.Has(b.Mods)
}

// Actions performs shortcut actions on behalf of the server.
type Actions interface {
	Quit()
	SwitchVT(vt int) error
}

// evdev key codes.
const (
	keyEsc = 1
	keyF1  = 59
	keyF11 = 87
	keyF12 = 88
)

var modifierNames = map[string]event.Modifiers{
	"shift":   event.ModShift,
	"ctrl":    event.ModCtrl,
	"control": event.ModCtrl,
	"alt":     event.ModAlt,
	"mod1":    event.ModAlt,
	"super":   event.ModSuper,
	"mod4":    event.ModSuper,
}

// KeyCode resolves a key name such as "esc" or "f3" to its evdev code.
func KeyCode(name string) (uint32, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "esc", "escape":
		return keyEsc, nil
	case "f11":
		return keyF11, nil
	case "f12":
		return keyF12, nil
	}
	if rest, ok := strings.CutPrefix(name, "f"); ok {
		n, err := strconv.Atoi(rest)
		if err == nil && n >= 1 && n <= 10 {
			return uint32(keyF1 + n - 1), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, name)
}

// ParseModifiers parses a "+" separated modifier list such as "ctrl+alt".
func ParseModifiers(spec string) (event.Modifiers, error) {
	var mods event.Modifiers
	for _, part := range strings.Split(spec, "+") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		m, ok := modifierNames[part]
		if !ok {
			return 0, fmt.Errorf("%w: modifier %q", ErrUnknownKey, part)
		}
		mods |= m
	}
	return mods, nil
}

// ParseKey parses a combination such as "ctrl+shift+alt+esc". The last
// element is the key, everything before it a modifier.
func ParseKey(spec string) (event.Modifiers, uint32, error) {
	idx := strings.LastIndex(spec, "+")
	mods, err := ParseModifiers(spec[:max(idx, 0)])
	if err != nil {
		return 0, 0, err
	}
	code, err := KeyCode(spec[idx+1:])
	if err != nil {
		return 0, 0, err
	}
	return mods, code, nil
}

// BuildBindings returns the quit binding followed by one switch binding per
// virtual terminal 1..vtCount.
func BuildBindings(quit, vtModifiers string, vtCount int) ([]Binding, error) {
	var bindings []Binding
	if quit != "" {
		mods, code, err := ParseKey(quit)
		if err != nil {
			return nil, fmt.Errorf("quit shortcut: %w", err)
		}
		bindings = append(bindings, Binding{Mods: mods, Code: code, Action: ActionQuit})
	}
	if vtCount > 0 {
		mods, err := ParseModifiers(vtModifiers)
		if err != nil {
			return nil, fmt.Errorf("switch_vt_modifiers: %w", err)
		}
		for vt := 1; vt <= vtCount; vt++ {
			code, err := KeyCode("f" + strconv.Itoa(vt))
			if err != nil {
				return nil, fmt.Errorf("switch to vt %d: %w", vt, err)
			}
			bindings = append(bindings, Binding{Mods: mods, Code: code, Action: ActionSwitchVT, VT: vt})
		}
	}
	return bindings, nil
}

// DefaultBindings returns Ctrl+Shift+Alt+Esc to quit and Ctrl+Alt+F1..F7 to
// switch virtual terminals.
func DefaultBindings() []Binding {
	b, _ := BuildBindings("ctrl+shift+alt+esc", "ctrl+alt", 7)
	return b
}
