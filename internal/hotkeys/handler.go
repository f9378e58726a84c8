package hotkeys

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/touchshell/touchshell/internal/event"
	"github.com/touchshell/touchshell/internal/shell"
	"github.com/touchshell/touchshell/internal/x11"
)

// keysyms names the evdev codes a shortcut may use.
var keysyms = map[uint32]string{
	1:  "Escape",
	59: "F1",
	60: "F2",
	61: "F3",
	62: "F4",
	63: "F5",
	64: "F6",
	65: "F7",
	66: "F8",
	67: "F9",
	68: "F10",
	87: "F11",
	88: "F12",
}

// modNames lists modifiers in the order xgbutil sequences spell them.
var modNames = []struct {
	mod  event.Modifiers
	name string
}{
	{event.ModSuper, "Mod4"},
	{event.ModCtrl, "Control"},
	{event.ModShift, "Shift"},
	{event.ModAlt, "Mod1"},
}

// KeyFunc receives a grabbed key press.
type KeyFunc func(ev xevent.KeyPressEvent)

// Handler grabs the shell's global shortcuts on the root window. Grabbed
// presses are handed back to the shell, which decides what they do.
type Handler struct {
	xu   *xgbutil.XUtil
	root xproto.Window
}

var ignoreModsOnce sync.Once

func NewHandler(conn *x11.Connection) *Handler {
	ignoreModsOnce.Do(func() { configureIgnoreMods(conn.XUtil) })
	return &Handler{xu: conn.XUtil, root: conn.Root}
}

// Sequence formats a binding as an xgbutil key sequence such as
// "Control-Mod1-F2".
func Sequence(b shell.Binding) (string, error) {
	key, ok := keysyms[b.Code]
	if !ok {
		return "", fmt.Errorf("%w: evdev code %d", shell.ErrUnknownKey, b.Code)
	}
	var parts []string
	for _, m := range modNames {
		if b.Mods.Has(m.mod) {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(append(parts, key), "-"), nil
}

// Register grabs every binding and routes its presses to fn. Bindings that
// fail to grab are reported together; the rest stay registered.
func (h *Handler) Register(bindings []shell.Binding, fn KeyFunc) error {
	var errs []error
	for _, b := range bindings {
		seq, err := Sequence(b)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		err = keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
			fn(ev)
		}).Connect(h.xu, h.root, seq, true)
		if err != nil {
			errs = append(errs, fmt.Errorf("grab %s: %w", seq, err))
		}
	}
	return errors.Join(errs...)
}

// Reset drops every shortcut callback and grab on the root window.
func (h *Handler) Reset() {
	keybind.Detach(h.xu, h.root)
	xproto.UngrabKey(h.xu.Conn(), xproto.GrabAny, h.root, xproto.ModMaskAny)
}

// configureIgnoreMods makes grabs match with any combination of the lock
// modifiers held.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	locks := []uint16{xproto.ModMaskLock}
	for _, sym := range []string{"Num_Lock", "Scroll_Lock"} {
		if m := lockMask(xu, sym); m != 0 && !slices.Contains(locks, m) {
			locks = append(locks, m)
		}
	}

	combos := []uint16{0}
	for _, l := range locks {
		for _, c := range combos {
			combos = append(combos, c|l)
		}
	}
	xevent.IgnoreMods = combos
}

func lockMask(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, code := range keybind.StrToKeycodes(xu, keysym) {
		if m := keybind.ModGet(xu, code); m != 0 {
			return m
		}
	}
	return 0
}
