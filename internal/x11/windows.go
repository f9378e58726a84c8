package x11

import (
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// WindowRect returns the window bounds in root coordinates. ok is false once
// the window is gone.
func (c *Connection) WindowRect(win xproto.Window) (x, y, width, height int, ok bool) {
	xc := c.XUtil.Conn()
	geom, err := xproto.GetGeometry(xc, xproto.Drawable(win)).Reply()
	if err != nil {
		return 0, 0, 0, 0, false
	}
	pos, err := xproto.TranslateCoordinates(xc, win, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, false
	}
	return int(pos.DstX), int(pos.DstY), int(geom.Width), int(geom.Height), true
}

// AppID is the WM_CLASS class, or the instance when the class is blank.
func (c *Connection) AppID(win xproto.Window) string {
	cls, err := icccm.WmClassGet(c.XUtil, win)
	if err != nil {
		return ""
	}
	if id := strings.TrimSpace(cls.Class); id != "" {
		return id
	}
	return strings.TrimSpace(cls.Instance)
}

// IsNormalWindow reports whether win is an application window. Windows
// without a type hint count as normal. Docks, desktops, splashes and other
// typed windows never become views.
func (c *Connection) IsNormalWindow(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil || len(types) == 0 {
		return true
	}
	return slices.Contains(types, "_NET_WM_WINDOW_TYPE_NORMAL")
}

// Clients returns the visible application windows in mapping order, from the
// EWMH client list when a window manager keeps one and from the mapped root
// children otherwise.
func (c *Connection) Clients() ([]xproto.Window, error) {
	wins, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		if wins, err = c.mappedChildren(); err != nil {
			return nil, err
		}
	}
	return slices.DeleteFunc(wins, func(w xproto.Window) bool {
		return !c.IsNormalWindow(w) || c.hidden(w)
	}), nil
}

func (c *Connection) mappedChildren() ([]xproto.Window, error) {
	xc := c.XUtil.Conn()
	tree, err := xproto.QueryTree(xc, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query window tree: %w", err)
	}
	var out []xproto.Window
	for _, w := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(xc, w).Reply()
		if err == nil && !attrs.OverrideRedirect && attrs.MapState == xproto.MapStateViewable {
			out = append(out, w)
		}
	}
	return out, nil
}

func (c *Connection) hidden(win xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, win)
	return err == nil && slices.Contains(states, "_NET_WM_STATE_HIDDEN")
}

// Activate asks the window manager to focus and raise win through a
// _NET_ACTIVE_WINDOW client message sent as a pager.
func (c *Connection) Activate(win xproto.Window) error {
	const name = "_NET_ACTIVE_WINDOW"
	xc := c.XUtil.Conn()
	atom, err := xproto.InternAtom(xc, false, uint16(len(name)), name).Reply()
	if err != nil {
		return fmt.Errorf("failed to intern %s: %w", name, err)
	}

	const sourcePager = 2
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   atom.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{sourcePager, 0, 0, 0, 0}),
	}
	mask := uint32(xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify)
	return xproto.SendEventChecked(xc, false, c.Root, mask, string(ev.Bytes())).Check()
}
