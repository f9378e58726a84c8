package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// NewConnection connects to display, or to $DISPLAY when display is empty.
func NewConnection(display string) (*Connection, error) {
	var (
		xu  *xgbutil.XUtil
		err error
	)
	if display == "" {
		xu, err = xgbutil.NewConn()
	} else {
		xu, err = xgbutil.NewConnDisplay(display)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}

	// Initialize keybind module (required for global hotkeys)
	keybind.Initialize(xu)

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// WatchRoot selects the root window events the shell host consumes: screen
// and child structure changes plus client list updates.
func (c *Connection) WatchRoot() error {
	return xwindow.New(c.XUtil, c.Root).Listen(
		xproto.EventMaskStructureNotify,
		xproto.EventMaskSubstructureNotify,
		xproto.EventMaskPropertyChange,
	)
}

// WatchRootInput adds pointer input on the bare desktop. Only one client may
// select button presses on a window, so this fails when a window manager
// already holds them.
func (c *Connection) WatchRootInput() error {
	return xwindow.New(c.XUtil, c.Root).Listen(
		xproto.EventMaskStructureNotify,
		xproto.EventMaskSubstructureNotify,
		xproto.EventMaskPropertyChange,
		xproto.EventMaskButtonPress,
		xproto.EventMaskButtonRelease,
		xproto.EventMaskPointerMotion,
	)
}

// RootSize returns the size of the root window in pixels.
func (c *Connection) RootSize() (width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query root geometry: %w", err)
	}
	return int(geom.Width), int(geom.Height), nil
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
