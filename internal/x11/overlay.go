package x11

import (
	"fmt"
	"math"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/touchshell/touchshell/internal/platform"
)

// Overlay is an override-redirect window that draws shell chrome such as
// the home bar. It also receives the input that starts a home-bar gesture.
type Overlay struct {
	conn   *Connection
	win    *xwindow.Window
	gc     xproto.Gcontext
	bounds xproto.Rectangle
	mapped bool
}

// NewOverlay creates the (unmapped) overlay window.
func NewOverlay(c *Connection) (*Overlay, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate overlay window: %w", err)
	}

	screen := c.XUtil.Screen()
	err = win.CreateChecked(c.Root, 0, 0, 1, 1,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		screen.BlackPixel,
		1,
		xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease|
			xproto.EventMaskPointerMotion|xproto.EventMaskExposure,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create overlay window: %w", err)
	}

	gc, err := xproto.NewGcontextId(c.XUtil.Conn())
	if err != nil {
		win.Destroy()
		return nil, fmt.Errorf("failed to allocate overlay gc: %w", err)
	}
	err = xproto.CreateGCChecked(c.XUtil.Conn(), gc, xproto.Drawable(win.Id),
		xproto.GcForeground, []uint32{screen.WhitePixel}).Check()
	if err != nil {
		win.Destroy()
		return nil, fmt.Errorf("failed to create overlay gc: %w", err)
	}

	return &Overlay{conn: c, win: win, gc: gc}, nil
}

// Window returns the overlay's X window id.
func (o *Overlay) Window() xproto.Window {
	return o.win.Id
}

// Draw moves the overlay to the chrome bounds and paints its indicator. The
// core protocol has no per-window alpha, so Alpha is ignored.
func (o *Overlay) Draw(c platform.Chrome) {
	bounds := toRectangle(c.Bounds)
	if bounds.Width == 0 || bounds.Height == 0 {
		return
	}
	if bounds != o.bounds {
		o.win.MoveResize(int(bounds.X), int(bounds.Y), int(bounds.Width), int(bounds.Height))
		o.bounds = bounds
	}
	if !o.mapped {
		o.win.Map()
		o.mapped = true
	}
	xproto.ConfigureWindow(o.conn.XUtil.Conn(), o.win.Id,
		xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})

	indicator := toRectangle(platform.RectF{
		X:      c.Indicator.X - c.Bounds.X,
		Y:      c.Indicator.Y - c.Bounds.Y,
		Width:  c.Indicator.Width,
		Height: c.Indicator.Height,
	})
	xproto.ClearArea(o.conn.XUtil.Conn(), false, o.win.Id, 0, 0, 0, 0)
	xproto.PolyFillRectangle(o.conn.XUtil.Conn(), xproto.Drawable(o.win.Id), o.gc,
		[]xproto.Rectangle{indicator})
}

// Destroy frees the overlay window and its graphics context.
func (o *Overlay) Destroy() {
	xproto.FreeGC(o.conn.XUtil.Conn(), o.gc)
	o.win.Destroy()
}

func toRectangle(r platform.RectF) xproto.Rectangle {
	return xproto.Rectangle{
		X:      int16(math.Round(r.X)),
		Y:      int16(math.Round(r.Y)),
		Width:  uint16(math.Max(0, math.Round(r.Width))),
		Height: uint16(math.Max(0, math.Round(r.Height))),
	}
}
