package x11

import (
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/touchshell/touchshell/internal/platform"
)

// Backend adapts an X11 display to the shell's platform interfaces. The X
// server routes input to client windows on its own, so Seat notifications
// only move activation and are logged for debugging.
type Backend struct {
	conn            *Connection
	overlay         *Overlay
	output          Monitor
	activateOnEnter bool
	active          xproto.Window
	logger          *slog.Logger
}

var (
	_ platform.Surfaces = (*Backend)(nil)
	_ platform.Seat     = (*Backend)(nil)
	_ platform.Frame    = (*Backend)(nil)
)

// BackendConfig configures a Backend.
type BackendConfig struct {
	Output          Monitor
	ActivateOnEnter bool
	Logger          *slog.Logger
}

// NewBackend wraps conn. overlay may be nil, in which case chrome is only
// logged.
func NewBackend(conn *Connection, overlay *Overlay, cfg BackendConfig) *Backend {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn:            conn,
		overlay:         overlay,
		output:          cfg.Output,
		activateOnEnter: cfg.ActivateOnEnter,
		logger:          logger.With("backend", "x11"),
	}
}

// Output returns the monitor the backend drives.
func (b *Backend) Output() Monitor {
	return b.output
}

// SetOutput changes the driven monitor.
func (b *Backend) SetOutput(m Monitor) {
	b.output = m
}

// SetActivateOnEnter toggles window activation on pointer and touch entry.
func (b *Backend) SetActivateOnEnter(v bool) {
	b.activateOnEnter = v
}

// Geometry returns the window bounds relative to the driven output.
func (b *Backend) Geometry(id platform.SurfaceID) (platform.Rect, bool) {
	x, y, w, h, ok := b.conn.WindowRect(xproto.Window(id))
	if !ok {
		return platform.Rect{}, false
	}
	return platform.Rect{X: x - b.output.X, Y: y - b.output.Y, Width: w, Height: h}, true
}

func (b *Backend) activate(id platform.SurfaceID) {
	win := xproto.Window(id)
	if !b.activateOnEnter || b.active == win {
		return
	}
	if err := b.conn.Activate(win); err != nil {
		b.logger.Warn("failed to activate window", "window_id", uint32(id), "error", err)
		return
	}
	b.active = win
}

func (b *Backend) PointerNotifyEnter(surface platform.SurfaceID, local platform.Point) {
	b.logger.Debug("pointer enter", "window_id", uint32(surface), "x", local.X, "y", local.Y)
	b.activate(surface)
}

func (b *Backend) PointerNotifyLeave(surface platform.SurfaceID) {
	b.logger.Debug("pointer leave", "window_id", uint32(surface))
}

func (b *Backend) PointerNotifyMotion(timeMsec uint32, local platform.Point) {}

func (b *Backend) PointerNotifyButton(timeMsec uint32, button uint32, pressed bool) {
	b.logger.Debug("pointer button", "button", button, "pressed", pressed)
}

func (b *Backend) PointerNotifyAxis(timeMsec uint32, orientation platform.AxisOrientation, delta float64, source platform.AxisSource) {
	b.logger.Debug("pointer axis", "orientation", orientation.String(), "delta", delta, "source", source.String())
}

func (b *Backend) TouchNotifyDown(surface platform.SurfaceID, timeMsec uint32, id int32, local platform.Point) {
	b.logger.Debug("touch down", "window_id", uint32(surface), "touch_id", id, "x", local.X, "y", local.Y)
	b.activate(surface)
}

func (b *Backend) TouchNotifyMotion(timeMsec uint32, id int32, local platform.Point) {}

func (b *Backend) TouchNotifyUp(timeMsec uint32, id int32) {
	b.logger.Debug("touch up", "touch_id", id)
}

func (b *Backend) TouchNotifyCancel(timeMsec uint32, id int32) {
	b.logger.Debug("touch cancel", "touch_id", id)
}

// Dimensions returns the driven output size. The backend doubles as the
// frame: client windows are composited by the X server itself.
func (b *Backend) Dimensions() platform.Size {
	return platform.Size{Width: float64(b.output.Width), Height: float64(b.output.Height)}
}

func (b *Backend) Scale() float64 { return 1 }

func (b *Backend) Projection() platform.Matrix { return platform.Identity() }

func (b *Backend) RenderSurface(id platform.SurfaceID, bounds platform.Rect) {}

// RenderChrome draws c on the overlay window, translated to root
// coordinates.
func (b *Backend) RenderChrome(c platform.Chrome) {
	if b.overlay == nil {
		b.logger.Debug("chrome", "name", c.Name, "y", c.Bounds.Y)
		return
	}
	dx, dy := float64(b.output.X), float64(b.output.Y)
	c.Bounds.X += dx
	c.Bounds.Y += dy
	c.Indicator.X += dx
	c.Indicator.Y += dy
	b.overlay.Draw(c)
}
