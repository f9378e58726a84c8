package replay

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/touchshell/touchshell/internal/homebar"
	"github.com/touchshell/touchshell/internal/platform"
	"github.com/touchshell/touchshell/internal/shell"
)

// epoch is the simulated wall clock at the start of every replay.
var epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Result is the outcome of a replay.
type Result struct {
	Lines    []string
	Snapshot shell.Snapshot
}

// Options tunes a replay.
type Options struct {
	Logger *slog.Logger
	// Out receives each recorded line as it happens.
	Out io.Writer
	// Frames records every surface drawn, not only the chrome.
	Frames bool
}

// player is the scripted backend: surface table, seat, frame and clock.
type player struct {
	script  *Script
	opts    Options
	now     time.Time
	apps    map[platform.SurfaceID]string
	rects   map[platform.SurfaceID]platform.Rect
	lines   []string
	server  *shell.Server
	logger  *slog.Logger
	frameNo int
}

// Run plays script against a fresh shell.
func Run(script *Script, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p := &player{
		script: script,
		opts:   opts,
		now:    epoch,
		apps:   make(map[platform.SurfaceID]string),
		rects:  make(map[platform.SurfaceID]platform.Rect),
		logger: logger,
	}
	for _, s := range script.Surfaces {
		id := platform.SurfaceID(s.ID)
		p.apps[id] = s.AppID
		p.rects[id] = platform.Rect{X: s.Rect.X, Y: s.Rect.Y, Width: s.Rect.Width, Height: s.Rect.Height}
	}

	serverOpts := []shell.Option{
		shell.WithLogger(logger),
		shell.WithClock(p.clock),
		shell.WithStrip(homebar.DefaultConfig(), homebar.WithClock(p.clock)),
		shell.WithActions(actionRecorder{p}),
	}
	if script.Shortcuts != nil && !*script.Shortcuts {
		serverOpts = append(serverOpts, shell.WithShortcuts(nil))
	}
	if script.EvictEmpty != nil {
		serverOpts = append(serverOpts, shell.WithEvictEmpty(*script.EvictEmpty))
	}
	p.server = shell.New(p, p, platform.Size(script.Screen), serverOpts...)

	for i, step := range script.Steps {
		if err := p.step(step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return &Result{Lines: p.lines, Snapshot: p.server.Snapshot()}, nil
}

func (p *player) clock() time.Time {
	return p.now
}

func (p *player) record(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	p.lines = append(p.lines, line)
	if p.opts.Out != nil {
		fmt.Fprintln(p.opts.Out, line)
	}
}

func (p *player) step(s Step) error {
	switch {
	case s.Map != nil:
		id := platform.SurfaceID(*s.Map)
		sp := p.server.AddView(p.apps[id], id)
		p.record("map %d app=%s space=%d", id, p.apps[id], sp)
	case s.Unmap != nil:
		id := platform.SurfaceID(*s.Unmap)
		ok := p.server.RemoveViewForSurface(id)
		p.record("unmap %d removed=%t", id, ok)
	case s.Destroy != nil:
		id := platform.SurfaceID(*s.Destroy)
		delete(p.rects, id)
		p.record("destroy %d", id)
	case s.Input != nil:
		raw, err := s.Input.Raw()
		if err != nil {
			return err
		}
		if t := epoch.Add(time.Duration(s.Input.Time) * time.Millisecond); t.After(p.now) {
			p.now = t
		}
		return p.server.HandleRaw(raw)
	case s.Render > 0:
		for range s.Render {
			p.now = p.now.Add(time.Duration(p.script.FrameInterval) * time.Millisecond)
			p.frameNo++
			p.server.Render(p)
		}
	case s.Wait > 0:
		p.now = p.now.Add(time.Duration(s.Wait) * time.Millisecond)
	case s.PointerGrab != nil:
		p.server.SetPointerGrabbed(*s.PointerGrab)
		p.record("pointer-grab %t", *s.PointerGrab)
	case s.TouchGrab != nil:
		p.server.SetTouchGrabbed(*s.TouchGrab)
		p.record("touch-grab %t", *s.TouchGrab)
	}
	return nil
}

// Surfaces

func (p *player) Geometry(id platform.SurfaceID) (platform.Rect, bool) {
	r, ok := p.rects[id]
	return r, ok
}

// Seat

func (p *player) PointerNotifyEnter(surface platform.SurfaceID, local platform.Point) {
	p.record("pointer-enter %d %.1f,%.1f", surface, local.X, local.Y)
}

func (p *player) PointerNotifyLeave(surface platform.SurfaceID) {
	p.record("pointer-leave %d", surface)
}

func (p *player) PointerNotifyMotion(timeMsec uint32, local platform.Point) {
	p.record("pointer-motion %d %.1f,%.1f", timeMsec, local.X, local.Y)
}

func (p *player) PointerNotifyButton(timeMsec uint32, button uint32, pressed bool) {
	p.record("pointer-button %d %d pressed=%t", timeMsec, button, pressed)
}

func (p *player) PointerNotifyAxis(timeMsec uint32, orientation platform.AxisOrientation, delta float64, source platform.AxisSource) {
	p.record("pointer-axis %d %s %.1f %s", timeMsec, orientation, delta, source)
}

func (p *player) TouchNotifyDown(surface platform.SurfaceID, timeMsec uint32, id int32, local platform.Point) {
	p.record("touch-down %d %d id=%d %.1f,%.1f", surface, timeMsec, id, local.X, local.Y)
}

func (p *player) TouchNotifyMotion(timeMsec uint32, id int32, local platform.Point) {
	p.record("touch-motion %d id=%d %.1f,%.1f", timeMsec, id, local.X, local.Y)
}

func (p *player) TouchNotifyUp(timeMsec uint32, id int32) {
	p.record("touch-up %d id=%d", timeMsec, id)
}

func (p *player) TouchNotifyCancel(timeMsec uint32, id int32) {
	p.record("touch-cancel %d id=%d", timeMsec, id)
}

// Frame

func (p *player) Dimensions() platform.Size {
	return platform.Size(p.script.Screen)
}

func (p *player) Scale() float64 { return 1 }

func (p *player) Projection() platform.Matrix { return platform.Identity() }

func (p *player) RenderSurface(id platform.SurfaceID, bounds platform.Rect) {
	if p.opts.Frames {
		p.record("frame %d surface %d %d,%d %dx%d", p.frameNo, id, bounds.X, bounds.Y, bounds.Width, bounds.Height)
	}
}

func (p *player) RenderChrome(c platform.Chrome) {
	p.record("frame %d chrome %s y=%.2f", p.frameNo, c.Name, c.Bounds.Y)
}

type actionRecorder struct{ p *player }

func (a actionRecorder) Quit() {
	a.p.record("action quit")
}

func (a actionRecorder) SwitchVT(vt int) error {
	a.p.record("action switch-vt %d", vt)
	return nil
}
