// Package space implements one workspace: an ordered stack of views plus the
// home bar, and the routing of input events to the right surface.
package space

import (
	"log/slog"
	"slices"

	"github.com/touchshell/touchshell/internal/event"
	"github.com/touchshell/touchshell/internal/homebar"
	"github.com/touchshell/touchshell/internal/platform"
	"github.com/touchshell/touchshell/internal/view"
)

// ID identifies a space for the lifetime of the process. IDs are never
// reused.
type ID int

// noTarget marks the absence of a pointer target.
const noTarget = -1

// DispatchContext carries the seat and grab state an event is routed with.
type DispatchContext struct {
	Seat           platform.Seat
	PointerGrabbed bool
	TouchGrabbed   bool
}

func (c DispatchContext) grabbed() bool {
	return c.PointerGrabbed || c.TouchGrabbed
}

// Space holds views back to front; the last view is drawn on top and wins
// hit tests.
type Space struct {
	id    ID
	views []*view.View

	strip     *homebar.Strip
	stripCfg  homebar.Config
	stripOpts []homebar.Option

	// pointerTarget indexes views, or is noTarget.
	pointerTarget int
	// touches holds ids delivered to views and not yet released, in down order.
	touches []event.TouchID

	logger *slog.Logger
}

// Option configures a Space.
type Option func(*Space)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Space) {
		s.logger = logger
	}
}

// WithStrip configures the home bar created on first render.
func WithStrip(cfg homebar.Config, opts ...homebar.Option) Option {
	return func(s *Space) {
		s.stripCfg = cfg
		s.stripOpts = opts
	}
}

// New creates an empty space.
func New(id ID, opts ...Option) *Space {
	s := &Space{
		id:            id,
		stripCfg:      homebar.DefaultConfig(),
		pointerTarget: noTarget,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("space", int(id))
	return s
}

// ID returns the space id.
func (s *Space) ID() ID {
	return s.id
}

// Len returns the number of views.
func (s *Space) Len() int {
	return len(s.views)
}

// Empty reports whether the space has no views.
func (s *Space) Empty() bool {
	return len(s.views) == 0
}

// Surfaces returns the surfaces of all views, back to front.
func (s *Space) Surfaces() []platform.SurfaceID {
	out := make([]platform.SurfaceID, len(s.views))
	for i, v := range s.views {
		out[i] = v.Surface()
	}
	return out
}

// PointerTarget returns the surface that currently has pointer focus.
func (s *Space) PointerTarget() (platform.SurfaceID, bool) {
	if s.pointerTarget == noTarget {
		return 0, false
	}
	return s.views[s.pointerTarget].Surface(), true
}

// Strip returns the home bar, or nil before the first render.
func (s *Space) Strip() *homebar.Strip {
	return s.strip
}

// SetStripConfig changes the home bar settings. A strip that already exists
// is updated in place.
func (s *Space) SetStripConfig(cfg homebar.Config) {
	s.stripCfg = cfg
	if s.strip != nil {
		s.strip.SetConfig(cfg)
	}
}

// ActiveTouches returns the touch ids delivered to views that have not seen
// an up or cancel.
func (s *Space) ActiveTouches() []event.TouchID {
	return slices.Clone(s.touches)
}

// CancelTouches ends every open touch sequence: the home bar drops its
// capture and each view-held touch gets a cancel through seat. It is used
// when the space stops receiving input mid-sequence.
func (s *Space) CancelTouches(timeMsec uint32, seat platform.Seat) {
	if s.strip != nil && s.strip.Capturing() {
		id, _ := s.strip.CapturedTouch()
		s.logger.Debug("home bar capture cancelled", "touch", int32(id))
		s.strip.Release()
	}
	for _, id := range s.touches {
		seat.TouchNotifyCancel(timeMsec, int32(id))
	}
	s.touches = nil
}

// AddView puts v on top of the stack.
func (s *Space) AddView(v *view.View) {
	s.views = append(s.views, v)
}

// RemoveSurface removes the view wrapping surface and reports whether one
// was found. The pointer target keeps pointing at the same view, or is
// cleared if that view was the one removed.
func (s *Space) RemoveSurface(surface platform.SurfaceID) bool {
	for i, v := range s.views {
		if v.Surface() != surface {
			continue
		}
		s.views = append(s.views[:i], s.views[i+1:]...)
		switch {
		case s.pointerTarget == i:
			s.pointerTarget = noTarget
		case s.pointerTarget > i:
			s.pointerTarget--
		}
		return true
	}
	return false
}

// hitTest returns the index of the front-most view containing p.
func (s *Space) hitTest(p platform.Point) int {
	for i := len(s.views) - 1; i >= 0; i-- {
		if s.views[i].ContainsPoint(p) {
			return i
		}
	}
	return noTarget
}

// captureByStrip offers ev to the home bar and reports whether it was taken.
func (s *Space) captureByStrip(ev event.Event) bool {
	if s.strip == nil {
		return false
	}
	if s.strip.Owns(ev) {
		s.strip.HandleEvent(ev)
		return true
	}
	if ev.Kind != event.TouchDown {
		return false
	}
	if id, ok := s.strip.CapturedTouch(); ok && id == ev.TouchID {
		// The backend reused the id, so the old sequence ended unseen.
		s.logger.Warn("touch id reused during capture, releasing home bar", "touch", int32(id))
		s.strip.Release()
	}
	if s.strip.Capturing() {
		return false
	}
	p, ok := ev.Location()
	if !ok || !s.strip.ShouldCapture(p) {
		return false
	}
	s.strip.HandleEvent(ev)
	return true
}

// HandleEvent routes one event: to the home bar when it captures the touch,
// otherwise to the view under the event (or the focused view during a grab)
// through ctx.Seat.
func (s *Space) HandleEvent(ev event.Event, ctx DispatchContext) {
	if s.captureByStrip(ev) {
		return
	}

	loc, hasLoc := ev.Location()
	target := noTarget
	switch {
	case ev.IsPointerEvent() && (ctx.grabbed() || !hasLoc):
		target = s.pointerTarget
	case hasLoc:
		target = s.hitTest(loc)
	}

	if hasLoc {
		s.updateFocus(ev, loc, target, ctx.Seat)
	}

	if target == noTarget {
		s.logger.Debug("event has no target", "kind", ev.Kind.String())
		return
	}

	v := s.views[target]
	var local platform.Point
	if hasLoc {
		var ok bool
		local, ok = v.MapLocation(loc)
		if !ok {
			s.logger.Warn("target surface is gone, dropping event",
				"surface", uint32(v.Surface()),
				"kind", ev.Kind.String())
			return
		}
	} else if _, ok := v.Geometry(); !ok {
		s.logger.Warn("target surface is gone, dropping event",
			"surface", uint32(v.Surface()),
			"kind", ev.Kind.String())
		return
	}

	s.deliver(ev, v.Surface(), local, ctx.Seat)
}

// updateFocus sends enter and leave edges when the target changes.
func (s *Space) updateFocus(ev event.Event, loc platform.Point, target int, seat platform.Seat) {
	if target == s.pointerTarget {
		return
	}
	if target == noTarget {
		if !ev.IsPointerEvent() {
			return
		}
		prev := s.views[s.pointerTarget]
		s.pointerTarget = noTarget
		seat.PointerNotifyLeave(prev.Surface())
		return
	}

	v := s.views[target]
	local, ok := v.MapLocation(loc)
	if !ok {
		return
	}
	s.pointerTarget = target
	seat.PointerNotifyEnter(v.Surface(), local)
}

func (s *Space) deliver(ev event.Event, surface platform.SurfaceID, local platform.Point, seat platform.Seat) {
	switch ev.Kind {
	case event.PointerDown, event.PointerUp:
		seat.PointerNotifyButton(ev.TimeMsec, ev.Button, ev.Kind == event.PointerDown)
	case event.PointerMotion:
		seat.PointerNotifyMotion(ev.TimeMsec, local)
	case event.PointerAxis:
		seat.PointerNotifyAxis(ev.TimeMsec, ev.Orientation, ev.Delta, ev.Source)
	case event.TouchDown:
		if !slices.Contains(s.touches, ev.TouchID) {
			s.touches = append(s.touches, ev.TouchID)
		}
		seat.TouchNotifyDown(surface, ev.TimeMsec, int32(ev.TouchID), local)
	case event.TouchMotion:
		seat.TouchNotifyMotion(ev.TimeMsec, int32(ev.TouchID), local)
	case event.TouchUp:
		s.releaseTouch(ev.TouchID)
		seat.TouchNotifyUp(ev.TimeMsec, int32(ev.TouchID))
	case event.TouchCancel:
		s.releaseTouch(ev.TouchID)
		seat.TouchNotifyCancel(ev.TimeMsec, int32(ev.TouchID))
	default:
		s.logger.Debug("unhandled event kind", "kind", ev.Kind.String(), "surface", uint32(surface))
	}
}

func (s *Space) releaseTouch(id event.TouchID) {
	s.touches = slices.DeleteFunc(s.touches, func(t event.TouchID) bool { return t == id })
}

// Render draws the views back to front and the home bar on top. The home bar
// is sized from the first frame it is rendered into.
func (s *Space) Render(frame platform.Frame) {
	if s.strip == nil {
		s.strip = homebar.New(frame.Dimensions(), s.stripCfg, s.stripOpts...)
	}
	for _, v := range s.views {
		if !v.Render(frame) {
			s.logger.Warn("skipping destroyed surface", "surface", uint32(v.Surface()))
		}
	}
	s.strip.Render(frame)
}
