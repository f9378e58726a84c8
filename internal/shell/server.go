// Package shell implements the workspace manager: it groups views into
// spaces by application id, routes input to the top space and renders the
// space stack.
//
// Server is not safe for concurrent use. All mutating methods must be called
// from the host's event loop; other goroutines read the published Snapshot.
package shell

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/touchshell/touchshell/internal/event"
	"github.com/touchshell/touchshell/internal/homebar"
	"github.com/touchshell/touchshell/internal/platform"
	"github.com/touchshell/touchshell/internal/space"
	"github.com/touchshell/touchshell/internal/view"
)

// settleTolerance is the spring tolerance below which an animation is done.
const settleTolerance = 0.01

// Server is the workspace manager.
type Server struct {
	surfaces platform.Surfaces
	seat     platform.Seat
	conv     *event.Converter
	logger   *slog.Logger
	now      func() time.Time

	stripCfg   homebar.Config
	stripOpts  []homebar.Option
	evictEmpty bool
	bindings   []Binding
	actions    Actions

	mapping   map[string]space.ID
	appOf     map[space.ID]string
	order     []space.ID
	spaces    map[space.ID]*space.Space
	bySurface map[platform.SurfaceID]space.ID
	nextID    space.ID

	pointerGrabbed bool
	touchGrabbed   bool

	dispatching bool
	pending     []event.Event
	rendering   bool

	events uint64
	frames uint64
	// lastTime is the timestamp of the newest routed event.
	lastTime uint32

	snapMu sync.RWMutex
	snap   Snapshot
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStrip sets the home bar configuration. Reconfigure also applies it to
// existing spaces.
func WithStrip(cfg homebar.Config, opts ...homebar.Option) Option {
	return func(s *Server) {
		s.stripCfg = cfg
		s.stripOpts = opts
	}
}

// WithEvictEmpty controls whether a space is dropped when its last view goes.
func WithEvictEmpty(evict bool) Option {
	return func(s *Server) {
		s.evictEmpty = evict
	}
}

// WithShortcuts replaces the key bindings.
func WithShortcuts(bindings []Binding) Option {
	return func(s *Server) {
		s.bindings = bindings
	}
}

// WithActions sets the handler for shortcut actions.
func WithActions(actions Actions) Option {
	return func(s *Server) {
		s.actions = actions
	}
}

// WithClock overrides the clock used for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a server with no spaces. screen is the initial output size
// used to scale normalized raw coordinates; it follows the frame size once
// rendering starts.
func New(surfaces platform.Surfaces, seat platform.Seat, screen platform.Size, opts ...Option) *Server {
	s := &Server{
		surfaces:   surfaces,
		seat:       seat,
		conv:       event.NewConverter(screen),
		logger:     slog.Default(),
		now:        time.Now,
		stripCfg:   homebar.DefaultConfig(),
		evictEmpty: true,
		bindings:   DefaultBindings(),
		mapping:    make(map[string]space.ID),
		appOf:      make(map[space.ID]string),
		spaces:     make(map[space.ID]*space.Space),
		bySurface:  make(map[platform.SurfaceID]space.ID),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.publish()
	return s
}

// Reconfigure applies options to a running server. The home bar of every
// existing space is updated in place.
func (s *Server) Reconfigure(opts ...Option) {
	for _, opt := range opts {
		opt(s)
	}
	for _, id := range s.order {
		s.spaces[id].SetStripConfig(s.stripCfg)
	}
	s.publish()
}

// SetPointerGrabbed records whether a client holds a pointer grab.
func (s *Server) SetPointerGrabbed(grabbed bool) {
	s.pointerGrabbed = grabbed
}

// SetTouchGrabbed records whether a client holds a touch grab.
func (s *Server) SetTouchGrabbed(grabbed bool) {
	s.touchGrabbed = grabbed
}

// AddView adds surface to the space of appID, creating the space on top of
// the order when appID is new. It returns the space id.
func (s *Server) AddView(appID string, surface platform.SurfaceID) space.ID {
	if id, ok := s.bySurface[surface]; ok {
		s.logger.Warn("surface already mapped", "surface", uint32(surface), "space", int(id))
		return id
	}

	id, ok := s.mapping[appID]
	if !ok {
		id = s.nextID
		s.nextID++
		s.mapping[appID] = id
		s.appOf[id] = appID
		s.cancelTopTouches()
		s.order = append(s.order, id)
		s.spaces[id] = space.New(id,
			space.WithLogger(s.logger),
			space.WithStrip(s.stripCfg, s.stripOpts...))
		s.logger.Info("space created", "space", int(id), "app_id", appID)
	}

	s.spaces[id].AddView(view.New(surface, s.surfaces))
	s.bySurface[surface] = id
	s.logger.Debug("view added", "surface", uint32(surface), "space", int(id), "app_id", appID)
	s.publish()
	return id
}

// RemoveViewForSurface removes the view wrapping surface. It reports false,
// and logs an error, when the surface is not known.
func (s *Server) RemoveViewForSurface(surface platform.SurfaceID) bool {
	id, ok := s.bySurface[surface]
	if !ok {
		s.logger.Error("remove of unknown surface", "surface", uint32(surface))
		return false
	}
	delete(s.bySurface, surface)

	sp := s.spaces[id]
	if sp == nil || !sp.RemoveSurface(surface) {
		s.logger.Error("surface index out of sync", "surface", uint32(surface), "space", int(id))
		return false
	}
	s.logger.Debug("view removed", "surface", uint32(surface), "space", int(id))

	if s.evictEmpty && sp.Empty() {
		s.evict(id)
	}
	s.publish()
	return true
}

func (s *Server) evict(id space.ID) {
	if s.order[len(s.order)-1] == id {
		s.cancelTopTouches()
	}
	delete(s.spaces, id)
	s.order = slices.DeleteFunc(s.order, func(o space.ID) bool { return o == id })
	if app, ok := s.appOf[id]; ok {
		delete(s.mapping, app)
		delete(s.appOf, id)
	}
	s.logger.Info("space evicted", "space", int(id))
}

// SpaceOrder returns the space ids back to front.
func (s *Server) SpaceOrder() []space.ID {
	return slices.Clone(s.order)
}

// Space returns the space with the given id.
func (s *Server) Space(id space.ID) (*space.Space, bool) {
	sp, ok := s.spaces[id]
	return sp, ok
}

// SpaceForApp returns the space id assigned to appID.
func (s *Server) SpaceForApp(appID string) (space.ID, bool) {
	id, ok := s.mapping[appID]
	return id, ok
}

// Surfaces returns every mapped surface.
func (s *Server) Surfaces() []platform.SurfaceID {
	out := make([]platform.SurfaceID, 0, len(s.bySurface))
	for id := range s.bySurface {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// cancelTopTouches ends the open touch sequences of the space about to lose
// the top of the order.
func (s *Server) cancelTopTouches() {
	if sp := s.top(); sp != nil {
		sp.CancelTouches(s.lastTime, s.seat)
	}
}

func (s *Server) top() *space.Space {
	if len(s.order) == 0 {
		return nil
	}
	return s.spaces[s.order[len(s.order)-1]]
}

// HandleRaw converts a backend event and routes it. Events the converter
// cannot map are returned as errors wrapping event.ErrUnmappable.
func (s *Server) HandleRaw(raw event.Raw) error {
	ev, err := s.conv.Convert(raw)
	if err != nil {
		return err
	}
	s.HandleEvent(ev)
	return nil
}

// HandleEvent routes ev to the top space. Events raised from a seat callback
// while another event is being routed are queued and handled once the outer
// call finishes.
func (s *Server) HandleEvent(ev event.Event) {
	if s.dispatching {
		s.pending = append(s.pending, ev)
		return
	}
	s.dispatching = true
	defer func() { s.dispatching = false }()

	s.dispatch(ev)
	for len(s.pending) > 0 {
		next := s.pending[0]
		s.pending = s.pending[1:]
		s.dispatch(next)
	}
	s.pending = nil
	s.publish()
}

func (s *Server) dispatch(ev event.Event) {
	s.events++
	s.lastTime = ev.TimeMsec
	if ev.Kind == event.KeyDown && s.runShortcut(ev) {
		return
	}

	sp := s.top()
	if sp == nil {
		s.logger.Warn("no space to route event", "kind", ev.Kind.String())
		return
	}
	sp.HandleEvent(ev, space.DispatchContext{
		Seat:           s.seat,
		PointerGrabbed: s.pointerGrabbed,
		TouchGrabbed:   s.touchGrabbed,
	})
}

func (s *Server) runShortcut(ev event.Event) bool {
	for _, b := range s.bindings {
		if !b.Matches(ev) {
			continue
		}
		s.logger.Info("shortcut", "action", b.Action.String(), "vt", b.VT)
		if s.actions == nil {
			return true
		}
		switch b.Action {
		case ActionQuit:
			s.actions.Quit()
		case ActionSwitchVT:
			if err := s.actions.SwitchVT(b.VT); err != nil {
				s.logger.Error("switch vt failed", "vt", b.VT, "error", err)
			}
		}
		return true
	}
	return false
}

// Render draws every space back to front into frame.
func (s *Server) Render(frame platform.Frame) {
	if frame == nil {
		s.logger.Warn("render without a frame")
		return
	}
	if s.rendering {
		s.logger.Warn("nested render dropped")
		return
	}
	s.rendering = true
	defer func() { s.rendering = false }()

	if dims := frame.Dimensions(); dims != s.conv.Screen() {
		s.conv.SetScreen(dims)
	}
	for _, id := range s.order {
		s.spaces[id].Render(frame)
	}
	s.frames++
	s.publish()
}

// Animating reports whether any home bar is still moving.
func (s *Server) Animating() bool {
	for _, sp := range s.spaces {
		if strip := sp.Strip(); strip != nil && !strip.Settled(settleTolerance) {
			return true
		}
	}
	return false
}
