// Package homebar implements the swipe-up home bar: a bottom-edge strip that
// can claim a whole touch sequence before any window sees it, and animates its
// resting offset with a spring once released.
package homebar

import (
	"math"
	"time"

	"github.com/touchshell/touchshell/internal/event"
	"github.com/touchshell/touchshell/internal/platform"
	"github.com/touchshell/touchshell/internal/spring"
)

const phi = 1.618

// minVelocityInterval bounds the divisor of the drag velocity estimate.
const minVelocityInterval = time.Millisecond

// Config holds the strip geometry and spring parameters.
type Config struct {
	RegionHeight    float64
	IndicatorHeight float64
	DampingRatio    float64
	Response        float64
}

// DefaultConfig returns the stock home bar settings.
func DefaultConfig() Config {
	return Config{
		RegionHeight:    18,
		IndicatorHeight: 3,
		DampingRatio:    1,
		Response:        1,
	}
}

// State is the capture state of the strip.
type State int

const (
	StateIdle State = iota
	StateCapturing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	default:
		return "unknown"
	}
}

// Strip is the gesture capture strip.
type Strip struct {
	cfg    Config
	screen platform.Size
	now    func() time.Time

	state   State
	touchID event.TouchID

	touchDownOffset float64
	prevTouchTime   time.Time
	y               *spring.RealTimeSpring
}

// Option configures a Strip.
type Option func(*Strip)

// WithClock overrides the time source used for drag velocity and animation.
func WithClock(now func() time.Time) Option {
	return func(s *Strip) {
		s.now = now
	}
}

// New creates an idle strip for an output of the given size.
func New(screen platform.Size, cfg Config, opts ...Option) *Strip {
	s := &Strip{
		cfg:    cfg,
		screen: screen,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.y = spring.NewRealTime(spring.New(cfg.DampingRatio, cfg.Response), spring.WithClock(s.now))
	s.prevTouchTime = s.now()
	return s
}

// State returns the current capture state.
func (s *Strip) State() State {
	return s.state
}

// Capturing reports whether a touch sequence is owned by the strip.
func (s *Strip) Capturing() bool {
	return s.state == StateCapturing
}

// CapturedTouch returns the id of the owned touch sequence.
func (s *Strip) CapturedTouch() (event.TouchID, bool) {
	return s.touchID, s.state == StateCapturing
}

// IndicatorSize returns the width and height of the drawn indicator.
func (s *Strip) IndicatorSize() (float64, float64) {
	return s.screen.Width / (phi * phi * phi), s.cfg.IndicatorHeight
}

// ShouldCapture reports whether a touch starting at p belongs to the strip:
// a centered band of the indicator's width, reaching two indicator heights
// above the indicator line.
func (s *Strip) ShouldCapture(p platform.Point) bool {
	iw, ih := s.IndicatorSize()
	if p.Y < s.screen.Height-s.cfg.RegionHeight/2-ih*2 {
		return false
	}
	w := s.screen.Width
	return p.X > (w-iw)/2 && p.X < (w+iw)/2
}

// Owns reports whether ev continues the captured sequence.
func (s *Strip) Owns(ev event.Event) bool {
	if s.state != StateCapturing {
		return false
	}
	switch ev.Kind {
	case event.TouchMotion, event.TouchUp, event.TouchCancel:
		return ev.TouchID == s.touchID
	default:
		return false
	}
}

// Release drops a captured sequence without an up event.
func (s *Strip) Release() {
	s.state = StateIdle
}

// SetConfig swaps geometry and spring coefficients. The current offset and
// velocity carry over, so an animation in flight continues from where it is.
func (s *Strip) SetConfig(cfg Config) {
	s.cfg = cfg
	next := spring.New(cfg.DampingRatio, cfg.Response)
	s.y.Spring.Force = next.Force
	s.y.Spring.Damping = next.Damping
}

// Config returns the active configuration.
func (s *Strip) Config() Config {
	return s.cfg
}

// mapY turns a finger position into a strip offset. The square root makes
// the strip lag further behind the finger the higher it is dragged.
func (s *Strip) mapY(y float64) float64 {
	h := s.screen.Height
	radicand := math.Max(0, -(y-h)/2)
	return -math.Sqrt(radicand)*2 - h
}

// HandleEvent applies one event of the captured sequence. A TouchDown starts
// a capture, TouchUp and TouchCancel end it.
func (s *Strip) HandleEvent(ev event.Event) {
	switch ev.Kind {
	case event.TouchDown:
		pos, _ := ev.Location()
		s.state = StateCapturing
		s.touchID = ev.TouchID
		s.touchDownOffset = s.mapY(pos.Y) - s.y.Spring.Value
		s.y.Spring.Velocity = 0
		s.prevTouchTime = s.now()

	case event.TouchMotion:
		if !s.Owns(ev) {
			return
		}
		pos, _ := ev.Location()
		prev := s.y.Spring.Value
		s.y.Spring.Value = s.mapY(pos.Y) - s.touchDownOffset

		now := s.now()
		elapsed := now.Sub(s.prevTouchTime)
		if elapsed < minVelocityInterval {
			elapsed = minVelocityInterval
		}
		s.prevTouchTime = now
		s.y.Spring.Velocity = (s.y.Spring.Value - prev) / elapsed.Seconds()

	case event.TouchUp, event.TouchCancel:
		if !s.Owns(ev) {
			return
		}
		s.state = StateIdle
	}
}

// Offset returns the current vertical offset from the resting position.
func (s *Strip) Offset() float64 {
	return s.y.Value()
}

// Settled reports whether the animation has come to rest.
func (s *Strip) Settled(tolerance float64) bool {
	return s.state == StateIdle && !s.y.Spring.NeedsUpdate(tolerance)
}

// Advance moves the animation forward to now. While a finger pins the strip
// only the clock is reset.
func (s *Strip) Advance() float64 {
	if s.state == StateCapturing {
		s.y.UpdateTime()
		return s.y.Value()
	}
	return s.y.Update()
}

// Chrome returns the overlay geometry for the given offset.
func (s *Strip) Chrome(offset float64) platform.Chrome {
	iw, ih := s.IndicatorSize()
	top := s.screen.Height - s.cfg.RegionHeight + offset
	return platform.Chrome{
		Name: "home-bar",
		Bounds: platform.RectF{
			X:      0,
			Y:      top,
			Width:  s.screen.Width,
			Height: s.cfg.RegionHeight,
		},
		Indicator: platform.RectF{
			X:      s.screen.Width/2 - iw/2,
			Y:      top + s.cfg.RegionHeight/2 - ih/2,
			Width:  iw,
			Height: ih,
		},
		Alpha: 0.5,
	}
}

// Render advances the animation and draws the strip.
func (s *Strip) Render(frame platform.Frame) {
	frame.RenderChrome(s.Chrome(s.Advance()))
}
