package homebar

import (
	"math"
	"testing"
	"time"

	"github.com/touchshell/touchshell/internal/event"
	"github.com/touchshell/touchshell/internal/platform"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Add(d time.Duration) { c.now = c.now.Add(d) }

type chromeFrame struct {
	chrome []platform.Chrome
}

func (f *chromeFrame) Dimensions() platform.Size                    { return screen }
func (f *chromeFrame) Scale() float64                               { return 1 }
func (f *chromeFrame) Projection() platform.Matrix                  { return platform.Identity() }
func (f *chromeFrame) RenderSurface(platform.SurfaceID, platform.Rect) {}
func (f *chromeFrame) RenderChrome(c platform.Chrome) {
	f.chrome = append(f.chrome, c)
}

var screen = platform.Size{Width: 720, Height: 1440}

func newTestStrip() (*Strip, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	return New(screen, DefaultConfig(), WithClock(clock.Now)), clock
}

func TestShouldCapture(t *testing.T) {
	s, _ := newTestStrip()
	iw, _ := s.IndicatorSize()
	left := (screen.Width - iw) / 2
	right := (screen.Width + iw) / 2

	tests := []struct {
		name string
		p    platform.Point
		want bool
	}{
		{"center bottom", platform.Point{X: 360, Y: 1439}, true},
		{"top of zone", platform.Point{X: 360, Y: 1425}, true},
		{"just above zone", platform.Point{X: 360, Y: 1424.9}, false},
		{"middle of screen", platform.Point{X: 360, Y: 700}, false},
		{"left band edge exclusive", platform.Point{X: left, Y: 1435}, false},
		{"right band edge exclusive", platform.Point{X: right, Y: 1435}, false},
		{"inside band near left", platform.Point{X: left + 1, Y: 1435}, true},
		{"bottom corner", platform.Point{X: 5, Y: 1439}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ShouldCapture(tt.p); got != tt.want {
				t.Errorf("ShouldCapture(%+v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestIndicatorWidthFollowsGoldenRatio(t *testing.T) {
	s, _ := newTestStrip()
	iw, ih := s.IndicatorSize()
	if want := 720 / (1.618 * 1.618 * 1.618); math.Abs(iw-want) > 1e-9 {
		t.Fatalf("indicator width = %v, want %v", iw, want)
	}
	if ih != 3 {
		t.Fatalf("indicator height = %v, want 3", ih)
	}
}

func TestCaptureLifecycle(t *testing.T) {
	s, clock := newTestStrip()

	s.HandleEvent(event.NewTouchDown(1, 4, platform.Point{X: 360, Y: 1430}))
	if !s.Capturing() {
		t.Fatal("strip not capturing after TouchDown")
	}
	if id, ok := s.CapturedTouch(); !ok || id != 4 {
		t.Fatalf("CapturedTouch() = %v, %v; want 4, true", id, ok)
	}

	clock.Add(16 * time.Millisecond)
	move := event.NewTouchMotion(2, 4, platform.Point{X: 360, Y: 1240})
	if !s.Owns(move) {
		t.Fatal("strip does not own motion of the captured touch")
	}
	s.HandleEvent(move)

	// mapY(1240) - mapY(1430) = (-20 - 1440) - (-2*sqrt(5) - 1440)
	want := -20 + 2*math.Sqrt(5)
	if got := s.Offset(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("Offset() = %v, want %v", got, want)
	}

	other := event.NewTouchUp(3, 9)
	if s.Owns(other) {
		t.Fatal("strip claims a touch it never captured")
	}
	s.HandleEvent(other)
	if !s.Capturing() {
		t.Fatal("foreign TouchUp released capture")
	}

	s.HandleEvent(event.NewTouchUp(4, 4))
	if s.Capturing() {
		t.Fatal("strip still capturing after TouchUp")
	}
	if s.Owns(event.NewTouchMotion(5, 4, platform.Point{})) {
		t.Fatal("strip owns events after release")
	}
}

func TestTouchCancelReleasesCapture(t *testing.T) {
	s, _ := newTestStrip()
	s.HandleEvent(event.NewTouchDown(1, 1, platform.Point{X: 360, Y: 1430}))
	s.HandleEvent(event.NewTouchCancel(2, 1))
	if s.Capturing() {
		t.Fatal("strip still capturing after TouchCancel")
	}
}

func TestMotionWithoutElapsedTimeKeepsVelocityFinite(t *testing.T) {
	s, _ := newTestStrip()
	s.HandleEvent(event.NewTouchDown(1, 1, platform.Point{X: 360, Y: 1430}))
	s.HandleEvent(event.NewTouchMotion(1, 1, platform.Point{X: 360, Y: 1300}))

	v := s.y.Spring.Velocity
	if math.IsInf(v, 0) || math.IsNaN(v) {
		t.Fatalf("velocity = %v, want finite", v)
	}
}

func TestMapYBelowScreenIsFinite(t *testing.T) {
	s, _ := newTestStrip()
	if got := s.mapY(screen.Height + 50); math.IsNaN(got) || got != -screen.Height {
		t.Fatalf("mapY(below screen) = %v, want %v", got, -screen.Height)
	}
}

func TestRender_HoldsValueWhileCapturing(t *testing.T) {
	s, clock := newTestStrip()
	frame := &chromeFrame{}

	s.HandleEvent(event.NewTouchDown(1, 1, platform.Point{X: 360, Y: 1430}))
	clock.Add(10 * time.Millisecond)
	s.HandleEvent(event.NewTouchMotion(2, 1, platform.Point{X: 360, Y: 1000}))
	held := s.Offset()

	clock.Add(time.Second)
	s.Render(frame)
	if got := s.Offset(); got != held {
		t.Fatalf("Offset() moved from %v to %v while capturing", held, got)
	}
	if len(frame.chrome) != 1 {
		t.Fatalf("rendered %d chrome overlays, want 1", len(frame.chrome))
	}
	if got, want := frame.chrome[0].Bounds.Y, screen.Height-18+held; got != want {
		t.Fatalf("strip y = %v, want %v", got, want)
	}
}

func TestRender_SpringsBackAfterRelease(t *testing.T) {
	s, clock := newTestStrip()
	frame := &chromeFrame{}

	s.HandleEvent(event.NewTouchDown(1, 1, platform.Point{X: 360, Y: 1430}))
	clock.Add(10 * time.Millisecond)
	s.HandleEvent(event.NewTouchMotion(2, 1, platform.Point{X: 360, Y: 1000}))
	s.HandleEvent(event.NewTouchUp(3, 1))
	s.Render(frame)

	for i := 0; i < 5*60; i++ {
		clock.Add(time.Second / 60)
		s.Render(frame)
	}
	if got := s.Offset(); math.Abs(got) > 1e-2 {
		t.Fatalf("Offset() = %v after 5s, want ~0", got)
	}
	if !s.Settled(0.05) {
		t.Fatal("strip not settled after 5s")
	}
}

func TestChrome_RestingGeometry(t *testing.T) {
	s, _ := newTestStrip()
	c := s.Chrome(0)
	iw, ih := s.IndicatorSize()

	if c.Bounds != (platform.RectF{X: 0, Y: 1422, Width: 720, Height: 18}) {
		t.Fatalf("Bounds = %+v", c.Bounds)
	}
	wantIndicator := platform.RectF{X: 360 - iw/2, Y: 1422 + 9 - ih/2, Width: iw, Height: ih}
	if c.Indicator != wantIndicator {
		t.Fatalf("Indicator = %+v, want %+v", c.Indicator, wantIndicator)
	}
	if c.Alpha != 0.5 {
		t.Fatalf("Alpha = %v, want 0.5", c.Alpha)
	}
}

func TestSetConfigKeepsAnimationState(t *testing.T) {
	s, clock := newTestStrip()
	s.HandleEvent(event.NewTouchDown(1, 1, platform.Point{X: 360, Y: 1430}))
	clock.Add(10 * time.Millisecond)
	s.HandleEvent(event.NewTouchMotion(2, 1, platform.Point{X: 360, Y: 1000}))
	s.HandleEvent(event.NewTouchUp(3, 1))
	offset := s.Offset()

	cfg := DefaultConfig()
	cfg.RegionHeight = 24
	cfg.Response = 0.5
	s.SetConfig(cfg)

	if got := s.Offset(); got != offset {
		t.Fatalf("Offset() = %v after SetConfig, want %v", got, offset)
	}
	if got := s.Chrome(0).Bounds.Y; got != screen.Height-24 {
		t.Fatalf("strip y = %v, want %v", got, screen.Height-24)
	}
	for i := 0; i < 5*60; i++ {
		clock.Add(time.Second / 60)
		s.Advance()
	}
	if !s.Settled(0.05) {
		t.Fatalf("strip not settled with new spring, offset %v", s.Offset())
	}
}
