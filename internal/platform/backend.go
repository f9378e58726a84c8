package platform

// SurfaceID is a backend-neutral handle to one application surface. It is a
// plain value: holding it never keeps the surface alive.
type SurfaceID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= float64(r.X) && p.X < float64(r.X+r.Width) &&
		p.Y >= float64(r.Y) && p.Y < float64(r.Y+r.Height)
}

// Origin returns the top-left corner of r.
func (r Rect) Origin() Point {
	return Point{X: float64(r.X), Y: float64(r.Y)}
}

// Point is a location in screen or surface-local coordinates.
type Point struct {
	X float64
	Y float64
}

// Sub returns p translated by -o.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Size is a logical output size.
type Size struct {
	Width  float64
	Height float64
}

// Matrix is a column-major 4x4 projection matrix handed to the renderer.
type Matrix [16]float32

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// AxisSource identifies the device that produced a scroll.
type AxisSource int

const (
	AxisSourceWheel AxisSource = iota
	AxisSourceFinger
	AxisSourceContinuous
	AxisSourceWheelTilt
)

func (s AxisSource) String() string {
	switch s {
	case AxisSourceWheel:
		return "wheel"
	case AxisSourceFinger:
		return "finger"
	case AxisSourceContinuous:
		return "continuous"
	case AxisSourceWheelTilt:
		return "wheel-tilt"
	default:
		return "unknown"
	}
}

// AxisOrientation is the scroll direction.
type AxisOrientation int

const (
	AxisVertical AxisOrientation = iota
	AxisHorizontal
)

func (o AxisOrientation) String() string {
	switch o {
	case AxisVertical:
		return "vertical"
	case AxisHorizontal:
		return "horizontal"
	default:
		return "unknown"
	}
}

// Surfaces answers geometry queries about live backend surfaces.
type Surfaces interface {
	// Geometry returns the surface bounds in screen coordinates. ok is false
	// once the backend has destroyed the surface.
	Geometry(id SurfaceID) (bounds Rect, ok bool)
}

// Seat is the backend's input focus and notification sink. Times are in
// milliseconds on the backend's clock.
type Seat interface {
	PointerNotifyEnter(surface SurfaceID, local Point)
	PointerNotifyLeave(surface SurfaceID)
	PointerNotifyMotion(timeMsec uint32, local Point)
	PointerNotifyButton(timeMsec uint32, button uint32, pressed bool)
	PointerNotifyAxis(timeMsec uint32, orientation AxisOrientation, delta float64, source AxisSource)
	TouchNotifyDown(surface SurfaceID, timeMsec uint32, id int32, local Point)
	TouchNotifyMotion(timeMsec uint32, id int32, local Point)
	TouchNotifyUp(timeMsec uint32, id int32)
	TouchNotifyCancel(timeMsec uint32, id int32)
}

// Chrome describes one shell-drawn overlay for the renderer.
type Chrome struct {
	Name      string
	Bounds    RectF
	Indicator RectF
	Alpha     float64
}

// RectF is a rectangle with fractional coordinates.
type RectF struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Frame is one output frame being rendered by the backend.
type Frame interface {
	Dimensions() Size
	Scale() float64
	Projection() Matrix
	RenderSurface(id SurfaceID, bounds Rect)
	RenderChrome(c Chrome)
}
