// Package view wraps one backend surface with hit-testing and coordinate
// mapping.
package view

import (
	"github.com/touchshell/touchshell/internal/platform"
)

// View is a non-owning handle to a backend surface. Geometry is always read
// live from the backend; once the surface is gone every query fails softly.
type View struct {
	surface  platform.SurfaceID
	surfaces platform.Surfaces
}

// New creates a view for surface.
func New(surface platform.SurfaceID, surfaces platform.Surfaces) *View {
	return &View{surface: surface, surfaces: surfaces}
}

// Surface returns the wrapped surface handle.
func (v *View) Surface() platform.SurfaceID {
	return v.surface
}

// Geometry returns the current surface bounds.
func (v *View) Geometry() (platform.Rect, bool) {
	if v == nil || v.surfaces == nil {
		return platform.Rect{}, false
	}
	return v.surfaces.Geometry(v.surface)
}

// ContainsPoint reports whether p (space coordinates) is inside the surface.
func (v *View) ContainsPoint(p platform.Point) bool {
	bounds, ok := v.Geometry()
	if !ok {
		return false
	}
	return bounds.Contains(p)
}

// MapLocation converts p from space coordinates to surface-local ones.
func (v *View) MapLocation(p platform.Point) (platform.Point, bool) {
	bounds, ok := v.Geometry()
	if !ok {
		return platform.Point{}, false
	}
	return p.Sub(bounds.Origin()), true
}

// WithSurface calls fn with the surface handle if it is still alive and
// reports whether fn ran.
func (v *View) WithSurface(fn func(platform.SurfaceID)) bool {
	if _, ok := v.Geometry(); !ok {
		return false
	}
	fn(v.surface)
	return true
}

// Render forwards the surface to the frame renderer.
func (v *View) Render(frame platform.Frame) bool {
	bounds, ok := v.Geometry()
	if !ok {
		return false
	}
	frame.RenderSurface(v.surface, bounds)
	return true
}
