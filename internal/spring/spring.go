// Package spring implements a fixed-step damped spring used to animate shell
// chrome toward a resting value.
package spring

import (
	"math"
	"time"
)

// MaxStep is the largest integration sub-step in seconds.
const MaxStep = 1.0 / 60.0

// maxElapsed bounds how much time a single Advance call will simulate.
const maxElapsed = 1.0

// Spring is a one-dimensional damped harmonic oscillator.
type Spring struct {
	Value    float64
	Velocity float64
	Target   float64
	Force    float64
	Damping  float64
}

// New builds a spring from a damping ratio and a response period in seconds.
// A ratio of 1 is critically damped.
func New(dampingRatio, response float64) Spring {
	forceSqrt := 2 * math.Pi / response
	return WithForceDamping(forceSqrt*forceSqrt, dampingRatio*2*forceSqrt)
}

// WithForceDamping builds a spring with explicit stiffness and damping
// coefficients.
func WithForceDamping(force, damping float64) Spring {
	return Spring{Force: force, Damping: damping}
}

// CurrentForce returns the acceleration acting on the spring right now.
func (s *Spring) CurrentForce() float64 {
	return -s.Force*(s.Value-s.Target) - s.Damping*s.Velocity
}

// Advance integrates the spring over elapsed using semi-implicit Euler steps
// of at most MaxStep. Elapsed time beyond one second is discarded.
func (s *Spring) Advance(elapsed time.Duration) {
	left := math.Min(elapsed.Seconds(), maxElapsed)
	for left > 0 {
		dt := math.Min(MaxStep, left)
		force := s.CurrentForce()
		s.Value += s.Velocity * dt
		s.Velocity += force * dt
		left -= dt
	}
}

// NeedsUpdate reports whether the spring is still visibly moving.
func (s *Spring) NeedsUpdate(tolerance float64) bool {
	return math.Abs(s.Value-s.Target) > tolerance || math.Abs(s.Velocity) > tolerance
}

// Finish snaps the spring to rest at its target.
func (s *Spring) Finish() {
	s.Value = s.Target
	s.Velocity = 0
}

// RealTimeSpring advances a Spring by wall-clock time between calls, so the
// simulation speed does not depend on how often it is rendered.
type RealTimeSpring struct {
	Spring     Spring
	prevUpdate time.Time
	now        func() time.Time
}

// Option configures a RealTimeSpring.
type Option func(*RealTimeSpring)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *RealTimeSpring) {
		r.now = now
	}
}

// NewRealTime wraps s and starts its clock.
func NewRealTime(s Spring, opts ...Option) *RealTimeSpring {
	r := &RealTimeSpring{Spring: s, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	r.prevUpdate = r.now()
	return r
}

// UpdateTime resets the clock without advancing the spring. Callers use it
// while the value is pinned by direct manipulation.
func (r *RealTimeSpring) UpdateTime() {
	r.prevUpdate = r.now()
}

// Update advances the spring by the time since the previous call and returns
// the new value.
func (r *RealTimeSpring) Update() float64 {
	now := r.now()
	r.Spring.Advance(now.Sub(r.prevUpdate))
	r.prevUpdate = now
	return r.Spring.Value
}

// Value returns the current spring value without advancing it.
func (r *RealTimeSpring) Value() float64 {
	return r.Spring.Value
}
