// SPDX-License-Identifier: Unlicense OR MIT

// Package accel tracks the inter-event interval of accepted wheel
// events and turns it into a velocity multiplier that ramps up under
// rapid input and decays back toward 1.0 as the pointer idles.
package accel

import (
	"math"
	"time"
)

// decayWindow and gainCoefficient are tuning knobs with no derivation;
// changing either changes the scroll feel.
const (
	decayWindow     = 300 * time.Millisecond
	gainCoefficient = 0.8
)

// State is the shared, single-momentum-channel accelerator. It is
// touched only from the hook thread and therefore needs no locking.
type State struct {
	lastEvent time.Time
	velocity  float64
}

// New returns an accelerator with velocity at its floor.
func New() *State {
	return &State{velocity: 1.0}
}

// Amount computes the accelerated scroll amount for a newly accepted
// wheel event of the given raw signed delta, advancing and returning
// the shared velocity. now must be monotonic across calls. The very
// first call behaves as though preceded by an arbitrarily large gap
// (the zero Time has no predecessor), which naturally lands on the
// decay branch and starts velocity at its 1.0 floor.
func (s *State) Amount(now time.Time, rawDelta, stepSize, accelerationDelta int, accelerationMax float64) float64 {
	direction := 1.0
	if rawDelta < 0 {
		direction = -1.0
	}
	base := float64(stepSize) * direction

	elapsedMS := math.Inf(1)
	if !s.lastEvent.IsZero() {
		elapsedMS = float64(now.Sub(s.lastEvent)) / float64(time.Millisecond)
		if elapsedMS < 0 {
			elapsedMS = 0
		}
	}
	accelDelta := float64(accelerationDelta)
	if elapsedMS < accelDelta {
		boost := 1 - elapsedMS/accelDelta
		s.velocity = math.Min(s.velocity+gainCoefficient*boost, accelerationMax)
	} else {
		decayWindowMS := float64(decayWindow) / float64(time.Millisecond)
		decay := math.Min(elapsedMS/decayWindowMS, 1.0)
		s.velocity = math.Max(1.0, s.velocity*(1-decay))
	}

	s.lastEvent = now
	return base * s.velocity
}

// Velocity reports the current multiplier, in [1.0, acceleration_max].
func (s *State) Velocity() float64 {
	return s.velocity
}

// Reset drops the multiplier back to its floor. Called on a direction
// reversal: momentum discarded by the axis must not carry into the
// new direction.
func (s *State) Reset() {
	s.velocity = 1.0
}
