// SPDX-License-Identifier: Unlicense OR MIT

// Package easing implements the normalized exponential ease-out curve
// used to shape scroll animations.
package easing

import "math"

// minK guards against a large tail ratio driving the exponent to zero,
// which would otherwise make the curve degenerate (0/0).
const minK = 0.001

// Out returns the eased progress for t in [0, 1], shaped by tailRatio:
// the exponent is k = 24/(tailRatio+1), so small ratios give a sharply
// front-loaded curve and large ratios flatten it toward linear.
// Out(0, r) is 0 and Out(1, r) is 1 for any tailRatio > 0, and Out is
// strictly increasing on [0, 1].
func Out(t, tailRatio float64) float64 {
	k := 24 / (tailRatio + 1)
	if k < minK {
		k = minK
	}
	return (1 - math.Exp(-k*t)) / (1 - math.Exp(-k))
}

// Linear is the identity curve, used in place of Out when a caller's
// animation_easing flag is false.
func Linear(t, _ float64) float64 {
	return t
}
