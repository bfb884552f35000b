// SPDX-License-Identifier: Unlicense OR MIT

// Package settings holds the resolved per-axis scroll parameters and
// the global/per-app configuration they are derived from.
package settings

import "strings"

// ScrollParameters is the frozen set of tuning values used for a
// single animation run. All fields are positive.
type ScrollParameters struct {
	StepSize          int     // pixels per detent
	AnimationTimeMS   int     // milliseconds
	AccelerationDelta int     // ms; below this inter-event interval we accelerate
	AccelerationMax   float64 // clamp on the velocity multiplier, >= 1.0
	TailHeadRatio     float64 // easing curve shape parameter, > 0
}

// Override is a sparse, per-app overlay of ScrollParameters: any field
// left nil falls back to the global default.
type Override struct {
	StepSize          *int
	AnimationTimeMS   *int
	AccelerationDelta *int
	AccelerationMax   *float64
	TailHeadRatio     *float64
}

// GlobalSettings is the immutable snapshot the engine resolves
// parameters from on every wheel event. Callers must treat a
// *GlobalSettings as read-only once built; settings changes are
// applied by swapping in a freshly built instance.
type GlobalSettings struct {
	Defaults ScrollParameters

	AnimationEasing      bool
	ShiftHorizontal      bool
	HorizontalSmoothness bool
	Enabled              bool

	Blacklist map[string]struct{}
	PerApp    map[string]Override
}

// Default returns the stock tuning: 100px per detent over 400ms, with
// easing, shift-swap and horizontal smoothness all on.
func Default() *GlobalSettings {
	return &GlobalSettings{
		Defaults: ScrollParameters{
			StepSize:          100,
			AnimationTimeMS:   400,
			AccelerationDelta: 50,
			AccelerationMax:   3.0,
			TailHeadRatio:     4.0,
		},
		AnimationEasing:      true,
		ShiftHorizontal:      true,
		HorizontalSmoothness: true,
		Enabled:              true,
		Blacklist:            map[string]struct{}{},
		PerApp:               map[string]Override{},
	}
}

// AddToBlacklist lower-cases and inserts exe into the blacklist set.
func (g *GlobalSettings) AddToBlacklist(exe string) {
	if g.Blacklist == nil {
		g.Blacklist = map[string]struct{}{}
	}
	g.Blacklist[strings.ToLower(exe)] = struct{}{}
}

// Blacklisted reports whether exe (case-insensitively) is blacklisted.
// An empty blacklist never matches, regardless of exe.
func (g *GlobalSettings) Blacklisted(exe string) bool {
	if len(g.Blacklist) == 0 || exe == "" {
		return false
	}
	_, ok := g.Blacklist[strings.ToLower(exe)]
	return ok
}

// Resolve returns the frozen ScrollParameters for exe: the global
// defaults with any sparse override from PerApp[lower(exe)] applied
// field by field. An unknown or empty exe returns the defaults
// unchanged.
func (g *GlobalSettings) Resolve(exe string) ScrollParameters {
	p := g.Defaults
	if exe == "" {
		return p
	}
	o, ok := g.PerApp[strings.ToLower(exe)]
	if !ok {
		return p
	}
	if o.StepSize != nil {
		p.StepSize = *o.StepSize
	}
	if o.AnimationTimeMS != nil {
		p.AnimationTimeMS = *o.AnimationTimeMS
	}
	if o.AccelerationDelta != nil {
		p.AccelerationDelta = *o.AccelerationDelta
	}
	if o.AccelerationMax != nil {
		p.AccelerationMax = *o.AccelerationMax
	}
	if o.TailHeadRatio != nil {
		p.TailHeadRatio = *o.TailHeadRatio
	}
	return p
}

// SetOverride installs or replaces the sparse override for exe.
func (g *GlobalSettings) SetOverride(exe string, o Override) {
	if g.PerApp == nil {
		g.PerApp = map[string]Override{}
	}
	g.PerApp[strings.ToLower(exe)] = o
}
