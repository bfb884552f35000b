// SPDX-License-Identifier: Unlicense OR MIT

// Package engine ties the mouse-wheel hook, per-axis animators,
// acceleration state, and process resolution into one running service
// with a small lifecycle: Start, Stop, and an atomic settings swap for
// config reload.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/limingdarcy-sys/OpenSmoothScroll/internal/accel"
	"github.com/limingdarcy-sys/OpenSmoothScroll/internal/activitylog"
	"github.com/limingdarcy-sys/OpenSmoothScroll/internal/axis"
	"github.com/limingdarcy-sys/OpenSmoothScroll/internal/easing"
	"github.com/limingdarcy-sys/OpenSmoothScroll/internal/settings"
)

// State is the engine's lifecycle position.
type State int

const (
	StateUninstalled State = iota
	StateInstalling
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateUninstalled:
		return "Uninstalled"
	case StateInstalling:
		return "Installing"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	default:
		return "Unknown"
	}
}

// dispatcher is the platform-specific half: install/uninstall the
// system hook and deliver decoded wheel ticks to the engine. onTick
// reports whether the engine consumed the tick; an unconsumed tick
// must be passed through to the OS unmodified (blacklisted foreground
// app, engine disabled).
type dispatcher interface {
	Install(onTick func(tick WheelTick) bool) error
	Uninstall() error
}

// WheelTick is one decoded, accepted wheel notch from the OS hook.
type WheelTick struct {
	Horizontal bool
	RawDelta   int32 // positive/negative multiple of WHEEL_DELTA (120)
	At         time.Time

	// Foreground lazily resolves the foreground process's executable
	// name. Resolution costs a process-handle open on a cache miss, so
	// it is deferred until the cheap enabled gate has passed; a
	// disabled engine never pays it. May be nil ("unknown app").
	Foreground func() string
}

// Engine is the cross-platform façade. The zero value is not usable;
// construct with New.
type Engine struct {
	log    zerolog.Logger
	sink   *activitylog.Sink
	newDsp func() dispatcher

	settings atomic.Pointer[settings.GlobalSettings]

	// stopping gates the animator frame loops during teardown:
	// workers observe it at the top of each frame and exit, so the
	// worst case after a Stop is one extra frame of emission.
	stopping atomic.Bool

	mu    sync.Mutex
	state State
	disp  dispatcher

	vertical       *axis.Animator
	horizontal     *axis.Animator
	emitHorizontal func(delta int)

	// accel is the single momentum channel both axes share: a burst of
	// vertical detents leaves horizontal scrolling accelerated too.
	accel *accel.State

	onStatus func(running bool)
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithActivityLog attaches a sink that every accepted tick, finished
// animation run, and lifecycle transition is (best-effort,
// non-blocking) reported to.
func WithActivityLog(sink *activitylog.Sink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithStatusCallback registers cb to be invoked with true when the
// engine reaches Running and with false when it leaves it (a Stop, or
// a failed install). Tray surfaces hang their enabled/disabled icon
// off this.
func WithStatusCallback(cb func(running bool)) Option {
	return func(e *Engine) { e.onStatus = cb }
}

// New constructs an Engine with the given initial settings and logger.
// emitVertical/emitHorizontal perform the platform SendInput call (or
// an equivalent) for a signed integer pixel delta on that axis.
func New(log zerolog.Logger, initial *settings.GlobalSettings, newDsp func() dispatcher,
	emitVertical, emitHorizontal func(delta int), opts ...Option) *Engine {

	e := &Engine{
		log:            log,
		newDsp:         newDsp,
		emitHorizontal: emitHorizontal,
		accel:          accel.New(),
	}
	e.settings.Store(initial)
	e.vertical = axis.New(emitVertical, e.animationsDisabled, easing.Out)
	e.horizontal = axis.New(emitHorizontal, e.animationsDisabled, easing.Out)
	e.vertical.OnComplete(e.completionFunc(0))
	e.horizontal.OnComplete(e.completionFunc(1))
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// completionFunc reports a finished animation run on the given axis
// to the activity log, if one is attached.
func (e *Engine) completionFunc(axisID uint8) func(total int, elapsed time.Duration) {
	return func(total int, elapsed time.Duration) {
		if e.sink == nil {
			return
		}
		e.sink.OfferCompletion(activitylog.Completion{
			UnixNanos:     nowNanos(),
			Axis:          axisID,
			Total:         int32(total),
			DurationNanos: int64(elapsed),
		})
	}
}

// animationsDisabled reports, at the top of each animation frame,
// whether the run must be abandoned early. Only the engine-wide
// enabled flag aborts a run in progress: the safest behavior for a
// horizontal_smoothness toggle mid-animation is to let the in-flight
// run finish under its captured params rather than truncate it the
// instant a live settings swap flips the flag. The smoothness gate is
// instead applied once, at enqueue time, in handleTick.
func (e *Engine) animationsDisabled() bool {
	if e.stopping.Load() {
		return true
	}
	s := e.settings.Load()
	return s == nil || !s.Enabled
}

// Settings returns the engine's current settings snapshot.
func (e *Engine) Settings() *settings.GlobalSettings {
	return e.settings.Load()
}

// ReplaceSettings atomically swaps in new settings, e.g. on SIGHUP. An
// animation run already in flight keeps the params it captured at
// enqueue time; only the next wheel event sees the new values.
func (e *Engine) ReplaceSettings(s *settings.GlobalSettings) {
	e.settings.Store(s)
	e.log.Info().Msg("settings reloaded")
}

// State reports the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Start installs the platform hook and begins processing wheel events.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.state != StateUninstalled {
		e.mu.Unlock()
		return fmt.Errorf("engine: Start called in state %s", e.state)
	}
	e.state = StateInstalling
	e.mu.Unlock()
	e.stopping.Store(false)

	e.recordState(StateInstalling)

	disp := e.newDsp()
	if err := disp.Install(e.handleTick); err != nil {
		e.mu.Lock()
		e.state = StateUninstalled
		e.mu.Unlock()
		e.recordState(StateUninstalled)
		e.notifyStatus(false)
		return fmt.Errorf("engine: install hook: %w", err)
	}

	e.mu.Lock()
	e.disp = disp
	e.state = StateRunning
	e.mu.Unlock()
	e.recordState(StateRunning)
	e.notifyStatus(true)
	e.log.Info().Msg("engine started")
	return nil
}

// Stop uninstalls the hook and returns once teardown completes.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if e.state != StateRunning {
		e.mu.Unlock()
		return fmt.Errorf("engine: Stop called in state %s", e.state)
	}
	e.state = StateStopping
	disp := e.disp
	e.mu.Unlock()
	e.stopping.Store(true)
	e.recordState(StateStopping)

	var err error
	if disp != nil {
		err = disp.Uninstall()
	}

	e.mu.Lock()
	e.state = StateUninstalled
	e.disp = nil
	e.mu.Unlock()
	e.recordState(StateUninstalled)
	e.notifyStatus(false)
	e.log.Info().Msg("engine stopped")
	if err != nil {
		return fmt.Errorf("engine: uninstall hook: %w", err)
	}
	return nil
}

func (e *Engine) notifyStatus(running bool) {
	if e.onStatus != nil {
		e.onStatus(running)
	}
}

func (e *Engine) recordState(s State) {
	if e.sink == nil {
		return
	}
	e.sink.OfferStateChange(activitylog.StateChange{UnixNanos: nowNanos(), State: s.String()})
}

// handleTick is the dispatcher callback: it applies the blacklist,
// resolves per-app settings, runs the tick through the shared
// accelerator, and enqueues the resulting animation. It reports
// whether the tick was consumed; a false return means the dispatcher
// must pass the original event through to the OS untouched.
func (e *Engine) handleTick(t WheelTick) bool {
	s := e.settings.Load()
	if s == nil || !s.Enabled {
		return false
	}

	exe := ""
	if t.Foreground != nil {
		exe = t.Foreground()
	}
	if s.Blacklisted(exe) {
		return false
	}

	params := s.Resolve(exe)

	horizontal := t.Horizontal
	if !horizontal && s.ShiftHorizontal && shiftHeld() {
		horizontal = true
	}

	amount := e.accel.Amount(t.At, int(t.RawDelta), params.StepSize, params.AccelerationDelta, params.AccelerationMax)

	switch {
	case horizontal && !s.HorizontalSmoothness:
		// Horizontal without smoothness bypasses the animator and
		// emits one synthetic event immediately.
		if d := int(amount); d != 0 && e.emitHorizontal != nil {
			e.emitHorizontal(d)
		}
	case horizontal:
		if e.horizontal.Enqueue(amount, axis.Params{
			AnimationTimeMS: params.AnimationTimeMS,
			Easing:          s.AnimationEasing,
			TailHeadRatio:   params.TailHeadRatio,
		}) {
			e.accel.Reset()
		}
	default:
		if e.vertical.Enqueue(amount, axis.Params{
			AnimationTimeMS: params.AnimationTimeMS,
			Easing:          s.AnimationEasing,
			TailHeadRatio:   params.TailHeadRatio,
		}) {
			e.accel.Reset()
		}
	}

	if e.sink != nil {
		axisID := uint8(0)
		if horizontal {
			axisID = 1
		}
		e.sink.OfferEvent(activitylog.Event{
			UnixNanos: t.At.UnixNano(),
			Axis:      axisID,
			RawDelta:  t.RawDelta,
			Amount:    amount,
			Exe:       exe,
		})
	}
	return true
}

// shiftHeld is a platform seam, overridden on Windows to query real
// async key state; the portable default never reports Shift held,
// which keeps this package compilable and testable on every platform.
var shiftHeld = func() bool { return false }

var nowNanos = func() int64 { return time.Now().UnixNano() }

// ErrUnsupported is returned by a platform dispatcher that can't
// install a system-wide hook on the current OS.
var ErrUnsupported = errors.New("engine: unsupported platform")
