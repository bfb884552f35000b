// SPDX-License-Identifier: Unlicense OR MIT

package engine

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/limingdarcy-sys/OpenSmoothScroll/internal/activitylog"
	"github.com/limingdarcy-sys/OpenSmoothScroll/internal/settings"
)

// fakeDispatcher lets tests drive the façade's lifecycle and feed it
// wheel ticks without a real OS hook.
type fakeDispatcher struct {
	installErr error
	onTick     func(WheelTick) bool
	installed  bool
}

func (d *fakeDispatcher) Install(onTick func(WheelTick) bool) error {
	if d.installErr != nil {
		return d.installErr
	}
	d.onTick = onTick
	d.installed = true
	return nil
}

func (d *fakeDispatcher) Uninstall() error {
	d.installed = false
	return nil
}

func newTestEngine(t *testing.T, disp *fakeDispatcher) (*Engine, *[]int, *[]int) {
	t.Helper()
	var mu sync.Mutex
	var vEmits, hEmits []int
	e := New(zerolog.Nop(), settings.Default(), func() dispatcher { return disp },
		func(d int) { mu.Lock(); vEmits = append(vEmits, d); mu.Unlock() },
		func(d int) { mu.Lock(); hEmits = append(hEmits, d); mu.Unlock() },
	)
	return e, &vEmits, &hEmits
}

func TestStartStopLifecycle(t *testing.T) {
	disp := &fakeDispatcher{}
	e, _, _ := newTestEngine(t, disp)

	if got := e.State(); got != StateUninstalled {
		t.Fatalf("initial state = %v, want Uninstalled", got)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := e.State(); got != StateRunning {
		t.Fatalf("state after Start = %v, want Running", got)
	}
	if !disp.installed {
		t.Fatal("dispatcher was not installed")
	}

	if err := e.Start(); err == nil {
		t.Fatal("second Start() should fail while already running")
	}

	if err := e.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if got := e.State(); got != StateUninstalled {
		t.Fatalf("state after Stop = %v, want Uninstalled", got)
	}
	if disp.installed {
		t.Fatal("dispatcher was not uninstalled")
	}
}

func TestStartFailureRevertsToUninstalled(t *testing.T) {
	disp := &fakeDispatcher{installErr: errors.New("boom")}
	e, _, _ := newTestEngine(t, disp)

	if err := e.Start(); err == nil {
		t.Fatal("expected Start() to fail")
	}
	if got := e.State(); got != StateUninstalled {
		t.Fatalf("state after failed Start = %v, want Uninstalled", got)
	}
}

// TestHandleTickBlacklistPassesThrough: a blacklisted foreground
// process produces no animation, the accelerator is left untouched,
// and the tick is reported unconsumed so the dispatcher passes the
// original event through.
func TestHandleTickBlacklistPassesThrough(t *testing.T) {
	disp := &fakeDispatcher{}
	e, _, _ := newTestEngine(t, disp)
	s := settings.Default()
	s.AddToBlacklist("blacklisted.exe")
	e.ReplaceSettings(s)

	fg := func() string { return "blacklisted.exe" }
	if e.handleTick(WheelTick{RawDelta: 120, Foreground: fg, At: time.Now()}) {
		t.Fatal("blacklisted tick should not be consumed")
	}
	if e.vertical.Animating() {
		t.Fatal("blacklisted tick should not start an animation")
	}
	if e.accel.Velocity() != 1.0 {
		t.Fatalf("accelerator velocity = %v, want unchanged at 1.0", e.accel.Velocity())
	}
}

// TestHandleTickShiftSwapsAxis: with shift_horizontal set and Shift
// held, a vertical wheel message drives the horizontal animator,
// leaving the vertical one idle.
func TestHandleTickShiftSwapsAxis(t *testing.T) {
	disp := &fakeDispatcher{}
	e, _, _ := newTestEngine(t, disp)

	old := shiftHeld
	shiftHeld = func() bool { return true }
	defer func() { shiftHeld = old }()

	e.handleTick(WheelTick{Horizontal: false, RawDelta: 120, At: time.Now()})

	if e.vertical.Animating() {
		t.Fatal("vertical animator should stay idle when Shift swaps the axis")
	}
	if !e.horizontal.Animating() {
		t.Fatal("horizontal animator should be driven by the shift-swapped tick")
	}
}

// TestHandleTickHorizontalWithoutSmoothnessEmitsImmediately: a
// horizontal tick with horizontal_smoothness off bypasses the
// animator and emits a single synthetic event.
func TestHandleTickHorizontalWithoutSmoothnessEmitsImmediately(t *testing.T) {
	disp := &fakeDispatcher{}
	e, _, hEmits := newTestEngine(t, disp)
	s := settings.Default()
	s.HorizontalSmoothness = false
	e.ReplaceSettings(s)

	e.handleTick(WheelTick{Horizontal: true, RawDelta: 120, At: time.Now()})

	if e.horizontal.Animating() {
		t.Fatal("horizontal animator should not engage when smoothness is off")
	}
	if len(*hEmits) != 1 {
		t.Fatalf("immediate horizontal emits = %d, want 1", len(*hEmits))
	}
	if (*hEmits)[0] != 100 {
		t.Fatalf("immediate horizontal emit = %d, want 100 (default step_size)", (*hEmits)[0])
	}
}

// TestHandleTickDisabledEngineDoesNothing covers the disabled gate at
// the head of the per-event decision ordering: the tick is not
// consumed and nothing animates.
func TestHandleTickDisabledEngineDoesNothing(t *testing.T) {
	disp := &fakeDispatcher{}
	e, _, _ := newTestEngine(t, disp)
	s := settings.Default()
	s.Enabled = false
	e.ReplaceSettings(s)

	resolved := false
	fg := func() string { resolved = true; return "notepad.exe" }
	if e.handleTick(WheelTick{RawDelta: 120, Foreground: fg, At: time.Now()}) {
		t.Fatal("disabled engine should not consume the tick")
	}
	if e.vertical.Animating() || e.horizontal.Animating() {
		t.Fatal("disabled engine should not start any animation")
	}
	if resolved {
		t.Fatal("disabled engine must not pay for foreground resolution")
	}
}

// TestSharedAcceleratorSpansAxes: both axes draw from one momentum
// channel, so a vertical burst leaves a following horizontal event
// accelerated too.
func TestSharedAcceleratorSpansAxes(t *testing.T) {
	disp := &fakeDispatcher{}
	e, _, _ := newTestEngine(t, disp)

	base := time.Unix(0, 0)
	for i := 0; i < 4; i++ {
		e.handleTick(WheelTick{RawDelta: 120, At: base.Add(time.Duration(i*20) * time.Millisecond)})
	}
	e.handleTick(WheelTick{Horizontal: true, RawDelta: 120, At: base.Add(80 * time.Millisecond)})

	if e.accel.Velocity() <= 1.0 {
		t.Fatalf("velocity after cross-axis burst = %v, want > 1.0", e.accel.Velocity())
	}
}

// TestReversalResetsSharedVelocity: reversing scroll direction throws
// away the outstanding momentum, so the velocity multiplier restarts
// at its floor for the new direction.
func TestReversalResetsSharedVelocity(t *testing.T) {
	disp := &fakeDispatcher{}
	e, _, _ := newTestEngine(t, disp)

	base := time.Unix(0, 0)
	for i := 0; i < 4; i++ {
		e.handleTick(WheelTick{RawDelta: 120, At: base.Add(time.Duration(i*20) * time.Millisecond)})
	}
	if e.accel.Velocity() <= 1.0 {
		t.Fatalf("velocity before reversal = %v, want > 1.0", e.accel.Velocity())
	}

	e.handleTick(WheelTick{RawDelta: -120, At: base.Add(80 * time.Millisecond)})
	if e.accel.Velocity() != 1.0 {
		t.Fatalf("velocity after reversal = %v, want reset to 1.0", e.accel.Velocity())
	}
}

// TestActivityLogCarriesEventAndCompletion: a consumed tick is logged
// with the resolved exe and accelerated amount, and the animation run
// it starts logs a completion carrying the emitted total and a
// positive wall-clock duration.
func TestActivityLogCarriesEventAndCompletion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.osslog")
	w, err := activitylog.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	sink := activitylog.NewSink(w, 16)

	disp := &fakeDispatcher{}
	e := New(zerolog.Nop(), settings.Default(), func() dispatcher { return disp },
		func(int) {}, func(int) {}, WithActivityLog(sink))
	s := settings.Default()
	s.Defaults.AnimationTimeMS = 20 // keep the test run short
	e.ReplaceSettings(s)

	fg := func() string { return "notepad.exe" }
	if !e.handleTick(WheelTick{RawDelta: 120, Foreground: fg, At: time.Now()}) {
		t.Fatal("tick should be consumed")
	}

	deadline := time.Now().Add(2 * time.Second)
	for e.vertical.Animating() {
		if time.Now().After(deadline) {
			t.Fatal("animation did not finish")
		}
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond) // let the completion reach the sink
	sink.Close()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := activitylog.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	var sawEvent, sawCompletion bool
	for {
		rec, err := r.Next()
		if err != nil {
			break
		}
		switch rec.Type {
		case activitylog.RecordTypeEvent:
			sawEvent = true
			if rec.Event.Exe != "notepad.exe" {
				t.Fatalf("event exe = %q, want notepad.exe", rec.Event.Exe)
			}
			if rec.Event.Amount != 100 {
				t.Fatalf("event amount = %v, want 100", rec.Event.Amount)
			}
		case activitylog.RecordTypeCompletion:
			sawCompletion = true
			if rec.Completion.Total != 100 {
				t.Fatalf("completion total = %d, want 100", rec.Completion.Total)
			}
			if rec.Completion.DurationNanos <= 0 {
				t.Fatal("completion duration must be positive")
			}
		}
	}
	if !sawEvent || !sawCompletion {
		t.Fatalf("log records: event=%t completion=%t, want both", sawEvent, sawCompletion)
	}
}

func TestStatusCallbackTransitions(t *testing.T) {
	disp := &fakeDispatcher{}
	var mu sync.Mutex
	var got []bool
	e := New(zerolog.Nop(), settings.Default(), func() dispatcher { return disp },
		func(int) {}, func(int) {},
		WithStatusCallback(func(running bool) {
			mu.Lock()
			got = append(got, running)
			mu.Unlock()
		}),
	)

	if err := e.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := e.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || !got[0] || got[1] {
		t.Fatalf("status callback sequence = %v, want [true false]", got)
	}
}

func TestStatusCallbackReportsFalseOnInstallFailure(t *testing.T) {
	disp := &fakeDispatcher{installErr: errors.New("boom")}
	var got []bool
	e := New(zerolog.Nop(), settings.Default(), func() dispatcher { return disp },
		func(int) {}, func(int) {},
		WithStatusCallback(func(running bool) { got = append(got, running) }),
	)

	if err := e.Start(); err == nil {
		t.Fatal("expected Start() to fail")
	}
	if len(got) != 1 || got[0] {
		t.Fatalf("status callback sequence = %v, want [false]", got)
	}
}
