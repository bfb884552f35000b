// SPDX-License-Identifier: Unlicense OR MIT

package axis

import (
	"math"
	"sync"
	"testing"
	"time"
)

func identityEase(t, _ float64) float64 { return t }

func baseAt(ms int) time.Time {
	return time.Unix(0, 0).Add(time.Duration(ms) * time.Millisecond)
}

// TestEnqueueReversalPurity: a reversal resets target to the new
// amount and current to zero, never summing.
func TestEnqueueReversalPurity(t *testing.T) {
	a := New(nil, nil, identityEase)
	_, rev := a.enqueue(100, Params{AnimationTimeMS: 400}, baseAt(0))
	if rev {
		t.Fatal("first enqueue must not report a reversal")
	}
	if got := a.Target(); got != 100 {
		t.Fatalf("after first enqueue target = %v, want 100", got)
	}

	started, rev := a.enqueue(-100, Params{AnimationTimeMS: 400}, baseAt(100))
	if started {
		t.Fatal("reversal while already animating should not request a new goroutine")
	}
	if !rev {
		t.Fatal("opposite-sign enqueue must report a reversal")
	}
	if got := a.Target(); got != -100 {
		t.Fatalf("after reversal target = %v, want -100", got)
	}
	if got := a.Current(); got != 0 {
		t.Fatalf("after reversal current = %v, want 0", got)
	}
}

// TestEnqueueContinuousPush covers the "replay the easing tail" rule:
// same-direction enqueues grow the target and restart current at 0.
func TestEnqueueContinuousPush(t *testing.T) {
	a := New(nil, nil, identityEase)
	a.enqueue(100, Params{AnimationTimeMS: 400}, baseAt(0))
	a.current = 40 // simulate partial progress before the next detent

	if _, rev := a.enqueue(100, Params{AnimationTimeMS: 400}, baseAt(50)); rev {
		t.Fatal("same-direction enqueue must not report a reversal")
	}
	if got := a.Target(); got != 200 {
		t.Fatalf("target = %v, want 200", got)
	}
	if got := a.Current(); got != 0 {
		t.Fatalf("current = %v, want 0 (restarted)", got)
	}
}

// TestFrameSubPixelConservationFractionalTarget: an accelerated
// amount is rarely integral; the flush at completion must still land
// the emitted sum on round(target).
func TestFrameSubPixelConservationFractionalTarget(t *testing.T) {
	for _, target := range []float64{133.7, -148.2, 99.5} {
		var sum int
		a := New(func(d int) { sum += d }, nil, identityEase)

		start := baseAt(0)
		a.enqueue(target, Params{AnimationTimeMS: 400, Easing: false}, start)

		now := start
		for i := 0; i < 1000; i++ {
			now = now.Add(FrameInterval)
			a.SetClock(func() time.Time { return now })
			if a.frame() {
				break
			}
		}

		if sum != int(math.Round(target)) {
			t.Fatalf("target %v: sum of emitted deltas = %d, want %d", target, sum, int(math.Round(target)))
		}
	}
}

// TestFrameSubPixelConservation: over a full animation that
// terminates, the emitted integer deltas sum to round(target)
// exactly.
func TestFrameSubPixelConservation(t *testing.T) {
	const target = 133.0 // an awkward, non-round value on purpose
	var (
		mu   sync.Mutex
		sum  int
		last time.Time
	)
	a := New(func(d int) {
		mu.Lock()
		sum += d
		mu.Unlock()
	}, nil, identityEase)

	start := baseAt(0)
	a.enqueue(target, Params{AnimationTimeMS: 400, Easing: false}, start)

	now := start
	for i := 0; i < 1000; i++ {
		now = now.Add(FrameInterval)
		a.SetClock(func() time.Time { return now })
		last = now
		if a.frame() {
			break
		}
	}
	_ = last

	mu.Lock()
	defer mu.Unlock()
	if sum != int(math.Round(target)) {
		t.Fatalf("sum of emitted deltas = %d, want %d", sum, int(math.Round(target)))
	}
}

// TestCompletionReportsTotalAndDuration: a finished run reports the
// emitted total and its wall-clock duration through OnComplete,
// exactly once.
func TestCompletionReportsTotalAndDuration(t *testing.T) {
	var (
		total   int
		elapsed time.Duration
		fired   int
	)
	a := New(func(int) {}, nil, identityEase)
	a.OnComplete(func(tot int, el time.Duration) {
		total, elapsed = tot, el
		fired++
	})

	start := baseAt(0)
	a.enqueue(133.7, Params{AnimationTimeMS: 400, Easing: false}, start)

	now := start
	for i := 0; i < 1000; i++ {
		now = now.Add(FrameInterval)
		a.SetClock(func() time.Time { return now })
		if a.frame() {
			break
		}
	}

	if fired != 1 {
		t.Fatalf("completion fired %d times, want 1", fired)
	}
	if total != 134 {
		t.Fatalf("completion total = %d, want 134", total)
	}
	if elapsed < 400*time.Millisecond {
		t.Fatalf("completion duration = %v, want >= the animation time", elapsed)
	}
}

// TestFrontLoadedEasedAnimation: with easing on and the default
// tail_head_ratio=4 shape, at least 90% of the magnitude should
// already be emitted by 60% of the animation duration.
func TestFrontLoadedEasedAnimation(t *testing.T) {
	const (
		target    = 100.0
		animMS    = 400
		tailRatio = 4.0
	)
	ease := func(t, r float64) float64 {
		// Mirrors internal/easing.Out without importing it, to keep
		// this package's tests independent of that package's API.
		k := 24 / (r + 1)
		if k < 0.001 {
			k = 0.001
		}
		return (1 - math.Exp(-k*t)) / (1 - math.Exp(-k))
	}

	var emittedByTime = map[time.Duration]int{}
	var total int
	a := New(func(d int) { total += d }, nil, ease)

	start := baseAt(0)
	a.enqueue(target, Params{AnimationTimeMS: animMS, Easing: true, TailHeadRatio: tailRatio}, start)

	now := start
	cum := 0
	for {
		now = now.Add(FrameInterval)
		a.SetClock(func() time.Time { return now })
		before := total
		done := a.frame()
		cum += total - before
		elapsed := now.Sub(start)
		emittedByTime[elapsed] = cum
		if done {
			break
		}
	}

	cutoff := time.Duration(float64(animMS)*0.6) * time.Millisecond
	var atCutoff int
	for d, v := range emittedByTime {
		if d <= cutoff && v > atCutoff {
			atCutoff = v
		}
	}
	if float64(atCutoff) < 0.9*target {
		t.Fatalf("only %v/%v emitted by 60%% of duration, want >= 90%%", atCutoff, target)
	}
}
