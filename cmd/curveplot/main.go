// SPDX-License-Identifier: Unlicense OR MIT

// Command curveplot renders the easing kernel and the accelerator's
// velocity response to a PNG, so tail_head_ratio, acceleration_delta,
// and acceleration_max can be tuned by eye instead of by re-reading
// the formulas.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/limingdarcy-sys/OpenSmoothScroll/internal/accel"
	"github.com/limingdarcy-sys/OpenSmoothScroll/internal/easing"
)

func main() {
	out := flag.String("o", "curves.png", "output PNG path")
	tailRatio := flag.Float64("tail-head-ratio", 4.0, "easing tail/head shape parameter")
	accelDelta := flag.Int("acceleration-delta", 50, "accelerator gap threshold, ms")
	accelMax := flag.Float64("acceleration-max", 3.0, "accelerator velocity clamp")
	eventGapMS := flag.Int("event-gap-ms", 20, "simulated inter-event gap for the velocity curve, ms")
	eventCount := flag.Int("events", 10, "number of simulated events for the velocity curve")
	flag.Parse()

	if err := run(*out, *tailRatio, *accelDelta, *accelMax, *eventGapMS, *eventCount); err != nil {
		fmt.Fprintln(os.Stderr, "curveplot:", err)
		os.Exit(1)
	}
}

func run(out string, tailRatio float64, accelDelta int, accelMax float64, eventGapMS, eventCount int) error {
	p := plot.New()
	p.Title.Text = "OpenSmoothScroll: easing curve and accelerator velocity"
	p.X.Label.Text = "progress / event index"
	p.Y.Label.Text = "eased output / velocity multiplier"
	p.Add(plotter.NewGrid())

	easeLine, err := plotter.NewLine(easeCurve(tailRatio, 200))
	if err != nil {
		return fmt.Errorf("ease curve: %w", err)
	}
	easeLine.Color = color.RGBA{R: 0x06, G: 0xb6, B: 0xd4, A: 0xff}
	p.Add(easeLine)
	p.Legend.Add(fmt.Sprintf("ease(t, r=%.2f)", tailRatio), easeLine)

	velLine, err := plotter.NewLine(velocityCurve(accelDelta, accelMax, eventGapMS, eventCount))
	if err != nil {
		return fmt.Errorf("velocity curve: %w", err)
	}
	velLine.Color = color.RGBA{R: 0xef, G: 0x44, B: 0x44, A: 0xff}
	p.Add(velLine)
	p.Legend.Add(fmt.Sprintf("velocity (gap=%dms)", eventGapMS), velLine)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, out); err != nil {
		return fmt.Errorf("save %s: %w", out, err)
	}
	fmt.Println("wrote", out)
	return nil
}

// easeCurve samples the easing kernel at n+1 evenly spaced points over
// [0, 1] (both endpoints included), matching internal/easing.Out's
// formula exactly.
func easeCurve(tailRatio float64, n int) plotter.XYs {
	pts := make(plotter.XYs, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		pts[i].X = t
		pts[i].Y = easing.Out(t, tailRatio)
	}
	return pts
}

// velocityCurve simulates eventCount same-direction wheel events
// spaced eventGapMS apart and plots the resulting accelerator
// velocity per event as a fraction of accelMax, with the event index
// normalized onto [0, 1] on the X axis for overlay with the easing
// curve.
func velocityCurve(accelDelta int, accelMax float64, eventGapMS, eventCount int) plotter.XYs {
	st := accel.New()
	now := time.Unix(0, 0)
	pts := make(plotter.XYs, eventCount)
	for i := 0; i < eventCount; i++ {
		st.Amount(now, 1, 100, accelDelta, accelMax)
		pts[i].X = float64(i) / float64(eventCount-1)
		pts[i].Y = st.Velocity() / accelMax
		now = now.Add(time.Duration(eventGapMS) * time.Millisecond)
	}
	return pts
}
