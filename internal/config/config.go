// SPDX-License-Identifier: Unlicense OR MIT

// Package config loads and saves GlobalSettings as an INI document: a
// [Global] section for defaults and flags, and one [PerApp:<exe>]
// section per sparse per-app override.
package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/limingdarcy-sys/OpenSmoothScroll/internal/settings"
)

const perAppPrefix = "PerApp:"

// Load reads a GlobalSettings document from path. A missing file is
// not an error: it yields the package defaults, matching first-run
// behavior expected by the daemon and the scrollcfg tool.
func Load(path string) (*settings.GlobalSettings, error) {
	g := settings.Default()

	f, err := ini.LooseLoad(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}

	if gs := f.Section("Global"); gs != nil {
		readGlobal(gs, g)
	}

	for _, sec := range f.Sections() {
		exe, ok := strings.CutPrefix(sec.Name(), perAppPrefix)
		if !ok || exe == "" {
			continue
		}
		g.SetOverride(exe, readOverride(sec))
	}

	return g, nil
}

// Save writes g to path as an INI document in the format Load reads.
func Save(path string, g *settings.GlobalSettings) error {
	f := ini.Empty()
	writeGlobal(f.Section("Global"), g)

	names := make([]string, 0, len(g.PerApp))
	for exe := range g.PerApp {
		names = append(names, exe)
	}
	sort.Strings(names)
	for _, exe := range names {
		writeOverride(f.Section(perAppPrefix+exe), g.PerApp[exe])
	}

	if err := f.SaveTo(path); err != nil {
		return fmt.Errorf("config: save %s: %w", path, err)
	}
	return nil
}

func readGlobal(sec *ini.Section, g *settings.GlobalSettings) {
	if k, err := sec.GetKey("step_size"); err == nil {
		if v, err := k.Int(); err == nil {
			g.Defaults.StepSize = v
		}
	}
	if k, err := sec.GetKey("animation_time"); err == nil {
		if v, err := k.Int(); err == nil {
			g.Defaults.AnimationTimeMS = v
		}
	}
	if k, err := sec.GetKey("acceleration_delta"); err == nil {
		if v, err := k.Int(); err == nil {
			g.Defaults.AccelerationDelta = v
		}
	}
	if k, err := sec.GetKey("acceleration_max"); err == nil {
		if v, err := k.Float64(); err == nil {
			g.Defaults.AccelerationMax = v
		}
	}
	if k, err := sec.GetKey("tail_head_ratio"); err == nil {
		if v, err := k.Float64(); err == nil {
			g.Defaults.TailHeadRatio = v
		}
	}
	if k, err := sec.GetKey("animation_easing"); err == nil {
		if v, err := k.Bool(); err == nil {
			g.AnimationEasing = v
		}
	}
	if k, err := sec.GetKey("shift_horizontal"); err == nil {
		if v, err := k.Bool(); err == nil {
			g.ShiftHorizontal = v
		}
	}
	if k, err := sec.GetKey("horizontal_smoothness"); err == nil {
		if v, err := k.Bool(); err == nil {
			g.HorizontalSmoothness = v
		}
	}
	if k, err := sec.GetKey("enabled"); err == nil {
		if v, err := k.Bool(); err == nil {
			g.Enabled = v
		}
	}
	if k, err := sec.GetKey("blacklist"); err == nil {
		for _, exe := range strings.Split(k.String(), ",") {
			if exe = strings.TrimSpace(exe); exe != "" {
				g.AddToBlacklist(exe)
			}
		}
	}
}

func writeGlobal(sec *ini.Section, g *settings.GlobalSettings) {
	sec.Key("step_size").SetValue(strconv.Itoa(g.Defaults.StepSize))
	sec.Key("animation_time").SetValue(strconv.Itoa(g.Defaults.AnimationTimeMS))
	sec.Key("acceleration_delta").SetValue(strconv.Itoa(g.Defaults.AccelerationDelta))
	sec.Key("acceleration_max").SetValue(strconv.FormatFloat(g.Defaults.AccelerationMax, 'g', -1, 64))
	sec.Key("tail_head_ratio").SetValue(strconv.FormatFloat(g.Defaults.TailHeadRatio, 'g', -1, 64))
	sec.Key("animation_easing").SetValue(strconv.FormatBool(g.AnimationEasing))
	sec.Key("shift_horizontal").SetValue(strconv.FormatBool(g.ShiftHorizontal))
	sec.Key("horizontal_smoothness").SetValue(strconv.FormatBool(g.HorizontalSmoothness))
	sec.Key("enabled").SetValue(strconv.FormatBool(g.Enabled))
	if len(g.Blacklist) > 0 {
		names := make([]string, 0, len(g.Blacklist))
		for exe := range g.Blacklist {
			names = append(names, exe)
		}
		sort.Strings(names)
		sec.Key("blacklist").SetValue(strings.Join(names, ","))
	}
}

func readOverride(sec *ini.Section) settings.Override {
	var o settings.Override
	if k, err := sec.GetKey("step_size"); err == nil {
		if v, err := k.Int(); err == nil {
			o.StepSize = &v
		}
	}
	if k, err := sec.GetKey("animation_time"); err == nil {
		if v, err := k.Int(); err == nil {
			o.AnimationTimeMS = &v
		}
	}
	if k, err := sec.GetKey("acceleration_delta"); err == nil {
		if v, err := k.Int(); err == nil {
			o.AccelerationDelta = &v
		}
	}
	if k, err := sec.GetKey("acceleration_max"); err == nil {
		if v, err := k.Float64(); err == nil {
			o.AccelerationMax = &v
		}
	}
	if k, err := sec.GetKey("tail_head_ratio"); err == nil {
		if v, err := k.Float64(); err == nil {
			o.TailHeadRatio = &v
		}
	}
	return o
}

func writeOverride(sec *ini.Section, o settings.Override) {
	if o.StepSize != nil {
		sec.Key("step_size").SetValue(strconv.Itoa(*o.StepSize))
	}
	if o.AnimationTimeMS != nil {
		sec.Key("animation_time").SetValue(strconv.Itoa(*o.AnimationTimeMS))
	}
	if o.AccelerationDelta != nil {
		sec.Key("acceleration_delta").SetValue(strconv.Itoa(*o.AccelerationDelta))
	}
	if o.AccelerationMax != nil {
		sec.Key("acceleration_max").SetValue(strconv.FormatFloat(*o.AccelerationMax, 'g', -1, 64))
	}
	if o.TailHeadRatio != nil {
		sec.Key("tail_head_ratio").SetValue(strconv.FormatFloat(*o.TailHeadRatio, 'g', -1, 64))
	}
}
