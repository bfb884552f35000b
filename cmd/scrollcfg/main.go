// SPDX-License-Identifier: Unlicense OR MIT

// Command scrollcfg authors the INI settings document the engine
// reads, without requiring a user to hand-edit it or hunt for an
// application's executable name. It is a config-authoring aid, not a
// settings GUI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/limingdarcy-sys/OpenSmoothScroll/internal/config"
	"github.com/limingdarcy-sys/OpenSmoothScroll/internal/procsnapshot"
	"github.com/limingdarcy-sys/OpenSmoothScroll/internal/settings"
)

func main() {
	configPath := flag.String("config", "opensmoothscroll.ini", "path to the INI settings document")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	if err := run(*configPath, args); err != nil {
		fmt.Fprintln(os.Stderr, "scrollcfg:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: scrollcfg [-config path] <command> [args]

commands:
  list-processes                 list running processes' executable names
  blacklist add <exe>            add exe to the blacklist
  blacklist remove <exe>         remove exe from the blacklist
  blacklist show                 print the current blacklist
  perapp set <exe> <field> <val> set a sparse per-app override
  perapp clear <exe>             remove exe's per-app override
  show                           print the resolved global defaults`)
}

func run(path string, args []string) error {
	switch args[0] {
	case "list-processes":
		return listProcesses()
	case "blacklist":
		return blacklistCmd(path, args[1:])
	case "perapp":
		return perAppCmd(path, args[1:])
	case "show":
		return showCmd(path)
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func listProcesses() error {
	entries, err := procsnapshot.List(context.Background())
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}
	for _, name := range procsnapshot.DistinctExeNames(entries) {
		fmt.Println(name)
	}
	return nil
}

func blacklistCmd(path string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("blacklist requires a subcommand (add/remove/show)")
	}
	gs, err := config.Load(path)
	if err != nil {
		return err
	}
	switch args[0] {
	case "add":
		if len(args) != 2 {
			return fmt.Errorf("usage: blacklist add <exe>")
		}
		gs.AddToBlacklist(args[1])
		return config.Save(path, gs)
	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("usage: blacklist remove <exe>")
		}
		delete(gs.Blacklist, strings.ToLower(args[1]))
		return config.Save(path, gs)
	case "show":
		for exe := range gs.Blacklist {
			fmt.Println(exe)
		}
		return nil
	default:
		return fmt.Errorf("unknown blacklist subcommand %q", args[0])
	}
}

func perAppCmd(path string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("perapp requires a subcommand (set/clear)")
	}
	gs, err := config.Load(path)
	if err != nil {
		return err
	}
	switch args[0] {
	case "set":
		if len(args) != 4 {
			return fmt.Errorf("usage: perapp set <exe> <field> <value>")
		}
		if err := setOverrideField(gs, args[1], args[2], args[3]); err != nil {
			return err
		}
		return config.Save(path, gs)
	case "clear":
		if len(args) != 2 {
			return fmt.Errorf("usage: perapp clear <exe>")
		}
		delete(gs.PerApp, strings.ToLower(args[1]))
		return config.Save(path, gs)
	default:
		return fmt.Errorf("unknown perapp subcommand %q", args[0])
	}
}

func setOverrideField(gs *settings.GlobalSettings, exe, field, value string) error {
	o := gs.PerApp[strings.ToLower(exe)]
	switch field {
	case "step_size":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("step_size: %w", err)
		}
		o.StepSize = &v
	case "animation_time":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("animation_time: %w", err)
		}
		o.AnimationTimeMS = &v
	case "acceleration_delta":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("acceleration_delta: %w", err)
		}
		o.AccelerationDelta = &v
	case "acceleration_max":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("acceleration_max: %w", err)
		}
		o.AccelerationMax = &v
	case "tail_head_ratio":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("tail_head_ratio: %w", err)
		}
		o.TailHeadRatio = &v
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	gs.SetOverride(exe, o)
	return nil
}

func showCmd(path string) error {
	gs, err := config.Load(path)
	if err != nil {
		return err
	}
	d := gs.Defaults
	fmt.Printf("step_size=%d animation_time=%d acceleration_delta=%d acceleration_max=%g tail_head_ratio=%g\n",
		d.StepSize, d.AnimationTimeMS, d.AccelerationDelta, d.AccelerationMax, d.TailHeadRatio)
	fmt.Printf("animation_easing=%t shift_horizontal=%t horizontal_smoothness=%t enabled=%t\n",
		gs.AnimationEasing, gs.ShiftHorizontal, gs.HorizontalSmoothness, gs.Enabled)
	return nil
}
