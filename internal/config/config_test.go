// SPDX-License-Identifier: Unlicense OR MIT

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/limingdarcy-sys/OpenSmoothScroll/internal/settings"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	g, err := Load(filepath.Join(t.TempDir(), "does-not-exist.ini"))
	if err != nil {
		t.Fatalf("Load(missing) error = %v", err)
	}
	want := settings.Default()
	if g.Defaults != want.Defaults {
		t.Fatalf("Load(missing) Defaults = %+v, want %+v", g.Defaults, want.Defaults)
	}
	if g.AnimationEasing != want.AnimationEasing || g.Enabled != want.Enabled {
		t.Fatalf("Load(missing) flags = %+v, want matching defaults", g)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")

	want := settings.Default()
	want.Defaults.StepSize = 150
	want.Defaults.AnimationTimeMS = 350
	want.AnimationEasing = false
	want.Enabled = true
	want.AddToBlacklist("explorer.exe")
	want.AddToBlacklist("Firefox.EXE")
	stepOverride := 200
	want.SetOverride("chrome.exe", settings.Override{StepSize: &stepOverride})

	if err := Save(path, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got.Defaults != want.Defaults {
		t.Fatalf("Defaults round-trip = %+v, want %+v", got.Defaults, want.Defaults)
	}
	if got.AnimationEasing != want.AnimationEasing || got.Enabled != want.Enabled {
		t.Fatalf("flags round-trip mismatch: got %+v", got)
	}
	if !got.Blacklisted("explorer.exe") || !got.Blacklisted("firefox.exe") {
		t.Fatal("expected both blacklist entries to survive round-trip")
	}
	gotParams := got.Resolve("chrome.exe")
	if gotParams.StepSize != 200 {
		t.Fatalf("chrome.exe override StepSize = %d, want 200", gotParams.StepSize)
	}
	if gotParams.AnimationTimeMS != want.Defaults.AnimationTimeMS {
		t.Fatalf("chrome.exe override AnimationTimeMS = %d, want fallback to global %d",
			gotParams.AnimationTimeMS, want.Defaults.AnimationTimeMS)
	}
}

// TestLoadSkipsBadValuesAndUnknownKeys: a malformed field or an
// unrecognised key never fails the load; the rest of the document is
// honored.
func TestLoadSkipsBadValuesAndUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messy.ini")
	doc := `[Global]
step_size = not-a-number
animation_time = 250
some_future_knob = whatever
blacklist = explorer.exe, , Notepad.EXE

[PerApp:chrome.exe]
step_size = 200
acceleration_max = also-not-a-number
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	g, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	def := settings.Default()
	if g.Defaults.StepSize != def.Defaults.StepSize {
		t.Fatalf("bad step_size should keep default %d, got %d", def.Defaults.StepSize, g.Defaults.StepSize)
	}
	if g.Defaults.AnimationTimeMS != 250 {
		t.Fatalf("animation_time = %d, want 250", g.Defaults.AnimationTimeMS)
	}
	if !g.Blacklisted("explorer.exe") || !g.Blacklisted("notepad.exe") {
		t.Fatal("comma-separated blacklist entries not all loaded")
	}
	p := g.Resolve("chrome.exe")
	if p.StepSize != 200 {
		t.Fatalf("chrome.exe step_size override = %d, want 200", p.StepSize)
	}
	if p.AccelerationMax != def.Defaults.AccelerationMax {
		t.Fatalf("bad acceleration_max override should fall back to %g, got %g",
			def.Defaults.AccelerationMax, p.AccelerationMax)
	}
}
