// SPDX-License-Identifier: Unlicense OR MIT

//go:build !windows

package engine

// unsupportedDispatcher lets the engine, and anything built on top of
// it, compile and be exercised by tests on every platform. Its Install
// always fails: the system-wide low-level mouse hook this package
// drives is a Windows-only OS facility.
type unsupportedDispatcher struct{}

// NewDispatcher returns a dispatcher whose Install always reports
// ErrUnsupported. Non-Windows builds of the daemon can still load
// config, resolve settings, and run the animators/accelerator under
// test; they simply cannot install the OS hook.
func NewDispatcher() dispatcher {
	return &unsupportedDispatcher{}
}

func (unsupportedDispatcher) Install(onTick func(tick WheelTick) bool) error {
	return ErrUnsupported
}

func (unsupportedDispatcher) Uninstall() error { return nil }

// EmitVertical and EmitHorizontal are the engine's emit callbacks on
// platforms with no input-injection surface wired up; they are never
// reached because Install never succeeds, but the façade's
// construction signature must be satisfiable on every platform.
func EmitVertical(delta int)   {}
func EmitHorizontal(delta int) {}
