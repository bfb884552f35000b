// SPDX-License-Identifier: Unlicense OR MIT

//go:build !windows

package procname

// Resolver is a stub on non-Windows platforms: the foreground-window
// hook this package serves only exists under Windows.
type Resolver struct{}

// NewResolver returns a Resolver that never resolves anything.
func NewResolver() *Resolver { return &Resolver{} }

// Foreground reports no foreground process on this platform.
func (r *Resolver) Foreground() string { return "" }

// ByPID reports no resolution on this platform.
func (r *Resolver) ByPID(pid uint32) string { return "" }
