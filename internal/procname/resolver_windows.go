// SPDX-License-Identifier: Unlicense OR MIT

//go:build windows

package procname

import (
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                    = windows.NewLazySystemDLL("user32.dll")
	_GetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	_GetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
)

const processQueryLimitedInformation = 0x1000

// Resolver resolves the foreground window to an executable name,
// caching the pid->exe mapping across calls.
type Resolver struct {
	cache Cache
}

// NewResolver returns a ready-to-use Resolver.
func NewResolver() *Resolver { return &Resolver{} }

// Foreground returns the lower-cased executable base name (e.g.
// "chrome.exe") owning the current foreground window, or the empty
// string if the window or its owning process cannot be inspected.
// Failures never propagate: the hook treats them as "unknown app"
// rather than failing the scroll event.
func (r *Resolver) Foreground() string {
	hwnd, _, _ := _GetForegroundWindow.Call()
	if hwnd == 0 {
		return ""
	}

	var pid uint32
	_, _, _ = _GetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	return r.ByPID(pid)
}

// ByPID returns the lower-cased executable base name for pid,
// consulting the cache first. Failed lookups are cached as the empty
// string, so a repeatedly unresolvable pid costs one process probe,
// not one per wheel event.
func (r *Resolver) ByPID(pid uint32) string {
	if pid == 0 {
		return ""
	}
	if exe, ok := r.cache.Get(pid); ok {
		return exe
	}
	exe, err := exeNameForPID(pid)
	if err != nil {
		exe = ""
	}
	r.cache.Put(pid, exe)
	return exe
}

func exeNameForPID(pid uint32) (string, error) {
	h, err := windows.OpenProcess(processQueryLimitedInformation, false, pid)
	if err != nil {
		return "", fmt.Errorf("procname: OpenProcess(%d): %w", pid, err)
	}
	defer windows.CloseHandle(h)

	var buf [windows.MAX_PATH]uint16
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return "", fmt.Errorf("procname: QueryFullProcessImageName(%d): %w", pid, err)
	}
	full := windows.UTF16ToString(buf[:size])
	return strings.ToLower(baseName(full)), nil
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '\\' || path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
