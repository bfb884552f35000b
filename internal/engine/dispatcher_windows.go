// SPDX-License-Identifier: Unlicense OR MIT

//go:build windows

package engine

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/limingdarcy-sys/OpenSmoothScroll/internal/procname"
)

func init() {
	shiftHeld = func() bool {
		const vkShift = 0x10
		r, _, _ := _GetAsyncKeyState.Call(vkShift)
		return r&0x8000 != 0
	}
}

// ctrlHeld reports whether Ctrl is currently down, per the high-order
// bit of GetAsyncKeyState's return value.
func ctrlHeld() bool {
	r, _, _ := _GetAsyncKeyState.Call(vkControl)
	return r&0x8000 != 0
}

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	_SetWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	_CallNextHookEx      = user32.NewProc("CallNextHookEx")
	_UnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	_GetMessage          = user32.NewProc("GetMessageW")
	_TranslateMessage    = user32.NewProc("TranslateMessage")
	_DispatchMessage     = user32.NewProc("DispatchMessageW")
	_PostThreadMessage   = user32.NewProc("PostThreadMessageW")
	_SendInput           = user32.NewProc("SendInput")
	_GetAsyncKeyState    = user32.NewProc("GetAsyncKeyState")
)

const (
	whMouseLL = 14

	wmMouseWheel  = 0x020A
	wmMouseHWheel = 0x020E
	wmQuit        = 0x0012

	mouseEventFWheel  = 0x0800
	mouseEventFHWheel = 0x01000
	inputMouse        = 0

	injectedMarker = 0x4F5353 // "OSS" in hex, stamped on our own synthetic events

	vkControl = 0x11
)

type point struct{ X, Y int32 }

type msllhookstruct struct {
	Pt          point
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msg struct {
	HWnd    windows.Handle
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

type mouseinput struct {
	Dx          int32
	Dy          int32
	MouseData   uint32
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// input mirrors the Win32 INPUT union: Type selects the active member,
// and the struct is padded to the size of its largest member
// (MOUSEINPUT, 32 bytes net of the Type field on amd64) so SendInput
// reads the right bytes regardless of which member is populated.
type input struct {
	Type uint32
	_    uint32 // padding for 64-bit alignment, mirroring os_windows.go's style
	Mi   mouseinput
}

// windowsDispatcher installs a WH_MOUSE_LL hook on a dedicated, locked
// OS thread running its own message pump, and reports decoded wheel
// ticks to the engine. Synthetic events it injects itself carry
// injectedMarker in dwExtraInfo so the hook can ignore its own output.
type windowsDispatcher struct {
	resolver *procname.Resolver

	mu       sync.Mutex
	threadID uint32
	hook     windows.Handle
	stopped  chan struct{}
	onTick   func(tick WheelTick) bool
}

// NewDispatcher returns the Windows system-hook dispatcher.
func NewDispatcher() dispatcher {
	return &windowsDispatcher{resolver: procname.NewResolver()}
}

var activeDispatcher atomic.Pointer[windowsDispatcher]

func (d *windowsDispatcher) Install(onTick func(tick WheelTick) bool) error {
	d.onTick = onTick
	ready := make(chan error, 1)
	d.stopped = make(chan struct{})

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		activeDispatcher.Store(d)
		defer activeDispatcher.CompareAndSwap(d, nil)

		cb := windows.NewCallback(lowLevelMouseProc)
		h, _, err := _SetWindowsHookEx.Call(whMouseLL, cb, 0, 0)
		if h == 0 {
			ready <- fmt.Errorf("engine: SetWindowsHookExW: %w", err)
			return
		}
		d.mu.Lock()
		d.hook = windows.Handle(h)
		d.threadID = windows.GetCurrentThreadId()
		d.mu.Unlock()
		ready <- nil

		var m msg
		for {
			r, _, _ := _GetMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
			if int32(r) <= 0 {
				break
			}
			_TranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
			_DispatchMessage.Call(uintptr(unsafe.Pointer(&m)))
		}

		_UnhookWindowsHookEx.Call(uintptr(d.hook))
		close(d.stopped)
	}()

	return <-ready
}

func (d *windowsDispatcher) Uninstall() error {
	d.mu.Lock()
	tid := d.threadID
	d.mu.Unlock()
	if tid == 0 {
		return nil
	}
	_PostThreadMessage.Call(uintptr(tid), wmQuit, 0, 0)
	select {
	case <-d.stopped:
	case <-time.After(5 * time.Second):
		return fmt.Errorf("engine: hook thread did not exit within 5s")
	}
	return nil
}

// lowLevelMouseProc runs on the hook's dedicated OS thread, per the
// WH_MOUSE_LL contract: it must return quickly and must call
// CallNextHookEx for every event it doesn't fully own.
func lowLevelMouseProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode >= 0 && (wParam == wmMouseWheel || wParam == wmMouseHWheel) {
		if handleWheel(wParam, lParam) {
			// Swallow the original event: our animator re-emits it shaped.
			return 1
		}
	}
	r, _, _ := _CallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return r
}

// handleWheel decodes one wheel message and hands it to the engine,
// reporting whether the event was consumed. A panic anywhere in the
// per-event path is converted into a pass-through; the hook must
// never raise out to the OS.
func handleWheel(wParam, lParam uintptr) (consumed bool) {
	defer func() {
		if recover() != nil {
			consumed = false
		}
	}()

	info := (*msllhookstruct)(unsafe.Pointer(lParam))
	if info.DwExtraInfo == injectedMarker {
		// Our own synthetic event re-observed; passing it through is
		// what breaks the injection loop.
		return false
	}
	if ctrlHeld() {
		// Ctrl+wheel is application zoom; never interpose on it.
		return false
	}
	d := activeDispatcher.Load()
	if d == nil || d.onTick == nil {
		return false
	}
	return d.onTick(WheelTick{
		Horizontal: wParam == wmMouseHWheel,
		RawDelta:   int32(int16(info.MouseData >> 16)),
		Foreground: d.resolver.Foreground,
		At:         time.Now(),
	})
}

// sendWheelDelta injects a synthetic wheel event for delta pixels (in
// WHEEL_DELTA units, i.e. already scaled) on the given axis, marked so
// the hook ignores it.
func sendWheelDelta(delta int, horizontal bool) {
	if delta == 0 {
		return
	}
	flags := uint32(mouseEventFWheel)
	if horizontal {
		flags = mouseEventFHWheel
	}
	in := input{
		Type: inputMouse,
		Mi: mouseinput{
			MouseData:   uint32(int32(delta)),
			DwFlags:     flags,
			DwExtraInfo: injectedMarker,
		},
	}
	_SendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
}

// EmitVertical and EmitHorizontal are the engine's emit callbacks for
// this platform.
func EmitVertical(delta int)   { sendWheelDelta(delta, false) }
func EmitHorizontal(delta int) { sendWheelDelta(delta, true) }
