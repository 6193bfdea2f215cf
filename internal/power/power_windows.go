//go:build windows

// Package power scopes the Windows "system required / continuous"
// execution state to the duration of a sync, restored on every exit
// path including panics (spec.md §4.5, §5). Implemented with
// golang.org/x/sys/windows, the same low-level Win32 access the teacher
// agent uses for console-mode manipulation in cmd/managedsoftwareupdate.
package power

import (
	"golang.org/x/sys/windows"
)

const (
	esContinuous     = 0x80000000
	esSystemRequired = 0x00000001
)

var (
	kernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadExecState = kernel32.NewProc("SetThreadExecutionState")
)

func setThreadExecutionState(flags uint32) {
	_, _, _ = procSetThreadExecState.Call(uintptr(flags))
}

// Guard requests continuous/system-required execution state and returns
// a release func that restores the normal (ES_CONTINUOUS-only) state.
// The caller must defer release() immediately so it still runs on panic.
func Guard() (release func()) {
	setThreadExecutionState(esContinuous | esSystemRequired)
	return func() {
		setThreadExecutionState(esContinuous)
	}
}
