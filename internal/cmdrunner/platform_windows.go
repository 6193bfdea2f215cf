//go:build windows

package cmdrunner

import (
	"os/exec"
	"syscall"
)

// configurePlatform hides the console window and isolates the child into
// its own process group, mirroring the teacher's
// runCMDWithTimeoutWindows SysProcAttr so installers never flash a
// console or inherit a GUI parent's job object.
func configurePlatform(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
