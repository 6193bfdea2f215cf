//go:build !windows

package cmdrunner

import "os/exec"

func configurePlatform(cmd *exec.Cmd) {}
