// Package cmdrunner runs external programs with a deadline and captures
// stdout/stderr/exit code, per spec.md §4.1. It is the subprocess
// boundary C8 (install/uninstall) goes through. Implementation is
// grounded on the teacher's runCMDWithTimeout /
// runCMDWithTimeoutWindows (pkg/installer/installer.go). With ViaShell
// set the child runs under cmd.exe on Windows (/bin/sh -c elsewhere);
// otherwise it is invoked directly. On Windows the console window is
// hidden and the child gets its own process group.
package cmdrunner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/winpacman/core/internal/logging"
)

// Standard timeouts, overridable per call (spec.md §4.1).
const (
	TimeoutList      = 60 * time.Second
	TimeoutInstall   = 300 * time.Second
	TimeoutUninstall = 180 * time.Second
)

// Result is the structured outcome of a subprocess invocation.
type Result struct {
	Code   int
	Stdout string
	Stderr string
}

// Kind discriminates the three cmdrunner-specific error classes spec.md
// §4.1 names.
type Kind int

const (
	KindNotFound Kind = iota
	KindTimeout
	KindSpawn
)

// Error carries one of cmdrunner's three error kinds.
type Error struct {
	Kind    Kind
	Program string
	Cause   error
	Partial Result
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("%s: not found on PATH", e.Program)
	case KindTimeout:
		return fmt.Sprintf("%s: timed out", e.Program)
	default:
		return fmt.Sprintf("%s: spawn error: %v", e.Program, e.Cause)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Options control one invocation.
type Options struct {
	// Timeout overrides the caller-supplied default when non-zero.
	Timeout time.Duration
	// ViaShell routes the child through the platform shell, required
	// for .cmd/.bat wrappers such as npm.cmd on Windows.
	ViaShell bool
	// Dir sets the working directory for the child process.
	Dir string
	// OnOutputLine, if set, is called for each line of interleaved
	// stdout/stderr as it is produced, supporting C8's streamed
	// progress events. It never blocks the child for long.
	OnOutputLine func(line string)
}

// Run executes program with args under a deadline, returning captured
// output and exit code. On Windows, when opts.ViaShell is set (the
// .cmd/.bat wrapper quirk, e.g. npm.cmd), the child is spawned through
// the platform shell; otherwise it is invoked directly with each
// argument as a separate argv element, never shell-concatenated.
func Run(ctx context.Context, program string, args []string, opts Options) (Result, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = TimeoutList
	}
	if _, err := exec.LookPath(program); err != nil && !opts.ViaShell {
		return Result{}, &Error{Kind: KindNotFound, Program: program, Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	name, fullArgs := buildInvocation(program, args, opts.ViaShell)

	log := logging.Component("cmdrunner")
	log.Debug("running command", "program", program, "args", strings.Join(args, " "), "via_shell", opts.ViaShell)

	cmd := exec.CommandContext(ctx, name, fullArgs...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	configurePlatform(cmd)

	var stdout, stderr bytes.Buffer
	if opts.OnOutputLine != nil {
		cmd.Stdout = newLineWriter(&stdout, opts.OnOutputLine)
		cmd.Stderr = newLineWriter(&stderr, opts.OnOutputLine)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			log.Error("command timed out", "program", program, "timeout", opts.Timeout)
			return res, &Error{Kind: KindTimeout, Program: program, Cause: ctx.Err(), Partial: res}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.Code = exitErr.ExitCode()
			log.Debug("command exited non-zero", "program", program, "code", res.Code)
			return res, nil
		}
		return res, &Error{Kind: KindSpawn, Program: program, Cause: err}
	}

	return res, nil
}

// buildInvocation decides the actual argv0/args pair, wrapping in the
// platform shell when requested.
func buildInvocation(program string, args []string, viaShell bool) (string, []string) {
	if !viaShell {
		return program, args
	}
	if runtime.GOOS == "windows" {
		cmdline := append([]string{"/d", "/s", "/c", program}, args...)
		return "cmd.exe", cmdline
	}
	joined := append([]string{program}, args...)
	return "/bin/sh", []string{"-c", strings.Join(joined, " ")}
}
