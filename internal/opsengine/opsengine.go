// Package opsengine translates install/uninstall requests into the
// right package-manager CLI invocation, runs them through cmdrunner,
// and records the outcome (spec.md §4.7, C8). The engine never prompts;
// confirmation is the caller's responsibility.
package opsengine

import (
	"context"
	"sync"
	"time"

	"github.com/winpacman/core/internal/cmdrunner"
	"github.com/winpacman/core/internal/errs"
	"github.com/winpacman/core/internal/history"
	"github.com/winpacman/core/internal/logging"
	"github.com/winpacman/core/internal/model"
)

// Phase is a streamed progress stage, per spec.md §4.7.
type Phase string

const (
	PhaseStarting Phase = "starting"
	PhaseRunning  Phase = "running"
	PhaseFinished Phase = "finished"
)

// Progress is one event emitted while an operation runs.
type Progress struct {
	Phase Phase
	Line  string
}

// Result is the terminal outcome of an install/uninstall call.
type Result struct {
	Success  bool
	Message  string
	Stdout   string
	Stderr   string
	ExitCode int
}

// Rescanner lets the engine trigger a registry-inventory rescan after a
// successful operation, per spec.md §4.7 step 6, without opsengine
// depending on the orchestrator package directly.
type Rescanner interface {
	RefreshInstalled(ctx context.Context) error
}

// Engine drives install/uninstall for every manager.
type Engine struct {
	history   *history.Store
	rescanner Rescanner

	// verboseOutput mirrors config.Settings.VerboseOutput: whether
	// per-line subprocess output is surfaced as PhaseRunning progress.
	// Stdout/stderr are always captured into Result regardless.
	verboseOutput bool

	// locks serializes operations per (manager, package_id); different
	// packages proceed in parallel, per spec.md §5 Ordering.
	locks sync.Map // key: manager+"/"+packageID -> *sync.Mutex
}

func New(h *history.Store, r Rescanner) *Engine {
	return &Engine{history: h, rescanner: r}
}

// SetVerboseOutput controls whether install/uninstall captures are
// surfaced line-by-line as progress, per spec.md §4.8's verbose_output
// setting. Off by default: only start/finish progress is emitted.
func (e *Engine) SetVerboseOutput(v bool) { e.verboseOutput = v }

func (e *Engine) lockFor(manager model.Manager, packageID string) *sync.Mutex {
	key := string(manager) + "/" + packageID
	actual, _ := e.locks.LoadOrStore(key, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// Install runs the manager's install command for packageID, optionally
// pinned to version.
func (e *Engine) Install(ctx context.Context, packageID string, manager model.Manager, version string, onProgress func(Progress)) (Result, error) {
	return e.run(ctx, model.OpInstall, packageID, manager, version, onProgress)
}

// Uninstall runs the manager's uninstall command for packageID. A
// request with manager == unknown is refused outright, without
// spawning any process, per spec.md §4.7's confirmation policy.
func (e *Engine) Uninstall(ctx context.Context, packageID string, manager model.Manager, onProgress func(Progress)) (Result, error) {
	if manager == model.ManagerUnknown {
		return Result{}, errs.Unattributed(packageID)
	}
	return e.run(ctx, model.OpUninstall, packageID, manager, "", onProgress)
}

func (e *Engine) run(ctx context.Context, op model.OperationKind, packageID string, manager model.Manager, version string, onProgress func(Progress)) (Result, error) {
	lock := e.lockFor(manager, packageID)
	lock.Lock()
	defer lock.Unlock()

	log := logging.Component("opsengine")
	program, args, viaShell, err := commandTemplate(op, manager, packageID, version)
	if err != nil {
		return Result{}, err
	}

	emit(onProgress, Progress{Phase: PhaseStarting})

	timeout := cmdrunner.TimeoutInstall
	if op == model.OpUninstall {
		timeout = cmdrunner.TimeoutUninstall
	}

	res, runErr := cmdrunner.Run(ctx, program, args, cmdrunner.Options{
		Timeout:  timeout,
		ViaShell: viaShell,
		OnOutputLine: func(line string) {
			if e.verboseOutput {
				emit(onProgress, Progress{Phase: PhaseRunning, Line: line})
			}
		},
	})

	emit(onProgress, Progress{Phase: PhaseFinished})

	result, opErr := interpret(res, runErr)

	e.history.Append(model.HistoryEntry{
		Op:        op,
		PackageID: packageID,
		Manager:   manager,
		Success:   result.Success,
		Message:   result.Message,
		Timestamp: time.Now(),
	})

	if result.Success && e.rescanner != nil {
		if rescanErr := e.rescanner.RefreshInstalled(ctx); rescanErr != nil {
			log.Warn("post-operation rescan failed", "package_id", packageID, "error", rescanErr)
		}
	}

	return result, opErr
}

// commandTemplate selects the argv for a manager/op pair, per spec.md
// §4.7's fixed list. Arguments are kept as separate argv elements;
// npm is the sole entry routed through the platform shell (the .cmd
// wrapper quirk on Windows).
func commandTemplate(op model.OperationKind, manager model.Manager, packageID, version string) (program string, args []string, viaShell bool, err error) {
	switch manager {
	case model.ManagerWinget:
		if op == model.OpInstall {
			args = []string{"install", "--id", packageID, "--accept-source-agreements", "--accept-package-agreements"}
			if version != "" {
				args = append(args, "--version", version)
			}
			return "winget", args, false, nil
		}
		return "winget", []string{"uninstall", "--id", packageID}, false, nil

	case model.ManagerChocolatey:
		verb := "install"
		if op == model.OpUninstall {
			verb = "uninstall"
		}
		return "choco", []string{verb, packageID, "-y"}, false, nil

	case model.ManagerScoop:
		verb := "install"
		if op == model.OpUninstall {
			verb = "uninstall"
		}
		return "scoop", []string{verb, packageID}, false, nil

	case model.ManagerNPM:
		verb := "install"
		if op == model.OpUninstall {
			verb = "uninstall"
		}
		return "npm", []string{verb, "-g", packageID}, true, nil

	case model.ManagerCargo:
		verb := "install"
		if op == model.OpUninstall {
			verb = "uninstall"
		}
		return "cargo", []string{verb, packageID}, false, nil

	default:
		return "", nil, false, errs.Unattributed(packageID)
	}
}

// interpret turns a cmdrunner result into an OperationResult. Message
// derivation (stderr, then stdout, then a generic fallback) is shared
// with errs.OperationFailed rather than duplicated here.
func interpret(res cmdrunner.Result, runErr error) (Result, error) {
	if runErr != nil {
		return Result{Success: false, Message: runErr.Error(), Stdout: res.Stdout, Stderr: res.Stderr, ExitCode: res.Code},
			errs.Wrap(errs.KindOperationFailed, "operation failed to run", runErr)
	}

	if res.Code != 0 {
		opErr := errs.OperationFailed(res.Code, res.Stdout, res.Stderr)
		return Result{Success: false, Message: opErr.Message, Stdout: res.Stdout, Stderr: res.Stderr, ExitCode: res.Code}, opErr
	}

	return Result{Success: true, Message: "", Stdout: res.Stdout, Stderr: res.Stderr, ExitCode: 0}, nil
}

func emit(onProgress func(Progress), p Progress) {
	if onProgress != nil {
		onProgress(p)
	}
}
