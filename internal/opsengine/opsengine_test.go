package opsengine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/winpacman/core/internal/history"
	"github.com/winpacman/core/internal/model"
)

type fakeRescanner struct{ calls int }

func (f *fakeRescanner) RefreshInstalled(ctx context.Context) error {
	f.calls++
	return nil
}

func newTestEngine(t *testing.T) (*Engine, *fakeRescanner) {
	h := history.New(filepath.Join(t.TempDir(), "history.json"))
	rescanner := &fakeRescanner{}
	return New(h, rescanner), rescanner
}

func TestUninstallUnknownManagerIsRefusedWithoutSpawning(t *testing.T) {
	e, rescanner := newTestEngine(t)
	_, err := e.Uninstall(context.Background(), "Charmbracelet.neo-cowsay", model.ManagerUnknown, nil)
	require.Error(t, err)
	require.Equal(t, 0, rescanner.calls)
}

func TestCommandTemplateWingetInstallWithVersion(t *testing.T) {
	program, args, viaShell, err := commandTemplate(model.OpInstall, model.ManagerWinget, "Git.Git", "2.44.0")
	require.NoError(t, err)
	require.Equal(t, "winget", program)
	require.False(t, viaShell)
	require.Equal(t, []string{"install", "--id", "Git.Git", "--accept-source-agreements", "--accept-package-agreements", "--version", "2.44.0"}, args)
}

func TestCommandTemplateWingetUninstall(t *testing.T) {
	program, args, _, err := commandTemplate(model.OpUninstall, model.ManagerWinget, "Git.Git", "")
	require.NoError(t, err)
	require.Equal(t, "winget", program)
	require.Equal(t, []string{"uninstall", "--id", "Git.Git"}, args)
}

func TestCommandTemplateChocolatey(t *testing.T) {
	program, args, _, err := commandTemplate(model.OpInstall, model.ManagerChocolatey, "vlc", "")
	require.NoError(t, err)
	require.Equal(t, "choco", program)
	require.Equal(t, []string{"install", "vlc", "-y"}, args)
}

func TestCommandTemplateScoop(t *testing.T) {
	program, args, _, err := commandTemplate(model.OpUninstall, model.ManagerScoop, "vim", "")
	require.NoError(t, err)
	require.Equal(t, "scoop", program)
	require.Equal(t, []string{"uninstall", "vim"}, args)
}

func TestCommandTemplateNPMRoutesViaShell(t *testing.T) {
	program, args, viaShell, err := commandTemplate(model.OpInstall, model.ManagerNPM, "left-pad", "")
	require.NoError(t, err)
	require.Equal(t, "npm", program)
	require.True(t, viaShell)
	require.Equal(t, []string{"install", "-g", "left-pad"}, args)
}

func TestCommandTemplateCargo(t *testing.T) {
	program, args, viaShell, err := commandTemplate(model.OpUninstall, model.ManagerCargo, "ripgrep", "")
	require.NoError(t, err)
	require.Equal(t, "cargo", program)
	require.False(t, viaShell)
	require.Equal(t, []string{"uninstall", "ripgrep"}, args)
}

func TestCommandTemplateUnknownManagerErrors(t *testing.T) {
	_, _, _, err := commandTemplate(model.OpInstall, model.ManagerUnknown, "anything", "")
	require.Error(t, err)
}

func TestLockForReturnsSameMutexForSamePackage(t *testing.T) {
	e, _ := newTestEngine(t)
	a := e.lockFor(model.ManagerWinget, "Git.Git")
	b := e.lockFor(model.ManagerWinget, "Git.Git")
	require.Same(t, a, b)

	c := e.lockFor(model.ManagerWinget, "Other.Package")
	require.NotSame(t, a, c)
}
