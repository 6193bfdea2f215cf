// cmd/winpacman/main.go is a command-line demonstration of the core
// façade: search, list, refresh, install, uninstall, and freshness,
// exercised end to end without a GUI.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"

	"github.com/winpacman/core/internal/cache"
	"github.com/winpacman/core/internal/config"
	"github.com/winpacman/core/internal/facade"
	"github.com/winpacman/core/internal/history"
	"github.com/winpacman/core/internal/httpclient"
	"github.com/winpacman/core/internal/logging"
	"github.com/winpacman/core/internal/model"
	"github.com/winpacman/core/internal/orchestrator"
	"github.com/winpacman/core/internal/providers/cargo"
	"github.com/winpacman/core/internal/providers/chocolatey"
	"github.com/winpacman/core/internal/providers/npm"
	"github.com/winpacman/core/internal/providers/scoop"
	"github.com/winpacman/core/internal/providers/winget"
	"github.com/winpacman/core/internal/resolver"
	"github.com/winpacman/core/internal/singleinstance"
)

func main() {
	query := pflag.StringP("search", "s", "", "search the cached catalog")
	list := pflag.Bool("list", false, "list the cached catalog")
	listInstalled := pflag.Bool("installed", false, "list installed packages")
	refresh := pflag.String("refresh", "", "refresh one manager (winget|chocolatey|scoop|npm|cargo), or \"all\"")
	force := pflag.Bool("force", false, "force refresh even if not stale")
	install := pflag.String("install", "", "install a package id")
	uninstall := pflag.String("uninstall", "", "uninstall a package id")
	manager := pflag.String("manager", "", "manager for install/uninstall/search filtering")
	freshness := pflag.Bool("freshness", false, "print freshness summary for every manager")
	versionFlag := pflag.StringP("pin-version", "p", "", "pin a version for --install")
	verbose := pflag.BoolP("verbose", "v", false, "verbose logging")
	pflag.Parse()

	paths := config.ResolvePaths()
	if err := logging.Init(paths.DataDir, "cli", logLevel(*verbose), true); err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Default().Close()

	lock, err := singleinstance.Acquire(paths.LockFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer lock.Release()

	settings, err := config.Load(paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
	}

	c, err := cache.Open(paths.CacheDBFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening cache: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	client := httpclient.New(5)
	wingetProvider := winget.New(paths.WinGetManifestsDir())
	chocolateyProvider := chocolatey.New(client)
	applyStaleBudget(wingetProvider, settings, model.ManagerWinget)
	applyStaleBudget(chocolateyProvider, settings, model.ManagerChocolatey)
	orch := orchestrator.New(c,
		wingetProvider,
		chocolateyProvider,
		scoop.New(paths.ScoopBucketsDir()),
		npm.New(client, settings.PopularKeywords[model.ManagerNPM]),
		cargo.New(client, settings.PopularKeywords[model.ManagerCargo]),
	)
	res := resolver.New(c, paths.WinGetInstalledDB(), paths.ChocolateyLibDir())
	h := history.New(paths.HistoryFile())
	f := facade.New(facade.Deps{
		Cache:         c,
		Orchestrator:  orch,
		Resolver:      res,
		History:       h,
		ScoopHome:     paths.ScoopHome(),
		VerboseOutput: settings.VerboseOutput || *verbose,
	})

	ctx := context.Background()

	switch {
	case *query != "":
		runSearch(ctx, f, *query, *manager)
	case *list:
		runList(ctx, f, *manager)
	case *listInstalled:
		runListInstalled(ctx, f, *manager)
	case *refresh != "":
		runRefresh(ctx, f, *refresh, *force)
	case *install != "":
		runInstall(ctx, f, *install, model.Manager(*manager), *versionFlag)
	case *uninstall != "":
		runUninstall(ctx, f, *uninstall, model.Manager(*manager))
	case *freshness:
		runFreshness(ctx, f)
	default:
		pflag.Usage()
	}
}

// staleBudgeted is implemented by providers whose freshness window is
// configurable (spec.md §4.5/§4.8); scoop/npm/cargo are always-stale by
// spec and do not implement it.
type staleBudgeted interface {
	SetStaleAfter(d time.Duration)
}

func applyStaleBudget(p staleBudgeted, settings *config.Settings, m model.Manager) {
	days, onDemandOnly := settings.MaxAge(m)
	if onDemandOnly {
		return
	}
	p.SetStaleAfter(time.Duration(days) * 24 * time.Hour)
}

func logLevel(verbose bool) logging.Level {
	if verbose {
		return logging.LevelDebug
	}
	return logging.LevelInfo
}

func managerFilter(m string) []model.Manager {
	if m == "" {
		return nil
	}
	return []model.Manager{model.Manager(m)}
}

func runSearch(ctx context.Context, f *facade.Facade, query, manager string) {
	records, err := f.Search(ctx, query, managerFilter(manager), 0).Collect()
	if err != nil {
		color.Red("search failed: %v", err)
		os.Exit(1)
	}
	renderRecords(records)
}

func runList(ctx context.Context, f *facade.Facade, manager string) {
	records, err := f.ListAvailable(ctx, managerFilter(manager)).Collect()
	if err != nil {
		color.Red("list failed: %v", err)
		os.Exit(1)
	}
	renderRecords(records)
}

func runListInstalled(ctx context.Context, f *facade.Facade, manager string) {
	records, err := f.ListInstalled(ctx, managerFilter(manager)).Collect()
	if err != nil {
		color.Red("list installed failed: %v", err)
		os.Exit(1)
	}
	renderRecords(records)
}

func runRefresh(ctx context.Context, f *facade.Facade, target string, force bool) {
	var manager model.Manager
	if target != "all" {
		manager = model.Manager(target)
	}
	stream := f.Refresh(ctx, manager, force)
	for ev := range stream.Events() {
		if ev.Progress != nil {
			fmt.Printf("[%s] %s (%d/%d) %s\n", ev.Progress.Provider, ev.Progress.Phase, ev.Progress.Current, ev.Progress.Total, ev.Progress.Message)
		}
		if ev.Err != nil {
			color.Red("refresh failed: %v", ev.Err)
			os.Exit(1)
		}
		if ev.Result != nil {
			color.Green("refresh complete")
		}
	}
}

func runInstall(ctx context.Context, f *facade.Facade, packageID string, manager model.Manager, version string) {
	stream := f.Install(ctx, packageID, manager, version)
	for ev := range stream.Events() {
		if ev.Progress != nil && ev.Progress.Line != "" {
			fmt.Println(ev.Progress.Line)
		}
		if ev.Err != nil {
			color.Red("install failed: %v", ev.Err)
			os.Exit(1)
		}
	}
	color.Green("installed %s", packageID)
}

func runUninstall(ctx context.Context, f *facade.Facade, packageID string, manager model.Manager) {
	stream := f.Uninstall(ctx, packageID, manager)
	for ev := range stream.Events() {
		if ev.Progress != nil && ev.Progress.Line != "" {
			fmt.Println(ev.Progress.Line)
		}
		if ev.Err != nil {
			color.Red("uninstall failed: %v", ev.Err)
			os.Exit(1)
		}
	}
	color.Green("uninstalled %s", packageID)
}

func runFreshness(ctx context.Context, f *facade.Facade) {
	managers := []model.Manager{model.ManagerWinget, model.ManagerChocolatey, model.ManagerScoop, model.ManagerNPM, model.ManagerCargo}
	summary, err := f.GetFreshnessSummary(ctx, managers)
	if err != nil {
		color.Red("freshness summary failed: %v", err)
		os.Exit(1)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Manager", "Last Sync", "Packages", "Status"})
	for _, m := range managers {
		fr := summary[m]
		lastSync := "never"
		if !fr.LastSyncAt.IsZero() {
			lastSync = fr.LastSyncAt.Format("2006-01-02 15:04")
		}
		table.Append([]string{string(m), lastSync, fmt.Sprintf("%d", fr.PackageCount), string(fr.Status)})
	}
	table.Render()
}

func renderRecords(records []model.Record) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Package ID", "Name", "Version", "Manager", "Installed"})
	for _, r := range records {
		installed := ""
		if r.IsInstalled {
			installed = "yes"
		}
		table.Append([]string{r.PackageID, r.Name, r.Version, string(r.Manager), installed})
	}
	table.Render()
}
