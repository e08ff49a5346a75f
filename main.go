package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/swissinfo-ch/skala/app"
	"github.com/swissinfo-ch/skala/config"
	"github.com/swissinfo-ch/skala/platform"
	"github.com/swissinfo-ch/skala/report"
	"github.com/swissinfo-ch/skala/store"
	"github.com/swissinfo-ch/skala/unit"
)

func main() {
	path := config.Path()
	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}
	domains, err := cfg.DomainSet()
	if err != nil {
		panic(err)
	}

	ctx := getCtx()
	info := platform.Gather(ctx)
	slog.Info("platform", "os", info.OS, "cpu", info.CPU, "memory", info.Memory, "cores", info.CoreCount)

	st, err := store.NewStore(&store.Cfg{
		Filename:      cfg.Store.File,
		BlockSize:     cfg.Store.BlockSize,
		FlushInterval: cfg.Store.FlushInterval.Duration,
		Ctx:           ctx,
	})
	if err != nil {
		panic(err)
	}

	jobs, err := buildJobs(cfg, domains, info)
	if err != nil {
		panic(err)
	}
	runner := report.NewRunner(&report.RunnerCfg{
		Filename:       cfg.Store.File,
		BlockSize:      cfg.Store.BlockSize,
		WorkerPoolSize: cfg.Workers,
		Jobs:           jobs,
	})
	go runViews(ctx, runner, cfg.MinViewInterval.Duration)

	a := app.NewApp(&app.AppCfg{
		Listen:      cfg.Listen,
		Commit:      os.Getenv("COMMIT"),
		Store:       st,
		Runner:      runner,
		Domains:     domains,
		Platform:    info,
		RateLimit:   cfg.RateLimit,
		Compression: cfg.Compression,
		ViewNames:   viewNames(cfg),
		Ctx:         ctx,
	})
	go a.Start()
	go watchConfig(ctx, path, cfg, domains, info, runner, a)

	<-ctx.Done()
	slog.Info("app shutting down")
	<-st.Done() // tail block flushed
}

// runViews loops the report runner, logging the timing occasionally and
// never running more often than minInterval.
func runViews(ctx context.Context, runner *report.Runner, minInterval time.Duration) {
	lastTimeLogged := time.Time{}
	for ctx.Err() == nil {
		tStart := time.Now()
		runner.Run()
		took := time.Since(tStart)
		if time.Since(lastTimeLogged) > time.Minute*5 {
			slog.Info("views generated",
				"took", took,
				"samples", unit.FmtCount(runner.SampleCount()),
				"fileSize", unit.FmtFileSize(runner.FileSize()))
			lastTimeLogged = time.Now()
		}
		if took < minInterval {
			select {
			case <-time.After(minInterval - took):
			case <-ctx.Done():
			}
		}
	}
}

// watchConfig applies reloaded view definitions; settings that need a
// restart are only reported.
func watchConfig(ctx context.Context, path string, cfg *config.Config, domains *unit.Set, info *platform.Info, runner *report.Runner, a *app.App) {
	updates, err := config.Watch(ctx, path)
	if err != nil {
		slog.Error("failed to watch config", "err", err)
		return
	}
	for next := range updates {
		if next.Listen != cfg.Listen || next.Store != cfg.Store || next.Workers != cfg.Workers {
			slog.Info("listen, store and worker changes need a restart")
		}
		nextDomains, err := next.DomainSet()
		if err != nil {
			slog.Error("failed to build domains", "err", err)
			continue
		}
		jobs, err := buildJobs(next, nextDomains, info)
		if err != nil {
			slog.Error("failed to build view jobs", "err", err)
			continue
		}
		runner.SetJobs(jobs)
		a.SetViews(viewNames(next))
		slog.Info("views reloaded", "count", len(jobs))
	}
}

// buildJobs turns the configured views into report jobs.
func buildJobs(cfg *config.Config, domains *unit.Set, info *platform.Info) (map[string]*report.Job, error) {
	jobs := make(map[string]*report.Job, len(cfg.Views))
	for _, v := range cfg.Views {
		filter := sampleFilter(v)
		var job report.Report
		switch v.Kind {
		case "units":
			strategy, err := unit.ParseStrategy(v.Strategy)
			if err != nil {
				return nil, fmt.Errorf("view %q: %w", v.Name, err)
			}
			job = &report.Units{
				Set:      domains,
				Strategy: strategy,
				Filter:   filter,
				Cutoff:   v.Cutoff,
				Platform: info,
			}
		case "top":
			job = &report.Top{N: v.N, Filter: filter}
		case "subset":
			job = &report.Subset{Limit: v.Limit, Filter: filter}
		default:
			return nil, fmt.Errorf("view %q: unknown kind %q", v.Name, v.Kind)
		}
		jobs[v.Name] = &report.Job{Report: job}
	}
	return jobs, nil
}

// sampleFilter combines the view's window, label and domain filters,
// nil when the view has none.
func sampleFilter(v config.ViewConfig) func(*store.Sample) bool {
	window := v.Window.Duration
	label := v.Label
	domain := v.Domain
	if window == 0 && label == "" && domain == "" {
		return nil
	}
	return func(s *store.Sample) bool {
		if window != 0 && !report.YoungerThan(s, window) {
			return false
		}
		if label != "" && s.Label != label {
			return false
		}
		if domain != "" && s.Domain != domain {
			return false
		}
		return true
	}
}

func viewNames(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Views))
	for _, v := range cfg.Views {
		names = append(names, v.Name)
	}
	return names
}

// cancelOnKillSig cancels the context on os interrupt kill signal
func cancelOnKillSig(sigs chan os.Signal, cancel context.CancelFunc) {
	switch <-sigs {
	case syscall.SIGINT:
		slog.Info("received SIGINT")
	case syscall.SIGTERM:
		slog.Info("received SIGTERM")
	}
	cancel()
}

// getCtx returns a root context that awaits a kill signal from os
func getCtx() context.Context {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(context.Background())
	go cancelOnKillSig(sigs, cancel)
	return ctx
}
