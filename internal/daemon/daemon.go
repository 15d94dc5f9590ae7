// Package daemon runs quill as a long-lived rebuild service: it rebuilds the
// site when the source tree changes, on a periodic schedule, and exposes a
// small status and metrics endpoint.
package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/pradyumna2905/quill/internal/config"
	"github.com/pradyumna2905/quill/internal/errors"
	"github.com/pradyumna2905/quill/internal/history"
	"github.com/pradyumna2905/quill/internal/logfields"
	"github.com/pradyumna2905/quill/internal/site"
)

// Daemon owns the rebuild loop and its triggers.
type Daemon struct {
	cfg      *config.Config
	builder  *site.Builder
	history  *history.Store
	registry *prom.Registry

	trigger chan string // rebuild reason

	mu   sync.RWMutex
	last *site.BuildReport
}

// New creates a daemon. The history store may be nil (no persistence).
func New(cfg *config.Config, builder *site.Builder, hist *history.Store, registry *prom.Registry) *Daemon {
	return &Daemon{
		cfg:      cfg,
		builder:  builder,
		history:  hist,
		registry: registry,
		trigger:  make(chan string, 1),
	}
}

// LastReport returns the most recent build report, or nil before the first
// build completes.
func (d *Daemon) LastReport() *site.BuildReport {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.last
}

// Run blocks until ctx is canceled. A failed build is logged and recorded but
// does not stop the daemon; the previous output stays live.
func (d *Daemon) Run(ctx context.Context) error {
	watcher, err := newSourceWatcher(d.cfg.Source.Directory, d.cfg.Daemon.Debounce.Std(), d.trigger)
	if err != nil {
		return errors.DaemonError("source watcher setup failed", err)
	}
	defer watcher.Close()
	go watcher.Watch(ctx)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return errors.DaemonError("scheduler setup failed", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(d.cfg.Daemon.RebuildInterval.Std()),
		gocron.NewTask(func() { d.requestBuild("schedule") }),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		return errors.DaemonError("schedule setup failed", err)
	}
	scheduler.Start()
	defer func() { _ = scheduler.Shutdown() }()

	server := newStatusServer(d.cfg.Daemon.Listen, d, d.registry)
	go server.Serve(ctx)

	slog.Info("Daemon started",
		slog.String("listen", d.cfg.Daemon.Listen),
		slog.Duration("rebuild_interval", d.cfg.Daemon.RebuildInterval.Std()))

	// Initial build so the daemon never serves stale status.
	d.runBuild(ctx, "startup")

	for {
		select {
		case <-ctx.Done():
			slog.Info("Daemon stopping")
			return nil
		case reason := <-d.trigger:
			d.runBuild(ctx, reason)
		}
	}
}

// requestBuild coalesces triggers; a pending rebuild absorbs new requests.
func (d *Daemon) requestBuild(reason string) {
	select {
	case d.trigger <- reason:
	default:
	}
}

func (d *Daemon) runBuild(ctx context.Context, reason string) {
	start := time.Now()
	report, err := d.builder.Build(ctx, d.cfg.Source.Directory, d.cfg.Output.Directory)
	if err != nil {
		slog.Error("Build failed",
			slog.String("reason", reason),
			logfields.BuildID(report.BuildID),
			logfields.Error(err))
	} else {
		slog.Info("Build completed",
			slog.String("reason", reason),
			logfields.BuildID(report.BuildID),
			logfields.Count(report.DocumentsWritten),
			logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	}

	d.mu.Lock()
	d.last = report
	d.mu.Unlock()

	if d.history != nil {
		if herr := d.history.Append(ctx, report); herr != nil {
			slog.Warn("Failed to record build history", logfields.Error(herr))
		}
	}
}
