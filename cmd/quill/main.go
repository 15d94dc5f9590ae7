package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/pradyumna2905/quill/internal/config"
	"github.com/pradyumna2905/quill/internal/daemon"
	"github.com/pradyumna2905/quill/internal/errors"
	"github.com/pradyumna2905/quill/internal/gitsource"
	"github.com/pradyumna2905/quill/internal/history"
	"github.com/pradyumna2905/quill/internal/metrics"
	"github.com/pradyumna2905/quill/internal/site"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"quill.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Source string `short:"s" help:"Content directory (overrides configuration)"`
		Output string `short:"o" help:"Output directory (overrides configuration)"`
	} `cmd:"" help:"Build the site once and exit"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Fetch struct{} `cmd:"" help:"Fetch or update content from the configured git source"`

	Daemon struct{} `cmd:"" help:"Run as a long-lived service: watch, rebuild, serve status"`

	History struct {
		Limit int `short:"n" help:"Number of builds to show" default:"10"`
	} `cmd:"" help:"Show recent build history"`
}

func main() {
	kctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	adapter := errors.NewCLIErrorAdapter(CLI.Verbose, slog.Default())

	var err error
	switch kctx.Command() {
	case "build":
		err = runBuild()
	case "init":
		err = config.Init(CLI.Config, CLI.Init.Force)
	case "fetch":
		err = runFetch()
	case "daemon":
		err = runDaemon()
	case "history":
		err = runHistory()
	}
	adapter.HandleError(err)
}

func runBuild() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if CLI.Build.Source != "" {
		cfg.Source.Directory = CLI.Build.Source
	}
	if CLI.Build.Output != "" {
		cfg.Output.Directory = CLI.Build.Output
	}

	builder, err := site.NewBuilder(cfg, metrics.NoopRecorder{})
	if err != nil {
		return err
	}

	report, err := builder.Build(context.Background(), cfg.Source.Directory, cfg.Output.Directory)
	for _, w := range report.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", w.DocID, w.Message)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %d documents to %s (%d warnings)\n",
		report.DocumentsWritten, cfg.Output.Directory, len(report.Warnings))
	return nil
}

func runFetch() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if cfg.Source.Git == nil {
		return errors.ConfigInvalid("no git source configured; set source.git.url in "+CLI.Config, nil)
	}
	return gitsource.Fetch(context.Background(), cfg.Source.Git, cfg.Source.Directory)
}

func runDaemon() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	builder, err := site.NewBuilder(cfg, recorder)
	if err != nil {
		return err
	}

	var hist *history.Store
	if cfg.Daemon.HistoryPath != "" {
		hist, err = history.Open(cfg.Daemon.HistoryPath)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := hist.Close(); cerr != nil {
				slog.Warn("Failed to close history store", "error", cerr)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return daemon.New(cfg, builder, hist, registry).Run(ctx)
}

func runHistory() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if cfg.Daemon.HistoryPath == "" {
		return errors.ConfigInvalid("no history database configured; set daemon.history_path in "+CLI.Config, nil)
	}

	hist, err := history.Open(cfg.Daemon.HistoryPath)
	if err != nil {
		return err
	}
	defer hist.Close()

	entries, err := hist.Recent(context.Background(), CLI.History.Limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No builds recorded yet.")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  %-8s  build=%s  written=%d  warnings=%d\n",
			e.Recorded.Format("2006-01-02 15:04:05"),
			e.Outcome,
			e.BuildID,
			e.Report.DocumentsWritten,
			len(e.Report.Warnings))
	}
	return nil
}
