package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"git.home.luguber.info/inful/pagebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/metrics"
	"git.home.luguber.info/inful/pagebuilder/internal/notify"
	"git.home.luguber.info/inful/pagebuilder/internal/pipeline"
	"git.home.luguber.info/inful/pagebuilder/internal/retry"
	"git.home.luguber.info/inful/pagebuilder/internal/sink"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string `short:"o" help:"Output directory (overrides build.output_dir)"`
	Drafts      bool   `name:"drafts" help:"Include draft pages"`
	Concurrency int    `short:"j" help:"Pages compiled in parallel (overrides build.concurrency)"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Build.OutputDir = b.Output
	}
	if b.Drafts {
		cfg.Docs.IncludeDrafts = true
	}
	if b.Concurrency > 0 {
		cfg.Build.Concurrency = b.Concurrency
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunBuild(ctx, g, cfg)
}

// RunBuild builds the site, writes it and records the outcome.
func RunBuild(ctx context.Context, g *Global, cfg *config.Config) error {
	recorder := newRecorder(cfg)
	res, buildErr := runPipeline(ctx, cfg, recorder)
	if res == nil {
		return buildErr
	}
	report := res.Report

	if buildErr == nil {
		outDir := sitePath(cfg, cfg.Build.OutputDir)
		w := sink.NewSiteWriter(outDir, sink.SiteOptions{
			BaseURL: cfg.Site.BaseURL,
			Clean:   cfg.Build.CleanOutput(),
			CBOR:    cfg.Build.ManifestCBOR,
		})
		if err := w.Write(ctx, res.Registry, sink.NewManifest(report.BuildID, res.Registry, report.End)); err != nil {
			buildErr = ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write site").
				WithContext("output_dir", outDir).
				Build()
		} else {
			slog.Info("Site written", logfields.Path(outDir), logfields.Count(res.Registry.Len()))
		}
	}

	recordOutcome(ctx, cfg, report, recorder)
	_, _ = fmt.Fprintln(g.out(), report.Summary())
	return buildErr
}

// recordOutcome persists the report and fans it out to history, metrics
// and notifications. Failures here are logged, never returned.
func recordOutcome(ctx context.Context, cfg *config.Config, report *pipeline.BuildReport, recorder *metrics.PrometheusRecorder) {
	state := sitePath(cfg, StateDir)
	if err := report.Persist(state); err != nil {
		slog.Warn("Failed to persist build report", logfields.Path(state), logfields.Error(err))
	}

	if path := sitePath(cfg, cfg.Build.HistoryDB); path != "" {
		if err := recordHistory(ctx, path, report); err != nil {
			slog.Warn("Failed to record build history", logfields.Path(path), logfields.Error(err))
		}
	}

	if tf := cfg.Monitoring.Metrics.Textfile; tf != "" && recorder != nil {
		if err := recorder.WriteTextfile(sitePath(cfg, tf)); err != nil {
			slog.Warn("Failed to write metrics textfile", logfields.Path(tf), logfields.Error(err))
		}
	}

	if cfg.Notify.NATSURL != "" {
		n, err := notify.Connect(cfg.Notify.NATSURL, cfg.Notify.Subject, notify.WithRetry(notifyPolicy(cfg)))
		if err != nil {
			slog.Warn("Build notification skipped", logfields.Error(err))
			return
		}
		defer n.Close()
		if err := n.BuildFinished(ctx, report); err != nil {
			slog.Warn("Failed to publish build notification", logfields.Error(err))
		}
	}
}

func notifyPolicy(cfg *config.Config) retry.Policy {
	retries := 2
	if cfg.Notify.MaxRetries != nil {
		retries = *cfg.Notify.MaxRetries
	}
	return retry.NewPolicy(retry.Mode(cfg.Notify.Backoff), 200*time.Millisecond, 5*time.Second, retries)
}

func recordHistory(ctx context.Context, path string, report *pipeline.BuildReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	h, err := sink.OpenHistory(path)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()
	return h.Record(ctx, sink.NewBuildRecord(report))
}
