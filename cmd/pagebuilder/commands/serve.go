package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/pagebuilder/internal/config"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/pipeline"
	"git.home.luguber.info/inful/pagebuilder/internal/server"
	"git.home.luguber.info/inful/pagebuilder/internal/versioning"
	"git.home.luguber.info/inful/pagebuilder/internal/watch"
)

// ServeCmd serves the site from memory and rebuilds when content changes.
type ServeCmd struct {
	Addr    string `help:"Listen address (overrides serve.addr)"`
	Drafts  bool   `name:"drafts" default:"true" negatable:"" help:"Include draft pages"`
	NoWatch bool   `name:"no-watch" help:"Build once and serve without watching for changes"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Serve.Addr = s.Addr
	}
	cfg.Docs.IncludeDrafts = s.Drafts

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	recorder := newRecorder(cfg)
	opts := server.Options{Addr: cfg.Serve.Addr}
	if recorder != nil && cfg.Monitoring.Metrics.Enabled {
		opts.Metrics = recorder.Handler()
		opts.MetricsPath = cfg.Monitoring.Metrics.Path
	}
	srv := server.New(opts)

	rebuild := func(ctx context.Context, reason string) {
		res, err := runPipeline(ctx, cfg, recorder)
		srv.Publish(res, err)
		if res != nil {
			slog.Info("Build published", slog.String("reason", reason), slog.String("summary", res.Report.Summary()))
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("Build failed; serving previous pages", logfields.Error(err))
		}
	}
	rebuild(ctx, "initial")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })
	if !s.NoWatch {
		w, err := watch.New(watchOptions(cfg), rebuild)
		if err != nil {
			return err
		}
		g.Go(func() error { return w.Run(gctx) })
	}
	return g.Wait()
}

// watchOptions watches every version's content directory, its sidebar file
// and versions.json.
func watchOptions(cfg *config.Config) watch.Options {
	opts := watch.Options{
		Debounce: cfg.Serve.DebounceDuration(),
		Refresh:  cfg.Serve.RefreshDuration(),
		Files:    []string{filepath.Join(cfg.Site.Dir, versioning.VersionsFile)},
	}
	site, err := pipeline.LoadSite(cfg)
	if err != nil {
		slog.Warn("Watching the site directory only", logfields.Error(err))
		opts.Dirs = []string{cfg.Site.Dir}
		return opts
	}
	for _, v := range site.Versions.All() {
		dir := filepath.Join(cfg.Site.Dir, filepath.FromSlash(v.ContentDir))
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			opts.Dirs = append(opts.Dirs, dir)
		}
		if v.SidebarPath != "" {
			opts.Files = append(opts.Files, filepath.Join(cfg.Site.Dir, filepath.FromSlash(v.SidebarPath)))
		}
	}
	return opts
}
