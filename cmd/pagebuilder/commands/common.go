// Package commands implements the pagebuilder command line.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pagebuilder/internal/config"
	"git.home.luguber.info/inful/pagebuilder/internal/metrics"
	"git.home.luguber.info/inful/pagebuilder/internal/observability"
	"git.home.luguber.info/inful/pagebuilder/internal/pipeline"
)

// LogLevelEnv overrides the configured log level.
const LogLevelEnv = "PAGEBUILDER_LOG_LEVEL"

// StateDir holds build reports and history below the site directory.
const StateDir = ".pagebuilder"

// Global carries state shared by all commands.
type Global struct {
	// Out receives user-facing command output.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI is the command tree and its global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"pagebuilder.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build the site into the output directory"`
	Check   CheckCmd   `cmd:"" help:"Build without writing output and report problems"`
	Routes  RoutesCmd  `cmd:"" help:"List the routes of the site"`
	Show    ShowCmd    `cmd:"" help:"Print the source of the page at a permalink"`
	Serve   ServeCmd   `cmd:"" help:"Serve the site and rebuild on changes"`
	History HistoryCmd `cmd:"" help:"List recent builds"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
}

// AfterApply sets up logging once flags are parsed.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(observability.NewLogger(os.Stderr, c.logLevel(""), "text"))
	return nil
}

// logLevel resolves the level: --verbose, then the environment, then configured.
func (c *CLI) logLevel(configured config.LogLevel) slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	if env := os.Getenv(LogLevelEnv); env != "" {
		return observability.ParseLevel(env)
	}
	return observability.ParseLevel(string(configured))
}

// loadConfig reads the configuration and applies its logging settings.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	logging := cfg.Monitoring.Logging
	slog.SetDefault(observability.NewLogger(os.Stderr, c.logLevel(logging.Level), string(logging.Format)))
	return cfg, nil
}

// sitePath resolves p against the site directory unless it is absolute.
func sitePath(cfg *config.Config, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cfg.Site.Dir, p)
}

// newRecorder returns a Prometheus recorder when metrics are wanted.
func newRecorder(cfg *config.Config) *metrics.PrometheusRecorder {
	m := cfg.Monitoring.Metrics
	if !m.Enabled && m.Textfile == "" {
		return nil
	}
	return metrics.NewPrometheusRecorder(nil)
}

// runPipeline wires a pipeline from cfg and builds once.
func runPipeline(ctx context.Context, cfg *config.Config, recorder *metrics.PrometheusRecorder) (*pipeline.Result, error) {
	var opts []pipeline.Option
	if recorder != nil {
		opts = append(opts, pipeline.WithRecorder(recorder))
	}
	p, err := pipeline.FromConfig(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return p.Build(ctx)
}
