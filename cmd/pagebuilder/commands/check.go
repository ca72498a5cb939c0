package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/pagebuilder/internal/config"
)

// CheckCmd builds the site in memory and reports problems without writing output.
type CheckCmd struct {
	Drafts bool `name:"drafts" help:"Include draft pages"`
	Strict bool `help:"Treat broken links as errors"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if c.Drafts {
		cfg.Docs.IncludeDrafts = true
	}
	if c.Strict {
		cfg.Build.OnBrokenLinks = config.LinkThrow
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	res, err := runPipeline(ctx, cfg, nil)
	if res == nil {
		return err
	}
	out := g.out()
	for _, f := range res.Report.Failures {
		_, _ = fmt.Fprintf(out, "FAIL %s (%s): %v\n", f.Source, f.Stage, f.Err)
	}
	for _, l := range res.Report.BrokenLinks {
		_, _ = fmt.Fprintf(out, "BROKEN %s\n", l)
	}
	_, _ = fmt.Fprintln(out, res.Report.Summary())
	return err
}
