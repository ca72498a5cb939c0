package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"git.home.luguber.info/inful/pagebuilder/internal/sink"
)

// RoutesCmd lists every route of the site.
type RoutesCmd struct {
	JSON   bool `help:"Print the route manifest as JSON"`
	Drafts bool `name:"drafts" help:"Include draft pages"`
}

func (r *RoutesCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if r.Drafts {
		cfg.Docs.IncludeDrafts = true
	}
	res, err := runPipeline(context.Background(), cfg, nil)
	if err != nil {
		return err
	}

	m := sink.NewManifest(res.Report.BuildID, res.Registry, res.Report.End)
	if r.JSON {
		enc := json.NewEncoder(g.out())
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	}
	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PERMALINK\tVERSION\tSOURCE")
	for _, route := range m.Routes {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", route.Permalink, route.Version, route.Source)
	}
	return tw.Flush()
}
