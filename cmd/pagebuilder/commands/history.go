package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	ferrors "git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/sink"
)

// HistoryCmd lists builds recorded in the history database.
type HistoryCmd struct {
	Limit int  `short:"n" default:"20" help:"Number of builds to show (0 for all)"`
	JSON  bool `help:"Print records as JSON"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	path := sitePath(cfg, cfg.Build.HistoryDB)
	if path == "" {
		return ferrors.ConfigError("build history is disabled").
			WithContext("field", "build.history_db").
			UserAction().
			Build()
	}
	if _, err := os.Stat(path); err != nil {
		_, _ = fmt.Fprintln(g.out(), "no builds recorded")
		return nil
	}

	store, err := sink.OpenHistory(path)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to open build history").
			WithContext("path", path).
			Build()
	}
	defer func() { _ = store.Close() }()

	records, err := store.List(context.Background(), h.Limit)
	if err != nil {
		return err
	}
	if h.JSON {
		enc := json.NewEncoder(g.out())
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tBUILD\tOUTCOME\tPAGES\tFAILED\tBROKEN\tDURATION")
	for _, r := range records {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%d\t%d\t%s\n",
			r.Start.Local().Format(time.DateTime), r.BuildID, r.Outcome,
			r.Compiled, r.Documents, r.Failed, r.BrokenLinks, r.Duration)
	}
	return tw.Flush()
}
