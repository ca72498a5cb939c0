package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	ferrors "git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
)

// ShowCmd renders the source of one page in the terminal.
type ShowCmd struct {
	Permalink string `arg:"" help:"Permalink of the page, e.g. /docs/intro"`
	Raw       bool   `help:"Print the markdown without terminal styling"`
	HTML      bool   `name:"html" help:"Print the rendered HTML instead of the source"`
	Width     int    `default:"80" help:"Word wrap width"`
}

func (s *ShowCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	cfg.Docs.IncludeDrafts = true
	res, err := runPipeline(context.Background(), cfg, nil)
	if err != nil {
		return err
	}
	p, ok := res.Registry.Lookup(s.Permalink)
	if !ok {
		return ferrors.NewError(ferrors.CategoryNotFound, "no page at permalink").
			WithContext("permalink", s.Permalink).
			UserAction().
			Build()
	}

	out := g.out()
	switch {
	case s.HTML:
		_, err = out.Write(p.HTML())
		return err
	case s.Raw:
		_, err = out.Write(p.Source())
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(s.Width),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	md := string(p.Source())
	if !strings.HasPrefix(strings.TrimSpace(md), "# ") {
		md = "# " + p.Metadata.Title + "\n\n" + md
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}
