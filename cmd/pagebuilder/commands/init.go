package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/pagebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
)

const starterSidebar = `{
  // Sidebars map a name to an ordered list of items.
  "docs": [
    "intro",
    { "type": "autogenerated", "dirName": "guides" }
  ]
}
`

const starterIntro = `---
title: Introduction
sidebar_position: 1
---

Welcome to your documentation site.

<Callout type="tip">Edit docs/intro.md and run pagebuilder serve.</Callout>
`

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force      bool `help:"Overwrite existing configuration file"`
	NoScaffold bool `name:"no-scaffold" help:"Only write the configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	return RunInit(g, root.Config, i.Force, !i.NoScaffold)
}

// RunInit writes the example configuration and, with scaffold, a starter docs tree
// next to it. Existing content files are never overwritten.
func RunInit(g *Global, configPath string, force, scaffold bool) error {
	out := g.out()
	_, _ = fmt.Fprintf(out, "Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "initialization failed").UserAction().Build()
	}
	if !scaffold {
		return nil
	}

	dir := filepath.Dir(configPath)
	files := map[string]string{
		"sidebars.jsonc":                  starterSidebar,
		filepath.Join("docs", "intro.md"): starterIntro,
		filepath.Join("docs", "guides", "first-steps.md"): "---\ntitle: First steps\n---\n\nWrite your first guide here.\n",
	}
	for rel, content := range files {
		p := filepath.Join(dir, rel)
		if _, err := os.Stat(p); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create directory").WithContext("path", p).Build()
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write starter file").WithContext("path", p).Build()
		}
		_, _ = fmt.Fprintf(out, "Created %s\n", p)
	}
	return nil
}
