package pipeline

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/pagebuilder/internal/compiler"
	"git.home.luguber.info/inful/pagebuilder/internal/components"
	"git.home.luguber.info/inful/pagebuilder/internal/config"
	"git.home.luguber.info/inful/pagebuilder/internal/editlink"
	ferrors "git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/lastupdate"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/metadata"
	"git.home.luguber.info/inful/pagebuilder/internal/page"
	"git.home.luguber.info/inful/pagebuilder/internal/sidebar"
	"git.home.luguber.info/inful/pagebuilder/internal/source"
	"git.home.luguber.info/inful/pagebuilder/internal/versioning"
)

// LoadSite resolves the configured versions and reads their sidebars.
func LoadSite(cfg *config.Config) (Site, error) {
	names := cfg.Versioning.Versions
	if len(names) == 0 {
		fromFile, err := versioning.ReadVersionsFile(cfg.Site.Dir)
		if err != nil {
			return Site{}, ferrors.WrapError(err, ferrors.CategoryConfig, "cannot read versions file").
				WithContext("path", filepath.Join(cfg.Site.Dir, versioning.VersionsFile)).Build()
		}
		names = fromFile
	}
	overrides := make(map[string]versioning.Override, len(cfg.Versioning.Overrides))
	for name, o := range cfg.Versioning.Overrides {
		overrides[name] = versioning.Override{Label: o.Label, Path: o.Path}
	}
	set, err := versioning.New(versioning.Options{
		CurrentDir:     cfg.Docs.Path,
		CurrentSidebar: cfg.Docs.SidebarPath,
		Versions:       names,
		LastVersion:    cfg.Versioning.LastVersion,
		IncludeCurrent: cfg.Versioning.IncludeCurrentVersion(),
		Overrides:      overrides,
	})
	if err != nil {
		return Site{}, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid versioning").UserAction().Build()
	}

	sidebars := make(map[string]*sidebar.Sidebars)
	for _, v := range set.All() {
		if v.SidebarPath == "" {
			continue
		}
		sb, err := sidebar.Load(filepath.Join(cfg.Site.Dir, filepath.FromSlash(v.SidebarPath)))
		if err != nil {
			return Site{}, ferrors.WrapError(err, ferrors.CategoryContent, "invalid sidebars").
				WithContext("version", v.Name).UserAction().Build()
		}
		sidebars[v.Name] = sb
	}
	return Site{Versions: set, Sidebars: sidebars}, nil
}

// ContentRoots lists the content directory of every version.
func (s Site) ContentRoots() []source.ContentRoot {
	var roots []source.ContentRoot
	for _, v := range s.Versions.All() {
		roots = append(roots, source.ContentRoot{Version: v.Name, Dir: v.ContentDir})
	}
	return roots
}

// FromConfig wires a filesystem-backed pipeline from the site configuration.
func FromConfig(cfg *config.Config, options ...Option) (*Pipeline, error) {
	site, err := LoadSite(cfg)
	if err != nil {
		return nil, err
	}

	registry, err := components.NewDefaultRegistry(cfg.Components.Enabled)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid components.enabled").UserAction().Build()
	}

	resolverOpts := []metadata.Option{
		metadata.WithEditLinks(editlink.NewResolver(editlink.Options{
			EditURL:    cfg.Docs.EditURL,
			Repository: cfg.Docs.Repository,
			Branch:     cfg.Docs.Branch,
			Forge:      editlink.ParseForgeType(cfg.Docs.Forge),
		})),
	}
	if cfg.Docs.ShowLastUpdateAuthor || cfg.Docs.ShowLastUpdateTime {
		provider, err := lastupdate.NewGitProvider(cfg.Site.Dir)
		if err != nil {
			slog.Warn("Last update information unavailable", logfields.Path(cfg.Site.Dir), logfields.Error(err))
		} else {
			resolverOpts = append(resolverOpts, metadata.WithLastUpdate(provider))
		}
	}

	resolver := metadata.NewResolver(metadata.SiteOptions{
		BaseURL:              cfg.Site.BaseURL,
		RouteBasePath:        cfg.Docs.RouteBasePath,
		TagsBasePath:         cfg.Docs.TagsBasePath,
		ShowLastUpdateAuthor: cfg.Docs.ShowLastUpdateAuthor,
		ShowLastUpdateTime:   cfg.Docs.ShowLastUpdateTime,
	}, site.Versions, resolverOpts...)

	p, err := New(Stages{
		Store:    source.NewFSStore(cfg.Site.Dir, site.ContentRoots(), nil),
		Resolver: resolver,
		Compiler: compiler.New(registry, compiler.Options{
			TOCMinLevel:    cfg.Docs.TOCMinHeadingLevel,
			TOCMaxLevel:    cfg.Docs.TOCMaxHeadingLevel,
			HighlightStyle: cfg.Components.HighlightStyle,
		}),
		Assembler: page.NewAssembler(page.Options{SiteTitle: cfg.Site.Title, Lang: cfg.Site.Lang}),
	}, site, Options{
		Concurrency:   cfg.Build.Concurrency,
		OnPageError:   cfg.Build.OnPageError,
		OnBrokenLinks: cfg.Build.OnBrokenLinks,
		IncludeDrafts: cfg.Docs.IncludeDrafts,
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("wire pipeline: %w", err)
	}
	return p, nil
}

// Site returns the versions and sidebars the pipeline builds.
func (p *Pipeline) Site() Site { return p.site }
