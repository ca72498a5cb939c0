package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	cerrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/editlink"
	"git.home.luguber.info/inful/pagebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/pagebuilder/internal/lastupdate"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/source"
	"git.home.luguber.info/inful/pagebuilder/internal/versioning"
)

// LastUpdateLayout formats FormattedLastUpdatedAt.
const LastUpdateLayout = "Jan 2, 2006"

// SiteOptions are the site-wide settings that shape permalinks.
type SiteOptions struct {
	// BaseURL is the path the site is served under, usually "/".
	BaseURL string
	// RouteBasePath prefixes every docs route, e.g. "docs".
	RouteBasePath string
	// TagsBasePath is appended to the version root for tag pages. Defaults to "tags".
	TagsBasePath         string
	ShowLastUpdateAuthor bool
	ShowLastUpdateTime   bool
}

// Resolver computes PageMetadata. It holds no per-build state and is safe for concurrent use
// when its last-update provider is.
type Resolver struct {
	site       SiteOptions
	versions   *versioning.Set
	edit       *editlink.Resolver
	lastUpdate lastupdate.Provider
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEditLinks enables edit URLs.
func WithEditLinks(r *editlink.Resolver) Option {
	return func(res *Resolver) { res.edit = r }
}

// WithLastUpdate sets the source of last-update information.
func WithLastUpdate(p lastupdate.Provider) Option {
	return func(res *Resolver) { res.lastUpdate = p }
}

// NewResolver creates a resolver for the given site and versions.
func NewResolver(site SiteOptions, versions *versioning.Set, opts ...Option) *Resolver {
	if site.BaseURL == "" {
		site.BaseURL = "/"
	}
	if site.TagsBasePath == "" {
		site.TagsBasePath = "tags"
	}
	r := &Resolver{site: site, versions: versions, lastUpdate: lastupdate.NoopProvider{}}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve builds the metadata of one document. Sidebar and pager fields are
// left empty; Navigate fills them once every page of the build is known.
func (r *Resolver) Resolve(ctx context.Context, doc source.Document, fm frontmatter.Frontmatter, body []byte) (*PageMetadata, error) {
	title := fm.Title()
	if title == "" {
		return nil, &cerrors.MissingFieldError{Path: doc.SitePath(), Field: frontmatter.KeyTitle}
	}
	version, err := r.versions.Get(doc.Version)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.SitePath(), err)
	}

	dir := stripDirPrefixes(doc.Dir())
	stem := StripNumberPrefix(doc.Stem())

	base := stem
	if id := fm.ID(); id != "" {
		base = id
	}
	unversionedID := base
	if dir != "" {
		unversionedID = dir + "/" + base
	}

	slug := r.slug(fm, dir, stem)

	meta := &PageMetadata{
		ID:            version.DocIDPrefix() + unversionedID,
		UnversionedID: unversionedID,
		Title:         title,
		Description:   fm.Description(),
		Source:        "@site/" + doc.SitePath(),
		SourceDirName: sourceDirName(doc.Dir()),
		Slug:          slug,
		Permalink:     r.Permalink(version, slug),
		Draft:         fm.Draft(),
		Keywords:      fm.Keywords(),
		HideTitle:     fm.HideTitle(),
		Version:       version.Name,
		VersionLabel:  version.Label,
		SidebarLabel:  fm.SidebarLabel(),
		Tags:          r.tags(version, fm.Tags()),
		Frontmatter:   fm.Fields(),
	}
	if p, ok := fm.SidebarPosition(); ok {
		meta.SidebarPosition = &p
	}
	if meta.Description == "" {
		meta.Description = FirstParagraph(body)
	}
	if r.edit != nil {
		custom, disabled := fm.CustomEditURL()
		meta.EditURL = r.edit.Resolve(editlink.Input{SitePath: doc.SitePath(), Custom: custom, Disabled: disabled})
	}
	if err := r.applyLastUpdate(ctx, meta, doc, fm); err != nil {
		return nil, err
	}
	return meta, nil
}

// Permalink places slug under the version's route root.
func (r *Resolver) Permalink(v versioning.Version, slug string) string {
	return JoinRoute(r.site.BaseURL, r.site.RouteBasePath, v.Path, slug)
}

func (r *Resolver) slug(fm frontmatter.Frontmatter, dir, stem string) string {
	if s := fm.Slug(); s != "" {
		if strings.HasPrefix(s, "/") {
			return s
		}
		joined := path.Join("/", dir, s)
		if strings.HasSuffix(s, "/") && joined != "/" {
			joined += "/"
		}
		return joined
	}
	if isIndexDoc(stem, dir) {
		if dir == "" {
			return "/"
		}
		return "/" + dir + "/"
	}
	return path.Join("/", dir, stem)
}

func (r *Resolver) tags(v versioning.Version, tags []frontmatter.Tag) []TagRef {
	out := make([]TagRef, 0, len(tags))
	root := JoinRoute(r.site.BaseURL, r.site.RouteBasePath, v.Path, r.site.TagsBasePath)
	for _, t := range tags {
		link := t.Permalink
		if link == "" {
			link = tagSlug(t.Label)
		}
		out = append(out, TagRef{Label: t.Label, Permalink: JoinRoute(root, link)})
	}
	return out
}

func (r *Resolver) applyLastUpdate(ctx context.Context, meta *PageMetadata, doc source.Document, fm frontmatter.Frontmatter) error {
	if !r.site.ShowLastUpdateAuthor && !r.site.ShowLastUpdateTime {
		return nil
	}
	info, found, err := r.lastUpdate.LastUpdate(ctx, doc.SitePath())
	if err != nil {
		slog.Warn("Last update lookup failed", logfields.Page(doc.SitePath()), logfields.Error(err))
		found = false
	}
	if override, ok := fm.LastUpdate(); ok {
		if override.Author != "" {
			info.Author = override.Author
		}
		if !override.Date.IsZero() {
			info.Time = override.Date
		}
		found = true
	}
	if !found {
		return nil
	}
	if r.site.ShowLastUpdateAuthor {
		meta.LastUpdatedBy = info.Author
	}
	if r.site.ShowLastUpdateTime && !info.Time.IsZero() {
		meta.LastUpdatedAt = info.Time.Unix()
		meta.FormattedLastUpdatedAt = info.Time.UTC().Format(LastUpdateLayout)
	}
	return nil
}

func sourceDirName(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
