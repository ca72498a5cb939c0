package metadata

import (
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/pagebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/sidebar"
)

// Catalog indexes the pages of one version by unversioned id.
type Catalog struct {
	byID map[string]*PageMetadata
}

// NewCatalog indexes pages. Later duplicates of an id are ignored.
func NewCatalog(pages []*PageMetadata) *Catalog {
	c := &Catalog{byID: make(map[string]*PageMetadata, len(pages))}
	for _, p := range pages {
		if _, ok := c.byID[p.UnversionedID]; !ok {
			c.byID[p.UnversionedID] = p
		}
	}
	return c
}

// Lookup returns the page with the given unversioned id.
func (c *Catalog) Lookup(id string) (*PageMetadata, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// DocInfos describes the catalog's pages for sidebar autogeneration.
func DocInfos(pages []*PageMetadata) []sidebar.DocInfo {
	out := make([]sidebar.DocInfo, 0, len(pages))
	for _, p := range pages {
		dir := p.SourceDirName
		if dir == "." {
			dir = ""
		}
		id := p.UnversionedID
		stem := id[strings.LastIndex(id, "/")+1:]
		out = append(out, sidebar.DocInfo{ID: id, Dir: dir, Stem: stem, Position: p.SidebarPosition})
	}
	return out
}

// Navigate fills Sidebar, Previous and Next from the version's navigation and catalog.
// A page in no sidebar keeps them empty; pagination frontmatter overrides either neighbour.
func Navigate(meta *PageMetadata, nav *sidebar.Navigation, cat *Catalog) {
	fm := frontmatter.New(meta.Frontmatter, nil)

	name, prev, next, ok := nav.Locate(meta.UnversionedID)
	if ok {
		meta.Sidebar = name
		meta.Previous = refFor(prev, cat)
		meta.Next = refFor(next, cat)
	}
	if forced := fm.DisplayedSidebar(); forced != "" {
		meta.Sidebar = forced
	}

	if id, suppressed := fm.Pagination(frontmatter.KeyPaginationPrev); suppressed {
		meta.Previous = nil
	} else if id != "" {
		meta.Previous = overrideRef(meta, id, cat)
	}
	if id, suppressed := fm.Pagination(frontmatter.KeyPaginationNext); suppressed {
		meta.Next = nil
	} else if id != "" {
		meta.Next = overrideRef(meta, id, cat)
	}
}

func refFor(e *sidebar.Entry, cat *Catalog) *PageRef {
	if e == nil {
		return nil
	}
	p, ok := cat.Lookup(e.DocID)
	if !ok {
		return nil
	}
	title := e.Label
	if title == "" {
		title = p.DisplayLabel()
	}
	return &PageRef{Title: title, Permalink: p.Permalink}
}

func overrideRef(meta *PageMetadata, id string, cat *Catalog) *PageRef {
	p, ok := cat.Lookup(id)
	if !ok {
		slog.Warn("Pagination target not found", logfields.Page(meta.Source), slog.String("target", id))
		return nil
	}
	return &PageRef{Title: p.DisplayLabel(), Permalink: p.Permalink}
}
