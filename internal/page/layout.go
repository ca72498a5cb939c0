package page

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"git.home.luguber.info/inful/pagebuilder/internal/compiler"
	"git.home.luguber.info/inful/pagebuilder/internal/metadata"
)

// Built-in layout names.
const (
	LayoutDoc   = "doc"
	LayoutPlain = "plain"
)

// Layout renders a page into a full document.
type Layout func(opts Options, p *CompiledPage) templ.Component

func builtinLayouts() map[string]Layout {
	return map[string]Layout{
		LayoutDoc:   docLayout,
		LayoutPlain: plainLayout,
	}
}

type writer struct {
	w   io.Writer
	err error
}

func (w *writer) s(parts ...string) {
	for _, p := range parts {
		if w.err != nil {
			return
		}
		_, w.err = io.WriteString(w.w, p)
	}
}

func esc(s string) string { return templ.EscapeString(s) }

func docLayout(opts Options, p *CompiledPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		m := p.Metadata
		w := &writer{w: out}

		title := m.Title
		if opts.SiteTitle != "" {
			title += " | " + opts.SiteTitle
		}
		w.s("<!DOCTYPE html>\n<html lang=\"", esc(opts.Lang), "\">\n<head>\n<meta charset=\"utf-8\">\n")
		w.s("<title>", esc(title), "</title>\n")
		if m.Description != "" {
			w.s(`<meta name="description" content="`, esc(m.Description), "\">\n")
		}
		if len(m.Keywords) > 0 {
			w.s(`<meta name="keywords" content="`, esc(strings.Join(m.Keywords, ", ")), "\">\n")
		}
		w.s(`<link rel="canonical" href="`, esc(m.Permalink), "\">\n</head>\n")
		w.s(`<body><main class="doc-page" data-version="`, esc(m.Version), `" data-doc-id="`, esc(m.ID), "\">\n")

		article(ctx, w, p)
		docFooter(w, m)
		pager(w, m)
		toc(w, p.Body.TOC)

		w.s("</main>\n</body>\n</html>\n")
		return w.err
	})
}

func plainLayout(_ Options, p *CompiledPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		article(ctx, w, p)
		return w.err
	})
}

// article is the content slot. The body HTML is written verbatim.
func article(ctx context.Context, w *writer, p *CompiledPage) {
	w.s(`<article class="markdown">`, "\n")
	if !p.Metadata.HideTitle && !startsWithH1(p.Body) {
		w.s("<header><h1>", esc(p.Metadata.Title), "</h1></header>\n")
	}
	if w.err != nil {
		return
	}
	w.err = p.Body.Render(ctx, w.w)
	w.s("</article>\n")
}

func startsWithH1(b *compiler.Body) bool {
	return len(b.Nodes) > 0 && b.Nodes[0].Kind == compiler.KindHeading && b.Nodes[0].Level == 1
}

func docFooter(w *writer, m *metadata.PageMetadata) {
	if len(m.Tags) == 0 && m.EditURL == "" && m.LastUpdatedAt == 0 && m.LastUpdatedBy == "" {
		return
	}
	w.s(`<footer class="doc-footer">`, "\n")
	if len(m.Tags) > 0 {
		w.s(`<ul class="tags">`)
		for _, t := range m.Tags {
			w.s(`<li><a class="tag" href="`, esc(t.Permalink), `">`, esc(t.Label), "</a></li>")
		}
		w.s("</ul>\n")
	}
	if m.EditURL != "" {
		w.s(`<a class="edit-this-page" href="`, esc(m.EditURL), `" target="_blank" rel="noopener noreferrer">Edit this page</a>`, "\n")
	}
	if m.LastUpdatedAt != 0 || m.LastUpdatedBy != "" {
		w.s(`<span class="last-updated">Last updated`)
		if m.LastUpdatedAt != 0 {
			w.s(` on <time datetime="`, strconv.FormatInt(m.LastUpdatedAt, 10), `">`, esc(m.FormattedLastUpdatedAt), "</time>")
		}
		if m.LastUpdatedBy != "" {
			w.s(" by <b>", esc(m.LastUpdatedBy), "</b>")
		}
		w.s("</span>\n")
	}
	w.s("</footer>\n")
}

func pager(w *writer, m *metadata.PageMetadata) {
	if m.Previous == nil && m.Next == nil {
		return
	}
	w.s(`<nav class="pagination-nav" aria-label="Docs pages">`)
	if m.Previous != nil {
		w.s(`<a class="pagination-nav__link pagination-nav__link--prev" href="`, esc(m.Previous.Permalink), `">`,
			`<div class="pagination-nav__sublabel">Previous</div><div class="pagination-nav__label">`, esc(m.Previous.Title), "</div></a>")
	}
	if m.Next != nil {
		w.s(`<a class="pagination-nav__link pagination-nav__link--next" href="`, esc(m.Next.Permalink), `">`,
			`<div class="pagination-nav__sublabel">Next</div><div class="pagination-nav__label">`, esc(m.Next.Title), "</div></a>")
	}
	w.s("</nav>\n")
}

// toc renders a nested list; deeper levels nest under the preceding item.
func toc(w *writer, items []compiler.TOCItem) {
	if len(items) == 0 {
		return
	}
	w.s(`<aside class="table-of-contents"><ul>`)
	base := items[0].Level
	for _, it := range items {
		if it.Level < base {
			base = it.Level
		}
	}
	depth := 0
	for i, it := range items {
		d := it.Level - base
		switch {
		case i == 0:
			for ; depth < d; depth++ {
				w.s("<li><ul>")
			}
		case d > depth:
			for ; depth < d; depth++ {
				w.s("<ul>")
			}
		case d < depth:
			w.s("</li>")
			for ; depth > d; depth-- {
				w.s("</ul></li>")
			}
		default:
			w.s("</li>")
		}
		depth = d
		w.s(`<li><a href="#`, esc(it.ID), `">`, esc(it.Value), "</a>")
	}
	for ; depth > 0; depth-- {
		w.s("</li></ul>")
	}
	w.s("</li></ul></aside>\n")
}
