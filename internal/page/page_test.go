package page

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagebuilder/internal/compiler"
	"git.home.luguber.info/inful/pagebuilder/internal/components"
	"git.home.luguber.info/inful/pagebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/pagebuilder/internal/metadata"
)

func compileBody(t *testing.T, src string) *compiler.Body {
	t.Helper()
	reg, err := components.NewDefaultRegistry(nil)
	require.NoError(t, err)
	body, err := compiler.New(reg, compiler.Options{}).Compile(context.Background(), compiler.Input{Path: "docs/intro.md", Source: []byte(src)})
	require.NoError(t, err)
	return body
}

func testMeta() *metadata.PageMetadata {
	return &metadata.PageMetadata{
		ID:          "intro",
		Title:       "Intro & Overview",
		Description: "Start here",
		Source:      "@site/docs/intro.md",
		Permalink:   "/docs/next/intro",
		Version:     "current",
		EditURL:     "https://github.com/acme/site/edit/main/docs/intro.md",
		Tags:        []metadata.TagRef{{Label: "Getting started", Permalink: "/docs/next/tags/getting-started"}},
		Previous:    &metadata.PageRef{Title: "Welcome", Permalink: "/docs/next/"},
		Next:        &metadata.PageRef{Title: "Install", Permalink: "/docs/next/install"},

		LastUpdatedBy:          "Ada",
		LastUpdatedAt:          1700000000,
		FormattedLastUpdatedAt: "Nov 14, 2023",
	}
}

func TestAssemble_DocLayout(t *testing.T) {
	src := "## Setup\n\nRun <Kbd>make</Kbd>.\n\n### Deeper\n\n## Next steps\n"
	body := compileBody(t, src)
	bodyHTML, err := body.HTML(context.Background())
	require.NoError(t, err)

	meta := testMeta()
	fm := frontmatter.New(map[string]any{"title": "Intro & Overview"}, nil)
	a := NewAssembler(Options{SiteTitle: "Acme Docs"})
	p, err := a.Assemble(context.Background(), Input{Metadata: meta, Body: body, Frontmatter: fm, Source: []byte(src)})
	require.NoError(t, err)

	require.Same(t, meta, p.Metadata)
	require.Same(t, body, p.Body)
	require.Equal(t, LayoutDoc, p.Layout)
	require.Equal(t, "/docs/next/intro", p.Permalink())
	require.NotEmpty(t, p.Fingerprint)

	html := string(p.HTML())
	require.Contains(t, html, "<title>Intro &amp; Overview | Acme Docs</title>")
	require.Contains(t, html, `<meta name="description" content="Start here">`)
	require.Contains(t, html, "<article class=\"markdown\">\n<header><h1>Intro &amp; Overview</h1></header>\n"+bodyHTML+"</article>")
	require.Contains(t, html, `<a class="tag" href="/docs/next/tags/getting-started">Getting started</a>`)
	require.Contains(t, html, `href="https://github.com/acme/site/edit/main/docs/intro.md"`)
	require.Contains(t, html, `Last updated on <time datetime="1700000000">Nov 14, 2023</time> by <b>Ada</b>`)
	require.Contains(t, html, `pagination-nav__link--prev" href="/docs/next/">`)
	require.Contains(t, html, `pagination-nav__link--next" href="/docs/next/install">`)
	require.Contains(t, html, `<aside class="table-of-contents"><ul><li><a href="#setup">Setup</a><ul><li><a href="#deeper">Deeper</a></li></ul></li><li><a href="#next-steps">Next steps</a></li></ul></aside>`)
}

func TestAssemble_MinimalPage(t *testing.T) {
	body := compileBody(t, "# Own title\n\nText.\n")
	meta := &metadata.PageMetadata{Title: "Own title", Permalink: "/docs/a", Source: "@site/docs/a.md"}
	p, err := NewAssembler(Options{}).Assemble(context.Background(), Input{Metadata: meta, Body: body})
	require.NoError(t, err)

	html := string(p.HTML())
	require.NotContains(t, html, "<header>")
	require.NotContains(t, html, "doc-footer")
	require.NotContains(t, html, "pagination-nav")
	require.NotContains(t, html, "table-of-contents")
	require.NotContains(t, html, `name="description"`)
	require.Equal(t, 1, strings.Count(html, "<h1"))
}

func TestAssemble_PlainLayoutAndHideTitle(t *testing.T) {
	body := compileBody(t, "Text.\n")
	meta := &metadata.PageMetadata{Title: "Hidden", HideTitle: true, Permalink: "/docs/a", Source: "@site/docs/a.md"}
	fm := frontmatter.New(map[string]any{"title": "Hidden", "layout": "plain"}, nil)
	p, err := NewAssembler(Options{}).Assemble(context.Background(), Input{Metadata: meta, Body: body, Frontmatter: fm})
	require.NoError(t, err)
	require.Equal(t, LayoutPlain, p.Layout)
	require.Equal(t, "<article class=\"markdown\">\n<p>Text.</p>\n</article>\n", string(p.HTML()))

	var sb strings.Builder
	require.NoError(t, p.Render(context.Background(), &sb))
	require.Equal(t, string(p.HTML()), sb.String())
}

func TestAssemble_UnknownLayout(t *testing.T) {
	body := compileBody(t, "Text.\n")
	meta := &metadata.PageMetadata{Title: "x", Source: "@site/docs/a.md"}
	fm := frontmatter.New(map[string]any{"layout": "blog"}, nil)
	_, err := NewAssembler(Options{}).Assemble(context.Background(), Input{Metadata: meta, Body: body, Frontmatter: fm})
	require.ErrorContains(t, err, `unknown layout "blog"`)
}

func TestFingerprint(t *testing.T) {
	fm := frontmatter.New(map[string]any{"title": "A", "tags": []any{"x"}}, nil)
	withStored := frontmatter.New(map[string]any{"title": "A", "tags": []any{"x"}, "fingerprint": "old"}, nil)

	a, err := Fingerprint(fm, []byte("body\n"))
	require.NoError(t, err)
	b, err := Fingerprint(withStored, []byte("body\n"))
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := Fingerprint(fm, []byte("changed\n"))
	require.NoError(t, err)
	require.NotEqual(t, a, c)

	empty, err := Fingerprint(frontmatter.Frontmatter{}, []byte("body\n"))
	require.NoError(t, err)
	require.NotEqual(t, a, empty)
}
