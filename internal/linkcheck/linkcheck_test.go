package linkcheck

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagebuilder/internal/compiler"
	"git.home.luguber.info/inful/pagebuilder/internal/components"
	cerrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/metadata"
	"git.home.luguber.info/inful/pagebuilder/internal/page"
	"git.home.luguber.info/inful/pagebuilder/internal/routes"
)

func assemble(t *testing.T, permalink, src string) *page.CompiledPage {
	t.Helper()
	reg, err := components.NewDefaultRegistry(nil)
	require.NoError(t, err)
	body, err := compiler.New(reg, compiler.Options{}).Compile(context.Background(), compiler.Input{Path: permalink, Source: []byte(src)})
	require.NoError(t, err)
	meta := &metadata.PageMetadata{
		Title:     "Page " + permalink,
		Permalink: permalink,
		Source:    "@site" + permalink + ".md",
		Tags:      []metadata.TagRef{{Label: "t", Permalink: "/docs/next/tags/t"}},
	}
	p, err := page.NewAssembler(page.Options{}).Assemble(context.Background(), page.Input{Metadata: meta, Body: body, Source: []byte(src)})
	require.NoError(t, err)
	return p
}

func TestExtract_ResolvesAgainstPermalink(t *testing.T) {
	doc := `<html><body><nav><a href="/outside">x</a></nav><article class="markdown">
<a href="sibling">a</a>
<a href="../up/">b</a>
<a href="/docs/abs?x=1#frag">c</a>
<a href="#local">d</a>
<a href="https://example.com/x">e</a>
<a href="mailto:me@example.com">f</a>
<a href="/img/logo.png">g</a>
<a href="other.md">h</a>
<a>no href</a>
</article></body></html>`

	links, err := Extract(strings.NewReader(doc), "/docs/next/guide/page")
	require.NoError(t, err)

	want := []Link{
		{Href: "sibling", Target: "/docs/next/guide/sibling"},
		{Href: "../up/", Target: "/docs/next/up/"},
		{Href: "/docs/abs?x=1#frag", Target: "/docs/abs"},
		{Href: "#local"},
		{Href: "https://example.com/x"},
		{Href: "mailto:me@example.com"},
		{Href: "/img/logo.png"},
		{Href: "other.md", Target: "/docs/next/guide/other.md"},
	}
	if diff := cmp.Diff(want, links); diff != "" {
		t.Fatalf("links mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_WholeDocumentWithoutArticle(t *testing.T) {
	links, err := Extract(strings.NewReader(`<p><a href="/a">a</a></p>`), "/")
	require.NoError(t, err)
	require.Equal(t, []Link{{Href: "/a", Target: "/a"}}, links)
}

func TestCheck_ReportsMissingRoutes(t *testing.T) {
	intro := assemble(t, "/docs/next/intro", "See [install](/docs/next/install/), [missing](/docs/next/missing), [again](/docs/next/missing) and [raw](setup.md).\n")
	install := assemble(t, "/docs/next/install", "Back to [intro](intro#top).\n")

	reg, err := routes.Build([]*page.CompiledPage{install, intro})
	require.NoError(t, err)

	broken, err := NewChecker(reg).Check(context.Background(), reg.Pages())
	require.NoError(t, err)
	want := []*cerrors.BrokenLinkError{
		{Source: "/docs/next/intro", Href: "/docs/next/missing"},
		{Source: "/docs/next/intro", Href: "setup.md"},
	}
	require.Equal(t, want, broken)
	for _, b := range broken {
		require.ErrorIs(t, b, cerrors.ErrBrokenLink)
	}
}

func TestCheck_TagLinksOutsideArticleIgnored(t *testing.T) {
	p := assemble(t, "/docs/a", "plain\n")
	broken, err := NewCheckerFunc(func(string) bool { return false }).Check(context.Background(), []*page.CompiledPage{p})
	require.NoError(t, err)
	require.Empty(t, broken)
}

func TestCheck_Canceled(t *testing.T) {
	p := assemble(t, "/docs/a", "plain\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCheckerFunc(func(string) bool { return true }).Check(ctx, []*page.CompiledPage{p})
	require.ErrorIs(t, err, context.Canceled)
}
