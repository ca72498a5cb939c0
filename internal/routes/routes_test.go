package routes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	cerrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/pagebuilder/internal/metadata"
	"git.home.luguber.info/inful/pagebuilder/internal/page"
	"git.home.luguber.info/inful/pagebuilder/internal/source"
	"git.home.luguber.info/inful/pagebuilder/internal/versioning"
)

func stubPage(permalink, src, fingerprint string) *page.CompiledPage {
	return &page.CompiledPage{
		Metadata:    &metadata.PageMetadata{Permalink: permalink, Source: src},
		Fingerprint: fingerprint,
	}
}

func resolvedPage(t *testing.T, path, raw string) *page.CompiledPage {
	t.Helper()
	set, err := versioning.New(versioning.Options{IncludeCurrent: true})
	require.NoError(t, err)
	r := metadata.NewResolver(metadata.SiteOptions{RouteBasePath: "docs"}, set)
	doc := source.Document{Path: path, Version: versioning.CurrentVersionName, ContentDir: "docs", Raw: []byte(raw)}
	fm, body, err := frontmatter.Parse(doc)
	require.NoError(t, err)
	meta, err := r.Resolve(context.Background(), doc, fm, body)
	require.NoError(t, err)
	return &page.CompiledPage{Metadata: meta}
}

func TestBuild_DuplicateRoute(t *testing.T) {
	foo := resolvedPage(t, "concepts/foo.md", "---\ntitle: Foo\n---\n")
	other := resolvedPage(t, "concepts/other.md", "---\ntitle: Other\nslug: /concepts/foo\n---\n")
	require.Equal(t, "/docs/next/concepts/foo", foo.Permalink())
	require.Equal(t, "/docs/next/concepts/foo", other.Permalink())

	reg, err := Build([]*page.CompiledPage{foo, other})
	require.Nil(t, reg)
	require.ErrorIs(t, err, cerrors.ErrDuplicateRoute)

	var dup *cerrors.DuplicateRouteError
	require.True(t, errors.As(err, &dup))
	require.Equal(t, "/docs/next/concepts/foo", dup.Permalink)
	require.Equal(t, []string{"@site/docs/concepts/foo.md", "@site/docs/concepts/other.md"}, dup.Sources)
}

func TestBuild_TrailingSlashCollides(t *testing.T) {
	file := resolvedPage(t, "concepts/foo.md", "---\ntitle: Foo\n---\n")
	index := resolvedPage(t, "concepts/foo/index.md", "---\ntitle: Foo index\n---\n")
	require.Equal(t, "/docs/next/concepts/foo/", index.Permalink())

	_, err := Build([]*page.CompiledPage{file, index})
	require.ErrorIs(t, err, cerrors.ErrDuplicateRoute)
}

func TestBuild_ThreeWayCollisionNamesEverySource(t *testing.T) {
	_, err := Build([]*page.CompiledPage{
		stubPage("/docs/a", "@site/docs/a.md", ""),
		stubPage("/docs/a/", "@site/docs/a/index.md", ""),
		stubPage("/docs/a", "@site/docs/b.md", ""),
		stubPage("/docs/c", "@site/docs/c.md", ""),
		stubPage("/docs/c", "@site/docs/d.md", ""),
	})
	var dup *cerrors.DuplicateRouteError
	require.True(t, errors.As(err, &dup))
	require.Equal(t, []string{"@site/docs/a.md", "@site/docs/a/index.md", "@site/docs/b.md"}, dup.Sources)
	require.Contains(t, err.Error(), "@site/docs/d.md")
}

func TestRegistry_Lookup(t *testing.T) {
	reg, err := Build([]*page.CompiledPage{
		stubPage("/docs/next/b", "b", "fp-b"),
		stubPage("/docs/next/", "index", "fp-i"),
		stubPage("/docs/next/a", "a", "fp-a"),
	})
	require.NoError(t, err)
	require.Equal(t, 3, reg.Len())
	require.Equal(t, []string{"/docs/next/", "/docs/next/a", "/docs/next/b"}, reg.Permalinks())

	p, ok := reg.Lookup("/docs/next/a/")
	require.True(t, ok)
	require.Equal(t, "a", p.Metadata.Source)
	p, ok = reg.Lookup("/docs/next")
	require.True(t, ok)
	require.Equal(t, "index", p.Metadata.Source)
	_, ok = reg.Lookup("/docs/next/missing")
	require.False(t, ok)

	pages := reg.Pages()
	require.Len(t, pages, 3)
	require.Equal(t, "index", pages[0].Metadata.Source)
}

func TestRegistry_Digest(t *testing.T) {
	pages := []*page.CompiledPage{stubPage("/a", "a", "1"), stubPage("/b", "b", "2")}
	r1, err := Build(pages)
	require.NoError(t, err)
	r2, err := Build([]*page.CompiledPage{pages[1], pages[0]})
	require.NoError(t, err)
	require.Equal(t, r1.Digest(), r2.Digest())
	require.Len(t, r1.Digest(), 64)

	r3, err := Build([]*page.CompiledPage{stubPage("/a", "a", "1"), stubPage("/b", "b", "changed")})
	require.NoError(t, err)
	require.NotEqual(t, r1.Digest(), r3.Digest())
}

func TestBuilder_ConcurrentAdd(t *testing.T) {
	b := NewBuilder()
	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Every tenth page reuses an earlier permalink.
			n := i
			if i%10 == 9 {
				n = i - 1
			}
			errs <- b.Add(stubPage(fmt.Sprintf("/docs/p%d", n), fmt.Sprintf("src-%d", i), ""))
		}()
	}
	wg.Wait()
	close(errs)

	failed := 0
	for err := range errs {
		if err != nil {
			require.ErrorIs(t, err, cerrors.ErrDuplicateRoute)
			failed++
		}
	}
	require.Equal(t, 10, failed)

	reg := b.Freeze()
	require.Equal(t, 90, reg.Len())
	require.ErrorIs(t, b.Add(stubPage("/docs/late", "late", "")), ErrFrozen)
}

func TestKey(t *testing.T) {
	require.Equal(t, "/", Key("/"))
	require.Equal(t, "/docs", Key("/docs/"))
	require.Equal(t, "/docs", Key("/docs"))
}
