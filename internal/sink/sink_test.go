package sink

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagebuilder/internal/compiler"
	"git.home.luguber.info/inful/pagebuilder/internal/components"
	"git.home.luguber.info/inful/pagebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/pagebuilder/internal/metadata"
	"git.home.luguber.info/inful/pagebuilder/internal/page"
	"git.home.luguber.info/inful/pagebuilder/internal/pipeline"
	"git.home.luguber.info/inful/pagebuilder/internal/routes"
)

func registry(t *testing.T, permalinks ...string) *routes.Registry {
	t.Helper()
	reg, err := components.NewDefaultRegistry(nil)
	require.NoError(t, err)
	c := compiler.New(reg, compiler.Options{})
	a := page.NewAssembler(page.Options{SiteTitle: "Docs"})

	var pages []*page.CompiledPage
	for _, pl := range permalinks {
		src := "Press <Kbd>K</Kbd> on " + pl + ".\n"
		body, err := c.Compile(context.Background(), compiler.Input{Path: pl, Source: []byte(src)})
		require.NoError(t, err)
		p, err := a.Assemble(context.Background(), page.Input{
			Metadata:    &metadata.PageMetadata{ID: pl, Title: "T " + pl, Permalink: pl, Source: "@site/docs" + pl + ".md", Version: "current"},
			Body:        body,
			Frontmatter: frontmatter.New(map[string]any{"title": "T " + pl}, nil),
			Source:      []byte(src),
		})
		require.NoError(t, err)
		pages = append(pages, p)
	}
	r, err := routes.Build(pages)
	require.NoError(t, err)
	return r
}

func TestSiteWriter_WritesPagesAndManifests(t *testing.T) {
	out := filepath.Join(t.TempDir(), "build")
	reg := registry(t, "/docs/next/intro", "/docs/next/", "/docs/guide/setup")
	m := NewManifest("b-1", reg, time.Unix(1700000000, 0))

	w := NewSiteWriter(out, SiteOptions{Clean: true, CBOR: true})
	require.NoError(t, w.Write(context.Background(), reg, m))

	for _, rel := range []string{"docs/next/intro/index.html", "docs/next/index.html", "docs/guide/setup/index.html"} {
		data, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(rel)))
		require.NoError(t, err, rel)
		require.Contains(t, string(data), "<kbd>K</kbd>")
	}
	_, err := os.Stat(out + "_stage")
	require.True(t, os.IsNotExist(err))

	var fromJSON Manifest
	data, err := os.ReadFile(filepath.Join(out, ManifestJSON))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	require.Equal(t, reg.Digest(), fromJSON.Digest)
	require.Len(t, fromJSON.Routes, 3)
	require.Equal(t, "/docs/guide/setup", fromJSON.Routes[0].Permalink)
	require.Equal(t, []string{"Kbd"}, fromJSON.Routes[0].Components)

	fromCBOR, err := ReadManifestCBOR(filepath.Join(out, ManifestCBOR))
	require.NoError(t, err)
	if diff := cmp.Diff(&fromJSON, fromCBOR); diff != "" {
		t.Fatalf("cbor manifest differs from json (-json +cbor):\n%s", diff)
	}
}

func TestSiteWriter_CleanReplacesPreviousOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "build")
	w := NewSiteWriter(out, SiteOptions{Clean: true})
	require.NoError(t, w.Write(context.Background(), registry(t, "/old"), nil))
	require.FileExists(t, filepath.Join(out, "old", "index.html"))

	require.NoError(t, w.Write(context.Background(), registry(t, "/new"), nil))
	require.FileExists(t, filepath.Join(out, "new", "index.html"))
	require.NoFileExists(t, filepath.Join(out, "old", "index.html"))
	require.NoDirExists(t, out+".prev")
}

func TestSiteWriter_FailedWriteKeepsPreviousOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "build")
	w := NewSiteWriter(out, SiteOptions{Clean: true})
	require.NoError(t, w.Write(context.Background(), registry(t, "/keep"), nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, w.Write(ctx, registry(t, "/lost"), nil), context.Canceled)
	require.FileExists(t, filepath.Join(out, "keep", "index.html"))
	require.NoDirExists(t, out+"_stage")
}

func TestSiteWriter_WithoutCleanOverlays(t *testing.T) {
	out := filepath.Join(t.TempDir(), "build")
	require.NoError(t, os.MkdirAll(out, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "extra.txt"), []byte("x"), 0o644))

	w := NewSiteWriter(out, SiteOptions{})
	require.NoError(t, w.Write(context.Background(), registry(t, "/a"), nil))
	require.FileExists(t, filepath.Join(out, "extra.txt"))
	require.FileExists(t, filepath.Join(out, "a", "index.html"))
}

func TestSiteWriter_PagePath(t *testing.T) {
	w := NewSiteWriter("out", SiteOptions{BaseURL: "/site/"})
	cases := map[string]string{
		"/site/":               "index.html",
		"/site/docs/intro":     filepath.Join("docs", "intro", "index.html"),
		"/site/docs/next/":     filepath.Join("docs", "next", "index.html"),
		"/site/docs/a.b/index": filepath.Join("docs", "a.b", "index", "index.html"),
	}
	for in, want := range cases {
		got, err := w.PagePath(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := w.PagePath("/site/../etc/passwd")
	require.ErrorIs(t, err, ErrUnsafePermalink)
}

func TestEncodeManifest_Deterministic(t *testing.T) {
	m := &Manifest{BuildID: "b", GeneratedAt: 1, Digest: "d", Routes: []Route{{Permalink: "/a", ID: "a", Title: "A", Layout: "doc"}}}
	a, err := EncodeManifest(m)
	require.NoError(t, err)
	b, err := EncodeManifest(m)
	require.NoError(t, err)
	require.Equal(t, a, b)

	_, err = DecodeManifest([]byte("not zstd"))
	require.Error(t, err)
}

func TestHistoryStore(t *testing.T) {
	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer func() { _ = h.Close() }()

	ctx := context.Background()
	base := time.UnixMilli(1700000000000)
	report := &pipeline.BuildReport{
		BuildID:   "first",
		Start:     base,
		End:       base.Add(1500 * time.Millisecond),
		Outcome:   pipeline.OutcomeWarning,
		Documents: 4,
		Compiled:  3,
		Failures:  []pipeline.PageFailure{{Source: "docs/x.md"}},
		Routes:    3,
		Digest:    "abc",
	}
	require.NoError(t, h.Record(ctx, NewBuildRecord(report)))
	require.NoError(t, h.Record(ctx, BuildRecord{BuildID: "second", Start: base.Add(time.Minute), Outcome: "success"}))

	all, err := h.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "second", all[0].BuildID)

	first := all[1]
	require.Equal(t, BuildRecord{
		BuildID:   "first",
		Start:     base,
		Duration:  1500 * time.Millisecond,
		Outcome:   "warning",
		Documents: 4,
		Compiled:  3,
		Failed:    1,
		Routes:    3,
		Digest:    "abc",
	}, first)

	latest, err := h.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)

	require.Error(t, h.Record(ctx, BuildRecord{BuildID: "first", Start: base}))
}
