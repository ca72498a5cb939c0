package frontmatter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cerrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/source"
)

func doc(raw string) source.Document {
	return source.Document{Path: "concepts/intro.md", Version: "current", ContentDir: "docs", Raw: []byte(raw)}
}

func TestParse_SplitsFrontmatterAndBody(t *testing.T) {
	fm, body, err := Parse(doc("---\ntitle: Get Started\nsidebar_position: 2\ncustom: kept\n---\n# Hello\n"))
	require.NoError(t, err)
	require.Equal(t, "Get Started", fm.Title())
	require.Equal(t, "# Hello\n", string(body))

	pos, ok := fm.SidebarPosition()
	require.True(t, ok)
	require.InDelta(t, 2.0, pos, 0)

	v, ok := fm.Get("custom")
	require.True(t, ok)
	require.Equal(t, "kept", v)
}

func TestParse_MalformedDocuments(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		reason string
		line   int
	}{
		{name: "absent", raw: "# No header\n", reason: "frontmatter block is absent", line: 1},
		{name: "unterminated", raw: "---\ntitle: x\n# body\n", reason: "unterminated frontmatter block", line: 1},
		{name: "list", raw: "---\n- a\n- b\n---\nbody\n", reason: "frontmatter must be a key-value mapping"},
		{name: "scalar", raw: "---\nhello\n---\nbody\n", reason: "frontmatter must be a key-value mapping"},
		{name: "invalid yaml", raw: "---\ntitle: [unclosed\n---\nbody\n", reason: "frontmatter is not valid YAML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(doc(tt.raw))
			require.ErrorIs(t, err, cerrors.ErrMalformedDocument)

			var md *cerrors.MalformedDocumentError
			require.True(t, errors.As(err, &md))
			require.Equal(t, "docs/concepts/intro.md", md.Path)
			require.Equal(t, tt.reason, md.Reason)
			if tt.line > 0 {
				require.Equal(t, tt.line, md.Line)
			}
		})
	}
}

func TestParse_EmptyBlockIsNotMalformed(t *testing.T) {
	fm, body, err := Parse(doc("---\n---\nbody\n"))
	require.NoError(t, err)
	require.Empty(t, fm.Keys())
	require.Equal(t, "body\n", string(body))
}

func TestFrontmatter_Accessors(t *testing.T) {
	raw := `---
title: "  Spaced  "
draft: true
hide_title: "true"
tags:
  - alpha
  - label: Beta
    permalink: /beta
  - ""
keywords: single
custom_edit_url: null
pagination_next: null
pagination_prev: concepts/other
last_update:
  author: Ada
  date: 2024-03-01
---
`
	fm, _, err := Parse(doc(raw))
	require.NoError(t, err)

	require.Equal(t, "Spaced", fm.Title())
	require.True(t, fm.Draft())
	require.True(t, fm.HideTitle())
	require.Equal(t, []Tag{{Label: "alpha"}, {Label: "Beta", Permalink: "/beta"}}, fm.Tags())
	require.Equal(t, []string{"single"}, fm.Keywords())

	url, disabled := fm.CustomEditURL()
	require.Empty(t, url)
	require.True(t, disabled)

	_, suppressed := fm.Pagination(KeyPaginationNext)
	require.True(t, suppressed)
	prev, suppressed := fm.Pagination(KeyPaginationPrev)
	require.False(t, suppressed)
	require.Equal(t, "concepts/other", prev)

	lu, ok := fm.LastUpdate()
	require.True(t, ok)
	require.Equal(t, "Ada", lu.Author)
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), lu.Date)

	_, ok = fm.SidebarPosition()
	require.False(t, ok)
}
