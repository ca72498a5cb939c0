package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagebuilder/internal/sidebar"
)

func page(id, title, permalink string, fm map[string]any) *PageMetadata {
	if fm == nil {
		fm = map[string]any{}
	}
	return &PageMetadata{UnversionedID: id, Title: title, Permalink: permalink, Frontmatter: fm}
}

func TestNavigate(t *testing.T) {
	sb, err := sidebar.Parse([]byte(`{"docs": ["intro", {"type": "doc", "id": "setup", "label": "Set it up"}, "usage"]}`))
	require.NoError(t, err)
	nav := sidebar.NewNavigation(sb)

	intro := page("intro", "Introduction", "/docs/next/intro", nil)
	setup := page("setup", "Setup", "/docs/next/setup", nil)
	usage := page("usage", "Usage", "/docs/next/usage", map[string]any{"pagination_next": "intro", "pagination_prev": nil})
	orphan := page("orphan", "Orphan", "/docs/next/orphan", nil)
	cat := NewCatalog([]*PageMetadata{intro, setup, usage, orphan})

	for _, p := range []*PageMetadata{intro, setup, usage, orphan} {
		Navigate(p, nav, cat)
	}

	require.Equal(t, "docs", setup.Sidebar)
	require.Equal(t, &PageRef{Title: "Introduction", Permalink: "/docs/next/intro"}, setup.Previous)
	require.Equal(t, &PageRef{Title: "Usage", Permalink: "/docs/next/usage"}, setup.Next)
	require.Equal(t, &PageRef{Title: "Set it up", Permalink: "/docs/next/setup"}, intro.Next)
	require.Nil(t, intro.Previous)

	require.Nil(t, usage.Previous)
	require.Equal(t, "/docs/next/intro", usage.Next.Permalink)

	require.Empty(t, orphan.Sidebar)
	require.Nil(t, orphan.Previous)
	require.Nil(t, orphan.Next)
}

func TestDocInfos(t *testing.T) {
	pos := 3.0
	infos := DocInfos([]*PageMetadata{
		{UnversionedID: "concepts/a", SourceDirName: "01-concepts", SidebarPosition: &pos},
		{UnversionedID: "intro", SourceDirName: "."},
	})
	require.Equal(t, []sidebar.DocInfo{
		{ID: "concepts/a", Dir: "01-concepts", Stem: "a", Position: &pos},
		{ID: "intro", Dir: "", Stem: "intro"},
	}, infos)
}
