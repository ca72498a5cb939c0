package editlink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolver_Precedence(t *testing.T) {
	r := NewResolver(Options{EditURL: "https://example.com/edit/main/", Repository: "https://github.com/acme/site"})

	require.Equal(t, "https://custom.example/x", r.Resolve(Input{SitePath: "docs/a.md", Custom: "https://custom.example/x"}))
	require.Empty(t, r.Resolve(Input{SitePath: "docs/a.md", Disabled: true}))
	require.Equal(t, "https://example.com/edit/main/docs/a.md", r.Resolve(Input{SitePath: "docs/a.md"}))
}

func TestResolver_ForgeURLs(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{
			name: "github heuristic",
			opts: Options{Repository: "https://github.com/acme/site.git"},
			want: "https://github.com/acme/site/edit/main/docs/concepts/a.mdx",
		},
		{
			name: "gitlab ssh with site dir",
			opts: Options{Repository: "git@gitlab.com:acme/site.git", Branch: "trunk", SiteDir: "website"},
			want: "https://gitlab.com/acme/site/-/edit/trunk/website/docs/concepts/a.mdx",
		},
		{
			name: "bitbucket",
			opts: Options{Repository: "https://bitbucket.org/acme/site"},
			want: "https://bitbucket.org/acme/site/src/main/docs/concepts/a.mdx?mode=edit",
		},
		{
			name: "configured forgejo on custom host",
			opts: Options{Repository: "https://git.example.org/acme/site", Forge: ForgeForgejo},
			want: "https://git.example.org/acme/site/_edit/main/docs/concepts/a.mdx",
		},
		{
			name: "unknown host",
			opts: Options{Repository: "https://git.example.org/acme/site"},
			want: "",
		},
		{
			name: "local path",
			opts: Options{Repository: "../site"},
			want: "",
		},
		{
			name: "nothing configured",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewResolver(tt.opts).Resolve(Input{SitePath: "docs/concepts/a.mdx"})
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseForgeType(t *testing.T) {
	require.Equal(t, ForgeForgejo, ParseForgeType("Gitea"))
	require.Equal(t, ForgeGitHub, ParseForgeType(" github "))
	require.Equal(t, ForgeType(""), ParseForgeType("svn"))
}
