package versioning

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_CurrentOnly(t *testing.T) {
	set, err := New(Options{IncludeCurrent: true})
	require.NoError(t, err)

	v, err := set.Get(CurrentVersionName)
	require.NoError(t, err)
	require.Equal(t, "next", v.Path)
	require.Equal(t, "docs", v.ContentDir)
	require.True(t, v.IsCurrent)
	require.True(t, v.IsLast)
	require.Empty(t, v.DocIDPrefix())
}

func TestNew_ReleasedVersions(t *testing.T) {
	root := ""
	set, err := New(Options{
		IncludeCurrent: true,
		CurrentDir:     "content",
		Versions:       []string{"2.0", "1.0"},
		Overrides:      map[string]Override{"1.0": {Label: "Legacy"}, CurrentVersionName: {Path: &root}},
	})
	require.NoError(t, err)

	all := set.All()
	require.Len(t, all, 3)
	require.Equal(t, "", all[0].Path)
	require.Equal(t, "content", all[0].ContentDir)

	require.Equal(t, "2.0", set.Last().Name)
	require.Equal(t, "", all[1].Path)
	require.Equal(t, "versioned_docs/version-2.0", all[1].ContentDir)
	require.Equal(t, "versioned_sidebars/version-2.0-sidebars.jsonc", all[1].SidebarPath)
	require.Equal(t, "version-2.0/", all[1].DocIDPrefix())

	require.Equal(t, "1.0", all[2].Path)
	require.Equal(t, "Legacy", all[2].Label)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Options{})
	require.ErrorIs(t, err, ErrNoVersions)

	_, err = New(Options{IncludeCurrent: true, LastVersion: "9.9"})
	require.ErrorIs(t, err, ErrUnknownVersion)

	_, err = New(Options{Versions: []string{"1.0", "1.0"}})
	require.Error(t, err)

	set, err := New(Options{Versions: []string{"1.0"}})
	require.NoError(t, err)
	_, err = set.Get(CurrentVersionName)
	require.ErrorIs(t, err, ErrUnknownVersion)
}
