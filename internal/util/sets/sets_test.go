package sets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	s := New(".md", ".mdx")
	require.True(t, s.Has(".md"))
	require.False(t, s.Has(".html"))

	s.Add(".html")
	s.Add(".html")
	require.True(t, s.Has(".html"))
	require.Len(t, s, 3)
}
