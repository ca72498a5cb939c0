package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SiteOutput asserts on a written site below a base directory.
type SiteOutput struct {
	t    *testing.T
	base string
}

// NewSiteOutput creates assertions rooted at base.
func NewSiteOutput(t *testing.T, base string) *SiteOutput {
	return &SiteOutput{t: t, base: base}
}

// HasPage asserts that the page for a permalink-relative path exists and contains want.
func (o *SiteOutput) HasPage(rel, want string) *SiteOutput {
	o.t.Helper()
	p := filepath.Join(o.base, filepath.FromSlash(rel), "index.html")
	content, err := os.ReadFile(p)
	require.NoError(o.t, err, "page %s", rel)
	require.Contains(o.t, string(content), want, "page %s", rel)
	return o
}

// HasFile asserts that rel exists.
func (o *SiteOutput) HasFile(rel string) *SiteOutput {
	o.t.Helper()
	require.FileExists(o.t, filepath.Join(o.base, filepath.FromSlash(rel)))
	return o
}
