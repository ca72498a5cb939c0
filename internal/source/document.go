// Package source supplies the documents a site build compiles.
//
// A Document is read once per build and never mutated afterwards. Stores
// enumerate documents per version content root; FSStore walks directories on
// disk and MemoryStore serves fixed fixtures.
package source

import (
	"path"
	"strings"
)

// Document is one authored content file.
type Document struct {
	// Path is slash-separated and relative to ContentDir, e.g. "concepts/hybrid-custody/get-started.mdx".
	Path string
	// Version names the docs version this document belongs to ("current" for the working tree).
	Version string
	// ContentDir is the site-relative directory the document was read from, e.g. "docs".
	ContentDir string
	Raw        []byte
}

// Key identifies the document within a build.
func (d Document) Key() string {
	return d.Version + ":" + d.Path
}

// Dir returns the directory portion of Path, or "" for documents at the content root.
func (d Document) Dir() string {
	dir := path.Dir(d.Path)
	if dir == "." {
		return ""
	}
	return dir
}

// Ext returns the lower-cased file extension including the dot.
func (d Document) Ext() string {
	return strings.ToLower(path.Ext(d.Path))
}

// Stem returns the file name without its extension.
func (d Document) Stem() string {
	base := path.Base(d.Path)
	return strings.TrimSuffix(base, path.Ext(base))
}

// SitePath returns the document location relative to the site root.
func (d Document) SitePath() string {
	if d.ContentDir == "" {
		return d.Path
	}
	return path.Join(d.ContentDir, d.Path)
}

// IsMDX reports whether the document uses the MDX extension.
func (d Document) IsMDX() bool {
	return d.Ext() == ".mdx"
}
