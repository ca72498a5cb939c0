// Package versioning describes the docs versions of a site and where each
// one lives on disk and in the URL space.
package versioning

// CurrentVersionName names the working-tree version under the main content directory.
const CurrentVersionName = "current"

// Version is one docs version.
type Version struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	// Path is the URL segment inserted between the route base path and the slug. Empty for the last version.
	Path string `json:"path"`
	// ContentDir is the site-relative directory holding this version's documents.
	ContentDir string `json:"content_dir"`
	// SidebarPath is the site-relative sidebars file; empty when the version has none.
	SidebarPath string `json:"sidebar_path,omitempty"`
	IsCurrent   bool   `json:"is_current"`
	IsLast      bool   `json:"is_last"`
}

// DocIDPrefix is prepended to document ids of this version.
func (v Version) DocIDPrefix() string {
	if v.IsCurrent {
		return ""
	}
	return "version-" + v.Name + "/"
}

// Override replaces defaults for a single version.
type Override struct {
	Label string `yaml:"label"`
	// Path replaces the URL segment; nil keeps the default.
	Path *string `yaml:"path"`
}

// Options configure a Set.
type Options struct {
	// CurrentDir holds the current version's documents (e.g. "docs").
	CurrentDir string
	// CurrentSidebar is the sidebars file of the current version.
	CurrentSidebar string
	// Versions lists released versions, newest first.
	Versions []string
	// LastVersion is the version served without a path segment. Defaults to the newest released version.
	LastVersion    string
	IncludeCurrent bool
	Overrides      map[string]Override
}
