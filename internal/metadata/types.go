// Package metadata resolves the routing and navigation metadata of a page
// from its frontmatter, source path and the site configuration.
package metadata

// PageRef points at another page by permalink.
type PageRef struct {
	Title     string `json:"title"`
	Permalink string `json:"permalink"`
}

// TagRef is a resolved tag.
type TagRef struct {
	Label     string `json:"label"`
	Permalink string `json:"permalink"`
}

// PageMetadata is everything the layout and route registry need to know about a page.
type PageMetadata struct {
	ID            string `json:"id"`
	UnversionedID string `json:"unversionedId"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	// Source is "@site/" followed by the site-relative source path.
	Source        string   `json:"source"`
	SourceDirName string   `json:"sourceDirName"`
	Slug          string   `json:"slug"`
	Permalink     string   `json:"permalink"`
	Draft         bool     `json:"draft"`
	EditURL       string   `json:"editUrl,omitempty"`
	Tags          []TagRef `json:"tags"`
	Keywords      []string `json:"keywords,omitempty"`
	HideTitle     bool     `json:"hideTitle,omitempty"`
	Version       string   `json:"version"`
	VersionLabel  string   `json:"versionLabel"`

	LastUpdatedBy          string `json:"lastUpdatedBy,omitempty"`
	LastUpdatedAt          int64  `json:"lastUpdatedAt,omitempty"`
	FormattedLastUpdatedAt string `json:"formattedLastUpdatedAt,omitempty"`

	SidebarLabel    string   `json:"sidebarLabel,omitempty"`
	SidebarPosition *float64 `json:"sidebarPosition,omitempty"`
	Sidebar         string   `json:"sidebar,omitempty"`
	Previous        *PageRef `json:"previous,omitempty"`
	Next            *PageRef `json:"next,omitempty"`

	Frontmatter map[string]any `json:"frontMatter"`
}

// DisplayLabel is the label used for the page in sidebars and pagers.
func (m *PageMetadata) DisplayLabel() string {
	if m.SidebarLabel != "" {
		return m.SidebarLabel
	}
	return m.Title
}
