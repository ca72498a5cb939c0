package frontmatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Recognized frontmatter keys.
const (
	KeyTitle            = "title"
	KeyID               = "id"
	KeySlug             = "slug"
	KeyDescription      = "description"
	KeySidebarLabel     = "sidebar_label"
	KeySidebarPosition  = "sidebar_position"
	KeyDraft            = "draft"
	KeyTags             = "tags"
	KeyCustomEditURL    = "custom_edit_url"
	KeyPaginationPrev   = "pagination_prev"
	KeyPaginationNext   = "pagination_next"
	KeyDisplayedSidebar = "displayed_sidebar"
	KeyLastUpdate       = "last_update"
	KeyKeywords         = "keywords"
	KeyHideTitle        = "hide_title"
	KeyFingerprint      = "fingerprint"
)

// Frontmatter is the decoded header of a document. The zero value is an empty header.
type Frontmatter struct {
	fields map[string]any
	raw    []byte
}

// New wraps decoded fields. raw is the original block and may be nil.
func New(fields map[string]any, raw []byte) Frontmatter {
	if fields == nil {
		fields = map[string]any{}
	}
	return Frontmatter{fields: fields, raw: raw}
}

// Fields returns a shallow copy of every key, including ones the pipeline does not interpret.
func (f Frontmatter) Fields() map[string]any {
	out := make(map[string]any, len(f.fields))
	for k, v := range f.fields {
		out[k] = v
	}
	return out
}

// Keys returns the keys in sorted order.
func (f Frontmatter) Keys() []string {
	keys := make([]string, 0, len(f.fields))
	for k := range f.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Raw returns the undecoded block.
func (f Frontmatter) Raw() []byte { return f.raw }

// Get returns the value stored under key.
func (f Frontmatter) Get(key string) (any, bool) {
	v, ok := f.fields[key]
	return v, ok
}

// Has reports whether key is present, even with a null value.
func (f Frontmatter) Has(key string) bool {
	_, ok := f.fields[key]
	return ok
}

// IsNull reports whether key is present with an explicit null.
func (f Frontmatter) IsNull(key string) bool {
	v, ok := f.fields[key]
	return ok && v == nil
}

// String returns a scalar value as a trimmed string. Non-scalar values yield "".
func (f Frontmatter) String(key string) string {
	switch v := f.fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case int, int64, float64, bool:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

// Bool returns key as a boolean, accepting YAML booleans and "true"/"false" strings.
func (f Frontmatter) Bool(key string) bool {
	switch v := f.fields[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	default:
		return false
	}
}

// Number returns key as a float and whether it held a numeric value.
func (f Frontmatter) Number(key string) (float64, bool) {
	switch v := f.fields[key].(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float64:
		return v, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// Strings returns a list value as strings. A single string becomes a one-element list.
func (f Frontmatter) Strings(key string) []string {
	switch v := f.fields[key].(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	return nil
}

// Title returns the title field.
func (f Frontmatter) Title() string { return f.String(KeyTitle) }

// ID returns the explicit document id.
func (f Frontmatter) ID() string { return f.String(KeyID) }

// Slug returns the explicit slug.
func (f Frontmatter) Slug() string { return f.String(KeySlug) }

// Description returns the explicit description.
func (f Frontmatter) Description() string { return f.String(KeyDescription) }

// SidebarLabel returns the label used in sidebars instead of the title.
func (f Frontmatter) SidebarLabel() string { return f.String(KeySidebarLabel) }

// SidebarPosition returns the ordering hint for autogenerated sidebars.
func (f Frontmatter) SidebarPosition() (float64, bool) { return f.Number(KeySidebarPosition) }

// Draft reports whether the document is a draft.
func (f Frontmatter) Draft() bool { return f.Bool(KeyDraft) }

// HideTitle reports whether the layout should omit the title heading.
func (f Frontmatter) HideTitle() bool { return f.Bool(KeyHideTitle) }

// Keywords returns the SEO keywords.
func (f Frontmatter) Keywords() []string { return f.Strings(KeyKeywords) }

// DisplayedSidebar returns the sidebar forced for this page.
func (f Frontmatter) DisplayedSidebar() string { return f.String(KeyDisplayedSidebar) }

// CustomEditURL returns the edit URL override. disabled is true for an explicit null.
func (f Frontmatter) CustomEditURL() (url string, disabled bool) {
	if f.IsNull(KeyCustomEditURL) {
		return "", true
	}
	return f.String(KeyCustomEditURL), false
}

// Pagination returns the neighbour override for key (KeyPaginationPrev or KeyPaginationNext).
func (f Frontmatter) Pagination(key string) (docID string, suppressed bool) {
	if f.IsNull(key) {
		return "", true
	}
	return f.String(key), false
}

// Tag is an author tag before its permalink is resolved.
type Tag struct {
	Label     string
	Permalink string
}

// Tags returns the tags field. Entries may be strings or {label, permalink} maps.
func (f Frontmatter) Tags() []Tag {
	list, ok := f.fields[KeyTags].([]any)
	if !ok {
		return nil
	}
	tags := make([]Tag, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				tags = append(tags, Tag{Label: s})
			}
		case map[string]any:
			label, _ := v["label"].(string)
			link, _ := v["permalink"].(string)
			if strings.TrimSpace(label) != "" {
				tags = append(tags, Tag{Label: strings.TrimSpace(label), Permalink: strings.TrimSpace(link)})
			}
		}
	}
	return tags
}

// LastUpdate is the manual override for last-update information.
type LastUpdate struct {
	Author string
	Date   time.Time
}

// LastUpdate returns the last_update override, if any.
func (f Frontmatter) LastUpdate() (LastUpdate, bool) {
	m, ok := f.fields[KeyLastUpdate].(map[string]any)
	if !ok {
		return LastUpdate{}, false
	}
	var lu LastUpdate
	if a, ok := m["author"].(string); ok {
		lu.Author = strings.TrimSpace(a)
	}
	switch d := m["date"].(type) {
	case time.Time:
		lu.Date = d
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02", "01/02/2006"} {
			if t, err := time.Parse(layout, strings.TrimSpace(d)); err == nil {
				lu.Date = t
				break
			}
		}
	}
	return lu, lu.Author != "" || !lu.Date.IsZero()
}
