package compiler

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
)

// headingIDs generates unique anchors for one page across all its markdown segments.
type headingIDs struct {
	used map[string]bool
}

func newHeadingIDs() *headingIDs {
	return &headingIDs{used: map[string]bool{}}
}

// placeholderTag matches the stand-ins for inline components in heading text.
var placeholderTag = regexp.MustCompile(`</?` + placeholderPrefix + `\d+/?>`)

// Generate implements parser.IDs. Anchors come from the heading's text, so
// inline components contribute only their children.
func (h *headingIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	base := slugify(placeholderTag.ReplaceAllString(string(value), ""))
	if base == "" {
		base = "heading"
	}
	id := base
	for i := 1; h.used[id]; i++ {
		id = base + "-" + strconv.Itoa(i)
	}
	h.used[id] = true
	return []byte(id)
}

// Put implements parser.IDs and reserves an explicit anchor.
func (h *headingIDs) Put(value []byte) {
	h.used[string(value)] = true
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
			dash = false
		case r == '-' || unicode.IsSpace(r):
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
