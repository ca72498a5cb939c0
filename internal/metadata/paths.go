package metadata

import (
	"path"
	"regexp"
	"strings"
)

var numberPrefix = regexp.MustCompile(`^\d+[-_.]`)

// StripNumberPrefix removes an ordering prefix such as "01-", "2_" or "3." from a name.
func StripNumberPrefix(name string) string {
	stripped := numberPrefix.ReplaceAllString(name, "")
	if stripped == "" {
		return name
	}
	return stripped
}

func stripDirPrefixes(dir string) string {
	if dir == "" {
		return ""
	}
	segs := strings.Split(dir, "/")
	for i, s := range segs {
		segs[i] = StripNumberPrefix(s)
	}
	return strings.Join(segs, "/")
}

// isIndexDoc reports whether stem names the index of dir: "index", "README", or the directory's own name.
func isIndexDoc(stem, dir string) bool {
	s := strings.ToLower(stem)
	if s == "index" || s == "readme" {
		return true
	}
	if dir == "" {
		return false
	}
	return s == strings.ToLower(path.Base(dir))
}

// JoinRoute joins URL path segments with single slashes. The result starts
// with "/" and keeps a trailing "/" when the final segment has one.
func JoinRoute(segments ...string) string {
	var parts []string
	for _, s := range segments {
		for _, p := range strings.Split(s, "/") {
			if p != "" {
				parts = append(parts, p)
			}
		}
	}
	if len(parts) == 0 {
		return "/"
	}
	out := "/" + strings.Join(parts, "/")
	if n := len(segments); n > 0 && strings.HasSuffix(segments[n-1], "/") {
		out += "/"
	}
	return out
}

// tagSlug lower-cases a label and joins its words with dashes.
func tagSlug(label string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r > 127:
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	return b.String()
}
