package sidebar

import (
	"math"
	"path"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DocInfo is what autogenerated sidebars need to know about a document.
type DocInfo struct {
	ID string
	// Dir is the slash-separated directory of the source file relative to the version root.
	Dir      string
	Stem     string
	Position *float64
}

var numberPrefix = regexp.MustCompile(`^\d+[-_.]`)

// CategoryLabel turns a directory name into a display label: "02-hybrid-custody" becomes "Hybrid Custody".
func CategoryLabel(dirName string) string {
	name := numberPrefix.ReplaceAllString(dirName, "")
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.English).String(strings.TrimSpace(name))
}

// Expand replaces autogenerated items in every sidebar with items built from docs.
// The receiver is not modified.
func (s *Sidebars) Expand(docs []DocInfo) *Sidebars {
	out := Empty()
	if s == nil {
		return out
	}
	for _, name := range s.names {
		out.names = append(out.names, name)
		out.items[name] = expandItems(s.items[name], docs)
	}
	return out
}

func expandItems(items []Item, docs []DocInfo) []Item {
	var out []Item
	for _, it := range items {
		switch it.Type {
		case ItemAutogenerated:
			out = append(out, generate(strings.Trim(it.DirName, "/"), docs)...)
		case ItemCategory:
			it.Items = expandItems(it.Items, docs)
			out = append(out, it)
		default:
			out = append(out, it)
		}
	}
	return out
}

type entry struct {
	item     Item
	position float64
	key      string
}

// generate builds items for dir: its documents plus one category per sub-directory.
func generate(dir string, docs []DocInfo) []Item {
	if dir == "." {
		dir = ""
	}
	var entries []entry
	subdirs := map[string]bool{}

	for _, d := range docs {
		switch {
		case d.Dir == dir:
			entries = append(entries, entry{item: Item{Type: ItemDoc, ID: d.ID}, position: pos(d.Position), key: d.Stem})
		case dir == "" || strings.HasPrefix(d.Dir, dir+"/"):
			rel := strings.TrimPrefix(strings.TrimPrefix(d.Dir, dir), "/")
			subdirs[strings.SplitN(rel, "/", 2)[0]] = true
		}
	}

	for sub := range subdirs {
		full := path.Join(dir, sub)
		cat := Item{Type: ItemCategory, Label: CategoryLabel(sub), Items: generate(full, docs)}
		position := math.Inf(1)
		if idx, ok := findIndexDoc(full, sub, docs); ok {
			cat.Link = &Link{Type: "doc", ID: idx.ID}
			cat.Items = withoutDoc(cat.Items, idx.ID)
			position = pos(idx.Position)
		}
		entries = append(entries, entry{item: cat, position: position, key: sub})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].position != entries[j].position {
			return entries[i].position < entries[j].position
		}
		return entries[i].key < entries[j].key
	})

	items := make([]Item, len(entries))
	for i, e := range entries {
		items[i] = e.item
	}
	return items
}

func findIndexDoc(dir, base string, docs []DocInfo) (DocInfo, bool) {
	for _, d := range docs {
		if d.Dir != dir {
			continue
		}
		stem := strings.ToLower(numberPrefix.ReplaceAllString(d.Stem, ""))
		if stem == "index" || stem == "readme" || stem == strings.ToLower(numberPrefix.ReplaceAllString(base, "")) {
			return d, true
		}
	}
	return DocInfo{}, false
}

func withoutDoc(items []Item, id string) []Item {
	out := items[:0:0]
	for _, it := range items {
		if it.Type == ItemDoc && it.ID == id {
			continue
		}
		out = append(out, it)
	}
	return out
}

func pos(p *float64) float64 {
	if p == nil {
		return math.Inf(1)
	}
	return *p
}
