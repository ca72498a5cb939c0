package sidebar

// Entry is a document's place in a flattened sidebar.
type Entry struct {
	Sidebar string
	DocID   string
	// Label is the sidebar-provided label, empty when the item had none.
	Label string
}

// Navigation indexes flattened sidebars for neighbour lookups.
type Navigation struct {
	order map[string][]Entry
	index map[string]position
}

type position struct {
	sidebar string
	i       int
}

// NewNavigation flattens expanded sidebars. A document listed in several
// sidebars belongs to the first one it appears in.
func NewNavigation(s *Sidebars) *Navigation {
	nav := &Navigation{order: map[string][]Entry{}, index: map[string]position{}}
	for _, name := range s.Names() {
		var flat []Entry
		flatten(name, s.Items(name), &flat)
		nav.order[name] = flat
		for i, e := range flat {
			if _, seen := nav.index[e.DocID]; !seen {
				nav.index[e.DocID] = position{sidebar: name, i: i}
			}
		}
	}
	return nav
}

func flatten(sidebar string, items []Item, out *[]Entry) {
	for _, it := range items {
		switch it.Type {
		case ItemDoc:
			*out = append(*out, Entry{Sidebar: sidebar, DocID: it.ID, Label: it.Label})
		case ItemCategory:
			if it.Link != nil && it.Link.Type == "doc" {
				*out = append(*out, Entry{Sidebar: sidebar, DocID: it.Link.ID, Label: it.Label})
			}
			flatten(sidebar, it.Items, out)
		}
	}
}

// Locate returns the sidebar holding docID and its neighbours. ok is false
// when the document is in no sidebar.
func (n *Navigation) Locate(docID string) (sidebar string, prev, next *Entry, ok bool) {
	if n == nil {
		return "", nil, nil, false
	}
	p, found := n.index[docID]
	if !found {
		return "", nil, nil, false
	}
	flat := n.order[p.sidebar]
	if p.i > 0 {
		e := flat[p.i-1]
		prev = &e
	}
	if p.i+1 < len(flat) {
		e := flat[p.i+1]
		next = &e
	}
	return p.sidebar, prev, next, true
}

// Flattened returns the document order of a sidebar.
func (n *Navigation) Flattened(sidebar string) []Entry {
	return append([]Entry(nil), n.order[sidebar]...)
}

// Contains reports whether the named sidebar exists.
func (n *Navigation) Contains(sidebar string) bool {
	_, ok := n.order[sidebar]
	return ok
}
