// Package sidebar loads navigation sidebars and answers where a document sits
// in them.
//
// Sidebars are authored as JSONC (JSON with comments and trailing commas):
//
//	{
//	  "docs": [
//	    "intro",
//	    {"type": "category", "label": "Concepts", "items": [{"type": "autogenerated", "dirName": "concepts"}]},
//	    {"type": "link", "label": "GitHub", "href": "https://github.com/example/site"}
//	  ]
//	}
//
// A bare string is shorthand for a doc item, and an object with a single
// array-valued key is shorthand for a category.
package sidebar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// ItemType distinguishes sidebar entries.
type ItemType string

const (
	ItemDoc           ItemType = "doc"
	ItemCategory      ItemType = "category"
	ItemLink          ItemType = "link"
	ItemAutogenerated ItemType = "autogenerated"
)

// ErrInvalidSidebar indicates a sidebars file that cannot be decoded into items.
var ErrInvalidSidebar = errors.New("invalid sidebar definition")

// Item is one sidebar entry.
type Item struct {
	Type ItemType `json:"type"`
	// ID is the doc id for doc items.
	ID    string `json:"id,omitempty"`
	Label string `json:"label,omitempty"`
	// Href is the target of link items.
	Href string `json:"href,omitempty"`
	// DirName is the directory expanded by autogenerated items, relative to the version content root.
	DirName   string `json:"dirName,omitempty"`
	Items     []Item `json:"items,omitempty"`
	Link      *Link  `json:"link,omitempty"`
	Collapsed *bool  `json:"collapsed,omitempty"`
}

// Link makes a category clickable.
type Link struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

type rawItem Item

// UnmarshalJSON accepts the full object form and both shorthand forms.
func (it *Item) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*it = Item{Type: ItemDoc, ID: id}
		return nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSidebar, err)
	}
	if _, typed := probe["type"]; !typed && len(probe) == 1 {
		for label, raw := range probe {
			if raw = bytes.TrimSpace(raw); len(raw) == 0 || raw[0] != '[' {
				break
			}
			var items []Item
			if err := json.Unmarshal(raw, &items); err != nil {
				return fmt.Errorf("%w: category %q: %w", ErrInvalidSidebar, label, err)
			}
			*it = Item{Type: ItemCategory, Label: label, Items: items}
			return nil
		}
	}

	var r rawItem
	if err := json.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSidebar, err)
	}
	*it = Item(r)
	if it.Type == "" && it.ID != "" {
		it.Type = ItemDoc
	}
	return it.validate()
}

func (it *Item) validate() error {
	switch it.Type {
	case ItemDoc:
		if it.ID == "" {
			return fmt.Errorf("%w: doc item without id", ErrInvalidSidebar)
		}
	case ItemCategory:
		if it.Label == "" {
			return fmt.Errorf("%w: category without label", ErrInvalidSidebar)
		}
		if it.Link != nil && it.Link.Type == "doc" && it.Link.ID == "" {
			return fmt.Errorf("%w: category %q links to a doc without id", ErrInvalidSidebar, it.Label)
		}
	case ItemLink:
		if it.Href == "" {
			return fmt.Errorf("%w: link item without href", ErrInvalidSidebar)
		}
	case ItemAutogenerated:
	default:
		return fmt.Errorf("%w: unknown item type %q", ErrInvalidSidebar, it.Type)
	}
	return nil
}

// Sidebars holds named sidebars in file order.
type Sidebars struct {
	names []string
	items map[string][]Item
}

// Names returns sidebar ids in file order.
func (s *Sidebars) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Items returns the top-level items of the named sidebar.
func (s *Sidebars) Items(name string) []Item {
	if s == nil {
		return nil
	}
	return s.items[name]
}

// Empty returns sidebars with no entries.
func Empty() *Sidebars {
	return &Sidebars{items: map[string][]Item{}}
}

// Parse decodes JSONC sidebars, keeping the order sidebars appear in the file.
func Parse(data []byte) (*Sidebars, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSidebar, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: top level must be an object of sidebars", ErrInvalidSidebar)
	}

	sb := Empty()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSidebar, err)
		}
		name, _ := tok.(string)
		var items []Item
		if err := dec.Decode(&items); err != nil {
			return nil, fmt.Errorf("sidebar %q: %w", name, err)
		}
		if _, dup := sb.items[name]; dup {
			return nil, fmt.Errorf("%w: sidebar %q defined twice", ErrInvalidSidebar, name)
		}
		sb.names = append(sb.names, name)
		sb.items[name] = items
	}
	return sb, nil
}

// Load reads and parses a sidebars file. A missing file yields empty sidebars.
func Load(path string) (*Sidebars, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	sb, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sb, nil
}
