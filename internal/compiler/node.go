// Package compiler turns the body of a Markdown or MDX document into a tree of
// typed nodes, resolving every component reference against a registry.
package compiler

import (
	"github.com/a-h/templ"

	"git.home.luguber.info/inful/pagebuilder/internal/components"
)

// Kind identifies a node type.
type Kind string

const (
	KindParagraph     Kind = "paragraph"
	KindHeading       Kind = "heading"
	KindText          Kind = "text"
	KindEmphasis      Kind = "emphasis"
	KindStrong        Kind = "strong"
	KindStrikethrough Kind = "strikethrough"
	KindCodeSpan      Kind = "code_span"
	KindCodeBlock     Kind = "code_block"
	KindLink          Kind = "link"
	KindImage         Kind = "image"
	KindAutoLink      Kind = "autolink"
	KindList          Kind = "list"
	KindListItem      Kind = "list_item"
	KindBlockquote    Kind = "blockquote"
	KindThematicBreak Kind = "thematic_break"
	KindTable         Kind = "table"
	KindTableRow      Kind = "table_row"
	KindTableCell     Kind = "table_cell"
	KindRawHTML       Kind = "raw_html"
	KindLineBreak     Kind = "line_break"
	KindComponent     Kind = "component"
)

// Node is one element of a compiled body.
type Node struct {
	Kind Kind
	// Text holds the literal content of text, code span, code block and raw HTML nodes.
	Text string
	// Level is the heading level.
	Level int
	// ID is the heading anchor.
	ID string
	// Lang is the info string language of a code block.
	Lang string
	// Destination is the href of links and autolinks, or the src of images.
	Destination string
	Title       string
	Ordered     bool
	Start       int
	// Tight lists render paragraphs in their items without <p>.
	Tight bool
	// Align is the table cell alignment: "", "left", "center" or "right".
	Align  string
	Header bool
	// Checked is set for task list items; nil for plain items.
	Checked   *bool
	Children  []*Node
	Component *ComponentRef

	highlighted string
	rendered    templ.Component
}

// ComponentRef is a resolved component reference.
type ComponentRef struct {
	Name  string
	Props components.Props
	// Line is the document line of the opening tag.
	Line   int
	Inline bool
}

// TOCItem is one table of contents entry.
type TOCItem struct {
	Value string `json:"value"`
	ID    string `json:"id"`
	Level int    `json:"level"`
}

// Body is a compiled page body.
type Body struct {
	Nodes []*Node
	TOC   []TOCItem
	// ESM holds import and export statements. They are recorded, never rendered.
	ESM []string
	// Components lists every referenced component name once, in first-use order.
	Components []string
}

// Walk visits nodes depth first. Returning false from fn skips a node's children.
func Walk(nodes []*Node, fn func(*Node) bool) {
	for _, n := range nodes {
		if fn(n) {
			Walk(n.Children, fn)
		}
	}
}
