package compiler

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) s(parts ...string) {
	for _, p := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, p)
	}
}

func esc(s string) string { return templ.EscapeString(s) }

func renderNodes(ctx context.Context, w io.Writer, nodes []*Node) error {
	hw := &htmlWriter{w: w}
	for _, n := range nodes {
		renderNode(ctx, hw, n)
		if hw.err != nil {
			return hw.err
		}
	}
	return nil
}

func renderChildren(ctx context.Context, hw *htmlWriter, n *Node) {
	for _, c := range n.Children {
		renderNode(ctx, hw, c)
	}
}

func renderNode(ctx context.Context, hw *htmlWriter, n *Node) {
	if hw.err != nil {
		return
	}
	switch n.Kind {
	case KindParagraph:
		if n.Tight {
			renderChildren(ctx, hw, n)
			return
		}
		hw.s("<p>")
		renderChildren(ctx, hw, n)
		hw.s("</p>\n")
	case KindHeading:
		tag := "h" + strconv.Itoa(n.Level)
		if n.ID != "" {
			hw.s("<", tag, ` id="`, esc(n.ID), `">`)
		} else {
			hw.s("<", tag, ">")
		}
		renderChildren(ctx, hw, n)
		hw.s("</", tag, ">\n")
	case KindText:
		hw.s(esc(n.Text))
	case KindEmphasis:
		hw.s("<em>")
		renderChildren(ctx, hw, n)
		hw.s("</em>")
	case KindStrong:
		hw.s("<strong>")
		renderChildren(ctx, hw, n)
		hw.s("</strong>")
	case KindStrikethrough:
		hw.s("<del>")
		renderChildren(ctx, hw, n)
		hw.s("</del>")
	case KindCodeSpan:
		hw.s("<code>", esc(n.Text), "</code>")
	case KindCodeBlock:
		if n.highlighted != "" {
			hw.s(n.highlighted, "\n")
			return
		}
		if n.Lang != "" {
			hw.s(`<pre><code class="language-`, esc(n.Lang), `">`)
		} else {
			hw.s("<pre><code>")
		}
		hw.s(esc(n.Text), "</code></pre>\n")
	case KindLink:
		hw.s(`<a href="`, esc(n.Destination), `"`)
		if n.Title != "" {
			hw.s(` title="`, esc(n.Title), `"`)
		}
		hw.s(">")
		renderChildren(ctx, hw, n)
		hw.s("</a>")
	case KindImage:
		hw.s(`<img src="`, esc(n.Destination), `" alt="`, esc(n.Text), `"`)
		if n.Title != "" {
			hw.s(` title="`, esc(n.Title), `"`)
		}
		hw.s(">")
	case KindAutoLink:
		hw.s(`<a href="`, esc(n.Destination), `">`, esc(n.Text), "</a>")
	case KindList:
		tag := "ul"
		if n.Ordered {
			tag = "ol"
		}
		if n.Ordered && n.Start > 1 {
			hw.s("<ol start=\"", strconv.Itoa(n.Start), "\">\n")
		} else {
			hw.s("<", tag, ">\n")
		}
		renderChildren(ctx, hw, n)
		hw.s("</", tag, ">\n")
	case KindListItem:
		if n.Checked != nil {
			hw.s(`<li class="task-list-item"><input type="checkbox" disabled`)
			if *n.Checked {
				hw.s(" checked")
			}
			hw.s("> ")
		} else {
			hw.s("<li>")
		}
		renderChildren(ctx, hw, n)
		hw.s("</li>\n")
	case KindBlockquote:
		hw.s("<blockquote>\n")
		renderChildren(ctx, hw, n)
		hw.s("</blockquote>\n")
	case KindThematicBreak:
		hw.s("<hr>\n")
	case KindTable:
		renderTable(ctx, hw, n)
	case KindTableRow:
		hw.s("<tr>")
		renderChildren(ctx, hw, n)
		hw.s("</tr>\n")
	case KindTableCell:
		tag := "td"
		if n.Header {
			tag = "th"
		}
		if n.Align != "" {
			hw.s("<", tag, ` style="text-align:`, n.Align, `">`)
		} else {
			hw.s("<", tag, ">")
		}
		renderChildren(ctx, hw, n)
		hw.s("</", tag, ">")
	case KindRawHTML:
		hw.s(n.Text)
	case KindLineBreak:
		hw.s("<br>\n")
	case KindComponent:
		if n.rendered == nil {
			hw.err = fmt.Errorf("component %s was not built", n.Component.Name)
			return
		}
		hw.err = n.rendered.Render(ctx, hw.w)
	}
}

func renderTable(ctx context.Context, hw *htmlWriter, n *Node) {
	hw.s("<table>\n")
	inBody := false
	for _, row := range n.Children {
		switch {
		case row.Header:
			hw.s("<thead>\n")
			renderNode(ctx, hw, row)
			hw.s("</thead>\n")
		case !inBody:
			inBody = true
			hw.s("<tbody>\n")
			renderNode(ctx, hw, row)
		default:
			renderNode(ctx, hw, row)
		}
	}
	if inBody {
		hw.s("</tbody>\n")
	}
	hw.s("</table>\n")
}
