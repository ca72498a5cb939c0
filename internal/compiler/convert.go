package compiler

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

// converter maps a goldmark tree onto compiler nodes.
type converter struct {
	run *compileRun
	src []byte
}

func (cv *converter) blocks(parent ast.Node) ([]*Node, error) {
	var out []*Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		node, err := cv.block(n)
		if err != nil {
			return nil, err
		}
		if node != nil {
			out = append(out, node)
		}
	}
	return out, nil
}

func (cv *converter) block(n ast.Node) (*Node, error) {
	switch v := n.(type) {
	case *ast.Paragraph:
		kids, err := cv.inlines(v)
		return &Node{Kind: KindParagraph, Children: kids}, err
	case *ast.TextBlock:
		kids, err := cv.inlines(v)
		return &Node{Kind: KindParagraph, Tight: true, Children: kids}, err
	case *ast.Heading:
		return cv.heading(v)
	case *ast.ThematicBreak:
		return &Node{Kind: KindThematicBreak}, nil
	case *ast.Blockquote:
		kids, err := cv.blocks(v)
		return &Node{Kind: KindBlockquote, Children: kids}, err
	case *ast.List:
		kids, err := cv.blocks(v)
		return &Node{Kind: KindList, Ordered: v.IsOrdered(), Start: v.Start, Tight: v.IsTight, Children: kids}, err
	case *ast.ListItem:
		node := &Node{Kind: KindListItem}
		if first := v.FirstChild(); first != nil {
			if cb, ok := first.FirstChild().(*extast.TaskCheckBox); ok {
				checked := cb.IsChecked
				node.Checked = &checked
			}
		}
		kids, err := cv.blocks(v)
		node.Children = kids
		return node, err
	case *ast.FencedCodeBlock:
		lang := ""
		if v.Info != nil {
			lang = string(v.Language(cv.src))
		}
		code := cv.lines(v)
		return &Node{Kind: KindCodeBlock, Lang: lang, Text: code, highlighted: highlight(code, lang, cv.run.c.opts.HighlightStyle)}, nil
	case *ast.CodeBlock:
		return &Node{Kind: KindCodeBlock, Text: cv.lines(v)}, nil
	case *ast.HTMLBlock:
		raw := cv.lines(v)
		if v.HasClosure() {
			raw += string(v.ClosureLine.Value(cv.src))
		}
		return &Node{Kind: KindRawHTML, Text: raw}, nil
	case *extast.Table:
		return cv.table(v)
	default:
		kids, err := cv.blocks(n)
		if err != nil || len(kids) == 0 {
			return nil, err
		}
		return &Node{Kind: KindParagraph, Children: kids}, nil
	}
}

func (cv *converter) heading(v *ast.Heading) (*Node, error) {
	kids, err := cv.inlines(v)
	if err != nil {
		return nil, err
	}
	node := &Node{Kind: KindHeading, Level: v.Level, Children: kids}
	if id, ok := v.AttributeString("id"); ok {
		switch idv := id.(type) {
		case []byte:
			node.ID = string(idv)
		case string:
			node.ID = idv
		}
	}
	opts := cv.run.c.opts
	if node.ID != "" && v.Level >= opts.TOCMinLevel && v.Level <= opts.TOCMaxLevel {
		cv.run.body.TOC = append(cv.run.body.TOC, TOCItem{Value: PlainText(kids), ID: node.ID, Level: v.Level})
	}
	return node, nil
}

func (cv *converter) table(v *extast.Table) (*Node, error) {
	table := &Node{Kind: KindTable}
	for r := v.FirstChild(); r != nil; r = r.NextSibling() {
		_, header := r.(*extast.TableHeader)
		row := &Node{Kind: KindTableRow, Header: header}
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			cell, ok := c.(*extast.TableCell)
			if !ok {
				continue
			}
			kids, err := cv.inlines(cell)
			if err != nil {
				return nil, err
			}
			align := ""
			if cell.Alignment != extast.AlignNone {
				align = cell.Alignment.String()
			}
			row.Children = append(row.Children, &Node{Kind: KindTableCell, Header: header, Align: align, Children: kids})
		}
		table.Children = append(table.Children, row)
	}
	return table, nil
}

func (cv *converter) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(cv.src))
	}
	return buf.String()
}

type inlineFrame struct {
	idx   int
	nodes []*Node
}

// inlines converts the inline children of parent, folding placeholder pairs into component nodes.
func (cv *converter) inlines(parent ast.Node) ([]*Node, error) {
	var root []*Node
	var stack []inlineFrame
	emit := func(nodes ...*Node) {
		if len(stack) > 0 {
			stack[len(stack)-1].nodes = append(stack[len(stack)-1].nodes, nodes...)
			return
		}
		root = append(root, nodes...)
	}

	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if raw, ok := c.(*ast.RawHTML); ok {
			if idx, kind, ok := parsePlaceholder(cv.rawHTML(raw)); ok && idx < len(cv.run.inline) {
				switch kind {
				case 'o':
					stack = append(stack, inlineFrame{idx: idx})
				case 's':
					node, err := cv.run.buildComponent(cv.run.inline[idx], nil)
					if err != nil {
						return nil, err
					}
					emit(node)
				case 'c':
					if len(stack) == 0 || stack[len(stack)-1].idx != idx {
						return nil, cv.run.malformed(cv.run.inline[idx].Line, fmt.Sprintf("inline component <%s> must open and close within one paragraph", cv.run.inline[idx].Name), nil)
					}
					top := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					node, err := cv.run.buildComponent(cv.run.inline[idx], top.nodes)
					if err != nil {
						return nil, err
					}
					emit(node)
				}
				continue
			}
		}
		nodes, err := cv.inline(c)
		if err != nil {
			return nil, err
		}
		emit(nodes...)
	}
	if len(stack) > 0 {
		ref := cv.run.inline[stack[len(stack)-1].idx]
		return nil, cv.run.malformed(ref.Line, fmt.Sprintf("inline component <%s> must open and close within one paragraph", ref.Name), nil)
	}
	return root, nil
}

func (cv *converter) inline(n ast.Node) ([]*Node, error) {
	switch v := n.(type) {
	case *ast.Text:
		t := string(v.Segment.Value(cv.src))
		if v.SoftLineBreak() {
			t += "\n"
		}
		nodes := []*Node{{Kind: KindText, Text: t}}
		if v.HardLineBreak() {
			nodes = append(nodes, &Node{Kind: KindLineBreak})
		}
		return nodes, nil
	case *ast.String:
		return []*Node{{Kind: KindText, Text: string(v.Value)}}, nil
	case *ast.CodeSpan:
		var b strings.Builder
		for c := v.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				b.Write(t.Segment.Value(cv.src))
				if t.SoftLineBreak() {
					b.WriteByte(' ')
				}
			case *ast.String:
				b.Write(t.Value)
			}
		}
		return []*Node{{Kind: KindCodeSpan, Text: b.String()}}, nil
	case *ast.Emphasis:
		kids, err := cv.inlines(v)
		kind := KindEmphasis
		if v.Level >= 2 {
			kind = KindStrong
		}
		return []*Node{{Kind: kind, Children: kids}}, err
	case *ast.Link:
		kids, err := cv.inlines(v)
		return []*Node{{Kind: KindLink, Destination: cv.resolveLink(string(v.Destination)), Title: string(v.Title), Children: kids}}, err
	case *ast.Image:
		kids, err := cv.inlines(v)
		return []*Node{{Kind: KindImage, Destination: string(v.Destination), Title: string(v.Title), Text: PlainText(kids)}}, err
	case *ast.AutoLink:
		return []*Node{{Kind: KindAutoLink, Destination: string(v.URL(cv.src)), Text: string(v.Label(cv.src))}}, nil
	case *ast.RawHTML:
		return []*Node{{Kind: KindRawHTML, Text: cv.rawHTML(v)}}, nil
	case *extast.Strikethrough:
		kids, err := cv.inlines(v)
		return []*Node{{Kind: KindStrikethrough, Children: kids}}, err
	case *extast.TaskCheckBox:
		return nil, nil
	default:
		return cv.inlines(n)
	}
}

func (cv *converter) rawHTML(v *ast.RawHTML) string {
	var b strings.Builder
	for i := 0; i < v.Segments.Len(); i++ {
		seg := v.Segments.At(i)
		b.Write(seg.Value(cv.src))
	}
	return b.String()
}

func (cv *converter) resolveLink(href string) string {
	if cv.run.in.ResolveLink == nil {
		return href
	}
	return cv.run.in.ResolveLink(href)
}

// PlainText concatenates the text content of nodes.
func PlainText(nodes []*Node) string {
	var b strings.Builder
	Walk(nodes, func(n *Node) bool {
		switch n.Kind {
		case KindText, KindCodeSpan, KindAutoLink:
			b.WriteString(n.Text)
		case KindImage:
			b.WriteString(n.Text)
			return false
		}
		return true
	})
	return strings.Join(strings.Fields(b.String()), " ")
}
