package metadata

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var excerptParser = goldmark.New()

// FirstParagraph returns the plain text of the first prose paragraph of body.
// ESM lines and paragraphs made only of markup are skipped.
func FirstParagraph(body []byte) string {
	doc := excerptParser.Parser().Parse(text.NewReader(body))
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if n.Kind() != ast.KindParagraph {
			continue
		}
		var b strings.Builder
		collectText(n, body, &b)
		t := strings.Join(strings.Fields(b.String()), " ")
		if t == "" || strings.HasPrefix(t, "import ") || strings.HasPrefix(t, "export ") {
			continue
		}
		return t
	}
	return ""
}

func collectText(n ast.Node, src []byte, b *strings.Builder) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.RawHTML:
		default:
			collectText(c, src, b)
		}
	}
}
