package compiler

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

var codeFormatter = html.New(html.WithClasses(false), html.TabWidth(4))

// highlight renders code with chroma. It returns "" when the block has no
// language or highlighting fails, and the renderer falls back to plain <pre>.
func highlight(code, lang, style string) string {
	if lang == "" {
		return ""
	}
	lexer := lexers.Get(lang)
	if lexer == nil {
		return ""
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return ""
	}
	var b strings.Builder
	if err := codeFormatter.Format(&b, styles.Get(style), it); err != nil {
		return ""
	}
	return b.String()
}
