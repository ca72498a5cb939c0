// Package frontmatter splits documents into their YAML header and body and
// exposes the header as typed fields.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Style records the newline shape of a document so Join can reproduce it.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// ErrMissingClosingDelimiter indicates the document opened a frontmatter block but never closed it.
var ErrMissingClosingDelimiter = errors.New("frontmatter opening delimiter found but closing delimiter is missing")

// ErrNotMapping indicates the frontmatter block is valid YAML but not a key-value mapping.
var ErrNotMapping = errors.New("frontmatter is not a key-value mapping")

// Split separates a `---` delimited frontmatter block from the body.
//
// When content does not open with a delimiter line, had is false and body is
// the whole input. A closing delimiter on the final line without a newline
// is accepted.
func Split(content []byte) (fm []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)
	nl := style.Newline

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, style, nil
	}
	start := len(open)
	rest := content[start:]

	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, style, nil
	}
	if bytes.Equal(rest, []byte("---")) {
		return []byte{}, []byte{}, true, style, nil
	}

	closing := []byte(nl + "---" + nl)
	if idx := bytes.Index(rest, closing); idx >= 0 {
		return rest[:idx+len(nl)], rest[idx+len(closing):], true, style, nil
	}
	eofClosing := []byte(nl + "---")
	if bytes.HasSuffix(rest, eofClosing) {
		return rest[:len(rest)-len("---")], []byte{}, true, style, nil
	}
	return nil, nil, false, style, ErrMissingClosingDelimiter
}

// Join rebuilds a document from a frontmatter block and body.
// When had is false the body is returned unchanged.
func Join(fm []byte, body []byte, had bool, style Style) []byte {
	if !had {
		return body
	}
	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}
	delim := []byte("---" + nl)

	out := make([]byte, 0, 2*len(delim)+len(fm)+len(body))
	out = append(out, delim...)
	out = append(out, fm...)
	out = append(out, delim...)
	out = append(out, body...)
	return out
}

// ParseYAML decodes a frontmatter block (without delimiters) into a map.
//
// An empty or comment-only block yields an empty map. Blocks that decode to
// anything other than a mapping fail with ErrNotMapping.
func ParseYAML(fm []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(fm)) == 0 {
		return map[string]any{}, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(fm, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return map[string]any{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: found %s on line %d", ErrNotMapping, kindName(root.Kind), root.Line)
	}

	fields := map[string]any{}
	if err := root.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "a list"
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "a document"
	}
}

func detectStyle(content []byte) Style {
	newline := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		newline = "\r\n"
	}
	return Style{
		Newline:            newline,
		HasTrailingNewline: len(content) > 0 && content[len(content)-1] == '\n',
	}
}
