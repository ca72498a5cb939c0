package compiler

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	cerrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
)

// scanState is the line scanner state.
type scanState int

const (
	// stateBody reads markdown lines and looks for component tags.
	stateBody scanState = iota
	// stateFence copies lines verbatim until the fence closes.
	stateFence
	// stateOpenTag accumulates a component opening tag that spans lines.
	stateOpenTag
)

// segment is either a run of markdown lines or a block component.
type segment struct {
	lines     []string
	firstLine int
	comp      *blockComponent
}

type blockComponent struct {
	ref      *ComponentRef
	children []segment
}

// frame is an open block component (or the document root when comp is nil).
type frame struct {
	comp     *blockComponent
	segs     []segment
	buf      []string
	bufLine  int
	inline   []inlineOpen
	openLine int
}

type inlineOpen struct {
	name string
	idx  int
	line int
}

// scanner splits a body into segments. Component references move from
// scanning to inside-the-tag to resolved; an unknown name or an unbalanced tag
// fails the whole body on the spot.
type scanner struct {
	run   *compileRun
	state scanState
	fence string
	stack []*frame

	tagText  string
	tagLine  int
	tagLines []string
}

func (r *compileRun) scan(lines []string) ([]segment, error) {
	s := &scanner{run: r, stack: []*frame{{}}}
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		lineNo := r.in.LineOffset + i + 1
		trimmed := strings.TrimSpace(line)

		switch s.state {
		case stateFence:
			s.top().add(line, lineNo)
			if closesFence(trimmed, s.fence) {
				s.state = stateBody
			}
			continue
		case stateOpenTag:
			s.tagText += "\n" + line
			s.tagLines = append(s.tagLines, line)
			if err := s.tryOpenTag(); err != nil {
				return nil, err
			}
			continue
		}

		if f := opensFence(trimmed); f != "" {
			s.fence = f
			s.state = stateFence
			s.top().add(line, lineNo)
			continue
		}

		if r.in.MDX && len(s.stack) == 1 && isESMStart(line) && s.top().atBlockStart() {
			stmt := []string{line}
			for i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
				i++
				stmt = append(stmt, lines[i])
			}
			joined := strings.Join(stmt, "\n")
			if !isESMStatement(joined) {
				return nil, r.malformed(lineNo, "a paragraph starting with import or export must be an ES module statement; reword it or escape the first word", nil)
			}
			r.body.ESM = append(r.body.ESM, joined)
			continue
		}

		if strings.HasPrefix(trimmed, "</") && looksLikeComponentTag(trimmed, 0) {
			t, end, err := parseTag(trimmed, 0)
			if err == nil && end == len(trimmed) {
				if err := s.closeBlock(t.Name, lineNo); err != nil {
					return nil, err
				}
				continue
			}
		}

		if looksLikeComponentTag(trimmed, 0) && !strings.HasPrefix(trimmed, "</") {
			s.state = stateOpenTag
			s.tagText = trimmed
			s.tagLine = lineNo
			s.tagLines = []string{line}
			if err := s.tryOpenTag(); err != nil {
				return nil, err
			}
			continue
		}

		if err := s.addMarkdown(line, lineNo); err != nil {
			return nil, err
		}
	}

	if s.state == stateOpenTag {
		return nil, r.malformed(s.tagLine, "component tag is never closed with '>'", nil)
	}
	if len(s.stack) > 1 {
		top := s.top()
		return nil, r.malformed(top.openLine, fmt.Sprintf("component <%s> is never closed", top.comp.ref.Name), nil)
	}
	root := s.stack[0]
	if err := s.flush(root); err != nil {
		return nil, err
	}
	return root.segs, nil
}

func (s *scanner) top() *frame { return s.stack[len(s.stack)-1] }

// tryOpenTag attempts to parse the accumulated opening tag. It stays in
// stateOpenTag while the tag is incomplete.
func (s *scanner) tryOpenTag() error {
	t, end, err := parseTag(s.tagText, 0)
	if errors.Is(err, errTagIncomplete) {
		return nil
	}
	s.state = stateBody
	lines := s.tagLines
	s.tagLines = nil
	if err != nil {
		return s.run.malformed(s.tagLine, "invalid component tag", err)
	}

	if strings.TrimSpace(s.tagText[end:]) != "" {
		// The tag shares its line with other content, so it is inline.
		for i, l := range lines {
			if err := s.addMarkdown(l, s.tagLine+i); err != nil {
				return err
			}
		}
		return nil
	}

	if indent := indentOf(lines[0]); indent > 0 && s.top().continuesListItem(indent) {
		return s.run.malformed(s.tagLine, fmt.Sprintf("block component <%s> inside a list item is not supported; move it out of the list or keep it on the item's line", t.Name), nil)
	}

	ref, err := s.run.resolve(t, s.tagLine, false)
	if err != nil {
		return err
	}
	parent := s.top()
	if err := s.flush(parent); err != nil {
		return err
	}
	bc := &blockComponent{ref: ref}
	if t.SelfClosing {
		parent.segs = append(parent.segs, segment{comp: bc, firstLine: s.tagLine})
		return nil
	}
	s.stack = append(s.stack, &frame{comp: bc, openLine: s.tagLine})
	return nil
}

func (s *scanner) closeBlock(name string, lineNo int) error {
	top := s.top()
	if top.comp == nil {
		return s.run.malformed(lineNo, fmt.Sprintf("closing tag </%s> has no matching opening tag", name), nil)
	}
	if top.comp.ref.Name != name {
		return s.run.malformed(lineNo, fmt.Sprintf("expected </%s> but found </%s>", top.comp.ref.Name, name), nil)
	}
	if err := s.flush(top); err != nil {
		return err
	}
	top.comp.children = top.segs
	s.stack = s.stack[:len(s.stack)-1]
	parent := s.top()
	parent.segs = append(parent.segs, segment{comp: top.comp, firstLine: top.openLine})
	return nil
}

func (s *scanner) addMarkdown(line string, lineNo int) error {
	f := s.top()
	rewritten, err := s.run.rewriteInline(line, lineNo, &f.inline)
	if err != nil {
		return err
	}
	f.add(rewritten, lineNo)
	return nil
}

func (s *scanner) flush(f *frame) error {
	if len(f.inline) > 0 {
		open := f.inline[len(f.inline)-1]
		return s.run.malformed(open.line, fmt.Sprintf("inline component <%s> is never closed", open.name), nil)
	}
	if len(f.buf) == 0 {
		return nil
	}
	lines := f.buf
	if f.comp != nil {
		lines = dedent(lines)
	}
	f.segs = append(f.segs, segment{lines: lines, firstLine: f.bufLine})
	f.buf = nil
	return nil
}

func (f *frame) add(line string, lineNo int) {
	if len(f.buf) == 0 {
		if strings.TrimSpace(line) == "" {
			return
		}
		f.bufLine = lineNo
	}
	f.buf = append(f.buf, line)
}

func (f *frame) atBlockStart() bool {
	return len(f.buf) == 0 || strings.TrimSpace(f.buf[len(f.buf)-1]) == ""
}

// continuesListItem reports whether a line indented by indent would belong to
// a list item still open in the frame's pending markdown.
func (f *frame) continuesListItem(indent int) bool {
	for i := len(f.buf) - 1; i >= 0; i-- {
		l := f.buf[i]
		if strings.TrimSpace(l) == "" || indentOf(l) >= indent {
			continue
		}
		return listMarker.MatchString(strings.TrimLeft(l, " \t"))
	}
	return false
}

var listMarker = regexp.MustCompile(`^(?:[-*+]|\d{1,9}[.)])(?:\s|$)`)

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func isESMStart(line string) bool {
	return strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "export ") ||
		strings.HasPrefix(line, "import{") || strings.HasPrefix(line, "export{")
}

var (
	esmImport = regexp.MustCompile(`(?s)^import\s*(?:['"]|[\w$*{].*?\bfrom\s*['"])`)
	esmExport = regexp.MustCompile(`^export\s*(?:\{|\*|(?:const|let|var|function|async|class|default)\b)`)
)

// isESMStatement reports whether stmt has the shape of an import or export
// declaration, as opposed to prose that happens to start with the keyword.
func isESMStatement(stmt string) bool {
	return esmImport.MatchString(stmt) || esmExport.MatchString(stmt)
}

func opensFence(trimmed string) string {
	for _, c := range []byte{'`', '~'} {
		n := 0
		for n < len(trimmed) && trimmed[n] == c {
			n++
		}
		if n >= 3 {
			if c == '`' && strings.ContainsRune(trimmed[n:], '`') {
				return ""
			}
			return trimmed[:n]
		}
	}
	return ""
}

func closesFence(trimmed, fence string) bool {
	if !strings.HasPrefix(trimmed, fence) {
		return false
	}
	return strings.Trim(trimmed, fence[:1]) == ""
}

// dedent removes the whitespace prefix shared by all non-blank lines.
func dedent(lines []string) []string {
	prefix := ""
	first := true
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		ws := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
		if first {
			prefix, first = ws, false
			continue
		}
		for !strings.HasPrefix(ws, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	if prefix == "" {
		return lines
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimPrefix(l, prefix)
	}
	return out
}

func (r *compileRun) malformed(line int, reason string, err error) error {
	return &cerrors.MalformedDocumentError{Path: r.in.Path, Line: line, Reason: reason, Err: err}
}
