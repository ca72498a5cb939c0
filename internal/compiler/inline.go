package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	cerrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
)

// placeholder names stand in for inline component tags while goldmark parses
// the surrounding markdown. goldmark keeps them as raw HTML.
const placeholderPrefix = "pbc-"

// resolve looks up a tag's component and records the reference.
func (r *compileRun) resolve(t tag, line int, inline bool) (*ComponentRef, error) {
	if _, ok := r.c.registry.Lookup(t.Name); !ok {
		return nil, &cerrors.ComponentNotRegisteredError{Name: t.Name, Path: r.in.Path, Line: line}
	}
	ref := &ComponentRef{Name: t.Name, Props: t.Props, Line: line, Inline: inline}
	if !r.seen[t.Name] {
		r.seen[t.Name] = true
		r.body.Components = append(r.body.Components, t.Name)
	}
	return ref, nil
}

// rewriteInline replaces component tags on a markdown line with placeholders.
// Tags inside code spans are left alone. open tracks tags awaiting their
// closing tag within the current markdown segment.
func (r *compileRun) rewriteInline(line string, lineNo int, open *[]inlineOpen) (string, error) {
	if !strings.Contains(line, "<") {
		return line, nil
	}
	var b strings.Builder
	for i := 0; i < len(line); {
		c := line[i]
		if c == '`' {
			end := skipCodeSpan(line, i)
			b.WriteString(line[i:end])
			i = end
			continue
		}
		if c == '\\' && i+1 < len(line) {
			b.WriteString(line[i : i+2])
			i += 2
			continue
		}
		if c != '<' || !looksLikeComponentTag(line, i) {
			b.WriteByte(c)
			i++
			continue
		}

		t, end, err := parseTag(line, i)
		if errors.Is(err, errTagIncomplete) {
			return "", r.malformed(lineNo, "inline component tag must fit on one line", err)
		}
		if err != nil {
			return "", r.malformed(lineNo, "invalid component tag", err)
		}

		switch {
		case t.Closing:
			if len(*open) == 0 {
				return "", r.malformed(lineNo, fmt.Sprintf("closing tag </%s> has no matching opening tag", t.Name), nil)
			}
			top := (*open)[len(*open)-1]
			if top.name != t.Name {
				return "", r.malformed(lineNo, fmt.Sprintf("expected </%s> but found </%s>", top.name, t.Name), nil)
			}
			*open = (*open)[:len(*open)-1]
			b.WriteString("</" + placeholderPrefix + strconv.Itoa(top.idx) + ">")
		default:
			ref, err := r.resolve(t, lineNo, true)
			if err != nil {
				return "", err
			}
			idx := len(r.inline)
			r.inline = append(r.inline, ref)
			if t.SelfClosing {
				b.WriteString("<" + placeholderPrefix + strconv.Itoa(idx) + "/>")
			} else {
				*open = append(*open, inlineOpen{name: t.Name, idx: idx, line: lineNo})
				b.WriteString("<" + placeholderPrefix + strconv.Itoa(idx) + ">")
			}
		}
		i = end
	}
	return b.String(), nil
}

// skipCodeSpan returns the index after the code span starting at s[i], or
// after the backtick run when it has no closing run on this line.
func skipCodeSpan(s string, i int) int {
	n := 0
	for i+n < len(s) && s[i+n] == '`' {
		n++
	}
	run := s[i : i+n]
	for j := i + n; j < len(s); {
		k := strings.Index(s[j:], run)
		if k < 0 {
			break
		}
		k += j
		m := 0
		for k+m < len(s) && s[k+m] == '`' {
			m++
		}
		if m == n {
			return k + m
		}
		j = k + m
	}
	return i + n
}

// parsePlaceholder recognizes a rewritten tag. kind is 'o' (open), 'c' (close) or 's' (self-closing).
func parsePlaceholder(raw string) (idx int, kind byte, ok bool) {
	if !strings.HasPrefix(raw, "<") || !strings.HasSuffix(raw, ">") {
		return 0, 0, false
	}
	inner := raw[1 : len(raw)-1]
	kind = 'o'
	if strings.HasPrefix(inner, "/") {
		kind = 'c'
		inner = inner[1:]
	} else if strings.HasSuffix(inner, "/") {
		kind = 's'
		inner = inner[:len(inner)-1]
	}
	if !strings.HasPrefix(inner, placeholderPrefix) {
		return 0, 0, false
	}
	n, err := strconv.Atoi(inner[len(placeholderPrefix):])
	if err != nil {
		return 0, 0, false
	}
	return n, kind, true
}
