package compiler

import (
	"errors"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/pagebuilder/internal/components"
)

var (
	errTagIncomplete = errors.New("tag is not terminated")
	errTagSyntax     = errors.New("invalid tag syntax")
)

// tag is a parsed JSX-style element tag.
type tag struct {
	Name        string
	Props       components.Props
	SelfClosing bool
	Closing     bool
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }

func isNameByte(b byte) bool {
	return b == '_' || b == '.' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func isAttrByte(b byte) bool {
	return isNameByte(b) || b == '-' || b == ':'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// looksLikeComponentTag reports whether s[i:] opens or closes a capitalized tag.
func looksLikeComponentTag(s string, i int) bool {
	if i >= len(s) || s[i] != '<' {
		return false
	}
	if i+1 < len(s) && isUpper(s[i+1]) {
		return true
	}
	return i+2 < len(s) && s[i+1] == '/' && isUpper(s[i+2])
}

// parseTag parses the tag starting at s[i] and returns the index just past it.
func parseTag(s string, i int) (tag, int, error) {
	if !looksLikeComponentTag(s, i) {
		return tag{}, i, errTagSyntax
	}
	i++
	var t tag
	if s[i] == '/' {
		t.Closing = true
		i++
	}
	start := i
	for i < len(s) && isNameByte(s[i]) {
		i++
	}
	t.Name = s[start:i]

	if t.Closing {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			return t, i, errTagIncomplete
		}
		if s[i] != '>' {
			return t, i, errTagSyntax
		}
		return t, i + 1, nil
	}

	t.Props = components.Props{}
	for {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			return t, i, errTagIncomplete
		}
		switch {
		case s[i] == '>':
			return t, i + 1, nil
		case s[i] == '/':
			if i+1 >= len(s) {
				return t, i, errTagIncomplete
			}
			if s[i+1] != '>' {
				return t, i, errTagSyntax
			}
			t.SelfClosing = true
			return t, i + 2, nil
		case isAttrByte(s[i]):
			start := i
			for i < len(s) && isAttrByte(s[i]) {
				i++
			}
			name := s[start:i]
			if i >= len(s) || s[i] != '=' {
				t.Props[name] = true
				continue
			}
			i++
			if i >= len(s) {
				return t, i, errTagIncomplete
			}
			val, next, err := parseAttrValue(s, i)
			if err != nil {
				return t, next, err
			}
			t.Props[name] = val
			i = next
		default:
			return t, i, errTagSyntax
		}
	}
}

func parseAttrValue(s string, i int) (any, int, error) {
	switch q := s[i]; q {
	case '"', '\'':
		end := strings.IndexByte(s[i+1:], q)
		if end < 0 {
			return nil, len(s), errTagIncomplete
		}
		return s[i+1 : i+1+end], i + end + 2, nil
	case '{':
		end, err := matchBrace(s, i)
		if err != nil {
			return nil, end, err
		}
		return decodeExpression(s[i+1 : end]), end + 1, nil
	default:
		return nil, i, errTagSyntax
	}
}

// matchBrace returns the index of the brace closing s[i], skipping quoted strings.
func matchBrace(s string, i int) (int, error) {
	depth := 0
	for j := i; j < len(s); j++ {
		switch c := s[j]; c {
		case '"', '\'', '`':
			end := strings.IndexByte(s[j+1:], c)
			if end < 0 {
				return len(s), errTagIncomplete
			}
			j += end + 1
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j, nil
			}
		}
	}
	return len(s), errTagIncomplete
}

// decodeExpression turns literal expressions into Go values and keeps the rest as source.
func decodeExpression(expr string) any {
	expr = strings.TrimSpace(expr)
	switch expr {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(expr, 64); err == nil {
		return f
	}
	if len(expr) >= 2 {
		if q := expr[0]; (q == '"' || q == '\'' || q == '`') && expr[len(expr)-1] == q && !strings.ContainsRune(expr[1:len(expr)-1], rune(q)) {
			return expr[1 : len(expr)-1]
		}
	}
	return components.Expression(expr)
}
