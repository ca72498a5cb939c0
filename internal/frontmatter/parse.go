package frontmatter

import (
	"errors"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	cerrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/source"
)

var yamlLine = regexp.MustCompile(`line (\d+)`)

// Parse splits doc into its frontmatter and body source.
//
// Every page must open with a frontmatter block. A missing, unterminated,
// invalid or non-mapping block fails with a *errors.MalformedDocumentError.
func Parse(doc source.Document) (Frontmatter, []byte, error) {
	block, body, had, _, err := Split(doc.Raw)
	if err != nil {
		return Frontmatter{}, nil, &cerrors.MalformedDocumentError{Path: doc.SitePath(), Line: 1, Reason: "unterminated frontmatter block", Err: err}
	}
	if !had {
		return Frontmatter{}, nil, &cerrors.MalformedDocumentError{Path: doc.SitePath(), Line: 1, Reason: "frontmatter block is absent"}
	}

	fields, err := ParseYAML(block)
	if err != nil {
		reason := "frontmatter is not valid YAML"
		if errors.Is(err, ErrNotMapping) {
			reason = "frontmatter must be a key-value mapping"
		}
		return Frontmatter{}, nil, &cerrors.MalformedDocumentError{
			Path:   doc.SitePath(),
			Line:   yamlErrorLine(err),
			Reason: reason,
			Err:    err,
		}
	}
	return New(fields, block), body, nil
}

// yamlErrorLine maps a line inside the block to a document line (the opening delimiter is line 1).
func yamlErrorLine(err error) int {
	var te *yaml.TypeError
	msg := err.Error()
	if errors.As(err, &te) && len(te.Errors) > 0 {
		msg = te.Errors[0]
	}
	m := yamlLine.FindStringSubmatch(msg)
	if m == nil {
		return 0
	}
	n, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return 0
	}
	return n + 1
}
