// Package errors defines the build-time error taxonomy of the content pipeline.
//
// Each failure kind has a sentinel for errors.Is checks and a detail type that
// carries the offending page, field, component or route. Detail types match
// their sentinel through Is, so callers never need a type switch just to
// classify a failure.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedDocument indicates a document whose frontmatter block is absent,
	// unterminated, or not a key-value mapping, or whose body has unbalanced component tags.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrMissingRequiredField indicates frontmatter lacks a field the resolver needs.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrComponentNotRegistered indicates a body references a component absent from the registry.
	ErrComponentNotRegistered = errors.New("component not registered")

	// ErrInvalidComponentProps indicates a registered component rejected its props.
	ErrInvalidComponentProps = errors.New("invalid component props")

	// ErrDuplicateRoute indicates two pages resolved to the same permalink.
	ErrDuplicateRoute = errors.New("duplicate route")

	// ErrBrokenLink indicates a rendered page links to a route that does not exist.
	ErrBrokenLink = errors.New("broken link")

	// ErrPagesFailed indicates one or more pages failed to compile.
	ErrPagesFailed = errors.New("pages failed to compile")
)

// MalformedDocumentError reports why a document could not be parsed.
type MalformedDocumentError struct {
	Path   string
	Line   int
	Reason string
	Err    error
}

func (e *MalformedDocumentError) Error() string {
	var b strings.Builder
	b.WriteString("malformed document")
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d", e.Line)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

func (e *MalformedDocumentError) Is(target error) bool { return target == ErrMalformedDocument }

// MissingFieldError reports a required frontmatter field that is absent.
type MissingFieldError struct {
	Path  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q in %s", e.Field, e.Path)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingRequiredField }

// ComponentNotRegisteredError reports an unresolved component reference.
type ComponentNotRegisteredError struct {
	Name string
	Path string
	Line int
}

func (e *ComponentNotRegisteredError) Error() string {
	loc := ""
	if e.Path != "" {
		loc = " in " + e.Path
		if e.Line > 0 {
			loc += fmt.Sprintf(":%d", e.Line)
		}
	}
	return fmt.Sprintf("expected component `%s` to be defined%s: register it in the component registry or import it", e.Name, loc)
}

func (e *ComponentNotRegisteredError) Is(target error) bool { return target == ErrComponentNotRegistered }

// InvalidPropsError reports props a component factory refused.
type InvalidPropsError struct {
	Component string
	Prop      string
	Reason    string
}

func (e *InvalidPropsError) Error() string {
	if e.Prop == "" {
		return fmt.Sprintf("component `%s`: %s", e.Component, e.Reason)
	}
	return fmt.Sprintf("component `%s`: prop %q %s", e.Component, e.Prop, e.Reason)
}

func (e *InvalidPropsError) Is(target error) bool { return target == ErrInvalidComponentProps }

// DuplicateRouteError reports every source that resolved to one permalink.
type DuplicateRouteError struct {
	Permalink string
	Sources   []string
}

func (e *DuplicateRouteError) Error() string {
	return fmt.Sprintf("duplicate route %s: produced by %s", e.Permalink, strings.Join(e.Sources, ", "))
}

func (e *DuplicateRouteError) Is(target error) bool { return target == ErrDuplicateRoute }

// BrokenLinkError reports an internal link without a matching route.
type BrokenLinkError struct {
	Source string
	Href   string
}

func (e *BrokenLinkError) Error() string {
	return fmt.Sprintf("broken link on %s: %s", e.Source, e.Href)
}

func (e *BrokenLinkError) Is(target error) bool { return target == ErrBrokenLink }
