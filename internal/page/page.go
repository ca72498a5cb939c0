// Package page assembles resolved metadata and a compiled body into a
// CompiledPage wrapped in the site layout.
package page

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/pagebuilder/internal/compiler"
	"git.home.luguber.info/inful/pagebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/pagebuilder/internal/metadata"
)

// CompiledPage is a fully rendered page. It is immutable once assembled.
type CompiledPage struct {
	Metadata *metadata.PageMetadata
	Body     *compiler.Body
	// Layout names the layout the page was wrapped in.
	Layout string
	// Fingerprint is the mdfp content fingerprint over frontmatter and body.
	Fingerprint string

	source []byte
	html   []byte
}

// Permalink is shorthand for Metadata.Permalink.
func (p *CompiledPage) Permalink() string { return p.Metadata.Permalink }

// HTML returns the full rendered document.
func (p *CompiledPage) HTML() []byte {
	out := make([]byte, len(p.html))
	copy(out, p.html)
	return out
}

// Render writes the rendered document to w.
func (p *CompiledPage) Render(_ context.Context, w io.Writer) error {
	_, err := w.Write(p.html)
	return err
}

// Source returns the markdown body the page was compiled from.
func (p *CompiledPage) Source() []byte {
	out := make([]byte, len(p.source))
	copy(out, p.source)
	return out
}

// Fingerprint computes the content fingerprint of a document. The stored
// fingerprint field is excluded and a single trailing newline is trimmed from
// the serialized frontmatter before hashing.
func Fingerprint(fm frontmatter.Frontmatter, body []byte) (string, error) {
	canonical := ""
	if len(fm.Keys()) > 0 {
		serialized, err := fm.Canonical(frontmatter.KeyFingerprint)
		if err != nil {
			return "", fmt.Errorf("serialize frontmatter: %w", err)
		}
		canonical = strings.TrimSuffix(string(serialized), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(canonical, string(body)), nil
}

// Input is everything the assembler needs for one page.
type Input struct {
	Metadata    *metadata.PageMetadata
	Body        *compiler.Body
	Frontmatter frontmatter.Frontmatter
	// Source is the body source, used for fingerprinting.
	Source []byte
}

// Assembler wraps compiled bodies in a layout.
type Assembler struct {
	layouts map[string]Layout
	opts    Options
}

// Options configure the assembler.
type Options struct {
	// SiteTitle is appended to page titles.
	SiteTitle string
	// Layout is the default layout name. Defaults to "doc".
	Layout string
	// Lang is the html lang attribute. Defaults to "en".
	Lang string
}

// NewAssembler creates an assembler with the built-in layouts.
func NewAssembler(opts Options) *Assembler {
	if opts.Layout == "" {
		opts.Layout = LayoutDoc
	}
	if opts.Lang == "" {
		opts.Lang = "en"
	}
	return &Assembler{layouts: builtinLayouts(), opts: opts}
}

// Assemble renders a page. Metadata and body are carried over unchanged.
func (a *Assembler) Assemble(ctx context.Context, in Input) (*CompiledPage, error) {
	if in.Metadata == nil || in.Body == nil {
		return nil, fmt.Errorf("assemble: metadata and body are required")
	}
	layoutName := a.opts.Layout
	if name := in.Frontmatter.String("layout"); name != "" {
		layoutName = name
	}
	layout, ok := a.layouts[layoutName]
	if !ok {
		return nil, fmt.Errorf("assemble %s: unknown layout %q", in.Metadata.Source, layoutName)
	}

	fp, err := Fingerprint(in.Frontmatter, in.Source)
	if err != nil {
		return nil, fmt.Errorf("assemble %s: %w", in.Metadata.Source, err)
	}

	p := &CompiledPage{
		Metadata:    in.Metadata,
		Body:        in.Body,
		Layout:      layoutName,
		Fingerprint: fp,
		source:      append([]byte(nil), in.Source...),
	}

	var buf bytes.Buffer
	if err := layout(a.opts, p).Render(ctx, &buf); err != nil {
		return nil, fmt.Errorf("assemble %s: render layout: %w", in.Metadata.Source, err)
	}
	p.html = buf.Bytes()
	return p, nil
}
