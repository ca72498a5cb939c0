package compiler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/pagebuilder/internal/components"
)

// Options tune compilation.
type Options struct {
	// TOCMinLevel and TOCMaxLevel bound the headings collected into the TOC. Defaults 2 and 3.
	TOCMinLevel int
	TOCMaxLevel int
	// HighlightStyle is a chroma style name. Defaults to "github".
	HighlightStyle string
}

// Compiler compiles page bodies. It is safe for concurrent use.
type Compiler struct {
	registry *components.Registry
	md       goldmark.Markdown
	opts     Options
}

// New creates a compiler resolving components against registry.
func New(registry *components.Registry, opts Options) *Compiler {
	if opts.TOCMinLevel <= 0 {
		opts.TOCMinLevel = 2
	}
	if opts.TOCMaxLevel <= 0 {
		opts.TOCMaxLevel = 3
	}
	if opts.HighlightStyle == "" {
		opts.HighlightStyle = "github"
	}
	return &Compiler{
		registry: registry,
		opts:     opts,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID(), parser.WithHeadingAttribute()),
		),
	}
}

// Input is one body to compile.
type Input struct {
	// Path identifies the document in errors.
	Path   string
	Source []byte
	// LineOffset is the number of document lines before the body, so errors report document lines.
	LineOffset int
	// MDX enables top-level import and export statements. In plain markdown
	// such lines are ordinary paragraphs.
	MDX bool
	// ResolveLink rewrites link destinations, e.g. relative document paths to permalinks. Optional.
	ResolveLink func(href string) string
}

type compileRun struct {
	c      *Compiler
	in     Input
	ids    *headingIDs
	body   *Body
	inline []*ComponentRef
	seen   map[string]bool
}

// Compile produces the node tree of a body. It fails on the first unknown
// component, unbalanced tag or rejected props; no partial body is returned.
func (c *Compiler) Compile(ctx context.Context, in Input) (*Body, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	run := &compileRun{c: c, in: in, ids: newHeadingIDs(), body: &Body{}, seen: map[string]bool{}}

	src := strings.ReplaceAll(string(in.Source), "\r\n", "\n")
	segs, err := run.scan(strings.Split(src, "\n"))
	if err != nil {
		return nil, err
	}
	nodes, err := run.compileSegments(ctx, segs)
	if err != nil {
		return nil, err
	}
	run.body.Nodes = nodes
	return run.body, nil
}

func (r *compileRun) compileSegments(ctx context.Context, segs []segment) ([]*Node, error) {
	var out []*Node
	for _, seg := range segs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if seg.comp == nil {
			nodes, err := r.compileMarkdown(seg)
			if err != nil {
				return nil, err
			}
			out = append(out, nodes...)
			continue
		}
		children, err := r.compileSegments(ctx, seg.comp.children)
		if err != nil {
			return nil, err
		}
		node, err := r.buildComponent(seg.comp.ref, children)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

func (r *compileRun) compileMarkdown(seg segment) ([]*Node, error) {
	src := []byte(strings.Join(seg.lines, "\n") + "\n")
	pctx := parser.NewContext(parser.WithIDs(r.ids))
	doc := r.c.md.Parser().Parse(text.NewReader(src), parser.WithContext(pctx))
	cv := &converter{run: r, src: src}
	return cv.blocks(doc)
}

// buildComponent runs the factory so prop errors surface at compile time.
func (r *compileRun) buildComponent(ref *ComponentRef, children []*Node) (*Node, error) {
	factory, ok := r.c.registry.Lookup(ref.Name)
	if !ok {
		return nil, fmt.Errorf("component %s disappeared from the registry", ref.Name)
	}
	var kids templ.Component
	if len(children) > 0 {
		kids = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			return renderNodes(ctx, w, children)
		})
	}
	rendered, err := factory(ref.Props, kids)
	if err != nil {
		return nil, fmt.Errorf("%s:%d: %w", r.in.Path, ref.Line, err)
	}
	return &Node{Kind: KindComponent, Component: ref, Children: children, rendered: rendered}, nil
}

// HTML renders the body.
func (b *Body) HTML(ctx context.Context) (string, error) {
	var buf bytes.Buffer
	if err := b.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render writes the body's HTML to w.
func (b *Body) Render(ctx context.Context, w io.Writer) error {
	return renderNodes(ctx, w, b.Nodes)
}
