// Package pipeline runs a site build: it parses and resolves every document,
// wires sidebar navigation, compiles and assembles pages in parallel and
// freezes them into a route registry.
//
// Page failures are collected rather than aborting the build at the first
// one. Whether they fail the build depends on Options.OnPageError; duplicate
// routes always do.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/pagebuilder/internal/compiler"
	"git.home.luguber.info/inful/pagebuilder/internal/config"
	cerrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/pagebuilder/internal/linkcheck"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/metadata"
	"git.home.luguber.info/inful/pagebuilder/internal/metrics"
	"git.home.luguber.info/inful/pagebuilder/internal/observability"
	"git.home.luguber.info/inful/pagebuilder/internal/page"
	"git.home.luguber.info/inful/pagebuilder/internal/routes"
	"git.home.luguber.info/inful/pagebuilder/internal/sidebar"
	"git.home.luguber.info/inful/pagebuilder/internal/source"
	"git.home.luguber.info/inful/pagebuilder/internal/versioning"
)

// Site is the versioned structure documents are placed into.
type Site struct {
	Versions *versioning.Set
	// Sidebars maps version names to their sidebars. A missing entry means no sidebars.
	Sidebars map[string]*sidebar.Sidebars
}

// Stages are the collaborators a build runs documents through.
type Stages struct {
	Store     source.Store
	Resolver  *metadata.Resolver
	Compiler  *compiler.Compiler
	Assembler *page.Assembler
}

// Options control one build.
type Options struct {
	// Concurrency bounds parallel page work. Defaults to runtime.NumCPU().
	Concurrency int
	// OnPageError is fail (default) or skip.
	OnPageError config.PageErrorMode
	// OnBrokenLinks is ignore, warn (default) or throw.
	OnBrokenLinks config.LinkMode
	IncludeDrafts bool
}

// Pipeline builds route registries. A Pipeline may run many builds; each
// build is independent and produces a fresh registry.
type Pipeline struct {
	stages   Stages
	site     Site
	opts     Options
	recorder metrics.Recorder
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder sets the metrics recorder. Defaults to metrics.NoopRecorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// New creates a pipeline.
func New(stages Stages, site Site, opts Options, options ...Option) (*Pipeline, error) {
	if stages.Store == nil || stages.Resolver == nil || stages.Compiler == nil || stages.Assembler == nil {
		return nil, errors.New("pipeline: store, resolver, compiler and assembler are required")
	}
	if site.Versions == nil {
		return nil, errors.New("pipeline: site versions are required")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	if opts.OnPageError == "" {
		opts.OnPageError = config.PageErrorFail
	}
	if opts.OnBrokenLinks == "" {
		opts.OnBrokenLinks = config.LinkWarn
	}
	p := &Pipeline{stages: stages, site: site, opts: opts, recorder: metrics.NoopRecorder{}}
	for _, o := range options {
		o(p)
	}
	return p, nil
}

// Result is the outcome of a build. Report is always set; Registry only when
// the build succeeded.
type Result struct {
	Registry *routes.Registry
	Report   *BuildReport
}

// entry carries one document through the stages.
type entry struct {
	doc  source.Document
	fm   frontmatter.Frontmatter
	body []byte
	meta *metadata.PageMetadata
	page *page.CompiledPage
	err  error
}

// Build runs every stage once. The returned error is classified for the CLI.
func (p *Pipeline) Build(ctx context.Context) (*Result, error) {
	buildID := uuid.NewString()
	ctx = observability.WithBuildID(ctx, buildID)
	report := newBuildReport(buildID)

	reg, err := p.build(ctx, report)
	canceled := err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
	err = Classify(err)
	report.finish(err, canceled)

	p.recorder.ObserveBuildDuration(report.Duration())
	p.recorder.IncBuildOutcome(string(report.Outcome))

	if err != nil {
		observability.ErrorContext(ctx, "Build failed", logfields.Error(err), logfields.DurationMS(float64(report.Duration().Milliseconds())))
		return &Result{Report: report}, err
	}
	p.recorder.SetRoutes(reg.Len())
	observability.InfoContext(ctx, "Build finished",
		logfields.Count(reg.Len()),
		logfields.DurationMS(float64(report.Duration().Milliseconds())))
	return &Result{Registry: reg, Report: report}, nil
}

func (p *Pipeline) build(ctx context.Context, report *BuildReport) (*routes.Registry, error) {
	var docs []source.Document
	err := p.runStage(ctx, report, StageLoad, func(ctx context.Context) (bool, error) {
		var err error
		docs, err = p.stages.Store.Documents(ctx)
		return false, err
	})
	if err != nil {
		return nil, err
	}
	report.Documents = len(docs)

	entries := make([]*entry, len(docs))
	for i, d := range docs {
		entries[i] = &entry{doc: d}
	}

	if err := p.runStage(ctx, report, StageResolve, func(ctx context.Context) (bool, error) {
		err := p.parallel(ctx, entries, p.resolve)
		return hasErrors(entries), err
	}); err != nil {
		return nil, err
	}
	entries = p.publishable(ctx, entries, report)

	var links map[string]string
	if err := p.runStage(ctx, report, StageNavigate, func(ctx context.Context) (bool, error) {
		links = p.navigate(ctx, entries)
		return false, ctx.Err()
	}); err != nil {
		return nil, err
	}

	builder := routes.NewBuilder()
	var dupMu sync.Mutex
	var dupes []error
	if err := p.runStage(ctx, report, StageCompile, func(ctx context.Context) (bool, error) {
		err := p.parallel(ctx, entries, func(ctx context.Context, e *entry) {
			p.compile(ctx, e, links)
			if e.err != nil {
				return
			}
			if err := builder.Add(e.page); err != nil {
				dupMu.Lock()
				dupes = append(dupes, err)
				dupMu.Unlock()
			}
		})
		if err != nil {
			return false, err
		}
		for _, e := range entries {
			if e.err != nil {
				p.recordFailure(ctx, e, StageCompile, report)
			}
		}
		return hasErrors(entries), nil
	}); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.err == nil {
			report.Compiled++
			p.recorder.IncPageResult(metrics.PageCompiled)
		}
	}

	if len(report.Failures) > 0 {
		if p.opts.OnPageError != config.PageErrorSkip {
			errs := []error{fmt.Errorf("%w: %d of %d pages", cerrors.ErrPagesFailed, len(report.Failures), report.Documents)}
			for _, f := range report.Failures {
				errs = append(errs, f.Err)
			}
			return nil, errors.Join(errs...)
		}
		report.Skipped = len(report.Failures)
		for range report.Failures {
			p.recorder.IncPageResult(metrics.PageSkipped)
		}
	}

	var reg *routes.Registry
	if err := p.runStage(ctx, report, StageRegister, func(ctx context.Context) (bool, error) {
		if len(dupes) > 0 {
			return false, errors.Join(sortedDupes(dupes)...)
		}
		reg = builder.Freeze()
		return false, nil
	}); err != nil {
		return nil, err
	}
	report.Routes = reg.Len()
	report.Digest = reg.Digest()

	if p.opts.OnBrokenLinks == config.LinkIgnore {
		return reg, nil
	}
	if err := p.runStage(ctx, report, StageLinkCheck, func(ctx context.Context) (bool, error) {
		return p.checkLinks(ctx, reg, report)
	}); err != nil {
		return nil, err
	}
	return reg, nil
}

// parallel runs fn over entries with bounded concurrency. Only cancellation
// stops it early; page errors are recorded on the entries.
func (p *Pipeline) parallel(ctx context.Context, entries []*entry, fn func(context.Context, *entry)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for _, e := range entries {
		if e.err != nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(observability.WithPage(gctx, e.doc.Version, e.doc.Path), e)
			return nil
		})
	}
	return g.Wait()
}

func (p *Pipeline) resolve(ctx context.Context, e *entry) {
	fm, body, err := frontmatter.Parse(e.doc)
	if err != nil {
		e.err = err
		return
	}
	meta, err := p.stages.Resolver.Resolve(ctx, e.doc, fm, body)
	if err != nil {
		e.err = err
		return
	}
	e.fm, e.body, e.meta = fm, body, meta
}

func (p *Pipeline) compile(ctx context.Context, e *entry, links map[string]string) {
	body, err := p.stages.Compiler.Compile(ctx, compiler.Input{
		Path:        e.doc.SitePath(),
		Source:      e.body,
		LineOffset:  bytes.Count(e.doc.Raw[:len(e.doc.Raw)-len(e.body)], []byte("\n")),
		MDX:         e.doc.IsMDX(),
		ResolveLink: func(href string) string { return resolveDocLink(e.doc, href, links) },
	})
	if err != nil {
		e.err = err
		return
	}
	pg, err := p.stages.Assembler.Assemble(ctx, page.Input{Metadata: e.meta, Body: body, Frontmatter: e.fm, Source: e.body})
	if err != nil {
		e.err = err
		return
	}
	e.page = pg
}

func hasErrors(entries []*entry) bool {
	for _, e := range entries {
		if e.err != nil {
			return true
		}
	}
	return false
}

// publishable records failures of the resolve stage, drops drafts and
// returns the entries that continue.
func (p *Pipeline) publishable(ctx context.Context, entries []*entry, report *BuildReport) []*entry {
	out := entries[:0]
	for _, e := range entries {
		switch {
		case e.err != nil:
			p.recordFailure(ctx, e, StageResolve, report)
		case e.meta.Draft && !p.opts.IncludeDrafts:
			report.Drafts++
			p.recorder.IncPageResult(metrics.PageDraft)
		default:
			out = append(out, e)
		}
	}
	return out
}

func (p *Pipeline) recordFailure(ctx context.Context, e *entry, stage StageName, report *BuildReport) {
	report.Failures = append(report.Failures, PageFailure{Source: e.doc.SitePath(), Stage: stage, Err: e.err})
	p.recorder.IncPageResult(metrics.PageFailed)
	observability.WarnContext(observability.WithPage(ctx, e.doc.Version, e.doc.Path), "Page failed", logfields.Error(e.err))
}

// sortedDupes orders duplicate route errors by message; Add calls race.
func sortedDupes(dupes []error) []error {
	out := append([]error(nil), dupes...)
	sort.Slice(out, func(i, j int) bool { return out[i].Error() < out[j].Error() })
	return out
}

// navigate expands sidebars, fills sidebar and pager fields and returns the
// document-path to permalink map used for relative links.
func (p *Pipeline) navigate(ctx context.Context, entries []*entry) map[string]string {
	byVersion := map[string][]*metadata.PageMetadata{}
	links := make(map[string]string, len(entries))
	for _, e := range entries {
		byVersion[e.doc.Version] = append(byVersion[e.doc.Version], e.meta)
		links[e.doc.Version+":"+e.doc.Path] = e.meta.Permalink
	}
	for _, v := range p.site.Versions.All() {
		metas := byVersion[v.Name]
		if len(metas) == 0 {
			continue
		}
		sb := p.site.Sidebars[v.Name]
		if sb == nil {
			sb = sidebar.Empty()
		}
		nav := sidebar.NewNavigation(sb.Expand(metadata.DocInfos(metas)))
		cat := metadata.NewCatalog(metas)
		for _, m := range metas {
			metadata.Navigate(m, nav, cat)
		}
		observability.DebugContext(ctx, "Navigation resolved", logfields.Version(v.Name), logfields.Count(len(metas)))
	}
	return links
}

func (p *Pipeline) checkLinks(ctx context.Context, reg *routes.Registry, report *BuildReport) (bool, error) {
	broken, err := linkcheck.NewChecker(reg).Check(ctx, reg.Pages())
	if err != nil {
		return false, err
	}
	p.recorder.IncBrokenLinks(len(broken))
	if len(broken) == 0 {
		return false, nil
	}
	errs := make([]error, 0, len(broken))
	for _, b := range broken {
		report.BrokenLinks = append(report.BrokenLinks, b.Error())
		errs = append(errs, b)
	}
	if p.opts.OnBrokenLinks == config.LinkThrow {
		return false, errors.Join(errs...)
	}
	for _, b := range broken {
		observability.WarnContext(ctx, "Broken link", logfields.Permalink(b.Source), logfields.Href(b.Href))
		report.Warnings = append(report.Warnings, b)
	}
	return true, nil
}

// resolveDocLink rewrites relative links to .md/.mdx documents into permalinks,
// keeping any fragment. Links that match no document are returned unchanged.
func resolveDocLink(doc source.Document, href string, links map[string]string) string {
	target, frag, _ := strings.Cut(href, "#")
	if target == "" || strings.Contains(target, "://") || strings.HasPrefix(target, "/") {
		return href
	}
	ext := strings.ToLower(path.Ext(target))
	if ext != ".md" && ext != ".mdx" {
		return href
	}
	rel := path.Clean(path.Join(doc.Dir(), target))
	permalink, ok := links[doc.Version+":"+rel]
	if !ok {
		return href
	}
	if frag != "" {
		return permalink + "#" + frag
	}
	return permalink
}
