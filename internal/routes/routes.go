// Package routes aggregates compiled pages into the sitewide route registry.
package routes

import (
	"encoding/hex"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/zeebo/blake3"

	cerrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/page"
)

// ErrFrozen is returned when adding to a builder that already produced its registry.
var ErrFrozen = errors.New("route builder is frozen")

// Key normalizes a permalink for comparison: a trailing slash is ignored.
func Key(permalink string) string {
	if len(permalink) > 1 {
		return strings.TrimSuffix(permalink, "/")
	}
	return permalink
}

// Registry maps permalinks to pages. It is read-only.
type Registry struct {
	byKey  map[string]*page.CompiledPage
	keys   []string
	digest string
}

// Build registers every page. When any permalinks collide no registry is
// returned and the error joins one DuplicateRouteError per colliding permalink.
func Build(pages []*page.CompiledPage) (*Registry, error) {
	b := NewBuilder()
	var errs []error
	seen := map[string]*cerrors.DuplicateRouteError{}
	for _, p := range pages {
		err := b.Add(p)
		var dup *cerrors.DuplicateRouteError
		if !errors.As(err, &dup) {
			if err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if prev, ok := seen[Key(dup.Permalink)]; ok {
			prev.Sources = append(prev.Sources, p.Metadata.Source)
			continue
		}
		seen[Key(dup.Permalink)] = dup
		errs = append(errs, dup)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return b.Freeze(), nil
}

// Builder accumulates pages from concurrent workers.
type Builder struct {
	mu     sync.Mutex
	byKey  map[string]*page.CompiledPage
	frozen bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{byKey: map[string]*page.CompiledPage{}}
}

// Add registers a page and fails if its permalink is taken.
func (b *Builder) Add(p *page.CompiledPage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frozen {
		return ErrFrozen
	}
	k := Key(p.Permalink())
	if existing, ok := b.byKey[k]; ok {
		return &cerrors.DuplicateRouteError{
			Permalink: p.Permalink(),
			Sources:   []string{existing.Metadata.Source, p.Metadata.Source},
		}
	}
	b.byKey[k] = p
	return nil
}

// Freeze publishes the registry. Further Adds fail with ErrFrozen.
func (b *Builder) Freeze() *Registry {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frozen = true

	r := &Registry{byKey: make(map[string]*page.CompiledPage, len(b.byKey))}
	for k, p := range b.byKey {
		r.byKey[k] = p
		r.keys = append(r.keys, k)
	}
	sort.Strings(r.keys)

	h := blake3.New()
	for _, k := range r.keys {
		p := r.byKey[k]
		_, _ = io.WriteString(h, p.Permalink()+"\x00"+p.Fingerprint+"\n")
	}
	r.digest = hex.EncodeToString(h.Sum(nil))
	return r
}

// Lookup finds the page served at permalink, with or without a trailing slash.
func (r *Registry) Lookup(permalink string) (*page.CompiledPage, bool) {
	p, ok := r.byKey[Key(permalink)]
	return p, ok
}

// Permalinks returns the registered permalinks in sorted order.
func (r *Registry) Permalinks() []string {
	out := make([]string, len(r.keys))
	for i, k := range r.keys {
		out[i] = r.byKey[k].Permalink()
	}
	return out
}

// Pages returns the pages ordered by permalink.
func (r *Registry) Pages() []*page.CompiledPage {
	out := make([]*page.CompiledPage, len(r.keys))
	for i, k := range r.keys {
		out[i] = r.byKey[k]
	}
	return out
}

// Len returns the number of routes.
func (r *Registry) Len() int { return len(r.keys) }

// Digest is a BLAKE3 hash over the sorted routes and page fingerprints.
func (r *Registry) Digest() string { return r.digest }
