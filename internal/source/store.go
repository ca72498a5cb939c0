package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/util/sets"
)

var (
	// ErrContentDirNotFound indicates a configured content root does not exist.
	ErrContentDirNotFound = errors.New("content directory not found")
	// ErrContentWalkFailed indicates filesystem traversal of a content root failed.
	ErrContentWalkFailed = errors.New("content directory walk failed")
	// ErrFileReadFailed indicates reading a discovered document failed.
	ErrFileReadFailed = errors.New("content file read failed")
)

// Store enumerates the documents of a site. Implementations are read-only.
type Store interface {
	Documents(ctx context.Context) ([]Document, error)
}

// ContentRoot is one directory of documents belonging to a version.
type ContentRoot struct {
	Version string
	// Dir is relative to the site directory.
	Dir string
}

// FSStore reads documents from content roots below a site directory.
type FSStore struct {
	siteDir    string
	roots      []ContentRoot
	extensions sets.Set[string]
}

// DefaultExtensions lists the document extensions FSStore picks up when none are configured.
var DefaultExtensions = []string{".md", ".mdx"}

// NewFSStore creates a store over roots. A nil extensions slice uses DefaultExtensions.
func NewFSStore(siteDir string, roots []ContentRoot, extensions []string) *FSStore {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := sets.New[string]()
	for _, e := range extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts.Add(e)
	}
	return &FSStore{siteDir: siteDir, roots: roots, extensions: exts}
}

// Roots returns the configured content roots.
func (s *FSStore) Roots() []ContentRoot {
	return append([]ContentRoot(nil), s.roots...)
}

// Documents walks every content root and returns documents sorted by version then path.
func (s *FSStore) Documents(ctx context.Context) ([]Document, error) {
	var docs []Document
	for _, root := range s.roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := s.walkRoot(ctx, root)
		if err != nil {
			return nil, err
		}
		slog.Debug("Content root scanned", logfields.Version(root.Version), logfields.Path(root.Dir), logfields.Count(len(found)))
		docs = append(docs, found...)
	}
	return docs, nil
}

func (s *FSStore) walkRoot(ctx context.Context, root ContentRoot) ([]Document, error) {
	abs := filepath.Join(s.siteDir, filepath.FromSlash(root.Dir))
	if st, err := os.Stat(abs); err != nil || !st.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrContentDirNotFound, abs)
	}

	var docs []Document
	err := filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		name := d.Name()
		if p != abs && isExcludedName(name) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !s.extensions.Has(strings.ToLower(filepath.Ext(name))) {
			return nil
		}
		rel, err := filepath.Rel(abs, p)
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrFileReadFailed, p, err)
		}
		docs = append(docs, Document{
			Path:       filepath.ToSlash(rel),
			Version:    root.Version,
			ContentDir: filepath.ToSlash(root.Dir),
			Raw:        raw,
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrFileReadFailed) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrContentWalkFailed, abs, err)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// isExcludedName skips partials ("_" prefix) and hidden entries.
func isExcludedName(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

// MemoryStore serves a fixed set of documents.
type MemoryStore struct {
	docs []Document
}

// NewMemoryStore creates a store returning docs in the given order.
func NewMemoryStore(docs ...Document) *MemoryStore {
	return &MemoryStore{docs: append([]Document(nil), docs...)}
}

// Documents returns a copy of the stored documents.
func (m *MemoryStore) Documents(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]Document(nil), m.docs...), nil
}
