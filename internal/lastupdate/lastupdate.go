// Package lastupdate reports who last changed a document and when.
package lastupdate

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Info is the last change to a file.
type Info struct {
	Author string
	Time   time.Time
}

// Provider looks up last-update information by site-relative path.
// found is false when the file has no recorded history.
type Provider interface {
	LastUpdate(ctx context.Context, sitePath string) (info Info, found bool, err error)
}

// NoopProvider never finds anything.
type NoopProvider struct{}

func (NoopProvider) LastUpdate(context.Context, string) (Info, bool, error) {
	return Info{}, false, nil
}

// StaticProvider serves fixed entries.
type StaticProvider map[string]Info

func (s StaticProvider) LastUpdate(_ context.Context, sitePath string) (Info, bool, error) {
	info, ok := s[sitePath]
	return info, ok, nil
}

// GitProvider reads the newest commit touching a file from the repository
// containing the site. The history is walked once, on the first lookup, into
// an index that later lookups only read.
type GitProvider struct {
	repo *git.Repository
	// prefix is the site directory relative to the worktree root, slash-separated.
	prefix string

	mu    sync.Mutex
	index map[string]Info
}

// NewGitProvider opens the repository enclosing siteDir.
func NewGitProvider(siteDir string) (*GitProvider, error) {
	abs, err := filepath.Abs(siteDir)
	if err != nil {
		return nil, fmt.Errorf("resolve site dir: %w", err)
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	root, err := filepath.EvalSymlinks(wt.Filesystem.Root())
	if err != nil {
		return nil, fmt.Errorf("resolve worktree root: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return nil, fmt.Errorf("locate site in worktree: %w", err)
	}
	prefix := filepath.ToSlash(rel)
	if prefix == "." {
		prefix = ""
	}
	return &GitProvider{repo: repo, prefix: prefix}, nil
}

// LastUpdate returns the author and author time of the newest commit touching sitePath.
func (g *GitProvider) LastUpdate(ctx context.Context, sitePath string) (Info, bool, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, false, err
	}
	idx, err := g.loadIndex(ctx)
	if err != nil {
		return Info{}, false, err
	}
	info, found := idx[path.Join(g.prefix, sitePath)]
	return info, found, nil
}

// loadIndex builds the index on first use. A failed walk is retried by the
// next lookup. The returned map is never written again.
func (g *GitProvider) loadIndex(ctx context.Context) (map[string]Info, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.index != nil {
		return g.index, nil
	}
	idx, err := buildIndex(ctx, g.repo, g.prefix)
	if err != nil {
		return nil, err
	}
	g.index = idx
	return idx, nil
}

// buildIndex walks history from HEAD, newest committer time first, and keeps
// the first commit seen for every file below prefix.
func buildIndex(ctx context.Context, repo *git.Repository, prefix string) (map[string]Info, error) {
	idx := map[string]Info{}
	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash(), Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}
	defer iter.Close()

	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		names, err := changedFiles(c)
		if err != nil {
			return fmt.Errorf("commit %s: %w", c.Hash, err)
		}
		for _, name := range names {
			if prefix != "" && !strings.HasPrefix(name, prefix+"/") {
				continue
			}
			if _, seen := idx[name]; !seen {
				idx[name] = infoFrom(c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk history: %w", err)
	}
	return idx, nil
}

// changedFiles lists the paths a commit adds or modifies relative to its
// first parent. A root commit touches every file in its tree.
func changedFiles(c *object.Commit) ([]string, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	var names []string
	if c.NumParents() == 0 {
		err := tree.Files().ForEach(func(f *object.File) error {
			names = append(names, f.Name)
			return nil
		})
		return names, err
	}
	parent, err := c.Parent(0)
	if err != nil {
		return nil, err
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return nil, err
	}
	changes, err := object.DiffTree(parentTree, tree)
	if err != nil {
		return nil, err
	}
	for _, ch := range changes {
		// Deletions have no destination.
		if ch.To.Name != "" {
			names = append(names, ch.To.Name)
		}
	}
	return names, nil
}

func infoFrom(c *object.Commit) Info {
	return Info{Author: c.Author.Name, Time: c.Author.When.UTC()}
}
