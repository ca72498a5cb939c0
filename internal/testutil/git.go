// Package testutil holds helpers shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// InitGitRepo creates a repository in a temporary directory and returns it
// with its root path.
func InitGitRepo(t *testing.T) (*git.Repository, string) {
	t.Helper()
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)
	return repo, root
}

// CommitFile writes content to rel below root and commits it as author at when.
func CommitFile(t *testing.T, repo *git.Repository, root, rel, content, author string, when time.Time) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add(rel)
	require.NoError(t, err)
	_, err = w.Commit("update "+rel, &git.CommitOptions{
		Author: &object.Signature{Name: author, Email: author + "@example.com", When: when},
	})
	require.NoError(t, err)
}
