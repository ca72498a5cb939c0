package lastupdate

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagebuilder/internal/testutil"
)

func TestGitProvider_NewestCommitWins(t *testing.T) {
	repo, root := testutil.InitGitRepo(t)

	first := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	second := time.Date(2024, 5, 6, 12, 30, 0, 0, time.UTC)
	testutil.CommitFile(t, repo, root, "website/docs/intro.md", "v1", "Ada", first)
	testutil.CommitFile(t, repo, root, "website/docs/other.md", "x", "Bob", first.Add(time.Hour))
	testutil.CommitFile(t, repo, root, "website/docs/intro.md", "v2", "Grace", second)

	p, err := NewGitProvider(filepath.Join(root, "website"))
	require.NoError(t, err)

	info, found, err := p.LastUpdate(context.Background(), "docs/intro.md")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Grace", info.Author)
	require.True(t, second.Equal(info.Time))

	info, found, err = p.LastUpdate(context.Background(), "docs/other.md")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Bob", info.Author)

	_, found, err = p.LastUpdate(context.Background(), "docs/missing.md")
	require.NoError(t, err)
	require.False(t, found)
}

func TestGitProvider_ConcurrentLookups(t *testing.T) {
	repo, root := testutil.InitGitRepo(t)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	testutil.CommitFile(t, repo, root, "README.md", "root", "Root", base)
	files := []string{"docs/a.md", "docs/b.md", "docs/guides/c.md"}
	for i, f := range files {
		testutil.CommitFile(t, repo, root, "site/"+f, f, "Author"+strconv.Itoa(i), base.Add(time.Duration(i+1)*time.Hour))
	}
	testutil.CommitFile(t, repo, root, "site/docs/a.md", "changed", "Editor", base.Add(24*time.Hour))

	p, err := NewGitProvider(filepath.Join(root, "site"))
	require.NoError(t, err)

	want := map[string]string{"docs/a.md": "Editor", "docs/b.md": "Author1", "docs/guides/c.md": "Author2"}
	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(f string) {
			defer wg.Done()
			info, found, err := p.LastUpdate(context.Background(), f)
			switch {
			case err != nil:
				errs <- err
			case !found || info.Author != want[f]:
				errs <- fmt.Errorf("%s: got %q found=%v", f, info.Author, found)
			}
		}(files[i%len(files)])
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// Files outside the site directory are not visible.
	_, found, err := p.LastUpdate(context.Background(), "../README.md")
	require.NoError(t, err)
	require.False(t, found)
}

func TestGitProvider_CanceledContext(t *testing.T) {
	repo, root := testutil.InitGitRepo(t)
	testutil.CommitFile(t, repo, root, "docs/a.md", "a", "Ada", time.Now())
	p, err := NewGitProvider(root)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = p.LastUpdate(ctx, "docs/a.md")
	require.ErrorIs(t, err, context.Canceled)

	_, found, err := p.LastUpdate(context.Background(), "docs/a.md")
	require.NoError(t, err)
	require.True(t, found)
}

func TestNewGitProvider_NotARepository(t *testing.T) {
	_, err := NewGitProvider(t.TempDir())
	require.ErrorIs(t, err, git.ErrRepositoryNotExists)
}

func TestStaticProvider(t *testing.T) {
	p := StaticProvider{"docs/a.md": {Author: "Ada"}}
	info, found, err := p.LastUpdate(context.Background(), "docs/a.md")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Ada", info.Author)

	_, found, _ = NoopProvider{}.LastUpdate(context.Background(), "docs/a.md")
	require.False(t, found)
}
