package revision

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitFile(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "xproject"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "xproject", "project.xml"), []byte("<project/>"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("xproject/project.xml")
	require.NoError(t, err)

	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.org", When: time.Now()},
	})
	require.NoError(t, err)
	return hash.String()[:shortLen]
}

func TestFromGit(t *testing.T) {
	dir := t.TempDir()
	want := commitFile(t, dir)

	got, err := FromGit(filepath.Join(dir, "xproject"))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFromGitDirty(t *testing.T) {
	dir := t.TempDir()
	want := commitFile(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "xproject", "project.xml"), []byte("<project v='2'/>"), 0o644))

	got, err := FromGit(dir)
	require.NoError(t, err)
	assert.Equal(t, want+"+", got)
}

func TestResolveFallback(t *testing.T) {
	dir := t.TempDir()
	_, err := FromGit(dir)
	assert.True(t, errors.Is(err, ErrNoRepository))
	assert.Equal(t, "dev", Resolve(dir, "dev"))
}
