// Package revision resolves the revision passed to XProject stylesheets.
package revision

import (
	"errors"

	"github.com/go-git/go-git/v5"
)

// shortLen is the length of an abbreviated commit hash.
const shortLen = 7

// ErrNoRepository means dir is not inside a git work tree.
var ErrNoRepository = errors.New("not a git repository")

// FromGit returns the abbreviated HEAD commit of the repository enclosing
// dir, with a "+" suffix when the work tree has uncommitted changes.
func FromGit(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", ErrNoRepository
		}
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", err
	}
	rev := head.Hash().String()[:shortLen]

	wt, err := repo.Worktree()
	if err != nil {
		return rev, nil
	}
	status, err := wt.Status()
	if err == nil && !status.IsClean() {
		rev += "+"
	}
	return rev, nil
}

// Resolve returns the git revision of dir, or fallback when none can be
// determined.
func Resolve(dir, fallback string) string {
	rev, err := FromGit(dir)
	if err != nil || rev == "" {
		return fallback
	}
	return rev
}
