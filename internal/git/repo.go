// Package git answers the two git questions devcert has about the project
// it writes certificates into: is the certificate directory listed in
// .gitignore, and will git actually ignore it.
package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ErrNotAGitRepo is returned when no repository encloses the given path.
var ErrNotAGitRepo = errors.New("not a git repository")

// Repository wraps a go-git repository opened from a working directory.
type Repository struct {
	repo *gogit.Repository
	root string
}

// Open finds the repository enclosing path, walking up parent directories.
func Open(ctx context.Context, path string) (*Repository, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, ErrNotAGitRepo
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		// bare repositories have no worktree and nothing to ignore
		return nil, fmt.Errorf("get worktree: %w", err)
	}

	return &Repository{
		repo: repo,
		root: worktree.Filesystem.Root(),
	}, nil
}

// IsWorktree reports whether path is inside a git worktree.
func IsWorktree(ctx context.Context, path string) (bool, error) {
	_, err := Open(ctx, path)
	if errors.Is(err, ErrNotAGitRepo) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Root returns the worktree root directory.
func (r *Repository) Root() string {
	return r.root
}

// IsIgnored reports whether git ignores absPath according to every
// .gitignore in the worktree.
func (r *Repository) IsIgnored(ctx context.Context, absPath string, isDir bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context cancelled: %w", err)
	}

	rel, err := relativeTo(r.root, absPath)
	if err != nil {
		return false, err
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("get worktree: %w", err)
	}

	patterns, err := gitignore.ReadPatterns(worktree.Filesystem, nil)
	if err != nil {
		return false, fmt.Errorf("read ignore patterns: %w", err)
	}

	return gitignore.NewMatcher(patterns).Match(rel, isDir), nil
}

// relativeTo splits absPath into worktree-relative path components.
func relativeTo(root, absPath string) ([]string, error) {
	// Resolve symlinks on both sides so /tmp vs /private/tmp on macOS agree.
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = resolved
	} else if parent, err := filepath.EvalSymlinks(filepath.Dir(absPath)); err == nil {
		absPath = filepath.Join(parent, filepath.Base(absPath))
	}

	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return nil, fmt.Errorf("relative path: %w", err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%s is outside the worktree %s", absPath, root)
	}
	return strings.Split(filepath.ToSlash(rel), "/"), nil
}
