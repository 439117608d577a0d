package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if _, err := gogit.PlainInit(dir, false); err != nil {
		t.Fatalf("init repo: %v", err)
	}
	return dir
}

func TestOpen_NotARepo(t *testing.T) {
	_, err := Open(context.Background(), t.TempDir())
	if !errors.Is(err, ErrNotAGitRepo) {
		t.Errorf("Open() error = %v, want ErrNotAGitRepo", err)
	}
}

func TestOpen_DetectsParentRepo(t *testing.T) {
	dir := initRepo(t)
	sub := filepath.Join(dir, "web", "app")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	repo, err := Open(context.Background(), sub)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	wantRoot, _ := filepath.EvalSymlinks(dir)
	gotRoot, _ := filepath.EvalSymlinks(repo.Root())
	if gotRoot != wantRoot {
		t.Errorf("Root() = %q, want %q", gotRoot, wantRoot)
	}
}

func TestIsWorktree(t *testing.T) {
	ctx := context.Background()

	ok, err := IsWorktree(ctx, initRepo(t))
	if err != nil || !ok {
		t.Errorf("IsWorktree(repo) = %v, %v; want true, nil", ok, err)
	}

	ok, err = IsWorktree(ctx, t.TempDir())
	if err != nil || ok {
		t.Errorf("IsWorktree(plain dir) = %v, %v; want false, nil", ok, err)
	}
}

func TestRepository_IsIgnored(t *testing.T) {
	dir := initRepo(t)
	if err := os.WriteFile(filepath.Join(dir, GitignoreFile), []byte("old-certificates/\nnode_modules\n"), 0644); err != nil {
		t.Fatalf("write .gitignore: %v", err)
	}

	repo, err := Open(context.Background(), dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{"node_modules", true},
		{"old-certificates", true},
		// Present as a substring in .gitignore, but not ignored by git.
		{"certificates", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := repo.IsIgnored(context.Background(), filepath.Join(dir, tt.path), true)
			if err != nil {
				t.Fatalf("IsIgnored() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsIgnored(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestRepository_IsIgnored_OutsideWorktree(t *testing.T) {
	repo, err := Open(context.Background(), initRepo(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if _, err := repo.IsIgnored(context.Background(), t.TempDir(), true); err == nil {
		t.Error("IsIgnored() outside the worktree should fail")
	}
}
