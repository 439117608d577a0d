package binary

import (
	"context"
	"fmt"
	"os"
)

// StaticPath is an already-installed mkcert. It skips provisioning.
type StaticPath string

// EnsureBinary returns the path if it names an existing file.
func (s StaticPath) EnsureBinary(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	info, err := os.Stat(string(s))
	if err != nil {
		return "", fmt.Errorf("stat binary: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("binary %s is a directory", s)
	}
	return string(s), nil
}
