// Package testutil provides utilities for testing devcert in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Env is an isolated devcert environment rooted in a temp directory.
type Env struct {
	Root     string
	CacheDir string
	CARoot   string
	WorkDir  string
}

// SetupTestEnv creates isolated test directories for each test.
// This ensures devcert tests never interfere with:
// - The user's real mkcert root CA
// - The user's cached mkcert binaries
// - DEVCERT_* settings exported in the developer's shell
//
// The cleanup function is automatically handled by t.TempDir(),
// so callers don't need to manually clean up.
func SetupTestEnv(t *testing.T) *Env {
	t.Helper()

	// Create temp directory (auto-cleaned by testing framework)
	tmpDir := t.TempDir()

	env := &Env{
		Root:     tmpDir,
		CacheDir: filepath.Join(tmpDir, "cache"),
		CARoot:   filepath.Join(tmpDir, "caroot"),
		WorkDir:  filepath.Join(tmpDir, "project"),
	}

	t.Setenv("DEVCERT_CACHE_DIR", env.CacheDir)

	// Settings that would redirect provisioning must not leak in.
	for _, key := range []string{
		"DEVCERT_CONFIG",
		"DEVCERT_CERT_DIR",
		"DEVCERT_HOST",
		"DEVCERT_MKCERT_VERSION",
		"DEVCERT_BASE_URL",
		"DEVCERT_CHECKSUM",
		"DEVCERT_KEYRING",
		"DEVCERT_BINARY",
		"DEVCERT_STRICT",
		"DEVCERT_VERBOSE",
	} {
		t.Setenv(key, "")
	}

	// mkcert honours CAROOT; keep any real invocation away from the user's CA.
	t.Setenv("CAROOT", env.CARoot)

	for _, dir := range []string{env.CacheDir, env.CARoot, env.WorkDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return env
}

// mkcertStub mimics the two mkcert invocations devcert performs. Every
// call is appended to $CAROOT/invocations.
const mkcertStub = `#!/bin/bash
echo "$@" >> "$CAROOT/invocations"
case "$1" in
  -CAROOT)
    echo "$CAROOT"
    ;;
  -install)
    echo "KEY" > "$3"
    echo "CERT" > "$5"
    echo "The local CA is now installed in the system trust store!" >&2
    ;;
  *)
    echo "unexpected arguments: $*" >&2
    exit 1
    ;;
esac
`

// WriteMkcertStub writes an executable fake mkcert into dir and returns its
// path. Tests using it are skipped on Windows.
func WriteMkcertStub(t *testing.T, dir string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell stubs not supported on Windows")
	}

	path := filepath.Join(dir, "mkcert")
	if err := os.WriteFile(path, []byte(mkcertStub), 0o755); err != nil {
		t.Fatalf("failed to write mkcert stub: %v", err)
	}
	return path
}
