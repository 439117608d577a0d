package testutil_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZebulonRouseFrantzich/devcert/internal/testutil"
)

func TestSetupTestEnv(t *testing.T) {
	env := testutil.SetupTestEnv(t)

	// Verify devcert environment variables are set
	if got := os.Getenv("DEVCERT_CACHE_DIR"); got != env.CacheDir {
		t.Errorf("DEVCERT_CACHE_DIR = %q, want %q", got, env.CacheDir)
	}
	if got := os.Getenv("CAROOT"); got != env.CARoot {
		t.Errorf("CAROOT = %q, want %q", got, env.CARoot)
	}
	if got := os.Getenv("DEVCERT_BINARY"); got != "" {
		t.Errorf("DEVCERT_BINARY = %q, want empty", got)
	}

	// Verify directories exist under the temp root
	for _, dir := range []string{env.CacheDir, env.CARoot, env.WorkDir} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			t.Errorf("directory %s does not exist", dir)
		}
		if !strings.HasPrefix(dir, env.Root) {
			t.Errorf("path %s is not under %s", dir, env.Root)
		}
	}
}

func TestSetupTestEnv_Isolation(t *testing.T) {
	// Test that multiple test runs get different directories
	env1 := testutil.SetupTestEnv(t)

	t.Run("subtest", func(t *testing.T) {
		env2 := testutil.SetupTestEnv(t)

		if env1.Root == env2.Root {
			t.Error("expected different temp directories for different test contexts")
		}
	})
}

func TestWriteMkcertStub(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	stub := testutil.WriteMkcertStub(t, env.Root)

	out, err := exec.Command(stub, "-CAROOT").Output()
	if err != nil {
		t.Fatalf("run stub: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != env.CARoot {
		t.Errorf("-CAROOT = %q, want %q", got, env.CARoot)
	}

	key := filepath.Join(env.WorkDir, "k.pem")
	cert := filepath.Join(env.WorkDir, "c.pem")
	if err := exec.Command(stub, "-install", "-key-file", key, "-cert-file", cert, "localhost").Run(); err != nil {
		t.Fatalf("run stub: %v", err)
	}
	for _, p := range []string{key, cert} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("stub did not write %s: %v", p, err)
		}
	}

	if err := exec.Command(stub, "-uninstall").Run(); err == nil {
		t.Error("expected stub to reject unknown arguments")
	}
}
