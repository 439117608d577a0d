package certgen

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Hostname is the certificate subject devcert always requests.
const Hostname = "localhost"

// maxStderr bounds how much mkcert stderr is kept for error messages.
const maxStderr = 512

// Tool is the mkcert capability devcert needs.
type Tool interface {
	// InstallAndIssue installs the local root CA (a no-op when already
	// installed) and writes a key/certificate pair for hosts.
	InstallAndIssue(ctx context.Context, keyPath, certPath string, hosts ...string) error
	// CARoot returns the directory holding the root CA.
	CARoot(ctx context.Context) (string, error)
}

// ToolFactory builds a Tool for an mkcert binary path.
type ToolFactory func(binaryPath string) Tool

// ExecTool runs an mkcert binary as a child process.
type ExecTool struct {
	bin   string
	stdin io.Reader
}

// NewExecTool creates a Tool backed by the binary at bin. The child
// inherits stdin and the environment (CAROOT, TRUST_STORES) so mkcert can
// prompt for elevated privileges and honour its own settings.
func NewExecTool(bin string) Tool {
	return &ExecTool{
		bin:   bin,
		stdin: os.Stdin,
	}
}

// InstallAndIssue runs mkcert -install -key-file K -cert-file C hosts...
// Routine output is discarded; stderr is kept for the error on failure.
func (t *ExecTool) InstallAndIssue(ctx context.Context, keyPath, certPath string, hosts ...string) error {
	args := []string{
		"-install",
		"-key-file", keyPath,
		"-cert-file", certPath,
	}
	args = append(args, hosts...)

	var stderr tailBuffer
	cmd := exec.CommandContext(ctx, t.bin, args...)
	cmd.Stdin = t.stdin
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &ProcessError{Args: args, Stderr: stderr.String(), Err: err}
	}
	return nil
}

// CARoot runs mkcert -CAROOT and returns its trimmed output.
func (t *ExecTool) CARoot(ctx context.Context) (string, error) {
	args := []string{"-CAROOT"}

	var stderr tailBuffer
	cmd := exec.CommandContext(ctx, t.bin, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return "", &ProcessError{Args: args, Stderr: stderr.String(), Err: err}
	}
	return strings.TrimSpace(string(out)), nil
}

// tailBuffer keeps the last maxStderr bytes written to it.
type tailBuffer struct {
	buf bytes.Buffer
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	b.buf.Write(p)
	if over := b.buf.Len() - maxStderr; over > 0 {
		b.buf.Next(over)
	}
	return n, nil
}

func (b *tailBuffer) String() string {
	return strings.TrimSpace(b.buf.String())
}
