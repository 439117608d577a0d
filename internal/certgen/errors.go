package certgen

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBinaryMissing is returned when no mkcert executable could be obtained.
	ErrBinaryMissing = errors.New("missing mkcert binary")
	// ErrCertificateFilesNotProduced is returned when mkcert exited cleanly
	// but the key or certificate file is absent.
	ErrCertificateFilesNotProduced = errors.New("failed to generate certificate")
	// ErrProcessInvocationFailed matches every *ProcessError.
	ErrProcessInvocationFailed = errors.New("mkcert invocation failed")
)

// ProcessError records a failed mkcert run.
type ProcessError struct {
	Args   []string
	Stderr string // tail of the tool's stderr, may be empty
	Err    error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("run mkcert %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap returns the underlying exec error.
func (e *ProcessError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrProcessInvocationFailed.
func (e *ProcessError) Is(target error) bool {
	return target == ErrProcessInvocationFailed
}
