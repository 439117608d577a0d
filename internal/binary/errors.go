package binary

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedPlatform is returned for an OS mkcert publishes no binary for.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrDownloadFailed matches every *DownloadError.
	ErrDownloadFailed = errors.New("download failed")
	// ErrVerificationFailed is returned when a checksum or signature does not match.
	ErrVerificationFailed = errors.New("verification failed")
)

// DownloadError describes an unsuccessful release fetch.
type DownloadError struct {
	URL        string
	StatusCode int
	Reason     string
}

func (e *DownloadError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("download %s: %s", e.URL, e.Reason)
	}
	return fmt.Sprintf("download %s: unexpected status %d %s", e.URL, e.StatusCode, e.Reason)
}

// Is reports whether target is ErrDownloadFailed.
func (e *DownloadError) Is(target error) bool {
	return target == ErrDownloadFailed
}
