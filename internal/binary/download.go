package binary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "devcert/1.0"
	// maxRedirects bounds the release host's redirect chain
	maxRedirects = 10
)

// Downloader fetches release assets over HTTP. It performs exactly one
// attempt per call.
type Downloader struct {
	client    *http.Client
	userAgent string
}

// NewDownloader creates a downloader. A nil client gets a default one that
// follows up to maxRedirects redirects and has no overall timeout; callers
// bound the request through the context instead.
func NewDownloader(client *http.Client) *Downloader {
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		}
	}
	return &Downloader{
		client:    client,
		userAgent: DefaultUserAgent,
	}
}

// Fetch downloads url and returns the whole body.
// Any non-2xx status or an empty body yields a *DownloadError.
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &DownloadError{URL: url, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &DownloadError{URL: url, StatusCode: resp.StatusCode, Reason: http.StatusText(resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &DownloadError{URL: url, StatusCode: resp.StatusCode, Reason: err.Error()}
	}
	if len(data) == 0 {
		return nil, &DownloadError{URL: url, StatusCode: resp.StatusCode, Reason: "empty body"}
	}

	return data, nil
}

// writeExecutable persists data at destPath with mode 0755. The bytes go to
// a temp file in the same directory which is renamed over destPath, so a
// failed write never leaves a truncated binary behind.
func writeExecutable(destPath string, data []byte) error {
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(destPath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := SetExecutable(tmpPath); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return nil
}

// SetExecutable sets rwxr-xr-x on path.
func SetExecutable(path string) error {
	if err := os.Chmod(path, 0755); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}

// fileExists reports whether path exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// elapsed formats the time since start for log output.
func elapsed(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
