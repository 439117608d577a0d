package binary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// staleLockThreshold is the age after which a download lock is assumed
// abandoned by a crashed process.
const staleLockThreshold = 10 * time.Minute

// ErrDownloadInProgress is returned when another process holds the
// download lock for the same binary.
var ErrDownloadInProgress = errors.New("another mkcert download is in progress")

// downloadLock marks a binary as being downloaded into the cache.
type downloadLock struct {
	path string
	file *os.File
}

// acquireDownloadLock creates {dir}/{identifier}.lock exclusively.
func acquireDownloadLock(ctx context.Context, dir, identifier string) (*downloadLock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lockPath := filepath.Join(dir, identifier+".lock")

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if errors.Is(err, os.ErrExist) && isLockStale(lockPath) {
		os.Remove(lockPath)
		file, err = os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	}
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, ErrDownloadInProgress
		}
		return nil, fmt.Errorf("create lock file: %w", err)
	}

	owner := fmt.Sprintf("pid=%d\ntimestamp=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if _, err := file.WriteString(owner); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("write lock file: %w", err)
	}

	return &downloadLock{path: lockPath, file: file}, nil
}

// Release removes the lock file. It is safe to call more than once.
func (l *downloadLock) Release() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	if l.path != "" {
		path := l.path
		l.path = ""
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove lock file: %w", err)
		}
	}
	return nil
}

func isLockStale(lockPath string) bool {
	info, err := os.Stat(lockPath)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) > staleLockThreshold
}
