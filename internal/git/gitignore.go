package git

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// GitignoreFile is the name of the file EnsureIgnored edits.
const GitignoreFile = ".gitignore"

// EnsureIgnored appends "\n"+entry to the .gitignore at path unless the file
// already contains entry anywhere as a substring. A missing file is left
// alone. It reports whether the file was modified.
//
// The substring test is loose: "certificates" is considered
// present if the file mentions "old-certificates/". Use
// Repository.IsIgnored to ask git what it will actually ignore.
func EnsureIgnored(path, entry string) (bool, error) {
	if entry == "" {
		return false, fmt.Errorf("gitignore entry cannot be empty")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", GitignoreFile, err)
	}

	if strings.Contains(string(content), entry) {
		return false, nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", GitignoreFile, err)
	}
	defer f.Close()

	if _, err := f.WriteString("\n" + entry); err != nil {
		return false, fmt.Errorf("append to %s: %w", GitignoreFile, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("close %s: %w", GitignoreFile, err)
	}

	return true, nil
}
