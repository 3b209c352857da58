// Package stage implements the four per-test pipeline stages:
// generation, validation, solution execution, and checking. Each stage
// owns a sandbox directory for the duration of one call and never
// shares it with another stage or another concurrent call.
package stage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// sandbox is a scoped working directory: created fresh, emptied between
// independent uses of the same stage, and removed once the caller is
// done with it.
type sandbox struct {
	dir string
}

func newSandbox(root, name string) (*sandbox, error) {
	dir := filepath.Join(root, name)
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("stage: clear sandbox %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("stage: create sandbox %s: %w", dir, err)
	}
	return &sandbox{dir: dir}, nil
}

func (s *sandbox) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *sandbox) close() error {
	return os.RemoveAll(s.dir)
}

// moveFile relocates a sandbox artifact into its permanent home,
// creating the destination directory if needed.
func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.Rename(src, dst)
}

// lastNonEmptyLine returns the last non-blank line of text, trimmed,
// used to extract a validator's human-readable failure reason from its
// captured stderr.
func lastNonEmptyLine(text string) string {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if trimmed := strings.TrimSpace(lines[i]); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// firstLine returns the first line of text, trimmed, used to extract
// an interactor's or checker's judgemessage.txt reason.
func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return strings.TrimSpace(text[:i])
	}
	return strings.TrimSpace(text)
}
