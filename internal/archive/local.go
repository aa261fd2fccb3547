package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Local writes archived files under a directory on disk.
type Local struct {
	dir string
}

func NewLocal(dir string) *Local {
	if dir == "" {
		dir = "uploads"
	}
	return &Local{dir: dir}
}

func (l *Local) Put(_ context.Context, key string, body []byte, _ string) error {
	target := filepath.Join(l.dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("archive mkdir: %w", err)
	}
	if err := os.WriteFile(target, body, 0o640); err != nil {
		return fmt.Errorf("archive write: %w", err)
	}
	return nil
}
