package files

import (
	"os"
	"path/filepath"
)

// FindUp walks from dir toward the filesystem root looking for a file with
// the given name, returning its path or "" when no directory contains it.
func FindUp(name, dir string) string {
	curDir := dir
	for {
		candidate := filepath.Join(curDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		newDir := filepath.Dir(curDir)
		if newDir == curDir {
			return ""
		}
		curDir = newDir
	}
}
