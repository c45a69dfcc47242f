//go:build windows
// +build windows

package engine

import (
	"os"
	"path/filepath"
)

// clearReadOnly walks dir clearing the read-only attribute from every
// file, since git marks packed objects under .git/objects/pack
// read-only and os.RemoveAll otherwise fails to unlink them on Windows
func clearReadOnly(dir string) {
	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		os.Chmod(path, 0o600)
		return nil
	})
}
