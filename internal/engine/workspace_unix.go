//go:build !windows
// +build !windows

package engine

// clearReadOnly is a no-op outside Windows: POSIX permissions already
// let os.RemoveAll unlink packed objects regardless of their mode bits
func clearReadOnly(dir string) {}
