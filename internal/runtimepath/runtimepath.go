// Package runtimepath locates per-user runtime files: the daemon socket and
// its single-instance lock.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	socketName = "touchshell.sock"
	lockName   = "touchshell.lock"
)

// Dir returns $XDG_RUNTIME_DIR, then /run/user/<uid> when it exists, then a
// private directory under /tmp which it creates.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir, nil
	}
	uid := os.Getuid()
	if dir := fmt.Sprintf("/run/user/%d", uid); isDir(dir) {
		return dir, nil
	}
	dir := filepath.Join(os.TempDir(), fmt.Sprintf("touchshell-runtime-%d", uid))
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return dir, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func file(name string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func SocketPath() (string, error) { return file(socketName) }

func LockPath() (string, error) { return file(lockName) }

// ResolveSocket returns override when set, otherwise SocketPath.
func ResolveSocket(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	return SocketPath()
}
