// Package runtimepath locates the per-user runtime files of the cardwm daemon.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// SocketEnv overrides the daemon socket location.
const SocketEnv = "CARDWM_SOCKET"

const socketName = "cardwm.sock"

// Swapped in tests.
var (
	getenv  = os.Getenv
	getuid  = os.Getuid
	runUser = "/run/user"
)

// Dir returns the runtime directory for the current user, tried in order:
// $XDG_RUNTIME_DIR, /run/user/<uid>, then a private cardwm-<uid> directory
// under the system temp dir which is created on demand.
func Dir() (string, error) {
	if dir := getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir, nil
	}
	uid := getuid()
	if dir := filepath.Join(runUser, strconv.Itoa(uid)); isDir(dir) {
		return dir, nil
	}
	return privateTempDir(uid)
}

// privateTempDir refuses a directory other users can reach, since the
// socket inside it accepts control commands.
func privateTempDir(uid int) (string, error) {
	dir := filepath.Join(os.TempDir(), fmt.Sprintf("cardwm-%d", uid))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create runtime dir: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("stat runtime dir: %w", err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return "", fmt.Errorf("runtime dir %s has mode %#o, want 0700", dir, perm)
	}
	return dir, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// SocketPath returns the daemon IPC socket path.
func SocketPath() (string, error) {
	if p := getenv(SocketEnv); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, socketName), nil
}
