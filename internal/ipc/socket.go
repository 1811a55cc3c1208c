package ipc

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sys/unix"
)

// SocketPath resolves the compositor IPC socket. An explicit path wins, then
// SWAYSOCK, then I3SOCK, then the newest sway-ipc socket for this user in
// XDG_RUNTIME_DIR.
func SocketPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	for _, key := range []string{"SWAYSOCK", "I3SOCK"} {
		if path := os.Getenv(key); path != "" {
			return path, nil
		}
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", fmt.Errorf("SWAYSOCK not set and XDG_RUNTIME_DIR not set")
	}
	pattern := filepath.Join(runtimeDir, fmt.Sprintf("sway-ipc.%d.*.sock", unix.Getuid()))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("search sway socket: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("SWAYSOCK not set and no socket matches %s", pattern)
	}
	sort.Slice(matches, func(i, j int) bool {
		return modTime(matches[i]) > modTime(matches[j])
	})
	return matches[0], nil
}

func modTime(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().UnixNano()
}
