//go:build !windows

package ui

import "golang.org/x/sys/unix"

// freeSpace returns the free bytes on the volume holding path.
func freeSpace(path string) int64 {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0
	}
	return int64(stat.Bavail) * int64(stat.Bsize)
}
