//go:build !windows

package snapshot

import (
	"io/fs"
	"syscall"
)

// identityOf extracts the (device, inode) pair used to track an entry
// across renames within the same volume.
func identityOf(info fs.FileInfo) Identity {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return Identity{}
	}
	return Identity{Dev: uint64(stat.Dev), Ino: uint64(stat.Ino)}
}
