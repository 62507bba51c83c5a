//go:build windows

package snapshot

import "io/fs"

// identityOf returns the zero identity on Windows. Without a stable
// identity the diff reports renames as delete+create pairs.
func identityOf(info fs.FileInfo) Identity {
	return Identity{}
}
