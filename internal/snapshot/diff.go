package snapshot

import "sort"

// Move records a rename observed between two snapshots.
type Move struct {
	OldPath string
	Path    string
}

// DiffResult categorizes the changes between two consecutive snapshots
// of the same root. Each entry appears in exactly one category, and
// every category is sorted by path so emission order is deterministic.
type DiffResult struct {
	FilesCreated  []string
	FilesModified []string
	FilesDeleted  []string
	FilesMoved    []Move

	DirsCreated  []string
	DirsModified []string
	DirsDeleted  []string
	DirsMoved    []Move
}

// Empty reports whether the diff contains no changes.
func (d DiffResult) Empty() bool {
	return len(d.FilesCreated) == 0 && len(d.FilesModified) == 0 &&
		len(d.FilesDeleted) == 0 && len(d.FilesMoved) == 0 &&
		len(d.DirsCreated) == 0 && len(d.DirsModified) == 0 &&
		len(d.DirsDeleted) == 0 && len(d.DirsMoved) == 0
}

// Diff compares two snapshots of the same root. An entry that vanished
// at one path and appeared at another with the same filesystem identity
// is reported as a move rather than a delete+create pair. Moves across
// volumes, or on platforms without entry identity, degrade to
// delete+create.
func Diff(old, current *Snapshot) DiffResult {
	var d DiffResult

	deleted := make(map[string]Entry)
	created := make(map[string]Entry)

	for path, prev := range old.Entries {
		cur, exists := current.Entries[path]
		if !exists {
			deleted[path] = prev
			continue
		}
		if prev.IsDir != cur.IsDir {
			// Replaced by a different kind of entry
			deleted[path] = prev
			created[path] = cur
			continue
		}
		if modified(prev, cur) {
			if cur.IsDir {
				d.DirsModified = append(d.DirsModified, path)
			} else {
				d.FilesModified = append(d.FilesModified, path)
			}
		}
	}

	for path, cur := range current.Entries {
		if _, exists := old.Entries[path]; !exists {
			created[path] = cur
		}
	}

	// Pair deletions with creations that share an identity.
	byIdentity := make(map[Identity]string, len(deleted))
	for path, entry := range deleted {
		if !entry.ID.IsZero() {
			byIdentity[entry.ID] = path
		}
	}
	for newPath, entry := range created {
		if entry.ID.IsZero() {
			continue
		}
		oldPath, ok := byIdentity[entry.ID]
		if !ok || deleted[oldPath].IsDir != entry.IsDir {
			continue
		}
		move := Move{OldPath: oldPath, Path: newPath}
		if entry.IsDir {
			d.DirsMoved = append(d.DirsMoved, move)
		} else {
			d.FilesMoved = append(d.FilesMoved, move)
		}
		delete(deleted, oldPath)
		delete(created, newPath)
		// Each deletion pairs with at most one creation; a second new
		// path with the same identity (another hard link) is a create.
		delete(byIdentity, entry.ID)
	}

	for path, entry := range deleted {
		if entry.IsDir {
			d.DirsDeleted = append(d.DirsDeleted, path)
		} else {
			d.FilesDeleted = append(d.FilesDeleted, path)
		}
	}
	for path, entry := range created {
		if entry.IsDir {
			d.DirsCreated = append(d.DirsCreated, path)
		} else {
			d.FilesCreated = append(d.FilesCreated, path)
		}
	}

	sort.Strings(d.FilesCreated)
	sort.Strings(d.FilesModified)
	sort.Strings(d.FilesDeleted)
	sort.Strings(d.DirsCreated)
	sort.Strings(d.DirsModified)
	sort.Strings(d.DirsDeleted)
	sortMoves(d.FilesMoved)
	sortMoves(d.DirsMoved)

	return d
}

// modified reports whether an entry changed in place. Directories only
// change size on some filesystems, so modification time is the primary
// signal for them.
func modified(prev, cur Entry) bool {
	if !prev.ModTime.Equal(cur.ModTime) {
		return true
	}
	if !prev.IsDir && prev.Size != cur.Size {
		return true
	}
	return prev.Mode != cur.Mode
}

func sortMoves(moves []Move) {
	sort.Slice(moves, func(i, j int) bool {
		return moves[i].OldPath < moves[j].OldPath
	})
}
