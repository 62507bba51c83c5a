package snapshot

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
)

// Entry holds the metadata tracked for a single file or directory.
type Entry struct {
	Size    int64
	Mode    fs.FileMode
	ModTime time.Time
	IsDir   bool
	ID      Identity
}

// Identity identifies an entry across renames within one volume.
// The zero value means no usable identity on this platform.
type Identity struct {
	Dev uint64
	Ino uint64
}

// IsZero reports whether the identity is usable for move detection.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// Snapshot is a point-in-time inventory of one watched root.
// The root itself is not included in Entries.
type Snapshot struct {
	Root    string
	TakenAt time.Time
	Entries map[string]Entry
}

// Take walks the tree at root and captures an inventory of its entries.
// It fails if the root cannot be read; errors on individual entries
// below the root are skipped, matching best-effort capture.
func Take(root string) (*Snapshot, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if _, err := os.Lstat(absRoot); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Root:    absRoot,
		TakenAt: time.Now(),
		Entries: make(map[string]Entry),
	}

	type walkEntry struct {
		path  string
		entry Entry
	}

	// Collect entries through a channel so fastwalk workers never
	// touch the map concurrently.
	entryChan := make(chan walkEntry, 1024)
	var collectWg sync.WaitGroup
	collectWg.Add(1)
	go func() {
		defer collectWg.Done()
		for e := range entryChan {
			snap.Entries[e.path] = e.entry
		}
	}()

	conf := &fastwalk.Config{
		Follow: false, // Don't follow symlinks
	}

	walkErr := fastwalk.Walk(conf, absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip entries with errors
		}

		// Skip the root itself
		if path == absRoot {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		entryChan <- walkEntry{
			path: path,
			entry: Entry{
				Size:    info.Size(),
				Mode:    info.Mode(),
				ModTime: info.ModTime(),
				IsDir:   d.IsDir(),
				ID:      identityOf(info),
			},
		}
		return nil
	})

	close(entryChan)
	collectWg.Wait()

	if walkErr != nil {
		return nil, walkErr
	}
	return snap, nil
}

// Paths returns the snapshot's entry paths in sorted order.
func (s *Snapshot) Paths() []string {
	paths := make([]string, 0, len(s.Entries))
	for path := range s.Entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
