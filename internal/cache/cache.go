package cache

import (
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lumipallolabs/driftwatch/internal/snapshot"
)

// ErrNoSnapshot is returned when no cached snapshot exists for a root.
var ErrNoSnapshot = errors.New("no cached snapshot")

// keepGenerations is how many snapshot files are retained per root.
const keepGenerations = 3

// Store persists snapshots so a restarted watcher can diff against the
// last seen state instead of re-baselining.
type Store struct {
	dir string
}

// New creates a store in the given directory.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir returns the default cache directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".driftwatch"
	}
	return filepath.Join(home, ".driftwatch", "cache")
}

// Save writes a snapshot for its root and prunes old generations.
func (s *Store) Save(snap *snapshot.Snapshot) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.gob.gz",
		keyFor(snap.Root),
		time.Now().Format("2006-01-02_150405.000000"))

	path := filepath.Join(s.dir, filename)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	defer gzWriter.Close()

	encoder := gob.NewEncoder(gzWriter)
	if err := encoder.Encode(snap); err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	s.prune(snap.Root)
	return nil
}

// LoadLatest loads the most recent snapshot saved for root.
func (s *Store) LoadLatest(root string) (*snapshot.Snapshot, error) {
	files, err := s.generations(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoSnapshot
	}

	// Filenames embed the timestamp, so the last one sorts latest
	latest := files[len(files)-1]

	file, err := os.Open(latest)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer gzReader.Close()

	var snap snapshot.Snapshot
	decoder := gob.NewDecoder(gzReader)
	if err := decoder.Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &snap, nil
}

// prune removes all but the newest generations for a root.
func (s *Store) prune(root string) {
	files, err := s.generations(root)
	if err != nil || len(files) <= keepGenerations {
		return
	}
	for _, stale := range files[:len(files)-keepGenerations] {
		_ = os.Remove(stale)
	}
}

func (s *Store) generations(root string) ([]string, error) {
	pattern := filepath.Join(s.dir, fmt.Sprintf("%s_*.gob.gz", keyFor(root)))
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// keyFor derives a filename-safe key for a watched root. The basename
// keeps files recognizable; the hash keeps distinct roots distinct.
func keyFor(root string) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, filepath.Base(root))

	h := fnv.New32a()
	h.Write([]byte(root))
	return fmt.Sprintf("%s-%08x", base, h.Sum32())
}
