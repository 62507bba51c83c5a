package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lumipallolabs/driftwatch/internal/cache"
	"github.com/lumipallolabs/driftwatch/internal/logging"
	"github.com/lumipallolabs/driftwatch/internal/snapshot"
)

const testInterval = 20 * time.Millisecond

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func (p *producer) hasBaseline() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prev != nil
}

func startTestProducer(t *testing.T, path string, queue chan QueueEntry, store *cache.Store) (*producer, *sync.WaitGroup) {
	t.Helper()
	p := newProducer(path, testInterval, queue, store, logging.Nop(), nil)
	var wg sync.WaitGroup
	p.start(&wg)
	t.Cleanup(func() {
		p.stop()
		wg.Wait()
	})
	return p, &wg
}

func TestProducerBaselineEmitsNothing(t *testing.T) {
	tmp := t.TempDir()
	os.WriteFile(filepath.Join(tmp, "existing.txt"), []byte("here before the watch"), 0644)

	queue := make(chan QueueEntry, 64)
	p, _ := startTestProducer(t, tmp, queue, nil)

	if !waitFor(t, 3*time.Second, p.hasBaseline) {
		t.Fatal("producer never established a baseline")
	}

	// Give it a few more polls; the unchanged tree must stay silent
	time.Sleep(5 * testInterval)
	if len(queue) != 0 {
		entry := <-queue
		t.Fatalf("baseline poll emitted %s for %s", Kind(entry.Event), EventPath(entry.Event))
	}
}

func TestProducerDetectsCreate(t *testing.T) {
	tmp := t.TempDir()
	queue := make(chan QueueEntry, 64)
	p, _ := startTestProducer(t, tmp, queue, nil)

	if !waitFor(t, 3*time.Second, p.hasBaseline) {
		t.Fatal("producer never established a baseline")
	}

	path := filepath.Join(tmp, "a.txt")
	os.WriteFile(path, []byte("new"), 0644)

	select {
	case entry := <-queue:
		if entry.WatchPath != p.path {
			t.Errorf("expected watch path %s, got %s", p.path, entry.WatchPath)
		}
		created, ok := entry.Event.(FileCreated)
		if !ok {
			t.Fatalf("expected FileCreated, got %T", entry.Event)
		}
		if created.Path != path {
			t.Errorf("expected path %s, got %s", path, created.Path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no event within timeout")
	}

	// Exactly one event for one creation
	time.Sleep(5 * testInterval)
	if len(queue) != 0 {
		entry := <-queue
		t.Fatalf("unexpected extra event %s for %s", Kind(entry.Event), EventPath(entry.Event))
	}
}

func TestProducerEmissionOrder(t *testing.T) {
	tmp := t.TempDir()
	deletePath := filepath.Join(tmp, "del.txt")
	modifyPath := filepath.Join(tmp, "mod.txt")
	createPath := filepath.Join(tmp, "new.txt")
	os.WriteFile(deletePath, []byte("doomed"), 0644)
	os.WriteFile(modifyPath, []byte("v1"), 0644)

	queue := make(chan QueueEntry, 64)
	p, _ := startTestProducer(t, tmp, queue, nil)

	if !waitFor(t, 3*time.Second, p.hasBaseline) {
		t.Fatal("producer never established a baseline")
	}

	// Holding the producer's lock keeps a poll from observing the
	// changes half-applied, so all three land in one diff.
	p.mu.Lock()
	os.Remove(deletePath)
	os.Chtimes(modifyPath, time.Now(), time.Now().Add(time.Hour))
	os.WriteFile(createPath, []byte("v1"), 0644)
	p.mu.Unlock()

	var got []Event
	deadline := time.After(3 * time.Second)
	for len(got) < 3 {
		select {
		case entry := <-queue:
			got = append(got, entry.Event)
		case <-deadline:
			t.Fatalf("expected 3 events, got %d: %v", len(got), got)
		}
	}

	if _, ok := got[0].(FileDeleted); !ok {
		t.Errorf("expected FileDeleted first, got %T", got[0])
	}
	if _, ok := got[1].(FileModified); !ok {
		t.Errorf("expected FileModified second, got %T", got[1])
	}
	if _, ok := got[2].(FileCreated); !ok {
		t.Errorf("expected FileCreated third, got %T", got[2])
	}
}

func TestProducerStopTerminates(t *testing.T) {
	tmp := t.TempDir()
	queue := make(chan QueueEntry, 64)

	p := newProducer(tmp, testInterval, queue, nil, logging.Nop(), nil)
	var wg sync.WaitGroup
	p.start(&wg)

	p.stop()
	p.stop() // double stop is safe

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(3 * time.Second):
		t.Fatal("producer did not terminate after stop")
	}
}

func TestProducerSnapshotFailureRetries(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "not-there")

	var mu sync.Mutex
	var failures int
	onError := func(path string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if path != missing {
			t.Errorf("expected error for %s, got %s", missing, path)
		}
		failures++
	}

	queue := make(chan QueueEntry, 64)
	p := newProducer(missing, testInterval, queue, nil, logging.Nop(), onError)
	var wg sync.WaitGroup
	p.start(&wg)
	t.Cleanup(func() {
		p.stop()
		wg.Wait()
	})

	// The producer keeps retrying rather than terminating
	if !waitFor(t, 3*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return failures >= 2
	}) {
		t.Fatal("expected repeated failure reports")
	}
}

func TestProducerSeedsBaselineFromCache(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "was-here.txt")
	os.WriteFile(path, []byte("pre-restart"), 0644)

	snap, err := snapshot.Take(tmp)
	if err != nil {
		t.Fatalf("take failed: %v", err)
	}
	store := cache.New(t.TempDir())
	if err := store.Save(snap); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// The file vanishes while the watcher is "down"
	os.Remove(path)

	queue := make(chan QueueEntry, 64)
	startTestProducer(t, snap.Root, queue, store)

	select {
	case entry := <-queue:
		deleted, ok := entry.Event.(FileDeleted)
		if !ok {
			t.Fatalf("expected FileDeleted, got %T", entry.Event)
		}
		if deleted.Path != path {
			t.Errorf("expected path %s, got %s", path, deleted.Path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("cached baseline produced no event for the missing file")
	}
}
