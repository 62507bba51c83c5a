package watch

import (
	"errors"
	"sync"
	"time"

	"github.com/lumipallolabs/driftwatch/internal/cache"
	"github.com/lumipallolabs/driftwatch/internal/logging"
	"github.com/lumipallolabs/driftwatch/internal/snapshot"
)

// producer polls one watched path on a fixed interval and emits the
// diff between consecutive snapshots onto the shared queue.
type producer struct {
	path     string
	interval time.Duration
	queue    chan<- QueueEntry
	store    *cache.Store
	logger   *logging.Logger
	onError  func(path string, err error)

	// Guards prev between the poll cycle and external access; only
	// one poll runs at a time per producer.
	mu   sync.Mutex
	prev *snapshot.Snapshot

	done     chan struct{}
	stopOnce sync.Once
}

func newProducer(path string, interval time.Duration, queue chan<- QueueEntry,
	store *cache.Store, logger *logging.Logger, onError func(string, error)) *producer {

	p := &producer{
		path:     path,
		interval: interval,
		queue:    queue,
		store:    store,
		logger:   logger.With(map[string]string{"watch": path}),
		onError:  onError,
		done:     make(chan struct{}),
	}

	// Seed the baseline from a cached snapshot so changes made while
	// the watcher was down still surface on the first real poll.
	if store != nil {
		if cached, err := store.LoadLatest(path); err == nil {
			p.prev = cached
		} else if !errors.Is(err, cache.ErrNoSnapshot) {
			p.logger.Debug("cached snapshot unavailable", map[string]string{"error": err.Error()})
		}
	}

	return p
}

// start launches the poll loop. The first poll happens after the
// first interval elapses, never at start.
func (p *producer) start(wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.run()
	}()
}

// stop requests termination. The loop observes it within one interval;
// a poll already in progress completes and its events are emitted.
func (p *producer) stop() {
	p.stopOnce.Do(func() {
		close(p.done)
	})
}

func (p *producer) run() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

// poll takes a snapshot and emits one event per diff entry. The first
// successful poll only establishes the baseline.
func (p *producer) poll() {
	p.mu.Lock()
	current, err := snapshot.Take(p.path)
	if err != nil {
		// Keep the last good snapshot and retry on the next
		// interval; the watch stays registered.
		p.mu.Unlock()
		p.logger.Warn("snapshot failed", map[string]string{"error": err.Error()})
		if p.onError != nil {
			p.onError(p.path, err)
		}
		return
	}

	if p.prev == nil {
		p.prev = current
		p.mu.Unlock()
		p.persist(current)
		return
	}

	diff := snapshot.Diff(p.prev, current)
	p.prev = current
	p.mu.Unlock()

	p.persist(current)

	if !diff.Empty() {
		p.emit(diff)
	}
}

// emit pushes events in the per-poll order: deleted, modified,
// created, moved — files first, then directories.
func (p *producer) emit(diff snapshot.DiffResult) {
	for _, path := range diff.FilesDeleted {
		p.send(FileDeleted{Path: path})
	}
	for _, path := range diff.FilesModified {
		p.send(FileModified{Path: path})
	}
	for _, path := range diff.FilesCreated {
		p.send(FileCreated{Path: path})
	}
	for _, move := range diff.FilesMoved {
		p.send(FileMoved{OldPath: move.OldPath, Path: move.Path})
	}
	for _, path := range diff.DirsDeleted {
		p.send(DirDeleted{Path: path})
	}
	for _, path := range diff.DirsModified {
		p.send(DirModified{Path: path})
	}
	for _, path := range diff.DirsCreated {
		p.send(DirCreated{Path: path})
	}
	for _, move := range diff.DirsMoved {
		p.send(DirMoved{OldPath: move.OldPath, Path: move.Path})
	}
}

// send blocks when the queue is full; polling resumes once the
// dispatcher catches up.
func (p *producer) send(e Event) {
	p.queue <- QueueEntry{WatchPath: p.path, Event: e}
}

func (p *producer) persist(snap *snapshot.Snapshot) {
	if p.store == nil {
		return
	}
	if err := p.store.Save(snap); err != nil {
		p.logger.Debug("snapshot persist failed", map[string]string{"error": err.Error()})
	}
}
