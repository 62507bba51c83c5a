package watch

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/lumipallolabs/driftwatch/internal/cache"
	"github.com/lumipallolabs/driftwatch/internal/logging"
)

// DefaultInterval is the polling interval used when none is given.
const DefaultInterval = time.Second

// DefaultQueueSize bounds the shared event queue. Producers block
// while the queue is full, delaying their next poll instead of
// dropping or buffering events without limit.
const DefaultQueueSize = 1024

// ErrNotRunnable is returned by Run when the observer has already run
// or is shut down.
var ErrNotRunnable = errors.New("observer is not in a runnable state")

// ErrStopped is returned by AddRule/RemoveRule after shutdown began.
var ErrStopped = errors.New("observer is stopped")

// State is the observer lifecycle state.
type State int

const (
	StateCreated State = iota
	StateRunning
	StateStopping
	StateStopped
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// rule binds a watched path to its handler and producer.
type rule struct {
	path     string
	handler  Handler
	producer *producer
}

// Options configures an Observer.
type Options struct {
	// Interval is the default polling interval for new rules.
	Interval time.Duration

	// QueueSize bounds the shared event queue.
	QueueSize int

	// Logger receives dispatch and producer diagnostics.
	Logger *logging.Logger

	// Store, when set, persists snapshots and seeds producer
	// baselines across restarts.
	Store *cache.Store

	// OnWatchError is called from a producer's goroutine when a
	// snapshot of its root fails. The rule stays registered and the
	// producer retries on its next interval.
	OnWatchError func(path string, err error)
}

// Observer owns the rule table and the single dispatch loop that
// routes queued events to their handlers.
type Observer struct {
	interval     time.Duration
	queue        chan QueueEntry
	logger       *logging.Logger
	store        *cache.Store
	onWatchError func(path string, err error)

	// mu serializes rule-table mutations and state transitions. It is
	// never held while a handler runs, so handlers may add or remove
	// rules themselves.
	mu    sync.Mutex
	state State
	rules map[string]*rule

	producers sync.WaitGroup
}

// New creates an observer in the Created state.
func New(opts Options) *Observer {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	return &Observer{
		interval:     interval,
		queue:        make(chan QueueEntry, queueSize),
		logger:       logger,
		store:        opts.Store,
		onWatchError: opts.OnWatchError,
		rules:        make(map[string]*rule),
	}
}

// State returns the current lifecycle state.
func (o *Observer) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// AddRule registers a watch on path with the default interval.
// Registering a path that is already watched is a no-op.
func (o *Observer) AddRule(path string, handler Handler) error {
	return o.AddRuleWithInterval(path, handler, o.interval)
}

// AddRuleWithInterval registers a watch with its own polling interval.
// While the observer is running the producer starts immediately; in
// the Created state it starts when Run is called.
func (o *Observer) AddRuleWithInterval(path string, handler Handler, interval time.Duration) error {
	if handler == nil {
		return fmt.Errorf("watch %s: nil handler", path)
	}
	if interval <= 0 {
		interval = o.interval
	}

	canonical, err := CanonicalPath(path)
	if err != nil {
		return fmt.Errorf("canonicalize %s: %w", path, err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state {
	case StateCreated, StateRunning:
	default:
		return ErrStopped
	}

	if _, exists := o.rules[canonical]; exists {
		return nil
	}

	p := newProducer(canonical, interval, o.queue, o.store, o.logger, o.onWatchError)
	o.rules[canonical] = &rule{path: canonical, handler: handler, producer: p}

	if o.state == StateRunning {
		p.start(&o.producers)
	}

	o.logger.Debug("rule added", map[string]string{
		"watch": canonical,
		"state": o.state.String(),
	})
	return nil
}

// RemoveRule stops watching path. Removing an unknown path is a no-op.
// Events already queued for the path are discarded by the dispatch
// loop once the rule is gone.
func (o *Observer) RemoveRule(path string) error {
	canonical, err := CanonicalPath(path)
	if err != nil {
		return fmt.Errorf("canonicalize %s: %w", path, err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state {
	case StateCreated, StateRunning:
	default:
		return ErrStopped
	}

	r, exists := o.rules[canonical]
	if !exists {
		return nil
	}
	delete(o.rules, canonical)
	r.producer.stop()

	o.logger.Debug("rule removed", map[string]string{"watch": canonical})
	return nil
}

// Run starts every registered producer and consumes the queue until
// Stop is called. It blocks, returning once shutdown has drained the
// queue. A handler failure or panic is contained and logged; it never
// terminates the loop.
func (o *Observer) Run() error {
	o.mu.Lock()
	if o.state != StateCreated {
		o.mu.Unlock()
		return ErrNotRunnable
	}
	o.state = StateRunning
	for _, r := range o.rules {
		r.producer.start(&o.producers)
	}
	o.mu.Unlock()

	for entry := range o.queue {
		o.dispatch(entry)
	}

	o.mu.Lock()
	o.state = StateStopped
	o.mu.Unlock()
	return nil
}

// Stop stops all producers, waits for their in-flight polls to finish
// emitting, then closes the queue so Run drains and returns. It is
// triggered programmatically and completes within a bounded multiple
// of the polling interval. Stop must not be called from a handler:
// it waits on producers that may be blocked emitting into the queue
// the handler's own dispatch loop is responsible for draining.
func (o *Observer) Stop() {
	o.mu.Lock()
	if o.state == StateStopping || o.state == StateStopped {
		o.mu.Unlock()
		return
	}
	wasRunning := o.state == StateRunning
	o.state = StateStopping

	stopping := make([]*producer, 0, len(o.rules))
	for _, r := range o.rules {
		stopping = append(stopping, r.producer)
	}
	o.mu.Unlock()

	for _, p := range stopping {
		p.stop()
	}
	o.producers.Wait()
	close(o.queue)

	if !wasRunning {
		// Run was never entered, so nothing will drain the queue;
		// finish the transition here.
		o.mu.Lock()
		o.state = StateStopped
		o.mu.Unlock()
	}
}

// dispatch routes one entry to its handler. Entries whose rule was
// removed while they sat in the queue are dropped silently.
func (o *Observer) dispatch(entry QueueEntry) {
	o.mu.Lock()
	r, exists := o.rules[entry.WatchPath]
	o.mu.Unlock()

	if !exists {
		o.logger.Debug("dropping event for removed watch", map[string]string{
			"watch": entry.WatchPath,
			"event": Kind(entry.Event),
		})
		return
	}
	o.invoke(r.handler, entry)
}

func (o *Observer) invoke(handler Handler, entry QueueEntry) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("handler panicked", map[string]string{
				"watch": entry.WatchPath,
				"event": Kind(entry.Event),
				"panic": fmt.Sprint(r),
			})
		}
	}()

	if err := handler.HandleEvent(entry.Event); err != nil {
		o.logger.Error("handler failed", map[string]string{
			"watch": entry.WatchPath,
			"event": Kind(entry.Event),
			"error": err.Error(),
		})
	}
}

// CanonicalPath resolves a watch path to its absolute, symlink-free
// form, the form rules are keyed by. Registration applies it so one
// filesystem location can never get two producers; callers labeling
// output or stats by watch should apply it too so their keys match.
func CanonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	// Path may not exist yet (or anymore); fall back to the cleaned
	// absolute form so removal of a vanished root still matches.
	return filepath.Clean(abs), nil
}
