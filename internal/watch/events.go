package watch

// Event represents one categorized filesystem change under a watched
// root. Move events carry both the old and the new path; every other
// event carries the single path it refers to.
type Event interface {
	isEvent()
}

// FileCreated is emitted when a file appears under a watched root.
type FileCreated struct {
	Path string
}

func (FileCreated) isEvent() {}

// FileModified is emitted when a file's metadata changes in place.
type FileModified struct {
	Path string
}

func (FileModified) isEvent() {}

// FileDeleted is emitted when a previously seen file disappears.
type FileDeleted struct {
	Path string
}

func (FileDeleted) isEvent() {}

// FileMoved is emitted when a file is renamed within a watched root.
type FileMoved struct {
	OldPath string
	Path    string
}

func (FileMoved) isEvent() {}

// DirCreated is emitted when a directory appears under a watched root.
type DirCreated struct {
	Path string
}

func (DirCreated) isEvent() {}

// DirModified is emitted when a directory's metadata changes in place.
type DirModified struct {
	Path string
}

func (DirModified) isEvent() {}

// DirDeleted is emitted when a previously seen directory disappears.
type DirDeleted struct {
	Path string
}

func (DirDeleted) isEvent() {}

// DirMoved is emitted when a directory is renamed within a watched root.
type DirMoved struct {
	OldPath string
	Path    string
}

func (DirMoved) isEvent() {}

// Kind returns a short label for an event, e.g. "file created".
func Kind(e Event) string {
	switch e.(type) {
	case FileCreated:
		return "file created"
	case FileModified:
		return "file modified"
	case FileDeleted:
		return "file deleted"
	case FileMoved:
		return "file moved"
	case DirCreated:
		return "dir created"
	case DirModified:
		return "dir modified"
	case DirDeleted:
		return "dir deleted"
	case DirMoved:
		return "dir moved"
	default:
		return "unknown"
	}
}

// EventPath returns the primary path an event refers to; for moves
// this is the new path.
func EventPath(e Event) string {
	switch ev := e.(type) {
	case FileCreated:
		return ev.Path
	case FileModified:
		return ev.Path
	case FileDeleted:
		return ev.Path
	case FileMoved:
		return ev.Path
	case DirCreated:
		return ev.Path
	case DirModified:
		return ev.Path
	case DirDeleted:
		return ev.Path
	case DirMoved:
		return ev.Path
	default:
		return ""
	}
}

// QueueEntry pairs an event with the watched root that produced it, so
// the dispatch loop can resolve the owning rule.
type QueueEntry struct {
	WatchPath string
	Event     Event
}

// Handler reacts to events delivered by the observer's dispatch loop.
// Handlers run on the single dispatch goroutine and must not block
// indefinitely; a slow handler stalls delivery for every watch.
type Handler interface {
	HandleEvent(Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(Event) error

// HandleEvent calls f(e).
func (f HandlerFunc) HandleEvent(e Event) error {
	return f(e)
}
