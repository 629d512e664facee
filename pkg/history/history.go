// Package history records scene snapshots and provides linear undo/redo.
//
// A [Log] is an ordered, bounded sequence of immutable snapshots plus a
// cursor marking the snapshot that matches the live scene. Saving after
// an undo discards the abandoned redo branch; exceeding the bound evicts
// the oldest snapshot.
//
//	log := history.New(store)
//	// ... mutate the store ...
//	log.Save("add text")
//	log.Undo() // store is back to the seeded state
//	log.Redo() // and forward again
package history

import (
	"sync"
	"time"

	"github.com/matzehuels/memeforge/pkg/scene"
)

// DefaultMaxStates bounds the log when no [WithMaxStates] option is given.
const DefaultMaxStates = 30

// Snapshot is an immutable deep copy of the scene. Callers must treat the
// contained scene as read-only; [Log] hands out copies.
type Snapshot struct {
	Scene     scene.Scene `json:"scene"`
	Timestamp time.Time   `json:"timestamp"`
	Label     string      `json:"label,omitempty"`
}

func (s Snapshot) clone() Snapshot {
	s.Scene = s.Scene.Clone()
	return s
}

// State describes the cursor position, for enabling undo/redo controls.
type State struct {
	Cursor  int
	Len     int
	CanUndo bool
	CanRedo bool
}

// Option configures a [Log].
type Option func(*Log)

// WithMaxStates sets the number of snapshots kept. Values below 1 are
// ignored.
func WithMaxStates(n int) Option {
	return func(l *Log) {
		if n >= 1 {
			l.max = n
		}
	}
}

// WithOnChange registers fn to run after every save, undo, redo and
// reset. It is called without the log's lock held.
func WithOnChange(fn func(State)) Option {
	return func(l *Log) { l.onChange = fn }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// Log is the undo/redo history of a scene store. It is safe for
// concurrent use.
type Log struct {
	mu     sync.Mutex
	store  scene.Store
	states []Snapshot
	cursor int

	max      int
	onChange func(State)
	now      func() time.Time
}

// New returns a log seeded with one snapshot of the store's current
// content, so the first undo target always exists.
func New(store scene.Store, opts ...Option) *Log {
	l := &Log{store: store, max: DefaultMaxStates, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	l.seed()
	return l
}

func (l *Log) seed() {
	l.states = []Snapshot{{Scene: l.store.Snapshot(), Timestamp: l.now(), Label: "initial"}}
	l.cursor = 0
}

// Save appends a snapshot of the store's current content. Snapshots after
// the cursor are discarded first; when the log exceeds its bound the
// oldest snapshot is evicted and the cursor follows the saved one.
func (l *Log) Save(label string) Snapshot {
	l.mu.Lock()
	snap := Snapshot{Scene: l.store.Snapshot(), Timestamp: l.now(), Label: label}

	l.states = append(l.states[:l.cursor+1], snap)
	l.cursor = len(l.states) - 1
	if over := len(l.states) - l.max; over > 0 {
		l.states = append(l.states[:0:0], l.states[over:]...)
		l.cursor -= over
	}
	st := l.stateLocked()
	l.mu.Unlock()

	l.notify(st)
	return snap.clone()
}

// Undo moves the cursor back and restores that snapshot. It returns false,
// leaving the store untouched, when there is nothing to undo.
func (l *Log) Undo() bool {
	return l.step(-1)
}

// Redo moves the cursor forward and restores that snapshot. It returns
// false, leaving the store untouched, when there is nothing to redo.
func (l *Log) Redo() bool {
	return l.step(1)
}

func (l *Log) step(delta int) bool {
	l.mu.Lock()
	next := l.cursor + delta
	if next < 0 || next >= len(l.states) {
		l.mu.Unlock()
		return false
	}
	l.cursor = next
	l.restoreLocked(l.states[next])
	st := l.stateLocked()
	l.mu.Unlock()

	l.notify(st)
	return true
}

// Restore replaces the live scene with a copy of s and clears the
// selection. The cursor does not move and s is never modified.
func (l *Log) Restore(s Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.restoreLocked(s)
}

func (l *Log) restoreLocked(s Snapshot) {
	l.store.Replace(s.Scene)
	l.store.Select(scene.Selection{})
}

// Reset drops every snapshot and re-seeds the log from the store, which
// the caller is expected to have cleared.
func (l *Log) Reset() {
	l.mu.Lock()
	l.seed()
	st := l.stateLocked()
	l.mu.Unlock()

	l.notify(st)
}

// Current returns a copy of the snapshot under the cursor.
func (l *Log) Current() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.states[l.cursor].clone()
}

// Snapshots returns copies of all snapshots, oldest first.
func (l *Log) Snapshots() []Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Snapshot, len(l.states))
	for i, s := range l.states {
		out[i] = s.clone()
	}
	return out
}

// State reports the cursor position.
func (l *Log) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stateLocked()
}

func (l *Log) stateLocked() State {
	return State{
		Cursor:  l.cursor,
		Len:     len(l.states),
		CanUndo: l.cursor > 0,
		CanRedo: l.cursor < len(l.states)-1,
	}
}

// CanUndo reports whether [Log.Undo] would move the cursor.
func (l *Log) CanUndo() bool { return l.State().CanUndo }

// CanRedo reports whether [Log.Redo] would move the cursor.
func (l *Log) CanRedo() bool { return l.State().CanRedo }

// Len returns the number of snapshots held.
func (l *Log) Len() int { return l.State().Len }

// Cursor returns the index of the current snapshot.
func (l *Log) Cursor() int { return l.State().Cursor }

// MaxStates returns the bound on the number of snapshots.
func (l *Log) MaxStates() int { return l.max }

func (l *Log) notify(st State) {
	if l.onChange != nil {
		l.onChange(st)
	}
}
