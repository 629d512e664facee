package editor

import (
	"sync"
	"time"
)

// DefaultDebounce is the inactivity period after which continuous edits
// are committed to history.
const DefaultDebounce = 500 * time.Millisecond

// debouncer commits on the trailing edge: each trigger restarts the
// timer, and fire runs once the triggers stop for delay. fire is expected
// to claim the pending label with take, which makes a racing synchronous
// flush and a late timer commit at most once.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	gen     uint64
	pending bool
	label   string
	fire    func()
}

func newDebouncer(delay time.Duration, fire func()) *debouncer {
	return &debouncer{delay: delay, fire: fire}
}

func (d *debouncer) trigger(label string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.pending = true
	d.label = label
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.run(gen) })
}

func (d *debouncer) run(gen uint64) {
	d.mu.Lock()
	stale := !d.pending || gen != d.gen
	d.mu.Unlock()

	if !stale {
		d.fire()
	}
}

// take cancels the timer and returns the pending label, if any, so the
// caller can commit it synchronously.
func (d *debouncer) take() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if !d.pending {
		return "", false
	}
	d.pending = false
	return d.label, true
}

// isPending reports whether a commit is scheduled.
func (d *debouncer) isPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
