package clock

import (
	"sort"
	"sync"
	"time"
)

// Manual is a deterministic Scheduler driven by Advance. Posted events run
// on the caller's goroutine during Flush or Advance. Post may be called from
// any goroutine; everything else belongs to the test goroutine.
type Manual struct {
	now     time.Duration
	tasks   []*task
	paused  bool
	stopped bool
	seq     int
	order   map[*task]int

	mu     sync.Mutex
	queue  []func()
	posted chan struct{}
	closed bool
}

// NewManual creates a manual scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{
		order:  make(map[*task]int),
		posted: make(chan struct{}, 1),
	}
}

func (m *Manual) add(t *task) {
	m.seq++
	m.order[t] = m.seq
	m.tasks = append(m.tasks, t)
}

func (m *Manual) Every(name string, interval time.Duration, fn func()) {
	if m.stopped {
		return
	}
	if interval <= 0 {
		interval = DefaultSimInterval
	}
	m.add(&task{name: name, interval: interval, fn: fn, next: virtual(m.now + interval)})
}

func (m *Manual) After(d time.Duration, fn func()) func() {
	t := &task{name: "after", interval: d, fn: fn, next: virtual(m.now + d), once: true}
	if !m.stopped {
		m.add(t)
	}
	return func() { t.dead = true }
}

func (m *Manual) Post(fn func()) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, fn)
	m.mu.Unlock()

	select {
	case m.posted <- struct{}{}:
	default:
	}
	return true
}

// Await blocks until an event has been posted or d of real time passes,
// then flushes. It reports whether anything was posted. Tests use it to
// collect results from background goroutines.
func (m *Manual) Await(d time.Duration) bool {
	deadline := time.After(d)
	for {
		m.mu.Lock()
		pending := len(m.queue) > 0
		m.mu.Unlock()
		if pending {
			m.Flush()
			return true
		}
		select {
		case <-m.posted:
		case <-deadline:
			return false
		}
	}
}

func (m *Manual) Pause() { m.paused = true }

func (m *Manual) Resume() {
	if m.paused {
		for _, t := range m.tasks {
			if !t.once {
				t.next = virtual(m.now + t.interval)
			}
		}
	}
	m.paused = false
}

func (m *Manual) Paused() bool { return m.paused }

func (m *Manual) Stop() {
	m.stopped = true
	m.tasks = nil
	m.mu.Lock()
	m.closed = true
	m.queue = nil
	m.mu.Unlock()
}

// Stopped reports whether Stop has been called.
func (m *Manual) Stopped() bool { return m.stopped }

// Now returns the elapsed virtual time.
func (m *Manual) Now() time.Duration { return m.now }

// Flush runs every posted event, including events posted while flushing.
func (m *Manual) Flush() {
	for !m.stopped {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return
		}
		fn := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		fn()
	}
}

// Advance moves virtual time forward by d, firing due tasks in time order
// and flushing posted events after each one.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	m.Flush()
	for !m.stopped {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		at := offset(t.next)
		if at > m.now {
			m.now = at
		}
		if t.once {
			t.dead = true
		} else {
			t.next = virtual(at + t.interval)
		}
		t.fn()
		m.Flush()
	}
	if !m.stopped {
		m.now = target
	}
}

func (m *Manual) nextDue(target time.Duration) *task {
	var due []*task
	for _, t := range m.tasks {
		if t.dead || (m.paused && !t.once) {
			continue
		}
		if offset(t.next) <= target {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].next.Equal(due[j].next) {
			return m.order[due[i]] < m.order[due[j]]
		}
		return due[i].next.Before(due[j].next)
	})
	return due[0]
}

// Virtual times are stored as offsets from the zero time.Time so Manual can
// share the task type with Loop.
func virtual(d time.Duration) time.Time { return time.Time{}.Add(d) }

func offset(t time.Time) time.Duration { return t.Sub(time.Time{}) }
