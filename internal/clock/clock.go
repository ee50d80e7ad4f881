// Package clock provides the match scheduler: a single goroutine that owns
// every periodic task (the fast simulation tick, the slower AI refresh) and
// every posted event, so no two handlers ever run at the same time.
package clock

import (
	"context"
	"sync"
	"time"
)

// Default intervals for the two match timers.
const (
	DefaultSimInterval = 30 * time.Millisecond
	DefaultAIInterval  = time.Second
)

// Scheduler is what matches program against. Loop runs it in real time and
// Manual steps it deterministically in tests.
type Scheduler interface {
	// Every registers a periodic task. Periodic tasks freeze while paused.
	Every(name string, interval time.Duration, fn func())
	// After runs fn once after d. One-shot tasks are not affected by Pause.
	After(d time.Duration, fn func()) (cancel func())
	// Post runs fn on the scheduling goroutine without blocking, so handlers
	// may post too. It reports false once stopped.
	Post(fn func()) bool
	Pause()
	Resume()
	Paused() bool
	Stop()
}

type task struct {
	name     string
	interval time.Duration
	fn       func()
	next     time.Time
	once     bool
	dead     bool
}

// Loop is the real-time Scheduler.
type Loop struct {
	mu      sync.Mutex
	tasks   []*task
	paused  bool
	stopped bool

	events   chan func()
	overflow []func() // posts that did not fit in events, in order
	wake     chan struct{}
	quit     chan struct{}
	quitOnce sync.Once
	now      func() time.Time
}

// NewLoop creates a stopped-until-Run loop.
func NewLoop() *Loop {
	return &Loop{
		events: make(chan func(), 256),
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		now:    time.Now,
	}
}

func (l *Loop) Every(name string, interval time.Duration, fn func()) {
	if interval <= 0 {
		interval = DefaultSimInterval
	}
	l.mu.Lock()
	l.tasks = append(l.tasks, &task{
		name:     name,
		interval: interval,
		fn:       fn,
		next:     l.now().Add(interval),
	})
	l.mu.Unlock()
	l.nudge()
}

func (l *Loop) After(d time.Duration, fn func()) func() {
	t := &task{name: "after", interval: d, fn: fn, next: l.now().Add(d), once: true}
	l.mu.Lock()
	l.tasks = append(l.tasks, t)
	l.mu.Unlock()
	l.nudge()

	return func() {
		l.mu.Lock()
		t.dead = true
		l.mu.Unlock()
	}
}

// Post never blocks, so handlers may post to their own loop. Once the event
// buffer is full, further posts queue behind it until the loop drains them.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return false
	}
	if len(l.overflow) == 0 {
		select {
		case l.events <- fn:
			return true
		default:
		}
	}
	l.overflow = append(l.overflow, fn)
	l.nudge()
	return true
}

// drainOverflow runs the buffered events ahead of the overflow queue, then
// the queue itself.
func (l *Loop) drainOverflow() {
	l.mu.Lock()
	pending := len(l.overflow) > 0
	l.mu.Unlock()
	if !pending {
		return
	}
	for len(l.events) > 0 && !l.isStopped() {
		(<-l.events)()
	}
	l.mu.Lock()
	queue := l.overflow
	l.overflow = nil
	l.mu.Unlock()
	for _, fn := range queue {
		if l.isStopped() {
			return
		}
		fn()
	}
}

func (l *Loop) isStopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped
}

// Pause freezes every periodic task.
func (l *Loop) Pause() {
	l.mu.Lock()
	l.paused = true
	l.mu.Unlock()
	l.nudge()
}

// Resume restarts periodic tasks; each fires one full interval from now.
func (l *Loop) Resume() {
	l.mu.Lock()
	if l.paused {
		now := l.now()
		for _, t := range l.tasks {
			if !t.once {
				t.next = now.Add(t.interval)
			}
		}
	}
	l.paused = false
	l.mu.Unlock()
	l.nudge()
}

func (l *Loop) Paused() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paused
}

// Stop tears down all timers. It is safe to call more than once and from
// inside a handler.
func (l *Loop) Stop() {
	l.quitOnce.Do(func() {
		l.mu.Lock()
		l.stopped = true
		l.tasks = nil
		l.overflow = nil
		l.mu.Unlock()
		close(l.quit)
	})
}

// Done is closed once the loop is stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.quit
}

func (l *Loop) nudge() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run executes tasks and events until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		wait, ok := l.nextWait()
		if !ok {
			wait = time.Hour
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.quit:
			return nil
		case fn := <-l.events:
			fn()
			l.drainOverflow()
		case <-l.wake:
			l.drainOverflow()
		case <-timer.C:
			l.runDue()
		}
	}
}

// nextWait returns the time until the earliest runnable task.
func (l *Loop) nextWait() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var earliest time.Time
	found := false
	for _, t := range l.tasks {
		if t.dead || (l.paused && !t.once) {
			continue
		}
		if !found || t.next.Before(earliest) {
			earliest = t.next
			found = true
		}
	}
	if !found {
		return 0, false
	}
	d := earliest.Sub(l.now())
	if d < 0 {
		d = 0
	}
	return d, true
}

// runDue runs every due task in registration order.
func (l *Loop) runDue() {
	due := l.collectDue(l.now())
	for _, t := range due {
		select {
		case <-l.quit:
			return
		default:
		}
		t.fn()
	}
}

func (l *Loop) collectDue(now time.Time) []*task {
	l.mu.Lock()
	defer l.mu.Unlock()

	var due []*task
	live := l.tasks[:0]
	for _, t := range l.tasks {
		if t.dead {
			continue
		}
		runnable := t.once || !l.paused
		if runnable && !now.Before(t.next) {
			due = append(due, t)
			if t.once {
				continue
			}
			t.next = t.next.Add(t.interval)
			if t.next.Before(now) {
				// Fell behind; skip missed ticks instead of bursting
				t.next = now.Add(t.interval)
			}
		}
		live = append(live, t)
	}
	l.tasks = live
	return due
}
