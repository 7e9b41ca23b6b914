package nm

import (
	"sync"
	"time"

	"github.com/yllada/vpn-supervisor/common"
)

// Loop is a single-goroutine cooperative task queue. Every completion
// callback from an asynchronous NetworkManager operation is delivered on
// the loop goroutine, so callers need no cross-goroutine synchronization
// — and must never block inside a callback. Deferred work is scheduled
// with ScheduleAfter instead of sleeping.
type Loop struct {
	tasks chan func()
	quit  chan struct{}
	done  chan struct{}
	stop  sync.Once
}

// NewLoop creates a loop. It does not start processing until Run is
// called.
func NewLoop() *Loop {
	return &Loop{
		tasks: make(chan func(), common.LoopQueueSize),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Run processes scheduled tasks on the calling goroutine until Stop is
// called. A loop runs at most once.
func (l *Loop) Run() {
	defer close(l.done)
	for {
		select {
		case <-l.quit:
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Start runs the loop on its own goroutine.
func (l *Loop) Start() {
	go l.Run()
}

// Stop makes Run return after the current task. Safe to call from a task
// running on the loop, and more than once.
func (l *Loop) Stop() {
	l.stop.Do(func() { close(l.quit) })
}

// Wait blocks until the loop has exited.
func (l *Loop) Wait() {
	<-l.done
}

// Schedule queues fn to run on the loop goroutine. Tasks scheduled after
// Stop are dropped.
func (l *Loop) Schedule(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.quit:
	}
}

// ScheduleAfter queues fn onto the loop after delay, without occupying
// the loop in the meantime.
func (l *Loop) ScheduleAfter(delay time.Duration, fn func()) {
	time.AfterFunc(delay, func() { l.Schedule(fn) })
}
