package pulse

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/tip/logger"
	"github.com/teranos/tip/sym"
)

// Timer is a cancellable pending callback.
type Timer interface {
	// Stop cancels the callback. It reports false if the callback already
	// ran or was already stopped.
	Stop() bool
}

// Scheduler is the capability tooltips need from an event loop.
type Scheduler interface {
	Now() time.Time
	// AfterFunc runs fn on the loop once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
	// RequestFrame runs fn on the next frame.
	RequestFrame(fn func()) Timer
	// Post queues fn to run on the loop as soon as possible, after the
	// current callback returns. Safe from any goroutine.
	Post(fn func())
}

// LoopConfig configures a Loop
type LoopConfig struct {
	FrameInterval time.Duration // default: 16ms
	// Epoch is the starting virtual time of a manual loop
	Epoch  time.Time
	Logger *zap.SugaredLogger
}

// DefaultLoopConfig returns sensible defaults
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		FrameInterval: 16 * time.Millisecond,
		Epoch:         time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Stats counts loop activity
type Stats struct {
	TimersFired int64
	FramesRun   int64
	TasksRun    int64
}

// Loop is a single-threaded cooperative scheduler.
type Loop struct {
	mu       sync.Mutex
	manual   bool
	now      time.Time // virtual clock, manual mode only
	frame    time.Duration
	timers   timerQueue
	seq      uint64
	posted   []func()
	wake     chan struct{}
	stats    Stats
	pulseLog *zap.SugaredLogger
}

// NewManualLoop creates a virtual-time loop driven by Advance and Drain
func NewManualLoop(cfg LoopConfig) *Loop {
	l := newLoop(cfg)
	l.manual = true
	l.now = cfg.Epoch
	if l.now.IsZero() {
		l.now = DefaultLoopConfig().Epoch
	}
	return l
}

// NewLoop creates a wall-clock loop; callbacks run inside Run
func NewLoop(cfg LoopConfig) *Loop {
	return newLoop(cfg)
}

func newLoop(cfg LoopConfig) *Loop {
	frame := cfg.FrameInterval
	if frame <= 0 {
		frame = DefaultLoopConfig().FrameInterval
	}
	return &Loop{
		frame:    frame,
		wake:     make(chan struct{}, 1),
		pulseLog: logger.WithSymbol(logger.ChildLogger(cfg.Logger, logger.FieldComponent, "pulse"), sym.Pulse),
	}
}

// Now returns the loop's current time
func (l *Loop) Now() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nowLocked()
}

func (l *Loop) nowLocked() time.Time {
	if l.manual {
		return l.now
	}
	return time.Now()
}

// FrameInterval returns the configured frame interval
func (l *Loop) FrameInterval() time.Duration {
	return l.frame
}

// AfterFunc arms a timer. Non-positive durations fire on the next turn.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	return l.arm(d, fn, false)
}

// RequestFrame arms a callback for the next frame
func (l *Loop) RequestFrame(fn func()) Timer {
	return l.arm(l.frame, fn, true)
}

func (l *Loop) arm(d time.Duration, fn func(), frame bool) Timer {
	if d < 0 {
		d = 0
	}
	l.mu.Lock()
	l.seq++
	t := &timer{loop: l, at: l.nowLocked().Add(d), seq: l.seq, fn: fn, frame: frame}
	heap.Push(&l.timers, t)
	l.mu.Unlock()
	l.signal()
	return t
}

// Post queues fn to run after the current callback
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
	l.signal()
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of armed timers and queued tasks
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.timers) + len(l.posted)
}

// Stats returns a snapshot of loop counters
func (l *Loop) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Drain runs posted tasks until none remain. Tasks posted while draining run
// in the same call. Timers are not fired.
func (l *Loop) Drain() {
	for {
		l.mu.Lock()
		if len(l.posted) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.posted[0]
		l.posted = l.posted[1:]
		l.stats.TasksRun++
		l.mu.Unlock()

		fn()
	}
}

// Advance moves virtual time forward by d, firing every timer that comes due
// in deadline order and draining posted tasks between callbacks.
func (l *Loop) Advance(d time.Duration) {
	if !l.manual {
		panic("pulse: Advance called on a realtime loop")
	}

	l.mu.Lock()
	target := l.now.Add(d)
	l.mu.Unlock()

	l.Drain()
	for {
		l.mu.Lock()
		if len(l.timers) == 0 || l.timers[0].at.After(target) {
			l.now = target
			l.mu.Unlock()
			break
		}
		t := heap.Pop(&l.timers).(*timer)
		if t.at.After(l.now) {
			l.now = t.at
		}
		l.countLocked(t)
		l.mu.Unlock()

		t.fn()
		l.Drain()
	}
	l.Drain()
}

// Flush fires everything that is due now without moving the clock
func (l *Loop) Flush() {
	l.Advance(0)
}

func (l *Loop) countLocked(t *timer) {
	if t.frame {
		l.stats.FramesRun++
	} else {
		l.stats.TimersFired++
	}
}

// Run executes callbacks on the calling goroutine until ctx is done
func (l *Loop) Run(ctx context.Context) error {
	if l.manual {
		panic("pulse: Run called on a manual loop")
	}

	l.pulseLog.Debugw("Loop started", "frame_interval", l.frame)
	defer l.pulseLog.Debugw("Loop stopped")

	wait := time.NewTimer(time.Hour)
	defer wait.Stop()

	for {
		l.Drain()

		l.mu.Lock()
		var next time.Duration = -1
		var due *timer
		if len(l.timers) > 0 {
			if until := time.Until(l.timers[0].at); until <= 0 {
				due = heap.Pop(&l.timers).(*timer)
				l.countLocked(due)
			} else {
				next = until
			}
		}
		l.mu.Unlock()

		if due != nil {
			due.fn()
			continue
		}

		if next < 0 {
			next = time.Hour
		}
		if !wait.Stop() {
			select {
			case <-wait.C:
			default:
			}
		}
		wait.Reset(next)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		case <-wait.C:
		}
	}
}

// timer is a heap entry; index < 0 once it has fired or been stopped
type timer struct {
	loop  *Loop
	at    time.Time
	seq   uint64
	fn    func()
	frame bool
	index int
}

// Stop cancels the timer
func (t *timer) Stop() bool {
	l := t.loop
	l.mu.Lock()
	defer l.mu.Unlock()
	if t.index < 0 {
		return false
	}
	heap.Remove(&l.timers, t.index)
	return true
}

// timerQueue orders timers by deadline, then arming order
type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
