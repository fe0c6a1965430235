package ember

import (
	"sort"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Host is the environment a Game runs in: the render surface, timers, the
// per-frame driver, the wall clock and the input devices. Every callback a
// Host invokes must run on the loop goroutine.
type Host interface {
	// Ready reports whether the render surface is available.
	Ready() bool
	// After schedules fn to run once, no sooner than d from now.
	After(d time.Duration, fn func())
	// StartFrames begins calling tick once per display refresh.
	StartFrames(tick func())
	// StopFrames stops the frame driver. Safe to call when not started.
	StopFrames()
	// Now returns the current wall-clock time.
	Now() time.Time
	// InputSource returns the device driver polled by the InputHub.
	InputSource() InputSource
}

// InputSource is a polled pointer and keyboard device.
type InputSource interface {
	CursorPosition() (x, y int)
	MouseButtonPressed(b MouseButton) bool
	AppendPressedKeys(keys []ebiten.Key) []ebiten.Key
}

type timer struct {
	due time.Time
	seq uint64
	fn  func()
}

// TimerQueue runs one-shot callbacks when Advance is called with a time at
// or past their deadline. Hosts drive it from their loop so timers never
// fire concurrently with a tick.
type TimerQueue struct {
	now    func() time.Time
	timers []timer
	seq    uint64
}

// NewTimerQueue creates a queue that reads the current time from now.
func NewTimerQueue(now func() time.Time) *TimerQueue {
	return &TimerQueue{now: now}
}

// After schedules fn to run once d has elapsed.
func (q *TimerQueue) After(d time.Duration, fn func()) {
	q.seq++
	q.timers = append(q.timers, timer{due: q.now().Add(d), seq: q.seq, fn: fn})
}

// Len returns the number of pending timers.
func (q *TimerQueue) Len() int {
	return len(q.timers)
}

// Clear drops all pending timers.
func (q *TimerQueue) Clear() {
	q.timers = q.timers[:0]
}

// Advance fires every timer due at or before now, in deadline order.
// Timers scheduled by a firing callback wait for a later Advance.
func (q *TimerQueue) Advance(now time.Time) {
	if len(q.timers) == 0 {
		return
	}
	var due []timer
	kept := q.timers[:0]
	for _, t := range q.timers {
		if !t.due.After(now) {
			due = append(due, t)
		} else {
			kept = append(kept, t)
		}
	}
	// Zero the tail so fired callbacks are not retained by the backing array.
	for i := len(kept); i < len(q.timers); i++ {
		q.timers[i] = timer{}
	}
	q.timers = kept

	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].seq < due[j].seq
		}
		return due[i].due.Before(due[j].due)
	})
	for _, t := range due {
		t.fn()
	}
}
