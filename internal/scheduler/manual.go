package scheduler

import (
	"sync"
	"time"
)

// Manual is a scheduler driven by Advance. Callbacks run synchronously on the goroutine calling Advance,
// in due time order, and never while the scheduler lock is held.
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	tasks []*manualTimer
}

type manualTimer struct {
	owner *Manual
	at    time.Time
	seq   uint64
	f     func()
	done  bool
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (that *Manual) Now() time.Time {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.now
}

func (that *Manual) AfterFunc(d time.Duration, f func()) Timer {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.seq++
	task := &manualTimer{owner: that, at: that.now.Add(d), seq: that.seq, f: f}
	that.tasks = append(that.tasks, task)

	return task
}

// Advance moves the clock forward, firing every callback that becomes due, including the ones scheduled
// by callbacks along the way.
func (that *Manual) Advance(d time.Duration) {
	that.mu.Lock()
	target := that.now.Add(d)
	that.mu.Unlock()

	for {
		that.mu.Lock()
		next := that.popDue(target)
		if next == nil {
			that.now = target
			that.mu.Unlock()
			return
		}
		that.now = next.at
		that.mu.Unlock()

		next.f()
	}
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (that *Manual) Pending() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.tasks)
}

func (that *Manual) popDue(target time.Time) *manualTimer {
	index := -1
	for i, task := range that.tasks {
		if task.at.After(target) {
			continue
		}

		if index == -1 || task.at.Before(that.tasks[index].at) ||
			(task.at.Equal(that.tasks[index].at) && task.seq < that.tasks[index].seq) {
			index = i
		}
	}

	if index == -1 {
		return nil
	}

	task := that.tasks[index]
	task.done = true
	that.tasks = append(that.tasks[:index], that.tasks[index+1:]...)

	return task
}

func (that *manualTimer) Stop() bool {
	that.owner.mu.Lock()
	defer that.owner.mu.Unlock()

	if that.done {
		return false
	}

	that.done = true
	for i, task := range that.owner.tasks {
		if task == that {
			that.owner.tasks = append(that.owner.tasks[:i], that.owner.tasks[i+1:]...)
			break
		}
	}

	return true
}
