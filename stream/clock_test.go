package stream_test

import (
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/wizard/stream"
)

// fakeClock is a manually advanced stream.Clock. Every scheduled duration is
// reported on scheduled so tests can wait until the controller armed a
// timer before advancing.
type fakeClock struct {
	mu        sync.Mutex
	now       time.Duration
	timers    []*fakeTimer
	scheduled chan time.Duration
}

type fakeTimer struct {
	clock *fakeClock
	at    time.Duration
	f     func()
	done  bool
}

var _ stream.Clock = (*fakeClock)(nil)

func newFakeClock() *fakeClock {
	return &fakeClock{scheduled: make(chan time.Duration, 64)}
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) stream.Timer {
	c.mu.Lock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	c.mu.Unlock()
	c.scheduled <- d
	return t
}

func (c *fakeClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves time forward and runs the callbacks that became due.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []func()
	for _, t := range c.timers {
		if !t.done && t.at <= c.now {
			t.done = true
			due = append(due, t.f)
		}
	}
	c.mu.Unlock()
	for _, f := range due {
		f()
	}
}

// waitScheduled returns the duration of the next armed timer.
func (c *fakeClock) waitScheduled(t *testing.T) time.Duration {
	t.Helper()
	select {
	case d := <-c.scheduled:
		return d
	case <-time.After(5 * time.Second):
		t.Fatal("no timer scheduled")
		return 0
	}
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}
