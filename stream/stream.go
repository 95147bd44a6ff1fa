// Package stream implements the stream state machine: a Controller that opens
// a [wizard.Transport] session, merges its events into one observable
// [wizard.State], and retries failed connections with exponential backoff.
//
// A Controller owns at most one session. Start replaces a running session
// and Reset or Close tears it down. Every session carries a generation
// number; work belonging to a replaced generation never touches the state.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/wizard"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/fwojciec/wizard/stream"

// closedDone is returned by Done when no session is running.
var closedDone = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Controller is the stream state machine. It is safe for concurrent use.
type Controller struct {
	transport  wizard.Transport
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
	arrayPath  string
	dataType   *wizard.DataTypeConfig
	onError    func(error, int) bool
	onChange   func(wizard.State)
	dedupe     bool
	logger     *slog.Logger
	tracer     trace.Tracer
	clock      Clock

	mu        sync.Mutex
	state     wizard.State
	gen       uint64
	cancel    context.CancelFunc
	done      chan struct{}
	closeDone func()
	text      *strings.Builder
	seen      map[string]struct{}
	accepted  []any // structured_data items, never removed
	rebuilt   []any // items reconstructed from the current attempt's text
	closed    bool
	seq       uint64
	final     wizard.State // last terminal state, of generation finalGen
	finalGen  uint64
	wg        sync.WaitGroup

	notifyMu sync.Mutex
	notified uint64
}

// New creates a [Controller] reading from transport.
func New(transport wizard.Transport, opts ...Option) *Controller {
	c := &Controller{
		transport:  transport,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		timeout:    DefaultTimeout,
		logger:     slog.New(slog.DiscardHandler),
		tracer:     otel.Tracer(tracerName),
		clock:      realClock{},
		done:       closedDone,
		closeDone:  func() {},
		text:       new(strings.Builder),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start begins a new session against rawURL, replacing any running one as
// if Reset had been called first. It returns once the session goroutine is
// running. Errors are returned only when the request cannot be issued;
// everything that happens later is reported through State.
//
// Cancelling ctx tears the session down like Reset.
func (c *Controller) Start(ctx context.Context, rawURL string, req wizard.Request) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("stream: %w", err)
	}
	if u, err := url.ParseRequestURI(rawURL); err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("stream: invalid url %q: %w", rawURL, wizard.ErrValidation)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("stream: %w", wizard.ErrClosed)
	}
	c.stopLocked()
	gen := c.gen

	sessCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	done := make(chan struct{})
	finish := sync.OnceFunc(func() { close(done) })
	c.done, c.closeDone = done, finish
	c.text = new(strings.Builder)
	c.seen = make(map[string]struct{})
	c.accepted, c.rebuilt = nil, nil
	c.state = wizard.State{SessionID: uuid.NewString(), Phase: wizard.PhaseConnecting}
	snap, seq := c.snapshotLocked()
	c.wg.Add(1)
	c.mu.Unlock()

	c.logger.Debug("stream start",
		slog.String("session_id", snap.SessionID),
		slog.String("url", rawURL),
		slog.String("feature", req.Feature),
		slog.String("step", req.Step),
	)
	c.notify(seq, snap)

	go c.run(sessCtx, cancel, gen, finish, rawURL, req)
	return nil
}

// Reset cancels the running session, stops its timers and returns the
// state to idle. It is idempotent.
func (c *Controller) Reset() {
	c.mu.Lock()
	snap, seq, changed := c.resetLocked()
	c.mu.Unlock()
	if changed {
		c.notify(seq, snap)
	}
}

func (c *Controller) resetLocked() (wizard.State, uint64, bool) {
	c.stopLocked()
	if c.state.SessionID == "" {
		return wizard.State{}, 0, false
	}
	c.state = wizard.State{}
	c.text = new(strings.Builder)
	c.seen = nil
	c.accepted, c.rebuilt = nil, nil
	snap, seq := c.snapshotLocked()
	return snap, seq, true
}

// Close resets the controller, refuses further sessions and waits for
// session goroutines to exit. The owner of a Controller must call Close
// when it discards it.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.closed = true
	snap, seq, changed := c.resetLocked()
	c.mu.Unlock()
	if changed {
		c.notify(seq, snap)
	}
	c.wg.Wait()
	return nil
}

// State returns a snapshot of the current state.
func (c *Controller) State() wizard.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Done returns a channel closed when the current session reaches a
// terminal phase, is reset, or its goroutine exits. Without a session the
// channel is already closed.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// stopLocked invalidates the current generation and cancels its work.
func (c *Controller) stopLocked() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.closeDone()
}

// update applies fn to the state if gen is still current and publishes the
// result. It reports whether gen was current.
func (c *Controller) update(gen uint64, fn func(s *wizard.State)) bool {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return false
	}
	fn(&c.state)
	snap, seq := c.snapshotLocked()
	if snap.Phase.Terminal() {
		c.final, c.finalGen = snap, gen
		c.closeDone()
	}
	c.mu.Unlock()
	c.notify(seq, snap)
	return true
}

// resetIf resets the state when gen is still current. Used when the
// caller's context ends the session.
func (c *Controller) resetIf(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	snap, seq, changed := c.resetLocked()
	c.mu.Unlock()
	if changed {
		c.notify(seq, snap)
	}
}

// itemsLocked returns the accepted structured items followed by the
// reconstructed ones.
func (c *Controller) itemsLocked() []any {
	items := make([]any, 0, len(c.accepted)+len(c.rebuilt))
	items = append(items, c.accepted...)
	return append(items, c.rebuilt...)
}

func (c *Controller) snapshotLocked() (wizard.State, uint64) {
	c.seq++
	return c.state.Clone(), c.seq
}

// notify delivers snapshots to onChange in publication order, dropping any
// that a newer snapshot overtook.
func (c *Controller) notify(seq uint64, s wizard.State) {
	if c.onChange == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if seq <= c.notified {
		return
	}
	c.notified = seq
	c.onChange(s)
}
