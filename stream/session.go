package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/wizard"
	wizardjson "github.com/fwojciec/wizard/json"
	"github.com/fwojciec/wizard/partialjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// run drives one session until it ends, fails, or is replaced.
func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, gen uint64, finish func(), url string, req wizard.Request) {
	defer c.wg.Done()
	defer finish()
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "stream.session", trace.WithAttributes(
		attribute.String("wizard.feature", req.Feature),
		attribute.String("wizard.step", req.Step),
	))
	defer func() { c.endSpan(gen, span) }()

	for attempt := 1; ; attempt++ {
		span.AddEvent("attempt", trace.WithAttributes(attribute.Int("attempt", attempt)))
		err := c.attempt(ctx, gen, url, req)
		if err == nil {
			return
		}
		if ctx.Err() != nil {
			c.resetIf(gen)
			return
		}
		delay, ok := c.retry(gen, err)
		if !ok {
			span.RecordError(err)
			return
		}
		span.AddEvent("retry", trace.WithAttributes(
			attribute.Int64("delay_ms", delay.Milliseconds()),
			attribute.String("cause", err.Error()),
		))
		if !c.sleep(ctx, delay) {
			c.resetIf(gen)
			return
		}
	}
}

// attempt performs one connection. It returns nil when the session is
// finished and an error when the connection failed and may be retried.
func (c *Controller) attempt(ctx context.Context, gen uint64, url string, req wizard.Request) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var timer Timer
	if c.timeout > 0 {
		timer = c.clock.AfterFunc(c.timeout, cancel)
	}
	lines, err := c.transport.Open(ctx, url, req)
	if timer != nil && !timer.Stop() {
		if lines != nil {
			_ = lines.Close()
		}
		return fmt.Errorf("no response within %s: %w", c.timeout, wizard.ErrTimeout)
	}
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer lines.Close()

	if !c.update(gen, func(s *wizard.State) { s.Retries = 0 }) {
		return nil
	}

	var buf strings.Builder
	for {
		payload, err := lines.Next()
		if errors.Is(err, io.EOF) {
			c.update(gen, func(s *wizard.State) {
				if !s.Phase.Terminal() {
					s.Phase = wizard.PhaseEnded
				}
			})
			return nil
		}
		if errors.Is(err, wizard.ErrProtocol) {
			c.logger.Warn("unreadable stream line", slog.String("error", err.Error()))
			c.fail(gen, msgParseFailure)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		ev, err := wizardjson.UnmarshalEvent([]byte(payload))
		if err != nil {
			c.logger.Warn("malformed stream event", slog.String("error", err.Error()))
			c.fail(gen, msgParseFailure)
			return nil
		}

		current, terminal := c.dispatch(gen, ev, &buf)
		if !current {
			return nil
		}
		if terminal {
			drain(lines)
			return nil
		}
	}
}

// dispatch applies one event. It reports whether gen is still current and
// whether the event ended the session.
func (c *Controller) dispatch(gen uint64, ev wizard.Event, buf *strings.Builder) (current, terminal bool) {
	switch e := ev.(type) {
	case wizard.EventTextChunk:
		buf.WriteString(e.Content)
		items, ok := c.reconstruct(buf.String())
		return c.update(gen, func(s *wizard.State) {
			c.text.WriteString(e.Content)
			s.Text = c.text.String()
			s.Phase = wizard.PhaseStreaming
			if ok {
				c.rebuilt = items
				s.PartialData = c.itemsLocked()
			}
		}), false

	case wizard.EventStructuredData:
		item := e.Data
		var id string
		if c.dataType != nil {
			if !c.dataType.IsComplete(item) {
				c.logger.Debug("incomplete item dropped", slog.String("data_type", c.dataType.Name))
				return c.update(gen, func(s *wizard.State) { s.Phase = wizard.PhaseStreaming }), false
			}
			v, _ := wizard.LookupPath(item, c.dataType.IDField)
			id = fmt.Sprint(v)
			item = c.dataType.Clean(item)
		}
		return c.update(gen, func(s *wizard.State) {
			s.Phase = wizard.PhaseStreaming
			if c.dedupe && id != "" {
				if _, dup := c.seen[id]; dup {
					c.logger.Debug("duplicate item dropped", slog.String("id", id))
					return
				}
				c.seen[id] = struct{}{}
			}
			c.accepted = append(c.accepted, item)
			s.PartialData = c.itemsLocked()
		}), false

	case wizard.EventStructuredComplete:
		return c.complete(gen, e.Data), true

	case wizard.EventCompletion:
		return c.complete(gen, e.Data), true

	case wizard.EventError:
		c.logger.Warn("stream error event", slog.String("message", e.Message))
		return c.fail(gen, e.Message), true

	default:
		c.fail(gen, msgParseFailure)
		return false, false
	}
}

// reconstruct extracts the configured array from the text of the current
// attempt.
func (c *Controller) reconstruct(text string) ([]any, bool) {
	if c.arrayPath == "" {
		return nil, false
	}
	parsed, ok := partialjson.TryParse(text)
	if !ok {
		return nil, false
	}
	items, ok := partialjson.ExtractArrayAtPath(parsed, c.arrayPath)
	if !ok {
		return nil, false
	}
	if c.dataType != nil {
		items = wizard.Transform(items, *c.dataType, nil)
	}
	return items, true
}

func (c *Controller) complete(gen uint64, data any) bool {
	return c.update(gen, func(s *wizard.State) {
		s.FinalData = data
		s.Phase = wizard.PhaseComplete
	})
}

func (c *Controller) fail(gen uint64, msg string) bool {
	return c.update(gen, func(s *wizard.State) {
		s.Error = msg
		s.Phase = wizard.PhaseError
	})
}

// retry decides what follows a failed attempt. It returns the backoff delay
// and true when another attempt should be made.
func (c *Controller) retry(gen uint64, cause error) (time.Duration, bool) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return 0, false
	}
	retries := c.state.Retries
	c.mu.Unlock()

	if c.onError != nil && !c.onError(cause, retries) {
		c.logger.Warn("retry vetoed", slog.String("error", cause.Error()), slog.Int("retries", retries))
		c.fail(gen, vetoedMessage(cause))
		return 0, false
	}
	if retries >= c.maxRetries {
		c.logger.Error("retries exhausted", slog.String("error", cause.Error()), slog.Int("max_retries", c.maxRetries))
		c.fail(gen, exhaustedMessage(c.maxRetries, cause))
		return 0, false
	}

	var delay time.Duration
	ok := c.update(gen, func(s *wizard.State) {
		s.Retries++
		s.Phase = wizard.PhaseConnecting
		delay = Backoff(c.retryDelay, s.Retries)
	})
	if ok {
		c.logger.Warn("stream connection failed, retrying",
			slog.String("error", cause.Error()),
			slog.Int("retry", retries+1),
			slog.Duration("delay", delay),
		)
	}
	return delay, ok
}

// sleep waits for d on the controller clock. It returns false when ctx is
// cancelled first; the timer is stopped in that case.
func (c *Controller) sleep(ctx context.Context, d time.Duration) bool {
	fired := make(chan struct{})
	timer := c.clock.AfterFunc(d, func() { close(fired) })
	select {
	case <-fired:
		return true
	case <-ctx.Done():
		timer.Stop()
		return false
	}
}

// endSpan annotates span with the terminal state of generation gen, if it
// reached one, and ends it.
func (c *Controller) endSpan(gen uint64, span trace.Span) {
	c.mu.Lock()
	s, ok := c.final, c.finalGen == gen
	c.mu.Unlock()

	if ok {
		span.SetAttributes(
			attribute.String("wizard.session_id", s.SessionID),
			attribute.String("wizard.phase", s.Phase.String()),
			attribute.Int("wizard.items", len(s.PartialData)),
		)
		if s.Phase == wizard.PhaseError {
			span.SetStatus(codes.Error, s.Error)
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
	span.End()
}

// drain consumes the remaining payloads so the server closes the connection
// on its own terms. Nothing read here is dispatched.
func drain(lines wizard.Lines) {
	for {
		if _, err := lines.Next(); err != nil {
			return
		}
	}
}
