package stream

import (
	"log/slog"
	"time"

	"github.com/fwojciec/wizard"
	"go.opentelemetry.io/otel/trace"
)

// Defaults applied by New.
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
	DefaultTimeout    = 30 * time.Second
)

// Option configures a [Controller].
type Option func(*Controller)

// WithMaxRetries sets how many consecutive failed attempts are retried
// before the session gives up. Zero disables retries.
func WithMaxRetries(n int) Option {
	return func(c *Controller) { c.maxRetries = max(n, 0) }
}

// WithRetryDelay sets the base delay of the exponential backoff.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Controller) { c.retryDelay = d }
}

// WithTimeout sets how long an attempt may take to open the connection.
// Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// WithArrayPath enables reconstruction of State.PartialData from the
// accumulated text. path is a dot path such as "data.potential_causes".
func WithArrayPath(path string) Option {
	return func(c *Controller) { c.arrayPath = path }
}

// WithDataType filters and cleans items with cfg before they reach
// State.PartialData.
func WithDataType(cfg wizard.DataTypeConfig) Option {
	return func(c *Controller) { c.dataType = &cfg }
}

// WithOnError sets a hook called on every connection failure with the
// number of retries already made. Returning false ends the session with an
// error instead of retrying.
func WithOnError(fn func(err error, retryCount int) bool) Option {
	return func(c *Controller) { c.onError = fn }
}

// WithOnChange sets a hook receiving every state snapshot in order. It runs
// on the goroutine that changed the state and must not call back into the
// controller.
func WithOnChange(fn func(wizard.State)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// WithDeduplication drops structured_data items whose identifier was
// already accepted in the session. It needs WithDataType for the
// identifier field.
func WithDeduplication() Option {
	return func(c *Controller) { c.dedupe = true }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithTracer sets the tracer used for session spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Controller) { c.tracer = t }
}

// WithClock replaces the timer source.
func WithClock(clk Clock) Option {
	return func(c *Controller) { c.clock = clk }
}
