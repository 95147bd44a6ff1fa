package stream_test

import (
	"testing"
	"time"

	"github.com/fwojciec/wizard/stream"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestBackoff(t *testing.T) {
	t.Parallel()

	base := 1000 * time.Millisecond
	assert.Equal(t, time.Duration(0), stream.Backoff(base, 0))
	assert.Equal(t, time.Second, stream.Backoff(base, 1))
	assert.Equal(t, 2*time.Second, stream.Backoff(base, 2))
	assert.Equal(t, 4*time.Second, stream.Backoff(base, 3))
	assert.Positive(t, stream.Backoff(base, 1000), "large retry counts must not overflow")
}

func TestBackoffProperty(t *testing.T) {
	t.Parallel()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("each retry doubles the delay", prop.ForAll(
		func(baseMs int64, n int) bool {
			base := time.Duration(baseMs) * time.Millisecond
			return stream.Backoff(base, n+1) == 2*stream.Backoff(base, n)
		},
		gen.Int64Range(1, 10_000),
		gen.IntRange(1, 20),
	))

	properties.Property("first retry waits the base delay", prop.ForAll(
		func(baseMs int64) bool {
			base := time.Duration(baseMs) * time.Millisecond
			return stream.Backoff(base, 1) == base
		},
		gen.Int64Range(0, 10_000),
	))

	properties.TestingRun(t)
}
