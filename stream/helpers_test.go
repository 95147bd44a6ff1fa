package stream_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/wizard"
	wizardjson "github.com/fwojciec/wizard/json"
	"github.com/fwojciec/wizard/mock"
	"github.com/fwojciec/wizard/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURL = "http://wizard.test/api/ai/streaming"

var testReq = wizard.Request{
	Feature: "create-recipe",
	Step:    "potential-causes",
	Data:    map[string]any{"health_concern": "headaches"},
}

// fakeLines yields payloads in order, then io.EOF.
type fakeLines struct {
	mu       sync.Mutex
	payloads []string
	reads    int
	closed   int
}

func newLines(payloads ...string) *fakeLines {
	return &fakeLines{payloads: payloads}
}

func eventLines(t *testing.T, events ...wizard.Event) *fakeLines {
	t.Helper()
	payloads := make([]string, len(events))
	for i, e := range events {
		data, err := wizardjson.MarshalEvent(e)
		require.NoError(t, err)
		payloads[i] = string(data)
	}
	return newLines(payloads...)
}

func (l *fakeLines) mock() *mock.Lines {
	return &mock.Lines{
		NextFn: func() (string, error) {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.reads++
			if len(l.payloads) == 0 {
				return "", io.EOF
			}
			p := l.payloads[0]
			l.payloads = l.payloads[1:]
			return p, nil
		},
		CloseFn: func() error {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.closed++
			return nil
		},
	}
}

func (l *fakeLines) counts() (reads, closed int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reads, l.closed
}

// transportOf returns a transport serving the given lines, one per Open.
// Open fails once they run out.
func transportOf(lines ...*fakeLines) *mock.Transport {
	var mu sync.Mutex
	return &mock.Transport{
		OpenFn: func(context.Context, string, wizard.Request) (wizard.Lines, error) {
			mu.Lock()
			defer mu.Unlock()
			if len(lines) == 0 {
				return nil, io.ErrUnexpectedEOF
			}
			l := lines[0]
			lines = lines[1:]
			return l.mock(), nil
		},
	}
}

// recorder collects every published snapshot.
type recorder struct {
	mu     sync.Mutex
	states []wizard.State
}

func (r *recorder) record(s wizard.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) snapshots() []wizard.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]wizard.State(nil), r.states...)
}

func waitDone(t *testing.T, c *stream.Controller) wizard.State {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("session did not finish")
	}
	return c.State()
}

// assertInvariants checks the state invariants on every snapshot.
func assertInvariants(t *testing.T, states []wizard.State) {
	t.Helper()
	for i, s := range states {
		assert.Falsef(t, s.IsStreaming() && s.IsComplete(), "snapshot %d streaming and complete", i)
		if s.Error != "" {
			assert.Falsef(t, s.IsStreaming(), "snapshot %d has error while streaming", i)
			assert.Equalf(t, wizard.PhaseError, s.Phase, "snapshot %d has error outside error phase", i)
		}
	}
}

func causesConfig() wizard.DataTypeConfig {
	return wizard.DataTypeConfig{
		Name:    "potential_causes",
		IDField: "cause_id",
		Required: []wizard.FieldRule{
			{Name: "name_localized", MinLength: 3},
			{Name: "suggestion_localized", MinLength: 10},
			{Name: "explanation_localized", MinLength: 10},
		},
	}
}

func causeItem(id string) map[string]any {
	return map[string]any{
		"cause_id":              id,
		"name_localized":        "Work-related stress",
		"suggestion_localized":  "Consider daily stress management",
		"explanation_localized": "Prolonged occupational load manifests physically",
	}
}
