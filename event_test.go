package wizard_test

import (
	"testing"

	"github.com/fwojciec/wizard"
	"github.com/stretchr/testify/assert"
)

func TestTerminal(t *testing.T) {
	t.Parallel()

	idx := 2
	tests := []struct {
		name  string
		event wizard.Event
		want  bool
	}{
		{"text chunk", wizard.EventTextChunk{Content: "{"}, false},
		{"structured data", wizard.EventStructuredData{Data: map[string]any{"id": "1"}, Index: &idx}, false},
		{"structured complete", wizard.EventStructuredComplete{Data: map[string]any{}}, true},
		{"completion", wizard.EventCompletion{Data: []any{"a"}}, true},
		{"error", wizard.EventError{Message: "Agent failed"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, wizard.Terminal(tt.event))
		})
	}
}

func TestEventTypeSwitch_Exhaustive(t *testing.T) {
	t.Parallel()
	events := []wizard.Event{
		wizard.EventTextChunk{Content: "hello"},
		wizard.EventStructuredData{Data: map[string]any{}},
		wizard.EventStructuredComplete{Data: nil},
		wizard.EventCompletion{Data: nil},
		wizard.EventError{Message: "boom"},
	}
	assert.Len(t, events, 5, "update slice and switch when adding new Event types")
	for _, e := range events {
		switch e.(type) {
		case wizard.EventTextChunk:
		case wizard.EventStructuredData:
		case wizard.EventStructuredComplete:
		case wizard.EventCompletion:
		case wizard.EventError:
		default:
			t.Fatalf("unexpected event type: %T", e)
		}
	}
}
