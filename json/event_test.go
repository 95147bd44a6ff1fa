package json_test

import (
	"testing"

	"github.com/fwojciec/wizard"
	wizardjson "github.com/fwojciec/wizard/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalEvent(t *testing.T) {
	t.Parallel()

	idx := 1
	tests := []struct {
		name    string
		payload string
		want    wizard.Event
	}{
		{"text chunk", `{"type":"text_chunk","content":"{\"data\":"}`, wizard.EventTextChunk{Content: `{"data":`}},
		{"empty text chunk", `{"type":"text_chunk","content":""}`, wizard.EventTextChunk{}},
		{"structured data", `{"type":"structured_data","data":{"cause_id":"c1"},"index":1}`,
			wizard.EventStructuredData{Data: map[string]any{"cause_id": "c1"}, Index: &idx}},
		{"structured data without index", `{"type":"structured_data","data":{}}`,
			wizard.EventStructuredData{Data: map[string]any{}}},
		{"structured complete", `{"type":"structured_complete","data":{"potential_causes":[]}}`,
			wizard.EventStructuredComplete{Data: map[string]any{"potential_causes": []any{}}}},
		{"completion", `{"type":"completion","data":["a","b","c"]}`,
			wizard.EventCompletion{Data: []any{"a", "b", "c"}}},
		{"completion without data", `{"type":"completion"}`, wizard.EventCompletion{}},
		{"error", `{"type":"error","message":"Agent failed"}`, wizard.EventError{Message: "Agent failed"}},
		{"error without message", `{"type":"error"}`, wizard.EventError{Message: "Stream error"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := wizardjson.UnmarshalEvent([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshalEvent_ProtocolErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
	}{
		{"invalid json", `{"type":`},
		{"not an object", `"text_chunk"`},
		{"missing type", `{"content":"x"}`},
		{"unknown type", `{"type":"heartbeat"}`},
		{"text chunk without content", `{"type":"text_chunk"}`},
		{"structured data array", `{"type":"structured_data","data":[1]}`},
		{"structured data null", `{"type":"structured_data","data":null}`},
		{"fractional index", `{"type":"structured_data","data":{},"index":1.5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := wizardjson.UnmarshalEvent([]byte(tt.payload))
			assert.ErrorIs(t, err, wizard.ErrProtocol)
		})
	}
}

func TestMarshalEvent_RoundTrip(t *testing.T) {
	t.Parallel()

	idx := 0
	events := []wizard.Event{
		wizard.EventTextChunk{Content: "line one\nline two"},
		wizard.EventStructuredData{Data: map[string]any{"cause_id": "c1", "score": 2.0}, Index: &idx},
		wizard.EventStructuredComplete{Data: map[string]any{"ok": true}},
		wizard.EventCompletion{Data: []any{"a"}},
		wizard.EventError{Message: "Agent failed"},
	}
	for _, e := range events {
		data, err := wizardjson.MarshalEvent(e)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "\n", "payload must fit one data line")

		got, err := wizardjson.UnmarshalEvent(data)
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}
}

func TestMarshalEvent_Unknown(t *testing.T) {
	t.Parallel()
	_, err := wizardjson.MarshalEvent(nil)
	assert.Error(t, err)
}
