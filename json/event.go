// Package json implements the JSON wire format of the stream protocol and the
// on-disk format of saved stream results.
package json

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/wizard"
)

// defaultErrorMessage is used when an error event carries no message, so a
// terminal error is never blank.
const defaultErrorMessage = "Stream error"

// eventDTO is the JSON representation of an Event with a type discriminator.
type eventDTO struct {
	Type    string          `json:"type"`
	Content *string         `json:"content,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Index   *int            `json:"index,omitempty"`
	Message *string         `json:"message,omitempty"`
}

// UnmarshalEvent decodes one "data: " payload. Invalid JSON, an unknown type
// and missing mandatory fields are reported as wizard.ErrProtocol.
func UnmarshalEvent(data []byte) (wizard.Event, error) {
	var dto eventDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("unmarshal event: %v: %w", err, wizard.ErrProtocol)
	}
	switch dto.Type {
	case "text_chunk":
		if dto.Content == nil {
			return nil, fmt.Errorf("text_chunk without content: %w", wizard.ErrProtocol)
		}
		return wizard.EventTextChunk{Content: *dto.Content}, nil
	case "structured_data":
		var obj map[string]any
		if err := decodeData(dto.Data, &obj); err != nil || obj == nil {
			return nil, fmt.Errorf("structured_data: data must be an object: %w", wizard.ErrProtocol)
		}
		return wizard.EventStructuredData{Data: obj, Index: dto.Index}, nil
	case "structured_complete":
		var v any
		if err := decodeData(dto.Data, &v); err != nil {
			return nil, fmt.Errorf("structured_complete: %v: %w", err, wizard.ErrProtocol)
		}
		return wizard.EventStructuredComplete{Data: v}, nil
	case "completion":
		var v any
		if err := decodeData(dto.Data, &v); err != nil {
			return nil, fmt.Errorf("completion: %v: %w", err, wizard.ErrProtocol)
		}
		return wizard.EventCompletion{Data: v}, nil
	case "error":
		msg := defaultErrorMessage
		if dto.Message != nil && *dto.Message != "" {
			msg = *dto.Message
		}
		return wizard.EventError{Message: msg}, nil
	case "":
		return nil, fmt.Errorf("event without type: %w", wizard.ErrProtocol)
	default:
		return nil, fmt.Errorf("unknown event type %q: %w", dto.Type, wizard.ErrProtocol)
	}
}

// MarshalEvent encodes an Event as a single-line JSON payload.
func MarshalEvent(e wizard.Event) ([]byte, error) {
	var dto eventDTO
	switch v := e.(type) {
	case wizard.EventTextChunk:
		dto = eventDTO{Type: "text_chunk", Content: &v.Content}
	case wizard.EventStructuredData:
		raw, err := json.Marshal(v.Data)
		if err != nil {
			return nil, fmt.Errorf("marshal structured_data: %w", err)
		}
		dto = eventDTO{Type: "structured_data", Data: raw, Index: v.Index}
	case wizard.EventStructuredComplete:
		raw, err := json.Marshal(v.Data)
		if err != nil {
			return nil, fmt.Errorf("marshal structured_complete: %w", err)
		}
		dto = eventDTO{Type: "structured_complete", Data: raw}
	case wizard.EventCompletion:
		raw, err := json.Marshal(v.Data)
		if err != nil {
			return nil, fmt.Errorf("marshal completion: %w", err)
		}
		dto = eventDTO{Type: "completion", Data: raw}
	case wizard.EventError:
		dto = eventDTO{Type: "error", Message: &v.Message}
	default:
		return nil, fmt.Errorf("unknown event type: %T", e)
	}
	return json.Marshal(dto)
}

func decodeData(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}
