package json

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/wizard"
)

type requestDTO struct {
	Feature string `json:"feature"`
	Step    string `json:"step"`
	Data    any    `json:"data"`
}

// MarshalRequest encodes the POST body of a stream request.
func MarshalRequest(r wizard.Request) ([]byte, error) {
	data, err := json.Marshal(requestDTO{Feature: r.Feature, Step: r.Step, Data: r.Data})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return data, nil
}

// UnmarshalRequest decodes a request body. Test servers use it to inspect
// what the client sent.
func UnmarshalRequest(data []byte) (wizard.Request, error) {
	var dto requestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return wizard.Request{}, fmt.Errorf("unmarshal request: %w", err)
	}
	return wizard.Request{Feature: dto.Feature, Step: dto.Step, Data: dto.Data}, nil
}
