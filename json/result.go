package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/wizard"
)

// envelope is the v1 wire format for a saved stream result.
type envelope struct {
	Version   int    `json:"version"`
	SessionID string `json:"session_id"`
	Phase     string `json:"phase"`
	Text      string `json:"text"`
	Items     []any  `json:"items,omitempty"`
	Error     string `json:"error,omitempty"`
	FinalData any    `json:"final_data,omitempty"`
	Retries   int    `json:"retries"`
}

// MarshalResult serializes a State snapshot in v1 envelope format.
func MarshalResult(s wizard.State) ([]byte, error) {
	env := envelope{
		Version:   1,
		SessionID: s.SessionID,
		Phase:     s.Phase.String(),
		Text:      s.Text,
		Items:     s.PartialData,
		Error:     s.Error,
		FinalData: s.FinalData,
		Retries:   s.Retries,
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalResult deserializes a State snapshot from v1 envelope format.
func UnmarshalResult(data []byte) (wizard.State, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return wizard.State{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return wizard.State{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	phase, err := wizard.ParsePhase(env.Phase)
	if err != nil {
		return wizard.State{}, err
	}
	return wizard.State{
		SessionID:   env.SessionID,
		Phase:       phase,
		Text:        env.Text,
		PartialData: env.Items,
		Error:       env.Error,
		FinalData:   env.FinalData,
		Retries:     env.Retries,
	}, nil
}

// Save writes a State snapshot to a JSON file, creating parent directories
// as needed. The file is replaced atomically.
func Save(path string, s wizard.State) error {
	data, err := MarshalResult(s)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a State snapshot from a JSON file.
func Load(path string) (wizard.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return wizard.State{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalResult(data)
}
