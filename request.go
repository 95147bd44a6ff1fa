// Package wizard holds the domain types of the Recipe Wizard streaming core:
// the outbound request, the stream event union, the observable stream state,
// and the data type configs used to decide when a partially streamed item is
// complete enough to show.
package wizard

import (
	"fmt"
	"strings"
)

// Request is the outbound descriptor of one streamed step. It is immutable
// once passed to a controller.
type Request struct {
	Feature string // e.g. "create-recipe"
	Step    string // e.g. "potential-causes"
	Data    any    // step-specific payload, serialized as-is
}

// Validate checks that the request identifies a feature and a step.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Feature) == "" {
		return fmt.Errorf("feature is required: %w", ErrValidation)
	}
	if strings.TrimSpace(r.Step) == "" {
		return fmt.Errorf("step is required: %w", ErrValidation)
	}
	return nil
}
