package pipeline

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/pulsewatch/internal/types"
)

// Request is the consumer contract for one run: topic, window, depth,
// and the set of sources to query.
type Request struct {
	Topic   string            `validate:"required,min=2"`
	Window  types.DateWindow  `validate:"required"`
	Depth   types.Depth       `validate:"required"`
	Sources []types.SourceTag `validate:"required,min=1"`
}

var validate = validator.New()

// Validate checks the request before any network work happens.
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	if !r.Window.Valid() {
		return fmt.Errorf("invalid request: window end precedes start")
	}
	if !r.Depth.Valid() {
		return fmt.Errorf("invalid request: unknown depth %q", r.Depth)
	}
	for _, s := range r.Sources {
		if !s.Valid() {
			return fmt.Errorf("invalid request: unknown source %q", s)
		}
	}
	return nil
}
