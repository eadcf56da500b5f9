package types

import (
	"time"

	"github.com/google/uuid"
)

// ReportMode signals how a report was produced.
type ReportMode string

const (
	// ModeLive means at least one provider was queried.
	ModeLive ReportMode = "live"
	// ModeNone means no source was enabled; the report is empty and the
	// caller must supply content from elsewhere.
	ModeNone ReportMode = "none"
)

// Report is the container for one research run. The orchestrator creates
// it once and never mutates it after the pipeline finishes; downstream
// rendering and delivery collaborators are read-only with respect to it.
type Report struct {
	RunID  uuid.UUID  `json:"run_id"`
	Topic  string     `json:"topic"`
	Window DateWindow `json:"date_window"`
	Depth  Depth      `json:"depth"`
	Mode   ReportMode `json:"mode"`

	// Sources lists the channels that were actually queried.
	Sources []SourceTag   `json:"sources"`
	Items   []ContentItem `json:"items"`

	// Errors maps provider name to failure reason; empty on full success.
	Errors map[string]string `json:"errors"`

	GeneratedAt time.Time     `json:"generated_at"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

// Failed reports whether every queried source failed.
func (r *Report) Failed() bool {
	return len(r.Sources) > 0 && len(r.Errors) == len(r.Sources)
}
