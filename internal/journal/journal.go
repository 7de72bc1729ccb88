// Package journal appends a JSONL audit trail of branch graph transitions:
// rebases started, finished, failed and reconciled, branches landed,
// removed and archived. The core never reads it back; it exists so a user
// can reconstruct what happened across interrupted runs.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// Event kinds identify the transition an event records.
const (
	KindRebaseStart  = "rebase_start"
	KindRebaseFinish = "rebase_finish"
	KindRebaseFailed = "rebase_failed"
	KindBaseResolved = "base_resolved"
	KindLand         = "land"
	KindRemove       = "remove"
	KindArchive      = "archive"
	KindUnarchive    = "unarchive"
	KindRename       = "rename"
)

// Event is a single journal record.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	Branch    string    `json:"branch"`
	Parent    string    `json:"parent,omitempty"`
	From      string    `json:"from,omitempty"`
	Onto      string    `json:"onto,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Emitter appends events to a JSONL file. A nil *Emitter is a valid no-op
// emitter, so callers never need to check whether journaling is enabled.
type Emitter struct {
	file *os.File
	enc  *json.Encoder
	now  func() time.Time
}

// Open returns an Emitter appending to path, creating the file if needed.
func Open(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	return &Emitter{
		file: f,
		enc:  json.NewEncoder(f),
		now:  time.Now,
	}, nil
}

// Emit writes evt, stamping it with the current time when it has none.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = e.now().UTC()
	}
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("journal: encode event: %w", err)
	}
	return nil
}

// Record emits evt for callers that must not fail on a journal error. A
// failed write is logged as a warning so gaps in the trail are visible.
func (e *Emitter) Record(evt Event) {
	if err := e.Emit(evt); err != nil {
		log.Warn().Err(err).Str("kind", evt.Kind).Str("branch", evt.Branch).Msg("journal event lost")
	}
}

// Close closes the underlying file.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("journal: close: %w", err)
	}
	return nil
}
