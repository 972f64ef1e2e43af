package activity

import (
	"context"
	"fmt"
	"time"
)

// Recorder appends audit entries. It must be called inside the same
// transaction as the mutation it documents: the sequence increment, the
// business write and the audit insert commit or roll back as one unit.
type Recorder struct {
	log Repository
	seq SequenceSource
	now func() time.Time
}

// NewRecorder creates a Recorder. now may be nil, in which case time.Now
// is used.
func NewRecorder(log Repository, seq SequenceSource, now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{log: log, seq: seq, now: now}
}

// Record assigns the entry its per-project sequence number and timestamp
// and appends it. Entries with an empty changes payload are rejected:
// every audit record must say what changed.
func (r *Recorder) Record(ctx context.Context, entry *Entry) (*Entry, error) {
	if entry == nil {
		return nil, ErrInvalidInput
	}
	if entry.ProjectID == "" || entry.ActorID == "" || entry.EntityType == "" || entry.Action == "" {
		return nil, ErrInvalidInput
	}
	if entry.Changes.Empty() {
		return nil, ErrEmptyChanges
	}

	seq, err := r.seq.NextSeq(ctx, entry.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("assigning audit sequence: %w", err)
	}
	entry.Seq = seq
	entry.CreatedAt = r.now()

	if err := r.log.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("appending audit entry: %w", err)
	}
	return entry, nil
}
