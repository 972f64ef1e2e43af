package activity

import (
	"encoding/json"
	"fmt"
)

// Changes captures what a mutation did, precisely enough to reconstruct it.
// It is a tagged union over the recorded action: creations and deletions
// carry a full snapshot, updates carry before and after states. A recorded
// entry must never have empty changes.
type Changes struct {
	Snapshot json.RawMessage `json:"snapshot,omitempty"`
	Before   json.RawMessage `json:"before,omitempty"`
	After    json.RawMessage `json:"after,omitempty"`
}

// Created builds the changes payload for a creation: a snapshot of the new
// entity. Also used for member_added, where the snapshot is the membership.
func Created(entity any) (Changes, error) {
	raw, err := json.Marshal(entity)
	if err != nil {
		return Changes{}, fmt.Errorf("marshaling snapshot: %w", err)
	}
	return Changes{Snapshot: raw}, nil
}

// Updated builds the changes payload for an update: the entity before and
// after the mutation. Also used for role_changed.
func Updated(before, after any) (Changes, error) {
	rawBefore, err := json.Marshal(before)
	if err != nil {
		return Changes{}, fmt.Errorf("marshaling before state: %w", err)
	}
	rawAfter, err := json.Marshal(after)
	if err != nil {
		return Changes{}, fmt.Errorf("marshaling after state: %w", err)
	}
	return Changes{Before: rawBefore, After: rawAfter}, nil
}

// Deleted builds the changes payload for a deletion: a snapshot of the
// entity as it was removed. Also used for member_removed.
func Deleted(entity any) (Changes, error) {
	raw, err := json.Marshal(entity)
	if err != nil {
		return Changes{}, fmt.Errorf("marshaling snapshot: %w", err)
	}
	return Changes{Snapshot: raw}, nil
}

// Empty reports whether the payload carries no information.
func (c Changes) Empty() bool {
	return len(c.Snapshot) == 0 && len(c.Before) == 0 && len(c.After) == 0
}
