// File: internal/memory/record.go
package memory

import (
	"errors"
	"time"

	"github.com/xkilldash9x/autopentest/api/schemas"
)

// toExperience validates one persisted record and converts it back to the
// API type. Validation mirrors Add: a record with no context or strategy is
// corrupt and gets skipped by the loader.
func (r experienceRecord) toExperience() (schemas.Experience, error) {
	if len(r.Context) == 0 {
		return schemas.Experience{}, errors.New("record has empty context")
	}
	if r.Strategy == "" {
		return schemas.Experience{}, errors.New("record has empty strategy")
	}

	ts, err := time.Parse(timestampLayout, r.Timestamp)
	if err != nil {
		// Older blobs may carry RFC3339 without fixed fraction digits.
		ts, err = time.Parse(time.RFC3339Nano, r.Timestamp)
		if err != nil {
			return schemas.Experience{}, errors.New("record has unparseable timestamp")
		}
	}

	return schemas.Experience{
		ID:            r.ID,
		Context:       r.Context,
		Strategy:      r.Strategy,
		Success:       r.Success,
		Confidence:    r.Confidence,
		Knowledge:     r.Knowledge,
		FailureReason: r.FailureReason,
		Timestamp:     ts,
	}, nil
}
