package reconcile

import "time"

type EntryStatus string

const (
	EntryOK     EntryStatus = "ok"
	EntryFailed EntryStatus = "failed"
)

// EntryResult records the outcome of one staged line. Failed entries carry
// the taxonomy code and message; successful ones carry the stock totals that
// were read and written.
type EntryResult struct {
	ItemID        int64       `json:"itemId"`
	ItemName      string      `json:"itemName,omitempty"`
	Quantity      int         `json:"quantity"`
	PreviousStock int         `json:"previousStock"`
	NewStock      int         `json:"newStock"`
	Status        EntryStatus `json:"status"`
	ErrorCode     string      `json:"errorCode,omitempty"`
	ErrorMessage  string      `json:"errorMessage,omitempty"`
}

// Result is the aggregate for one reconciliation run. It is the only channel
// that surfaces partial failure: no per-entry error escapes the run.
type Result struct {
	RunID      string        `json:"runId"`
	SessionKey string        `json:"-"`
	Attempted  int           `json:"attempted"`
	Succeeded  int           `json:"succeeded"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Entries    []EntryResult `json:"entries"`
}

func (r *Result) Failed() int {
	return r.Attempted - r.Succeeded
}

// Failures returns the failed entries in run order, for callers that want to
// re-stage and resubmit only those.
func (r *Result) Failures() []EntryResult {
	var failures []EntryResult
	for _, entry := range r.Entries {
		if entry.Status == EntryFailed {
			failures = append(failures, entry)
		}
	}
	return failures
}
