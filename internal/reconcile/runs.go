package reconcile

import "sync"

// runsPerSession bounds how many finished runs stay retrievable per session.
const runsPerSession = 20

// Runs is the in-memory registry of finished reconciliation runs. Runs are
// diagnostics for the session that submitted them, not durable records, so
// nothing here survives a restart.
type Runs struct {
	mu        sync.RWMutex
	byID      map[string]*Result
	bySession map[string][]string
}

func NewRuns() *Runs {
	return &Runs{
		byID:      make(map[string]*Result),
		bySession: make(map[string][]string),
	}
}

func (r *Runs) Save(result *Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[result.RunID] = result
	ids := append(r.bySession[result.SessionKey], result.RunID)
	for len(ids) > runsPerSession {
		delete(r.byID, ids[0])
		ids = ids[1:]
	}
	r.bySession[result.SessionKey] = ids
}

// Get returns the run only to the session that owns it.
func (r *Runs) Get(runID, sessionKey string) (*Result, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, ok := r.byID[runID]
	if !ok || result.SessionKey != sessionKey {
		return nil, false
	}
	return result, true
}

// List returns the session's runs, most recent last.
func (r *Runs) List(sessionKey string) []*Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.bySession[sessionKey]
	out := make([]*Result, 0, len(ids))
	for _, id := range ids {
		if result, ok := r.byID[id]; ok {
			out = append(out, result)
		}
	}
	return out
}
