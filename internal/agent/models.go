// File: internal/agent/models.go
package agent

import (
	"time"

	"github.com/xkilldash9x/autopentest/api/schemas"
)

// sessionState is one session's mutable cursor. It is owned exclusively by
// the Run invocation that created it and discarded when the session ends;
// only the experience memory outlives a session.
type sessionState struct {
	id        string
	request   string
	state     schemas.SessionState
	iteration int
	startTime time.Time

	// intent and plan describe the current decision cycle. A new cycle
	// replaces them wholesale; Plans are never mutated after synthesis.
	intent schemas.Intent
	plan   schemas.Plan

	lastAction  string
	lastOutcome *schemas.Outcome

	successes           int
	knowledgeGained     []string
	objectivesCompleted map[string]struct{}
}

// Snapshot is a point-in-time view of a running session, exposed through
// Agent.Status for front ends and diagnostics.
type Snapshot struct {
	SessionID  string               `json:"session_id"`
	State      schemas.SessionState `json:"state"`
	Iteration  int                  `json:"iteration"`
	MemorySize int                  `json:"memory_size"`
}

// summary converts the final session state into the caller-facing result.
func (st *sessionState) summary() schemas.SessionSummary {
	rate := 0.0
	if st.iteration > 0 {
		rate = float64(st.successes) / float64(st.iteration)
	}
	return schemas.SessionSummary{
		SessionID:       st.id,
		Request:         st.request,
		Iterations:      st.iteration,
		SuccessRate:     rate,
		KnowledgeGained: st.knowledgeGained,
		FinalState:      st.state,
	}
}
