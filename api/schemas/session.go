// File: api/schemas/session.go
package schemas

import "time"

// SessionState represents a session's phase within the agent's
// observe/reason/act/learn loop.
type SessionState string

const (
	StateIdle       SessionState = "IDLE"       // The session exists but has not started.
	StateObserving  SessionState = "OBSERVING"  // Building a context snapshot from the latest plan or outcome.
	StateReasoning  SessionState = "REASONING"  // Evaluating rules against the current context.
	StateActing     SessionState = "ACTING"     // A plan has been dispatched; awaiting its outcome.
	StateLearning   SessionState = "LEARNING"   // Folding the outcome into experience memory.
	StateTerminated SessionState = "TERMINATED" // The session has ended.
)

// Experience is one record of a past decision and its outcome. Records are
// append-only: the agent loop creates them, experience memory owns them.
// Knowledge is present only on success, FailureReason only on failure.
type Experience struct {
	ID            string            `json:"id"`
	Context       map[string]string `json:"context"`
	Strategy      string            `json:"strategy"`
	Success       bool              `json:"success"`
	Confidence    float64           `json:"confidence"`
	Knowledge     []string          `json:"knowledge,omitempty"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

// RecommendedAction is a single ranked suggestion from the reasoning engine.
type RecommendedAction struct {
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// ReasoningResult is the output of one reasoning engine call. ReasoningPath
// records the identifiers of the rules that fired, in ranking order, so a
// recommendation can always be audited back to the rules that produced it.
type ReasoningResult struct {
	RecommendedActions []RecommendedAction `json:"recommended_actions"`
	Confidence         float64             `json:"confidence"`
	ReasoningPath      []string            `json:"reasoning_path"`
}

// SessionSummary is returned to the caller when a session terminates.
type SessionSummary struct {
	SessionID       string       `json:"session_id"`
	Request         string       `json:"request"`
	Iterations      int          `json:"iterations"`
	SuccessRate     float64      `json:"success_rate"`
	KnowledgeGained []string     `json:"knowledge_gained,omitempty"`
	FinalState      SessionState `json:"final_state"`
}
