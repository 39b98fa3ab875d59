// File: internal/agent/agent.go
// Description: The decision loop orchestrator. One Run call drives a single
// session through Idle -> Observing -> Reasoning -> Acting -> Learning until
// a termination condition is met, delegating actual execution to the
// Executor collaborator. The loop is synchronous and single-threaded; the
// Acting step is its only suspension point.

package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/autopentest/api/schemas"
	"github.com/xkilldash9x/autopentest/internal/config"
	"github.com/xkilldash9x/autopentest/internal/memory"
	"github.com/xkilldash9x/autopentest/internal/reasoning"
	"github.com/xkilldash9x/autopentest/internal/synth"
)

// Agent wires the intent pipeline, experience memory, reasoning engine and
// executor into the observe/reason/act/learn cycle. A single Agent may run
// many sessions; experience memory is the only state shared between them.
type Agent struct {
	cfg      config.AgentConfig
	log      *zap.Logger
	pipeline *IntentPipeline
	memory   *memory.Store
	engine   *reasoning.Engine
	executor Executor

	mu      sync.Mutex
	current *sessionState
}

// New creates an Agent. All dependencies are required; there are no global
// fallbacks, which keeps instances independent for tests.
func New(
	cfg config.AgentConfig,
	pipeline *IntentPipeline,
	mem *memory.Store,
	engine *reasoning.Engine,
	executor Executor,
	logger *zap.Logger,
) (*Agent, error) {
	if pipeline == nil || mem == nil || engine == nil || executor == nil || logger == nil {
		return nil, fmt.Errorf("cannot initialize agent with nil dependencies")
	}
	if cfg.MaxIterations <= 0 {
		return nil, fmt.Errorf("agent requires a positive iteration budget, got %d", cfg.MaxIterations)
	}
	return &Agent{
		cfg:      cfg,
		log:      logger.Named("agent"),
		pipeline: pipeline,
		memory:   mem,
		engine:   engine,
		executor: executor,
	}, nil
}

// Run executes one full session for the request and returns its summary.
// Errors never escape the loop: every failure mode is recorded as a
// degraded step and the session always terminates normally.
func (a *Agent) Run(ctx context.Context, request string) schemas.SessionSummary {
	st := &sessionState{
		id:                  uuid.NewString(),
		request:             request,
		state:               schemas.StateIdle,
		startTime:           time.Now(),
		objectivesCompleted: make(map[string]struct{}),
	}
	a.setCurrent(st)
	defer a.setCurrent(nil)

	a.log.Info("Session starting",
		zap.String("session_id", st.id),
		zap.String("request", request),
		zap.Int("max_iterations", a.cfg.MaxIterations))

	// Idle -> Observing: interpret the request and synthesize the initial
	// plan. The pipeline degrades internally, so this cannot fail.
	st.state = schemas.StateObserving
	st.intent = a.pipeline.Interpret(request)
	st.plan = synth.Synthesize(st.intent)

	for {
		if a.cancelled(ctx, st) {
			break
		}

		// Observing: snapshot the situation from the latest plan/outcome.
		st.state = schemas.StateObserving
		snapshot := buildContext(st)

		if a.cancelled(ctx, st) {
			break
		}

		// Reasoning: evaluate the rule table against the snapshot.
		st.state = schemas.StateReasoning
		result := a.engine.Reason(snapshot, a.memory)
		top := result.RecommendedActions[0]

		a.log.Debug("Next action selected",
			zap.String("session_id", st.id),
			zap.String("action", top.Action),
			zap.Float64("confidence", top.Confidence),
			zap.Strings("reasoning_path", result.ReasoningPath))

		if a.cancelled(ctx, st) {
			break
		}

		// Acting: adjust the plan for the chosen action and dispatch it.
		st.state = schemas.StateActing
		st.lastAction = top.Action

		var outcome schemas.Outcome
		if top.Action == reasoning.StopAction {
			// The stop action executes nothing; it records the decision so
			// the termination check after Learning picks it up.
			st.objectivesCompleted["primary_objective"] = struct{}{}
			outcome = schemas.Outcome{Success: true, Data: map[string]interface{}{
				"concluded": true,
			}}
		} else {
			st.plan = a.planForAction(top.Action, st)
			outcome = a.execute(ctx, st)
		}
		st.lastOutcome = &outcome

		// Learning: fold the outcome into experience memory and session
		// knowledge, then run the termination checks.
		st.state = schemas.StateLearning
		a.learn(st, snapshot, top, outcome)
		st.iteration++

		if top.Action == reasoning.StopAction {
			a.log.Info("Session concluded by stop action", zap.String("session_id", st.id))
			break
		}
		if st.iteration >= a.cfg.MaxIterations {
			a.log.Info("Iteration budget exhausted",
				zap.String("session_id", st.id),
				zap.Int("iterations", st.iteration))
			break
		}
	}

	st.state = schemas.StateTerminated
	summary := st.summary()
	a.log.Info("Session terminated",
		zap.String("session_id", st.id),
		zap.Int("iterations", summary.Iterations),
		zap.Float64("success_rate", summary.SuccessRate),
		zap.Int("knowledge", len(summary.KnowledgeGained)))
	return summary
}

// Status returns a snapshot of the currently running session, or a
// terminated placeholder when idle.
func (a *Agent) Status() Snapshot {
	a.mu.Lock()
	st := a.current
	a.mu.Unlock()

	if st == nil {
		return Snapshot{State: schemas.StateTerminated, MemorySize: a.memory.Len()}
	}
	return Snapshot{
		SessionID:  st.id,
		State:      st.state,
		Iteration:  st.iteration,
		MemorySize: a.memory.Len(),
	}
}

func (a *Agent) setCurrent(st *sessionState) {
	a.mu.Lock()
	a.current = st
	a.mu.Unlock()
}

// cancelled implements cooperative cancellation: checked at the top of each
// state transition, never mid-step. On cancellation a final non-success
// experience is appended before the session terminates.
func (a *Agent) cancelled(ctx context.Context, st *sessionState) bool {
	if ctx.Err() == nil {
		return false
	}

	strategy := st.lastAction
	if strategy == "" {
		strategy = "session_start"
	}
	a.memory.Add(schemas.Experience{
		Context:       buildContext(st),
		Strategy:      strategy,
		Success:       false,
		Confidence:    0,
		FailureReason: string(ErrCodeCancelled),
	})
	a.log.Info("Session cancelled", zap.String("session_id", st.id))
	return true
}

// execute dispatches the current plan. Executor errors become failed
// outcomes; they are recorded and the loop continues to the next iteration
// rather than terminating.
func (a *Agent) execute(ctx context.Context, st *sessionState) schemas.Outcome {
	execCtx := ctx
	if a.cfg.ActTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, a.cfg.ActTimeout)
		defer cancel()
	}

	outcome, err := a.executor.Execute(execCtx, st.plan)
	if err != nil {
		a.log.Warn("Plan execution failed",
			zap.String("session_id", st.id),
			zap.String("module", st.plan.Module),
			zap.Error(err))
		outcome.Success = false
		if outcome.Error == "" {
			outcome.Error = err.Error()
		}
	}
	return outcome
}

// learn appends the experience for this cycle and updates the session's
// accumulated knowledge and objectives.
func (a *Agent) learn(st *sessionState, snapshot map[string]string, action schemas.RecommendedAction, outcome schemas.Outcome) {
	exp := schemas.Experience{
		Context:    snapshot,
		Strategy:   action.Action,
		Success:    outcome.Success,
		Confidence: action.Confidence,
	}
	if outcome.Success {
		exp.Knowledge = knowledgeFrom(outcome)
	} else {
		exp.FailureReason = outcome.Error
		if exp.FailureReason == "" {
			exp.FailureReason = string(ErrCodeExecutionFailure)
		}
	}
	a.memory.Add(exp)

	if outcome.Success {
		st.successes++
		st.knowledgeGained = appendUnique(st.knowledgeGained, exp.Knowledge)
	}
	if boolData(outcome, "objectives_complete") {
		st.objectivesCompleted["primary_objective"] = struct{}{}
	}
}

// planForAction maps a recommended action to an adjusted plan. Actions that
// correspond to a known module re-synthesize from the session intent with
// the module's category; anything unrecognized keeps the current plan.
func (a *Agent) planForAction(action string, st *sessionState) schemas.Plan {
	adjusted := st.intent

	switch action {
	case "generate_payload":
		adjusted.PrimaryCommand = schemas.CategoryPayload
	case "switch_to_passive":
		adjusted.PrimaryCommand = schemas.CategoryRecon
		adjusted.Modifiers = appendUnique(adjusted.Modifiers, []string{"stealth"})
	case "lateral_movement", "credential_replay", "escalate_privileges":
		adjusted.PrimaryCommand = schemas.CategoryComplex
	case "tamper_encoding":
		adjusted.PrimaryCommand = schemas.CategoryWeb
		adjusted.Modifiers = appendUnique(adjusted.Modifiers, []string{"evasive"})
	case "expand_scan_scope":
		adjusted.PrimaryCommand = schemas.CategoryRecon
		adjusted.Modifiers = appendUnique(adjusted.Modifiers, []string{"comprehensive"})
	case reasoning.DefaultAction:
		if st.lastOutcome == nil {
			// First cycle: the synthesized plan IS the information-gathering
			// step; run it before second-guessing it.
			return st.plan
		}
		adjusted.PrimaryCommand = schemas.CategoryRecon
		adjusted.Modifiers = appendUnique(adjusted.Modifiers, []string{"stealth"})
	default:
		a.log.Debug("Action maps to no module, keeping current plan",
			zap.String("session_id", st.id),
			zap.String("action", action),
			zap.String("code", string(ErrCodeUnknownAction)))
		return st.plan
	}

	// Reasoning-driven cycles re-plan without alternatives; the ranked
	// alternatives belong to the initial classification only.
	adjusted.Alternatives = nil
	return synth.Synthesize(adjusted)
}

// buildContext flattens the session's latest plan and outcome into the
// string-keyed snapshot that reasoning rules and experience records share.
func buildContext(st *sessionState) map[string]string {
	ctx := map[string]string{
		"category": string(st.intent.PrimaryCommand),
		"module":   st.plan.Module,
	}
	if st.intent.HasTarget() {
		ctx["target"] = st.intent.PrimaryTarget()
	}
	for _, mod := range st.intent.Modifiers {
		ctx["modifier_"+mod] = "true"
	}
	if st.lastAction != "" {
		ctx["last_action"] = st.lastAction
	}

	if out := st.lastOutcome; out != nil {
		if out.Success {
			ctx["last_success"] = "true"
		} else {
			ctx["last_success"] = "false"
		}
		for k, v := range out.Data {
			switch val := v.(type) {
			case bool:
				if val {
					ctx[k] = "true"
				} else {
					ctx[k] = "false"
				}
			case string:
				ctx[k] = val
			}
		}
	}

	if len(st.objectivesCompleted) > 0 {
		ctx["objectives_complete"] = "true"
	}
	return ctx
}

// knowledgeFrom pulls the learned facts out of an outcome's data payload.
func knowledgeFrom(outcome schemas.Outcome) []string {
	raw, ok := outcome.Data["knowledge"]
	if !ok {
		return nil
	}

	switch facts := raw.(type) {
	case []string:
		out := make([]string, len(facts))
		copy(out, facts)
		return out
	case []interface{}:
		var out []string
		for _, f := range facts {
			if s, ok := f.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func boolData(outcome schemas.Outcome, key string) bool {
	v, ok := outcome.Data[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func appendUnique(dst []string, add []string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, s := range dst {
		seen[s] = struct{}{}
	}
	for _, s := range add {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		dst = append(dst, s)
	}
	return dst
}
