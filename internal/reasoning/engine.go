// File: internal/reasoning/engine.go
// Description: Stateless rule evaluator. Every rule whose predicate matches
// the context fires; recommendations accumulate and are ranked by adjusted
// confidence. Prior experiences are the only external influence: a strategy
// that worked before under a similar context gets a bounded boost, one that
// failed gets a bounded penalty.

package reasoning

import (
	"sort"

	"go.uber.org/zap"

	"github.com/xkilldash9x/autopentest/api/schemas"
	"github.com/xkilldash9x/autopentest/internal/memory"
)

const (
	// memoryBoost is the bounded confidence adjustment applied per
	// direction when similar experiences agree or disagree with a rule.
	memoryBoost = 0.1
	// memoryRecallLimit caps how many prior experiences influence one call.
	memoryRecallLimit = 5

	// DefaultAction is recommended when no rule fires. The loop must
	// always have a next step.
	DefaultAction           = "gather_information"
	defaultActionConfidence = 0.3

	// StopAction designates the recommendation that terminates a session.
	StopAction = "conclude_session"
)

// Recaller is the slice of experience memory the engine depends on.
// *memory.Store satisfies it.
type Recaller interface {
	FindSimilar(context map[string]string, limit int) []memory.ScoredExperience
}

// Rule is one entry in the fixed, ordered rule table.
type Rule struct {
	ID             string
	When           func(ctx map[string]string) bool
	Action         string
	BaseConfidence float64
	Rationale      string
}

// Engine evaluates the rule table against a context snapshot.
type Engine struct {
	log   *zap.Logger
	rules []Rule
}

// NewEngine creates an engine with the default pentest rule set.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{log: logger.Named("reasoning"), rules: defaultRules()}
}

// NewEngineWithRules creates an engine with a caller-supplied rule table,
// used by tests and specialized deployments.
func NewEngineWithRules(logger *zap.Logger, rules []Rule) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{log: logger.Named("reasoning"), rules: rules}
}

// firedRule carries ranking state for one matched rule.
type firedRule struct {
	rule       Rule
	confidence float64
	order      int // declaration position, the tie-break key
}

// Reason evaluates all rules against the context. Fired rules accumulate
// rather than short-circuit; ranking is adjusted-confidence descending with
// declaration order breaking ties. An empty result is replaced by the
// low-confidence default recommendation.
func (e *Engine) Reason(context map[string]string, mem Recaller) schemas.ReasoningResult {
	var fired []firedRule
	for i, rule := range e.rules {
		if rule.When(context) {
			fired = append(fired, firedRule{rule: rule, confidence: rule.BaseConfidence, order: i})
		}
	}

	if len(fired) == 0 {
		e.log.Debug("No rule fired, recommending default action")
		return schemas.ReasoningResult{
			RecommendedActions: []schemas.RecommendedAction{{
				Action:     DefaultAction,
				Confidence: defaultActionConfidence,
				Rationale:  "no rule matched the current context; collect more information",
			}},
			Confidence:    defaultActionConfidence,
			ReasoningPath: []string{"default"},
		}
	}

	if mem != nil {
		e.adjustFromMemory(context, mem, fired)
	}

	sort.SliceStable(fired, func(i, j int) bool {
		if fired[i].confidence != fired[j].confidence {
			return fired[i].confidence > fired[j].confidence
		}
		return fired[i].order < fired[j].order
	})

	result := schemas.ReasoningResult{
		RecommendedActions: make([]schemas.RecommendedAction, 0, len(fired)),
		ReasoningPath:      make([]string, 0, len(fired)),
	}
	var total float64
	for _, f := range fired {
		result.RecommendedActions = append(result.RecommendedActions, schemas.RecommendedAction{
			Action:     f.rule.Action,
			Confidence: f.confidence,
			Rationale:  f.rule.Rationale,
		})
		result.ReasoningPath = append(result.ReasoningPath, f.rule.ID)
		total += f.confidence
	}
	result.Confidence = total / float64(len(fired))

	e.log.Debug("Reasoning complete",
		zap.Strings("path", result.ReasoningPath),
		zap.Float64("confidence", result.Confidence))
	return result
}

// adjustFromMemory applies the bounded experience-based confidence
// adjustment: +memoryBoost (capped at 1.0) when a similar context saw the
// rule's action succeed, -memoryBoost (floored at 0.0) when it failed.
// Each direction applies at most once per rule.
func (e *Engine) adjustFromMemory(context map[string]string, mem Recaller, fired []firedRule) {
	similar := mem.FindSimilar(context, memoryRecallLimit)
	if len(similar) == 0 {
		return
	}

	for i := range fired {
		var sawSuccess, sawFailure bool
		for _, exp := range similar {
			if exp.Strategy != fired[i].rule.Action {
				continue
			}
			if exp.Success {
				sawSuccess = true
			} else {
				sawFailure = true
			}
		}
		if sawSuccess {
			fired[i].confidence = min(fired[i].confidence+memoryBoost, 1.0)
		}
		if sawFailure {
			fired[i].confidence = max(fired[i].confidence-memoryBoost, 0.0)
		}
	}
}
