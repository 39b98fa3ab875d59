// File: internal/reasoning/engine_test.go
package reasoning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/autopentest/api/schemas"
	"github.com/xkilldash9x/autopentest/internal/config"
	"github.com/xkilldash9x/autopentest/internal/memory"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(zaptest.NewLogger(t))
}

func newTestMemory(t *testing.T) *memory.Store {
	t.Helper()
	return memory.NewStore(config.MemoryConfig{MaxRecall: 5}, zaptest.NewLogger(t))
}

func TestReason_UnexploitedVulnerabilityYieldsPayload(t *testing.T) {
	engine := newTestEngine(t)
	ctx := map[string]string{
		"vulnerability_found": "true",
		"no_exploitation_yet": "true",
	}

	result := engine.Reason(ctx, nil)
	require.NotEmpty(t, result.RecommendedActions)
	assert.Equal(t, "generate_payload", result.RecommendedActions[0].Action)
	assert.InDelta(t, 0.9, result.RecommendedActions[0].Confidence, 1e-9)
	assert.Contains(t, result.ReasoningPath, "exploit-discovered-vuln")
}

func TestReason_IDSDetectionGoesPassive(t *testing.T) {
	engine := newTestEngine(t)

	result := engine.Reason(map[string]string{"ids_detected": "true"}, nil)
	require.NotEmpty(t, result.RecommendedActions)
	assert.Equal(t, "switch_to_passive", result.RecommendedActions[0].Action)
}

func TestReason_InternalAccessWithSubnetsPivots(t *testing.T) {
	engine := newTestEngine(t)

	result := engine.Reason(map[string]string{
		"internal_access":  "true",
		"multiple_subnets": "true",
	}, nil)
	require.NotEmpty(t, result.RecommendedActions)
	assert.Equal(t, "lateral_movement", result.RecommendedActions[0].Action)

	// Internal access alone is not enough to pivot.
	solo := engine.Reason(map[string]string{"internal_access": "true"}, nil)
	assert.Equal(t, DefaultAction, solo.RecommendedActions[0].Action)
}

func TestReason_FiredRulesAccumulate(t *testing.T) {
	engine := newTestEngine(t)
	ctx := map[string]string{
		"vulnerability_found": "true",
		"no_exploitation_yet": "true",
		"ids_detected":        "true",
		"waf_detected":        "true",
	}

	result := engine.Reason(ctx, nil)
	require.Len(t, result.RecommendedActions, 3, "every matching rule contributes a recommendation")
	assert.Equal(t, []string{"exploit-discovered-vuln", "go-quiet-on-ids", "tamper-past-waf"}, result.ReasoningPath)

	want := (0.9 + 0.85 + 0.65) / 3
	assert.InDelta(t, want, result.Confidence, 1e-9, "overall confidence is the mean of fired rules")
	for i := 1; i < len(result.RecommendedActions); i++ {
		assert.LessOrEqual(t,
			result.RecommendedActions[i].Confidence,
			result.RecommendedActions[i-1].Confidence)
	}
}

func TestReason_EmptyContextYieldsDefault(t *testing.T) {
	engine := newTestEngine(t)

	result := engine.Reason(map[string]string{}, nil)
	require.Len(t, result.RecommendedActions, 1)
	assert.Equal(t, DefaultAction, result.RecommendedActions[0].Action)
	assert.InDelta(t, 0.3, result.Confidence, 1e-9)
	assert.Equal(t, []string{"default"}, result.ReasoningPath)
}

func TestReason_DeclarationOrderBreaksTies(t *testing.T) {
	rules := []Rule{
		{
			ID:             "first",
			When:           func(map[string]string) bool { return true },
			Action:         "act_first",
			BaseConfidence: 0.5,
		},
		{
			ID:             "second",
			When:           func(map[string]string) bool { return true },
			Action:         "act_second",
			BaseConfidence: 0.5,
		},
	}
	engine := NewEngineWithRules(zaptest.NewLogger(t), rules)

	result := engine.Reason(map[string]string{"anything": "true"}, nil)
	assert.Equal(t, []string{"first", "second"}, result.ReasoningPath)
}

func TestReason_MemoryBoostsPriorSuccess(t *testing.T) {
	engine := newTestEngine(t)
	store := newTestMemory(t)
	ctx := map[string]string{"ids_detected": "true"}

	store.Add(schemas.Experience{
		Context:  ctx,
		Strategy: "switch_to_passive",
		Success:  true,
	})

	result := engine.Reason(ctx, store)
	require.NotEmpty(t, result.RecommendedActions)
	assert.Equal(t, "switch_to_passive", result.RecommendedActions[0].Action)
	assert.InDelta(t, 0.95, result.RecommendedActions[0].Confidence, 1e-9)
}

func TestReason_MemoryPenalizesPriorFailure(t *testing.T) {
	engine := newTestEngine(t)
	store := newTestMemory(t)
	ctx := map[string]string{"ids_detected": "true"}

	store.Add(schemas.Experience{
		Context:  ctx,
		Strategy: "switch_to_passive",
		Success:  false,
	})

	result := engine.Reason(ctx, store)
	require.NotEmpty(t, result.RecommendedActions)
	assert.InDelta(t, 0.75, result.RecommendedActions[0].Confidence, 1e-9)
}

func TestReason_MemoryAdjustmentAppliesOncePerDirection(t *testing.T) {
	engine := newTestEngine(t)
	store := newTestMemory(t)
	ctx := map[string]string{"ids_detected": "true"}

	for i := 0; i < 3; i++ {
		store.Add(schemas.Experience{Context: ctx, Strategy: "switch_to_passive", Success: true})
	}

	result := engine.Reason(ctx, store)
	assert.InDelta(t, 0.95, result.RecommendedActions[0].Confidence, 1e-9,
		"repeated successes do not stack the boost")
}

func TestReason_MemoryAdjustmentStaysBounded(t *testing.T) {
	rules := []Rule{{
		ID:             "near-certain",
		When:           func(map[string]string) bool { return true },
		Action:         "act",
		BaseConfidence: 0.97,
	}}
	engine := NewEngineWithRules(zaptest.NewLogger(t), rules)
	store := newTestMemory(t)
	ctx := map[string]string{"phase": "exploit"}

	store.Add(schemas.Experience{Context: ctx, Strategy: "act", Success: true})

	result := engine.Reason(ctx, store)
	assert.InDelta(t, 1.0, result.RecommendedActions[0].Confidence, 1e-9, "boost is capped at 1.0")
}

func TestReason_ObjectivesCompleteRecommendsStop(t *testing.T) {
	engine := newTestEngine(t)

	result := engine.Reason(map[string]string{"objectives_complete": "true"}, nil)
	require.NotEmpty(t, result.RecommendedActions)
	assert.Equal(t, StopAction, result.RecommendedActions[0].Action)
}
