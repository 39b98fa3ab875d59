// File: internal/memory/memory_test.go
package memory

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/autopentest/api/schemas"
	"github.com/xkilldash9x/autopentest/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(config.MemoryConfig{MaxRecall: 5}, zaptest.NewLogger(t))
}

func TestSignature_OrderIndependent(t *testing.T) {
	a := map[string]string{"target_type": "web_application", "ids_detected": "true"}
	b := map[string]string{"ids_detected": "true", "target_type": "web_application"}

	assert.Equal(t, Signature(a), Signature(b))
	assert.Equal(t, "ids_detected=true|target_type=web_application", Signature(a))
}

func TestAdd_MalformedExperienceIsNoop(t *testing.T) {
	store := newTestStore(t)

	// No context, no strategy, and neither: every malformed shape is dropped.
	store.Add(schemas.Experience{Strategy: "port_scan"})
	store.Add(schemas.Experience{Context: map[string]string{"phase": "recon"}})
	store.Add(schemas.Experience{})

	assert.Equal(t, 0, store.Len())
}

func TestAdd_AssignsIDAndTimestamp(t *testing.T) {
	store := newTestStore(t)

	store.Add(schemas.Experience{
		Context:  map[string]string{"phase": "recon"},
		Strategy: "port_scan",
		Success:  true,
	})

	snap := store.Snapshot()
	require.Len(t, snap, 1)
	assert.NotEmpty(t, snap[0].ID)
	assert.False(t, snap[0].Timestamp.IsZero())
}

func TestFindSimilar_ExactContextRanksFirst(t *testing.T) {
	store := newTestStore(t)
	query := map[string]string{"target_type": "web_application", "waf_detected": "true"}

	store.Add(schemas.Experience{
		Context:  map[string]string{"target_type": "web_application"},
		Strategy: "directory_bruteforce",
		Success:  true,
	})
	store.Add(schemas.Experience{
		Context:  map[string]string{"target_type": "web_application", "waf_detected": "true"},
		Strategy: "encoding_bypass",
		Success:  true,
	})
	store.Add(schemas.Experience{
		Context:  map[string]string{"target_type": "network"},
		Strategy: "syn_scan",
		Success:  true,
	})

	got := store.FindSimilar(query, 0)
	require.NotEmpty(t, got)
	assert.Equal(t, "encoding_bypass", got[0].Strategy)
	assert.InDelta(t, 1.0, got[0].Similarity, 1e-9, "an identical context is a perfect match")
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i].Similarity, got[i-1].Similarity)
	}
}

func TestFindSimilar_ExcludesZeroOverlap(t *testing.T) {
	store := newTestStore(t)
	store.Add(schemas.Experience{
		Context:  map[string]string{"target_type": "network"},
		Strategy: "syn_scan",
		Success:  true,
	})

	got := store.FindSimilar(map[string]string{"target_type": "mobile"}, 0)
	assert.Empty(t, got, "same key with a different value shares no pairs")
}

func TestFindSimilar_RecencyBreaksTies(t *testing.T) {
	store := newTestStore(t)
	ctx := map[string]string{"target_type": "web_application"}
	older := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	store.Add(schemas.Experience{Context: ctx, Strategy: "old_strategy", Success: true, Timestamp: older})
	store.Add(schemas.Experience{Context: ctx, Strategy: "new_strategy", Success: true, Timestamp: newer})

	got := store.FindSimilar(ctx, 0)
	require.Len(t, got, 2)
	assert.Equal(t, "new_strategy", got[0].Strategy)
	assert.Equal(t, "old_strategy", got[1].Strategy)
}

func TestFindSimilar_RespectsLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := map[string]string{"target_type": "network"}
	for i := 0; i < 10; i++ {
		store.Add(schemas.Experience{Context: ctx, Strategy: "syn_scan", Success: true})
	}

	assert.Len(t, store.FindSimilar(ctx, 3), 3)
	assert.Len(t, store.FindSimilar(ctx, 0), 5, "limit <= 0 falls back to the configured cap")
}

func TestFindSimilar_EmptyQuery(t *testing.T) {
	store := newTestStore(t)
	store.Add(schemas.Experience{
		Context:  map[string]string{"phase": "recon"},
		Strategy: "port_scan",
	})
	assert.Nil(t, store.FindSimilar(nil, 0))
}

func TestSuccessfulStrategies_ExactSignatureOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := map[string]string{"target_type": "web_application", "waf_detected": "true"}

	store.Add(schemas.Experience{Context: ctx, Strategy: "encoding_bypass", Success: true})
	store.Add(schemas.Experience{Context: ctx, Strategy: "encoding_bypass", Success: true})
	store.Add(schemas.Experience{Context: ctx, Strategy: "direct_injection", Success: false})
	store.Add(schemas.Experience{
		Context:  map[string]string{"target_type": "web_application"},
		Strategy: "directory_bruteforce",
		Success:  true,
	})

	got := store.SuccessfulStrategies(ctx)
	assert.Equal(t, []string{"encoding_bypass"}, got)
}

func TestRebuildIndices_MatchesIncremental(t *testing.T) {
	store := newTestStore(t)
	contexts := []map[string]string{
		{"target_type": "web_application"},
		{"target_type": "network", "internal_access": "true"},
		{"target_type": "web_application"},
		{"ids_detected": "true"},
	}
	for i, ctx := range contexts {
		store.Add(schemas.Experience{
			Context:  ctx,
			Strategy: "strategy",
			Success:  i%2 == 0,
		})
	}

	incrementalSuccess := copyIndex(store.successIndex)
	incrementalFailure := copyIndex(store.failureIndex)

	store.RebuildIndices()

	if diff := cmp.Diff(incrementalSuccess, store.successIndex); diff != "" {
		t.Errorf("success index diverged after rebuild (-incremental +rebuilt):\n%s", diff)
	}
	if diff := cmp.Diff(incrementalFailure, store.failureIndex); diff != "" {
		t.Errorf("failure index diverged after rebuild (-incremental +rebuilt):\n%s", diff)
	}
}

func copyIndex(idx map[string][]int) map[string][]int {
	out := make(map[string][]int, len(idx))
	for sig, positions := range idx {
		out[sig] = append([]int(nil), positions...)
	}
	return out
}
