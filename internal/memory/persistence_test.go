// File: internal/memory/persistence_test.go
package memory

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/autopentest/api/schemas"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	store := newTestStore(t)
	base := time.Date(2026, 4, 10, 9, 30, 0, 123456789, time.UTC)
	store.Add(schemas.Experience{
		ID:         "exp-1",
		Context:    map[string]string{"target_type": "web_application", "waf_detected": "true"},
		Strategy:   "encoding_bypass",
		Success:    true,
		Confidence: 0.82,
		Knowledge:  []string{"waf_vendor=cloudflare"},
		Timestamp:  base,
	})
	store.Add(schemas.Experience{
		ID:            "exp-2",
		Context:       map[string]string{"target_type": "network"},
		Strategy:      "syn_scan",
		Success:       false,
		Confidence:    0.4,
		FailureReason: "host unreachable",
		Timestamp:     base.Add(time.Minute),
	})
	return store
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	store := seededStore(t)
	require.NoError(t, store.Save(path))

	restored := newTestStore(t)
	restored.Load(path)

	if diff := cmp.Diff(store.Snapshot(), restored.Snapshot()); diff != "" {
		t.Errorf("restored log diverged (-saved +loaded):\n%s", diff)
	}
}

func TestSaveLoad_SaveAfterLoadIsIdentical(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")

	store := seededStore(t)
	require.NoError(t, store.Save(first))

	restored := newTestStore(t)
	restored.Load(first)
	require.NoError(t, restored.Save(second))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b), "a load/save cycle with no writes must be byte-stable")
}

func TestLoad_MissingFileLeavesStoreEmpty(t *testing.T) {
	store := newTestStore(t)
	store.Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	assert.Equal(t, 0, store.Len())
}

func TestLoad_CorruptBlobLeavesStoreEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := newTestStore(t)
	store.Load(path)
	assert.Equal(t, 0, store.Len())
}

func TestLoad_SchemaMismatchLeavesStoreEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	blob := `{"schema_version":"99","experiences":[{"id":"x","context":{"a":"b"},"strategy":"s","success":true,"timestamp":"2026-04-10T09:30:00.000000000Z"}]}`
	require.NoError(t, os.WriteFile(path, []byte(blob), 0o644))

	store := newTestStore(t)
	store.Load(path)
	assert.Equal(t, 0, store.Len())
}

func TestLoad_SkipsCorruptRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	blob := `{
  "schema_version": "1",
  "experiences": [
    {"id": "good", "context": {"target_type": "network"}, "strategy": "syn_scan", "success": true, "timestamp": "2026-04-10T09:30:00.000000000Z"},
    {"id": "no-strategy", "context": {"target_type": "network"}, "strategy": "", "success": true, "timestamp": "2026-04-10T09:31:00.000000000Z"},
    {"id": "bad-time", "context": {"target_type": "network"}, "strategy": "syn_scan", "success": true, "timestamp": "yesterday"}
  ]
}`
	require.NoError(t, os.WriteFile(path, []byte(blob), 0o644))

	store := newTestStore(t)
	store.Load(path)

	snap := store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "good", snap[0].ID)
}

func TestLoad_ReplacesExistingContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	require.NoError(t, seededStore(t).Save(path))

	store := newTestStore(t)
	store.Add(schemas.Experience{
		Context:  map[string]string{"phase": "stale"},
		Strategy: "leftover",
	})
	store.Load(path)

	assert.Equal(t, 2, store.Len())
	assert.Empty(t, store.SuccessfulStrategies(map[string]string{"phase": "stale"}))
}

func TestSave_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "memory.json")
	require.NoError(t, seededStore(t).Save(path))

	_, err := os.Stat(path)
	require.NoError(t, err)
}
