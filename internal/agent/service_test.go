// File: internal/agent/service_test.go
package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/autopentest/internal/config"
	"github.com/xkilldash9x/autopentest/internal/memory"
	"github.com/xkilldash9x/autopentest/internal/nlp"
	"github.com/xkilldash9x/autopentest/internal/reasoning"
)

func newServiceFixture(t *testing.T, maxSessions int) (*Service, *memory.Store) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := memory.NewStore(config.MemoryConfig{MaxRecall: 5}, logger)
	pipeline := NewIntentPipeline(nlp.NewParser(logger), nil, logger)
	engine := reasoning.NewEngine(logger)

	svc, err := NewService(config.AgentConfig{
		MaxIterations: 2,
		ActTimeout:    5 * time.Second,
		MaxSessions:   maxSessions,
	}, pipeline, store, engine, NewSimulatedExecutor(logger), logger)
	require.NoError(t, err)
	return svc, store
}

func TestRunAll_SummariesInRequestOrder(t *testing.T) {
	defer goleak.VerifyNone(t)
	svc, _ := newServiceFixture(t, 2)
	requests := []string{
		"scan 10.0.0.1",
		"enumerate hosts on 192.168.1.0/24",
		"check example.com for vulnerabilities",
	}

	summaries, err := svc.RunAll(context.Background(), requests)
	require.NoError(t, err)
	require.Len(t, summaries, len(requests))
	for i, summary := range summaries {
		assert.Equal(t, requests[i], summary.Request)
		assert.NotEmpty(t, summary.SessionID)
	}
}

func TestRunAll_SessionsShareExperienceMemory(t *testing.T) {
	defer goleak.VerifyNone(t)
	svc, store := newServiceFixture(t, 3)
	requests := []string{"scan 10.0.0.1", "scan 10.0.0.2", "scan 10.0.0.3"}

	summaries, err := svc.RunAll(context.Background(), requests)
	require.NoError(t, err)

	total := 0
	for _, summary := range summaries {
		total += summary.Iterations
	}
	assert.Equal(t, total, store.Len(), "every learning step lands in the shared store")
}

func TestRunAll_DistinctSessionIDs(t *testing.T) {
	svc, _ := newServiceFixture(t, 1)

	summaries, err := svc.RunAll(context.Background(), []string{"scan 10.0.0.1", "scan 10.0.0.2"})
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.NotEqual(t, summaries[0].SessionID, summaries[1].SessionID)
}

func TestRunAll_EmptyRequestList(t *testing.T) {
	svc, _ := newServiceFixture(t, 2)

	summaries, err := svc.RunAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
