// File: internal/agent/service.go
// Description: Runs multiple sessions concurrently, one Agent per request,
// over a shared experience memory. The memory store is the only shared
// mutable state between sessions; its internal locking provides the
// single-writer discipline.

package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/autopentest/api/schemas"
	"github.com/xkilldash9x/autopentest/internal/config"
	"github.com/xkilldash9x/autopentest/internal/memory"
	"github.com/xkilldash9x/autopentest/internal/reasoning"
)

// Service fans incoming requests out to independent sessions with bounded
// concurrency.
type Service struct {
	cfg      config.AgentConfig
	log      *zap.Logger
	pipeline *IntentPipeline
	memory   *memory.Store
	engine   *reasoning.Engine
	executor Executor
}

// NewService creates the multi-session runner.
func NewService(
	cfg config.AgentConfig,
	pipeline *IntentPipeline,
	mem *memory.Store,
	engine *reasoning.Engine,
	executor Executor,
	logger *zap.Logger,
) (*Service, error) {
	if pipeline == nil || mem == nil || engine == nil || executor == nil || logger == nil {
		return nil, fmt.Errorf("cannot initialize agent service with nil dependencies")
	}
	return &Service{
		cfg:      cfg,
		log:      logger.Named("service"),
		pipeline: pipeline,
		memory:   mem,
		engine:   engine,
		executor: executor,
	}, nil
}

// RunAll executes one session per request, at most cfg.MaxSessions at a
// time, and returns the summaries in request order. Sessions never return
// errors; the group exists for concurrency limiting and ctx propagation.
func (s *Service) RunAll(ctx context.Context, requests []string) ([]schemas.SessionSummary, error) {
	summaries := make([]schemas.SessionSummary, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	limit := s.cfg.MaxSessions
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, request := range requests {
		i, request := i, request
		g.Go(func() error {
			ag, err := New(s.cfg, s.pipeline, s.memory, s.engine, s.executor, s.log)
			if err != nil {
				return fmt.Errorf("building session agent: %w", err)
			}
			summaries[i] = ag.Run(gctx, request)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summaries, err
	}
	return summaries, nil
}
