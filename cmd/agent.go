// File: cmd/agent.go
// Description: The `agent` command runs one decision-loop session (or
// several, when multiple requests are given) and prints the session
// summaries. Without a real executor integration it requires --dry-run,
// which simulates execution while the decision pipeline stays the real one.

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/autopentest/internal/agent"
	"github.com/xkilldash9x/autopentest/internal/classifier"
	"github.com/xkilldash9x/autopentest/internal/memory"
	"github.com/xkilldash9x/autopentest/internal/nlp"
	"github.com/xkilldash9x/autopentest/internal/observability"
	"github.com/xkilldash9x/autopentest/internal/reasoning"
)

var (
	flagMaxIterations int
	flagDryRun        bool
)

var agentCmd = &cobra.Command{
	Use:   "agent \"<request>\" [\"<request>\"...]",
	Short: "Run autonomous pentest sessions from natural-language requests",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.GetLogger()

		if flagMaxIterations > 0 {
			cfg.Agent.MaxIterations = flagMaxIterations
		}
		if flagDryRun {
			cfg.Executor.DryRun = true
		}

		// Classifier is optional: a missing or unreadable model falls back
		// to the lexical parser alone.
		clf := classifier.New(cfg.Classifier, logger)
		var predictor agent.Predictor
		if err := clf.Load(cfg.Classifier.ModelPath); err != nil {
			logger.Warn("Intent model unavailable, lexical parsing only",
				zap.String("path", cfg.Classifier.ModelPath),
				zap.Error(err))
		} else {
			predictor = clf
		}

		store := memory.NewStore(cfg.Memory, logger)
		store.Load(cfg.Memory.Path)

		pipeline := agent.NewIntentPipeline(nlp.NewParser(logger), predictor, logger)
		engine := reasoning.NewEngine(logger)

		// The simulated executor is the only collaborator shipped with the
		// CLI, and it only runs when explicitly asked for. A deployment with
		// a real executor integration installs it on the non-dry-run branch.
		if !cfg.Executor.DryRun {
			return fmt.Errorf("no external executor integration is configured; re-run with --dry-run to simulate execution")
		}
		var executor agent.Executor = agent.NewSimulatedExecutor(logger)
		executor = agent.NewRateLimitedExecutor(executor, cfg.Executor.RateLimit, cfg.Executor.Burst, logger)

		svc, err := agent.NewService(cfg.Agent, pipeline, store, engine, executor, logger)
		if err != nil {
			return fmt.Errorf("initializing agent service: %w", err)
		}

		summaries, err := svc.RunAll(cmd.Context(), args)
		if err != nil {
			return fmt.Errorf("running sessions: %w", err)
		}

		for _, summary := range summaries {
			fmt.Printf("session %s: %d iteration(s), success rate %.0f%%, state %s\n",
				summary.SessionID, summary.Iterations, summary.SuccessRate*100, summary.FinalState)
			if len(summary.KnowledgeGained) > 0 {
				fmt.Printf("  learned: %s\n", strings.Join(summary.KnowledgeGained, ", "))
			}
		}

		if err := store.Save(cfg.Memory.Path); err != nil {
			logger.Warn("Failed to persist experience memory", zap.Error(err))
		}
		return nil
	},
}

func init() {
	agentCmd.Flags().IntVar(&flagMaxIterations, "max-iterations", 0, "override the session iteration budget")
	agentCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "simulate execution instead of invoking tools")
	rootCmd.AddCommand(agentCmd)
}
