// File: internal/agent/executor.go
// Description: The execution collaborator boundary. The loop hands a Plan
// across this interface and waits for an Outcome; everything behind it
// (tool wrappers, sandboxes, remote runners) is out of this subsystem's
// hands. A deterministic simulated executor ships for dry runs and tests.

package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/autopentest/api/schemas"
)

// Executor is the single suspension point of a session: Execute may block
// until the external collaborator produces an Outcome or ctx is done.
type Executor interface {
	Execute(ctx context.Context, plan schemas.Plan) (schemas.Outcome, error)
}

// RateLimitedExecutor wraps another executor with a token-bucket limiter so
// concurrent sessions cannot stampede the collaborator.
type RateLimitedExecutor struct {
	inner   Executor
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewRateLimitedExecutor wraps inner with a sustained plans-per-second rate
// and burst allowance.
func NewRateLimitedExecutor(inner Executor, perSecond float64, burst int, logger *zap.Logger) *RateLimitedExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimitedExecutor{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		log:     logger.Named("executor"),
	}
}

// Execute blocks on the limiter, then delegates. A cancelled wait is
// reported as a failed outcome so the loop can record it and move on.
func (r *RateLimitedExecutor) Execute(ctx context.Context, plan schemas.Plan) (schemas.Outcome, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return schemas.Outcome{
			Success: false,
			Error:   string(ErrCodeRateLimited),
		}, fmt.Errorf("waiting for execution slot: %w", err)
	}
	return r.inner.Execute(ctx, plan)
}

// SimulatedExecutor fabricates plausible outcomes without touching any real
// tool. Results are a pure function of the plan, which keeps dry runs and
// tests reproducible.
type SimulatedExecutor struct {
	log *zap.Logger
}

// NewSimulatedExecutor creates the dry-run executor.
func NewSimulatedExecutor(logger *zap.Logger) *SimulatedExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulatedExecutor{log: logger.Named("simexec")}
}

// Execute synthesizes an outcome for the plan's module. Every module
// "succeeds" and reports module-appropriate findings so the learning path
// of the loop is exercised end to end.
func (s *SimulatedExecutor) Execute(ctx context.Context, plan schemas.Plan) (schemas.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return schemas.Outcome{Success: false, Error: err.Error()}, err
	}

	s.log.Info("Simulating plan execution",
		zap.String("module", plan.Module),
		zap.Strings("args", plan.Args))

	data := map[string]interface{}{
		"simulated": true,
		"command":   plan.Module + " " + strings.Join(plan.Args, " "),
	}

	switch plan.Module {
	case "recon", "scan":
		data["open_ports"] = []string{"22/tcp", "80/tcp", "443/tcp"}
		data["knowledge"] = []string{"ssh_enabled", "web_server_present"}
	case "vuln", "web":
		data["vulnerability_found"] = true
		data["no_exploitation_yet"] = true
		data["knowledge"] = []string{"sql_injection_candidate", "outdated_web_stack"}
	case "payload":
		data["payload_ready"] = true
		data["knowledge"] = []string{"payload_generated"}
	case "mobile":
		data["knowledge"] = []string{"insecure_storage_suspected"}
	case "wireless":
		data["knowledge"] = []string{"handshake_captured"}
	case "agent":
		data["objectives_complete"] = true
		data["knowledge"] = []string{"assessment_summary_ready"}
	default:
		data["knowledge"] = []string{"no_new_information"}
	}

	return schemas.Outcome{Success: true, Data: data}, nil
}
