// File: internal/synth/synthesizer.go
// Description: Deterministic mapping from a classified Intent to an
// executable Plan. All knowledge lives in static tables; synthesis is a
// pure function with no I/O.

package synth

import (
	"github.com/xkilldash9x/autopentest/api/schemas"
)

const (
	// maxAlternatives caps how many alternate plan steps are emitted.
	maxAlternatives = 3
	// minAlternativeConfidence keeps near-zero-confidence noise out of the
	// alternatives list.
	minAlternativeConfidence = 0.15
)

// commandSpec is the canonical (module, template) pair for one category.
// Args receive the primary target first and any remaining targets after it;
// Fallback is the target-less variant used when no target was extracted.
type commandSpec struct {
	Module   string
	Args     []string
	Fallback []string
}

// specFor resolves the command spec via an exhaustive switch over the
// closed category enum, so forgetting a new category is a compile-time
// vet/test failure rather than a runtime default.
func specFor(cat schemas.CommandCategory) commandSpec {
	switch cat {
	case schemas.CategoryRecon:
		return commandSpec{
			Module:   "recon",
			Args:     []string{"--ports", "top-1000"},
			Fallback: []string{"--local-discovery"},
		}
	case schemas.CategoryScan:
		return commandSpec{
			Module:   "scan",
			Args:     []string{"--profile", "full"},
			Fallback: []string{"--target", "localhost", "--profile", "baseline"},
		}
	case schemas.CategoryVuln:
		return commandSpec{
			Module:   "vuln",
			Args:     []string{"--tools", "nuclei,sqlmap"},
			Fallback: []string{"--listen-mode", "--tools", "nuclei"},
		}
	case schemas.CategoryWeb:
		return commandSpec{
			Module:   "web",
			Args:     []string{"--tools", "nikto,sqlmap,gobuster"},
			Fallback: []string{"--spider-local"},
		}
	case schemas.CategoryPayload:
		return commandSpec{
			Module:   "payload",
			Args:     []string{"--type", "reverse-shell", "--generator", "msfvenom"},
			Fallback: []string{"--type", "reverse-shell", "--generator", "msfvenom"},
		}
	case schemas.CategoryMobile:
		return commandSpec{
			Module:   "mobile",
			Args:     []string{"--analysis", "dynamic", "--hook", "frida"},
			Fallback: []string{"--list-devices"},
		}
	case schemas.CategoryWireless:
		return commandSpec{
			Module:   "wireless",
			Args:     []string{"--capture", "handshake", "--tool", "aircrack-ng"},
			Fallback: []string{"--interface", "wlan0", "--capture", "handshake", "--tool", "aircrack-ng"},
		}
	case schemas.CategoryComplex:
		return commandSpec{
			Module:   "agent",
			Args:     []string{"--multi-stage"},
			Fallback: []string{"--multi-stage", "--objective", "assess"},
		}
	case schemas.CategoryUnknown:
		// Unknown intent still has to produce a next step: go gather more
		// information passively.
		return commandSpec{
			Module:   "recon",
			Args:     []string{"--passive"},
			Fallback: []string{"--passive", "--local-discovery"},
		}
	default:
		return commandSpec{
			Module:   "recon",
			Args:     []string{"--passive"},
			Fallback: []string{"--passive", "--local-discovery"},
		}
	}
}

// modifierFlags maps canonical modifiers to the extra flags they contribute.
var modifierFlags = map[string][]string{
	"stealth":       {"--timing", "paranoid", "--randomize"},
	"aggressive":    {"--timing", "insane"},
	"quick":         {"--fast"},
	"comprehensive": {"--comprehensive"},
	"evasive":       {"--evasion"},
}

// Synthesize builds a Plan from a resolved Intent. The same Intent always
// produces an identical Plan.
func Synthesize(intent schemas.Intent) schemas.Plan {
	plan := schemas.Plan{}
	plan.Module, plan.Args = fill(intent.PrimaryCommand, intent)

	for _, alt := range intent.Alternatives {
		if len(plan.Alternatives) >= maxAlternatives {
			break
		}
		if alt.Confidence < minAlternativeConfidence {
			// Alternatives are sorted descending, so everything after this
			// one is below the floor too.
			break
		}
		module, args := fill(alt.Category, intent)
		plan.Alternatives = append(plan.Alternatives, schemas.PlanStep{
			Module:     module,
			Args:       args,
			Confidence: alt.Confidence,
		})
	}
	return plan
}

// fill applies the template for one category: primary target first,
// remaining targets as extra args, then the template args, then the flags
// contributed by each modifier.
func fill(cat schemas.CommandCategory, intent schemas.Intent) (string, []string) {
	spec := specFor(cat)

	var args []string
	if intent.HasTarget() {
		args = append(args, intent.Targets...)
		args = append(args, spec.Args...)
	} else {
		args = append(args, spec.Fallback...)
	}

	for _, mod := range intent.Modifiers {
		args = append(args, modifierFlags[mod]...)
	}
	return spec.Module, args
}
