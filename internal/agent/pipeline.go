// File: internal/agent/pipeline.go
// Description: Intent resolution pipeline: lexical parse, then classifier
// refinement. The classifier's top category wins on disagreement, but the
// parser's extracted targets and modifiers are always kept. An unavailable
// model degrades to the parser's coarse category alone.

package agent

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/autopentest/api/schemas"
	"github.com/xkilldash9x/autopentest/internal/nlp"
)

// Predictor is what the pipeline needs from the trained classifier.
// *classifier.Classifier satisfies it.
type Predictor interface {
	Predict(text string) (schemas.CategoryScore, []schemas.CategoryScore, error)
}

// IntentPipeline composes the lexical parser and the classifier into one
// text-to-Intent step.
type IntentPipeline struct {
	parser    *nlp.Parser
	predictor Predictor
	log       *zap.Logger
}

// NewIntentPipeline builds the pipeline. predictor may be nil, in which
// case every request takes the lexical-only path.
func NewIntentPipeline(parser *nlp.Parser, predictor Predictor, logger *zap.Logger) *IntentPipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntentPipeline{parser: parser, predictor: predictor, log: logger.Named("pipeline")}
}

// Interpret resolves request text into a final Intent.
func (p *IntentPipeline) Interpret(text string) schemas.Intent {
	parsed := p.parser.Parse(text)

	if p.predictor == nil {
		return parsed
	}
	top, alts, err := p.predictor.Predict(text)
	if err != nil {
		// ClassifierUnavailable: the lexical category carries the cycle.
		p.log.Warn("Classifier unavailable, using lexical category",
			zap.String("category", string(parsed.PrimaryCommand)),
			zap.Error(err))
		return parsed
	}

	return mergeIntent(parsed, top, alts)
}

// mergeIntent applies the combination rule: classifier category and
// confidences, parser entities.
func mergeIntent(parsed schemas.Intent, top schemas.CategoryScore, alts []schemas.CategoryScore) schemas.Intent {
	merged := schemas.Intent{
		PrimaryCommand: top.Category,
		Confidence:     top.Confidence,
		Targets:        parsed.Targets,
		Modifiers:      parsed.Modifiers,
	}
	for _, alt := range alts {
		// The classifier's softmax guarantees alternatives never exceed
		// the primary, but clamp anyway so the Intent invariant holds for
		// any Predictor implementation.
		if alt.Confidence > merged.Confidence {
			alt.Confidence = merged.Confidence
		}
		merged.Alternatives = append(merged.Alternatives, alt)
	}
	return merged
}
