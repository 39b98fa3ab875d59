// File: internal/nlp/parser.go
// Description: Rule-based lexical intent parser. Extracts targets, modifiers
// and a coarse command category from free-text pentest requests. The parser
// is the always-available half of intent resolution; the trained classifier
// refines its category when a model is loaded.

package nlp

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/autopentest/api/schemas"
)

// Target pattern families, tried in fixed order: IPv4/CIDR first, then
// URLs, then bare domains. Results are concatenated and de-duplicated
// preserving first-seen order.
var (
	ipv4Pattern   = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}(?:/\d{1,2})?\b`)
	urlPattern    = regexp.MustCompile(`https?://[^\s"'<>]+`)
	domainPattern = regexp.MustCompile(`(?i)\b(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}\b`)

	tokenSplit = regexp.MustCompile(`[^a-z0-9-]+`)
)

// Parser turns raw request text into a coarse, keyword-derived Intent.
// It is stateless apart from its logger; Parse is a pure function of the
// input text and the static tables.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a lexical parser. A nil logger is replaced with a nop.
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{log: logger.Named("nlp")}
}

// Parse extracts targets, modifiers, and the highest keyword-overlap
// category from text. Zero overlap yields CategoryUnknown with confidence 0
// so callers can proceed on a degraded path instead of failing.
func (p *Parser) Parse(text string) schemas.Intent {
	normalized := strings.ToLower(text)
	tokens := tokenSet(normalized)

	intent := schemas.Intent{
		Targets:   p.extractTargets(text),
		Modifiers: extractModifiers(normalized, tokens),
	}

	scores := scoreCategories(normalized, tokens)
	best, bestScore := schemas.CategoryUnknown, 0
	for _, entry := range categoryKeywords {
		if s := scores[entry.Category]; s > bestScore {
			best, bestScore = entry.Category, s
		}
	}

	intent.PrimaryCommand = best
	intent.Confidence = scoreToConfidence(bestScore)

	for _, entry := range categoryKeywords {
		if entry.Category == best {
			continue
		}
		if s := scores[entry.Category]; s > 0 {
			intent.Alternatives = append(intent.Alternatives, schemas.CategoryScore{
				Category:   entry.Category,
				Confidence: scoreToConfidence(s),
			})
		}
	}
	sortAlternatives(intent.Alternatives)

	p.log.Debug("Parsed request",
		zap.String("category", string(intent.PrimaryCommand)),
		zap.Float64("confidence", intent.Confidence),
		zap.Strings("targets", intent.Targets),
		zap.Strings("modifiers", intent.Modifiers))
	return intent
}

// CategoryScores exposes the raw keyword-overlap counts for every category.
// The classifier uses these as indicator features alongside its bag of
// words, keeping the two components aligned on one vocabulary.
func CategoryScores(text string) map[schemas.CommandCategory]int {
	normalized := strings.ToLower(text)
	return scoreCategories(normalized, tokenSet(normalized))
}

// extractTargets runs the three pattern families in order and de-duplicates
// the concatenated matches. Bare domains already covered by a URL match or
// present in the denylist are dropped.
func (p *Parser) extractTargets(text string) []string {
	var targets []string
	seen := make(map[string]struct{})

	appendMatch := func(m string) {
		if _, dup := seen[m]; dup {
			return
		}
		seen[m] = struct{}{}
		targets = append(targets, m)
	}

	for _, m := range ipv4Pattern.FindAllString(text, -1) {
		appendMatch(m)
	}

	urls := urlPattern.FindAllString(text, -1)
	for _, m := range urls {
		appendMatch(strings.TrimRight(m, ".,;:!?)"))
	}

	for _, m := range domainPattern.FindAllString(text, -1) {
		lower := strings.ToLower(m)
		if _, denied := domainDenylist[lower]; denied {
			continue
		}
		if ipv4Pattern.MatchString(m) {
			continue // Already captured by the IP family.
		}
		if containedInAny(m, urls) {
			continue // The hostname of a URL we already extracted.
		}
		appendMatch(m)
	}
	return targets
}

func containedInAny(needle string, haystacks []string) bool {
	for _, h := range haystacks {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}

// extractModifiers is a case-insensitive membership test against the fixed
// modifier vocabulary. Multiple modifiers may co-occur.
func extractModifiers(normalized string, tokens map[string]struct{}) []string {
	var modifiers []string
	for _, entry := range modifierVocab {
		for _, kw := range entry.Keywords {
			if matchKeyword(kw, normalized, tokens) {
				modifiers = append(modifiers, entry.Canonical)
				break
			}
		}
	}
	return modifiers
}

func scoreCategories(normalized string, tokens map[string]struct{}) map[schemas.CommandCategory]int {
	scores := make(map[schemas.CommandCategory]int, len(categoryKeywords))
	for _, entry := range categoryKeywords {
		count := 0
		for _, kw := range entry.Keywords {
			if matchKeyword(kw, normalized, tokens) {
				count++
			}
		}
		scores[entry.Category] = count
	}
	return scores
}

// matchKeyword treats single words as token-set lookups and phrases as
// substring checks, so "scan" does not fire inside "scanner" but
// "sql injection" still matches across token boundaries.
func matchKeyword(kw, normalized string, tokens map[string]struct{}) bool {
	if strings.Contains(kw, " ") {
		return strings.Contains(normalized, kw)
	}
	_, ok := tokens[kw]
	return ok
}

func tokenSet(normalized string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range tokenSplit.Split(normalized, -1) {
		if tok != "" {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}

// scoreToConfidence maps an overlap count to [0,1). One keyword hit gives a
// lukewarm 0.5; each additional hit asymptotically strengthens it.
func scoreToConfidence(score int) float64 {
	if score <= 0 {
		return 0
	}
	return float64(score) / float64(score+1)
}

func sortAlternatives(alts []schemas.CategoryScore) {
	// Insertion sort keeps equal-confidence entries in table declaration
	// order, which is the documented tie-break.
	for i := 1; i < len(alts); i++ {
		for j := i; j > 0 && alts[j].Confidence > alts[j-1].Confidence; j-- {
			alts[j], alts[j-1] = alts[j-1], alts[j]
		}
	}
}
