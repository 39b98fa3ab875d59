// File: internal/memory/memory.go
// Description: Append-only experience memory with similarity-based recall.
// The experience log is the source of truth; the success/failure strategy
// indices are rebuildable caches over it. Writes are serialized behind a
// write lock while reads proceed concurrently.

package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/autopentest/api/schemas"
	"github.com/xkilldash9x/autopentest/internal/config"
)

// ScoredExperience pairs a recalled experience with its similarity to the
// query context.
type ScoredExperience struct {
	schemas.Experience
	Similarity float64
}

// Store owns the experience log and its derived indices. Sessions only
// append through Add; records are never edited or deleted once stored.
type Store struct {
	log *zap.Logger
	cfg config.MemoryConfig

	mu          sync.RWMutex
	experiences []schemas.Experience
	// successIndex and failureIndex group positions in the experience log
	// by context signature. They are caches: RebuildIndices recomputes them
	// from scratch and must produce the same grouping as incremental Add.
	successIndex map[string][]int
	failureIndex map[string][]int
}

// NewStore creates an empty experience memory.
func NewStore(cfg config.MemoryConfig, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		log:          logger.Named("memory"),
		cfg:          cfg,
		successIndex: make(map[string][]int),
		failureIndex: make(map[string][]int),
	}
}

// Signature builds the canonical, order-independent string form of a
// context map: keys sorted, key=value pairs joined with "|".
func Signature(context map[string]string) string {
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(context[k])
	}
	return b.String()
}

// Add appends one experience to the log and incrementally updates the
// indices. A nil or empty context degrades to a logged no-op: memory
// corruption must never crash the decision loop.
func (s *Store) Add(exp schemas.Experience) {
	if len(exp.Context) == 0 || exp.Strategy == "" {
		s.log.Warn("Discarding malformed experience",
			zap.String("strategy", exp.Strategy),
			zap.Int("context_keys", len(exp.Context)))
		return
	}
	if exp.ID == "" {
		exp.ID = uuid.NewString()
	}
	if exp.Timestamp.IsZero() {
		exp.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos := len(s.experiences)
	s.experiences = append(s.experiences, exp)
	s.indexAt(pos)

	s.log.Debug("Experience recorded",
		zap.String("id", exp.ID),
		zap.String("strategy", exp.Strategy),
		zap.Bool("success", exp.Success))
}

// indexAt folds the experience at position pos into the strategy indices.
// Caller must hold the write lock.
func (s *Store) indexAt(pos int) {
	sig := Signature(s.experiences[pos].Context)
	if s.experiences[pos].Success {
		s.successIndex[sig] = append(s.successIndex[sig], pos)
	} else {
		s.failureIndex[sig] = append(s.failureIndex[sig], pos)
	}
}

// RebuildIndices recomputes the strategy indices from the full log. It
// excludes writers for its duration and produces exactly the grouping that
// incremental Add calls would have.
func (s *Store) RebuildIndices() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.successIndex = make(map[string][]int)
	s.failureIndex = make(map[string][]int)
	for pos := range s.experiences {
		s.indexAt(pos)
	}
	s.log.Debug("Indices rebuilt", zap.Int("experiences", len(s.experiences)))
}

// FindSimilar returns stored experiences scored by Jaccard similarity of
// their key=value pair sets against the query context, sorted score
// descending with ties broken by recency (most recent first). Experiences
// with zero overlap are excluded. limit <= 0 falls back to the configured
// recall cap.
func (s *Store) FindSimilar(context map[string]string, limit int) []ScoredExperience {
	if len(context) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = s.cfg.MaxRecall
	}

	queryPairs := pairSet(context)

	s.mu.RLock()
	scored := make([]ScoredExperience, 0, len(s.experiences))
	for _, exp := range s.experiences {
		sim := jaccard(queryPairs, pairSet(exp.Context))
		if sim <= 0 {
			continue
		}
		scored = append(scored, ScoredExperience{Experience: exp, Similarity: sim})
	}
	s.mu.RUnlock()

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Timestamp.After(scored[j].Timestamp)
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// Len returns the number of stored experiences.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.experiences)
}

// SuccessfulStrategies returns the distinct strategies that previously
// succeeded under the exact context signature.
func (s *Store) SuccessfulStrategies(context map[string]string) []string {
	sig := Signature(context)

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var strategies []string
	for _, pos := range s.successIndex[sig] {
		strat := s.experiences[pos].Strategy
		if _, dup := seen[strat]; dup {
			continue
		}
		seen[strat] = struct{}{}
		strategies = append(strategies, strat)
	}
	return strategies
}

// Snapshot returns a copy of the experience log in append order.
func (s *Store) Snapshot() []schemas.Experience {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]schemas.Experience, len(s.experiences))
	copy(out, s.experiences)
	return out
}

func pairSet(context map[string]string) map[string]struct{} {
	pairs := make(map[string]struct{}, len(context))
	for k, v := range context {
		pairs[k+"="+v] = struct{}{}
	}
	return pairs
}

// jaccard computes intersection-over-union of two pair sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for p := range a {
		if _, ok := b[p]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
