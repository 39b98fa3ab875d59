// File: internal/memory/persistence.go
// Description: Durable form of the experience log. The blob carries a
// schema version tag; load fails closed to an empty store so a missing or
// unreadable file can never crash a session.

package memory

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// memorySchemaVersion tags persisted experience blobs.
const memorySchemaVersion = "1"

// memoryBlob is the on-disk representation of the experience log. Only the
// log itself is persisted; indices are rebuilt on load.
type memoryBlob struct {
	SchemaVersion string             `json:"schema_version"`
	Experiences   []experienceRecord `json:"experiences"`
}

// experienceRecord mirrors schemas.Experience for the blob. Kept separate
// so the wire format can evolve without touching the API type.
type experienceRecord struct {
	ID            string            `json:"id"`
	Context       map[string]string `json:"context"`
	Strategy      string            `json:"strategy"`
	Success       bool              `json:"success"`
	Confidence    float64           `json:"confidence"`
	Knowledge     []string          `json:"knowledge,omitempty"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Timestamp     string            `json:"timestamp"`
}

// Save writes the experience log as a versioned JSON blob. The output is
// deterministic for a given log, so save-after-load with no intervening
// writes reproduces the same structure.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	blob := memoryBlob{
		SchemaVersion: memorySchemaVersion,
		Experiences:   make([]experienceRecord, 0, len(s.experiences)),
	}
	for _, exp := range s.experiences {
		blob.Experiences = append(blob.Experiences, experienceRecord{
			ID:            exp.ID,
			Context:       exp.Context,
			Strategy:      exp.Strategy,
			Success:       exp.Success,
			Confidence:    exp.Confidence,
			Knowledge:     exp.Knowledge,
			FailureReason: exp.FailureReason,
			Timestamp:     exp.Timestamp.Format(timestampLayout),
		})
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling experience memory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating memory directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing memory file: %w", err)
	}
	s.log.Info("Experience memory saved",
		zap.String("path", path),
		zap.Int("experiences", len(blob.Experiences)))
	return nil
}

const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Load restores the experience log from disk into this store, replacing
// its current contents and rebuilding the indices. A missing or unreadable
// blob leaves the store empty and logs a warning; individually corrupt
// records are skipped, never fatal.
func (s *Store) Load(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("Experience memory unreadable, starting empty",
				zap.String("path", path), zap.Error(err))
		}
		return
	}

	var blob memoryBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		s.log.Warn("Experience memory corrupt, starting empty",
			zap.String("path", path), zap.Error(err))
		return
	}
	if blob.SchemaVersion != memorySchemaVersion {
		s.log.Warn("Experience memory schema mismatch, starting empty",
			zap.String("path", path),
			zap.String("found", blob.SchemaVersion),
			zap.String("want", memorySchemaVersion))
		return
	}

	loaded, skipped := s.replaceLog(blob.Experiences)
	s.log.Info("Experience memory loaded",
		zap.String("path", path),
		zap.Int("experiences", loaded),
		zap.Int("skipped", skipped))
}

func (s *Store) replaceLog(records []experienceRecord) (loaded, skipped int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.experiences = s.experiences[:0]
	s.successIndex = make(map[string][]int)
	s.failureIndex = make(map[string][]int)

	for _, rec := range records {
		exp, err := rec.toExperience()
		if err != nil {
			skipped++
			s.log.Warn("Skipping corrupt experience record",
				zap.String("id", rec.ID), zap.Error(err))
			continue
		}
		pos := len(s.experiences)
		s.experiences = append(s.experiences, exp)
		s.indexAt(pos)
		loaded++
	}
	return loaded, skipped
}
