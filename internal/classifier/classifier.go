// File: internal/classifier/classifier.go
// Description: Intent classifier wrapping the feed-forward network with a
// frozen bag-of-features vocabulary and versioned weight persistence. The
// model is read-only after Train or Load and safe for unsynchronized
// concurrent Predict calls across sessions.

package classifier

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/autopentest/api/schemas"
	"github.com/xkilldash9x/autopentest/internal/config"
	"github.com/xkilldash9x/autopentest/internal/nlp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// modelSchemaVersion tags persisted weight blobs. Load rejects any other
// version so a stale or foreign file degrades to "untrained model" instead
// of silently producing garbage predictions.
const modelSchemaVersion = "1"

// maxVocabulary caps the bag-of-words feature space. The most frequent
// training tokens win; everything else is ignored at inference time.
const maxVocabulary = 512

// ErrModelNotTrained is returned by Predict when no weights are available.
// Callers fall back to the lexical parser's coarse category.
var ErrModelNotTrained = errors.New("classifier: model not trained or loaded")

var featureTokenSplit = regexp.MustCompile(`[^a-z0-9-]+`)

// EpochMetrics captures one epoch of training diagnostics. Validation
// accuracy is computed from a real validation pass, never simulated.
type EpochMetrics struct {
	Epoch       int     `json:"epoch"`
	Loss        float64 `json:"loss"`
	ValAccuracy float64 `json:"val_accuracy"`
}

// TrainingReport summarizes a full training run.
type TrainingReport struct {
	Samples          int                             `json:"samples"`
	Epochs           []EpochMetrics                  `json:"epochs"`
	FinalValAccuracy float64                         `json:"final_val_accuracy"`
	Distribution     map[schemas.CommandCategory]int `json:"distribution"`
}

// Classifier maps request text to a probability distribution over the
// closed category set.
type Classifier struct {
	cfg     config.ClassifierConfig
	log     *zap.Logger
	vocab   map[string]int
	net     *Network
	trained bool
}

// New creates an untrained classifier. Call Train or Load before Predict.
func New(cfg config.ClassifierConfig, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{cfg: cfg, log: logger.Named("classifier")}
}

// Trained reports whether the model holds usable weights.
func (c *Classifier) Trained() bool { return c.trained }

// Train fits the network on the labeled samples for the configured epoch
// budget, evaluating a validation pass after every epoch.
func (c *Classifier) Train(train, val []Sample) (*TrainingReport, error) {
	if len(train) == 0 {
		return nil, errors.New("classifier: empty training set")
	}

	c.vocab = buildVocabulary(train)
	inputSize := len(c.vocab) + len(schemas.AllCategories)
	rng := rand.New(rand.NewSource(c.cfg.Seed))
	c.net = NewNetwork(inputSize, c.cfg.HiddenSize, len(schemas.AllCategories), rng)

	report := &TrainingReport{
		Samples:      len(train),
		Distribution: Histogram(train),
	}

	order := make([]int, len(train))
	for i := range order {
		order[i] = i
	}

	for epoch := 1; epoch <= c.cfg.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		var epochLoss float64
		for _, idx := range order {
			sample := train[idx]
			label := categoryIndex(sample.Category)
			if label < 0 {
				continue
			}
			epochLoss += c.net.TrainStep(c.features(sample.Text), label, c.cfg.LearningRate)
		}

		metrics := EpochMetrics{
			Epoch:       epoch,
			Loss:        epochLoss / float64(len(train)),
			ValAccuracy: c.evaluate(val),
		}
		report.Epochs = append(report.Epochs, metrics)
		c.log.Debug("Epoch complete",
			zap.Int("epoch", epoch),
			zap.Float64("loss", metrics.Loss),
			zap.Float64("val_accuracy", metrics.ValAccuracy))
	}

	c.trained = true
	if len(report.Epochs) > 0 {
		report.FinalValAccuracy = report.Epochs[len(report.Epochs)-1].ValAccuracy
	}
	return report, nil
}

// Evaluate computes plain accuracy over a labeled set.
func (c *Classifier) Evaluate(samples []Sample) (float64, error) {
	if !c.trained {
		return 0, ErrModelNotTrained
	}
	return c.evaluate(samples), nil
}

func (c *Classifier) evaluate(samples []Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	correct := 0
	for _, s := range samples {
		probs := c.net.Forward(c.features(s.Text))
		if schemas.AllCategories[argmax(probs)] == s.Category {
			correct++
		}
	}
	return float64(correct) / float64(len(samples))
}

// Predict returns the top category with its softmax probability, plus the
// next runner-up categories sorted confidence-descending. Prediction is
// deterministic given identical weights and input.
func (c *Classifier) Predict(text string) (schemas.CategoryScore, []schemas.CategoryScore, error) {
	if !c.trained {
		return schemas.CategoryScore{}, nil, ErrModelNotTrained
	}

	probs := c.net.Forward(c.features(text))
	scored := make([]schemas.CategoryScore, len(probs))
	for i, p := range probs {
		scored[i] = schemas.CategoryScore{Category: schemas.AllCategories[i], Confidence: p}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Confidence > scored[j].Confidence })

	altCount := c.cfg.Alternatives
	if altCount <= 0 || altCount > len(scored)-1 {
		altCount = len(scored) - 1
	}
	return scored[0], scored[1 : 1+altCount], nil
}

// features builds the input vector: bag-of-words over the frozen
// vocabulary plus per-category keyword indicator counts from the lexical
// tables, normalized to keep gradients stable.
func (c *Classifier) features(text string) []float64 {
	vec := make([]float64, len(c.vocab)+len(schemas.AllCategories))
	for _, tok := range tokenize(text) {
		if idx, ok := c.vocab[tok]; ok {
			vec[idx] = 1
		}
	}
	scores := nlp.CategoryScores(text)
	for i, cat := range schemas.AllCategories {
		vec[len(c.vocab)+i] = float64(scores[cat]) / 4.0
	}
	return vec
}

// modelBlob is the on-disk representation of a trained model.
type modelBlob struct {
	SchemaVersion string         `json:"schema_version"`
	Vocabulary    map[string]int `json:"vocabulary"`
	Network       *Network       `json:"network"`
}

// Save writes the trained weights as a versioned JSON blob, creating parent
// directories as needed.
func (c *Classifier) Save(path string) error {
	if !c.trained {
		return ErrModelNotTrained
	}
	blob := modelBlob{
		SchemaVersion: modelSchemaVersion,
		Vocabulary:    c.vocab,
		Network:       c.net,
	}
	data, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling model: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating model directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing model file: %w", err)
	}
	c.log.Info("Model saved", zap.String("path", path), zap.Int("vocabulary", len(c.vocab)))
	return nil
}

// Load restores weights from a versioned blob. It is idempotent: loading
// the same file twice leaves the classifier in the same state. Any failure
// leaves the model untrained so callers can fall back to the lexical path.
func (c *Classifier) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading model file: %w", err)
	}
	var blob modelBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return fmt.Errorf("decoding model file: %w", err)
	}
	if blob.SchemaVersion != modelSchemaVersion {
		return fmt.Errorf("unsupported model schema version %q (want %q)", blob.SchemaVersion, modelSchemaVersion)
	}
	if blob.Network == nil || len(blob.Vocabulary) == 0 {
		return errors.New("model file missing network or vocabulary")
	}
	if err := validateModel(blob.Vocabulary, blob.Network); err != nil {
		return fmt.Errorf("inconsistent model file: %w", err)
	}

	c.vocab = blob.Vocabulary
	c.net = blob.Network
	c.trained = true
	c.log.Info("Model loaded", zap.String("path", path), zap.Int("vocabulary", len(c.vocab)))
	return nil
}

// validateModel checks that a deserialized vocabulary and network agree on
// every dimension, so a schema-valid but internally inconsistent blob is
// rejected at load time instead of panicking inside the first Predict.
func validateModel(vocab map[string]int, net *Network) error {
	wantInput := len(vocab) + len(schemas.AllCategories)
	if net.InputSize != wantInput {
		return fmt.Errorf("input size %d does not match vocabulary (want %d)", net.InputSize, wantInput)
	}
	if net.HiddenSize <= 0 {
		return fmt.Errorf("hidden size %d must be positive", net.HiddenSize)
	}
	if net.OutputSize != len(schemas.AllCategories) {
		return fmt.Errorf("output size %d does not match the category set (want %d)", net.OutputSize, len(schemas.AllCategories))
	}

	if len(net.W1) != net.InputSize || len(net.B1) != net.HiddenSize {
		return fmt.Errorf("hidden layer shape mismatch: w1 %d, b1 %d", len(net.W1), len(net.B1))
	}
	for i, row := range net.W1 {
		if len(row) != net.HiddenSize {
			return fmt.Errorf("w1 row %d has width %d (want %d)", i, len(row), net.HiddenSize)
		}
	}
	if len(net.W2) != net.HiddenSize || len(net.B2) != net.OutputSize {
		return fmt.Errorf("output layer shape mismatch: w2 %d, b2 %d", len(net.W2), len(net.B2))
	}
	for j, row := range net.W2 {
		if len(row) != net.OutputSize {
			return fmt.Errorf("w2 row %d has width %d (want %d)", j, len(row), net.OutputSize)
		}
	}

	for tok, idx := range vocab {
		if idx < 0 || idx >= len(vocab) {
			return fmt.Errorf("vocabulary index %d for %q out of range", idx, tok)
		}
	}
	return nil
}

func buildVocabulary(samples []Sample) map[string]int {
	freq := make(map[string]int)
	for _, s := range samples {
		for _, tok := range tokenize(s.Text) {
			freq[tok]++
		}
	}

	tokens := make([]string, 0, len(freq))
	for tok := range freq {
		tokens = append(tokens, tok)
	}
	// Most frequent first; lexicographic tie-break keeps the vocabulary
	// deterministic for a fixed corpus.
	sort.Slice(tokens, func(i, j int) bool {
		if freq[tokens[i]] != freq[tokens[j]] {
			return freq[tokens[i]] > freq[tokens[j]]
		}
		return tokens[i] < tokens[j]
	})
	if len(tokens) > maxVocabulary {
		tokens = tokens[:maxVocabulary]
	}

	vocab := make(map[string]int, len(tokens))
	for i, tok := range tokens {
		vocab[tok] = i
	}
	return vocab
}

func tokenize(text string) []string {
	var tokens []string
	for _, tok := range featureTokenSplit.Split(strings.ToLower(text), -1) {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func categoryIndex(cat schemas.CommandCategory) int {
	for i, c := range schemas.AllCategories {
		if c == cat {
			return i
		}
	}
	return -1
}

func argmax(vals []float64) int {
	best := 0
	for i, v := range vals {
		if v > vals[best] {
			best = i
		}
	}
	return best
}
