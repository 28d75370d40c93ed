// Package classifier implements the online-trainable spending-category model.
// It is a multinomial logistic regression over a fixed feature encoding of
// provider messages, with per-category weight rows persisted across sessions
// through a key/value store.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"salio/sms-ledger/internal/extractor"
	"salio/sms-ledger/internal/logging"
)

const (
	// UnknownCategory is returned for messages the extractor cannot turn
	// into a complete transaction. It is a reserved label, not a model decision.
	UnknownCategory = "UNKNOWN"

	// PredictionPrefix marks a label as model-derived rather than
	// user-confirmed.
	PredictionPrefix = "AI_"

	// DefaultLearningRate is the step size for a single training update.
	DefaultLearningRate = 0.01

	categoriesKey = "categories"
	weightsKey    = "weights"
)

// DefaultCategories seeds the model on first initialization. The set is fixed
// afterwards; every later startup loads it from the store verbatim.
var DefaultCategories = []string{
	"TRANSPORT",
	"AIRTIME & BUNDLES",
	"BILLS",
	"FOOD",
	"SHOPPING",
	"FRIENDS & FAMILY",
	"INCOME",
}

var (
	// ErrNotReady is returned when Predict or Train is called before Init
	// has completed successfully.
	ErrNotReady = errors.New("classifier: not initialized")

	// ErrUnknownCategory is returned by Train for a category label outside
	// the model's fixed category set.
	ErrUnknownCategory = errors.New("classifier: unknown category")

	// ErrInvalidMessage is returned by Train for a message the extractor
	// cannot turn into a complete transaction.
	ErrInvalidMessage = errors.New("classifier: message has no usable transaction features")
)

// KeyValueStore is the persistence boundary for model state. Values are
// JSON-encoded strings.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Classifier owns the persisted model state. It must be initialized with
// Init before any other operation; Predict and Train are serialized through
// one lock so a reader never observes a half-updated weight row.
type Classifier struct {
	mu           sync.Mutex
	kv           KeyValueStore
	log          logging.Logger
	learningRate float64
	categories   []string
	weights      map[string][]float64
	ready        bool
}

// New creates an uninitialized Classifier. A learningRate of 0 selects
// DefaultLearningRate.
func New(kv KeyValueStore, learningRate float64, logger logging.Logger) *Classifier {
	if learningRate <= 0 {
		learningRate = DefaultLearningRate
	}
	if logger == nil {
		logger = logging.NewMockLogger()
	}
	return &Classifier{
		kv:           kv,
		log:          logger,
		learningRate: learningRate,
	}
}

// Init loads categories and weights from the key/value store, synthesizing
// and persisting defaults on first run. Any store failure blocks the
// transition to Ready; the call is safe to retry.
func (c *Classifier) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	categories, err := c.loadCategories(ctx)
	if err != nil {
		return err
	}

	weights, err := c.loadWeights(ctx, categories)
	if err != nil {
		return err
	}

	c.categories = categories
	c.weights = weights
	c.ready = true
	c.log.WithField("categories", len(categories)).Debug("Classifier initialized")
	return nil
}

func (c *Classifier) loadCategories(ctx context.Context) ([]string, error) {
	stored, ok, err := c.kv.Get(ctx, categoriesKey)
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}

	if !ok {
		categories := append([]string(nil), DefaultCategories...)
		encoded, err := json.Marshal(categories)
		if err != nil {
			return nil, fmt.Errorf("encoding categories: %w", err)
		}
		if err := c.kv.Set(ctx, categoriesKey, string(encoded)); err != nil {
			return nil, fmt.Errorf("persisting categories: %w", err)
		}
		return categories, nil
	}

	var categories []string
	if err := json.Unmarshal([]byte(stored), &categories); err != nil {
		return nil, fmt.Errorf("decoding categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("stored category set is empty")
	}
	return categories, nil
}

func (c *Classifier) loadWeights(ctx context.Context, categories []string) (map[string][]float64, error) {
	stored, ok, err := c.kv.Get(ctx, weightsKey)
	if err != nil {
		return nil, fmt.Errorf("loading weights: %w", err)
	}

	if !ok {
		weights := freshWeights(categories)
		encoded, err := json.Marshal(weights)
		if err != nil {
			return nil, fmt.Errorf("encoding weights: %w", err)
		}
		if err := c.kv.Set(ctx, weightsKey, string(encoded)); err != nil {
			return nil, fmt.Errorf("persisting weights: %w", err)
		}
		return weights, nil
	}

	var weights map[string][]float64
	if err := json.Unmarshal([]byte(stored), &weights); err != nil {
		return nil, fmt.Errorf("decoding weights: %w", err)
	}
	if err := validateWeights(weights, categories); err != nil {
		return nil, err
	}
	return weights, nil
}

// freshWeights builds one weight row per category with small random values
// uniform in [-0.01, 0.01].
func freshWeights(categories []string) map[string][]float64 {
	weights := make(map[string][]float64, len(categories))
	for _, category := range categories {
		row := make([]float64, numFeatures)
		for j := range row {
			row[j] = rand.Float64()*0.02 - 0.01
		}
		weights[category] = row
	}
	return weights
}

// validateWeights enforces the model shape invariant: one row per category,
// every row exactly numFeatures long.
func validateWeights(weights map[string][]float64, categories []string) error {
	if len(weights) != len(categories) {
		return fmt.Errorf("weight rows (%d) do not match categories (%d)", len(weights), len(categories))
	}
	for _, category := range categories {
		row, ok := weights[category]
		if !ok {
			return fmt.Errorf("missing weight row for category %q", category)
		}
		if len(row) != numFeatures {
			return fmt.Errorf("weight row for %q has %d entries, want %d", category, len(row), numFeatures)
		}
	}
	return nil
}

// Ready reports whether Init has completed successfully.
func (c *Classifier) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Categories returns a copy of the model's fixed category set.
func (c *Classifier) Categories() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.categories...)
}

// Predict returns the predicted category label for a message, prefixed with
// PredictionPrefix. Messages without usable transaction features degrade to
// UnknownCategory; the only error condition is calling before Init.
func (c *Classifier) Predict(message string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready {
		return "", ErrNotReady
	}

	features := extractor.Extract(message)
	if !features.Valid() {
		return UnknownCategory, nil
	}

	vector, err := normalize(features)
	if err != nil {
		return UnknownCategory, nil
	}

	probabilities := softmax(c.logits(vector))

	best := 0
	for i, p := range probabilities {
		if p > probabilities[best] {
			best = i
		}
	}
	return PredictionPrefix + c.categories[best], nil
}

// Probabilities returns the full softmax distribution over categories for a
// message. Unlike Predict it fails for messages without usable features,
// since there is no distribution to report.
func (c *Classifier) Probabilities(message string) (map[string]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready {
		return nil, ErrNotReady
	}

	features := extractor.Extract(message)
	if !features.Valid() {
		return nil, ErrInvalidMessage
	}
	vector, err := normalize(features)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	probabilities := softmax(c.logits(vector))
	result := make(map[string]float64, len(c.categories))
	for i, category := range c.categories {
		result[category] = probabilities[i]
	}
	return result, nil
}

// Train applies one supervised gradient step moving the model toward
// actualCategory for the given message, then persists the updated weights.
// A persistence failure loses durability for this step only: the in-memory
// model keeps the update, so it is logged as a warning and not returned.
func (c *Classifier) Train(ctx context.Context, message, actualCategory string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready {
		return ErrNotReady
	}

	target := -1
	for i, category := range c.categories {
		if category == actualCategory {
			target = i
			break
		}
	}
	if target < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, actualCategory)
	}

	features := extractor.Extract(message)
	if !features.Valid() {
		return ErrInvalidMessage
	}
	vector, err := normalize(features)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	probabilities := softmax(c.logits(vector))

	// Standard multinomial logistic-regression gradient: one stochastic
	// step per call, no mini-batching, no momentum.
	for i, category := range c.categories {
		outputError := probabilities[i]
		if i == target {
			outputError -= 1
		}
		row := c.weights[category]
		for j := range row {
			row[j] -= c.learningRate * outputError * vector[j]
		}
	}

	c.persistWeights(ctx)
	return nil
}

// persistWeights writes the weight mapping through the key/value store.
// Failure degrades durability only; prediction quality for the current
// session is unaffected.
func (c *Classifier) persistWeights(ctx context.Context) {
	encoded, err := json.Marshal(c.weights)
	if err != nil {
		c.log.WithError(err).Warn("Failed to encode model weights")
		return
	}
	if err := c.kv.Set(ctx, weightsKey, string(encoded)); err != nil {
		c.log.WithError(err).Warn("Failed to persist model weights")
		return
	}
	c.log.Debug("Model weights persisted")
}

// logits computes the raw per-category scores as dot products of the feature
// vector with each category's weight row, in category order.
func (c *Classifier) logits(vector []float64) []float64 {
	logits := make([]float64, len(c.categories))
	for i, category := range c.categories {
		row := c.weights[category]
		score := 0.0
		for j := 0; j < numFeatures; j++ {
			score += vector[j] * row[j]
		}
		logits[i] = score
	}
	return logits
}
