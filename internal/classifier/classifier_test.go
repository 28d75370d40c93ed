package classifier_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"salio/sms-ledger/internal/classifier"
	"salio/sms-ledger/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleMessage = "XYZ123 Confirmed. Ksh500.00 paid to ACME STORE on 5/6/24 at 2:30 PM. Transaction cost, Ksh5.00."

// memKV is an in-memory KeyValueStore with optional failure injection.
type memKV struct {
	data    map[string]string
	getErr  error
	setErr  error
	setKeys []string
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.setKeys = append(m.setKeys, key)
	return nil
}

func newReady(t *testing.T, kv *memKV) *classifier.Classifier {
	t.Helper()
	c := classifier.New(kv, 0, logging.NewMockLogger())
	require.NoError(t, c.Init(context.Background()))
	return c
}

func TestInitSeedsDefaults(t *testing.T) {
	kv := newMemKV()
	c := newReady(t, kv)

	assert.True(t, c.Ready())
	assert.Equal(t, classifier.DefaultCategories, c.Categories())

	var weights map[string][]float64
	require.NoError(t, json.Unmarshal([]byte(kv.data["weights"]), &weights))
	require.Len(t, weights, len(classifier.DefaultCategories))
	for category, row := range weights {
		require.Len(t, row, 24, "category %s", category)
		for _, w := range row {
			assert.LessOrEqual(t, math.Abs(w), 0.01)
		}
	}
}

func TestInitIdempotent(t *testing.T) {
	kv := newMemKV()
	newReady(t, kv)
	firstWeights := kv.data["weights"]
	firstCategories := kv.data["categories"]

	// A second Init against the same store loads rather than reseeds.
	newReady(t, kv)
	assert.Equal(t, firstWeights, kv.data["weights"])
	assert.Equal(t, firstCategories, kv.data["categories"])
}

func TestInitFailureBlocksReady(t *testing.T) {
	kv := newMemKV()
	kv.getErr = errors.New("disk unavailable")

	c := classifier.New(kv, 0, logging.NewMockLogger())
	require.Error(t, c.Init(context.Background()))
	assert.False(t, c.Ready())

	_, err := c.Predict(exampleMessage)
	assert.ErrorIs(t, err, classifier.ErrNotReady)
	assert.ErrorIs(t, c.Train(context.Background(), exampleMessage, "SHOPPING"), classifier.ErrNotReady)

	// Retrying after the store recovers succeeds.
	kv.getErr = nil
	require.NoError(t, c.Init(context.Background()))
	assert.True(t, c.Ready())
}

func TestInitRejectsCorruptWeights(t *testing.T) {
	kv := newMemKV()
	newReady(t, kv)

	// Truncate one weight row.
	var weights map[string][]float64
	require.NoError(t, json.Unmarshal([]byte(kv.data["weights"]), &weights))
	weights["FOOD"] = weights["FOOD"][:5]
	corrupted, err := json.Marshal(weights)
	require.NoError(t, err)
	kv.data["weights"] = string(corrupted)

	c := classifier.New(kv, 0, logging.NewMockLogger())
	assert.Error(t, c.Init(context.Background()))
	assert.False(t, c.Ready())
}

func TestPredictUnknownForUnparseable(t *testing.T) {
	c := newReady(t, newMemKV())

	tests := []string{
		"Hello, lunch at noon?",
		"",
		"Confirmed. Ksh100.00",
	}
	for _, message := range tests {
		category, err := c.Predict(message)
		require.NoError(t, err)
		assert.Equal(t, classifier.UnknownCategory, category, "message %q", message)
	}
}

func TestPredictReturnsPrefixedCategory(t *testing.T) {
	c := newReady(t, newMemKV())

	category, err := c.Predict(exampleMessage)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(category, classifier.PredictionPrefix))
	assert.Contains(t, classifier.DefaultCategories, strings.TrimPrefix(category, classifier.PredictionPrefix))
}

func TestTrainReducesLoss(t *testing.T) {
	c := newReady(t, newMemKV())
	const target = "SHOPPING"

	loss := func() float64 {
		probs, err := c.Probabilities(exampleMessage)
		require.NoError(t, err)
		return -math.Log(probs[target])
	}

	before := loss()
	require.NoError(t, c.Train(context.Background(), exampleMessage, target))
	after := loss()

	assert.LessOrEqual(t, after, before)
}

func TestTrainConvergesOnRepeat(t *testing.T) {
	c := newReady(t, newMemKV())
	const target = "FOOD"

	for i := 0; i < 200; i++ {
		require.NoError(t, c.Train(context.Background(), exampleMessage, target))
	}

	category, err := c.Predict(exampleMessage)
	require.NoError(t, err)
	assert.Equal(t, classifier.PredictionPrefix+target, category)
}

func TestTrainRejectsUnknownCategory(t *testing.T) {
	c := newReady(t, newMemKV())
	err := c.Train(context.Background(), exampleMessage, "GAMBLING")
	assert.ErrorIs(t, err, classifier.ErrUnknownCategory)
}

func TestTrainRejectsInvalidMessage(t *testing.T) {
	c := newReady(t, newMemKV())
	err := c.Train(context.Background(), "no transaction here", "FOOD")
	assert.ErrorIs(t, err, classifier.ErrInvalidMessage)
}

func TestTrainPersistsWeights(t *testing.T) {
	kv := newMemKV()
	c := newReady(t, kv)
	before := kv.data["weights"]

	require.NoError(t, c.Train(context.Background(), exampleMessage, "SHOPPING"))
	assert.NotEqual(t, before, kv.data["weights"])
}

func TestTrainPersistFailureIsNonFatal(t *testing.T) {
	kv := newMemKV()
	log := logging.NewMockLogger()
	c := classifier.New(kv, 0, log)
	require.NoError(t, c.Init(context.Background()))

	kv.setErr = errors.New("disk full")
	require.NoError(t, c.Train(context.Background(), exampleMessage, "SHOPPING"))
	assert.True(t, log.HasEntry("WARN", "Failed to persist model weights"))

	// The in-memory update survived: training continued from it.
	kv.setErr = nil
	probs, err := c.Probabilities(exampleMessage)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sum(probs), 1e-9)
}

func sum(probs map[string]float64) float64 {
	total := 0.0
	for _, p := range probs {
		total += p
	}
	return total
}
