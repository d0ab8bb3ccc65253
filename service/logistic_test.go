package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func separableTrainingData() ([]sparseVector, []int) {
	// 特征0/1 指向类别0，特征2/3 指向类别1
	vectors := []sparseVector{
		{0: 1.0, 1: 0.5},
		{0: 0.8, 1: 0.9},
		{0: 1.0},
		{2: 1.0, 3: 0.5},
		{2: 0.7, 3: 0.9},
		{3: 1.0},
	}
	labels := []int{0, 0, 0, 1, 1, 1}
	return vectors, labels
}

func TestLogisticModelLearnsSeparableData(t *testing.T) {
	vectors, labels := separableTrainingData()

	m := NewLogisticModel(2)
	m.Fit(vectors, labels, 4)

	for i, vec := range vectors {
		predicted, confidence := m.Predict(vec)
		assert.Equal(t, labels[i], predicted, "sample %d", i)
		assert.Greater(t, confidence, 0.5)
	}
}

func TestLogisticModelProbabilitiesSumToOne(t *testing.T) {
	vectors, labels := separableTrainingData()

	m := NewLogisticModel(2)
	m.Fit(vectors, labels, 4)

	probs := m.PredictProba(sparseVector{0: 0.3, 2: 0.3})
	var sum float64
	for _, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestLogisticModelPredictMatchesProba(t *testing.T) {
	vectors, labels := separableTrainingData()

	m := NewLogisticModel(2)
	m.Fit(vectors, labels, 4)

	vec := sparseVector{0: 1.0}
	class, confidence := m.Predict(vec)
	probs := m.PredictProba(vec)
	assert.InDelta(t, probs[class], confidence, 1e-12)
	for _, p := range probs {
		assert.LessOrEqual(t, p, confidence+1e-12)
	}
}
