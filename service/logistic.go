package service

import (
	"math"
	"math/rand"
)

// LogisticModel 多分类 softmax 回归，梯度下降训练
type LogisticModel struct {
	numClasses  int
	numFeatures int
	weights     [][]float64 // [class][feature]
	bias        []float64

	epochs       int
	learningRate float64
	seed         int64
}

func NewLogisticModel(numClasses int) *LogisticModel {
	return &LogisticModel{
		numClasses:   numClasses,
		epochs:       200,
		learningRate: 0.5,
		seed:         42,
	}
}

// Fit 训练模型；labels 取值范围 [0, numClasses)
func (m *LogisticModel) Fit(vectors []sparseVector, labels []int, numFeatures int) {
	m.numFeatures = numFeatures
	m.weights = make([][]float64, m.numClasses)
	for c := range m.weights {
		m.weights[c] = make([]float64, numFeatures)
	}
	m.bias = make([]float64, m.numClasses)

	rng := rand.New(rand.NewSource(m.seed))
	order := rng.Perm(len(vectors))

	for epoch := 0; epoch < m.epochs; epoch++ {
		for _, i := range order {
			vec := vectors[i]
			probs := m.probabilities(vec)

			// 梯度：(p_c - y_c) * x
			for c := 0; c < m.numClasses; c++ {
				grad := probs[c]
				if c == labels[i] {
					grad -= 1
				}
				step := m.learningRate * grad
				for idx, val := range vec {
					m.weights[c][idx] -= step * val
				}
				m.bias[c] -= step
			}
		}
	}
}

// probabilities 数值稳定的 softmax
func (m *LogisticModel) probabilities(vec sparseVector) []float64 {
	logits := make([]float64, m.numClasses)
	for c := 0; c < m.numClasses; c++ {
		z := m.bias[c]
		for idx, val := range vec {
			if idx < len(m.weights[c]) {
				z += m.weights[c][idx] * val
			}
		}
		logits[c] = z
	}

	maxLogit := logits[0]
	for _, z := range logits[1:] {
		if z > maxLogit {
			maxLogit = z
		}
	}

	var sum float64
	probs := make([]float64, m.numClasses)
	for c, z := range logits {
		probs[c] = math.Exp(z - maxLogit)
		sum += probs[c]
	}
	for c := range probs {
		probs[c] /= sum
	}
	return probs
}

// PredictProba 返回每个类别的概率
func (m *LogisticModel) PredictProba(vec sparseVector) []float64 {
	return m.probabilities(vec)
}

// Predict 返回概率最大的类别及其概率
func (m *LogisticModel) Predict(vec sparseVector) (class int, confidence float64) {
	probs := m.probabilities(vec)
	for c, p := range probs {
		if p > confidence {
			class = c
			confidence = p
		}
	}
	return class, confidence
}
