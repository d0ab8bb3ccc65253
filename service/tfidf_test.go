package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTfidfFitBuildsVocabulary(t *testing.T) {
	v := NewTfidfVectorizer(100)
	v.Fit([]string{"happy day", "sad day", "happy happy"})

	// 一元词 + 二元词组都进词表
	assert.Greater(t, v.VocabularySize(), 0)
	_, hasUnigram := v.vocabulary["happy"]
	_, hasBigram := v.vocabulary["happy day"]
	assert.True(t, hasUnigram)
	assert.True(t, hasBigram)
}

func TestTfidfMaxFeaturesCapsVocabulary(t *testing.T) {
	v := NewTfidfVectorizer(3)
	v.Fit([]string{"a b c d e f g h"})
	assert.Equal(t, 3, v.VocabularySize())
}

func TestTfidfTransformL2Normalized(t *testing.T) {
	v := NewTfidfVectorizer(100)
	v.Fit([]string{"happy day today", "sad day tonight", "great happy morning"})

	vec := v.Transform("happy day")
	assert.NotEmpty(t, vec)

	var norm float64
	for _, w := range vec {
		norm += w * w
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
}

func TestTfidfTransformUnknownTerms(t *testing.T) {
	v := NewTfidfVectorizer(100)
	v.Fit([]string{"happy day", "sad day"})

	vec := v.Transform("completely unknown words")
	assert.Empty(t, vec)
}

func TestTfidfFitDiscardsOldVocabulary(t *testing.T) {
	v := NewTfidfVectorizer(100)
	v.Fit([]string{"alpha beta", "alpha gamma"})
	_, ok := v.vocabulary["alpha"]
	assert.True(t, ok)

	v.Fit([]string{"delta epsilon", "delta zeta"})
	_, ok = v.vocabulary["alpha"]
	assert.False(t, ok)
	_, ok = v.vocabulary["delta"]
	assert.True(t, ok)
}
