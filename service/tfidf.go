package service

import (
	"math"
	"sort"
	"strings"
)

// sparseVector 稀疏特征向量，index -> weight
type sparseVector map[int]float64

// TfidfVectorizer 一元+二元词组的TF-IDF向量化器。
// Fit 会重建词表并丢弃旧词表。
type TfidfVectorizer struct {
	maxFeatures int
	vocabulary  map[string]int
	idf         []float64
}

func NewTfidfVectorizer(maxFeatures int) *TfidfVectorizer {
	if maxFeatures <= 0 {
		maxFeatures = 5000
	}
	return &TfidfVectorizer{maxFeatures: maxFeatures}
}

// VocabularySize 当前词表大小
func (v *TfidfVectorizer) VocabularySize() int {
	return len(v.vocabulary)
}

// ngrams 提取一元和二元词组
func ngrams(normalized string) []string {
	words := strings.Fields(normalized)
	terms := make([]string, 0, len(words)*2)
	terms = append(terms, words...)
	for i := 0; i+1 < len(words); i++ {
		terms = append(terms, words[i]+" "+words[i+1])
	}
	return terms
}

// Fit 在语料上重建词表和IDF权重
func (v *TfidfVectorizer) Fit(documents []string) {
	termCounts := make(map[string]int)   // 语料总词频，用于截断词表
	docFrequency := make(map[string]int) // 文档频率，用于IDF

	for _, doc := range documents {
		terms := ngrams(doc)

		seen := make(map[string]bool, len(terms))
		for _, term := range terms {
			termCounts[term]++
			if !seen[term] {
				docFrequency[term]++
				seen[term] = true
			}
		}
	}

	// 按总词频取前 maxFeatures 个词，频率相同时按字典序保证稳定
	type termCount struct {
		term  string
		count int
	}
	ranked := make([]termCount, 0, len(termCounts))
	for term, count := range termCounts {
		ranked = append(ranked, termCount{term, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].term < ranked[j].term
	})
	if len(ranked) > v.maxFeatures {
		ranked = ranked[:v.maxFeatures]
	}

	vocabulary := make(map[string]int, len(ranked))
	idf := make([]float64, len(ranked))
	n := float64(len(documents))
	for i, tc := range ranked {
		vocabulary[tc.term] = i
		// 平滑IDF：ln((1+n)/(1+df)) + 1
		idf[i] = math.Log((1+n)/(1+float64(docFrequency[tc.term]))) + 1
	}

	v.vocabulary = vocabulary
	v.idf = idf
}

// Transform 把归一化文本转成L2归一化的TF-IDF向量
func (v *TfidfVectorizer) Transform(normalized string) sparseVector {
	vec := make(sparseVector)
	for _, term := range ngrams(normalized) {
		if idx, ok := v.vocabulary[term]; ok {
			vec[idx] += v.idf[idx]
		}
	}

	var norm float64
	for _, w := range vec {
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec
}

// TransformAll 批量向量化
func (v *TfidfVectorizer) TransformAll(documents []string) []sparseVector {
	vectors := make([]sparseVector, len(documents))
	for i, doc := range documents {
		vectors[i] = v.Transform(doc)
	}
	return vectors
}
