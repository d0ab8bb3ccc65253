package service

import (
	"fmt"
	"math/rand"
	"sync"
	"unicode"

	"github.com/nileshkulkarniy/emotionsense/model"
	"github.com/nileshkulkarniy/emotionsense/utils"
	"go.uber.org/zap"
)

const minTrainingSamples = 10

// trainedArtifact 一次训练产出的完整模型：向量化器 + 分类器。
// 训练成功后整体替换，失败的训练不会动旧模型。
type trainedArtifact struct {
	vectorizer *TfidfVectorizer
	model      *LogisticModel
}

// TextAnalyzer 可在运行时重新训练的文本分类器。
// 情感和情绪两个实例共用同一套逻辑，只是标签集和数据源不同。
type TextAnalyzer struct {
	name           string
	labelMapping   map[string]int
	reverseMapping []string
	maxFeatures    int
	lexicon        *SentimentLexicon
	loadFile       func(path string, mapLabel func(string) (int, bool)) ([]labeledExample, error)

	mu       sync.RWMutex
	artifact *trainedArtifact
}

// NewSentimentAnalyzer 构造情感分析器（negative/neutral/positive），
// 带词典快速通路
func NewSentimentAnalyzer(maxFeatures int, lexicon *SentimentLexicon) *TextAnalyzer {
	return &TextAnalyzer{
		name: "sentiment",
		labelMapping: map[string]int{
			"negative": 0, "neutral": 1, "positive": 2,
		},
		reverseMapping: []string{"negative", "neutral", "positive"},
		maxFeatures:    maxFeatures,
		lexicon:        lexicon,
		loadFile:       loadSentimentDataset,
	}
}

// NewEmotionAnalyzer 构造文本情绪分析器（7类，calm 归并到 neutral）
func NewEmotionAnalyzer(maxFeatures int) *TextAnalyzer {
	return &TextAnalyzer{
		name: "emotion",
		labelMapping: map[string]int{
			"angry": 0, "disgust": 1, "fear": 2, "happy": 3,
			"neutral": 4, "sad": 5, "surprise": 6,
			"surprised": 6, // 两种拼写都接受
			"calm":      4, // calm 归并到 neutral
		},
		reverseMapping: []string{"angry", "disgust", "fear", "happy", "neutral", "sad", "surprise"},
		maxFeatures:    maxFeatures,
		loadFile:       loadEmotionDataset,
	}
}

// Trained 是否已有可用模型
func (a *TextAnalyzer) Trained() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.artifact != nil
}

func (a *TextAnalyzer) mapLabel(raw string) (int, bool) {
	label, ok := a.labelMapping[raw]
	return label, ok
}

// Train 从数据源训练新模型。新的向量化器和分类器先在旁边训练好，
// 只有全部成功才会替换当前模型；任何一步失败都保持旧模型不变。
func (a *TextAnalyzer) Train(paths []string) bool {
	examples := loadDatasets(paths, func(path string) ([]labeledExample, error) {
		return a.loadFile(path, a.mapLabel)
	})

	if len(examples) < minTrainingSamples {
		utils.Logger.Warn("not enough training data",
			zap.String("analyzer", a.name),
			zap.Int("samples", len(examples)),
			zap.Int("required", minTrainingSamples))
		return false
	}

	texts := make([]string, len(examples))
	labels := make([]int, len(examples))
	for i, ex := range examples {
		texts[i] = ex.text
		labels[i] = ex.label
	}

	vectorizer := NewTfidfVectorizer(a.maxFeatures)
	vectorizer.Fit(texts)
	vectors := vectorizer.TransformAll(texts)

	// 固定种子的 80/20 划分
	rng := rand.New(rand.NewSource(42))
	order := rng.Perm(len(vectors))
	split := len(order) - len(order)/5

	classifier := NewLogisticModel(len(a.reverseMapping))
	trainVectors := make([]sparseVector, 0, split)
	trainLabels := make([]int, 0, split)
	for _, i := range order[:split] {
		trainVectors = append(trainVectors, vectors[i])
		trainLabels = append(trainLabels, labels[i])
	}
	classifier.Fit(trainVectors, trainLabels, vectorizer.VocabularySize())

	correct, total := 0, 0
	for _, i := range order[split:] {
		predicted, _ := classifier.Predict(vectors[i])
		if predicted == labels[i] {
			correct++
		}
		total++
	}
	accuracy := 0.0
	if total > 0 {
		accuracy = float64(correct) / float64(total)
	}

	utils.Logger.Info("model trained",
		zap.String("analyzer", a.name),
		zap.Int("samples", len(examples)),
		zap.Int("vocabulary", vectorizer.VocabularySize()),
		zap.Float64("accuracy", accuracy))

	a.mu.Lock()
	a.artifact = &trainedArtifact{vectorizer: vectorizer, model: classifier}
	a.mu.Unlock()

	return true
}

// AnalyzeSentiment 情感分析：先走词典快速通路，优势不足再用模型
func (a *TextAnalyzer) AnalyzeSentiment(text string) (result model.SentimentResult) {
	defer func() {
		if r := recover(); r != nil {
			utils.Logger.Error("sentiment analysis failed",
				zap.Any("panic", r))
			result = model.SentimentResult{
				Sentiment:  "neutral",
				Confidence: 0.5,
				Message:    fmt.Sprintf("Error during analysis: %v", r),
			}
		}
	}()

	normalized := NormalizeText(text)

	if a.lexicon != nil {
		if sentiment, confidence, ok := a.lexicon.Lookup(normalized); ok {
			return model.SentimentResult{
				Sentiment:  sentiment,
				Confidence: confidence,
				Message:    "Analysis completed using sentiment words dictionary",
			}
		}
	}

	a.mu.RLock()
	artifact := a.artifact
	a.mu.RUnlock()

	if artifact == nil {
		return model.SentimentResult{
			Sentiment:  "neutral",
			Confidence: 0.5,
			Message:    "Model not trained yet",
		}
	}

	vec := artifact.vectorizer.Transform(normalized)
	class, confidence := artifact.model.Predict(vec)

	return model.SentimentResult{
		Sentiment:  a.reverseMapping[class],
		Confidence: confidence,
		Message:    "Analysis completed using ML model",
	}
}

// AnalyzeEmotion 文本情绪分析，输出首字母大写的情绪标签
func (a *TextAnalyzer) AnalyzeEmotion(text string) (result model.EmotionResult) {
	defer func() {
		if r := recover(); r != nil {
			utils.Logger.Error("emotion analysis failed",
				zap.Any("panic", r))
			result = model.EmotionResult{
				Emotion:    "Neutral",
				Confidence: 0.5,
				Message:    fmt.Sprintf("Error during emotion analysis: %v", r),
			}
		}
	}()

	a.mu.RLock()
	artifact := a.artifact
	a.mu.RUnlock()

	if artifact == nil {
		return model.EmotionResult{
			Emotion:    "neutral",
			Confidence: 0.5,
			Message:    "Model not trained yet",
		}
	}

	normalized := NormalizeText(text)
	vec := artifact.vectorizer.Transform(normalized)
	class, confidence := artifact.model.Predict(vec)

	return model.EmotionResult{
		Emotion:    capitalize(a.reverseMapping[class]),
		Confidence: confidence,
		Message:    "Emotion analysis completed",
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
