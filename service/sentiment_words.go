package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nileshkulkarniy/emotionsense/utils"
	"go.uber.org/zap"
)

// SentimentLexicon 词典快速通路：按词表直接判定情感，
// 命中占比足够高时跳过训练模型。
type SentimentLexicon struct {
	words map[string]string // word -> positive/negative/neutral
}

// NewSentimentLexicon 返回内置词表
func NewSentimentLexicon() *SentimentLexicon {
	return &SentimentLexicon{words: builtinSentimentWords()}
}

// LoadSentimentLexicon 从CSV加载词表（word,sentiment 两列），
// 失败时回退到内置词表
func LoadSentimentLexicon(path string) *SentimentLexicon {
	lexicon := NewSentimentLexicon()
	if path == "" {
		return lexicon
	}

	file, err := os.Open(path)
	if err != nil {
		utils.Logger.Warn("sentiment words file not found, using builtin lexicon",
			zap.String("path", path), zap.Error(err))
		return lexicon
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		utils.Logger.Warn("failed to read sentiment words header", zap.Error(err))
		return lexicon
	}

	wordIdx, sentIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "word":
			wordIdx = i
		case "sentiment":
			sentIdx = i
		}
	}
	if wordIdx < 0 || sentIdx < 0 {
		utils.Logger.Warn("sentiment words file missing word/sentiment columns",
			zap.String("path", path))
		return lexicon
	}

	words := make(map[string]string)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		word := strings.ToLower(strings.TrimSpace(record[wordIdx]))
		sentiment := strings.ToLower(strings.TrimSpace(record[sentIdx]))
		if word == "" {
			continue
		}
		switch sentiment {
		case "positive", "negative", "neutral":
			words[word] = sentiment
		}
	}

	if len(words) == 0 {
		return lexicon
	}

	utils.Logger.Info("sentiment words loaded",
		zap.String("path", path), zap.Int("count", len(words)))
	return &SentimentLexicon{words: words}
}

// Score 统计归一化文本中各极性的命中数。
// NOT_ 前缀的词按相反极性计数。
func (l *SentimentLexicon) Score(normalized string) (scores map[string]int, total int) {
	scores = map[string]int{"positive": 0, "negative": 0, "neutral": 0}

	for _, word := range strings.Fields(normalized) {
		if base, negated := strings.CutPrefix(word, negationPrefix); negated {
			sentiment, ok := l.words[base]
			if !ok {
				continue
			}
			switch sentiment {
			case "positive":
				scores["negative"]++
			case "negative":
				scores["positive"]++
			default:
				scores["neutral"]++
			}
			total++
			continue
		}

		if sentiment, ok := l.words[word]; ok {
			scores[sentiment]++
			total++
		}
	}
	return scores, total
}

// Lookup 词典快速判定；命中数为零或优势不足时返回 false
func (l *SentimentLexicon) Lookup(normalized string) (sentiment string, confidence float64, ok bool) {
	scores, total := l.Score(normalized)
	if total == 0 {
		return "", 0, false
	}

	dominant := "neutral"
	best := -1
	for _, s := range []string{"positive", "negative", "neutral"} {
		if scores[s] > best {
			dominant = s
			best = scores[s]
		}
	}

	confidence = float64(best) / float64(total)
	if confidence <= 0.6 {
		return "", 0, false
	}
	return dominant, confidence, true
}

func builtinSentimentWords() map[string]string {
	words := map[string]string{}
	add := func(sentiment string, list ...string) {
		for _, w := range list {
			words[w] = sentiment
		}
	}

	add("positive",
		"good", "great", "excellent", "amazing", "wonderful", "fantastic",
		"awesome", "love", "loved", "lovely", "happy", "joy", "joyful",
		"glad", "delighted", "pleased", "beautiful", "brilliant", "best",
		"better", "nice", "perfect", "superb", "outstanding", "impressive",
		"enjoy", "enjoyed", "exciting", "excited", "fun", "cheerful",
		"grateful", "thankful", "proud", "satisfied", "success",
		"successful", "win", "winner", "positive", "pleasant", "charming",
		"adore", "admire", "smile", "smiling", "laugh", "laughing",
		"comfort", "comfortable", "calm", "peaceful", "relaxed", "hopeful",
		"optimistic", "terrific", "marvelous", "splendid", "favorite",
		"like", "liked", "likes", "magnificent", "remarkable", "thrilled")

	add("negative",
		"bad", "terrible", "awful", "horrible", "worst", "worse", "hate",
		"hated", "sad", "unhappy", "angry", "mad", "furious", "annoyed",
		"annoying", "disappointed", "disappointing", "disgusting",
		"disgust", "fear", "afraid", "scared", "terrified", "anxious",
		"worried", "upset", "miserable", "depressed", "depressing",
		"cry", "crying", "pain", "painful", "hurt", "broken", "fail",
		"failed", "failure", "lose", "loser", "lost", "negative", "ugly",
		"nasty", "cruel", "evil", "stupid", "dumb", "boring", "bored",
		"lonely", "alone", "sick", "tired", "stress", "stressed",
		"frustrated", "frustrating", "dreadful", "gloomy", "hopeless",
		"regret", "sorry", "trouble", "wrong", "poor", "pathetic")

	add("neutral",
		"okay", "ok", "fine", "average", "normal", "usual", "regular",
		"typical", "standard", "moderate", "ordinary", "common", "plain",
		"fair", "neutral", "indifferent", "unsure", "maybe", "perhaps")

	return words
}
