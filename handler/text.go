package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nileshkulkarniy/emotionsense/model"
	"github.com/nileshkulkarniy/emotionsense/service"
)

type TextHandler struct {
	sentiment *service.TextAnalyzer
	emotion   *service.TextAnalyzer
}

func NewTextHandler(sentiment, emotion *service.TextAnalyzer) *TextHandler {
	return &TextHandler{
		sentiment: sentiment,
		emotion:   emotion,
	}
}

// AnalyzeText 文本情感分析
func (h *TextHandler) AnalyzeText(c *gin.Context) {
	if h.sentiment == nil {
		c.JSON(http.StatusServiceUnavailable, model.SentimentResult{
			Sentiment:  "neutral",
			Confidence: 0.5,
			Message:    "Text analysis not available",
		})
		return
	}

	var req model.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, model.SentimentResult{
			Sentiment:  "neutral",
			Confidence: 0.5,
			Message:    "No text provided",
		})
		return
	}

	c.JSON(http.StatusOK, h.sentiment.AnalyzeSentiment(req.Text))
}

// AnalyzeVoiceEmotion 分析语音转写文本的情绪
func (h *TextHandler) AnalyzeVoiceEmotion(c *gin.Context) {
	if h.emotion == nil {
		c.JSON(http.StatusServiceUnavailable, model.EmotionResult{
			Emotion:    "neutral",
			Confidence: 0.5,
			Message:    "Emotion analysis not available",
		})
		return
	}

	var req model.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, model.EmotionResult{
			Emotion:    "neutral",
			Confidence: 0.5,
			Message:    "No text provided",
		})
		return
	}

	c.JSON(http.StatusOK, h.emotion.AnalyzeEmotion(req.Text))
}
