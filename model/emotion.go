package model

// EmotionReading 最近一次人脸分类的完整结果
type EmotionReading struct {
	Emotions        []string  `json:"emotions"`
	Predictions     []float64 `json:"predictions"`
	DominantEmotion string    `json:"dominant_emotion"`
	Confidence      float64   `json:"confidence"`
}

// AnalyzeRequest 文本分析请求体
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// SentimentResult 情感分析结果
type SentimentResult struct {
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
	Message    string  `json:"message"`
}

// EmotionResult 文本情绪分析结果
type EmotionResult struct {
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
	Message    string  `json:"message"`
}

// DatasetUploadResponse 数据集上传响应
type DatasetUploadResponse struct {
	Success       bool   `json:"success"`
	ProcessedRows int    `json:"processed_rows,omitempty"`
	Message       string `json:"message"`
}
