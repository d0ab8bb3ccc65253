package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nileshkulkarniy/emotionsense/utils"
	"go.uber.org/zap"
)

// labeledExample 一条训练样本：归一化文本 + 类别索引
type labeledExample struct {
	text  string
	label int
}

// csvTable 简单的CSV表：列名（小写）到下标的映射 + 数据行
type csvTable struct {
	columns map[string]int
	rows    [][]string
}

func (t *csvTable) get(row []string, column string) (string, bool) {
	idx, ok := t.columns[column]
	if !ok || idx >= len(row) {
		return "", false
	}
	return row[idx], true
}

func (t *csvTable) has(columns ...string) bool {
	for _, c := range columns {
		if _, ok := t.columns[c]; !ok {
			return false
		}
	}
	return true
}

// readCSVTable 读取整个CSV文件，列名统一转小写
func readCSVTable(path string) (*csvTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, col := range header {
		columns[strings.ToLower(strings.TrimSpace(col))] = i
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		rows = append(rows, record)
	}

	return &csvTable{columns: columns, rows: rows}, nil
}

// 情绪标签到情感极性的粗略映射，用于把情绪数据集并入情感训练语料
var emotionToSentiment = map[string]string{
	"happy":    "positive",
	"sad":      "negative",
	"angry":    "negative",
	"fear":     "negative",
	"disgust":  "negative",
	"surprise": "neutral",
	"neutral":  "neutral",
}

// loadSentimentDataset 加载一个情感数据集，识别三种格式：
// Sentence+Emotion（情绪数据集转情感）、sentence+label、sentence+sentiment。
// 无法映射到目标标签集的行直接丢弃。
func loadSentimentDataset(path string, mapLabel func(string) (int, bool)) ([]labeledExample, error) {
	table, err := readCSVTable(path)
	if err != nil {
		return nil, err
	}

	var textColumn, labelColumn string
	var mapRaw func(string) (string, bool)

	switch {
	case table.has("sentence", "emotion"):
		textColumn, labelColumn = "sentence", "emotion"
		mapRaw = func(raw string) (string, bool) {
			sentiment, ok := emotionToSentiment[strings.ToLower(strings.TrimSpace(raw))]
			return sentiment, ok
		}
	case table.has("sentence", "label"):
		textColumn, labelColumn = "sentence", "label"
		mapRaw = func(raw string) (string, bool) {
			switch strings.ToLower(strings.TrimSpace(raw)) {
			case "1", "positive":
				return "positive", true
			case "0", "negative":
				return "negative", true
			case "neutral":
				return "neutral", true
			}
			return "", false
		}
	case table.has("sentence", "sentiment"):
		textColumn, labelColumn = "sentence", "sentiment"
		mapRaw = func(raw string) (string, bool) {
			sentiment := strings.ToLower(strings.TrimSpace(raw))
			switch sentiment {
			case "positive", "negative", "neutral":
				return sentiment, true
			}
			return "", false
		}
	default:
		return nil, fmt.Errorf("unrecognized sentiment dataset format in %s", path)
	}

	var examples []labeledExample
	for _, row := range table.rows {
		text, ok := table.get(row, textColumn)
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}
		raw, ok := table.get(row, labelColumn)
		if !ok {
			continue
		}
		sentiment, ok := mapRaw(raw)
		if !ok {
			continue
		}
		label, ok := mapLabel(sentiment)
		if !ok {
			continue
		}
		examples = append(examples, labeledExample{
			text:  NormalizeText(text),
			label: label,
		})
	}

	return examples, nil
}

// loadEmotionDataset 加载一个情绪数据集（Text+Emotion 或 Sentence+Emotion）
func loadEmotionDataset(path string, mapLabel func(string) (int, bool)) ([]labeledExample, error) {
	table, err := readCSVTable(path)
	if err != nil {
		return nil, err
	}

	textColumn := ""
	switch {
	case table.has("text", "emotion"):
		textColumn = "text"
	case table.has("sentence", "emotion"):
		textColumn = "sentence"
	default:
		return nil, fmt.Errorf("unrecognized emotion dataset format in %s", path)
	}

	var examples []labeledExample
	for _, row := range table.rows {
		text, ok := table.get(row, textColumn)
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}
		raw, ok := table.get(row, "emotion")
		if !ok {
			continue
		}
		label, ok := mapLabel(strings.ToLower(strings.TrimSpace(raw)))
		if !ok {
			continue
		}
		examples = append(examples, labeledExample{
			text:  NormalizeText(text),
			label: label,
		})
	}

	return examples, nil
}

// ErrMissingDatasetColumns 上传的CSV缺少必需的列
var ErrMissingDatasetColumns = errors.New("CSV file must contain 'Text' and 'Emotion' columns")

// 上传数据集里允许出现的情绪标签（calm 训练时归并到 neutral）
var validUploadEmotions = map[string]bool{
	"happy": true, "sad": true, "angry": true, "fear": true,
	"disgust": true, "surprise": true, "neutral": true, "calm": true,
}

// ProcessVoiceDataset 校验上传的语音情绪数据集并生成归一化副本。
// 缺列直接报错且不写任何处理结果；标签非法的行只计数不剔除。
func ProcessVoiceDataset(path, processedPath string) (processedRows, invalidLabels int, err error) {
	table, err := readCSVTable(path)
	if err != nil {
		return 0, 0, err
	}

	if !table.has("text", "emotion") {
		return 0, 0, ErrMissingDatasetColumns
	}

	records := make([][]string, 0, len(table.rows)+1)
	records = append(records, []string{"Text", "Emotion", "processed_text"})
	for _, row := range table.rows {
		text, _ := table.get(row, "text")
		emotion, _ := table.get(row, "emotion")
		if !validUploadEmotions[strings.ToLower(strings.TrimSpace(emotion))] {
			invalidLabels++
		}
		records = append(records, []string{text, emotion, NormalizeText(text)})
	}
	processedRows = len(table.rows)

	out, err := os.Create(processedPath)
	if err != nil {
		return 0, 0, err
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	if err := writer.WriteAll(records); err != nil {
		return 0, 0, err
	}

	return processedRows, invalidLabels, nil
}

// loadDatasets 逐个加载数据源并合并，缺失的文件跳过并记日志
func loadDatasets(paths []string, load func(string) ([]labeledExample, error)) []labeledExample {
	var combined []labeledExample
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			utils.Logger.Warn("dataset file not found", zap.String("path", path))
			continue
		}

		examples, err := load(path)
		if err != nil {
			utils.Logger.Warn("failed to load dataset",
				zap.String("path", path), zap.Error(err))
			continue
		}

		utils.Logger.Info("dataset loaded",
			zap.String("path", path), zap.Int("samples", len(examples)))
		combined = append(combined, examples...)
	}
	return combined
}
