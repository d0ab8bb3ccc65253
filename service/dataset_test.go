package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func sentimentMapper(raw string) (int, bool) {
	m := map[string]int{"negative": 0, "neutral": 1, "positive": 2}
	label, ok := m[raw]
	return label, ok
}

func emotionMapper(raw string) (int, bool) {
	m := map[string]int{
		"angry": 0, "disgust": 1, "fear": 2, "happy": 3,
		"neutral": 4, "sad": 5, "surprise": 6, "surprised": 6, "calm": 4,
	}
	label, ok := m[raw]
	return label, ok
}

func TestLoadSentimentDatasetSentimentColumn(t *testing.T) {
	path := writeCSV(t, "data.csv",
		"sentence,sentiment\nI love this,positive\nI hate this,negative\nwhatever,neutral\n")

	examples, err := loadSentimentDataset(path, sentimentMapper)
	require.NoError(t, err)
	require.Len(t, examples, 3)
	assert.Equal(t, 2, examples[0].label)
	assert.Equal(t, 0, examples[1].label)
	assert.Equal(t, 1, examples[2].label)
}

func TestLoadSentimentDatasetNumericLabels(t *testing.T) {
	path := writeCSV(t, "data.csv",
		"sentence,label\ngreat stuff,1\nbad stuff,0\nunknown stuff,5\n")

	examples, err := loadSentimentDataset(path, sentimentMapper)
	require.NoError(t, err)
	// 无法映射的标签行被丢弃
	require.Len(t, examples, 2)
	assert.Equal(t, 2, examples[0].label)
	assert.Equal(t, 0, examples[1].label)
}

func TestLoadSentimentDatasetFromEmotionFormat(t *testing.T) {
	path := writeCSV(t, "data.csv",
		"Sentence,Emotion\nwhat a day,Happy\nso gloomy,Sad\nstartled me,Surprise\n")

	examples, err := loadSentimentDataset(path, sentimentMapper)
	require.NoError(t, err)
	require.Len(t, examples, 3)
	// Happy→positive, Sad→negative, Surprise→neutral
	assert.Equal(t, 2, examples[0].label)
	assert.Equal(t, 0, examples[1].label)
	assert.Equal(t, 1, examples[2].label)
}

func TestLoadSentimentDatasetUnrecognizedFormat(t *testing.T) {
	path := writeCSV(t, "data.csv", "foo,bar\na,b\n")

	_, err := loadSentimentDataset(path, sentimentMapper)
	assert.Error(t, err)
}

func TestLoadEmotionDatasetAliases(t *testing.T) {
	path := writeCSV(t, "data.csv",
		"Text,Emotion\nso peaceful,Calm\nwow,Surprised\nfurious,Angry\nnonsense,Confused\n")

	examples, err := loadEmotionDataset(path, emotionMapper)
	require.NoError(t, err)
	require.Len(t, examples, 3)
	assert.Equal(t, 4, examples[0].label) // calm → neutral
	assert.Equal(t, 6, examples[1].label) // surprised → surprise
	assert.Equal(t, 0, examples[2].label)
}

func TestLoadDatasetsSkipsMissingFiles(t *testing.T) {
	path := writeCSV(t, "data.csv",
		"Text,Emotion\nhello there,Happy\n")

	examples := loadDatasets(
		[]string{"/nonexistent/a.csv", path},
		func(p string) ([]labeledExample, error) { return loadEmotionDataset(p, emotionMapper) },
	)
	assert.Len(t, examples, 1)
}

func TestProcessVoiceDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "voice_emotion_dataset.csv")
	require.NoError(t, os.WriteFile(path,
		[]byte("Text,Emotion\nI feel great,Happy\nso tired,Sleepy\n"), 0644))

	processedPath := filepath.Join(dir, "voice_emotion_dataset_processed.csv")
	rows, invalid, err := ProcessVoiceDataset(path, processedPath)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, 1, invalid) // Sleepy 不在合法标签里

	data, err := os.ReadFile(processedPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "processed_text")
}

func TestProcessVoiceDatasetMissingColumns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(path,
		[]byte("Message,Mood\nhello,Happy\n"), 0644))

	processedPath := filepath.Join(dir, "processed.csv")
	_, _, err := ProcessVoiceDataset(path, processedPath)
	assert.ErrorIs(t, err, ErrMissingDatasetColumns)

	// 校验失败时不能留下处理结果文件
	_, statErr := os.Stat(processedPath)
	assert.True(t, os.IsNotExist(statErr))
}
