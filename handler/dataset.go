package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nileshkulkarniy/emotionsense/config"
	"github.com/nileshkulkarniy/emotionsense/model"
	"github.com/nileshkulkarniy/emotionsense/service"
	"github.com/nileshkulkarniy/emotionsense/utils"
	"go.uber.org/zap"
)

const (
	voiceDatasetFilename     = "voice_emotion_dataset.csv"
	processedDatasetFilename = "voice_emotion_dataset_processed.csv"
)

type DatasetHandler struct {
	cfg     *config.Config
	emotion *service.TextAnalyzer
}

func NewDatasetHandler(cfg *config.Config, emotion *service.TextAnalyzer) *DatasetHandler {
	return &DatasetHandler{
		cfg:     cfg,
		emotion: emotion,
	}
}

// mergeTrainPaths 合并配置的数据源和上传的文件，
// 按清理后的路径去重，避免同一份数据被重复加载
func mergeTrainPaths(datasets []string, uploaded string) []string {
	merged := make([]string, 0, len(datasets)+1)
	seen := make(map[string]bool, len(datasets)+1)
	for _, path := range append(append([]string{}, datasets...), uploaded) {
		key := filepath.Clean(path)
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, path)
	}
	return merged
}

// UploadVoiceDataset 接收语音情绪数据集并用它重新训练情绪模型
func (h *DatasetHandler) UploadVoiceDataset(c *gin.Context) {
	file, err := c.FormFile("dataset")
	if err != nil {
		c.JSON(http.StatusBadRequest, model.DatasetUploadResponse{
			Success: false,
			Message: "No dataset file provided",
		})
		return
	}

	if file.Filename == "" {
		c.JSON(http.StatusBadRequest, model.DatasetUploadResponse{
			Success: false,
			Message: "No file selected",
		})
		return
	}

	if !strings.EqualFold(filepath.Ext(file.Filename), ".csv") {
		c.JSON(http.StatusBadRequest, model.DatasetUploadResponse{
			Success: false,
			Message: "Invalid file format. Please upload a CSV file.",
		})
		return
	}

	if file.Size > h.cfg.Upload.MaxSize {
		c.JSON(http.StatusBadRequest, model.DatasetUploadResponse{
			Success: false,
			Message: fmt.Sprintf("File size exceeds limit (%d MB)", h.cfg.Upload.MaxSize/(1024*1024)),
		})
		return
	}

	savePath := filepath.Join(h.cfg.Upload.DataDir, voiceDatasetFilename)
	processedPath := filepath.Join(h.cfg.Upload.DataDir, processedDatasetFilename)

	// 覆盖旧的数据集文件
	if err := os.Remove(savePath); err != nil && !os.IsNotExist(err) {
		utils.Logger.Warn("failed to remove previous dataset", zap.Error(err))
	}

	if err := c.SaveUploadedFile(file, savePath); err != nil {
		utils.Logger.Error("failed to save dataset", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.DatasetUploadResponse{
			Success: false,
			Message: "Error uploading dataset: " + err.Error(),
		})
		return
	}

	if md5, err := utils.FileMD5(savePath); err == nil {
		utils.Logger.Info("dataset uploaded",
			zap.String("filename", file.Filename),
			zap.String("md5", md5),
			zap.Int64("size", file.Size))
	}

	processedRows, invalidLabels, err := service.ProcessVoiceDataset(savePath, processedPath)
	if err != nil {
		// 校验失败时不留下半成品文件
		if removeErr := os.Remove(savePath); removeErr != nil {
			utils.Logger.Warn("failed to clean up dataset", zap.Error(removeErr))
		}

		if errors.Is(err, service.ErrMissingDatasetColumns) {
			c.JSON(http.StatusBadRequest, model.DatasetUploadResponse{
				Success: false,
				Message: "CSV file must contain 'Text' and 'Emotion' columns",
			})
			return
		}

		utils.Logger.Error("failed to process dataset", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.DatasetUploadResponse{
			Success: false,
			Message: "Error processing CSV file: " + err.Error(),
		})
		return
	}

	if invalidLabels > 0 {
		utils.Logger.Warn("dataset contains rows with invalid emotion labels",
			zap.Int("count", invalidLabels))
	}

	// 用配置的数据源加上新上传的数据集重新训练情绪模型
	trainPaths := mergeTrainPaths(h.cfg.Analyzer.EmotionDatasets, savePath)

	utils.Logger.Info("re-training emotion analysis model with updated datasets")
	if h.emotion.Train(trainPaths) {
		utils.Logger.Info("emotion analysis model re-trained successfully")
	} else {
		utils.Logger.Warn("failed to re-train emotion analysis model")
	}

	c.JSON(http.StatusOK, model.DatasetUploadResponse{
		Success:       true,
		ProcessedRows: processedRows,
		Message:       fmt.Sprintf("Successfully processed %d rows and updated the model", processedRows),
	})
}
