package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nileshkulkarniy/emotionsense/service"
	"github.com/nileshkulkarniy/emotionsense/utils"
	"go.uber.org/zap"
)

// 每一帧作为 multipart 序列的一个分片输出
const (
	videoFeedContentType = "multipart/x-mixed-replace; boundary=frame"
	framePartHeader      = "--frame\r\nContent-Type: image/jpeg\r\n\r\n"
)

type CameraHandler struct {
	camera   *service.CameraService
	streamer *service.FrameStreamer
	reading  *service.EmotionReadingHolder
}

func NewCameraHandler(camera *service.CameraService, streamer *service.FrameStreamer, reading *service.EmotionReadingHolder) *CameraHandler {
	return &CameraHandler{
		camera:   camera,
		streamer: streamer,
		reading:  reading,
	}
}

// StartCamera 打开摄像头会话
func (h *CameraHandler) StartCamera(c *gin.Context) {
	err := h.camera.Start()
	switch {
	case err == nil:
		c.String(http.StatusOK, "Camera started")
	case errors.Is(err, service.ErrCameraRunning):
		c.String(http.StatusOK, "Camera already running")
	case errors.Is(err, service.ErrNoCamera):
		c.String(http.StatusOK, "Failed to start camera - no working camera found. Please check that your webcam is connected and not in use by another application.")
	default:
		utils.Logger.Error("failed to start camera", zap.Error(err))
		c.String(http.StatusOK, "Error starting camera: %v", err)
	}
}

// StopCamera 释放摄像头会话
func (h *CameraHandler) StopCamera(c *gin.Context) {
	if h.camera.Stop() {
		c.String(http.StatusOK, "Camera stopped")
		return
	}
	c.String(http.StatusOK, "Camera already stopped")
}

// VideoFeed 持续输出JPEG帧的multipart流，
// 客户端断开或帧管线终止时结束
func (h *CameraHandler) VideoFeed(c *gin.Context) {
	c.Header("Content-Type", videoFeedContentType)
	c.Writer.WriteHeader(http.StatusOK)

	h.streamer.Stream(c.Request.Context(), func(jpeg []byte) bool {
		if _, err := c.Writer.WriteString(framePartHeader); err != nil {
			return false
		}
		if _, err := c.Writer.Write(jpeg); err != nil {
			return false
		}
		if _, err := c.Writer.WriteString("\r\n"); err != nil {
			return false
		}
		c.Writer.Flush()
		return true
	})
}

// EmotionData 返回最近一次人脸分类结果
func (h *CameraHandler) EmotionData(c *gin.Context) {
	reading, ok := h.reading.Get()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No emotion data available"})
		return
	}
	c.JSON(http.StatusOK, reading)
}
