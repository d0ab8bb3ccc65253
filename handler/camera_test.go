package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nileshkulkarniy/emotionsense/config"
	"github.com/nileshkulkarniy/emotionsense/model"
	"github.com/nileshkulkarniy/emotionsense/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 没有可探测的设备索引：启动必然失败但不会碰硬件
func newCameraTestEnv() (*gin.Engine, *service.EmotionReadingHolder) {
	camera := service.NewCameraService(&config.CameraConfig{})
	reading := service.NewEmotionReadingHolder()
	streamer := service.NewFrameStreamer(camera, nil, nil)

	h := NewCameraHandler(camera, streamer, reading)
	router := gin.New()
	router.GET("/start_camera", h.StartCamera)
	router.GET("/stop_camera", h.StopCamera)
	router.GET("/video_feed", h.VideoFeed)
	router.GET("/emotion_data", h.EmotionData)
	return router, reading
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStartCameraNoDevice(t *testing.T) {
	router, _ := newCameraTestEnv()

	w := get(router, "/start_camera")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to start camera - no working camera found")
}

func TestStopCameraAlreadyStopped(t *testing.T) {
	router, _ := newCameraTestEnv()

	w := get(router, "/stop_camera")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Camera already stopped", w.Body.String())
}

func TestVideoFeedWithoutCamera(t *testing.T) {
	router, _ := newCameraTestEnv()

	w := get(router, "/video_feed")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "multipart/x-mixed-replace; boundary=frame", w.Header().Get("Content-Type"))
	// 摄像头不可用时仍然产出一帧诊断画面
	assert.Contains(t, w.Body.String(), "--frame\r\nContent-Type: image/jpeg\r\n\r\n")
}

func TestEmotionDataNotAvailable(t *testing.T) {
	router, _ := newCameraTestEnv()

	w := get(router, "/emotion_data")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No emotion data available")
}

func TestEmotionData(t *testing.T) {
	router, reading := newCameraTestEnv()

	reading.Set(model.EmotionReading{
		Emotions:        []string{"Angry", "Disgust", "Fear", "Happy", "Neutral", "Sad", "Surprise"},
		Predictions:     []float64{0.01, 0.01, 0.01, 0.9, 0.03, 0.02, 0.02},
		DominantEmotion: "Happy",
		Confidence:      0.9,
	})

	w := get(router, "/emotion_data")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp model.EmotionReading
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Happy", resp.DominantEmotion)
	assert.Len(t, resp.Predictions, 7)
}
