package service

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// fakeDetector 返回固定的人脸框
type fakeDetector struct {
	rects []image.Rectangle
}

func (d *fakeDetector) Detect(gray gocv.Mat) []image.Rectangle { return d.rects }

func newActiveCamera(t *testing.T) *CameraService {
	t.Helper()
	svc := newFakeCameraService(func(int, gocv.VideoCaptureAPI) (capture, error) {
		return &fakeCapture{opened: true, readOK: true}, nil
	})
	require.NoError(t, svc.Start())
	return svc
}

func isJPEG(data []byte) bool {
	return len(data) > 2 && data[0] == 0xff && data[1] == 0xd8
}

func TestStreamInactiveCameraEmitsDiagnosticFrame(t *testing.T) {
	camera := newFakeCameraService(func(int, gocv.VideoCaptureAPI) (capture, error) {
		return nil, ErrNoCamera
	})
	s := NewFrameStreamer(camera, nil, nil)

	var frames [][]byte
	s.Stream(context.Background(), func(jpeg []byte) bool {
		frames = append(frames, jpeg)
		return true
	})

	// 摄像头不可用：恰好一帧诊断画面
	require.Len(t, frames, 1)
	assert.True(t, isJPEG(frames[0]))
}

func TestStreamYieldsFrames(t *testing.T) {
	camera := newActiveCamera(t)
	classifier := &FaceClassifier{reading: NewEmotionReadingHolder()}
	s := NewFrameStreamer(camera, classifier, &fakeDetector{})

	frames := 0
	s.Stream(context.Background(), func(jpeg []byte) bool {
		assert.True(t, isJPEG(jpeg))
		frames++
		return frames < 3
	})

	assert.Equal(t, 3, frames)
}

func TestStreamAnnotatesDetectedFaces(t *testing.T) {
	camera := newActiveCamera(t)
	holder := NewEmotionReadingHolder()
	classifier := &FaceClassifier{reading: holder}
	// 假帧是4x4，框取左上角2x2
	s := NewFrameStreamer(camera, classifier, &fakeDetector{
		rects: []image.Rectangle{image.Rect(0, 0, 2, 2)},
	})

	frames := 0
	s.Stream(context.Background(), func(jpeg []byte) bool {
		frames++
		return false
	})

	// 有人脸框时帧照常产出，分类没有模型也不会中断序列
	assert.Equal(t, 1, frames)
}

func TestStreamStopsOnContextCancel(t *testing.T) {
	camera := newActiveCamera(t)
	classifier := &FaceClassifier{reading: NewEmotionReadingHolder()}
	s := NewFrameStreamer(camera, classifier, &fakeDetector{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	frames := 0
	s.Stream(ctx, func(jpeg []byte) bool {
		frames++
		return true
	})
	assert.Zero(t, frames)
}

func TestStreamStopsWhenCameraStops(t *testing.T) {
	camera := newActiveCamera(t)
	classifier := &FaceClassifier{reading: NewEmotionReadingHolder()}
	s := NewFrameStreamer(camera, classifier, &fakeDetector{})

	frames := 0
	s.Stream(context.Background(), func(jpeg []byte) bool {
		frames++
		camera.Stop()
		return true
	})

	// 停止后下一次读帧失败，序列正常终止
	assert.Equal(t, 1, frames)
}

func TestDiagnosticFrame(t *testing.T) {
	data, ok := diagnosticFrame("Camera not available")
	require.True(t, ok)
	assert.True(t, isJPEG(data))
}
