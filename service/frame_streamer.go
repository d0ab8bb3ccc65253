package service

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/nileshkulkarniy/emotionsense/config"
	"github.com/nileshkulkarniy/emotionsense/utils"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

var (
	annotationColor = color.RGBA{G: 255}
	diagnosticColor = color.RGBA{R: 255}
)

// FaceDetector 在灰度帧上定位人脸框
type FaceDetector interface {
	Detect(gray gocv.Mat) []image.Rectangle
}

// CascadeFaceDetector 基于Haar级联的多尺度人脸检测
type CascadeFaceDetector struct {
	mu           sync.Mutex
	classifier   gocv.CascadeClassifier
	loaded       bool
	scaleFactor  float64
	minNeighbors int
	minSize      int
}

func NewCascadeFaceDetector(cfg *config.FaceConfig) *CascadeFaceDetector {
	d := &CascadeFaceDetector{
		scaleFactor:  cfg.ScaleFactor,
		minNeighbors: cfg.MinNeighbors,
		minSize:      cfg.MinSize,
	}

	d.classifier = gocv.NewCascadeClassifier()
	if !d.classifier.Load(cfg.CascadePath) {
		utils.Logger.Warn("face cascade not loaded, detection disabled",
			zap.String("path", cfg.CascadePath))
		d.classifier.Close()
		return d
	}
	d.loaded = true
	return d
}

func (d *CascadeFaceDetector) Close() error {
	if d.loaded {
		return d.classifier.Close()
	}
	return nil
}

func (d *CascadeFaceDetector) Detect(gray gocv.Mat) []image.Rectangle {
	if !d.loaded {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classifier.DetectMultiScaleWithParams(gray,
		d.scaleFactor, d.minNeighbors, 0,
		image.Pt(d.minSize, d.minSize), image.Pt(0, 0))
}

// FrameStreamer 连续采集帧、定位人脸、逐脸分类并标注，
// 产出JPEG编码的帧序列
type FrameStreamer struct {
	camera     *CameraService
	classifier *FaceClassifier
	detector   FaceDetector
}

func NewFrameStreamer(camera *CameraService, classifier *FaceClassifier, detector FaceDetector) *FrameStreamer {
	return &FrameStreamer{
		camera:     camera,
		classifier: classifier,
		detector:   detector,
	}
}

// Stream 逐帧产出JPEG数据，直到读帧/编码失败、上下文取消
// 或 yield 返回 false。没有可用摄像头时只产出一帧诊断画面。
func (s *FrameStreamer) Stream(ctx context.Context, yield func(jpeg []byte) bool) {
	if !s.camera.Active() {
		utils.Logger.Warn("video feed requested but camera is not active")
		if data, ok := diagnosticFrame("Camera not available"); ok {
			yield(data)
		}
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		data, ok, failed := s.nextFrame()
		if failed != "" {
			// 循环内部出错：产出一帧诊断画面后终止序列
			if diag, ok := diagnosticFrame(failed); ok {
				yield(diag)
			}
			return
		}
		if !ok {
			return
		}
		if !yield(data) {
			return
		}
	}
}

// nextFrame 采集并处理一帧。ok=false 表示序列正常终止，
// failed 非空表示需要先产出诊断帧再终止。
func (s *FrameStreamer) nextFrame() (data []byte, ok bool, failed string) {
	defer func() {
		if r := recover(); r != nil {
			utils.Logger.Error("frame processing failed", zap.Any("panic", r))
			data, ok, failed = nil, false, fmt.Sprintf("Error: %v", r)
		}
	}()

	frame := gocv.NewMat()
	defer frame.Close()

	if !s.camera.Read(&frame) || frame.Empty() {
		utils.Logger.Warn("failed to read frame from camera")
		return nil, false, ""
	}

	// 灰度图用于人脸定位
	gray := gocv.NewMat()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	faces := s.detector.Detect(gray)
	gray.Close()

	// 没检测到人脸时帧原样输出，只是不做标注
	for _, rect := range faces {
		bounded := rect.Intersect(image.Rect(0, 0, frame.Cols(), frame.Rows()))
		if bounded.Empty() {
			continue
		}

		region := frame.Region(bounded)
		face := region.Clone()
		region.Close()

		emotion, confidence := s.classifier.Classify(face)
		face.Close()

		gocv.Rectangle(&frame, bounded, annotationColor, 2)
		caption := fmt.Sprintf("%s: %.2f", emotion, confidence)
		gocv.PutText(&frame, caption,
			image.Pt(bounded.Min.X, bounded.Min.Y-10),
			gocv.FontHersheySimplex, 0.9, annotationColor, 2)
	}

	buf, err := gocv.IMEncode(".jpg", frame)
	if err != nil {
		utils.Logger.Error("failed to encode frame", zap.Error(err))
		return nil, false, ""
	}
	defer buf.Close()

	encoded := make([]byte, len(buf.GetBytes()))
	copy(encoded, buf.GetBytes())
	return encoded, true, ""
}

// diagnosticFrame 生成一帧带提示文字的黑色画面
func diagnosticFrame(text string) ([]byte, bool) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer img.Close()

	gocv.PutText(&img, text, image.Pt(50, 240),
		gocv.FontHersheySimplex, 1, diagnosticColor, 2)

	buf, err := gocv.IMEncode(".jpg", img)
	if err != nil {
		utils.Logger.Error("failed to encode diagnostic frame", zap.Error(err))
		return nil, false
	}
	defer buf.Close()

	encoded := make([]byte, len(buf.GetBytes()))
	copy(encoded, buf.GetBytes())
	return encoded, true
}
