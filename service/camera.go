package service

import (
	"errors"
	"sync"

	"github.com/nileshkulkarniy/emotionsense/config"
	"github.com/nileshkulkarniy/emotionsense/utils"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

var (
	ErrCameraRunning = errors.New("camera already running")
	ErrNoCamera      = errors.New("no working camera found")
)

// capture 采集设备句柄，*gocv.VideoCapture 天然满足
type capture interface {
	Read(m *gocv.Mat) bool
	IsOpened() bool
	Close() error
}

type deviceOpener func(index int, api gocv.VideoCaptureAPI) (capture, error)

func openDevice(index int, api gocv.VideoCaptureAPI) (capture, error) {
	return gocv.VideoCaptureDeviceWithAPI(index, api)
}

// CameraService 持有唯一的摄像头会话，状态在 Idle 和 Active 之间切换。
// 句柄由互斥锁保护，启动、读帧、停止都经过这里。
type CameraService struct {
	mu       sync.Mutex
	cam      capture
	indices  []int
	backends []gocv.VideoCaptureAPI
	open     deviceOpener
}

func NewCameraService(cfg *config.CameraConfig) *CameraService {
	return &CameraService{
		indices:  cfg.Indices,
		backends: parseBackends(cfg.Backends),
		open:     openDevice,
	}
}

func parseBackends(names []string) []gocv.VideoCaptureAPI {
	apis := make([]gocv.VideoCaptureAPI, 0, len(names))
	for _, name := range names {
		switch name {
		case "v4l2":
			apis = append(apis, gocv.VideoCaptureV4L2)
		case "gstreamer":
			apis = append(apis, gocv.VideoCaptureGstreamer)
		case "dshow":
			apis = append(apis, gocv.VideoCaptureDshow)
		default:
			apis = append(apis, gocv.VideoCaptureAny)
		}
	}
	if len(apis) == 0 {
		apis = append(apis, gocv.VideoCaptureAny)
	}
	return apis
}

// Start 依次探测设备索引和采集后端，第一个能打开且能读出
// 一帧测试画面的组合胜出。已在运行时返回 ErrCameraRunning，
// 全部失败保持 Idle 并返回 ErrNoCamera。
func (s *CameraService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cam != nil && s.cam.IsOpened() {
		return ErrCameraRunning
	}

	for _, idx := range s.indices {
		for _, api := range s.backends {
			cam, err := s.open(idx, api)
			if err != nil {
				utils.Logger.Debug("camera probe failed",
					zap.Int("index", idx), zap.Int("backend", int(api)), zap.Error(err))
				continue
			}
			if !cam.IsOpened() {
				cam.Close()
				continue
			}

			// 必须能读出一帧测试画面才算成功
			test := gocv.NewMat()
			ok := cam.Read(&test)
			empty := test.Empty()
			test.Close()
			if !ok || empty {
				utils.Logger.Debug("camera opened but failed to read test frame",
					zap.Int("index", idx), zap.Int("backend", int(api)))
				cam.Close()
				continue
			}

			utils.Logger.Info("camera started",
				zap.Int("index", idx), zap.Int("backend", int(api)))
			s.cam = cam
			return nil
		}
	}

	return ErrNoCamera
}

// Stop 释放设备并清空句柄；没有会话在运行时返回 false
func (s *CameraService) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cam == nil {
		return false
	}

	if err := s.cam.Close(); err != nil {
		utils.Logger.Warn("failed to release camera", zap.Error(err))
	}
	s.cam = nil
	utils.Logger.Info("camera stopped")
	return true
}

// Active 是否有打开的采集会话
func (s *CameraService) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cam != nil && s.cam.IsOpened()
}

// Read 读取一帧；会话不存在或读取失败返回 false
func (s *CameraService) Read(frame *gocv.Mat) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cam == nil || !s.cam.IsOpened() {
		return false
	}
	return s.cam.Read(frame)
}
