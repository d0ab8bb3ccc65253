package service

import (
	"sync"

	"github.com/nileshkulkarniy/emotionsense/model"
)

// EmotionReadingHolder 保存最近一次人脸分类结果，读写都加锁。
// 每次成功分类都会整体覆盖，后写覆盖先写。
type EmotionReadingHolder struct {
	mu      sync.RWMutex
	reading model.EmotionReading
	valid   bool
}

func NewEmotionReadingHolder() *EmotionReadingHolder {
	return &EmotionReadingHolder{}
}

// Set 覆盖最近一次结果
func (h *EmotionReadingHolder) Set(reading model.EmotionReading) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reading = reading
	h.valid = true
}

// Get 返回最近一次结果；尚未产生任何结果时第二个返回值为 false
func (h *EmotionReadingHolder) Get() (model.EmotionReading, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.reading, h.valid
}
