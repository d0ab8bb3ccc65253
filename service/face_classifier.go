package service

import (
	"image"
	"sync"

	"github.com/nileshkulkarniy/emotionsense/config"
	"github.com/nileshkulkarniy/emotionsense/model"
	"github.com/nileshkulkarniy/emotionsense/utils"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// 固定的7类表情标签，顺序与训练时一致
var faceEmotions = []string{"angry", "disgust", "fear", "happy", "neutral", "sad", "surprise"}

// 展示用的首字母大写版本
var displayEmotions = []string{"Angry", "Disgust", "Fear", "Happy", "Neutral", "Sad", "Surprise"}

const faceInputSize = 48

// FaceClassifier 封装预训练的表情识别网络。
// 模型加载一次后在进程生命周期内不变；
// 没有模型或推理出错时返回哨兵结果，从不向上抛错。
type FaceClassifier struct {
	mu      sync.Mutex
	net     gocv.Net
	loaded  bool
	reading *EmotionReadingHolder
}

func NewFaceClassifier(cfg *config.FaceConfig, reading *EmotionReadingHolder) *FaceClassifier {
	c := &FaceClassifier{reading: reading}

	net := gocv.ReadNet(cfg.ModelPath, "")
	if net.Empty() {
		utils.Logger.Warn("emotion model not loaded, classification disabled",
			zap.String("path", cfg.ModelPath))
		return c
	}

	c.net = net
	c.loaded = true
	utils.Logger.Info("emotion model loaded", zap.String("path", cfg.ModelPath))
	return c
}

func (c *FaceClassifier) Close() error {
	if c.loaded {
		return c.net.Close()
	}
	return nil
}

// Loaded 是否有可用模型
func (c *FaceClassifier) Loaded() bool {
	return c.loaded
}

// Classify 对一张人脸区域做表情分类，同时更新共享的最近结果。
// 任何失败都转成哨兵标签，置信度为0。
func (c *FaceClassifier) Classify(face gocv.Mat) (emotion string, confidence float64) {
	if !c.loaded {
		return "No Model", 0.0
	}

	defer func() {
		if r := recover(); r != nil {
			utils.Logger.Error("emotion detection failed", zap.Any("panic", r))
			emotion, confidence = "Error", 0.0
		}
	}()

	// 预处理：灰度、48x48、归一化到[0,1]
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(face, &gray, gocv.ColorBGRToGray)

	blob := gocv.BlobFromImage(gray, 1.0/255.0,
		image.Pt(faceInputSize, faceInputSize), gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	c.mu.Lock()
	c.net.SetInput(blob, "")
	output := c.net.Forward("")
	c.mu.Unlock()
	defer output.Close()

	predictions := make([]float64, len(faceEmotions))
	for i := range predictions {
		predictions[i] = float64(output.GetFloatAt(0, i))
	}

	predictions = normalizeDistribution(predictions)
	idx := argmax(predictions)
	confidence = predictions[idx]
	emotion = displayEmotions[idx]

	c.reading.Set(model.EmotionReading{
		Emotions:        displayEmotions,
		Predictions:     predictions,
		DominantEmotion: emotion,
		Confidence:      confidence,
	})

	return emotion, confidence
}

// normalizeDistribution 把网络输出归一化成和为1的概率分布
func normalizeDistribution(values []float64) []float64 {
	var sum float64
	for _, v := range values {
		if v > 0 {
			sum += v
		}
	}
	if sum == 0 {
		// 全零输出退化成均匀分布
		uniform := make([]float64, len(values))
		for i := range uniform {
			uniform[i] = 1.0 / float64(len(values))
		}
		return uniform
	}

	normalized := make([]float64, len(values))
	for i, v := range values {
		if v > 0 {
			normalized[i] = v / sum
		}
	}
	return normalized
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
