package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Camera   CameraConfig   `mapstructure:"camera"`
	Face     FaceConfig     `mapstructure:"face"`
	Analyzer AnalyzerConfig `mapstructure:"analyzer"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type UploadConfig struct {
	DataDir string `mapstructure:"data_dir"`
	MaxSize int64  `mapstructure:"max_size"`
}

type CameraConfig struct {
	// 按顺序探测的设备索引与采集后端
	Indices  []int    `mapstructure:"indices"`
	Backends []string `mapstructure:"backends"`
}

type FaceConfig struct {
	ModelPath    string  `mapstructure:"model_path"`
	CascadePath  string  `mapstructure:"cascade_path"`
	ScaleFactor  float64 `mapstructure:"scale_factor"`
	MinNeighbors int     `mapstructure:"min_neighbors"`
	MinSize      int     `mapstructure:"min_size"`
}

type AnalyzerConfig struct {
	SentimentDatasets  []string `mapstructure:"sentiment_datasets"`
	EmotionDatasets    []string `mapstructure:"emotion_datasets"`
	SentimentWordsPath string   `mapstructure:"sentiment_words_path"`
	MaxFeatures        int      `mapstructure:"max_features"`
}

// Load 从 YAML 文件加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// 设置默认值
	setDefaults(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// New 使用默认配置路径加载配置
func New() *Config {
	cfg, err := Load("config.yaml")
	if err != nil {
		// 如果加载失败，返回默认配置
		return getDefaultConfig()
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":5000")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://localhost:3006", "http://localhost:5000"})

	v.SetDefault("database.path", "./emotionsense.db")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("jwt.secret", "emotionsense-secret-key")
	v.SetDefault("jwt.ttl", 24*time.Hour)

	v.SetDefault("upload.data_dir", "./data")
	v.SetDefault("upload.max_size", 10*1024*1024)

	v.SetDefault("camera.indices", []int{0, 1, 2})
	v.SetDefault("camera.backends", []string{"v4l2", "gstreamer", "any"})

	v.SetDefault("face.model_path", "./models/emotion_model.onnx")
	v.SetDefault("face.cascade_path", "haarcascade_frontalface_default.xml")
	v.SetDefault("face.scale_factor", 1.1)
	v.SetDefault("face.min_neighbors", 5)
	v.SetDefault("face.min_size", 30)

	v.SetDefault("analyzer.sentiment_datasets", []string{"./data/sentiment_dataset.csv", "./data/sentiment_sentences.csv", "./data/emotion_sentences.csv"})
	v.SetDefault("analyzer.emotion_datasets", []string{"./data/emotion_sentences.csv", "./data/voice_emotion_dataset.csv"})
	v.SetDefault("analyzer.sentiment_words_path", "")
	v.SetDefault("analyzer.max_features", 5000)
}

func getDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         ":5000",
			Mode:         "debug",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			CORSOrigins:  []string{"http://localhost:3000", "http://localhost:3006", "http://localhost:5000"},
		},
		Database: DatabaseConfig{
			Path: "./emotionsense.db",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			TTL:      24 * time.Hour,
		},
		JWT: JWTConfig{
			Secret: "emotionsense-secret-key",
			TTL:    24 * time.Hour,
		},
		Upload: UploadConfig{
			DataDir: "./data",
			MaxSize: 10 * 1024 * 1024,
		},
		Camera: CameraConfig{
			Indices:  []int{0, 1, 2},
			Backends: []string{"v4l2", "gstreamer", "any"},
		},
		Face: FaceConfig{
			ModelPath:    "./models/emotion_model.onnx",
			CascadePath:  "haarcascade_frontalface_default.xml",
			ScaleFactor:  1.1,
			MinNeighbors: 5,
			MinSize:      30,
		},
		Analyzer: AnalyzerConfig{
			SentimentDatasets:  []string{"./data/sentiment_dataset.csv", "./data/sentiment_sentences.csv", "./data/emotion_sentences.csv"},
			EmotionDatasets:    []string{"./data/emotion_sentences.csv", "./data/voice_emotion_dataset.csv"},
			SentimentWordsPath: "",
			MaxFeatures:        5000,
		},
	}
}
