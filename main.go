package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/nileshkulkarniy/emotionsense/config"
	"github.com/nileshkulkarniy/emotionsense/handler"
	"github.com/nileshkulkarniy/emotionsense/middleware"
	"github.com/nileshkulkarniy/emotionsense/service"
	"github.com/nileshkulkarniy/emotionsense/utils"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// 加载配置
	cfg := config.New()

	// 初始化日志
	if err := utils.InitLogger(cfg.Server.Mode); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer utils.Sync()

	utils.Logger.Info("starting EmotionSense server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	// 确保数据目录存在
	if err := os.MkdirAll(cfg.Upload.DataDir, 0755); err != nil {
		utils.Logger.Fatal("failed to create data directory", zap.Error(err))
	}

	// 初始化账号存储
	userStore, err := service.NewUserStore(cfg.Database.Path)
	if err != nil {
		utils.Logger.Fatal("failed to open user store", zap.Error(err))
	}
	defer userStore.Close()

	// 初始化Redis会话存储
	sessionService := service.NewSessionService(&cfg.Redis)
	ctx := context.Background()
	if err := sessionService.Ping(ctx); err != nil {
		utils.Logger.Warn("redis connection failed, sessions disabled", zap.Error(err))
	} else {
		utils.Logger.Info("redis connected successfully")
	}
	defer sessionService.Close()

	// 令牌服务
	tokenService := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL)

	// 人脸表情识别
	readingHolder := service.NewEmotionReadingHolder()
	faceClassifier := service.NewFaceClassifier(&cfg.Face, readingHolder)
	defer faceClassifier.Close()

	faceDetector := service.NewCascadeFaceDetector(&cfg.Face)
	defer faceDetector.Close()

	cameraService := service.NewCameraService(&cfg.Camera)
	defer cameraService.Stop()

	frameStreamer := service.NewFrameStreamer(cameraService, faceClassifier, faceDetector)

	// 文本分析器：启动时从配置的数据源训练
	lexicon := service.LoadSentimentLexicon(cfg.Analyzer.SentimentWordsPath)
	sentimentAnalyzer := service.NewSentimentAnalyzer(cfg.Analyzer.MaxFeatures, lexicon)
	if sentimentAnalyzer.Train(cfg.Analyzer.SentimentDatasets) {
		utils.Logger.Info("text analysis model trained successfully")
	} else {
		utils.Logger.Warn("failed to train text analysis model")
	}

	emotionAnalyzer := service.NewEmotionAnalyzer(cfg.Analyzer.MaxFeatures)
	if emotionAnalyzer.Train(cfg.Analyzer.EmotionDatasets) {
		utils.Logger.Info("emotion analysis model trained successfully")
	} else {
		utils.Logger.Warn("failed to train emotion analysis model")
	}

	// 初始化Handler
	authHandler := handler.NewAuthHandler(userStore, tokenService, sessionService)
	cameraHandler := handler.NewCameraHandler(cameraService, frameStreamer, readingHolder)
	textHandler := handler.NewTextHandler(sentimentAnalyzer, emotionAnalyzer)
	datasetHandler := handler.NewDatasetHandler(cfg, emotionAnalyzer)

	// 设置Gin模式
	gin.SetMode(cfg.Server.Mode)

	// 创建路由
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// 静态文件服务
	r.Static("/static", "./static")
	r.StaticFile("/", "./static/index.html")

	// 健康检查和版本信息
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// 视频流与表情数据
	r.GET("/video_feed", cameraHandler.VideoFeed)
	r.GET("/start_camera", cameraHandler.StartCamera)
	r.GET("/stop_camera", cameraHandler.StopCamera)
	r.GET("/emotion_data", cameraHandler.EmotionData)

	// 文本分析
	r.POST("/analyze_text", textHandler.AnalyzeText)
	r.POST("/analyze_voice_emotion", textHandler.AnalyzeVoiceEmotion)
	r.POST("/upload_voice_dataset", datasetHandler.UploadVoiceDataset)

	// 账号接口
	api := r.Group("/api")
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.POST("/logout", authHandler.Logout)

		authed := api.Group("", middleware.Auth(tokenService))
		{
			authed.GET("/profile", authHandler.GetProfile)
			authed.PUT("/profile", authHandler.UpdateProfile)
			authed.POST("/change-password", authHandler.ChangePassword)
		}
	}

	// 启动服务器
	utils.Logger.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := r.Run(cfg.Server.Port); err != nil {
		utils.Logger.Fatal("failed to start server", zap.Error(err))
	}
}
