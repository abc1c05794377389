package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-screener-go/internal/api/handler"
	"resume-screener-go/internal/api/router"
	"resume-screener-go/internal/config"
	"resume-screener-go/internal/extractor"
	appLogger "resume-screener-go/internal/logger"
	"resume-screener-go/internal/matcher"
	"resume-screener-go/internal/parser"
	"resume-screener-go/internal/screener"
	"resume-screener-go/internal/storage"
	"resume-screener-go/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"
)

var (
	version     = "1.0.0"             //nolint:gochecknoglobals
	serviceName = "resume-screener-go" //nolint:gochecknoglobals
)

func main() {
	var configPath string
	var genConfig bool
	pflag.StringVarP(&configPath, "config", "c", "config.yaml", "配置文件路径")
	pflag.BoolVar(&genConfig, "gen-config", false, "生成示例配置文件后退出")
	pflag.Parse()

	if genConfig {
		if err := config.CreateSampleConfig(configPath); err != nil {
			log.Fatalf("生成示例配置失败: %v", err)
		}
		return
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	appLogger.Init(cfg.Logger)
	glog.SetLogger(hertzadapter.From(appLogger.Logger))
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = serviceName
	}
	shutdownTracing, err := tracing.InitProvider(ctx, cfg.Tracing)
	if err != nil {
		glog.Fatalf("初始化追踪失败: %v", err)
	}

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	aliyunEmbedder, err := parser.NewAliyunEmbedder(cfg.Aliyun.APIKey, cfg.Aliyun.Embedding)
	if err != nil {
		glog.Fatalf("初始化阿里云Embedder失败: %v", err)
	}
	glog.Info("阿里云Embedder初始化成功")

	semanticMatcher := matcher.NewSemanticMatcher(aliyunEmbedder)

	// 三级文本提取链：Eino本地解析 → Tika文本提取 → Tika强制OCR
	var extractors []parser.TextExtractor
	einoExtractor, err := parser.NewEinoPDFTextExtractor(ctx,
		parser.WithEinoLogger(log.New(os.Stderr, "[EinoPDF] ", log.LstdFlags)))
	if err != nil {
		glog.Fatalf("创建Eino PDF提取器失败: %v", err)
	}
	extractors = append(extractors, einoExtractor)

	if cfg.Tika.ServerURL != "" {
		tikaTimeout := time.Duration(cfg.Tika.TimeoutSeconds) * time.Second
		extractors = append(extractors,
			parser.NewTikaPDFExtractor(cfg.Tika.ServerURL,
				parser.WithTimeout(tikaTimeout),
				parser.WithTikaLogger(log.New(os.Stderr, "[TikaPDF] ", log.LstdFlags))),
			parser.NewTikaPDFExtractor(cfg.Tika.ServerURL,
				parser.WithTimeout(tikaTimeout),
				parser.WithOCROnly(cfg.Tika.OCRLanguage),
				parser.WithTikaLogger(log.New(os.Stderr, "[TikaOCR] ", log.LstdFlags))),
		)
		glog.Info("Tika文本提取与OCR兜底已启用")
	} else {
		glog.Warn("未配置Tika服务器，文本提取仅依赖本地解析器")
	}

	sources := []parser.DocumentSource{parser.FileDocumentSource{}}
	if storageManager.MinIO != nil {
		sources = append(sources, &parser.ObjectDocumentSource{Fetcher: storageManager.MinIO})
	}
	textProvider := parser.NewTextProvider(sources, extractors)

	skillExtractor := extractor.NewSkillExtractor(cfg.Screening.Vocabulary, cfg.Screening.NounFallbackEnabled())

	screenerOpts := []screener.Option{
		screener.WithDefaultThreshold(cfg.Screening.DefaultThreshold),
	}
	if storageManager.Redis != nil {
		screenerOpts = append(screenerOpts, screener.WithDedupCache(storageManager.Redis))
	}
	if storageManager.RabbitMQ != nil {
		screenerOpts = append(screenerOpts, screener.WithEventPublisher(storageManager.RabbitMQ))
	}
	engine := screener.NewScreener(storageManager.MySQL, textProvider, skillExtractor, semanticMatcher, screenerOpts...)
	glog.Info("筛选编排器初始化成功")

	roleHandler := handler.NewRoleHandler(cfg, storageManager, engine)
	screenHandler := handler.NewScreenHandler(cfg, storageManager, engine)

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	router.RegisterRoutes(h, cfg, roleHandler, screenHandler)
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，监听地址: %s (版本 %s)", cfg.Server.Address, version)
	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		glog.Errorf("追踪关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}
