package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"

	"smart-resume-go/internal/analyzer"
	"smart-resume-go/internal/api/handler"
	"smart-resume-go/internal/api/router"
	"smart-resume-go/internal/config"
	"smart-resume-go/internal/constants"
	"smart-resume-go/internal/jobfeed"
	"smart-resume-go/internal/llm"
	"smart-resume-go/internal/logger"
	"smart-resume-go/internal/outbox"
	"smart-resume-go/internal/parser"
	"smart-resume-go/internal/processor"
	"smart-resume-go/internal/ratelimit"
	"smart-resume-go/internal/recommend"
	"smart-resume-go/internal/storage"
	"smart-resume-go/internal/tracing"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "configs/config.yaml", "配置文件路径")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})
	glog.SetLogger(hertzadapter.From(logger.Logger))
	logger.Info().Str("config", configPath).Msg("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, &cfg.Tracing)
	if err != nil {
		logger.Warn().Err(err).Msg("初始化链路追踪失败，继续以无追踪模式运行")
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("关闭链路追踪失败")
		}
	}()

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("初始化存储失败")
		os.Exit(1)
	}
	defer storageManager.Close()

	var relay *outbox.MessageRelay
	if storageManager.MySQL != nil && storageManager.RabbitMQ != nil {
		if err := storageManager.RabbitMQ.EnsureExchange(constants.ResumeEventsExchange, "topic", true); err != nil {
			logger.Warn().Err(err).Msg("声明事件交换机失败")
		}
		relay = outbox.NewMessageRelay(storageManager.MySQL.DB(), storageManager.RabbitMQ)
		relay.Start()
	}

	chain, err := buildExtractionChain(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("初始化文本提取链失败")
		os.Exit(1)
	}

	proc := processor.NewResumeProcessor(chain, storageManager)
	matcher := analyzer.NewJobMatchAnalyzer(buildChatModel(cfg),
		time.Duration(cfg.LLM.TimeoutSeconds)*time.Second)

	// 服务端tracer产出每个请求的根span，存储层的gorm/redis子span挂在其下
	srvTracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		srvTracer,
		server.WithHostPorts(fmt.Sprintf(":%d", cfg.Server.Port)),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)
		logger.Ctx(c).Info().
			Str("method", string(ctx.Method())).
			Str("path", string(ctx.Path())).
			Int("status", ctx.Response.StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("请求完成")
	})

	router.RegisterRoutes(h, &router.Handlers{
		Resume: handler.NewResumeHandler(proc, matcher, storageManager),
		Course: handler.NewCourseHandler(recommend.NewCourseRecommender()),
		Job:    handler.NewJobHandler(jobfeed.NewClient(&cfg.JobFeed)),
		Admin:  handler.NewAdminHandler(storageManager),
	}, cfg.Server.AdminAPIKey)

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("HTTP服务器启动")
		if err := h.Run(); err != nil {
			logger.Error().Err(err).Msg("HTTP服务器退出")
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		logger.Info().Msg("收到终止信号，正在优雅退出")
	case <-ctx.Done():
	}

	if relay != nil {
		relay.Stop()
	}

	exitWait := time.Duration(cfg.Server.ExitWaitTime) * time.Second
	if exitWait <= 0 {
		exitWait = 5 * time.Second
	}
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), exitWait)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
	}
	logger.Info().Msg("优雅退出完成")
}

// buildExtractionChain 按配置组装多级提取链：
// Tika（配置了server_url时）→ Eino结构化提取 → 基础提取 → OCR（启用时）
func buildExtractionChain(ctx context.Context, cfg *config.Config) (*parser.ExtractionChain, error) {
	var digital []parser.PDFExtractor

	if cfg.Tika.ServerURL != "" {
		var tikaOpts []parser.TikaOption
		if cfg.Tika.TimeoutSeconds > 0 {
			tikaOpts = append(tikaOpts, parser.WithTikaTimeout(time.Duration(cfg.Tika.TimeoutSeconds)*time.Second))
		}
		digital = append(digital, parser.NewTikaPDFExtractor(cfg.Tika.ServerURL, tikaOpts...))
		logger.Info().Str("server", cfg.Tika.ServerURL).Msg("布局感知提取已启用 (Tika)")
	}

	einoExtractor, err := parser.NewEinoPDFTextExtractor(ctx)
	if err != nil {
		return nil, fmt.Errorf("创建结构化PDF提取器失败: %w", err)
	}
	digital = append(digital, einoExtractor)
	digital = append(digital, parser.NewBasicPDFExtractor())

	var ocr parser.PDFExtractor
	if cfg.OCR.Enabled {
		ocr = parser.NewOCRPDFExtractor(&cfg.OCR)
		logger.Info().Str("language", cfg.OCR.Language).Msg("OCR提取已启用")
	}

	return parser.NewExtractionChain(&cfg.Extraction, digital, ocr), nil
}

// buildChatModel 配置了API Key时返回OpenRouter模型，否则返回nil，
// 求职匹配分析随之退回本地启发式路径
func buildChatModel(cfg *config.Config) model.ToolCallingChatModel {
	if cfg.LLM.APIKey == "" {
		logger.Info().Msg("未配置LLM API Key，岗位匹配将使用本地启发式分析")
		return nil
	}

	var opts []llm.ModelOption
	if cfg.LLM.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(cfg.LLM.MaxTokens))
	}
	if cfg.LLM.Temperature > 0 {
		opts = append(opts, llm.WithTemperature(cfg.LLM.Temperature))
	}
	if cfg.LLM.TimeoutSeconds > 0 {
		opts = append(opts, llm.WithHTTPTimeout(time.Duration(cfg.LLM.TimeoutSeconds)*time.Second))
	}

	chatModel, err := llm.NewOpenRouterChatModel(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.APIURL, opts...)
	if err != nil {
		logger.Warn().Err(err).Msg("初始化LLM模型失败，岗位匹配将使用本地启发式分析")
		return nil
	}
	logger.Info().
		Str("model", cfg.LLM.Model).
		Int("qpm", cfg.LLM.RequestsPerMinute).
		Msg("LLM模型初始化成功")
	return ratelimit.NewLimitedChatModel(chatModel, cfg.LLM.RequestsPerMinute)
}
