package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"gorm.io/datatypes"

	"smart-resume-go/internal/analyzer"
	"smart-resume-go/internal/config"
	"smart-resume-go/internal/constants"
	"smart-resume-go/internal/llm"
	"smart-resume-go/internal/logger"
	"smart-resume-go/internal/processor"
	"smart-resume-go/internal/ratelimit"
	"smart-resume-go/internal/storage"
	"smart-resume-go/internal/storage/models"
)

// 岗位匹配 worker：消费分析完成事件，为每份简历异步生成
// 匹配洞察报告（摘要、短板、学习路线、关键词）并落库。
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("初始化存储失败")
		os.Exit(1)
	}
	defer storageManager.Close()

	if storageManager.RabbitMQ == nil {
		logger.Error().Msg("岗位匹配worker需要配置RabbitMQ")
		os.Exit(1)
	}
	if storageManager.MySQL == nil {
		logger.Error().Msg("岗位匹配worker需要配置MySQL")
		os.Exit(1)
	}

	var chatModel *llm.OpenRouterChatModel
	if cfg.LLM.APIKey != "" {
		chatModel, err = llm.NewOpenRouterChatModel(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.APIURL)
		if err != nil {
			logger.Warn().Err(err).Msg("初始化LLM模型失败，将使用本地启发式分析")
		}
	}
	var matcher *analyzer.JobMatchAnalyzer
	if chatModel != nil {
		limited := ratelimit.NewLimitedChatModel(chatModel, cfg.LLM.RequestsPerMinute)
		matcher = analyzer.NewJobMatchAnalyzer(limited, time.Duration(cfg.LLM.TimeoutSeconds)*time.Second)
	} else {
		matcher = analyzer.NewJobMatchAnalyzer(nil, 0)
	}

	worker := &matchWorker{
		storage: storageManager,
		matcher: matcher,
	}

	done, err := worker.start(ctx, cfg.RabbitMQ.PrefetchCount)
	if err != nil {
		logger.Error().Err(err).Msg("启动消费者失败")
		os.Exit(1)
	}
	logger.Info().Str("queue", constants.JobMatchQueue).Msg("岗位匹配worker已启动")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		logger.Info().Msg("收到终止信号，正在退出")
	case <-done:
		logger.Warn().Msg("消费通道已关闭")
	}
}

type matchWorker struct {
	storage *storage.Storage
	matcher *analyzer.JobMatchAnalyzer
}

func (w *matchWorker) start(ctx context.Context, prefetchCount int) (<-chan struct{}, error) {
	mq := w.storage.RabbitMQ
	if err := mq.EnsureExchange(constants.ResumeEventsExchange, "topic", true); err != nil {
		return nil, fmt.Errorf("声明交换机失败: %w", err)
	}
	if err := mq.EnsureQueue(constants.JobMatchQueue, true); err != nil {
		return nil, fmt.Errorf("声明队列失败: %w", err)
	}
	if err := mq.BindQueue(constants.JobMatchQueue, constants.ResumeEventsExchange, constants.AnalysisCompletedRoutingKey); err != nil {
		return nil, fmt.Errorf("绑定队列失败: %w", err)
	}

	return mq.StartConsumer(constants.JobMatchQueue, prefetchCount, func(body []byte) bool {
		return w.handle(ctx, body)
	})
}

// handle 处理单个分析完成事件。返回false触发重回队列，
// 因此只有可重试的错误才返回false，脏消息直接丢弃。
func (w *matchWorker) handle(ctx context.Context, body []byte) bool {
	var event processor.AnalysisCompletedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		logger.Error().Err(err).Msg("解析事件失败，丢弃消息")
		return true
	}
	if event.SubmissionUUID == "" {
		logger.Error().Msg("事件缺少submission_uuid，丢弃消息")
		return true
	}

	log := logger.Ctx(ctx).With().Str("submission_uuid", event.SubmissionUUID).Logger()

	text, err := w.fetchText(ctx, &event)
	if err != nil {
		log.Error().Err(err).Msg("获取解析文本失败")
		return false
	}

	report := w.matcher.Analyze(ctx, text)

	record := &models.JobMatchResult{
		SubmissionUUID: event.SubmissionUUID,
		Summary:        report.Summary,
		Gaps:           report.Gaps,
		Roadmap:        toJSON(report.Roadmap),
		Keywords:       toJSON(report.Keywords),
	}
	if err := w.storage.MySQL.SaveJobMatchResult(ctx, record); err != nil {
		log.Error().Err(err).Msg("保存岗位匹配结果失败")
		return false
	}

	log.Info().Int("roadmap_steps", len(report.Roadmap)).Msg("岗位匹配报告已生成")
	return true
}

func (w *matchWorker) fetchText(ctx context.Context, event *processor.AnalysisCompletedEvent) (string, error) {
	if w.storage.MinIO == nil {
		return "", fmt.Errorf("对象存储未配置")
	}
	key := event.ParsedTextKey
	if key == "" {
		key = storage.ParsedTextObjectKey(event.SubmissionUUID)
	}
	return w.storage.MinIO.GetParsedText(ctx, key)
}

func toJSON(v interface{}) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}
