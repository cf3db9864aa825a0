package processor

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"smart-resume-go/internal/analyzer"
	"smart-resume-go/internal/constants"
	"smart-resume-go/internal/extractor"
	"smart-resume-go/internal/logger"
	"smart-resume-go/internal/parser"
	"smart-resume-go/internal/recommend"
	"smart-resume-go/internal/storage"
	"smart-resume-go/internal/storage/models"
	"smart-resume-go/internal/tracing"
	"smart-resume-go/internal/types"
)

var pipelineTracer = otel.Tracer("resume-processor")

var (
	// ErrInvalidPDF 上传内容不是PDF
	ErrInvalidPDF = errors.New("上传内容不是有效的PDF文件")
	// ErrFileTooLarge 超过大小上限
	ErrFileTooLarge = errors.New("文件超过大小上限")
)

var pdfMagic = []byte("%PDF-")

// TextExtractor 文本提取链的抽象，便于测试替换
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, uri string) (*types.ExtractedText, error)
}

var _ TextExtractor = (*parser.ExtractionChain)(nil)

// AnalysisResponse 一次上传分析的完整响应
type AnalysisResponse struct {
	SubmissionUUID string                `json:"submission_uuid"`
	Duplicate      bool                  `json:"duplicate"`
	Profile        *types.ResumeProfile  `json:"profile"`
	Analysis       *types.AnalysisResult `json:"analysis"`
	Courses        []types.Course        `json:"courses"`
}

// AnalysisCompletedEvent 分析完成后发布到消息队列的事件，
// 岗位匹配 worker 据此异步生成匹配报告
type AnalysisCompletedEvent struct {
	SubmissionUUID string    `json:"submission_uuid"`
	FileMD5        string    `json:"file_md5"`
	Filename       string    `json:"filename"`
	Field          string    `json:"field"`
	Score          int       `json:"score"`
	ParsedTextKey  string    `json:"parsed_text_key"`
	CompletedAt    time.Time `json:"completed_at"`
}

// ResumeProcessor 简历分析流水线的编排器。
// 每次分析是无共享状态的同步计算，可跨请求并发调用。
// 除文本提取外的外部依赖（对象存储、缓存、消息队列）都是尽力而为：
// 它们的失败只降级相应能力，不会使分析请求失败。
type ResumeProcessor struct {
	chain       TextExtractor
	fields      *extractor.FieldExtractor
	classifier  *analyzer.Classifier
	recommender *recommend.CourseRecommender
	storage     *storage.Storage
	maxUpload   int
}

// Option ResumeProcessor 的可选配置
type Option func(*ResumeProcessor)

// WithMaxUploadSize 覆盖上传大小上限
func WithMaxUploadSize(n int) Option {
	return func(p *ResumeProcessor) {
		if n > 0 {
			p.maxUpload = n
		}
	}
}

// WithTextExtractor 替换文本提取链
func WithTextExtractor(te TextExtractor) Option {
	return func(p *ResumeProcessor) {
		if te != nil {
			p.chain = te
		}
	}
}

// NewResumeProcessor 创建流水线编排器。st 可为 nil（或其子组件为 nil），
// 此时对应的持久化/缓存/事件能力被禁用。
func NewResumeProcessor(chain TextExtractor, st *storage.Storage, opts ...Option) *ResumeProcessor {
	p := &ResumeProcessor{
		chain:       chain,
		fields:      extractor.NewFieldExtractor(),
		classifier:  analyzer.NewClassifier(),
		recommender: recommend.NewCourseRecommender(),
		storage:     st,
		maxUpload:   constants.MaxUploadSizeBytes,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessUpload 执行完整的上传分析流程：
// 校验 → 去重 → 归档 → 提取 → 字段解析 → 分类打分 → 持久化 → 发布事件。
// 只有文本提取失败会使请求失败，其余外部依赖的错误均降级处理。
func (p *ResumeProcessor) ProcessUpload(ctx context.Context, filename string, data []byte) (*AnalysisResponse, error) {
	if len(data) > p.maxUpload {
		return nil, fmt.Errorf("%w: %d 字节", ErrFileTooLarge, len(data))
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, ErrInvalidPDF
	}

	fileMD5 := fmt.Sprintf("%x", md5.Sum(data))
	submissionUUID := newSubmissionUUID()

	ctx, span := pipelineTracer.Start(ctx, "resume.ProcessUpload", trace.WithAttributes(
		attribute.String("submission_uuid", submissionUUID),
		attribute.String("file_md5", fileMD5),
		attribute.Int("file_size", len(data)),
	))
	defer span.End()

	log := logger.Ctx(ctx).With().
		Str("submission_uuid", submissionUUID).
		Str("file_md5", fileMD5).
		Logger()

	// 同一文件重复上传直接返回既有结果
	if resp, hit := p.lookupDuplicate(ctx, fileMD5, submissionUUID, &log); hit {
		return resp, nil
	}

	originalKey := p.archiveOriginal(ctx, submissionUUID, data, &log)

	extracted, err := p.chain.Extract(ctx, data, filename)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
		p.rollbackDedup(ctx, fileMD5, &log)
		return nil, fmt.Errorf("提取文本失败: %w", err)
	}

	parsedKey := p.archiveParsedText(ctx, submissionUUID, extracted.Text, &log)

	profile := p.fields.ExtractProfile(extracted.Text, extracted.Pages)
	profile.SubmissionUUID = submissionUUID
	profile.Filename = filename
	profile.Method = extracted.Method

	// 候选人字段进span前统一掩码/截断
	span.SetAttributes(
		attribute.String("extraction.method", string(extracted.Method)),
		attribute.String("candidate_name", tracing.SafeAttributeValue("candidate_name", profile.Name, tracing.MaxResumeLength)),
		attribute.String("candidate_email", tracing.SafeAttributeValue("candidate_email", profile.Contact.Email, tracing.MaxResumeLength)),
		attribute.String("resume.preview", tracing.SafeResumeContent(extracted.Text)),
	)

	analysis := p.classifier.Classify(profile)
	courses := p.recommender.PersonalizedCourses(profile.Skills, analysis.Field, analysis.RecommendedSkills)

	record := buildRecord(profile, analysis, fileMD5, originalKey, parsedKey)
	p.persist(ctx, record, &log)
	p.publishCompleted(ctx, record, &log)

	log.Info().
		Str("method", string(extracted.Method)).
		Str("field", analysis.Field).
		Int("score", analysis.Score).
		Int("skills", len(profile.Skills)).
		Msg("简历分析完成")

	return &AnalysisResponse{
		SubmissionUUID: submissionUUID,
		Profile:        profile,
		Analysis:       analysis,
		Courses:        courses,
	}, nil
}

// lookupDuplicate MD5去重查询。Redis 登记占位后按 缓存 → MySQL 的顺序找既有结果；
// 登记过但结果已丢失时继续走完整流程重新分析。
func (p *ResumeProcessor) lookupDuplicate(ctx context.Context, fileMD5, submissionUUID string, log *zerolog.Logger) (*AnalysisResponse, bool) {
	if p.storage == nil || p.storage.Redis == nil {
		return nil, false
	}

	exists, priorUUID, err := p.storage.Redis.CheckAndSetMD5(ctx, fileMD5, submissionUUID)
	if err != nil {
		tracing.RecordError(trace.SpanFromContext(ctx), err, tracing.ErrorTypeRedis)
		log.Warn().Err(err).Msg("MD5去重查询失败，按新文件处理")
		return nil, false
	}
	if !exists {
		return nil, false
	}

	if record, err := p.storage.Redis.GetCachedAnalysis(ctx, fileMD5); err == nil {
		return responseFromRecord(record, true), true
	}
	if p.storage.MySQL != nil {
		if record, err := p.storage.MySQL.GetAnalysisByMD5(ctx, fileMD5); err == nil {
			return responseFromRecord(record, true), true
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Err(err).Msg("查询既有分析记录失败")
		}
	}

	// 去重位还在但结果查不到了，沿用最初登记的UUID重新分析
	log.Info().Str("prior_uuid", priorUUID).Msg("去重命中但结果缺失，重新分析")
	return nil, false
}

func (p *ResumeProcessor) rollbackDedup(ctx context.Context, fileMD5 string, log *zerolog.Logger) {
	if p.storage == nil || p.storage.Redis == nil {
		return
	}
	if err := p.storage.Redis.RemoveMD5(ctx, fileMD5); err != nil {
		log.Warn().Err(err).Msg("回滚MD5去重登记失败")
	}
}

func (p *ResumeProcessor) archiveOriginal(ctx context.Context, submissionUUID string, data []byte, log *zerolog.Logger) string {
	if p.storage == nil || p.storage.MinIO == nil {
		return ""
	}
	key, err := p.storage.MinIO.UploadResumeFile(ctx, submissionUUID, data)
	if err != nil {
		tracing.RecordError(trace.SpanFromContext(ctx), err, tracing.ErrorTypeObjectKV)
		log.Warn().Err(err).Msg("归档原始简历失败")
		return ""
	}
	return key
}

func (p *ResumeProcessor) archiveParsedText(ctx context.Context, submissionUUID, text string, log *zerolog.Logger) string {
	if p.storage == nil || p.storage.MinIO == nil {
		return ""
	}
	key, err := p.storage.MinIO.UploadParsedText(ctx, submissionUUID, text)
	if err != nil {
		tracing.RecordError(trace.SpanFromContext(ctx), err, tracing.ErrorTypeObjectKV)
		log.Warn().Err(err).Msg("归档解析文本失败")
		return ""
	}
	return key
}

func (p *ResumeProcessor) persist(ctx context.Context, record *models.ResumeAnalysis, log *zerolog.Logger) {
	if p.storage == nil {
		return
	}
	if p.storage.MySQL != nil {
		if err := p.storage.MySQL.SaveAnalysis(ctx, record); err != nil {
			log.Error().Err(err).Msg("持久化分析记录失败")
		}
	}
	if p.storage.Redis != nil {
		if err := p.storage.Redis.CacheAnalysis(ctx, record.FileMD5, record); err != nil {
			log.Warn().Err(err).Msg("缓存分析结果失败")
		}
	}
}

// publishCompleted 发布分析完成事件。有MySQL时走发件箱表由中继异步投递，
// 否则直接发布到消息队列。
func (p *ResumeProcessor) publishCompleted(ctx context.Context, record *models.ResumeAnalysis, log *zerolog.Logger) {
	if p.storage == nil {
		return
	}

	event := AnalysisCompletedEvent{
		SubmissionUUID: record.SubmissionUUID,
		FileMD5:        record.FileMD5,
		Filename:       record.Filename,
		Field:          record.Field,
		Score:          record.Score,
		ParsedTextKey:  record.ParsedTextKey,
		CompletedAt:    time.Now(),
	}

	if p.storage.MySQL != nil {
		payload, err := json.Marshal(event)
		if err != nil {
			log.Error().Err(err).Msg("序列化分析完成事件失败")
			return
		}
		msg := &models.OutboxMessage{
			AggregateID:      record.SubmissionUUID,
			EventType:        constants.AnalysisCompletedRoutingKey,
			Payload:          string(payload),
			TargetExchange:   constants.ResumeEventsExchange,
			TargetRoutingKey: constants.AnalysisCompletedRoutingKey,
		}
		if err := p.storage.MySQL.EnqueueOutbox(ctx, msg); err != nil {
			log.Warn().Err(err).Msg("写入发件箱失败")
		}
		return
	}

	if p.storage.RabbitMQ == nil {
		return
	}
	mq := p.storage.RabbitMQ
	if err := mq.EnsureExchange(constants.ResumeEventsExchange, "topic", true); err != nil {
		log.Warn().Err(err).Msg("声明事件交换机失败")
		return
	}
	if err := mq.PublishJSON(ctx, constants.ResumeEventsExchange, constants.AnalysisCompletedRoutingKey, event, true); err != nil {
		tracing.RecordError(trace.SpanFromContext(ctx), err, tracing.ErrorTypeRabbitMQ)
		log.Warn().Err(err).Msg("发布分析完成事件失败")
	}
}

// newSubmissionUUID 生成时间有序的提交标识 (UUIDv7)
func newSubmissionUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// v7 生成只在系统熵耗尽时失败，退回v4
		return uuid.Must(uuid.NewV4()).String()
	}
	return id.String()
}

// buildRecord 组装持久化记录
func buildRecord(profile *types.ResumeProfile, analysis *types.AnalysisResult, fileMD5, originalKey, parsedKey string) *models.ResumeAnalysis {
	return &models.ResumeAnalysis{
		SubmissionUUID:    profile.SubmissionUUID,
		FileMD5:           fileMD5,
		Filename:          profile.Filename,
		OriginalFileKey:   originalKey,
		ParsedTextKey:     parsedKey,
		CandidateName:     profile.Name,
		Email:             profile.Contact.Email,
		Phone:             profile.Contact.Phone,
		Skills:            mustJSON(profile.Skills),
		Education:         mustJSON(profile.Education),
		ExperienceLevel:   profile.ExperienceLevel,
		Field:             analysis.Field,
		Level:             analysis.Level,
		RecommendedSkills: mustJSON(analysis.RecommendedSkills),
		Score:             analysis.Score,
		Pages:             profile.Pages,
		WordCount:         profile.WordCount,
		ExtractionMethod:  string(profile.Method),
		AnalyzerVersion:   constants.DefaultAnalyzerVersion,
	}
}

// responseFromRecord 从持久化记录还原响应（去重命中路径）
func responseFromRecord(record *models.ResumeAnalysis, duplicate bool) *AnalysisResponse {
	profile := &types.ResumeProfile{
		SubmissionUUID:  record.SubmissionUUID,
		Filename:        record.Filename,
		Name:            record.CandidateName,
		Contact:         types.ContactInfo{Email: record.Email, Phone: record.Phone},
		Skills:          fromJSONList(record.Skills),
		Education:       fromJSONList(record.Education),
		ExperienceLevel: record.ExperienceLevel,
		Pages:           record.Pages,
		WordCount:       record.WordCount,
		Method:          types.ExtractionMethod(record.ExtractionMethod),
	}
	analysis := &types.AnalysisResult{
		Field:             record.Field,
		Level:             record.Level,
		RecommendedSkills: fromJSONList(record.RecommendedSkills),
		Score:             record.Score,
	}
	return &AnalysisResponse{
		SubmissionUUID: record.SubmissionUUID,
		Duplicate:      duplicate,
		Profile:        profile,
		Analysis:       analysis,
		Courses:        recommend.NewCourseRecommender().PersonalizedCourses(profile.Skills, analysis.Field, analysis.RecommendedSkills),
	}
}

func mustJSON(v interface{}) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}

func fromJSONList(data datatypes.JSON) []string {
	var list []string
	if len(data) > 0 {
		_ = json.Unmarshal(data, &list)
	}
	return list
}
