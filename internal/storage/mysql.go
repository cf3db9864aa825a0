package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"smart-resume-go/internal/config"
	"smart-resume-go/internal/storage/models"
	"smart-resume-go/internal/tracing"
)

var mysqlTracer = otel.Tracer("smart-resume-go/storage/mysql")

type gormSpanKey struct{}

// GormTracingPlugin GORM插件，为数据库操作生成OpenTelemetry追踪点
type GormTracingPlugin struct {
	tracer trace.Tracer
	dbName string
}

// NewGormTracingPlugin 创建GORM追踪插件
func NewGormTracingPlugin(dbName string) *GormTracingPlugin {
	return &GormTracingPlugin{tracer: mysqlTracer, dbName: dbName}
}

// Name 返回插件名称
func (p *GormTracingPlugin) Name() string {
	return "GormOpenTelemetryPlugin"
}

// Initialize 为CRUD操作注册前后回调
func (p *GormTracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	type hook struct {
		op       string
		register func() error
	}
	hooks := []hook{
		{"CREATE", func() error {
			if err := cb.Create().Before("gorm:create").Register("otel:before_create", p.before("CREATE")); err != nil {
				return err
			}
			return cb.Create().After("gorm:create").Register("otel:after_create", p.after())
		}},
		{"SELECT", func() error {
			if err := cb.Query().Before("gorm:query").Register("otel:before_query", p.before("SELECT")); err != nil {
				return err
			}
			return cb.Query().After("gorm:query").Register("otel:after_query", p.after())
		}},
		{"UPDATE", func() error {
			if err := cb.Update().Before("gorm:update").Register("otel:before_update", p.before("UPDATE")); err != nil {
				return err
			}
			return cb.Update().After("gorm:update").Register("otel:after_update", p.after())
		}},
		{"DELETE", func() error {
			if err := cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.before("DELETE")); err != nil {
				return err
			}
			return cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after())
		}},
	}
	for _, h := range hooks {
		if err := h.register(); err != nil {
			return fmt.Errorf("注册 %s 追踪回调失败: %w", h.op, err)
		}
	}
	return nil
}

func (p *GormTracingPlugin) before(operation string) func(db *gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		ctx, span := p.tracer.Start(ctx, fmt.Sprintf("%s %s", operation, table),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemMySQL,
				attribute.String("db.name", p.dbName),
				attribute.String("db.operation", operation),
				attribute.String("db.sql.table", table),
			),
		)
		db.Statement.Context = context.WithValue(ctx, gormSpanKey{}, span)
	}
}

func (p *GormTracingPlugin) after() func(db *gorm.DB) {
	return func(db *gorm.DB) {
		span, ok := db.Statement.Context.Value(gormSpanKey{}).(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		if sql := db.Statement.SQL.String(); sql != "" {
			span.SetAttributes(attribute.String("db.statement", tracing.SafeSQL(sql)))
		}

		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			tracing.RecordError(span, db.Error, tracing.ErrorTypeDB)
			return
		}
		span.SetAttributes(attribute.Int64("db.rows_affected", db.RowsAffected))
	}
}

// MySQL 关系数据库访问层
type MySQL struct {
	db  *gorm.DB
	cfg *config.MySQLConfig
}

// FieldCount 按领域聚合的分析记录数
type FieldCount struct {
	Field string `json:"field"`
	Count int64  `json:"count"`
}

// AnalysisStats 管理端点使用的汇总统计
type AnalysisStats struct {
	TotalAnalyses int64        `json:"total_analyses"`
	AverageScore  float64      `json:"average_score"`
	ByField       []FieldCount `json:"by_field"`
}

// NewMySQL 创建MySQL客户端并自动迁移表结构
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}

	var logLevel gormlogger.LogLevel
	switch cfg.LogLevel {
	case "silent":
		logLevel = gormlogger.Silent
	case "error":
		logLevel = gormlogger.Error
	case "info":
		logLevel = gormlogger.Info
	default:
		logLevel = gormlogger.Warn
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(logLevel),
		PrepareStmt:                              true,
	})
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)

	if err := db.Use(NewGormTracingPlugin(cfg.Database)); err != nil {
		return nil, fmt.Errorf("注册追踪插件失败: %w", err)
	}

	if err := db.AutoMigrate(&models.ResumeAnalysis{}, &models.JobMatchResult{}, &models.OutboxMessage{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("自动迁移数据库结构失败: %w", err)
	}

	return &MySQL{db: db, cfg: cfg}, nil
}

// DB 返回GORM实例，供需要组合查询的调用方使用
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭数据库连接
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveAnalysis 写入分析记录。同一文件重新上传时按MD5冲突整行更新。
func (m *MySQL) SaveAnalysis(ctx context.Context, record *models.ResumeAnalysis) error {
	return m.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "file_md5"}},
			UpdateAll: true,
		}).
		Create(record).Error
}

// GetAnalysisByUUID 按提交UUID取分析记录，不存在时返回 gorm.ErrRecordNotFound
func (m *MySQL) GetAnalysisByUUID(ctx context.Context, submissionUUID string) (*models.ResumeAnalysis, error) {
	var record models.ResumeAnalysis
	err := m.db.WithContext(ctx).
		Where("submission_uuid = ?", submissionUUID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetAnalysisByMD5 按文件MD5取分析记录
func (m *MySQL) GetAnalysisByMD5(ctx context.Context, fileMD5 string) (*models.ResumeAnalysis, error) {
	var record models.ResumeAnalysis
	err := m.db.WithContext(ctx).
		Where("file_md5 = ?", fileMD5).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListAnalyses 按创建时间倒序分页列出分析记录，同时返回总数
func (m *MySQL) ListAnalyses(ctx context.Context, limit, offset int) ([]models.ResumeAnalysis, int64, error) {
	var total int64
	if err := m.db.WithContext(ctx).
		Model(&models.ResumeAnalysis{}).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计分析记录失败: %w", err)
	}

	var records []models.ResumeAnalysis
	err := m.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("查询分析记录列表失败: %w", err)
	}
	return records, total, nil
}

// DeleteAnalysis 删除分析记录及其关联的岗位匹配报告
func (m *MySQL) DeleteAnalysis(ctx context.Context, submissionUUID string) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_uuid = ?", submissionUUID).
			Delete(&models.JobMatchResult{}).Error; err != nil {
			return err
		}
		return tx.Where("submission_uuid = ?", submissionUUID).
			Delete(&models.ResumeAnalysis{}).Error
	})
}

// EnqueueOutbox 写入一条待投递的发件箱记录
func (m *MySQL) EnqueueOutbox(ctx context.Context, msg *models.OutboxMessage) error {
	return m.db.WithContext(ctx).Create(msg).Error
}

// SaveJobMatchResult 写入岗位匹配报告
func (m *MySQL) SaveJobMatchResult(ctx context.Context, result *models.JobMatchResult) error {
	return m.db.WithContext(ctx).Create(result).Error
}

// GetStats 汇总统计：总量、平均分、按领域分布
func (m *MySQL) GetStats(ctx context.Context) (*AnalysisStats, error) {
	stats := &AnalysisStats{}

	if err := m.db.WithContext(ctx).
		Model(&models.ResumeAnalysis{}).
		Count(&stats.TotalAnalyses).Error; err != nil {
		return nil, fmt.Errorf("统计分析总量失败: %w", err)
	}
	if stats.TotalAnalyses == 0 {
		return stats, nil
	}

	if err := m.db.WithContext(ctx).
		Model(&models.ResumeAnalysis{}).
		Select("AVG(score)").
		Scan(&stats.AverageScore).Error; err != nil {
		return nil, fmt.Errorf("计算平均分失败: %w", err)
	}

	if err := m.db.WithContext(ctx).
		Model(&models.ResumeAnalysis{}).
		Select("field, COUNT(*) AS count").
		Group("field").
		Order("count DESC").
		Scan(&stats.ByField).Error; err != nil {
		return nil, fmt.Errorf("按领域聚合失败: %w", err)
	}
	return stats, nil
}
