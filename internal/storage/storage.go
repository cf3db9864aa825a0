package storage

import (
	"context"
	"fmt"
	"strings"

	"smart-resume-go/internal/config"
	"smart-resume-go/internal/logger"
)

// Storage 存储管理器，聚合所有存储相关依赖。
// MySQL 是分析结果的权威存储；Redis、MinIO、RabbitMQ 为可选组件，
// 未配置或初始化失败时对应字段为 nil，调用方按存在与否降级。
type Storage struct {
	MySQL    *MySQL
	Redis    *Redis
	MinIO    *MinIO
	RabbitMQ *RabbitMQ
}

// NewStorage 按配置初始化各存储组件。可选组件失败只记警告，
// 全部组件都失败时才返回错误。
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	s := &Storage{}
	var initErrors []string

	if cfg.MySQL.Host != "" {
		mysql, err := NewMySQL(&cfg.MySQL)
		if err != nil {
			logger.Warn().Err(err).Msg("初始化MySQL失败")
			initErrors = append(initErrors, fmt.Sprintf("MySQL: %v", err))
		} else {
			s.MySQL = mysql
			logger.Info().Str("host", cfg.MySQL.Host).Msg("MySQL初始化成功")
		}
	}

	if cfg.Redis.Address != "" {
		redis, err := NewRedisAdapter(&cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("初始化Redis失败")
			initErrors = append(initErrors, fmt.Sprintf("Redis: %v", err))
		} else {
			s.Redis = redis
			logger.Info().Str("address", cfg.Redis.Address).Msg("Redis初始化成功")
		}
	}

	if cfg.MinIO.Endpoint != "" {
		minio, err := NewMinIO(&cfg.MinIO)
		if err != nil {
			logger.Warn().Err(err).Msg("初始化MinIO失败")
			initErrors = append(initErrors, fmt.Sprintf("MinIO: %v", err))
		} else {
			s.MinIO = minio
			logger.Info().Str("endpoint", cfg.MinIO.Endpoint).Msg("MinIO初始化成功")
		}
	}

	if cfg.RabbitMQ.URL != "" {
		mq, err := NewRabbitMQ(&cfg.RabbitMQ)
		if err != nil {
			logger.Warn().Err(err).Msg("初始化RabbitMQ失败")
			initErrors = append(initErrors, fmt.Sprintf("RabbitMQ: %v", err))
		} else {
			s.RabbitMQ = mq
			logger.Info().Msg("RabbitMQ初始化成功")
		}
	}

	if s.MySQL == nil && s.Redis == nil && s.MinIO == nil && s.RabbitMQ == nil {
		if len(initErrors) > 0 {
			return nil, fmt.Errorf("所有存储组件初始化失败: %s", strings.Join(initErrors, "; "))
		}
		logger.Warn().Msg("未配置任何存储组件，分析结果将不会被持久化")
	}
	return s, nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭RabbitMQ连接失败")
		}
	}
	if s.MySQL != nil {
		if err := s.MySQL.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭MySQL连接失败")
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭Redis连接失败")
		}
	}
}
