package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"smart-resume-go/internal/config"
	"smart-resume-go/internal/constants"
	"smart-resume-go/internal/logger"
	"smart-resume-go/internal/storage/models"
)

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = errors.New("缓存未命中")

// Redis 键值存储适配层：文件MD5去重与分析结果缓存
type Redis struct {
	Client *redis.Client
	cfg    *config.RedisConfig
}

// NewRedisAdapter 创建Redis客户端并验证连通性
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("Redis配置不能为空")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("Redis地址不能为空")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	})

	// OpenTelemetry钩子，记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("注册Redis追踪钩子失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("连接Redis失败 (%s): %w", cfg.Address, err)
	}

	return &Redis{Client: client, cfg: cfg}, nil
}

// Close 关闭连接
func (r *Redis) Close() error {
	return r.Client.Close()
}

// Ping 连通性检查
func (r *Redis) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

// checkAndSetMD5Script 原子化的"查重并占位"：已存在时返回旧UUID，
// 否则写入新UUID并设置过期。避免并发上传同一文件时的竞态。
var checkAndSetMD5Script = redis.NewScript(`
local existing = redis.call('GET', KEYS[1])
if existing then
    return existing
end
redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[2])
return ''
`)

// CheckAndSetMD5 检查文件MD5是否已经处理过。
// 返回 (已存在, 既有提交UUID)；首次出现时原子地登记传入的UUID。
func (r *Redis) CheckAndSetMD5(ctx context.Context, md5Hex, submissionUUID string) (bool, string, error) {
	key := fmt.Sprintf(constants.KeyMD5ToSubmissionUUID, md5Hex)
	ttlSeconds := int(constants.MD5RecordDuration / time.Second)

	result, err := checkAndSetMD5Script.Run(ctx, r.Client, []string{key}, submissionUUID, ttlSeconds).Text()
	if err != nil {
		return false, "", fmt.Errorf("MD5查重脚本执行失败: %w", err)
	}
	if result != "" {
		return true, result, nil
	}

	// 同时登记到集合，供按量统计使用
	if err := r.Client.SAdd(ctx, constants.KeyFileMD5Set, md5Hex).Err(); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("登记MD5集合失败")
	}
	return false, "", nil
}

// RemoveMD5 移除MD5登记，分析失败时回滚去重状态用
func (r *Redis) RemoveMD5(ctx context.Context, md5Hex string) error {
	key := fmt.Sprintf(constants.KeyMD5ToSubmissionUUID, md5Hex)
	if err := r.Client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("删除MD5映射失败: %w", err)
	}
	return r.Client.SRem(ctx, constants.KeyFileMD5Set, md5Hex).Err()
}

// CacheAnalysis 按文件MD5缓存分析记录
func (r *Redis) CacheAnalysis(ctx context.Context, fileMD5 string, record *models.ResumeAnalysis) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("序列化分析记录失败: %w", err)
	}
	key := fmt.Sprintf(constants.KeyAnalysisByMD5, fileMD5)
	return r.Client.Set(ctx, key, data, constants.AnalysisCacheDuration).Err()
}

// GetCachedAnalysis 读取缓存的分析记录，未命中返回 ErrCacheMiss
func (r *Redis) GetCachedAnalysis(ctx context.Context, fileMD5 string) (*models.ResumeAnalysis, error) {
	key := fmt.Sprintf(constants.KeyAnalysisByMD5, fileMD5)
	data, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("读取分析缓存失败: %w", err)
	}

	var record models.ResumeAnalysis
	if err := json.Unmarshal(data, &record); err != nil {
		// 缓存内容损坏时按未命中处理，删除脏数据
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("分析缓存内容损坏，已丢弃")
		_ = r.Client.Del(ctx, key).Err()
		return nil, ErrCacheMiss
	}
	return &record, nil
}

// RemoveCachedAnalysis 删除缓存的分析记录，管理端删除提交时用
func (r *Redis) RemoveCachedAnalysis(ctx context.Context, fileMD5 string) error {
	key := fmt.Sprintf(constants.KeyAnalysisByMD5, fileMD5)
	return r.Client.Del(ctx, key).Err()
}

// CountProcessedFiles 已处理过的去重文件数
func (r *Redis) CountProcessedFiles(ctx context.Context) (int64, error) {
	return r.Client.SCard(ctx, constants.KeyFileMD5Set).Result()
}
