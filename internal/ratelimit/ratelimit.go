package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// TokenBucket 令牌桶限流器，按QPM补充令牌
type TokenBucket struct {
	mu         sync.Mutex
	rate       float64 // 每秒补充的令牌数
	capacity   float64
	tokens     float64
	lastRefill time.Time

	retryWait  time.Duration
	maxRetries int
}

// NewTokenBucket 创建令牌桶。capacity<=0时默认为QPM的一半，保留突发余量。
func NewTokenBucket(qpm, capacity int) *TokenBucket {
	if capacity <= 0 {
		capacity = qpm / 2
		if capacity <= 0 {
			capacity = 1
		}
	}
	return &TokenBucket{
		rate:       float64(qpm) / 60.0,
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		lastRefill: time.Now(),
		retryWait:  time.Second,
		maxRetries: 3,
	}
}

// WithRetryPolicy 调整重试等待与最大重试次数
func (tb *TokenBucket) WithRetryPolicy(wait time.Duration, maxRetries int) *TokenBucket {
	tb.retryWait = wait
	tb.maxRetries = maxRetries
	return tb
}

// 调用方必须持有锁
func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.lastRefill = now

	tb.tokens += elapsed * tb.rate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
}

// Allow 非阻塞地尝试消耗一个令牌
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// Wait 阻塞直到取得令牌或上下文取消
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		tb.mu.Lock()
		tb.refill()
		if tb.tokens >= 1.0 {
			tb.tokens -= 1.0
			tb.mu.Unlock()
			return nil
		}
		wait := time.Duration((1.0 - tb.tokens) / tb.rate * float64(time.Second))
		tb.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// Do 在限流下执行fn，对可重试错误按指数退避重试
func (tb *TokenBucket) Do(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= tb.maxRetries; attempt++ {
		if err = tb.Wait(ctx); err != nil {
			return err
		}

		if err = fn(); err == nil {
			return nil
		}
		if !isRetryable(err) || attempt >= tb.maxRetries {
			return err
		}

		backoff := tb.retryWait * time.Duration(1<<uint(attempt))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}

var retryableMarkers = []string{
	"timeout",
	"deadline exceeded",
	"connection reset",
	"EOF",
	"connection refused",
	"429",
	"rate limit",
	"no such host",
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range retryableMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// LimitedChatModel 对语言模型调用进行限流和重试的代理
type LimitedChatModel struct {
	inner  model.ToolCallingChatModel
	bucket *TokenBucket
}

var _ model.ToolCallingChatModel = (*LimitedChatModel)(nil)

// NewLimitedChatModel 包装一个模型，将其调用速率限制在qpm以内。
// qpm<=0时使用默认值30。
func NewLimitedChatModel(inner model.ToolCallingChatModel, qpm int) *LimitedChatModel {
	if qpm <= 0 {
		qpm = 30
	}
	return &LimitedChatModel{
		inner:  inner,
		bucket: NewTokenBucket(qpm, 0),
	}
}

func (m *LimitedChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	var resp *schema.Message
	err := m.bucket.Do(ctx, func() error {
		var genErr error
		resp, genErr = m.inner.Generate(ctx, messages, options...)
		return genErr
	})
	return resp, err
}

func (m *LimitedChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	var stream *schema.StreamReader[*schema.Message]
	err := m.bucket.Do(ctx, func() error {
		var streamErr error
		stream, streamErr = m.inner.Stream(ctx, messages, options...)
		return streamErr
	})
	return stream, err
}

func (m *LimitedChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	inner, err := m.inner.WithTools(tools)
	if err != nil {
		return nil, err
	}
	return &LimitedChatModel{inner: inner, bucket: m.bucket}, nil
}
