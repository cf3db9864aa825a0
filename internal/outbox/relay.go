package outbox

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smart-resume-go/internal/logger"
	"smart-resume-go/internal/storage"
	"smart-resume-go/internal/storage/models"
	"smart-resume-go/internal/tracing"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultBatchSize    = 10
	maxRetryCount       = 5
)

// MessageRelay 轮询发件箱表并将待投递的事件发布到消息队列。
// 多实例部署时依赖 FOR UPDATE SKIP LOCKED 避免重复投递。
type MessageRelay struct {
	db           *gorm.DB
	publisher    *storage.RabbitMQ
	pollInterval time.Duration
	batchSize    int
	done         chan struct{}
	tracer       trace.Tracer
}

// Option MessageRelay 的可选配置
type Option func(*MessageRelay)

// WithPollInterval 覆盖默认轮询间隔
func WithPollInterval(d time.Duration) Option {
	return func(r *MessageRelay) {
		if d > 0 {
			r.pollInterval = d
		}
	}
}

// WithBatchSize 覆盖每次轮询处理的批量大小
func WithBatchSize(n int) Option {
	return func(r *MessageRelay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// NewMessageRelay 创建发件箱中继
func NewMessageRelay(db *gorm.DB, publisher *storage.RabbitMQ, opts ...Option) *MessageRelay {
	r := &MessageRelay{
		db:           db,
		publisher:    publisher,
		pollInterval: defaultPollInterval,
		batchSize:    defaultBatchSize,
		done:         make(chan struct{}),
		tracer:       otel.Tracer("outbox-relay"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start 启动后台轮询
func (r *MessageRelay) Start() {
	logger.Info().
		Dur("poll_interval", r.pollInterval).
		Int("batch_size", r.batchSize).
		Msg("发件箱中继已启动")

	ticker := time.NewTicker(r.pollInterval)
	go func() {
		for {
			select {
			case <-r.done:
				ticker.Stop()
				logger.Info().Msg("发件箱中继已停止")
				return
			case <-ticker.C:
				if err := r.processPending(context.Background()); err != nil {
					logger.Error().Err(err).Msg("处理发件箱消息失败")
				}
			}
		}
	}()
}

// Stop 停止轮询
func (r *MessageRelay) Stop() {
	close(r.done)
}

// processPending 取出一批PENDING消息并投递。
// 整批在一个事务中处理，状态更新失败则回滚，消息下轮重新拾取。
func (r *MessageRelay) processPending(ctx context.Context) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()

	var messages []models.OutboxMessage
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ?", "PENDING").
		Order("created_at asc").
		Limit(r.batchSize).
		Find(&messages).Error
	if err != nil {
		return err
	}

	// 空轮询不产生Span
	if len(messages) == 0 {
		return tx.Commit().Error
	}

	ctx, span := r.tracer.Start(ctx, "outbox.ProcessBatch",
		trace.WithAttributes(
			attribute.Int("messaging.batch.message_count", len(messages)),
		),
	)
	defer span.End()

	for i := range messages {
		msg := &messages[i]
		err := r.publisher.PublishJSON(ctx, msg.TargetExchange, msg.TargetRoutingKey,
			json.RawMessage(msg.Payload), true)
		if err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeRabbitMQ)
			logger.Warn().
				Err(err).
				Uint64("message_id", msg.ID).
				Str("aggregate_id", msg.AggregateID).
				Int("retry_count", msg.RetryCount+1).
				Msg("投递发件箱消息失败")
			msg.RetryCount++
			msg.ErrorMessage = err.Error()
			if msg.RetryCount >= maxRetryCount {
				msg.Status = "FAILED"
			}
		} else {
			now := time.Now()
			msg.Status = "SENT"
			msg.ProcessedAt = &now
			msg.ErrorMessage = ""
		}

		if err := tx.Save(msg).Error; err != nil {
			return err
		}
	}

	return tx.Commit().Error
}
