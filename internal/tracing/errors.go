package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorType 错误分类，便于在追踪后端按类型过滤
type ErrorType string

const (
	ErrorTypeDB         ErrorType = "db"
	ErrorTypeRedis      ErrorType = "redis"
	ErrorTypeRabbitMQ   ErrorType = "rabbitmq"
	ErrorTypeObjectKV   ErrorType = "object_storage"
	ErrorTypeExtraction ErrorType = "extraction"
	ErrorTypeLLM        ErrorType = "llm"
	ErrorTypeExternal   ErrorType = "external_system"
)

// RecordError 在span上记录错误并标记状态，附带统一的分类属性
func RecordError(span trace.Span, err error, errorType ErrorType) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetAttributes(
		attribute.String("error.type", string(errorType)),
		attribute.String("error.message", err.Error()),
	)
	span.SetStatus(codes.Error, err.Error())
}
