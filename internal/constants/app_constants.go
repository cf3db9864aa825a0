package constants

import "time"

const (
	// DefaultAnalyzerVersion 当前解析/打分流水线版本，写入持久化记录便于追溯
	DefaultAnalyzerVersion = "1.0"

	// MaxUploadSizeBytes 上传文件大小上限 (10MB)
	MaxUploadSizeBytes = 10 * 1024 * 1024

	// AnalysisCacheDuration 按文件MD5缓存分析结果的时长
	AnalysisCacheDuration = 24 * time.Hour

	// MD5RecordDuration 原始文件MD5去重记录的保留时长
	MD5RecordDuration = 7 * 24 * time.Hour

	// ResumeEventsExchange 简历事件交换机
	ResumeEventsExchange = "resume.events"
	// AnalysisCompletedRoutingKey 分析完成事件的路由键
	AnalysisCompletedRoutingKey = "analysis.completed"
	// JobMatchQueue 求职匹配工作进程消费的队列
	JobMatchQueue = "resume.jobmatch"
)
