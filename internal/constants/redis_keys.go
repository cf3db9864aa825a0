package constants

// Redis Key 前缀和格式常量
// 统一命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// FileModulePrefix 文件模块
	FileModulePrefix = "file"
	// AnalysisModulePrefix 分析模块
	AnalysisModulePrefix = "analysis"

	// KeyFileMD5Set 原始文件MD5集合，用于快速去重 (SET)
	// 格式: app:file:dedup_set
	KeyFileMD5Set = AppPrefix + ":" + FileModulePrefix + ":dedup_set"

	// KeyAnalysisByMD5 按文件MD5缓存的分析结果 (STRING, JSON)
	// 格式: app:analysis:result:{md5}
	KeyAnalysisByMD5 = AppPrefix + ":" + AnalysisModulePrefix + ":result:%s"

	// KeyMD5ToSubmissionUUID MD5到SubmissionUUID的映射 (STRING)
	// 格式: app:file:md5_to_uuid:{md5}
	KeyMD5ToSubmissionUUID = AppPrefix + ":" + FileModulePrefix + ":md5_to_uuid:%s"
)
