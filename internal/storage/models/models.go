package models

import (
	"time"

	"gorm.io/datatypes"
)

// ResumeAnalysis 一次简历分析的完整落库记录。SubmissionUUID 为主键，
// 同一文件（按MD5去重）只保留一条记录。
type ResumeAnalysis struct {
	SubmissionUUID string `gorm:"type:varchar(36);primaryKey"`
	FileMD5        string `gorm:"type:varchar(32);uniqueIndex;not null"`
	Filename       string `gorm:"type:varchar(255)"`

	// 对象存储路径
	OriginalFileKey string `gorm:"type:varchar(512)"`
	ParsedTextKey   string `gorm:"type:varchar(512)"`

	// 字段提取结果
	CandidateName   string         `gorm:"type:varchar(100)"`
	Email           string         `gorm:"type:varchar(255)"`
	Phone           string         `gorm:"type:varchar(50)"`
	Skills          datatypes.JSON `gorm:"type:json"`
	Education       datatypes.JSON `gorm:"type:json"`
	ExperienceLevel string         `gorm:"type:varchar(20)"`

	// 分类打分结果
	Field             string         `gorm:"type:varchar(50);index"`
	Level             string         `gorm:"type:varchar(20)"`
	RecommendedSkills datatypes.JSON `gorm:"type:json"`
	Score             int            `gorm:"index"`

	// 提取元信息
	Pages            int
	WordCount        int
	ExtractionMethod string `gorm:"type:varchar(20)"`
	AnalyzerVersion  string `gorm:"type:varchar(10)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定表名
func (ResumeAnalysis) TableName() string {
	return "resume_analyses"
}

// JobMatchResult 异步岗位匹配流水线产出的报告，经消息队列由 worker 写入
type JobMatchResult struct {
	ID             uint64         `gorm:"primaryKey;autoIncrement"`
	SubmissionUUID string         `gorm:"type:varchar(36);index;not null"`
	Summary        string         `gorm:"type:text"`
	Gaps           string         `gorm:"type:text"`
	Roadmap        datatypes.JSON `gorm:"type:json"`
	Keywords       datatypes.JSON `gorm:"type:json"`
	CreatedAt      time.Time
}

// TableName 指定表名
func (JobMatchResult) TableName() string {
	return "job_match_results"
}
