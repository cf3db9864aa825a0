package types

import "time"

// ExtractionMethod 表示文本提取所使用的方法
type ExtractionMethod string

const (
	// MethodLayout 布局感知提取（Tika），对多栏/复杂排版效果最好
	MethodLayout ExtractionMethod = "layout"
	// MethodStructural 结构化数字文本提取（Eino PDF Parser）
	MethodStructural ExtractionMethod = "structural"
	// MethodBasic 基础数字文本提取（ledongthuc/pdf），作为冗余备份
	MethodBasic ExtractionMethod = "basic"
	// MethodOCR 光学字符识别，仅在所有数字提取方法失败后使用
	MethodOCR ExtractionMethod = "ocr"
)

// 字段提取失败时使用的哨兵值，而不是返回错误
const (
	// NameUnknown 无法识别姓名时的默认值
	NameUnknown = "Unknown"
	// ContactNotFound 邮箱/电话未找到时的默认值
	ContactNotFound = "N/A"
	// EducationNotSpecified 未匹配到任何学历时的默认值
	EducationNotSpecified = "Not specified"
	// FieldGeneralIT 所有领域得分为0时的默认分类
	FieldGeneralIT = "General IT"
)

// 经验等级的规范名称，提取器和分类器共用一套
const (
	LevelFresher      = "Fresher"
	LevelIntermediate = "Intermediate"
	LevelExperienced  = "Experienced"
	LevelExpert       = "Expert"
)

// ExtractedText 提取结果及其来源元信息。
// 成功时 Text 非空；全部方法失败时整个流程以 ErrExtractionFailed 终止，不会产生本结构。
type ExtractedText struct {
	Text   string           `json:"text"`
	Method ExtractionMethod `json:"method"`
	Pages  int              `json:"pages"`
	Chars  int              `json:"chars"`
	Words  int              `json:"words"`
}

// ContactInfo 联系方式，各字段相互独立，一个字段的提取失败不影响其他字段
type ContactInfo struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ResumeProfile 简历结构化记录，是整条流水线的输出，供持久化和课程推荐消费。
// 缺失字段以哨兵值填充，不会出现空字符串。
type ResumeProfile struct {
	SubmissionUUID  string           `json:"submission_uuid,omitempty"`
	Filename        string           `json:"filename,omitempty"`
	Name            string           `json:"name"`
	Contact         ContactInfo      `json:"contact"`
	Skills          []string         `json:"skills"`
	Education       []string         `json:"education"`
	ExperienceLevel string           `json:"experience_level"`
	Pages           int              `json:"pages"`
	WordCount       int              `json:"word_count"`
	Method          ExtractionMethod `json:"extraction_method,omitempty"`
}

// AnalysisResult 技能分析结果，一旦计算完成即不可变
type AnalysisResult struct {
	Field             string   `json:"field"`
	Level             string   `json:"level"`
	RecommendedSkills []string `json:"recommended_skills"`
	Score             int      `json:"score"`
}

// JobMatchReport 求职匹配路径的分析产物：摘要、技能缺口、学习路线图。
// Keywords 是归一化后的关键词列表，供职位搜索和缺口分析消费；
// KeywordsDisplay 是同一列表的逗号连接展示形式，直接给前端用。
type JobMatchReport struct {
	Summary         string   `json:"summary"`
	Gaps            string   `json:"gaps"`
	Roadmap         []string `json:"roadmap"`
	Keywords        []string `json:"keywords"`
	KeywordsDisplay string   `json:"keywords_display"`
}

// Course 课程推荐条目
type Course struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// JobPosting RSS职位源返回的职位条目
type JobPosting struct {
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}
