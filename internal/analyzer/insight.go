package analyzer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"smart-resume-go/internal/extractor"
	"smart-resume-go/internal/types"
)

// skillBucket 技能域分桶，用于缺口检测。顺序即缺口报告的优先级。
type skillBucket struct {
	Name     string
	Keywords []string
}

var gapBuckets = []skillBucket{
	{"frontend", []string{"react", "angular", "vue", "html", "css", "javascript", "typescript", "frontend", "next.js"}},
	{"backend", []string{"node.js", "nodejs", "express", "django", "flask", "spring", "golang", "java", "php", "backend", "api", "rest"}},
	{"database", []string{"sql", "mysql", "postgresql", "mongodb", "redis", "database", "elasticsearch"}},
	{"cloud", []string{"aws", "azure", "gcp", "cloud", "docker", "kubernetes", "serverless"}},
	{"mlops", []string{"mlops", "mlflow", "kubeflow", "sagemaker", "model deployment", "feature store"}},
	{"llm", []string{"llm", "gpt", "langchain", "rag", "prompt engineering", "openai", "embeddings"}},
	{"devops", []string{"devops", "ci/cd", "jenkins", "terraform", "ansible", "github actions"}},
	{"testing", []string{"testing", "jest", "pytest", "selenium", "cypress", "unit test", "qa"}},
}

// 关键词抽取用的技术词表，独立于技能词典且覆盖面更广
var techVocabulary = []string{
	"python", "javascript", "typescript", "java", "golang", "c++", "c#", "rust",
	"react", "angular", "vue", "next.js", "node.js", "express", "django", "flask",
	"spring", "html", "css", "sql", "mysql", "postgresql", "mongodb", "redis",
	"elasticsearch", "docker", "kubernetes", "aws", "azure", "gcp", "terraform",
	"jenkins", "ci/cd", "git", "linux", "microservices", "graphql", "rest",
	"machine learning", "deep learning", "tensorflow", "pytorch", "pandas",
	"mlops", "llm", "langchain", "rag", "agile", "scrum", "testing", "selenium",
	"jest", "pytest", "figma", "flutter", "kotlin", "swift", "android", "ios",
}

// 角色标签推导规则：关键词簇共现时产出复合角色
var roleLabelRules = []struct {
	Label    string
	Required []string // 至少命中两个
}{
	{"frontend developer", []string{"react", "angular", "vue", "javascript", "typescript", "css"}},
	{"backend developer", []string{"node.js", "django", "spring", "golang", "api", "sql"}},
	{"data engineer", []string{"python", "sql", "pandas", "machine learning", "tensorflow"}},
	{"devops engineer", []string{"docker", "kubernetes", "terraform", "jenkins", "ci/cd"}},
}

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {},
	"from": {}, "have": {}, "has": {}, "was": {}, "were": {}, "are": {},
	"not": {}, "but": {}, "all": {}, "can": {}, "will": {}, "your": {},
	"our": {}, "their": {}, "been": {}, "into": {}, "over": {}, "such": {},
}

var (
	sectionHeaderRe = regexp.MustCompile(`(?im)^\s*(summary|objective|profile|about me|experience|skills)\s*:?\s*$`)
	sentenceSplitRe = regexp.MustCompile(`[.!?\n]+`)
	wordTokenRe     = regexp.MustCompile(`[a-zA-Z][a-zA-Z+#.]{2,}`)
)

const (
	summaryCharBudget = 500
	summarySentences  = 3
	defaultKeywordCap = 15
	maxItemizedGaps   = 3
	genericGapCutoff  = 5
	maxRoadmapItems   = 5
)

// HeuristicAnalyzer 基于规则的岗位匹配分析器，LLM 不可用时的兜底路径。
// 无内部可变状态，可并发使用。
type HeuristicAnalyzer struct{}

// NewHeuristicAnalyzer 创建启发式分析器
func NewHeuristicAnalyzer() *HeuristicAnalyzer {
	return &HeuristicAnalyzer{}
}

// Analyze 产出摘要、技能缺口与学习路线三元组，永不返回错误
func (h *HeuristicAnalyzer) Analyze(text string) *types.JobMatchReport {
	keywords := h.ExtractKeywords(text, defaultKeywordCap)
	return &types.JobMatchReport{
		Summary:         h.Summarize(text),
		Gaps:            h.DetectGaps(keywords),
		Roadmap:         h.BuildRoadmap(keywords),
		Keywords:        keywords,
		KeywordsDisplay: FormatKeywords(keywords),
	}
}

// FormatKeywords 关键词列表的展示形式，逗号连接
func FormatKeywords(keywords []string) string {
	return strings.Join(keywords, ", ")
}

// Summarize 摘取简历开头的概括性内容。优先取可识别小节标题之后的
// 句子窗口，否则退化为全文前几句，最终截断到固定字符预算。
func (h *HeuristicAnalyzer) Summarize(text string) string {
	body := text
	if loc := sectionHeaderRe.FindStringIndex(text); loc != nil {
		body = text[loc[1]:]
	}

	sentences := sentenceSplitRe.Split(body, -1)
	picked := make([]string, 0, summarySentences)
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		picked = append(picked, s)
		if len(picked) >= summarySentences {
			break
		}
	}

	summary := strings.Join(picked, ". ")
	if summary == "" {
		return "No summary available."
	}
	if len(summary) > summaryCharBudget {
		summary = summary[:summaryCharBudget]
	}
	return summary
}

// ExtractKeywords 抽取至多 limit 个规范化关键词。
// 先按技术词表整词匹配，再推导复合角色标签，数量不足时
// 用文本中最高频的非停用词补齐。结果顺序确定。
func (h *HeuristicAnalyzer) ExtractKeywords(text string, limit int) []string {
	if limit <= 0 {
		limit = defaultKeywordCap
	}
	lower := strings.ToLower(text)

	seen := make(map[string]struct{})
	keywords := make([]string, 0, limit)
	add := func(kw string) bool {
		if _, dup := seen[kw]; dup {
			return len(keywords) < limit
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
		return len(keywords) < limit
	}

	for _, term := range techVocabulary {
		if extractor.ContainsWholeWord(lower, term) || strings.Contains(lower, term) {
			if !add(term) {
				return keywords
			}
		}
	}

	for _, rule := range roleLabelRules {
		hits := 0
		for _, req := range rule.Required {
			if _, ok := seen[req]; ok {
				hits++
			}
		}
		if hits >= 2 {
			if !add(rule.Label) {
				return keywords
			}
		}
	}

	if len(keywords) < limit {
		for _, tok := range topFrequentTokens(lower, limit-len(keywords), seen) {
			if !add(tok) {
				break
			}
		}
	}
	return keywords
}

// topFrequentTokens 返回文本中出现频率最高的非停用词，频率相同按字典序
func topFrequentTokens(lower string, n int, exclude map[string]struct{}) []string {
	if n <= 0 {
		return nil
	}
	freq := make(map[string]int)
	for _, tok := range wordTokenRe.FindAllString(lower, -1) {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if _, dup := exclude[tok]; dup {
			continue
		}
		freq[tok]++
	}

	tokens := make([]string, 0, len(freq))
	for tok := range freq {
		tokens = append(tokens, tok)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if freq[tokens[i]] != freq[tokens[j]] {
			return freq[tokens[i]] > freq[tokens[j]]
		}
		return tokens[i] < tokens[j]
	})

	if len(tokens) > n {
		tokens = tokens[:n]
	}
	return tokens
}

// DetectGaps 对照技能域分桶找出空缺领域。空缺超过阈值时给出
// 综合性建议而非逐项罗列，否则点名前几个空缺域。
func (h *HeuristicAnalyzer) DetectGaps(keywords []string) string {
	have := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		have[strings.ToLower(kw)] = struct{}{}
	}

	var missing []string
	for _, bucket := range gapBuckets {
		covered := false
		for _, kw := range bucket.Keywords {
			if _, ok := have[kw]; ok {
				covered = true
				break
			}
		}
		if !covered {
			missing = append(missing, bucket.Name)
		}
	}

	if len(missing) == 0 {
		return "No significant skill gaps detected across core technical domains."
	}
	if len(missing) > genericGapCutoff {
		return "The profile would benefit from broader technical exposure across modern development domains."
	}
	if len(missing) > maxItemizedGaps {
		missing = missing[:maxItemizedGaps]
	}
	return fmt.Sprintf("Consider strengthening these areas: %s.", strings.Join(missing, ", "))
}

// BuildRoadmap 由领域覆盖布尔位驱动的条件规则生成学习路线，
// 至多给出固定条数；无规则命中时回退到通用建议。
func (h *HeuristicAnalyzer) BuildRoadmap(keywords []string) []string {
	have := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		have[strings.ToLower(kw)] = true
	}
	domain := func(names ...string) bool {
		for _, n := range names {
			if have[n] {
				return true
			}
		}
		return false
	}

	hasFrontend := domain("react", "angular", "vue", "html", "css", "javascript", "frontend developer")
	hasBackend := domain("node.js", "django", "spring", "golang", "api", "backend developer")
	hasDatabase := domain("sql", "mysql", "postgresql", "mongodb", "redis")
	hasCloud := domain("aws", "azure", "gcp", "docker", "kubernetes")
	hasTesting := domain("testing", "jest", "pytest", "selenium")
	hasGit := domain("git")
	hasTypeScript := domain("typescript")

	var roadmap []string
	addStep := func(cond bool, step string) {
		if cond && len(roadmap) < maxRoadmapItems {
			roadmap = append(roadmap, step)
		}
	}

	addStep(hasFrontend && !hasBackend, "Learn a backend framework (Node.js/Express or Go) to become full-stack.")
	addStep(hasBackend && !hasFrontend, "Pick up a modern frontend framework such as React to round out your stack.")
	addStep((hasFrontend || hasBackend) && !hasDatabase, "Add relational database skills: SQL fundamentals plus PostgreSQL.")
	addStep(!hasCloud, "Get hands-on with Docker and one cloud provider (AWS free tier is a good start).")
	addStep(!hasTesting, "Adopt automated testing: unit tests first, then an end-to-end tool.")
	addStep(!hasGit, "Learn Git workflows: branching, pull requests and code review.")
	addStep(hasFrontend && !hasTypeScript, "Migrate a project to TypeScript to strengthen frontend maintainability.")

	if len(roadmap) == 0 {
		roadmap = []string{
			"Build 2-3 portfolio projects that demonstrate end-to-end delivery.",
			"Contribute to an open source project in your strongest stack.",
			"Practice system design and document your architectural decisions.",
		}
	}
	return roadmap
}
