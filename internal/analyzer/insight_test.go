package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectGapsNamesMissingDomains(t *testing.T) {
	h := NewHeuristicAnalyzer()
	// 覆盖 frontend/backend/database/cloud/devops/testing，缺 mlops 与 llm
	keywords := []string{"react", "node.js", "sql", "aws", "jenkins", "testing"}

	gaps := h.DetectGaps(keywords)
	assert.Contains(t, gaps, "mlops")
	assert.Contains(t, gaps, "llm")
	for _, covered := range []string{"frontend", "backend", "database", "cloud", "devops"} {
		assert.NotContains(t, gaps, covered)
	}
}

func TestDetectGapsGenericWhenTooManyMissing(t *testing.T) {
	h := NewHeuristicAnalyzer()

	gaps := h.DetectGaps([]string{"react"})
	// 缺口超过5个域时给出综合建议而非逐项罗列
	assert.NotContains(t, gaps, "mlops")
	assert.Contains(t, gaps, "broader")
}

func TestDetectGapsNoneMissing(t *testing.T) {
	h := NewHeuristicAnalyzer()
	keywords := []string{"react", "node.js", "sql", "aws", "mlflow", "langchain", "jenkins", "testing"}

	gaps := h.DetectGaps(keywords)
	assert.Contains(t, gaps, "No significant skill gaps")
}

func TestExtractKeywordsVocabularyAndLimit(t *testing.T) {
	h := NewHeuristicAnalyzer()
	text := "Built React frontends with TypeScript, deployed on AWS with Docker and Kubernetes."

	kws := h.ExtractKeywords(text, 5)
	require.Len(t, kws, 5)
	assert.Contains(t, kws, "react")
	assert.Contains(t, kws, "typescript")
}

func TestExtractKeywordsRoleLabels(t *testing.T) {
	h := NewHeuristicAnalyzer()
	text := "Senior engineer working daily with React, Vue, JavaScript and CSS."

	kws := h.ExtractKeywords(text, 20)
	assert.Contains(t, kws, "frontend developer")
}

func TestExtractKeywordsBackfillWithFrequentTokens(t *testing.T) {
	h := NewHeuristicAnalyzer()
	text := "leadership leadership leadership mentoring mentoring communication"

	kws := h.ExtractKeywords(text, 3)
	require.NotEmpty(t, kws)
	assert.Contains(t, kws, "leadership")
}

func TestExtractKeywordsDeterministic(t *testing.T) {
	h := NewHeuristicAnalyzer()
	text := "Python and SQL for data analysis, pandas pipelines on AWS."

	first := h.ExtractKeywords(text, 10)
	second := h.ExtractKeywords(text, 10)
	assert.Equal(t, first, second)
}

func TestSummarizePrefersSectionHeader(t *testing.T) {
	h := NewHeuristicAnalyzer()
	text := "Jane Smith\nSummary\nSeasoned engineer with a decade of experience. Shipped large systems.\nSkills\nGo, SQL"

	s := h.Summarize(text)
	assert.Contains(t, s, "Seasoned engineer")
	assert.NotContains(t, s, "Jane Smith")
}

func TestSummarizeFallsBackToLeadingSentences(t *testing.T) {
	h := NewHeuristicAnalyzer()

	s := h.Summarize("First sentence here. Second sentence there. Third one. Fourth ignored.")
	assert.Contains(t, s, "First sentence here")
	assert.NotContains(t, s, "Fourth")
}

func TestSummarizeTruncatesToBudget(t *testing.T) {
	h := NewHeuristicAnalyzer()

	s := h.Summarize(strings.Repeat("word ", 400))
	assert.LessOrEqual(t, len(s), summaryCharBudget)
}

func TestSummarizeEmptyText(t *testing.T) {
	h := NewHeuristicAnalyzer()

	assert.Equal(t, "No summary available.", h.Summarize(""))
}

func TestBuildRoadmapConditionalRules(t *testing.T) {
	h := NewHeuristicAnalyzer()

	// 只有前端技能：应建议补后端，且条目不超过上限
	roadmap := h.BuildRoadmap([]string{"react", "javascript", "css", "git"})
	require.NotEmpty(t, roadmap)
	assert.LessOrEqual(t, len(roadmap), maxRoadmapItems)
	assert.Contains(t, roadmap[0], "backend")
}

func TestBuildRoadmapGenericFallback(t *testing.T) {
	h := NewHeuristicAnalyzer()

	// 全域覆盖时没有条件规则命中，回退到通用建议
	roadmap := h.BuildRoadmap([]string{
		"react", "typescript", "node.js", "sql", "aws", "docker", "testing", "git",
	})
	assert.Len(t, roadmap, 3)
	assert.Contains(t, roadmap[0], "portfolio")
}

func TestHeuristicAnalyzeProducesFullReport(t *testing.T) {
	h := NewHeuristicAnalyzer()
	text := "Summary\nBackend developer building Go services. Experienced with PostgreSQL, Docker and AWS.\n"

	report := h.Analyze(text)
	require.NotNil(t, report)
	assert.NotEmpty(t, report.Summary)
	assert.NotEmpty(t, report.Gaps)
	assert.NotEmpty(t, report.Roadmap)
	assert.NotEmpty(t, report.Keywords)
	// 展示串与列表始终成对产出
	assert.Equal(t, strings.Join(report.Keywords, ", "), report.KeywordsDisplay)
}

func TestFormatKeywords(t *testing.T) {
	assert.Equal(t, "go, docker, sql", FormatKeywords([]string{"go", "docker", "sql"}))
	assert.Equal(t, "", FormatKeywords(nil))
}
