package analyzer

import (
	"strings"

	"smart-resume-go/internal/extractor"
	"smart-resume-go/internal/types"
)

// fieldDef 职业领域定义：领域名、识别关键词、该领域的推荐技能。
// 切片顺序承载平局裁决策略：多个领域得分相同时取最先定义者。
type fieldDef struct {
	Name        string
	Keywords    []string
	Recommended []string
}

// professionalFields 领域关键词表，进程级只读
var professionalFields = []fieldDef{
	{
		Name:        "Web Development",
		Keywords:    []string{"html", "css", "javascript", "typescript", "react", "angular", "vue", "next.js", "node.js", "express", "php", "laravel", "django", "flask", "rest api", "graphql", "webpack", "redux", "scss"},
		Recommended: []string{"TypeScript", "Next.js", "GraphQL", "Testing", "Docker"},
	},
	{
		Name:        "Data Science",
		Keywords:    []string{"python", "machine learning", "deep learning", "tensorflow", "pytorch", "keras", "pandas", "numpy", "scikit-learn", "data analysis", "data science", "tableau", "power bi", "sql"},
		Recommended: []string{"MLOps", "Apache Spark", "Deep Learning", "Cloud ML Services", "A/B Testing"},
	},
	{
		Name:        "Mobile Development",
		Keywords:    []string{"android", "ios", "swift", "kotlin", "flutter", "react native"},
		Recommended: []string{"Kotlin Multiplatform", "SwiftUI", "CI/CD", "App Performance Profiling", "Testing"},
	},
	{
		Name:        "DevOps & Cloud",
		Keywords:    []string{"docker", "kubernetes", "aws", "azure", "gcp", "jenkins", "ci/cd", "devops", "linux", "microservices"},
		Recommended: []string{"Terraform", "Prometheus", "Service Mesh", "GitOps", "Security Hardening"},
	},
	{
		Name:        "Database Engineering",
		Keywords:    []string{"sql", "mysql", "postgresql", "mongodb", "redis", "elasticsearch", "database design"},
		Recommended: []string{"Query Optimization", "Replication", "Backup Strategies", "NoSQL Modeling", "Data Warehousing"},
	},
	{
		Name:        "UI/UX Design",
		Keywords:    []string{"figma", "adobe xd", "sketch", "css", "html"},
		Recommended: []string{"Design Systems", "User Research", "Prototyping", "Accessibility", "Motion Design"},
	},
	{
		Name:        "QA & Testing",
		Keywords:    []string{"testing", "selenium", "jest", "pytest", "test automation"},
		Recommended: []string{"Playwright", "Performance Testing", "API Testing", "CI/CD", "Security Testing"},
	},
	{
		Name:        "Project Management",
		Keywords:    []string{"agile", "scrum", "kanban", "jira", "project management", "communication"},
		Recommended: []string{"Stakeholder Management", "Risk Management", "OKRs", "Data-driven Reporting", "Technical Literacy"},
	},
}

// genericRecommendations 无技能命中时的兜底推荐
var genericRecommendations = []string{
	"Programming Fundamentals", "Git", "SQL", "Problem Solving", "Communication",
}

// Classifier 简历分类打分器。表驱动、无内部状态，可并发使用。
type Classifier struct {
	fields []fieldDef
}

// NewClassifier 创建分类器
func NewClassifier() *Classifier {
	return &Classifier{fields: professionalFields}
}

// Classify 综合技能、学历、页数与联系方式产出分析结果。
// 技能为空时不报错，返回 General IT / Fresher 与通用推荐。
func (c *Classifier) Classify(p *types.ResumeProfile) *types.AnalysisResult {
	joined := strings.ToLower(strings.Join(p.Skills, " "))

	bestIdx, bestScore, diversity := -1, 0, 0
	for i, f := range c.fields {
		score := 0
		for _, kw := range f.Keywords {
			if extractor.ContainsWholeWord(joined, kw) {
				score++
			}
		}
		if score > 0 {
			diversity++
		}
		// 严格大于，保证平局时最先定义的领域胜出
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	field := types.FieldGeneralIT
	recommended := genericRecommendations
	if bestIdx >= 0 {
		field = c.fields[bestIdx].Name
		recommended = c.fields[bestIdx].Recommended
	}

	return &types.AnalysisResult{
		Field:             field,
		Level:             determineLevel(len(p.Skills), diversity),
		RecommendedSkills: recommended,
		Score:             computeScore(p, diversity),
	}
}

// determineLevel 按技能数量分档，技能广度达标时升为 Expert
func determineLevel(skillCount, diversity int) string {
	switch {
	case skillCount < 5:
		return types.LevelFresher
	case skillCount < 10:
		return types.LevelIntermediate
	case skillCount >= 15 && diversity >= 3:
		return types.LevelExpert
	default:
		return types.LevelExperienced
	}
}
