package analyzer

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel/trace"

	"smart-resume-go/internal/logger"
	"smart-resume-go/internal/tracing"
	"smart-resume-go/internal/types"
)

const jobMatchSystemPrompt = `You are a career advisor reviewing a resume. ` +
	`Respond with a single JSON object: {"summary": string, "gaps": string, "roadmap": [string]}. ` +
	`The summary is 2-3 sentences, gaps names the candidate's weakest technical areas, ` +
	`and roadmap lists at most 5 concrete learning steps. Respond with JSON only, no markdown.`

const maxResumeCharsForLLM = 6000

// JobMatchAnalyzer 岗位匹配分析器。配置了 LLM 时走委托路径，
// 任何模型错误都静默退回启发式路径，对调用方永不失败。
type JobMatchAnalyzer struct {
	chatModel model.ToolCallingChatModel // 可为 nil，此时只用启发式
	heuristic *HeuristicAnalyzer
	timeout   time.Duration
}

// NewJobMatchAnalyzer 创建岗位匹配分析器。chatModel 传 nil 表示纯启发式模式。
func NewJobMatchAnalyzer(chatModel model.ToolCallingChatModel, timeout time.Duration) *JobMatchAnalyzer {
	if timeout <= 0 {
		timeout = 40 * time.Second
	}
	return &JobMatchAnalyzer{
		chatModel: chatModel,
		heuristic: NewHeuristicAnalyzer(),
		timeout:   timeout,
	}
}

// Analyze 产出 (summary, gaps, roadmap) 三元组
func (a *JobMatchAnalyzer) Analyze(ctx context.Context, text string) *types.JobMatchReport {
	if a.chatModel == nil {
		return a.heuristic.Analyze(text)
	}

	report, err := a.analyzeWithModel(ctx, text)
	if err != nil {
		tracing.RecordError(trace.SpanFromContext(ctx), err, tracing.ErrorTypeLLM)
		logger.Ctx(ctx).Warn().Err(err).Msg("LLM 分析失败，退回启发式路径")
		return a.heuristic.Analyze(text)
	}
	// 关键词列表始终由本地词表产出，缺口分析的下游消费方依赖它
	report.Keywords = a.heuristic.ExtractKeywords(text, defaultKeywordCap)
	report.KeywordsDisplay = FormatKeywords(report.Keywords)
	return report
}

func (a *JobMatchAnalyzer) analyzeWithModel(ctx context.Context, text string) (*types.JobMatchReport, error) {
	if len(text) > maxResumeCharsForLLM {
		text = text[:maxResumeCharsForLLM]
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	msg, err := a.chatModel.Generate(callCtx, []*schema.Message{
		schema.SystemMessage(jobMatchSystemPrompt),
		schema.UserMessage("Resume text:\n\n" + text),
	})
	if err != nil {
		return nil, err
	}
	return parseModelReport(msg.Content), nil
}

// parseModelReport 解析模型输出。先按 JSON 解析（容忍 markdown 代码围栏），
// 失败时退化为朴素按行切分。
func parseModelReport(content string) *types.JobMatchReport {
	cleaned := stripCodeFence(content)

	var parsed struct {
		Summary string   `json:"summary"`
		Gaps    string   `json:"gaps"`
		Roadmap []string `json:"roadmap"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err == nil && parsed.Summary != "" {
		return &types.JobMatchReport{
			Summary: parsed.Summary,
			Gaps:    parsed.Gaps,
			Roadmap: parsed.Roadmap,
		}
	}

	// 按行切分兜底：首段为摘要，其余行并入路线
	lines := make([]string, 0, 8)
	for _, l := range strings.Split(cleaned, "\n") {
		if l = strings.TrimSpace(strings.TrimLeft(l, "-*0123456789. ")); l != "" {
			lines = append(lines, l)
		}
	}
	report := &types.JobMatchReport{}
	if len(lines) > 0 {
		report.Summary = lines[0]
	}
	if len(lines) > 1 {
		report.Gaps = lines[1]
	}
	if len(lines) > 2 {
		roadmap := lines[2:]
		if len(roadmap) > maxRoadmapItems {
			roadmap = roadmap[:maxRoadmapItems]
		}
		report.Roadmap = roadmap
	}
	return report
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}
