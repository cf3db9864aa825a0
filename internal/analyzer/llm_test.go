package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatModel 可编排返回内容或错误的测试用模型
type fakeChatModel struct {
	content string
	err     error
	calls   int
}

func (f *fakeChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.content, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func (f *fakeChatModel) WithTools(_ []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return f, nil
}

func TestJobMatchAnalyzerParsesJSONResponse(t *testing.T) {
	fake := &fakeChatModel{content: `{"summary":"Solid backend profile.","gaps":"Limited cloud exposure.","roadmap":["Learn AWS","Add IaC"]}`}
	a := NewJobMatchAnalyzer(fake, time.Second)

	report := a.Analyze(context.Background(), "resume text with docker and sql")
	require.NotNil(t, report)
	assert.Equal(t, "Solid backend profile.", report.Summary)
	assert.Equal(t, "Limited cloud exposure.", report.Gaps)
	assert.Equal(t, []string{"Learn AWS", "Add IaC"}, report.Roadmap)
	assert.NotEmpty(t, report.Keywords)
	assert.NotEmpty(t, report.KeywordsDisplay)
	assert.Equal(t, 1, fake.calls)
}

func TestJobMatchAnalyzerStripsMarkdownFence(t *testing.T) {
	fake := &fakeChatModel{content: "```json\n{\"summary\":\"ok\",\"gaps\":\"none\",\"roadmap\":[]}\n```"}
	a := NewJobMatchAnalyzer(fake, time.Second)

	report := a.Analyze(context.Background(), "text")
	assert.Equal(t, "ok", report.Summary)
	assert.Equal(t, "none", report.Gaps)
}

func TestJobMatchAnalyzerLineSplitFallback(t *testing.T) {
	fake := &fakeChatModel{content: "A strong generalist profile\nMissing cloud skills\n- Learn Docker\n- Learn AWS"}
	a := NewJobMatchAnalyzer(fake, time.Second)

	report := a.Analyze(context.Background(), "text")
	assert.Equal(t, "A strong generalist profile", report.Summary)
	assert.Equal(t, "Missing cloud skills", report.Gaps)
	assert.Equal(t, []string{"Learn Docker", "Learn AWS"}, report.Roadmap)
}

func TestJobMatchAnalyzerFallsBackOnModelError(t *testing.T) {
	fake := &fakeChatModel{err: errors.New("upstream unavailable")}
	a := NewJobMatchAnalyzer(fake, time.Second)

	report := a.Analyze(context.Background(), "React and JavaScript frontend work")
	// 模型失败不冒泡，走启发式路径
	require.NotNil(t, report)
	assert.NotEmpty(t, report.Summary)
	assert.NotEmpty(t, report.Keywords)
	assert.Equal(t, 1, fake.calls)
}

func TestJobMatchAnalyzerHeuristicWhenNoModel(t *testing.T) {
	a := NewJobMatchAnalyzer(nil, 0)

	report := a.Analyze(context.Background(), "Python data analysis with pandas")
	require.NotNil(t, report)
	assert.NotEmpty(t, report.Summary)
	assert.NotEmpty(t, report.Roadmap)
}

func TestParseModelReportMalformedJSON(t *testing.T) {
	report := parseModelReport(`{"summary": truncated...`)
	// JSON 解析失败时退化为按行切分
	assert.NotEmpty(t, report.Summary)
}
