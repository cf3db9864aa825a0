package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-resume-go/internal/analyzer"
	"smart-resume-go/internal/api/handler"
	"smart-resume-go/internal/api/router"
	"smart-resume-go/internal/processor"
	"smart-resume-go/internal/recommend"
	"smart-resume-go/internal/types"
)

const handlerResumeText = `Jane Doe
jane.doe@example.com
+1-415-555-0199

SKILLS: Python, TensorFlow, PyTorch, Pandas, NumPy, SQL

EDUCATION: Master of Science in Machine Learning
`

type fixedExtractor struct {
	text string
}

func (f *fixedExtractor) Extract(ctx context.Context, data []byte, uri string) (*types.ExtractedText, error) {
	return &types.ExtractedText{Text: f.text, Method: types.MethodStructural, Pages: 1}, nil
}

func newTestEngine(t *testing.T) *server.Hertz {
	t.Helper()
	proc := processor.NewResumeProcessor(&fixedExtractor{text: handlerResumeText}, nil)
	matcher := analyzer.NewJobMatchAnalyzer(nil, 0)

	// 与生产入口一致地挂上服务端tracer，请求经过根span再进处理器
	srvTracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.Default(srvTracer)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))
	router.RegisterRoutes(h, &router.Handlers{
		Resume: handler.NewResumeHandler(proc, matcher, nil),
		Course: handler.NewCourseHandler(recommend.NewCourseRecommender()),
		Job:    handler.NewJobHandler(nil),
		Admin:  handler.NewAdminHandler(nil),
	}, "test-admin-key")
	return h
}

func multipartPDF(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.7 dummy content"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHandleUploadReturnsAnalysis(t *testing.T) {
	engine := newTestEngine(t)
	body, contentType := multipartPDF(t, "jane.pdf")

	w := ut.PerformRequest(engine.Engine, "POST", "/api/v1/resume/upload", &ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: contentType})
	resp := w.Result()
	require.Equal(t, 200, resp.StatusCode())

	var got processor.AnalysisResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &got))
	assert.NotEmpty(t, got.SubmissionUUID)
	assert.Equal(t, "Jane Doe", got.Profile.Name)
	assert.Equal(t, "Data Science", got.Analysis.Field)
	assert.NotEmpty(t, got.Courses)
}

func TestHandleUploadRejectsMissingFile(t *testing.T) {
	engine := newTestEngine(t)

	w := ut.PerformRequest(engine.Engine, "POST", "/api/v1/resume/upload", nil)
	assert.Equal(t, 400, w.Result().StatusCode())
}

func TestHandleJobMatchWithInlineText(t *testing.T) {
	engine := newTestEngine(t)
	payload, _ := json.Marshal(handler.JobMatchRequest{ResumeText: handlerResumeText})

	w := ut.PerformRequest(engine.Engine, "POST", "/api/v1/resume/match",
		&ut.Body{Body: bytes.NewBuffer(payload), Len: len(payload)},
		ut.Header{Key: "Content-Type", Value: "application/json"})
	resp := w.Result()
	require.Equal(t, 200, resp.StatusCode())

	var report types.JobMatchReport
	require.NoError(t, json.Unmarshal(resp.Body(), &report))
	assert.NotEmpty(t, report.Summary)
	assert.NotEmpty(t, report.Keywords)
}

func TestHandleJobMatchRequiresInput(t *testing.T) {
	engine := newTestEngine(t)
	payload := []byte(`{}`)

	w := ut.PerformRequest(engine.Engine, "POST", "/api/v1/resume/match",
		&ut.Body{Body: bytes.NewBuffer(payload), Len: len(payload)},
		ut.Header{Key: "Content-Type", Value: "application/json"})
	assert.Equal(t, 400, w.Result().StatusCode())
}

func TestHandleCoursesByField(t *testing.T) {
	engine := newTestEngine(t)

	w := ut.PerformRequest(engine.Engine, "GET", "/api/v1/courses/Data%20Science", nil)
	resp := w.Result()
	require.Equal(t, 200, resp.StatusCode())

	var got struct {
		Field   string         `json:"field"`
		Courses []types.Course `json:"courses"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &got))
	assert.NotEmpty(t, got.Courses)
}

func TestAdminStatsRequiresAPIKey(t *testing.T) {
	engine := newTestEngine(t)

	w := ut.PerformRequest(engine.Engine, "GET", "/api/v1/admin/stats", nil)
	assert.Equal(t, 401, w.Result().StatusCode())
}

func TestAdminListResumesRequiresAPIKey(t *testing.T) {
	engine := newTestEngine(t)

	w := ut.PerformRequest(engine.Engine, "GET", "/api/v1/admin/resumes", nil)
	assert.Equal(t, 401, w.Result().StatusCode())
}

func TestAdminListResumesUnavailableWithoutStorage(t *testing.T) {
	engine := newTestEngine(t)

	w := ut.PerformRequest(engine.Engine, "GET", "/api/v1/admin/resumes", nil,
		ut.Header{Key: "X-API-Key", Value: "test-admin-key"})
	assert.Equal(t, 503, w.Result().StatusCode())
}

func TestAdminDeleteResumeUnavailableWithoutStorage(t *testing.T) {
	engine := newTestEngine(t)

	w := ut.PerformRequest(engine.Engine, "DELETE", "/api/v1/admin/resumes/some-uuid", nil,
		ut.Header{Key: "X-API-Key", Value: "test-admin-key"})
	assert.Equal(t, 503, w.Result().StatusCode())
}

func TestGetAnalysisUnavailableWithoutStorage(t *testing.T) {
	engine := newTestEngine(t)

	w := ut.PerformRequest(engine.Engine, "GET", "/api/v1/resume/some-uuid", nil)
	assert.Equal(t, 503, w.Result().StatusCode())
}

func TestHealthEndpoint(t *testing.T) {
	engine := newTestEngine(t)

	w := ut.PerformRequest(engine.Engine, "GET", "/api/v1/health", nil)
	assert.Equal(t, 200, w.Result().StatusCode())
}
