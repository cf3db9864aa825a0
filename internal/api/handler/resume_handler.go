package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"gorm.io/gorm"

	"smart-resume-go/internal/analyzer"
	"smart-resume-go/internal/logger"
	"smart-resume-go/internal/parser"
	"smart-resume-go/internal/processor"
	"smart-resume-go/internal/storage"
	"smart-resume-go/internal/storage/models"
)

// 预签名下载链接的有效期
const presignedURLExpiry = 15 * time.Minute

// ResumeHandler 简历相关接口：上传分析、岗位匹配、结果查询
type ResumeHandler struct {
	proc    *processor.ResumeProcessor
	matcher *analyzer.JobMatchAnalyzer
	storage *storage.Storage
}

// NewResumeHandler 创建简历处理接口。storage 可为 nil，
// 此时查询与岗位匹配的持久化能力被禁用。
func NewResumeHandler(proc *processor.ResumeProcessor, matcher *analyzer.JobMatchAnalyzer, st *storage.Storage) *ResumeHandler {
	return &ResumeHandler{
		proc:    proc,
		matcher: matcher,
		storage: st,
	}
}

// HandleUpload 处理简历上传并同步返回完整分析结果
func (h *ResumeHandler) HandleUpload(c context.Context, ctx *app.RequestContext) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "缺少file表单字段"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开上传文件失败"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "读取上传文件失败"})
		return
	}

	resp, err := h.proc.ProcessUpload(c, fileHeader.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, processor.ErrFileTooLarge):
			ctx.JSON(consts.StatusRequestEntityTooLarge, utils.H{"error": err.Error()})
		case errors.Is(err, processor.ErrInvalidPDF):
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
		case errors.Is(err, parser.ErrExtractionFailed):
			ctx.JSON(consts.StatusUnprocessableEntity, utils.H{"error": err.Error()})
		default:
			logger.Ctx(c).Error().Err(err).Msg("上传分析失败")
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "简历分析失败"})
		}
		return
	}

	ctx.JSON(consts.StatusOK, resp)
}

// JobMatchRequest 岗位匹配请求。二选一：
// 提供 submission_uuid 则从对象存储读取已解析文本，
// 否则直接使用 resume_text。
type JobMatchRequest struct {
	SubmissionUUID string `json:"submission_uuid"`
	ResumeText     string `json:"resume_text"`
}

// HandleJobMatch 生成岗位匹配洞察报告。
// 有模型时走LLM，模型不可用或解析失败自动退回本地启发式分析。
func (h *ResumeHandler) HandleJobMatch(c context.Context, ctx *app.RequestContext) {
	var req JobMatchRequest
	if err := json.Unmarshal(ctx.Request.Body(), &req); err != nil {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体不是有效的JSON"})
		return
	}

	text := strings.TrimSpace(req.ResumeText)
	if text == "" && req.SubmissionUUID != "" {
		fetched, err := h.fetchParsedText(c, req.SubmissionUUID)
		if err != nil {
			ctx.JSON(consts.StatusNotFound, utils.H{"error": "找不到该提交的解析文本"})
			return
		}
		text = fetched
	}
	if text == "" {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "需要提供resume_text或submission_uuid"})
		return
	}

	report := h.matcher.Analyze(c, text)

	if req.SubmissionUUID != "" && h.storage != nil && h.storage.MySQL != nil {
		record := &models.JobMatchResult{
			SubmissionUUID: req.SubmissionUUID,
			Summary:        report.Summary,
			Gaps:           report.Gaps,
			Roadmap:        marshalJSON(report.Roadmap),
			Keywords:       marshalJSON(report.Keywords),
		}
		if err := h.storage.MySQL.SaveJobMatchResult(c, record); err != nil {
			logger.Ctx(c).Warn().Err(err).Str("submission_uuid", req.SubmissionUUID).Msg("保存岗位匹配结果失败")
		}
	}

	ctx.JSON(consts.StatusOK, report)
}

// HandleGetAnalysis 按提交UUID查询既有分析结果
func (h *ResumeHandler) HandleGetAnalysis(c context.Context, ctx *app.RequestContext) {
	submissionUUID := ctx.Param("uuid")
	if submissionUUID == "" {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "缺少uuid路径参数"})
		return
	}
	if h.storage == nil || h.storage.MySQL == nil {
		ctx.JSON(consts.StatusServiceUnavailable, utils.H{"error": "查询服务未启用"})
		return
	}

	record, err := h.storage.MySQL.GetAnalysisByUUID(c, submissionUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(consts.StatusNotFound, utils.H{"error": "未找到分析记录"})
			return
		}
		logger.Ctx(c).Error().Err(err).Str("submission_uuid", submissionUUID).Msg("查询分析记录失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "查询分析记录失败"})
		return
	}

	resp := utils.H{"analysis": record}
	// 原始文件已归档时附带限时下载链接，签发失败只降级该字段
	if h.storage.MinIO != nil && record.OriginalFileKey != "" {
		if url, err := h.storage.MinIO.GetPresignedURL(c, record.OriginalFileKey, presignedURLExpiry); err == nil {
			resp["original_download_url"] = url
		} else {
			logger.Ctx(c).Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("签发下载链接失败")
		}
	}

	ctx.JSON(consts.StatusOK, resp)
}

func (h *ResumeHandler) fetchParsedText(ctx context.Context, submissionUUID string) (string, error) {
	if h.storage == nil || h.storage.MinIO == nil {
		return "", errors.New("对象存储未启用")
	}
	return h.storage.MinIO.GetParsedText(ctx, storage.ParsedTextObjectKey(submissionUUID))
}
