package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"gorm.io/gorm"

	"smart-resume-go/internal/logger"
	"smart-resume-go/internal/storage"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// AdminHandler 管理端接口，路由层以API Key保护
type AdminHandler struct {
	storage *storage.Storage
}

func NewAdminHandler(st *storage.Storage) *AdminHandler {
	return &AdminHandler{storage: st}
}

// HandleStats 返回聚合统计：总分析数、平均得分、各领域分布、去重集合大小
func (h *AdminHandler) HandleStats(c context.Context, ctx *app.RequestContext) {
	if h.storage == nil || h.storage.MySQL == nil {
		ctx.JSON(consts.StatusServiceUnavailable, utils.H{"error": "统计服务未启用"})
		return
	}

	stats, err := h.storage.MySQL.GetStats(c)
	if err != nil {
		logger.Ctx(c).Error().Err(err).Msg("查询统计数据失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "查询统计数据失败"})
		return
	}

	resp := utils.H{
		"total_analyses": stats.TotalAnalyses,
		"average_score":  stats.AverageScore,
		"by_field":       stats.ByField,
	}

	if h.storage.Redis != nil {
		if processed, err := h.storage.Redis.CountProcessedFiles(c); err == nil {
			resp["processed_files"] = processed
		} else {
			logger.Ctx(c).Warn().Err(err).Msg("查询去重集合大小失败")
		}
	}

	ctx.JSON(consts.StatusOK, resp)
}

// HandleListResumes 分页列出全部分析记录，按创建时间倒序
func (h *AdminHandler) HandleListResumes(c context.Context, ctx *app.RequestContext) {
	if h.storage == nil || h.storage.MySQL == nil {
		ctx.JSON(consts.StatusServiceUnavailable, utils.H{"error": "查询服务未启用"})
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	records, total, err := h.storage.MySQL.ListAnalyses(c, pageSize, (page-1)*pageSize)
	if err != nil {
		logger.Ctx(c).Error().Err(err).Msg("查询分析记录列表失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "查询分析记录列表失败"})
		return
	}

	ctx.JSON(consts.StatusOK, utils.H{
		"resumes":   records,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// HandleDownloadResume 透传原始简历文件，供无法直连对象存储的管理端使用
func (h *AdminHandler) HandleDownloadResume(c context.Context, ctx *app.RequestContext) {
	if h.storage == nil || h.storage.MySQL == nil || h.storage.MinIO == nil {
		ctx.JSON(consts.StatusServiceUnavailable, utils.H{"error": "下载服务未启用"})
		return
	}

	record, err := h.storage.MySQL.GetAnalysisByUUID(c, ctx.Param("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(consts.StatusNotFound, utils.H{"error": "未找到分析记录"})
			return
		}
		logger.Ctx(c).Error().Err(err).Msg("查询分析记录失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "查询分析记录失败"})
		return
	}
	if record.OriginalFileKey == "" {
		ctx.JSON(consts.StatusNotFound, utils.H{"error": "原始文件未归档"})
		return
	}

	data, err := h.storage.MinIO.GetResumeFile(c, record.OriginalFileKey)
	if err != nil {
		logger.Ctx(c).Error().Err(err).Str("object_key", record.OriginalFileKey).Msg("读取原始简历失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "读取原始简历失败"})
		return
	}

	ctx.Response.Header.Set("Content-Disposition", "attachment; filename="+strconv.Quote(record.Filename))
	ctx.Data(consts.StatusOK, "application/pdf", data)
}

// HandleDeleteResume 删除一次提交：数据库记录、对象存储文件与缓存一并清理
func (h *AdminHandler) HandleDeleteResume(c context.Context, ctx *app.RequestContext) {
	if h.storage == nil || h.storage.MySQL == nil {
		ctx.JSON(consts.StatusServiceUnavailable, utils.H{"error": "删除服务未启用"})
		return
	}

	submissionUUID := ctx.Param("uuid")
	record, err := h.storage.MySQL.GetAnalysisByUUID(c, submissionUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(consts.StatusNotFound, utils.H{"error": "未找到分析记录"})
			return
		}
		logger.Ctx(c).Error().Err(err).Msg("查询分析记录失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "查询分析记录失败"})
		return
	}

	if err := h.storage.MySQL.DeleteAnalysis(c, submissionUUID); err != nil {
		logger.Ctx(c).Error().Err(err).Msg("删除分析记录失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "删除分析记录失败"})
		return
	}

	// 对象与缓存清理失败不阻塞删除，记录后由人工或下次覆盖处理
	if h.storage.MinIO != nil {
		if err := h.storage.MinIO.DeleteSubmission(c, submissionUUID); err != nil {
			logger.Ctx(c).Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("删除对象存储文件失败")
		}
	}
	if h.storage.Redis != nil {
		if err := h.storage.Redis.RemoveMD5(c, record.FileMD5); err != nil {
			logger.Ctx(c).Warn().Err(err).Msg("清理MD5去重登记失败")
		}
		if err := h.storage.Redis.RemoveCachedAnalysis(c, record.FileMD5); err != nil {
			logger.Ctx(c).Warn().Err(err).Msg("清理分析缓存失败")
		}
	}

	ctx.JSON(consts.StatusOK, utils.H{"deleted": submissionUUID})
}
