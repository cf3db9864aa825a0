package handler

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.opentelemetry.io/otel/trace"

	"smart-resume-go/internal/jobfeed"
	"smart-resume-go/internal/logger"
	"smart-resume-go/internal/tracing"
)

// JobHandler 在线职位检索接口，数据来自远程RSS职位源
type JobHandler struct {
	feed *jobfeed.Client
}

func NewJobHandler(feed *jobfeed.Client) *JobHandler {
	return &JobHandler{feed: feed}
}

// HandleJobSearch 按关键词检索职位。keywords 为逗号分隔列表，
// 为空时返回职位源的最新条目。
func (h *JobHandler) HandleJobSearch(c context.Context, ctx *app.RequestContext) {
	if h.feed == nil {
		ctx.JSON(consts.StatusServiceUnavailable, utils.H{"error": "职位检索服务未启用"})
		return
	}

	var keywords []string
	if raw := ctx.Query("keywords"); raw != "" {
		for _, kw := range strings.Split(raw, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}
	}

	jobs, err := h.feed.FetchJobs(c, keywords)
	if err != nil {
		tracing.RecordError(trace.SpanFromContext(c), err, tracing.ErrorTypeExternal)
		logger.Ctx(c).Error().Err(err).Msg("拉取职位源失败")
		ctx.JSON(consts.StatusBadGateway, utils.H{"error": "职位源暂时不可用"})
		return
	}

	ctx.JSON(consts.StatusOK, utils.H{
		"count": len(jobs),
		"jobs":  jobs,
	})
}
