package router

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"smart-resume-go/internal/api/handler"
)

// Handlers 路由装配所需的全部接口处理器
type Handlers struct {
	Resume *handler.ResumeHandler
	Course *handler.CourseHandler
	Job    *handler.JobHandler
	Admin  *handler.AdminHandler
}

// RegisterRoutes 注册 API 路由。adminAPIKey 为空时管理端路由不对外开放。
func RegisterRoutes(h *server.Hertz, handlers *Handlers, adminAPIKey string) {
	api := h.Group("/api/v1")

	api.POST("/resume/upload", handlers.Resume.HandleUpload)
	api.POST("/resume/match", handlers.Resume.HandleJobMatch)
	api.GET("/resume/:uuid", handlers.Resume.HandleGetAnalysis)

	api.GET("/courses/:field", handlers.Course.HandleCoursesByField)
	api.GET("/jobs", handlers.Job.HandleJobSearch)

	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	if adminAPIKey != "" {
		admin := api.Group("/admin", keyauth.New(
			keyauth.WithKeyLookUp("header:X-API-Key", ""),
			keyauth.WithValidator(func(c context.Context, ctx *app.RequestContext, key string) (bool, error) {
				return key == adminAPIKey, nil
			}),
			keyauth.WithErrorHandler(func(c context.Context, ctx *app.RequestContext, err error) {
				ctx.JSON(consts.StatusUnauthorized, utils.H{"error": "无效的API Key"})
				ctx.Abort()
			}),
		))
		admin.GET("/stats", handlers.Admin.HandleStats)
		admin.GET("/resumes", handlers.Admin.HandleListResumes)
		admin.GET("/resumes/:uuid/download", handlers.Admin.HandleDownloadResume)
		admin.DELETE("/resumes/:uuid", handlers.Admin.HandleDeleteResume)
	}
}
