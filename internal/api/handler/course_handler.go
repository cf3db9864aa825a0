package handler

import (
	"context"
	"encoding/json"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"gorm.io/datatypes"

	"smart-resume-go/internal/recommend"
)

// CourseHandler 课程推荐接口
type CourseHandler struct {
	recommender *recommend.CourseRecommender
}

func NewCourseHandler(r *recommend.CourseRecommender) *CourseHandler {
	return &CourseHandler{recommender: r}
}

// HandleCoursesByField 按职业领域返回课程清单，未知领域返回通用课程
func (h *CourseHandler) HandleCoursesByField(c context.Context, ctx *app.RequestContext) {
	field := ctx.Param("field")
	if field == "" {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "缺少field路径参数"})
		return
	}

	courses := h.recommender.CoursesByField(field)
	ctx.JSON(consts.StatusOK, utils.H{
		"field":   field,
		"courses": courses,
	})
}

func marshalJSON(v interface{}) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}
