package controller

import (
	"edu_consult_backend/internal/matching"
	"edu_consult_backend/internal/service"
	"edu_consult_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MatchingController struct {
	MatchingService *service.MatchingService
}

func NewMatchingController(matchingService *service.MatchingService) *MatchingController {
	return &MatchingController{MatchingService: matchingService}
}

// FindMatches godoc
// @Summary 顾问匹配推荐
// @Description 基于学生画像对 active 顾问实时评分排序，结果不落库
// @Tags 匹配
// @Produce  json
// @Security ApiKeyAuth
// @Param   minScore query number false "最低匹配分 0-1"
// @Param   limit query int false "返回条数，默认 20"
// @Param   specialization query string false "限定专业方向"
// @Param   country query string false "限定覆盖国家"
// @Param   minRating query number false "最低评分"
// @Param   availableOnly query bool false "只看当前可接单"
// @Param   partial query bool false "请求被取消时接受部分结果"
// @Success 200 {object} util.Response{data=[]matching.Match} "成功"
// @Failure 400 {object} util.Response "学生画像未填写"
// @Router /api/matches [get]
func (c *MatchingController) FindMatches(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	opts := matching.Options{
		MinScore:       util.ParseFloatOr(ctx.Query("minScore"), 0),
		Limit:          util.ParseIntOr(ctx.Query("limit"), 0),
		Specialization: ctx.Query("specialization"),
		Country:        ctx.Query("country"),
		MinRating:      util.ParseFloatOr(ctx.Query("minRating"), 0),
		AvailableOnly:  ctx.Query("availableOnly") == "true",
		PartialOK:      ctx.Query("partial") == "true",
	}

	matches, err := c.MatchingService.FindMatches(ctx.Request.Context(), claims.UserID, opts)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, matches)
}
