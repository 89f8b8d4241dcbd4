package controller

import (
	"edu_consult_backend/internal/repository"
	"edu_consult_backend/internal/service"
	"edu_consult_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CounselorController struct {
	CounselorService *service.CounselorService
}

func NewCounselorController(counselorService *service.CounselorService) *CounselorController {
	return &CounselorController{CounselorService: counselorService}
}

// Search godoc
// @Summary 顾问目录
// @Description 按专业方向、覆盖国家、语言、评分、时薪筛选 active 顾问，游客可访问
// @Tags 顾问
// @Produce  json
// @Param   specialization query string false "专业方向"
// @Param   country query string false "覆盖国家"
// @Param   language query string false "语言"
// @Param   minRating query number false "最低评分"
// @Param   maxRate query number false "最高时薪"
// @Param   availableOnly query bool false "只看当前可接单"
// @Success 200 {object} util.Response{data=[]model.Counselor} "成功"
// @Router /api/counselors [get]
func (c *CounselorController) Search(ctx *gin.Context) {
	filter := repository.SearchFilter{
		Specialization: ctx.Query("specialization"),
		Country:        ctx.Query("country"),
		Language:       ctx.Query("language"),
		MinRating:      util.ParseFloatOr(ctx.Query("minRating"), 0),
		MaxRate:        util.ParseFloatOr(ctx.Query("maxRate"), 0),
		AvailableOnly:  ctx.Query("availableOnly") == "true",
	}

	counselors, err := c.CounselorService.Search(filter)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, counselors)
}

// GetByID godoc
// @Summary 顾问详情
// @Tags 顾问
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "顾问ID"
// @Success 200 {object} util.Response{data=model.Counselor} "成功"
// @Failure 404 {object} util.Response "顾问不存在"
// @Router /api/counselors/{id} [get]
func (c *CounselorController) GetByID(ctx *gin.Context) {
	counselor, err := c.CounselorService.GetByID(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, counselor)
}

// ListReviews godoc
// @Summary 顾问评价列表
// @Tags 顾问
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "顾问ID"
// @Success 200 {object} util.Response{data=[]model.CounselorReview} "成功"
// @Router /api/counselors/{id}/reviews [get]
func (c *CounselorController) ListReviews(ctx *gin.Context) {
	counselorID := util.MustParseUint(ctx.Param("id"))
	if _, err := c.CounselorService.GetByID(counselorID); err != nil {
		util.FromError(ctx, err)
		return
	}

	reviews, err := c.CounselorService.ListReviews(counselorID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, reviews)
}

// GetOwnProfile godoc
// @Summary 顾问本人画像
// @Tags 顾问
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.Counselor} "成功"
// @Router /api/counselors/me [get]
func (c *CounselorController) GetOwnProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	counselor, err := c.CounselorService.GetByUserID(claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, counselor)
}

// UpdateProfile godoc
// @Summary 更新顾问本人画像
// @Description 画像、可接单状态与覆盖地；评分字段由评价表派生，不可直接修改
// @Tags 顾问
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CounselorProfileUpdate true "画像更新"
// @Success 200 {object} util.Response{data=model.Counselor} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/counselors/me [put]
func (c *CounselorController) UpdateProfile(ctx *gin.Context) {
	var update service.CounselorProfileUpdate
	if err := ctx.ShouldBindJSON(&update); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	counselor, err := c.CounselorService.UpdateProfile(ctx.Request.Context(), claims.UserID, update)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, counselor)
}
