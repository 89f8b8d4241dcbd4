package controller

import (
	"edu_consult_backend/internal/service"
	"edu_consult_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
	StatsService     *service.StatsService
}

func NewDashboardController(dashboardService *service.DashboardService, statsService *service.StatsService) *DashboardController {
	return &DashboardController{
		DashboardService: dashboardService,
		StatsService:     statsService,
	}
}

// StudentDashboard godoc
// @Summary 学生首页
// @Description 画像、当前顾问、连接历史、未读通知与最近动态
// @Tags 仪表盘
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.StudentDashboard} "成功"
// @Router /api/dashboard/student [get]
func (c *DashboardController) StudentDashboard(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	dashboard, err := c.DashboardService.StudentDashboard(claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}

// CounselorDashboard godoc
// @Summary 顾问首页
// @Description 待处理请求、进行中学生与派生统计
// @Tags 仪表盘
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.CounselorDashboard} "成功"
// @Router /api/dashboard/counselor [get]
func (c *DashboardController) CounselorDashboard(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	dashboard, err := c.DashboardService.CounselorDashboard(claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}

// CounselorStats godoc
// @Summary 指定顾问的统计
// @Description 从 assignment 日志实时派生，不落库
// @Tags 仪表盘
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "顾问ID"
// @Success 200 {object} util.Response{data=service.CounselorStats} "成功"
// @Failure 404 {object} util.Response "顾问不存在"
// @Router /api/stats/counselors/{id} [get]
func (c *DashboardController) CounselorStats(ctx *gin.Context) {
	stats, err := c.DashboardService.PublicCounselorStats(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// PlatformStats godoc
// @Summary 平台整体统计
// @Tags 仪表盘
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.PlatformStats} "成功"
// @Router /api/admin/stats [get]
func (c *DashboardController) PlatformStats(ctx *gin.Context) {
	stats, err := c.StatsService.PlatformStats()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
