package controller

import (
	"edu_consult_backend/internal/model"
	"edu_consult_backend/internal/service"
	"edu_consult_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ConnectionController 连接请求全生命周期：
// 学生发起与取消，顾问批准/拒绝/完成，完成后学生评价。
type ConnectionController struct {
	AssignmentService *service.AssignmentService
	CounselorService  *service.CounselorService
}

func NewConnectionController(assignmentService *service.AssignmentService, counselorService *service.CounselorService) *ConnectionController {
	return &ConnectionController{
		AssignmentService: assignmentService,
		CounselorService:  counselorService,
	}
}

// Create godoc
// @Summary 发起连接请求
// @Description 向顾问发起连接，同一顾问存在未结请求时返回 409
// @Tags 连接
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ConnectionRequest true "连接请求"
// @Success 201 {object} util.Response{data=model.Assignment} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "已有未结请求"
// @Router /api/connections [post]
func (c *ConnectionController) Create(ctx *gin.Context) {
	var req service.ConnectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	assignment, err := c.AssignmentService.Request(claims.UserID, req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, assignment)
}

// List godoc
// @Summary 我的连接列表
// @Description 学生看自己发起的，顾问看指向自己的
// @Tags 连接
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Assignment} "成功"
// @Router /api/connections [get]
func (c *ConnectionController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	if claims.Role == model.RoleCounselor {
		counselor, err := c.CounselorService.GetByUserID(claims.UserID)
		if err != nil {
			util.FromError(ctx, err)
			return
		}
		assignments, err := c.AssignmentService.ListForCounselor(counselor.ID)
		if err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		util.Success(ctx, assignments)
		return
	}

	assignments, err := c.AssignmentService.ListForStudent(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, assignments)
}

// Approve godoc
// @Summary 批准连接请求
// @Description 仅该请求指向的顾问可以操作，pending 之外的状态返回 409
// @Tags 连接
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "连接ID"
// @Success 200 {object} util.Response{data=model.Assignment} "成功"
// @Failure 403 {object} util.Response "无权操作"
// @Failure 409 {object} util.Response "状态不允许"
// @Router /api/connections/{id}/approve [post]
func (c *ConnectionController) Approve(ctx *gin.Context) {
	c.counselorTransition(ctx, c.AssignmentService.Approve)
}

// Reject godoc
// @Summary 拒绝连接请求
// @Tags 连接
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "连接ID"
// @Success 200 {object} util.Response{data=model.Assignment} "成功"
// @Failure 403 {object} util.Response "无权操作"
// @Failure 409 {object} util.Response "状态不允许"
// @Router /api/connections/{id}/reject [post]
func (c *ConnectionController) Reject(ctx *gin.Context) {
	c.counselorTransition(ctx, c.AssignmentService.Reject)
}

// Complete godoc
// @Summary 完成辅导
// @Description 已获批的辅导标记为完成，之后学生可以评价
// @Tags 连接
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "连接ID"
// @Success 200 {object} util.Response{data=model.Assignment} "成功"
// @Failure 403 {object} util.Response "无权操作"
// @Failure 409 {object} util.Response "状态不允许"
// @Router /api/connections/{id}/complete [post]
func (c *ConnectionController) Complete(ctx *gin.Context) {
	c.counselorTransition(ctx, c.AssignmentService.Complete)
}

// counselorTransition 顾问侧迁移的公共壳：按 user id 解析顾问身份后调用
func (c *ConnectionController) counselorTransition(ctx *gin.Context, fn func(assignmentID, counselorID uint) (*model.Assignment, error)) {
	claims := util.GetUserFromContext(ctx)
	counselor, err := c.CounselorService.GetByUserID(claims.UserID)
	if err != nil {
		util.Forbidden(ctx)
		return
	}

	assignment, err := fn(util.MustParseUint(ctx.Param("id")), counselor.ID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, assignment)
}

// Cancel godoc
// @Summary 取消辅导
// @Description 学生或顾问任一方都可以取消已获批的辅导
// @Tags 连接
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "连接ID"
// @Success 200 {object} util.Response{data=model.Assignment} "成功"
// @Failure 403 {object} util.Response "无权操作"
// @Failure 409 {object} util.Response "状态不允许"
// @Router /api/connections/{id}/cancel [post]
func (c *ConnectionController) Cancel(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	assignment, err := c.AssignmentService.Cancel(util.MustParseUint(ctx.Param("id")), claims.UserID, claims.Role)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, assignment)
}

// SubmitReview godoc
// @Summary 评价已完成的辅导
// @Description 每段辅导一条评价，提交后顾问均分立即重算
// @Tags 连接
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "连接ID"
// @Param   body body service.ReviewRequest true "评价内容"
// @Success 201 {object} util.Response{data=model.CounselorReview} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "已评价或状态不允许"
// @Router /api/connections/{id}/review [post]
func (c *ConnectionController) SubmitReview(ctx *gin.Context) {
	var req service.ReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	review, err := c.CounselorService.SubmitReview(ctx.Request.Context(), claims.UserID, util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, review)
}
