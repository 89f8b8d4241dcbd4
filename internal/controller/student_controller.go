package controller

import (
	"edu_consult_backend/internal/model"
	"edu_consult_backend/internal/repository"
	"edu_consult_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type StudentController struct {
	StudentRepo *repository.StudentRepository
}

func NewStudentController(studentRepo *repository.StudentRepository) *StudentController {
	return &StudentController{StudentRepo: studentRepo}
}

// StudentProfileRequest 学生画像表单，列表字段为逗号分隔
type StudentProfileRequest struct {
	FieldsOfStudy      string `json:"fieldsOfStudy"`
	TargetCountries    string `json:"targetCountries"`
	PreferredLanguages string `json:"preferredLanguages"`
	BudgetBand         string `json:"budgetBand"`
	Urgency            string `json:"urgency"`
}

// GetProfile godoc
// @Summary 获取学生画像
// @Tags 学生
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.StudentProfile} "成功"
// @Failure 404 {object} util.Response "画像尚未填写"
// @Router /api/students/profile [get]
func (c *StudentController) GetProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	profile, err := c.StudentRepo.FindByUserID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// UpsertProfile godoc
// @Summary 创建或更新学生画像
// @Description 一个学生只有一份画像，重复提交直接覆盖
// @Tags 学生
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body StudentProfileRequest true "画像信息"
// @Success 200 {object} util.Response{data=model.StudentProfile} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/students/profile [put]
func (c *StudentController) UpsertProfile(ctx *gin.Context) {
	var req StudentProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	profile := &model.StudentProfile{
		UserID:             claims.UserID,
		FieldsOfStudy:      req.FieldsOfStudy,
		TargetCountries:    req.TargetCountries,
		PreferredLanguages: req.PreferredLanguages,
		BudgetBand:         req.BudgetBand,
		Urgency:            req.Urgency,
	}
	if err := c.StudentRepo.Upsert(profile); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	saved, err := c.StudentRepo.FindByUserID(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, saved)
}
