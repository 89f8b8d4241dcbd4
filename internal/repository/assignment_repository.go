package repository

import (
	"edu_consult_backend/internal/model"
	"edu_consult_backend/internal/util"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

// CreateIfNoOpen 在同一事务里检查 (student, counselor) 对是否已有未结请求，
// 没有才创建。行锁让并发的重复 create 串行化，输家拿到 ErrConflict。
func (r *AssignmentRepository) CreateIfNoOpen(assignment *model.Assignment) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&model.Assignment{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("student_id = ? AND counselor_id = ? AND status IN ?",
				assignment.StudentID, assignment.CounselorID,
				[]model.AssignmentStatus{model.AssignmentPending, model.AssignmentApproved}).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return util.ErrConflict
		}
		return tx.Create(assignment).Error
	})
}

func (r *AssignmentRepository) FindByID(id uint) (*model.Assignment, error) {
	var assignment model.Assignment
	err := r.DB.First(&assignment, id).Error
	return &assignment, err
}

func (r *AssignmentRepository) ListByStudent(studentID uint) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.DB.Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&assignments).Error
	return assignments, err
}

func (r *AssignmentRepository) ListByCounselor(counselorID uint) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.DB.Where("counselor_id = ?", counselorID).
		Order("created_at DESC").
		Find(&assignments).Error
	return assignments, err
}

func (r *AssignmentRepository) ListByCounselorAndStatus(counselorID uint, status model.AssignmentStatus) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.DB.Where("counselor_id = ? AND status = ?", counselorID, status).
		Order("created_at DESC").
		Find(&assignments).Error
	return assignments, err
}

// UpdateStatusCAS compare-and-set 状态迁移：只有当前状态仍是 from 时才更新。
// 返回 false 表示另一个并发迁移先赢了，调用方应报 ErrInvalidTransition。
func (r *AssignmentRepository) UpdateStatusCAS(id uint, from, to model.AssignmentStatus, fields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	result := r.DB.Model(&model.Assignment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListStalePending 超时未处理的 pending 请求，交给后台清扫
func (r *AssignmentRepository) ListStalePending(before time.Time) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.DB.Where("status = ? AND created_at < ?", model.AssignmentPending, before).
		Find(&assignments).Error
	return assignments, err
}

func (r *AssignmentRepository) CountByStatus(status model.AssignmentStatus) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Assignment{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *AssignmentRepository) CountAll() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Assignment{}).Count(&count).Error
	return count, err
}
