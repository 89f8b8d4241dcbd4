package model

import "time"

type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentApproved  AssignmentStatus = "approved"
	AssignmentRejected  AssignmentStatus = "rejected"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

type AssignmentType string

const (
	AssignmentConsultation      AssignmentType = "consultation"
	AssignmentApplicationReview AssignmentType = "application_review"
	AssignmentGeneral           AssignmentType = "general"
)

// Assignment 学生与顾问之间的一次连接请求，带独立的生命周期状态。
// 记录只追加、只通过状态迁移更新，永不删除；所有统计均从这张表重新推导。
// swagger:model Assignment
type Assignment struct {
	BaseModel
	StudentID   uint             `gorm:"index:idx_assignments_pair;not null" json:"studentId"`
	CounselorID uint             `gorm:"index:idx_assignments_pair;not null" json:"counselorId"`
	Type        AssignmentType   `gorm:"type:enum('consultation','application_review','general');default:'general'" json:"type"`
	Description string           `gorm:"type:text" json:"description"`
	Priority    int              `gorm:"default:3" json:"priority"` // 1-5
	Status      AssignmentStatus `gorm:"type:enum('pending','approved','rejected','completed','cancelled');default:'pending';index" json:"status"`
	ApprovedAt  *time.Time       `json:"approvedAt"`
	CompletedAt *time.Time       `json:"completedAt"`
}

func (Assignment) TableName() string {
	return "counselor_assignments"
}

// IsTerminal 终态不允许任何后续迁移
func (s AssignmentStatus) IsTerminal() bool {
	switch s {
	case AssignmentRejected, AssignmentCompleted, AssignmentCancelled:
		return true
	}
	return false
}

// IsOpen pending/approved 视为占用 (student, counselor) 对的未结请求
func (s AssignmentStatus) IsOpen() bool {
	return s == AssignmentPending || s == AssignmentApproved
}

// CanTransitionTo 状态图：pending→approved→completed，pending→rejected，approved→cancelled
func (s AssignmentStatus) CanTransitionTo(to AssignmentStatus) bool {
	switch s {
	case AssignmentPending:
		return to == AssignmentApproved || to == AssignmentRejected
	case AssignmentApproved:
		return to == AssignmentCompleted || to == AssignmentCancelled
	}
	return false
}
