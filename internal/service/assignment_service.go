package service

import (
	"edu_consult_backend/internal/model"
	"edu_consult_backend/internal/util"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// assignmentStore is the slice of the assignment repository this service
// needs. The repository guarantees: CreateIfNoOpen serializes duplicate
// creates per (student, counselor) pair, and UpdateStatusCAS only applies a
// transition when the row is still in the expected state.
type assignmentStore interface {
	CreateIfNoOpen(assignment *model.Assignment) error
	FindByID(id uint) (*model.Assignment, error)
	UpdateStatusCAS(id uint, from, to model.AssignmentStatus, fields map[string]interface{}) (bool, error)
	ListByStudent(studentID uint) ([]model.Assignment, error)
	ListByCounselor(counselorID uint) ([]model.Assignment, error)
	ListStalePending(before time.Time) ([]model.Assignment, error)
}

type counselorDirectory interface {
	FindByID(id uint) (*model.Counselor, error)
	FindByUserID(userID uint) (*model.Counselor, error)
}

type notifier interface {
	Notify(recipientType string, recipientID uint, notifyType, title, message, actionURL string) error
}

type activityWriter interface {
	Create(entry *model.ActivityLog) error
}

// ConnectionRequest 学生发起连接的入参
type ConnectionRequest struct {
	CounselorID uint                 `json:"counselorId" binding:"required"`
	Type        model.AssignmentType `json:"type"`
	Description string               `json:"description"`
	Priority    int                  `json:"priority"`
}

// AssignmentService 独占 assignment 生命周期：
// pending → approved → completed；pending → rejected；approved → cancelled。
// 每次迁移 = 一次日志写入 + 一次尽力而为的对方通知。
type AssignmentService struct {
	store      assignmentStore
	counselors counselorDirectory
	notifier   notifier
	activity   activityWriter
	log        *zap.Logger
}

func NewAssignmentService(
	store assignmentStore,
	counselors counselorDirectory,
	notifier notifier,
	activity activityWriter,
	log *zap.Logger,
) *AssignmentService {
	return &AssignmentService{
		store:      store,
		counselors: counselors,
		notifier:   notifier,
		activity:   activity,
		log:        log,
	}
}

// Request 学生发起连接请求，落为 pending。
// 同一 (student, counselor) 对已有未结请求时返回 ErrConflict。
func (s *AssignmentService) Request(studentID uint, req ConnectionRequest) (*model.Assignment, error) {
	counselor, err := s.counselors.FindByID(req.CounselorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	if counselor.Status != model.CounselorActive {
		return nil, util.ErrNotFound
	}

	if req.Priority == 0 {
		req.Priority = 3
	}
	if req.Priority < 1 || req.Priority > 5 {
		return nil, fmt.Errorf("%w: priority must be between 1 and 5", util.ErrValidation)
	}
	if req.Type == "" {
		req.Type = model.AssignmentGeneral
	}

	assignment := &model.Assignment{
		StudentID:   studentID,
		CounselorID: req.CounselorID,
		Type:        req.Type,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      model.AssignmentPending,
	}
	if err := s.store.CreateIfNoOpen(assignment); err != nil {
		return nil, err
	}

	s.dispatch(model.RecipientCounselor, counselor.UserID, model.NotifyNewAssignment,
		"New Student Request",
		"You have received a new connection request from a student.",
		fmt.Sprintf("/counselor/connections/%d", assignment.ID))
	s.record(studentID, model.ActivityConnectionRequest,
		fmt.Sprintf("Sent connection request to %s", counselor.FullName))

	return assignment, nil
}

// Approve 只允许该 assignment 上指名的顾问执行，只从 pending 出发
func (s *AssignmentService) Approve(assignmentID, counselorID uint) (*model.Assignment, error) {
	assignment, err := s.load(assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.CounselorID != counselorID {
		return nil, util.ErrPermissionDenied
	}

	now := time.Now()
	if err := s.transition(assignment, model.AssignmentApproved, map[string]interface{}{"approved_at": now}); err != nil {
		return nil, err
	}
	assignment.ApprovedAt = &now

	s.dispatch(model.RecipientStudent, assignment.StudentID, model.NotifyAssignmentApproved,
		"Connection Approved",
		"Your counselor has accepted your connection request.",
		fmt.Sprintf("/student/connections/%d", assignment.ID))
	s.record(assignment.StudentID, model.ActivityConnectionApproved, "Connection request approved")

	return assignment, nil
}

// Reject 只允许该 assignment 上指名的顾问执行，只从 pending 出发
func (s *AssignmentService) Reject(assignmentID, counselorID uint) (*model.Assignment, error) {
	assignment, err := s.load(assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.CounselorID != counselorID {
		return nil, util.ErrPermissionDenied
	}

	if err := s.transition(assignment, model.AssignmentRejected, nil); err != nil {
		return nil, err
	}

	s.dispatch(model.RecipientStudent, assignment.StudentID, model.NotifyAssignmentRejected,
		"Connection Declined",
		"Your connection request was declined. You can request a different counselor.",
		"/student/counselors")
	s.record(assignment.StudentID, model.ActivityConnectionRejected, "Connection request rejected")

	return assignment, nil
}

// Complete 顾问结束一段已获批的辅导，只从 approved 出发
func (s *AssignmentService) Complete(assignmentID, counselorID uint) (*model.Assignment, error) {
	assignment, err := s.load(assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.CounselorID != counselorID {
		return nil, util.ErrPermissionDenied
	}

	now := time.Now()
	if err := s.transition(assignment, model.AssignmentCompleted, map[string]interface{}{"completed_at": now}); err != nil {
		return nil, err
	}
	assignment.CompletedAt = &now

	s.dispatch(model.RecipientStudent, assignment.StudentID, model.NotifyAssignmentCompleted,
		"Engagement Completed",
		"Your counseling engagement has been marked as completed. You can now leave a review.",
		fmt.Sprintf("/student/connections/%d/review", assignment.ID))
	s.record(assignment.StudentID, model.ActivityConnectionCompleted, "Counseling engagement completed")

	return assignment, nil
}

// Cancel 学生或 assignment 上的顾问都可以取消，只从 approved 出发
func (s *AssignmentService) Cancel(assignmentID, actorUserID uint, actorRole model.UserRole) (*model.Assignment, error) {
	assignment, err := s.load(assignmentID)
	if err != nil {
		return nil, err
	}

	switch actorRole {
	case model.Student:
		if assignment.StudentID != actorUserID {
			return nil, util.ErrPermissionDenied
		}
	case model.RoleCounselor:
		counselor, err := s.counselors.FindByUserID(actorUserID)
		if err != nil || counselor.ID != assignment.CounselorID {
			return nil, util.ErrPermissionDenied
		}
	case model.Admin:
		// 管理员可以代任何一方取消
	default:
		return nil, util.ErrPermissionDenied
	}

	if err := s.transition(assignment, model.AssignmentCancelled, nil); err != nil {
		return nil, err
	}

	recipientType := model.RecipientCounselor
	recipientID := uint(0)
	if counselor, err := s.counselors.FindByID(assignment.CounselorID); err == nil {
		recipientID = counselor.UserID
	}
	if actorRole == model.RoleCounselor {
		recipientType = model.RecipientStudent
		recipientID = assignment.StudentID
	}
	if recipientID != 0 {
		s.dispatch(recipientType, recipientID, model.NotifyAssignmentCancelled,
			"Engagement Cancelled",
			"The counseling engagement has been cancelled.",
			"")
	}
	s.record(actorUserID, model.ActivityConnectionCancelled, "Counseling engagement cancelled")

	return assignment, nil
}

func (s *AssignmentService) ListForStudent(studentID uint) ([]model.Assignment, error) {
	return s.store.ListByStudent(studentID)
}

func (s *AssignmentService) ListForCounselor(counselorID uint) ([]model.Assignment, error) {
	return s.store.ListByCounselor(counselorID)
}

// SweepStalePending 自动拒绝超时未处理的 pending 请求。
// 走同一套 CAS 迁移，日志仍然是唯一事实来源；输掉竞争的行直接跳过。
func (s *AssignmentService) SweepStalePending(ttl time.Duration) (int, error) {
	stale, err := s.store.ListStalePending(time.Now().Add(-ttl))
	if err != nil {
		return 0, err
	}

	swept := 0
	for i := range stale {
		a := &stale[i]
		ok, err := s.store.UpdateStatusCAS(a.ID, model.AssignmentPending, model.AssignmentRejected, nil)
		if err != nil {
			return swept, err
		}
		if !ok {
			continue
		}
		swept++
		s.dispatch(model.RecipientStudent, a.StudentID, model.NotifyAssignmentExpired,
			"Request Expired",
			"Your connection request expired without a response. Please try another counselor.",
			"/student/counselors")
	}
	return swept, nil
}

func (s *AssignmentService) load(assignmentID uint) (*model.Assignment, error) {
	assignment, err := s.store.FindByID(assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	return assignment, nil
}

// transition 校验状态图，然后用 compare-and-set 落库。
// CAS 落空说明并发迁移先赢了，对调用方同样是 ErrInvalidTransition。
func (s *AssignmentService) transition(assignment *model.Assignment, to model.AssignmentStatus, fields map[string]interface{}) error {
	if !assignment.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s → %s", util.ErrInvalidTransition, assignment.Status, to)
	}
	ok, err := s.store.UpdateStatusCAS(assignment.ID, assignment.Status, to, fields)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s → %s", util.ErrInvalidTransition, assignment.Status, to)
	}
	assignment.Status = to
	return nil
}

// dispatch 尽力而为的通知：失败只记日志，绝不回滚已完成的状态迁移
func (s *AssignmentService) dispatch(recipientType string, recipientID uint, notifyType, title, message, actionURL string) {
	if err := s.notifier.Notify(recipientType, recipientID, notifyType, title, message, actionURL); err != nil {
		s.log.Warn("notification dispatch failed",
			zap.String("type", notifyType),
			zap.Uint("recipient", recipientID),
			zap.Error(err))
	}
}

func (s *AssignmentService) record(userID uint, activityType, description string) {
	err := s.activity.Create(&model.ActivityLog{
		UserID:       userID,
		ActivityType: activityType,
		Description:  description,
	})
	if err != nil {
		s.log.Warn("activity log write failed", zap.String("type", activityType), zap.Error(err))
	}
}
