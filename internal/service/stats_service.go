package service

import (
	"edu_consult_backend/internal/model"
	"edu_consult_backend/internal/repository"
	"math"
)

// CounselorStats 顾问侧仪表盘的派生统计。
// 永远从 assignment 日志重新计算，绝不作为独立字段存储，
// 多个面板只要读同一份日志就不可能互相矛盾。
type CounselorStats struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	Pending     int `json:"pending"`
	Completed   int `json:"completed"`
	SuccessRate int `json:"successRate"` // 0-100
}

// CounselorStatsFromLog derives counselor stats from an assignment log slice.
// Pure function: callers supply the slice (typically all assignments for one
// counselor). Rejected/cancelled rows count as non-contributing history.
func CounselorStatsFromLog(log []model.Assignment) CounselorStats {
	var stats CounselorStats
	for _, a := range log {
		switch a.Status {
		case model.AssignmentRejected, model.AssignmentCancelled:
			continue
		case model.AssignmentApproved:
			stats.Active++
		case model.AssignmentPending:
			stats.Pending++
		case model.AssignmentCompleted:
			stats.Completed++
		}
		stats.Total++
	}
	if stats.Total > 0 {
		stats.SuccessRate = int(math.Round(float64(stats.Completed) / float64(stats.Total) * 100))
	}
	return stats
}

// ActiveCounselorID 学生当前的顾问：最近获批且尚未完成的 assignment 的顾问，
// 以 approved_at 最晚者为准。派生视图，不落库。
func ActiveCounselorID(log []model.Assignment) (uint, bool) {
	var (
		found     bool
		counselor uint
		latest    *model.Assignment
	)
	for i := range log {
		a := &log[i]
		if a.Status != model.AssignmentApproved || a.ApprovedAt == nil {
			continue
		}
		if latest == nil || a.ApprovedAt.After(*latest.ApprovedAt) {
			latest = a
			counselor = a.CounselorID
			found = true
		}
	}
	return counselor, found
}

// PlatformStats 管理端首页统计
type PlatformStats struct {
	TotalStudents    int64 `json:"totalStudents"`
	ActiveCounselors int64 `json:"activeCounselors"`
	TotalAssignments int64 `json:"totalAssignments"`
	CompletedCount   int64 `json:"completedCount"`
	SuccessRate      int   `json:"successRate"`
}

type StatsService struct {
	AssignmentRepo *repository.AssignmentRepository
	CounselorRepo  *repository.CounselorRepository
	UserRepo       *repository.UserRepository
}

func NewStatsService(
	assignmentRepo *repository.AssignmentRepository,
	counselorRepo *repository.CounselorRepository,
	userRepo *repository.UserRepository,
) *StatsService {
	return &StatsService{
		AssignmentRepo: assignmentRepo,
		CounselorRepo:  counselorRepo,
		UserRepo:       userRepo,
	}
}

func (s *StatsService) CounselorStats(counselorID uint) (CounselorStats, error) {
	log, err := s.AssignmentRepo.ListByCounselor(counselorID)
	if err != nil {
		return CounselorStats{}, err
	}
	return CounselorStatsFromLog(log), nil
}

// StudentActiveCounselor 返回学生当前顾问的完整画像，没有则返回 nil
func (s *StatsService) StudentActiveCounselor(studentID uint) (*model.Counselor, error) {
	log, err := s.AssignmentRepo.ListByStudent(studentID)
	if err != nil {
		return nil, err
	}
	counselorID, ok := ActiveCounselorID(log)
	if !ok {
		return nil, nil
	}
	return s.CounselorRepo.FindByID(counselorID)
}

func (s *StatsService) PlatformStats() (PlatformStats, error) {
	var stats PlatformStats
	var err error

	if stats.TotalStudents, err = s.UserRepo.CountByRole(model.Student); err != nil {
		return stats, err
	}
	if stats.ActiveCounselors, err = s.CounselorRepo.CountActive(); err != nil {
		return stats, err
	}

	rejected, err := s.AssignmentRepo.CountByStatus(model.AssignmentRejected)
	if err != nil {
		return stats, err
	}
	cancelled, err := s.AssignmentRepo.CountByStatus(model.AssignmentCancelled)
	if err != nil {
		return stats, err
	}
	all, err := s.AssignmentRepo.CountAll()
	if err != nil {
		return stats, err
	}
	if stats.CompletedCount, err = s.AssignmentRepo.CountByStatus(model.AssignmentCompleted); err != nil {
		return stats, err
	}

	stats.TotalAssignments = all - rejected - cancelled
	if stats.TotalAssignments > 0 {
		stats.SuccessRate = int(math.Round(float64(stats.CompletedCount) / float64(stats.TotalAssignments) * 100))
	}
	return stats, nil
}
