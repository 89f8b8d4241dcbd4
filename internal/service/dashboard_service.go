package service

import (
	"edu_consult_backend/internal/model"
	"edu_consult_backend/internal/repository"
)

// StudentDashboard 学生首页聚合视图
type StudentDashboard struct {
	Profile          *model.StudentProfile `json:"profile"`
	ActiveCounselor  *model.Counselor      `json:"activeCounselor"`
	Connections      []model.Assignment    `json:"connections"`
	UnreadCount      int64                 `json:"unreadCount"`
	RecentActivities []model.ActivityLog   `json:"recentActivities"`
}

// CounselorDashboard 顾问首页聚合视图，统计全部由 assignment 日志派生
type CounselorDashboard struct {
	Counselor       *model.Counselor   `json:"counselor"`
	Stats           CounselorStats     `json:"stats"`
	PendingRequests []model.Assignment `json:"pendingRequests"`
	ActiveStudents  []model.Assignment `json:"activeStudents"`
	UnreadCount     int64              `json:"unreadCount"`
}

type DashboardService struct {
	StudentRepo    *repository.StudentRepository
	AssignmentRepo *repository.AssignmentRepository
	ActivityRepo   *repository.ActivityRepository
	Counselors     *CounselorService
	Stats          *StatsService
	Notifications  *NotificationService
}

func NewDashboardService(
	studentRepo *repository.StudentRepository,
	assignmentRepo *repository.AssignmentRepository,
	activityRepo *repository.ActivityRepository,
	counselors *CounselorService,
	stats *StatsService,
	notifications *NotificationService,
) *DashboardService {
	return &DashboardService{
		StudentRepo:    studentRepo,
		AssignmentRepo: assignmentRepo,
		ActivityRepo:   activityRepo,
		Counselors:     counselors,
		Stats:          stats,
		Notifications:  notifications,
	}
}

func (s *DashboardService) StudentDashboard(userID uint) (*StudentDashboard, error) {
	dashboard := &StudentDashboard{}

	// 画像可以为空，首次登录还没填
	if profile, err := s.StudentRepo.FindByUserID(userID); err == nil {
		dashboard.Profile = profile
	}

	connections, err := s.AssignmentRepo.ListByStudent(userID)
	if err != nil {
		return nil, err
	}
	dashboard.Connections = connections

	active, err := s.Stats.StudentActiveCounselor(userID)
	if err != nil {
		return nil, err
	}
	dashboard.ActiveCounselor = active

	if unread, err := s.Notifications.CountUnread(userID); err == nil {
		dashboard.UnreadCount = unread
	}
	if activities, err := s.ActivityRepo.ListByUser(userID, 10); err == nil {
		dashboard.RecentActivities = activities
	}
	return dashboard, nil
}

func (s *DashboardService) CounselorDashboard(userID uint) (*CounselorDashboard, error) {
	counselor, err := s.Counselors.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.Stats.CounselorStats(counselor.ID)
	if err != nil {
		return nil, err
	}

	pending, err := s.AssignmentRepo.ListByCounselorAndStatus(counselor.ID, model.AssignmentPending)
	if err != nil {
		return nil, err
	}
	active, err := s.AssignmentRepo.ListByCounselorAndStatus(counselor.ID, model.AssignmentApproved)
	if err != nil {
		return nil, err
	}

	dashboard := &CounselorDashboard{
		Counselor:       counselor,
		Stats:           stats,
		PendingRequests: pending,
		ActiveStudents:  active,
	}
	if unread, err := s.Notifications.CountUnread(userID); err == nil {
		dashboard.UnreadCount = unread
	}
	return dashboard, nil
}

// PublicCounselorStats 顾问详情页展示的统计，任何登录用户可见
func (s *DashboardService) PublicCounselorStats(counselorID uint) (CounselorStats, error) {
	if _, err := s.Counselors.GetByID(counselorID); err != nil {
		return CounselorStats{}, err
	}
	return s.Stats.CounselorStats(counselorID)
}
