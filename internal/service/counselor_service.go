package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"edu_consult_backend/internal/model"
	"edu_consult_backend/internal/repository"
	"edu_consult_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const directoryCacheKey = "counselors:directory"

// counselorStore 顾问画像存储切面
type counselorStore interface {
	FindByID(id uint) (*model.Counselor, error)
	FindByUserID(userID uint) (*model.Counselor, error)
	ListActive() ([]model.Counselor, error)
	Search(filter repository.SearchFilter) ([]model.Counselor, error)
	Update(counselor *model.Counselor) error
	ReplaceCoverage(counselorID uint, coverage []model.CounselorCoverage) error
	UpdateRatingStats(counselorID uint, avgRating float64, totalReviews int) error
}

// reviewStore 评价存储切面，AggregateReviews 是派生评分的唯一来源
type reviewStore interface {
	Create(review *model.CounselorReview) error
	ListByCounselor(counselorID uint) ([]model.CounselorReview, error)
	ExistsForAssignment(assignmentID uint) (bool, error)
	AggregateReviews(counselorID uint) (float64, int64, error)
}

type assignmentFinder interface {
	FindByID(id uint) (*model.Assignment, error)
}

// CounselorService 顾问目录与画像。active 顾问全量目录走 Redis 缓存，
// 任何会改变目录内容的写操作（画像、覆盖地、评价）之后都主动失效。
// Redis 不可用时直接回落数据库，缓存永远只是加速器。
type CounselorService struct {
	CounselorRepo  counselorStore
	ReviewRepo     reviewStore
	AssignmentRepo assignmentFinder
	Activity       activityWriter
	Redis          *redis.Client
	CacheTTL       time.Duration
	Logger         *zap.Logger
}

func NewCounselorService(
	counselorRepo counselorStore,
	reviewRepo reviewStore,
	assignmentRepo assignmentFinder,
	activity activityWriter,
	redisClient *redis.Client,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *CounselorService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &CounselorService{
		CounselorRepo:  counselorRepo,
		ReviewRepo:     reviewRepo,
		AssignmentRepo: assignmentRepo,
		Activity:       activity,
		Redis:          redisClient,
		CacheTTL:       cacheTTL,
		Logger:         logger,
	}
}

// Directory 匹配引擎与目录页共用的候选集：全部 active 顾问（带覆盖地）
func (s *CounselorService) Directory(ctx context.Context) ([]model.Counselor, error) {
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, directoryCacheKey).Result(); err == nil {
			var counselors []model.Counselor
			if err := json.Unmarshal([]byte(cached), &counselors); err == nil {
				return counselors, nil
			}
			// 反序列化失败说明缓存格式已过期，丢掉重建
			s.Redis.Del(ctx, directoryCacheKey)
		}
	}

	counselors, err := s.CounselorRepo.ListActive()
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(counselors); err == nil {
			if err := s.Redis.Set(ctx, directoryCacheKey, data, s.CacheTTL).Err(); err != nil {
				s.Logger.Warn("counselor directory cache write failed", zap.Error(err))
			}
		}
	}
	return counselors, nil
}

// InvalidateDirectory 目录内容变化后调用，失效失败只记日志（TTL 会兜底）
func (s *CounselorService) InvalidateDirectory(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, directoryCacheKey).Err(); err != nil {
		s.Logger.Warn("counselor directory cache invalidation failed", zap.Error(err))
	}
}

func (s *CounselorService) Search(filter repository.SearchFilter) ([]model.Counselor, error) {
	return s.CounselorRepo.Search(filter)
}

func (s *CounselorService) GetByID(id uint) (*model.Counselor, error) {
	counselor, err := s.CounselorRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	return counselor, nil
}

func (s *CounselorService) GetByUserID(userID uint) (*model.Counselor, error) {
	counselor, err := s.CounselorRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	return counselor, nil
}

// CounselorProfileUpdate 顾问可自行维护的字段。
// 评分相关派生字段（average_rating / total_reviews）不在其中。
type CounselorProfileUpdate struct {
	FullName        string                    `json:"fullName"`
	Bio             string                    `json:"bio"`
	Specializations string                    `json:"specializations"`
	LanguagesSpoken string                    `json:"languagesSpoken"`
	YearsExperience *int                      `json:"yearsExperience"`
	HourlyRate      *float64                  `json:"hourlyRate"`
	Currency        string                    `json:"currency"`
	IsAvailable     *bool                     `json:"isAvailable"`
	Capacity        *int                      `json:"capacity"`
	Coverage        []model.CounselorCoverage `json:"coverage"`
}

func (s *CounselorService) UpdateProfile(ctx context.Context, userID uint, update CounselorProfileUpdate) (*model.Counselor, error) {
	counselor, err := s.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	if update.FullName != "" {
		counselor.FullName = update.FullName
	}
	if update.Bio != "" {
		counselor.Bio = update.Bio
	}
	if update.Specializations != "" {
		counselor.Specializations = update.Specializations
	}
	if update.LanguagesSpoken != "" {
		counselor.LanguagesSpoken = update.LanguagesSpoken
	}
	if update.YearsExperience != nil {
		if *update.YearsExperience < 0 {
			return nil, fmt.Errorf("%w: yearsExperience cannot be negative", util.ErrValidation)
		}
		counselor.YearsExperience = *update.YearsExperience
	}
	if update.HourlyRate != nil {
		if *update.HourlyRate < 0 {
			return nil, fmt.Errorf("%w: hourlyRate cannot be negative", util.ErrValidation)
		}
		counselor.HourlyRate = *update.HourlyRate
	}
	if update.Currency != "" {
		counselor.Currency = update.Currency
	}
	if update.IsAvailable != nil {
		counselor.IsAvailable = *update.IsAvailable
	}
	if update.Capacity != nil {
		if *update.Capacity < 0 {
			return nil, fmt.Errorf("%w: capacity cannot be negative", util.ErrValidation)
		}
		counselor.Capacity = *update.Capacity
	}

	counselor.Coverage = nil
	if err := s.CounselorRepo.Update(counselor); err != nil {
		return nil, err
	}
	if update.Coverage != nil {
		if err := s.CounselorRepo.ReplaceCoverage(counselor.ID, update.Coverage); err != nil {
			return nil, err
		}
	}

	s.InvalidateDirectory(ctx)
	return s.GetByID(counselor.ID)
}

// ReviewRequest 学生对已完成 engagement 的评价
type ReviewRequest struct {
	OverallRating  int    `json:"overallRating" binding:"required"`
	ReviewContent  string `json:"reviewContent"`
	WouldRecommend *bool  `json:"wouldRecommend"`
}

// SubmitReview 评价只能由该 assignment 的学生针对 completed 状态提交，
// 每个 assignment 一条。提交后立刻从评价表重算均分写回顾问行。
func (s *CounselorService) SubmitReview(ctx context.Context, studentID, assignmentID uint, req ReviewRequest) (*model.CounselorReview, error) {
	if req.OverallRating < 1 || req.OverallRating > 5 {
		return nil, fmt.Errorf("%w: overallRating must be between 1 and 5", util.ErrValidation)
	}

	assignment, err := s.AssignmentRepo.FindByID(assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	if assignment.StudentID != studentID {
		return nil, util.ErrPermissionDenied
	}
	if assignment.Status != model.AssignmentCompleted {
		return nil, fmt.Errorf("%w: only completed engagements can be reviewed", util.ErrInvalidTransition)
	}

	exists, err := s.ReviewRepo.ExistsForAssignment(assignmentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: this engagement has already been reviewed", util.ErrConflict)
	}

	recommend := true
	if req.WouldRecommend != nil {
		recommend = *req.WouldRecommend
	}
	review := &model.CounselorReview{
		CounselorID:    assignment.CounselorID,
		StudentID:      studentID,
		AssignmentID:   assignmentID,
		OverallRating:  req.OverallRating,
		ReviewContent:  req.ReviewContent,
		WouldRecommend: recommend,
	}
	if err := s.ReviewRepo.Create(review); err != nil {
		return nil, err
	}

	avg, total, err := s.ReviewRepo.AggregateReviews(assignment.CounselorID)
	if err != nil {
		return nil, err
	}
	if err := s.CounselorRepo.UpdateRatingStats(assignment.CounselorID, avg, int(total)); err != nil {
		return nil, err
	}

	// 评价与生命周期迁移一样进活动流水，写失败不影响评价本身
	err = s.Activity.Create(&model.ActivityLog{
		UserID:       studentID,
		ActivityType: model.ActivityReviewSubmitted,
		Description:  fmt.Sprintf("Submitted a %d-star review", req.OverallRating),
	})
	if err != nil {
		s.Logger.Warn("activity log write failed", zap.String("type", model.ActivityReviewSubmitted), zap.Error(err))
	}

	s.InvalidateDirectory(ctx)
	return review, nil
}

func (s *CounselorService) ListReviews(counselorID uint) ([]model.CounselorReview, error) {
	return s.ReviewRepo.ListByCounselor(counselorID)
}
