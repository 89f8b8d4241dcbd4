package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"edu_consult_backend/internal/matching"
	"edu_consult_backend/internal/repository"
	"edu_consult_backend/internal/util"
	"edu_consult_backend/pkg/monitoring"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// MatchingService 为学生按请求计算顾问匹配。
// 评分本身是纯函数（见 internal/matching），这里只负责取数、并发分摊和指标。
type MatchingService struct {
	StudentRepo *repository.StudentRepository
	Counselors  *CounselorService
	Workers     int
	Logger      *zap.Logger
}

func NewMatchingService(
	studentRepo *repository.StudentRepository,
	counselors *CounselorService,
	workers int,
	logger *zap.Logger,
) *MatchingService {
	if workers <= 0 {
		workers = 8
	}
	return &MatchingService{
		StudentRepo: studentRepo,
		Counselors:  counselors,
		Workers:     workers,
		Logger:      logger,
	}
}

// FindMatches 对候选集并发评分后统一过滤排序。结果从不持久化，
// 每次请求都基于当前画像与目录重算。
func (s *MatchingService) FindMatches(ctx context.Context, studentUserID uint, opts matching.Options) ([]matching.Match, error) {
	start := time.Now()
	matches, err := s.findMatches(ctx, studentUserID, opts)
	monitoring.MatchDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		monitoring.MatchRequests.WithLabelValues("ok").Inc()
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		if opts.PartialOK && matches != nil {
			monitoring.MatchRequests.WithLabelValues("partial").Inc()
			return matches, nil
		}
		monitoring.MatchRequests.WithLabelValues("error").Inc()
	default:
		monitoring.MatchRequests.WithLabelValues("error").Inc()
	}
	return matches, err
}

func (s *MatchingService) findMatches(ctx context.Context, studentUserID uint, opts matching.Options) ([]matching.Match, error) {
	rawProfile, err := s.StudentRepo.FindByUserID(studentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: complete your student profile before requesting matches", util.ErrValidation)
		}
		return nil, err
	}
	student, err := matching.NormalizeStudent(rawProfile)
	if err != nil {
		return nil, err
	}

	candidates, err := s.Counselors.Directory(ctx)
	if err != nil {
		return nil, err
	}

	profiles := make([]matching.CounselorProfile, 0, len(candidates))
	for i := range candidates {
		profile, err := matching.NormalizeCounselor(&candidates[i])
		if err != nil {
			// 目录里出现坏行说明数据已经损坏，整批失败比悄悄漏掉一个候选更好排查
			return nil, fmt.Errorf("counselor %d: %w", candidates[i].ID, err)
		}
		profiles = append(profiles, profile)
	}

	scored, err := s.scoreAll(ctx, student, profiles)
	if err != nil {
		// 取消时 scored 里是已完成的部分，FindMatches 按 PartialOK 决定是否返回
		return matching.Apply(scored, opts), err
	}
	return matching.Apply(scored, opts), nil
}

// scoreAll 把候选集分给固定数量的 worker 并发评分。
// 结果槽位与输入一一对应，汇总后顺序与并发度无关。
func (s *MatchingService) scoreAll(ctx context.Context, student matching.StudentProfile, profiles []matching.CounselorProfile) ([]matching.Match, error) {
	results := make([]*matching.Match, len(profiles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Workers)
	for i := range profiles {
		i := i
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			score, reasons := matching.Score(student, profiles[i])
			results[i] = &matching.Match{
				CounselorID: profiles[i].ID,
				Score:       score,
				Reasons:     reasons,
				Counselor:   profiles[i],
			}
			return nil
		})
	}
	err := g.Wait()

	matches := make([]matching.Match, 0, len(results))
	for _, m := range results {
		if m != nil {
			matches = append(matches, *m)
		}
	}
	if err != nil {
		s.Logger.Warn("match scoring interrupted",
			zap.Int("scored", len(matches)),
			zap.Int("candidates", len(profiles)),
			zap.Error(err))
	}
	return matches, err
}
