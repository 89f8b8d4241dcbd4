package repository

import (
	"edu_consult_backend/internal/model"

	"gorm.io/gorm"
)

type CounselorRepository struct {
	DB *gorm.DB
}

func NewCounselorRepository(db *gorm.DB) *CounselorRepository {
	return &CounselorRepository{DB: db}
}

func (r *CounselorRepository) Create(counselor *model.Counselor) error {
	return r.DB.Create(counselor).Error
}

func (r *CounselorRepository) FindByID(id uint) (*model.Counselor, error) {
	var counselor model.Counselor
	err := r.DB.Preload("Coverage").First(&counselor, id).Error
	return &counselor, err
}

func (r *CounselorRepository) FindByUserID(userID uint) (*model.Counselor, error) {
	var counselor model.Counselor
	err := r.DB.Preload("Coverage").Where("user_id = ?", userID).First(&counselor).Error
	return &counselor, err
}

// ListActive 匹配引擎的候选集：所有 active 状态的顾问，带覆盖地
func (r *CounselorRepository) ListActive() ([]model.Counselor, error) {
	var counselors []model.Counselor
	err := r.DB.Preload("Coverage").
		Where("status = ?", model.CounselorActive).
		Order("average_rating DESC").
		Find(&counselors).Error
	return counselors, err
}

// SearchFilter 目录页筛选条件
type SearchFilter struct {
	Specialization string
	Country        string
	Language       string
	MinRating      float64
	MaxRate        float64
	AvailableOnly  bool
}

func (r *CounselorRepository) Search(filter SearchFilter) ([]model.Counselor, error) {
	query := r.DB.Preload("Coverage").Where("status = ?", model.CounselorActive)

	if filter.Specialization != "" {
		query = query.Where("specializations LIKE ?", "%"+filter.Specialization+"%")
	}
	if filter.Language != "" {
		query = query.Where("languages_spoken LIKE ?", "%"+filter.Language+"%")
	}
	if filter.MinRating > 0 {
		query = query.Where("average_rating >= ?", filter.MinRating)
	}
	if filter.MaxRate > 0 {
		query = query.Where("hourly_rate <= ?", filter.MaxRate)
	}
	if filter.AvailableOnly {
		query = query.Where("is_available = ?", true)
	}
	if filter.Country != "" {
		query = query.Joins("JOIN counselor_coverage ON counselor_coverage.counselor_id = counselors.id").
			Where("counselor_coverage.country = ?", filter.Country).
			Distinct("counselors.*")
	}

	var counselors []model.Counselor
	err := query.Order("average_rating DESC").Find(&counselors).Error
	return counselors, err
}

func (r *CounselorRepository) Update(counselor *model.Counselor) error {
	return r.DB.Save(counselor).Error
}

// ReplaceCoverage 重建顾问的覆盖地列表
func (r *CounselorRepository) ReplaceCoverage(counselorID uint, coverage []model.CounselorCoverage) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("counselor_id = ?", counselorID).Delete(&model.CounselorCoverage{}).Error; err != nil {
			return err
		}
		for i := range coverage {
			coverage[i].ID = 0
			coverage[i].CounselorID = counselorID
			if err := tx.Create(&coverage[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateRatingStats 写回由评价表推导出的均分与评价数。
// 这是顾问行上唯一允许的派生字段写回，数值永远来自 AggregateReviews。
func (r *CounselorRepository) UpdateRatingStats(counselorID uint, avgRating float64, totalReviews int) error {
	return r.DB.Model(&model.Counselor{}).
		Where("id = ?", counselorID).
		Updates(map[string]interface{}{
			"average_rating": avgRating,
			"total_reviews":  totalReviews,
		}).Error
}

func (r *CounselorRepository) CountActive() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Counselor{}).Where("status = ?", model.CounselorActive).Count(&count).Error
	return count, err
}
