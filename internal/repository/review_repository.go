package repository

import (
	"edu_consult_backend/internal/model"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	DB *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{DB: db}
}

func (r *ReviewRepository) Create(review *model.CounselorReview) error {
	return r.DB.Create(review).Error
}

func (r *ReviewRepository) ListByCounselor(counselorID uint) ([]model.CounselorReview, error) {
	var reviews []model.CounselorReview
	err := r.DB.Where("counselor_id = ?", counselorID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (r *ReviewRepository) ExistsForAssignment(assignmentID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.CounselorReview{}).
		Where("assignment_id = ?", assignmentID).
		Count(&count).Error
	return count > 0, err
}

// AggregateReviews 从评价表重新计算均分与条数，顾问行的派生字段只认这里的结果
func (r *ReviewRepository) AggregateReviews(counselorID uint) (avgRating float64, total int64, err error) {
	row := struct {
		Avg   float64
		Total int64
	}{}
	err = r.DB.Model(&model.CounselorReview{}).
		Select("COALESCE(AVG(overall_rating), 0) AS avg, COUNT(*) AS total").
		Where("counselor_id = ?", counselorID).
		Scan(&row).Error
	return row.Avg, row.Total, err
}
