package repository

import (
	"edu_consult_backend/internal/model"

	"gorm.io/gorm"
)

type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) Create(entry *model.ActivityLog) error {
	return r.DB.Create(entry).Error
}

func (r *ActivityRepository) ListByUser(userID uint, limit int) ([]model.ActivityLog, error) {
	var entries []model.ActivityLog
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
