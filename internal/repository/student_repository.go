package repository

import (
	"edu_consult_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

func (r *StudentRepository) FindByUserID(userID uint) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	err := r.DB.Where("user_id = ?", userID).First(&profile).Error
	return &profile, err
}

// Upsert 按 user_id 覆盖画像，一个学生只有一份
func (r *StudentRepository) Upsert(profile *model.StudentProfile) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"fields_of_study", "target_countries", "preferred_languages", "budget_band", "urgency",
		}),
	}).Create(profile).Error
}
