package model

// StudentProfile 学生申请画像，匹配引擎的输入
// Comma-separated list fields mirror the onboarding form; the matching
// package splits them into canonical sets before scoring.
// swagger:model StudentProfile
type StudentProfile struct {
	BaseModel
	UserID             uint   `gorm:"uniqueIndex;not null" json:"userId"`
	FieldsOfStudy      string `gorm:"size:500" json:"fieldsOfStudy"`      // e.g. "Business,Finance"
	TargetCountries    string `gorm:"size:500" json:"targetCountries"`    // e.g. "Canada,Australia"
	PreferredLanguages string `gorm:"size:255" json:"preferredLanguages"` // e.g. "English,Mandarin"
	BudgetBand         string `gorm:"size:50" json:"budgetBand"`          // low / medium / high
	Urgency            string `gorm:"size:50" json:"urgency"`             // e.g. "this_year"
}

func (StudentProfile) TableName() string {
	return "student_profiles"
}
