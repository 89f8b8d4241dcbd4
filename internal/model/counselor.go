package model

type CounselorStatus string

const (
	CounselorActive   CounselorStatus = "active"
	CounselorInactive CounselorStatus = "inactive"
)

// swagger:model Counselor
type Counselor struct {
	BaseModel
	UserID          uint               `gorm:"uniqueIndex;not null" json:"userId"`
	FullName        string             `gorm:"size:100;not null" json:"fullName"`
	Bio             string             `gorm:"type:text" json:"bio"`
	Specializations string             `gorm:"size:500" json:"specializations"` // e.g. "University Applications,Scholarship Guidance"
	LanguagesSpoken string             `gorm:"size:255" json:"languagesSpoken"`
	YearsExperience int                `gorm:"default:0" json:"yearsExperience"`
	HourlyRate      float64            `gorm:"default:0" json:"hourlyRate"`
	Currency        string             `gorm:"size:10;default:'USD'" json:"currency"`
	AverageRating   float64            `gorm:"default:0" json:"averageRating"` // 由评价表重新计算写回，不手工维护
	TotalReviews    int                `gorm:"default:0" json:"totalReviews"`
	IsAvailable     bool               `gorm:"default:true" json:"isAvailable"`
	Capacity        int                `gorm:"default:0" json:"capacity"` // 0 表示不限
	Status          CounselorStatus    `gorm:"type:enum('active','inactive');default:'active'" json:"status"`
	Coverage        []CounselorCoverage `gorm:"foreignKey:CounselorID" json:"coverage"`
}

func (Counselor) TableName() string {
	return "counselors"
}

// swagger:model CounselorCoverage
type CounselorCoverage struct {
	BaseModel
	CounselorID       uint   `gorm:"index;not null" json:"counselorId"`
	Country           string `gorm:"size:100;not null" json:"country"`
	StateProvince     string `gorm:"size:100" json:"stateProvince"`
	City              string `gorm:"size:100" json:"city"`
	IsPrimaryLocation bool   `gorm:"default:false" json:"isPrimaryLocation"`
}

func (CounselorCoverage) TableName() string {
	return "counselor_coverage"
}

// swagger:model CounselorReview
type CounselorReview struct {
	BaseModel
	CounselorID    uint   `gorm:"index;not null" json:"counselorId"`
	StudentID      uint   `gorm:"index;not null" json:"studentId"`
	AssignmentID   uint   `gorm:"index;not null" json:"assignmentId"`
	OverallRating  int    `gorm:"not null" json:"overallRating"` // 1-5
	ReviewContent  string `gorm:"type:text" json:"reviewContent"`
	WouldRecommend bool   `gorm:"default:true" json:"wouldRecommend"`
}

func (CounselorReview) TableName() string {
	return "counselor_reviews"
}
