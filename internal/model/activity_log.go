package model

const (
	ActivityConnectionRequest   = "connection_request"
	ActivityConnectionApproved  = "connection_approved"
	ActivityConnectionRejected  = "connection_rejected"
	ActivityConnectionCompleted = "connection_completed"
	ActivityConnectionCancelled = "connection_cancelled"
	ActivityReviewSubmitted     = "review_submitted"
)

// ActivityLog 用户操作流水，只追加
// swagger:model ActivityLog
type ActivityLog struct {
	BaseModel
	UserID       uint   `gorm:"index;not null" json:"userId"`
	ActivityType string `gorm:"size:50;not null" json:"activityType"`
	Description  string `gorm:"size:500" json:"description"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
