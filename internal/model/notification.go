package model

const (
	RecipientStudent   = "student"
	RecipientCounselor = "counselor"
)

const (
	NotifyNewAssignment       = "new_assignment"
	NotifyAssignmentApproved  = "assignment_approved"
	NotifyAssignmentRejected  = "assignment_rejected"
	NotifyAssignmentCompleted = "assignment_completed"
	NotifyAssignmentCancelled = "assignment_cancelled"
	NotifyAssignmentExpired   = "assignment_expired"
)

// Notification 站内通知。通知会出现在推送回执、前端路由等外部上下文里，
// 用 UUID 作主键避免暴露可枚举的自增序号。
// swagger:model Notification
type Notification struct {
	UUIDBase
	RecipientType string `gorm:"size:20;not null" json:"recipientType"`
	RecipientID   uint   `gorm:"index;not null" json:"recipientId"` // users.id
	Type          string `gorm:"size:50;not null" json:"type"`
	Title         string `gorm:"size:255;not null" json:"title"`
	Message       string `gorm:"type:text" json:"message"`
	ActionURL     string `gorm:"size:255" json:"actionUrl"`
	Read          bool   `gorm:"default:false;index" json:"read"`
}

func (Notification) TableName() string {
	return "notifications"
}
