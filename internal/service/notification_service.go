package service

import (
	"edu_consult_backend/internal/model"
	"edu_consult_backend/internal/repository"
)

// NotificationService 站内通知。尽力而为：写失败由调用方记日志，
// 绝不影响触发它的状态迁移。
type NotificationService struct {
	NotificationRepo *repository.NotificationRepository
}

func NewNotificationService(notificationRepo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{NotificationRepo: notificationRepo}
}

func (s *NotificationService) Notify(recipientType string, recipientID uint, notifyType, title, message, actionURL string) error {
	return s.NotificationRepo.Create(&model.Notification{
		RecipientType: recipientType,
		RecipientID:   recipientID,
		Type:          notifyType,
		Title:         title,
		Message:       message,
		ActionURL:     actionURL,
	})
}

func (s *NotificationService) List(recipientID uint, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.NotificationRepo.ListByRecipient(recipientID, limit)
}

func (s *NotificationService) MarkRead(id string, recipientID uint) error {
	return s.NotificationRepo.MarkRead(id, recipientID)
}

func (s *NotificationService) CountUnread(recipientID uint) (int64, error) {
	return s.NotificationRepo.CountUnread(recipientID)
}
