package service

import (
	"context"

	"ffclash/internal/domain/model"
	"ffclash/internal/platform/logger"
)

// JobQueue is implemented by queue.NotificationQueue.
type JobQueue interface {
	Push(ctx context.Context, job model.NotificationJob) error
}

// NotificationService enqueues outbound messages. Enqueue failures are logged,
// never returned, so a Redis outage does not fail the user's request.
type NotificationService struct {
	queue JobQueue
}

func NewNotificationService(queue JobQueue) *NotificationService {
	return &NotificationService{queue: queue}
}

func (s *NotificationService) AlertAdmins(ctx context.Context, message string) {
	s.push(ctx, model.NotificationJob{Kind: model.NotificationAdminAlert, Body: message})
}

func (s *NotificationService) SendEmail(ctx context.Context, to, subject, body string) {
	s.push(ctx, model.NotificationJob{Kind: model.NotificationEmail, To: to, Subject: subject, Body: body})
}

func (s *NotificationService) push(ctx context.Context, job model.NotificationJob) {
	if s == nil || s.queue == nil {
		return
	}
	if err := s.queue.Push(ctx, job); err != nil {
		logger.WithField("kind", job.Kind).Errorf("failed to enqueue notification: %v", err)
	}
}
