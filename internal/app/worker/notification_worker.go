package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ffclash/internal/domain/model"
	"ffclash/internal/platform/logger"
	"ffclash/internal/platform/queue"

	"github.com/sirupsen/logrus"
)

const maxDeliveryAttempts = 3

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type AlertSender interface {
	SendAlert(ctx context.Context, message string) error
}

type NotificationWorker struct {
	queue      *queue.NotificationQueue
	mailer     EmailSender
	alerts     AlertSender
	popTimeout time.Duration
}

func NewNotificationWorker(q *queue.NotificationQueue, mailer EmailSender, alerts AlertSender) *NotificationWorker {
	return &NotificationWorker{
		queue:      q,
		mailer:     mailer,
		alerts:     alerts,
		popTimeout: 5 * time.Second,
	}
}

func (w *NotificationWorker) Start(ctx context.Context) {
	logger.Infof("Notification worker started, listening to queue: %s", w.queue.Name())
	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification worker stopping...")
			return
		default:
		}

		job, err := w.queue.Pop(ctx, w.popTimeout)
		if err != nil {
			if errors.Is(err, queue.ErrEmpty) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue // loop re-checks ctx
			}
			logger.Errorf("Failed to pop from notification queue '%s': %v", w.queue.Name(), err)
			sleep(ctx, 5*time.Second) // Wait before retrying on other errors
			continue
		}

		if err := w.Handle(ctx, job); err != nil {
			w.retry(ctx, job, err)
		}
	}
}

// Handle delivers one job.
func (w *NotificationWorker) Handle(ctx context.Context, job *model.NotificationJob) error {
	switch job.Kind {
	case model.NotificationEmail:
		if job.To == "" {
			return fmt.Errorf("email job without recipient")
		}
		return w.mailer.SendEmail(ctx, job.To, job.Subject, job.Body)
	case model.NotificationAdminAlert:
		return w.alerts.SendAlert(ctx, job.Body)
	default:
		logger.Warnf("Dropping notification job with unknown kind %q", job.Kind)
		return nil
	}
}

func (w *NotificationWorker) retry(ctx context.Context, job *model.NotificationJob, cause error) {
	job.Attempts++
	entry := logger.WithFields(logrus.Fields{"kind": job.Kind, "attempts": job.Attempts})
	if job.Attempts >= maxDeliveryAttempts {
		entry.Errorf("Giving up on notification: %v", cause)
		return
	}
	entry.Warnf("Notification delivery failed, re-queueing: %v", cause)
	if err := w.queue.Push(ctx, *job); err != nil {
		entry.Errorf("Failed to re-queue notification: %v", err)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
