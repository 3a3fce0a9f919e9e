package usecase

import (
	"context"
	"fmt"

	"storynest/pkg/apperr"
	"storynest/pkg/metrics"
	"storynest/pkg/models"
	"storynest/pkg/queue"
)

func (uc *notificationUseCase) HandleTask(ctx context.Context, task queue.Task) error {
	err := uc.handleTask(ctx, task)

	outcome := "ok"
	switch {
	case apperr.Is(err, apperr.KindInvalidInput):
		// Retrying a bad task cannot succeed.
		outcome = "dropped"
		uc.logger.Error("[NOTIFICATION HANDLER] Dropping %s task: %v", task.Type, err)
		err = nil
	case err != nil:
		outcome = "failed"
	}
	metrics.QueueTasks.WithLabelValues(string(task.Type), outcome).Inc()
	return err
}

func (uc *notificationUseCase) handleTask(ctx context.Context, task queue.Task) error {
	uc.logger.Info("[NOTIFICATION HANDLER] Processing %s task for %d users (all=%t)", task.Type, len(task.UserIDs), task.All)

	msg, err := newMessage(task.Title, task.Message, models.NotificationType(task.NotificationType))
	if err != nil {
		return err
	}

	recipients := task.UserIDs
	switch task.Type {
	case queue.TaskNotification, queue.TaskFeedbackResponse:
	case queue.TaskBroadcast:
		if task.All {
			if recipients, err = uc.notificationRepo.ProfileIDs(ctx); err != nil {
				return fmt.Errorf("failed to load broadcast recipients: %w", err)
			}
		}
	default:
		return apperr.Newf(apperr.KindInvalidInput, "unknown task type %q", task.Type)
	}

	created, err := uc.deliver(ctx, recipients, msg)
	if err != nil {
		return err
	}
	uc.logger.Info("[NOTIFICATION HANDLER] Delivered %s task to %d users", task.Type, len(created))
	return nil
}
