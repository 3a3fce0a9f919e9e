package usecase

import (
	"context"
	"errors"
	"strings"

	"storynest/pkg/apperr"
	"storynest/pkg/logger"
	"storynest/pkg/models"
	"storynest/pkg/queue"
	"storynest/pkg/realtime"
	"storynest/services/content/internal/entity"
	"storynest/services/content/internal/repo/cache"
	"storynest/services/content/internal/repo/persistent"

	"gorm.io/gorm"
)

const maxCommentLength = 2000

type FeedbackUseCase interface {
	// Submit records the user's rating and comment for a content item,
	// replacing any earlier submission.
	Submit(ctx context.Context, userID, contentID string, rating int, comment string) (*entity.Feedback, error)
	List(ctx context.Context, contentID string) (*entity.FeedbackSummary, error)
	// Respond adds an admin reply and notifies the feedback author.
	Respond(ctx context.Context, adminID string, role models.UserType, feedbackID, text string) (*entity.FeedbackResponse, error)
	// Metrics lists every content item with its feedback count and average
	// rating, for admins.
	Metrics(ctx context.Context, role models.UserType) ([]*entity.ContentMetrics, error)
}

type feedbackUseCase struct {
	feedbackRepo persistent.FeedbackRepository
	contentRepo  persistent.ContentRepository
	ratings      cache.RatingCache
	tasks        TaskPublisher
	changes      changeNotifier
	logger       *logger.Logger
}

func NewFeedbackUseCase(
	feedbackRepo persistent.FeedbackRepository,
	contentRepo persistent.ContentRepository,
	ratings cache.RatingCache,
	tasks TaskPublisher,
	publisher realtime.Publisher,
	logger *logger.Logger,
) FeedbackUseCase {
	return &feedbackUseCase{
		feedbackRepo: feedbackRepo,
		contentRepo:  contentRepo,
		ratings:      ratings,
		tasks:        tasks,
		changes:      newChangeNotifier(publisher, logger),
		logger:       logger,
	}
}

func (uc *feedbackUseCase) Submit(ctx context.Context, userID, contentID string, rating int, comment string) (*entity.Feedback, error) {
	if rating < models.MinRating || rating > models.MaxRating {
		return nil, apperr.New(apperr.KindInvalidInput, "Rating must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > maxCommentLength {
		return nil, apperr.New(apperr.KindInvalidInput, "Comment is too long")
	}

	if _, err := uc.contentRepo.GetByID(ctx, contentID); err != nil {
		return nil, apperr.Wrap(err, apperr.KindOf(err), "Content not found")
	}

	before, err := uc.feedbackRepo.GetByUserAndContent(ctx, userID, contentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to save feedback")
	}

	draft := &entity.Feedback{UserID: userID, ContentID: contentID, Rating: rating}
	if comment != "" {
		draft.Comment = &comment
	}

	stored, err := uc.feedbackRepo.Upsert(ctx, draft)
	if err != nil {
		uc.logger.Error("Failed to upsert feedback for %s on %s: %v", userID, contentID, err)
		return nil, apperr.Wrap(err, apperr.KindOf(err), "Failed to save feedback")
	}

	if uc.ratings != nil {
		if err := uc.ratings.Invalidate(ctx, contentID); err != nil {
			uc.logger.Warn("Failed to invalidate rating cache for %s: %v", contentID, err)
		}
	}

	if before == nil {
		uc.changes.notify(ctx, feedbackTable, realtime.EventInsert, stored.Row(), nil)
	} else {
		uc.changes.notify(ctx, feedbackTable, realtime.EventUpdate, stored.Row(), before.Row())
	}
	return stored, nil
}

func (uc *feedbackUseCase) List(ctx context.Context, contentID string) (*entity.FeedbackSummary, error) {
	items, err := uc.feedbackRepo.ListByContent(ctx, contentID)
	if err != nil {
		uc.logger.Error("Failed to list feedback for %s: %v", contentID, err)
		return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to load feedback")
	}

	average, _, err := uc.rating(ctx, contentID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to load feedback")
	}

	return &entity.FeedbackSummary{
		Feedback:      items,
		AverageRating: average,
		Count:         len(items),
	}, nil
}

// rating returns the average rating and feedback count, preferring the cache.
func (uc *feedbackUseCase) rating(ctx context.Context, contentID string) (float64, int64, error) {
	if uc.ratings != nil {
		average, count, ok, err := uc.ratings.Get(ctx, contentID)
		if err != nil {
			uc.logger.Warn("Rating cache read failed for %s: %v", contentID, err)
		} else if ok {
			return average, count, nil
		}
	}

	average, count, err := uc.feedbackRepo.Rating(ctx, contentID)
	if err != nil {
		return 0, 0, err
	}

	if uc.ratings != nil {
		if err := uc.ratings.Set(ctx, contentID, average, count); err != nil {
			uc.logger.Warn("Rating cache write failed for %s: %v", contentID, err)
		}
	}
	return average, count, nil
}

func (uc *feedbackUseCase) Metrics(ctx context.Context, role models.UserType) ([]*entity.ContentMetrics, error) {
	if role != models.UserTypeAdmin {
		return nil, apperr.New(apperr.KindForbidden, "Only admins can view content metrics")
	}

	items, err := uc.contentRepo.List(ctx, entity.ContentFilter{})
	if err != nil {
		uc.logger.Error("Failed to list content for metrics: %v", err)
		return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to load content metrics")
	}

	metrics := make([]*entity.ContentMetrics, 0, len(items))
	for _, item := range items {
		average, count, err := uc.rating(ctx, item.ID)
		if err != nil {
			uc.logger.Error("Failed to load rating for %s: %v", item.ID, err)
			return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to load content metrics")
		}
		entry := &entity.ContentMetrics{Content: *item, FeedbackCount: count}
		if count > 0 {
			avg := average
			entry.AverageRating = &avg
		}
		metrics = append(metrics, entry)
	}
	return metrics, nil
}

func (uc *feedbackUseCase) Respond(ctx context.Context, adminID string, role models.UserType, feedbackID, text string) (*entity.FeedbackResponse, error) {
	if role != models.UserTypeAdmin {
		return nil, apperr.New(apperr.KindForbidden, "Only admins can respond to feedback")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "Response is required")
	}
	if len(text) > maxCommentLength {
		return nil, apperr.New(apperr.KindInvalidInput, "Response is too long")
	}

	feedback, err := uc.feedbackRepo.GetByID(ctx, feedbackID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindOf(err), "Feedback not found")
	}

	response := &entity.FeedbackResponse{
		FeedbackID: feedback.ID,
		AdminID:    adminID,
		Response:   text,
	}
	if err := uc.feedbackRepo.CreateResponse(ctx, response); err != nil {
		uc.logger.Error("Failed to create feedback response: %v", err)
		return nil, apperr.Wrap(err, apperr.KindOf(err), "Failed to save response")
	}

	uc.changes.notify(ctx, feedbackResponsesTable, realtime.EventInsert, response, nil)
	uc.notifyAuthor(ctx, feedback, response)
	return response, nil
}

func (uc *feedbackUseCase) notifyAuthor(ctx context.Context, feedback *entity.Feedback, response *entity.FeedbackResponse) {
	if uc.tasks == nil {
		uc.logger.Warn("No task queue, skipping notification for feedback %s", feedback.ID)
		return
	}

	title := "New response to your feedback"
	if content, err := uc.contentRepo.GetByID(ctx, feedback.ContentID); err == nil {
		title = "New response to your feedback on " + content.Title
	}

	task := queue.Task{
		Type:             queue.TaskFeedbackResponse,
		UserIDs:          []string{feedback.UserID},
		Title:            title,
		Message:          response.Response,
		NotificationType: string(models.NotificationInfo),
		FeedbackID:       feedback.ID,
		ContentID:        feedback.ContentID,
		Priority:         5,
	}
	if err := uc.tasks.Publish(ctx, task); err != nil {
		uc.logger.Error("Failed to enqueue feedback notification for %s: %v", feedback.UserID, err)
	}
}
