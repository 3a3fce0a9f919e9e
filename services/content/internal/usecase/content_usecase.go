package usecase

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"storynest/pkg/apperr"
	"storynest/pkg/logger"
	"storynest/pkg/models"
	"storynest/pkg/realtime"
	"storynest/services/content/internal/entity"
	"storynest/services/content/internal/repo/persistent"

	"github.com/google/uuid"
)

// ObjectStorage stores uploaded files and returns their public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Upload is a media file attached to new content.
type Upload struct {
	File        io.Reader
	Filename    string
	ContentType string
}

type ContentUseCase interface {
	List(ctx context.Context, filter entity.ContentFilter) ([]*entity.Content, error)
	Get(ctx context.Context, id string) (*entity.Content, error)
	// Create publishes new content. Only teachers and admins may call it.
	Create(ctx context.Context, userID string, role models.UserType, draft entity.ContentDraft, upload *Upload) (*entity.Content, error)
}

type contentUseCase struct {
	contentRepo persistent.ContentRepository
	storage     ObjectStorage
	changes     changeNotifier
	logger      *logger.Logger
}

func NewContentUseCase(
	contentRepo persistent.ContentRepository,
	storage ObjectStorage,
	publisher realtime.Publisher,
	logger *logger.Logger,
) ContentUseCase {
	return &contentUseCase{
		contentRepo: contentRepo,
		storage:     storage,
		changes:     newChangeNotifier(publisher, logger),
		logger:      logger,
	}
}

func (uc *contentUseCase) List(ctx context.Context, filter entity.ContentFilter) ([]*entity.Content, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, apperr.Newf(apperr.KindInvalidInput, "Unknown content type %q", filter.Type)
	}
	items, err := uc.contentRepo.List(ctx, filter)
	if err != nil {
		uc.logger.Error("Failed to list content: %v", err)
		return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to list content")
	}
	return items, nil
}

func (uc *contentUseCase) Get(ctx context.Context, id string) (*entity.Content, error) {
	content, err := uc.contentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindOf(err), "Content not found")
	}
	return content, nil
}

func (uc *contentUseCase) Create(ctx context.Context, userID string, role models.UserType, draft entity.ContentDraft, upload *Upload) (*entity.Content, error) {
	if !role.CanUpload() {
		return nil, apperr.New(apperr.KindForbidden, "Only teachers and admins can upload content")
	}

	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "Title is required")
	}
	if !draft.Type.Valid() {
		return nil, apperr.New(apperr.KindInvalidInput, "Type must be story, video or quiz")
	}

	contentURL := strings.TrimSpace(draft.URL)
	if upload != nil {
		fileKey := fmt.Sprintf("content/%s/%s%s", draft.Type, uuid.New().String(), strings.ToLower(filepath.Ext(upload.Filename)))
		contentType := upload.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		uploadedURL, err := uc.storage.Upload(ctx, fileKey, upload.File, contentType)
		if err != nil {
			uc.logger.Error("Failed to upload content file: %v", err)
			return nil, apperr.Wrap(err, apperr.KindUnavailable, "Failed to upload file")
		}
		contentURL = uploadedURL
	} else if !validURL(contentURL) {
		return nil, apperr.New(apperr.KindInvalidInput, "A valid http(s) URL or a file is required")
	}

	content := &entity.Content{
		Title:     title,
		Type:      draft.Type,
		URL:       contentURL,
		CreatedBy: &userID,
	}
	if err := uc.contentRepo.Create(ctx, content); err != nil {
		uc.logger.Error("Failed to create content: %v", err)
		return nil, apperr.Wrap(err, apperr.KindOf(err), "Failed to create content")
	}

	uc.logger.Info("Content %s (%s) created by %s", content.ID, content.Type, userID)
	uc.changes.notify(ctx, contentTable, realtime.EventInsert, content, nil)
	return content, nil
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
