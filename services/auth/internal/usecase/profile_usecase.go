package usecase

import (
	"context"
	"errors"
	"io"
	"strings"

	"storynest/pkg/apperr"
	"storynest/pkg/logger"
	"storynest/pkg/models"
	"storynest/pkg/realtime"
	"storynest/services/auth/internal/entity"
	"storynest/services/auth/internal/repo/persistent"

	"gorm.io/gorm"
)

const profilesTable = "profiles"

// ObjectStorage stores uploaded files and returns their public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

type ProfileUseCase interface {
	// GetOrCreate returns the user's profile, inserting the default one when
	// it is missing.
	GetOrCreate(ctx context.Context, userID string) (*entity.Profile, error)
	Get(ctx context.Context, id string) (*entity.Profile, error)
	Update(ctx context.Context, userID string, patch entity.ProfilePatch) (*entity.Profile, error)
	UploadAvatar(ctx context.Context, userID string, file io.Reader, fileKey, contentType string) (*entity.Profile, error)
	List(ctx context.Context) ([]*entity.Profile, error)
	UpdateUserType(ctx context.Context, id string, userType models.UserType) (*entity.Profile, error)
	// Announce publishes a freshly inserted profile.
	Announce(ctx context.Context, profile *entity.Profile)
}

type profileUseCase struct {
	profiles   persistent.ProfileRepository
	identities persistent.IdentityRepository
	storage    ObjectStorage
	publisher  realtime.Publisher
	logger     *logger.Logger
}

func NewProfileUseCase(
	profiles persistent.ProfileRepository,
	identities persistent.IdentityRepository,
	storage ObjectStorage,
	publisher realtime.Publisher,
	logger *logger.Logger,
) ProfileUseCase {
	if publisher == nil {
		publisher = realtime.NopPublisher{}
	}
	return &profileUseCase{
		profiles:   profiles,
		identities: identities,
		storage:    storage,
		publisher:  publisher,
		logger:     logger,
	}
}

// defaultProfile is the profile every new identity starts with: named after
// the local part of the email, with the least privileged user type.
func defaultProfile(user *entity.User) *entity.Profile {
	name := user.Email
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}
	return &entity.Profile{
		ID:       user.ID,
		Name:     name,
		Email:    user.Email,
		UserType: models.UserTypeChild,
	}
}

func (uc *profileUseCase) GetOrCreate(ctx context.Context, userID string) (*entity.Profile, error) {
	profile, err := uc.profiles.GetByID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		uc.logger.Error("Failed to load profile %s: %v", userID, err)
		return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to load profile")
	}

	user, err := uc.identities.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindOf(err), "User not found")
	}

	profile, created, err := uc.profiles.CreateIfMissing(ctx, defaultProfile(user))
	if err != nil {
		uc.logger.Error("Failed to create profile %s: %v", userID, err)
		return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to create profile")
	}
	if created {
		uc.Announce(ctx, profile)
	}
	return profile, nil
}

func (uc *profileUseCase) Get(ctx context.Context, id string) (*entity.Profile, error) {
	profile, err := uc.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindOf(err), "Profile not found")
	}
	return profile, nil
}

func (uc *profileUseCase) Update(ctx context.Context, userID string, patch entity.ProfilePatch) (*entity.Profile, error) {
	fields := make(map[string]interface{})
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.New(apperr.KindInvalidInput, "Name cannot be empty")
		}
		fields["name"] = name
	}
	if patch.Bio != nil {
		if bio := strings.TrimSpace(*patch.Bio); bio != "" {
			fields["bio"] = bio
		} else {
			fields["bio"] = nil
		}
	}
	return uc.update(ctx, userID, fields)
}

func (uc *profileUseCase) UploadAvatar(ctx context.Context, userID string, file io.Reader, fileKey, contentType string) (*entity.Profile, error) {
	if _, err := uc.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	avatarURL, err := uc.storage.Upload(ctx, fileKey, file, contentType)
	if err != nil {
		uc.logger.Error("Failed to upload avatar: %v", err)
		return nil, apperr.Wrap(err, apperr.KindUnavailable, "Failed to upload avatar")
	}
	return uc.update(ctx, userID, map[string]interface{}{"avatar_url": avatarURL})
}

func (uc *profileUseCase) List(ctx context.Context) ([]*entity.Profile, error) {
	profiles, err := uc.profiles.List(ctx)
	if err != nil {
		uc.logger.Error("Failed to list profiles: %v", err)
		return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to fetch users")
	}
	return profiles, nil
}

func (uc *profileUseCase) UpdateUserType(ctx context.Context, id string, userType models.UserType) (*entity.Profile, error) {
	if !userType.Valid() {
		return nil, apperr.Newf(apperr.KindInvalidInput, "Unknown user type %q", userType)
	}
	return uc.update(ctx, id, map[string]interface{}{"user_type": userType})
}

func (uc *profileUseCase) Announce(ctx context.Context, profile *entity.Profile) {
	uc.publish(ctx, realtime.EventInsert, profile, nil)
}

func (uc *profileUseCase) update(ctx context.Context, id string, fields map[string]interface{}) (*entity.Profile, error) {
	before, err := uc.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindOf(err), "Profile not found")
	}

	profile, err := uc.profiles.Update(ctx, id, fields)
	if err != nil {
		uc.logger.Error("Failed to update profile %s: %v", id, err)
		return nil, apperr.Wrap(err, apperr.KindOf(err), "Failed to update profile")
	}
	uc.publish(ctx, realtime.EventUpdate, profile, before)
	return profile, nil
}

func (uc *profileUseCase) publish(ctx context.Context, event realtime.Event, profile, old *entity.Profile) {
	var oldRecord interface{}
	if old != nil {
		oldRecord = old
	}
	change, err := realtime.NewChange(profilesTable, event, profile, oldRecord)
	if err != nil {
		uc.logger.Warn("Failed to encode profile change: %v", err)
		return
	}
	if err := uc.publisher.Publish(ctx, change); err != nil {
		uc.logger.Warn("Failed to publish profile change: %v", err)
	}
}
