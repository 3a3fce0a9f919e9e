package persistent

import (
	"storynest/pkg/models"
	"storynest/services/auth/internal/entity"
)

func ToUserEntity(m *models.Identity) *entity.User {
	if m == nil {
		return nil
	}

	return &entity.User{
		ID:               m.ID,
		Email:            m.Email,
		PasswordHash:     m.PasswordHash,
		EmailConfirmedAt: m.EmailConfirmedAt,
		LastSignInAt:     m.LastSignInAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func ToIdentityModel(e *entity.User) *models.Identity {
	if e == nil {
		return nil
	}

	return &models.Identity{
		ID:               e.ID,
		Email:            e.Email,
		PasswordHash:     e.PasswordHash,
		EmailConfirmedAt: e.EmailConfirmedAt,
		LastSignInAt:     e.LastSignInAt,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func ToProfileEntity(m *models.Profile) *entity.Profile {
	if m == nil {
		return nil
	}

	return &entity.Profile{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		UserType:  m.UserType,
		AvatarURL: m.AvatarURL,
		Bio:       m.Bio,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToProfileModel(e *entity.Profile) *models.Profile {
	if e == nil {
		return nil
	}

	return &models.Profile{
		ID:        e.ID,
		Name:      e.Name,
		Email:     e.Email,
		UserType:  e.UserType,
		AvatarURL: e.AvatarURL,
		Bio:       e.Bio,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func ToRefreshSessionEntity(m *models.RefreshSession) *entity.RefreshSession {
	if m == nil {
		return nil
	}

	return &entity.RefreshSession{
		ID:        m.ID,
		UserID:    m.UserID,
		TokenHash: m.TokenHash,
		UserAgent: m.UserAgent,
		IP:        m.IP,
		ExpiresAt: m.ExpiresAt,
		RevokedAt: m.RevokedAt,
		CreatedAt: m.CreatedAt,
	}
}

func ToRefreshSessionModel(e *entity.RefreshSession) *models.RefreshSession {
	if e == nil {
		return nil
	}

	return &models.RefreshSession{
		ID:        e.ID,
		UserID:    e.UserID,
		TokenHash: e.TokenHash,
		UserAgent: e.UserAgent,
		IP:        e.IP,
		ExpiresAt: e.ExpiresAt,
		RevokedAt: e.RevokedAt,
		CreatedAt: e.CreatedAt,
	}
}
