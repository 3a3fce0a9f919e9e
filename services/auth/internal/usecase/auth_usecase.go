package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"storynest/pkg/apperr"
	"storynest/pkg/email"
	"storynest/pkg/jwt"
	"storynest/pkg/logger"
	"storynest/services/auth/internal/entity"
	"storynest/services/auth/internal/repo/cache"
	"storynest/services/auth/internal/repo/persistent"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MinPasswordLength = 6

type AuthUseCase interface {
	SignUp(ctx context.Context, email, password string, info entity.ClientInfo) (*entity.Session, error)
	SignInWithPassword(ctx context.Context, email, password string, info entity.ClientInfo) (*entity.Session, error)
	Refresh(ctx context.Context, refreshToken string, info entity.ClientInfo) (*entity.Session, error)
	ExchangeCode(ctx context.Context, code string, info entity.ClientInfo) (*entity.Session, error)
	SignOut(ctx context.Context, userID string) error
	GetUser(ctx context.Context, userID string) (*entity.User, error)
	UpdatePassword(ctx context.Context, userID, password string) (*entity.User, error)
	Recover(ctx context.Context, email string) error
	PurgeSessions(ctx context.Context) (int64, error)
}

type AuthSettings struct {
	RefreshTTL time.Duration
	CodeTTL    time.Duration
	// SiteURL is where email links send the user.
	SiteURL string
}

type authUseCase struct {
	identities persistent.IdentityRepository
	sessions   persistent.SessionRepository
	codes      cache.CodeStore
	profiles   ProfileUseCase
	jwtService *jwt.Service
	mailer     email.Sender
	logger     *logger.Logger
	settings   AuthSettings
	now        func() time.Time
}

func NewAuthUseCase(
	identities persistent.IdentityRepository,
	sessions persistent.SessionRepository,
	codes cache.CodeStore,
	profiles ProfileUseCase,
	jwtService *jwt.Service,
	mailer email.Sender,
	logger *logger.Logger,
	settings AuthSettings,
) AuthUseCase {
	if settings.CodeTTL == 0 {
		settings.CodeTTL = time.Hour
	}
	return &authUseCase{
		identities: identities,
		sessions:   sessions,
		codes:      codes,
		profiles:   profiles,
		jwtService: jwtService,
		mailer:     mailer,
		logger:     logger,
		settings:   settings,
		now:        time.Now,
	}
}

func normalizeEmail(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

func (uc *authUseCase) SignUp(ctx context.Context, address, password string, info entity.ClientInfo) (*entity.Session, error) {
	address = normalizeEmail(address)
	if len(password) < MinPasswordLength {
		return nil, apperr.Newf(apperr.KindWeakPassword, "Password must be at least %d characters", MinPasswordLength)
	}

	if _, err := uc.identities.GetByEmail(ctx, address); err == nil {
		return nil, apperr.New(apperr.KindEmailTaken, "User already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		uc.logger.Error("Failed to look up identity: %v", err)
		return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to process registration")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		uc.logger.Error("Failed to hash password: %v", err)
		return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to process registration")
	}

	user := &entity.User{Email: address, PasswordHash: string(hashedPassword)}
	profile := defaultProfile(user)
	if err := uc.identities.CreateWithProfile(ctx, user, profile); err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			return nil, apperr.New(apperr.KindEmailTaken, "User already registered")
		}
		uc.logger.Error("Failed to create identity: %v", err)
		return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to create user")
	}
	uc.profiles.Announce(ctx, profile)

	uc.sendLink(ctx, user, entity.CodeSignup)

	return uc.issueSession(ctx, user, profile, info)
}

func (uc *authUseCase) SignInWithPassword(ctx context.Context, address, password string, info entity.ClientInfo) (*entity.Session, error) {
	user, err := uc.identities.GetByEmail(ctx, normalizeEmail(address))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			uc.logger.Error("Failed to look up identity: %v", err)
		}
		return nil, apperr.New(apperr.KindInvalidCredentials, "Invalid login credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.New(apperr.KindInvalidCredentials, "Invalid login credentials")
	}

	return uc.signIn(ctx, user, info)
}

func (uc *authUseCase) Refresh(ctx context.Context, refreshToken string, info entity.ClientInfo) (*entity.Session, error) {
	if refreshToken == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "refresh_token is required")
	}

	stored, err := uc.sessions.GetByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindUnauthorized, "Invalid refresh token")
		}
		return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to refresh session")
	}

	now := uc.now()
	if stored.RevokedAt != nil {
		// A rotated token came back: treat the whole family as compromised.
		uc.logger.Warn("Refresh token reuse detected for user %s", stored.UserID)
		if _, err := uc.sessions.RevokeAllForUser(ctx, stored.UserID, now); err != nil {
			uc.logger.Error("Failed to revoke sessions for %s: %v", stored.UserID, err)
		}
		return nil, apperr.New(apperr.KindUnauthorized, "Invalid refresh token")
	}
	if !stored.Active(now) {
		return nil, apperr.New(apperr.KindUnauthorized, "Refresh token expired")
	}

	revoked, err := uc.sessions.Revoke(ctx, stored.ID, now)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to refresh session")
	}
	if !revoked {
		return nil, apperr.New(apperr.KindUnauthorized, "Invalid refresh token")
	}

	user, err := uc.identities.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, apperr.New(apperr.KindUnauthorized, "User not found")
	}
	profile, err := uc.profiles.GetOrCreate(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return uc.issueSession(ctx, user, profile, info)
}

func (uc *authUseCase) ExchangeCode(ctx context.Context, code string, info entity.ClientInfo) (*entity.Session, error) {
	if code == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "code is required")
	}

	userID, purpose, err := uc.codes.Consume(ctx, code)
	if err != nil {
		if errors.Is(err, cache.ErrCodeNotFound) {
			return nil, apperr.New(apperr.KindUnauthorized, "Email link is invalid or has expired")
		}
		return nil, apperr.Wrap(err, apperr.KindUnavailable, "Failed to verify code")
	}

	user, err := uc.identities.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.New(apperr.KindUnauthorized, "User not found")
	}
	if user.EmailConfirmedAt == nil {
		// Following any emailed link proves ownership of the address.
		now := uc.now()
		if err := uc.identities.ConfirmEmail(ctx, user.ID, now); err != nil {
			uc.logger.Error("Failed to confirm email for %s: %v", user.ID, err)
		} else {
			user.EmailConfirmedAt = &now
		}
	}
	uc.logger.Info("Exchanged %s code for user %s", purpose, user.ID)

	return uc.signIn(ctx, user, info)
}

func (uc *authUseCase) SignOut(ctx context.Context, userID string) error {
	revoked, err := uc.sessions.RevokeAllForUser(ctx, userID, uc.now())
	if err != nil {
		uc.logger.Error("Failed to revoke sessions for %s: %v", userID, err)
		return apperr.Wrap(err, apperr.KindInternal, "Failed to sign out")
	}
	uc.logger.Info("Signed out user %s (%d sessions revoked)", userID, revoked)
	return nil
}

func (uc *authUseCase) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.identities.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindOf(err), "User not found")
	}
	user.PasswordHash = ""
	return user, nil
}

func (uc *authUseCase) UpdatePassword(ctx context.Context, userID, password string) (*entity.User, error) {
	if len(password) < MinPasswordLength {
		return nil, apperr.Newf(apperr.KindWeakPassword, "Password must be at least %d characters", MinPasswordLength)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		uc.logger.Error("Failed to hash password: %v", err)
		return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to update password")
	}
	if err := uc.identities.UpdatePassword(ctx, userID, string(hashedPassword)); err != nil {
		return nil, apperr.Wrap(err, apperr.KindOf(err), "Failed to update password")
	}
	return uc.GetUser(ctx, userID)
}

// Recover emails a sign-in link. Unknown addresses are not reported so the
// endpoint cannot be used to probe for accounts.
func (uc *authUseCase) Recover(ctx context.Context, address string) error {
	user, err := uc.identities.GetByEmail(ctx, normalizeEmail(address))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			uc.logger.Error("Failed to look up identity: %v", err)
		}
		return nil
	}
	uc.sendLink(ctx, user, entity.CodeRecovery)
	return nil
}

func (uc *authUseCase) PurgeSessions(ctx context.Context) (int64, error) {
	return uc.sessions.DeleteStale(ctx, uc.now())
}

func (uc *authUseCase) signIn(ctx context.Context, user *entity.User, info entity.ClientInfo) (*entity.Session, error) {
	now := uc.now()
	if err := uc.identities.MarkSignedIn(ctx, user.ID, now); err != nil {
		uc.logger.Warn("Failed to record sign-in for %s: %v", user.ID, err)
	} else {
		user.LastSignInAt = &now
	}

	profile, err := uc.profiles.GetOrCreate(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return uc.issueSession(ctx, user, profile, info)
}

func (uc *authUseCase) issueSession(ctx context.Context, user *entity.User, profile *entity.Profile, info entity.ClientInfo) (*entity.Session, error) {
	refreshToken, tokenHash, err := newRefreshToken()
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to generate token")
	}

	now := uc.now()
	stored := &entity.RefreshSession{
		UserID:    user.ID,
		TokenHash: tokenHash,
		UserAgent: info.UserAgent,
		IP:        info.IP,
		ExpiresAt: now.Add(uc.settings.RefreshTTL),
	}
	if err := uc.sessions.Create(ctx, stored); err != nil {
		uc.logger.Error("Failed to store refresh session: %v", err)
		return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to generate token")
	}

	accessToken, expiresAt, err := uc.jwtService.Sign(jwt.Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      string(profile.UserType),
		SessionID: stored.ID,
	})
	if err != nil {
		uc.logger.Error("Failed to generate token: %v", err)
		return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to generate token")
	}

	user.PasswordHash = ""
	return &entity.Session{
		AccessToken:  accessToken,
		TokenType:    "bearer",
		ExpiresIn:    int(expiresAt.Sub(now).Seconds()),
		ExpiresAt:    expiresAt.Unix(),
		RefreshToken: refreshToken,
		User:         user,
		Profile:      profile,
	}, nil
}

// sendLink emails a one-time sign-in link. Failures are logged, never
// returned: the account action itself already succeeded.
func (uc *authUseCase) sendLink(ctx context.Context, user *entity.User, purpose entity.CodePurpose) {
	code, err := uc.codes.Issue(ctx, user.ID, purpose, uc.settings.CodeTTL)
	if err != nil {
		uc.logger.Error("Failed to issue %s code for %s: %v", purpose, user.ID, err)
		return
	}

	link := uc.settings.SiteURL + "/auth/callback?" + url.Values{"code": {code}, "type": {string(purpose)}}.Encode()
	msg := email.Message{ToEmail: user.Email}
	switch purpose {
	case entity.CodeRecovery:
		msg.Subject = "Reset your StoryNest password"
		msg.Text = fmt.Sprintf("Follow this link to sign in and choose a new password:\n\n%s\n", link)
	default:
		msg.Subject = "Confirm your StoryNest account"
		msg.Text = fmt.Sprintf("Welcome to StoryNest! Confirm your email address:\n\n%s\n", link)
	}
	msg.HTML = fmt.Sprintf(`<p>%s</p><p><a href="%s">%s</a></p>`, strings.SplitN(msg.Text, "\n", 2)[0], link, msg.Subject)

	if err := uc.mailer.Send(ctx, msg); err != nil {
		uc.logger.Error("Failed to send %s email to %s: %v", purpose, user.Email, err)
	}
}
