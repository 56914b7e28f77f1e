package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/auth"
	"github.com/SamFelix03/cummadashboard/internal/config"
	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/events"
	"github.com/SamFelix03/cummadashboard/internal/metrics"
	"github.com/SamFelix03/cummadashboard/internal/models"
	"github.com/SamFelix03/cummadashboard/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const authProviderIDLength = 24

// SignInResult is returned to the client after a successful sign-in.
type SignInResult struct {
	Token      string       `json:"token"`
	ExpiresAt  time.Time    `json:"expiresAt"`
	User       *models.User `json:"user"`
	ProfileID  string       `json:"profileId"`
	RememberMe bool         `json:"-"`
}

type AuthService struct {
	repo      domain.Repository
	sessions  domain.SessionRepository
	tokens    *auth.TokenManager
	validator *validation.Validator
	mailer    domain.Mailer
	eventBus  domain.EventPublisher
	cfg       config.SessionConfig
	publicURL string
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewAuthService(
	repo domain.Repository,
	sessions domain.SessionRepository,
	tokens *auth.TokenManager,
	v *validation.Validator,
	mailer domain.Mailer,
	eventBus domain.EventPublisher,
	cfg config.SessionConfig,
	publicURL string,
	logger *zerolog.Logger,
) *AuthService {
	return &AuthService{
		repo:      repo,
		sessions:  sessions,
		tokens:    tokens,
		validator: v,
		mailer:    mailer,
		eventBus:  eventBus,
		cfg:       cfg,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *AuthService) SignupStartup(ctx context.Context, in *StartupSignupInput) (*models.Startup, error) {
	email := normalizeEmail(in.Email)
	in.Email = email

	errs := mergeFields(
		s.validator.Struct("", in.Credentials),
		s.validator.Struct("", in.Startup),
	)
	if errs != nil {
		return nil, domain.NewValidationError("invalid signup details", errs)
	}

	user, err := s.newLocalUser(ctx, email, in.Password, models.UserTypeStartup)
	if err != nil {
		return nil, err
	}

	startup := in.Startup
	startup.ID = uuid.NewString()
	startup.CreatedAt = user.CreatedAt
	startup.UpdatedAt = user.CreatedAt

	if err := s.repo.CreateStartupAccount(ctx, user, &startup); err != nil {
		return nil, err
	}

	s.afterSignup(ctx, user, startup.ID, startup.StartupName)
	return &startup, nil
}

func (s *AuthService) SignupServiceProvider(ctx context.Context, in *ServiceProviderSignupInput) (*models.ServiceProvider, error) {
	email := normalizeEmail(in.Email)
	in.Email = email
	// The signup e-mail doubles as the primary contact address.
	in.PrimaryEmailID = email

	errs := mergeFields(
		s.validator.Struct("", in.Credentials),
		s.validator.Struct("", in.ServiceProvider),
	)
	if errs != nil {
		return nil, domain.NewValidationError("invalid signup details", errs)
	}

	user, err := s.newLocalUser(ctx, email, in.Password, models.UserTypeServiceProvider)
	if err != nil {
		return nil, err
	}

	provider := in.ServiceProvider
	provider.ID = uuid.NewString()
	provider.CreatedAt = user.CreatedAt
	provider.UpdatedAt = user.CreatedAt
	if provider.Features == nil {
		provider.Features = []string{}
	}

	if err := s.repo.CreateServiceProviderAccount(ctx, user, &provider); err != nil {
		return nil, err
	}

	s.afterSignup(ctx, user, provider.ID, provider.ServiceName)
	return &provider, nil
}

func (s *AuthService) newLocalUser(ctx context.Context, email, password string, userType models.UserType) (*models.User, error) {
	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, domain.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	providerID, err := auth.RandomProviderID(authProviderIDLength)
	if err != nil {
		return nil, fmt.Errorf("generate provider id: %w", err)
	}

	now := s.now().UTC()
	return &models.User{
		ID:              uuid.NewString(),
		Email:           email,
		PasswordHash:    hash,
		UserType:        userType,
		AuthProvider:    models.AuthProviderLocal,
		AuthProviderID:  providerID,
		IsEmailVerified: false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (s *AuthService) afterSignup(ctx context.Context, user *models.User, profileID, displayName string) {
	metrics.IncSignup(string(user.UserType))
	s.logger.Info().
		Str("user_id", user.ID).
		Str("profile_id", profileID).
		Str("user_type", string(user.UserType)).
		Msg("account created")

	if err := s.sendVerification(ctx, user, displayName); err != nil {
		// The account exists; the user can request another link later.
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to send verification email")
	}

	if s.eventBus == nil {
		return
	}
	payload := events.UserEventPayload{
		UserID:      user.ID,
		ProfileID:   profileID,
		Email:       user.Email,
		UserType:    string(user.UserType),
		DisplayName: displayName,
	}
	if err := s.eventBus.PublishJSON(events.EventUserRegistered, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", events.EventUserRegistered).Msg("publish event error")
	}
}

func (s *AuthService) sendVerification(ctx context.Context, user *models.User, name string) error {
	if s.mailer == nil {
		return nil
	}
	token, _, err := s.tokens.Issue(user, "", auth.PurposeVerification, models.VerificationTTL*time.Second)
	if err != nil {
		return err
	}
	link := s.publicURL + "/api/auth/verify?token=" + url.QueryEscape(token)
	return s.mailer.SendVerification(ctx, user.Email, name, link)
}

// SignIn checks the credentials and opens a new session.
func (s *AuthService) SignIn(ctx context.Context, in *SignInInput) (*SignInResult, error) {
	email := normalizeEmail(in.Email)
	if errs := s.validator.Struct("", SignInInput{Email: email, Password: in.Password}); errs != nil {
		return nil, domain.NewValidationError("invalid sign-in details", errs)
	}

	limitKey := "signin:" + email
	allowed, err := s.sessions.CheckRateLimit(ctx, limitKey, s.cfg.SignInAttempts, time.Duration(s.cfg.SignInWindowS)*time.Second)
	if err != nil {
		s.logger.Warn().Err(err).Msg("sign-in rate limit check failed")
	} else if !allowed {
		return nil, domain.ErrRateLimited
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := auth.CheckPassword(user.PasswordHash, in.Password)
	if err != nil {
		return nil, fmt.Errorf("check password: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	profileID, err := s.profileID(ctx, user)
	if err != nil {
		return nil, err
	}

	token, claims, err := s.tokens.Issue(user, profileID, auth.PurposeSession, s.cfg.TTL())
	if err != nil {
		return nil, err
	}
	session := &models.Session{
		ID:        claims.ID,
		UserID:    user.ID,
		UserType:  user.UserType,
		ProfileID: profileID,
		Email:     user.Email,
		CreatedAt: claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if err := s.sessions.SaveSession(ctx, session, s.cfg.TTL()); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if err := s.sessions.ResetRateLimit(ctx, limitKey); err != nil {
		s.logger.Warn().Err(err).Msg("failed to reset sign-in counter")
	}

	s.logger.Info().Str("user_id", user.ID).Str("session_id", session.ID).Msg("signed in")
	return &SignInResult{
		Token:      token,
		ExpiresAt:  session.ExpiresAt,
		User:       user,
		ProfileID:  profileID,
		RememberMe: in.RememberMe,
	}, nil
}

func (s *AuthService) profileID(ctx context.Context, user *models.User) (string, error) {
	switch user.UserType {
	case models.UserTypeStartup:
		p, err := s.repo.GetStartupByUserID(ctx, user.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrProfileMissing
		}
		if err != nil {
			return "", err
		}
		return p.ID, nil
	case models.UserTypeServiceProvider:
		p, err := s.repo.GetServiceProviderByUserID(ctx, user.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrProfileMissing
		}
		if err != nil {
			return "", err
		}
		return p.ID, nil
	}
	return "", domain.ErrProfileMissing
}

// Authenticate resolves a raw session token into its live session record.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*models.Session, error) {
	claims, err := s.tokens.Verify(raw, auth.PurposeSession)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	session, err := s.sessions.GetSession(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil || session.UserID != claims.Subject {
		return nil, domain.ErrUnauthenticated
	}
	return session, nil
}

func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CurrentUser returns the user behind a session.
func (s *AuthService) CurrentUser(ctx context.Context, session *models.Session) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, session.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	return user, err
}

// VerifyEmail marks the address in a verification token as verified.
func (s *AuthService) VerifyEmail(ctx context.Context, raw string) error {
	claims, err := s.tokens.Verify(raw, auth.PurposeVerification)
	if err != nil {
		return domain.ErrInvalidToken
	}
	if err := s.repo.SetEmailVerified(ctx, claims.Subject); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidToken
		}
		return err
	}
	s.logger.Info().Str("user_id", claims.Subject).Msg("email verified")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// mergeFields combines field error sets, returning nil when all are empty.
func mergeFields(sets ...models.FieldErrors) models.FieldErrors {
	var out models.FieldErrors
	for _, set := range sets {
		for k, v := range set {
			if out == nil {
				out = models.FieldErrors{}
			}
			out[k] = v
		}
	}
	return out
}
