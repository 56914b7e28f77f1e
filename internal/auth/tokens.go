package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/models"

	"github.com/cristalhq/jwt/v4"
	"github.com/google/uuid"
)

const (
	PurposeSession      = "session"
	PurposeVerification = "verify_email"
)

// Claims is the payload of both session and verification tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserType  models.UserType `json:"userType"`
	ProfileID string          `json:"profileId,omitempty"`
	Email     string          `json:"email"`
	Purpose   string          `json:"purpose"`
}

// TokenManager issues and verifies HS256 tokens.
type TokenManager struct {
	builder  *jwt.Builder
	verifier jwt.Verifier
	issuer   string
	now      func() time.Time
}

func NewTokenManager(secret, issuer string) (*TokenManager, error) {
	key := []byte(secret)
	signer, err := jwt.NewSignerHS(jwt.HS256, key)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}
	verifier, err := jwt.NewVerifierHS(jwt.HS256, key)
	if err != nil {
		return nil, fmt.Errorf("create verifier: %w", err)
	}
	return &TokenManager{
		builder:  jwt.NewBuilder(signer),
		verifier: verifier,
		issuer:   issuer,
		now:      time.Now,
	}, nil
}

// Issue signs a token for the user with a fresh token id and returns the
// token string with its claims.
func (m *TokenManager) Issue(user *models.User, profileID, purpose string, ttl time.Duration) (string, *Claims, error) {
	now := m.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserType:  user.UserType,
		ProfileID: profileID,
		Email:     user.Email,
		Purpose:   purpose,
	}

	token, err := m.builder.Build(claims)
	if err != nil {
		return "", nil, fmt.Errorf("build token: %w", err)
	}
	return token.String(), claims, nil
}

// Verify checks signature, issuer, expiry and purpose of raw.
func (m *TokenManager) Verify(raw, purpose string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, domain.ErrUnauthenticated
	}

	var claims Claims
	if err := jwt.ParseClaims([]byte(raw), m.verifier, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !claims.IsValidAt(m.now()) {
		return nil, fmt.Errorf("%w: expired", domain.ErrInvalidToken)
	}
	if claims.Issuer != m.issuer {
		return nil, fmt.Errorf("%w: unexpected issuer", domain.ErrInvalidToken)
	}
	if claims.Purpose != purpose {
		return nil, fmt.Errorf("%w: wrong token purpose", domain.ErrInvalidToken)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, errors.New("token is missing id or subject")
	}
	return &claims, nil
}
