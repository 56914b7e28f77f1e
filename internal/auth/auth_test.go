package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/config"
	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Secur3!pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Secur3!pass", hash)

	ok, err := CheckPassword(hash, "Secur3!pass")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPassword("not-a-hash", "x")
	assert.Error(t, err)
}

func TestRandomProviderID(t *testing.T) {
	a, err := RandomProviderID(10)
	require.NoError(t, err)
	b, err := RandomProviderID(10)
	require.NoError(t, err)

	assert.Len(t, a, 10)
	assert.NotEqual(t, a, b)
	for _, c := range a {
		assert.Contains(t, providerIDAlphabet, string(c))
	}
}

func testUser() *models.User {
	return &models.User{ID: "user-1", Email: "a@b.io", UserType: models.UserTypeStartup}
}

func TestTokenRoundTrip(t *testing.T) {
	m, err := NewTokenManager("0123456789abcdef0123", "cumma")
	require.NoError(t, err)

	raw, issued, err := m.Issue(testUser(), "startup-1", PurposeSession, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)

	claims, err := m.Verify(raw, PurposeSession)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, claims.ID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "startup-1", claims.ProfileID)
	assert.Equal(t, models.UserTypeStartup, claims.UserType)
	assert.Equal(t, "a@b.io", claims.Email)
}

func TestTokenRejections(t *testing.T) {
	m, err := NewTokenManager("0123456789abcdef0123", "cumma")
	require.NoError(t, err)

	raw, _, err := m.Issue(testUser(), "", PurposeVerification, time.Hour)
	require.NoError(t, err)

	t.Run("wrong purpose", func(t *testing.T) {
		_, err := m.Verify(raw, PurposeSession)
		assert.True(t, errors.Is(err, domain.ErrInvalidToken))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := m.Verify("  ", PurposeSession)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewTokenManager("another-secret-value-1", "cumma")
		require.NoError(t, err)
		_, err = other.Verify(raw, PurposeVerification)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("other issuer", func(t *testing.T) {
		other, err := NewTokenManager("0123456789abcdef0123", "elsewhere")
		require.NoError(t, err)
		_, err = other.Verify(raw, PurposeVerification)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { m.now = time.Now }()
		_, err := m.Verify(raw, PurposeVerification)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Verify("a.b.c", PurposeSession)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}

func TestAuthorizerDefaultPolicy(t *testing.T) {
	a, err := NewAuthorizer(config.RBACConfig{})
	require.NoError(t, err)

	cases := []struct {
		role   models.UserType
		path   string
		method string
		want   bool
	}{
		{models.UserTypeStartup, "/api/catalog", "GET", true},
		{models.UserTypeStartup, "/api/catalog/abc", "GET", true},
		{models.UserTypeStartup, "/api/startup/bookings", "POST", true},
		{models.UserTypeStartup, "/api/auth/session", "GET", true},
		{models.UserTypeStartup, "/api/facilities", "GET", false},
		{models.UserTypeStartup, "/api/dashboard", "GET", false},
		{models.UserTypeStartup, "/api/catalog", "DELETE", false},
		{models.UserTypeServiceProvider, "/api/facilities", "POST", true},
		{models.UserTypeServiceProvider, "/api/facilities/f1", "DELETE", true},
		{models.UserTypeServiceProvider, "/api/bookings/b1/approve", "POST", true},
		{models.UserTypeServiceProvider, "/api/dashboard", "GET", true},
		{models.UserTypeServiceProvider, "/api/service-provider/profile", "PATCH", true},
		{models.UserTypeServiceProvider, "/api/startup/bookings", "POST", false},
		{models.UserTypeServiceProvider, "/api/catalog", "GET", false},
		{"", "/api/catalog", "GET", false},
	}
	for _, tc := range cases {
		got, err := a.Allowed(tc.role, tc.path, tc.method)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s %s %s", tc.role, tc.method, tc.path)
	}
}

func TestAuthorizerFromFiles(t *testing.T) {
	a, err := NewAuthorizer(config.RBACConfig{
		ModelPath:  "../../configs/rbac_model.conf",
		PolicyPath: "../../configs/rbac_policy.csv",
	})
	require.NoError(t, err)

	ok, err := a.Allowed(models.UserTypeServiceProvider, "/api/dashboard", "GET")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Allowed(models.UserTypeStartup, "/api/dashboard", "GET")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthorizerMissingFiles(t *testing.T) {
	_, err := NewAuthorizer(config.RBACConfig{ModelPath: "nope.conf", PolicyPath: "nope.csv"})
	assert.Error(t, err)
}
