package service

import (
	"context"
	"errors"
	"testing"

	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/models"
	"github.com/SamFelix03/cummadashboard/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchStartup(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	startup, err := f.svc.SignupStartup(ctx, startupSignup("patch@acme.io"))
	require.NoError(t, err)

	svc := NewProfileService(f.repo, validation.New(), nopLogger())

	updated, err := svc.PatchStartup(ctx, startup.ID, []byte(`{"teamSize": 12, "website": "https://acme.io", "lookingFor": ["Raw Space"]}`))
	require.NoError(t, err)
	assert.Equal(t, 12, updated.TeamSize)
	require.NotNil(t, updated.Website)
	assert.Equal(t, "https://acme.io", *updated.Website)
	assert.Equal(t, []models.LookingFor{models.LookingForRawSpace}, updated.LookingFor)
	assert.Equal(t, "Acme Labs", updated.StartupName, "untouched fields survive")

	stored, err := svc.Startup(ctx, startup.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, stored.TeamSize)
	assert.Equal(t, startup.UserID, stored.UserID)
}

func TestPatchStartupRejections(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	startup, err := f.svc.SignupStartup(ctx, startupSignup("reject@acme.io"))
	require.NoError(t, err)

	svc := NewProfileService(f.repo, validation.New(), nopLogger())

	cases := map[string]struct {
		body  string
		field string
	}{
		"immutable id":   {`{"id": "other"}`, "id"},
		"immutable user": {`{"userId": "other"}`, "userId"},
		"unknown field":  {`{"favouriteColour": "red"}`, "favouriteColour"},
		"invalid merged": {`{"entityType": "Partnership"}`, "entityType"},
		"empty patch":    {`{}`, "body"},
		"not an object":  {`[1,2]`, "body"},
		"bad linkedin":   {`{"linkedinFounderUrl": "https://example.com/me"}`, "linkedinFounderUrl"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.PatchStartup(ctx, startup.ID, []byte(tc.body))
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Contains(t, ve.Fields, tc.field)
		})
	}

	_, err = svc.PatchStartup(ctx, "missing", []byte(`{"teamSize": 1}`))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPatchServiceProvider(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	provider, err := f.svc.SignupServiceProvider(ctx, providerSignup("hub@hub.io"))
	require.NoError(t, err)

	svc := NewProfileService(f.repo, validation.New(), nopLogger())

	updated, err := svc.PatchServiceProvider(ctx, provider.ID, []byte(`{"city": "Mysuru", "features": ["Wi-Fi", "Parking"]}`))
	require.NoError(t, err)
	assert.Equal(t, "Mysuru", updated.City)
	assert.Equal(t, []string{"Wi-Fi", "Parking"}, updated.Features)

	_, err = svc.PatchServiceProvider(ctx, provider.ID, []byte(`{"primaryEmailId": "x@y.io"}`))
	assert.True(t, domain.IsValidation(err))

	_, err = svc.PatchServiceProvider(ctx, provider.ID, []byte(`{"serviceName": ""}`))
	assert.True(t, domain.IsValidation(err))

	stored, err := svc.ServiceProvider(ctx, provider.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mysuru", stored.City)
	assert.Equal(t, "hub@hub.io", stored.PrimaryEmailID)
}
