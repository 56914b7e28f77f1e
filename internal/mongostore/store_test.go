package mongostore

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/config"
	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestFacilitySchemaCoversEveryTypeOnce(t *testing.T) {
	schema := facilitySchema()
	branches, ok := schema["oneOf"].(bson.A)
	require.True(t, ok)

	seen := make(map[string]int)
	for _, b := range branches {
		props := b.(bson.M)["properties"].(bson.M)
		types := props["facilityType"].(bson.M)["enum"].(bson.A)
		for _, ft := range types {
			seen[ft.(string)]++
		}
	}

	require.Len(t, seen, len(models.FacilityTypes))
	for _, ft := range models.FacilityTypes {
		assert.Equal(t, 1, seen[string(ft)], ft)
	}
}

func TestValidatorsAndIndexesCoverCollections(t *testing.T) {
	collections := []string{UsersCollection, StartupsCollection, ProvidersCollection, FacilitiesCollection, BookingsCollection}

	v := validators()
	idx := indexes()
	for _, name := range collections {
		assert.Contains(t, v, name)
		assert.NotEmpty(t, idx[name], name)
	}

	email := idx[UsersCollection][0]
	require.NotNil(t, email.Options)
	require.NotNil(t, email.Options.Unique)
	assert.True(t, *email.Options.Unique)
}

func TestEnumOf(t *testing.T) {
	assert.Equal(t, bson.A{"pending", "approved"}, enumOf(models.BookingPending, models.BookingApproved))
}

func TestErrorHelpers(t *testing.T) {
	assert.ErrorIs(t, notFound(mongo.ErrNoDocuments), domain.ErrNotFound)
	other := errors.New("socket closed")
	assert.Equal(t, other, notFound(other))

	assert.True(t, isValidationFailure(mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: codeDocumentValidation, Message: "Document failed validation"}},
	}))
	assert.False(t, isValidationFailure(mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}},
	}))
	assert.False(t, isValidationFailure(nil))

	assert.ErrorIs(t, expectMatched(&mongo.UpdateResult{}), domain.ErrNotFound)
	assert.NoError(t, expectMatched(&mongo.UpdateResult{MatchedCount: 1}))

	assert.Equal(t, "asha@acme.io", normalizeEmail("  Asha@ACME.io "))
}

// The tests below need a replica set, for example
// MONGO_TEST_URI=mongodb://localhost:27017/?replicaSet=rs0
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	logger := zerolog.New(io.Discard)
	name := "cumma_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	s, err := Connect(context.Background(), config.MongoConfig{URI: uri, Database: name, ConnectTimeoutSec: 10}, &logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.db.Drop(context.Background())
		_ = s.Close()
	})
	return s
}

func intPtr(v int) *int { return &v }

func newUser(email string, ut models.UserType) *models.User {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "$2a$10$hash",
		UserType:     ut,
		AuthProvider: models.AuthProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func newStartup(name string) *models.Startup {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &models.Startup{
		ID:                 uuid.NewString(),
		StartupName:        name,
		ContactName:        "Asha",
		ContactNumber:      "+91 98450 00000",
		FounderName:        "Asha",
		FounderDesignation: "CEO",
		EntityType:         models.EntityPrivateLimited,
		Industry:           "Biotech",
		Sector:             "Health",
		StageCompleted:     "MVP",
		StartupMailID:      "team@" + name + ".io",
		LookingFor:         []models.LookingFor{models.LookingForCoworking},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func newProvider(name string) *models.ServiceProvider {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &models.ServiceProvider{
		ID:                  uuid.NewString(),
		ServiceProviderType: models.ProviderIncubator,
		ServiceName:         name,
		City:                "Bengaluru",
		PrimaryEmailID:      "hello@" + name + ".org",
		Features:            []string{"Wi-Fi"},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func newCabin(providerID string, status models.FacilityStatus) *models.Facility {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &models.Facility{
		ID:                uuid.NewString(),
		ServiceProviderID: providerID,
		FacilityType:      models.FacilityIndividualCabin,
		Status:            status,
		Details: models.FacilityDetails{
			Name:            "Cabin A",
			Description:     "Four seat cabin",
			Images:          []string{},
			RentalPlans:     []models.RentalPlan{{Name: models.PlanMonthly, Duration: models.PlanMonthly, Price: 9000}},
			TotalCabins:     intPtr(5),
			AvailableCabins: intPtr(2),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMongoSignupIsTransactional(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := newStartup("acme")
	require.NoError(t, s.CreateStartupAccount(ctx, newUser("Founder@Acme.io", models.UserTypeStartup), first))

	got, err := s.GetUserByEmail(ctx, "founder@acme.io")
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeStartup, got.UserType)

	err = s.CreateStartupAccount(ctx, newUser("founder@acme.io", models.UserTypeStartup), newStartup("dup"))
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	// profile rejected by the validator rolls back the user insert
	broken := newStartup("broken")
	broken.EntityType = "Partnership"
	err = s.CreateStartupAccount(ctx, newUser("broken@acme.io", models.UserTypeStartup), broken)
	require.Error(t, err)
	_, err = s.GetUserByEmail(ctx, "broken@acme.io")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMongoFacilityValidator(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	f := newCabin("p-1", models.FacilityPending)
	require.NoError(t, s.CreateFacility(ctx, f))

	bad := newCabin("p-1", models.FacilityPending)
	bad.Details.TotalCabins = nil
	err := s.CreateFacility(ctx, bad)
	assert.True(t, domain.IsValidation(err), "got %v", err)

	wrongShape := newCabin("p-1", models.FacilityPending)
	wrongShape.FacilityType = models.FacilityRawSpaceOffice
	err = s.CreateFacility(ctx, wrongShape)
	assert.True(t, domain.IsValidation(err), "got %v", err)
}

func TestMongoFacilityCRUD(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	f := newCabin("p-1", models.FacilityPending)
	require.NoError(t, s.CreateFacility(ctx, f))
	require.NoError(t, s.CreateFacility(ctx, newCabin("p-2", models.FacilityActive)))

	own, err := s.ListFacilities(ctx, domain.FacilityFilter{ServiceProviderID: "p-1"})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, 5, *own[0].Details.TotalCabins)

	active, err := s.ListFacilities(ctx, domain.FacilityFilter{Status: models.FacilityActive, Limit: 10})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "p-2", active[0].ServiceProviderID)

	details := f.Details
	details.Name = "Cabin B"
	assert.ErrorIs(t, s.UpdateFacilityDetails(ctx, f.ID, "p-2", details, models.FacilityPending), domain.ErrNotFound)
	require.NoError(t, s.UpdateFacilityDetails(ctx, f.ID, "p-1", details, models.FacilityPending))

	require.NoError(t, s.SetFacilityStatus(ctx, f.ID, models.FacilityActive))
	got, err := s.GetFacility(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cabin B", got.Details.Name)
	assert.Equal(t, models.FacilityActive, got.Status)

	assert.ErrorIs(t, s.DeleteFacility(ctx, f.ID, "p-2"), domain.ErrNotFound)
	require.NoError(t, s.DeleteFacility(ctx, f.ID, "p-1"))
	_, err = s.GetFacility(ctx, f.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMongoBookingViews(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := newProvider("hub")
	require.NoError(t, s.CreateServiceProviderAccount(ctx, newUser("hub@example.com", models.UserTypeServiceProvider), p))
	st := newStartup("acme")
	st.LogoURL = "https://cdn.example.com/acme.png"
	require.NoError(t, s.CreateStartupAccount(ctx, newUser("founder@acme.io", models.UserTypeStartup), st))
	f := newCabin(p.ID, models.FacilityActive)
	require.NoError(t, s.CreateFacility(ctx, f))

	now := time.Now().UTC().Truncate(time.Millisecond)
	b := &models.Booking{
		ID:         uuid.NewString(),
		StartupID:  st.ID,
		FacilityID: f.ID,
		Status:     models.BookingPending,
		RentalPlan: models.PlanMonthly,
		Amount:     9000,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, s.CreateBooking(ctx, b))

	view, err := s.GetBookingView(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme", view.StartupName)
	assert.Equal(t, "Cabin A", view.FacilityName)
	assert.Equal(t, p.ID, view.ServiceProviderID)
	assert.Equal(t, st.LogoURL, view.Logo())

	approvedAt := now.Add(time.Hour)
	require.NoError(t, s.UpdateBookingStatus(ctx, b.ID, models.BookingPending, models.BookingApproved, approvedAt))
	assert.ErrorIs(t, s.UpdateBookingStatus(ctx, b.ID, models.BookingPending, models.BookingRejected, approvedAt),
		domain.ErrInvalidTransition)
	assert.ErrorIs(t, s.UpdateBookingStatus(ctx, "missing", models.BookingPending, models.BookingApproved, approvedAt),
		domain.ErrNotFound)

	views, err := s.ListBookingViews(ctx, models.BookingFilter{
		ServiceProviderID: p.ID,
		Status:            models.BookingApproved,
		FacilityStatus:    models.FacilityActive,
	})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].BookedOn().Equal(approvedAt))

	none, err := s.ListBookingViews(ctx, models.BookingFilter{ServiceProviderID: "someone-else"})
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, s.DeleteFacility(ctx, f.ID, p.ID))
	_, err = s.GetBookingView(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMongoProfiles(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	u := newUser("hub@example.com", models.UserTypeServiceProvider)
	p := newProvider("hub")
	require.NoError(t, s.CreateServiceProviderAccount(ctx, u, p))

	byUser, err := s.GetServiceProviderByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, byUser.ID)

	byUser.City = "Chennai"
	require.NoError(t, s.UpdateServiceProvider(ctx, byUser))
	got, err := s.GetServiceProvider(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chennai", got.City)

	require.NoError(t, s.SetEmailVerified(ctx, u.ID))
	verified, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, verified.IsEmailVerified)

	assert.ErrorIs(t, s.SetEmailVerified(ctx, "missing"), domain.ErrNotFound)
	_, err = s.GetStartupByUserID(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, s.Ping(ctx))
}
