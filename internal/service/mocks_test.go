package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/database"
	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "service.db"), nopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type mockRepo struct {
	mock.Mock
}

var _ domain.Repository = (*mockRepo)(nil)

func (m *mockRepo) CreateStartupAccount(ctx context.Context, u *models.User, s *models.Startup) error {
	return m.Called(ctx, u, s).Error(0)
}
func (m *mockRepo) CreateServiceProviderAccount(ctx context.Context, u *models.User, p *models.ServiceProvider) error {
	return m.Called(ctx, u, p).Error(0)
}
func (m *mockRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockRepo) SetEmailVerified(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) GetStartup(ctx context.Context, id string) (*models.Startup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Startup), args.Error(1)
}
func (m *mockRepo) GetStartupByUserID(ctx context.Context, id string) (*models.Startup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Startup), args.Error(1)
}
func (m *mockRepo) UpdateStartup(ctx context.Context, s *models.Startup) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockRepo) GetServiceProvider(ctx context.Context, id string) (*models.ServiceProvider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceProvider), args.Error(1)
}
func (m *mockRepo) GetServiceProviderByUserID(ctx context.Context, id string) (*models.ServiceProvider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceProvider), args.Error(1)
}
func (m *mockRepo) UpdateServiceProvider(ctx context.Context, p *models.ServiceProvider) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockRepo) CreateFacility(ctx context.Context, f *models.Facility) error {
	return m.Called(ctx, f).Error(0)
}
func (m *mockRepo) GetFacility(ctx context.Context, id string) (*models.Facility, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Facility), args.Error(1)
}
func (m *mockRepo) ListFacilities(ctx context.Context, f domain.FacilityFilter) ([]*models.Facility, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Facility), args.Error(1)
}
func (m *mockRepo) UpdateFacilityDetails(
	ctx context.Context, id, providerID string, d models.FacilityDetails, s models.FacilityStatus,
) error {
	return m.Called(ctx, id, providerID, d, s).Error(0)
}
func (m *mockRepo) SetFacilityStatus(ctx context.Context, id string, s models.FacilityStatus) error {
	return m.Called(ctx, id, s).Error(0)
}
func (m *mockRepo) DeleteFacility(ctx context.Context, id, providerID string) error {
	return m.Called(ctx, id, providerID).Error(0)
}
func (m *mockRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockRepo) GetBookingView(ctx context.Context, id string) (*models.BookingView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingView), args.Error(1)
}
func (m *mockRepo) UpdateBookingStatus(ctx context.Context, id string, from, to models.BookingStatus, at time.Time) error {
	return m.Called(ctx, id, from, to, at).Error(0)
}
func (m *mockRepo) ListBookingViews(ctx context.Context, f models.BookingFilter) ([]*models.BookingView, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BookingView), args.Error(1)
}
func (m *mockRepo) Ping(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *mockRepo) Close() error                   { return nil }

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendVerification(ctx context.Context, to, name, link string) error {
	return m.Called(ctx, to, name, link).Error(0)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) EnqueueTask(ctx context.Context, task models.LedgerTask) error {
	return m.Called(ctx, task).Error(0)
}

// recordingBus keeps published events for assertions.
type recordingBus struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	Type    string
	Payload json.RawMessage
}

func (b *recordingBus) PublishJSON(eventType string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{Type: eventType, Payload: raw})
	return nil
}

func (b *recordingBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Type)
	}
	return out
}

func intPtr(v int) *int { return &v }

func cabinDetails() models.FacilityDetails {
	return models.FacilityDetails{
		Name:            "Quiet cabin",
		Description:     "Private cabin for four",
		Images:          []string{},
		RentalPlans:     []models.RentalPlan{{Name: models.PlanMonthly, Price: 12000, Duration: models.PlanMonthly}},
		TotalCabins:     intPtr(4),
		AvailableCabins: intPtr(2),
	}
}
