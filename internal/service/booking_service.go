package service

import (
	"context"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/events"
	"github.com/SamFelix03/cummadashboard/internal/metrics"
	"github.com/SamFelix03/cummadashboard/internal/models"
	"github.com/SamFelix03/cummadashboard/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type BookingService struct {
	repo      domain.Repository
	eventBus  domain.EventPublisher
	ledger    domain.LedgerQueue
	validator *validation.Validator
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewBookingService(
	repo domain.Repository,
	eventBus domain.EventPublisher,
	ledger domain.LedgerQueue,
	v *validation.Validator,
	logger *zerolog.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		eventBus:  eventBus,
		ledger:    ledger,
		validator: v,
		logger:    logger,
		now:       time.Now,
	}
}

// Request creates a pending booking of an active facility. The amount is
// fixed to the price of the chosen plan at this moment.
func (s *BookingService) Request(ctx context.Context, startupID string, in *BookingRequestInput) (*models.Booking, error) {
	if errs := s.validator.Struct("", in); errs != nil {
		return nil, domain.NewValidationError("invalid booking request", errs)
	}

	facility, err := s.repo.GetFacility(ctx, in.FacilityID)
	if isNotFound(err) {
		return nil, domain.ErrFacilityNotBookable
	}
	if err != nil {
		return nil, err
	}
	if facility.Status != models.FacilityActive {
		return nil, domain.ErrFacilityNotBookable
	}

	plan, ok := facility.Plan(in.RentalPlan)
	if !ok {
		return nil, domain.ErrUnknownRentalPlan
	}

	now := s.now().UTC()
	booking := &models.Booking{
		ID:         uuid.NewString(),
		StartupID:  startupID,
		FacilityID: facility.ID,
		Status:     models.BookingPending,
		RentalPlan: plan.Name,
		Amount:     plan.Price,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	metrics.IncBooking(string(booking.Status))
	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("startup_id", startupID).
		Str("facility_id", facility.ID).
		Str("plan", string(plan.Name)).
		Msg("booking requested")

	if view, err := s.repo.GetBookingView(ctx, booking.ID); err == nil {
		s.publishEvent(events.EventBookingRequested, view)
	} else {
		s.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("failed to load booking view")
	}
	return booking, nil
}

func (s *BookingService) Approve(ctx context.Context, providerID, bookingID string) (*models.BookingView, error) {
	return s.decide(ctx, providerID, bookingID, models.BookingApproved)
}

func (s *BookingService) Reject(ctx context.Context, providerID, bookingID string) (*models.BookingView, error) {
	return s.decide(ctx, providerID, bookingID, models.BookingRejected)
}

func (s *BookingService) decide(ctx context.Context, providerID, bookingID string, to models.BookingStatus) (*models.BookingView, error) {
	view, err := s.repo.GetBookingView(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if view.ServiceProviderID != providerID {
		return nil, domain.ErrNotFound
	}

	if err := s.repo.UpdateBookingStatus(ctx, bookingID, models.BookingPending, to, s.now()); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetBookingView(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	metrics.IncBooking(string(to))
	s.logger.Info().Str("booking_id", bookingID).Str("status", string(to)).Msg("booking decided")

	switch to {
	case models.BookingApproved:
		s.publishEvent(events.EventBookingApproved, updated)
		s.enqueueLedger(ctx, models.LedgerTaskUpsert, updated)
	case models.BookingRejected:
		s.publishEvent(events.EventBookingRejected, updated)
		s.enqueueLedger(ctx, models.LedgerTaskStatus, updated)
	}
	return updated, nil
}

// ProviderBookings lists approved bookings on the provider's active facilities.
func (s *BookingService) ProviderBookings(ctx context.Context, providerID string) ([]*models.BookingView, error) {
	return s.repo.ListBookingViews(ctx, models.BookingFilter{
		ServiceProviderID: providerID,
		Status:            models.BookingApproved,
		FacilityStatus:    models.FacilityActive,
	})
}

// ProviderRequests lists bookings waiting for the provider's decision.
func (s *BookingService) ProviderRequests(ctx context.Context, providerID string) ([]*models.BookingView, error) {
	return s.repo.ListBookingViews(ctx, models.BookingFilter{
		ServiceProviderID: providerID,
		Status:            models.BookingPending,
	})
}

func (s *BookingService) StartupBookings(ctx context.Context, startupID string) ([]*models.BookingView, error) {
	return s.repo.ListBookingViews(ctx, models.BookingFilter{StartupID: startupID})
}

// Dashboard aggregates the provider KPIs at the current time.
func (s *BookingService) Dashboard(ctx context.Context, providerID string) (*models.Dashboard, error) {
	facilities, err := s.repo.ListFacilities(ctx, domain.FacilityFilter{ServiceProviderID: providerID})
	if err != nil {
		return nil, err
	}
	views, err := s.repo.ListBookingViews(ctx, models.BookingFilter{
		ServiceProviderID: providerID,
		Status:            models.BookingApproved,
	})
	if err != nil {
		return nil, err
	}
	d := BuildDashboard(s.now(), facilities, views)
	return &d, nil
}

func (s *BookingService) publishEvent(eventType string, v *models.BookingView) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:         v.ID,
		StartupID:         v.StartupID,
		StartupName:       v.StartupName,
		FacilityID:        v.FacilityID,
		FacilityName:      v.FacilityName,
		ServiceProviderID: v.ServiceProviderID,
		RentalPlan:        string(v.RentalPlan),
		Amount:            v.Amount,
		Status:            string(v.Status),
		At:                v.UpdatedAt,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", v.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueLedger(ctx context.Context, taskType string, v *models.BookingView) {
	if s.ledger == nil {
		return
	}

	task := models.LedgerTask{
		Type:       taskType,
		BookingID:  v.ID,
		Booking:    v,
		Status:     string(v.Status),
		EnqueuedAt: s.now().UTC(),
	}
	if err := s.ledger.EnqueueTask(ctx, task); err != nil {
		s.logger.Error().Err(err).Str("booking_id", v.ID).Str("task", taskType).Msg("ledger enqueue error")
	}
}
