package service

import (
	"context"
	"errors"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/events"
	"github.com/SamFelix03/cummadashboard/internal/metrics"
	"github.com/SamFelix03/cummadashboard/internal/models"
	"github.com/SamFelix03/cummadashboard/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type FacilityService struct {
	repo      domain.Repository
	eventBus  domain.EventPublisher
	validator *validation.Validator
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewFacilityService(repo domain.Repository, eventBus domain.EventPublisher, v *validation.Validator, logger *zerolog.Logger) *FacilityService {
	return &FacilityService{
		repo:      repo,
		eventBus:  eventBus,
		validator: v,
		logger:    logger,
		now:       time.Now,
	}
}

// Create validates and stores a new pending facility for the provider.
func (s *FacilityService) Create(ctx context.Context, providerID string, in *CreateFacilityInput) (*models.Facility, error) {
	if errs := in.FacilityDetails.Validate(in.Type); errs != nil {
		return nil, domain.NewValidationError("invalid facility details", errs)
	}

	now := s.now().UTC()
	facility := &models.Facility{
		ID:                uuid.NewString(),
		ServiceProviderID: providerID,
		FacilityType:      in.Type,
		Status:            models.FacilityPending,
		Details:           in.FacilityDetails.Normalize(in.Type),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.CreateFacility(ctx, facility); err != nil {
		return nil, err
	}

	metrics.IncFacility(string(facility.FacilityType), string(facility.Status))
	s.logger.Info().
		Str("facility_id", facility.ID).
		Str("provider_id", providerID).
		Str("facility_type", string(facility.FacilityType)).
		Msg("facility submitted")
	s.publish(events.EventFacilitySubmitted, facility, "", "provider")
	return facility, nil
}

func (s *FacilityService) ListOwn(ctx context.Context, providerID string, limit, offset int) ([]*models.Facility, error) {
	return s.repo.ListFacilities(ctx, domain.FacilityFilter{
		ServiceProviderID: providerID,
		Limit:             clampLimit(limit),
		Offset:            clampOffset(offset),
	})
}

// GetOwn returns the facility only when providerID owns it.
func (s *FacilityService) GetOwn(ctx context.Context, providerID, id string) (*models.Facility, error) {
	f, err := s.repo.GetFacility(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.ServiceProviderID != providerID {
		return nil, domain.ErrNotFound
	}
	return f, nil
}

// Update replaces the details of an owned facility. Edited facilities go
// back to moderation.
func (s *FacilityService) Update(ctx context.Context, providerID, id string, details *models.FacilityDetails) (*models.Facility, error) {
	f, err := s.GetOwn(ctx, providerID, id)
	if err != nil {
		return nil, err
	}
	if errs := details.Validate(f.FacilityType); errs != nil {
		return nil, domain.NewValidationError("invalid facility details", errs)
	}

	normalized := details.Normalize(f.FacilityType)
	if err := s.repo.UpdateFacilityDetails(ctx, id, providerID, normalized, models.FacilityPending); err != nil {
		return nil, err
	}

	previous := f.Status
	f.Details = normalized
	f.Status = models.FacilityPending
	f.UpdatedAt = s.now().UTC()

	s.logger.Info().Str("facility_id", id).Str("previous_status", string(previous)).Msg("facility updated")
	s.publish(events.EventFacilitySubmitted, f, previous, "provider")
	return f, nil
}

func (s *FacilityService) Delete(ctx context.Context, providerID, id string) error {
	if err := s.repo.DeleteFacility(ctx, id, providerID); err != nil {
		return err
	}
	s.logger.Info().Str("facility_id", id).Str("provider_id", providerID).Msg("facility deleted")
	return nil
}

// Catalog lists active facilities, optionally of one type.
func (s *FacilityService) Catalog(ctx context.Context, facilityType models.FacilityType, limit, offset int) ([]*models.Facility, error) {
	if facilityType != "" && !facilityType.Valid() {
		return nil, domain.NewValidationError("unknown facility type", models.FieldErrors{
			"type": "unsupported facility type " + string(facilityType),
		})
	}
	return s.repo.ListFacilities(ctx, domain.FacilityFilter{
		Type:   facilityType,
		Status: models.FacilityActive,
		Limit:  clampLimit(limit),
		Offset: clampOffset(offset),
	})
}

// CatalogItem returns one facility visible to startups.
func (s *FacilityService) CatalogItem(ctx context.Context, id string) (*models.Facility, error) {
	f, err := s.repo.GetFacility(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Status != models.FacilityActive {
		return nil, domain.ErrNotFound
	}
	return f, nil
}

// ListForModeration lists facilities by status for the back office.
func (s *FacilityService) ListForModeration(ctx context.Context, status models.FacilityStatus, limit, offset int) ([]*models.Facility, error) {
	if status == "" {
		status = models.FacilityPending
	}
	if !status.Valid() {
		return nil, domain.NewValidationError("unknown facility status", models.FieldErrors{
			"status": "unsupported facility status " + string(status),
		})
	}
	return s.repo.ListFacilities(ctx, domain.FacilityFilter{
		Status: status,
		Limit:  clampLimit(limit),
		Offset: clampOffset(offset),
	})
}

// SetStatus publishes or rejects a facility.
func (s *FacilityService) SetStatus(ctx context.Context, id string, status models.FacilityStatus, changedBy string) (*models.Facility, error) {
	if errs := s.validator.Struct("", FacilityStatusInput{Status: status}); errs != nil {
		return nil, domain.NewValidationError("invalid facility status", errs)
	}

	f, err := s.repo.GetFacility(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := f.Status
	if previous == status {
		return f, nil
	}

	if err := s.repo.SetFacilityStatus(ctx, id, status); err != nil {
		return nil, err
	}
	f.Status = status
	f.UpdatedAt = s.now().UTC()

	metrics.IncFacility(string(f.FacilityType), string(status))
	s.logger.Info().
		Str("facility_id", id).
		Str("status", string(status)).
		Str("changed_by", changedBy).
		Msg("facility status changed")
	s.publish(events.EventFacilityStatusChanged, f, previous, changedBy)
	return f, nil
}

func (s *FacilityService) publish(eventType string, f *models.Facility, previous models.FacilityStatus, changedBy string) {
	if s.eventBus == nil {
		return
	}
	payload := events.FacilityEventPayload{
		FacilityID:        f.ID,
		ServiceProviderID: f.ServiceProviderID,
		FacilityType:      string(f.FacilityType),
		Name:              f.Details.Name,
		Status:            string(f.Status),
		PreviousStatus:    string(previous),
		ChangedBy:         changedBy,
		At:                f.UpdatedAt,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("facility_id", f.ID).Msg("publish event error")
	}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return models.DefaultPageSize
	case limit > models.MaxPageSize:
		return models.MaxPageSize
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// isNotFound is shared by services that translate store misses.
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
