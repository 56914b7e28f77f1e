package service

import (
	"context"
	"errors"
	"testing"

	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/events"
	"github.com/SamFelix03/cummadashboard/internal/models"
	"github.com/SamFelix03/cummadashboard/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newFacilityService(repo *mockRepo, bus *recordingBus) *FacilityService {
	return NewFacilityService(repo, bus, validation.New(), nopLogger())
}

func TestFacilityCreateNormalizesAndPublishes(t *testing.T) {
	repo := &mockRepo{}
	bus := &recordingBus{}
	svc := newFacilityService(repo, bus)

	details := cabinDetails()
	details.TotalSeats = intPtr(40)
	details.Equipment = []models.Equipment{{LabName: "stray"}}

	var stored *models.Facility
	repo.On("CreateFacility", mock.Anything, mock.AnythingOfType("*models.Facility")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*models.Facility) }).
		Return(nil)

	f, err := svc.Create(context.Background(), "provider-1", &CreateFacilityInput{
		Type:            models.FacilityIndividualCabin,
		FacilityDetails: details,
	})
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, f.ID, stored.ID)
	assert.Equal(t, "provider-1", stored.ServiceProviderID)
	assert.Equal(t, models.FacilityPending, stored.Status)
	assert.Nil(t, stored.Details.TotalSeats, "foreign fields are dropped")
	assert.Empty(t, stored.Details.Equipment)
	assert.Equal(t, 4, *stored.Details.TotalCabins)
	assert.Equal(t, []string{events.EventFacilitySubmitted}, bus.types())
	repo.AssertExpectations(t)
}

func TestFacilityCreateRejectsMissingTypeFields(t *testing.T) {
	cases := map[models.FacilityType]string{
		models.FacilityIndividualCabin:   "details.totalCabins",
		models.FacilityCoworkingSpaces:   "details.totalSeats",
		models.FacilityMeetingRooms:      "details.totalRooms",
		models.FacilityBioAlliedLabs:     "details.equipment",
		models.FacilityManufacturingLabs: "details.equipment",
		models.FacilityPrototypingLabs:   "details.equipment",
		models.FacilitySoftware:          "details.equipment",
		models.FacilitySaaSAllied:        "details.equipment",
		models.FacilityRawSpaceOffice:    "details.areaDetails",
		models.FacilityRawSpaceLab:       "details.areaDetails",
		"spaceship":                      "facilityType",
	}

	for facilityType, field := range cases {
		t.Run(string(facilityType), func(t *testing.T) {
			repo := &mockRepo{}
			svc := newFacilityService(repo, &recordingBus{})

			details := cabinDetails()
			details.TotalCabins, details.AvailableCabins = nil, nil

			_, err := svc.Create(context.Background(), "p1", &CreateFacilityInput{Type: facilityType, FacilityDetails: details})
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, ve.Fields, field)
			repo.AssertNotCalled(t, "CreateFacility", mock.Anything, mock.Anything)
		})
	}
}

func TestFacilityGetOwnHidesOtherProviders(t *testing.T) {
	repo := &mockRepo{}
	svc := newFacilityService(repo, &recordingBus{})
	repo.On("GetFacility", mock.Anything, "f1").Return(&models.Facility{ID: "f1", ServiceProviderID: "owner"}, nil)

	_, err := svc.GetOwn(context.Background(), "intruder", "f1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f, err := svc.GetOwn(context.Background(), "owner", "f1")
	require.NoError(t, err)
	assert.Equal(t, "f1", f.ID)
}

func TestFacilityUpdateResetsToPending(t *testing.T) {
	repo := &mockRepo{}
	bus := &recordingBus{}
	svc := newFacilityService(repo, bus)

	repo.On("GetFacility", mock.Anything, "f1").Return(&models.Facility{
		ID: "f1", ServiceProviderID: "p1", FacilityType: models.FacilityIndividualCabin,
		Status: models.FacilityActive, Details: cabinDetails(),
	}, nil)
	repo.On("UpdateFacilityDetails", mock.Anything, "f1", "p1", mock.Anything, models.FacilityPending).Return(nil)

	details := cabinDetails()
	details.Name = "  Renamed cabin "
	f, err := svc.Update(context.Background(), "p1", "f1", &details)
	require.NoError(t, err)
	assert.Equal(t, models.FacilityPending, f.Status)
	assert.Equal(t, "Renamed cabin", f.Details.Name)
	assert.Equal(t, []string{events.EventFacilitySubmitted}, bus.types())

	bad := cabinDetails()
	bad.AvailableCabins = intPtr(10)
	_, err = svc.Update(context.Background(), "p1", "f1", &bad)
	assert.True(t, domain.IsValidation(err))
	repo.AssertNumberOfCalls(t, "UpdateFacilityDetails", 1)
}

func TestFacilityCatalog(t *testing.T) {
	repo := &mockRepo{}
	svc := newFacilityService(repo, &recordingBus{})

	repo.On("ListFacilities", mock.Anything, domain.FacilityFilter{
		Type: models.FacilitySoftware, Status: models.FacilityActive, Limit: models.DefaultPageSize,
	}).Return([]*models.Facility{{ID: "s1"}}, nil)

	list, err := svc.Catalog(context.Background(), models.FacilitySoftware, 0, -5)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.Catalog(context.Background(), "spaceship", 10, 0)
	assert.True(t, domain.IsValidation(err))

	repo.On("GetFacility", mock.Anything, "pending").Return(&models.Facility{ID: "pending", Status: models.FacilityPending}, nil)
	_, err = svc.CatalogItem(context.Background(), "pending")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFacilitySetStatus(t *testing.T) {
	repo := &mockRepo{}
	bus := &recordingBus{}
	svc := newFacilityService(repo, bus)

	repo.On("GetFacility", mock.Anything, "f1").Return(&models.Facility{
		ID: "f1", FacilityType: models.FacilityMeetingRooms, Status: models.FacilityPending,
	}, nil)
	repo.On("SetFacilityStatus", mock.Anything, "f1", models.FacilityActive).Return(nil)

	f, err := svc.SetStatus(context.Background(), "f1", models.FacilityActive, "ops")
	require.NoError(t, err)
	assert.Equal(t, models.FacilityActive, f.Status)
	assert.Equal(t, []string{events.EventFacilityStatusChanged}, bus.types())

	var payload events.FacilityEventPayload
	require.NoError(t, (&events.Event{Payload: bus.events[0].Payload}).Decode(&payload))
	assert.Equal(t, "pending", payload.PreviousStatus)
	assert.Equal(t, "ops", payload.ChangedBy)

	_, err = svc.SetStatus(context.Background(), "f1", models.FacilityPending, "ops")
	assert.True(t, domain.IsValidation(err))
}

func TestFacilityListForModeration(t *testing.T) {
	repo := &mockRepo{}
	svc := newFacilityService(repo, &recordingBus{})

	repo.On("ListFacilities", mock.Anything, domain.FacilityFilter{
		Status: models.FacilityPending, Limit: models.MaxPageSize,
	}).Return([]*models.Facility{}, nil)

	_, err := svc.ListForModeration(context.Background(), "", 1000, 0)
	require.NoError(t, err)

	_, err = svc.ListForModeration(context.Background(), "archived", 10, 0)
	assert.True(t, domain.IsValidation(err))
}
