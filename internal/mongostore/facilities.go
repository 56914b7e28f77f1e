package mongostore

import (
	"context"
	"fmt"

	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) CreateFacility(ctx context.Context, f *models.Facility) error {
	_, err := s.facilities.InsertOne(ctx, f)
	if isValidationFailure(err) {
		return domain.NewValidationError("facility details rejected by store", models.FieldErrors{
			"details": fmt.Sprintf("details do not satisfy the %s schema", f.FacilityType),
		})
	}
	if err != nil {
		return fmt.Errorf("failed to insert facility: %w", err)
	}
	return nil
}

func (s *Store) GetFacility(ctx context.Context, id string) (*models.Facility, error) {
	var f models.Facility
	if err := s.facilities.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

func (s *Store) ListFacilities(ctx context.Context, filter domain.FacilityFilter) ([]*models.Facility, error) {
	query := bson.M{}
	if filter.ServiceProviderID != "" {
		query["serviceProviderId"] = filter.ServiceProviderID
	}
	if filter.Type != "" {
		query["facilityType"] = filter.Type
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit)).SetSkip(int64(filter.Offset))
	}

	cursor, err := s.facilities.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}
	defer cursor.Close(ctx)

	var facilities []*models.Facility
	if err := cursor.All(ctx, &facilities); err != nil {
		return nil, fmt.Errorf("failed to decode facilities: %w", err)
	}
	return facilities, nil
}

func (s *Store) UpdateFacilityDetails(
	ctx context.Context,
	id, providerID string,
	details models.FacilityDetails,
	status models.FacilityStatus,
) error {
	res, err := s.facilities.UpdateOne(ctx,
		bson.M{"_id": id, "serviceProviderId": providerID},
		bson.M{"$set": bson.M{"details": details, "status": status, "updatedAt": s.now().UTC()}},
	)
	if isValidationFailure(err) {
		return domain.NewValidationError("facility details rejected by store", models.FieldErrors{
			"details": "details do not satisfy the facility schema",
		})
	}
	if err != nil {
		return fmt.Errorf("failed to update facility: %w", err)
	}
	return expectMatched(res)
}

func (s *Store) SetFacilityStatus(ctx context.Context, id string, status models.FacilityStatus) error {
	res, err := s.facilities.UpdateByID(ctx, id, bson.M{"$set": bson.M{"status": status, "updatedAt": s.now().UTC()}})
	if err != nil {
		return fmt.Errorf("failed to update facility status: %w", err)
	}
	return expectMatched(res)
}

// DeleteFacility removes the facility and its bookings together.
func (s *Store) DeleteFacility(ctx context.Context, id, providerID string) error {
	return s.withTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := s.facilities.DeleteOne(sc, bson.M{"_id": id, "serviceProviderId": providerID})
		if err != nil {
			return fmt.Errorf("failed to delete facility: %w", err)
		}
		if res.DeletedCount == 0 {
			return domain.ErrNotFound
		}
		if _, err := s.bookings.DeleteMany(sc, bson.M{"facilityId": id}); err != nil {
			return fmt.Errorf("failed to delete facility bookings: %w", err)
		}
		return nil
	})
}
