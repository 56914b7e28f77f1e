package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (s *Store) CreateBooking(ctx context.Context, b *models.Booking) error {
	if _, err := s.bookings.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// UpdateBookingStatus is a compare-and-set on status, so two concurrent
// decisions on the same booking cannot both succeed.
func (s *Store) UpdateBookingStatus(ctx context.Context, id string, from, to models.BookingStatus, at time.Time) error {
	res, err := s.bookings.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updatedAt": at.UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	count, err := s.bookings.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to check booking: %w", err)
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrInvalidTransition
}

func (s *Store) GetBookingView(ctx context.Context, id string) (*models.BookingView, error) {
	views, err := s.aggregateViews(ctx, bson.M{"_id": id}, bson.M{})
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, domain.ErrNotFound
	}
	return views[0], nil
}

func (s *Store) ListBookingViews(ctx context.Context, filter models.BookingFilter) ([]*models.BookingView, error) {
	match := bson.M{}
	if filter.StartupID != "" {
		match["startupId"] = filter.StartupID
	}
	if filter.FacilityID != "" {
		match["facilityId"] = filter.FacilityID
	}
	if filter.Status != "" {
		match["status"] = filter.Status
	}

	joined := bson.M{}
	if filter.ServiceProviderID != "" {
		joined["facility.serviceProviderId"] = filter.ServiceProviderID
	}
	if filter.FacilityStatus != "" {
		joined["facility.status"] = filter.FacilityStatus
	}
	return s.aggregateViews(ctx, match, joined)
}

// aggregateViews joins bookings with their facility and startup. Bookings
// whose facility is gone are dropped; a missing startup leaves empty names.
func (s *Store) aggregateViews(ctx context.Context, match, joined bson.M) ([]*models.BookingView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         FacilitiesCollection,
			"localField":   "facilityId",
			"foreignField": "_id",
			"as":           "facility",
		}}},
		{{Key: "$unwind", Value: "$facility"}},
	}
	if len(joined) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: joined}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         StartupsCollection,
			"localField":   "startupId",
			"foreignField": "_id",
			"as":           "startup",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{"path": "$startup", "preserveNullAndEmptyArrays": true}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "updatedAt", Value: -1}}}},
		bson.D{{Key: "$project", Value: bson.M{
			"startupId":         1,
			"facilityId":        1,
			"status":            1,
			"rentalPlan":        1,
			"amount":            1,
			"createdAt":         1,
			"updatedAt":         1,
			"facilityType":      "$facility.facilityType",
			"facilityName":      bson.M{"$ifNull": bson.A{"$facility.details.name", ""}},
			"facilityStatus":    "$facility.status",
			"serviceProviderId": "$facility.serviceProviderId",
			"startupName":       bson.M{"$ifNull": bson.A{"$startup.startupName", ""}},
			"startupLogoUrl":    bson.M{"$ifNull": bson.A{"$startup.logoUrl", ""}},
		}}},
	)

	cursor, err := s.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var views []*models.BookingView
	if err := cursor.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return views, nil
}
