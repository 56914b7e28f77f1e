package mongostore

import (
	"github.com/SamFelix03/cummadashboard/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var integer = bson.A{"int", "long"}

func enumOf[T ~string](values ...T) bson.A {
	out := make(bson.A, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}

func validators() map[string]bson.M {
	return map[string]bson.M{
		UsersCollection: {"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "email", "password", "userType", "authProvider", "createdAt", "updatedAt"},
			"properties": bson.M{
				"email":           bson.M{"bsonType": "string", "pattern": "^[^@\\s]+@[^@\\s]+$"},
				"password":        bson.M{"bsonType": "string"},
				"userType":        bson.M{"enum": enumOf(models.UserTypeStartup, models.UserTypeServiceProvider)},
				"authProvider":    bson.M{"enum": enumOf(models.AuthProviderLocal, models.AuthProviderGoogle, models.AuthProviderFacebook, models.AuthProviderApple)},
				"isEmailVerified": bson.M{"bsonType": "bool"},
			},
		}},
		StartupsCollection: {"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "userId", "startupName"},
			"properties": bson.M{
				"startupName": bson.M{"bsonType": "string", "minLength": 1},
				"entityType":  bson.M{"enum": enumOf(models.EntityLLP, models.EntityPrivateLimited, models.EntitySoleProprietorship)},
				"lookingFor": bson.M{
					"bsonType":    bson.A{"array", "null"},
					"uniqueItems": true,
					"items":       bson.M{"enum": enumOf(models.LookingForCoworking, models.LookingForRawSpace)},
				},
			},
		}},
		ProvidersCollection: {"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "userId", "serviceName", "primaryEmailId"},
			"properties": bson.M{
				"serviceName": bson.M{"bsonType": "string", "minLength": 1},
				"features":    bson.M{"bsonType": bson.A{"array", "null"}},
			},
		}},
		FacilitiesCollection: {"$jsonSchema": facilitySchema()},
		BookingsCollection: {"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "startupId", "facilityId", "status", "rentalPlan", "amount"},
			"properties": bson.M{
				"status":     bson.M{"enum": enumOf(models.BookingPending, models.BookingApproved, models.BookingRejected)},
				"rentalPlan": bson.M{"enum": enumOf(models.PlanAnnual, models.PlanMonthly, models.PlanWeekly, models.PlanDaily)},
				"amount":     bson.M{"bsonType": "number", "exclusiveMinimum": true, "minimum": 0},
			},
		}},
	}
}

// facilitySchema validates the shared base fields and then exactly one
// per-type branch of details.
func facilitySchema() bson.M {
	plan := bson.M{
		"bsonType": "object",
		"required": bson.A{"name", "price", "duration"},
		"properties": bson.M{
			"name":     bson.M{"enum": enumOf(models.PlanAnnual, models.PlanMonthly, models.PlanWeekly, models.PlanDaily)},
			"price":    bson.M{"bsonType": "number", "minimum": 0},
			"duration": bson.M{"enum": enumOf(models.PlanAnnual, models.PlanMonthly, models.PlanWeekly, models.PlanDaily)},
		},
	}

	branch := func(types []models.FacilityType, required bson.A, props bson.M) bson.M {
		return bson.M{
			"properties": bson.M{
				"facilityType": bson.M{"enum": enumOf(types...)},
				"details": bson.M{
					"required":   required,
					"properties": props,
				},
			},
		}
	}
	nonEmpty := bson.M{"bsonType": "array", "minItems": 1}

	return bson.M{
		"bsonType": "object",
		"required": bson.A{"_id", "serviceProviderId", "facilityType", "status", "details"},
		"properties": bson.M{
			"facilityType": bson.M{"enum": enumOf(models.FacilityTypes...)},
			"status":       bson.M{"enum": enumOf(models.FacilityPending, models.FacilityActive, models.FacilityRejected)},
			"details": bson.M{
				"bsonType": "object",
				"required": bson.A{"name", "description", "images", "rentalPlans"},
				"properties": bson.M{
					"name":        bson.M{"bsonType": "string"},
					"description": bson.M{"bsonType": "string"},
					"images":      bson.M{"bsonType": bson.A{"array", "null"}},
					"rentalPlans": bson.M{"bsonType": "array", "minItems": 1, "items": plan},
				},
			},
		},
		"oneOf": bson.A{
			branch([]models.FacilityType{models.FacilityIndividualCabin},
				bson.A{"totalCabins", "availableCabins"},
				bson.M{"totalCabins": bson.M{"bsonType": integer}, "availableCabins": bson.M{"bsonType": integer}}),
			branch([]models.FacilityType{models.FacilityCoworkingSpaces},
				bson.A{"totalSeats", "availableSeats"},
				bson.M{"totalSeats": bson.M{"bsonType": integer}, "availableSeats": bson.M{"bsonType": integer}}),
			branch([]models.FacilityType{models.FacilityMeetingRooms},
				bson.A{"totalRooms", "seatingCapacity", "totalTrainingRoomSeaters"},
				bson.M{
					"totalRooms":               bson.M{"bsonType": integer},
					"seatingCapacity":          bson.M{"bsonType": integer},
					"totalTrainingRoomSeaters": bson.M{"bsonType": integer},
				}),
			branch([]models.FacilityType{
				models.FacilityBioAlliedLabs, models.FacilityManufacturingLabs, models.FacilityPrototypingLabs,
				models.FacilitySoftware, models.FacilitySaaSAllied,
			}, bson.A{"equipment"}, bson.M{"equipment": nonEmpty}),
			branch([]models.FacilityType{models.FacilityRawSpaceOffice, models.FacilityRawSpaceLab},
				bson.A{"areaDetails"}, bson.M{"areaDetails": nonEmpty}),
		},
	}
}

func indexes() map[string][]mongo.IndexModel {
	unique := options.Index().SetUnique(true)
	return map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		StartupsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: unique},
		},
		ProvidersCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: unique},
		},
		FacilitiesCollection: {
			{Keys: bson.D{{Key: "serviceProviderId", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "facilityType", Value: 1}}},
		},
		BookingsCollection: {
			{Keys: bson.D{{Key: "facilityId", Value: 1}}},
			{Keys: bson.D{{Key: "startupId", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
	}
}
