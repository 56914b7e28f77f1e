package mongostore

import (
	"context"
	"fmt"

	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateStartupAccount inserts the user and startup profile in one transaction.
func (s *Store) CreateStartupAccount(ctx context.Context, user *models.User, startup *models.Startup) error {
	return s.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := s.insertUser(sc, user); err != nil {
			return err
		}
		startup.UserID = user.ID
		if _, err := s.startups.InsertOne(sc, startup); err != nil {
			return profileInsertError("startup", err)
		}
		return nil
	})
}

// CreateServiceProviderAccount inserts the user and provider profile in one transaction.
func (s *Store) CreateServiceProviderAccount(ctx context.Context, user *models.User, provider *models.ServiceProvider) error {
	return s.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := s.insertUser(sc, user); err != nil {
			return err
		}
		provider.UserID = user.ID
		if _, err := s.providers.InsertOne(sc, provider); err != nil {
			return profileInsertError("service provider", err)
		}
		return nil
	})
}

func (s *Store) insertUser(ctx context.Context, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	_, err := s.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrEmailTaken
	}
	if isValidationFailure(err) {
		return domain.NewValidationError("user rejected by store", models.FieldErrors{"email": "invalid user document"})
	}
	if err != nil {
		return fmt.Errorf("failed to insert user in tx: %w", err)
	}
	return nil
}

func profileInsertError(kind string, err error) error {
	if isValidationFailure(err) {
		return domain.NewValidationError(kind+" profile rejected by store", nil)
	}
	return fmt.Errorf("failed to insert %s in tx: %w", kind, err)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": normalizeEmail(email)})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) SetEmailVerified(ctx context.Context, userID string) error {
	res, err := s.users.UpdateByID(ctx, userID, bson.M{"$set": bson.M{
		"isEmailVerified": true,
		"updatedAt":       s.now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("failed to verify user email: %w", err)
	}
	return expectMatched(res)
}

func (s *Store) GetStartup(ctx context.Context, id string) (*models.Startup, error) {
	return s.findStartup(ctx, bson.M{"_id": id})
}

func (s *Store) GetStartupByUserID(ctx context.Context, userID string) (*models.Startup, error) {
	return s.findStartup(ctx, bson.M{"userId": userID})
}

func (s *Store) findStartup(ctx context.Context, filter bson.M) (*models.Startup, error) {
	var startup models.Startup
	if err := s.startups.FindOne(ctx, filter).Decode(&startup); err != nil {
		return nil, notFound(err)
	}
	return &startup, nil
}

func (s *Store) UpdateStartup(ctx context.Context, startup *models.Startup) error {
	startup.UpdatedAt = s.now().UTC()
	res, err := s.startups.ReplaceOne(ctx, bson.M{"_id": startup.ID}, startup)
	if isValidationFailure(err) {
		return domain.NewValidationError("startup profile rejected by store", nil)
	}
	if err != nil {
		return fmt.Errorf("failed to update startup: %w", err)
	}
	return expectMatched(res)
}

func (s *Store) GetServiceProvider(ctx context.Context, id string) (*models.ServiceProvider, error) {
	return s.findServiceProvider(ctx, bson.M{"_id": id})
}

func (s *Store) GetServiceProviderByUserID(ctx context.Context, userID string) (*models.ServiceProvider, error) {
	return s.findServiceProvider(ctx, bson.M{"userId": userID})
}

func (s *Store) findServiceProvider(ctx context.Context, filter bson.M) (*models.ServiceProvider, error) {
	var provider models.ServiceProvider
	if err := s.providers.FindOne(ctx, filter).Decode(&provider); err != nil {
		return nil, notFound(err)
	}
	return &provider, nil
}

func (s *Store) UpdateServiceProvider(ctx context.Context, provider *models.ServiceProvider) error {
	provider.UpdatedAt = s.now().UTC()
	res, err := s.providers.ReplaceOne(ctx, bson.M{"_id": provider.ID}, provider)
	if isValidationFailure(err) {
		return domain.NewValidationError("service provider profile rejected by store", nil)
	}
	if err != nil {
		return fmt.Errorf("failed to update service provider: %w", err)
	}
	return expectMatched(res)
}
