// Package mongostore is the MongoDB implementation of domain.Repository.
// Collection names match the ones used by the existing production data.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/config"
	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/logging"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	UsersCollection      = "Users"
	StartupsCollection   = "Startups"
	ProvidersCollection  = "Service Provider"
	FacilitiesCollection = "Facilities"
	BookingsCollection   = "bookings"
)

const (
	codeNamespaceExists    = 48
	codeDocumentValidation = 121
)

type Store struct {
	client     *mongo.Client
	db         *mongo.Database
	users      *mongo.Collection
	startups   *mongo.Collection
	providers  *mongo.Collection
	facilities *mongo.Collection
	bookings   *mongo.Collection
	logger     *zerolog.Logger
	now        func() time.Time
}

var _ domain.Repository = (*Store)(nil)

// Connect dials the cluster, verifies the primary is reachable and makes
// sure validators and indexes are in place.
func Connect(ctx context.Context, cfg config.MongoConfig, logger *zerolog.Logger) (*Store, error) {
	timeout := time.Duration(cfg.ConnectTimeoutSec) * time.Second
	opts := options.Client().ApplyURI(cfg.URI).SetConnectTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := newStore(client, cfg.Database, logger)
	if err := s.ensureSchema(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	s.logger.Info().Str("database", cfg.Database).Msg("mongo store initialized")
	return s, nil
}

func newStore(client *mongo.Client, database string, logger *zerolog.Logger) *Store {
	db := client.Database(database)
	return &Store{
		client:     client,
		db:         db,
		users:      db.Collection(UsersCollection),
		startups:   db.Collection(StartupsCollection),
		providers:  db.Collection(ProvidersCollection),
		facilities: db.Collection(FacilitiesCollection),
		bookings:   db.Collection(BookingsCollection),
		logger:     logging.Component(logger, "mongo"),
		now:        time.Now,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) ensureSchema(ctx context.Context) error {
	for name, validator := range validators() {
		if err := s.applyValidator(ctx, name, validator); err != nil {
			return fmt.Errorf("validator for %s: %w", name, err)
		}
	}
	for name, idx := range indexes() {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("indexes for %s: %w", name, err)
		}
	}
	return nil
}

// applyValidator creates the collection with its validator, or updates the
// validator of a collection that already exists.
func (s *Store) applyValidator(ctx context.Context, name string, validator bson.M) error {
	opts := options.CreateCollection().
		SetValidator(validator).
		SetValidationLevel("strict").
		SetValidationAction("error")
	err := s.db.CreateCollection(ctx, name, opts)
	if err == nil {
		return nil
	}

	var cmdErr mongo.CommandError
	if !errors.As(err, &cmdErr) || cmdErr.Code != codeNamespaceExists {
		return err
	}
	return s.db.RunCommand(ctx, bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "strict"},
	}).Err()
}

// withTransaction runs fn in a multi-document transaction. Requires a
// replica set or sharded cluster.
func (s *Store) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	return err
}

func isValidationFailure(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == codeDocumentValidation {
				return true
			}
		}
	}
	var ce mongo.CommandError
	return errors.As(err, &ce) && ce.Code == codeDocumentValidation
}

func expectMatched(res *mongo.UpdateResult) error {
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
