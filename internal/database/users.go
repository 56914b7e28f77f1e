package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/models"
)

const userColumns = `id, email, password_hash, user_type, auth_provider, auth_provider_id,
	is_email_verified, created_at, updated_at`

// CreateStartupAccount inserts the user and startup profile in one transaction.
func (db *DB) CreateStartupAccount(ctx context.Context, user *models.User, startup *models.Startup) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}
		startup.UserID = user.ID
		return insertStartup(ctx, tx, startup)
	})
}

// CreateServiceProviderAccount inserts the user and provider profile in one transaction.
func (db *DB) CreateServiceProviderAccount(ctx context.Context, user *models.User, provider *models.ServiceProvider) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}
		provider.UserID = user.ID
		return insertServiceProvider(ctx, tx, provider)
	})
}

func insertUser(ctx context.Context, tx *sql.Tx, user *models.User) error {
	var existing int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, strings.ToLower(user.Email)).Scan(&existing)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing > 0 {
		return domain.ErrEmailTaken
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		strings.ToLower(user.Email),
		user.PasswordHash,
		user.UserType,
		user.AuthProvider,
		user.AuthProviderID,
		user.IsEmailVerified,
		user.CreatedAt.UTC(),
		user.UpdatedAt.UTC(),
	)
	if isUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to insert user in tx: %w", err)
	}
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return db.queryUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.queryUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(email))
}

func (db *DB) queryUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.UserType, &user.AuthProvider,
		&user.AuthProviderID, &user.IsEmailVerified, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (db *DB) SetEmailVerified(ctx context.Context, userID string) error {
	res, err := db.ExecContext(ctx, `UPDATE users SET is_email_verified = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to verify user email: %w", err)
	}
	return expectOneRow(res)
}

func insertStartup(ctx context.Context, tx *sql.Tx, s *models.Startup) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal startup: %w", err)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO startups (id, user_id, startup_name, profile, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.StartupName, string(doc), s.CreatedAt.UTC(), s.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert startup in tx: %w", err)
	}
	return nil
}

func insertServiceProvider(ctx context.Context, tx *sql.Tx, p *models.ServiceProvider) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal service provider: %w", err)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO service_providers (id, user_id, service_name, profile, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.ServiceName, string(doc), p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert service provider in tx: %w", err)
	}
	return nil
}

func (db *DB) GetStartup(ctx context.Context, id string) (*models.Startup, error) {
	return db.queryStartup(ctx, `SELECT id, user_id, profile, created_at, updated_at FROM startups WHERE id = ?`, id)
}

func (db *DB) GetStartupByUserID(ctx context.Context, userID string) (*models.Startup, error) {
	return db.queryStartup(ctx, `SELECT id, user_id, profile, created_at, updated_at FROM startups WHERE user_id = ?`, userID)
}

func (db *DB) queryStartup(ctx context.Context, query string, args ...interface{}) (*models.Startup, error) {
	var (
		s   models.Startup
		doc string
		id  string
		uid string
		cAt time.Time
		uAt time.Time
	)
	if err := db.QueryRowContext(ctx, query, args...).Scan(&id, &uid, &doc, &cAt, &uAt); err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		return nil, fmt.Errorf("failed to decode startup %s: %w", id, err)
	}
	s.ID, s.UserID, s.CreatedAt, s.UpdatedAt = id, uid, cAt, uAt
	return &s, nil
}

func (db *DB) UpdateStartup(ctx context.Context, s *models.Startup) error {
	s.UpdatedAt = time.Now().UTC()
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal startup: %w", err)
	}
	res, err := db.ExecContext(ctx, `UPDATE startups SET startup_name = ?, profile = ?, updated_at = ? WHERE id = ?`,
		s.StartupName, string(doc), s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update startup: %w", err)
	}
	return expectOneRow(res)
}

func (db *DB) GetServiceProvider(ctx context.Context, id string) (*models.ServiceProvider, error) {
	return db.queryServiceProvider(ctx,
		`SELECT id, user_id, profile, created_at, updated_at FROM service_providers WHERE id = ?`, id)
}

func (db *DB) GetServiceProviderByUserID(ctx context.Context, userID string) (*models.ServiceProvider, error) {
	return db.queryServiceProvider(ctx,
		`SELECT id, user_id, profile, created_at, updated_at FROM service_providers WHERE user_id = ?`, userID)
}

func (db *DB) queryServiceProvider(ctx context.Context, query string, args ...interface{}) (*models.ServiceProvider, error) {
	var (
		p   models.ServiceProvider
		doc string
		id  string
		uid string
		cAt time.Time
		uAt time.Time
	)
	if err := db.QueryRowContext(ctx, query, args...).Scan(&id, &uid, &doc, &cAt, &uAt); err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("failed to decode service provider %s: %w", id, err)
	}
	p.ID, p.UserID, p.CreatedAt, p.UpdatedAt = id, uid, cAt, uAt
	return &p, nil
}

func (db *DB) UpdateServiceProvider(ctx context.Context, p *models.ServiceProvider) error {
	p.UpdatedAt = time.Now().UTC()
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal service provider: %w", err)
	}
	res, err := db.ExecContext(ctx, `UPDATE service_providers SET service_name = ?, profile = ?, updated_at = ? WHERE id = ?`,
		p.ServiceName, string(doc), p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update service provider: %w", err)
	}
	return expectOneRow(res)
}
