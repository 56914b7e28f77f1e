package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/models"
)

const bookingColumns = `id, startup_id, facility_id, status, rental_plan, amount, created_at, updated_at`

const bookingViewQuery = `
    SELECT b.id, b.startup_id, b.facility_id, b.status, b.rental_plan, b.amount, b.created_at, b.updated_at,
           f.facility_type, COALESCE(json_extract(f.details, '$.name'), ''), f.status, f.service_provider_id,
           COALESCE(s.startup_name, ''), COALESCE(json_extract(s.profile, '$.logoUrl'), '')
    FROM bookings b
    JOIN facilities f ON f.id = b.facility_id
    LEFT JOIN startups s ON s.id = b.startup_id`

func (db *DB) CreateBooking(ctx context.Context, b *models.Booking) error {
	_, err := db.ExecContext(ctx, `INSERT INTO bookings (`+bookingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.StartupID, b.FacilityID, b.Status, b.RentalPlan, b.Amount, b.CreatedAt.UTC(), b.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// UpdateBookingStatus performs a compare-and-set on the booking status
// inside a transaction so concurrent approvals cannot both succeed.
func (db *DB) UpdateBookingStatus(ctx context.Context, id string, from, to models.BookingStatus, at time.Time) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		var current models.BookingStatus
		if err := tx.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ?`, id).Scan(&current); err != nil {
			return notFound(err)
		}
		if current != from {
			return domain.ErrInvalidTransition
		}

		res, err := tx.ExecContext(ctx, `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			to, at.UTC(), id, from)
		if err != nil {
			return fmt.Errorf("failed to update booking status in tx: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil || n == 0 {
			return domain.ErrInvalidTransition
		}
		return nil
	})
}

func (db *DB) GetBookingView(ctx context.Context, id string) (*models.BookingView, error) {
	row := db.QueryRowContext(ctx, bookingViewQuery+` WHERE b.id = ?`, id)
	v, err := scanBookingView(row)
	if err != nil {
		return nil, notFound(err)
	}
	return v, nil
}

func (db *DB) ListBookingViews(ctx context.Context, filter models.BookingFilter) ([]*models.BookingView, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.ServiceProviderID != "" {
		where = append(where, "f.service_provider_id = ?")
		args = append(args, filter.ServiceProviderID)
	}
	if filter.StartupID != "" {
		where = append(where, "b.startup_id = ?")
		args = append(args, filter.StartupID)
	}
	if filter.FacilityID != "" {
		where = append(where, "b.facility_id = ?")
		args = append(args, filter.FacilityID)
	}
	if filter.Status != "" {
		where = append(where, "b.status = ?")
		args = append(args, filter.Status)
	}
	if filter.FacilityStatus != "" {
		where = append(where, "f.status = ?")
		args = append(args, filter.FacilityStatus)
	}

	query := bookingViewQuery
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY b.updated_at DESC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var views []*models.BookingView
	for rows.Next() {
		v, err := scanBookingView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func scanBookingView(row rowScanner) (*models.BookingView, error) {
	var v models.BookingView
	err := row.Scan(
		&v.ID, &v.StartupID, &v.FacilityID, &v.Status, &v.RentalPlan, &v.Amount, &v.CreatedAt, &v.UpdatedAt,
		&v.FacilityType, &v.FacilityName, &v.FacilityStatus, &v.ServiceProviderID,
		&v.StartupName, &v.StartupLogoURL,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
