package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/models"
)

const facilityColumns = `id, service_provider_id, facility_type, status, details, created_at, updated_at`

func (db *DB) CreateFacility(ctx context.Context, f *models.Facility) error {
	details, err := json.Marshal(f.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal facility details: %w", err)
	}

	_, err = db.ExecContext(ctx, `INSERT INTO facilities (`+facilityColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.ServiceProviderID, f.FacilityType, f.Status, string(details), f.CreatedAt.UTC(), f.UpdatedAt.UTC())
	if isCheckViolation(err) {
		return domain.NewValidationError("facility details rejected by store", models.FieldErrors{
			"details": fmt.Sprintf("details do not satisfy the %s schema", f.FacilityType),
		})
	}
	if err != nil {
		return fmt.Errorf("failed to insert facility: %w", err)
	}
	return nil
}

func (db *DB) GetFacility(ctx context.Context, id string) (*models.Facility, error) {
	row := db.QueryRowContext(ctx, `SELECT `+facilityColumns+` FROM facilities WHERE id = ?`, id)
	f, err := scanFacility(row)
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

func (db *DB) ListFacilities(ctx context.Context, filter domain.FacilityFilter) ([]*models.Facility, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.ServiceProviderID != "" {
		where = append(where, "service_provider_id = ?")
		args = append(args, filter.ServiceProviderID)
	}
	if filter.Type != "" {
		where = append(where, "facility_type = ?")
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}

	query := `SELECT ` + facilityColumns + ` FROM facilities`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY updated_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}
	defer rows.Close()

	var facilities []*models.Facility
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, err
		}
		facilities = append(facilities, f)
	}
	return facilities, rows.Err()
}

func (db *DB) UpdateFacilityDetails(
	ctx context.Context,
	id, providerID string,
	details models.FacilityDetails,
	status models.FacilityStatus,
) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal facility details: %w", err)
	}
	res, err := db.ExecContext(ctx,
		`UPDATE facilities SET details = ?, status = ?, updated_at = ? WHERE id = ? AND service_provider_id = ?`,
		string(raw), status, time.Now().UTC(), id, providerID)
	if isCheckViolation(err) {
		return domain.NewValidationError("facility details rejected by store", models.FieldErrors{
			"details": "details do not satisfy the facility schema",
		})
	}
	if err != nil {
		return fmt.Errorf("failed to update facility: %w", err)
	}
	return expectOneRow(res)
}

func (db *DB) SetFacilityStatus(ctx context.Context, id string, status models.FacilityStatus) error {
	res, err := db.ExecContext(ctx, `UPDATE facilities SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update facility status: %w", err)
	}
	return expectOneRow(res)
}

func (db *DB) DeleteFacility(ctx context.Context, id, providerID string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM facilities WHERE id = ? AND service_provider_id = ?`, id, providerID)
	if err != nil {
		return fmt.Errorf("failed to delete facility: %w", err)
	}
	return expectOneRow(res)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFacility(row rowScanner) (*models.Facility, error) {
	var (
		f       models.Facility
		details string
	)
	if err := row.Scan(&f.ID, &f.ServiceProviderID, &f.FacilityType, &f.Status, &details, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(details), &f.Details); err != nil {
		return nil, fmt.Errorf("failed to decode facility %s details: %w", f.ID, err)
	}
	return &f, nil
}
