package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ParcMagScene/MAGSAV-sub011/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// interventionRepository implements InterventionRepository backed by pgxpool.
type interventionRepository struct {
	pool *pgxpool.Pool
}

// NewInterventionRepository creates a new intervention repository.
func NewInterventionRepository(pool *pgxpool.Pool) InterventionRepository {
	return &interventionRepository{pool: pool}
}

// Insert creates a new intervention and returns its generated id.
// Interventions are never deduplicated: each call records a distinct
// servicing episode.
func (r *interventionRepository) Insert(ctx context.Context, intervention domain.Intervention) (int64, error) {
	var orgID pgtype.Int8
	if intervention.OrganizationID != nil {
		orgID = pgtype.Int8{Int64: *intervention.OrganizationID, Valid: true}
	}

	dateIn, err := dateOrNull(intervention.DateIn)
	if err != nil {
		return 0, err
	}
	dateOut, err := dateOrNull(intervention.DateOut)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.pool.QueryRow(
		ctx,
		`INSERT INTO interventions
		   (product_id, status, fault, technician, date_in, date_out, tracking_number, owner_kind, organization_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		intervention.ProductID,
		intervention.Status,
		intervention.Fault,
		intervention.Technician,
		dateIn,
		dateOut,
		intervention.TrackingNumber,
		intervention.OwnerKind,
		orgID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert intervention: %w", err)
	}

	return id, nil
}

func dateOrNull(iso *string) (pgtype.Date, error) {
	if iso == nil || *iso == "" {
		return pgtype.Date{}, nil
	}
	parsed, err := time.Parse("2006-01-02", *iso)
	if err != nil {
		return pgtype.Date{}, fmt.Errorf("invalid date %q: %w", *iso, err)
	}
	return pgtype.Date{Time: parsed, Valid: true}, nil
}
