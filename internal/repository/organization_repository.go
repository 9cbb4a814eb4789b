package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ParcMagScene/MAGSAV-sub011/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// organizationRepository implements OrganizationRepository backed by pgxpool.
type organizationRepository struct {
	pool *pgxpool.Pool
}

// NewOrganizationRepository creates a new organization repository.
func NewOrganizationRepository(pool *pgxpool.Pool) OrganizationRepository {
	return &organizationRepository{pool: pool}
}

// FindByNameAndKind looks an organization up by its (name, kind) natural key.
func (r *organizationRepository) FindByNameAndKind(ctx context.Context, name string, kind domain.OrganizationKind) (*domain.Organization, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, kind, name, email, phone, address, created_at
		 FROM organizations
		 WHERE name = $1 AND kind = $2`,
		name,
		kind,
	)

	var (
		org     domain.Organization
		email   pgtype.Text
		phone   pgtype.Text
		address pgtype.Text
	)
	err := row.Scan(&org.ID, &org.Kind, &org.Name, &email, &phone, &address, &org.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find organization by name and kind: %w", err)
	}

	org.Email = email.String
	org.Phone = phone.String
	org.Address = address.String

	return &org, nil
}

// Insert creates a new organization and returns its generated id.
func (r *organizationRepository) Insert(ctx context.Context, org domain.Organization) (int64, error) {
	var id int64
	err := r.pool.QueryRow(
		ctx,
		`INSERT INTO organizations (kind, name, email, phone, address)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		org.Kind,
		org.Name,
		textOrNull(org.Email),
		textOrNull(org.Phone),
		textOrNull(org.Address),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert organization: %w", err)
	}

	return id, nil
}

func textOrNull(value string) pgtype.Text {
	return pgtype.Text{String: value, Valid: value != ""}
}
