package repository

import (
	"context"

	"github.com/ParcMagScene/MAGSAV-sub011/internal/domain"
)

// ProductRepository defines the store operations the import engine needs
// for products. FindBySerial returns (nil, nil) when no product matches.
type ProductRepository interface {
	FindBySerial(ctx context.Context, serial string) (*domain.Product, error)
	Insert(ctx context.Context, product domain.Product) (int64, error)
}

// OrganizationRepository defines the store operations for owning parties.
// FindByNameAndKind returns (nil, nil) when no organization matches.
type OrganizationRepository interface {
	FindByNameAndKind(ctx context.Context, name string, kind domain.OrganizationKind) (*domain.Organization, error)
	Insert(ctx context.Context, org domain.Organization) (int64, error)
}

// InterventionRepository persists servicing episodes.
type InterventionRepository interface {
	Insert(ctx context.Context, intervention domain.Intervention) (int64, error)
}

// ImportLogRepository stores import row errors for observability.
type ImportLogRepository interface {
	Record(ctx context.Context, entry domain.ImportLogEntry) error
	List(ctx context.Context, fileName string, limit, offset int) ([]domain.ImportLogEntry, error)
}
