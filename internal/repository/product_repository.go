package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ParcMagScene/MAGSAV-sub011/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// productRepository implements ProductRepository backed by pgxpool.
type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates a new product repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

// FindBySerial looks a product up by its serial number natural key.
func (r *productRepository) FindBySerial(ctx context.Context, serial string) (*domain.Product, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, name, serial_number, manufacturer, tracking_code, situation, created_at
		 FROM products
		 WHERE serial_number = $1`,
		serial,
	)

	var product domain.Product
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.SerialNumber,
		&product.Manufacturer,
		&product.TrackingCode,
		&product.Situation,
		&product.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product by serial: %w", err)
	}

	return &product, nil
}

// Insert creates a new product and returns its generated id.
func (r *productRepository) Insert(ctx context.Context, product domain.Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(
		ctx,
		`INSERT INTO products (name, serial_number, manufacturer, tracking_code, situation)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		product.Name,
		product.SerialNumber,
		product.Manufacturer,
		product.TrackingCode,
		product.Situation,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert product: %w", err)
	}

	return id, nil
}
