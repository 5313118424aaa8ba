package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/referral-service/internal/domain"
)

// FirmRepository persists firms. Register writes a firm together with its company and first
// manager so a firm never exists without its storefront.
type FirmRepository interface {
	Register(ctx context.Context, firm *domain.Firm, company *domain.Company, manager *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.Firm, error)
}

type firmRepository struct {
	pool *pgxpool.Pool
}

// NewFirmRepository returns a Postgres-backed implementation.
func NewFirmRepository(pool *pgxpool.Pool) FirmRepository {
	return &firmRepository{pool: pool}
}

func (r *firmRepository) Register(ctx context.Context, firm *domain.Firm, company *domain.Company, manager *domain.User) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const firmQuery = `
            INSERT INTO firms (id, name, slug, location, is_active)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING created_at, updated_at`
		if err := tx.QueryRow(ctx, firmQuery,
			firm.ID, firm.Name, firm.Slug, firm.Location, firm.IsActive,
		).Scan(&firm.CreatedAt, &firm.UpdatedAt); err != nil {
			return fmt.Errorf("insert firm: %w", translate(err))
		}

		company.FirmID = &firm.ID
		if err := insertCompany(ctx, tx, company); err != nil {
			return fmt.Errorf("insert company: %w", err)
		}

		manager.FirmID = &firm.ID
		if err := insertUser(ctx, tx, manager); err != nil {
			return fmt.Errorf("insert manager: %w", err)
		}
		return nil
	})
}

func (r *firmRepository) GetByID(ctx context.Context, id string) (*domain.Firm, error) {
	const query = `
        SELECT id, name, slug, location, is_active, created_at, updated_at
        FROM firms WHERE id=$1`

	var firm domain.Firm
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&firm.ID,
		&firm.Name,
		&firm.Slug,
		&firm.Location,
		&firm.IsActive,
		&firm.CreatedAt,
		&firm.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &firm, nil
}
