package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/referral-service/internal/domain"
)

// CompanyRepository persists storefront companies.
type CompanyRepository interface {
	Create(ctx context.Context, company *domain.Company) error
	Update(ctx context.Context, company *domain.Company) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Company, error)
	GetByFirmID(ctx context.Context, firmID string) (*domain.Company, error)
}

type companyRepository struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository returns a Postgres-backed implementation.
func NewCompanyRepository(pool *pgxpool.Pool) CompanyRepository {
	return &companyRepository{pool: pool}
}

const companyColumns = `id, firm_id, owner_user_id, name, slug, description, location_text,
    phone, email, tax_number, min_order_amount, default_delivery_fee, estimated_delivery_minutes,
    created_at, updated_at`

func insertCompany(ctx context.Context, q querier, company *domain.Company) error {
	const query = `
        INSERT INTO companies (firm_id, owner_user_id, name, slug, description, location_text,
            phone, email, tax_number, min_order_amount, default_delivery_fee, estimated_delivery_minutes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id, created_at, updated_at`

	s := company.Settings
	err := q.QueryRow(ctx, query,
		company.FirmID,
		company.OwnerUserID,
		company.Name,
		company.Slug,
		company.Description,
		company.LocationText,
		s.Phone,
		s.Email,
		s.TaxNumber,
		s.MinOrderAmount,
		s.DefaultDeliveryFee,
		s.EstimatedDeliveryMinutes,
	).Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
	return translate(err)
}

func (r *companyRepository) Create(ctx context.Context, company *domain.Company) error {
	return insertCompany(ctx, r.pool, company)
}

func (r *companyRepository) Update(ctx context.Context, company *domain.Company) error {
	const query = `
        UPDATE companies SET owner_user_id=$1, name=$2, slug=$3, description=$4, location_text=$5,
            phone=$6, email=$7, tax_number=$8, min_order_amount=$9, default_delivery_fee=$10,
            estimated_delivery_minutes=$11, updated_at=NOW()
        WHERE id=$12
        RETURNING updated_at`

	s := company.Settings
	err := r.pool.QueryRow(ctx, query,
		company.OwnerUserID,
		company.Name,
		company.Slug,
		company.Description,
		company.LocationText,
		s.Phone,
		s.Email,
		s.TaxNumber,
		s.MinOrderAmount,
		s.DefaultDeliveryFee,
		s.EstimatedDeliveryMinutes,
		company.ID,
	).Scan(&company.UpdatedAt)
	return translate(err)
}

// Delete removes the company; services and referral requests cascade in the schema.
func (r *companyRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *companyRepository) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	return r.fetchSingle(ctx, `SELECT `+companyColumns+` FROM companies WHERE id=$1`, id)
}

func (r *companyRepository) GetByFirmID(ctx context.Context, firmID string) (*domain.Company, error) {
	return r.fetchSingle(ctx, `SELECT `+companyColumns+` FROM companies WHERE firm_id=$1`, firmID)
}

func (r *companyRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Company, error) {
	company, err := scanCompany(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, translate(err)
	}
	return company, nil
}

func scanCompany(row pgx.Row) (*domain.Company, error) {
	var c domain.Company
	if err := row.Scan(
		&c.ID,
		&c.FirmID,
		&c.OwnerUserID,
		&c.Name,
		&c.Slug,
		&c.Description,
		&c.LocationText,
		&c.Settings.Phone,
		&c.Settings.Email,
		&c.Settings.TaxNumber,
		&c.Settings.MinOrderAmount,
		&c.Settings.DefaultDeliveryFee,
		&c.Settings.EstimatedDeliveryMinutes,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
