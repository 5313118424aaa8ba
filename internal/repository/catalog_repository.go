package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/referral-service/internal/domain"
)

// ServiceFilter narrows the public catalog search. Empty fields do not filter.
type ServiceFilter struct {
	Query        string
	Location     string
	CategorySlug string
	CompanyID    *int64
	Limit        int
	Offset       int
}

// CategoryRepository exposes the read-only category listing.
type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
}

// ServiceRepository persists company offerings.
type ServiceRepository interface {
	Create(ctx context.Context, service *domain.Service) error
	Update(ctx context.Context, service *domain.Service) error
	// Delete removes the service; referral requests keep their row with the service cleared.
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	Search(ctx context.Context, filter ServiceFilter) ([]domain.Service, error)
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a Postgres-backed implementation.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, slug FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	if err := r.pool.QueryRow(ctx, `SELECT id, name, slug FROM categories WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Slug); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

type serviceRepository struct {
	pool *pgxpool.Pool
}

// NewServiceRepository returns a Postgres-backed implementation.
func NewServiceRepository(pool *pgxpool.Pool) ServiceRepository {
	return &serviceRepository{pool: pool}
}

const serviceColumns = `s.id, s.company_id, s.category_id, s.title, s.description, s.keywords,
    s.price_min, s.price_max, s.created_at, s.updated_at`

func (r *serviceRepository) Create(ctx context.Context, service *domain.Service) error {
	const query = `
        INSERT INTO services (company_id, category_id, title, description, keywords, price_min, price_max)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		service.CompanyID,
		service.CategoryID,
		service.Title,
		service.Description,
		service.Keywords,
		service.PriceMin,
		service.PriceMax,
	).Scan(&service.ID, &service.CreatedAt, &service.UpdatedAt)
	return translate(err)
}

func (r *serviceRepository) Update(ctx context.Context, service *domain.Service) error {
	const query = `
        UPDATE services SET category_id=$1, title=$2, description=$3, keywords=$4,
            price_min=$5, price_max=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		service.CategoryID,
		service.Title,
		service.Description,
		service.Keywords,
		service.PriceMin,
		service.PriceMax,
		service.ID,
	).Scan(&service.UpdatedAt)
	return translate(err)
}

func (r *serviceRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *serviceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	service, err := scanService(r.pool.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services s WHERE s.id=$1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return service, nil
}

func (r *serviceRepository) Search(ctx context.Context, filter ServiceFilter) ([]domain.Service, error) {
	base := `SELECT ` + serviceColumns + `
             FROM services s
             JOIN companies c ON c.id = s.company_id
             LEFT JOIN categories cat ON cat.id = s.category_id`
	clauses := []string{"1=1"}
	args := []any{}

	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(s.title ILIKE %s OR s.description ILIKE %s OR s.keywords ILIKE %s OR c.name ILIKE %s)", p, p, p, p))
	}
	if loc := strings.TrimSpace(filter.Location); loc != "" {
		args = append(args, "%"+loc+"%")
		clauses = append(clauses, fmt.Sprintf("c.location_text ILIKE $%d", len(args)))
	}
	if slug := strings.TrimSpace(filter.CategorySlug); slug != "" {
		args = append(args, slug)
		clauses = append(clauses, fmt.Sprintf("cat.slug = $%d", len(args)))
	}
	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		clauses = append(clauses, fmt.Sprintf("s.company_id = $%d", len(args)))
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`%s WHERE %s ORDER BY s.id DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Service
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *service)
	}
	return result, rows.Err()
}

func scanService(row pgx.Row) (*domain.Service, error) {
	var s domain.Service
	if err := row.Scan(
		&s.ID,
		&s.CompanyID,
		&s.CategoryID,
		&s.Title,
		&s.Description,
		&s.Keywords,
		&s.PriceMin,
		&s.PriceMax,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// pageBounds applies the default page size of 20 and a ceiling of 100.
func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
