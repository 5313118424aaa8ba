package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/referral-service/internal/domain"
)

// ReferralFilter narrows referral listings. A nil CompanyID lists across all companies.
// Limit <= 0 returns every match.
type ReferralFilter struct {
	CompanyID *int64
	Status    *domain.ReferralStatus
	Limit     int
	Offset    int
}

// ReferralRepository persists referral requests. Status leaves pending only through
// TransitionIfPending and TimeoutStale, both conditional on the row still being pending.
type ReferralRepository interface {
	Create(ctx context.Context, req *domain.ReferralRequest) error
	GetByID(ctx context.Context, id int64) (*domain.ReferralRequest, error)
	List(ctx context.Context, filter ReferralFilter) ([]domain.ReferralRequest, error)
	// TransitionIfPending moves a pending request to status. It returns ErrStaleStatus when the
	// request exists but is no longer pending and ErrNotFound when it does not exist.
	TransitionIfPending(ctx context.Context, id int64, status domain.ReferralStatus, commissionDue bool, now time.Time) (*domain.ReferralRequest, error)
	// TimeoutStale moves every pending request created before cutoff to timeout.
	TimeoutStale(ctx context.Context, cutoff, now time.Time) (int64, error)
}

type referralRepository struct {
	pool *pgxpool.Pool
}

// NewReferralRepository returns a Postgres-backed implementation.
func NewReferralRepository(pool *pgxpool.Pool) ReferralRepository {
	return &referralRepository{pool: pool}
}

const referralColumns = `id, customer_name, customer_email, description, target_company_id,
    requested_service_id, status, is_commission_due, commission_amount, created_at, updated_at`

func (r *referralRepository) Create(ctx context.Context, req *domain.ReferralRequest) error {
	const query = `
        INSERT INTO referral_requests (customer_name, customer_email, description, target_company_id,
            requested_service_id, status, is_commission_due, commission_amount, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		req.CustomerName,
		req.CustomerEmail,
		req.Description,
		req.TargetCompanyID,
		req.RequestedServiceID,
		req.Status,
		req.IsCommissionDue,
		req.CommissionAmount,
		req.CreatedAt,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	return translate(err)
}

func (r *referralRepository) GetByID(ctx context.Context, id int64) (*domain.ReferralRequest, error) {
	req, err := scanReferral(r.pool.QueryRow(ctx, `SELECT `+referralColumns+` FROM referral_requests WHERE id=$1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return req, nil
}

func (r *referralRepository) List(ctx context.Context, filter ReferralFilter) ([]domain.ReferralRequest, error) {
	base := `SELECT ` + referralColumns + ` FROM referral_requests`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		clauses = append(clauses, fmt.Sprintf("target_company_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC, id DESC`, base, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		limit, offset := pageBounds(filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ReferralRequest
	for rows.Next() {
		req, err := scanReferral(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	return result, rows.Err()
}

func (r *referralRepository) TransitionIfPending(ctx context.Context, id int64, status domain.ReferralStatus, commissionDue bool, now time.Time) (*domain.ReferralRequest, error) {
	query := `
        UPDATE referral_requests SET status=$2, is_commission_due=$3, updated_at=$4
        WHERE id=$1 AND status='pending'
        RETURNING ` + referralColumns

	req, err := scanReferral(r.pool.QueryRow(ctx, query, id, status, commissionDue, now))
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var current domain.ReferralStatus
	if err := r.pool.QueryRow(ctx, `SELECT status FROM referral_requests WHERE id=$1`, id).Scan(&current); err != nil {
		return nil, translate(err)
	}
	return nil, fmt.Errorf("%w: %s", ErrStaleStatus, current)
}

func (r *referralRepository) TimeoutStale(ctx context.Context, cutoff, now time.Time) (int64, error) {
	const query = `
        UPDATE referral_requests SET status='timeout', updated_at=$2
        WHERE status='pending' AND created_at < $1`

	cmd, err := r.pool.Exec(ctx, query, cutoff, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanReferral(row pgx.Row) (*domain.ReferralRequest, error) {
	var req domain.ReferralRequest
	if err := row.Scan(
		&req.ID,
		&req.CustomerName,
		&req.CustomerEmail,
		&req.Description,
		&req.TargetCompanyID,
		&req.RequestedServiceID,
		&req.Status,
		&req.IsCommissionDue,
		&req.CommissionAmount,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}
