package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spec-kit/referral-service/internal/domain"
	"github.com/spec-kit/referral-service/internal/repository"
)

type referralStore struct{ s *Store }

func (rs referralStore) Create(_ context.Context, req *domain.ReferralRequest) error {
	s := rs.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.companies[req.TargetCompanyID]; !ok {
		return fmt.Errorf("%w: referral_requests_target_company_id_fkey", repository.ErrNotFound)
	}
	if req.RequestedServiceID != nil {
		if _, ok := s.services[*req.RequestedServiceID]; !ok {
			return fmt.Errorf("%w: referral_requests_requested_service_id_fkey", repository.ErrNotFound)
		}
	}
	s.nextReferral++
	req.ID = s.nextReferral
	if req.CreatedAt.IsZero() {
		req.CreatedAt = s.timestamp()
	}
	req.UpdatedAt = req.CreatedAt
	s.referrals[req.ID] = cloneReferral(*req)
	return nil
}

func (rs referralStore) GetByID(_ context.Context, id int64) (*domain.ReferralRequest, error) {
	s := rs.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.referrals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := cloneReferral(req)
	return &cp, nil
}

func (rs referralStore) List(_ context.Context, filter repository.ReferralFilter) ([]domain.ReferralRequest, error) {
	s := rs.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.ReferralRequest
	for _, req := range s.referrals {
		if filter.CompanyID != nil && req.TargetCompanyID != *filter.CompanyID {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		result = append(result, cloneReferral(req))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	if filter.Limit > 0 {
		result = page(result, filter.Limit, filter.Offset)
	}
	return result, nil
}

func (rs referralStore) TransitionIfPending(_ context.Context, id int64, status domain.ReferralStatus, commissionDue bool, now time.Time) (*domain.ReferralRequest, error) {
	s := rs.s
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.referrals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if req.Status != domain.ReferralStatusPending {
		return nil, fmt.Errorf("%w: %s", repository.ErrStaleStatus, req.Status)
	}
	req.Status = status
	req.IsCommissionDue = commissionDue
	req.UpdatedAt = now
	s.referrals[id] = req
	cp := cloneReferral(req)
	return &cp, nil
}

func (rs referralStore) TimeoutStale(_ context.Context, cutoff, now time.Time) (int64, error) {
	s := rs.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for id, req := range s.referrals {
		if req.Status != domain.ReferralStatusPending || !req.CreatedAt.Before(cutoff) {
			continue
		}
		req.Status = domain.ReferralStatusTimeout
		req.UpdatedAt = now
		s.referrals[id] = req
		count++
	}
	return count, nil
}
