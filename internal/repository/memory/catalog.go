package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spec-kit/referral-service/internal/domain"
	"github.com/spec-kit/referral-service/internal/repository"
)

type categoryStore struct{ s *Store }

func (c categoryStore) List(_ context.Context) ([]domain.Category, error) {
	s := c.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Category, 0, len(s.categories))
	for _, cat := range s.categories {
		result = append(result, cat)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (c categoryStore) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	s := c.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	cat, ok := s.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &cat, nil
}

type serviceStore struct{ s *Store }

func (ss serviceStore) checkRefs(svc *domain.Service) error {
	if _, ok := ss.s.companies[svc.CompanyID]; !ok {
		return fmt.Errorf("%w: services_company_id_fkey", repository.ErrNotFound)
	}
	if svc.CategoryID != nil {
		if _, ok := ss.s.categories[*svc.CategoryID]; !ok {
			return fmt.Errorf("%w: services_category_id_fkey", repository.ErrNotFound)
		}
	}
	return nil
}

func (ss serviceStore) Create(_ context.Context, svc *domain.Service) error {
	s := ss.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ss.checkRefs(svc); err != nil {
		return err
	}
	s.nextService++
	svc.ID = s.nextService
	now := s.timestamp()
	svc.CreatedAt, svc.UpdatedAt = now, now
	s.services[svc.ID] = cloneService(*svc)
	return nil
}

func (ss serviceStore) Update(_ context.Context, svc *domain.Service) error {
	s := ss.s
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.services[svc.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := cloneService(*svc)
	updated.CompanyID = existing.CompanyID
	if err := ss.checkRefs(&updated); err != nil {
		return err
	}
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.timestamp()
	s.services[svc.ID] = updated
	svc.CompanyID = updated.CompanyID
	svc.UpdatedAt = updated.UpdatedAt
	return nil
}

// Delete clears requested_service_id on referrals that named the service.
func (ss serviceStore) Delete(_ context.Context, id int64) error {
	s := ss.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.services[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.services, id)
	for rid, r := range s.referrals {
		if r.RequestedServiceID != nil && *r.RequestedServiceID == id {
			r.RequestedServiceID = nil
			s.referrals[rid] = r
		}
	}
	return nil
}

func (ss serviceStore) GetByID(_ context.Context, id int64) (*domain.Service, error) {
	s := ss.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := cloneService(svc)
	return &cp, nil
}

func (ss serviceStore) Search(_ context.Context, filter repository.ServiceFilter) ([]domain.Service, error) {
	s := ss.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	location := strings.ToLower(strings.TrimSpace(filter.Location))
	slug := strings.TrimSpace(filter.CategorySlug)

	var matched []domain.Service
	ids := sortedKeys(s.services)
	for i := len(ids) - 1; i >= 0; i-- {
		svc := s.services[ids[i]]
		company := s.companies[svc.CompanyID]
		if filter.CompanyID != nil && svc.CompanyID != *filter.CompanyID {
			continue
		}
		if query != "" && !containsAny(query, svc.Title, svc.Description, svc.Keywords, company.Name) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(company.LocationText), location) {
			continue
		}
		if slug != "" {
			if svc.CategoryID == nil || s.categories[*svc.CategoryID].Slug != slug {
				continue
			}
		}
		matched = append(matched, cloneService(svc))
	}
	return page(matched, filter.Limit, filter.Offset), nil
}

func containsAny(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// page mirrors the SQL paging defaults: 20 per page, at most 100.
func page[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
