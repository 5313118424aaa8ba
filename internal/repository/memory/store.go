// Package memory provides an in-memory implementation of the repository contracts used for
// tests and for running the service without a database.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/referral-service/internal/domain"
	"github.com/spec-kit/referral-service/internal/repository"
)

var (
	_ repository.FirmRepository     = firmStore{}
	_ repository.UserRepository     = userStore{}
	_ repository.CompanyRepository  = companyStore{}
	_ repository.CategoryRepository = categoryStore{}
	_ repository.ServiceRepository  = serviceStore{}
	_ repository.ReferralRepository = referralStore{}
)

// DefaultCategories mirrors the category seed migration.
var DefaultCategories = []domain.Category{
	{Name: "Cleaning", Slug: "cleaning"},
	{Name: "Plumbing", Slug: "plumbing"},
	{Name: "Electrical", Slug: "electrical"},
	{Name: "Moving", Slug: "moving"},
	{Name: "Catering", Slug: "catering"},
	{Name: "Accounting", Slug: "accounting"},
}

// Store keeps every aggregate behind one mutex so multi-entity writes and the
// conditional status updates are atomic.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	firms      map[string]domain.Firm
	users      map[int64]domain.User
	categories map[int64]domain.Category
	companies  map[int64]domain.Company
	services   map[int64]domain.Service
	referrals  map[int64]domain.ReferralRequest

	nextUser     int64
	nextCategory int64
	nextCompany  int64
	nextService  int64
	nextReferral int64
}

// NewStore returns an empty store seeded with DefaultCategories.
func NewStore() *Store {
	s := &Store{
		now:        time.Now,
		firms:      make(map[string]domain.Firm),
		users:      make(map[int64]domain.User),
		categories: make(map[int64]domain.Category),
		companies:  make(map[int64]domain.Company),
		services:   make(map[int64]domain.Service),
		referrals:  make(map[int64]domain.ReferralRequest),
	}
	for _, c := range DefaultCategories {
		s.nextCategory++
		c.ID = s.nextCategory
		s.categories[c.ID] = c
	}
	return s
}

// WithClock overrides the timestamp source for generated created/updated values.
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Store) Firms() repository.FirmRepository { return firmStore{s} }
func (s *Store) Users() repository.UserRepository { return userStore{s} }
func (s *Store) Companies() repository.CompanyRepository { return companyStore{s} }
func (s *Store) Categories() repository.CategoryRepository { return categoryStore{s} }
func (s *Store) Services() repository.ServiceRepository { return serviceStore{s} }
func (s *Store) Referrals() repository.ReferralRepository { return referralStore{s} }

// Repositories returns every contract backed by this store.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Firms:      s.Firms(),
		Users:      s.Users(),
		Companies:  s.Companies(),
		Categories: s.Categories(),
		Services:   s.Services(),
		Referrals:  s.Referrals(),
	}
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func cloneUser(u domain.User) domain.User {
	u.FirmID = cloneString(u.FirmID)
	return u
}

func cloneCompany(c domain.Company) domain.Company {
	c.FirmID = cloneString(c.FirmID)
	c.OwnerUserID = cloneInt64(c.OwnerUserID)
	c.Settings.Phone = cloneString(c.Settings.Phone)
	c.Settings.Email = cloneString(c.Settings.Email)
	c.Settings.TaxNumber = cloneString(c.Settings.TaxNumber)
	c.Settings.EstimatedDeliveryMinutes = cloneInt(c.Settings.EstimatedDeliveryMinutes)
	return c
}

func cloneService(svc domain.Service) domain.Service {
	svc.CategoryID = cloneInt64(svc.CategoryID)
	return svc
}

func cloneReferral(r domain.ReferralRequest) domain.ReferralRequest {
	r.RequestedServiceID = cloneInt64(r.RequestedServiceID)
	return r
}
