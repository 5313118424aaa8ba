package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/spec-kit/referral-service/internal/domain"
	"github.com/spec-kit/referral-service/internal/repository"
)

type firmStore struct{ s *Store }

func (f firmStore) Register(_ context.Context, firm *domain.Firm, company *domain.Company, manager *domain.User) error {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.firms[firm.ID]; ok {
		return fmt.Errorf("%w: firms_pkey", repository.ErrDuplicate)
	}
	for _, existing := range s.firms {
		if existing.Name == firm.Name {
			return fmt.Errorf("%w: firms_name_key", repository.ErrDuplicate)
		}
		if existing.Slug == firm.Slug {
			return fmt.Errorf("%w: firms_slug_key", repository.ErrDuplicate)
		}
	}
	firmID := firm.ID
	company.FirmID = &firmID
	if err := s.checkCompanyUnique(company); err != nil {
		return err
	}
	managerFirm := firm.ID
	manager.FirmID = &managerFirm
	if err := s.checkUserUnique(manager); err != nil {
		return err
	}

	now := s.timestamp()
	firm.CreatedAt, firm.UpdatedAt = now, now
	s.firms[firm.ID] = *firm
	s.putNewCompany(company, now)
	s.putNewUser(manager, now)
	return nil
}

func (f firmStore) GetByID(_ context.Context, id string) (*domain.Firm, error) {
	s := f.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	firm, ok := s.firms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &firm, nil
}

type userStore struct{ s *Store }

func (s *Store) checkUserUnique(user *domain.User) error {
	for id, existing := range s.users {
		if id == user.ID {
			continue
		}
		if existing.Username == user.Username {
			return fmt.Errorf("%w: users_username_key", repository.ErrDuplicate)
		}
		if existing.Email == user.Email {
			return fmt.Errorf("%w: users_email_key", repository.ErrDuplicate)
		}
	}
	return nil
}

func (s *Store) putNewUser(user *domain.User, now time.Time) {
	s.nextUser++
	user.ID = s.nextUser
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.ID] = cloneUser(*user)
}

func (u userStore) Create(_ context.Context, user *domain.User) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = 0
	if err := s.checkUserUnique(user); err != nil {
		return err
	}
	s.putNewUser(user, s.timestamp())
	return nil
}

func (u userStore) Update(_ context.Context, user *domain.User) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := s.checkUserUnique(user); err != nil {
		return err
	}
	updated := cloneUser(*user)
	updated.Username = existing.Username
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.timestamp()
	s.users[user.ID] = updated
	user.UpdatedAt = updated.UpdatedAt
	return nil
}

func (u userStore) Delete(_ context.Context, id int64) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	for cid, c := range s.companies {
		if c.OwnerUserID != nil && *c.OwnerUserID == id {
			c.OwnerUserID = nil
			s.companies[cid] = c
		}
	}
	return nil
}

func (u userStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s := u.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := cloneUser(user)
	return &cp, nil
}

func (u userStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	s := u.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			cp := cloneUser(user)
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (u userStore) ListByFirm(_ context.Context, firmID *string) ([]domain.User, error) {
	s := u.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.User
	for _, id := range sortedKeys(s.users) {
		user := s.users[id]
		if firmID != nil && (user.FirmID == nil || *user.FirmID != *firmID) {
			continue
		}
		result = append(result, cloneUser(user))
	}
	return result, nil
}

type companyStore struct{ s *Store }

func (s *Store) checkCompanyUnique(company *domain.Company) error {
	for id, existing := range s.companies {
		if id == company.ID {
			continue
		}
		if existing.Slug == company.Slug {
			return fmt.Errorf("%w: companies_slug_key", repository.ErrDuplicate)
		}
		if company.FirmID != nil && existing.FirmID != nil && *existing.FirmID == *company.FirmID {
			return fmt.Errorf("%w: companies_firm_id_key", repository.ErrDuplicate)
		}
	}
	return nil
}

func (s *Store) putNewCompany(company *domain.Company, now time.Time) {
	s.nextCompany++
	company.ID = s.nextCompany
	company.CreatedAt, company.UpdatedAt = now, now
	s.companies[company.ID] = cloneCompany(*company)
}

func (c companyStore) Create(_ context.Context, company *domain.Company) error {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	company.ID = 0
	if company.FirmID != nil {
		if _, ok := s.firms[*company.FirmID]; !ok {
			return fmt.Errorf("%w: companies_firm_id_fkey", repository.ErrNotFound)
		}
	}
	if err := s.checkCompanyUnique(company); err != nil {
		return err
	}
	s.putNewCompany(company, s.timestamp())
	return nil
}

func (c companyStore) Update(_ context.Context, company *domain.Company) error {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.companies[company.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := s.checkCompanyUnique(company); err != nil {
		return err
	}
	updated := cloneCompany(*company)
	updated.FirmID = existing.FirmID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.timestamp()
	s.companies[company.ID] = updated
	company.UpdatedAt = updated.UpdatedAt
	return nil
}

// Delete cascades to the company's services and referral requests.
func (c companyStore) Delete(_ context.Context, id int64) error {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.companies[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.companies, id)
	for sid, svc := range s.services {
		if svc.CompanyID == id {
			delete(s.services, sid)
		}
	}
	for rid, r := range s.referrals {
		if r.TargetCompanyID == id {
			delete(s.referrals, rid)
		}
	}
	return nil
}

func (c companyStore) GetByID(_ context.Context, id int64) (*domain.Company, error) {
	s := c.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	company, ok := s.companies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := cloneCompany(company)
	return &cp, nil
}

func (c companyStore) GetByFirmID(_ context.Context, firmID string) (*domain.Company, error) {
	s := c.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, company := range s.companies {
		if company.FirmID != nil && *company.FirmID == firmID {
			cp := cloneCompany(company)
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}
