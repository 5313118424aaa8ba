package repository

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups every store contract the services depend on.
type Repositories struct {
	Firms      FirmRepository
	Users      UserRepository
	Companies  CompanyRepository
	Categories CategoryRepository
	Services   ServiceRepository
	Referrals  ReferralRepository
}

// NewPostgresRepositories builds pgx-backed repositories sharing one pool.
func NewPostgresRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Firms:      NewFirmRepository(pool),
		Users:      NewUserRepository(pool),
		Companies:  NewCompanyRepository(pool),
		Categories: NewCategoryRepository(pool),
		Services:   NewServiceRepository(pool),
		Referrals:  NewReferralRepository(pool),
	}
}
