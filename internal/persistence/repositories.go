package persistence

import (
	"github.com/spec-kit/referral-service/internal/repository"
	"github.com/spec-kit/referral-service/internal/repository/memory"
)

// Repositories returns pgx repositories when a pool is configured and a fresh in-memory store otherwise.
func (p *Postgres) Repositories() repository.Repositories {
	if p.Enabled() {
		return repository.NewPostgresRepositories(p.Pool)
	}
	return memory.NewStore().Repositories()
}
