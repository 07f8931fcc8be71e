package pgsql

import (
	portsrepo "github.com/SscSPs/storefront_backend/internal/core/ports/repositories"
)

// NewRepositoryProvider creates all repositories backed by db (usually a *pgxpool.Pool).
func NewRepositoryProvider(db DBTX) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UserRepo:      newPgxUserRepository(db),
		LoginLinkRepo: newPgxLoginLinkRepository(db),
	}
}
