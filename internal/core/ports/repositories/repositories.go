package repositories

// RepositoryProvider bundles the stores an auth backend needs. Both the sqlite
// and postgres adapters build one.
type RepositoryProvider struct {
	UserRepo      UserRepositoryFacade
	LoginLinkRepo LoginLinkRepository
}
