package roster

import "context"

// Repository is the roster access contract. Implementations must keep the
// unique-username invariant under concurrent writers; the PostgreSQL
// implementation relies on the storage-level unique constraint for that,
// application-side lookups are pre-validation only.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Member, error)
	GetByUsername(ctx context.Context, username string) (*Member, error)
	Insert(ctx context.Context, member *Member) error
	Update(ctx context.Context, id int64, update ProfileUpdate) (*Member, error)
	ListActive(ctx context.Context) ([]Member, error)
	ListDeactivated(ctx context.Context) ([]Member, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}
