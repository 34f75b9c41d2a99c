package ports

import "context"

// UnitOfWork hands out repositories bound to a single transaction.
type UnitOfWork interface {
	Users() UserRepository
	Jobs() JobRepository
	Categories() CategoryRepository
}

// Transactor runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back otherwise; the UnitOfWork must not outlive fn.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(uow UnitOfWork) error) error
}
