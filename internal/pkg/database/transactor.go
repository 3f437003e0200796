package database

import "context"

// Transactor runs fn inside one database transaction. Repositories called with
// the ctx passed to fn join that transaction; the transaction commits when fn
// returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
