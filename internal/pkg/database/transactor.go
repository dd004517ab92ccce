package database

import "context"

// Transactor runs fn inside one unit of work. Repositories called with the
// ctx passed to fn join that unit. A nested call joins the outer unit.
// Any error or panic from fn rolls the whole unit back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
