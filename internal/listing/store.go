// estateadmin | 2026
// store.go

package listing

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/mseddi/estateadmin/internal/audit"
	"github.com/mseddi/estateadmin/internal/core"
)

// Store binds the listing and audit repositories to a shared database so
// the service can run a mutation and its audit append in one transaction.
type Store interface {
	Listings() Repository
	Audit() audit.Repository
	InTx(ctx context.Context, fn func(TxStore) error) error
}

type TxStore interface {
	Listings() Repository
	Audit() audit.Repository
}

type sqlStore struct {
	db *core.Database
}

func NewStore(db *core.Database) Store {
	return &sqlStore{db: db}
}

func (s *sqlStore) Listings() Repository {
	return NewRepository(s.db.DB)
}

func (s *sqlStore) Audit() audit.Repository {
	return audit.NewRepository(s.db.DB)
}

func (s *sqlStore) InTx(
	ctx context.Context,
	fn func(TxStore) error,
) error {
	return core.InTx(ctx, s.db.DB, func(tx *sqlx.Tx) error {
		return fn(&txStore{tx: tx})
	})
}

type txStore struct {
	tx *sqlx.Tx
}

func (s *txStore) Listings() Repository {
	return NewRepository(s.tx)
}

func (s *txStore) Audit() audit.Repository {
	return audit.NewRepository(s.tx)
}
