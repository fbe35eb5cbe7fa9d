// estateadmin | 2026
// store.go

package sales

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/mseddi/estateadmin/internal/audit"
	"github.com/mseddi/estateadmin/internal/core"
)

// Store binds the ledger and audit repositories so payment recording and
// the backfill can run their writes in one transaction.
type Store interface {
	Sales() Repository
	Audit() audit.Repository
	InTx(ctx context.Context, fn func(TxStore) error) error
}

type TxStore interface {
	Sales() Repository
	Audit() audit.Repository
}

type sqlStore struct {
	db *core.Database
}

func NewStore(db *core.Database) Store {
	return &sqlStore{db: db}
}

func (s *sqlStore) Sales() Repository {
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

func (s *txStore) Sales() Repository {
	return NewRepository(s.tx)
}

func (s *txStore) Audit() audit.Repository {
	return audit.NewRepository(s.tx)
}
