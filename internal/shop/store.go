// estateadmin | 2026
// store.go

package shop

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/mseddi/estateadmin/internal/audit"
	"github.com/mseddi/estateadmin/internal/core"
	"github.com/mseddi/estateadmin/internal/listing"
	"github.com/mseddi/estateadmin/internal/sales"
)

// Store spans the three tables a purchase touches. Buy runs the listing
// transfer, the sale insert, and the audit append in one transaction;
// either all three commit or none do.
type Store interface {
	Listings() listing.Repository
	Sales() sales.Repository
	Audit() audit.Repository
	InTx(ctx context.Context, fn func(TxStore) error) error
}

type TxStore interface {
	Listings() listing.Repository
	Sales() sales.Repository
	Audit() audit.Repository
}

type sqlStore struct {
	db *core.Database
}

func NewStore(db *core.Database) Store {
	return &sqlStore{db: db}
}

func (s *sqlStore) Listings() listing.Repository {
	return listing.NewRepository(s.db.DB)
}

func (s *sqlStore) Sales() sales.Repository {
	return sales.NewRepository(s.db.DB)
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

func (s *txStore) Listings() listing.Repository {
	return listing.NewRepository(s.tx)
}

func (s *txStore) Sales() sales.Repository {
	return sales.NewRepository(s.tx)
}

func (s *txStore) Audit() audit.Repository {
	return audit.NewRepository(s.tx)
}
