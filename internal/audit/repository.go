// estateadmin | 2026
// repository.go

package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/mseddi/estateadmin/internal/core"
)

type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context, params ListParams) ([]Entry, int, error)
	// ListBuyEntries returns all purchase entries in chronological order
	// for the sales backfill.
	ListBuyEntries(ctx context.Context) ([]Entry, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Append(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO audit_log (user_id, action, entity_type, entity_id, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.GetContext(ctx, entry, query,
		entry.UserID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Details,
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	return nil
}

type ListParams struct {
	Page       int
	PageSize   int
	Action     string
	EntityType string
	UserID     string
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 50
	}
	if p.PageSize > 200 {
		p.PageSize = 200
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Entry, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "TRUE")

	if params.Action != "" {
		conditions = append(conditions, fmt.Sprintf("action = $%d", argIdx))
		args = append(args, params.Action)
		argIdx++
	}

	if params.EntityType != "" {
		conditions = append(conditions, fmt.Sprintf("entity_type = $%d", argIdx))
		args = append(args, params.EntityType)
		argIdx++
	}

	if params.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, params.UserID)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM audit_log WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, action, entity_type, entity_id, details, created_at
		FROM audit_log
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var entries []Entry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}

	return entries, total, nil
}

func (r *repository) ListBuyEntries(ctx context.Context) ([]Entry, error) {
	query := `
		SELECT id, user_id, action, entity_type, entity_id, details, created_at
		FROM audit_log
		WHERE action = $1 AND entity_type = $2
		ORDER BY created_at ASC, id ASC`

	var entries []Entry
	err := r.db.SelectContext(ctx, &entries, query, ActionBuy, EntityListing)
	if err != nil {
		return nil, fmt.Errorf("list buy entries: %w", err)
	}

	return entries, nil
}
