// estateadmin | 2026
// repository.go

package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mseddi/estateadmin/internal/core"
)

type Repository interface {
	Create(ctx context.Context, l *Listing) error
	GetByID(ctx context.Context, id string) (*Listing, error)
	GetImages(ctx context.Context, listingID string) ([]string, error)
	Update(ctx context.Context, l *Listing) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListListingsParams) ([]Listing, int, error)
	ReplaceImages(ctx context.Context, listingID string, urls []string) error
	// MarkPurchased reassigns ownership and flips the listing to
	// purchased, re-checking eligibility at write time so racing buyers
	// cannot both succeed.
	MarkPurchased(ctx context.Context, id, buyerID string) error
	Stats(ctx context.Context) (*Stats, error)
}

// Stats are marketplace-wide listing counters for the admin dashboard.
type Stats struct {
	Total     int `db:"total"`
	Published int `db:"published"`
	Pending   int `db:"pending"`
	Refused   int `db:"refused"`
	ForSale   int `db:"for_sale"`
	Purchased int `db:"purchased"`
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const listingColumns = `
	id, title, description, price, address, surface, rooms,
	transaction_type, publication_status, is_published, owner_id,
	version, created_at, updated_at`

func (r *repository) Create(ctx context.Context, l *Listing) error {
	query := `
		INSERT INTO listings (
			id, title, description, price, address, surface, rooms,
			transaction_type, publication_status, is_published, owner_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING version, created_at, updated_at`

	err := r.db.GetContext(ctx, l, query,
		l.ID,
		l.Title,
		l.Description,
		l.Price,
		l.Address,
		l.Surface,
		l.Rooms,
		l.TransactionType,
		l.PublicationStatus,
		l.IsPublished,
		l.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("create listing: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Listing, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM listings WHERE id = $1`,
		listingColumns,
	)

	var l Listing
	err := r.db.GetContext(ctx, &l, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get listing: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}

	return &l, nil
}

func (r *repository) GetImages(
	ctx context.Context,
	listingID string,
) ([]string, error) {
	query := `
		SELECT url FROM listing_images
		WHERE listing_id = $1
		ORDER BY position ASC`

	var urls []string
	if err := r.db.SelectContext(ctx, &urls, query, listingID); err != nil {
		return nil, fmt.Errorf("get listing images: %w", err)
	}

	return urls, nil
}

// Update persists all mutable listing fields under the optimistic
// concurrency token. A stale version is surfaced as a conflict; a
// vanished row as not found.
func (r *repository) Update(ctx context.Context, l *Listing) error {
	query := `
		UPDATE listings
		SET title = $3, description = $4, price = $5, address = $6,
		    surface = $7, rooms = $8, transaction_type = $9,
		    publication_status = $10, is_published = $11, owner_id = $12,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at`

	err := r.db.GetContext(ctx, l, query,
		l.ID,
		l.Version,
		l.Title,
		l.Description,
		l.Price,
		l.Address,
		l.Surface,
		l.Rooms,
		l.TransactionType,
		l.PublicationStatus,
		l.IsPublished,
		l.OwnerID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return r.classifyMissedWrite(ctx, l.ID, "update listing")
	}
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM listings WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete listing: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListListingsParams,
) ([]Listing, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "TRUE")

	if params.OwnerID != "" {
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", argIdx))
		args = append(args, params.OwnerID)
		argIdx++
	}

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE $%d OR address ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price >= $%d", argIdx))
		args = append(args, *params.MinPrice)
		argIdx++
	}

	if params.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", argIdx))
		args = append(args, *params.MaxPrice)
		argIdx++
	}

	if params.MinSurface != nil {
		conditions = append(conditions, fmt.Sprintf("surface >= $%d", argIdx))
		args = append(args, *params.MinSurface)
		argIdx++
	}

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf(
			"publication_status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	if params.TransactionType != "" {
		conditions = append(conditions, fmt.Sprintf(
			"transaction_type = $%d", argIdx))
		args = append(args, params.TransactionType)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM listings WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM listings
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		listingColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var listings []Listing
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list listings: %w", err)
	}

	return listings, total, nil
}

func (r *repository) ReplaceImages(
	ctx context.Context,
	listingID string,
	urls []string,
) error {
	deleteQuery := `DELETE FROM listing_images WHERE listing_id = $1`
	if _, err := r.db.ExecContext(ctx, deleteQuery, listingID); err != nil {
		return fmt.Errorf("replace listing images: %w", err)
	}

	insertQuery := `
		INSERT INTO listing_images (listing_id, url, position)
		VALUES ($1, $2, $3)`

	for i, url := range urls {
		if _, err := r.db.ExecContext(ctx, insertQuery, listingID, url, i); err != nil {
			return fmt.Errorf("replace listing images: %w", err)
		}
	}

	return nil
}

func (r *repository) MarkPurchased(
	ctx context.Context,
	id, buyerID string,
) error {
	query := `
		UPDATE listings
		SET owner_id = $2, transaction_type = $3,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1
		  AND transaction_type <> $3
		  AND publication_status = $4`

	result, err := r.db.ExecContext(
		ctx, query, id, buyerID, TxnPurchased, StatusPublished,
	)
	if err != nil {
		return fmt.Errorf("mark purchased: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark purchased: %w", err)
	}

	if rows == 0 {
		return r.classifyMissedWrite(ctx, id, "mark purchased")
	}

	return nil
}

func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE publication_status = 'published') AS published,
			COUNT(*) FILTER (WHERE publication_status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE publication_status = 'refused') AS refused,
			COUNT(*) FILTER (WHERE transaction_type = 'for_sale') AS for_sale,
			COUNT(*) FILTER (WHERE transaction_type = 'purchased') AS purchased
		FROM listings`

	var stats Stats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("listing stats: %w", err)
	}

	return &stats, nil
}

// classifyMissedWrite decides whether a zero-row conditional write lost
// a race (conflict) or targeted a vanished listing (not found).
func (r *repository) classifyMissedWrite(
	ctx context.Context,
	id, op string,
) error {
	var exists bool
	existsQuery := `SELECT EXISTS(SELECT 1 FROM listings WHERE id = $1)`
	if err := r.db.GetContext(ctx, &exists, existsQuery, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if exists {
		return fmt.Errorf("%s: %w", op, core.ErrConflict)
	}

	return fmt.Errorf("%s: %w", op, core.ErrNotFound)
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
