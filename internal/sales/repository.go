// estateadmin | 2026
// repository.go

package sales

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mseddi/estateadmin/internal/core"
)

type Repository interface {
	Insert(ctx context.Context, sale *Sale) error
	GetByID(ctx context.Context, id string) (*Sale, error)
	GetRow(ctx context.Context, id string) (*SaleRow, error)
	List(ctx context.Context, params ListSalesParams) ([]SaleRow, int, error)
	// ExistsTriple is the backfill dedupe key: same listing, buyer, and
	// purchase instant means the sale is already recorded.
	ExistsTriple(
		ctx context.Context,
		listingID, buyerID string,
		createdAt time.Time,
	) (bool, error)
	InsertPayment(ctx context.Context, payment *Payment) error
	ListPayments(ctx context.Context, saleID string) ([]Payment, error)
	// UpdateSalePayment overwrites the sale's derived payment fields
	// from the most recently recorded payment.
	UpdateSalePayment(
		ctx context.Context,
		saleID, paymentStatus, method string,
		paidAt *time.Time,
	) error
	Stats(ctx context.Context) (*Stats, error)
}

// Stats are ledger-wide counters for the admin dashboard.
type Stats struct {
	TotalSales   int     `db:"total_sales"`
	PaidSales    int     `db:"paid_sales"`
	PendingSales int     `db:"pending_sales"`
	TotalVolume  float64 `db:"total_volume"`
	PaidVolume   float64 `db:"paid_volume"`
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, sale *Sale) error {
	query := `
		INSERT INTO sales (
			id, listing_id, buyer_id, seller_id, price,
			status, payment_method, payment_status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, NOW()))
		RETURNING created_at`

	var createdAt *time.Time
	if !sale.CreatedAt.IsZero() {
		createdAt = &sale.CreatedAt
	}

	err := r.db.GetContext(ctx, &sale.CreatedAt, query,
		sale.ID,
		sale.ListingID,
		sale.BuyerID,
		sale.SellerID,
		sale.Price,
		sale.Status,
		sale.PaymentMethod,
		sale.PaymentStatus,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	return nil
}

const saleColumns = `
	id, listing_id, buyer_id, seller_id, price,
	status, payment_method, payment_status, paid_at, created_at`

func (r *repository) GetByID(ctx context.Context, id string) (*Sale, error) {
	query := fmt.Sprintf(`SELECT %s FROM sales WHERE id = $1`, saleColumns)

	var sale Sale
	err := r.db.GetContext(ctx, &sale, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get sale: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get sale: %w", err)
	}

	return &sale, nil
}

const saleRowQuery = `
	SELECT s.id, s.listing_id, s.buyer_id, s.seller_id, s.price,
	       s.status, s.payment_method, s.payment_status, s.paid_at,
	       s.created_at,
	       COALESCE(l.title, '') AS listing_title,
	       COALESCE(b.name, '') AS buyer_name,
	       COALESCE(se.name, '') AS seller_name
	FROM sales s
	LEFT JOIN listings l ON l.id = s.listing_id
	LEFT JOIN users b ON b.id = s.buyer_id
	LEFT JOIN users se ON se.id = s.seller_id`

func (r *repository) GetRow(ctx context.Context, id string) (*SaleRow, error) {
	query := saleRowQuery + ` WHERE s.id = $1`

	var row SaleRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get sale: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get sale: %w", err)
	}

	return &row, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListSalesParams,
) ([]SaleRow, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "TRUE")

	if params.BuyerID != "" {
		conditions = append(conditions, fmt.Sprintf("s.buyer_id = $%d", argIdx))
		args = append(args, params.BuyerID)
		argIdx++
	}

	if params.SellerID != "" {
		conditions = append(conditions, fmt.Sprintf("s.seller_id = $%d", argIdx))
		args = append(args, params.SellerID)
		argIdx++
	}

	if params.PaymentStatus != "" {
		conditions = append(conditions, fmt.Sprintf(
			"s.payment_status = $%d", argIdx))
		args = append(args, params.PaymentStatus)
		argIdx++
	}

	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("s.created_at >= $%d", argIdx))
		args = append(args, *params.From)
		argIdx++
	}

	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("s.created_at <= $%d", argIdx))
		args = append(args, *params.To)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM sales s WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY s.created_at DESC
		LIMIT $%d OFFSET $%d`,
		saleRowQuery, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var rows []SaleRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}

	return rows, total, nil
}

func (r *repository) ExistsTriple(
	ctx context.Context,
	listingID, buyerID string,
	createdAt time.Time,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM sales
			WHERE listing_id = $1 AND buyer_id = $2 AND created_at = $3
		)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, listingID, buyerID, createdAt)
	if err != nil {
		return false, fmt.Errorf("check sale exists: %w", err)
	}

	return exists, nil
}

func (r *repository) InsertPayment(
	ctx context.Context,
	payment *Payment,
) error {
	query := `
		INSERT INTO payments (
			id, sale_id, amount, method, status, reference, paid_at, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &payment.CreatedAt, query,
		payment.ID,
		payment.SaleID,
		payment.Amount,
		payment.Method,
		payment.Status,
		payment.Reference,
		payment.PaidAt,
		payment.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	return nil
}

func (r *repository) ListPayments(
	ctx context.Context,
	saleID string,
) ([]Payment, error) {
	query := `
		SELECT id, sale_id, amount, method, status, reference, paid_at,
		       notes, created_at
		FROM payments
		WHERE sale_id = $1
		ORDER BY created_at DESC`

	var payments []Payment
	if err := r.db.SelectContext(ctx, &payments, query, saleID); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	return payments, nil
}

func (r *repository) UpdateSalePayment(
	ctx context.Context,
	saleID, paymentStatus, method string,
	paidAt *time.Time,
) error {
	query := `
		UPDATE sales
		SET payment_status = $2,
		    payment_method = COALESCE(NULLIF($3, ''), payment_method),
		    paid_at = CASE WHEN $2 = 'paid' THEN $4 ELSE paid_at END
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, saleID, paymentStatus, method, paidAt)
	if err != nil {
		return fmt.Errorf("update sale payment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update sale payment: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update sale payment: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT
			COUNT(*) AS total_sales,
			COUNT(*) FILTER (WHERE payment_status = 'paid') AS paid_sales,
			COUNT(*) FILTER (WHERE payment_status = 'pending') AS pending_sales,
			COALESCE(SUM(price), 0) AS total_volume,
			COALESCE(SUM(price) FILTER (WHERE payment_status = 'paid'), 0)
				AS paid_volume
		FROM sales`

	var stats Stats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("sales stats: %w", err)
	}

	return &stats, nil
}
