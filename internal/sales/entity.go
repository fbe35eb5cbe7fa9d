// estateadmin | 2026
// entity.go

package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/mseddi/estateadmin/internal/core"
)

// Sale is one completed ownership transfer. Rows are append-only except
// for the payment fields, which follow the most recently recorded
// payment.
type Sale struct {
	ID            string     `db:"id"`
	ListingID     string     `db:"listing_id"`
	BuyerID       string     `db:"buyer_id"`
	SellerID      *string    `db:"seller_id"`
	Price         float64    `db:"price"`
	Status        string     `db:"status"`
	PaymentMethod string     `db:"payment_method"`
	PaymentStatus string     `db:"payment_status"`
	PaidAt        *time.Time `db:"paid_at"`
	CreatedAt     time.Time  `db:"created_at"`
}

type Payment struct {
	ID        string     `db:"id"`
	SaleID    string     `db:"sale_id"`
	Amount    float64    `db:"amount"`
	Method    string     `db:"method"`
	Status    string     `db:"status"`
	Reference *string    `db:"reference"`
	PaidAt    *time.Time `db:"paid_at"`
	Notes     string     `db:"notes"`
	CreatedAt time.Time  `db:"created_at"`
}

const (
	SaleStatusValidated = "Validated"

	PaymentMethodUndefined = "Undefined"
)

const (
	PaymentPending   = "pending"
	PaymentPaid      = "paid"
	PaymentCancelled = "cancelled"
)

func ParsePaymentStatus(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case PaymentPending:
		return PaymentPending, nil
	case PaymentPaid:
		return PaymentPaid, nil
	case PaymentCancelled:
		return PaymentCancelled, nil
	default:
		return "", fmt.Errorf(
			"invalid payment status %q: %w",
			raw,
			core.ErrInvalidInput,
		)
	}
}
