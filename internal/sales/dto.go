// estateadmin | 2026
// dto.go

package sales

import (
	"time"
)

type RecordPaymentRequest struct {
	Amount    float64    `json:"amount"              validate:"gt=0"`
	Method    string     `json:"method"              validate:"required,max=100"`
	Status    string     `json:"status"              validate:"required"`
	Reference *string    `json:"reference,omitempty" validate:"omitempty,max=200"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	Notes     string     `json:"notes"               validate:"max=2000"`
}

type SaleResponse struct {
	ID            string     `json:"id"`
	ListingID     string     `json:"listing_id"`
	ListingTitle  string     `json:"listing_title,omitempty"`
	BuyerID       string     `json:"buyer_id"`
	BuyerName     string     `json:"buyer_name,omitempty"`
	SellerID      *string    `json:"seller_id,omitempty"`
	SellerName    string     `json:"seller_name,omitempty"`
	Price         float64    `json:"price"`
	Status        string     `json:"status"`
	PaymentMethod string     `json:"payment_method"`
	PaymentStatus string     `json:"payment_status"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type PaymentResponse struct {
	ID        string     `json:"id"`
	SaleID    string     `json:"sale_id"`
	Amount    float64    `json:"amount"`
	Method    string     `json:"method"`
	Status    string     `json:"status"`
	Reference *string    `json:"reference,omitempty"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type SaleDetailResponse struct {
	SaleResponse
	Payments []PaymentResponse `json:"payments"`
}

// BackfillReport summarizes one reconciliation run.
type BackfillReport struct {
	Scanned  int `json:"scanned"`
	Created  int `json:"created"`
	Existing int `json:"existing"`
	Skipped  int `json:"skipped"`
}

type ListSalesParams struct {
	Page          int
	PageSize      int
	BuyerID       string
	SellerID      string
	PaymentStatus string
	From          *time.Time
	To            *time.Time
}

func (p *ListSalesParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListSalesParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// SaleRow is a sale joined with display names for the admin ledger view.
type SaleRow struct {
	Sale
	ListingTitle string `db:"listing_title"`
	BuyerName    string `db:"buyer_name"`
	SellerName   string `db:"seller_name"`
}

func ToSaleResponse(row *SaleRow) SaleResponse {
	return SaleResponse{
		ID:            row.ID,
		ListingID:     row.ListingID,
		ListingTitle:  row.ListingTitle,
		BuyerID:       row.BuyerID,
		BuyerName:     row.BuyerName,
		SellerID:      row.SellerID,
		SellerName:    row.SellerName,
		Price:         row.Price,
		Status:        row.Status,
		PaymentMethod: row.PaymentMethod,
		PaymentStatus: row.PaymentStatus,
		PaidAt:        row.PaidAt,
		CreatedAt:     row.CreatedAt,
	}
}

func ToPaymentResponse(p *Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		SaleID:    p.SaleID,
		Amount:    p.Amount,
		Method:    p.Method,
		Status:    p.Status,
		Reference: p.Reference,
		PaidAt:    p.PaidAt,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
	}
}
