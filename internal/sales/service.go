// estateadmin | 2026
// service.go

package sales

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mseddi/estateadmin/internal/audit"
	"github.com/mseddi/estateadmin/internal/core"
	"github.com/mseddi/estateadmin/internal/listing"
	"github.com/mseddi/estateadmin/internal/user"
)

// ListingSource resolves listings for the backfill's price fallback.
type ListingSource interface {
	GetByID(ctx context.Context, id string) (*listing.Listing, error)
}

type Service struct {
	store    Store
	listings ListingSource
}

func NewService(store Store, listings ListingSource) *Service {
	return &Service{store: store, listings: listings}
}

func (s *Service) ListSales(
	ctx context.Context,
	actor user.Actor,
	params ListSalesParams,
) ([]SaleRow, int, error) {
	if !actor.IsStaff() {
		return nil, 0, fmt.Errorf("list sales: %w", core.ErrForbidden)
	}

	return s.store.Sales().List(ctx, params)
}

func (s *Service) GetSale(
	ctx context.Context,
	actor user.Actor,
	id string,
) (*SaleRow, []Payment, error) {
	if !actor.IsStaff() {
		return nil, nil, fmt.Errorf("get sale: %w", core.ErrForbidden)
	}

	row, err := s.store.Sales().GetRow(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	payments, err := s.store.Sales().ListPayments(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return row, payments, nil
}

// RecordPayment appends a payment against a sale and rewrites the sale's
// derived payment fields from it. The newest payment always wins; there
// is no aggregation across payments.
func (s *Service) RecordPayment(
	ctx context.Context,
	actor user.Actor,
	saleID string,
	req RecordPaymentRequest,
) (*Payment, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("record payment: %w", core.ErrForbidden)
	}

	status, err := ParsePaymentStatus(req.Status)
	if err != nil {
		return nil, err
	}

	sale, err := s.store.Sales().GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	payment := &Payment{
		ID:        uuid.New().String(),
		SaleID:    sale.ID,
		Amount:    req.Amount,
		Method:    req.Method,
		Status:    status,
		Reference: req.Reference,
		PaidAt:    req.PaidAt,
		Notes:     req.Notes,
	}

	if status == PaymentPaid && payment.PaidAt == nil {
		now := time.Now()
		payment.PaidAt = &now
	}

	err = s.store.InTx(ctx, func(tx TxStore) error {
		if err := tx.Sales().InsertPayment(ctx, payment); err != nil {
			return err
		}

		method := ""
		var paidAt *time.Time
		if status == PaymentPaid {
			method = payment.Method
			paidAt = payment.PaidAt
		}

		if err := tx.Sales().UpdateSalePayment(
			ctx, sale.ID, status, method, paidAt,
		); err != nil {
			return err
		}

		return tx.Audit().Append(ctx, &audit.Entry{
			UserID:     &actor.ID,
			Action:     audit.ActionPayment,
			EntityType: audit.EntitySale,
			EntityID:   &sale.ID,
			Details: audit.EncodeDetails(
				"Payment recorded",
				audit.Field{
					Key:   "Amount",
					Value: strconv.FormatFloat(req.Amount, 'f', -1, 64),
				},
				audit.Field{Key: "Status", Value: status},
			),
		})
	})
	if err != nil {
		return nil, err
	}

	return payment, nil
}

// Backfill reconstructs missing sale rows from the audit trail's
// purchase entries. Re-running it is a no-op for entries already
// covered; unparseable prices fall back to the listing's current price.
// Entries whose listing has since been deleted are skipped, since a
// sale row cannot exist without its listing.
func (s *Service) Backfill(
	ctx context.Context,
	actor user.Actor,
) (*BackfillReport, error) {
	if !actor.IsSuperAdmin() {
		return nil, fmt.Errorf("backfill sales: %w", core.ErrForbidden)
	}

	entries, err := s.store.Audit().ListBuyEntries(ctx)
	if err != nil {
		return nil, err
	}

	report := &BackfillReport{Scanned: len(entries)}

	err = s.store.InTx(ctx, func(tx TxStore) error {
		for _, entry := range entries {
			if entry.EntityID == nil || entry.UserID == nil {
				report.Skipped++
				continue
			}

			listingID := *entry.EntityID
			buyerID := *entry.UserID

			l, err := s.listings.GetByID(ctx, listingID)
			if errors.Is(err, core.ErrNotFound) {
				report.Skipped++
				continue
			}
			if err != nil {
				return err
			}

			price, ok := audit.DetailDecimal(entry.Details, "Price")
			if !ok {
				price = l.Price
			}

			exists, err := tx.Sales().ExistsTriple(
				ctx, listingID, buyerID, entry.CreatedAt,
			)
			if err != nil {
				return err
			}
			if exists {
				report.Existing++
				continue
			}

			var sellerID *string
			if raw := audit.DetailValue(entry.Details, "SellerId"); raw != "" {
				sellerID = &raw
			}

			sale := &Sale{
				ID:            uuid.New().String(),
				ListingID:     listingID,
				BuyerID:       buyerID,
				SellerID:      sellerID,
				Price:         price,
				Status:        SaleStatusValidated,
				PaymentMethod: PaymentMethodUndefined,
				PaymentStatus: PaymentPending,
				CreatedAt:     entry.CreatedAt,
			}

			if err := tx.Sales().Insert(ctx, sale); err != nil {
				return err
			}
			report.Created++
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.store.Sales().Stats(ctx)
}
