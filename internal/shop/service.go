// estateadmin | 2026
// service.go

package shop

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mseddi/estateadmin/internal/audit"
	"github.com/mseddi/estateadmin/internal/core"
	"github.com/mseddi/estateadmin/internal/listing"
	"github.com/mseddi/estateadmin/internal/sales"
	"github.com/mseddi/estateadmin/internal/user"
)

// Directory resolves the seller's display name and email for the
// purchase audit record.
type Directory interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type Service struct {
	store Store
	users Directory
}

func NewService(store Store, users Directory) *Service {
	return &Service{store: store, users: users}
}

// Browse lists what buyers can see: published listings still for sale.
// Staff accounts do not shop.
func (s *Service) Browse(
	ctx context.Context,
	actor user.Actor,
	params listing.ListListingsParams,
) ([]listing.Listing, int, error) {
	if actor.IsStaff() {
		return nil, 0, fmt.Errorf("browse shop: %w", core.ErrForbidden)
	}

	params.OwnerID = ""
	params.Status = listing.StatusPublished
	params.TransactionType = listing.TxnForSale

	return s.store.Listings().List(ctx, params)
}

// GetListing returns a published listing's public detail. Anything not
// published does not exist as far as the shop is concerned.
func (s *Service) GetListing(
	ctx context.Context,
	id string,
) (*listing.Listing, []string, error) {
	l, err := s.store.Listings().GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if !l.IsPublished {
		return nil, nil, fmt.Errorf("get shop listing: %w", core.ErrNotFound)
	}

	images, err := s.store.Listings().GetImages(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return l, images, nil
}

// Buy transfers ownership of a published listing to the actor. The
// listing flip, the sale row, and the audit entry commit together; the
// transfer re-checks eligibility at write time, so of two racing buyers
// exactly one wins and the other gets a conflict.
func (s *Service) Buy(
	ctx context.Context,
	actor user.Actor,
	listingID string,
) (*sales.Sale, error) {
	l, err := s.store.Listings().GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if err := listing.CheckBuy(actor, l); err != nil {
		return nil, err
	}

	sellerID := l.OwnerID
	var sellerName, sellerEmail, sellerKey string
	if sellerID != nil {
		sellerKey = *sellerID
		if seller, err := s.users.GetByID(ctx, *sellerID); err == nil {
			sellerName = seller.Name
			sellerEmail = seller.Email
		} else if !errors.Is(err, core.ErrNotFound) {
			return nil, err
		}
	}

	sale := &sales.Sale{
		ID:            uuid.New().String(),
		ListingID:     l.ID,
		BuyerID:       actor.ID,
		SellerID:      sellerID,
		Price:         l.Price,
		Status:        sales.SaleStatusValidated,
		PaymentMethod: sales.PaymentMethodUndefined,
		PaymentStatus: sales.PaymentPending,
	}

	err = s.store.InTx(ctx, func(tx TxStore) error {
		if err := tx.Listings().MarkPurchased(ctx, l.ID, actor.ID); err != nil {
			return err
		}

		if err := tx.Sales().Insert(ctx, sale); err != nil {
			return err
		}

		return tx.Audit().Append(ctx, &audit.Entry{
			UserID:     &actor.ID,
			Action:     audit.ActionBuy,
			EntityType: audit.EntityListing,
			EntityID:   &l.ID,
			Details: audit.BuyDetails(
				l.Title, l.Price, sellerKey, sellerName, sellerEmail,
			),
		})
	})
	if err != nil {
		return nil, err
	}

	return sale, nil
}
