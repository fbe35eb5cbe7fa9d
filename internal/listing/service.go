// estateadmin | 2026
// service.go

package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mseddi/estateadmin/internal/audit"
	"github.com/mseddi/estateadmin/internal/core"
	"github.com/mseddi/estateadmin/internal/user"
)

// Directory resolves users for owner-role checks.
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

// Create submits a new listing owned by the actor. Non-staff submissions
// always land pending and unpublished no matter what status the client
// sent; only staff can create straight to published.
func (s *Service) Create(
	ctx context.Context,
	actor user.Actor,
	req CreateListingRequest,
) (*Listing, []string, error) {
	if !actor.IsAuthenticated() {
		return nil, nil, fmt.Errorf("create listing: %w", core.ErrUnauthorized)
	}

	status := StatusPending
	if actor.IsStaff() {
		if requested, err := ParsePublicationStatus(req.PublicationStatus); err == nil {
			status = requested
		}
	}

	ownerID := actor.ID
	l := &Listing{
		ID:              uuid.New().String(),
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		Price:           req.Price,
		Address:         req.Address,
		Surface:         req.Surface,
		Rooms:           req.Rooms,
		TransactionType: NormalizeTransactionType(req.TransactionType),
		OwnerID:         &ownerID,
	}
	l.setStatus(status)

	images := ParseImageURLs(req.ImageURLs)

	err := s.store.InTx(ctx, func(tx TxStore) error {
		if err := tx.Listings().Create(ctx, l); err != nil {
			return err
		}

		if err := tx.Listings().ReplaceImages(ctx, l.ID, images); err != nil {
			return err
		}

		return tx.Audit().Append(ctx, &audit.Entry{
			UserID:     &actor.ID,
			Action:     audit.ActionCreate,
			EntityType: audit.EntityListing,
			EntityID:   &l.ID,
			Details:    "Created " + l.Title,
		})
	})
	if err != nil {
		return nil, nil, err
	}

	return l, images, nil
}

func (s *Service) Get(
	ctx context.Context,
	actor user.Actor,
	id string,
) (*Listing, []string, error) {
	l, err := s.store.Listings().GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if !CanView(actor, l) {
		return nil, nil, fmt.Errorf("get listing: %w", core.ErrForbidden)
	}

	images, err := s.store.Listings().GetImages(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return l, images, nil
}

// List returns listings visible to the actor. Regular users only ever
// see their own; staff may filter freely.
func (s *Service) List(
	ctx context.Context,
	actor user.Actor,
	params ListListingsParams,
) ([]Listing, int, error) {
	if !actor.IsAuthenticated() {
		return nil, 0, fmt.Errorf("list listings: %w", core.ErrUnauthorized)
	}

	if !actor.IsStaff() {
		params.OwnerID = actor.ID
	}

	if params.Status != "" {
		status, err := ParsePublicationStatus(params.Status)
		if err != nil {
			return nil, 0, err
		}
		params.Status = status
	}

	if params.TransactionType != "" {
		params.TransactionType = NormalizeTransactionType(params.TransactionType)
	}

	return s.store.Listings().List(ctx, params)
}

// Update edits content fields. Publication fields are untouchable here
// for everyone; moderation goes through SetStatus and TogglePublish.
func (s *Service) Update(
	ctx context.Context,
	actor user.Actor,
	id string,
	req UpdateListingRequest,
) (*Listing, []string, error) {
	l, err := s.store.Listings().GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	ownerRole, err := s.ownerRole(ctx, l)
	if err != nil {
		return nil, nil, err
	}

	if !CanManage(actor, l, ownerRole) {
		return nil, nil, fmt.Errorf("update listing: %w", core.ErrForbidden)
	}

	if req.Title != nil {
		l.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if req.Price != nil {
		l.Price = *req.Price
	}
	if req.Address != nil {
		l.Address = *req.Address
	}
	if req.Surface != nil {
		l.Surface = req.Surface
	}
	if req.Rooms != nil {
		l.Rooms = req.Rooms
	}

	var images []string
	err = s.store.InTx(ctx, func(tx TxStore) error {
		if err := tx.Listings().Update(ctx, l); err != nil {
			return err
		}

		if req.ImageURLs != nil {
			images = ParseImageURLs(req.ImageURLs)
			if err := tx.Listings().ReplaceImages(ctx, l.ID, images); err != nil {
				return err
			}
		}

		return tx.Audit().Append(ctx, &audit.Entry{
			UserID:     &actor.ID,
			Action:     audit.ActionEdit,
			EntityType: audit.EntityListing,
			EntityID:   &l.ID,
			Details:    "Edited " + l.Title,
		})
	})
	if err != nil {
		return nil, nil, err
	}

	if req.ImageURLs == nil {
		images, err = s.store.Listings().GetImages(ctx, l.ID)
		if err != nil {
			return nil, nil, err
		}
	}

	return l, images, nil
}

// Delete removes a listing with its images and dependent sale rows.
func (s *Service) Delete(
	ctx context.Context,
	actor user.Actor,
	id string,
) error {
	l, err := s.store.Listings().GetByID(ctx, id)
	if err != nil {
		return err
	}

	ownerRole, err := s.ownerRole(ctx, l)
	if err != nil {
		return err
	}

	if !CanManage(actor, l, ownerRole) {
		return fmt.Errorf("delete listing: %w", core.ErrForbidden)
	}

	return s.store.InTx(ctx, func(tx TxStore) error {
		if err := tx.Listings().Delete(ctx, id); err != nil {
			return err
		}

		return tx.Audit().Append(ctx, &audit.Entry{
			UserID:     &actor.ID,
			Action:     audit.ActionDelete,
			EntityType: audit.EntityListing,
			EntityID:   &l.ID,
			Details:    "Deleted " + l.Title,
		})
	})
}

// SetStatus moves the listing to one of the three publication states.
func (s *Service) SetStatus(
	ctx context.Context,
	actor user.Actor,
	id, rawStatus string,
) (*Listing, error) {
	status, err := ParsePublicationStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	return s.moderate(ctx, actor, id, audit.ActionStatus, func(l *Listing) {
		l.setStatus(status)
	})
}

// TogglePublish flips the listing between published and refused.
func (s *Service) TogglePublish(
	ctx context.Context,
	actor user.Actor,
	id string,
) (*Listing, error) {
	return s.moderate(ctx, actor, id, audit.ActionPublish, func(l *Listing) {
		if l.IsPublished {
			l.setStatus(StatusRefused)
		} else {
			l.setStatus(StatusPublished)
		}
	})
}

func (s *Service) moderate(
	ctx context.Context,
	actor user.Actor,
	id, action string,
	mutate func(*Listing),
) (*Listing, error) {
	l, err := s.store.Listings().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ownerRole, err := s.ownerRole(ctx, l)
	if err != nil {
		return nil, err
	}

	if !CanModerate(actor, l, ownerRole) {
		return nil, fmt.Errorf("moderate listing: %w", core.ErrForbidden)
	}

	mutate(l)

	err = s.store.InTx(ctx, func(tx TxStore) error {
		if err := tx.Listings().Update(ctx, l); err != nil {
			return err
		}

		return tx.Audit().Append(ctx, &audit.Entry{
			UserID:     &actor.ID,
			Action:     action,
			EntityType: audit.EntityListing,
			EntityID:   &l.ID,
			Details:    "Status set to " + l.PublicationStatus,
		})
	})
	if err != nil {
		return nil, err
	}

	return l, nil
}

// Relist puts a purchased listing back on the market. A non-staff owner
// relisting goes back through moderation: the listing is forced pending
// and unpublished. Staff relists keep the current publication state.
func (s *Service) Relist(
	ctx context.Context,
	actor user.Actor,
	id string,
) (*Listing, error) {
	l, err := s.store.Listings().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ownerRole, err := s.ownerRole(ctx, l)
	if err != nil {
		return nil, err
	}

	if !CanManage(actor, l, ownerRole) {
		return nil, fmt.Errorf("relist listing: %w", core.ErrForbidden)
	}

	if !l.IsPurchased() {
		return nil, fmt.Errorf(
			"relist listing: not purchased: %w",
			core.ErrInvalidInput,
		)
	}

	l.TransactionType = TxnForSale
	if !actor.IsStaff() {
		l.setStatus(StatusPending)
	}

	err = s.store.InTx(ctx, func(tx TxStore) error {
		if err := tx.Listings().Update(ctx, l); err != nil {
			return err
		}

		return tx.Audit().Append(ctx, &audit.Entry{
			UserID:     &actor.ID,
			Action:     audit.ActionRelist,
			EntityType: audit.EntityListing,
			EntityID:   &l.ID,
			Details:    "Relisted " + l.Title,
		})
	})
	if err != nil {
		return nil, err
	}

	return l, nil
}

func (s *Service) ownerRole(ctx context.Context, l *Listing) (string, error) {
	if l.OwnerID == nil {
		return "", nil
	}

	owner, err := s.users.GetByID(ctx, *l.OwnerID)
	if errors.Is(err, core.ErrNotFound) {
		// Owner account vanished; treat the listing as ownerless.
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return owner.Role, nil
}
