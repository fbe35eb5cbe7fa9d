// estateadmin | 2026
// service.go

package message

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mseddi/estateadmin/internal/audit"
	"github.com/mseddi/estateadmin/internal/core"
	"github.com/mseddi/estateadmin/internal/user"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create accepts a contact message from anyone, authenticated or not.
// Submissions always land as new; the sender cannot pick a status.
func (s *Service) Create(
	ctx context.Context,
	req CreateMessageRequest,
) (*Message, error) {
	m := &Message{
		ID:      uuid.New().String(),
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Content: req.Content,
		Status:  StatusNew,
	}

	err := s.store.InTx(ctx, func(tx TxStore) error {
		if err := tx.Messages().Insert(ctx, m); err != nil {
			return err
		}

		// Anonymous senders leave the audit user empty.
		return tx.Audit().Append(ctx, &audit.Entry{
			Action:     audit.ActionCreate,
			EntityType: audit.EntityMessage,
			EntityID:   &m.ID,
			Details:    "New message: " + m.Subject,
		})
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}

// List returns the staff inbox, new messages first.
func (s *Service) List(
	ctx context.Context,
	actor user.Actor,
	params ListMessagesParams,
) ([]Message, int, error) {
	if !actor.IsStaff() {
		return nil, 0, fmt.Errorf("list messages: %w", core.ErrForbidden)
	}

	if params.Status != "" {
		status, err := ParseStatus(params.Status)
		if err != nil {
			return nil, 0, err
		}
		params.Status = status
	}

	return s.store.Messages().List(ctx, params)
}

func (s *Service) Get(
	ctx context.Context,
	actor user.Actor,
	id string,
) (*Message, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("get message: %w", core.ErrForbidden)
	}

	return s.store.Messages().GetByID(ctx, id)
}

// MarkTreated closes a message, stamping who handled it and when.
// Re-treating an already treated message just refreshes the stamp.
func (s *Service) MarkTreated(
	ctx context.Context,
	actor user.Actor,
	id string,
) (*Message, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("treat message: %w", core.ErrForbidden)
	}

	m, err := s.store.Messages().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.store.InTx(ctx, func(tx TxStore) error {
		if err := tx.Messages().MarkTreated(ctx, m.ID, actor.ID); err != nil {
			return err
		}

		return tx.Audit().Append(ctx, &audit.Entry{
			UserID:     &actor.ID,
			Action:     audit.ActionTreat,
			EntityType: audit.EntityMessage,
			EntityID:   &m.ID,
			Details:    "Treated message: " + m.Subject,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.store.Messages().GetByID(ctx, m.ID)
}

func (s *Service) Delete(
	ctx context.Context,
	actor user.Actor,
	id string,
) error {
	if !actor.IsStaff() {
		return fmt.Errorf("delete message: %w", core.ErrForbidden)
	}

	m, err := s.store.Messages().GetByID(ctx, id)
	if err != nil {
		return err
	}

	return s.store.InTx(ctx, func(tx TxStore) error {
		if err := tx.Messages().Delete(ctx, m.ID); err != nil {
			return err
		}

		return tx.Audit().Append(ctx, &audit.Entry{
			UserID:     &actor.ID,
			Action:     audit.ActionDelete,
			EntityType: audit.EntityMessage,
			EntityID:   &m.ID,
			Details:    "Deleted message: " + m.Subject,
		})
	})
}

// UnreadCount backs the staff inbox badge.
func (s *Service) UnreadCount(
	ctx context.Context,
	actor user.Actor,
) (int, error) {
	if !actor.IsStaff() {
		return 0, fmt.Errorf("count messages: %w", core.ErrForbidden)
	}

	return s.store.Messages().CountNew(ctx)
}
