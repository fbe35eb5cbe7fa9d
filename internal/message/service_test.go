// estateadmin | 2026
// service_test.go

package message

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mseddi/estateadmin/internal/audit"
	"github.com/mseddi/estateadmin/internal/core"
	"github.com/mseddi/estateadmin/internal/user"
)

type memMessageRepo struct {
	messages map[string]*Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{messages: map[string]*Message{}}
}

func (m *memMessageRepo) Insert(_ context.Context, msg *Message) error {
	msg.CreatedAt = time.Now()
	cp := *msg
	m.messages[msg.ID] = &cp
	return nil
}

func (m *memMessageRepo) GetByID(_ context.Context, id string) (*Message, error) {
	if msg, ok := m.messages[id]; ok {
		cp := *msg
		return &cp, nil
	}
	return nil, fmt.Errorf("get message: %w", core.ErrNotFound)
}

func (m *memMessageRepo) List(
	_ context.Context,
	params ListMessagesParams,
) ([]Message, int, error) {
	var out []Message
	for _, msg := range m.messages {
		if params.Status != "" && msg.Status != params.Status {
			continue
		}
		out = append(out, *msg)
	}
	return out, len(out), nil
}

func (m *memMessageRepo) MarkTreated(
	_ context.Context,
	id, handledBy string,
) error {
	msg, ok := m.messages[id]
	if !ok {
		return fmt.Errorf("mark message treated: %w", core.ErrNotFound)
	}
	now := time.Now()
	msg.Status = StatusTreated
	msg.HandledBy = &handledBy
	msg.HandledAt = &now
	return nil
}

func (m *memMessageRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.messages[id]; !ok {
		return fmt.Errorf("delete message: %w", core.ErrNotFound)
	}
	delete(m.messages, id)
	return nil
}

func (m *memMessageRepo) CountNew(_ context.Context) (int, error) {
	count := 0
	for _, msg := range m.messages {
		if msg.Status == StatusNew {
			count++
		}
	}
	return count, nil
}

type memAuditRepo struct {
	entries []audit.Entry
}

func (m *memAuditRepo) Append(_ context.Context, e *audit.Entry) error {
	e.ID = int64(len(m.entries) + 1)
	e.CreatedAt = time.Now()
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memAuditRepo) List(
	_ context.Context,
	_ audit.ListParams,
) ([]audit.Entry, int, error) {
	return m.entries, len(m.entries), nil
}

func (m *memAuditRepo) ListBuyEntries(_ context.Context) ([]audit.Entry, error) {
	return nil, nil
}

type memStore struct {
	msgs   *memMessageRepo
	audits *memAuditRepo
}

func newMemStore() *memStore {
	return &memStore{msgs: newMemMessageRepo(), audits: &memAuditRepo{}}
}

func (m *memStore) Messages() Repository    { return m.msgs }
func (m *memStore) Audit() audit.Repository { return m.audits }

func (m *memStore) InTx(_ context.Context, fn func(TxStore) error) error {
	return fn(m)
}

var (
	staff   = user.Actor{ID: "a1", Role: user.RoleAdmin}
	regular = user.Actor{ID: "u1", Role: user.RoleUser}
)

func seedMessage(store *memStore, id, status string) *Message {
	m := &Message{
		ID:        id,
		Name:      "Visitor",
		Email:     "visitor@example.com",
		Subject:   "Viewing request",
		Content:   "Is the villa still available?",
		Status:    status,
		CreatedAt: time.Now(),
	}
	store.msgs.messages[id] = m
	return m
}

func TestCreateMessageLandsNew(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	m, err := svc.Create(context.Background(), CreateMessageRequest{
		Name:    "  Visitor  ",
		Email:   "visitor@example.com",
		Subject: "Viewing request",
		Content: "Is the villa still available?",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusNew, m.Status)
	assert.Equal(t, "Visitor", m.Name)
	assert.Nil(t, m.HandledBy)

	// The audit entry rides the same transaction, with no sender account.
	require.Len(t, store.audits.entries, 1)
	entry := store.audits.entries[0]
	assert.Equal(t, audit.ActionCreate, entry.Action)
	assert.Equal(t, audit.EntityMessage, entry.EntityType)
	assert.Nil(t, entry.UserID)
	assert.Equal(t, m.ID, *entry.EntityID)
}

func TestMarkTreatedStampsHandler(t *testing.T) {
	store := newMemStore()
	seedMessage(store, "m1", StatusNew)
	svc := NewService(store)

	m, err := svc.MarkTreated(context.Background(), staff, "m1")
	require.NoError(t, err)

	assert.Equal(t, StatusTreated, m.Status)
	require.NotNil(t, m.HandledBy)
	assert.Equal(t, staff.ID, *m.HandledBy)
	assert.NotNil(t, m.HandledAt)

	require.Len(t, store.audits.entries, 1)
	assert.Equal(t, audit.ActionTreat, store.audits.entries[0].Action)
}

func TestDeleteMessageAppendsAudit(t *testing.T) {
	store := newMemStore()
	seedMessage(store, "m1", StatusTreated)
	svc := NewService(store)

	err := svc.Delete(context.Background(), staff, "m1")
	require.NoError(t, err)

	assert.NotContains(t, store.msgs.messages, "m1")
	require.Len(t, store.audits.entries, 1)
	assert.Equal(t, audit.ActionDelete, store.audits.entries[0].Action)

	err = svc.Delete(context.Background(), staff, "m1")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestMessageStaffGuards(t *testing.T) {
	store := newMemStore()
	seedMessage(store, "m1", StatusNew)
	svc := NewService(store)

	_, _, err := svc.List(context.Background(), regular, ListMessagesParams{})
	require.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.Get(context.Background(), regular, "m1")
	require.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.MarkTreated(context.Background(), regular, "m1")
	require.ErrorIs(t, err, core.ErrForbidden)

	err = svc.Delete(context.Background(), regular, "m1")
	require.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.UnreadCount(context.Background(), regular)
	require.ErrorIs(t, err, core.ErrForbidden)
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	svc := NewService(newMemStore())

	_, _, err := svc.List(
		context.Background(),
		staff,
		ListMessagesParams{Status: "archived"},
	)
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestUnreadCountOnlyCountsNew(t *testing.T) {
	store := newMemStore()
	seedMessage(store, "m1", StatusNew)
	seedMessage(store, "m2", StatusNew)
	seedMessage(store, "m3", StatusTreated)
	svc := NewService(store)

	count, err := svc.UnreadCount(context.Background(), staff)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
