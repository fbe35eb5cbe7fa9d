// estateadmin | 2026
// service_test.go

package user

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mseddi/estateadmin/internal/audit"
	"github.com/mseddi/estateadmin/internal/core"
	"github.com/mseddi/estateadmin/internal/middleware"
)

type memAuditLog struct {
	entries []audit.Entry
}

func (m *memAuditLog) Append(_ context.Context, e *audit.Entry) error {
	e.ID = int64(len(m.entries) + 1)
	e.CreatedAt = time.Now()
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memAuditLog) List(
	_ context.Context,
	_ audit.ListParams,
) ([]audit.Entry, int, error) {
	return m.entries, len(m.entries), nil
}

func (m *memAuditLog) ListBuyEntries(_ context.Context) ([]audit.Entry, error) {
	return nil, nil
}

type memRepo struct {
	users map[string]*User
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]*User{}}
}

func (m *memRepo) Upsert(_ context.Context, u *User) error {
	if existing, ok := m.users[u.ID]; ok {
		existing.Email = u.Email
		existing.Name = u.Name
		existing.UpdatedAt = time.Now()
		*u = *existing
		return nil
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

func (m *memRepo) UpdateRole(_ context.Context, id, role string) error {
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("update role: %w", core.ErrNotFound)
	}
	u.Role = role
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}
	delete(m.users, id)
	return nil
}

func (m *memRepo) List(
	_ context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	var out []User
	for _, u := range m.users {
		if params.Role != "" && u.Role != params.Role {
			continue
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *memRepo) CountByRole(_ context.Context, role string) (int, error) {
	count := 0
	for _, u := range m.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

func (m *memRepo) ListingStats(
	_ context.Context,
	_ string,
) (*OwnerListingStats, error) {
	return &OwnerListingStats{}, nil
}

func seedUser(repo *memRepo, id, role string) *User {
	u := &User{
		ID:    id,
		Email: id + "@example.com",
		Name:  id,
		Role:  role,
	}
	repo.users[id] = u
	return u
}

func TestSyncMeProvisionsNewUser(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &memAuditLog{})

	u, err := svc.SyncMe(context.Background(), &middleware.AccessTokenClaims{
		UserID: "u1",
		Name:   "Alice",
		Email:  "Alice@Example.com",
		Role:   "admin",
	})
	require.NoError(t, err)

	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, RoleAdmin, u.Role)
}

func TestSyncMeUnknownRoleDefaultsToUser(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &memAuditLog{})

	u, err := svc.SyncMe(context.Background(), &middleware.AccessTokenClaims{
		UserID: "u1",
		Role:   "wizard",
	})
	require.NoError(t, err)

	assert.Equal(t, RoleUser, u.Role)
}

func TestSyncMePreservesLocalRole(t *testing.T) {
	repo := newMemRepo()
	seedUser(repo, "u1", RoleSuperAdmin)
	svc := NewService(repo, &memAuditLog{})

	u, err := svc.SyncMe(context.Background(), &middleware.AccessTokenClaims{
		UserID: "u1",
		Email:  "u1@example.com",
		Role:   "user",
	})
	require.NoError(t, err)

	assert.Equal(t, RoleSuperAdmin, u.Role)
}

func TestSyncMeRequiresClaims(t *testing.T) {
	svc := NewService(newMemRepo(), &memAuditLog{})

	_, err := svc.SyncMe(context.Background(), nil)
	require.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestAssignRoleRequiresSuperAdmin(t *testing.T) {
	repo := newMemRepo()
	seedUser(repo, "target", RoleUser)
	svc := NewService(repo, &memAuditLog{})

	actor := Actor{ID: "a1", Role: RoleAdmin}
	_, err := svc.AssignRole(context.Background(), actor, "target", RoleAdmin)
	require.ErrorIs(t, err, core.ErrForbidden)
}

func TestAssignRoleRejectsSelfChange(t *testing.T) {
	repo := newMemRepo()
	seedUser(repo, "sa", RoleSuperAdmin)
	svc := NewService(repo, &memAuditLog{})

	actor := Actor{ID: "sa", Role: RoleSuperAdmin}
	_, err := svc.AssignRole(context.Background(), actor, "sa", RoleUser)
	require.ErrorIs(t, err, core.ErrForbidden)
}

func TestAssignRoleRejectsInvalidRole(t *testing.T) {
	repo := newMemRepo()
	seedUser(repo, "target", RoleUser)
	svc := NewService(repo, &memAuditLog{})

	actor := Actor{ID: "sa", Role: RoleSuperAdmin}
	_, err := svc.AssignRole(context.Background(), actor, "target", "root")
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestAssignRoleProtectsLastSuperAdmin(t *testing.T) {
	repo := newMemRepo()
	seedUser(repo, "sa1", RoleSuperAdmin)
	seedUser(repo, "other", RoleSuperAdmin)
	svc := NewService(repo, &memAuditLog{})

	actor := Actor{ID: "sa1", Role: RoleSuperAdmin}

	// Two superadmins exist, demoting one is fine.
	u, err := svc.AssignRole(context.Background(), actor, "other", RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, u.Role)

	// Re-promote and remove sa1 so "other" is the only one left.
	_, err = svc.AssignRole(context.Background(), actor, "other", RoleSuperAdmin)
	require.NoError(t, err)
	delete(repo.users, "sa1")

	actor = Actor{ID: "someone-else", Role: RoleSuperAdmin}
	_, err = svc.AssignRole(context.Background(), actor, "other", RoleUser)
	require.ErrorIs(t, err, core.ErrForbidden)
}

func TestAssignRolePromotesUser(t *testing.T) {
	repo := newMemRepo()
	seedUser(repo, "target", RoleUser)
	log := &memAuditLog{}
	svc := NewService(repo, log)

	actor := Actor{ID: "sa", Role: RoleSuperAdmin}
	u, err := svc.AssignRole(context.Background(), actor, "target", RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, RoleAdmin, u.Role)
	assert.Equal(t, RoleAdmin, repo.users["target"].Role)

	require.Len(t, log.entries, 1)
	assert.Equal(t, audit.ActionRole, log.entries[0].Action)
	assert.Equal(t, audit.EntityUser, log.entries[0].EntityType)
	assert.Equal(t, "target", *log.entries[0].EntityID)
}

func TestDeleteUserGuards(t *testing.T) {
	repo := newMemRepo()
	seedUser(repo, "sa", RoleSuperAdmin)
	seedUser(repo, "victim", RoleUser)
	svc := NewService(repo, &memAuditLog{})

	admin := Actor{ID: "adm", Role: RoleAdmin}
	err := svc.DeleteUser(context.Background(), admin, "victim")
	require.ErrorIs(t, err, core.ErrForbidden)

	sa := Actor{ID: "sa", Role: RoleSuperAdmin}
	err = svc.DeleteUser(context.Background(), sa, "sa")
	require.ErrorIs(t, err, core.ErrForbidden)

	// Deleting the only superadmin is blocked even for another superadmin.
	err = svc.DeleteUser(
		context.Background(),
		Actor{ID: "ghost", Role: RoleSuperAdmin},
		"sa",
	)
	require.ErrorIs(t, err, core.ErrForbidden)

	err = svc.DeleteUser(context.Background(), sa, "victim")
	require.NoError(t, err)
	assert.NotContains(t, repo.users, "victim")
}
