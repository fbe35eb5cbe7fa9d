// estateadmin | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/mseddi/estateadmin/internal/audit"
	"github.com/mseddi/estateadmin/internal/core"
	"github.com/mseddi/estateadmin/internal/middleware"
)

type Service struct {
	repo    Repository
	auditor audit.Repository
}

func NewService(repo Repository, auditor audit.Repository) *Service {
	return &Service{repo: repo, auditor: auditor}
}

// SyncMe provisions or refreshes the local user row from verified
// identity-provider claims. The stored role wins over the token role for
// existing rows; new users start with the token role when it is one we
// know, otherwise as a regular user.
func (s *Service) SyncMe(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) (*User, error) {
	if claims == nil || claims.UserID == "" {
		return nil, fmt.Errorf("sync me: %w", core.ErrUnauthorized)
	}

	role := claims.Role
	if !ValidRole(role) {
		role = RoleUser
	}

	u := &User{
		ID:    claims.UserID,
		Email: strings.ToLower(claims.Email),
		Name:  claims.Name,
		Role:  role,
	}

	if err := s.repo.Upsert(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetUserDetail returns the user plus a summary of the listings they own.
func (s *Service) GetUserDetail(
	ctx context.Context,
	id string,
) (*User, *OwnerListingStats, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	stats, err := s.repo.ListingStats(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return u, stats, nil
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

// AssignRole replaces the target's role. Only a superadmin may call it,
// self-changes are rejected, and the last superadmin can never be demoted.
func (s *Service) AssignRole(
	ctx context.Context,
	actor Actor,
	targetID, role string,
) (*User, error) {
	if !actor.IsSuperAdmin() {
		return nil, fmt.Errorf("assign role: %w", core.ErrForbidden)
	}

	if actor.ID == targetID {
		return nil, fmt.Errorf(
			"assign role: cannot change own role: %w",
			core.ErrForbidden,
		)
	}

	if !ValidRole(role) {
		return nil, fmt.Errorf(
			"assign role: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if target.Role == role {
		return target, nil
	}

	if target.IsSuperAdmin() {
		if err := s.checkSuperAdminFloor(ctx); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateRole(ctx, targetID, role); err != nil {
		return nil, err
	}

	err = s.auditor.Append(ctx, &audit.Entry{
		UserID:     &actor.ID,
		Action:     audit.ActionRole,
		EntityType: audit.EntityUser,
		EntityID:   &targetID,
		Details:    "Role set to " + role,
	})
	if err != nil {
		return nil, err
	}

	target.Role = role
	return target, nil
}

// DeleteUser removes a user account. Their listings survive ownerless;
// accounts that bought listings are kept for ledger integrity.
func (s *Service) DeleteUser(
	ctx context.Context,
	actor Actor,
	targetID string,
) error {
	if !actor.IsSuperAdmin() {
		return fmt.Errorf("delete user: %w", core.ErrForbidden)
	}

	if actor.ID == targetID {
		return fmt.Errorf(
			"delete user: cannot delete own account: %w",
			core.ErrForbidden,
		)
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if target.IsSuperAdmin() {
		if err := s.checkSuperAdminFloor(ctx); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, targetID); err != nil {
		return err
	}

	return s.auditor.Append(ctx, &audit.Entry{
		UserID:     &actor.ID,
		Action:     audit.ActionDelete,
		EntityType: audit.EntityUser,
		EntityID:   &targetID,
		Details:    "Deleted user " + target.Email,
	})
}

func (s *Service) checkSuperAdminFloor(ctx context.Context) error {
	count, err := s.repo.CountByRole(ctx, RoleSuperAdmin)
	if err != nil {
		return err
	}

	if count <= 1 {
		return fmt.Errorf(
			"at least one superadmin must remain: %w",
			core.ErrForbidden,
		)
	}

	return nil
}
