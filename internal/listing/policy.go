// estateadmin | 2026
// policy.go

package listing

import (
	"fmt"

	"github.com/mseddi/estateadmin/internal/core"
	"github.com/mseddi/estateadmin/internal/user"
)

// Authorization decisions are pure functions of the actor, the listing's
// ownership, and the owner's role. Callers resolve the owner's role
// before asking; an ownerless listing passes an empty role.

// CanView reports whether the actor may see the listing in management
// views. Public browsing of published listings goes through the shop and
// is not gated here.
func CanView(actor user.Actor, l *Listing) bool {
	if actor.IsStaff() {
		return true
	}
	return l.IsOwnedBy(actor.ID)
}

// CanManage reports whether the actor may edit, delete, or relist the
// listing. Owners always can; staff fall through to the elevated check.
func CanManage(actor user.Actor, l *Listing, ownerRole string) bool {
	if l.IsOwnedBy(actor.ID) {
		return true
	}
	return canManageElevated(actor, l, ownerRole)
}

// CanModerate reports whether the actor may publish, unpublish, or set
// the publication status. Ownership alone is not enough; moderation is
// a staff power.
func CanModerate(actor user.Actor, l *Listing, ownerRole string) bool {
	if !actor.IsStaff() {
		return false
	}
	return canManageElevated(actor, l, ownerRole)
}

// canManageElevated is the peer-admin protection rule. A superadmin may
// manage anything. An admin may manage their own listings, ownerless
// listings, and listings whose owner holds no staff role. Peer admins
// cannot touch each other's listings.
func canManageElevated(actor user.Actor, l *Listing, ownerRole string) bool {
	if actor.IsSuperAdmin() {
		return true
	}

	if actor.Role != user.RoleAdmin {
		return false
	}

	if l.IsOwnedBy(actor.ID) || l.IsOwnerless() {
		return true
	}

	return ownerRole != user.RoleAdmin && ownerRole != user.RoleSuperAdmin
}

// CheckBuy validates the purchase preconditions in order; the first
// failure wins.
func CheckBuy(actor user.Actor, l *Listing) error {
	if !actor.IsAuthenticated() {
		return fmt.Errorf("buy listing: %w", core.ErrUnauthorized)
	}

	if actor.IsStaff() {
		return fmt.Errorf(
			"buy listing: staff cannot purchase: %w",
			core.ErrForbidden,
		)
	}

	if l.IsOwnedBy(actor.ID) {
		return fmt.Errorf(
			"buy listing: already the owner: %w",
			core.ErrForbidden,
		)
	}

	if l.PublicationStatus != StatusPublished {
		return fmt.Errorf(
			"buy listing: not published: %w",
			core.ErrForbidden,
		)
	}

	if l.IsPurchased() {
		return fmt.Errorf(
			"buy listing: already purchased: %w",
			core.ErrForbidden,
		)
	}

	return nil
}
