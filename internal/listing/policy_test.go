// estateadmin | 2026
// policy_test.go

package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mseddi/estateadmin/internal/core"
	"github.com/mseddi/estateadmin/internal/user"
)

func owned(ownerID string) *Listing {
	return &Listing{ID: "l1", OwnerID: &ownerID}
}

func TestCanManage(t *testing.T) {
	regular := user.Actor{ID: "u1", Role: user.RoleUser}
	admin := user.Actor{ID: "a1", Role: user.RoleAdmin}
	super := user.Actor{ID: "s1", Role: user.RoleSuperAdmin}

	tests := []struct {
		name      string
		actor     user.Actor
		l         *Listing
		ownerRole string
		want      bool
	}{
		{"owner manages own", regular, owned("u1"), user.RoleUser, true},
		{"stranger cannot manage", regular, owned("u2"), user.RoleUser, false},
		{"admin manages regular user's", admin, owned("u2"), user.RoleUser, true},
		{"admin manages own", admin, owned("a1"), user.RoleAdmin, true},
		{"admin manages ownerless", admin, &Listing{ID: "l1"}, "", true},
		{"admin blocked on peer admin's", admin, owned("a2"), user.RoleAdmin, false},
		{"admin blocked on superadmin's", admin, owned("s1"), user.RoleSuperAdmin, false},
		{"superadmin manages peer admin's", super, owned("a2"), user.RoleAdmin, true},
		{"superadmin manages anything", super, owned("u2"), user.RoleUser, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanManage(tt.actor, tt.l, tt.ownerRole))
		})
	}
}

func TestCanModerateRequiresStaff(t *testing.T) {
	// Owning a listing does not grant moderation powers.
	owner := user.Actor{ID: "u1", Role: user.RoleUser}
	assert.False(t, CanModerate(owner, owned("u1"), user.RoleUser))

	admin := user.Actor{ID: "a1", Role: user.RoleAdmin}
	assert.True(t, CanModerate(admin, owned("u1"), user.RoleUser))

	// Peer-admin protection applies to moderation too.
	assert.False(t, CanModerate(admin, owned("a2"), user.RoleAdmin))

	super := user.Actor{ID: "s1", Role: user.RoleSuperAdmin}
	assert.True(t, CanModerate(super, owned("a2"), user.RoleAdmin))
}

func TestCanView(t *testing.T) {
	regular := user.Actor{ID: "u1", Role: user.RoleUser}
	admin := user.Actor{ID: "a1", Role: user.RoleAdmin}

	assert.True(t, CanView(regular, owned("u1")))
	assert.False(t, CanView(regular, owned("u2")))
	assert.True(t, CanView(admin, owned("u2")))
}

func TestCheckBuy(t *testing.T) {
	eligible := func() *Listing {
		ownerID := "seller"
		return &Listing{
			ID:                "l1",
			OwnerID:           &ownerID,
			PublicationStatus: StatusPublished,
			IsPublished:       true,
			TransactionType:   TxnForSale,
		}
	}

	buyer := user.Actor{ID: "buyer", Role: user.RoleUser}

	t.Run("eligible purchase passes", func(t *testing.T) {
		require.NoError(t, CheckBuy(buyer, eligible()))
	})

	t.Run("unauthenticated", func(t *testing.T) {
		err := CheckBuy(user.Actor{}, eligible())
		require.ErrorIs(t, err, core.ErrUnauthorized)
	})

	t.Run("staff cannot buy", func(t *testing.T) {
		err := CheckBuy(user.Actor{ID: "a1", Role: user.RoleAdmin}, eligible())
		require.ErrorIs(t, err, core.ErrForbidden)

		err = CheckBuy(user.Actor{ID: "s1", Role: user.RoleSuperAdmin}, eligible())
		require.ErrorIs(t, err, core.ErrForbidden)
	})

	t.Run("owner cannot buy own listing", func(t *testing.T) {
		err := CheckBuy(user.Actor{ID: "seller", Role: user.RoleUser}, eligible())
		require.ErrorIs(t, err, core.ErrForbidden)
	})

	t.Run("unpublished listing", func(t *testing.T) {
		l := eligible()
		l.setStatus(StatusPending)
		err := CheckBuy(buyer, l)
		require.ErrorIs(t, err, core.ErrForbidden)
	})

	t.Run("already purchased", func(t *testing.T) {
		l := eligible()
		l.TransactionType = TxnPurchased
		err := CheckBuy(buyer, l)
		require.ErrorIs(t, err, core.ErrForbidden)
	})
}
