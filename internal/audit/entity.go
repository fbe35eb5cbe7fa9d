// estateadmin | 2026
// entity.go

package audit

import (
	"time"
)

// Entry is one append-only audit record. Entries are never updated or
// deleted; the sales backfill reads them back as the source of truth.
type Entry struct {
	ID         int64     `db:"id"`
	UserID     *string   `db:"user_id"`
	Action     string    `db:"action"`
	EntityType string    `db:"entity_type"`
	EntityID   *string   `db:"entity_id"`
	Details    string    `db:"details"`
	CreatedAt  time.Time `db:"created_at"`
}

const (
	ActionCreate  = "Create"
	ActionEdit    = "Edit"
	ActionDelete  = "Delete"
	ActionPublish = "Publish"
	ActionStatus  = "Status"
	ActionRelist  = "Relist"
	ActionBuy     = "Buy"
	ActionRole    = "Role"
	ActionPayment = "Payment"
	ActionTreat   = "Treat"
)

const (
	EntityListing = "Listing"
	EntityUser    = "User"
	EntitySale    = "Sale"
	EntityPayment = "Payment"
	EntityMessage = "Message"
)
