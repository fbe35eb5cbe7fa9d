// estateadmin | 2026
// entity.go

package listing

import (
	"time"
)

// Listing is a property offered on the marketplace. isPublished is
// derived storage: it is recomputed from publication_status on every
// status write and never set independently.
type Listing struct {
	ID                string   `db:"id"`
	Title             string   `db:"title"`
	Description       string   `db:"description"`
	Price             float64  `db:"price"`
	Address           string   `db:"address"`
	Surface           *float64 `db:"surface"`
	Rooms             *int     `db:"rooms"`
	TransactionType   string   `db:"transaction_type"`
	PublicationStatus string   `db:"publication_status"`
	IsPublished       bool     `db:"is_published"`
	OwnerID           *string  `db:"owner_id"`

	// Version is the optimistic concurrency token; every persisted
	// mutation bumps it and stale writers get a conflict.
	Version int `db:"version"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Image struct {
	ID        int64     `db:"id"`
	ListingID string    `db:"listing_id"`
	URL       string    `db:"url"`
	Position  int       `db:"position"`
	CreatedAt time.Time `db:"created_at"`
}

func (l *Listing) IsOwnedBy(userID string) bool {
	return l.OwnerID != nil && *l.OwnerID == userID
}

func (l *Listing) IsOwnerless() bool {
	return l.OwnerID == nil
}

func (l *Listing) IsPurchased() bool {
	return l.TransactionType == TxnPurchased
}

// setStatus writes the publication status and its derived flag together.
func (l *Listing) setStatus(status string) {
	l.PublicationStatus = status
	l.IsPublished = status == StatusPublished
}
