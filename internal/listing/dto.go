// estateadmin | 2026
// dto.go

package listing

import (
	"time"
)

type CreateListingRequest struct {
	Title             string   `json:"title"              validate:"required,min=1,max=200"`
	Description       string   `json:"description"        validate:"max=5000"`
	Price             float64  `json:"price"              validate:"gte=0"`
	Address           string   `json:"address"            validate:"max=500"`
	Surface           *float64 `json:"surface,omitempty"  validate:"omitempty,gte=0"`
	Rooms             *int     `json:"rooms,omitempty"    validate:"omitempty,gte=0"`
	TransactionType   string   `json:"transaction_type"`
	PublicationStatus string   `json:"publication_status"`
	ImageURLs         []string `json:"image_urls"         validate:"max=20,dive,max=2000"`
}

type UpdateListingRequest struct {
	Title       *string  `json:"title,omitempty"       validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price,omitempty"       validate:"omitempty,gte=0"`
	Address     *string  `json:"address,omitempty"     validate:"omitempty,max=500"`
	Surface     *float64 `json:"surface,omitempty"     validate:"omitempty,gte=0"`
	Rooms       *int     `json:"rooms,omitempty"       validate:"omitempty,gte=0"`
	ImageURLs   []string `json:"image_urls,omitempty"  validate:"omitempty,max=20,dive,max=2000"`
}

type SetStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type ListingResponse struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Price             float64   `json:"price"`
	Address           string    `json:"address"`
	Surface           *float64  `json:"surface,omitempty"`
	Rooms             *int      `json:"rooms,omitempty"`
	TransactionType   string    `json:"transaction_type"`
	PublicationStatus string    `json:"publication_status"`
	IsPublished       bool      `json:"is_published"`
	OwnerID           *string   `json:"owner_id,omitempty"`
	Version           int       `json:"version"`
	ImageURLs         []string  `json:"image_urls"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type ListListingsParams struct {
	Page            int
	PageSize        int
	OwnerID         string
	Search          string
	MinPrice        *float64
	MaxPrice        *float64
	MinSurface      *float64
	Status          string
	TransactionType string
}

func (p *ListListingsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListListingsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToListingResponse(l *Listing, imageURLs []string) ListingResponse {
	if imageURLs == nil {
		imageURLs = []string{}
	}
	return ListingResponse{
		ID:                l.ID,
		Title:             l.Title,
		Description:       l.Description,
		Price:             l.Price,
		Address:           l.Address,
		Surface:           l.Surface,
		Rooms:             l.Rooms,
		TransactionType:   l.TransactionType,
		PublicationStatus: l.PublicationStatus,
		IsPublished:       l.IsPublished,
		OwnerID:           l.OwnerID,
		Version:           l.Version,
		ImageURLs:         imageURLs,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}
