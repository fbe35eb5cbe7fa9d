// estateadmin | 2026
// handler.go

package shop

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mseddi/estateadmin/internal/core"
	"github.com/mseddi/estateadmin/internal/listing"
	"github.com/mseddi/estateadmin/internal/sales"
	"github.com/mseddi/estateadmin/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the storefront. Browsing and detail are open to
// anonymous visitors; buying needs a verified identity.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	optionalAuth, authenticator func(http.Handler) http.Handler,
) {
	r.Route("/shop", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)

			r.Get("/", h.Browse)
			r.Get("/{listingID}", h.GetListing)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Post("/{listingID}/buy", h.Buy)
		})
	})
}

func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	actor := user.ActorFromContext(r.Context())
	q := r.URL.Query()

	params := listing.ListListingsParams{
		Page:       parseIntQuery(r, "page", 1),
		PageSize:   parseIntQuery(r, "page_size", 20),
		Search:     q.Get("search"),
		MinPrice:   parseFloatQuery(r, "min_price"),
		MaxPrice:   parseFloatQuery(r, "max_price"),
		MinSurface: parseFloatQuery(r, "min_surface"),
	}

	listings, total, err := h.service.Browse(r.Context(), actor, params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	responses := make([]listing.ListingResponse, 0, len(listings))
	for i := range listings {
		responses = append(responses, listing.ToListingResponse(&listings[i], nil))
	}

	params.Normalize()
	core.Paginated(w, responses, params.Page, params.PageSize, total)
}

func (h *Handler) GetListing(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")

	l, images, err := h.service.GetListing(r.Context(), listingID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, listing.ToListingResponse(l, images))
}

func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	actor := user.ActorFromContext(r.Context())
	listingID := chi.URLParam(r, "listingID")

	sale, err := h.service.Buy(r.Context(), actor, listingID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, sales.SaleResponse{
		ID:            sale.ID,
		ListingID:     sale.ListingID,
		BuyerID:       sale.BuyerID,
		SellerID:      sale.SellerID,
		Price:         sale.Price,
		Status:        sale.Status,
		PaymentMethod: sale.PaymentMethod,
		PaymentStatus: sale.PaymentStatus,
		CreatedAt:     sale.CreatedAt,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "listing")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "operation not permitted")
	case errors.Is(err, core.ErrUnauthorized):
		core.JSONError(w, core.UnauthorizedError("authentication required"))
	case errors.Is(err, core.ErrConflict):
		core.Conflict(w, "listing is no longer available")
	default:
		core.InternalServerError(w, err)
	}
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}

func parseFloatQuery(r *http.Request, key string) *float64 {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}

	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil
	}

	return &parsed
}
