// estateadmin | 2026
// handler.go

package listing

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mseddi/estateadmin/internal/core"
	"github.com/mseddi/estateadmin/internal/user"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, staffOnly func(http.Handler) http.Handler,
) {
	r.Route("/listings", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListListings)
		r.Post("/", h.CreateListing)
		r.Get("/{listingID}", h.GetListing)
		r.Put("/{listingID}", h.UpdateListing)
		r.Delete("/{listingID}", h.DeleteListing)
		r.Post("/{listingID}/relist", h.RelistListing)

		r.Group(func(r chi.Router) {
			r.Use(staffOnly)

			r.Put("/{listingID}/status", h.SetStatus)
			r.Post("/{listingID}/publish", h.TogglePublish)
		})
	})
}

func (h *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	actor := user.ActorFromContext(r.Context())

	var req CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	l, images, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, ToListingResponse(l, images))
}

func (h *Handler) GetListing(w http.ResponseWriter, r *http.Request) {
	actor := user.ActorFromContext(r.Context())
	listingID := chi.URLParam(r, "listingID")

	l, images, err := h.service.Get(r.Context(), actor, listingID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToListingResponse(l, images))
}

func (h *Handler) ListListings(w http.ResponseWriter, r *http.Request) {
	actor := user.ActorFromContext(r.Context())
	params := listParamsFromQuery(r)

	listings, total, err := h.service.List(r.Context(), actor, params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	responses := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		responses = append(responses, ToListingResponse(&listings[i], nil))
	}

	params.Normalize()
	core.Paginated(w, responses, params.Page, params.PageSize, total)
}

func (h *Handler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	actor := user.ActorFromContext(r.Context())
	listingID := chi.URLParam(r, "listingID")

	var req UpdateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	l, images, err := h.service.Update(r.Context(), actor, listingID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToListingResponse(l, images))
}

func (h *Handler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	actor := user.ActorFromContext(r.Context())
	listingID := chi.URLParam(r, "listingID")

	if err := h.service.Delete(r.Context(), actor, listingID); err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) RelistListing(w http.ResponseWriter, r *http.Request) {
	actor := user.ActorFromContext(r.Context())
	listingID := chi.URLParam(r, "listingID")

	l, err := h.service.Relist(r.Context(), actor, listingID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToListingResponse(l, nil))
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	actor := user.ActorFromContext(r.Context())
	listingID := chi.URLParam(r, "listingID")

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	l, err := h.service.SetStatus(r.Context(), actor, listingID, req.Status)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToListingResponse(l, nil))
}

func (h *Handler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	actor := user.ActorFromContext(r.Context())
	listingID := chi.URLParam(r, "listingID")

	l, err := h.service.TogglePublish(r.Context(), actor, listingID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToListingResponse(l, nil))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "listing")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "operation not permitted")
	case errors.Is(err, core.ErrUnauthorized):
		core.JSONError(w, core.UnauthorizedError("authentication required"))
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	case errors.Is(err, core.ErrConflict):
		core.Conflict(w, "listing was modified concurrently, refresh and retry")
	default:
		core.InternalServerError(w, err)
	}
}

func listParamsFromQuery(r *http.Request) ListListingsParams {
	q := r.URL.Query()

	return ListListingsParams{
		Page:            parseIntQuery(r, "page", 1),
		PageSize:        parseIntQuery(r, "page_size", 20),
		OwnerID:         q.Get("owner_id"),
		Search:          q.Get("search"),
		MinPrice:        parseFloatQuery(r, "min_price"),
		MaxPrice:        parseFloatQuery(r, "max_price"),
		MinSurface:      parseFloatQuery(r, "min_surface"),
		Status:          q.Get("status"),
		TransactionType: q.Get("transaction_type"),
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
