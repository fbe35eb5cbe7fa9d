// estateadmin | 2026
// handler.go

package audit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mseddi/estateadmin/internal/core"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, staffOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/audit", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(staffOnly)

		r.Get("/", h.ListEntries)
	})
}

type EntryResponse struct {
	ID         int64     `json:"id"`
	UserID     *string   `json:"user_id,omitempty"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   *string   `json:"entity_id,omitempty"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `json:"created_at"`
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		Page:       parseIntQuery(r, "page", 1),
		PageSize:   parseIntQuery(r, "page_size", 50),
		Action:     r.URL.Query().Get("action"),
		EntityType: r.URL.Query().Get("entity_type"),
		UserID:     r.URL.Query().Get("user_id"),
	}

	entries, total, err := h.repo.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	responses := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, EntryResponse{
			ID:         e.ID,
			UserID:     e.UserID,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Details:    e.Details,
			CreatedAt:  e.CreatedAt,
		})
	}

	params.Normalize()
	core.Paginated(w, responses, params.Page, params.PageSize, total)
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
