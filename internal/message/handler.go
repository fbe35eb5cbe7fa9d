// estateadmin | 2026
// handler.go

package message

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

// RegisterRoutes mounts the public contact form and the staff inbox.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, staffOnly func(http.Handler) http.Handler,
) {
	// The contact form is open to anonymous visitors.
	r.Post("/messages", h.CreateMessage)

	r.Route("/admin/messages", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(staffOnly)

		r.Get("/", h.ListMessages)
		r.Get("/unread-count", h.UnreadCount)
		r.Get("/{messageID}", h.GetMessage)
		r.Post("/{messageID}/treat", h.MarkTreated)
		r.Delete("/{messageID}", h.DeleteMessage)
	})
}

func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var req CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	m, err := h.service.Create(r.Context(), req)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToMessageResponse(m))
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	actor := user.ActorFromContext(r.Context())

	params := ListMessagesParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Status:   r.URL.Query().Get("status"),
	}

	messages, total, err := h.service.List(r.Context(), actor, params)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrForbidden):
			core.Forbidden(w, "staff access required")
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "invalid status filter")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	params.Normalize()
	core.Paginated(
		w,
		ToMessageResponseList(messages),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetMessage(w http.ResponseWriter, r *http.Request) {
	actor := user.ActorFromContext(r.Context())
	messageID := chi.URLParam(r, "messageID")

	m, err := h.service.Get(r.Context(), actor, messageID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToMessageResponse(m))
}

func (h *Handler) MarkTreated(w http.ResponseWriter, r *http.Request) {
	actor := user.ActorFromContext(r.Context())
	messageID := chi.URLParam(r, "messageID")

	m, err := h.service.MarkTreated(r.Context(), actor, messageID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToMessageResponse(m))
}

func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	actor := user.ActorFromContext(r.Context())
	messageID := chi.URLParam(r, "messageID")

	if err := h.service.Delete(r.Context(), actor, messageID); err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actor := user.ActorFromContext(r.Context())

	count, err := h.service.UnreadCount(r.Context(), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, map[string]int{"count": count})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "message")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "staff access required")
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
