// estateadmin | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mseddi/estateadmin/internal/core"
	"github.com/mseddi/estateadmin/internal/middleware"
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
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/me", h.GetMe)
		r.Post("/me/sync", h.SyncMe)
	})
}

// RegisterAdminRoutes registers staff user-directory endpoints. Role
// assignment and deletion are superadmin-only.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, staffOnly, superAdminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(staffOnly)

		r.Get("/", h.ListUsers)
		r.Get("/{userID}", h.GetUser)

		r.Group(func(r chi.Router) {
			r.Use(superAdminOnly)

			r.Put("/{userID}/role", h.AssignRole)
			r.Delete("/{userID}", h.DeleteUser)
		})
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	u, err := h.service.GetMe(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

// SyncMe provisions the local account from the caller's verified token.
func (h *Handler) SyncMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())

	u, err := h.service.SyncMe(r.Context(), claims)
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			core.JSONError(w, core.UnauthorizedError("authentication required"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
		Role:     r.URL.Query().Get("role"),
	}

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToUserResponseList(users),
		params.Page,
		params.PageSize,
		total,
	)
}

// GetUser returns a user with a summary of the listings they own.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	u, stats, err := h.service.GetUserDetail(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, UserDetailResponse{
		UserResponse: ToUserResponse(u),
		Listings:     *stats,
	})
}

func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r.Context())
	targetID := chi.URLParam(r, "userID")

	var req AssignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	u, err := h.service.AssignRole(r.Context(), actor, targetID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "user")
		case errors.Is(err, core.ErrForbidden):
			core.Forbidden(w, "role change not permitted")
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "invalid role")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r.Context())
	targetID := chi.URLParam(r, "userID")

	if err := h.service.DeleteUser(r.Context(), actor, targetID); err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "user")
		case errors.Is(err, core.ErrForbidden):
			core.Forbidden(w, "deletion not permitted")
		case errors.Is(err, core.ErrConflict):
			core.Conflict(w, "user is referenced by sales records")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.NoContent(w)
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
