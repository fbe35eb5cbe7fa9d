// estateadmin | 2026
// handler.go

package sales

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

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
	authenticator, staffOnly, superAdminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/sales", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(staffOnly)

		r.Get("/", h.ListSales)
		r.Get("/{saleID}", h.GetSale)
		r.Post("/{saleID}/payments", h.RecordPayment)

		r.Group(func(r chi.Router) {
			r.Use(superAdminOnly)

			r.Post("/backfill", h.Backfill)
		})
	})
}

func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	actor := user.ActorFromContext(r.Context())
	params := ListSalesParams{
		Page:          parseIntQuery(r, "page", 1),
		PageSize:      parseIntQuery(r, "page_size", 20),
		BuyerID:       r.URL.Query().Get("buyer_id"),
		SellerID:      r.URL.Query().Get("seller_id"),
		PaymentStatus: r.URL.Query().Get("payment_status"),
		From:          parseTimeQuery(r, "from"),
		To:            parseTimeQuery(r, "to"),
	}

	rows, total, err := h.service.ListSales(r.Context(), actor, params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	responses := make([]SaleResponse, 0, len(rows))
	for i := range rows {
		responses = append(responses, ToSaleResponse(&rows[i]))
	}

	params.Normalize()
	core.Paginated(w, responses, params.Page, params.PageSize, total)
}

func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	actor := user.ActorFromContext(r.Context())
	saleID := chi.URLParam(r, "saleID")

	row, payments, err := h.service.GetSale(r.Context(), actor, saleID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	paymentResponses := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		paymentResponses = append(paymentResponses, ToPaymentResponse(&payments[i]))
	}

	core.OK(w, SaleDetailResponse{
		SaleResponse: ToSaleResponse(row),
		Payments:     paymentResponses,
	})
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	actor := user.ActorFromContext(r.Context())
	saleID := chi.URLParam(r, "saleID")

	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	payment, err := h.service.RecordPayment(r.Context(), actor, saleID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, ToPaymentResponse(payment))
}

func (h *Handler) Backfill(w http.ResponseWriter, r *http.Request) {
	actor := user.ActorFromContext(r.Context())

	report, err := h.service.Backfill(r.Context(), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, report)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "sale")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "operation not permitted")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
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

func parseTimeQuery(r *http.Request, key string) *time.Time {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}

	parsed, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}

	return &parsed
}
