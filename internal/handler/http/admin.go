package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
	"github.com/ShakenTheCoder/REVIfinal/internal/repository"
	"github.com/ShakenTheCoder/REVIfinal/internal/service"
	"github.com/ShakenTheCoder/REVIfinal/pkg/httputil"
	"github.com/ShakenTheCoder/REVIfinal/pkg/pagination"
	"github.com/ShakenTheCoder/REVIfinal/pkg/validator"
)

// AdminHandler handles the moderation endpoints. Reviews are returned with
// their full analysis fields here, unlike the public projection.
type AdminHandler struct {
	reviews *service.ReviewService
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(reviews *service.ReviewService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		reviews: reviews,
		logger:  logger,
	}
}

// OverrideRequest is the JSON request body for a review override.
type OverrideRequest struct {
	AdminUser  string   `json:"admin_user" validate:"required,max=100"`
	Category   *string  `json:"category" validate:"omitempty,oneof=public_positive public_negative shadow rejected support"`
	ValueScore *float64 `json:"value_score" validate:"omitempty,gte=0,lte=100"`
	Reason     string   `json:"reason" validate:"omitempty,max=500"`
}

// ListReviews handles GET /api/v1/admin/reviews
func (h *AdminHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	h.listFiltered(w, r, nil)
}

// ListShadowReviews handles GET /api/v1/admin/reviews/shadow
func (h *AdminHandler) ListShadowReviews(w http.ResponseWriter, r *http.Request) {
	category := domain.CategoryShadow
	h.listFiltered(w, r, &category)
}

// ListRejectedReviews handles GET /api/v1/admin/reviews/rejected
func (h *AdminHandler) ListRejectedReviews(w http.ResponseWriter, r *http.Request) {
	category := domain.CategoryRejected
	h.listFiltered(w, r, &category)
}

func (h *AdminHandler) listFiltered(w http.ResponseWriter, r *http.Request, category *domain.Category) {
	params := pagination.FromRequest(r)
	filter := repository.ReviewFilter{
		Category: category,
		Page:     params.Page,
		PerPage:  params.PerPage,
	}

	if v := r.URL.Query().Get("product_id"); v != "" {
		filter.ProductID = &v
	}
	if category == nil {
		if v := r.URL.Query().Get("category"); v != "" {
			c := domain.Category(v)
			filter.Category = &c
		}
	}

	reviews, total, err := h.reviews.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: pagination.NewResult(reviews, total, params),
	})
}

// ReviewDetailResponse is the admin detail payload: the full review plus the
// support ticket it raised, when one exists.
type ReviewDetailResponse struct {
	Review *domain.Review        `json:"review"`
	Ticket *domain.SupportTicket `json:"ticket,omitempty"`
}

// GetReview handles GET /api/v1/admin/reviews/{reviewId}
func (h *AdminHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := httputil.ParseUUID(w, chi.URLParam(r, "reviewId"))
	if !ok {
		return
	}

	review, ticket, err := h.reviews.GetDetail(r.Context(), reviewID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: ReviewDetailResponse{Review: review, Ticket: ticket},
	})
}

// OverrideReview handles POST /api/v1/admin/reviews/{reviewId}/override
func (h *AdminHandler) OverrideReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := httputil.ParseUUID(w, chi.URLParam(r, "reviewId"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := service.OverrideInput{
		ReviewID:  reviewID.String(),
		AdminUser: req.AdminUser,
		NewScore:  req.ValueScore,
		Reason:    req.Reason,
	}
	if req.Category != nil {
		c := domain.Category(*req.Category)
		input.NewCategory = &c
	}

	review, err := h.reviews.Override(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// ListAdminActions handles GET /api/v1/admin/actions
func (h *AdminHandler) ListAdminActions(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	actions, total, err := h.reviews.ListAdminActions(r.Context(), params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: pagination.NewResult(actions, total, params),
	})
}
