package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
	"github.com/ShakenTheCoder/REVIfinal/internal/repository"
	"github.com/ShakenTheCoder/REVIfinal/internal/service"
	"github.com/ShakenTheCoder/REVIfinal/pkg/httputil"
	"github.com/ShakenTheCoder/REVIfinal/pkg/pagination"
	"github.com/ShakenTheCoder/REVIfinal/pkg/validator"
)

// ReviewHandler handles the public review endpoints.
type ReviewHandler struct {
	reviews  *service.ReviewService
	insights *service.InsightService
	logger   *slog.Logger
}

// NewReviewHandler creates a new public review HTTP handler.
func NewReviewHandler(reviews *service.ReviewService, insights *service.InsightService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews:  reviews,
		insights: insights,
		logger:   logger,
	}
}

// --- Request DTOs ---

// SubmitReviewRequest is the JSON request body for a review submission.
type SubmitReviewRequest struct {
	ProductID          string `json:"product_id" validate:"required,uuid"`
	ReviewerName       string `json:"reviewer_name" validate:"omitempty,max=100"`
	ReviewerEmail      string `json:"reviewer_email" validate:"omitempty,email"`
	Rating             int    `json:"rating" validate:"required,min=1,max=5"`
	ReviewText         string `json:"review_text" validate:"required,max=5000"`
	IsVerifiedPurchase bool   `json:"is_verified_purchase"`
}

// TabReviewsResponse is the payload of a product tab read. Insight is only
// present on the positive and negative tabs.
type TabReviewsResponse struct {
	Reviews pagination.Result[publicReview] `json:"reviews"`
	Insight *domain.Insight                 `json:"insight,omitempty"`
}

// publicReview is the public projection of a review. Analysis internals and
// the reviewer's email stay out of public reads.
type publicReview struct {
	ID                 string   `json:"id"`
	ProductID          string   `json:"product_id"`
	ReviewerName       string   `json:"reviewer_name,omitempty"`
	Rating             int      `json:"rating"`
	ReviewText         string   `json:"review_text"`
	IsVerifiedPurchase bool     `json:"is_verified_purchase"`
	SubmittedAt        string   `json:"submitted_at"`
	IsShadow           bool     `json:"is_shadow"`
	Tags               []string `json:"tags,omitempty"`
	AutomaticResponse  string   `json:"automatic_response,omitempty"`
	HelpfulCount       int      `json:"helpful_count"`
}

func toPublicReview(rv domain.Review) publicReview {
	return publicReview{
		ID:                 rv.ID,
		ProductID:          rv.ProductID,
		ReviewerName:       rv.ReviewerName,
		Rating:             rv.Rating,
		ReviewText:         rv.ReviewText,
		IsVerifiedPurchase: rv.IsVerifiedPurchase,
		SubmittedAt:        rv.SubmittedAt.Format(time.RFC3339),
		IsShadow:           rv.IsShadow,
		Tags:               rv.Tags,
		AutomaticResponse:  rv.AutomaticResponse,
		HelpfulCount:       rv.HelpfulCount,
	}
}

// --- Handlers ---

// SubmitReview handles POST /api/v1/reviews
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req SubmitReviewRequest
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

	result, err := h.reviews.Submit(r.Context(), service.SubmitReviewInput{
		ProductID:          req.ProductID,
		ReviewerName:       req.ReviewerName,
		ReviewerEmail:      req.ReviewerEmail,
		Rating:             req.Rating,
		ReviewText:         req.ReviewText,
		IsVerifiedPurchase: req.IsVerifiedPurchase,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: result})
}

// ListProductReviews handles GET /api/v1/products/{productId}/reviews
func (h *ReviewHandler) ListProductReviews(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	tab := domain.Tab(r.URL.Query().Get("tab"))
	if tab == "" {
		tab = domain.TabPositive
	}
	if !tab.IsValid() {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "tab must be one of positive, negative, shadow"},
		})
		return
	}

	params := pagination.FromRequest(r)
	includeShadow := r.URL.Query().Get("include_shadow") == "true"

	reviews, total, err := h.reviews.ListByTab(r.Context(), repository.TabFilter{
		ProductID:     productID.String(),
		Tab:           tab,
		IncludeShadow: includeShadow,
		Page:          params.Page,
		PerPage:       params.PerPage,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	public := make([]publicReview, len(reviews))
	for i, rv := range reviews {
		public[i] = toPublicReview(rv)
	}

	resp := TabReviewsResponse{
		Reviews: pagination.NewResult(public, total, params),
	}

	// Insight is best-effort reading material; a failure degrades to the
	// review list alone.
	if insight, err := h.insights.Get(r.Context(), productID.String(), tab); err == nil {
		resp.Insight = insight
	} else {
		h.logger.WarnContext(r.Context(), "insight computation failed",
			slog.String("product_id", productID.String()),
			slog.String("tab", string(tab)),
			slog.String("error", err.Error()),
		)
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: resp})
}

// GetProductRating handles GET /api/v1/products/{productId}/rating
func (h *ReviewHandler) GetProductRating(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	summary, err := h.reviews.GetRating(r.Context(), productID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: summary})
}

// MarkHelpful handles POST /api/v1/reviews/{reviewId}/helpful
func (h *ReviewHandler) MarkHelpful(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := httputil.ParseUUID(w, chi.URLParam(r, "reviewId"))
	if !ok {
		return
	}

	count, err := h.reviews.MarkHelpful(r.Context(), reviewID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]int{"helpful_count": count}})
}
