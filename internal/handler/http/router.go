package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ShakenTheCoder/REVIfinal/internal/service"
	"github.com/ShakenTheCoder/REVIfinal/pkg/health"
	"github.com/ShakenTheCoder/REVIfinal/pkg/middleware"
)

// NewRouter creates a chi router with all review pipeline routes registered.
func NewRouter(
	reviewService *service.ReviewService,
	insightService *service.InsightService,
	ticketService *service.TicketService,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("revi"))
	r.Use(middleware.Tracing("revi"))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	reviewHandler := NewReviewHandler(reviewService, insightService, logger)
	adminHandler := NewAdminHandler(reviewService, logger)
	ticketHandler := NewTicketHandler(ticketService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public surface
		r.Post("/reviews", reviewHandler.SubmitReview)
		r.Post("/reviews/{reviewId}/helpful", reviewHandler.MarkHelpful)
		r.Get("/products/{productId}/reviews", reviewHandler.ListProductReviews)
		r.Get("/products/{productId}/rating", reviewHandler.GetProductRating)

		// Moderation surface
		r.Route("/admin", func(r chi.Router) {
			r.Get("/reviews", adminHandler.ListReviews)
			r.Get("/reviews/shadow", adminHandler.ListShadowReviews)
			r.Get("/reviews/rejected", adminHandler.ListRejectedReviews)
			r.Get("/reviews/{reviewId}", adminHandler.GetReview)
			r.Post("/reviews/{reviewId}/override", adminHandler.OverrideReview)
			r.Get("/actions", adminHandler.ListAdminActions)

			r.Get("/tickets", ticketHandler.ListTickets)
			r.Get("/tickets/{ticketId}", ticketHandler.GetTicket)
			r.Post("/tickets/{ticketId}/assign", ticketHandler.AssignTicket)
			r.Post("/tickets/{ticketId}/resolve", ticketHandler.ResolveTicket)
			r.Post("/tickets/{ticketId}/close", ticketHandler.CloseTicket)
		})
	})

	return r
}
