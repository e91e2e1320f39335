package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ShakenTheCoder/REVIfinal/internal/aggregate"
	"github.com/ShakenTheCoder/REVIfinal/internal/analysis"
	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
	"github.com/ShakenTheCoder/REVIfinal/internal/event"
	"github.com/ShakenTheCoder/REVIfinal/internal/repository"
	apperrors "github.com/ShakenTheCoder/REVIfinal/pkg/errors"
	pkgvalidator "github.com/ShakenTheCoder/REVIfinal/pkg/validator"
)

// ratingRetryAttempts bounds the recompute loop when a concurrent writer
// keeps winning the version race.
const ratingRetryAttempts = 3

// submissionConfirmation is the only message a submitter ever sees. The
// computed category stays internal.
const submissionConfirmation = "Thank you! Your review has been received and is being processed."

// ReviewService implements the review intake pipeline: feature extraction,
// value scoring, classification, rating aggregation, and ticket routing.
type ReviewService struct {
	reviews  repository.ReviewRepository
	ratings  repository.RatingRepository
	tickets  repository.TicketRepository
	actions  repository.AdminActionRepository
	cache    repository.InsightCache
	producer *event.Producer
	keyed    *aggregate.KeyedMutex
	logger   *slog.Logger

	// includeShadowInRating controls whether shadow reviews contribute to
	// the weighted rating.
	includeShadowInRating bool
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	ratings repository.RatingRepository,
	tickets repository.TicketRepository,
	actions repository.AdminActionRepository,
	cache repository.InsightCache,
	producer *event.Producer,
	includeShadowInRating bool,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:               reviews,
		ratings:               ratings,
		tickets:               tickets,
		actions:               actions,
		cache:                 cache,
		producer:              producer,
		keyed:                 aggregate.NewKeyedMutex(),
		logger:                logger,
		includeShadowInRating: includeShadowInRating,
	}
}

// SubmitReviewInput holds the parameters of a review submission.
type SubmitReviewInput struct {
	ProductID          string `json:"product_id" validate:"required,uuid"`
	ReviewerName       string `json:"reviewer_name" validate:"omitempty,max=100"`
	ReviewerEmail      string `json:"reviewer_email" validate:"omitempty,email"`
	Rating             int    `json:"rating" validate:"required,min=1,max=5"`
	ReviewText         string `json:"review_text" validate:"required,max=5000"`
	IsVerifiedPurchase bool   `json:"is_verified_purchase"`
}

// SubmitReviewResult is the confirmation returned to the submitter.
type SubmitReviewResult struct {
	ReviewID string `json:"review_id"`
	Message  string `json:"message"`
}

// Submit runs the full intake pipeline for one review. Validation failures
// reject the submission before anything is persisted; once the review row is
// written, downstream steps (rating recompute, ticket routing, events, cache
// invalidation) degrade to logs rather than failing the submission.
func (s *ReviewService) Submit(ctx context.Context, input SubmitReviewInput) (*SubmitReviewResult, error) {
	if err := pkgvalidator.Validate(input); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	features := analysis.Extract(input.ReviewText, input.Rating)

	dupCount, err := s.reviews.CountByFingerprint(ctx, input.ProductID, features.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("check duplicate fingerprint: %w", err)
	}

	score := analysis.Score(features, input.IsVerifiedPurchase)

	verdict := analysis.Classify(analysis.ClassifyInput{
		Text:                input.ReviewText,
		Rating:              input.Rating,
		ValueScore:          score,
		Features:            features,
		DuplicateSubmission: dupCount > 0,
	})

	now := time.Now().UTC()
	review := &domain.Review{
		ID:                 uuid.New().String(),
		ProductID:          input.ProductID,
		ReviewerName:       input.ReviewerName,
		ReviewerEmail:      input.ReviewerEmail,
		Rating:             input.Rating,
		ReviewText:         input.ReviewText,
		IsVerifiedPurchase: input.IsVerifiedPurchase,
		SubmittedAt:        now,
		ValueScore:         score,
		Confidence:         verdict.Confidence,
		Reason:             verdict.Reason,
		Tags:               verdict.Tags,
		Severity:           verdict.Severity,
		Fingerprint:        features.Fingerprint,
		UpdatedAt:          now,
	}
	review.SetCategory(verdict.Category)
	review.AutomaticResponse = analysis.AutomaticResponse(verdict.Category, input.Rating, input.ReviewerEmail != "")

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("persist review: %w", err)
	}

	reviewsClassifiedTotal.WithLabelValues(string(verdict.Category)).Inc()

	s.logger.InfoContext(ctx, "review classified",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
		slog.String("category", string(review.Category)),
		slog.Float64("value_score", review.ValueScore),
	)

	if review.Category.Contributing() {
		s.recomputeRating(ctx, review.ProductID)
	}
	s.invalidateInsights(ctx, review.ProductID)

	if review.Category == domain.CategorySupport {
		s.routeTicket(ctx, review, features)
	}

	if err := s.producer.PublishReviewClassified(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.classified event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	return &SubmitReviewResult{
		ReviewID: review.ID,
		Message:  submissionConfirmation,
	}, nil
}

// routeTicket opens a support ticket for a complaint review. The review row
// is already durable at this point, so a routing failure is logged instead
// of failing the submission.
func (s *ReviewService) routeTicket(ctx context.Context, review *domain.Review, features analysis.Features) {
	now := time.Now().UTC()
	ticket := &domain.SupportTicket{
		ID:               uuid.New().String(),
		ReviewID:         review.ID,
		CustomerEmail:    review.ReviewerEmail,
		IssueDescription: review.ReviewText,
		Priority:         analysis.TicketPriorityFor(features),
		Status:           domain.TicketStatusOpen,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		s.logger.ErrorContext(ctx, "failed to create support ticket",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	ticketsCreatedTotal.WithLabelValues(string(ticket.Priority)).Inc()

	s.logger.InfoContext(ctx, "support ticket created",
		slog.String("ticket_id", ticket.ID),
		slog.String("review_id", review.ID),
		slog.String("priority", string(ticket.Priority)),
	)

	if err := s.producer.PublishTicketCreated(ctx, ticket); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish ticket.created event",
			slog.String("ticket_id", ticket.ID),
			slog.String("error", err.Error()),
		)
	}
}

// recomputeRating recalculates the product's rating summary from the full
// contributing set. Recomputes for one product serialize on a keyed mutex;
// the optimistic version check on the write catches races with other
// instances, resolved by retrying against a fresh snapshot.
func (s *ReviewService) recomputeRating(ctx context.Context, productID string) {
	s.keyed.Lock(productID)
	defer s.keyed.Unlock(productID)

	var lastErr error
	for attempt := 0; attempt < ratingRetryAttempts; attempt++ {
		expectedVersion := 0
		if current, err := s.ratings.Get(ctx, productID); err == nil {
			expectedVersion = current.Version
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			lastErr = err
			break
		}

		contributing, err := s.reviews.ListContributing(ctx, productID)
		if err != nil {
			lastErr = err
			break
		}

		summary := aggregate.Compute(productID, contributing, s.includeShadowInRating, time.Now().UTC())

		err = s.ratings.Upsert(ctx, &summary, expectedVersion)
		if err == nil {
			return
		}
		if !errors.Is(err, apperrors.ErrAggregationConflict) {
			lastErr = err
			break
		}
		ratingRecomputeConflicts.Inc()
		lastErr = err
	}

	s.logger.ErrorContext(ctx, "rating recompute failed",
		slog.String("product_id", productID),
		slog.String("error", lastErr.Error()),
	)
}

func (s *ReviewService) invalidateInsights(ctx context.Context, productID string) {
	if err := s.cache.Invalidate(ctx, productID); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate insight cache",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
}

// ListByTab returns the public reviews of one product tab.
func (s *ReviewService) ListByTab(ctx context.Context, filter repository.TabFilter) ([]domain.Review, int, error) {
	if !filter.Tab.IsValid() {
		return nil, 0, apperrors.InvalidInput("tab must be one of positive, negative, shadow")
	}
	return s.reviews.ListByTab(ctx, filter)
}

// GetRating returns the current rating summary of a product. A product with
// no contributing reviews yet reads as an empty summary, not an error.
func (s *ReviewService) GetRating(ctx context.Context, productID string) (*domain.RatingSummary, error) {
	summary, err := s.ratings.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.RatingSummary{ProductID: productID, UpdatedAt: time.Now().UTC()}, nil
		}
		return nil, err
	}
	return summary, nil
}

// MarkHelpful increments the helpful vote count of a review.
func (s *ReviewService) MarkHelpful(ctx context.Context, reviewID string) (int, error) {
	return s.reviews.IncrementHelpful(ctx, reviewID)
}

// List returns reviews for the admin surface.
func (s *ReviewService) List(ctx context.Context, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	if filter.Category != nil && !filter.Category.IsValid() {
		return nil, 0, apperrors.InvalidInput("unknown review category")
	}
	return s.reviews.List(ctx, filter)
}

// GetByID returns one review with its full analysis fields.
func (s *ReviewService) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	return s.reviews.GetByID(ctx, id)
}

// GetDetail returns a review together with the support ticket it raised, if
// any. The ticket reference survives later re-categorization of the review.
func (s *ReviewService) GetDetail(ctx context.Context, id string) (*domain.Review, *domain.SupportTicket, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	ticket, err := s.tickets.GetByReviewID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return review, nil, nil
		}
		return nil, nil, err
	}

	return review, ticket, nil
}

// OverrideInput holds an administrator reclassification request. At least
// one of NewCategory and NewScore must be set.
type OverrideInput struct {
	ReviewID    string
	AdminUser   string
	NewCategory *domain.Category
	NewScore    *float64
	Reason      string
}

// Override reclassifies a review, bypassing the rule list. The affected
// product's rating is recomputed before returning so subsequent reads see
// the override. An override away from support never closes a routed ticket;
// support staff resolve it on their own schedule.
func (s *ReviewService) Override(ctx context.Context, input OverrideInput) (*domain.Review, error) {
	if input.AdminUser == "" {
		return nil, apperrors.InvalidInput("admin_user is required")
	}
	if input.NewCategory == nil && input.NewScore == nil {
		return nil, apperrors.InvalidInput("override requires a new category or a new value score")
	}
	if input.NewCategory != nil && !input.NewCategory.IsValid() {
		return nil, apperrors.InvalidInput("unknown review category")
	}
	if input.NewScore != nil && (*input.NewScore < 0 || *input.NewScore > 100) {
		return nil, apperrors.InvalidInput("value score must be between 0 and 100")
	}

	review, err := s.reviews.GetByID(ctx, input.ReviewID)
	if err != nil {
		return nil, err
	}

	oldCategory := review.Category
	oldScore := review.ValueScore

	if input.NewCategory != nil {
		review.SetCategory(*input.NewCategory)
		review.AutomaticResponse = analysis.AutomaticResponse(review.Category, review.Rating, review.ReviewerEmail != "")
	}
	if input.NewScore != nil {
		review.ValueScore = *input.NewScore
	}
	review.Reason = overrideReason(input.AdminUser, input.Reason)
	review.UpdatedAt = time.Now().UTC()

	if err := s.reviews.UpdateClassification(ctx, review); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "review overridden",
		slog.String("review_id", review.ID),
		slog.String("admin_user", input.AdminUser),
		slog.String("old_category", string(oldCategory)),
		slog.String("new_category", string(review.Category)),
	)

	s.recomputeRating(ctx, review.ProductID)
	s.invalidateInsights(ctx, review.ProductID)

	s.audit(ctx, &domain.AdminAction{
		ID:          uuid.New().String(),
		AdminUser:   input.AdminUser,
		ActionType:  "override_review",
		TargetID:    review.ID,
		TargetType:  "review",
		Reason:      input.Reason,
		OldValue:    fmt.Sprintf("category=%s score=%.2f", oldCategory, oldScore),
		NewValue:    fmt.Sprintf("category=%s score=%.2f", review.Category, review.ValueScore),
		PerformedAt: time.Now().UTC(),
	})

	if err := s.producer.PublishReviewOverridden(ctx, event.ReviewOverriddenData{
		ReviewID:    review.ID,
		ProductID:   review.ProductID,
		AdminUser:   input.AdminUser,
		OldCategory: string(oldCategory),
		NewCategory: string(review.Category),
		OldScore:    oldScore,
		NewScore:    review.ValueScore,
		Reason:      input.Reason,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.overridden event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	return review, nil
}

func overrideReason(adminUser, reason string) string {
	if reason == "" {
		return fmt.Sprintf("manual override by %s", adminUser)
	}
	return fmt.Sprintf("manual override by %s: %s", adminUser, reason)
}

func (s *ReviewService) audit(ctx context.Context, action *domain.AdminAction) {
	if err := s.actions.Create(ctx, action); err != nil {
		s.logger.ErrorContext(ctx, "failed to record admin action",
			slog.String("action_type", action.ActionType),
			slog.String("target_id", action.TargetID),
			slog.String("error", err.Error()),
		)
	}
}

// ListAdminActions returns the audit trail, newest first.
func (s *ReviewService) ListAdminActions(ctx context.Context, page, perPage int) ([]domain.AdminAction, int, error) {
	return s.actions.List(ctx, page, perPage)
}
