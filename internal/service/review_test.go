package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
	"github.com/ShakenTheCoder/REVIfinal/internal/repository"
	apperrors "github.com/ShakenTheCoder/REVIfinal/pkg/errors"
)

const testProductID = "3b7d2e10-55aa-4c0f-8d31-9a6e4f2c7d02"

type reviewServiceMocks struct {
	reviews *mockReviewRepository
	ratings *mockRatingRepository
	tickets *mockTicketRepository
	actions *mockAdminActionRepository
	cache   *mockInsightCache
}

func newReviewService(t *testing.T) (*ReviewService, *reviewServiceMocks) {
	t.Helper()
	m := &reviewServiceMocks{
		reviews: new(mockReviewRepository),
		ratings: new(mockRatingRepository),
		tickets: new(mockTicketRepository),
		actions: new(mockAdminActionRepository),
		cache:   new(mockInsightCache),
	}
	svc := NewReviewService(m.reviews, m.ratings, m.tickets, m.actions, m.cache,
		testProducer(), false, testLogger())
	return svc, m
}

// expectRecompute wires the mocks one rating recompute needs.
func expectRecompute(m *reviewServiceMocks, contributing []domain.Review) {
	m.ratings.On("Get", mock.Anything, testProductID).
		Return(nil, apperrors.NotFound("rating summary", testProductID)).Once()
	m.reviews.On("ListContributing", mock.Anything, testProductID).
		Return(contributing, nil).Once()
	m.ratings.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.RatingSummary"), 0).
		Return(nil).Once()
}

func TestReviewService_Submit_DetailedVerifiedReview(t *testing.T) {
	svc, m := newReviewService(t)
	ctx := context.Background()

	var created *domain.Review
	m.reviews.On("CountByFingerprint", ctx, testProductID, mock.AnythingOfType("string")).
		Return(0, nil)
	m.reviews.On("Create", ctx, mock.AnythingOfType("*domain.Review")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.Review)
		}).
		Return(nil)
	m.cache.On("Invalidate", mock.Anything, testProductID).Return(nil)
	expectRecompute(m, nil)

	result, err := svc.Submit(ctx, SubmitReviewInput{
		ProductID:          testProductID,
		ReviewerName:       "Derya",
		Rating:             5,
		ReviewText:         "Exceeded expectations, arrived early, packaging was excellent and matched the listed specs exactly",
		IsVerifiedPurchase: true,
	})
	require.NoError(t, err)

	// The submitter sees a confirmation only, never the computed category.
	assert.NotEmpty(t, result.ReviewID)
	assert.Equal(t, submissionConfirmation, result.Message)

	require.NotNil(t, created)
	assert.Equal(t, domain.CategoryPublicPositive, created.Category)
	assert.Greater(t, created.ValueScore, 70.0)
	assert.False(t, created.IsShadow)
	assert.NotEmpty(t, created.AutomaticResponse)

	m.reviews.AssertExpectations(t)
	m.ratings.AssertExpectations(t)
	m.tickets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewService_Submit_ValidationRejectsBeforePersistence(t *testing.T) {
	svc, m := newReviewService(t)

	cases := []SubmitReviewInput{
		{ProductID: testProductID, Rating: 5},                             // empty text
		{ProductID: testProductID, Rating: 0, ReviewText: "fine"},         // missing rating
		{ProductID: testProductID, Rating: 6, ReviewText: "fine"},         // out of range
		{ProductID: "not-a-uuid", Rating: 4, ReviewText: "fine"},          // bad product id
		{ProductID: testProductID, Rating: 4, ReviewText: "ok", ReviewerEmail: "not-an-email"},
	}

	for _, input := range cases {
		_, err := svc.Submit(context.Background(), input)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput), "input %+v", input)
	}

	m.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewService_Submit_LowQualityGoesToShadow(t *testing.T) {
	svc, m := newReviewService(t)
	ctx := context.Background()

	var created *domain.Review
	m.reviews.On("CountByFingerprint", ctx, testProductID, mock.AnythingOfType("string")).
		Return(0, nil)
	m.reviews.On("Create", ctx, mock.AnythingOfType("*domain.Review")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.Review)
		}).
		Return(nil)
	m.cache.On("Invalidate", mock.Anything, testProductID).Return(nil)
	// Shadow reviews still contribute to the weighted rating.
	expectRecompute(m, nil)

	_, err := svc.Submit(ctx, SubmitReviewInput{
		ProductID:  testProductID,
		Rating:     1,
		ReviewText: "worst ever",
	})
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, domain.CategoryShadow, created.Category)
	assert.True(t, created.IsShadow)
	assert.Less(t, created.ValueScore, 30.0)

	m.reviews.AssertExpectations(t)
}

func TestReviewService_Submit_DuplicateFingerprintRejected(t *testing.T) {
	svc, m := newReviewService(t)
	ctx := context.Background()

	var created *domain.Review
	m.reviews.On("CountByFingerprint", ctx, testProductID, mock.AnythingOfType("string")).
		Return(2, nil)
	m.reviews.On("Create", ctx, mock.AnythingOfType("*domain.Review")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.Review)
		}).
		Return(nil)
	m.cache.On("Invalidate", mock.Anything, testProductID).Return(nil)

	_, err := svc.Submit(ctx, SubmitReviewInput{
		ProductID:          testProductID,
		Rating:             5,
		ReviewText:         "Exceeded expectations, arrived early, packaging was excellent and matched the listed specs exactly",
		IsVerifiedPurchase: true,
	})
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, domain.CategoryRejected, created.Category)

	// Rejected reviews never touch the rating summary.
	m.ratings.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewService_Submit_ComplaintRoutesTicket(t *testing.T) {
	svc, m := newReviewService(t)
	ctx := context.Background()

	var created *domain.Review
	var ticket *domain.SupportTicket
	m.reviews.On("CountByFingerprint", ctx, testProductID, mock.AnythingOfType("string")).
		Return(0, nil)
	m.reviews.On("Create", ctx, mock.AnythingOfType("*domain.Review")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.Review)
		}).
		Return(nil)
	m.tickets.On("Create", ctx, mock.AnythingOfType("*domain.SupportTicket")).
		Run(func(args mock.Arguments) {
			ticket = args.Get(1).(*domain.SupportTicket)
		}).
		Return(nil)
	m.cache.On("Invalidate", mock.Anything, testProductID).Return(nil)
	expectRecompute(m, nil)

	_, err := svc.Submit(ctx, SubmitReviewInput{
		ProductID:     testProductID,
		ReviewerEmail: "musteri@example.com",
		Rating:        2,
		ReviewText:    "The unit caught fire after two days, unsafe, needs recall",
	})
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, domain.CategorySupport, created.Category)

	require.NotNil(t, ticket)
	assert.Equal(t, created.ID, ticket.ReviewID)
	assert.Equal(t, domain.PriorityHigh, ticket.Priority)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, "musteri@example.com", ticket.CustomerEmail)

	m.tickets.AssertExpectations(t)
}

func TestReviewService_Submit_RecomputeRetriesOnConflict(t *testing.T) {
	svc, m := newReviewService(t)
	ctx := context.Background()

	m.reviews.On("CountByFingerprint", ctx, testProductID, mock.AnythingOfType("string")).
		Return(0, nil)
	m.reviews.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)
	m.cache.On("Invalidate", mock.Anything, testProductID).Return(nil)

	// First write loses the version race; the retry reads a fresh snapshot.
	m.ratings.On("Get", mock.Anything, testProductID).
		Return(nil, apperrors.NotFound("rating summary", testProductID)).Once()
	m.reviews.On("ListContributing", mock.Anything, testProductID).
		Return([]domain.Review{}, nil).Once()
	m.ratings.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.RatingSummary"), 0).
		Return(apperrors.ErrAggregationConflict).Once()

	m.ratings.On("Get", mock.Anything, testProductID).
		Return(&domain.RatingSummary{ProductID: testProductID, Version: 1}, nil).Once()
	m.reviews.On("ListContributing", mock.Anything, testProductID).
		Return([]domain.Review{}, nil).Once()
	m.ratings.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.RatingSummary"), 1).
		Return(nil).Once()

	_, err := svc.Submit(ctx, SubmitReviewInput{
		ProductID:          testProductID,
		Rating:             5,
		ReviewText:         "Exceeded expectations, arrived early, packaging was excellent and matched the listed specs exactly",
		IsVerifiedPurchase: true,
	})
	require.NoError(t, err)

	m.ratings.AssertExpectations(t)
}

func TestReviewService_GetRating_UnknownProductReadsEmpty(t *testing.T) {
	svc, m := newReviewService(t)
	ctx := context.Background()

	m.ratings.On("Get", ctx, testProductID).
		Return(nil, apperrors.NotFound("rating summary", testProductID))

	summary, err := svc.GetRating(ctx, testProductID)
	require.NoError(t, err)
	assert.Equal(t, testProductID, summary.ProductID)
	assert.Zero(t, summary.TotalReviews)
	assert.Zero(t, summary.WeightedRating)
}

func TestReviewService_ListByTab_RejectsUnknownTab(t *testing.T) {
	svc, _ := newReviewService(t)

	_, _, err := svc.ListByTab(context.Background(), repository.TabFilter{
		ProductID: testProductID,
		Tab:       domain.Tab("bogus"),
	})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestReviewService_Override_RequiresChange(t *testing.T) {
	svc, _ := newReviewService(t)

	_, err := svc.Override(context.Background(), OverrideInput{
		ReviewID:  "rev-1",
		AdminUser: "admin",
	})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestReviewService_Override_UnknownReview(t *testing.T) {
	svc, m := newReviewService(t)
	ctx := context.Background()

	category := domain.CategoryPublicNegative
	m.reviews.On("GetByID", ctx, "missing").
		Return(nil, apperrors.NotFound("review", "missing"))

	_, err := svc.Override(ctx, OverrideInput{
		ReviewID:    "missing",
		AdminUser:   "admin",
		NewCategory: &category,
	})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestReviewService_Override_ReclassifiesAndAudits(t *testing.T) {
	svc, m := newReviewService(t)
	ctx := context.Background()

	existing := &domain.Review{
		ID:         "rev-1",
		ProductID:  testProductID,
		Rating:     4,
		ReviewText: "The battery drains faster than advertised.",
		ValueScore: 55.0,
	}
	existing.SetCategory(domain.CategoryPublicPositive)

	category := domain.CategoryPublicNegative
	var updated *domain.Review
	var audited *domain.AdminAction

	m.reviews.On("GetByID", ctx, "rev-1").Return(existing, nil)
	m.reviews.On("UpdateClassification", ctx, mock.AnythingOfType("*domain.Review")).
		Run(func(args mock.Arguments) {
			updated = args.Get(1).(*domain.Review)
		}).
		Return(nil)
	m.actions.On("Create", mock.Anything, mock.AnythingOfType("*domain.AdminAction")).
		Run(func(args mock.Arguments) {
			audited = args.Get(1).(*domain.AdminAction)
		}).
		Return(nil)
	m.cache.On("Invalidate", mock.Anything, testProductID).Return(nil)
	expectRecompute(m, []domain.Review{*existing})

	result, err := svc.Override(ctx, OverrideInput{
		ReviewID:    "rev-1",
		AdminUser:   "moderator-1",
		NewCategory: &category,
		Reason:      "tone does not match the rating",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.CategoryPublicNegative, result.Category)
	require.NotNil(t, updated)
	assert.Equal(t, domain.CategoryPublicNegative, updated.Category)

	require.NotNil(t, audited)
	assert.Equal(t, "override_review", audited.ActionType)
	assert.Equal(t, "moderator-1", audited.AdminUser)
	assert.Contains(t, audited.OldValue, "public_positive")
	assert.Contains(t, audited.NewValue, "public_negative")

	m.reviews.AssertExpectations(t)
	m.actions.AssertExpectations(t)
}

func TestReviewService_Override_Idempotent(t *testing.T) {
	svc, m := newReviewService(t)
	ctx := context.Background()

	review := &domain.Review{
		ID:         "rev-1",
		ProductID:  testProductID,
		Rating:     5,
		ReviewText: "Looks nice but the hinge broke in a week.",
		ValueScore: 60.0,
	}
	review.SetCategory(domain.CategoryPublicPositive)

	category := domain.CategoryPublicNegative
	var upserted []domain.RatingSummary

	m.reviews.On("GetByID", ctx, "rev-1").Return(review, nil)
	m.reviews.On("UpdateClassification", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)
	m.actions.On("Create", mock.Anything, mock.AnythingOfType("*domain.AdminAction")).Return(nil)
	m.cache.On("Invalidate", mock.Anything, testProductID).Return(nil)
	m.ratings.On("Get", mock.Anything, testProductID).
		Return(nil, apperrors.NotFound("rating summary", testProductID))
	m.reviews.On("ListContributing", mock.Anything, testProductID).
		Return([]domain.Review{*review}, nil)
	m.ratings.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.RatingSummary"), 0).
		Run(func(args mock.Arguments) {
			upserted = append(upserted, *args.Get(1).(*domain.RatingSummary))
		}).
		Return(nil)

	input := OverrideInput{ReviewID: "rev-1", AdminUser: "moderator-1", NewCategory: &category}

	_, err := svc.Override(ctx, input)
	require.NoError(t, err)
	_, err = svc.Override(ctx, input)
	require.NoError(t, err)

	// Applying the same override twice lands on the same summary.
	require.Len(t, upserted, 2)
	assert.Equal(t, upserted[0].WeightedRating, upserted[1].WeightedRating)
	assert.Equal(t, upserted[0].PositiveRatio, upserted[1].PositiveRatio)
	assert.Equal(t, upserted[0].TotalReviews, upserted[1].TotalReviews)
}

func TestReviewService_MarkHelpful(t *testing.T) {
	svc, m := newReviewService(t)
	ctx := context.Background()

	m.reviews.On("IncrementHelpful", ctx, "rev-1").Return(7, nil)

	count, err := svc.MarkHelpful(ctx, "rev-1")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}
