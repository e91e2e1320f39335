package repository

import (
	"context"
	"time"

	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
)

// ReviewFilter defines filter criteria for admin review listings.
type ReviewFilter struct {
	ProductID *string
	Category  *domain.Category
	Page      int
	PerPage   int
}

// TabFilter selects the public review listing of one product tab.
type TabFilter struct {
	ProductID     string
	Tab           domain.Tab
	IncludeShadow bool
	Page          int
	PerPage       int
}

// ReviewRepository defines review persistence operations.
type ReviewRepository interface {
	// Create inserts a new review with its computed analysis fields.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// UpdateClassification persists an override of category, score, and
	// automatic response.
	UpdateClassification(ctx context.Context, review *domain.Review) error

	// ListByTab returns the public reviews of one product tab together with
	// the total count, ordered by value score descending.
	ListByTab(ctx context.Context, filter TabFilter) ([]domain.Review, int, error)

	// List returns reviews matching the admin filter with the total count,
	// newest first.
	List(ctx context.Context, filter ReviewFilter) ([]domain.Review, int, error)

	// ListContributing returns every non-rejected review of a product, for
	// rating recomputation.
	ListContributing(ctx context.Context, productID string) ([]domain.Review, error)

	// CountByFingerprint returns how many reviews of the product share the
	// given text fingerprint.
	CountByFingerprint(ctx context.Context, productID, fingerprint string) (int, error)

	// IncrementHelpful adds one helpful vote and returns the new count.
	IncrementHelpful(ctx context.Context, id string) (int, error)
}

// TicketFilter defines filter criteria for listing support tickets.
type TicketFilter struct {
	Status  *domain.TicketStatus
	Page    int
	PerPage int
}

// TicketRepository defines support ticket persistence operations. Status
// transitions are conditional updates so concurrent transitions on one ticket
// serialize at the row level.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.SupportTicket) error
	GetByID(ctx context.Context, id string) (*domain.SupportTicket, error)
	GetByReviewID(ctx context.Context, reviewID string) (*domain.SupportTicket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.SupportTicket, int, error)

	// UpdateStatus applies a transition only when the ticket is currently in
	// one of the allowed states. Returns the updated ticket, or
	// ErrInvalidState when the precondition fails.
	UpdateStatus(ctx context.Context, id string, to domain.TicketStatus, assignee string, resolvedAt *time.Time, allowedFrom []domain.TicketStatus) (*domain.SupportTicket, error)
}

// RatingRepository defines rating summary persistence. Writes are guarded by
// an optimistic version check; a failed check reports an aggregation conflict
// so the caller retries with a fresh snapshot.
type RatingRepository interface {
	Get(ctx context.Context, productID string) (*domain.RatingSummary, error)

	// Upsert writes the summary when the stored version still equals
	// expectedVersion (0 for a new product). Returns ErrAggregationConflict
	// on a version mismatch.
	Upsert(ctx context.Context, summary *domain.RatingSummary, expectedVersion int) error
}

// AdminActionRepository records the administrator audit trail.
type AdminActionRepository interface {
	Create(ctx context.Context, action *domain.AdminAction) error
	List(ctx context.Context, page, perPage int) ([]domain.AdminAction, int, error)
}

// InsightCache caches computed insights per (product, tab). A cache is an
// optimization only; misses and errors fall through to recomputation.
type InsightCache interface {
	Get(ctx context.Context, productID string, tab domain.Tab) (*domain.Insight, error)
	Set(ctx context.Context, productID string, tab domain.Tab, insight *domain.Insight) error
	Invalidate(ctx context.Context, productID string) error
}
