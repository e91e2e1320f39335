package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
	"github.com/ShakenTheCoder/REVIfinal/internal/repository"
	"github.com/ShakenTheCoder/REVIfinal/pkg/database"
	apperrors "github.com/ShakenTheCoder/REVIfinal/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

const reviewColumns = `id, product_id, reviewer_name, reviewer_email, rating, review_text,
	       is_verified_purchase, submitted_at, value_score, category, is_shadow,
	       confidence, reason, tags, severity, automatic_response, fingerprint,
	       helpful_count, updated_at`

func scanReview(row pgx.Row) (*domain.Review, error) {
	var rv domain.Review
	err := row.Scan(
		&rv.ID,
		&rv.ProductID,
		&rv.ReviewerName,
		&rv.ReviewerEmail,
		&rv.Rating,
		&rv.ReviewText,
		&rv.IsVerifiedPurchase,
		&rv.SubmittedAt,
		&rv.ValueScore,
		&rv.Category,
		&rv.IsShadow,
		&rv.Confidence,
		&rv.Reason,
		&rv.Tags,
		&rv.Severity,
		&rv.AutomaticResponse,
		&rv.Fingerprint,
		&rv.HelpfulCount,
		&rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// Create inserts a new review with its computed analysis fields.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, product_id, reviewer_name, reviewer_email, rating, review_text,
			is_verified_purchase, submitted_at, value_score, category, is_shadow,
			confidence, reason, tags, severity, automatic_response, fingerprint,
			helpful_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.ProductID,
		review.ReviewerName,
		review.ReviewerEmail,
		review.Rating,
		review.ReviewText,
		review.IsVerifiedPurchase,
		review.SubmittedAt,
		review.ValueScore,
		review.Category,
		review.IsShadow,
		review.Confidence,
		review.Reason,
		review.Tags,
		review.Severity,
		review.AutomaticResponse,
		review.Fingerprint,
		review.HelpfulCount,
		review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by id.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	review, err := scanReview(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("get review: %w", err)
	}

	return review, nil
}

// UpdateClassification persists an override of the analysis fields.
func (r *ReviewRepository) UpdateClassification(ctx context.Context, review *domain.Review) error {
	query := `
		UPDATE reviews
		SET value_score = $2, category = $3, is_shadow = $4, reason = $5,
		    automatic_response = $6, updated_at = $7
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		review.ID,
		review.ValueScore,
		review.Category,
		review.IsShadow,
		review.Reason,
		review.AutomaticResponse,
		review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update review classification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("review", review.ID)
	}

	return nil
}

// ListByTab returns the public reviews of one product tab ordered by value
// score descending. Shadow reviews join the positive or negative tab by
// rating polarity when the inclusion flag is set.
func (r *ReviewRepository) ListByTab(ctx context.Context, filter repository.TabFilter) ([]domain.Review, int, error) {
	limit, offset := limitOffset(filter.Page, filter.PerPage)

	var cond string
	switch filter.Tab {
	case domain.TabShadow:
		cond = `category = 'shadow'`
	case domain.TabNegative:
		cond = `category = 'public_negative'`
		if filter.IncludeShadow {
			cond = `(category = 'public_negative' OR (category = 'shadow' AND rating <= 3))`
		}
	default:
		cond = `category = 'public_positive'`
		if filter.IncludeShadow {
			cond = `(category = 'public_positive' OR (category = 'shadow' AND rating >= 4))`
		}
	}

	query := `
		SELECT ` + reviewColumns + `,
		       count(*) OVER() AS total_count
		FROM reviews
		WHERE product_id = $1 AND ` + cond + `
		ORDER BY value_score DESC, submitted_at DESC
		LIMIT $2 OFFSET $3`

	return r.queryReviews(ctx, query, filter.ProductID, limit, offset)
}

// List returns reviews matching the admin filter, newest first.
func (r *ReviewRepository) List(ctx context.Context, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	limit, offset := limitOffset(filter.Page, filter.PerPage)

	query := `
		SELECT ` + reviewColumns + `,
		       count(*) OVER() AS total_count
		FROM reviews
		WHERE ($1::uuid IS NULL OR product_id = $1)
		  AND ($2::text IS NULL OR category = $2)
		ORDER BY submitted_at DESC
		LIMIT $3 OFFSET $4`

	var category *string
	if filter.Category != nil {
		c := string(*filter.Category)
		category = &c
	}

	return r.queryReviews(ctx, query, filter.ProductID, category, limit, offset)
}

func (r *ReviewRepository) queryReviews(ctx context.Context, query string, args ...any) ([]domain.Review, int, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)

	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.ProductID,
			&rv.ReviewerName,
			&rv.ReviewerEmail,
			&rv.Rating,
			&rv.ReviewText,
			&rv.IsVerifiedPurchase,
			&rv.SubmittedAt,
			&rv.ValueScore,
			&rv.Category,
			&rv.IsShadow,
			&rv.Confidence,
			&rv.Reason,
			&rv.Tags,
			&rv.Severity,
			&rv.AutomaticResponse,
			&rv.Fingerprint,
			&rv.HelpfulCount,
			&rv.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, totalCount, nil
}

// ListContributing returns every non-rejected review of a product.
func (r *ReviewRepository) ListContributing(ctx context.Context, productID string) ([]domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE product_id = $1 AND category <> 'rejected'
		ORDER BY submitted_at`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list contributing reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.ProductID,
			&rv.ReviewerName,
			&rv.ReviewerEmail,
			&rv.Rating,
			&rv.ReviewText,
			&rv.IsVerifiedPurchase,
			&rv.SubmittedAt,
			&rv.ValueScore,
			&rv.Category,
			&rv.IsShadow,
			&rv.Confidence,
			&rv.Reason,
			&rv.Tags,
			&rv.Severity,
			&rv.AutomaticResponse,
			&rv.Fingerprint,
			&rv.HelpfulCount,
			&rv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan contributing review: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contributing reviews: %w", err)
	}

	return reviews, nil
}

// CountByFingerprint returns how many reviews of the product share a text
// fingerprint.
func (r *ReviewRepository) CountByFingerprint(ctx context.Context, productID, fingerprint string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM reviews WHERE product_id = $1 AND fingerprint = $2`,
		productID, fingerprint,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count fingerprint: %w", err)
	}
	return count, nil
}

// IncrementHelpful adds one helpful vote and returns the new count.
func (r *ReviewRepository) IncrementHelpful(ctx context.Context, id string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`UPDATE reviews SET helpful_count = helpful_count + 1 WHERE id = $1 RETURNING helpful_count`,
		id,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NotFound("review", id)
		}
		return 0, fmt.Errorf("increment helpful count: %w", err)
	}
	return count, nil
}

func limitOffset(page, perPage int) (int, int) {
	limit := perPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}
	return limit, offset
}
