package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
	"github.com/ShakenTheCoder/REVIfinal/pkg/database"
	apperrors "github.com/ShakenTheCoder/REVIfinal/pkg/errors"
)

// RatingRepository implements repository.RatingRepository using PostgreSQL.
type RatingRepository struct {
	pool database.DBTX
}

// NewRatingRepository creates a new PostgreSQL-backed rating repository.
func NewRatingRepository(pool database.DBTX) *RatingRepository {
	return &RatingRepository{pool: pool}
}

// Get returns the stored rating summary for a product.
func (r *RatingRepository) Get(ctx context.Context, productID string) (*domain.RatingSummary, error) {
	query := `
		SELECT product_id, weighted_rating, total_reviews, positive_ratio,
		       confidence_score, version, updated_at
		FROM rating_summaries
		WHERE product_id = $1`

	var s domain.RatingSummary
	err := r.pool.QueryRow(ctx, query, productID).Scan(
		&s.ProductID,
		&s.WeightedRating,
		&s.TotalReviews,
		&s.PositiveRatio,
		&s.ConfidenceScore,
		&s.Version,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("rating summary", productID)
		}
		return nil, fmt.Errorf("get rating summary: %w", err)
	}

	return &s, nil
}

// Upsert writes the summary guarded by an optimistic version check. A
// concurrent writer that bumped the version first causes an aggregation
// conflict, which the caller resolves by recomputing from a fresh snapshot.
func (r *RatingRepository) Upsert(ctx context.Context, summary *domain.RatingSummary, expectedVersion int) error {
	query := `
		INSERT INTO rating_summaries (product_id, weighted_rating, total_reviews,
			positive_ratio, confidence_score, version, updated_at)
		VALUES ($1, $2, $3, $4, $5, 1, $6)
		ON CONFLICT (product_id) DO UPDATE
		SET weighted_rating = EXCLUDED.weighted_rating,
		    total_reviews = EXCLUDED.total_reviews,
		    positive_ratio = EXCLUDED.positive_ratio,
		    confidence_score = EXCLUDED.confidence_score,
		    version = rating_summaries.version + 1,
		    updated_at = EXCLUDED.updated_at
		WHERE rating_summaries.version = $7`

	tag, err := r.pool.Exec(ctx, query,
		summary.ProductID,
		summary.WeightedRating,
		summary.TotalReviews,
		summary.PositiveRatio,
		summary.ConfidenceScore,
		summary.UpdatedAt,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("upsert rating summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAggregationConflict
	}

	return nil
}
