package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
	"github.com/ShakenTheCoder/REVIfinal/internal/insight"
	"github.com/ShakenTheCoder/REVIfinal/internal/repository"
	apperrors "github.com/ShakenTheCoder/REVIfinal/pkg/errors"
)

// InsightService computes and caches per-tab insight summaries. Concurrent
// requests for the same (product, tab) collapse into a single computation.
type InsightService struct {
	reviews repository.ReviewRepository
	cache   repository.InsightCache
	agg     *insight.Aggregator
	group   singleflight.Group
	logger  *slog.Logger
}

// NewInsightService creates a new insight service.
func NewInsightService(
	reviews repository.ReviewRepository,
	cache repository.InsightCache,
	agg *insight.Aggregator,
	logger *slog.Logger,
) *InsightService {
	return &InsightService{
		reviews: reviews,
		cache:   cache,
		agg:     agg,
		logger:  logger,
	}
}

// Get returns the insight summary of a product tab. The shadow tab carries
// raw reviews only, so it has no insight. Cache misses recompute from the
// full non-rejected review set of the product, which gives each computation
// a consistent snapshot taken in one query.
func (s *InsightService) Get(ctx context.Context, productID string, tab domain.Tab) (*domain.Insight, error) {
	if tab == domain.TabShadow {
		return nil, nil
	}

	if cached, err := s.cache.Get(ctx, productID, tab); err == nil {
		insightCacheHits.WithLabelValues("hit").Inc()
		return cached, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.WarnContext(ctx, "insight cache read failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
	insightCacheHits.WithLabelValues("miss").Inc()

	key := productID + ":" + string(tab)
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.compute(ctx, productID, tab)
	})
	if err != nil {
		return nil, err
	}

	result := v.(domain.Insight)
	return &result, nil
}

func (s *InsightService) compute(ctx context.Context, productID string, tab domain.Tab) (domain.Insight, error) {
	all, err := s.reviews.ListContributing(ctx, productID)
	if err != nil {
		return domain.Insight{}, err
	}

	category := tab.Category()
	var tabReviews []domain.Review
	for _, r := range all {
		if r.Category == category {
			tabReviews = append(tabReviews, r)
		}
	}

	result := s.agg.Summarize(ctx, tab, tabReviews)

	if err := s.cache.Set(ctx, productID, tab, &result); err != nil {
		s.logger.WarnContext(ctx, "insight cache write failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	return result, nil
}
