package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reviewsClassifiedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revi_reviews_classified_total",
			Help: "Total reviews classified, by resulting category",
		},
		[]string{"category"},
	)

	ticketsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revi_support_tickets_created_total",
			Help: "Total support tickets created, by priority",
		},
		[]string{"priority"},
	)

	ratingRecomputeConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "revi_rating_recompute_conflicts_total",
			Help: "Rating recomputes retried after losing a version race",
		},
	)

	insightCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revi_insight_cache_requests_total",
			Help: "Insight cache lookups, by outcome",
		},
		[]string{"outcome"},
	)
)
