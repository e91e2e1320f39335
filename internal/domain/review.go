package domain

import (
	"time"
)

// Category is the closed set of review classifications controlling visibility.
type Category string

const (
	CategoryPublicPositive Category = "public_positive"
	CategoryPublicNegative Category = "public_negative"
	CategoryShadow         Category = "shadow"
	CategoryRejected       Category = "rejected"
	CategorySupport        Category = "support"
)

// IsValid reports whether the category is one of the known values.
func (c Category) IsValid() bool {
	switch c {
	case CategoryPublicPositive, CategoryPublicNegative, CategoryShadow, CategoryRejected, CategorySupport:
		return true
	}
	return false
}

// Contributing reports whether reviews of this category count toward the
// product rating. Rejected reviews never contribute; shadow contribution is
// decided by policy at the aggregation call site.
func (c Category) Contributing() bool {
	return c != CategoryRejected
}

// Tab identifies a public review listing.
type Tab string

const (
	TabPositive Tab = "positive"
	TabNegative Tab = "negative"
	TabShadow   Tab = "shadow"
)

// IsValid reports whether the tab is one of the known values.
func (t Tab) IsValid() bool {
	switch t {
	case TabPositive, TabNegative, TabShadow:
		return true
	}
	return false
}

// Category returns the review category shown on this tab.
func (t Tab) Category() Category {
	switch t {
	case TabPositive:
		return CategoryPublicPositive
	case TabNegative:
		return CategoryPublicNegative
	default:
		return CategoryShadow
	}
}

// Review is a submitted product review together with its computed analysis.
type Review struct {
	ID                 string    `json:"id"`
	ProductID          string    `json:"product_id"`
	ReviewerName       string    `json:"reviewer_name,omitempty"`
	ReviewerEmail      string    `json:"reviewer_email,omitempty"`
	Rating             int       `json:"rating"`
	ReviewText         string    `json:"review_text"`
	IsVerifiedPurchase bool      `json:"is_verified_purchase"`
	SubmittedAt        time.Time `json:"submitted_at"`

	ValueScore        float64  `json:"value_score"`
	Category          Category `json:"category"`
	IsShadow          bool     `json:"is_shadow"`
	Confidence        float64  `json:"confidence"`
	Reason            string   `json:"reason,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	Severity          string   `json:"severity,omitempty"`
	AutomaticResponse string   `json:"automatic_response,omitempty"`
	Fingerprint       string   `json:"-"`

	HelpfulCount int       `json:"helpful_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SetCategory updates the category and keeps the derived shadow flag in sync.
func (r *Review) SetCategory(c Category) {
	r.Category = c
	r.IsShadow = c == CategoryShadow
}

// RatingSummary holds the aggregate rating state for one product. It is
// recomputed whenever a contributing review is added, re-categorized, or
// overridden.
type RatingSummary struct {
	ProductID       string    `json:"product_id"`
	WeightedRating  float64   `json:"weighted_rating"`
	TotalReviews    int       `json:"total_reviews"`
	PositiveRatio   float64   `json:"positive_ratio"`
	ConfidenceScore float64   `json:"confidence_score"`
	Version         int       `json:"-"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AdminAction is an audit log entry for an administrator operation.
type AdminAction struct {
	ID          string    `json:"id"`
	AdminUser   string    `json:"admin_user"`
	ActionType  string    `json:"action_type"`
	TargetID    string    `json:"target_id"`
	TargetType  string    `json:"target_type"`
	Reason      string    `json:"reason,omitempty"`
	OldValue    string    `json:"old_value,omitempty"`
	NewValue    string    `json:"new_value,omitempty"`
	PerformedAt time.Time `json:"performed_at"`
}
