package analysis

import (
	"fmt"
	"strings"

	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
)

// Classification thresholds on the 0-100 value score scale.
const (
	// ShadowFloor is the low-quality floor; reviews scoring below it are
	// shadow-banned instead of published.
	ShadowFloor = 25.0
	// RatingMidpoint routes three-star reviews to the positive or negative
	// tab by value score.
	RatingMidpoint = 50.0
)

// ClassifyInput carries everything the rule list needs.
type ClassifyInput struct {
	Text       string
	Rating     int
	ValueScore float64
	Features   Features

	// DuplicateSubmission is set when the text fingerprint was already seen
	// for the same product.
	DuplicateSubmission bool
}

// Classification is the classifier verdict together with its audit fields.
type Classification struct {
	Category          domain.Category
	Confidence        float64
	Reason            string
	Tags              []string
	Severity          string
	RecommendedAction string
}

// rule is one entry of the totally-ordered rule list. Rules are evaluated
// top-down; the first match wins.
type rule struct {
	name     string
	matches  func(in ClassifyInput) bool
	category domain.Category
}

// Rule precedence: rejection beats everything (spam cannot be redeemed by
// apparent detail), support routing beats shadow-banning, and the quality
// floor beats rating-based routing.
var rules = []rule{
	{
		name: "spam",
		matches: func(in ClassifyInput) bool {
			return in.Features.EffectivelyEmpty ||
				in.Features.HasContactInfo ||
				in.DuplicateSubmission
		},
		category: domain.CategoryRejected,
	},
	{
		name: "complaint",
		matches: func(in ClassifyInput) bool {
			return in.Features.HasComplaintSignal()
		},
		category: domain.CategorySupport,
	},
	{
		name: "quality_floor",
		matches: func(in ClassifyInput) bool {
			return in.ValueScore < ShadowFloor
		},
		category: domain.CategoryShadow,
	},
	{
		name: "high_rating",
		matches: func(in ClassifyInput) bool {
			return in.Rating >= 4
		},
		category: domain.CategoryPublicPositive,
	},
	{
		name: "low_rating",
		matches: func(in ClassifyInput) bool {
			return in.Rating <= 2
		},
		category: domain.CategoryPublicNegative,
	},
	{
		name: "neutral_high_score",
		matches: func(in ClassifyInput) bool {
			return in.ValueScore >= RatingMidpoint
		},
		category: domain.CategoryPublicPositive,
	},
	{
		name:     "neutral_low_score",
		matches:  func(in ClassifyInput) bool { return true },
		category: domain.CategoryPublicNegative,
	},
}

// Classify maps a scored review to its category. The rule list is total, so a
// category is always produced for well-formed input; input validation happens
// before classification, never inside it.
func Classify(in ClassifyInput) Classification {
	var matched rule
	for _, r := range rules {
		if r.matches(in) {
			matched = r
			break
		}
	}

	return Classification{
		Category:          matched.category,
		Confidence:        confidence(in, matched),
		Reason:            reason(in, matched),
		Tags:              in.Features.Tags,
		Severity:          severity(in, matched.category),
		RecommendedAction: recommendedAction(matched.category),
	}
}

func confidence(in ClassifyInput, matched rule) float64 {
	c := 0.5 + 0.1*saturate(in.Features.SpecificTerms, specificitySaturation)*3

	switch matched.name {
	case "spam":
		c = 0.95
	case "complaint":
		if c < 0.80 {
			c = 0.80
		}
	case "quality_floor":
		if in.Features.IsGeneric && c < 0.85 {
			c = 0.85
		}
	}

	if c > 1.0 {
		c = 1.0
	}
	return round2(c)
}

func reason(in ClassifyInput, matched rule) string {
	switch matched.name {
	case "spam":
		switch {
		case in.Features.EffectivelyEmpty:
			return "Review has no effective content."
		case in.Features.HasContactInfo:
			return "Review contains contact information or links."
		default:
			return "Review matches a previously submitted text fingerprint."
		}
	case "complaint":
		return "Review contains technical issues or support requests that require attention."
	case "quality_floor":
		if in.Features.IsGeneric {
			return "Generic positive review without substantive content. Published but shadow-banned."
		}
		return fmt.Sprintf("Value score %.0f is below the publication quality floor.", in.ValueScore)
	}

	polarity := "negative"
	if matched.category == domain.CategoryPublicPositive {
		polarity = "positive"
	}
	r := fmt.Sprintf("%s review routed by rating and value score.",
		strings.ToUpper(polarity[:1])+polarity[1:])
	if len(in.Features.Tags) > 0 {
		r += " Mentions product aspects: " + strings.Join(in.Features.Tags, ", ") + "."
	}
	return r
}

func severity(in ClassifyInput, category domain.Category) string {
	switch category {
	case domain.CategorySupport:
		if in.Rating <= 2 || in.Features.HasSafetyLanguage {
			return "high"
		}
		return "medium"
	case domain.CategoryPublicNegative:
		if in.Rating <= 2 {
			return "high"
		}
	}
	return "low"
}

func recommendedAction(category domain.Category) string {
	switch category {
	case domain.CategoryPublicPositive, domain.CategoryPublicNegative:
		return "publish"
	case domain.CategorySupport:
		return "create_ticket"
	case domain.CategoryShadow:
		return "publish_shadow"
	default:
		return "reject"
	}
}

// TicketPriorityFor derives the immutable ticket priority from the extracted
// features: safety or defect language is high, service requests are normal,
// purely informational inquiries are low.
func TicketPriorityFor(f Features) domain.TicketPriority {
	switch {
	case f.HasSafetyLanguage || f.HasDefectSignal:
		return domain.PriorityHigh
	case f.HasServiceSignal:
		return domain.PriorityNormal
	case f.HasInquirySignal:
		return domain.PriorityLow
	default:
		return domain.PriorityNormal
	}
}
