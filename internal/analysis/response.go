package analysis

import (
	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
)

var positiveResponses = []string{
	"Thank you so much for your wonderful review! We're thrilled that you're enjoying your purchase.",
	"We really appreciate you taking the time to share your experience with us. Thank you!",
	"Thank you for your kind words! We're so happy you're satisfied with your purchase.",
}

const (
	negativeResponse = "We're sorry to hear about your experience. We take all feedback seriously and will use this to improve."
	supportResponse  = "Your issue has been recognized. A support agent will contact you shortly to resolve this matter."
	emailRequest     = " Please reply with a contact email so our team can reach you."
)

// AutomaticResponse returns the canned store response for a classified
// review. Positive responses rotate by rating so repeat reviewers do not
// always see the same text. Shadow and rejected reviews get no response.
func AutomaticResponse(category domain.Category, rating int, hasReviewerEmail bool) string {
	switch category {
	case domain.CategoryPublicPositive:
		return positiveResponses[rating%len(positiveResponses)]
	case domain.CategoryPublicNegative:
		return negativeResponse
	case domain.CategorySupport:
		if hasReviewerEmail {
			return supportResponse
		}
		return supportResponse + emailRequest
	default:
		return ""
	}
}
