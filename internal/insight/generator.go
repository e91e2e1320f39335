package insight

import (
	"context"

	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
)

// SummaryRequest carries only the structured theme and point data for a
// (product, tab) aggregation. Raw review text and reviewer PII never cross
// this boundary.
type SummaryRequest struct {
	Tab          domain.Tab
	ReviewCount  int
	KeyThemes    []domain.Theme
	CommonPoints []string
}

// Generator is the narrow capability interface for the external
// text-generation collaborator. Implementations must respect the context
// deadline and return bounded prose.
type Generator interface {
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
}
