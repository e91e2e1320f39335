package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
)

// StaticGenerator renders summary prose from templates without any external
// dependency. Used when no API key is configured and in tests.
type StaticGenerator struct{}

// NewStaticGenerator creates a template-based generator.
func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

// Summarize renders a deterministic summary from the theme data.
func (g *StaticGenerator) Summarize(_ context.Context, req SummaryRequest) (string, error) {
	if len(req.KeyThemes) == 0 {
		return fmt.Sprintf("Based on %d %s reviews, customers have mixed feedback.", req.ReviewCount, req.Tab), nil
	}

	topTheme := req.KeyThemes[0].Name

	var b strings.Builder
	if req.Tab == domain.TabPositive {
		fmt.Fprintf(&b, "Based on %d positive reviews, customers particularly appreciate the %s. ", req.ReviewCount, topTheme)
		if others := themeNames(req.KeyThemes[1:], 2); others != "" {
			fmt.Fprintf(&b, "Other frequently praised aspects include %s. ", others)
		}
		b.WriteString("These reviews tend to be detailed and specific, providing valuable insights.")
	} else {
		fmt.Fprintf(&b, "Based on %d negative reviews, the main concerns relate to %s. ", req.ReviewCount, topTheme)
		if others := themeNames(req.KeyThemes[1:], 2); others != "" {
			fmt.Fprintf(&b, "Customers also mention issues with %s. ", others)
		}
		b.WriteString("These reviews highlight areas that may need attention.")
	}

	return b.String(), nil
}

func themeNames(themes []domain.Theme, limit int) string {
	if len(themes) > limit {
		themes = themes[:limit]
	}
	names := make([]string, 0, len(themes))
	for _, t := range themes {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}
