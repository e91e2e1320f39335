package insight

import (
	"context"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/ShakenTheCoder/REVIfinal/internal/analysis"
	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
	apperrors "github.com/ShakenTheCoder/REVIfinal/pkg/errors"
)

const (
	maxThemes = 5
	maxPoints = 3

	// highValueFloor filters the review set driving theme extraction; when no
	// review clears it the top few reviews are used instead.
	highValueFloor = 50.0
	fallbackCount  = 5

	minExcerptLen = 15
	maxExcerptLen = 150
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// Aggregator groups the reviews of a (product, tab) into theme counts and
// representative excerpts, delegating prose synthesis to the external text
// generator. The computation is read-only over the review slice it is given,
// so callers control snapshot consistency.
type Aggregator struct {
	gen    Generator
	logger *slog.Logger
}

// NewAggregator creates an insight aggregator using the given generator.
func NewAggregator(gen Generator, logger *slog.Logger) *Aggregator {
	return &Aggregator{gen: gen, logger: logger}
}

// Summarize builds the insight for the given tab's reviews. If the generator
// fails or times out, the structured fields are returned with the summary
// text omitted; the request never fails on generator trouble.
func (a *Aggregator) Summarize(ctx context.Context, tab domain.Tab, reviews []domain.Review) domain.Insight {
	insight := domain.Insight{
		KeyThemes:    []domain.Theme{},
		CommonPoints: []string{},
		ReviewCount:  len(reviews),
	}
	if len(reviews) == 0 {
		return insight
	}

	var scoreSum float64
	for _, r := range reviews {
		scoreSum += r.ValueScore
	}
	insight.AverageValueScore = math.Round(scoreSum/float64(len(reviews))*10) / 10

	highValue := filterHighValue(reviews)
	insight.KeyThemes = extractThemes(highValue)
	insight.CommonPoints = extractCommonPoints(highValue, tab)

	summary, err := a.gen.Summarize(ctx, SummaryRequest{
		Tab:          tab,
		ReviewCount:  len(reviews),
		KeyThemes:    insight.KeyThemes,
		CommonPoints: insight.CommonPoints,
	})
	if err != nil {
		generatorFailures.Inc()
		degraded := apperrors.CollaboratorUnavailable(err)
		a.logger.WarnContext(ctx, "returning insight without summary text",
			slog.String("tab", string(tab)),
			slog.String("error", degraded.Error()),
		)
		return insight
	}
	insight.SummaryText = summary

	return insight
}

func filterHighValue(reviews []domain.Review) []domain.Review {
	var high []domain.Review
	for _, r := range reviews {
		if r.ValueScore >= highValueFloor {
			high = append(high, r)
		}
	}
	if len(high) > 0 {
		return high
	}
	if len(reviews) > fallbackCount {
		return reviews[:fallbackCount]
	}
	return reviews
}

// extractThemes counts theme mentions across the review set, weighting by
// value score so authoritative reviews influence the ranking more. Themes are
// ranked by mention count with ties broken by earliest first mention.
func extractThemes(reviews []domain.Review) []domain.Theme {
	type stat struct {
		mentions  int
		weight    float64
		firstSeen int
	}
	stats := make(map[string]*stat)
	seq := 0

	for _, r := range reviews {
		f := analysis.Extract(r.ReviewText, r.Rating)
		for _, name := range f.ThemeCandidates {
			s, ok := stats[name]
			if !ok {
				s = &stat{firstSeen: seq}
				stats[name] = s
			}
			s.mentions++
			s.weight += r.ValueScore / 100.0
			seq++
		}
	}

	themes := make([]domain.Theme, 0, len(stats))
	order := make(map[string]int, len(stats))
	for name, s := range stats {
		themes = append(themes, domain.Theme{
			Name:     name,
			Mentions: s.mentions,
			Weight:   math.Round(s.weight*100) / 100,
		})
		order[name] = s.firstSeen
	}

	sort.Slice(themes, func(i, j int) bool {
		if themes[i].Mentions != themes[j].Mentions {
			return themes[i].Mentions > themes[j].Mentions
		}
		return order[themes[i].Name] < order[themes[j].Name]
	})

	if len(themes) > maxThemes {
		themes = themes[:maxThemes]
	}
	return themes
}

// extractCommonPoints selects representative excerpts: sentences of moderate
// length containing a sentiment indicator matching the tab's polarity.
func extractCommonPoints(reviews []domain.Review, tab domain.Tab) []string {
	matches := func(s string) bool { return analysis.HasPositiveIndicator(s) }
	if tab == domain.TabNegative {
		matches = func(s string) bool { return analysis.HasNegativeIndicator(s) }
	}

	var points []string
	seen := make(map[string]bool)

	for _, r := range reviews {
		for _, raw := range sentenceSplit.Split(r.ReviewText, -1) {
			sentence := strings.TrimSpace(raw)
			if len(sentence) < minExcerptLen || len(sentence) > maxExcerptLen {
				continue
			}
			if !matches(sentence) || seen[sentence] {
				continue
			}
			seen[sentence] = true
			points = append(points, sentence)
			if len(points) == maxPoints {
				return points
			}
		}
	}

	// Too few indicator sentences; pad with opening sentences.
	for _, r := range reviews {
		if len(points) == maxPoints {
			break
		}
		first := strings.TrimSpace(sentenceSplit.Split(r.ReviewText, -1)[0])
		if first == "" || seen[first] {
			continue
		}
		seen[first] = true
		points = append(points, first)
	}

	return points
}
