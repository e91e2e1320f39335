package domain

// Theme is a canonical topic label with its mention count, scoped to one
// (product, tab) aggregation. Themes are ephemeral and recomputed per request;
// they are safe to cache but never persisted as authoritative state.
type Theme struct {
	Name     string  `json:"name"`
	Mentions int     `json:"mentions"`
	Weight   float64 `json:"weight"`
}

// Insight is the aggregated summary for the reviews of one (product, tab).
// SummaryText is produced by an external text generator and is omitted when
// the generator is unavailable.
type Insight struct {
	SummaryText       string   `json:"summary_text,omitempty"`
	KeyThemes         []Theme  `json:"key_themes"`
	CommonPoints      []string `json:"common_points"`
	ReviewCount       int      `json:"review_count"`
	AverageValueScore float64  `json:"average_value_score"`
}
