package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// Features is the structured signal bundle derived from one raw review.
// Extraction is a pure function: the same text and rating always produce the
// same bundle, which keeps scoring and classification reproducible.
type Features struct {
	Length        int
	WordCount     int
	SpecificTerms int
	PositiveWords int
	NegativeWords int

	// Tags are coarse product-aspect labels mentioned in the text.
	Tags []string
	// ThemeCandidates are insight theme labels in order of first mention.
	ThemeCandidates []string

	HasSafetyLanguage bool
	HasDefectSignal   bool
	HasServiceSignal  bool
	HasInquirySignal  bool

	HasContactInfo   bool
	EffectivelyEmpty bool
	IsGeneric        bool

	// Fingerprint identifies the normalized text for duplicate detection.
	Fingerprint string
}

// HasComplaintSignal reports whether the text carries any explicit complaint
// or support-request language.
func (f Features) HasComplaintSignal() bool {
	return f.HasSafetyLanguage || f.HasDefectSignal || f.HasServiceSignal || f.HasInquirySignal
}

var safetyKeywords = []string{
	"fire", "unsafe", "recall", "hazard", "dangerous", "burn", "burned",
	"shock", "electrocut", "overheat", "explode", "exploded", "smoke",
	"injury", "injured",
}

var defectKeywords = []string{
	"broken", "defect", "defective", "damaged", "malfunction", "not working",
	"doesn't work", "does not work", "stopped working", "fault", "faulty",
	"failed", "error",
}

var serviceKeywords = []string{
	"refund", "return", "exchange", "warranty", "problem", "issue",
}

var inquiryKeywords = []string{
	"help", "support", "question", "how do i", "how to",
}

var positiveWords = []string{
	"excellent", "great", "perfect", "love", "amazing", "recommend",
	"fantastic", "wonderful", "best", "awesome", "superb", "brilliant",
	"exceeded", "impressed",
}

var negativeWords = []string{
	"broken", "defect", "poor", "bad", "terrible", "worst", "disappointed",
	"problem", "issue", "waste", "cheap", "useless", "failed", "horrible",
}

// attributeNouns are concrete product or fulfilment terms; mentioning them is
// treated as a specificity signal.
var attributeNouns = []string{
	"packaging", "specs", "spec", "arrived", "delivery", "shipping",
	"battery", "screen", "material", "size", "color", "colour", "weight",
	"fit", "box", "manual", "instructions", "warranty", "charge", "button",
	"cable", "motor", "assembly", "installed", "setup", "stitching",
	"dimensions", "texture", "finish",
}

// tagGroups map product-aspect tags to their indicator words.
var tagGroups = []struct {
	tag   string
	words []string
}{
	{"quality", []string{"quality", "premium", "excellent", "great", "perfect"}},
	{"price", []string{"price", "expensive", "cheap", "value", "worth"}},
	{"performance", []string{"performance", "works", "working", "fast", "slow"}},
	{"design", []string{"design", "look", "appearance", "beautiful", "ugly"}},
	{"durability", []string{"durable", "broke", "broken", "lasted", "sturdy"}},
}

// themeGroups map insight theme labels to their indicator words. Order in the
// slice does not matter; candidate order follows first mention in the text.
var themeGroups = []struct {
	theme string
	words []string
}{
	{"quality", []string{"quality", "durability", "build", "material", "sturdy", "solid"}},
	{"performance", []string{"performance", "works", "working", "fast", "speed", "efficient"}},
	{"design", []string{"design", "look", "appearance", "style", "beautiful", "aesthetic"}},
	{"value", []string{"price", "value", "worth", "affordable", "expensive", "cheap"}},
	{"usability", []string{"easy", "simple", "comfortable", "convenient", "user-friendly"}},
}

var genericPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^great\s*product\s*!*$`),
	regexp.MustCompile(`^excellent\s*!*$`),
	regexp.MustCompile(`^good\s*!*$`),
	regexp.MustCompile(`^amazing\s*!*$`),
	regexp.MustCompile(`^awesome\s*!*$`),
	regexp.MustCompile(`^love\s*it\s*!*$`),
	regexp.MustCompile(`^perfect\s*!*$`),
}

var (
	emailPattern   = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	urlPattern     = regexp.MustCompile(`(?i)(https?://|www\.)\S+`)
	phonePattern   = regexp.MustCompile(`(\+?\d[\d\s\-().]{6,}\d)`)
	digitToken     = regexp.MustCompile(`\d`)
	nonLetterDigit = regexp.MustCompile(`[^a-z0-9 ]+`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// Extract derives the feature bundle from raw review text and its star
// rating. It performs no I/O and never fails; empty or malformed text yields
// a bundle with EffectivelyEmpty set.
func Extract(text string, rating int) Features {
	lower := strings.ToLower(text)
	normalized := normalize(lower)

	f := Features{
		Length:      len(text),
		Fingerprint: fingerprint(normalized),
	}

	words := strings.Fields(normalized)
	f.WordCount = len(words)
	f.EffectivelyEmpty = len(normalized) == 0

	f.SpecificTerms = countMatches(lower, attributeNouns)
	for _, w := range words {
		if digitToken.MatchString(w) {
			f.SpecificTerms++
		}
	}

	f.PositiveWords = countMatches(lower, positiveWords)
	f.NegativeWords = countMatches(lower, negativeWords)

	f.HasSafetyLanguage = containsAny(lower, safetyKeywords)
	f.HasDefectSignal = containsAny(lower, defectKeywords)
	f.HasServiceSignal = containsAny(lower, serviceKeywords)
	f.HasInquirySignal = containsAny(lower, inquiryKeywords)

	f.HasContactInfo = emailPattern.MatchString(text) ||
		urlPattern.MatchString(text) ||
		phonePattern.MatchString(text)

	f.Tags = extractTags(lower)
	f.ThemeCandidates = extractThemes(lower)
	f.IsGeneric = isGeneric(lower, rating)

	return f
}

// HasPositiveIndicator reports whether the sentence contains a positive
// sentiment word. Used by the insight aggregator to pick representative
// excerpts.
func HasPositiveIndicator(s string) bool {
	return containsAny(strings.ToLower(s), positiveWords)
}

// HasNegativeIndicator reports whether the sentence contains a negative
// sentiment word.
func HasNegativeIndicator(s string) bool {
	return containsAny(strings.ToLower(s), negativeWords)
}

func normalize(lower string) string {
	s := nonLetterDigit.ReplaceAllString(lower, " ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func fingerprint(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func countMatches(lower string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}

func extractTags(lower string) []string {
	var tags []string
	for _, group := range tagGroups {
		if containsAny(lower, group.words) {
			tags = append(tags, group.tag)
		}
	}
	return tags
}

// extractThemes returns theme labels ordered by the position of their first
// mention in the text, so downstream tie-breaking is deterministic.
func extractThemes(lower string) []string {
	type hit struct {
		theme string
		pos   int
	}
	var hits []hit
	for _, group := range themeGroups {
		first := -1
		for _, kw := range group.words {
			if idx := strings.Index(lower, kw); idx >= 0 && (first < 0 || idx < first) {
				first = idx
			}
		}
		if first >= 0 {
			hits = append(hits, hit{theme: group.theme, pos: first})
		}
	}
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].pos < hits[j-1].pos; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	themes := make([]string, 0, len(hits))
	for _, h := range hits {
		themes = append(themes, h.theme)
	}
	return themes
}

// isGeneric flags short boilerplate five-star reviews. Detailed positive
// reviews are never flagged regardless of rating.
func isGeneric(lower string, rating int) bool {
	if rating < 5 {
		return false
	}
	trimmed := strings.TrimSpace(lower)
	if len(trimmed) >= 30 {
		return false
	}
	for _, p := range genericPatterns {
		if p.MatchString(trimmed) {
			return true
		}
	}
	return len(strings.Fields(trimmed)) <= 3
}
