package usecase

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/verdictio/caselaw-api/internal/core/domain"
)

// rankWeights is the tunable linear weighting of the relevance score.
// Weights are renormalized to sum to 1 so the score stays in [0,1].
type rankWeights struct {
	Text    float64
	Field   float64
	Recency float64
}

func defaultRankWeights() rankWeights {
	return rankWeights{Text: 0.6, Field: 0.3, Recency: 0.1}
}

func (w rankWeights) normalize() rankWeights {
	sum := w.Text + w.Field + w.Recency
	if w.Text < 0 || w.Field < 0 || w.Recency < 0 || sum <= 0 {
		return defaultRankWeights()
	}
	return rankWeights{Text: w.Text / sum, Field: w.Field / sum, Recency: w.Recency / sum}
}

type scoredCase struct {
	doc   domain.CaseDocument
	score float64
}

// Relative weight of token hits per field. Title matches dominate.
const (
	fieldWeightTitle    = 0.5
	fieldWeightHeadnote = 0.3
	fieldWeightFullText = 0.2
)

// scoreCandidates ranks the candidate set: the storage engine's raw signal
// is min/max normalized and blended with an in-core field-weighted token
// overlap and a recency factor. With empty query text both text components
// are a constant baseline, so ordering degrades to recency.
func scoreCandidates(normalizedText string, candidates []domain.CaseMatch, weights rankWeights) []scoredCase {
	if len(candidates) == 0 {
		return nil
	}
	w := weights.normalize()
	queryTokens := toTokenSet(normalizedText)

	normalizeSignal := signalNormalizer(candidates)
	normalizeRecency := recencyNormalizer(candidates)

	out := make([]scoredCase, 0, len(candidates))
	for _, c := range candidates {
		textMatch := 1.0
		fieldMatch := 1.0
		if len(queryTokens) > 0 {
			textMatch = normalizeSignal(c.RawSignal)
			fieldMatch = fieldWeightTitle*tokenOverlap(queryTokens, toTokenSet(c.Document.Title)) +
				fieldWeightHeadnote*tokenOverlap(queryTokens, toTokenSet(c.Document.Headnote)) +
				fieldWeightFullText*tokenOverlap(queryTokens, toTokenSet(c.Document.FullText))
		}

		out = append(out, scoredCase{
			doc:   c.Document,
			score: w.Text*textMatch + w.Field*fieldMatch + w.Recency*normalizeRecency(c.Document.Date),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].doc.ID < out[j].doc.ID
	})
	return out
}

func signalNormalizer(candidates []domain.CaseMatch) func(float64) float64 {
	minSignal := candidates[0].RawSignal
	maxSignal := candidates[0].RawSignal
	for _, c := range candidates[1:] {
		if c.RawSignal < minSignal {
			minSignal = c.RawSignal
		}
		if c.RawSignal > maxSignal {
			maxSignal = c.RawSignal
		}
	}

	rangeSignal := maxSignal - minSignal
	return func(v float64) float64 {
		if rangeSignal <= 0 {
			if v > 0 {
				return 1
			}
			return 0
		}
		return (v - minSignal) / rangeSignal
	}
}

func recencyNormalizer(candidates []domain.CaseMatch) func(time.Time) float64 {
	var minDay, maxDay int64
	seen := false
	for _, c := range candidates {
		if c.Document.Date.IsZero() {
			continue
		}
		day := c.Document.Date.Unix()
		if !seen {
			minDay, maxDay = day, day
			seen = true
			continue
		}
		if day < minDay {
			minDay = day
		}
		if day > maxDay {
			maxDay = day
		}
	}

	rangeDay := maxDay - minDay
	return func(date time.Time) float64 {
		if !seen || date.IsZero() {
			return 0
		}
		if rangeDay <= 0 {
			return 1
		}
		return float64(date.Unix()-minDay) / float64(rangeDay)
	}
}

func tokenOverlap(query, doc map[string]struct{}) float64 {
	if len(query) == 0 || len(doc) == 0 {
		return 0
	}
	matches := 0
	for token := range query {
		if _, ok := doc[token]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(query))
}

func toTokenSet(s string) map[string]struct{} {
	tokens := splitAlphaNumLower(s)
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}

func splitAlphaNumLower(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}
