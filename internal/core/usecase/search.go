package usecase

import (
	"context"
	"fmt"

	"github.com/verdictio/caselaw-api/internal/core/domain"
	"github.com/verdictio/caselaw-api/internal/core/ports"
)

// SearchOptions are the request-independent pipeline settings.
type SearchOptions struct {
	PerPageDefault  int
	PerPageMax      int
	SnippetMaxChars int

	WeightText    float64
	WeightField   float64
	WeightRecency float64
}

type SearchUseCase struct {
	repo    ports.CaseRepository
	opts    SearchOptions
	weights rankWeights
}

func NewSearchUseCase(repo ports.CaseRepository, opts SearchOptions) *SearchUseCase {
	if opts.PerPageDefault <= 0 {
		opts.PerPageDefault = 20
	}
	if opts.PerPageMax <= 0 {
		opts.PerPageMax = 100
	}
	if opts.SnippetMaxChars <= 0 {
		opts.SnippetMaxChars = 300
	}
	weights := rankWeights{
		Text:    opts.WeightText,
		Field:   opts.WeightField,
		Recency: opts.WeightRecency,
	}
	if weights.Text == 0 && weights.Field == 0 && weights.Recency == 0 {
		weights = defaultRankWeights()
	}
	return &SearchUseCase{repo: repo, opts: opts, weights: weights.normalize()}
}

// Search runs the full pipeline: normalize, compile the filter, fetch
// candidates with the storage engine's raw signal, score, sort, paginate,
// and attach snippets. Requests either fully succeed or fail; there are no
// partial results.
func (uc *SearchUseCase) Search(ctx context.Context, req ports.RawSearchRequest) (*domain.SearchResponse, error) {
	query, err := normalizeRequest(req, uc.opts.PerPageDefault, uc.opts.PerPageMax)
	if err != nil {
		return nil, err
	}

	scored, err := uc.rankedCandidates(ctx, query)
	if err != nil {
		return nil, err
	}

	total := len(scored)
	page := paginate(scored, query.Page, query.PerPage)

	results := make([]domain.ScoredResult, 0, len(page))
	for _, s := range page {
		results = append(results, uc.toResult(s, query))
	}

	return &domain.SearchResponse{
		Total:      total,
		Page:       query.Page,
		PerPage:    query.PerPage,
		TotalPages: totalPages(total, query.PerPage),
		Results:    results,
	}, nil
}

// rankedCandidates fetches predicate matches and returns them in final
// order. The compiled predicate is re-applied in process so behavior stays
// identical whether or not the storage engine pushed the filter down.
func (uc *SearchUseCase) rankedCandidates(ctx context.Context, query domain.SearchQuery) ([]scoredCase, error) {
	candidates, err := uc.repo.Search(ctx, query.NormalizedText, query.Filter)
	if err != nil {
		return nil, fmt.Errorf("search cases: %w", err)
	}

	predicate := compileFilter(query.Filter)
	matched := make([]domain.CaseMatch, 0, len(candidates))
	for _, c := range candidates {
		if predicate.Matches(c.Document) {
			matched = append(matched, c)
		}
	}

	return scoreCandidates(query.NormalizedText, matched, uc.weights), nil
}

func (uc *SearchUseCase) toResult(s scoredCase, query domain.SearchQuery) domain.ScoredResult {
	result := domain.ScoredResult{
		ID:        s.doc.ID,
		Title:     s.doc.Title,
		Citation:  s.doc.Citation,
		Court:     s.doc.Court,
		Relevance: s.score,
		Snippet:   buildSnippet(s.doc, query.NormalizedText, uc.opts.SnippetMaxChars, query.Highlight),
	}
	if !s.doc.Date.IsZero() {
		result.Date = s.doc.Date.Format(dateLayout)
	}
	return result
}
