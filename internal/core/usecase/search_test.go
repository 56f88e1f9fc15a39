package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/verdictio/caselaw-api/internal/core/domain"
	"github.com/verdictio/caselaw-api/internal/core/ports"
)

type repoFake struct {
	matches []domain.CaseMatch
	byID    *domain.CaseDocument
	courts  []string
	err     error
	calls   int
}

func (f *repoFake) Search(_ context.Context, _ string, _ domain.CaseFilter) ([]domain.CaseMatch, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

func (f *repoFake) GetByID(context.Context, string) (*domain.CaseDocument, error) {
	if f.byID != nil {
		return f.byID, nil
	}
	return nil, domain.WrapError(domain.ErrCaseNotFound, "get case", errors.New("fake"))
}

func (f *repoFake) DistinctCourts(context.Context) ([]string, error) { return f.courts, f.err }

func defaultOptions() SearchOptions {
	return SearchOptions{PerPageDefault: 20, PerPageMax: 100, SnippetMaxChars: 300}
}

func TestSearchEmptyQueryReturnsRecencyOrder(t *testing.T) {
	repo := &repoFake{matches: []domain.CaseMatch{
		{Document: domain.CaseDocument{ID: "case_002", Title: "B", Date: day("2023-01-01")}},
		{Document: domain.CaseDocument{ID: "case_001", Title: "A", Date: day("2024-03-15")}},
	}}
	uc := NewSearchUseCase(repo, defaultOptions())

	res, err := uc.Search(context.Background(), ports.RawSearchRequest{Page: "1", PerPage: "10"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 || len(res.Results) != 2 {
		t.Fatalf("expected total=2 with 2 results, got %d/%d", res.Total, len(res.Results))
	}
	if res.Results[0].ID != "case_001" || res.Results[1].ID != "case_002" {
		t.Fatalf("expected [case_001 case_002], got [%s %s]", res.Results[0].ID, res.Results[1].ID)
	}
}

func TestSearchInvalidPerPageSkipsStorage(t *testing.T) {
	repo := &repoFake{}
	uc := NewSearchUseCase(repo, defaultOptions())

	_, err := uc.Search(context.Background(), ports.RawSearchRequest{PerPage: "9999"})
	if err == nil || !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if repo.calls != 0 {
		t.Fatalf("expected no storage query, got %d calls", repo.calls)
	}
}

func TestSearchPageBeyondEndReturnsEmptyWithTotal(t *testing.T) {
	repo := &repoFake{matches: []domain.CaseMatch{
		{Document: domain.CaseDocument{ID: "case_001", Title: "A", Date: day("2024-01-01")}},
	}}
	uc := NewSearchUseCase(repo, defaultOptions())

	res, err := uc.Search(context.Background(), ports.RawSearchRequest{Page: "5", PerPage: "10"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 1 {
		t.Fatalf("expected total=1, got %d", res.Total)
	}
	if len(res.Results) != 0 {
		t.Fatalf("expected empty page past end, got %d results", len(res.Results))
	}
}

func TestSearchHugePageNumberReturnsEmptyWithTotal(t *testing.T) {
	repo := &repoFake{matches: []domain.CaseMatch{
		{Document: domain.CaseDocument{ID: "case_001", Title: "A", Date: day("2024-01-01")}},
	}}
	uc := NewSearchUseCase(repo, defaultOptions())

	res, err := uc.Search(context.Background(), ports.RawSearchRequest{
		Page:    "922337203685477580",
		PerPage: "100",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 1 {
		t.Fatalf("expected total=1, got %d", res.Total)
	}
	if len(res.Results) != 0 {
		t.Fatalf("expected empty page for huge page number, got %d results", len(res.Results))
	}
}

func TestSearchCourtFilterExcludesRegardlessOfRelevance(t *testing.T) {
	// The predicate is re-applied in process even if the storage layer
	// returned a row the pushdown should have excluded.
	repo := &repoFake{matches: []domain.CaseMatch{
		{Document: domain.CaseDocument{ID: "case_001", Title: "Constitutional law", Court: "Supreme Court", Date: day("2020-01-01")}, RawSignal: 0.1},
		{Document: domain.CaseDocument{ID: "case_002", Title: "Constitutional law", Court: "District Court", Date: day("2020-01-01")}, RawSignal: 0.9},
	}}
	uc := NewSearchUseCase(repo, defaultOptions())

	res, err := uc.Search(context.Background(), ports.RawSearchRequest{
		Text:  "constitutional",
		Court: "Supreme Court",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 1 || res.Results[0].ID != "case_001" {
		t.Fatalf("expected only the Supreme Court case, got %+v", res.Results)
	}
}

func TestSearchResultsSortedAndBounded(t *testing.T) {
	matches := make([]domain.CaseMatch, 0, 25)
	for i := 0; i < 25; i++ {
		matches = append(matches, domain.CaseMatch{
			Document:  domain.CaseDocument{ID: "case_" + string(rune('a'+i)), Title: "appeal ruling", Date: day("2020-01-01")},
			RawSignal: float64(i % 7),
		})
	}
	uc := NewSearchUseCase(&repoFake{matches: matches}, defaultOptions())

	res, err := uc.Search(context.Background(), ports.RawSearchRequest{Text: "appeal", PerPage: "10", Page: "2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Results) > 10 {
		t.Fatalf("page larger than per_page: %d", len(res.Results))
	}
	for i := 1; i < len(res.Results); i++ {
		prev, cur := res.Results[i-1], res.Results[i]
		if cur.Relevance > prev.Relevance {
			t.Fatalf("results not sorted by relevance desc at %d", i)
		}
		if cur.Relevance == prev.Relevance && cur.ID < prev.ID {
			t.Fatalf("tie not broken by id asc at %d", i)
		}
	}
	if res.Total != 25 {
		t.Fatalf("expected total=25, got %d", res.Total)
	}
}

func TestSearchStorageFailureSurfaces(t *testing.T) {
	repo := &repoFake{err: domain.WrapError(domain.ErrStorage, "search cases", errors.New("connection refused"))}
	uc := NewSearchUseCase(repo, defaultOptions())

	_, err := uc.Search(context.Background(), ports.RawSearchRequest{Text: "tax"})
	if err == nil || !domain.IsKind(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestSearchSnippetHighlight(t *testing.T) {
	repo := &repoFake{matches: []domain.CaseMatch{
		{Document: domain.CaseDocument{ID: "case_001", Title: "Tax appeal", Headnote: "A tax ruling.", Date: day("2020-01-01")}, RawSignal: 1},
	}}
	uc := NewSearchUseCase(repo, defaultOptions())

	res, err := uc.Search(context.Background(), ports.RawSearchRequest{Text: "tax", Highlight: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Results[0].Snippet, "<mark>tax</mark>") {
		t.Fatalf("expected highlighted snippet, got %q", res.Results[0].Snippet)
	}

	res, err = uc.Search(context.Background(), ports.RawSearchRequest{Text: "tax", Highlight: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(res.Results[0].Snippet, "<mark>") {
		t.Fatalf("expected plain snippet, got %q", res.Results[0].Snippet)
	}
}

func TestSearchRepeatedRequestsDeterministic(t *testing.T) {
	repo := &repoFake{matches: []domain.CaseMatch{
		{Document: domain.CaseDocument{ID: "case_003", Title: "appeal", Date: day("2021-01-01")}, RawSignal: 0.4},
		{Document: domain.CaseDocument{ID: "case_001", Title: "appeal", Date: day("2021-01-01")}, RawSignal: 0.4},
		{Document: domain.CaseDocument{ID: "case_002", Title: "appeal", Date: day("2022-01-01")}, RawSignal: 0.4},
	}}
	uc := NewSearchUseCase(repo, defaultOptions())
	req := ports.RawSearchRequest{Text: "appeal"}

	first, err := uc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := uc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range first.Results {
		if first.Results[i].ID != second.Results[i].ID {
			t.Fatalf("non-deterministic ordering at %d", i)
		}
	}
}
