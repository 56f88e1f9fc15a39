package usecase

import (
	"context"
	"reflect"
	"testing"

	"github.com/verdictio/caselaw-api/internal/core/domain"
)

func TestReaderGetByID(t *testing.T) {
	repo := &repoFake{byID: &domain.CaseDocument{ID: "case_001", Title: "Smith v. Jones"}}
	uc := NewCaseReaderUseCase(repo, nil)

	doc, err := uc.GetByID(context.Background(), "case_001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Smith v. Jones" {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestReaderGetByIDNotFound(t *testing.T) {
	uc := NewCaseReaderUseCase(&repoFake{}, nil)

	_, err := uc.GetByID(context.Background(), "missing")
	if err == nil || !domain.IsKind(err, domain.ErrCaseNotFound) {
		t.Fatalf("expected ErrCaseNotFound, got %v", err)
	}
}

func TestReaderCitationsWithoutGraphUsesStoredList(t *testing.T) {
	repo := &repoFake{byID: &domain.CaseDocument{
		ID:             "case_001",
		CitationsFound: []string{"410 U.S. 113"},
	}}
	uc := NewCaseReaderUseCase(repo, nil)

	citations, err := uc.Citations(context.Background(), "case_001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(citations.Cites, []string{"410 U.S. 113"}) {
		t.Fatalf("unexpected cites: %v", citations.Cites)
	}
	if citations.CitedBy == nil || len(citations.CitedBy) != 0 {
		t.Fatalf("expected empty cited_by without a graph, got %v", citations.CitedBy)
	}
}

func TestReaderCitationsPrefersGraph(t *testing.T) {
	repo := &repoFake{byID: &domain.CaseDocument{ID: "case_001", Citation: "1 Test 1"}}
	graph := &graphFake{recorded: map[string][]string{"case_001": {"410 U.S. 113"}}}
	uc := NewCaseReaderUseCase(repo, graph)

	citations, err := uc.Citations(context.Background(), "case_001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(citations.Cites, []string{"410 U.S. 113"}) {
		t.Fatalf("expected graph-backed cites, got %v", citations.Cites)
	}
}

func TestReaderCourts(t *testing.T) {
	repo := &repoFake{courts: []string{"District Court", "Supreme Court"}}
	uc := NewCaseReaderUseCase(repo, nil)

	courts, err := uc.Courts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(courts) != 2 || courts[1] != "Supreme Court" {
		t.Fatalf("unexpected courts: %v", courts)
	}
}
