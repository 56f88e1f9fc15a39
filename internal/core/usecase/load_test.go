package usecase

import (
	"context"
	"testing"

	"github.com/verdictio/caselaw-api/internal/core/domain"
)

type queueFake struct {
	published []string
}

func (f *queueFake) PublishCaseLoaded(_ context.Context, caseID string) error {
	f.published = append(f.published, caseID)
	return nil
}

func (f *queueFake) SubscribeCaseLoaded(context.Context, func(context.Context, string) error) error {
	return nil
}

func TestLoadInsertsAndPublishes(t *testing.T) {
	writer := &writerFake{}
	queue := &queueFake{}
	uc := NewLoadCaseUseCase(writer, queue)

	doc := &domain.CaseDocument{ID: " case_001 ", Title: " Marbury v. Madison "}
	if err := uc.Load(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(writer.inserted) != 1 || writer.inserted[0].ID != "case_001" {
		t.Fatalf("expected trimmed insert, got %+v", writer.inserted)
	}
	if writer.inserted[0].LoadedAt.IsZero() {
		t.Fatalf("expected loaded_at to be set")
	}
	if len(queue.published) != 1 || queue.published[0] != "case_001" {
		t.Fatalf("expected case-loaded event, got %v", queue.published)
	}
}

func TestLoadWithoutQueue(t *testing.T) {
	writer := &writerFake{}
	uc := NewLoadCaseUseCase(writer, nil)

	err := uc.Load(context.Background(), &domain.CaseDocument{ID: "case_002", Title: "T"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(writer.inserted) != 1 {
		t.Fatalf("expected insert without queue, got %d", len(writer.inserted))
	}
}

func TestLoadRejectsIncompleteDocuments(t *testing.T) {
	uc := NewLoadCaseUseCase(&writerFake{}, nil)

	for _, doc := range []*domain.CaseDocument{
		nil,
		{Title: "missing id"},
		{ID: "case_003"},
	} {
		err := uc.Load(context.Background(), doc)
		if err == nil || !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", doc, err)
		}
	}
}
