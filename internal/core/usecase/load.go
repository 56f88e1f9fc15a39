package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verdictio/caselaw-api/internal/core/domain"
	"github.com/verdictio/caselaw-api/internal/core/ports"
)

// LoadCaseUseCase ingests case documents from the loading collaborator and
// announces them to the citation worker.
type LoadCaseUseCase struct {
	writer ports.CaseWriter
	queue  ports.MessageQueue
}

func NewLoadCaseUseCase(writer ports.CaseWriter, queue ports.MessageQueue) *LoadCaseUseCase {
	return &LoadCaseUseCase{writer: writer, queue: queue}
}

func (uc *LoadCaseUseCase) Load(ctx context.Context, doc *domain.CaseDocument) error {
	if err := validateCase(doc); err != nil {
		return err
	}

	doc.ID = strings.TrimSpace(doc.ID)
	doc.Title = strings.TrimSpace(doc.Title)
	doc.LoadedAt = time.Now().UTC()

	if err := uc.writer.Insert(ctx, doc); err != nil {
		return fmt.Errorf("insert case: %w", err)
	}

	if uc.queue != nil {
		if err := uc.queue.PublishCaseLoaded(ctx, doc.ID); err != nil {
			return fmt.Errorf("publish case loaded event: %w", err)
		}
	}
	return nil
}

func validateCase(doc *domain.CaseDocument) error {
	if doc == nil {
		return domain.WrapError(domain.ErrInvalidInput, "load case", errors.New("nil document"))
	}
	if strings.TrimSpace(doc.ID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "load case", errors.New("id is required"))
	}
	if strings.TrimSpace(doc.Title) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "load case", fmt.Errorf("title is required for %s", doc.ID))
	}
	return nil
}
