package usecase

import (
	"context"
	"fmt"

	"github.com/verdictio/caselaw-api/internal/core/domain"
	"github.com/verdictio/caselaw-api/internal/core/ports"
)

// CaseReaderUseCase serves single-case retrieval and lookup utilities.
type CaseReaderUseCase struct {
	repo  ports.CaseRepository
	graph ports.CitationGraph
}

func NewCaseReaderUseCase(repo ports.CaseRepository, graph ports.CitationGraph) *CaseReaderUseCase {
	return &CaseReaderUseCase{repo: repo, graph: graph}
}

func (uc *CaseReaderUseCase) GetByID(ctx context.Context, id string) (*domain.CaseDocument, error) {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get case by id: %w", err)
	}
	return doc, nil
}

// Citations returns the citation neighborhood. Without a graph store the
// cited-by direction is unavailable and only the extracted outgoing
// citations are served.
func (uc *CaseReaderUseCase) Citations(ctx context.Context, id string) (*domain.CaseCitations, error) {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get case by id: %w", err)
	}

	if uc.graph != nil {
		neighborhood, err := uc.graph.Neighborhood(ctx, doc.ID, doc.Citation)
		if err != nil {
			return nil, fmt.Errorf("citation neighborhood: %w", err)
		}
		return neighborhood, nil
	}
	cites := doc.CitationsFound
	if cites == nil {
		cites = []string{}
	}
	return &domain.CaseCitations{CaseID: doc.ID, Cites: cites, CitedBy: []string{}}, nil
}

func (uc *CaseReaderUseCase) Courts(ctx context.Context) ([]string, error) {
	courts, err := uc.repo.DistinctCourts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courts: %w", err)
	}
	return courts, nil
}
