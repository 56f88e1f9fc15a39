package ports

import (
	"context"

	"github.com/verdictio/caselaw-api/internal/core/domain"
)

// CaseRepository reads case documents from the relational store.
//
// Search must push the filter down into the storage query and return every
// matching row together with the engine's raw relevance signal; relevance
// ordering and pagination happen in the core.
type CaseRepository interface {
	Search(ctx context.Context, normalizedText string, filter domain.CaseFilter) ([]domain.CaseMatch, error)
	GetByID(ctx context.Context, id string) (*domain.CaseDocument, error)
	DistinctCourts(ctx context.Context) ([]string, error)
}

// CaseWriter persists case documents and worker-produced annotations.
type CaseWriter interface {
	Insert(ctx context.Context, doc *domain.CaseDocument) error
	SaveCitations(ctx context.Context, id string, citations []string) error
}

// MessageQueue carries case-loaded events from the loader to the worker.
type MessageQueue interface {
	PublishCaseLoaded(ctx context.Context, caseID string) error
	SubscribeCaseLoaded(ctx context.Context, handler func(context.Context, string) error) error
}

// CaseSheetWriter renders a case set into a spreadsheet document.
type CaseSheetWriter interface {
	WriteCases(docs []domain.CaseDocument) ([]byte, error)
}

// CitationGraph maintains the citation edge set. Implementations may be
// absent at runtime; callers must tolerate a nil graph. ownCitation is the
// case's own reporter citation, used to resolve incoming edges.
type CitationGraph interface {
	RecordCitations(ctx context.Context, caseID, ownCitation string, citations []string) error
	Neighborhood(ctx context.Context, caseID, ownCitation string) (*domain.CaseCitations, error)
}
