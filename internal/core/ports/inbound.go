package ports

import (
	"context"

	"github.com/verdictio/caselaw-api/internal/core/domain"
)

// RawSearchRequest is the unvalidated parameter set as it arrives from the
// transport layer. All fields are raw strings except Highlight, which
// transports default to true.
type RawSearchRequest struct {
	Text      string
	Court     string
	Year      string
	DateFrom  string
	DateTo    string
	Page      string
	PerPage   string
	Highlight bool
}

// CaseSearcher is the inbound contract for the search pipeline.
type CaseSearcher interface {
	Search(ctx context.Context, req RawSearchRequest) (*domain.SearchResponse, error)
}

// CaseReader is the inbound read model for single-case retrieval.
type CaseReader interface {
	GetByID(ctx context.Context, id string) (*domain.CaseDocument, error)
	Citations(ctx context.Context, id string) (*domain.CaseCitations, error)
	Courts(ctx context.Context) ([]string, error)
}

// CaseExporter produces bulk downloads of filtered case sets.
type CaseExporter interface {
	ExportCSV(ctx context.Context, req RawSearchRequest, limit int) ([]byte, int, error)
	ExportJSONL(ctx context.Context, req RawSearchRequest, limit int) ([]byte, int, error)
	ExportXLSX(ctx context.Context, req RawSearchRequest, limit int) ([]byte, int, error)
}

// CaseLoader ingests case documents produced by the data-loading collaborator.
type CaseLoader interface {
	Load(ctx context.Context, doc *domain.CaseDocument) error
}

// CitationProcessor is the worker-side contract for citation extraction.
// ProcessByID returns the number of citations found.
type CitationProcessor interface {
	ProcessByID(ctx context.Context, caseID string) (int, error)
}
