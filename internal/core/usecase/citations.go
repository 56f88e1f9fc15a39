package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/verdictio/caselaw-api/internal/core/ports"
)

// Recognized citation shapes: reporter series ("410 U.S. 113",
// "347 F.2d 394") and neutral citations ("[2020] UKSC 12").
var citationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{1,4}\s+[A-Z][A-Za-z.]*(?:\s?(?:2d|3d|4th|5th))?\s+\d{1,5}\b`),
	regexp.MustCompile(`\[\d{4}\]\s+[A-Z]{2,}(?:\s+[A-Za-z]+)?\s+\d{1,5}\b`),
}

// CitationUseCase is the worker-side pipeline: pull the loaded case, scan
// its text for citations, persist them, and mirror the edges into the
// citation graph when one is configured.
type CitationUseCase struct {
	repo   ports.CaseRepository
	writer ports.CaseWriter
	graph  ports.CitationGraph
}

func NewCitationUseCase(repo ports.CaseRepository, writer ports.CaseWriter, graph ports.CitationGraph) *CitationUseCase {
	return &CitationUseCase{repo: repo, writer: writer, graph: graph}
}

func (uc *CitationUseCase) ProcessByID(ctx context.Context, caseID string) (int, error) {
	doc, err := uc.repo.GetByID(ctx, caseID)
	if err != nil {
		return 0, fmt.Errorf("fetch case for citation scan: %w", err)
	}

	citations := extractCitations(doc.FullText+" "+doc.Headnote, doc.Citation)

	if err := uc.writer.SaveCitations(ctx, doc.ID, citations); err != nil {
		return 0, fmt.Errorf("save citations: %w", err)
	}

	if uc.graph != nil && len(citations) > 0 {
		if err := uc.graph.RecordCitations(ctx, doc.ID, doc.Citation, citations); err != nil {
			return 0, fmt.Errorf("record citation edges: %w", err)
		}
	}
	return len(citations), nil
}

// extractCitations returns citations found in text, deduplicated in order
// of first appearance. The document's own citation is excluded.
func extractCitations(text, ownCitation string) []string {
	own := strings.TrimSpace(ownCitation)
	seen := make(map[string]struct{})
	out := make([]string, 0, 8)

	for _, pattern := range citationPatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			match = strings.TrimSpace(match)
			if match == "" || match == own {
				continue
			}
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			out = append(out, match)
		}
	}
	return out
}
