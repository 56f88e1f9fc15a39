package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/verdictio/caselaw-api/internal/core/domain"
	"github.com/verdictio/caselaw-api/internal/core/ports"
)

// Headnotes are truncated in tabular exports to keep rows readable.
const exportHeadnoteMax = 500

var exportHeader = []string{"id", "title", "citation", "court", "date", "year", "judges", "headnote"}

// ExportUseCase produces bulk downloads of a filtered, ranked case set.
// It shares the search pipeline so exports see exactly what search sees.
type ExportUseCase struct {
	search  *SearchUseCase
	sheets  ports.CaseSheetWriter
	maxRows int
}

func NewExportUseCase(search *SearchUseCase, sheets ports.CaseSheetWriter, maxRows int) *ExportUseCase {
	if maxRows <= 0 {
		maxRows = 10000
	}
	return &ExportUseCase{search: search, sheets: sheets, maxRows: maxRows}
}

func (uc *ExportUseCase) ExportCSV(ctx context.Context, req ports.RawSearchRequest, limit int) ([]byte, int, error) {
	docs, err := uc.fetch(ctx, req, limit)
	if err != nil {
		return nil, 0, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, 0, fmt.Errorf("write csv header: %w", err)
	}
	for _, doc := range docs {
		if err := w.Write(exportRow(doc)); err != nil {
			return nil, 0, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, 0, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), len(docs), nil
}

func (uc *ExportUseCase) ExportJSONL(ctx context.Context, req ports.RawSearchRequest, limit int) ([]byte, int, error) {
	docs, err := uc.fetch(ctx, req, limit)
	if err != nil {
		return nil, 0, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		record := map[string]any{
			"id":       doc.ID,
			"title":    doc.Title,
			"citation": doc.Citation,
			"court":    doc.Court,
			"date":     formatDate(doc),
			"year":     yearOf(doc),
			"judges":   doc.Judges,
			"headnote": doc.Headnote,
		}
		if err := enc.Encode(record); err != nil {
			return nil, 0, fmt.Errorf("encode jsonl record: %w", err)
		}
	}
	return buf.Bytes(), len(docs), nil
}

func (uc *ExportUseCase) ExportXLSX(ctx context.Context, req ports.RawSearchRequest, limit int) ([]byte, int, error) {
	docs, err := uc.fetch(ctx, req, limit)
	if err != nil {
		return nil, 0, err
	}
	data, err := uc.sheets.WriteCases(docs)
	if err != nil {
		return nil, 0, fmt.Errorf("write xlsx: %w", err)
	}
	return data, len(docs), nil
}

// fetch runs the search pipeline without pagination and truncates the
// ranked set at the export row cap.
func (uc *ExportUseCase) fetch(ctx context.Context, req ports.RawSearchRequest, limit int) ([]domain.CaseDocument, error) {
	req.Page = ""
	req.PerPage = ""

	query, err := normalizeRequest(req, uc.search.opts.PerPageDefault, uc.search.opts.PerPageMax)
	if err != nil {
		return nil, err
	}

	scored, err := uc.search.rankedCandidates(ctx, query)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > uc.maxRows {
		limit = uc.maxRows
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}

	docs := make([]domain.CaseDocument, 0, len(scored))
	for _, s := range scored {
		docs = append(docs, s.doc)
	}
	return docs, nil
}

func exportRow(doc domain.CaseDocument) []string {
	headnote := doc.Headnote
	if len(headnote) > exportHeadnoteMax {
		headnote = headnote[:exportHeadnoteMax]
	}
	year := ""
	if y := yearOf(doc); y != 0 {
		year = fmt.Sprintf("%d", y)
	}
	return []string{
		doc.ID,
		doc.Title,
		doc.Citation,
		doc.Court,
		formatDate(doc),
		year,
		strings.Join(doc.Judges, "; "),
		headnote,
	}
}

func formatDate(doc domain.CaseDocument) string {
	if doc.Date.IsZero() {
		return ""
	}
	return doc.Date.Format(dateLayout)
}

func yearOf(doc domain.CaseDocument) int {
	if doc.Date.IsZero() {
		return 0
	}
	return doc.Date.Year()
}
