package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/verdictio/caselaw-api/internal/core/domain"
)

var idSanitizer = regexp.MustCompile(`[^a-z0-9]+`)

// ReadPDF extracts the plain text of a judgment PDF into a case document.
// The id and title are derived from the file name; structured fields
// (court, date, citation) are left for manual curation.
func ReadPDF(path string) (*domain.CaseDocument, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	textReader, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	var text strings.Builder
	if _, err := io.Copy(&text, textReader); err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	id := idSanitizer.ReplaceAllString(strings.ToLower(base), "_")
	id = strings.Trim(id, "_")
	if id == "" {
		return nil, fmt.Errorf("cannot derive case id from %q", path)
	}

	return &domain.CaseDocument{
		ID:       id,
		Title:    base,
		FullText: text.String(),
	}, nil
}
