package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/verdictio/caselaw-api/internal/core/domain"
)

const sheetName = "Cases"

var sheetHeader = []any{"ID", "Title", "Citation", "Court", "Date", "Year", "Judges", "Headnote"}

// SheetWriter renders case sets as XLSX workbooks for the export endpoint.
type SheetWriter struct{}

func NewSheetWriter() *SheetWriter {
	return &SheetWriter{}
}

func (w *SheetWriter) WriteCases(docs []domain.CaseDocument) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &sheetHeader); err != nil {
		return nil, fmt.Errorf("write header row: %w", err)
	}

	for i, doc := range docs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("row coordinates: %w", err)
		}

		date, year := "", ""
		if !doc.Date.IsZero() {
			date = doc.Date.Format("2006-01-02")
			year = strconv.Itoa(doc.Date.Year())
		}
		row := []any{
			doc.ID,
			doc.Title,
			doc.Citation,
			doc.Court,
			date,
			year,
			strings.Join(doc.Judges, "; "),
			doc.Headnote,
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write case row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
