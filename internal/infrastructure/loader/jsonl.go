package loader

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/verdictio/caselaw-api/internal/core/domain"
)

// caseRecord is the on-disk shape of a case in a corpus file. Dates are
// ISO strings; missing or malformed dates leave the document undated.
type caseRecord struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Citation string   `json:"citation"`
	Court    string   `json:"court"`
	Date     string   `json:"date"`
	Judges   []string `json:"judges"`
	Headnote string   `json:"headnote"`
	FullText string   `json:"full_text"`
}

// ReadCorpus parses a corpus file of case documents. Both a single JSON
// array and JSON-lines (one object per line) are accepted.
func ReadCorpus(path string) ([]domain.CaseDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	return parseCorpus(f)
}

func parseCorpus(r io.Reader) ([]domain.CaseDocument, error) {
	reader := bufio.NewReader(r)

	first, err := firstNonSpace(reader)
	if err != nil {
		if err == io.EOF {
			return []domain.CaseDocument{}, nil
		}
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	if first == '[' {
		var records []caseRecord
		if err := json.NewDecoder(reader).Decode(&records); err != nil {
			return nil, fmt.Errorf("decode corpus array: %w", err)
		}
		return toDocuments(records)
	}

	out := make([]domain.CaseDocument, 0)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var record caseRecord
		if err := json.Unmarshal([]byte(text), &record); err != nil {
			return nil, fmt.Errorf("decode corpus line %d: %w", line, err)
		}
		doc, err := toDocument(record)
		if err != nil {
			return nil, fmt.Errorf("corpus line %d: %w", line, err)
		}
		out = append(out, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan corpus: %w", err)
	}
	return out, nil
}

// firstNonSpace peeks past leading whitespace without consuming the first
// significant byte.
func firstNonSpace(reader *bufio.Reader) (byte, error) {
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return 0, err
		}
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			continue
		}
		if err := reader.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}

func toDocuments(records []caseRecord) ([]domain.CaseDocument, error) {
	out := make([]domain.CaseDocument, 0, len(records))
	for i, record := range records {
		doc, err := toDocument(record)
		if err != nil {
			return nil, fmt.Errorf("corpus record %d: %w", i, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

func toDocument(record caseRecord) (domain.CaseDocument, error) {
	if strings.TrimSpace(record.ID) == "" {
		return domain.CaseDocument{}, fmt.Errorf("missing id")
	}

	doc := domain.CaseDocument{
		ID:       strings.TrimSpace(record.ID),
		Title:    strings.TrimSpace(record.Title),
		Citation: strings.TrimSpace(record.Citation),
		Court:    strings.TrimSpace(record.Court),
		Judges:   record.Judges,
		Headnote: record.Headnote,
		FullText: record.FullText,
	}
	if record.Date != "" {
		date, err := time.Parse("2006-01-02", record.Date)
		if err != nil {
			return domain.CaseDocument{}, fmt.Errorf("parse date %q: %w", record.Date, err)
		}
		doc.Date = date
	}
	return doc, nil
}
