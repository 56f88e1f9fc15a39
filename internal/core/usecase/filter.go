package usecase

import (
	"strings"

	"github.com/verdictio/caselaw-api/internal/core/domain"
)

// casePredicate is the in-process form of a compiled filter. The Postgres
// repository compiles the same CaseFilter into WHERE clauses; both forms
// must accept exactly the same documents.
type casePredicate struct {
	court    string
	year     int
	dateFrom string
	dateTo   string
}

// compileFilter builds the logical AND of the set filters. An empty filter
// compiles to a predicate that accepts everything.
func compileFilter(filter domain.CaseFilter) casePredicate {
	p := casePredicate{
		court: strings.ToLower(strings.TrimSpace(filter.Court)),
		year:  filter.Year,
	}
	if !filter.DateFrom.IsZero() {
		p.dateFrom = filter.DateFrom.Format(dateLayout)
	}
	if !filter.DateTo.IsZero() {
		p.dateTo = filter.DateTo.Format(dateLayout)
	}
	return p
}

func (p casePredicate) Matches(doc domain.CaseDocument) bool {
	if p.court != "" && !strings.Contains(strings.ToLower(doc.Court), p.court) {
		return false
	}
	if p.year != 0 && doc.Date.Year() != p.year {
		return false
	}
	if p.dateFrom != "" || p.dateTo != "" {
		if doc.Date.IsZero() {
			return false
		}
		day := doc.Date.Format(dateLayout)
		if p.dateFrom != "" && day < p.dateFrom {
			return false
		}
		if p.dateTo != "" && day > p.dateTo {
			return false
		}
	}
	return true
}
