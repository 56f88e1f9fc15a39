package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/verdictio/caselaw-api/internal/core/domain"
	"github.com/verdictio/caselaw-api/internal/core/ports"
)

const dateLayout = "2006-01-02"

// normalizeRequest turns the raw transport parameters into a validated
// SearchQuery. Validation failures never reach the storage layer.
func normalizeRequest(req ports.RawSearchRequest, perPageDefault, perPageMax int) (domain.SearchQuery, error) {
	fail := func(field string, err error) (domain.SearchQuery, error) {
		return domain.SearchQuery{}, domain.WrapError(domain.ErrInvalidInput, "normalize search request",
			fmt.Errorf("%s: %w", field, err))
	}

	page := 1
	if strings.TrimSpace(req.Page) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(req.Page))
		if err != nil {
			return fail("page", fmt.Errorf("not an integer: %q", req.Page))
		}
		page = n
	}
	if page < 1 {
		return fail("page", fmt.Errorf("must be >= 1, got %d", page))
	}

	perPage := perPageDefault
	if strings.TrimSpace(req.PerPage) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(req.PerPage))
		if err != nil {
			return fail("per_page", fmt.Errorf("not an integer: %q", req.PerPage))
		}
		perPage = n
	}
	if perPage < 1 || perPage > perPageMax {
		return fail("per_page", fmt.Errorf("must be between 1 and %d, got %d", perPageMax, perPage))
	}

	var filter domain.CaseFilter
	filter.Court = strings.TrimSpace(req.Court)

	if strings.TrimSpace(req.Year) != "" {
		year, err := strconv.Atoi(strings.TrimSpace(req.Year))
		if err != nil {
			return fail("year", fmt.Errorf("not an integer: %q", req.Year))
		}
		filter.Year = year
	}

	if strings.TrimSpace(req.DateFrom) != "" {
		from, err := time.Parse(dateLayout, strings.TrimSpace(req.DateFrom))
		if err != nil {
			return fail("date_from", fmt.Errorf("expected YYYY-MM-DD, got %q", req.DateFrom))
		}
		filter.DateFrom = from
	}
	if strings.TrimSpace(req.DateTo) != "" {
		to, err := time.Parse(dateLayout, strings.TrimSpace(req.DateTo))
		if err != nil {
			return fail("date_to", fmt.Errorf("expected YYYY-MM-DD, got %q", req.DateTo))
		}
		filter.DateTo = to
	}
	if !filter.DateFrom.IsZero() && !filter.DateTo.IsZero() && filter.DateFrom.After(filter.DateTo) {
		return fail("date_from", fmt.Errorf("must not be after date_to"))
	}

	text := strings.TrimSpace(req.Text)
	return domain.SearchQuery{
		Text:           text,
		NormalizedText: strings.ToLower(text),
		Filter:         filter,
		Page:           page,
		PerPage:        perPage,
		Highlight:      req.Highlight,
	}, nil
}
