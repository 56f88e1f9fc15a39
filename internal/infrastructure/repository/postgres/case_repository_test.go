package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/verdictio/caselaw-api/internal/core/domain"
)

func newMockRepo(t *testing.T) (*CaseRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("open sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewCaseRepository(db), mock
}

func caseRows(withRank bool) *sqlmock.Rows {
	columns := []string{"id", "title", "citation", "court", "date", "judges", "headnote", "full_text", "citations_found", "loaded_at"}
	if withRank {
		columns = append(columns, "raw_rank")
	}
	return sqlmock.NewRows(columns)
}

func TestSearchReturnsMatchesWithRawSignal(t *testing.T) {
	repo, mock := newMockRepo(t)

	loaded := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rows := caseRows(true).
		AddRow("case_001", "Smith v. Jones", "410 U.S. 113", "Supreme Court",
			time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC),
			[]byte(`["Judge A"]`), "A headnote.", "Full text.", []byte(`["347 F.2d 394"]`), loaded, 0.42).
		AddRow("case_002", "Doe v. Roe", "", "", nil,
			[]byte(`[]`), "", "", []byte(`[]`), loaded, 0.0)

	mock.ExpectQuery(`SELECT id, title`).
		WithArgs("smith").
		WillReturnRows(rows)

	matches, err := repo.Search(context.Background(), "smith", domain.CaseFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].RawSignal != 0.42 {
		t.Fatalf("expected raw signal 0.42, got %v", matches[0].RawSignal)
	}
	if matches[0].Document.Judges[0] != "Judge A" {
		t.Fatalf("judges not decoded: %v", matches[0].Document.Judges)
	}
	if !matches[1].Document.Date.IsZero() {
		t.Fatalf("expected zero date for NULL column, got %v", matches[1].Document.Date)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSearchPushesFiltersDown(t *testing.T) {
	repo, mock := newMockRepo(t)

	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`court ILIKE`).
		WithArgs("tax", "High Court", 2021, from, to).
		WillReturnRows(caseRows(true))

	_, err := repo.Search(context.Background(), "tax", domain.CaseFilter{
		Court:    "High Court",
		Year:     2021,
		DateFrom: from,
		DateTo:   to,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(caseRows(false))

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil || !domain.IsKind(err, domain.ErrCaseNotFound) {
		t.Fatalf("expected ErrCaseNotFound, got %v", err)
	}
}

func TestGetByIDDecodesDocument(t *testing.T) {
	repo, mock := newMockRepo(t)

	loaded := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`WHERE id = \$1`).
		WithArgs("case_001").
		WillReturnRows(caseRows(false).AddRow(
			"case_001", "Smith v. Jones", "410 U.S. 113", "Supreme Court",
			time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC),
			[]byte(`["Judge A","Judge B"]`), "Headnote.", "Text.", []byte(`["1 Test 1"]`), loaded))

	doc, err := repo.GetByID(context.Background(), "case_001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Smith v. Jones" || len(doc.Judges) != 2 || doc.CitationsFound[0] != "1 Test 1" {
		t.Fatalf("document not decoded: %+v", doc)
	}
}

func TestDistinctCourts(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT DISTINCT court`).
		WillReturnRows(sqlmock.NewRows([]string{"court"}).
			AddRow("District Court").
			AddRow("Supreme Court"))

	courts, err := repo.DistinctCourts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(courts) != 2 || courts[0] != "District Court" {
		t.Fatalf("unexpected courts: %v", courts)
	}
}

func TestInsertUpsertsDocument(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`INSERT INTO cases`).
		WithArgs("case_001", "Smith v. Jones", "410 U.S. 113", "Supreme Court",
			sqlmock.AnyArg(), []byte(`["Judge A"]`), "Headnote.", "Text.", []byte(`[]`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), &domain.CaseDocument{
		ID:       "case_001",
		Title:    "Smith v. Jones",
		Citation: "410 U.S. 113",
		Court:    "Supreme Court",
		Date:     time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC),
		Judges:   []string{"Judge A"},
		Headnote: "Headnote.",
		FullText: "Text.",
		LoadedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSaveCitationsUnknownCase(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE cases`).
		WithArgs("missing", []byte(`["410 U.S. 113"]`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveCitations(context.Background(), "missing", []string{"410 U.S. 113"})
	if err == nil || !domain.IsKind(err, domain.ErrCaseNotFound) {
		t.Fatalf("expected ErrCaseNotFound, got %v", err)
	}
}
