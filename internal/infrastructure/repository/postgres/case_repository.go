package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/verdictio/caselaw-api/internal/core/domain"
)

// caseVector is the document vector the full-text index and the rank
// signal are both computed from. It must stay in sync with the GIN index
// in EnsureSchema.
const caseVector = `to_tsvector('english', coalesce(title,'') || ' ' || coalesce(headnote,'') || ' ' || coalesce(full_text,''))`

const caseColumns = `id, title, coalesce(citation,''), coalesce(court,''), date, judges, coalesce(headnote,''), coalesce(full_text,''), citations_found, loaded_at`

type CaseRepository struct {
	db *sql.DB
}

func NewCaseRepository(db *sql.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *CaseRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker/loader startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026081501)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	query := `
CREATE TABLE IF NOT EXISTS cases (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	citation TEXT,
	court TEXT,
	date DATE,
	judges JSONB NOT NULL DEFAULT '[]'::jsonb,
	headnote TEXT,
	full_text TEXT,
	citations_found JSONB NOT NULL DEFAULT '[]'::jsonb,
	loaded_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cases_court ON cases(court);
CREATE INDEX IF NOT EXISTS idx_cases_date ON cases(date DESC);
CREATE INDEX IF NOT EXISTS idx_cases_fts ON cases USING GIN (` + caseVector + `);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Search pushes the compiled filter down into the WHERE clause and returns
// every match with the engine's raw ts_rank signal. Relevance ordering and
// pagination are the caller's concern; rows come back ordered by id so the
// result set is stable.
func (r *CaseRepository) Search(ctx context.Context, normalizedText string, filter domain.CaseFilter) ([]domain.CaseMatch, error) {
	where, args := searchConditions(normalizedText, filter)

	query := `
SELECT ` + caseColumns + `,
	ts_rank(` + caseVector + `, plainto_tsquery('english', $1)) AS raw_rank
FROM cases
WHERE ` + where + `
ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStorage, "search cases", err)
	}
	defer rows.Close()

	out := make([]domain.CaseMatch, 0)
	for rows.Next() {
		var match domain.CaseMatch
		doc, rank, err := scanCase(rows, true)
		if err != nil {
			return nil, domain.WrapError(domain.ErrStorage, "scan case row", err)
		}
		match.Document = *doc
		match.RawSignal = rank
		out = append(out, match)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrStorage, "iterate case rows", err)
	}
	return out, nil
}

// searchConditions builds the pushdown WHERE clause. $1 is always the
// normalized query text so the rank expression can reuse it; structured
// filters append further placeholders.
func searchConditions(normalizedText string, filter domain.CaseFilter) (string, []any) {
	conditions := []string{
		`($1 = '' OR ` + caseVector + ` @@ plainto_tsquery('english', $1)
		OR title ILIKE '%' || $1 || '%' OR citation ILIKE '%' || $1 || '%')`,
	}
	args := []any{normalizedText}

	next := func() string { return "$" + strconv.Itoa(len(args)+1) }

	if filter.Court != "" {
		conditions = append(conditions, `court ILIKE '%' || `+next()+` || '%'`)
		args = append(args, filter.Court)
	}
	if filter.Year != 0 {
		conditions = append(conditions, `EXTRACT(YEAR FROM date)::int = `+next())
		args = append(args, filter.Year)
	}
	if !filter.DateFrom.IsZero() {
		conditions = append(conditions, `date >= `+next())
		args = append(args, filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		conditions = append(conditions, `date <= `+next())
		args = append(args, filter.DateTo)
	}

	return strings.Join(conditions, "\n\tAND "), args
}

func (r *CaseRepository) GetByID(ctx context.Context, id string) (*domain.CaseDocument, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+caseColumns+`
FROM cases
WHERE id = $1
`, id)

	doc, _, err := scanCase(row, false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrCaseNotFound, "get case by id", fmt.Errorf("id=%s", id))
		}
		return nil, domain.WrapError(domain.ErrStorage, "get case by id", err)
	}
	return doc, nil
}

func (r *CaseRepository) DistinctCourts(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT DISTINCT court
FROM cases
WHERE court IS NOT NULL AND court <> ''
ORDER BY court
`)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStorage, "list courts", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var court string
		if err := rows.Scan(&court); err != nil {
			return nil, domain.WrapError(domain.ErrStorage, "scan court", err)
		}
		out = append(out, court)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrStorage, "iterate courts", err)
	}
	return out, nil
}

// Insert upserts by id so loader reruns are idempotent.
func (r *CaseRepository) Insert(ctx context.Context, doc *domain.CaseDocument) error {
	judgesJSON, err := json.Marshal(orEmpty(doc.Judges))
	if err != nil {
		return fmt.Errorf("marshal judges: %w", err)
	}
	citationsJSON, err := json.Marshal(orEmpty(doc.CitationsFound))
	if err != nil {
		return fmt.Errorf("marshal citations: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO cases (id, title, citation, court, date, judges, headnote, full_text, citations_found, loaded_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
	title = EXCLUDED.title,
	citation = EXCLUDED.citation,
	court = EXCLUDED.court,
	date = EXCLUDED.date,
	judges = EXCLUDED.judges,
	headnote = EXCLUDED.headnote,
	full_text = EXCLUDED.full_text,
	loaded_at = EXCLUDED.loaded_at
`,
		doc.ID, doc.Title, nullString(doc.Citation), nullString(doc.Court), nullDate(doc.Date),
		judgesJSON, nullString(doc.Headnote), nullString(doc.FullText), citationsJSON, doc.LoadedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrStorage, "insert case", err)
	}
	return nil
}

func (r *CaseRepository) SaveCitations(ctx context.Context, id string, citations []string) error {
	citationsJSON, err := json.Marshal(orEmpty(citations))
	if err != nil {
		return fmt.Errorf("marshal citations: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE cases
SET citations_found = $2
WHERE id = $1
`, id, citationsJSON)
	if err != nil {
		return domain.WrapError(domain.ErrStorage, "save citations", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return domain.WrapError(domain.ErrStorage, "save citations rows affected", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrCaseNotFound, "save citations", fmt.Errorf("id=%s", id))
	}
	return nil
}

type caseScanner interface {
	Scan(dest ...any) error
}

func scanCase(row caseScanner, withRank bool) (*domain.CaseDocument, float64, error) {
	var doc domain.CaseDocument
	var date sql.NullTime
	var judgesRaw, citationsRaw []byte
	var rank float64

	dest := []any{
		&doc.ID, &doc.Title, &doc.Citation, &doc.Court, &date,
		&judgesRaw, &doc.Headnote, &doc.FullText, &citationsRaw, &doc.LoadedAt,
	}
	if withRank {
		dest = append(dest, &rank)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, 0, err
	}

	if date.Valid {
		doc.Date = date.Time
	}
	if len(judgesRaw) > 0 {
		if err := json.Unmarshal(judgesRaw, &doc.Judges); err != nil {
			return nil, 0, fmt.Errorf("unmarshal judges: %w", err)
		}
	}
	if len(citationsRaw) > 0 {
		if err := json.Unmarshal(citationsRaw, &doc.CitationsFound); err != nil {
			return nil, 0, fmt.Errorf("unmarshal citations: %w", err)
		}
	}
	return &doc, rank, nil
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
