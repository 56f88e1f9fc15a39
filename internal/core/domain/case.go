package domain

import "time"

// CaseDocument is a single decision in the corpus. Documents are written
// once by the loader and read-only everywhere else.
type CaseDocument struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Citation       string    `json:"citation,omitempty"`
	Court          string    `json:"court,omitempty"`
	Date           time.Time `json:"date,omitempty"`
	Judges         []string  `json:"judges,omitempty"`
	Headnote       string    `json:"headnote,omitempty"`
	FullText       string    `json:"full_text,omitempty"`
	CitationsFound []string  `json:"citations_found,omitempty"`
	LoadedAt       time.Time `json:"loaded_at,omitempty"`
}

// CaseFilter holds the structured (non-text) search filters. Zero values
// mean "not set".
type CaseFilter struct {
	Court    string
	Year     int
	DateFrom time.Time
	DateTo   time.Time
}

// SearchQuery is the canonical, validated form of a search request.
// Text is the raw query preserved for display; NormalizedText is the
// lower-cased, trimmed form used for matching.
type SearchQuery struct {
	Text           string
	NormalizedText string
	Filter         CaseFilter
	Page           int
	PerPage        int
	Highlight      bool
}

// CaseMatch is a candidate row returned by the storage layer: the document
// plus the engine's raw relevance signal (opaque, unnormalized).
type CaseMatch struct {
	Document  CaseDocument
	RawSignal float64
}

// ScoredResult is one ranked search hit.
type ScoredResult struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Citation  string  `json:"citation,omitempty"`
	Court     string  `json:"court,omitempty"`
	Date      string  `json:"date,omitempty"`
	Relevance float64 `json:"relevance"`
	Snippet   string  `json:"snippet,omitempty"`
}

// SearchResponse is the paginated result set. Results are sorted by
// descending relevance, ties broken by ascending document id.
type SearchResponse struct {
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalPages int            `json:"total_pages"`
	Results    []ScoredResult `json:"results"`
}

// CaseCitations describes the citation neighborhood of one case.
type CaseCitations struct {
	CaseID  string   `json:"case_id"`
	Cites   []string `json:"cites"`
	CitedBy []string `json:"cited_by"`
}
