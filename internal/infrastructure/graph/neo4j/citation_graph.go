package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/verdictio/caselaw-api/internal/core/domain"
	"github.com/verdictio/caselaw-api/internal/infrastructure/resilience"
)

// CitationGraph mirrors extracted citations into Neo4j so the API can
// answer "cited by" questions the relational store cannot. Cases are
// nodes keyed by id; the references they emit are Citation nodes keyed
// by the citation text.
type CitationGraph struct {
	driver   neo4j.DriverWithContext
	executor *resilience.Executor
}

func New(ctx context.Context, uri, user, password string, executor *resilience.Executor) (*CitationGraph, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}
	return &CitationGraph{driver: driver, executor: executor}, nil
}

func (g *CitationGraph) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}

// RecordCitations replaces the case's outgoing CITES edges with the given
// set. The case's own citation string is kept on the node so reverse
// lookups can resolve references back to it.
func (g *CitationGraph) RecordCitations(ctx context.Context, caseID, ownCitation string, citations []string) error {
	write := func(ctx context.Context) error {
		session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
		defer session.Close(ctx)

		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			_, err := tx.Run(ctx, `
MERGE (c:Case {id: $case_id})
SET c.citation = $own_citation
WITH c
OPTIONAL MATCH (c)-[old:CITES]->(:Citation)
DELETE old
WITH DISTINCT c
UNWIND $citations AS ref
MERGE (t:Citation {ref: ref})
MERGE (c)-[:CITES]->(t)
`, map[string]any{
				"case_id":      caseID,
				"own_citation": ownCitation,
				"citations":    citations,
			})
			return nil, err
		})
		if err != nil {
			return fmt.Errorf("record citations for %s: %w", caseID, err)
		}
		return nil
	}

	var err error
	if g.executor != nil {
		err = g.executor.Execute(ctx, "neo4j.record_citations", write, nil)
	} else {
		err = write(ctx)
	}
	if err != nil {
		return domain.WrapError(domain.ErrStorage, "record citation edges", err)
	}
	return nil
}

// Neighborhood returns both directions for a case: the references it
// cites, and the ids of cases whose extracted citations resolve to this
// case's own citation string.
func (g *CitationGraph) Neighborhood(ctx context.Context, caseID, ownCitation string) (*domain.CaseCitations, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
OPTIONAL MATCH (:Case {id: $case_id})-[:CITES]->(out:Citation)
WITH collect(DISTINCT out.ref) AS cites
OPTIONAL MATCH (other:Case)-[:CITES]->(t:Citation)
WHERE $own_citation <> '' AND t.ref = $own_citation AND other.id <> $case_id
RETURN cites, collect(DISTINCT other.id) AS cited_by
`, map[string]any{
			"case_id":      caseID,
			"own_citation": ownCitation,
		})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}

		out := &domain.CaseCitations{CaseID: caseID, Cites: []string{}, CitedBy: []string{}}
		if len(records) > 0 {
			out.Cites = stringList(records[0].Values[0])
			out.CitedBy = stringList(records[0].Values[1])
		}
		return out, nil
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrStorage, "read citation neighborhood", err)
	}
	return result.(*domain.CaseCitations), nil
}

func stringList(value any) []string {
	raw, ok := value.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
