package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/verdictio/caselaw-api/internal/config"
	"github.com/verdictio/caselaw-api/internal/core/ports"
	"github.com/verdictio/caselaw-api/internal/core/usecase"
	"github.com/verdictio/caselaw-api/internal/infrastructure/export"
	graphneo4j "github.com/verdictio/caselaw-api/internal/infrastructure/graph/neo4j"
	"github.com/verdictio/caselaw-api/internal/infrastructure/queue/nats"
	"github.com/verdictio/caselaw-api/internal/infrastructure/repository/postgres"
	"github.com/verdictio/caselaw-api/internal/infrastructure/resilience"
)

// App wires the storage, broker and graph adapters into the use cases all
// three binaries share. The citation graph is optional: without a Neo4j
// endpoint configured the cited-by direction degrades gracefully.
type App struct {
	Config config.Config

	Queue      ports.MessageQueue
	Repo       ports.CaseRepository
	SearchUC   ports.CaseSearcher
	ReaderUC   ports.CaseReader
	ExportUC   ports.CaseExporter
	LoadUC     ports.CaseLoader
	CitationUC ports.CitationProcessor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewCaseRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	var graph ports.CitationGraph
	var graphClose func()
	if cfg.Neo4jURI != "" {
		citationGraph, err := graphneo4j.New(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, executor)
		if err != nil {
			// The relational store still serves outgoing citations.
			slog.Warn("citation_graph_unavailable", "error", err)
		} else {
			graph = citationGraph
			graphClose = func() { _ = citationGraph.Close(context.Background()) }
		}
	}

	searchUC := usecase.NewSearchUseCase(repo, usecase.SearchOptions{
		PerPageDefault:  cfg.PerPageDefault,
		PerPageMax:      cfg.PerPageMax,
		SnippetMaxChars: cfg.SnippetMaxChars,
		WeightText:      cfg.RankWeightText,
		WeightField:     cfg.RankWeightField,
		WeightRecency:   cfg.RankWeightRecency,
	})
	readerUC := usecase.NewCaseReaderUseCase(repo, graph)
	exportUC := usecase.NewExportUseCase(searchUC, export.NewSheetWriter(), cfg.ExportMaxRows)
	loadUC := usecase.NewLoadCaseUseCase(repo, queue)
	citationUC := usecase.NewCitationUseCase(repo, repo, graph)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		SearchUC:   searchUC,
		ReaderUC:   readerUC,
		ExportUC:   exportUC,
		LoadUC:     loadUC,
		CitationUC: citationUC,

		closeFn: func() {
			queue.Close()
			if graphClose != nil {
				graphClose()
			}
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
