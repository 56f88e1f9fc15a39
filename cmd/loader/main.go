package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/verdictio/caselaw-api/internal/bootstrap"
	"github.com/verdictio/caselaw-api/internal/config"
	"github.com/verdictio/caselaw-api/internal/core/domain"
	"github.com/verdictio/caselaw-api/internal/infrastructure/loader"
	"github.com/verdictio/caselaw-api/internal/observability/logging"
)

// The loader ingests a corpus file (JSON array or JSON lines) or a
// directory of judgment PDFs, upserting each case and publishing a
// case-loaded event for the citation worker.
func main() {
	var (
		corpusPath = flag.String("corpus", "", "path to a JSON/JSONL corpus file")
		pdfDir     = flag.String("pdf-dir", "", "directory of judgment PDFs to ingest")
	)
	flag.Parse()

	cfg := config.Load()
	logger := logging.NewJSONLogger("loader", cfg.LogLevel)
	slog.SetDefault(logger)

	if *corpusPath == "" && *pdfDir == "" {
		slog.Error("no_input", "hint", "pass -corpus or -pdf-dir")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	loaded, failed := 0, 0
	load := func(doc *domain.CaseDocument) {
		if err := app.LoadUC.Load(ctx, doc); err != nil {
			slog.Error("case_load_failed", "case_id", doc.ID, "error", err)
			failed++
			return
		}
		loaded++
	}

	if *corpusPath != "" {
		docs, err := loader.ReadCorpus(*corpusPath)
		if err != nil {
			slog.Error("corpus_read_failed", "path", *corpusPath, "error", err)
			os.Exit(1)
		}
		for i := range docs {
			if ctx.Err() != nil {
				break
			}
			load(&docs[i])
		}
	}

	if *pdfDir != "" {
		entries, err := os.ReadDir(*pdfDir)
		if err != nil {
			slog.Error("pdf_dir_read_failed", "path", *pdfDir, "error", err)
			os.Exit(1)
		}
		for _, entry := range entries {
			if ctx.Err() != nil {
				break
			}
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
				continue
			}
			doc, err := loader.ReadPDF(filepath.Join(*pdfDir, entry.Name()))
			if err != nil {
				slog.Error("pdf_read_failed", "file", entry.Name(), "error", err)
				failed++
				continue
			}
			load(doc)
		}
	}

	slog.Info("load_complete", "loaded", loaded, "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}
