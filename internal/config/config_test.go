package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPaginationDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PER_PAGE_DEFAULT", "")
	t.Setenv("PER_PAGE_MAX", "")

	cfg := Load()
	if cfg.PerPageDefault != 20 {
		t.Fatalf("expected default per_page 20, got %d", cfg.PerPageDefault)
	}
	if cfg.PerPageMax != 100 {
		t.Fatalf("expected per_page max 100, got %d", cfg.PerPageMax)
	}
	if cfg.ExportMaxRows != 10000 {
		t.Fatalf("expected export max rows 10000, got %d", cfg.ExportMaxRows)
	}
}

func TestLoadRankingWeightDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("RANK_WEIGHT_TEXT", "")
	t.Setenv("RANK_WEIGHT_FIELD", "")
	t.Setenv("RANK_WEIGHT_RECENCY", "")

	cfg := Load()
	if cfg.RankWeightText != 0.6 || cfg.RankWeightField != 0.3 || cfg.RankWeightRecency != 0.1 {
		t.Fatalf("unexpected default weights: %v %v %v",
			cfg.RankWeightText, cfg.RankWeightField, cfg.RankWeightRecency)
	}
}

func TestLoadParsesEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PER_PAGE_MAX", "50")
	t.Setenv("RANK_WEIGHT_RECENCY", "0.2")
	t.Setenv("API_RATE_LIMIT_RPS", "5")

	cfg := Load()
	if cfg.PerPageMax != 50 {
		t.Fatalf("expected per_page max 50, got %d", cfg.PerPageMax)
	}
	if cfg.RankWeightRecency != 0.2 {
		t.Fatalf("expected recency weight 0.2, got %v", cfg.RankWeightRecency)
	}
	if cfg.APIRateLimitRPS != 5 {
		t.Fatalf("expected rate limit rps 5, got %v", cfg.APIRateLimitRPS)
	}
}

func TestLoadAppliesYAMLOverlayWithEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "per_page_max: 30\nsnippet_max_chars: 150\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PER_PAGE_MAX", "40")
	t.Setenv("SNIPPET_MAX_CHARS", "")

	cfg := Load()
	if cfg.SnippetMaxChars != 150 {
		t.Fatalf("expected yaml snippet max 150, got %d", cfg.SnippetMaxChars)
	}
	if cfg.PerPageMax != 40 {
		t.Fatalf("expected env to win over yaml, got %d", cfg.PerPageMax)
	}
}
