package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"verso/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[vector_index]
base_url = "http://127.0.0.1:8531"
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("config file should have been found")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Workers.Count != 4 {
		t.Fatalf("workers.count = %d", cfg.Workers.Count)
	}
	if cfg.Pipeline.DefaultChunkSize != 800 || cfg.Pipeline.ChunkOverlap != 80 {
		t.Fatalf("pipeline defaults = %d/%d", cfg.Pipeline.DefaultChunkSize, cfg.Pipeline.ChunkOverlap)
	}
	if cfg.Intake.DefaultKnowledgeBase != "default" {
		t.Fatalf("default knowledge base = %q", cfg.Intake.DefaultKnowledgeBase)
	}
	if !filepath.IsAbs(cfg.Paths.DataDir) {
		t.Fatalf("data_dir not expanded: %q", cfg.Paths.DataDir)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("logging defaults = %s/%s", cfg.Logging.Format, cfg.Logging.Level)
	}
}

func TestLoadRequiresVectorIndexURL(t *testing.T) {
	path := writeConfig(t, "")

	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "vector_index.base_url is required") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadRejectsNonHTTPBaseURL(t *testing.T) {
	path := writeConfig(t, `
[vector_index]
base_url = "ftp://index.local"
`)

	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "must start with http") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadNormalizesIntakeExtensions(t *testing.T) {
	path := writeConfig(t, `
[vector_index]
base_url = "http://127.0.0.1:8531"

[intake]
extensions = ["MD", " txt ", "", "rst"]
`)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{".md", ".txt", ".rst"}
	if len(cfg.Intake.Extensions) != len(want) {
		t.Fatalf("extensions = %v", cfg.Intake.Extensions)
	}
	for i, ext := range want {
		if cfg.Intake.Extensions[i] != ext {
			t.Fatalf("extensions = %v, want %v", cfg.Intake.Extensions, want)
		}
	}
	if !cfg.AcceptsExtension(".MD") {
		t.Fatal("extension match should be case insensitive")
	}
	if cfg.AcceptsExtension(".exe") {
		t.Fatal(".exe should be rejected")
	}
}

func TestLoadStaleCutoffMustCoverStageDeadlines(t *testing.T) {
	path := writeConfig(t, `
[vector_index]
base_url = "http://127.0.0.1:8531"

[pipeline]
extraction_timeout_seconds = 60
indexing_timeout_seconds = 60

[workers]
stale_after_seconds = 30
`)

	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "stale_after_seconds") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadAllowsDisabledReclamation(t *testing.T) {
	path := writeConfig(t, `
[vector_index]
base_url = "http://127.0.0.1:8531"

[workers]
stale_after_seconds = -1
`)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workers.StaleAfterSeconds != 0 {
		t.Fatalf("stale_after_seconds = %d, want 0", cfg.Workers.StaleAfterSeconds)
	}
}

func TestLoadRejectsBusyWaitAboveIdleWait(t *testing.T) {
	path := writeConfig(t, `
[vector_index]
base_url = "http://127.0.0.1:8531"

[workers]
idle_wait_seconds = 0.5
busy_wait_seconds = 2.0
`)

	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "busy_wait_seconds") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadRejectsOverlapAtChunkSize(t *testing.T) {
	path := writeConfig(t, `
[vector_index]
base_url = "http://127.0.0.1:8531"

[pipeline]
default_chunk_size = 400
chunk_overlap = 400
`)

	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "chunk_overlap") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadReadsAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("VERSO_VECTOR_API_KEY", " secret-from-env ")
	path := writeConfig(t, `
[vector_index]
base_url = "http://127.0.0.1:8531"
`)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.VectorIndex.APIKey != "secret-from-env" {
		t.Fatalf("api_key = %q", cfg.VectorIndex.APIKey)
	}
}

func TestLoadPrefersFileAPIKeyOverEnvironment(t *testing.T) {
	t.Setenv("VERSO_VECTOR_API_KEY", "env-secret")
	path := writeConfig(t, `
[vector_index]
base_url = "http://127.0.0.1:8531"
api_key = "file-secret"
`)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.VectorIndex.APIKey != "file-secret" {
		t.Fatalf("api_key = %q", cfg.VectorIndex.APIKey)
	}
}

func TestLoadRejectsUnknownLogFormat(t *testing.T) {
	path := writeConfig(t, `
[vector_index]
base_url = "http://127.0.0.1:8531"

[logging]
format = "logfmt"
`)

	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("err = %v", err)
	}
}

func TestExpandPathResolvesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := config.ExpandPath("~/verso/data")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "verso", "data") {
		t.Fatalf("expanded = %q", got)
	}
}

func TestCreateSampleWritesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "base_url") {
		t.Fatal("sample config should mention vector_index base_url")
	}
}
