package testsupport

import (
	"path/filepath"
	"testing"

	"verso/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.API.Bind = "127.0.0.1:0"
	cfgVal.VectorIndex.BaseURL = "http://127.0.0.1:1"
	cfgVal.Workers.IdleWaitSeconds = 0.01
	cfgVal.Workers.BusyWaitSeconds = 0.01

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithWorkers sets the worker pool size on the test config.
func WithWorkers(count int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workers.Count = count
	}
}

// WithVectorIndexURL points the test config at a stub vector index service.
func WithVectorIndexURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.VectorIndex.BaseURL = url
	}
}

// WithStageTimeouts overrides both pipeline deadlines, in seconds.
func WithStageTimeouts(extraction, indexing int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.ExtractionTimeoutSeconds = extraction
		b.cfg.Pipeline.IndexingTimeoutSeconds = indexing
		combined := extraction + indexing
		if b.cfg.Workers.StaleAfterSeconds > 0 && b.cfg.Workers.StaleAfterSeconds < combined {
			b.cfg.Workers.StaleAfterSeconds = combined
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
