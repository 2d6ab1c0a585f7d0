package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// DataDir holds the queue database and ingested document copies.
	DataDir string `toml:"data_dir"`
	// StagingDir holds per-item chunk artifacts between the extraction
	// and indexing stages.
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
}

// Workers contains the worker pool and polling configuration.
type Workers struct {
	// Count is the pool size W; it is also the shard width and the
	// shard-rotation period in minutes.
	Count int `toml:"count"`
	// IdleWaitSeconds is how long a worker sleeps after an empty claim.
	IdleWaitSeconds float64 `toml:"idle_wait_seconds"`
	// BusyWaitSeconds is the short sleep after a processed item so a
	// backlog drains quickly.
	BusyWaitSeconds float64 `toml:"busy_wait_seconds"`
	// HeartbeatIntervalSeconds is how often in-flight items refresh
	// their liveness timestamp.
	HeartbeatIntervalSeconds int `toml:"heartbeat_interval_seconds"`
	// StaleAfterSeconds is the heartbeat age past which a processing
	// item is reclaimed as failed. Zero disables reclamation.
	StaleAfterSeconds int `toml:"stale_after_seconds"`
}

// Pipeline contains stage deadlines and document split limits.
type Pipeline struct {
	ExtractionTimeoutSeconds int `toml:"extraction_timeout_seconds"`
	IndexingTimeoutSeconds   int `toml:"indexing_timeout_seconds"`
	// MaxChars caps normalized document length; longer documents fail
	// validation. Zero disables the cap.
	MaxChars         int `toml:"max_chars"`
	DefaultChunkSize int `toml:"default_chunk_size"`
	ChunkOverlap     int `toml:"chunk_overlap"`
	InsertBatchSize  int `toml:"insert_batch_size"`
}

// VectorIndex contains the vector index service connection settings.
type VectorIndex struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// API contains the HTTP status API settings.
type API struct {
	Bind  string `toml:"bind"`
	Token string `toml:"token"`
}

// Notifications contains webhook settings for terminal outcomes.
type Notifications struct {
	WebhookURL            string `toml:"webhook_url"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	Completed             bool   `toml:"completed"`
	Failed                bool   `toml:"failed"`
}

// Intake contains document intake limits.
type Intake struct {
	// Extensions lists the accepted file extensions, lower case with dot.
	Extensions []string `toml:"extensions"`
	// MaxFileSizeMiB rejects larger uploads at intake. Zero disables.
	MaxFileSizeMiB int `toml:"max_file_size_mib"`
	// DefaultKnowledgeBase receives documents added without an explicit
	// knowledge base id.
	DefaultKnowledgeBase string `toml:"default_knowledge_base"`
}

// Logging contains log output configuration.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for Verso.
//
// Configuration sections by subsystem:
//   - Paths: data, staging, and log directories
//   - Workers: pool size, poll intervals, staleness policy
//   - Pipeline: stage deadlines and split limits
//   - VectorIndex: vector index service connection
//   - API: HTTP status API
//   - Notifications: outcome webhooks
//   - Intake: accepted documents
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Workers       Workers       `toml:"workers"`
	Pipeline      Pipeline      `toml:"pipeline"`
	VectorIndex   VectorIndex   `toml:"vector_index"`
	API           API           `toml:"api"`
	Notifications Notifications `toml:"notifications"`
	Intake        Intake        `toml:"intake"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/verso/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("verso.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories daemon operation requires.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.StagingDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// AcceptsExtension reports whether intake allows the given file extension.
func (c *Config) AcceptsExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimSpace(ext))
	for _, allowed := range c.Intake.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
